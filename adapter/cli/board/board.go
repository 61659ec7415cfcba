// Package board renders the instructor board as text.
package board

import (
	"fmt"

	"github.com/felixgeelhaar/lessonboard/adapter/cli"
	"github.com/felixgeelhaar/lessonboard/internal/scheduling/application/queries"
	"github.com/felixgeelhaar/lessonboard/internal/scheduling/domain"
	"github.com/felixgeelhaar/lessonboard/internal/scheduling/projection"
	"github.com/spf13/cobra"
)

var (
	boardDate        string
	boardInstructors []int64
	boardSunday      bool
	boardCells       bool
)

// Cmd is the board command group.
var Cmd = &cobra.Command{
	Use:   "board",
	Short: "Show the instructor board",
	Long: `Render the lesson board for a day, a week or a month.

Examples:
  lessonboard board day
  lessonboard board week --date 2024-03-18 --instructor 1
  lessonboard board month --sunday`,
}

var dayCmd = &cobra.Command{
	Use:     "day",
	Short:   "Show one day, one column per instructor",
	Aliases: []string{"today"},
	RunE:    runBoard(projection.GranularityDay),
}

var weekCmd = &cobra.Command{
	Use:   "week",
	Short: "Show the week containing the date",
	RunE:  runBoard(projection.GranularityWeek),
}

var monthCmd = &cobra.Command{
	Use:   "month",
	Short: "Show the month grid with one badge per instructor",
	RunE:  runBoard(projection.GranularityMonth),
}

func runBoard(g projection.Granularity) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		app := cli.GetApp()
		if app == nil || app.GetCalendarHandler == nil {
			fmt.Fprintln(cmd.OutOrStdout(), "The board requires a lesson store or back office.")
			fmt.Fprintln(cmd.OutOrStdout(), "Run 'lessonboard migrate' or set BACKOFFICE_URL.")
			return nil
		}

		anchor, err := app.ParseDate(boardDate)
		if err != nil {
			return err
		}
		window := projection.WindowFor(g, anchor, app.Layout.WeekStart)
		window.IncludeSunday = app.Layout.IncludeSunday || boardSunday
		for _, id := range boardInstructors {
			window.VisibleResourceIDs = append(window.VisibleResourceIDs, domain.ResourceID(id))
		}

		calendar, err := app.GetCalendarHandler.Handle(cmd.Context(), queries.GetCalendarQuery{
			Window: window,
			Layout: app.Layout.Layout,
		})
		if err != nil {
			return fmt.Errorf("failed to load board: %w", err)
		}
		return Render(cmd.OutOrStdout(), calendar.View, Options{Cells: boardCells})
	}
}

func init() {
	Cmd.PersistentFlags().StringVarP(&boardDate, "date", "d", "", "date inside the window (YYYY-MM-DD, default: today)")
	Cmd.PersistentFlags().Int64SliceVarP(&boardInstructors, "instructor", "i", nil, "instructor ids to show (default: all)")
	Cmd.PersistentFlags().BoolVar(&boardSunday, "sunday", false, "include Sundays")
	dayCmd.Flags().BoolVar(&boardCells, "cells", false, "draw the free/occupied slot strip under each instructor")

	Cmd.AddCommand(dayCmd)
	Cmd.AddCommand(weekCmd)
	Cmd.AddCommand(monthCmd)
}

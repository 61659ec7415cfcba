package cli

import (
	"fmt"

	"github.com/felixgeelhaar/lessonboard/internal/scheduling/application/commands"
	"github.com/felixgeelhaar/lessonboard/internal/scheduling/domain"
	"github.com/spf13/cobra"
)

var (
	publishFrom        string
	publishDays        int
	publishInstructors []int64
)

var publishCmd = &cobra.Command{
	Use:   "publish",
	Short: "Publish instructor timetables",
}

var publishCalDAVCmd = &cobra.Command{
	Use:   "caldav",
	Short: "Push instructor timetables to the CalDAV server",
	Long: `Publish every instructor's lessons to the CalDAV calendar configured by
CALDAV_URL. Each lesson becomes one event; re-running updates them in place.

Examples:
  lessonboard publish caldav
  lessonboard publish caldav --instructor 1 --instructor 3
  lessonboard publish caldav --from 2024-03-18 --days 14`,
	RunE: func(cmd *cobra.Command, args []string) error {
		app := GetApp()
		if app == nil || app.PublishTimetablesHandler == nil {
			fmt.Fprintln(cmd.OutOrStdout(), "CalDAV publication is not configured.")
			fmt.Fprintln(cmd.OutOrStdout(), "Set CALDAV_URL, CALDAV_USERNAME and CALDAV_PASSWORD.")
			return nil
		}
		if publishDays < 1 {
			return fmt.Errorf("--days must be at least 1, got %d", publishDays)
		}
		from, err := app.ParseDate(publishFrom)
		if err != nil {
			return err
		}

		ids := make([]domain.ResourceID, len(publishInstructors))
		for i, id := range publishInstructors {
			ids[i] = domain.ResourceID(id)
		}
		result, err := app.PublishTimetablesHandler.Handle(cmd.Context(), commands.PublishTimetablesCommand{
			From:        from,
			To:          from.AddDays(publishDays - 1),
			ResourceIDs: ids,
		})
		if err != nil {
			return fmt.Errorf("failed to publish timetables: %w", err)
		}

		fmt.Fprintf(cmd.OutOrStdout(), "Published timetables from %s to %s\n", from, from.AddDays(publishDays-1))
		fmt.Fprintf(cmd.OutOrStdout(), "  created: %d  updated: %d  deleted: %d  failed: %d\n",
			result.Created, result.Updated, result.Deleted, result.Failed)
		if result.Failed > 0 {
			return fmt.Errorf("%d events failed to publish", result.Failed)
		}
		return nil
	},
}

func init() {
	publishCalDAVCmd.Flags().StringVar(&publishFrom, "from", "", "first day (YYYY-MM-DD, default: today)")
	publishCalDAVCmd.Flags().IntVarP(&publishDays, "days", "d", 28, "number of days to publish")
	publishCalDAVCmd.Flags().Int64SliceVarP(&publishInstructors, "instructor", "i", nil, "instructor ids (default: all)")

	publishCmd.AddCommand(publishCalDAVCmd)
	rootCmd.AddCommand(publishCmd)
}

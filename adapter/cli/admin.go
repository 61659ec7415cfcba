package cli

import (
	"errors"
	"fmt"

	internalApp "github.com/felixgeelhaar/lessonboard/internal/app"
	"github.com/spf13/cobra"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Apply pending lesson store migrations",
	RunE: func(cmd *cobra.Command, args []string) error {
		app := GetApp()
		if app == nil || app.Container == nil {
			return errors.New("app not initialized")
		}
		if err := app.Container.Migrate(cmd.Context()); err != nil {
			return fmt.Errorf("failed to migrate: %w", err)
		}
		fmt.Fprintln(cmd.OutOrStdout(), "Lesson store is up to date.")
		return nil
	},
}

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Load demo instructors, students and a week of lessons",
	Long: `Seed an empty local store with three instructors, three students and
lessons spread over the current week.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		app := GetApp()
		if app == nil || app.Container == nil {
			return errors.New("app not initialized")
		}
		repo, err := app.Container.RequireRepository()
		if err != nil {
			return err
		}
		weekStart := internalApp.CurrentWeekStart(app.Today().Time(), app.Layout.WeekStart)
		result, err := internalApp.Seed(cmd.Context(), repo, weekStart)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Seeded week of %s\n", weekStart)
		fmt.Fprintf(cmd.OutOrStdout(), "  instructors: %d  students: %d  lessons: %d\n",
			result.Instructors, result.Students, result.Lessons)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(migrateCmd)
	rootCmd.AddCommand(seedCmd)
}

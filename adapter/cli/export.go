package cli

import (
	"bytes"
	"errors"
	"fmt"

	"github.com/felixgeelhaar/lessonboard/internal/scheduling/domain"
	"github.com/felixgeelhaar/lessonboard/internal/scheduling/infrastructure/ics"
	"github.com/felixgeelhaar/lessonboard/internal/shared/infrastructure/security"
	"github.com/spf13/cobra"
)

var (
	exportInstructor int64
	exportFrom       string
	exportDays       int
	exportOutput     string
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export instructor timetables",
}

var exportICSCmd = &cobra.Command{
	Use:   "ics",
	Short: "Export an instructor's lessons as iCalendar",
	Long: `Export one instructor's lessons to ICS (iCalendar) for import into
Google Calendar, Outlook, Apple Calendar, and other calendar apps.

Examples:
  lessonboard export ics --instructor 1                  # Next 7 days to stdout
  lessonboard export ics --instructor 1 -o paul.ics      # Export to file
  lessonboard export ics --instructor 1 --from 2024-03-18 --days 28`,
	RunE: func(cmd *cobra.Command, args []string) error {
		app := GetApp()
		if app == nil || app.Source == nil {
			fmt.Fprintln(cmd.OutOrStdout(), "Export requires a lesson store or back office.")
			fmt.Fprintln(cmd.OutOrStdout(), "Run 'lessonboard migrate' or set BACKOFFICE_URL.")
			return nil
		}
		if exportDays < 1 {
			return fmt.Errorf("--days must be at least 1, got %d", exportDays)
		}
		from, err := app.ParseDate(exportFrom)
		if err != nil {
			return err
		}
		to := from.AddDays(exportDays - 1)

		ctx := cmd.Context()
		instructors, err := app.Source.ListInstructors(ctx)
		if err != nil {
			return err
		}
		resource, ok := findInstructor(instructors, domain.ResourceID(exportInstructor))
		if !ok {
			return fmt.Errorf("%w: %d", domain.ErrInstructorNotFound, exportInstructor)
		}
		lessons, err := app.Source.ListLessons(ctx, from, to, []domain.ResourceID{resource.ID})
		if err != nil {
			return err
		}

		var buf bytes.Buffer
		err = ics.Encode(&buf, resource, lessons, ics.Options{Resolver: app.Layout.Resolver})
		if errors.Is(err, ics.ErrEmptyTimetable) {
			fmt.Fprintf(cmd.ErrOrStderr(), "No lessons for %s between %s and %s.\n", resource.DisplayName(), from, to)
			return nil
		}
		if err != nil {
			return err
		}

		if exportOutput == "" {
			_, err := cmd.OutOrStdout().Write(buf.Bytes())
			return err
		}
		if err := security.SafeWriteFile(exportOutput, buf.Bytes()); err != nil {
			return fmt.Errorf("failed to write file: %w", err)
		}
		fmt.Fprintf(cmd.ErrOrStderr(), "Exported %d lessons of %s to %s\n", len(lessons), resource.DisplayName(), exportOutput)
		return nil
	},
}

func findInstructor(instructors []domain.Resource, id domain.ResourceID) (domain.Resource, bool) {
	for _, r := range instructors {
		if r.ID == id {
			return r, true
		}
	}
	return domain.Resource{}, false
}

func init() {
	exportICSCmd.Flags().Int64VarP(&exportInstructor, "instructor", "i", 0, "instructor id")
	exportICSCmd.Flags().StringVar(&exportFrom, "from", "", "first day (YYYY-MM-DD, default: today)")
	exportICSCmd.Flags().IntVarP(&exportDays, "days", "d", 7, "number of days to export")
	exportICSCmd.Flags().StringVarP(&exportOutput, "output", "o", "", "output file (default: stdout)")
	_ = exportICSCmd.MarkFlagRequired("instructor")

	exportCmd.AddCommand(exportICSCmd)
	rootCmd.AddCommand(exportCmd)
}

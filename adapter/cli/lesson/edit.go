package lesson

import (
	"errors"
	"fmt"

	"github.com/felixgeelhaar/lessonboard/adapter/cli"
	"github.com/felixgeelhaar/lessonboard/internal/scheduling/application/commands"
	"github.com/felixgeelhaar/lessonboard/internal/scheduling/domain"
	"github.com/spf13/cobra"
)

var (
	editInstructor int64
	editDate       string
	editStart      string
	editEnd        string
	editType       string
	editStudent    int64
	editComment    string
)

var errNothingToEdit = errors.New("nothing to edit: pass at least one flag")

var editCmd = &cobra.Command{
	Use:   "edit [lesson-id]",
	Short: "Change a lesson's slot, type, student or comment",
	Long: `Edit a lesson. Only the flags given are changed; --student 0 detaches
the student.

Examples:
  lessonboard lesson edit 42 --start 14:00 --end 15:30
  lessonboard lesson edit 42 --instructor 2 --date 2024-03-19
  lessonboard lesson edit 42 --comment "rendez-vous à la gare"`,
	Aliases: []string{"update"},
	Args:    cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		app := cli.GetApp()
		if app == nil || app.UpdateLessonHandler == nil || app.Finder == nil {
			return fmt.Errorf("application not initialized - lesson store or back office required")
		}
		lesson, err := findLesson(cmd, app, args[0])
		if err != nil {
			return err
		}
		edit, err := editFromFlags(cmd, lesson)
		if err != nil {
			return err
		}

		updated, err := app.UpdateLessonHandler.Handle(cmd.Context(), commands.UpdateLessonCommand{
			Lesson: lesson,
			Action: domain.ActionEdit,
			Edit:   edit,
		})
		if err != nil {
			return fmt.Errorf("failed to edit lesson: %w", err)
		}
		printLesson(cmd.OutOrStdout(), "updated", updated)
		return nil
	},
}

// editFromFlags builds the edit from the flags the user set. A lone --start
// or --end keeps the other bound of the current range.
func editFromFlags(cmd *cobra.Command, current domain.Booking) (commands.LessonEdit, error) {
	flags := cmd.Flags()
	var edit commands.LessonEdit

	if flags.Changed("instructor") {
		id := domain.ResourceID(editInstructor)
		edit.ResourceID = &id
	}
	if flags.Changed("date") {
		d, err := domain.ParseDate(editDate)
		if err != nil {
			return edit, err
		}
		edit.Date = &d
	}
	if flags.Changed("start") || flags.Changed("end") {
		r := current.Range()
		if flags.Changed("start") {
			start, err := domain.ParseTimeOfDay(editStart)
			if err != nil {
				return edit, fmt.Errorf("invalid --start: %w", err)
			}
			r.Start = start
		}
		if flags.Changed("end") {
			end, err := domain.ParseTimeOfDay(editEnd)
			if err != nil {
				return edit, fmt.Errorf("invalid --end: %w", err)
			}
			r.End = end
		}
		edit.Range = &r
	}
	if flags.Changed("type") {
		t := domain.LessonType(editType)
		edit.Type = &t
	}
	if flags.Changed("comment") {
		c := editComment
		edit.Comment = &c
	}
	if flags.Changed("student") {
		s := editStudent
		edit.StudentID = &s
	}

	if edit.IsZero() {
		return edit, errNothingToEdit
	}
	return edit, nil
}

func init() {
	editCmd.Flags().Int64VarP(&editInstructor, "instructor", "i", 0, "move to instructor id")
	editCmd.Flags().StringVarP(&editDate, "date", "d", "", "move to day (YYYY-MM-DD)")
	editCmd.Flags().StringVar(&editStart, "start", "", "new start time (HH:MM)")
	editCmd.Flags().StringVar(&editEnd, "end", "", "new end time (HH:MM)")
	editCmd.Flags().StringVarP(&editType, "type", "t", "", "new lesson type")
	editCmd.Flags().Int64VarP(&editStudent, "student", "s", 0, "student id (0 detaches)")
	editCmd.Flags().StringVar(&editComment, "comment", "", "new comment")
}

package lesson

import (
	"fmt"

	"github.com/felixgeelhaar/lessonboard/adapter/cli"
	"github.com/felixgeelhaar/lessonboard/internal/scheduling/application/commands"
	"github.com/felixgeelhaar/lessonboard/internal/scheduling/domain"
	"github.com/spf13/cobra"
)

var (
	createInstructor int64
	createDate       string
	createStart      string
	createEnd        string
	createType       string
	createStudent    int64
	createComment    string
)

var createCmd = &cobra.Command{
	Use:   "create",
	Short: "Book a lesson",
	Long: `Book a lesson for an instructor. The slot must fit the board hours and
must not overlap another lesson of the instructor.

Examples:
  lessonboard lesson create -i 1 --start 09:00 --end 10:00
  lessonboard lesson create -i 2 --date 2024-03-18 --start 14:00 --end 15:30 --student 4
  lessonboard lesson create -i 3 --start 08:00 --end 20:00 --type "congé"`,
	Aliases: []string{"add", "book"},
	RunE: func(cmd *cobra.Command, args []string) error {
		app := cli.GetApp()
		if app == nil || app.CreateLessonHandler == nil {
			return fmt.Errorf("application not initialized - lesson store or back office required")
		}

		date, err := app.ParseDate(createDate)
		if err != nil {
			return err
		}
		start, err := domain.ParseTimeOfDay(createStart)
		if err != nil {
			return fmt.Errorf("invalid --start: %w", err)
		}
		end, err := domain.ParseTimeOfDay(createEnd)
		if err != nil {
			return fmt.Errorf("invalid --end: %w", err)
		}

		create := commands.CreateLessonCommand{
			Selection: domain.Selection{
				ResourceID: domain.ResourceID(createInstructor),
				Date:       date,
				Start:      start,
				End:        end,
			},
			Type:    domain.LessonType(createType),
			Comment: createComment,
		}
		if createStudent > 0 {
			id := createStudent
			create.StudentID = &id
		}

		created, err := app.CreateLessonHandler.Handle(cmd.Context(), create)
		if err != nil {
			return fmt.Errorf("failed to create lesson: %w", err)
		}
		printLesson(cmd.OutOrStdout(), "created", created)
		return nil
	},
}

func init() {
	createCmd.Flags().Int64VarP(&createInstructor, "instructor", "i", 0, "instructor id")
	createCmd.Flags().StringVarP(&createDate, "date", "d", "", "lesson day (YYYY-MM-DD, default: today)")
	createCmd.Flags().StringVar(&createStart, "start", "", "start time (HH:MM)")
	createCmd.Flags().StringVar(&createEnd, "end", "", "end time (HH:MM)")
	createCmd.Flags().StringVarP(&createType, "type", "t", "conduite", "lesson type")
	createCmd.Flags().Int64VarP(&createStudent, "student", "s", 0, "student id")
	createCmd.Flags().StringVar(&createComment, "comment", "", "free-text comment")
	_ = createCmd.MarkFlagRequired("instructor")
	_ = createCmd.MarkFlagRequired("start")
	_ = createCmd.MarkFlagRequired("end")
}

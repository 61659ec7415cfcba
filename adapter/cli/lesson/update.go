package lesson

import (
	"fmt"

	"github.com/felixgeelhaar/lessonboard/adapter/cli"
	"github.com/felixgeelhaar/lessonboard/internal/scheduling/application/commands"
	"github.com/felixgeelhaar/lessonboard/internal/scheduling/domain"
	"github.com/spf13/cobra"
)

var cancelCmd = &cobra.Command{
	Use:   "cancel [lesson-id]",
	Short: "Cancel a scheduled lesson",
	Long: `Cancel a scheduled lesson. The lesson stays on the board, struck out.

Examples:
  lessonboard lesson cancel 42`,
	Args: cobra.ExactArgs(1),
	RunE: transition(domain.ActionCancel, "cancelled"),
}

var completeCmd = &cobra.Command{
	Use:     "complete [lesson-id]",
	Short:   "Mark a scheduled lesson as given",
	Aliases: []string{"done"},
	Args:    cobra.ExactArgs(1),
	RunE:    transition(domain.ActionComplete, "completed"),
}

func transition(action domain.LifecycleAction, verb string) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		app := cli.GetApp()
		if app == nil || app.UpdateLessonHandler == nil || app.Finder == nil {
			return fmt.Errorf("application not initialized - lesson store or back office required")
		}
		lesson, err := findLesson(cmd, app, args[0])
		if err != nil {
			return err
		}
		updated, err := app.UpdateLessonHandler.Handle(cmd.Context(), commands.UpdateLessonCommand{
			Lesson: lesson,
			Action: action,
		})
		if err != nil {
			return fmt.Errorf("failed to %s lesson: %w", action, err)
		}
		printLesson(cmd.OutOrStdout(), verb, updated)
		return nil
	}
}

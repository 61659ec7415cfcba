// Package lesson books and updates lessons from the command line.
package lesson

import (
	"fmt"
	"io"
	"strconv"

	"github.com/felixgeelhaar/lessonboard/adapter/cli"
	"github.com/felixgeelhaar/lessonboard/internal/scheduling/domain"
	"github.com/spf13/cobra"
)

// Cmd is the lesson command group.
var Cmd = &cobra.Command{
	Use:     "lesson",
	Short:   "Book, cancel, complete and edit lessons",
	Aliases: []string{"lessons", "l"},
}

func init() {
	Cmd.AddCommand(createCmd)
	Cmd.AddCommand(cancelCmd)
	Cmd.AddCommand(completeCmd)
	Cmd.AddCommand(editCmd)
}

// findLesson loads the lesson named by a command argument.
func findLesson(cmd *cobra.Command, app *cli.App, raw string) (domain.Booking, error) {
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return domain.Booking{}, fmt.Errorf("invalid lesson ID %q: %w", raw, err)
	}
	return app.Finder.FindLesson(cmd.Context(), domain.BookingID(id))
}

func printLesson(w io.Writer, verb string, b domain.Booking) {
	fmt.Fprintf(w, "Lesson %s: #%d\n", verb, b.ID())
	fmt.Fprintf(w, "  Instructor: %d\n", b.ResourceID())
	fmt.Fprintf(w, "  When:       %s %s\n", b.Date(), b.Range())
	fmt.Fprintf(w, "  Type:       %s\n", b.Type())
	fmt.Fprintf(w, "  Status:     %s\n", b.Status())
	if s, ok := b.Student(); ok {
		name := s.DisplayName()
		if name == "" {
			name = fmt.Sprintf("#%d", s.ID)
		}
		fmt.Fprintf(w, "  Student:    %s\n", name)
	}
	if b.Comment() != "" {
		fmt.Fprintf(w, "  Comment:    %s\n", b.Comment())
	}
}

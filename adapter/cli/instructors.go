package cli

import (
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/felixgeelhaar/lessonboard/internal/scheduling/application/queries"
	"github.com/spf13/cobra"
)

var instructorsCmd = &cobra.Command{
	Use:     "instructors",
	Short:   "List instructors and their board colors",
	Aliases: []string{"instructor"},
	RunE: func(cmd *cobra.Command, args []string) error {
		app := GetApp()
		if app == nil || app.ListInstructorsHandler == nil {
			fmt.Fprintln(cmd.OutOrStdout(), "Listing instructors requires a lesson store or back office.")
			return nil
		}

		instructors, err := app.ListInstructorsHandler.Handle(cmd.Context(), queries.ListInstructorsQuery{})
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		fmt.Fprintln(out, "Instructors")
		fmt.Fprintln(out, strings.Repeat("=", 60))
		if len(instructors) == 0 {
			fmt.Fprintln(out, "\n  No instructors yet.")
			fmt.Fprintln(out, "\n  Use 'lessonboard seed' to load demo data")
			return nil
		}

		w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
		fmt.Fprintln(w, "ID\tNAME\tCOLOR\tPHONE\tEMAIL")
		for _, i := range instructors {
			fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%s\n", i.ID, i.Name, i.Color, i.Phone, i.Email)
		}
		return w.Flush()
	},
}

func init() {
	rootCmd.AddCommand(instructorsCmd)
}

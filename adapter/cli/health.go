package cli

import (
	"fmt"
	"sort"

	"github.com/felixgeelhaar/lessonboard/pkg/observability"
	"github.com/spf13/cobra"
)

var healthCmd = &cobra.Command{
	Use:   "health",
	Short: "Check the lesson store and broker connections",
	RunE: func(cmd *cobra.Command, args []string) error {
		app := GetApp()
		if app == nil || app.Container == nil {
			return fmt.Errorf("app not initialized")
		}
		results := app.Container.Health.Check(cmd.Context())
		names := make([]string, 0, len(results))
		for name := range results {
			names = append(names, name)
		}
		sort.Strings(names)
		for _, name := range names {
			r := results[name]
			fmt.Fprintf(cmd.OutOrStdout(), "%-10s %s", name, r.Status)
			if r.Message != "" {
				fmt.Fprintf(cmd.OutOrStdout(), "  %s", r.Message)
			}
			fmt.Fprintln(cmd.OutOrStdout())
		}
		overall := app.Container.Health.OverallStatus()
		fmt.Fprintf(cmd.OutOrStdout(), "overall    %s\n", overall)
		if overall == observability.HealthStatusUnhealthy {
			return fmt.Errorf("unhealthy")
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(healthCmd)
}

package cli

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/felixgeelhaar/lessonboard/adapter/api"
	"github.com/spf13/cobra"
)

var (
	serveAddr        string
	serveBoardIdle   time.Duration
	serveShutdownMax time.Duration
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the back-office HTTP API",
	Long: `Serve lessons, rendered calendars, iCalendar exports and server-side
boards over HTTP until interrupted.

Examples:
  lessonboard serve
  lessonboard serve --addr :9090`,
	RunE: func(cmd *cobra.Command, args []string) error {
		app := GetApp()
		if app == nil || app.Container == nil {
			return errors.New("app not initialized")
		}
		c := app.Container
		l := logger
		if l == nil {
			l = slog.Default()
		}

		cfg := api.DefaultServerConfig()
		cfg.Addr = c.Config.HTTPAddr
		if serveAddr != "" {
			cfg.Addr = serveAddr
		}
		if serveBoardIdle > 0 {
			cfg.BoardIdleTimeout = serveBoardIdle
		}
		server := api.NewServer(cfg, api.Dependencies{
			Source:       app.Source,
			Finder:       app.Finder,
			Calendar:     app.GetCalendarHandler,
			Instructors:  app.ListInstructorsHandler,
			CreateLesson: app.CreateLessonHandler,
			UpdateLesson: app.UpdateLessonHandler,
			Layout:       app.Layout.Layout,
			Health:       c.Health,
			Metrics:      c.Metrics,
		}, l)

		errCh := make(chan error, 1)
		go func() {
			if err := server.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				errCh <- err
			}
			close(errCh)
		}()
		fmt.Fprintf(cmd.OutOrStdout(), "Serving lessonboard API on %s\n", cfg.Addr)

		select {
		case err := <-errCh:
			if err != nil {
				return fmt.Errorf("API server failed: %w", err)
			}
			return nil
		case <-cmd.Context().Done():
		}

		ctx, cancel := context.WithTimeout(context.Background(), serveShutdownMax)
		defer cancel()
		return server.Shutdown(ctx)
	},
}

func init() {
	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "listen address (default: HTTP_ADDR)")
	serveCmd.Flags().DurationVar(&serveBoardIdle, "board-idle", 0, "drop server-side boards idle for this long")
	serveCmd.Flags().DurationVar(&serveShutdownMax, "shutdown-timeout", 10*time.Second, "graceful shutdown timeout")
	rootCmd.AddCommand(serveCmd)
}

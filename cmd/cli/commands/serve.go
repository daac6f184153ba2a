package commands

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/volunhub/volunhub/internal/api"
)

// ServeCmd creates the serve command
func ServeCmd(app *AppContext) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			srv := api.NewServer(api.Options{
				Address:           app.Cfg.APIAddress,
				Store:             app.Database,
				Notifier:          app.Notifier,
				Audit:             app.Audit,
				Calculator:        app.Calculator,
				Logger:            app.Logger,
				RequireAttendance: app.Cfg.Attendance.RequireForComplete,
			})

			app.Logger.Info("starting HTTP API", zap.String("address", srv.Address()))
			if err := srv.Listen(); err != nil {
				return fmt.Errorf("server stopped: %w", err)
			}
			return nil
		},
	}
}

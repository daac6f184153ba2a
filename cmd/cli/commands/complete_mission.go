package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/volunhub/volunhub/pkg/core/services"
)

// CompleteMissionCmd creates the completeMission command
func CompleteMissionCmd(app *AppContext) *cobra.Command {
	return &cobra.Command{
		Use:   "completeMission <mission_id>",
		Short: "Finalize a CLOSED mission",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			mission, err := services.CompleteMission(app.Ctx, app.Database, app.Audit, app.Logger, app.Actor,
				args[0], app.Cfg.Attendance.RequireForComplete)
			if err != nil {
				return err
			}

			fmt.Printf("\n✓ Mission %s is now %s\n\n", mission.ID, mission.Status)
			return nil
		},
	}
}

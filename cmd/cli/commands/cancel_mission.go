package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/volunhub/volunhub/pkg/core/services"
)

// CancelMissionCmd creates the cancelMission command
func CancelMissionCmd(app *AppContext) *cobra.Command {
	return &cobra.Command{
		Use:   "cancelMission <mission_id>",
		Short: "Cancel a mission and withdraw its open requests",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			result, err := services.CancelMission(app.Ctx, app.Database, app.Notifier, app.Audit, app.Logger, app.Actor, args[0])
			if err != nil {
				return err
			}

			fmt.Printf("\n✓ Mission %s canceled\n", result.Mission.ID)
			fmt.Printf("Withdrawn requests: %d\n\n", len(result.CanceledRequests))
			return nil
		},
	}
}

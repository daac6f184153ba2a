package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/volunhub/volunhub/pkg/core/services"
)

// OpenMissionCmd creates the openMission command
func OpenMissionCmd(app *AppContext) *cobra.Command {
	return &cobra.Command{
		Use:   "openMission <mission_id>",
		Short: "Open a DRAFT mission for applications",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			mission, err := services.OpenMission(app.Ctx, app.Database, app.Audit, app.Logger, app.Actor, args[0])
			if err != nil {
				return err
			}

			fmt.Printf("\n✓ Mission %s is now %s\n\n", mission.ID, mission.Status)
			return nil
		},
	}
}

package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/volunhub/volunhub/pkg/core/services"
)

// CloseMissionCmd creates the closeMission command
func CloseMissionCmd(app *AppContext) *cobra.Command {
	return &cobra.Command{
		Use:   "closeMission <mission_id>",
		Short: "Close an OPEN mission to new applications",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			mission, err := services.CloseMission(app.Ctx, app.Database, app.Audit, app.Logger, app.Actor, args[0])
			if err != nil {
				return err
			}

			fmt.Printf("\n✓ Mission %s is now %s\n", mission.ID, mission.Status)
			fmt.Println("Pending requests remain decidable; new applications are refused.")
			fmt.Println()
			return nil
		},
	}
}

package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/volunhub/volunhub/pkg/core/services"
)

// ApproveCmd creates the approve command
func ApproveCmd(app *AppContext) *cobra.Command {
	return &cobra.Command{
		Use:   "approve <request_id>",
		Short: "Approve a pending participation request",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			req, err := services.Approve(app.Ctx, app.Database, app.Notifier, app.Audit, app.Logger, app.Actor, args[0])
			if err != nil {
				return err
			}

			fmt.Printf("\n✓ Request %s approved (volunteer %s)\n\n", req.ID, req.VolunteerID)
			return nil
		},
	}
}

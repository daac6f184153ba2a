package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/volunhub/volunhub/pkg/core/services"
)

// RejectCmd creates the reject command
func RejectCmd(app *AppContext) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "reject <request_id>",
		Short: "Reject a participation request",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			reason, _ := cmd.Flags().GetString("reason")

			req, err := services.Reject(app.Ctx, app.Database, app.Notifier, app.Audit, app.Logger, app.Actor, args[0], reason)
			if err != nil {
				return err
			}

			fmt.Printf("\n✓ Request %s rejected\n\n", req.ID)
			return nil
		},
	}

	cmd.Flags().String("reason", "", "Reason shown to the volunteer")

	return cmd
}

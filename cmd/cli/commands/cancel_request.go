package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/volunhub/volunhub/pkg/core/services"
)

// CancelRequestCmd creates the cancelRequest command
func CancelRequestCmd(app *AppContext) *cobra.Command {
	return &cobra.Command{
		Use:   "cancelRequest <request_id>",
		Short: "Withdraw a participation request",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			req, err := services.CancelRequest(app.Ctx, app.Database, app.Notifier, app.Audit, app.Logger, app.Actor, args[0])
			if err != nil {
				return err
			}

			fmt.Printf("\n✓ Request %s is now %s\n\n", req.ID, req.Status)
			return nil
		},
	}
}

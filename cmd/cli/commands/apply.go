package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/volunhub/volunhub/pkg/core/services"
)

// ApplyCmd creates the apply command
func ApplyCmd(app *AppContext) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "apply <shift_id>",
		Short: "File a participation request for a shift (acts as the --actor volunteer)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			notes, _ := cmd.Flags().GetString("notes")

			req, err := services.Apply(app.Ctx, app.Database, app.Audit, app.Logger, app.Actor, args[0], notes)
			if err != nil {
				return err
			}

			fmt.Printf("\n✓ Application filed!\n\n")
			fmt.Printf("Request ID: %s\n", req.ID)
			fmt.Printf("Status:     %s\n\n", req.Status)
			return nil
		},
	}

	cmd.Flags().String("notes", "", "Notes for the organizers")

	return cmd
}

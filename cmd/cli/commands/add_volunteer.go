package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/volunhub/volunhub/pkg/core/services"
)

// AddVolunteerCmd creates the addVolunteer command
func AddVolunteerCmd(app *AppContext) *cobra.Command {
	return &cobra.Command{
		Use:   "addVolunteer <shift_id> <volunteer_id>",
		Short: "Enroll a volunteer directly as APPROVED",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			req, err := services.AddVolunteer(app.Ctx, app.Database, app.Notifier, app.Audit, app.Logger, app.Actor, args[0], args[1])
			if err != nil {
				return err
			}

			fmt.Printf("\n✓ Volunteer %s added to shift %s (request %s)\n\n", req.VolunteerID, req.ShiftID, req.ID)
			return nil
		},
	}
}

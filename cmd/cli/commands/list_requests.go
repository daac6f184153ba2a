package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/volunhub/volunhub/pkg/core/model"
)

// ListRequestsCmd creates the listRequests command
func ListRequestsCmd(app *AppContext) *cobra.Command {
	var shiftID string
	var volunteerID string

	cmd := &cobra.Command{
		Use:   "listRequests",
		Short: "List participation requests for a shift or a volunteer",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			var (
				requests []model.ParticipationRequest
				err      error
			)
			switch {
			case shiftID != "" && volunteerID != "":
				return fmt.Errorf("pass either --shift or --volunteer, not both")
			case shiftID != "":
				requests, err = app.Database.ListRequestsByShift(app.Ctx, shiftID)
			case volunteerID != "":
				requests, err = app.Database.ListRequestsByVolunteer(app.Ctx, volunteerID)
			default:
				return fmt.Errorf("one of --shift or --volunteer is required")
			}
			if err != nil {
				return fmt.Errorf("failed to list requests: %w", err)
			}

			fmt.Printf("\nFound %d requests:\n\n", len(requests))
			for _, r := range requests {
				fmt.Printf("- %s  %-18s shift %s  volunteer %s\n",
					r.ID,
					r.Status,
					r.ShiftID,
					r.VolunteerID,
				)
			}
			fmt.Println()

			return nil
		},
	}

	cmd.Flags().StringVar(&shiftID, "shift", "", "List requests on this shift")
	cmd.Flags().StringVar(&volunteerID, "volunteer", "", "List requests filed by this volunteer")

	return cmd
}

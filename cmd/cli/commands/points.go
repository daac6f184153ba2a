package commands

import (
	"fmt"

	"github.com/spf13/cobra"
)

// PointsCmd creates the points command
func PointsCmd(app *AppContext) *cobra.Command {
	return &cobra.Command{
		Use:   "points <user_id>",
		Short: "Show a user's points balance and ledger",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			user, err := app.Database.GetUser(app.Ctx, args[0])
			if err != nil {
				return fmt.Errorf("failed to load user: %w", err)
			}

			entries, err := app.Database.UserLedger(app.Ctx, user.ID)
			if err != nil {
				return fmt.Errorf("failed to load ledger: %w", err)
			}

			fmt.Printf("\n%s - %d points\n\n", user.Name, user.TotalPoints)
			for _, e := range entries {
				fmt.Printf("  %s  %+5d  %-22s request %s\n",
					e.CreatedAt.Format("2006-01-02 15:04"),
					e.Points,
					e.Reason,
					e.RequestID,
				)
			}
			fmt.Println()

			return nil
		},
	}
}

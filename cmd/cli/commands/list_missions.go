package commands

import (
	"fmt"

	"github.com/spf13/cobra"
)

// ListMissionsCmd creates the listMissions command
func ListMissionsCmd(app *AppContext) *cobra.Command {
	return &cobra.Command{
		Use:   "listMissions",
		Short: "List all missions",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			missions, err := app.Database.ListMissions(app.Ctx)
			if err != nil {
				return fmt.Errorf("failed to list missions: %w", err)
			}

			fmt.Printf("\nFound %d missions:\n\n", len(missions))
			for _, m := range missions {
				fmt.Printf("- %s  %-10s %s (%s to %s)\n",
					m.ID,
					m.Status,
					m.Title,
					m.StartTime.Format("2006-01-02"),
					m.EndTime.Format("2006-01-02"),
				)
			}
			fmt.Println()

			return nil
		},
	}
}

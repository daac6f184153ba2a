package commands

import (
	"fmt"

	"github.com/spf13/cobra"
)

// NotificationsCmd creates the notifications command
func NotificationsCmd(app *AppContext) *cobra.Command {
	return &cobra.Command{
		Use:   "notifications <user_id>",
		Short: "Show a user's unread in-app notifications",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			notifications, err := app.Database.UnreadNotifications(app.Ctx, args[0])
			if err != nil {
				return fmt.Errorf("failed to load notifications: %w", err)
			}

			fmt.Printf("\n%d unread notifications:\n\n", len(notifications))
			for _, n := range notifications {
				fmt.Printf("  %s  %-24s %s\n",
					n.CreatedAt.Format("2006-01-02 15:04"),
					n.Event,
					n.Subject,
				)
			}
			fmt.Println()

			return nil
		},
	}
}

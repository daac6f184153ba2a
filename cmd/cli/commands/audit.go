package commands

import (
	"fmt"

	"github.com/spf13/cobra"
)

// AuditCmd creates the audit command
func AuditCmd(app *AppContext) *cobra.Command {
	return &cobra.Command{
		Use:   "audit <entity_type> <entity_id>",
		Short: "Show the audit trail for an entity (mission, shift or request)",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			records, err := app.Database.AuditTrail(app.Ctx, args[0], args[1])
			if err != nil {
				return fmt.Errorf("failed to load audit trail: %w", err)
			}

			fmt.Printf("\n%d audit records:\n\n", len(records))
			for _, r := range records {
				actor := r.ActorID
				if actor == "" {
					actor = "system"
				}
				fmt.Printf("  %s  %-24s by %s\n",
					r.CreatedAt.Format("2006-01-02 15:04"),
					r.Action,
					actor,
				)
				if r.Detail != "" {
					fmt.Printf("      %s\n", r.Detail)
				}
			}
			fmt.Println()

			return nil
		},
	}
}

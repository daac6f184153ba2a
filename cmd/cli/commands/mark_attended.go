package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/volunhub/volunhub/pkg/core/services"
)

// MarkAttendedCmd creates the markAttended command
func MarkAttendedCmd(app *AppContext) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "markAttended <request_id>",
		Short: "Record attendance and grant points (re-run with --hours to correct)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var actualHours *float64
			if cmd.Flags().Changed("hours") {
				hours, _ := cmd.Flags().GetFloat64("hours")
				actualHours = &hours
			}

			result, err := services.MarkAttended(app.Ctx, app.Database, app.Calculator, app.Audit, app.Logger, app.Actor, args[0], actualHours)
			if err != nil {
				return err
			}

			fmt.Printf("\n✓ Attendance recorded!\n\n")
			fmt.Printf("Hours:  %.2f\n", result.EffectiveHours)
			fmt.Printf("Points: %d", result.Points)
			if result.Delta != result.Points {
				fmt.Printf(" (ledger delta %+d)", result.Delta)
			}
			fmt.Println()
			fmt.Println()
			return nil
		},
	}

	cmd.Flags().Float64("hours", 0, "Actual hours worked (defaults to the scheduled duration)")

	return cmd
}

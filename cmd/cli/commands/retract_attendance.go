package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/volunhub/volunhub/pkg/core/services"
)

// RetractAttendanceCmd creates the retractAttendance command
func RetractAttendanceCmd(app *AppContext) *cobra.Command {
	return &cobra.Command{
		Use:   "retractAttendance <request_id>",
		Short: "Undo a recorded attendance and its points grant",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			result, err := services.RetractAttendance(app.Ctx, app.Database, app.Audit, app.Logger, app.Actor, args[0])
			if err != nil {
				return err
			}

			fmt.Printf("\n✓ Attendance retracted (ledger delta %+d)\n\n", result.Delta)
			return nil
		},
	}
}

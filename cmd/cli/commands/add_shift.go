package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/volunhub/volunhub/pkg/core/services"
)

// AddShiftCmd creates the addShift command
func AddShiftCmd(app *AppContext) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "addShift <mission_id> <start> <end> <max_volunteers>",
		Short: "Add a shift to a mission (use --rrule for a recurring series)",
		Args:  cobra.ExactArgs(4),
		RunE: func(cmd *cobra.Command, args []string) error {
			start, err := parseTime(args[1])
			if err != nil {
				return err
			}
			end, err := parseTime(args[2])
			if err != nil {
				return err
			}

			var maxVolunteers int
			if _, err := fmt.Sscanf(args[3], "%d", &maxVolunteers); err != nil {
				return fmt.Errorf("max_volunteers must be a number: %w", err)
			}

			minVolunteers, _ := cmd.Flags().GetInt("min")
			skills, _ := cmd.Flags().GetStringSlice("skills")
			notes, _ := cmd.Flags().GetString("notes")
			rruleStr, _ := cmd.Flags().GetString("rrule")

			input := services.ShiftInput{
				StartTime:      start,
				EndTime:        end,
				MinVolunteers:  minVolunteers,
				MaxVolunteers:  maxVolunteers,
				RequiredSkills: skills,
				Notes:          notes,
			}

			if rruleStr != "" {
				result, err := services.AddRecurringShifts(app.Ctx, app.Database, app.Audit, app.Logger, app.Actor, args[0], input, rruleStr)
				if err != nil {
					return err
				}

				fmt.Printf("\n✓ %d shifts created!\n\n", len(result.Shifts))
				for i, s := range result.Shifts {
					fmt.Printf("  %2d. %s  %s to %s\n", i+1, s.ID,
						s.StartTime.Format("2006-01-02 15:04"),
						s.EndTime.Format("15:04"))
				}
				fmt.Println()
				return nil
			}

			shift, err := services.AddShift(app.Ctx, app.Database, app.Audit, app.Logger, app.Actor, args[0], input)
			if err != nil {
				return err
			}

			fmt.Printf("\n✓ Shift created!\n\n")
			fmt.Printf("Shift ID: %s\n", shift.ID)
			fmt.Printf("Window:   %s to %s\n", shift.StartTime.Format("2006-01-02 15:04"), shift.EndTime.Format("15:04"))
			fmt.Printf("Capacity: %d\n\n", shift.MaxVolunteers)

			return nil
		},
	}

	cmd.Flags().Int("min", 0, "Minimum volunteers")
	cmd.Flags().StringSlice("skills", nil, "Required skill ids")
	cmd.Flags().String("notes", "", "Shift notes")
	cmd.Flags().String("rrule", "", `Recurrence rule, e.g. "FREQ=WEEKLY;COUNT=4"`)

	return cmd
}

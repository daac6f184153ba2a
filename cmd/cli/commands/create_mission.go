package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/volunhub/volunhub/pkg/core/services"
)

// CreateMissionCmd creates the createMission command
func CreateMissionCmd(app *AppContext) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "createMission <title> <start> <end>",
		Short: "Create a new mission in DRAFT",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			start, err := parseTime(args[1])
			if err != nil {
				return err
			}
			end, err := parseTime(args[2])
			if err != nil {
				return err
			}

			department, _ := cmd.Flags().GetString("department")
			missionType, _ := cmd.Flags().GetString("type")

			mission, err := services.CreateMission(app.Ctx, app.Database, app.Audit, app.Logger, app.Actor, services.CreateMissionInput{
				Title:        args[0],
				DepartmentID: department,
				Type:         missionType,
				StartTime:    start,
				EndTime:      end,
			})
			if err != nil {
				return err
			}

			fmt.Printf("\n✓ Mission created!\n\n")
			fmt.Printf("Mission ID: %s\n", mission.ID)
			fmt.Printf("Title:      %s\n", mission.Title)
			fmt.Printf("Status:     %s\n", mission.Status)
			fmt.Printf("Window:     %s to %s\n\n",
				mission.StartTime.Format("2006-01-02 15:04"),
				mission.EndTime.Format("2006-01-02 15:04"))

			return nil
		},
	}

	cmd.Flags().String("department", "", "Department id owning the mission")
	cmd.Flags().String("type", "", "Mission type key (selects the points multiplier)")

	return cmd
}

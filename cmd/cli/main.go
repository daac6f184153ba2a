package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/volunhub/volunhub/cmd/cli/commands"
	"github.com/volunhub/volunhub/internal/config"
	"github.com/volunhub/volunhub/pkg/clients/gmailclient"
	"github.com/volunhub/volunhub/pkg/core/model"
	"github.com/volunhub/volunhub/pkg/core/points"
	"github.com/volunhub/volunhub/pkg/notify"
	"github.com/volunhub/volunhub/pkg/postgres"
	"github.com/volunhub/volunhub/pkg/utils/logging"
)

var (
	env        string
	configPath string
	actorID    string
	actorRole  string
	app        *commands.AppContext
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "volunhub",
		Short: "VolunHub CLI - Coordinate volunteer missions and shifts",
		Long:  `A CLI tool for managing volunteer missions, shifts, participation requests, attendance and points.`,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return initApp()
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if app != nil {
				if app.Database != nil {
					app.Database.Close()
				}
				if app.Logger != nil {
					app.Logger.Sync()
				}
			}
		},
	}

	rootCmd.PersistentFlags().StringVarP(&env, "env", "e", "", "Environment (required: test, prod, etc.)")
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Path to the config file (defaults to volunhub_config.yaml lookup)")
	rootCmd.PersistentFlags().StringVar(&actorID, "actor", "", "User id the command acts as (required)")
	rootCmd.PersistentFlags().StringVar(&actorRole, "role", string(model.RoleAdmin), "Role of the acting user (admin, shift_leader, volunteer)")
	rootCmd.MarkPersistentFlagRequired("env")
	rootCmd.MarkPersistentFlagRequired("actor")

	app = &commands.AppContext{}

	rootCmd.AddCommand(commands.ServeCmd(app))
	rootCmd.AddCommand(commands.CreateMissionCmd(app))
	rootCmd.AddCommand(commands.OpenMissionCmd(app))
	rootCmd.AddCommand(commands.CloseMissionCmd(app))
	rootCmd.AddCommand(commands.CompleteMissionCmd(app))
	rootCmd.AddCommand(commands.CancelMissionCmd(app))
	rootCmd.AddCommand(commands.ListMissionsCmd(app))
	rootCmd.AddCommand(commands.AddShiftCmd(app))
	rootCmd.AddCommand(commands.DeleteShiftCmd(app))
	rootCmd.AddCommand(commands.ApplyCmd(app))
	rootCmd.AddCommand(commands.ApproveCmd(app))
	rootCmd.AddCommand(commands.RejectCmd(app))
	rootCmd.AddCommand(commands.CancelRequestCmd(app))
	rootCmd.AddCommand(commands.AddVolunteerCmd(app))
	rootCmd.AddCommand(commands.MarkAttendedCmd(app))
	rootCmd.AddCommand(commands.RetractAttendanceCmd(app))
	rootCmd.AddCommand(commands.PointsCmd(app))
	rootCmd.AddCommand(commands.ListRequestsCmd(app))
	rootCmd.AddCommand(commands.NotificationsCmd(app))
	rootCmd.AddCommand(commands.AuditCmd(app))

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// initApp sets up logger, config, database, notifier and calculator
func initApp() error {
	var err error
	app.Ctx = context.Background()

	app.Logger, err = logging.InitLogger(env)
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}

	app.Logger.Info("Starting application", zap.String("environment", env))

	app.Logger.Info("Loading configuration")
	if configPath != "" {
		app.Cfg, err = config.LoadFromPath(configPath)
	} else {
		app.Cfg, err = config.Load()
	}
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	app.Logger.Debug("Configuration loaded successfully")

	app.Logger.Info("Connecting to database")
	app.Database, err = postgres.NewDB(app.Ctx, app.Cfg.DatabaseURL)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}

	app.Logger.Info("Running migrations")
	if err := app.Database.RunMigrations(app.Ctx); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}
	app.Logger.Debug("Database ready")

	var mailer notify.Mailer
	if app.Cfg.Gmail != nil {
		app.Logger.Info("Initializing gmail client")
		gmail, err := gmailclient.NewClient(app.Ctx, gmailclient.Credentials{
			ClientID:     app.Cfg.Gmail.ClientID,
			ClientSecret: app.Cfg.Gmail.ClientSecret,
			RefreshToken: app.Cfg.Gmail.RefreshToken,
			From:         app.Cfg.Gmail.Sender,
		})
		if err != nil {
			return fmt.Errorf("failed to create gmail client: %w", err)
		}
		mailer = gmail
		app.Logger.Debug("Gmail client initialized successfully")
	}
	app.Notifier = notify.NewDispatcher(app.Database, mailer, app.Logger)

	app.Audit = app.Database
	app.Calculator = points.NewCalculator(points.Rates{
		PerHour:                app.Cfg.Points.PerHour,
		WeekendMultiplier:      app.Cfg.Points.WeekendMultiplier,
		NightMultiplier:        app.Cfg.Points.NightMultiplier,
		MissionTypeMultipliers: app.Cfg.Points.MissionTypeMultipliers,
	})

	app.Actor = model.Actor{ID: actorID, Role: model.Role(actorRole)}

	return nil
}

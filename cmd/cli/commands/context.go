package commands

import (
	"context"

	"go.uber.org/zap"

	"github.com/volunhub/volunhub/internal/config"
	"github.com/volunhub/volunhub/pkg/core/model"
	"github.com/volunhub/volunhub/pkg/core/points"
	"github.com/volunhub/volunhub/pkg/core/services"
	"github.com/volunhub/volunhub/pkg/postgres"
)

// AppContext holds the application dependencies shared across all commands
type AppContext struct {
	Cfg        *config.Config
	Database   *postgres.DB
	Notifier   services.Notifier
	Audit      services.AuditLog
	Calculator *points.Calculator
	Logger     *zap.Logger
	Ctx        context.Context
	Actor      model.Actor
}

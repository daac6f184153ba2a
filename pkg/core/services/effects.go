package services

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/volunhub/volunhub/pkg/core/model"
)

// Notifier delivers an event to one volunteer (email and/or in-app).
// Delivery mechanics are external; the core fires and forgets.
type Notifier interface {
	Notify(ctx context.Context, userID, event, subject, body string) error
}

// AuditLog appends one "who did what to which entity" record.
type AuditLog interface {
	Record(ctx context.Context, rec *model.AuditRecord) error
}

// notify dispatches a notification after a committed transition. Failures
// are logged and never propagated: a notification failure must not roll
// back or fail the state change that triggered it.
func notify(ctx context.Context, notifier Notifier, logger *zap.Logger, userID, event, subject, body string) {
	if notifier == nil {
		return
	}
	if err := notifier.Notify(ctx, userID, event, subject, body); err != nil {
		logger.Warn("notification failed",
			zap.String("user_id", userID),
			zap.String("event", event),
			zap.Error(err))
	}
}

// recordAudit appends an audit record after a committed transition.
// Best-effort: failures are logged only.
func recordAudit(ctx context.Context, audit AuditLog, logger *zap.Logger, actor model.Actor, action, entityType, entityID, detail string) {
	if audit == nil {
		return
	}
	rec := &model.AuditRecord{
		ActorID:    actor.ID,
		Action:     action,
		EntityType: entityType,
		EntityID:   entityID,
		Detail:     detail,
		CreatedAt:  time.Now().UTC(),
	}
	if err := audit.Record(ctx, rec); err != nil {
		logger.Warn("audit record failed",
			zap.String("action", action),
			zap.String("entity_id", entityID),
			zap.Error(err))
	}
}

// Package notify fans a domain event out to delivery channels: an in-app
// notification row and, when a mail client is configured, an email to the
// volunteer. Dispatch happens after the triggering transition has committed,
// so every channel is best-effort and failures are logged rather than
// returned to the caller's state change.
package notify

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/volunhub/volunhub/pkg/core/model"
)

// Mailer sends one email. Satisfied by gmailclient.Client.
type Mailer interface {
	SendEmail(to, subject, body string) error
}

// Store persists in-app notifications and resolves recipients.
type Store interface {
	GetUser(ctx context.Context, id string) (*model.User, error)
	InsertNotification(ctx context.Context, n *model.Notification) error
}

// Dispatcher implements the core's Notifier against the configured channels.
type Dispatcher struct {
	store  Store
	mailer Mailer
	logger *zap.Logger
}

func NewDispatcher(store Store, mailer Mailer, logger *zap.Logger) *Dispatcher {
	return &Dispatcher{
		store:  store,
		mailer: mailer,
		logger: logger,
	}
}

// Notify writes the in-app row and sends the email. A failed channel is
// logged and does not stop the other one.
func (d *Dispatcher) Notify(ctx context.Context, userID, event, subject, body string) error {
	n := &model.Notification{
		ID:        uuid.New().String(),
		UserID:    userID,
		Event:     event,
		Subject:   subject,
		Body:      body,
		CreatedAt: time.Now().UTC(),
	}
	if err := d.store.InsertNotification(ctx, n); err != nil {
		d.logger.Warn("failed to store notification",
			zap.String("user_id", userID),
			zap.String("event", event),
			zap.Error(err))
	}

	if d.mailer == nil {
		return nil
	}

	user, err := d.store.GetUser(ctx, userID)
	if err != nil {
		d.logger.Warn("failed to resolve notification recipient",
			zap.String("user_id", userID),
			zap.Error(err))
		return nil
	}
	if err := d.mailer.SendEmail(user.Email, subject, body); err != nil {
		d.logger.Warn("failed to email notification",
			zap.String("user_id", userID),
			zap.String("event", event),
			zap.Error(err))
	}
	return nil
}

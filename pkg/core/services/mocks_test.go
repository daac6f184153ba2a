package services

import (
	"context"
	"sync"

	"github.com/volunhub/volunhub/pkg/core/model"
)

// mockNotifier records dispatched notifications.
type mockNotifier struct {
	mu    sync.Mutex
	sent  []model.Notification
	fail  error
}

func (m *mockNotifier) Notify(ctx context.Context, userID, event, subject, body string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.fail != nil {
		return m.fail
	}
	m.sent = append(m.sent, model.Notification{UserID: userID, Event: event, Subject: subject, Body: body})
	return nil
}

func (m *mockNotifier) sentTo(userID string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for _, s := range m.sent {
		if s.UserID == userID {
			n++
		}
	}
	return n
}

// mockAudit records appended audit records.
type mockAudit struct {
	mu      sync.Mutex
	records []model.AuditRecord
	fail    error
}

func (m *mockAudit) Record(ctx context.Context, rec *model.AuditRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.fail != nil {
		return m.fail
	}
	m.records = append(m.records, *rec)
	return nil
}

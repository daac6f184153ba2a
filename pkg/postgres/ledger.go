package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/volunhub/volunhub/pkg/core/model"
)

// RecordAttendance marks the request attended and brings its granted points
// to totalPoints by appending one signed delta entry. The request row is
// locked while the prior grant is summed, and the ledger append and the
// user's total update commit together: a lost update between the two would
// break the total-equals-sum invariant.
func (db *DB) RecordAttendance(ctx context.Context, requestID string, hours float64, totalPoints int, reason model.LedgerReason) (*model.PointsLedgerEntry, error) {
	tx, err := db.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	var volunteerID string
	err = tx.QueryRow(ctx, `
		SELECT volunteer_id FROM participation_requests WHERE id = $1 FOR UPDATE
	`, requestID).Scan(&volunteerID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, model.ErrNotFound
		}
		return nil, fmt.Errorf("failed to lock request: %w", err)
	}

	prior, revision, err := grantedSoFar(ctx, tx, requestID)
	if err != nil {
		return nil, err
	}

	entry := &model.PointsLedgerEntry{
		ID:        uuid.New().String(),
		UserID:    volunteerID,
		Points:    totalPoints - prior,
		Reason:    reason,
		RequestID: requestID,
		Revision:  revision + 1,
		CreatedAt: time.Now().UTC(),
	}

	if _, err := tx.Exec(ctx, `
		UPDATE participation_requests SET attended = TRUE, actual_hours = $2 WHERE id = $1
	`, requestID, hours); err != nil {
		return nil, fmt.Errorf("failed to update request: %w", err)
	}

	if err := appendEntry(ctx, tx, entry); err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}
	return entry, nil
}

// RetractAttendance clears the attended flag and appends an entry negating
// everything granted for the request so far.
func (db *DB) RetractAttendance(ctx context.Context, requestID string) (*model.PointsLedgerEntry, error) {
	tx, err := db.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	var volunteerID string
	err = tx.QueryRow(ctx, `
		SELECT volunteer_id FROM participation_requests WHERE id = $1 FOR UPDATE
	`, requestID).Scan(&volunteerID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, model.ErrNotFound
		}
		return nil, fmt.Errorf("failed to lock request: %w", err)
	}

	prior, revision, err := grantedSoFar(ctx, tx, requestID)
	if err != nil {
		return nil, err
	}

	entry := &model.PointsLedgerEntry{
		ID:        uuid.New().String(),
		UserID:    volunteerID,
		Points:    -prior,
		Reason:    model.ReasonAttendanceRetraction,
		RequestID: requestID,
		Revision:  revision + 1,
		CreatedAt: time.Now().UTC(),
	}

	if _, err := tx.Exec(ctx, `
		UPDATE participation_requests SET attended = FALSE, actual_hours = NULL WHERE id = $1
	`, requestID); err != nil {
		return nil, fmt.Errorf("failed to update request: %w", err)
	}

	if err := appendEntry(ctx, tx, entry); err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}
	return entry, nil
}

func grantedSoFar(ctx context.Context, tx pgx.Tx, requestID string) (sum, maxRevision int, err error) {
	err = tx.QueryRow(ctx, `
		SELECT COALESCE(SUM(points), 0), COALESCE(MAX(revision), 0)
		FROM points_ledger WHERE request_id = $1
	`, requestID).Scan(&sum, &maxRevision)
	if err != nil {
		return 0, 0, fmt.Errorf("failed to sum prior grants: %w", err)
	}
	return sum, maxRevision, nil
}

func appendEntry(ctx context.Context, tx pgx.Tx, entry *model.PointsLedgerEntry) error {
	if _, err := tx.Exec(ctx, `
		INSERT INTO points_ledger (id, user_id, points, reason, request_id, revision, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`, entry.ID, entry.UserID, entry.Points, entry.Reason, entry.RequestID, entry.Revision, entry.CreatedAt); err != nil {
		return fmt.Errorf("failed to append ledger entry: %w", err)
	}

	if _, err := tx.Exec(ctx, `
		UPDATE users SET total_points = total_points + $2 WHERE id = $1
	`, entry.UserID, entry.Points); err != nil {
		return fmt.Errorf("failed to update total points: %w", err)
	}
	return nil
}

// GetUser retrieves a user account.
func (db *DB) GetUser(ctx context.Context, id string) (*model.User, error) {
	var u model.User
	err := db.pool.QueryRow(ctx, `
		SELECT id, name, email, role, total_points, created_at FROM users WHERE id = $1
	`, id).Scan(&u.ID, &u.Name, &u.Email, &u.Role, &u.TotalPoints, &u.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, model.ErrNotFound
		}
		return nil, fmt.Errorf("failed to query user: %w", err)
	}
	return &u, nil
}

// InsertUser stores a new user account.
func (db *DB) InsertUser(ctx context.Context, u *model.User) error {
	_, err := db.pool.Exec(ctx, `
		INSERT INTO users (id, name, email, role, created_at)
		VALUES ($1, $2, $3, $4, $5)
	`, u.ID, u.Name, u.Email, u.Role, u.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to insert user: %w", err)
	}
	return nil
}

// UserLedger returns a user's ledger entries, newest first.
func (db *DB) UserLedger(ctx context.Context, userID string) ([]model.PointsLedgerEntry, error) {
	rows, err := db.pool.Query(ctx, `
		SELECT id, user_id, points, reason, request_id, revision, created_at
		FROM points_ledger WHERE user_id = $1 ORDER BY created_at DESC
	`, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to query ledger: %w", err)
	}
	defer rows.Close()

	var entries []model.PointsLedgerEntry
	for rows.Next() {
		var e model.PointsLedgerEntry
		if err := rows.Scan(&e.ID, &e.UserID, &e.Points, &e.Reason, &e.RequestID, &e.Revision, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan ledger entry: %w", err)
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating ledger: %w", err)
	}
	return entries, nil
}

// InsertNotification stores an in-app notification.
func (db *DB) InsertNotification(ctx context.Context, n *model.Notification) error {
	_, err := db.pool.Exec(ctx, `
		INSERT INTO notifications (id, user_id, event, subject, body, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`, n.ID, n.UserID, n.Event, n.Subject, n.Body, n.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to insert notification: %w", err)
	}
	return nil
}

// UnreadNotifications returns a user's unread in-app notifications.
func (db *DB) UnreadNotifications(ctx context.Context, userID string) ([]model.Notification, error) {
	rows, err := db.pool.Query(ctx, `
		SELECT id, user_id, event, subject, body, read, created_at
		FROM notifications WHERE user_id = $1 AND NOT read ORDER BY created_at DESC
	`, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to query notifications: %w", err)
	}
	defer rows.Close()

	var notifications []model.Notification
	for rows.Next() {
		var n model.Notification
		if err := rows.Scan(&n.ID, &n.UserID, &n.Event, &n.Subject, &n.Body, &n.Read, &n.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan notification: %w", err)
		}
		notifications = append(notifications, n)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating notifications: %w", err)
	}
	return notifications, nil
}

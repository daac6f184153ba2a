package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/volunhub/volunhub/pkg/core/model"
	"github.com/volunhub/volunhub/pkg/core/services"
)

const requestColumns = `id, shift_id, volunteer_id, status, notes, rejection_reason,
	COALESCE(decided_by::text, ''), decided_at, attended, actual_hours, created_at`

func scanRequest(row pgx.Row) (*model.ParticipationRequest, error) {
	var r model.ParticipationRequest
	err := row.Scan(&r.ID, &r.ShiftID, &r.VolunteerID, &r.Status, &r.Notes, &r.RejectionReason,
		&r.DecidedBy, &r.DecidedAt, &r.Attended, &r.ActualHours, &r.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, model.ErrNotFound
		}
		return nil, fmt.Errorf("failed to scan request: %w", err)
	}
	return &r, nil
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}

// GetRequest retrieves a participation request by id.
func (db *DB) GetRequest(ctx context.Context, id string) (*model.ParticipationRequest, error) {
	row := db.pool.QueryRow(ctx,
		`SELECT `+requestColumns+` FROM participation_requests WHERE id = $1`, id)
	return scanRequest(row)
}

// InsertRequest stores a new PENDING request. The partial unique index on
// (shift_id, volunteer_id) turns a second active request into
// ErrDuplicateApplication.
func (db *DB) InsertRequest(ctx context.Context, req *model.ParticipationRequest) error {
	_, err := db.pool.Exec(ctx, `
		INSERT INTO participation_requests (id, shift_id, volunteer_id, status, notes, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`, req.ID, req.ShiftID, req.VolunteerID, req.Status, req.Notes, req.CreatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return model.ErrDuplicateApplication
		}
		return fmt.Errorf("failed to insert request: %w", err)
	}
	return nil
}

// ApproveRequest flips a PENDING request to APPROVED and claims a capacity
// slot in one transaction. The slot claim is a single conditional update,
// never a read followed by a write, so two concurrent approvals can never
// both take the last slot.
func (db *DB) ApproveRequest(ctx context.Context, requestID, decidedBy string, decidedAt time.Time) (bool, error) {
	tx, err := db.pool.Begin(ctx)
	if err != nil {
		return false, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	var shiftID string
	err = tx.QueryRow(ctx, `
		UPDATE participation_requests
		SET status = 'APPROVED', decided_by = $2, decided_at = $3
		WHERE id = $1 AND status = 'PENDING'
		RETURNING shift_id
	`, requestID, decidedBy, decidedAt).Scan(&shiftID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			// Already decided by someone else.
			return false, nil
		}
		return false, fmt.Errorf("failed to update request: %w", err)
	}

	tag, err := tx.Exec(ctx, `
		UPDATE shifts SET approved_count = approved_count + 1
		WHERE id = $1 AND approved_count < max_volunteers AND deleted_at IS NULL
	`, shiftID)
	if err != nil {
		return false, fmt.Errorf("failed to claim capacity slot: %w", err)
	}
	if tag.RowsAffected() == 0 {
		// Shift full: roll the whole approval back.
		return false, model.ErrCapacityExceeded
	}

	if err := tx.Commit(ctx); err != nil {
		return false, fmt.Errorf("failed to commit transaction: %w", err)
	}
	return true, nil
}

// InsertApprovedRequest enrolls a volunteer directly as APPROVED through the
// same capacity guard and uniqueness constraint as a regular approval.
func (db *DB) InsertApprovedRequest(ctx context.Context, req *model.ParticipationRequest) error {
	tx, err := db.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	tag, err := tx.Exec(ctx, `
		UPDATE shifts SET approved_count = approved_count + 1
		WHERE id = $1 AND approved_count < max_volunteers AND deleted_at IS NULL
	`, req.ShiftID)
	if err != nil {
		return fmt.Errorf("failed to claim capacity slot: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return model.ErrCapacityExceeded
	}

	_, err = tx.Exec(ctx, `
		INSERT INTO participation_requests (id, shift_id, volunteer_id, status, decided_by, decided_at, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`, req.ID, req.ShiftID, req.VolunteerID, req.Status, req.DecidedBy, req.DecidedAt, req.CreatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return model.ErrDuplicateApplication
		}
		return fmt.Errorf("failed to insert request: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// TransitionRequest performs an optimistic status move, optionally releasing
// the shift's capacity slot in the same transaction.
func (db *DB) TransitionRequest(ctx context.Context, requestID string, from, to model.RequestStatus, d services.RequestDecision) (bool, error) {
	tx, err := db.pool.Begin(ctx)
	if err != nil {
		return false, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	var shiftID string
	var scanErr error
	if d.DecidedBy != "" {
		scanErr = tx.QueryRow(ctx, `
			UPDATE participation_requests
			SET status = $3, decided_by = $4, decided_at = $5, rejection_reason = $6
			WHERE id = $1 AND status = $2
			RETURNING shift_id
		`, requestID, from, to, d.DecidedBy, d.DecidedAt, d.RejectionReason).Scan(&shiftID)
	} else {
		// Cancellations are not decisions: the decided fields only belong
		// on APPROVED and REJECTED rows.
		scanErr = tx.QueryRow(ctx, `
			UPDATE participation_requests
			SET status = $3, decided_by = NULL, decided_at = NULL
			WHERE id = $1 AND status = $2
			RETURNING shift_id
		`, requestID, from, to).Scan(&shiftID)
	}
	if scanErr != nil {
		if errors.Is(scanErr, pgx.ErrNoRows) {
			return false, nil
		}
		return false, fmt.Errorf("failed to update request: %w", scanErr)
	}

	if d.ReleaseSlot {
		if _, err := tx.Exec(ctx, `
			UPDATE shifts SET approved_count = approved_count - 1
			WHERE id = $1 AND approved_count > 0
		`, shiftID); err != nil {
			return false, fmt.Errorf("failed to release capacity slot: %w", err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return false, fmt.Errorf("failed to commit transaction: %w", err)
	}
	return true, nil
}

// ListRequestsByShift returns all requests on a shift, oldest first.
func (db *DB) ListRequestsByShift(ctx context.Context, shiftID string) ([]model.ParticipationRequest, error) {
	return db.listRequests(ctx, `shift_id = $1`, shiftID)
}

// ListRequestsByVolunteer returns all requests filed by a volunteer.
func (db *DB) ListRequestsByVolunteer(ctx context.Context, volunteerID string) ([]model.ParticipationRequest, error) {
	return db.listRequests(ctx, `volunteer_id = $1`, volunteerID)
}

func (db *DB) listRequests(ctx context.Context, where string, arg any) ([]model.ParticipationRequest, error) {
	rows, err := db.pool.Query(ctx,
		`SELECT `+requestColumns+` FROM participation_requests WHERE `+where+` ORDER BY created_at`, arg)
	if err != nil {
		return nil, fmt.Errorf("failed to query requests: %w", err)
	}
	defer rows.Close()

	var requests []model.ParticipationRequest
	for rows.Next() {
		r, err := scanRequest(rows)
		if err != nil {
			return nil, err
		}
		requests = append(requests, *r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating requests: %w", err)
	}
	return requests, nil
}

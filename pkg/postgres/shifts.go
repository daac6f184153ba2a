package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/volunhub/volunhub/pkg/core/model"
)

const shiftColumns = `id, mission_id, start_time, end_time, min_volunteers,
	max_volunteers, approved_count, required_skill_ids, notes, deleted_at`

func scanShift(row pgx.Row) (*model.Shift, error) {
	var s model.Shift
	err := row.Scan(&s.ID, &s.MissionID, &s.StartTime, &s.EndTime, &s.MinVolunteers,
		&s.MaxVolunteers, &s.ApprovedCount, &s.RequiredSkills, &s.Notes, &s.DeletedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, model.ErrNotFound
		}
		return nil, fmt.Errorf("failed to scan shift: %w", err)
	}
	return &s, nil
}

// InsertShifts stores a batch of shifts in one transaction.
func (db *DB) InsertShifts(ctx context.Context, shifts []*model.Shift) error {
	if len(shifts) == 0 {
		return nil
	}

	tx, err := db.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	for _, s := range shifts {
		_, err := tx.Exec(ctx, `
			INSERT INTO shifts (id, mission_id, start_time, end_time, min_volunteers, max_volunteers, required_skill_ids, notes)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		`, s.ID, s.MissionID, s.StartTime, s.EndTime, s.MinVolunteers, s.MaxVolunteers, s.RequiredSkills, s.Notes)
		if err != nil {
			return fmt.Errorf("failed to insert shift: %w", err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// GetShift retrieves a shift by id, excluding soft-deleted ones.
func (db *DB) GetShift(ctx context.Context, id string) (*model.Shift, error) {
	row := db.pool.QueryRow(ctx,
		`SELECT `+shiftColumns+` FROM shifts WHERE id = $1 AND deleted_at IS NULL`, id)
	return scanShift(row)
}

// ListShifts returns the live shifts of a mission ordered by start time.
func (db *DB) ListShifts(ctx context.Context, missionID string) ([]model.Shift, error) {
	rows, err := db.pool.Query(ctx,
		`SELECT `+shiftColumns+` FROM shifts WHERE mission_id = $1 AND deleted_at IS NULL ORDER BY start_time`, missionID)
	if err != nil {
		return nil, fmt.Errorf("failed to query shifts: %w", err)
	}
	defer rows.Close()

	var shifts []model.Shift
	for rows.Next() {
		s, err := scanShift(rows)
		if err != nil {
			return nil, err
		}
		shifts = append(shifts, *s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating shifts: %w", err)
	}
	return shifts, nil
}

// GetSkills looks up skill catalog entries by id.
func (db *DB) GetSkills(ctx context.Context, ids []string) ([]model.Skill, error) {
	rows, err := db.pool.Query(ctx, `SELECT id, name FROM skills WHERE id = ANY($1)`, ids)
	if err != nil {
		return nil, fmt.Errorf("failed to query skills: %w", err)
	}
	defer rows.Close()

	var skills []model.Skill
	for rows.Next() {
		var s model.Skill
		if err := rows.Scan(&s.ID, &s.Name); err != nil {
			return nil, fmt.Errorf("failed to scan skill: %w", err)
		}
		skills = append(skills, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating skills: %w", err)
	}
	return skills, nil
}

// DeleteShiftCascade force-cancels the shift's PENDING/APPROVED requests and
// soft-deletes the shift in one transaction. Returns the affected requests.
func (db *DB) DeleteShiftCascade(ctx context.Context, shiftID string) ([]model.ParticipationRequest, error) {
	tx, err := db.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	rows, err := tx.Query(ctx, `
		SELECT id, shift_id, volunteer_id, status
		FROM participation_requests
		WHERE shift_id = $1 AND status IN ('PENDING', 'APPROVED')
		FOR UPDATE
	`, shiftID)
	if err != nil {
		return nil, fmt.Errorf("failed to query active requests: %w", err)
	}

	var canceled []model.ParticipationRequest
	for rows.Next() {
		var r model.ParticipationRequest
		if err := rows.Scan(&r.ID, &r.ShiftID, &r.VolunteerID, &r.Status); err != nil {
			rows.Close()
			return nil, fmt.Errorf("failed to scan request: %w", err)
		}
		canceled = append(canceled, r)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating requests: %w", err)
	}

	if _, err := tx.Exec(ctx, `
		UPDATE participation_requests
		SET status = 'CANCELED_BY_ADMIN', decided_by = NULL, decided_at = NULL
		WHERE shift_id = $1 AND status IN ('PENDING', 'APPROVED')
	`, shiftID); err != nil {
		return nil, fmt.Errorf("failed to cancel requests: %w", err)
	}

	if _, err := tx.Exec(ctx, `
		UPDATE shifts SET approved_count = 0, deleted_at = NOW() WHERE id = $1
	`, shiftID); err != nil {
		return nil, fmt.Errorf("failed to delete shift: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	for i := range canceled {
		canceled[i].Status = model.RequestCanceledByAdmin
	}
	return canceled, nil
}

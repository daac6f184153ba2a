package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/volunhub/volunhub/pkg/core/model"
)

const missionColumns = `id, title, COALESCE(department_id::text, ''), mission_type, status,
	start_time, end_time, COALESCE(created_by::text, ''), created_at, deleted_at`

func scanMission(row pgx.Row) (*model.Mission, error) {
	var m model.Mission
	err := row.Scan(&m.ID, &m.Title, &m.DepartmentID, &m.Type, &m.Status,
		&m.StartTime, &m.EndTime, &m.CreatedBy, &m.CreatedAt, &m.DeletedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, model.ErrNotFound
		}
		return nil, fmt.Errorf("failed to scan mission: %w", err)
	}
	return &m, nil
}

// InsertMission stores a new mission.
func (db *DB) InsertMission(ctx context.Context, m *model.Mission) error {
	_, err := db.pool.Exec(ctx, `
		INSERT INTO missions (id, title, department_id, mission_type, status, start_time, end_time, created_by, created_at)
		VALUES ($1, $2, NULLIF($3, '')::uuid, $4, $5, $6, $7, NULLIF($8, '')::uuid, $9)
	`, m.ID, m.Title, m.DepartmentID, m.Type, m.Status, m.StartTime, m.EndTime, m.CreatedBy, m.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to insert mission: %w", err)
	}
	return nil
}

// GetMission retrieves a mission by id, excluding soft-deleted ones.
func (db *DB) GetMission(ctx context.Context, id string) (*model.Mission, error) {
	row := db.pool.QueryRow(ctx,
		`SELECT `+missionColumns+` FROM missions WHERE id = $1 AND deleted_at IS NULL`, id)
	return scanMission(row)
}

// ListMissions returns all live missions, newest first.
func (db *DB) ListMissions(ctx context.Context) ([]model.Mission, error) {
	rows, err := db.pool.Query(ctx,
		`SELECT `+missionColumns+` FROM missions WHERE deleted_at IS NULL ORDER BY created_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("failed to query missions: %w", err)
	}
	defer rows.Close()

	var missions []model.Mission
	for rows.Next() {
		m, err := scanMission(rows)
		if err != nil {
			return nil, err
		}
		missions = append(missions, *m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating missions: %w", err)
	}
	return missions, nil
}

// UpdateMissionStatus performs the optimistic transition write: the status
// only changes if the row still holds the expected prior status.
func (db *DB) UpdateMissionStatus(ctx context.Context, id string, from, to model.MissionStatus) (bool, error) {
	tag, err := db.pool.Exec(ctx, `
		UPDATE missions SET status = $3
		WHERE id = $1 AND status = $2 AND deleted_at IS NULL
	`, id, from, to)
	if err != nil {
		return false, fmt.Errorf("failed to update mission status: %w", err)
	}
	return tag.RowsAffected() == 1, nil
}

// GetDepartment looks up a department catalog entry.
func (db *DB) GetDepartment(ctx context.Context, id string) (*model.Department, error) {
	var dep model.Department
	err := db.pool.QueryRow(ctx, `SELECT id, name FROM departments WHERE id = $1`, id).
		Scan(&dep.ID, &dep.Name)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, model.ErrNotFound
		}
		return nil, fmt.Errorf("failed to query department: %w", err)
	}
	return &dep, nil
}

// CountMissingAttendance returns how many APPROVED requests across the
// mission's live shifts have no attendance recorded.
func (db *DB) CountMissingAttendance(ctx context.Context, missionID string) (int, error) {
	var count int
	err := db.pool.QueryRow(ctx, `
		SELECT COUNT(*)
		FROM participation_requests pr
		JOIN shifts s ON s.id = pr.shift_id
		WHERE s.mission_id = $1
		  AND s.deleted_at IS NULL
		  AND pr.status = 'APPROVED'
		  AND NOT pr.attended
	`, missionID).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count missing attendance: %w", err)
	}
	return count, nil
}

// CancelActiveMissionRequests force-cancels every PENDING/APPROVED request
// on the mission's shifts and zeroes the shifts' approved counts, all in one
// transaction. Returns the affected requests with their new status.
func (db *DB) CancelActiveMissionRequests(ctx context.Context, missionID string) ([]model.ParticipationRequest, error) {
	tx, err := db.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	rows, err := tx.Query(ctx, `
		SELECT pr.id, pr.shift_id, pr.volunteer_id, pr.status
		FROM participation_requests pr
		JOIN shifts s ON s.id = pr.shift_id
		WHERE s.mission_id = $1
		  AND s.deleted_at IS NULL
		  AND pr.status IN ('PENDING', 'APPROVED')
		FOR UPDATE OF pr
	`, missionID)
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

	if len(canceled) > 0 {
		ids := make([]string, 0, len(canceled))
		for _, r := range canceled {
			ids = append(ids, r.ID)
		}
		if _, err := tx.Exec(ctx, `
			UPDATE participation_requests
			SET status = 'CANCELED_BY_ADMIN', decided_by = NULL, decided_at = NULL
			WHERE id = ANY($1)
		`, ids); err != nil {
			return nil, fmt.Errorf("failed to cancel requests: %w", err)
		}
	}

	// Every active request is gone, so every live shift is back to zero.
	if _, err := tx.Exec(ctx, `
		UPDATE shifts SET approved_count = 0 WHERE mission_id = $1 AND deleted_at IS NULL
	`, missionID); err != nil {
		return nil, fmt.Errorf("failed to reset approved counts: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	for i := range canceled {
		canceled[i].Status = model.RequestCanceledByAdmin
	}
	return canceled, nil
}

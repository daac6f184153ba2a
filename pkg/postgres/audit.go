package postgres

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/volunhub/volunhub/pkg/core/model"
)

// Record appends one audit line. The id is assigned here if the caller left
// it empty.
func (db *DB) Record(ctx context.Context, rec *model.AuditRecord) error {
	if rec.ID == "" {
		rec.ID = uuid.New().String()
	}
	_, err := db.pool.Exec(ctx, `
		INSERT INTO audit_log (id, actor_id, action, entity_type, entity_id, detail, created_at)
		VALUES ($1, NULLIF($2, '')::uuid, $3, $4, $5, $6, $7)
	`, rec.ID, rec.ActorID, rec.Action, rec.EntityType, rec.EntityID, rec.Detail, rec.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to insert audit record: %w", err)
	}
	return nil
}

// AuditTrail returns the audit lines touching one entity, oldest first.
func (db *DB) AuditTrail(ctx context.Context, entityType, entityID string) ([]model.AuditRecord, error) {
	rows, err := db.pool.Query(ctx, `
		SELECT id, COALESCE(actor_id::text, ''), action, entity_type, entity_id, detail, created_at
		FROM audit_log WHERE entity_type = $1 AND entity_id = $2 ORDER BY created_at
	`, entityType, entityID)
	if err != nil {
		return nil, fmt.Errorf("failed to query audit log: %w", err)
	}
	defer rows.Close()

	var records []model.AuditRecord
	for rows.Next() {
		var r model.AuditRecord
		if err := rows.Scan(&r.ID, &r.ActorID, &r.Action, &r.EntityType, &r.EntityID, &r.Detail, &r.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan audit record: %w", err)
		}
		records = append(records, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating audit log: %w", err)
	}
	return records, nil
}

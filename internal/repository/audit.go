package repository

import (
	"context"
	"fmt"

	"github.com/mmeshcher/gym-billing/internal/model"
)

// AuditFilter ограничивает выборку журнала действий. Пустые поля не фильтруют.
type AuditFilter struct {
	EntityType string
	EntityID   int64
	Limit      int
}

// CreateAuditLog добавляет запись в журнал действий.
func (r *PostgresRepository) CreateAuditLog(ctx context.Context, entry model.AuditLog) error {
	metadata := entry.Metadata
	if metadata == nil {
		metadata = map[string]any{}
	}

	_, err := r.pool.Exec(ctx,
		`INSERT INTO audit_logs (action_type, entity_type, entity_id, description, metadata)
		 VALUES ($1, $2, $3, $4, $5)`,
		entry.ActionType, entry.EntityType, entry.EntityID, entry.Description, metadata,
	)
	if err != nil {
		return fmt.Errorf("insert audit log: %w", err)
	}
	return nil
}

// ListAuditLogs возвращает записи журнала, новые первыми.
func (r *PostgresRepository) ListAuditLogs(ctx context.Context, f AuditFilter) ([]model.AuditLog, error) {
	limit := f.Limit
	if limit <= 0 || limit > 500 {
		limit = 100
	}

	rows, err := r.pool.Query(ctx,
		`SELECT id, action_type, entity_type, entity_id, description, metadata, created_at
		 FROM audit_logs
		 WHERE ($1::text = '' OR entity_type = $1)
		   AND ($2::bigint = 0 OR entity_id = $2)
		 ORDER BY created_at DESC, id DESC
		 LIMIT $3`,
		f.EntityType, f.EntityID, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("select audit logs: %w", err)
	}
	defer rows.Close()

	var res []model.AuditLog
	for rows.Next() {
		var e model.AuditLog
		if err := rows.Scan(&e.ID, &e.ActionType, &e.EntityType, &e.EntityID, &e.Description, &e.Metadata, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan audit log: %w", err)
		}
		res = append(res, e)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows error: %w", err)
	}

	return res, nil
}

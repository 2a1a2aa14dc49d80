package erasure

import (
	"context"
	"fmt"
	"time"
)

func (s *Store) CountPendingInteractions(ctx context.Context, scope Scope) (int64, error) {
	var count int64
	err := s.DB.QueryRow(ctx, `
    SELECT COUNT(1)
    FROM interactions
    WHERE tenant_id = $1 AND created_by = $2 AND deleted_at IS NULL
  `, scope.TenantID, scope.UserID).Scan(&count)
	return count, err
}

func (s *Store) FetchPendingInteractions(ctx context.Context, scope Scope, after Cursor, limit int) ([]InteractionRecord, error) {
	query := `
    SELECT id, created_at
    FROM interactions
    WHERE tenant_id = $1 AND created_by = $2 AND deleted_at IS NULL`
	args := []any{scope.TenantID, scope.UserID}
	if !after.Zero() {
		query += fmt.Sprintf(" AND (created_at, id) < ($%d, $%d)", len(args)+1, len(args)+2)
		args = append(args, after.CreatedAt, after.ID)
	}
	query += fmt.Sprintf(" ORDER BY created_at DESC, id DESC LIMIT $%d", len(args)+1)
	args = append(args, limit)

	rows, err := s.DB.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	return scanRecords(rows, func(id string, createdAt time.Time) InteractionRecord {
		return InteractionRecord{ID: id, CreatedAt: createdAt}
	})
}

func (s *Store) HardDeleteInteraction(ctx context.Context, tenantID, interactionID string) error {
	tx, err := s.DB.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, `
    DELETE FROM interactions
    WHERE tenant_id = $1 AND id = $2
  `, tenantID, interactionID); err != nil {
		return err
	}
	return tx.Commit(ctx)
}

// SoftDeleteInteraction tombstones the row and clears the description, the
// only free-text field that can carry personal detail.
func (s *Store) SoftDeleteInteraction(ctx context.Context, tenantID, interactionID string) error {
	tx, err := s.DB.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, `
    UPDATE interactions
    SET deleted_at = now(), description = ''
    WHERE tenant_id = $1 AND id = $2
  `, tenantID, interactionID); err != nil {
		return err
	}
	return tx.Commit(ctx)
}

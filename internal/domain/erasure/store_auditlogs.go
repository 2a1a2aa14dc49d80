package erasure

import (
	"context"
	"fmt"
	"time"
)

func (s *Store) CountActorAuditLogs(ctx context.Context, scope Scope) (int64, error) {
	var count int64
	err := s.DB.QueryRow(ctx, `
    SELECT COUNT(1)
    FROM audit_events
    WHERE tenant_id = $1 AND actor_user_id = $2
  `, scope.TenantID, scope.UserID).Scan(&count)
	return count, err
}

func (s *Store) FetchActorAuditLogs(ctx context.Context, scope Scope, after Cursor, limit int) ([]AuditLogRecord, error) {
	query := `
    SELECT id, created_at
    FROM audit_events
    WHERE tenant_id = $1 AND actor_user_id = $2`
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
	return scanRecords(rows, func(id string, createdAt time.Time) AuditLogRecord {
		return AuditLogRecord{ID: id, CreatedAt: createdAt}
	})
}

func (s *Store) HardDeleteAuditLog(ctx context.Context, tenantID, eventID string) error {
	tx, err := s.DB.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, `
    DELETE FROM audit_events
    WHERE tenant_id = $1 AND id = $2
  `, tenantID, eventID); err != nil {
		return err
	}
	return tx.Commit(ctx)
}

// AnonymizeAuditLog clears who acted; what happened to which entity stays.
func (s *Store) AnonymizeAuditLog(ctx context.Context, tenantID, eventID string) error {
	tx, err := s.DB.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, `
    UPDATE audit_events
    SET actor_user_id = NULL, details_json = NULL
    WHERE tenant_id = $1 AND id = $2
  `, tenantID, eventID); err != nil {
		return err
	}
	return tx.Commit(ctx)
}

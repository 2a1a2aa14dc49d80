package erasure

import (
	"context"
	"fmt"
	"time"
)

func (s *Store) CountPendingCustomers(ctx context.Context, scope Scope) (int64, error) {
	query := `
    SELECT COUNT(1)
    FROM customers
    WHERE tenant_id = $1 AND created_by = $2 AND deleted_at IS NULL AND anonymized_at IS NULL`
	args := []any{scope.TenantID, scope.UserID}
	if scope.CustomerType != "" {
		query += fmt.Sprintf(" AND customer_type = $%d", len(args)+1)
		args = append(args, scope.CustomerType)
	}

	var count int64
	err := s.DB.QueryRow(ctx, query, args...).Scan(&count)
	return count, err
}

func (s *Store) FetchPendingCustomers(ctx context.Context, scope Scope, after Cursor, limit int) ([]CustomerRecord, error) {
	query := `
    SELECT id, created_at
    FROM customers
    WHERE tenant_id = $1 AND created_by = $2 AND deleted_at IS NULL AND anonymized_at IS NULL`
	args := []any{scope.TenantID, scope.UserID}
	if scope.CustomerType != "" {
		query += fmt.Sprintf(" AND customer_type = $%d", len(args)+1)
		args = append(args, scope.CustomerType)
	}
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
	return scanRecords(rows, func(id string, createdAt time.Time) CustomerRecord {
		return CustomerRecord{ID: id, CreatedAt: createdAt}
	})
}

func (s *Store) CustomerHasDependents(ctx context.Context, tenantID, customerID string) (bool, error) {
	var hasDependents bool
	err := s.DB.QueryRow(ctx, `
    SELECT EXISTS (
      SELECT 1 FROM customer_products WHERE tenant_id = $1 AND customer_id = $2
    ) OR EXISTS (
      SELECT 1 FROM interactions WHERE tenant_id = $1 AND customer_id = $2 AND deleted_at IS NULL
    )
  `, tenantID, customerID).Scan(&hasDependents)
	return hasDependents, err
}

func (s *Store) HardDeleteCustomer(ctx context.Context, tenantID, customerID string) error {
	tx, err := s.DB.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, `
    DELETE FROM customers
    WHERE tenant_id = $1 AND id = $2
  `, tenantID, customerID); err != nil {
		return err
	}
	return tx.Commit(ctx)
}

func (s *Store) SoftDeleteCustomer(ctx context.Context, tenantID, customerID string) error {
	tx, err := s.DB.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, `
    UPDATE customers
    SET deleted_at = now()
    WHERE tenant_id = $1 AND id = $2
  `, tenantID, customerID); err != nil {
		return err
	}
	return tx.Commit(ctx)
}

// AnonymizeCustomer scrubs the identifying fields and keeps the row and id so
// references stay valid.
func (s *Store) AnonymizeCustomer(ctx context.Context, tenantID, customerID string) error {
	tx, err := s.DB.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, `
    UPDATE customers
    SET name = 'Deleted Customer',
        email = NULL,
        phone = NULL,
        address = NULL,
        domain = NULL,
        anonymized_at = now()
    WHERE tenant_id = $1 AND id = $2
  `, tenantID, customerID); err != nil {
		return err
	}
	return tx.Commit(ctx)
}

package erasure

import (
	"context"
	"fmt"
	"time"
)

func (s *Store) CountAssociations(ctx context.Context, scope Scope) (int64, error) {
	query := `
    SELECT COUNT(1)
    FROM customer_products cp
    JOIN customers c ON c.id = cp.customer_id
    WHERE cp.tenant_id = $1 AND c.created_by = $2`
	args := []any{scope.TenantID, scope.UserID}
	if scope.CustomerType != "" {
		query += fmt.Sprintf(" AND c.customer_type = $%d", len(args)+1)
		args = append(args, scope.CustomerType)
	}

	var count int64
	err := s.DB.QueryRow(ctx, query, args...).Scan(&count)
	return count, err
}

func (s *Store) FetchAssociations(ctx context.Context, scope Scope, after Cursor, limit int) ([]AssociationRecord, error) {
	query := `
    SELECT cp.id, cp.created_at
    FROM customer_products cp
    JOIN customers c ON c.id = cp.customer_id
    WHERE cp.tenant_id = $1 AND c.created_by = $2`
	args := []any{scope.TenantID, scope.UserID}
	if scope.CustomerType != "" {
		query += fmt.Sprintf(" AND c.customer_type = $%d", len(args)+1)
		args = append(args, scope.CustomerType)
	}
	if !after.Zero() {
		query += fmt.Sprintf(" AND (cp.created_at, cp.id) < ($%d, $%d)", len(args)+1, len(args)+2)
		args = append(args, after.CreatedAt, after.ID)
	}
	query += fmt.Sprintf(" ORDER BY cp.created_at DESC, cp.id DESC LIMIT $%d", len(args)+1)
	args = append(args, limit)

	rows, err := s.DB.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	return scanRecords(rows, func(id string, createdAt time.Time) AssociationRecord {
		return AssociationRecord{ID: id, CreatedAt: createdAt}
	})
}

func (s *Store) HardDeleteAssociation(ctx context.Context, tenantID, associationID string) error {
	tx, err := s.DB.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, `
    DELETE FROM customer_products
    WHERE tenant_id = $1 AND id = $2
  `, tenantID, associationID); err != nil {
		return err
	}
	return tx.Commit(ctx)
}

func (s *Store) CountPendingProducts(ctx context.Context, scope Scope) (int64, error) {
	var count int64
	err := s.DB.QueryRow(ctx, `
    SELECT COUNT(1)
    FROM products
    WHERE tenant_id = $1 AND created_by = $2 AND deleted_at IS NULL
  `, scope.TenantID, scope.UserID).Scan(&count)
	return count, err
}

func (s *Store) FetchPendingProducts(ctx context.Context, scope Scope, after Cursor, limit int) ([]ProductRecord, error) {
	query := `
    SELECT id, created_at
    FROM products
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
	return scanRecords(rows, func(id string, createdAt time.Time) ProductRecord {
		return ProductRecord{ID: id, CreatedAt: createdAt}
	})
}

func (s *Store) ProductHasExternalReferences(ctx context.Context, tenantID, productID, ownerUserID string) (bool, error) {
	var referenced bool
	err := s.DB.QueryRow(ctx, `
    SELECT EXISTS (
      SELECT 1
      FROM customer_products cp
      JOIN customers c ON c.id = cp.customer_id
      WHERE cp.tenant_id = $1 AND cp.product_id = $2 AND c.created_by <> $3
    ) OR EXISTS (
      SELECT 1
      FROM interactions i
      WHERE i.tenant_id = $1 AND i.product_id = $2 AND i.created_by <> $3 AND i.deleted_at IS NULL
    )
  `, tenantID, productID, ownerUserID).Scan(&referenced)
	return referenced, err
}

func (s *Store) HardDeleteProduct(ctx context.Context, tenantID, productID string) error {
	tx, err := s.DB.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, `
    DELETE FROM products
    WHERE tenant_id = $1 AND id = $2
  `, tenantID, productID); err != nil {
		return err
	}
	return tx.Commit(ctx)
}

func (s *Store) SoftDeleteProduct(ctx context.Context, tenantID, productID string) error {
	tx, err := s.DB.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, `
    UPDATE products
    SET deleted_at = now()
    WHERE tenant_id = $1 AND id = $2
  `, tenantID, productID); err != nil {
		return err
	}
	return tx.Commit(ctx)
}

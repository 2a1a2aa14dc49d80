package erasure

import (
	"context"
	"log/slog"
	"time"
)

type ProductStore interface {
	CountPendingProducts(ctx context.Context, scope Scope) (int64, error)
	FetchPendingProducts(ctx context.Context, scope Scope, after Cursor, limit int) ([]ProductRecord, error)
	// ProductHasExternalReferences reports whether another user's customer
	// still references the product via an association or interaction.
	ProductHasExternalReferences(ctx context.Context, tenantID, productID, ownerUserID string) (bool, error)
	HardDeleteProduct(ctx context.Context, tenantID, productID string) error
	SoftDeleteProduct(ctx context.Context, tenantID, productID string) error
}

type ProductStrategy struct {
	Store     ProductStore
	BatchSize int
}

func (s *ProductStrategy) Family() string { return FamilyProducts }

func (s *ProductStrategy) Run(ctx context.Context, scope Scope, retentionThreshold time.Time, report ReportFunc) (EntityDeletionResult, error) {
	total, err := s.Store.CountPendingProducts(ctx, scope)
	if err != nil {
		return EntityDeletionResult{}, err
	}

	fetch := func(ctx context.Context, after Cursor, limit int) ([]ProductRecord, error) {
		return s.Store.FetchPendingProducts(ctx, scope, after, limit)
	}

	apply := func(ctx context.Context, row ProductRecord) (Outcome, error) {
		referenced, err := s.Store.ProductHasExternalReferences(ctx, scope.TenantID, row.ID, scope.UserID)
		if err != nil {
			slog.Warn("product reference check failed", "productId", row.ID, "err", err)
			return 0, err
		}

		action := DecideProduct(RetentionContext{
			RecordCreatedAt:    row.CreatedAt,
			RetentionThreshold: retentionThreshold,
			HasDependents:      referenced,
		})

		switch action {
		case ActionSkip:
			slog.Info("product retained, referenced by other users", "productId", row.ID)
			return OutcomeSkipped, nil
		case ActionHardDelete:
			if err := s.Store.HardDeleteProduct(ctx, scope.TenantID, row.ID); err != nil {
				slog.Warn("product hard delete failed", "productId", row.ID, "err", err)
				return 0, err
			}
		default:
			if err := s.Store.SoftDeleteProduct(ctx, scope.TenantID, row.ID); err != nil {
				slog.Warn("product soft delete failed", "productId", row.ID, "err", err)
				return 0, err
			}
		}
		return OutcomeDeleted, nil
	}

	return Traverse(ctx, total, s.BatchSize, fetch, apply, report)
}

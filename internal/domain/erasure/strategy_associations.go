package erasure

import (
	"context"
	"log/slog"
	"time"
)

// AssociationStore covers explicit product links owned by the requesting
// user's customers. They are always hard-deleted.
type AssociationStore interface {
	CountAssociations(ctx context.Context, scope Scope) (int64, error)
	FetchAssociations(ctx context.Context, scope Scope, after Cursor, limit int) ([]AssociationRecord, error)
	HardDeleteAssociation(ctx context.Context, tenantID, associationID string) error
}

type AssociationStrategy struct {
	Store     AssociationStore
	BatchSize int
}

func (s *AssociationStrategy) Family() string { return FamilyAssociations }

func (s *AssociationStrategy) Run(ctx context.Context, scope Scope, _ time.Time, report ReportFunc) (EntityDeletionResult, error) {
	total, err := s.Store.CountAssociations(ctx, scope)
	if err != nil {
		return EntityDeletionResult{}, err
	}

	fetch := func(ctx context.Context, after Cursor, limit int) ([]AssociationRecord, error) {
		return s.Store.FetchAssociations(ctx, scope, after, limit)
	}

	apply := func(ctx context.Context, row AssociationRecord) (Outcome, error) {
		if err := s.Store.HardDeleteAssociation(ctx, scope.TenantID, row.ID); err != nil {
			slog.Warn("association delete failed", "associationId", row.ID, "err", err)
			return 0, err
		}
		return OutcomeDeleted, nil
	}

	return Traverse(ctx, total, s.BatchSize, fetch, apply, report)
}

package erasure

import (
	"context"
	"log/slog"
	"time"
)

type InteractionStore interface {
	CountPendingInteractions(ctx context.Context, scope Scope) (int64, error)
	FetchPendingInteractions(ctx context.Context, scope Scope, after Cursor, limit int) ([]InteractionRecord, error)
	HardDeleteInteraction(ctx context.Context, tenantID, interactionID string) error
	SoftDeleteInteraction(ctx context.Context, tenantID, interactionID string) error
}

type InteractionStrategy struct {
	Store     InteractionStore
	BatchSize int
}

func (s *InteractionStrategy) Family() string { return FamilyInteractions }

func (s *InteractionStrategy) Run(ctx context.Context, scope Scope, retentionThreshold time.Time, report ReportFunc) (EntityDeletionResult, error) {
	total, err := s.Store.CountPendingInteractions(ctx, scope)
	if err != nil {
		return EntityDeletionResult{}, err
	}

	fetch := func(ctx context.Context, after Cursor, limit int) ([]InteractionRecord, error) {
		return s.Store.FetchPendingInteractions(ctx, scope, after, limit)
	}

	apply := func(ctx context.Context, row InteractionRecord) (Outcome, error) {
		switch DecideInteraction(row.CreatedAt, retentionThreshold) {
		case ActionHardDelete:
			if err := s.Store.HardDeleteInteraction(ctx, scope.TenantID, row.ID); err != nil {
				slog.Warn("interaction hard delete failed", "interactionId", row.ID, "err", err)
				return 0, err
			}
		default:
			if err := s.Store.SoftDeleteInteraction(ctx, scope.TenantID, row.ID); err != nil {
				slog.Warn("interaction soft delete failed", "interactionId", row.ID, "err", err)
				return 0, err
			}
		}
		return OutcomeDeleted, nil
	}

	return Traverse(ctx, total, s.BatchSize, fetch, apply, report)
}

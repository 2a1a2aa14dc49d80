package erasure

import (
	"context"
	"log/slog"
	"time"
)

// CustomerStore is the data access the customer strategy needs. Pending means
// neither soft-deleted nor anonymized yet, so re-runs match fewer rows.
type CustomerStore interface {
	CountPendingCustomers(ctx context.Context, scope Scope) (int64, error)
	FetchPendingCustomers(ctx context.Context, scope Scope, after Cursor, limit int) ([]CustomerRecord, error)
	// CustomerHasDependents reads the pre-deletion state of other entity
	// families: explicit associations or non-deleted interactions.
	CustomerHasDependents(ctx context.Context, tenantID, customerID string) (bool, error)
	HardDeleteCustomer(ctx context.Context, tenantID, customerID string) error
	SoftDeleteCustomer(ctx context.Context, tenantID, customerID string) error
	AnonymizeCustomer(ctx context.Context, tenantID, customerID string) error
}

type CustomerStrategy struct {
	Store     CustomerStore
	BatchSize int
}

func (s *CustomerStrategy) Family() string { return FamilyCustomers }

func (s *CustomerStrategy) Run(ctx context.Context, scope Scope, retentionThreshold time.Time, report ReportFunc) (EntityDeletionResult, error) {
	total, err := s.Store.CountPendingCustomers(ctx, scope)
	if err != nil {
		return EntityDeletionResult{}, err
	}

	fetch := func(ctx context.Context, after Cursor, limit int) ([]CustomerRecord, error) {
		return s.Store.FetchPendingCustomers(ctx, scope, after, limit)
	}

	apply := func(ctx context.Context, row CustomerRecord) (Outcome, error) {
		hasDependents, err := s.Store.CustomerHasDependents(ctx, scope.TenantID, row.ID)
		if err != nil {
			slog.Warn("customer dependents check failed", "customerId", row.ID, "err", err)
			return 0, err
		}

		action := DecideCustomer(RetentionContext{
			RecordCreatedAt:    row.CreatedAt,
			RetentionThreshold: retentionThreshold,
			HasDependents:      hasDependents,
		})

		switch action {
		case ActionHardDelete:
			if err := s.Store.HardDeleteCustomer(ctx, scope.TenantID, row.ID); err != nil {
				slog.Warn("customer hard delete failed", "customerId", row.ID, "err", err)
				return 0, err
			}
			return OutcomeDeleted, nil
		case ActionSoftDelete:
			if err := s.Store.SoftDeleteCustomer(ctx, scope.TenantID, row.ID); err != nil {
				slog.Warn("customer soft delete failed", "customerId", row.ID, "err", err)
				return 0, err
			}
			return OutcomeDeleted, nil
		default:
			if err := s.Store.AnonymizeCustomer(ctx, scope.TenantID, row.ID); err != nil {
				slog.Warn("customer anonymization failed", "customerId", row.ID, "err", err)
				return 0, err
			}
			return OutcomeAnonymized, nil
		}
	}

	return Traverse(ctx, total, s.BatchSize, fetch, apply, report)
}

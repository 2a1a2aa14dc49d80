package erasure

import (
	"context"
	"log/slog"
	"time"
)

type AuditLogStore interface {
	CountActorAuditLogs(ctx context.Context, scope Scope) (int64, error)
	FetchActorAuditLogs(ctx context.Context, scope Scope, after Cursor, limit int) ([]AuditLogRecord, error)
	HardDeleteAuditLog(ctx context.Context, tenantID, eventID string) error
	// AnonymizeAuditLog nulls the identifying fields only; the action/entity
	// metadata stays for the compliance trail.
	AnonymizeAuditLog(ctx context.Context, tenantID, eventID string) error
}

// AuditLogStrategy runs on its own fixed window (AuditRetentionDays), not the
// configurable general retention.
type AuditLogStrategy struct {
	Store      AuditLogStore
	BatchSize  int
	WindowDays int
	// now is swappable in tests.
	now func() time.Time
}

func (s *AuditLogStrategy) Family() string { return FamilyAuditLogs }

func (s *AuditLogStrategy) Run(ctx context.Context, scope Scope, _ time.Time, report ReportFunc) (EntityDeletionResult, error) {
	days := s.WindowDays
	if days <= 0 {
		days = AuditRetentionDays
	}
	nowFn := s.now
	if nowFn == nil {
		nowFn = time.Now
	}
	window := nowFn().AddDate(0, 0, -days)

	total, err := s.Store.CountActorAuditLogs(ctx, scope)
	if err != nil {
		return EntityDeletionResult{}, err
	}

	fetch := func(ctx context.Context, after Cursor, limit int) ([]AuditLogRecord, error) {
		return s.Store.FetchActorAuditLogs(ctx, scope, after, limit)
	}

	apply := func(ctx context.Context, row AuditLogRecord) (Outcome, error) {
		switch DecideAuditLog(row.CreatedAt, window) {
		case ActionHardDelete:
			if err := s.Store.HardDeleteAuditLog(ctx, scope.TenantID, row.ID); err != nil {
				slog.Warn("audit log delete failed", "eventId", row.ID, "err", err)
				return 0, err
			}
			return OutcomeDeleted, nil
		default:
			if err := s.Store.AnonymizeAuditLog(ctx, scope.TenantID, row.ID); err != nil {
				slog.Warn("audit log anonymization failed", "eventId", row.ID, "err", err)
				return 0, err
			}
			return OutcomeAnonymized, nil
		}
	}

	return Traverse(ctx, total, s.BatchSize, fetch, apply, report)
}

package erasure

import "context"

// AccessScopeProvider resolves a job token into the caller's data-access
// scope. An error means the job cannot proceed.
type AccessScopeProvider interface {
	Resolve(ctx context.Context, token string) (AccessScope, error)
}

// RetentionPolicyProvider returns the configured general retention window in
// days. Orchestrator falls back to FallbackRetentionDays when it errors.
type RetentionPolicyProvider interface {
	RetentionDays(ctx context.Context, tenantID string) (int, error)
}

// RequestStatusStore persists status transitions. Implementations must
// tolerate repeated updates for the same request; callers treat failures as
// best-effort and log them.
type RequestStatusStore interface {
	UpdateStatus(ctx context.Context, requestID, status string, summary *DeletionSummary, errorMessage string) error
}

// AuditEvent is the compliance-trail record emitted at job boundaries.
type AuditEvent struct {
	TenantID  string
	ActorID   string
	Action    string
	RequestID string
	Details   map[string]any
}

// AuditSink receives audit events, best-effort.
type AuditSink interface {
	Log(ctx context.Context, event AuditEvent) error
}

// ProgressSink receives progress snapshots, best-effort.
type ProgressSink interface {
	UpdateProgress(ctx context.Context, requestID string, update ProgressUpdate) error
}

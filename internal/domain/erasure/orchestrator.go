package erasure

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"crm/internal/platform/metrics"
)

// Orchestrator drives one deletion job: resolve scope and retention window,
// run every strategy in dependency order, aggregate the summary, persist the
// terminal status and emit the audit trail. Strategies run sequentially so the
// dependents checks read consistent pre-deletion state and database load stays
// bounded.
type Orchestrator struct {
	Scopes     AccessScopeProvider
	Retention  RetentionPolicyProvider
	Statuses   RequestStatusStore
	Audit      AuditSink
	Progress   ProgressSink
	Strategies []Strategy
	Metrics    *metrics.Collector

	now func() time.Time
}

// Process reports per-record failures inside the summary; an error return
// means the job itself failed (status FAILED persisted) and the queue layer
// decides on retry. Retries are idempotent: already-erased rows no longer
// match the pending predicates.
func (o *Orchestrator) Process(ctx context.Context, job Job) (JobResult, error) {
	o.updateStatus(ctx, job.RequestID, StatusProcessing, nil, "")

	tracker := NewTracker(o.Progress, job.RequestID)
	tracker.Begin(ctx)

	access, err := o.Scopes.Resolve(ctx, job.Token)
	if err != nil {
		return o.fail(ctx, job, "", fmt.Errorf("resolve access scope: %w", err))
	}
	scope := Scope{TenantID: access.TenantID, UserID: job.UserID, CustomerType: access.CustomerType}

	days, err := o.Retention.RetentionDays(ctx, scope.TenantID)
	if err != nil || days <= 0 {
		slog.Warn("retention policy unavailable, using fallback", "tenantId", scope.TenantID, "err", err)
		days = FallbackRetentionDays
	}
	threshold := o.clock()().AddDate(0, 0, -days)

	summary := &DeletionSummary{}
	for _, strategy := range o.Strategies {
		res, err := strategy.Run(ctx, scope, threshold, tracker.Report(ctx))
		tracker.FinishStrategy()
		if err != nil {
			return o.fail(ctx, job, scope.TenantID, fmt.Errorf("%s strategy: %w", strategy.Family(), err))
		}
		summary.Merge(strategy.Family(), res)
		if res.Failed > 0 {
			summary.Errors = append(summary.Errors, ErrorEntry{
				Type:    strategy.Family(),
				Count:   res.Failed,
				Message: fmt.Sprintf("%d %s record(s) could not be erased", res.Failed, strategy.Family()),
			})
		}
	}

	status := summary.FinalStatus()
	o.updateStatus(ctx, job.RequestID, status, summary, "")

	event := EventDeletionCompleted
	if status == StatusPartiallyCompleted {
		event = EventDeletionPartiallyCompleted
	}
	o.audit(ctx, scope.TenantID, job, event, map[string]any{
		"totalRecords":    summary.TotalRecords,
		"deletedCount":    summary.DeletedCount,
		"anonymizedCount": summary.AnonymizedCount,
		"failedCount":     summary.FailedCount,
	})

	if o.Metrics != nil {
		o.Metrics.RecordErasure(summary.DeletedCount, summary.AnonymizedCount, summary.FailedCount)
	}

	slog.Info("deletion job finished",
		"requestId", job.RequestID,
		"status", status,
		"total", summary.TotalRecords,
		"deleted", summary.DeletedCount,
		"anonymized", summary.AnonymizedCount,
		"failed", summary.FailedCount,
	)
	return JobResult{Success: true, Summary: summary}, nil
}

func (o *Orchestrator) fail(ctx context.Context, job Job, tenantID string, err error) (JobResult, error) {
	slog.Error("deletion job failed", "requestId", job.RequestID, "err", err)
	o.updateStatus(ctx, job.RequestID, StatusFailed, nil, err.Error())
	o.audit(ctx, tenantID, job, EventDeletionFailed, map[string]any{"error": err.Error()})
	return JobResult{Success: false, Error: err.Error()}, err
}

func (o *Orchestrator) updateStatus(ctx context.Context, requestID, status string, summary *DeletionSummary, errorMessage string) {
	if o.Statuses == nil {
		return
	}
	if err := o.Statuses.UpdateStatus(ctx, requestID, status, summary, errorMessage); err != nil {
		slog.Warn("status update failed", "requestId", requestID, "status", status, "err", err)
	}
}

func (o *Orchestrator) audit(ctx context.Context, tenantID string, job Job, action string, details map[string]any) {
	if o.Audit == nil {
		return
	}
	event := AuditEvent{
		TenantID:  tenantID,
		ActorID:   job.UserID,
		Action:    action,
		RequestID: job.RequestID,
		Details:   details,
	}
	if err := o.Audit.Log(ctx, event); err != nil {
		slog.Warn("audit emit failed", "requestId", job.RequestID, "action", action, "err", err)
	}
}

func (o *Orchestrator) clock() func() time.Time {
	if o.now != nil {
		return o.now
	}
	return time.Now
}

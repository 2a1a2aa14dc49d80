package erasure

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"
)

type stubScopes struct {
	scope AccessScope
	err   error
}

func (s stubScopes) Resolve(context.Context, string) (AccessScope, error) {
	return s.scope, s.err
}

type stubRetention struct {
	days int
	err  error
}

func (s stubRetention) RetentionDays(context.Context, string) (int, error) {
	return s.days, s.err
}

type memoryStatusStore struct {
	statuses    []string
	lastSummary *DeletionSummary
	lastError   string
}

func (m *memoryStatusStore) UpdateStatus(_ context.Context, _ string, status string, summary *DeletionSummary, errorMessage string) error {
	m.statuses = append(m.statuses, status)
	if summary != nil {
		m.lastSummary = summary
	}
	if errorMessage != "" {
		m.lastError = errorMessage
	}
	return nil
}

type memoryAuditSink struct {
	events []AuditEvent
}

func (m *memoryAuditSink) Log(_ context.Context, event AuditEvent) error {
	m.events = append(m.events, event)
	return nil
}

type memoryProgressSink struct {
	updates []ProgressUpdate
}

func (m *memoryProgressSink) UpdateProgress(_ context.Context, _ string, update ProgressUpdate) error {
	m.updates = append(m.updates, update)
	return nil
}

// depletingCustomerStore behaves like the real one across re-runs: a mutated
// row no longer matches the pending predicate.
type depletingCustomerStore struct {
	fakeCustomerStore
}

func (d *depletingCustomerStore) remove(customerID string) {
	for i, r := range d.records {
		if r.ID == customerID {
			d.records = append(d.records[:i], d.records[i+1:]...)
			return
		}
	}
}

func (d *depletingCustomerStore) HardDeleteCustomer(ctx context.Context, tenantID, customerID string) error {
	if err := d.fakeCustomerStore.HardDeleteCustomer(ctx, tenantID, customerID); err != nil {
		return err
	}
	d.remove(customerID)
	return nil
}

func (d *depletingCustomerStore) SoftDeleteCustomer(ctx context.Context, tenantID, customerID string) error {
	if err := d.fakeCustomerStore.SoftDeleteCustomer(ctx, tenantID, customerID); err != nil {
		return err
	}
	d.remove(customerID)
	return nil
}

func (d *depletingCustomerStore) AnonymizeCustomer(ctx context.Context, tenantID, customerID string) error {
	if err := d.fakeCustomerStore.AnonymizeCustomer(ctx, tenantID, customerID); err != nil {
		return err
	}
	d.remove(customerID)
	return nil
}

func testOrchestrator(store CustomerStore, statuses *memoryStatusStore, audit *memoryAuditSink, progress *memoryProgressSink, now time.Time) *Orchestrator {
	o := &Orchestrator{
		Scopes:     stubScopes{scope: AccessScope{TenantID: "t1"}},
		Retention:  stubRetention{days: 2555},
		Statuses:   statuses,
		Audit:      audit,
		Strategies: []Strategy{&CustomerStrategy{Store: store, BatchSize: 1000}},
		now:        func() time.Time { return now },
	}
	// Assign only when non-nil so a nil *memoryProgressSink does not become a
	// non-nil ProgressSink interface value.
	if progress != nil {
		o.Progress = progress
	}
	return o
}

func TestProcessPartialCompletion(t *testing.T) {
	now := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)

	records := make([]CustomerRecord, 5)
	for i := range records {
		records[i] = CustomerRecord{ID: fmt.Sprintf("c%d", i+1), CreatedAt: now.AddDate(0, 0, -10-i)}
	}
	store := &fakeCustomerStore{
		records:    records,
		dependents: map[string]bool{},
		failIDs:    map[string]bool{"c3": true},
	}
	statuses := &memoryStatusStore{}
	audit := &memoryAuditSink{}

	o := testOrchestrator(store, statuses, audit, nil, now)
	result, err := o.Process(context.Background(), Job{RequestID: "req-1", UserID: "u1", Token: "tok"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !result.Success {
		t.Fatalf("expected success, got %+v", result)
	}

	summary := result.Summary
	if summary.TotalRecords != 5 || summary.AnonymizedCount != 4 || summary.FailedCount != 1 {
		t.Fatalf("unexpected summary %+v", summary)
	}
	if summary.FinalStatus() != StatusPartiallyCompleted {
		t.Fatalf("expected %s, got %s", StatusPartiallyCompleted, summary.FinalStatus())
	}
	if len(summary.Errors) != 1 || summary.Errors[0].Type != FamilyCustomers || summary.Errors[0].Count != 1 {
		t.Fatalf("unexpected errors %+v", summary.Errors)
	}

	if len(statuses.statuses) != 2 || statuses.statuses[0] != StatusProcessing || statuses.statuses[1] != StatusPartiallyCompleted {
		t.Fatalf("unexpected status transitions %v", statuses.statuses)
	}
	if len(audit.events) != 1 || audit.events[0].Action != EventDeletionPartiallyCompleted {
		t.Fatalf("unexpected audit events %+v", audit.events)
	}
}

func TestProcessRerunIsIdempotent(t *testing.T) {
	now := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)

	store := &depletingCustomerStore{fakeCustomerStore: fakeCustomerStore{
		records: []CustomerRecord{
			{ID: "old", CreatedAt: now.AddDate(0, 0, -3000)},
			{ID: "recent-a", CreatedAt: now.AddDate(0, 0, -10)},
			{ID: "recent-b", CreatedAt: now.AddDate(0, 0, -20)},
		},
		dependents: map[string]bool{},
		failIDs:    map[string]bool{},
	}}
	statuses := &memoryStatusStore{}

	o := testOrchestrator(store, statuses, &memoryAuditSink{}, nil, now)
	job := Job{RequestID: "req-1", UserID: "u1", Token: "tok"}

	first, err := o.Process(context.Background(), job)
	if err != nil {
		t.Fatalf("first run: %v", err)
	}
	if first.Summary.TotalRecords != 3 || first.Summary.FinalStatus() != StatusCompleted {
		t.Fatalf("first run summary %+v", first.Summary)
	}

	second, err := o.Process(context.Background(), job)
	if err != nil {
		t.Fatalf("second run: %v", err)
	}
	if second.Summary.TotalRecords != 0 {
		t.Fatalf("expected nothing left to erase, got %+v", second.Summary)
	}
	if second.Summary.FinalStatus() != StatusCompleted {
		t.Fatalf("expected %s on empty re-run, got %s", StatusCompleted, second.Summary.FinalStatus())
	}
}

func TestProcessScopeResolveFailure(t *testing.T) {
	statuses := &memoryStatusStore{}
	audit := &memoryAuditSink{}
	o := &Orchestrator{
		Scopes:    stubScopes{err: errors.New("token expired")},
		Retention: stubRetention{days: 2555},
		Statuses:  statuses,
		Audit:     audit,
	}

	result, err := o.Process(context.Background(), Job{RequestID: "req-1", UserID: "u1", Token: "bad"})
	if err == nil {
		t.Fatal("expected error")
	}
	if result.Success {
		t.Fatalf("expected failure result, got %+v", result)
	}
	if !strings.Contains(result.Error, "token expired") {
		t.Fatalf("unexpected result error %q", result.Error)
	}
	if len(statuses.statuses) != 2 || statuses.statuses[1] != StatusFailed {
		t.Fatalf("unexpected status transitions %v", statuses.statuses)
	}
	if statuses.lastError == "" {
		t.Fatal("expected error message persisted with FAILED status")
	}
	if len(audit.events) != 1 || audit.events[0].Action != EventDeletionFailed {
		t.Fatalf("unexpected audit events %+v", audit.events)
	}
}

type erroringStrategy struct {
	family string
	err    error
}

func (s erroringStrategy) Family() string { return s.family }

func (s erroringStrategy) Run(context.Context, Scope, time.Time, ReportFunc) (EntityDeletionResult, error) {
	return EntityDeletionResult{}, s.err
}

func TestProcessStrategyErrorFailsJob(t *testing.T) {
	statuses := &memoryStatusStore{}
	o := &Orchestrator{
		Scopes:     stubScopes{scope: AccessScope{TenantID: "t1"}},
		Retention:  stubRetention{days: 2555},
		Statuses:   statuses,
		Strategies: []Strategy{erroringStrategy{family: FamilyInteractions, err: errors.New("count query failed")}},
	}

	_, err := o.Process(context.Background(), Job{RequestID: "req-1", UserID: "u1"})
	if err == nil {
		t.Fatal("expected error")
	}
	if !strings.Contains(err.Error(), FamilyInteractions) {
		t.Fatalf("expected family in error, got %v", err)
	}
	if statuses.statuses[len(statuses.statuses)-1] != StatusFailed {
		t.Fatalf("unexpected status transitions %v", statuses.statuses)
	}
}

type thresholdCapturingStrategy struct {
	threshold time.Time
}

func (s *thresholdCapturingStrategy) Family() string { return FamilyCustomers }

func (s *thresholdCapturingStrategy) Run(_ context.Context, _ Scope, threshold time.Time, _ ReportFunc) (EntityDeletionResult, error) {
	s.threshold = threshold
	return EntityDeletionResult{}, nil
}

func TestProcessRetentionFallback(t *testing.T) {
	now := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	capture := &thresholdCapturingStrategy{}
	o := &Orchestrator{
		Scopes:     stubScopes{scope: AccessScope{TenantID: "t1"}},
		Retention:  stubRetention{err: errors.New("no policy row")},
		Statuses:   &memoryStatusStore{},
		Strategies: []Strategy{capture},
		now:        func() time.Time { return now },
	}

	if _, err := o.Process(context.Background(), Job{RequestID: "req-1", UserID: "u1"}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	want := now.AddDate(0, 0, -FallbackRetentionDays)
	if !capture.threshold.Equal(want) {
		t.Fatalf("threshold %v, want fallback %v", capture.threshold, want)
	}
}

func TestProcessAggregatesAcrossFamilies(t *testing.T) {
	now := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)

	customers := &fakeCustomerStore{
		records: []CustomerRecord{
			{ID: "old", CreatedAt: now.AddDate(0, 0, -3000)},
			{ID: "recent", CreatedAt: now.AddDate(0, 0, -10)},
		},
		dependents: map[string]bool{},
		failIDs:    map[string]bool{},
	}
	products := &fakeProductStore{
		records: []ProductRecord{
			{ID: "shared", CreatedAt: now.AddDate(0, 0, -3000)},
			{ID: "mine", CreatedAt: now.AddDate(0, 0, -10)},
		},
		referenced: map[string]bool{"shared": true},
	}
	auditLogs := &fakeAuditLogStore{
		records: []AuditLogRecord{
			{ID: "stale", CreatedAt: now.AddDate(0, 0, -400)},
			{ID: "fresh", CreatedAt: now.AddDate(0, 0, -30)},
		},
	}

	statuses := &memoryStatusStore{}
	o := &Orchestrator{
		Scopes:    stubScopes{scope: AccessScope{TenantID: "t1"}},
		Retention: stubRetention{days: 2555},
		Statuses:  statuses,
		Strategies: []Strategy{
			&CustomerStrategy{Store: customers, BatchSize: 1000},
			&ProductStrategy{Store: products, BatchSize: 1000},
			&AuditLogStrategy{Store: auditLogs, BatchSize: 1000, now: func() time.Time { return now }},
		},
		now: func() time.Time { return now },
	}

	result, err := o.Process(context.Background(), Job{RequestID: "req-1", UserID: "u1"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	summary := result.Summary
	if summary.TotalRecords != 5 || summary.DeletedCount != 3 || summary.AnonymizedCount != 2 || summary.FailedCount != 0 {
		t.Fatalf("unexpected summary %+v", summary)
	}
	if summary.Statistics.Customers == nil || summary.Statistics.Customers.Total != 2 {
		t.Fatalf("unexpected customer stats %+v", summary.Statistics.Customers)
	}
	if summary.Statistics.Products == nil || summary.Statistics.Products.Skipped != 1 {
		t.Fatalf("unexpected product stats %+v", summary.Statistics.Products)
	}
	if summary.Statistics.AuditLogs == nil || summary.Statistics.AuditLogs.Deleted != 1 || summary.Statistics.AuditLogs.Anonymized != 1 {
		t.Fatalf("unexpected audit stats %+v", summary.Statistics.AuditLogs)
	}
	if statuses.statuses[len(statuses.statuses)-1] != StatusCompleted {
		t.Fatalf("unexpected status transitions %v", statuses.statuses)
	}
}

func TestProcessEmitsProgress(t *testing.T) {
	now := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	store := &fakeCustomerStore{
		records: []CustomerRecord{
			{ID: "a", CreatedAt: now.AddDate(0, 0, -10)},
			{ID: "b", CreatedAt: now.AddDate(0, 0, -20)},
		},
		dependents: map[string]bool{},
		failIDs:    map[string]bool{},
	}
	progress := &memoryProgressSink{}

	o := testOrchestrator(store, &memoryStatusStore{}, &memoryAuditSink{}, progress, now)
	if _, err := o.Process(context.Background(), Job{RequestID: "req-1", UserID: "u1"}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(progress.updates) < 2 {
		t.Fatalf("expected initial and batch updates, got %d", len(progress.updates))
	}
	if progress.updates[0].Processed != 0 || progress.updates[0].Total != 0 {
		t.Fatalf("expected zeroed initial update, got %+v", progress.updates[0])
	}
	last := progress.updates[len(progress.updates)-1]
	if last.Processed != 2 || last.Total != 2 {
		t.Fatalf("unexpected final update %+v", last)
	}
}

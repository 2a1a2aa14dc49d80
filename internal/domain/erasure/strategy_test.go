package erasure

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"
)

type fakeCustomerStore struct {
	records    []CustomerRecord
	dependents map[string]bool
	failIDs    map[string]bool

	hardDeleted []string
	softDeleted []string
	anonymized  []string
}

func (f *fakeCustomerStore) CountPendingCustomers(context.Context, Scope) (int64, error) {
	return int64(len(f.records)), nil
}

func (f *fakeCustomerStore) FetchPendingCustomers(_ context.Context, _ Scope, after Cursor, limit int) ([]CustomerRecord, error) {
	return pageAfter(f.records, after, limit), nil
}

func (f *fakeCustomerStore) CustomerHasDependents(_ context.Context, _, customerID string) (bool, error) {
	return f.dependents[customerID], nil
}

func (f *fakeCustomerStore) HardDeleteCustomer(_ context.Context, _, customerID string) error {
	if f.failIDs[customerID] {
		return errors.New("deadlock detected")
	}
	f.hardDeleted = append(f.hardDeleted, customerID)
	return nil
}

func (f *fakeCustomerStore) SoftDeleteCustomer(_ context.Context, _, customerID string) error {
	if f.failIDs[customerID] {
		return errors.New("deadlock detected")
	}
	f.softDeleted = append(f.softDeleted, customerID)
	return nil
}

func (f *fakeCustomerStore) AnonymizeCustomer(_ context.Context, _, customerID string) error {
	if f.failIDs[customerID] {
		return errors.New("deadlock detected")
	}
	f.anonymized = append(f.anonymized, customerID)
	return nil
}

func pageAfter[T Keyed](records []T, after Cursor, limit int) []T {
	start := 0
	if !after.Zero() {
		for i, r := range records {
			if r.Key().ID == after.ID {
				start = i + 1
				break
			}
		}
	}
	end := start + limit
	if end > len(records) {
		end = len(records)
	}
	// Return a copy so stores that mutate their records mid-page (like
	// depletingCustomerStore) cannot corrupt the page being iterated.
	page := make([]T, end-start)
	copy(page, records[start:end])
	return page
}

func TestCustomerStrategyAppliesPolicy(t *testing.T) {
	now := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	threshold := now.AddDate(0, 0, -2555)

	store := &fakeCustomerStore{
		records: []CustomerRecord{
			{ID: "with-deps", CreatedAt: now.AddDate(0, 0, -3000)},
			{ID: "old", CreatedAt: now.AddDate(0, 0, -3000)},
			{ID: "recent", CreatedAt: now.AddDate(0, 0, -10)},
		},
		dependents: map[string]bool{"with-deps": true},
		failIDs:    map[string]bool{},
	}
	strategy := &CustomerStrategy{Store: store, BatchSize: 1000}

	res, err := strategy.Run(context.Background(), Scope{TenantID: "t1", UserID: "u1"}, threshold, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Total != 3 || res.Deleted != 2 || res.Anonymized != 1 || res.Failed != 0 {
		t.Fatalf("unexpected result %+v", res)
	}
	if len(store.softDeleted) != 1 || store.softDeleted[0] != "with-deps" {
		t.Fatalf("expected with-deps soft-deleted, got %v", store.softDeleted)
	}
	if len(store.hardDeleted) != 1 || store.hardDeleted[0] != "old" {
		t.Fatalf("expected old hard-deleted, got %v", store.hardDeleted)
	}
	if len(store.anonymized) != 1 || store.anonymized[0] != "recent" {
		t.Fatalf("expected recent anonymized, got %v", store.anonymized)
	}
}

func TestCustomerStrategyRecordFailureDoesNotAbort(t *testing.T) {
	now := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	threshold := now.AddDate(0, 0, -2555)

	records := make([]CustomerRecord, 5)
	for i := range records {
		records[i] = CustomerRecord{ID: fmt.Sprintf("c%d", i+1), CreatedAt: now.AddDate(0, 0, -10-i)}
	}
	store := &fakeCustomerStore{
		records:    records,
		dependents: map[string]bool{},
		failIDs:    map[string]bool{"c3": true},
	}
	strategy := &CustomerStrategy{Store: store, BatchSize: 1000}

	res, err := strategy.Run(context.Background(), Scope{TenantID: "t1", UserID: "u1"}, threshold, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Total != 5 || res.Anonymized != 4 || res.Failed != 1 {
		t.Fatalf("unexpected result %+v", res)
	}
}

type fakeProductStore struct {
	records    []ProductRecord
	referenced map[string]bool

	hardDeleted []string
	softDeleted []string
}

func (f *fakeProductStore) CountPendingProducts(context.Context, Scope) (int64, error) {
	return int64(len(f.records)), nil
}

func (f *fakeProductStore) FetchPendingProducts(_ context.Context, _ Scope, after Cursor, limit int) ([]ProductRecord, error) {
	return pageAfter(f.records, after, limit), nil
}

func (f *fakeProductStore) ProductHasExternalReferences(_ context.Context, _, productID, _ string) (bool, error) {
	return f.referenced[productID], nil
}

func (f *fakeProductStore) HardDeleteProduct(_ context.Context, _, productID string) error {
	f.hardDeleted = append(f.hardDeleted, productID)
	return nil
}

func (f *fakeProductStore) SoftDeleteProduct(_ context.Context, _, productID string) error {
	f.softDeleted = append(f.softDeleted, productID)
	return nil
}

func TestProductStrategySkipsReferencedProducts(t *testing.T) {
	now := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	threshold := now.AddDate(0, 0, -2555)

	store := &fakeProductStore{
		records: []ProductRecord{
			{ID: "shared", CreatedAt: now.AddDate(0, 0, -3000)},
			{ID: "old", CreatedAt: now.AddDate(0, 0, -3000)},
			{ID: "recent", CreatedAt: now.AddDate(0, 0, -10)},
		},
		referenced: map[string]bool{"shared": true},
	}
	strategy := &ProductStrategy{Store: store, BatchSize: 1000}

	res, err := strategy.Run(context.Background(), Scope{TenantID: "t1", UserID: "u1"}, threshold, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Total != 2 || res.Deleted != 2 || res.Skipped != 1 {
		t.Fatalf("unexpected result %+v", res)
	}
	if len(store.hardDeleted) != 1 || store.hardDeleted[0] != "old" {
		t.Fatalf("expected old hard-deleted, got %v", store.hardDeleted)
	}
	if len(store.softDeleted) != 1 || store.softDeleted[0] != "recent" {
		t.Fatalf("expected recent soft-deleted, got %v", store.softDeleted)
	}
}

type fakeAuditLogStore struct {
	records []AuditLogRecord

	deleted    []string
	anonymized []string
}

func (f *fakeAuditLogStore) CountActorAuditLogs(context.Context, Scope) (int64, error) {
	return int64(len(f.records)), nil
}

func (f *fakeAuditLogStore) FetchActorAuditLogs(_ context.Context, _ Scope, after Cursor, limit int) ([]AuditLogRecord, error) {
	return pageAfter(f.records, after, limit), nil
}

func (f *fakeAuditLogStore) HardDeleteAuditLog(_ context.Context, _, eventID string) error {
	f.deleted = append(f.deleted, eventID)
	return nil
}

func (f *fakeAuditLogStore) AnonymizeAuditLog(_ context.Context, _, eventID string) error {
	f.anonymized = append(f.anonymized, eventID)
	return nil
}

func TestAuditLogStrategySplitsOnFixedWindow(t *testing.T) {
	now := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)

	var records []AuditLogRecord
	for i := 0; i < 50; i++ {
		records = append(records, AuditLogRecord{
			ID:        fmt.Sprintf("old-%02d", i),
			CreatedAt: now.AddDate(0, 0, -400-i),
		})
	}
	for i := 0; i < 45; i++ {
		records = append(records, AuditLogRecord{
			ID:        fmt.Sprintf("recent-%02d", i),
			CreatedAt: now.AddDate(0, 0, -30-i),
		})
	}

	store := &fakeAuditLogStore{records: records}
	strategy := &AuditLogStrategy{
		Store:     store,
		BatchSize: 1000,
		now:       func() time.Time { return now },
	}

	res, err := strategy.Run(context.Background(), Scope{TenantID: "t1", UserID: "u1"}, time.Time{}, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Total != 95 || res.Deleted != 50 || res.Anonymized != 45 || res.Failed != 0 {
		t.Fatalf("unexpected result %+v", res)
	}
	if len(store.deleted) != 50 || len(store.anonymized) != 45 {
		t.Fatalf("store state mismatch: deleted=%d anonymized=%d", len(store.deleted), len(store.anonymized))
	}
}

package erasure

import (
	"testing"
	"time"
)

func TestDecideCustomer(t *testing.T) {
	threshold := time.Date(2019, 1, 1, 0, 0, 0, 0, time.UTC)

	cases := []struct {
		name          string
		createdAt     time.Time
		hasDependents bool
		want          Action
	}{
		{"dependents force soft delete", threshold.AddDate(-10, 0, 0), true, ActionSoftDelete},
		{"dependents beat recency", threshold.AddDate(1, 0, 0), true, ActionSoftDelete},
		{"old without dependents", threshold.AddDate(0, 0, -1), false, ActionHardDelete},
		{"recent without dependents", threshold.AddDate(0, 0, 1), false, ActionAnonymize},
		{"created exactly at threshold", threshold, false, ActionAnonymize},
	}
	for _, tc := range cases {
		got := DecideCustomer(RetentionContext{
			RecordCreatedAt:    tc.createdAt,
			RetentionThreshold: threshold,
			HasDependents:      tc.hasDependents,
		})
		if got != tc.want {
			t.Fatalf("%s: got %s, want %s", tc.name, got, tc.want)
		}
	}
}

func TestDecideInteraction(t *testing.T) {
	threshold := time.Date(2019, 1, 1, 0, 0, 0, 0, time.UTC)

	if got := DecideInteraction(threshold.AddDate(0, 0, -1), threshold); got != ActionHardDelete {
		t.Fatalf("old interaction: got %s", got)
	}
	if got := DecideInteraction(threshold.AddDate(0, 0, 1), threshold); got != ActionSoftDelete {
		t.Fatalf("recent interaction: got %s", got)
	}
	if got := DecideInteraction(threshold, threshold); got != ActionSoftDelete {
		t.Fatalf("boundary interaction: got %s", got)
	}
}

func TestDecideProduct(t *testing.T) {
	threshold := time.Date(2019, 1, 1, 0, 0, 0, 0, time.UTC)

	cases := []struct {
		name          string
		createdAt     time.Time
		hasDependents bool
		want          Action
	}{
		{"referenced elsewhere is kept", threshold.AddDate(-5, 0, 0), true, ActionSkip},
		{"old unreferenced", threshold.AddDate(0, 0, -1), false, ActionHardDelete},
		{"recent unreferenced", threshold.AddDate(0, 0, 1), false, ActionSoftDelete},
	}
	for _, tc := range cases {
		got := DecideProduct(RetentionContext{
			RecordCreatedAt:    tc.createdAt,
			RetentionThreshold: threshold,
			HasDependents:      tc.hasDependents,
		})
		if got != tc.want {
			t.Fatalf("%s: got %s, want %s", tc.name, got, tc.want)
		}
	}
}

func TestDecideAuditLog(t *testing.T) {
	window := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)

	if got := DecideAuditLog(window.AddDate(0, 0, -1), window); got != ActionHardDelete {
		t.Fatalf("old audit entry: got %s", got)
	}
	if got := DecideAuditLog(window.AddDate(0, 0, 1), window); got != ActionAnonymize {
		t.Fatalf("recent audit entry: got %s", got)
	}
	if got := DecideAuditLog(window, window); got != ActionAnonymize {
		t.Fatalf("boundary audit entry: got %s", got)
	}
}

func TestDecideAssociation(t *testing.T) {
	if got := DecideAssociation(); got != ActionHardDelete {
		t.Fatalf("association: got %s", got)
	}
}

// Ages relative to a 2555-day window: a record far past it is removed, one far
// inside it is anonymized or soft-deleted, one sitting near the edge follows
// the strict before-threshold comparison.
func TestDecisionsAcrossRecordAges(t *testing.T) {
	now := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	threshold := now.AddDate(0, 0, -2555)

	old := now.AddDate(0, 0, -3000)
	edge := now.AddDate(0, 0, -2555)
	recent := now.AddDate(0, 0, -10)

	if got := DecideCustomer(RetentionContext{RecordCreatedAt: old, RetentionThreshold: threshold}); got != ActionHardDelete {
		t.Fatalf("3000-day-old customer: got %s", got)
	}
	if got := DecideCustomer(RetentionContext{RecordCreatedAt: edge, RetentionThreshold: threshold}); got != ActionAnonymize {
		t.Fatalf("edge customer: got %s", got)
	}
	if got := DecideCustomer(RetentionContext{RecordCreatedAt: recent, RetentionThreshold: threshold}); got != ActionAnonymize {
		t.Fatalf("10-day-old customer: got %s", got)
	}

	if got := DecideInteraction(old, threshold); got != ActionHardDelete {
		t.Fatalf("3000-day-old interaction: got %s", got)
	}
	if got := DecideInteraction(recent, threshold); got != ActionSoftDelete {
		t.Fatalf("10-day-old interaction: got %s", got)
	}

	if got := DecideProduct(RetentionContext{RecordCreatedAt: old, RetentionThreshold: threshold}); got != ActionHardDelete {
		t.Fatalf("3000-day-old product: got %s", got)
	}
	if got := DecideProduct(RetentionContext{RecordCreatedAt: recent, RetentionThreshold: threshold}); got != ActionSoftDelete {
		t.Fatalf("10-day-old product: got %s", got)
	}
}

package erasure

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"
)

// pageFetcher serves records out of a slice the way a keyset query would:
// everything strictly after the cursor, newest first, capped at limit.
type pageFetcher struct {
	records []CustomerRecord
	fetches int
}

func (f *pageFetcher) fetch(_ context.Context, after Cursor, limit int) ([]CustomerRecord, error) {
	f.fetches++
	start := 0
	if !after.Zero() {
		for i, r := range f.records {
			if r.ID == after.ID {
				start = i + 1
				break
			}
		}
	}
	end := start + limit
	if end > len(f.records) {
		end = len(f.records)
	}
	return f.records[start:end], nil
}

func makeRecords(n int) []CustomerRecord {
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	records := make([]CustomerRecord, n)
	for i := range records {
		records[i] = CustomerRecord{
			ID:        fmt.Sprintf("c-%06d", n-i),
			CreatedAt: base.Add(-time.Duration(i) * time.Minute),
		}
	}
	return records
}

func TestTraverseBatchCounts(t *testing.T) {
	cases := []struct {
		records     int
		wantFetches int
	}{
		{0, 0},
		{999, 1},
		{1000, 1},
		{1001, 2},
		{2500, 3},
	}
	for _, tc := range cases {
		fetcher := &pageFetcher{records: makeRecords(tc.records)}
		apply := func(context.Context, CustomerRecord) (Outcome, error) {
			return OutcomeDeleted, nil
		}

		res, err := Traverse(context.Background(), int64(tc.records), 1000, fetcher.fetch, apply, nil)
		if err != nil {
			t.Fatalf("%d records: unexpected error: %v", tc.records, err)
		}
		if fetcher.fetches != tc.wantFetches {
			t.Fatalf("%d records: got %d fetches, want %d", tc.records, fetcher.fetches, tc.wantFetches)
		}
		if res.Total != int64(tc.records) || res.Deleted != int64(tc.records) {
			t.Fatalf("%d records: unexpected result %+v", tc.records, res)
		}
	}
}

func TestTraverseContinuesPastRecordFailures(t *testing.T) {
	fetcher := &pageFetcher{records: makeRecords(5)}
	failID := fetcher.records[2].ID

	apply := func(_ context.Context, row CustomerRecord) (Outcome, error) {
		if row.ID == failID {
			return 0, errors.New("deadlock detected")
		}
		return OutcomeDeleted, nil
	}

	res, err := Traverse(context.Background(), 5, 1000, fetcher.fetch, apply, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Total != 5 || res.Deleted != 4 || res.Failed != 1 {
		t.Fatalf("unexpected result %+v", res)
	}
	if res.Total != res.Deleted+res.Anonymized+res.Failed {
		t.Fatalf("counter invariant broken: %+v", res)
	}
}

func TestTraverseSkippedStaysOutsideTotal(t *testing.T) {
	fetcher := &pageFetcher{records: makeRecords(4)}
	skipID := fetcher.records[1].ID

	apply := func(_ context.Context, row CustomerRecord) (Outcome, error) {
		if row.ID == skipID {
			return OutcomeSkipped, nil
		}
		return OutcomeAnonymized, nil
	}

	res, err := Traverse(context.Background(), 4, 1000, fetcher.fetch, apply, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Total != 3 || res.Anonymized != 3 || res.Skipped != 1 {
		t.Fatalf("unexpected result %+v", res)
	}
}

func TestTraverseFetchErrorAborts(t *testing.T) {
	fetchErr := errors.New("connection reset")
	fetch := func(context.Context, Cursor, int) ([]CustomerRecord, error) {
		return nil, fetchErr
	}
	apply := func(context.Context, CustomerRecord) (Outcome, error) {
		return OutcomeDeleted, nil
	}

	if _, err := Traverse(context.Background(), 10, 1000, fetch, apply, nil); !errors.Is(err, fetchErr) {
		t.Fatalf("expected fetch error, got %v", err)
	}
}

func TestTraverseStopsWhenCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())

	fetcher := &pageFetcher{records: makeRecords(2500)}
	apply := func(context.Context, CustomerRecord) (Outcome, error) {
		return OutcomeDeleted, nil
	}
	report := func(processed, total int64) {
		cancel()
	}

	_, err := Traverse(ctx, 2500, 1000, fetcher.fetch, apply, report)
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
	if fetcher.fetches != 1 {
		t.Fatalf("expected 1 fetch before cancellation, got %d", fetcher.fetches)
	}
}

func TestTraverseReportsAfterEachBatch(t *testing.T) {
	fetcher := &pageFetcher{records: makeRecords(2500)}
	apply := func(context.Context, CustomerRecord) (Outcome, error) {
		return OutcomeDeleted, nil
	}

	var snapshots [][2]int64
	report := func(processed, total int64) {
		snapshots = append(snapshots, [2]int64{processed, total})
	}

	if _, err := Traverse(context.Background(), 2500, 1000, fetcher.fetch, apply, report); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	want := [][2]int64{{1000, 2500}, {2000, 2500}, {2500, 2500}}
	if len(snapshots) != len(want) {
		t.Fatalf("got %d progress reports, want %d", len(snapshots), len(want))
	}
	for i := range want {
		if snapshots[i] != want[i] {
			t.Fatalf("report %d: got %v, want %v", i, snapshots[i], want[i])
		}
	}
}

package erasure

import "context"

// Keyed is any record the traversal can resume after.
type Keyed interface {
	Key() Cursor
}

// Outcome classifies one successfully applied record.
type Outcome int

const (
	OutcomeDeleted Outcome = iota
	OutcomeAnonymized
	OutcomeSkipped
)

type FetchFunc[T Keyed] func(ctx context.Context, after Cursor, limit int) ([]T, error)

// ApplyFunc mutates a single record inside its own transaction. A returned
// error marks the record failed; the traversal continues.
type ApplyFunc[T Keyed] func(ctx context.Context, row T) (Outcome, error)

type ReportFunc func(processed, total int64)

// Traverse walks every record counted up-front in bounded batches. total is
// the count snapshot taken before the walk: it is the progress denominator and
// the iteration bound, so rows inserted after the snapshot are not visited.
// The loop stops early on a short batch and checks cancellation before each
// fetch. Fetch errors abort the strategy; apply errors only fail the record.
func Traverse[T Keyed](ctx context.Context, total int64, batchSize int, fetch FetchFunc[T], apply ApplyFunc[T], report ReportFunc) (EntityDeletionResult, error) {
	var res EntityDeletionResult
	if batchSize <= 0 {
		batchSize = DefaultBatchSize
	}

	var visited int64
	var after Cursor
	for visited < total {
		if err := ctx.Err(); err != nil {
			return res, err
		}

		rows, err := fetch(ctx, after, batchSize)
		if err != nil {
			return res, err
		}
		if len(rows) == 0 {
			break
		}

		for _, row := range rows {
			outcome, err := apply(ctx, row)
			visited++
			switch {
			case err != nil:
				res.Total++
				res.Failed++
			case outcome == OutcomeDeleted:
				res.Total++
				res.Deleted++
			case outcome == OutcomeAnonymized:
				res.Total++
				res.Anonymized++
			case outcome == OutcomeSkipped:
				res.Skipped++
			}
			after = row.Key()
		}

		if report != nil {
			report(visited, total)
		}
		if len(rows) < batchSize {
			break
		}
	}
	return res, nil
}

package erasure

import (
	"context"
	"log/slog"
	"time"
)

// Tracker folds per-strategy progress into job-wide snapshots and pushes them
// to the sink. Sink failures are logged and never slow the deletion loop.
type Tracker struct {
	sink      ProgressSink
	requestID string
	startedAt time.Time

	baseProcessed int64
	baseTotal     int64
	lastProcessed int64
	lastTotal     int64
}

func NewTracker(sink ProgressSink, requestID string) *Tracker {
	return &Tracker{sink: sink, requestID: requestID, startedAt: time.Now()}
}

func (t *Tracker) Begin(ctx context.Context) {
	t.emit(ctx, 0, 0)
}

// Report returns the per-batch callback handed to the running strategy.
func (t *Tracker) Report(ctx context.Context) ReportFunc {
	return func(processed, total int64) {
		t.lastProcessed = processed
		t.lastTotal = total
		t.emit(ctx, t.baseProcessed+processed, t.baseTotal+total)
	}
}

// FinishStrategy folds the finished strategy's counts into the base so the
// next strategy's snapshots keep climbing.
func (t *Tracker) FinishStrategy() {
	t.baseProcessed += t.lastProcessed
	t.baseTotal += t.lastTotal
	t.lastProcessed = 0
	t.lastTotal = 0
}

func (t *Tracker) emit(ctx context.Context, processed, total int64) {
	if t.sink == nil {
		return
	}
	update := ProgressUpdate{Processed: processed, Total: total}
	if processed > 0 && total > processed {
		elapsed := time.Since(t.startedAt)
		remaining := time.Duration(float64(elapsed) / float64(processed) * float64(total-processed))
		update.EstimatedTimeRemaining = &remaining
	}
	if err := t.sink.UpdateProgress(ctx, t.requestID, update); err != nil {
		slog.Warn("progress update failed", "requestId", t.requestID, "err", err)
	}
}

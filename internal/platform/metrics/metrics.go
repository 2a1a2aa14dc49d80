package metrics

import (
	"sync/atomic"
	"time"
)

type Collector struct {
	jobsCompleted     uint64
	jobsFailed        uint64
	recordsDeleted    uint64
	recordsAnonymized uint64
	recordsFailed     uint64
	totalJobMs        uint64
}

func New() *Collector {
	return &Collector{}
}

func (c *Collector) RecordJob(failed bool, duration time.Duration) {
	if failed {
		atomic.AddUint64(&c.jobsFailed, 1)
	} else {
		atomic.AddUint64(&c.jobsCompleted, 1)
	}
	atomic.AddUint64(&c.totalJobMs, uint64(duration.Milliseconds()))
}

func (c *Collector) RecordErasure(deleted, anonymized, failed int64) {
	if deleted > 0 {
		atomic.AddUint64(&c.recordsDeleted, uint64(deleted))
	}
	if anonymized > 0 {
		atomic.AddUint64(&c.recordsAnonymized, uint64(anonymized))
	}
	if failed > 0 {
		atomic.AddUint64(&c.recordsFailed, uint64(failed))
	}
}

func (c *Collector) Snapshot() map[string]any {
	completed := atomic.LoadUint64(&c.jobsCompleted)
	failed := atomic.LoadUint64(&c.jobsFailed)
	totalMs := atomic.LoadUint64(&c.totalJobMs)
	avg := float64(0)
	if jobs := completed + failed; jobs > 0 {
		avg = float64(totalMs) / float64(jobs)
	}
	return map[string]any{
		"jobsCompletedTotal":     completed,
		"jobsFailedTotal":        failed,
		"recordsDeletedTotal":    atomic.LoadUint64(&c.recordsDeleted),
		"recordsAnonymizedTotal": atomic.LoadUint64(&c.recordsAnonymized),
		"recordsFailedTotal":     atomic.LoadUint64(&c.recordsFailed),
		"avgJobDurationMs":       avg,
	}
}

package erasure

import "time"

// Job is the unit of work consumed from the queue.
type Job struct {
	RequestID string `json:"requestId"`
	UserID    string `json:"userId"`
	Token     string `json:"token"`
}

// JobResult is handed back to the queue layer.
type JobResult struct {
	Success bool             `json:"success"`
	Summary *DeletionSummary `json:"deletionSummary,omitempty"`
	Error   string           `json:"error,omitempty"`
}

type DeletionRequest struct {
	ID          string           `json:"id"`
	TenantID    string           `json:"tenantId"`
	UserID      string           `json:"userId"`
	RequestType string           `json:"requestType"`
	Status      string           `json:"status"`
	RequestedAt time.Time        `json:"requestedAt"`
	CompletedAt *time.Time       `json:"completedAt,omitempty"`
	Summary     *DeletionSummary `json:"deletionSummary,omitempty"`
	Metadata    map[string]any   `json:"metadata,omitempty"`
}

// EntityDeletionResult is the per-entity-family outcome. Skipped records are
// retained intentionally (still referenced by other users) and stay outside
// Total so that Total == Deleted + Anonymized + Failed holds.
type EntityDeletionResult struct {
	Total      int64 `json:"total"`
	Deleted    int64 `json:"deleted"`
	Anonymized int64 `json:"anonymized"`
	Failed     int64 `json:"failed"`
	Skipped    int64 `json:"skipped,omitempty"`
}

type ErrorEntry struct {
	Type    string `json:"type"`
	Count   int64  `json:"count"`
	Message string `json:"message"`
}

type SummaryStatistics struct {
	Customers    *EntityDeletionResult `json:"customers,omitempty"`
	Interactions *EntityDeletionResult `json:"interactions,omitempty"`
	Associations *EntityDeletionResult `json:"associations,omitempty"`
	Products     *EntityDeletionResult `json:"products,omitempty"`
	AuditLogs    *EntityDeletionResult `json:"auditLogs,omitempty"`
}

type DeletionSummary struct {
	TotalRecords    int64             `json:"totalRecords"`
	DeletedCount    int64             `json:"deletedCount"`
	AnonymizedCount int64             `json:"anonymizedCount"`
	FailedCount     int64             `json:"failedCount"`
	Statistics      SummaryStatistics `json:"statistics"`
	Errors          []ErrorEntry      `json:"errors,omitempty"`
}

// Merge folds one strategy's result into the summary.
func (s *DeletionSummary) Merge(family string, res EntityDeletionResult) {
	s.TotalRecords += res.Total
	s.DeletedCount += res.Deleted
	s.AnonymizedCount += res.Anonymized
	s.FailedCount += res.Failed

	r := res
	switch family {
	case FamilyCustomers:
		s.Statistics.Customers = &r
	case FamilyInteractions:
		s.Statistics.Interactions = &r
	case FamilyAssociations:
		s.Statistics.Associations = &r
	case FamilyProducts:
		s.Statistics.Products = &r
	case FamilyAuditLogs:
		s.Statistics.AuditLogs = &r
	}
}

func (s *DeletionSummary) HasFailures() bool {
	return s.FailedCount > 0
}

func (s *DeletionSummary) HasSuccesses() bool {
	return s.DeletedCount+s.AnonymizedCount > 0
}

// FinalStatus is PARTIALLY_COMPLETED only when some records were erased and
// some failed; everything else terminal-succeeds as COMPLETED (an all-failed
// run is surfaced through errors[], an empty run matched nothing).
func (s *DeletionSummary) FinalStatus() string {
	if s.HasFailures() && s.HasSuccesses() {
		return StatusPartiallyCompleted
	}
	return StatusCompleted
}

// RetentionContext is the ephemeral input to the policy evaluator.
type RetentionContext struct {
	RecordCreatedAt    time.Time
	RetentionThreshold time.Time
	HasDependents      bool
}

// Scope narrows every store query to the requesting user's rows, optionally
// restricted to one customer type by the caller's role.
type Scope struct {
	TenantID     string
	UserID       string
	CustomerType string
}

// AccessScope is what the scope provider resolves from a job token. An empty
// CustomerType means unrestricted access.
type AccessScope struct {
	TenantID     string
	CustomerType string
}

type ProgressUpdate struct {
	Processed              int64          `json:"processed"`
	Total                  int64          `json:"total"`
	EstimatedTimeRemaining *time.Duration `json:"estimatedTimeRemaining,omitempty"`
}

// Cursor is the keyset position of the last visited row; keyset pagination on
// (created_at DESC, id DESC) stays stable while earlier rows are deleted.
type Cursor struct {
	CreatedAt time.Time
	ID        string
}

func (c Cursor) Zero() bool {
	return c.ID == "" && c.CreatedAt.IsZero()
}

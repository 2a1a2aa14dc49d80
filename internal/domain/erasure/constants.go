package erasure

const (
	StatusPending            = "PENDING"
	StatusQueued             = "QUEUED"
	StatusProcessing         = "PROCESSING"
	StatusCompleted          = "COMPLETED"
	StatusPartiallyCompleted = "PARTIALLY_COMPLETED"
	StatusFailed             = "FAILED"
)

const (
	EventDeletionCompleted          = "GDPR_DELETION_COMPLETED"
	EventDeletionPartiallyCompleted = "GDPR_DELETION_PARTIALLY_COMPLETED"
	EventDeletionFailed             = "GDPR_DELETION_FAILED"
)

const (
	FamilyCustomers    = "customers"
	FamilyInteractions = "interactions"
	FamilyAssociations = "associations"
	FamilyProducts     = "products"
	FamilyAuditLogs    = "auditLogs"
)

const (
	// DefaultBatchSize bounds each traversal fetch.
	DefaultBatchSize = 1000
	// FallbackRetentionDays (7 years) is used when no retention policy can be
	// resolved for the tenant.
	FallbackRetentionDays = 2555
	// AuditRetentionDays is the fixed audit-log window, independent of the
	// configurable general retention.
	AuditRetentionDays = 365
)

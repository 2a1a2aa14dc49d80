package erasure

import "time"

// Action is what the retention policy decides for a single record.
type Action int

const (
	ActionHardDelete Action = iota
	ActionSoftDelete
	ActionAnonymize
	// ActionSkip keeps the record untouched (products still referenced by
	// other users).
	ActionSkip
)

func (a Action) String() string {
	switch a {
	case ActionHardDelete:
		return "hard_delete"
	case ActionSoftDelete:
		return "soft_delete"
	case ActionAnonymize:
		return "anonymize"
	case ActionSkip:
		return "skip"
	}
	return "unknown"
}

// DecideCustomer: dependents always force a soft delete so referencing rows
// stay valid; otherwise records past the retention threshold are removed and
// newer ones are anonymized to keep the row for referential stability.
func DecideCustomer(rc RetentionContext) Action {
	if rc.HasDependents {
		return ActionSoftDelete
	}
	if rc.RecordCreatedAt.Before(rc.RetentionThreshold) {
		return ActionHardDelete
	}
	return ActionAnonymize
}

// DecideInteraction: interactions carry no standalone PII beyond the
// description, so there is no anonymize branch.
func DecideInteraction(createdAt, retentionThreshold time.Time) Action {
	if createdAt.Before(retentionThreshold) {
		return ActionHardDelete
	}
	return ActionSoftDelete
}

// DecideProduct: a product another user still references is kept; otherwise
// the customer age rule applies without an anonymize branch.
func DecideProduct(rc RetentionContext) Action {
	if rc.HasDependents {
		return ActionSkip
	}
	if rc.RecordCreatedAt.Before(rc.RetentionThreshold) {
		return ActionHardDelete
	}
	return ActionSoftDelete
}

// DecideAuditLog runs on the fixed audit window, not the general retention:
// old entries are removed, recent ones keep their action/entity metadata with
// the identifying fields nulled.
func DecideAuditLog(timestamp, auditWindow time.Time) Action {
	if timestamp.Before(auditWindow) {
		return ActionHardDelete
	}
	return ActionAnonymize
}

// DecideAssociation: explicit associations scoped to the requesting user's
// own customers hold no retention value once the owning relationship goes.
func DecideAssociation() Action {
	return ActionHardDelete
}

package erasure

import (
	"context"
	"time"
)

// Strategy erases one entity family. Strategies never call each other; the
// orchestrator sequences them in dependency order.
type Strategy interface {
	Family() string
	Run(ctx context.Context, scope Scope, retentionThreshold time.Time, report ReportFunc) (EntityDeletionResult, error)
}

// Record types shared by the strategy stores. Each carries just enough to
// resume the keyset walk and evaluate the retention rule.

type CustomerRecord struct {
	ID        string
	CreatedAt time.Time
}

func (r CustomerRecord) Key() Cursor { return Cursor{CreatedAt: r.CreatedAt, ID: r.ID} }

type InteractionRecord struct {
	ID        string
	CreatedAt time.Time
}

func (r InteractionRecord) Key() Cursor { return Cursor{CreatedAt: r.CreatedAt, ID: r.ID} }

type AssociationRecord struct {
	ID        string
	CreatedAt time.Time
}

func (r AssociationRecord) Key() Cursor { return Cursor{CreatedAt: r.CreatedAt, ID: r.ID} }

type ProductRecord struct {
	ID        string
	CreatedAt time.Time
}

func (r ProductRecord) Key() Cursor { return Cursor{CreatedAt: r.CreatedAt, ID: r.ID} }

type AuditLogRecord struct {
	ID        string
	CreatedAt time.Time
}

func (r AuditLogRecord) Key() Cursor { return Cursor{CreatedAt: r.CreatedAt, ID: r.ID} }

package erasure

import (
	"context"
	"time"

	"crm/internal/platform/querier"
)

const (
	DataCategoryAudit        = "audit"
	DataCategoryInteractions = "interactions"
	DataCategoryTombstones   = "tombstones"
)

// ApplyRetention is the scheduled sweep: it purges rows a tenant's retention
// policy no longer allows keeping. Deletion requests themselves are exempt;
// they are the compliance record of the erasure.
func ApplyRetention(ctx context.Context, db querier.Querier, tenantID, category string, cutoff time.Time) (int64, error) {
	switch category {
	case DataCategoryAudit:
		tag, err := db.Exec(ctx, `
      DELETE FROM audit_events
      WHERE tenant_id = $1 AND created_at < $2
    `, tenantID, cutoff)
		return tag.RowsAffected(), err
	case DataCategoryInteractions:
		tag, err := db.Exec(ctx, `
      DELETE FROM interactions
      WHERE tenant_id = $1 AND deleted_at IS NOT NULL AND deleted_at < $2
    `, tenantID, cutoff)
		return tag.RowsAffected(), err
	case DataCategoryTombstones:
		var total int64
		tag, err := db.Exec(ctx, `
      DELETE FROM customer_products
      WHERE tenant_id = $1 AND customer_id IN (
        SELECT id FROM customers
        WHERE tenant_id = $1 AND deleted_at IS NOT NULL AND deleted_at < $2
      )
    `, tenantID, cutoff)
		total += tag.RowsAffected()
		if err != nil {
			return total, err
		}
		tag, err = db.Exec(ctx, `
      DELETE FROM customers
      WHERE tenant_id = $1 AND deleted_at IS NOT NULL AND deleted_at < $2
    `, tenantID, cutoff)
		total += tag.RowsAffected()
		if err != nil {
			return total, err
		}
		tag, err = db.Exec(ctx, `
      DELETE FROM products
      WHERE tenant_id = $1 AND deleted_at IS NOT NULL AND deleted_at < $2
    `, tenantID, cutoff)
		total += tag.RowsAffected()
		return total, err
	default:
		return 0, nil
	}
}

package db

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"crm/internal/platform/config"
)

// Seed makes sure a tenant and its default retention policy exist so a fresh
// install can accept deletion requests immediately.
func Seed(ctx context.Context, pool *pgxpool.Pool, cfg config.Config) error {
	tenantID, err := ensureTenant(ctx, pool, cfg.SeedTenantName)
	if err != nil {
		return err
	}
	return ensureRetentionPolicy(ctx, pool, tenantID, cfg.RetentionFallbackDays)
}

func ensureTenant(ctx context.Context, pool *pgxpool.Pool, name string) (string, error) {
	var id string
	err := pool.QueryRow(ctx, "SELECT id FROM tenants WHERE name = $1", name).Scan(&id)
	if err == nil {
		return id, nil
	}

	err = pool.QueryRow(ctx, "INSERT INTO tenants (name) VALUES ($1) RETURNING id", name).Scan(&id)
	if err != nil {
		return "", err
	}
	return id, nil
}

func ensureRetentionPolicy(ctx context.Context, pool *pgxpool.Pool, tenantID string, days int) error {
	_, err := pool.Exec(ctx, `
    INSERT INTO retention_policies (tenant_id, data_category, retention_days)
    VALUES ($1, 'general', $2)
    ON CONFLICT (tenant_id, data_category) DO NOTHING
  `, tenantID, days)
	return err
}

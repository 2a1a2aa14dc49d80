package crm

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"
)

type Store struct {
	DB *pgxpool.Pool
}

func NewStore(db *pgxpool.Pool) *Store {
	return &Store{DB: db}
}

func (s *Store) CreateCustomer(ctx context.Context, c Customer) (string, error) {
	var id string
	err := s.DB.QueryRow(ctx, `
    INSERT INTO customers (tenant_id, created_by, name, email, phone, address, domain, customer_type)
    VALUES ($1,$2,$3,$4,$5,$6,$7,$8)
    RETURNING id
  `, c.TenantID, c.CreatedBy, c.Name, c.Email, c.Phone, c.Address, c.Domain, c.CustomerType).Scan(&id)
	return id, err
}

func (s *Store) ListCustomers(ctx context.Context, tenantID string, limit, offset int) ([]Customer, error) {
	rows, err := s.DB.Query(ctx, `
    SELECT id, tenant_id, created_by, name, email, phone, address, domain, customer_type, created_at, deleted_at, anonymized_at
    FROM customers
    WHERE tenant_id = $1 AND deleted_at IS NULL
    ORDER BY created_at DESC
    LIMIT $2 OFFSET $3
  `, tenantID, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Customer
	for rows.Next() {
		var c Customer
		if err := rows.Scan(&c.ID, &c.TenantID, &c.CreatedBy, &c.Name, &c.Email, &c.Phone, &c.Address, &c.Domain, &c.CustomerType, &c.CreatedAt, &c.DeletedAt, &c.AnonymizedAt); err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

func (s *Store) CreateInteraction(ctx context.Context, i Interaction) (string, error) {
	var id string
	err := s.DB.QueryRow(ctx, `
    INSERT INTO interactions (tenant_id, customer_id, product_id, created_by, kind, description, occurred_at)
    VALUES ($1,$2,$3,$4,$5,$6,$7)
    RETURNING id
  `, i.TenantID, i.CustomerID, i.ProductID, i.CreatedBy, i.Kind, i.Description, i.OccurredAt).Scan(&id)
	return id, err
}

func (s *Store) CreateProduct(ctx context.Context, p Product) (string, error) {
	var id string
	err := s.DB.QueryRow(ctx, `
    INSERT INTO products (tenant_id, created_by, name, sku)
    VALUES ($1,$2,$3,$4)
    RETURNING id
  `, p.TenantID, p.CreatedBy, p.Name, p.SKU).Scan(&id)
	return id, err
}

func (s *Store) LinkProduct(ctx context.Context, tenantID, customerID, productID string) (string, error) {
	var id string
	err := s.DB.QueryRow(ctx, `
    INSERT INTO customer_products (tenant_id, customer_id, product_id)
    VALUES ($1,$2,$3)
    ON CONFLICT (customer_id, product_id) DO UPDATE SET product_id = EXCLUDED.product_id
    RETURNING id
  `, tenantID, customerID, productID).Scan(&id)
	return id, err
}

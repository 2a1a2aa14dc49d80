package crm

import "time"

type Customer struct {
	ID           string     `json:"id"`
	TenantID     string     `json:"tenantId"`
	CreatedBy    string     `json:"createdBy"`
	Name         string     `json:"name"`
	Email        *string    `json:"email,omitempty"`
	Phone        *string    `json:"phone,omitempty"`
	Address      *string    `json:"address,omitempty"`
	Domain       *string    `json:"domain,omitempty"`
	CustomerType string     `json:"customerType"`
	CreatedAt    time.Time  `json:"createdAt"`
	DeletedAt    *time.Time `json:"deletedAt,omitempty"`
	AnonymizedAt *time.Time `json:"anonymizedAt,omitempty"`
}

type Interaction struct {
	ID          string     `json:"id"`
	TenantID    string     `json:"tenantId"`
	CustomerID  *string    `json:"customerId,omitempty"`
	ProductID   *string    `json:"productId,omitempty"`
	CreatedBy   string     `json:"createdBy"`
	Kind        string     `json:"kind"`
	Description string     `json:"description"`
	OccurredAt  time.Time  `json:"occurredAt"`
	CreatedAt   time.Time  `json:"createdAt"`
	DeletedAt   *time.Time `json:"deletedAt,omitempty"`
}

type Product struct {
	ID        string     `json:"id"`
	TenantID  string     `json:"tenantId"`
	CreatedBy string     `json:"createdBy"`
	Name      string     `json:"name"`
	SKU       string     `json:"sku"`
	CreatedAt time.Time  `json:"createdAt"`
	DeletedAt *time.Time `json:"deletedAt,omitempty"`
}

// CustomerProduct is the explicit association between a customer and a product.
type CustomerProduct struct {
	ID         string    `json:"id"`
	TenantID   string    `json:"tenantId"`
	CustomerID string    `json:"customerId"`
	ProductID  string    `json:"productId"`
	CreatedAt  time.Time `json:"createdAt"`
}

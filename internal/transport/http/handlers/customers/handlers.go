package customershandler

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"crm/internal/domain/crm"
	"crm/internal/transport/http/api"
	"crm/internal/transport/http/middleware"
)

type Handler struct {
	Store *crm.Store
}

func NewHandler(store *crm.Store) *Handler {
	return &Handler{Store: store}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/customers", func(r chi.Router) {
		r.Use(middleware.RequireUser)
		r.Get("/", h.handleList)
		r.Post("/", h.handleCreate)
		r.Post("/{customerID}/interactions", h.handleCreateInteraction)
		r.Post("/{customerID}/products/{productID}", h.handleLinkProduct)
	})
	r.With(middleware.RequireUser).Post("/products", h.handleCreateProduct)
}

type createCustomerRequest struct {
	Name         string  `json:"name"`
	Email        *string `json:"email"`
	Phone        *string `json:"phone"`
	Address      *string `json:"address"`
	Domain       *string `json:"domain"`
	CustomerType string  `json:"customerType"`
}

func (h *Handler) handleCreate(w http.ResponseWriter, r *http.Request) {
	user, _ := middleware.GetUser(r.Context())
	reqID := middleware.GetRequestID(r.Context())

	var body createCustomerRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil || body.Name == "" {
		api.Fail(w, http.StatusBadRequest, "invalid_body", "name is required", reqID)
		return
	}

	id, err := h.Store.CreateCustomer(r.Context(), crm.Customer{
		TenantID:     user.TenantID,
		CreatedBy:    user.UserID,
		Name:         body.Name,
		Email:        body.Email,
		Phone:        body.Phone,
		Address:      body.Address,
		Domain:       body.Domain,
		CustomerType: body.CustomerType,
	})
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "customer_create_failed", "failed to create customer", reqID)
		return
	}
	api.Created(w, map[string]string{"id": id}, reqID)
}

func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	user, _ := middleware.GetUser(r.Context())
	reqID := middleware.GetRequestID(r.Context())

	limit := parseIntParam(r, "limit", 50)
	offset := parseIntParam(r, "offset", 0)

	customers, err := h.Store.ListCustomers(r.Context(), user.TenantID, limit, offset)
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "customer_list_failed", "failed to list customers", reqID)
		return
	}
	api.Success(w, customers, reqID)
}

type createInteractionRequest struct {
	Kind        string     `json:"kind"`
	Description string     `json:"description"`
	ProductID   *string    `json:"productId"`
	OccurredAt  *time.Time `json:"occurredAt"`
}

func (h *Handler) handleCreateInteraction(w http.ResponseWriter, r *http.Request) {
	user, _ := middleware.GetUser(r.Context())
	reqID := middleware.GetRequestID(r.Context())
	customerID := chi.URLParam(r, "customerID")

	var body createInteractionRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil || body.Kind == "" {
		api.Fail(w, http.StatusBadRequest, "invalid_body", "kind is required", reqID)
		return
	}
	occurredAt := time.Now()
	if body.OccurredAt != nil {
		occurredAt = *body.OccurredAt
	}

	id, err := h.Store.CreateInteraction(r.Context(), crm.Interaction{
		TenantID:    user.TenantID,
		CustomerID:  &customerID,
		ProductID:   body.ProductID,
		CreatedBy:   user.UserID,
		Kind:        body.Kind,
		Description: body.Description,
		OccurredAt:  occurredAt,
	})
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "interaction_create_failed", "failed to record interaction", reqID)
		return
	}
	api.Created(w, map[string]string{"id": id}, reqID)
}

type createProductRequest struct {
	Name string `json:"name"`
	SKU  string `json:"sku"`
}

func (h *Handler) handleCreateProduct(w http.ResponseWriter, r *http.Request) {
	user, _ := middleware.GetUser(r.Context())
	reqID := middleware.GetRequestID(r.Context())

	var body createProductRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil || body.Name == "" {
		api.Fail(w, http.StatusBadRequest, "invalid_body", "name is required", reqID)
		return
	}

	id, err := h.Store.CreateProduct(r.Context(), crm.Product{
		TenantID:  user.TenantID,
		CreatedBy: user.UserID,
		Name:      body.Name,
		SKU:       body.SKU,
	})
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "product_create_failed", "failed to create product", reqID)
		return
	}
	api.Created(w, map[string]string{"id": id}, reqID)
}

func (h *Handler) handleLinkProduct(w http.ResponseWriter, r *http.Request) {
	user, _ := middleware.GetUser(r.Context())
	reqID := middleware.GetRequestID(r.Context())

	id, err := h.Store.LinkProduct(r.Context(), user.TenantID, chi.URLParam(r, "customerID"), chi.URLParam(r, "productID"))
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "association_failed", "failed to link product", reqID)
		return
	}
	api.Created(w, map[string]string{"id": id}, reqID)
}

func parseIntParam(r *http.Request, name string, fallback int) int {
	value := r.URL.Query().Get(name)
	if value == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(value)
	if err != nil || parsed < 0 {
		return fallback
	}
	return parsed
}

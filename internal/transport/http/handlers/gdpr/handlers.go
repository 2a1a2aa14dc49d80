package gdprhandler

import (
	"context"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"crm/internal/domain/erasure"
	"crm/internal/platform/jobs"
	"crm/internal/transport/http/api"
	"crm/internal/transport/http/middleware"
)

type Handler struct {
	Svc  *erasure.Service
	Jobs *jobs.Service
}

func NewHandler(svc *erasure.Service, jobsSvc *jobs.Service) *Handler {
	return &Handler{Svc: svc, Jobs: jobsSvc}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/gdpr", func(r chi.Router) {
		r.Use(middleware.RequireUser)
		r.Post("/deletion-requests", h.handleCreate)
		r.Get("/deletion-requests/{requestID}", h.handleGet)
		r.Get("/deletion-requests/{requestID}/certificate", h.handleCertificate)
	})
}

func (h *Handler) handleCreate(w http.ResponseWriter, r *http.Request) {
	user, _ := middleware.GetUser(r.Context())
	reqID := middleware.GetRequestID(r.Context())

	req, err := h.Svc.CreateRequest(r.Context(), user.TenantID, user.UserID)
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "deletion_request_failed", "failed to create deletion request", reqID)
		return
	}

	// The caller's bearer token travels with the job so the worker can
	// resolve the same access scope later.
	job := erasure.Job{RequestID: req.ID, UserID: user.UserID, Token: middleware.GetToken(r.Context())}
	if err := h.Svc.MarkQueued(r.Context(), req.ID); err != nil {
		api.Fail(w, http.StatusInternalServerError, "deletion_request_failed", "failed to queue deletion request", reqID)
		return
	}
	h.Jobs.Enqueue(jobs.JobErasure, user.TenantID, func(ctx context.Context) (any, error) {
		return h.Svc.Execute(ctx, job)
	})

	req.Status = erasure.StatusQueued
	api.Accepted(w, req, reqID)
}

func (h *Handler) handleGet(w http.ResponseWriter, r *http.Request) {
	user, _ := middleware.GetUser(r.Context())
	reqID := middleware.GetRequestID(r.Context())

	req, err := h.Svc.GetRequest(r.Context(), user.TenantID, chi.URLParam(r, "requestID"))
	if errors.Is(err, erasure.ErrRequestNotFound) {
		api.Fail(w, http.StatusNotFound, "not_found", "deletion request not found", reqID)
		return
	}
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "deletion_request_failed", "failed to load deletion request", reqID)
		return
	}
	api.Success(w, req, reqID)
}

func (h *Handler) handleCertificate(w http.ResponseWriter, r *http.Request) {
	user, _ := middleware.GetUser(r.Context())
	reqID := middleware.GetRequestID(r.Context())
	token := r.URL.Query().Get("token")

	data, err := h.Svc.OpenCertificate(r.Context(), user.TenantID, chi.URLParam(r, "requestID"), token)
	switch {
	case errors.Is(err, erasure.ErrRequestNotFound):
		api.Fail(w, http.StatusNotFound, "not_found", "deletion request not found", reqID)
		return
	case errors.Is(err, erasure.ErrCertificateNotReady):
		api.Fail(w, http.StatusConflict, "certificate_not_ready", "erasure certificate not available yet", reqID)
		return
	case errors.Is(err, erasure.ErrBadDownloadToken):
		api.Fail(w, http.StatusForbidden, "invalid_token", "invalid certificate download token", reqID)
		return
	case err != nil:
		api.Fail(w, http.StatusInternalServerError, "certificate_failed", "failed to load certificate", reqID)
		return
	}

	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", "attachment; filename=erasure-certificate.pdf")
	_, _ = w.Write(data)
}

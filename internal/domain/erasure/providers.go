package erasure

import (
	"context"
	"errors"
	"fmt"

	"crm/internal/auth"
	"crm/internal/domain/audit"
)

// TokenScopeProvider resolves the job token's JWT claims into an access
// scope. The tenant rides in the token, so the queue contract stays at
// {requestId, userId, token}.
type TokenScopeProvider struct {
	Secret string
}

func (p TokenScopeProvider) Resolve(ctx context.Context, token string) (AccessScope, error) {
	claims, err := auth.ParseToken(p.Secret, token)
	if err != nil {
		return AccessScope{}, fmt.Errorf("parse scope token: %w", err)
	}
	if claims.TenantID == "" {
		return AccessScope{}, errors.New("scope token has no tenant")
	}
	return AccessScope{TenantID: claims.TenantID, CustomerType: claims.CustomerType}, nil
}

// AuditServiceSink adapts the audit recorder to the orchestrator's sink
// contract.
type AuditServiceSink struct {
	Service *audit.Service
}

func (s AuditServiceSink) Log(ctx context.Context, event AuditEvent) error {
	if event.TenantID == "" {
		// Scope resolution failed before a tenant was known; nothing to
		// attribute the event to.
		return nil
	}
	return s.Service.Record(ctx, event.TenantID, event.ActorID, event.Action, "deletion_request", event.RequestID, event.RequestID, event.Details)
}

// StoreProgressSink persists progress snapshots on the request row.
type StoreProgressSink struct {
	Store *Store
}

func (s StoreProgressSink) UpdateProgress(ctx context.Context, requestID string, update ProgressUpdate) error {
	return s.Store.UpdateProgressMetadata(ctx, requestID, update)
}

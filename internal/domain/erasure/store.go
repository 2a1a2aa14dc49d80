package erasure

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Store persists deletion requests and backs the strategy store interfaces
// over the CRM tables.
type Store struct {
	DB *pgxpool.Pool
}

func NewStore(db *pgxpool.Pool) *Store {
	return &Store{DB: db}
}

func (s *Store) CreateRequest(ctx context.Context, tenantID, userID, requestType string) (DeletionRequest, error) {
	req := DeletionRequest{
		TenantID:    tenantID,
		UserID:      userID,
		RequestType: requestType,
		Status:      StatusPending,
	}
	err := s.DB.QueryRow(ctx, `
    INSERT INTO deletion_requests (tenant_id, user_id, request_type, status)
    VALUES ($1,$2,$3,$4)
    RETURNING id, requested_at
  `, tenantID, userID, requestType, StatusPending).Scan(&req.ID, &req.RequestedAt)
	return req, err
}

func (s *Store) GetRequest(ctx context.Context, tenantID, requestID string) (DeletionRequest, error) {
	var req DeletionRequest
	var summaryJSON, metadataJSON []byte
	err := s.DB.QueryRow(ctx, `
    SELECT id, tenant_id, user_id, request_type, status, requested_at, completed_at, summary_json, metadata_json
    FROM deletion_requests
    WHERE tenant_id = $1 AND id = $2
  `, tenantID, requestID).Scan(&req.ID, &req.TenantID, &req.UserID, &req.RequestType, &req.Status, &req.RequestedAt, &req.CompletedAt, &summaryJSON, &metadataJSON)
	if errors.Is(err, pgx.ErrNoRows) {
		return req, ErrRequestNotFound
	}
	if err != nil {
		return req, err
	}
	if len(summaryJSON) > 0 {
		var summary DeletionSummary
		if err := json.Unmarshal(summaryJSON, &summary); err == nil {
			req.Summary = &summary
		}
	}
	if len(metadataJSON) > 0 {
		_ = json.Unmarshal(metadataJSON, &req.Metadata)
	}
	return req, nil
}

// UpdateStatus implements RequestStatusStore. Terminal statuses also stamp
// completed_at; repeated calls for the same request overwrite idempotently.
func (s *Store) UpdateStatus(ctx context.Context, requestID, status string, summary *DeletionSummary, errorMessage string) error {
	var summaryJSON []byte
	if summary != nil {
		payload, err := json.Marshal(summary)
		if err != nil {
			return err
		}
		summaryJSON = payload
	}

	terminal := status == StatusCompleted || status == StatusPartiallyCompleted || status == StatusFailed
	if terminal {
		var metadataJSON []byte
		if errorMessage != "" {
			metadataJSON, _ = json.Marshal(map[string]any{"error": errorMessage})
		}
		_, err := s.DB.Exec(ctx, `
      UPDATE deletion_requests
      SET status = $1,
          summary_json = COALESCE($2, summary_json),
          metadata_json = COALESCE($3, metadata_json),
          completed_at = now()
      WHERE id = $4
    `, status, summaryJSON, metadataJSON, requestID)
		return err
	}

	_, err := s.DB.Exec(ctx, `
    UPDATE deletion_requests
    SET status = $1
    WHERE id = $2
  `, status, requestID)
	return err
}

// RetentionDays implements RetentionPolicyProvider from the tenant's general
// retention policy.
func (s *Store) RetentionDays(ctx context.Context, tenantID string) (int, error) {
	var days int
	err := s.DB.QueryRow(ctx, `
    SELECT retention_days
    FROM retention_policies
    WHERE tenant_id = $1 AND data_category = 'general'
  `, tenantID).Scan(&days)
	return days, err
}

// UpdateProgressMetadata persists the latest progress snapshot on the request
// row so status polling can show it.
func (s *Store) UpdateProgressMetadata(ctx context.Context, requestID string, update ProgressUpdate) error {
	payload, err := json.Marshal(map[string]any{"progress": update})
	if err != nil {
		return err
	}
	_, err = s.DB.Exec(ctx, `
    UPDATE deletion_requests
    SET metadata_json = $1
    WHERE id = $2 AND status = $3
  `, payload, requestID, StatusProcessing)
	return err
}

func (s *Store) UpdateCertificate(ctx context.Context, requestID, filePath, tokenHash string) error {
	_, err := s.DB.Exec(ctx, `
    UPDATE deletion_requests
    SET certificate_path = $1, certificate_token_hash = $2
    WHERE id = $3
  `, filePath, tokenHash, requestID)
	return err
}

// MergeMetadata folds extra keys into the request metadata without touching
// what is already there.
func (s *Store) MergeMetadata(ctx context.Context, requestID string, extra map[string]any) error {
	payload, err := json.Marshal(extra)
	if err != nil {
		return err
	}
	_, err = s.DB.Exec(ctx, `
    UPDATE deletion_requests
    SET metadata_json = COALESCE(metadata_json, '{}'::jsonb) || $1
    WHERE id = $2
  `, payload, requestID)
	return err
}

func (s *Store) CertificateInfo(ctx context.Context, tenantID, requestID string) (string, string, error) {
	var path, tokenHash *string
	err := s.DB.QueryRow(ctx, `
    SELECT certificate_path, certificate_token_hash
    FROM deletion_requests
    WHERE tenant_id = $1 AND id = $2
  `, tenantID, requestID).Scan(&path, &tokenHash)
	if errors.Is(err, pgx.ErrNoRows) {
		return "", "", ErrRequestNotFound
	}
	if err != nil {
		return "", "", err
	}
	if path == nil || tokenHash == nil {
		return "", "", ErrCertificateNotReady
	}
	return *path, *tokenHash, nil
}

// scanRecords reads (id, created_at) rows into the given record constructor.
func scanRecords[T any](rows pgx.Rows, build func(id string, createdAt time.Time) T) ([]T, error) {
	defer rows.Close()
	var out []T
	for rows.Next() {
		var id string
		var createdAt time.Time
		if err := rows.Scan(&id, &createdAt); err != nil {
			return nil, err
		}
		out = append(out, build(id, createdAt))
	}
	return out, rows.Err()
}

package erasure

import (
	"context"

	"crm/internal/domain/audit"
	cryptoutil "crm/internal/platform/crypto"
	"crm/internal/platform/metrics"
)

// Service wires the orchestrator to its production collaborators and owns the
// request lifecycle around it (intake, status reads, certificates).
type Service struct {
	store          *Store
	orchestrator   *Orchestrator
	crypto         *cryptoutil.Service
	certificateDir string
}

type ServiceOptions struct {
	JWTSecret      string
	BatchSize      int
	AuditWindow    int
	CertificateDir string
}

func NewService(store *Store, auditSvc *audit.Service, crypto *cryptoutil.Service, collector *metrics.Collector, opts ServiceOptions) *Service {
	batch := opts.BatchSize
	if batch <= 0 {
		batch = DefaultBatchSize
	}

	orchestrator := &Orchestrator{
		Scopes:    TokenScopeProvider{Secret: opts.JWTSecret},
		Retention: store,
		Statuses:  store,
		Audit:     AuditServiceSink{Service: auditSvc},
		Progress:  StoreProgressSink{Store: store},
		Metrics:   collector,
		Strategies: []Strategy{
			&CustomerStrategy{Store: store, BatchSize: batch},
			&InteractionStrategy{Store: store, BatchSize: batch},
			&AssociationStrategy{Store: store, BatchSize: batch},
			&ProductStrategy{Store: store, BatchSize: batch},
			&AuditLogStrategy{Store: store, BatchSize: batch, WindowDays: opts.AuditWindow},
		},
	}

	return &Service{
		store:          store,
		orchestrator:   orchestrator,
		crypto:         crypto,
		certificateDir: opts.CertificateDir,
	}
}

func (s *Service) CreateRequest(ctx context.Context, tenantID, userID string) (DeletionRequest, error) {
	return s.store.CreateRequest(ctx, tenantID, userID, "gdpr_erasure")
}

// MarkQueued transitions a freshly created request once its job is on the
// queue.
func (s *Service) MarkQueued(ctx context.Context, requestID string) error {
	return s.store.UpdateStatus(ctx, requestID, StatusQueued, nil, "")
}

func (s *Service) GetRequest(ctx context.Context, tenantID, requestID string) (DeletionRequest, error) {
	return s.store.GetRequest(ctx, tenantID, requestID)
}

// Execute runs the deletion job to completion and, on success, issues the
// erasure certificate. The error return goes back to the queue layer.
func (s *Service) Execute(ctx context.Context, job Job) (JobResult, error) {
	result, err := s.orchestrator.Process(ctx, job)
	if err != nil {
		return result, err
	}
	if result.Summary != nil {
		s.writeCertificate(ctx, job, result.Summary, result.Summary.FinalStatus())
	}
	return result, nil
}

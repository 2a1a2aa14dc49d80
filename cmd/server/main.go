package main

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"crm/internal/domain/audit"
	"crm/internal/domain/crm"
	"crm/internal/domain/erasure"
	"crm/internal/platform/config"
	"crm/internal/platform/crypto"
	"crm/internal/platform/db"
	"crm/internal/platform/jobs"
	"crm/internal/platform/metrics"
	customershandler "crm/internal/transport/http/handlers/customers"
	gdprhandler "crm/internal/transport/http/handlers/gdpr"
	"crm/internal/transport/http/middleware"
)

func main() {
	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		log.Fatalf("config invalid: %v", err)
	}

	ctx := context.Background()
	pool, err := db.Connect(ctx, cfg)
	if err != nil {
		log.Fatalf("db connect failed: %v", err)
	}
	defer pool.Close()

	if cfg.RunMigrations {
		if err := db.Migrate(ctx, pool, "migrations"); err != nil {
			log.Fatalf("migrations failed: %v", err)
		}
	}
	if cfg.RunSeed {
		if err := db.Seed(ctx, pool, cfg); err != nil {
			log.Fatalf("seed failed: %v", err)
		}
	}

	cryptoSvc, err := crypto.New(cfg.DataEncryptionKey)
	if err != nil {
		log.Fatalf("crypto init failed: %v", err)
	}

	collector := metrics.New()
	auditSvc := audit.New(pool)
	crmStore := crm.NewStore(pool)

	erasureStore := erasure.NewStore(pool)
	erasureSvc := erasure.NewService(erasureStore, auditSvc, cryptoSvc, collector, erasure.ServiceOptions{
		JWTSecret:      cfg.JWTSecret,
		BatchSize:      cfg.ErasureBatchSize,
		AuditWindow:    cfg.AuditRetentionDays,
		CertificateDir: cfg.CertificateDir,
	})

	jobsSvc := jobs.New(pool, cfg, collector)
	jobsSvc.Start(ctx)

	router := chi.NewRouter()
	router.Use(middleware.RequestID)
	router.Use(middleware.Logger)
	router.Use(middleware.Recoverer)
	router.Use(middleware.MaxBody(cfg.MaxBodyBytes))
	router.Use(middleware.Auth(cfg.JWTSecret))

	router.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	router.Get("/readyz", func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()
		if err := pool.Ping(ctx); err != nil {
			http.Error(w, "db not ready", http.StatusServiceUnavailable)
			return
		}
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ready"))
	})

	if cfg.MetricsEnabled {
		router.Get("/metrics", func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			_ = json.NewEncoder(w).Encode(collector.Snapshot())
		})
	}

	router.Route("/api/v1", func(r chi.Router) {
		customersHandler := customershandler.NewHandler(crmStore)
		customersHandler.RegisterRoutes(r)

		gdprHandler := gdprhandler.NewHandler(erasureSvc, jobsSvc)
		gdprHandler.RegisterRoutes(r)
	})

	log.Printf("CRM server listening on %s", cfg.Addr)
	if err := http.ListenAndServe(cfg.Addr, router); err != nil {
		log.Fatalf("server failed: %v", err)
	}
}

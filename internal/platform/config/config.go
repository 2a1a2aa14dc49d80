package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	Addr                  string
	DatabaseURL           string
	JWTSecret             string
	DataEncryptionKey     string
	Environment           string
	SeedTenantName        string
	RunMigrations         bool
	RunSeed               bool
	MaxBodyBytes          int64
	ErasureBatchSize      int
	RetentionFallbackDays int
	AuditRetentionDays    int
	RetentionInterval     time.Duration
	JobQueueSize          int
	MetricsEnabled        bool
	CertificateDir        string
}

func Load() Config {
	return Config{
		Addr:                  getEnv("APP_ADDR", ":8080"),
		DatabaseURL:           getEnv("DATABASE_URL", ""),
		JWTSecret:             getEnv("JWT_SECRET", ""),
		DataEncryptionKey:     getEnv("DATA_ENCRYPTION_KEY", ""),
		Environment:           getEnv("APP_ENV", "development"),
		SeedTenantName:        getEnv("SEED_TENANT_NAME", "Default Tenant"),
		RunMigrations:         getEnvBool("RUN_MIGRATIONS", true),
		RunSeed:               getEnvBool("RUN_SEED", true),
		MaxBodyBytes:          int64(getEnvInt("MAX_BODY_BYTES", 1048576)),
		ErasureBatchSize:      getEnvInt("ERASURE_BATCH_SIZE", 1000),
		RetentionFallbackDays: getEnvInt("RETENTION_FALLBACK_DAYS", 2555),
		AuditRetentionDays:    getEnvInt("AUDIT_RETENTION_DAYS", 365),
		RetentionInterval:     getEnvDuration("RETENTION_INTERVAL", 24*time.Hour),
		JobQueueSize:          getEnvInt("JOB_QUEUE_SIZE", 128),
		MetricsEnabled:        getEnvBool("METRICS_ENABLED", true),
		CertificateDir:        getEnv("CERTIFICATE_DIR", "storage/certificates"),
	}
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	parsed, err := strconv.ParseBool(value)
	if err != nil {
		return fallback
	}
	return parsed
}

func getEnvInt(key string, fallback int) int {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return fallback
	}
	return parsed
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	parsed, err := time.ParseDuration(value)
	if err != nil {
		return fallback
	}
	return parsed
}

func (c Config) Validate() error {
	if strings.TrimSpace(c.DatabaseURL) == "" {
		return fmt.Errorf("DATABASE_URL is required")
	}
	if c.Environment == "production" {
		if strings.TrimSpace(c.JWTSecret) == "" {
			return fmt.Errorf("JWT_SECRET must be set to a strong value in production")
		}
		if strings.TrimSpace(c.DataEncryptionKey) == "" {
			return fmt.Errorf("DATA_ENCRYPTION_KEY must be set in production for encryption at rest")
		}
	}
	if c.MaxBodyBytes < 1024 {
		return fmt.Errorf("MAX_BODY_BYTES must be at least 1024")
	}
	if c.ErasureBatchSize <= 0 {
		return fmt.Errorf("ERASURE_BATCH_SIZE must be positive")
	}
	if c.RetentionFallbackDays <= 0 {
		return fmt.Errorf("RETENTION_FALLBACK_DAYS must be positive")
	}
	if c.AuditRetentionDays <= 0 {
		return fmt.Errorf("AUDIT_RETENTION_DAYS must be positive")
	}
	if c.JobQueueSize <= 0 {
		return fmt.Errorf("JOB_QUEUE_SIZE must be positive")
	}
	return nil
}

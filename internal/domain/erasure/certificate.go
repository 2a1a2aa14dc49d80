package erasure

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/jung-kurt/gofpdf"

	"crm/internal/auth"
)

// writeCertificate renders a PDF erasure certificate for the finished
// request, encrypts it at rest when a key is configured, and stores a hashed
// one-time download token. Best-effort: a failing certificate never fails the
// job.
func (s *Service) writeCertificate(ctx context.Context, req Job, summary *DeletionSummary, status string) {
	if err := os.MkdirAll(s.certificateDir, 0o755); err != nil {
		slog.Warn("certificate dir create failed", "err", err)
		return
	}

	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.AddPage()
	pdf.SetFont("Helvetica", "B", 16)
	pdf.Cell(40, 10, "Certificate of Erasure")
	pdf.Ln(12)
	pdf.SetFont("Helvetica", "", 12)
	pdf.Cell(0, 8, fmt.Sprintf("Request: %s", req.RequestID))
	pdf.Ln(7)
	pdf.Cell(0, 8, fmt.Sprintf("Status: %s", status))
	pdf.Ln(7)
	pdf.Cell(0, 8, fmt.Sprintf("Completed: %s", time.Now().UTC().Format("2006-01-02 15:04:05 MST")))
	pdf.Ln(10)
	pdf.Cell(0, 8, fmt.Sprintf("Records processed: %d", summary.TotalRecords))
	pdf.Ln(7)
	pdf.Cell(0, 8, fmt.Sprintf("Deleted: %d", summary.DeletedCount))
	pdf.Ln(7)
	pdf.Cell(0, 8, fmt.Sprintf("Anonymized: %d", summary.AnonymizedCount))
	pdf.Ln(7)
	pdf.Cell(0, 8, fmt.Sprintf("Failed: %d", summary.FailedCount))

	filePath := filepath.Join(s.certificateDir, req.RequestID+".pdf")
	if err := pdf.OutputFileAndClose(filePath); err != nil {
		slog.Warn("certificate render failed", "requestId", req.RequestID, "err", err)
		return
	}

	if s.crypto != nil && s.crypto.Configured() {
		data, err := os.ReadFile(filePath)
		if err != nil {
			slog.Warn("certificate read failed", "requestId", req.RequestID, "err", err)
			return
		}
		encrypted, err := s.crypto.Encrypt(data)
		if err != nil {
			slog.Warn("certificate encrypt failed", "requestId", req.RequestID, "err", err)
			return
		}
		encPath := filePath + ".enc"
		if err := os.WriteFile(encPath, encrypted, 0o600); err != nil {
			slog.Warn("certificate write failed", "requestId", req.RequestID, "err", err)
			return
		}
		_ = os.Remove(filePath)
		filePath = encPath
	}

	token, err := generateDownloadToken()
	if err != nil {
		slog.Warn("certificate token generation failed", "requestId", req.RequestID, "err", err)
		return
	}
	tokenHash, err := auth.HashSecret(token)
	if err != nil {
		slog.Warn("certificate token hash failed", "requestId", req.RequestID, "err", err)
		return
	}
	if err := s.store.UpdateCertificate(ctx, req.RequestID, filePath, tokenHash); err != nil {
		slog.Warn("certificate record failed", "requestId", req.RequestID, "err", err)
		return
	}
	// The plaintext token is only ever readable by the request owner through
	// the status endpoint; the row keeps just the hash.
	if err := s.store.MergeMetadata(ctx, req.RequestID, map[string]any{"certificateToken": token}); err != nil {
		slog.Warn("certificate token record failed", "requestId", req.RequestID, "err", err)
	}
}

// OpenCertificate validates the download token and returns the decrypted PDF.
func (s *Service) OpenCertificate(ctx context.Context, tenantID, requestID, token string) ([]byte, error) {
	path, tokenHash, err := s.store.CertificateInfo(ctx, tenantID, requestID)
	if err != nil {
		return nil, err
	}
	if auth.CheckSecret(tokenHash, token) != nil {
		return nil, ErrBadDownloadToken
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	if filepath.Ext(path) == ".enc" {
		return s.crypto.Decrypt(data)
	}
	return data, nil
}

func generateDownloadToken() (string, error) {
	raw := make([]byte, 32)
	if _, err := rand.Read(raw); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(raw), nil
}

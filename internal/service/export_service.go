package service

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/teebox-golf/teebox-api/internal/models"
	"github.com/teebox-golf/teebox-api/pkg/export"
	"github.com/teebox-golf/teebox-api/pkg/storage"
)

type exportApplicationLister interface {
	ListPending(ctx context.Context, limit, offset int) ([]models.Application, error)
}

type fileStorage interface {
	Save(filename string, data []byte) (string, error)
	Open(filename string) (*os.File, error)
	Delete(filename string) error
	CleanupOlderThan(ttl time.Duration) ([]string, error)
}

// ExportConfig tunes export behaviour.
type ExportConfig struct {
	APIPrefix string
	ResultTTL time.Duration
	PageSize  int
}

// ExportResult captures successful generation metadata.
type ExportResult struct {
	RelativePath string
	Token        string
	URL          string
	Format       models.ExportFormat
	ExpiresAt    time.Time
}

type csvRenderer interface {
	Render(data export.Dataset) ([]byte, error)
}

type pdfRenderer interface {
	Render(data export.Dataset, title string) ([]byte, error)
}

// ExportService renders the pending queue into downloadable files for the
// admin panel.
type ExportService struct {
	apps    exportApplicationLister
	storage fileStorage
	csv     csvRenderer
	pdf     pdfRenderer
	signer  *storage.SignedURLSigner
	logger  *zap.Logger
	cfg     ExportConfig
}

// NewExportService constructs an ExportService.
func NewExportService(apps exportApplicationLister, store fileStorage, signer *storage.SignedURLSigner, cfg ExportConfig, logger *zap.Logger, csv csvRenderer, pdf pdfRenderer) *ExportService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.ResultTTL <= 0 {
		cfg.ResultTTL = 24 * time.Hour
	}
	if cfg.PageSize <= 0 {
		cfg.PageSize = 500
	}
	if csv == nil {
		csv = export.NewCSVExporter()
	}
	if pdf == nil {
		pdf = export.NewPDFExporter()
	}
	return &ExportService{
		apps:    apps,
		storage: store,
		csv:     csv,
		pdf:     pdf,
		signer:  signer,
		logger:  logger,
		cfg:     cfg,
	}
}

var exportHeaders = []string{"position", "email", "display_name", "role", "city_region", "score", "applied_at"}

// Generate renders the full pending queue in admission order and stores the
// file, returning a signed download URL.
func (s *ExportService) Generate(ctx context.Context, format models.ExportFormat) (*ExportResult, error) {
	if !models.ValidExportFormat(format) {
		return nil, fmt.Errorf("unsupported format %s", format)
	}

	dataset, err := s.buildDataset(ctx)
	if err != nil {
		return nil, err
	}

	var payload []byte
	switch format {
	case models.ExportFormatCSV:
		payload, err = s.csv.Render(dataset)
	case models.ExportFormatPDF:
		payload, err = s.pdf.Render(dataset, "Waitlist Pending Queue")
	}
	if err != nil {
		return nil, err
	}

	exportID := uuid.NewString()
	filename := fmt.Sprintf("waitlist-pending-%s-%s.%s", time.Now().UTC().Format("20060102-150405"), exportID[:8], format)
	relPath, err := s.storage.Save(filename, payload)
	if err != nil {
		return nil, err
	}

	token, expiresAt, err := s.signer.Generate(exportID, relPath)
	if err != nil {
		return nil, err
	}
	prefix := strings.TrimRight(s.cfg.APIPrefix, "/")
	if prefix == "" {
		prefix = "/api/v1"
	}

	return &ExportResult{
		RelativePath: relPath,
		Token:        token,
		URL:          fmt.Sprintf("%s/admin/waitlist/exports/%s", prefix, token),
		Format:       format,
		ExpiresAt:    expiresAt,
	}, nil
}

func (s *ExportService) buildDataset(ctx context.Context) (export.Dataset, error) {
	dataset := export.Dataset{Headers: exportHeaders}
	position := 0
	for offset := 0; ; offset += s.cfg.PageSize {
		batch, err := s.apps.ListPending(ctx, s.cfg.PageSize, offset)
		if err != nil {
			return export.Dataset{}, err
		}
		for _, app := range batch {
			position++
			dataset.Rows = append(dataset.Rows, map[string]string{
				"position":     fmt.Sprintf("%d", position),
				"email":        app.Email,
				"display_name": app.DisplayName,
				"role":         string(app.Role),
				"city_region":  app.CityRegion,
				"score":        fmt.Sprintf("%d", app.Score),
				"applied_at":   app.CreatedAt.UTC().Format(time.RFC3339),
			})
		}
		if len(batch) < s.cfg.PageSize {
			return dataset, nil
		}
	}
}

// ParseToken validates download token metadata.
func (s *ExportService) ParseToken(token string, allowExpired bool) (exportID, relPath string, expiresAt time.Time, err error) {
	return s.signer.Parse(token, allowExpired)
}

// Open returns a handle to the stored file.
func (s *ExportService) Open(relPath string) (*os.File, error) {
	return s.storage.Open(relPath)
}

// Delete removes a stored export file.
func (s *ExportService) Delete(relPath string) error {
	return s.storage.Delete(relPath)
}

// Cleanup removes exports older than the configured TTL.
func (s *ExportService) Cleanup() {
	removed, err := s.storage.CleanupOlderThan(s.cfg.ResultTTL)
	if err != nil {
		s.logger.Warn("export cleanup failed", zap.Error(err))
		return
	}
	if len(removed) > 0 {
		s.logger.Info("cleaned up expired exports", zap.Int("count", len(removed)))
	}
}

package service

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/vitrine-labs/vitrine-mod-api/internal/models"
	"github.com/vitrine-labs/vitrine-mod-api/pkg/export"
	"github.com/vitrine-labs/vitrine-mod-api/pkg/storage"
)

type decisionAuditReader interface {
	ListAuditLogs(ctx context.Context, actions []string, from, to time.Time) ([]models.AuditLog, error)
}

type unpromotedReader interface {
	ListApprovedUnpromoted(ctx context.Context) ([]models.ProductSubmission, error)
}

type catalogReader interface {
	ListAll(ctx context.Context) ([]models.CatalogProduct, error)
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
}

// ExportResult captures successful generation metadata.
type ExportResult struct {
	RelativePath string
	Token        string
	URL          string
	Format       models.ExportFormat
	ExpiresAt    time.Time
}

// ExportService builds export datasets and persists rendered files.
type ExportService struct {
	audits     decisionAuditReader
	unpromoted unpromotedReader
	catalog    catalogReader
	storage    fileStorage
	csv        csvRenderer
	pdf        pdfRenderer
	signer     *storage.SignedURLSigner
	logger     *zap.Logger
	cfg        ExportConfig
}

type csvRenderer interface {
	Render(data export.Dataset) ([]byte, error)
}

type pdfRenderer interface {
	Render(data export.Dataset, title string) ([]byte, error)
}

// NewExportService constructs an ExportService.
func NewExportService(audits decisionAuditReader, unpromoted unpromotedReader, catalog catalogReader, storage fileStorage, signer *storage.SignedURLSigner, cfg ExportConfig, logger *zap.Logger, csv csvRenderer, pdf pdfRenderer) *ExportService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.ResultTTL <= 0 {
		cfg.ResultTTL = 24 * time.Hour
	}
	if csv == nil {
		csv = export.NewCSVExporter()
	}
	if pdf == nil {
		pdf = export.NewPDFExporter()
	}
	return &ExportService{
		audits:     audits,
		unpromoted: unpromoted,
		catalog:    catalog,
		storage:    storage,
		csv:        csv,
		pdf:        pdf,
		signer:     signer,
		logger:     logger,
		cfg:        cfg,
	}
}

// Generate builds the dataset according to the job definition and stores the
// rendered export.
func (s *ExportService) Generate(ctx context.Context, job *models.ExportJob) (*ExportResult, error) {
	if job == nil {
		return nil, fmt.Errorf("job nil")
	}
	dataset, title, err := s.buildDataset(ctx, job)
	if err != nil {
		return nil, err
	}

	var payload []byte
	switch job.Params.Format {
	case models.ExportFormatCSV:
		payload, err = s.csv.Render(dataset)
	case models.ExportFormatPDF:
		payload, err = s.pdf.Render(dataset, title)
	default:
		err = fmt.Errorf("unsupported format %s", job.Params.Format)
	}
	if err != nil {
		return nil, err
	}

	filename := s.buildFilename(job)
	relPath, err := s.storage.Save(filename, payload)
	if err != nil {
		return nil, err
	}

	token, expiresAt, err := s.signer.Generate(job.ID, relPath)
	if err != nil {
		return nil, err
	}
	signedURL := strings.TrimRight(s.cfg.APIPrefix, "/")
	if signedURL == "" {
		signedURL = "/api/v1"
	}
	signedURL = fmt.Sprintf("%s/exports/download/%s", signedURL, token)

	return &ExportResult{
		RelativePath: relPath,
		Token:        token,
		URL:          signedURL,
		Format:       job.Params.Format,
		ExpiresAt:    expiresAt,
	}, nil
}

// ParseToken validates download token metadata.
func (s *ExportService) ParseToken(token string, allowExpired bool) (jobID, relPath string, expiresAt time.Time, err error) {
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

// Cleanup removes files older than ttl (defaults to configured ResultTTL when ttl <= 0).
func (s *ExportService) Cleanup(ttl time.Duration) ([]string, error) {
	if ttl <= 0 {
		ttl = s.cfg.ResultTTL
	}
	return s.storage.CleanupOlderThan(ttl)
}

func (s *ExportService) buildFilename(job *models.ExportJob) string {
	timestamp := time.Now().UTC().Format("20060102_150405")
	kindPart := "all"
	if job.Params.Kind != nil {
		kindPart = sanitizeFilename(string(*job.Params.Kind))
	}
	return fmt.Sprintf("%s_%s_%s.%s", strings.ToLower(string(job.Type)), kindPart, timestamp, job.Params.Format)
}

func sanitizeFilename(raw string) string {
	if raw == "" {
		return "na"
	}
	replacer := strings.NewReplacer(" ", "_", "/", "-", "\\", "-", ":", "-", "..", ".", "__", "_")
	result := replacer.Replace(raw)
	if len(result) > 100 {
		return result[:100]
	}
	return result
}

func (s *ExportService) buildDataset(ctx context.Context, job *models.ExportJob) (export.Dataset, string, error) {
	switch job.Type {
	case models.ExportTypeDecisions:
		return s.buildDecisionDataset(ctx, job.Params)
	case models.ExportTypeUnpromoted:
		return s.buildUnpromotedDataset(ctx)
	case models.ExportTypeCatalog:
		return s.buildCatalogDataset(ctx)
	default:
		return export.Dataset{}, "", fmt.Errorf("unsupported export type %s", job.Type)
	}
}

func (s *ExportService) buildDecisionDataset(ctx context.Context, params models.ExportJobParams) (export.Dataset, string, error) {
	from, to := exportWindow(params)
	actions := []string{models.AuditActionSubmissionReview, models.AuditActionSubmissionPromote}
	logs, err := s.audits.ListAuditLogs(ctx, actions, from, to)
	if err != nil {
		return export.Dataset{}, "", err
	}
	dataRows := make([]map[string]string, 0, len(logs))
	for _, row := range logs {
		if params.Kind != nil && !strings.Contains(row.Resource, string(*params.Kind)) {
			continue
		}
		dataRows = append(dataRows, map[string]string{
			"Decision At": row.CreatedAt.UTC().Format(time.RFC3339),
			"Action":      row.Action,
			"Resource":    row.Resource,
			"Resource ID": deref(row.ResourceID),
			"Reviewer ID": deref(row.UserID),
			"Details":     string(row.NewValues),
		})
	}
	dataset := export.Dataset{
		Headers: []string{"Decision At", "Action", "Resource", "Resource ID", "Reviewer ID", "Details"},
		Rows:    dataRows,
	}
	title := fmt.Sprintf("Moderation Decisions %s to %s", from.Format("2006-01-02"), to.Format("2006-01-02"))
	return dataset, title, nil
}

func (s *ExportService) buildUnpromotedDataset(ctx context.Context) (export.Dataset, string, error) {
	subs, err := s.unpromoted.ListApprovedUnpromoted(ctx)
	if err != nil {
		return export.Dataset{}, "", err
	}
	dataRows := make([]map[string]string, 0, len(subs))
	for _, sub := range subs {
		dataRows = append(dataRows, map[string]string{
			"Submission ID": sub.ID,
			"Name":          sub.Name,
			"Submitter ID":  sub.SubmitterID,
			"Reviewer ID":   deref(sub.ReviewerID),
			"Reviewed At":   formatExportTime(sub.ReviewedAt),
			"Submitted At":  sub.SubmittedAt.UTC().Format(time.RFC3339),
		})
	}
	dataset := export.Dataset{
		Headers: []string{"Submission ID", "Name", "Submitter ID", "Reviewer ID", "Reviewed At", "Submitted At"},
		Rows:    dataRows,
	}
	return dataset, "Approved Submissions Awaiting Publication", nil
}

func (s *ExportService) buildCatalogDataset(ctx context.Context) (export.Dataset, string, error) {
	products, err := s.catalog.ListAll(ctx)
	if err != nil {
		return export.Dataset{}, "", err
	}
	dataRows := make([]map[string]string, 0, len(products))
	for _, product := range products {
		dataRows = append(dataRows, map[string]string{
			"Product ID":     product.ID,
			"Name":           product.Name,
			"Category":       product.Category,
			"Price":          fmt.Sprintf("%.2f", product.Price),
			"Commission (%)": fmt.Sprintf("%.2f", product.CommissionRate),
			"Active":         fmt.Sprintf("%t", product.Active),
			"Featured":       fmt.Sprintf("%t", product.Featured),
			"Order":          fmt.Sprintf("%d", product.OrderIndex),
			"Created At":     product.CreatedAt.UTC().Format(time.RFC3339),
		})
	}
	dataset := export.Dataset{
		Headers: []string{"Product ID", "Name", "Category", "Price", "Commission (%)", "Active", "Featured", "Order", "Created At"},
		Rows:    dataRows,
	}
	return dataset, "Catalog Inventory", nil
}

func exportWindow(params models.ExportJobParams) (time.Time, time.Time) {
	to := time.Now().UTC()
	if params.To != nil {
		to = params.To.UTC()
	}
	from := to.AddDate(0, -1, 0)
	if params.From != nil {
		from = params.From.UTC()
	}
	return from, to
}

func deref(ptr *string) string {
	if ptr == nil {
		return ""
	}
	return *ptr
}

func formatExportTime(t *time.Time) string {
	if t == nil {
		return ""
	}
	return t.UTC().Format(time.RFC3339)
}

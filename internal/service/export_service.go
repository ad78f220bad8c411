package service

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/motherland-app/admin-console-api/internal/models"
	appErrors "github.com/motherland-app/admin-console-api/pkg/errors"
	"github.com/motherland-app/admin-console-api/pkg/export"
)

// ExportFormat selects the rendered document type.
type ExportFormat string

const (
	FormatCSV ExportFormat = "csv"
	FormatPDF ExportFormat = "pdf"
)

// ExportResult is a rendered review-queue report.
type ExportResult struct {
	FileName    string
	ContentType string
	Content     []byte
}

// ExportService renders the pending review queue as a downloadable report.
type ExportService struct {
	listings *ListingService
	csv      *export.CSVExporter
	pdf      *export.PDFExporter
	audit    auditWriter
	logger   *zap.Logger
	now      func() time.Time
}

// NewExportService constructs an ExportService.
func NewExportService(listings *ListingService, audit auditWriter, logger *zap.Logger) *ExportService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ExportService{
		listings: listings,
		csv:      export.NewCSVExporter(),
		pdf:      export.NewPDFExporter(),
		audit:    audit,
		logger:   logger,
		now:      time.Now,
	}
}

var exportHeaders = []string{"Listing ID", "Class", "Location", "Instructor Email", "Submitted"}

// ReviewQueueReport renders the current pending queue in the requested
// format.
func (s *ExportService) ReviewQueueReport(ctx context.Context, format ExportFormat, actor models.Session, requestID string) (*ExportResult, error) {
	queue, err := s.listings.ReviewQueue(ctx)
	if err != nil {
		return nil, err
	}

	dataset := export.Dataset{Headers: exportHeaders}
	for _, item := range queue.Items {
		submitted := ""
		if item.Listing.CreatedAt != 0 {
			submitted = time.UnixMilli(item.Listing.CreatedAt).UTC().Format("2006-01-02 15:04")
		}
		dataset.Rows = append(dataset.Rows, map[string]string{
			"Listing ID":       item.Listing.ID,
			"Class":            item.Listing.DisplayName(),
			"Location":         item.Listing.Location,
			"Instructor Email": item.Instructor.Email,
			"Submitted":        submitted,
		})
	}

	stamp := s.now().UTC().Format("20060102-150405")
	var result *ExportResult
	switch format {
	case FormatCSV:
		content, err := s.csv.Render(dataset)
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render csv")
		}
		result = &ExportResult{
			FileName:    fmt.Sprintf("review-queue-%s.csv", stamp),
			ContentType: "text/csv",
			Content:     content,
		}
	case FormatPDF:
		content, err := s.pdf.Render(dataset, "Pending Review Queue")
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render pdf")
		}
		result = &ExportResult{
			FileName:    fmt.Sprintf("review-queue-%s.pdf", stamp),
			ContentType: "application/pdf",
			Content:     content,
		}
	default:
		return nil, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("unsupported export format %q", format))
	}

	if s.audit != nil {
		if err := s.audit.Insert(ctx, models.AuditLog{
			ActorUID:  actor.UID,
			Action:    models.ActionExport,
			Resource:  "Listings",
			Outcome:   models.OutcomeOK,
			Detail:    string(format),
			RequestID: requestID,
		}); err != nil {
			s.logger.Warn("failed to record export audit log", zap.Error(err))
		}
	}

	return result, nil
}

package handler

import (
	"context"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/motherland-app/admin-console-api/internal/middleware"
	"github.com/motherland-app/admin-console-api/internal/models"
	"github.com/motherland-app/admin-console-api/internal/service"
	"github.com/motherland-app/admin-console-api/pkg/middleware/requestid"
	"github.com/motherland-app/admin-console-api/pkg/response"
)

type reportService interface {
	ReviewQueueReport(ctx context.Context, format service.ExportFormat, actor models.Session, requestID string) (*service.ExportResult, error)
}

// ExportHandler serves downloadable review-queue reports.
type ExportHandler struct {
	service reportService
}

// NewExportHandler creates a new handler.
func NewExportHandler(svc reportService) *ExportHandler {
	return &ExportHandler{service: svc}
}

// ReviewQueue godoc
// @Summary Export the pending queue
// @Description Render the pending review queue as CSV or PDF
// @Tags Exports
// @Produce text/csv,application/pdf
// @Param format query string false "csv or pdf" default(csv)
// @Success 200 {string} string "file content"
// @Failure 400 {object} response.Envelope
// @Router /exports/review-queue [get]
func (h *ExportHandler) ReviewQueue(c *gin.Context) {
	format := service.ExportFormat(c.DefaultQuery("format", string(service.FormatCSV)))

	result, err := h.service.ReviewQueueReport(
		c.Request.Context(),
		format,
		middleware.Session(c),
		requestid.Value(c),
	)
	if err != nil {
		response.Error(c, err)
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", result.FileName))
	c.Data(http.StatusOK, result.ContentType, result.Content)
}

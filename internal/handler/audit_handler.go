package handler

import (
	"context"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/motherland-app/admin-console-api/internal/models"
	"github.com/motherland-app/admin-console-api/pkg/response"
)

type auditLister interface {
	ListRecent(ctx context.Context, resource string, limit int) ([]models.AuditLog, error)
}

// AuditHandler exposes the moderation audit trail.
type AuditHandler struct {
	repo auditLister
}

// NewAuditHandler creates a new handler.
func NewAuditHandler(repo auditLister) *AuditHandler {
	return &AuditHandler{repo: repo}
}

// List godoc
// @Summary Recent audit entries
// @Description Newest audit entries, optionally filtered by resource
// @Tags Audit
// @Produce json
// @Param resource query string false "Resource filter, e.g. Listings/{id}"
// @Param limit query int false "Maximum entries" default(50)
// @Success 200 {object} response.Envelope
// @Router /audit [get]
func (h *AuditHandler) List(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))

	entries, err := h.repo.ListRecent(c.Request.Context(), c.Query("resource"), limit)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, entries)
}

package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/motherland-app/admin-console-api/internal/dto"
	"github.com/motherland-app/admin-console-api/internal/middleware"
	"github.com/motherland-app/admin-console-api/internal/models"
	appErrors "github.com/motherland-app/admin-console-api/pkg/errors"
	"github.com/motherland-app/admin-console-api/pkg/middleware/requestid"
	"github.com/motherland-app/admin-console-api/pkg/response"
)

type moderationService interface {
	Decide(ctx context.Context, listingID string, status models.ListingStatus, req dto.DecisionRequest, actor models.Session, requestID string) (*dto.DecisionResponse, error)
}

// ModerationHandler exposes the approve/reject endpoints.
type ModerationHandler struct {
	service moderationService
}

// NewModerationHandler creates a new handler.
func NewModerationHandler(svc moderationService) *ModerationHandler {
	return &ModerationHandler{service: svc}
}

// Approve godoc
// @Summary Approve a listing
// @Description Mark the listing approved in the global collection and the instructor mirror
// @Tags Moderation
// @Accept json
// @Produce json
// @Param id path string true "Listing ID"
// @Param payload body dto.DecisionRequest false "Optional decision timestamp"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /listings/{id}/approve [post]
func (h *ModerationHandler) Approve(c *gin.Context) {
	h.decide(c, models.StatusApproved)
}

// Reject godoc
// @Summary Reject a listing
// @Description Mark the listing rejected in the global collection and the instructor mirror
// @Tags Moderation
// @Accept json
// @Produce json
// @Param id path string true "Listing ID"
// @Param payload body dto.DecisionRequest false "Optional decision timestamp"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /listings/{id}/reject [post]
func (h *ModerationHandler) Reject(c *gin.Context) {
	h.decide(c, models.StatusRejected)
}

func (h *ModerationHandler) decide(c *gin.Context, status models.ListingStatus) {
	listingID := c.Param("id")
	if listingID == "" {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "listing id is required"))
		return
	}

	var req dto.DecisionRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid decision payload"))
			return
		}
	}

	res, err := h.service.Decide(
		c.Request.Context(),
		listingID,
		status,
		req,
		middleware.Session(c),
		requestid.Value(c),
	)
	if err != nil {
		response.Error(c, err)
		return
	}

	var meta map[string]interface{}
	if !res.Mirrored {
		meta = map[string]interface{}{
			"code":    appErrors.ErrPartialWrite.Code,
			"warning": appErrors.ErrPartialWrite.Message,
		}
	}
	response.JSON(c, http.StatusOK, res, meta)
}

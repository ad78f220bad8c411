package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/motherland-app/admin-console-api/internal/dto"
	"github.com/motherland-app/admin-console-api/pkg/response"
)

type instructorService interface {
	Instructors(ctx context.Context) (*dto.InstructorListResponse, error)
}

// InstructorHandler serves the per-instructor moderation view.
type InstructorHandler struct {
	listings instructorService
}

// NewInstructorHandler creates a new handler.
func NewInstructorHandler(listings instructorService) *InstructorHandler {
	return &InstructorHandler{listings: listings}
}

// List godoc
// @Summary Instructors with their listings
// @Description Instructor accounts and their own listing copies, queue order
// @Tags Instructors
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /instructors [get]
func (h *InstructorHandler) List(c *gin.Context) {
	res, err := h.listings.Instructors(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, res)
}

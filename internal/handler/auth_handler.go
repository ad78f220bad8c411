package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/motherland-app/admin-console-api/internal/dto"
	"github.com/motherland-app/admin-console-api/internal/middleware"
	"github.com/motherland-app/admin-console-api/internal/models"
	appErrors "github.com/motherland-app/admin-console-api/pkg/errors"
	"github.com/motherland-app/admin-console-api/pkg/response"
)

type loginService interface {
	Login(ctx context.Context, req dto.LoginRequest) (*dto.LoginResponse, error)
	Logout(ctx context.Context, session models.Session)
}

// AuthHandler wires HTTP endpoints to the session gate.
type AuthHandler struct {
	service loginService
}

// NewAuthHandler creates a new handler.
func NewAuthHandler(svc loginService) *AuthHandler {
	return &AuthHandler{service: svc}
}

// Login godoc
// @Summary Sign an admin in
// @Description Verify credentials with the identity provider and issue a console session token
// @Tags Authentication
// @Accept json
// @Produce json
// @Param payload body dto.LoginRequest true "Login payload"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 401 {object} response.Envelope
// @Failure 403 {object} response.Envelope
// @Router /auth/login [post]
func (h *AuthHandler) Login(c *gin.Context) {
	var req dto.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid login payload"))
		return
	}

	res, err := h.service.Login(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.JSON(c, http.StatusOK, res)
}

// Logout godoc
// @Summary Sign the admin out
// @Description Record the sign-out; the client discards its token
// @Tags Authentication
// @Success 204 "No Content"
// @Failure 401 {object} response.Envelope
// @Router /auth/logout [post]
func (h *AuthHandler) Logout(c *gin.Context) {
	h.service.Logout(c.Request.Context(), middleware.Session(c))
	response.NoContent(c)
}

// Session godoc
// @Summary Current session
// @Description Return the authenticated session claims
// @Tags Authentication
// @Produce json
// @Success 200 {object} response.Envelope
// @Failure 401 {object} response.Envelope
// @Router /auth/session [get]
func (h *AuthHandler) Session(c *gin.Context) {
	claims, ok := middleware.CurrentUser(c)
	if !ok {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	response.JSON(c, http.StatusOK, dto.SessionResponse{
		UID:      claims.UID,
		Email:    claims.Email,
		FullName: claims.FullName,
		UserType: claims.UserType,
	})
}

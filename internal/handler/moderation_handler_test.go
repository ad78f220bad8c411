package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/motherland-app/admin-console-api/internal/dto"
	"github.com/motherland-app/admin-console-api/internal/middleware"
	"github.com/motherland-app/admin-console-api/internal/models"
	appErrors "github.com/motherland-app/admin-console-api/pkg/errors"
)

type fakeModerationSrv struct {
	resp *dto.DecisionResponse
	err  error
	last struct {
		listingID string
		status    models.ListingStatus
		req       dto.DecisionRequest
		actor     models.Session
	}
}

func (f *fakeModerationSrv) Decide(_ context.Context, listingID string, status models.ListingStatus, req dto.DecisionRequest, actor models.Session, _ string) (*dto.DecisionResponse, error) {
	f.last.listingID = listingID
	f.last.status = status
	f.last.req = req
	f.last.actor = actor
	if f.err != nil {
		return nil, f.err
	}
	return f.resp, nil
}

type envelope struct {
	Data  map[string]interface{} `json:"data"`
	Error map[string]interface{} `json:"error"`
	Meta  map[string]interface{} `json:"meta"`
}

func newDecisionContext(t *testing.T, method, target, body, listingID string) (*gin.Context, *httptest.ResponseRecorder) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	var reader *strings.Reader
	if body == "" {
		reader = strings.NewReader("")
	} else {
		reader = strings.NewReader(body)
	}
	c.Request = httptest.NewRequest(method, target, reader)
	c.Params = gin.Params{{Key: "id", Value: listingID}}
	c.Set(middleware.ContextUserKey, &models.JWTClaims{UID: "admin-1", UserType: models.UserTypeAdmin})
	return c, rec
}

func TestApproveSuccess(t *testing.T) {
	srv := &fakeModerationSrv{resp: &dto.DecisionResponse{
		ListingID: "l1",
		Status:    models.StatusApproved,
		Mirrored:  true,
	}}
	handler := NewModerationHandler(srv)

	c, rec := newDecisionContext(t, http.MethodPost, "/listings/l1/approve", `{"timestamp": 42}`, "l1")
	handler.Approve(c)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "l1", srv.last.listingID)
	assert.Equal(t, models.StatusApproved, srv.last.status)
	assert.Equal(t, int64(42), srv.last.req.Timestamp)
	assert.Equal(t, "admin-1", srv.last.actor.UID)

	var env envelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env))
	assert.Nil(t, env.Meta)
	assert.Equal(t, "approved", env.Data["status"])
}

func TestRejectPassesStatus(t *testing.T) {
	srv := &fakeModerationSrv{resp: &dto.DecisionResponse{
		ListingID: "l1",
		Status:    models.StatusRejected,
		Mirrored:  true,
	}}
	handler := NewModerationHandler(srv)

	c, rec := newDecisionContext(t, http.MethodPost, "/listings/l1/reject", "", "l1")
	handler.Reject(c)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, models.StatusRejected, srv.last.status)
}

func TestDecisionGlobalOnlyCarriesWarning(t *testing.T) {
	srv := &fakeModerationSrv{resp: &dto.DecisionResponse{
		ListingID: "l1",
		Status:    models.StatusApproved,
		Mirrored:  false,
	}}
	handler := NewModerationHandler(srv)

	c, rec := newDecisionContext(t, http.MethodPost, "/listings/l1/approve", "", "l1")
	handler.Approve(c)

	assert.Equal(t, http.StatusOK, rec.Code)
	var env envelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env))
	assert.Equal(t, appErrors.ErrPartialWrite.Code, env.Meta["code"])
	assert.Contains(t, env.Meta["warning"], "mirror")
}

func TestDecisionNotFound(t *testing.T) {
	srv := &fakeModerationSrv{err: appErrors.Clone(appErrors.ErrNotFound, "listing not found")}
	handler := NewModerationHandler(srv)

	c, rec := newDecisionContext(t, http.MethodPost, "/listings/missing/approve", "", "missing")
	handler.Approve(c)

	assert.Equal(t, http.StatusNotFound, rec.Code)
	var env envelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env))
	assert.Equal(t, "NOT_FOUND", env.Error["code"])
}

func TestDecisionInvalidBody(t *testing.T) {
	handler := NewModerationHandler(&fakeModerationSrv{})

	c, rec := newDecisionContext(t, http.MethodPost, "/listings/l1/approve", `{"timestamp":"yesterday"}`, "l1")
	handler.Approve(c)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

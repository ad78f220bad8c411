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

type fakeLoginSrv struct {
	resp      *dto.LoginResponse
	err       error
	loggedOut []models.Session
}

func (f *fakeLoginSrv) Login(context.Context, dto.LoginRequest) (*dto.LoginResponse, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.resp, nil
}

func (f *fakeLoginSrv) Logout(_ context.Context, session models.Session) {
	f.loggedOut = append(f.loggedOut, session)
}

func TestLoginSuccess(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler := NewAuthHandler(&fakeLoginSrv{resp: &dto.LoginResponse{
		Token:    "token",
		UID:      "u1",
		UserType: models.UserTypeAdmin,
	}})

	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	c.Request = httptest.NewRequest(http.MethodPost, "/auth/login",
		strings.NewReader(`{"email":"admin@example.com","password":"secret"}`))

	handler.Login(c)

	assert.Equal(t, http.StatusOK, rec.Code)
	var env envelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env))
	assert.Equal(t, "token", env.Data["token"])
}

func TestLoginMalformedBody(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler := NewAuthHandler(&fakeLoginSrv{})

	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	c.Request = httptest.NewRequest(http.MethodPost, "/auth/login", strings.NewReader("{"))

	handler.Login(c)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestLoginForbiddenPassesThrough(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler := NewAuthHandler(&fakeLoginSrv{err: appErrors.ErrForbidden})

	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	c.Request = httptest.NewRequest(http.MethodPost, "/auth/login",
		strings.NewReader(`{"email":"inst@example.com","password":"secret"}`))

	handler.Login(c)

	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestLogoutRecordsSession(t *testing.T) {
	gin.SetMode(gin.TestMode)
	srv := &fakeLoginSrv{}
	handler := NewAuthHandler(srv)

	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	c.Request = httptest.NewRequest(http.MethodPost, "/auth/logout", nil)
	c.Set(middleware.ContextUserKey, &models.JWTClaims{UID: "u1", UserType: models.UserTypeAdmin})

	handler.Logout(c)
	// A bodyless status is buffered by gin's test writer until flushed.
	c.Writer.WriteHeaderNow()

	assert.Equal(t, http.StatusNoContent, rec.Code)
	require.Len(t, srv.loggedOut, 1)
	assert.Equal(t, "u1", srv.loggedOut[0].UID)
}

func TestSessionEchoesClaims(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler := NewAuthHandler(&fakeLoginSrv{})

	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	c.Request = httptest.NewRequest(http.MethodGet, "/auth/session", nil)
	c.Set(middleware.ContextUserKey, &models.JWTClaims{
		UID:      "u1",
		Email:    "admin@example.com",
		UserType: models.UserTypeAdmin,
	})

	handler.Session(c)

	assert.Equal(t, http.StatusOK, rec.Code)
	var env envelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env))
	assert.Equal(t, "u1", env.Data["uid"])
	assert.Equal(t, models.UserTypeAdmin, env.Data["user_type"])
}

func TestSessionUnauthenticated(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler := NewAuthHandler(&fakeLoginSrv{})

	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	c.Request = httptest.NewRequest(http.MethodGet, "/auth/session", nil)

	handler.Session(c)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/motherland-app/admin-console-api/internal/dto"
	"github.com/motherland-app/admin-console-api/internal/models"
	appErrors "github.com/motherland-app/admin-console-api/pkg/errors"
)

type fakeQueueSrv struct {
	queue   *dto.ReviewQueueResponse
	summary *dto.DashboardSummaryResponse
	err     error
}

func (f *fakeQueueSrv) ReviewQueue(context.Context) (*dto.ReviewQueueResponse, error) {
	return f.queue, f.err
}

func (f *fakeQueueSrv) Summary(context.Context) (*dto.DashboardSummaryResponse, error) {
	return f.summary, f.err
}

type fakeStreamer struct {
	ch chan dto.QueueEvent
}

func (f *fakeStreamer) Subscribe(context.Context) (<-chan dto.QueueEvent, func()) {
	return f.ch, func() {}
}

func TestQueueSuccess(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler := NewDashboardHandler(&fakeQueueSrv{
		queue: &dto.ReviewQueueResponse{
			Items: []models.ReviewItem{{
				Listing:    models.Listing{ID: "l1", Status: models.StatusPending},
				Instructor: models.Contact{Email: "inst@example.com"},
			}},
			Total: 1,
		},
	}, nil, 0)

	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	c.Request = httptest.NewRequest(http.MethodGet, "/dashboard/queue", nil)

	handler.Queue(c)

	assert.Equal(t, http.StatusOK, rec.Code)
	var env envelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env))
	assert.Equal(t, float64(1), env.Data["total"])
}

func TestQueueError(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler := NewDashboardHandler(&fakeQueueSrv{err: appErrors.ErrInternal}, nil, 0)

	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	c.Request = httptest.NewRequest(http.MethodGet, "/dashboard/queue", nil)

	handler.Queue(c)

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}

func TestSummarySuccess(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler := NewDashboardHandler(&fakeQueueSrv{
		summary: &dto.DashboardSummaryResponse{Pending: 3, Rejected: 1},
	}, nil, 0)

	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	c.Request = httptest.NewRequest(http.MethodGet, "/dashboard/summary", nil)

	handler.Summary(c)

	assert.Equal(t, http.StatusOK, rec.Code)
	var env envelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env))
	assert.Equal(t, float64(3), env.Data["pending"])
}

func TestStreamDeliversEvents(t *testing.T) {
	gin.SetMode(gin.TestMode)
	streamer := &fakeStreamer{ch: make(chan dto.QueueEvent, 2)}
	streamer.ch <- dto.QueueEvent{Seq: 1, Summary: dto.DashboardSummaryResponse{Pending: 1}}
	close(streamer.ch)

	handler := NewDashboardHandler(&fakeQueueSrv{}, streamer, 0)

	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	c.Request = httptest.NewRequest(http.MethodGet, "/dashboard/stream", nil)

	handler.Stream(c)

	assert.Equal(t, "text/event-stream", rec.Header().Get("Content-Type"))
	body := rec.Body.String()
	assert.Contains(t, body, "event: queue")
	assert.Contains(t, body, `"seq":1`)
}

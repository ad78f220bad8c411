package handler

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/motherland-app/admin-console-api/internal/dto"
	"github.com/motherland-app/admin-console-api/pkg/response"
)

type queueService interface {
	ReviewQueue(ctx context.Context) (*dto.ReviewQueueResponse, error)
	Summary(ctx context.Context) (*dto.DashboardSummaryResponse, error)
}

type queueStreamer interface {
	Subscribe(ctx context.Context) (<-chan dto.QueueEvent, func())
}

// DashboardHandler serves the review queue, the summary counters and the
// realtime stream behind the console.
type DashboardHandler struct {
	listings  queueService
	realtime  queueStreamer
	heartbeat time.Duration
}

// NewDashboardHandler creates a new handler.
func NewDashboardHandler(listings queueService, realtime queueStreamer, heartbeat time.Duration) *DashboardHandler {
	if heartbeat <= 0 {
		heartbeat = 30 * time.Second
	}
	return &DashboardHandler{listings: listings, realtime: realtime, heartbeat: heartbeat}
}

// Queue godoc
// @Summary Pending review queue
// @Description Pending listings enriched with instructor contacts, queue order
// @Tags Dashboard
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /dashboard/queue [get]
func (h *DashboardHandler) Queue(c *gin.Context) {
	res, err := h.listings.ReviewQueue(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, res)
}

// Summary godoc
// @Summary Queue counters
// @Description Listing counts per moderation status plus instructor total
// @Tags Dashboard
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /dashboard/summary [get]
func (h *DashboardHandler) Summary(c *gin.Context) {
	res, err := h.listings.Summary(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, res)
}

// Stream godoc
// @Summary Realtime queue stream
// @Description Server-sent events; one frame per review-queue change
// @Tags Dashboard
// @Produce text/event-stream
// @Success 200 {string} string "event stream"
// @Router /dashboard/stream [get]
func (h *DashboardHandler) Stream(c *gin.Context) {
	c.Writer.Header().Set("Content-Type", "text/event-stream")
	c.Writer.Header().Set("Cache-Control", "no-cache")
	c.Writer.Header().Set("Connection", "keep-alive")
	c.Writer.Header().Set("X-Accel-Buffering", "no")

	flusher, ok := c.Writer.(http.Flusher)
	if !ok {
		response.Error(c, fmt.Errorf("streaming unsupported"))
		return
	}

	events, cancel := h.realtime.Subscribe(c.Request.Context())
	defer cancel()

	heartbeat := time.NewTicker(h.heartbeat)
	defer heartbeat.Stop()

	c.Writer.WriteHeader(http.StatusOK)
	flusher.Flush()

	for {
		select {
		case <-c.Request.Context().Done():
			return
		case <-heartbeat.C:
			fmt.Fprint(c.Writer, ": heartbeat\n\n")
			flusher.Flush()
		case event, open := <-events:
			if !open {
				return
			}
			payload, err := json.Marshal(event)
			if err != nil {
				continue
			}
			fmt.Fprintf(c.Writer, "event: queue\ndata: %s\n\n", payload)
			flusher.Flush()
		}
	}
}

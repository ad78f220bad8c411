package dto

import "github.com/motherland-app/admin-console-api/internal/models"

// DashboardSummaryResponse aggregates queue counts for the console header.
type DashboardSummaryResponse struct {
	Pending     int `json:"pending"`
	Approved    int `json:"approved"`
	Published   int `json:"published"`
	Rejected    int `json:"rejected"`
	Instructors int `json:"instructors"`
}

// QueueEvent is one SSE frame pushed to connected consoles whenever the
// review queue changes.
type QueueEvent struct {
	Items   []models.ReviewItem      `json:"items"`
	Summary DashboardSummaryResponse `json:"summary"`
	Seq     uint64                   `json:"seq"`
}

package dto

import "github.com/motherland-app/admin-console-api/internal/models"

// DecisionRequest is the payload for approve/reject endpoints. Timestamp is
// optional epoch milliseconds; the server clock is used when absent.
type DecisionRequest struct {
	Timestamp int64 `json:"timestamp" validate:"omitempty,min=0"`
}

// DecisionResponse reports where the moderation write landed.
type DecisionResponse struct {
	ListingID string               `json:"listing_id"`
	Status    models.ListingStatus `json:"status"`
	DecidedAt int64                `json:"decided_at"`
	MirrorKey string               `json:"mirror_key,omitempty"`
	Mirrored  bool                 `json:"mirrored"`
}

// ReviewQueueResponse is the global pending queue with instructor contacts.
type ReviewQueueResponse struct {
	Items []models.ReviewItem `json:"items"`
	Total int                 `json:"total"`
}

// InstructorListResponse groups instructors with their own listings.
type InstructorListResponse struct {
	Instructors []models.Instructor `json:"instructors"`
	Total       int                 `json:"total"`
}

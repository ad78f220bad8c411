package models

import "time"

// AuditLog records one moderation or auth action in the audit trail.
type AuditLog struct {
	ID        int64     `db:"id" json:"id"`
	ActorUID  string    `db:"actor_uid" json:"actor_uid"`
	Action    string    `db:"action" json:"action"`
	Resource  string    `db:"resource" json:"resource"`
	Outcome   string    `db:"outcome" json:"outcome"`
	Detail    string    `db:"detail" json:"detail,omitempty"`
	RequestID string    `db:"request_id" json:"request_id,omitempty"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}

// Audit actions.
const (
	ActionLogin          = "auth.login"
	ActionLoginDenied    = "auth.login_denied"
	ActionLogout         = "auth.logout"
	ActionListingApprove = "listing.approve"
	ActionListingReject  = "listing.reject"
	ActionExport         = "listing.export"
)

// Audit outcomes.
const (
	OutcomeOK         = "ok"
	OutcomeDenied     = "denied"
	OutcomePartial    = "partial"
	OutcomeNotFoundDB = "not_found"
	OutcomeError      = "error"
)

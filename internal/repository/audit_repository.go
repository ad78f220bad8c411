package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/motherland-app/admin-console-api/internal/models"
)

// AuditRepository persists moderation and auth actions to the audit_logs
// table. A nil db degrades to a no-op trail so the console keeps working
// without Postgres.
type AuditRepository struct {
	db *sqlx.DB
}

// NewAuditRepository constructs an audit repository.
func NewAuditRepository(db *sqlx.DB) *AuditRepository {
	return &AuditRepository{db: db}
}

const createAuditTableQuery = `
	CREATE TABLE IF NOT EXISTS audit_logs (
		id BIGSERIAL PRIMARY KEY,
		actor_uid TEXT NOT NULL,
		action TEXT NOT NULL,
		resource TEXT NOT NULL,
		outcome TEXT NOT NULL,
		detail TEXT NOT NULL DEFAULT '',
		request_id TEXT NOT NULL DEFAULT '',
		created_at TIMESTAMPTZ NOT NULL DEFAULT now()
	)`

// EnsureSchema creates the audit_logs table when it does not exist yet.
func (r *AuditRepository) EnsureSchema(ctx context.Context) error {
	if r.db == nil {
		return nil
	}
	if _, err := r.db.ExecContext(ctx, createAuditTableQuery); err != nil {
		return fmt.Errorf("ensure audit schema: %w", err)
	}
	return nil
}

const insertAuditQuery = `
	INSERT INTO audit_logs (actor_uid, action, resource, outcome, detail, request_id, created_at)
	VALUES ($1, $2, $3, $4, $5, $6, $7)`

// Insert appends one entry to the audit trail.
func (r *AuditRepository) Insert(ctx context.Context, entry models.AuditLog) error {
	if r.db == nil {
		return nil
	}
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = time.Now().UTC()
	}

	_, err := r.db.ExecContext(ctx, insertAuditQuery,
		entry.ActorUID,
		entry.Action,
		entry.Resource,
		entry.Outcome,
		entry.Detail,
		entry.RequestID,
		entry.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert audit log: %w", err)
	}
	return nil
}

const listAuditQuery = `
	SELECT id, actor_uid, action, resource, outcome, detail, request_id, created_at
	FROM audit_logs
	WHERE ($1 = '' OR resource = $1)
	ORDER BY created_at DESC
	LIMIT $2`

// ListRecent returns the newest entries, optionally filtered by resource.
func (r *AuditRepository) ListRecent(ctx context.Context, resource string, limit int) ([]models.AuditLog, error) {
	if r.db == nil {
		return nil, nil
	}
	if limit <= 0 {
		limit = 50
	}

	var entries []models.AuditLog
	if err := r.db.SelectContext(ctx, &entries, listAuditQuery, resource, limit); err != nil {
		return nil, fmt.Errorf("list audit logs: %w", err)
	}
	return entries, nil
}

package events

import (
	"encoding/json"
	"fmt"

	"github.com/nats-io/nats.go"
	"go.uber.org/zap"

	"github.com/motherland-app/admin-console-api/internal/models"
	"github.com/motherland-app/admin-console-api/pkg/config"
)

// DecisionEvent is published after every moderation write so downstream
// consumers (search index, mobile feed) can react without polling.
type DecisionEvent struct {
	ListingID     string               `json:"listing_id"`
	InstructorUID string               `json:"instructor_uid"`
	Status        models.ListingStatus `json:"status"`
	DecidedAt     int64                `json:"decided_at"`
	Mirrored      bool                 `json:"mirrored"`
}

// Publisher emits moderation events over NATS. A nil Publisher is a no-op so
// the console runs without a broker.
type Publisher struct {
	conn   *nats.Conn
	prefix string
	logger *zap.Logger
}

// NewPublisher connects to the broker when events are enabled; it returns a
// nil publisher otherwise.
func NewPublisher(cfg config.EventsConfig, logger *zap.Logger) (*Publisher, error) {
	if !cfg.Enabled {
		return nil, nil
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	conn, err := nats.Connect(cfg.URL,
		nats.Name("admin-console-api"),
		nats.MaxReconnects(-1),
	)
	if err != nil {
		return nil, fmt.Errorf("connect nats: %w", err)
	}

	prefix := cfg.SubjectPrefix
	if prefix == "" {
		prefix = "listings"
	}
	return &Publisher{conn: conn, prefix: prefix, logger: logger}, nil
}

// PublishDecision emits the event on {prefix}.{status}.
func (p *Publisher) PublishDecision(event DecisionEvent) error {
	if p == nil || p.conn == nil {
		return nil
	}

	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshal decision event: %w", err)
	}

	subject := fmt.Sprintf("%s.%s", p.prefix, event.Status)
	if err := p.conn.Publish(subject, payload); err != nil {
		return fmt.Errorf("publish %s: %w", subject, err)
	}
	return nil
}

// Close drains the connection.
func (p *Publisher) Close() {
	if p == nil || p.conn == nil {
		return
	}
	if err := p.conn.Drain(); err != nil {
		p.logger.Warn("nats drain failed", zap.Error(err))
	}
}

package service

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"
	gomail "gopkg.in/gomail.v2"

	"github.com/motherland-app/admin-console-api/internal/models"
	"github.com/motherland-app/admin-console-api/pkg/config"
	"github.com/motherland-app/admin-console-api/pkg/jobs"
)

// decisionMail is the queued payload for one notification.
type decisionMail struct {
	To        string
	ClassName string
	Status    models.ListingStatus
}

// MailerService notifies instructors about moderation decisions. Sending
// happens on a background queue so a slow SMTP server never delays the
// moderation write.
type MailerService struct {
	cfg    config.MailerConfig
	dialer *gomail.Dialer
	queue  *jobs.Queue
	logger *zap.Logger
}

// NewMailerService constructs a mailer. A disabled config yields a service
// whose enqueues are no-ops.
func NewMailerService(cfg config.MailerConfig, logger *zap.Logger) *MailerService {
	if logger == nil {
		logger = zap.NewNop()
	}

	s := &MailerService{cfg: cfg, logger: logger}
	if !cfg.Enabled {
		return s
	}

	s.dialer = gomail.NewDialer(cfg.Host, cfg.Port, cfg.Username, cfg.Password)
	s.queue = jobs.NewQueue("decision-mail", s.handle, jobs.QueueConfig{
		Workers: cfg.Workers,
		Logger:  logger,
	})
	return s
}

// Start launches the mail workers.
func (s *MailerService) Start(ctx context.Context) {
	if s.queue != nil {
		s.queue.Start(ctx)
	}
}

// Stop drains the mail workers.
func (s *MailerService) Stop() {
	if s.queue != nil {
		s.queue.Stop()
	}
}

// EnqueueDecision queues a notification for the instructor. Rows with the
// placeholder contact are skipped.
func (s *MailerService) EnqueueDecision(contact models.Contact, listing models.Listing, status models.ListingStatus) {
	if s.queue == nil {
		return
	}
	if contact.Email == "" || contact.Email == MissingContactEmail {
		return
	}

	err := s.queue.Enqueue(jobs.Job{
		ID:   uuid.NewString(),
		Type: "decision",
		Payload: decisionMail{
			To:        contact.Email,
			ClassName: listing.DisplayName(),
			Status:    status,
		},
	})
	if err != nil {
		s.logger.Warn("failed to enqueue decision mail", zap.Error(err))
	}
}

func (s *MailerService) handle(_ context.Context, job jobs.Job) error {
	mail, ok := job.Payload.(decisionMail)
	if !ok {
		return fmt.Errorf("unexpected payload type %T", job.Payload)
	}

	subject := fmt.Sprintf("Your class listing was %s", mail.Status)
	body := fmt.Sprintf(
		"Hello,\n\nYour listing %q has been %s by the moderation team.\n\nThe MOTHERLAND team",
		mail.ClassName, mail.Status,
	)

	msg := gomail.NewMessage()
	msg.SetHeader("From", s.cfg.From)
	msg.SetHeader("To", mail.To)
	msg.SetHeader("Subject", subject)
	msg.SetBody("text/plain", body)

	if err := s.dialer.DialAndSend(msg); err != nil {
		return fmt.Errorf("send decision mail to %s: %w", mail.To, err)
	}
	return nil
}

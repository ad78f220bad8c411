package service

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/motherland-app/admin-console-api/internal/dto"
	"github.com/motherland-app/admin-console-api/internal/events"
	"github.com/motherland-app/admin-console-api/internal/models"
	appErrors "github.com/motherland-app/admin-console-api/pkg/errors"
)

type moderationStore interface {
	GetGlobal(ctx context.Context, id string) (models.Listing, bool, error)
	SetGlobal(ctx context.Context, id string, listing models.Listing) error
	GetMirror(ctx context.Context, uid, key string) (models.Listing, bool, error)
	SetMirror(ctx context.Context, uid, key string, listing models.Listing) error
}

type auditWriter interface {
	Insert(ctx context.Context, entry models.AuditLog) error
}

type decisionPublisher interface {
	PublishDecision(event events.DecisionEvent) error
}

type decisionNotifier interface {
	EnqueueDecision(contact models.Contact, listing models.Listing, status models.ListingStatus)
}

type decisionApplier interface {
	ApplyDecision(ctx context.Context, listing models.Listing)
}

// ModerationServiceParams wires the moderation synchronizer.
type ModerationServiceParams struct {
	Store     moderationStore
	Profiles  contactResolver
	Audit     auditWriter
	Publisher decisionPublisher
	Notifier  decisionNotifier
	Realtime  decisionApplier
	Cache     *CacheService
	Metrics   *MetricsService
	Logger    *zap.Logger
}

// ModerationService applies approve/reject decisions: it patches the global
// record first and then the instructor's mirror copy, tolerating mirrors
// that were never written or have since been deleted.
type ModerationService struct {
	store     moderationStore
	profiles  contactResolver
	audit     auditWriter
	publisher decisionPublisher
	notifier  decisionNotifier
	realtime  decisionApplier
	cache     *CacheService
	metrics   *MetricsService
	logger    *zap.Logger
	now       func() time.Time
}

// NewModerationService constructs a ModerationService.
func NewModerationService(p ModerationServiceParams) *ModerationService {
	if p.Logger == nil {
		p.Logger = zap.NewNop()
	}
	return &ModerationService{
		store:     p.Store,
		profiles:  p.Profiles,
		audit:     p.Audit,
		publisher: p.Publisher,
		notifier:  p.Notifier,
		realtime:  p.Realtime,
		cache:     p.Cache,
		metrics:   p.Metrics,
		logger:    p.Logger,
		now:       time.Now,
	}
}

// Decide applies a moderation decision to the listing. The write is a
// full-record overwrite of the stored record with only the status and the
// matching decision timestamp patched; every other stored field survives.
//
// The global record is authoritative: if it does not exist the decision is
// rejected, and if the instructor mirror does not exist the decision still
// succeeds with Mirrored=false.
func (s *ModerationService) Decide(ctx context.Context, listingID string, status models.ListingStatus, req dto.DecisionRequest, actor models.Session, requestID string) (*dto.DecisionResponse, error) {
	switch status {
	case models.StatusApproved, models.StatusRejected:
	default:
		return nil, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("unsupported decision status %q", status))
	}

	listing, ok, err := s.store.GetGlobal(ctx, listingID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load listing")
	}
	if !ok {
		s.writeAudit(ctx, actor, status, listingID, models.OutcomeNotFoundDB, requestID, "global record absent")
		s.metrics.RecordDecision(string(status), models.OutcomeNotFoundDB)
		return nil, appErrors.Clone(appErrors.ErrNotFound, "listing not found")
	}

	decidedAt := req.Timestamp
	if decidedAt == 0 {
		decidedAt = s.now().UTC().UnixMilli()
	}

	listing.Status = status
	if status == models.StatusRejected {
		listing.RejectedAt = decidedAt
	} else {
		listing.ApprovedAt = decidedAt
	}

	if err := s.store.SetGlobal(ctx, listingID, listing); err != nil {
		s.writeAudit(ctx, actor, status, listingID, models.OutcomeError, requestID, err.Error())
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to write listing")
	}

	mirrored, mirrorKey := s.syncMirror(ctx, listing, decidedAt)

	if s.realtime != nil {
		s.realtime.ApplyDecision(ctx, listing)
	}

	outcome := models.OutcomeOK
	if !mirrored {
		outcome = models.OutcomePartial
	}
	s.metrics.RecordDecision(string(status), outcome)
	s.writeAudit(ctx, actor, status, listingID, outcome, requestID, "")

	if err := s.cache.InvalidateConsole(ctx); err != nil {
		s.logger.Warn("cache invalidation failed after decision", zap.Error(err))
	}

	if s.publisher != nil {
		if err := s.publisher.PublishDecision(events.DecisionEvent{
			ListingID:     listingID,
			InstructorUID: listing.InstructorID,
			Status:        status,
			DecidedAt:     decidedAt,
			Mirrored:      mirrored,
		}); err != nil {
			s.logger.Warn("failed to publish decision event", zap.Error(err))
		}
	}

	if s.notifier != nil {
		contact := s.profiles.ResolveContact(ctx, listing.InstructorID)
		s.notifier.EnqueueDecision(contact, listing, status)
	}

	return &dto.DecisionResponse{
		ListingID: listingID,
		Status:    status,
		DecidedAt: decidedAt,
		MirrorKey: mirrorKey,
		Mirrored:  mirrored,
	}, nil
}

// syncMirror patches the decision onto the instructor's copy. The mirror
// keeps its own fields, the listingId backlink included; only the status and
// the decision timestamp land on it. A missing owner or mirror is not an
// error; the global record already holds the decision.
func (s *ModerationService) syncMirror(ctx context.Context, listing models.Listing, decidedAt int64) (bool, string) {
	if listing.InstructorID == "" {
		return false, ""
	}
	key := listing.MirrorKey()
	if key == "" {
		return false, ""
	}

	mirror, exists, err := s.store.GetMirror(ctx, listing.InstructorID, key)
	if err != nil {
		s.logger.Warn("mirror read failed",
			zap.String("uid", listing.InstructorID), zap.String("key", key), zap.Error(err))
		return false, key
	}
	if !exists {
		return false, key
	}

	mirror.Status = listing.Status
	if listing.Status == models.StatusRejected {
		mirror.RejectedAt = decidedAt
	} else {
		mirror.ApprovedAt = decidedAt
	}

	if err := s.store.SetMirror(ctx, listing.InstructorID, key, mirror); err != nil {
		s.logger.Warn("mirror write failed",
			zap.String("uid", listing.InstructorID), zap.String("key", key), zap.Error(err))
		return false, key
	}
	return true, key
}

func (s *ModerationService) writeAudit(ctx context.Context, actor models.Session, status models.ListingStatus, listingID, outcome, requestID, detail string) {
	if s.audit == nil {
		return
	}

	action := models.ActionListingApprove
	if status == models.StatusRejected {
		action = models.ActionListingReject
	}

	err := s.audit.Insert(ctx, models.AuditLog{
		ActorUID:  actor.UID,
		Action:    action,
		Resource:  "Listings/" + listingID,
		Outcome:   outcome,
		Detail:    detail,
		RequestID: requestID,
	})
	if err != nil {
		s.logger.Warn("failed to record moderation audit log", zap.Error(err))
	}
}

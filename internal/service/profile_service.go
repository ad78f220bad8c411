package service

import (
	"context"

	"go.uber.org/zap"

	"github.com/motherland-app/admin-console-api/internal/models"
)

// MissingContactEmail marks review-queue rows whose instructor profile could
// not be resolved.
const MissingContactEmail = "N/A"

type profileRepository interface {
	GetProfile(ctx context.Context, uid string) (models.PersonalInfo, bool, error)
}

// ProfileService resolves instructor identities for the review queue. Profile
// records accumulated three image field variants over time; resolution picks
// one deterministically so every consumer renders the same picture.
type ProfileService struct {
	repo   profileRepository
	logger *zap.Logger
}

// NewProfileService constructs a ProfileService.
func NewProfileService(repo profileRepository, logger *zap.Logger) *ProfileService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ProfileService{repo: repo, logger: logger}
}

// Picture returns the display picture for a profile: profileImageUrl first,
// then profilePicture, then profileImageUri, then empty.
func Picture(info models.PersonalInfo) string {
	if info.ProfileImageURL != "" {
		return info.ProfileImageURL
	}
	if info.ProfilePicture != "" {
		return info.ProfilePicture
	}
	return info.ProfileImageURI
}

// Contact reduces a profile to the identity shown on review-queue rows.
func Contact(info models.PersonalInfo) models.Contact {
	return models.Contact{
		Email:          info.Email,
		ProfilePicture: Picture(info),
	}
}

// MissingContact is the placeholder used when no profile exists.
func MissingContact() models.Contact {
	return models.Contact{Email: MissingContactEmail, ProfilePicture: ""}
}

// ResolveContact looks up the instructor profile for uid. Absent profiles
// and lookup failures both degrade to the placeholder so one broken account
// never takes down the whole queue.
func (s *ProfileService) ResolveContact(ctx context.Context, uid string) models.Contact {
	if uid == "" {
		return MissingContact()
	}

	info, ok, err := s.repo.GetProfile(ctx, uid)
	if err != nil {
		s.logger.Warn("profile lookup failed", zap.String("uid", uid), zap.Error(err))
		return MissingContact()
	}
	if !ok {
		return MissingContact()
	}
	return Contact(info)
}

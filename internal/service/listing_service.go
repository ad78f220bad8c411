package service

import (
	"context"
	"sort"

	"go.uber.org/zap"

	"github.com/motherland-app/admin-console-api/internal/dto"
	"github.com/motherland-app/admin-console-api/internal/models"
	appErrors "github.com/motherland-app/admin-console-api/pkg/errors"
)

type listingReader interface {
	ListGlobal(ctx context.Context) (map[string]models.Listing, error)
}

type instructorLister interface {
	ListInstructors(ctx context.Context) ([]models.Instructor, error)
}

type contactResolver interface {
	ResolveContact(ctx context.Context, uid string) models.Contact
}

// ListingServiceParams wires the listing aggregator.
type ListingServiceParams struct {
	Listings listingReader
	Users    instructorLister
	Profiles contactResolver
	Cache    *CacheService
	Logger   *zap.Logger
}

// ListingService builds the two moderation views: the per-instructor listing
// groups and the global pending review queue.
type ListingService struct {
	listings listingReader
	users    instructorLister
	profiles contactResolver
	cache    *CacheService
	logger   *zap.Logger
}

// NewListingService constructs a ListingService.
func NewListingService(p ListingServiceParams) *ListingService {
	if p.Logger == nil {
		p.Logger = zap.NewNop()
	}
	return &ListingService{
		listings: p.Listings,
		users:    p.Users,
		profiles: p.Profiles,
		cache:    p.Cache,
		logger:   p.Logger,
	}
}

// SortListings orders listings in place for the review views: pending first,
// live listings next, rejected last, newest decisions first within a bucket.
func SortListings(listings []models.Listing) {
	sort.SliceStable(listings, func(i, j int) bool {
		return listings[i].Less(listings[j])
	})
}

// Instructors returns instructor accounts with their own listings sorted for
// review. Instructors are ordered by uid, matching the backing store's key
// order, which the map scan during decoding loses.
func (s *ListingService) Instructors(ctx context.Context) (*dto.InstructorListResponse, error) {
	var cached dto.InstructorListResponse
	if hit, _ := s.cache.Get(ctx, CacheKeyInstructors, &cached); hit {
		return &cached, nil
	}

	instructors, err := s.users.ListInstructors(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load instructors")
	}

	for i := range instructors {
		hasPending := false
		for j, listing := range instructors[i].Listings {
			// Mirrors point at their global record through listingId; expose
			// that key so moderation calls land on the global collection.
			instructors[i].Listings[j].ID = listing.GlobalKey()
			if listing.Status == models.StatusPending {
				hasPending = true
			}
		}
		instructors[i].HasPending = hasPending
		SortListings(instructors[i].Listings)
	}
	sort.Slice(instructors, func(i, j int) bool {
		return instructors[i].UID < instructors[j].UID
	})

	resp := &dto.InstructorListResponse{
		Instructors: instructors,
		Total:       len(instructors),
	}
	_ = s.cache.Set(ctx, CacheKeyInstructors, resp, 0)
	return resp, nil
}

// ReviewQueue returns the global pending queue, each row enriched with the
// submitting instructor's contact. Unresolvable instructors degrade to the
// placeholder contact rather than failing the whole queue.
func (s *ListingService) ReviewQueue(ctx context.Context) (*dto.ReviewQueueResponse, error) {
	var cached dto.ReviewQueueResponse
	if hit, _ := s.cache.Get(ctx, CacheKeyReviewQueue, &cached); hit {
		return &cached, nil
	}

	listings, err := s.listings.ListGlobal(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load listings")
	}

	items := s.buildQueue(ctx, listings)
	resp := &dto.ReviewQueueResponse{Items: items, Total: len(items)}
	_ = s.cache.Set(ctx, CacheKeyReviewQueue, resp, 0)
	return resp, nil
}

// BuildQueue assembles pending review rows from a listings snapshot. Shared
// by ReviewQueue and the realtime stream reducer.
func (s *ListingService) BuildQueue(ctx context.Context, listings map[string]models.Listing) []models.ReviewItem {
	return s.buildQueue(ctx, listings)
}

func (s *ListingService) buildQueue(ctx context.Context, listings map[string]models.Listing) []models.ReviewItem {
	pending := make([]models.Listing, 0, len(listings))
	for id, listing := range listings {
		if listing.Status != models.StatusPending {
			continue
		}
		if listing.ID == "" {
			listing.ID = id
		}
		pending = append(pending, listing)
	}
	SortListings(pending)

	items := make([]models.ReviewItem, 0, len(pending))
	contacts := map[string]models.Contact{}
	for _, listing := range pending {
		contact, seen := contacts[listing.InstructorID]
		if !seen {
			contact = s.profiles.ResolveContact(ctx, listing.InstructorID)
			contacts[listing.InstructorID] = contact
		}
		items = append(items, models.ReviewItem{Listing: listing, Instructor: contact})
	}
	return items
}

// Summary counts listings per status for the console header.
func (s *ListingService) Summary(ctx context.Context) (*dto.DashboardSummaryResponse, error) {
	var cached dto.DashboardSummaryResponse
	if hit, _ := s.cache.Get(ctx, CacheKeySummary, &cached); hit {
		return &cached, nil
	}

	listings, err := s.listings.ListGlobal(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load listings")
	}

	instructors, err := s.users.ListInstructors(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load instructors")
	}

	resp := SummarizeListings(listings)
	resp.Instructors = len(instructors)
	_ = s.cache.Set(ctx, CacheKeySummary, resp, 0)
	return resp, nil
}

// SummarizeListings tallies queue counts from a listings snapshot.
func SummarizeListings(listings map[string]models.Listing) *dto.DashboardSummaryResponse {
	summary := &dto.DashboardSummaryResponse{}
	for _, listing := range listings {
		switch listing.Status {
		case models.StatusPending:
			summary.Pending++
		case models.StatusApproved:
			summary.Approved++
		case models.StatusPublished:
			summary.Published++
		case models.StatusRejected:
			summary.Rejected++
		}
	}
	return summary
}

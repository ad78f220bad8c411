package repository

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/motherland-app/admin-console-api/internal/models"
	"github.com/motherland-app/admin-console-api/pkg/rtdb"
)

// Database paths for listing records.
const (
	globalListingsPath = "Listings"
	usersPath          = "users"
	userListingsNode   = "Listings"
)

// ListingRepository reads and writes listing records in the realtime
// database: the global Listings collection and the per-instructor mirrors
// under users/{uid}/Listings.
type ListingRepository struct {
	store rtdb.Store
}

// NewListingRepository builds a listing repository on top of a realtime
// database store.
func NewListingRepository(store rtdb.Store) *ListingRepository {
	return &ListingRepository{store: store}
}

// GetGlobal reads Listings/{id}. The second return is false when the record
// does not exist.
func (r *ListingRepository) GetGlobal(ctx context.Context, id string) (models.Listing, bool, error) {
	var listing models.Listing
	ok, err := r.store.Get(ctx, rtdb.JoinPath(globalListingsPath, id), &listing)
	if err != nil {
		return models.Listing{}, false, fmt.Errorf("get listing %s: %w", id, err)
	}
	if !ok {
		return models.Listing{}, false, nil
	}
	if listing.ID == "" {
		listing.ID = id
	}
	return listing, true, nil
}

// SetGlobal overwrites Listings/{id} with the full record.
func (r *ListingRepository) SetGlobal(ctx context.Context, id string, listing models.Listing) error {
	if err := r.store.Set(ctx, rtdb.JoinPath(globalListingsPath, id), listing); err != nil {
		return fmt.Errorf("set listing %s: %w", id, err)
	}
	return nil
}

// ListGlobal reads the whole global collection keyed by listing id.
// Malformed entries are skipped rather than failing the scan.
func (r *ListingRepository) ListGlobal(ctx context.Context) (map[string]models.Listing, error) {
	var raw map[string]json.RawMessage
	ok, err := r.store.Get(ctx, globalListingsPath, &raw)
	if err != nil {
		return nil, fmt.Errorf("list listings: %w", err)
	}
	if !ok {
		return map[string]models.Listing{}, nil
	}
	listings, _ := models.DecodeListingMap(raw)
	return listings, nil
}

// GetMirror reads users/{uid}/Listings/{key}, the instructor's copy of a
// listing. False when the mirror is absent.
func (r *ListingRepository) GetMirror(ctx context.Context, uid, key string) (models.Listing, bool, error) {
	var listing models.Listing
	ok, err := r.store.Get(ctx, rtdb.JoinPath(usersPath, uid, userListingsNode, key), &listing)
	if err != nil {
		return models.Listing{}, false, fmt.Errorf("get mirror %s/%s: %w", uid, key, err)
	}
	return listing, ok, nil
}

// SetMirror overwrites the instructor's copy with the full record.
func (r *ListingRepository) SetMirror(ctx context.Context, uid, key string, listing models.Listing) error {
	if err := r.store.Set(ctx, rtdb.JoinPath(usersPath, uid, userListingsNode, key), listing); err != nil {
		return fmt.Errorf("set mirror %s/%s: %w", uid, key, err)
	}
	return nil
}

// ListByInstructor reads all mirrors under users/{uid}/Listings keyed by
// mirror key. Malformed entries are skipped.
func (r *ListingRepository) ListByInstructor(ctx context.Context, uid string) (map[string]models.Listing, error) {
	var raw map[string]json.RawMessage
	ok, err := r.store.Get(ctx, rtdb.JoinPath(usersPath, uid, userListingsNode), &raw)
	if err != nil {
		return nil, fmt.Errorf("list mirrors %s: %w", uid, err)
	}
	if !ok {
		return map[string]models.Listing{}, nil
	}
	listings, _ := models.DecodeListingMap(raw)
	return listings, nil
}

// WatchGlobal subscribes to the global Listings subtree.
func (r *ListingRepository) WatchGlobal(ctx context.Context, fn rtdb.WatchFunc) (rtdb.CancelFunc, error) {
	return r.store.Watch(ctx, globalListingsPath, fn)
}

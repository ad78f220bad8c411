package repository

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/motherland-app/admin-console-api/internal/models"
	"github.com/motherland-app/admin-console-api/pkg/rtdb"
)

const personalInfoNode = "personalInfo"

// UserRepository reads user profiles from the realtime database.
type UserRepository struct {
	store rtdb.Store
}

// NewUserRepository builds a user repository on top of a realtime database
// store.
func NewUserRepository(store rtdb.Store) *UserRepository {
	return &UserRepository{store: store}
}

// GetProfile reads users/{uid}/personalInfo. False when no profile exists.
func (r *UserRepository) GetProfile(ctx context.Context, uid string) (models.PersonalInfo, bool, error) {
	var info models.PersonalInfo
	ok, err := r.store.Get(ctx, rtdb.JoinPath(usersPath, uid, personalInfoNode), &info)
	if err != nil {
		return models.PersonalInfo{}, false, fmt.Errorf("get profile %s: %w", uid, err)
	}
	return info, ok, nil
}

// ListInstructors scans the users collection and returns instructor accounts
// with their own listings, keyed by uid. The userType match is exact-case;
// malformed user or listing entries are skipped.
func (r *UserRepository) ListInstructors(ctx context.Context) ([]models.Instructor, error) {
	var raw map[string]json.RawMessage
	ok, err := r.store.Get(ctx, usersPath, &raw)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	if !ok {
		return nil, nil
	}
	instructors, _ := models.DecodeInstructors(raw)
	return instructors, nil
}

// WatchUsers subscribes to the users subtree.
func (r *UserRepository) WatchUsers(ctx context.Context, fn rtdb.WatchFunc) (rtdb.CancelFunc, error) {
	return r.store.Watch(ctx, usersPath, fn)
}

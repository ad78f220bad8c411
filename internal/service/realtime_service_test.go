package service

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/motherland-app/admin-console-api/internal/dto"
	"github.com/motherland-app/admin-console-api/internal/models"
	"github.com/motherland-app/admin-console-api/pkg/rtdb"
)

// fakeWatcher hands the registered callback back to the test so snapshots
// can be injected synchronously.
type fakeWatcher struct {
	fn        rtdb.WatchFunc
	cancelled bool
}

func (f *fakeWatcher) WatchGlobal(_ context.Context, fn rtdb.WatchFunc) (rtdb.CancelFunc, error) {
	f.fn = fn
	fn(nil)
	return func() { f.cancelled = true }, nil
}

func (f *fakeWatcher) push(t *testing.T, listings map[string]models.Listing) {
	t.Helper()
	raw, err := json.Marshal(listings)
	require.NoError(t, err)
	f.fn(rtdb.Snapshot(raw))
}

type fakeUserWatcher struct {
	fn        rtdb.WatchFunc
	cancelled bool
}

func (f *fakeUserWatcher) WatchUsers(_ context.Context, fn rtdb.WatchFunc) (rtdb.CancelFunc, error) {
	f.fn = fn
	fn(nil)
	return func() { f.cancelled = true }, nil
}

func newRealtimeService(watcher *fakeWatcher) *RealtimeService {
	listings := newListingService(nil, nil, map[string]models.PersonalInfo{
		"u1": {Email: "inst@example.com"},
	})
	return NewRealtimeService(RealtimeServiceParams{
		Watcher:  watcher,
		Listings: listings,
		Buffer:   4,
	})
}

func drain(ch <-chan dto.QueueEvent) []dto.QueueEvent {
	var out []dto.QueueEvent
	for {
		select {
		case ev, ok := <-ch:
			if !ok {
				return out
			}
			out = append(out, ev)
		default:
			return out
		}
	}
}

func TestSubscribeDeliversCurrentQueue(t *testing.T) {
	watcher := &fakeWatcher{}
	svc := newRealtimeService(watcher)
	ctx := context.Background()
	require.NoError(t, svc.Start(ctx))

	watcher.push(t, map[string]models.Listing{
		"l1": {Status: models.StatusPending, InstructorID: "u1", CreatedAt: 100},
		"l2": {Status: models.StatusApproved, InstructorID: "u1"},
	})

	ch, cancel := svc.Subscribe(ctx)
	defer cancel()

	events := drain(ch)
	require.Len(t, events, 1)
	require.Len(t, events[0].Items, 1)
	assert.Equal(t, "l1", events[0].Items[0].Listing.ID)
	assert.Equal(t, "inst@example.com", events[0].Items[0].Instructor.Email)
	assert.Equal(t, 1, events[0].Summary.Pending)
	assert.Equal(t, 1, events[0].Summary.Approved)
}

func TestSnapshotReplacesOptimisticState(t *testing.T) {
	watcher := &fakeWatcher{}
	svc := newRealtimeService(watcher)
	ctx := context.Background()
	require.NoError(t, svc.Start(ctx))

	ch, cancel := svc.Subscribe(ctx)
	defer cancel()
	drain(ch)

	svc.ApplyDecision(ctx, models.Listing{ID: "l1", InstructorID: "u1", Status: models.StatusApproved})

	events := drain(ch)
	require.Len(t, events, 1)
	assert.Equal(t, 1, events[0].Summary.Approved)

	// The authoritative snapshot says the listing is still pending.
	watcher.push(t, map[string]models.Listing{
		"l1": {Status: models.StatusPending, InstructorID: "u1"},
	})

	events = drain(ch)
	require.Len(t, events, 1)
	assert.Equal(t, 0, events[0].Summary.Approved)
	assert.Equal(t, 1, events[0].Summary.Pending)
	require.Len(t, events[0].Items, 1)
}

func TestSequenceIncreases(t *testing.T) {
	watcher := &fakeWatcher{}
	svc := newRealtimeService(watcher)
	ctx := context.Background()
	require.NoError(t, svc.Start(ctx))

	ch, cancel := svc.Subscribe(ctx)
	defer cancel()
	first := drain(ch)
	require.Len(t, first, 1)

	watcher.push(t, map[string]models.Listing{"l1": {Status: models.StatusPending}})
	second := drain(ch)
	require.Len(t, second, 1)
	assert.Greater(t, second[0].Seq, first[0].Seq)
}

func TestCancelStopsDelivery(t *testing.T) {
	watcher := &fakeWatcher{}
	svc := newRealtimeService(watcher)
	ctx := context.Background()
	require.NoError(t, svc.Start(ctx))

	ch, cancel := svc.Subscribe(ctx)
	drain(ch)
	cancel()
	cancel() // idempotent

	watcher.push(t, map[string]models.Listing{"l1": {Status: models.StatusPending}})

	_, open := <-ch
	assert.False(t, open)
}

func TestUsersSnapshotUpdatesInstructorCount(t *testing.T) {
	watcher := &fakeWatcher{}
	users := &fakeUserWatcher{}
	listings := newListingService(nil, nil, map[string]models.PersonalInfo{
		"u1": {Email: "inst@example.com"},
	})
	svc := NewRealtimeService(RealtimeServiceParams{
		Watcher:  watcher,
		Users:    users,
		Listings: listings,
		Buffer:   4,
	})
	ctx := context.Background()
	require.NoError(t, svc.Start(ctx))

	ch, cancel := svc.Subscribe(ctx)
	defer cancel()
	drain(ch)

	users.fn(rtdb.Snapshot(`{
		"u1": {"personalInfo": {"userType": "instructor", "email": "inst@example.com"}},
		"a1": {"personalInfo": {"userType": "Admin"}}
	}`))

	events := drain(ch)
	require.Len(t, events, 1)
	assert.Equal(t, 1, events[0].Summary.Instructors)

	svc.Dispose()
	assert.True(t, users.cancelled)
}

func TestDisposeCancelsWatchAndClosesSubscribers(t *testing.T) {
	watcher := &fakeWatcher{}
	svc := newRealtimeService(watcher)
	ctx := context.Background()
	require.NoError(t, svc.Start(ctx))

	ch, _ := svc.Subscribe(ctx)
	drain(ch)

	svc.Dispose()
	svc.Dispose() // idempotent

	assert.True(t, watcher.cancelled)
	_, open := <-ch
	assert.False(t, open)

	// Late snapshots after dispose are dropped.
	watcher.push(t, map[string]models.Listing{"l1": {Status: models.StatusPending}})
}

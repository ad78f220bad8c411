package service

import (
	"context"
	"encoding/json"
	"sync"

	"go.uber.org/zap"

	"github.com/motherland-app/admin-console-api/internal/dto"
	"github.com/motherland-app/admin-console-api/internal/models"
	"github.com/motherland-app/admin-console-api/pkg/rtdb"
)

type listingWatcher interface {
	WatchGlobal(ctx context.Context, fn rtdb.WatchFunc) (rtdb.CancelFunc, error)
}

type userWatcher interface {
	WatchUsers(ctx context.Context, fn rtdb.WatchFunc) (rtdb.CancelFunc, error)
}

// RealtimeServiceParams wires the realtime queue stream. Users is optional;
// without it the stream's instructor count stays zero.
type RealtimeServiceParams struct {
	Watcher  listingWatcher
	Users    userWatcher
	Listings *ListingService
	Metrics  *MetricsService
	Buffer   int
	Logger   *zap.Logger
}

// RealtimeService owns the single subscription to the global listings
// subtree and fans reduced queue events out to connected consoles. Local
// decisions are applied to the state immediately; the next database snapshot
// is authoritative and replaces it wholesale.
type RealtimeService struct {
	watcher  listingWatcher
	users    userWatcher
	listings *ListingService
	metrics  *MetricsService
	buffer   int
	logger   *zap.Logger

	mu          sync.Mutex
	state       map[string]models.Listing
	instructors int
	seq         uint64
	subs        map[int]chan dto.QueueEvent
	nextID      int
	cancel      rtdb.CancelFunc
	usersCancel rtdb.CancelFunc
	started     bool
	disposed    bool
}

// NewRealtimeService constructs a RealtimeService.
func NewRealtimeService(p RealtimeServiceParams) *RealtimeService {
	if p.Logger == nil {
		p.Logger = zap.NewNop()
	}
	if p.Buffer <= 0 {
		p.Buffer = 8
	}
	return &RealtimeService{
		watcher:  p.Watcher,
		users:    p.Users,
		listings: p.Listings,
		metrics:  p.Metrics,
		buffer:   p.Buffer,
		logger:   p.Logger,
		state:    map[string]models.Listing{},
		subs:     map[int]chan dto.QueueEvent{},
	}
}

// Start establishes the database watches. Safe to call once.
func (s *RealtimeService) Start(ctx context.Context) error {
	s.mu.Lock()
	if s.started || s.disposed {
		s.mu.Unlock()
		return nil
	}
	s.started = true
	s.mu.Unlock()

	cancel, err := s.watcher.WatchGlobal(ctx, func(snapshot rtdb.Snapshot) {
		s.applySnapshot(ctx, snapshot)
	})
	if err != nil {
		s.mu.Lock()
		s.started = false
		s.mu.Unlock()
		return err
	}

	var usersCancel rtdb.CancelFunc
	if s.users != nil {
		usersCancel, err = s.users.WatchUsers(ctx, func(snapshot rtdb.Snapshot) {
			s.applyUsersSnapshot(ctx, snapshot)
		})
		if err != nil {
			cancel()
			s.mu.Lock()
			s.started = false
			s.mu.Unlock()
			return err
		}
	}

	s.mu.Lock()
	s.cancel = cancel
	s.usersCancel = usersCancel
	s.mu.Unlock()
	return nil
}

// Dispose tears down the watch and closes every subscriber channel. Safe to
// call more than once.
func (s *RealtimeService) Dispose() {
	s.mu.Lock()
	if s.disposed {
		s.mu.Unlock()
		return
	}
	s.disposed = true
	cancel := s.cancel
	usersCancel := s.usersCancel
	s.cancel = nil
	s.usersCancel = nil
	subs := s.subs
	s.subs = map[int]chan dto.QueueEvent{}
	s.mu.Unlock()

	if cancel != nil {
		cancel()
	}
	if usersCancel != nil {
		usersCancel()
	}
	for _, ch := range subs {
		close(ch)
	}
}

// Subscribe registers a console stream. The returned channel receives the
// current queue immediately and after every change; the cancel func must be
// called when the consumer goes away.
func (s *RealtimeService) Subscribe(ctx context.Context) (<-chan dto.QueueEvent, func()) {
	ch := make(chan dto.QueueEvent, s.buffer)

	s.mu.Lock()
	if s.disposed {
		s.mu.Unlock()
		close(ch)
		return ch, func() {}
	}
	id := s.nextID
	s.nextID++
	s.subs[id] = ch
	state, instructors, seq := s.copyStateLocked()
	s.mu.Unlock()

	event := s.buildEvent(ctx, state, instructors, seq)

	s.mu.Lock()
	if _, ok := s.subs[id]; ok {
		ch <- event
	}
	s.mu.Unlock()
	s.metrics.StreamClientConnected(1)

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			s.mu.Lock()
			if existing, ok := s.subs[id]; ok {
				delete(s.subs, id)
				close(existing)
			}
			s.mu.Unlock()
			s.metrics.StreamClientConnected(-1)
		})
	}
}

// ApplyDecision patches the local state with a freshly written record so
// streams reflect the decision before the next snapshot arrives.
func (s *RealtimeService) ApplyDecision(ctx context.Context, listing models.Listing) {
	if listing.ID == "" {
		return
	}

	s.mu.Lock()
	if s.disposed {
		s.mu.Unlock()
		return
	}
	s.state[listing.ID] = listing
	s.seq++
	state, instructors, seq := s.copyStateLocked()
	s.mu.Unlock()

	s.broadcast(s.buildEvent(ctx, state, instructors, seq))
}

func (s *RealtimeService) applySnapshot(ctx context.Context, snapshot rtdb.Snapshot) {
	next := map[string]models.Listing{}
	if snapshot != nil {
		var raw map[string]json.RawMessage
		if err := json.Unmarshal(snapshot, &raw); err != nil {
			s.logger.Warn("failed to decode listings snapshot", zap.Error(err))
			return
		}
		var skipped int
		next, skipped = models.DecodeListingMap(raw)
		s.metrics.RecordMalformedRecords(skipped)
	}

	s.mu.Lock()
	if s.disposed {
		s.mu.Unlock()
		return
	}
	s.state = next
	s.seq++
	state, instructors, seq := s.copyStateLocked()
	s.mu.Unlock()

	s.metrics.RecordQueueEvent()
	s.broadcast(s.buildEvent(ctx, state, instructors, seq))
}

func (s *RealtimeService) applyUsersSnapshot(ctx context.Context, snapshot rtdb.Snapshot) {
	count := 0
	if snapshot != nil {
		var raw map[string]json.RawMessage
		if err := json.Unmarshal(snapshot, &raw); err != nil {
			s.logger.Warn("failed to decode users snapshot", zap.Error(err))
			return
		}
		instructors, skipped := models.DecodeInstructors(raw)
		s.metrics.RecordMalformedRecords(skipped)
		count = len(instructors)
	}

	s.mu.Lock()
	if s.disposed {
		s.mu.Unlock()
		return
	}
	s.instructors = count
	s.seq++
	state, instructors, seq := s.copyStateLocked()
	s.mu.Unlock()

	s.broadcast(s.buildEvent(ctx, state, instructors, seq))
}

func (s *RealtimeService) copyStateLocked() (map[string]models.Listing, int, uint64) {
	state := make(map[string]models.Listing, len(s.state))
	for id, listing := range s.state {
		state[id] = listing
	}
	return state, s.instructors, s.seq
}

// buildEvent runs contact resolution outside the lock; the state passed in
// is a private copy.
func (s *RealtimeService) buildEvent(ctx context.Context, state map[string]models.Listing, instructors int, seq uint64) dto.QueueEvent {
	summary := SummarizeListings(state)
	summary.Instructors = instructors
	return dto.QueueEvent{
		Items:   s.listings.BuildQueue(ctx, state),
		Summary: *summary,
		Seq:     seq,
	}
}

// broadcast never blocks; a subscriber that cannot keep up loses
// intermediate events and catches up on the next one. Sends happen under the
// lock so a concurrent cancel can never close a channel mid-send.
func (s *RealtimeService) broadcast(event dto.QueueEvent) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, ch := range s.subs {
		select {
		case ch <- event:
		default:
		}
	}
}

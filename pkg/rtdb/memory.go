package rtdb

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"sync"
)

// MemoryStore is an in-process Store with the same contract as Client:
// null-for-absent reads, full-value overwrites and watches that fire once on
// subscribe and after every overlapping write. It backs the test suites and
// local development.
type MemoryStore struct {
	mu      sync.Mutex
	root    map[string]interface{}
	watches map[int]*memoryWatch
	nextID  int
}

type memoryWatch struct {
	path string
	fn   WatchFunc
}

// NewMemoryStore returns an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		root:    map[string]interface{}{},
		watches: map[int]*memoryWatch{},
	}
}

// Get implements Store.
func (s *MemoryStore) Get(ctx context.Context, path string, dest interface{}) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}

	s.mu.Lock()
	value, ok := lookup(s.root, segments(path))
	s.mu.Unlock()
	if !ok {
		return false, nil
	}

	raw, err := json.Marshal(value)
	if err != nil {
		return false, fmt.Errorf("memory get %s: %w", path, err)
	}
	if err := json.Unmarshal(raw, dest); err != nil {
		return false, fmt.Errorf("memory get %s: decode: %w", path, err)
	}
	return true, nil
}

// Set implements Store.
func (s *MemoryStore) Set(ctx context.Context, path string, value interface{}) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	raw, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("memory set %s: %w", path, err)
	}
	var decoded interface{}
	if err := json.Unmarshal(raw, &decoded); err != nil {
		return fmt.Errorf("memory set %s: decode: %w", path, err)
	}

	segs := segments(path)
	if len(segs) == 0 {
		return fmt.Errorf("memory set: empty path")
	}

	s.mu.Lock()
	store(s.root, segs, decoded)
	notify := s.snapshotsFor(segs)
	s.mu.Unlock()

	for _, n := range notify {
		n.fn(n.snapshot)
	}
	return nil
}

// Watch implements Store. The callback fires synchronously with the current
// value before Watch returns.
func (s *MemoryStore) Watch(ctx context.Context, path string, fn WatchFunc) (CancelFunc, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.Lock()
	id := s.nextID
	s.nextID++
	s.watches[id] = &memoryWatch{path: path, fn: fn}
	current, ok := lookup(s.root, segments(path))
	s.mu.Unlock()

	if ok {
		raw, err := json.Marshal(current)
		if err != nil {
			return nil, fmt.Errorf("memory watch %s: %w", path, err)
		}
		fn(Snapshot(raw))
	} else {
		fn(nil)
	}

	var once sync.Once
	return func() {
		once.Do(func() {
			s.mu.Lock()
			delete(s.watches, id)
			s.mu.Unlock()
		})
	}, nil
}

type pendingNotify struct {
	fn       WatchFunc
	snapshot Snapshot
}

// snapshotsFor collects callbacks overlapping the changed path along with the
// current full value of their watched subtree. Caller holds the lock.
func (s *MemoryStore) snapshotsFor(changed []string) []pendingNotify {
	var out []pendingNotify
	for _, w := range s.watches {
		watched := segments(w.path)
		if !overlaps(watched, changed) {
			continue
		}
		value, ok := lookup(s.root, watched)
		if !ok {
			out = append(out, pendingNotify{fn: w.fn, snapshot: nil})
			continue
		}
		raw, err := json.Marshal(value)
		if err != nil {
			continue
		}
		out = append(out, pendingNotify{fn: w.fn, snapshot: Snapshot(raw)})
	}
	return out
}

func segments(path string) []string {
	path = strings.Trim(path, "/")
	if path == "" {
		return nil
	}
	return strings.Split(path, "/")
}

// overlaps reports whether one path is an ancestor of (or equal to) the
// other; a write anywhere inside a watched subtree, or above it, changes the
// watched value.
func overlaps(a, b []string) bool {
	n := len(a)
	if len(b) < n {
		n = len(b)
	}
	for i := 0; i < n; i++ {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func lookup(node map[string]interface{}, segs []string) (interface{}, bool) {
	var current interface{} = node
	for _, seg := range segs {
		m, ok := current.(map[string]interface{})
		if !ok {
			return nil, false
		}
		current, ok = m[seg]
		if !ok {
			return nil, false
		}
	}
	if current == nil {
		return nil, false
	}
	return current, true
}

func store(node map[string]interface{}, segs []string, value interface{}) {
	for i, seg := range segs {
		if i == len(segs)-1 {
			if value == nil {
				delete(node, seg)
				return
			}
			node[seg] = value
			return
		}
		child, ok := node[seg].(map[string]interface{})
		if !ok {
			child = map[string]interface{}{}
			node[seg] = child
		}
		node = child
	}
}

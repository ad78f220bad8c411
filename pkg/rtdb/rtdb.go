package rtdb

import (
	"context"
	"encoding/json"
	"strings"
)

// Snapshot is the full JSON value of a watched subtree at a point in time.
// A nil Snapshot means the subtree does not exist.
type Snapshot json.RawMessage

// WatchFunc receives the current full subtree value. It is invoked once
// immediately after the watch is established and again after every change.
// At most one invocation is in flight per watch.
type WatchFunc func(snapshot Snapshot)

// CancelFunc tears down a watch. It blocks until the watch goroutine exits
// and is safe to call more than once.
type CancelFunc func()

// Store is the realtime database contract consumed by the repositories:
// point reads, full-value overwrites and subtree watches.
type Store interface {
	// Get reads the value at path into dest. It returns false when the
	// path holds no value (JSON null), in which case dest is untouched.
	Get(ctx context.Context, path string, dest interface{}) (bool, error)

	// Set overwrites the full value at path. There are no merge semantics:
	// fields absent from value are removed from the stored record.
	Set(ctx context.Context, path string, value interface{}) error

	// Watch subscribes to the subtree rooted at path.
	Watch(ctx context.Context, path string, fn WatchFunc) (CancelFunc, error)
}

// JoinPath builds a slash-separated database path from segments, trimming
// stray separators so callers can pass keys verbatim.
func JoinPath(segments ...string) string {
	parts := make([]string, 0, len(segments))
	for _, seg := range segments {
		seg = strings.Trim(seg, "/")
		if seg != "" {
			parts = append(parts, seg)
		}
	}
	return strings.Join(parts, "/")
}

// IsNull reports whether raw is an absent value on the wire.
func IsNull(raw json.RawMessage) bool {
	trimmed := strings.TrimSpace(string(raw))
	return trimmed == "" || trimmed == "null"
}

package rtdb

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/motherland-app/admin-console-api/pkg/config"
)

func newTestClient(t *testing.T, handler http.Handler) (*Client, *httptest.Server) {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	client := NewClient(config.RealtimeConfig{
		DatabaseURL:    server.URL,
		WatchRetryWait: 10 * time.Millisecond,
	}, nil)
	return client, server
}

func TestClientGet(t *testing.T) {
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/Listings/l1.json", r.URL.Path)
		fmt.Fprint(w, `{"className":"Drumming","status":"pending"}`)
	}))

	var dest map[string]string
	ok, err := client.Get(context.Background(), "Listings/l1", &dest)

	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "Drumming", dest["className"])
}

func TestClientGetAbsentReturnsFalse(t *testing.T) {
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, "null")
	}))

	var dest map[string]string
	ok, err := client.Get(context.Background(), "Listings/missing", &dest)

	require.NoError(t, err)
	assert.False(t, ok)
	assert.Nil(t, dest)
}

func TestClientGetErrorStatus(t *testing.T) {
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))

	var dest map[string]string
	_, err := client.Get(context.Background(), "Listings/l1", &dest)
	assert.Error(t, err)
}

func TestClientSetPutsFullValue(t *testing.T) {
	var gotMethod string
	var gotBody map[string]interface{}
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotMethod = r.Method
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))
		fmt.Fprint(w, "{}")
	}))

	err := client.Set(context.Background(), "Listings/l1", map[string]interface{}{
		"status": "approved",
	})

	require.NoError(t, err)
	assert.Equal(t, http.MethodPut, gotMethod)
	assert.Equal(t, "approved", gotBody["status"])
}

func TestClientSetAppendsAuthToken(t *testing.T) {
	var gotQuery string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.RawQuery
		fmt.Fprint(w, "{}")
	}))
	defer server.Close()

	client := NewClient(config.RealtimeConfig{
		DatabaseURL: server.URL,
		AuthToken:   "secret",
	}, nil)

	require.NoError(t, client.Set(context.Background(), "Listings/l1", map[string]string{"status": "rejected"}))
	assert.Equal(t, "auth=secret", gotQuery)
}

func TestClientWatchDeliversInitialAndUpdates(t *testing.T) {
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Accept") != "text/event-stream" {
			// Re-read after the deep put below.
			fmt.Fprint(w, `{"l1":{"status":"approved"}}`)
			return
		}

		w.Header().Set("Content-Type", "text/event-stream")
		flusher := w.(http.Flusher)

		fmt.Fprint(w, "event: put\ndata: {\"path\":\"/\",\"data\":{\"l1\":{\"status\":\"pending\"}}}\n\n")
		flusher.Flush()
		fmt.Fprint(w, "event: keep-alive\ndata: null\n\n")
		flusher.Flush()
		fmt.Fprint(w, "event: put\ndata: {\"path\":\"/l1/status\",\"data\":\"approved\"}\n\n")
		flusher.Flush()

		<-r.Context().Done()
	}))

	var mu sync.Mutex
	var snapshots []Snapshot
	done := make(chan struct{})

	cancel, err := client.Watch(context.Background(), "Listings", func(snapshot Snapshot) {
		mu.Lock()
		defer mu.Unlock()
		snapshots = append(snapshots, snapshot)
		if len(snapshots) == 2 {
			close(done)
		}
	})
	require.NoError(t, err)
	defer cancel()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for snapshots")
	}

	mu.Lock()
	defer mu.Unlock()

	var first map[string]map[string]string
	require.NoError(t, json.Unmarshal(snapshots[0], &first))
	assert.Equal(t, "pending", first["l1"]["status"])

	var second map[string]map[string]string
	require.NoError(t, json.Unmarshal(snapshots[1], &second))
	assert.Equal(t, "approved", second["l1"]["status"])
}

func TestClientWatchRootNullDeliversNil(t *testing.T) {
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/event-stream")
		fmt.Fprint(w, "event: put\ndata: {\"path\":\"/\",\"data\":null}\n\n")
		w.(http.Flusher).Flush()
		<-r.Context().Done()
	}))

	done := make(chan Snapshot, 1)
	cancel, err := client.Watch(context.Background(), "Listings", func(snapshot Snapshot) {
		select {
		case done <- snapshot:
		default:
		}
	})
	require.NoError(t, err)
	defer cancel()

	select {
	case snapshot := <-done:
		assert.Nil(t, snapshot)
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for snapshot")
	}
}

func TestClientWatchCancelStopsStream(t *testing.T) {
	streaming := make(chan struct{})
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/event-stream")
		fmt.Fprint(w, "event: put\ndata: {\"path\":\"/\",\"data\":{}}\n\n")
		w.(http.Flusher).Flush()
		select {
		case streaming <- struct{}{}:
		default:
		}
		<-r.Context().Done()
	}))

	cancel, err := client.Watch(context.Background(), "Listings", func(Snapshot) {})
	require.NoError(t, err)

	select {
	case <-streaming:
	case <-time.After(2 * time.Second):
		t.Fatal("stream never connected")
	}

	finished := make(chan struct{})
	go func() {
		cancel()
		close(finished)
	}()

	select {
	case <-finished:
	case <-time.After(2 * time.Second):
		t.Fatal("cancel did not return")
	}
}

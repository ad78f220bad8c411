package rtdb

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/motherland-app/admin-console-api/pkg/config"
)

// Client talks to the realtime database over its REST interface. Reads and
// writes address `{base}/{path}.json`; watches use the server-sent-events
// stream the same endpoint exposes for `Accept: text/event-stream`.
type Client struct {
	baseURL   string
	authToken string
	retryWait time.Duration
	http      *http.Client
	logger    *zap.Logger
}

// NewClient returns a configured realtime database client.
func NewClient(cfg config.RealtimeConfig, logger *zap.Logger) *Client {
	if logger == nil {
		logger = zap.NewNop()
	}
	retryWait := cfg.WatchRetryWait
	if retryWait <= 0 {
		retryWait = 5 * time.Second
	}
	return &Client{
		baseURL:   strings.TrimRight(cfg.DatabaseURL, "/"),
		authToken: cfg.AuthToken,
		retryWait: retryWait,
		http:      &http.Client{},
		logger:    logger,
	}
}

func (c *Client) url(path string) string {
	u := fmt.Sprintf("%s/%s.json", c.baseURL, strings.Trim(path, "/"))
	if c.authToken != "" {
		u += "?auth=" + c.authToken
	}
	return u
}

// Get implements Store.
func (c *Client) Get(ctx context.Context, path string, dest interface{}) (bool, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.url(path), nil)
	if err != nil {
		return false, fmt.Errorf("rtdb get %s: %w", path, err)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return false, fmt.Errorf("rtdb get %s: %w", path, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return false, fmt.Errorf("rtdb get %s: read body: %w", path, err)
	}
	if resp.StatusCode != http.StatusOK {
		return false, fmt.Errorf("rtdb get %s: unexpected status %d", path, resp.StatusCode)
	}
	if IsNull(body) {
		return false, nil
	}
	if err := json.Unmarshal(body, dest); err != nil {
		return false, fmt.Errorf("rtdb get %s: decode: %w", path, err)
	}
	return true, nil
}

// Set implements Store. The write is a full-value PUT; the stored record
// becomes exactly the marshalled value.
func (c *Client) Set(ctx context.Context, path string, value interface{}) error {
	payload, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("rtdb set %s: marshal: %w", path, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPut, c.url(path), bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("rtdb set %s: %w", path, err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("rtdb set %s: %w", path, err)
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("rtdb set %s: unexpected status %d", path, resp.StatusCode)
	}
	return nil
}

// Watch implements Store. The stream delivers the full subtree immediately
// on connect (a put at "/") and event markers afterwards; any event rooted
// below the watched path triggers a fresh read so the callback always sees
// the complete subtree. The watch reconnects after stream errors until the
// context is cancelled or cancel is called.
func (c *Client) Watch(ctx context.Context, path string, fn WatchFunc) (CancelFunc, error) {
	watchCtx, cancel := context.WithCancel(ctx)
	var wg sync.WaitGroup
	wg.Add(1)

	go func() {
		defer wg.Done()
		for {
			if err := c.stream(watchCtx, path, fn); err != nil && watchCtx.Err() == nil {
				c.logger.Warn("rtdb watch interrupted",
					zap.String("path", path), zap.Error(err))
			}
			select {
			case <-watchCtx.Done():
				return
			case <-time.After(c.retryWait):
			}
		}
	}()

	var once sync.Once
	return func() {
		once.Do(func() {
			cancel()
			wg.Wait()
		})
	}, nil
}

func (c *Client) stream(ctx context.Context, path string, fn WatchFunc) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.url(path), nil)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "text/event-stream")

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("stream status %d", resp.StatusCode)
	}

	var event, data string
	scanner := bufio.NewScanner(resp.Body)
	scanner.Buffer(make([]byte, 64*1024), 4*1024*1024)
	for scanner.Scan() {
		line := scanner.Text()
		switch {
		case line == "":
			if err := c.dispatch(ctx, path, event, data, fn); err != nil {
				return err
			}
			event, data = "", ""
		case strings.HasPrefix(line, "event:"):
			event = strings.TrimSpace(strings.TrimPrefix(line, "event:"))
		case strings.HasPrefix(line, "data:"):
			data = strings.TrimSpace(strings.TrimPrefix(line, "data:"))
		}
	}
	if err := scanner.Err(); err != nil {
		return err
	}
	return io.EOF
}

type streamEvent struct {
	Path string          `json:"path"`
	Data json.RawMessage `json:"data"`
}

func (c *Client) dispatch(ctx context.Context, path, event, data string, fn WatchFunc) error {
	switch event {
	case "put", "patch":
	case "keep-alive":
		return nil
	case "cancel", "auth_revoked":
		return fmt.Errorf("stream closed by server: %s", event)
	default:
		return nil
	}

	var ev streamEvent
	if err := json.Unmarshal([]byte(data), &ev); err != nil {
		return fmt.Errorf("decode stream event: %w", err)
	}

	// A put at the root carries the whole subtree. Deeper events only carry
	// the changed fragment, so re-read the full value before delivering.
	if event == "put" && (ev.Path == "/" || ev.Path == "") {
		if IsNull(ev.Data) {
			fn(nil)
			return nil
		}
		fn(Snapshot(ev.Data))
		return nil
	}

	var full json.RawMessage
	ok, err := c.Get(ctx, path, &full)
	if err != nil {
		return err
	}
	if !ok {
		fn(nil)
		return nil
	}
	fn(Snapshot(full))
	return nil
}

package websocket

import (
	"context"
	"encoding/json"
	"log/slog"
	"sync"
	"time"

	ws "github.com/coder/websocket"
)

const (
	reconnectMin = time.Second
	reconnectMax = 30 * time.Second
)

// Subscriber is the client side of the change channel. It dials the
// backend's /ws endpoint, decodes table-change notifications, and
// invokes the registered callback for each table. Callbacks receive no
// payload: the contract is "something changed, re-query".
type Subscriber struct {
	url    string
	logger *slog.Logger

	mu       sync.RWMutex
	handlers map[string]func()
}

// NewSubscriber creates a Subscriber for the given websocket URL
// (e.g. "ws://localhost:8080/ws").
func NewSubscriber(url string, logger *slog.Logger) *Subscriber {
	return &Subscriber{
		url:      url,
		logger:   logger,
		handlers: make(map[string]func()),
	}
}

// OnTable registers the callback fired whenever the given table
// changes. Registering again replaces the previous callback.
func (s *Subscriber) OnTable(table string, fn func()) {
	s.mu.Lock()
	s.handlers[table] = fn
	s.mu.Unlock()
}

// Run connects and dispatches notifications until ctx is cancelled,
// reconnecting with exponential backoff after any failure. A session
// that delivered at least one frame resets the backoff, so a stable
// link dropping after hours retries promptly instead of waiting out
// the ceiling from some long-past outage.
func (s *Subscriber) Run(ctx context.Context) {
	backoff := reconnectMin
	for {
		delivered, err := s.listen(ctx)
		if ctx.Err() != nil {
			return
		}
		if delivered {
			backoff = reconnectMin
		}
		s.logger.Warn("change channel disconnected", "error", err, "retry_in", backoff)

		select {
		case <-time.After(backoff):
		case <-ctx.Done():
			return
		}
		backoff = nextDelay(backoff)
	}
}

// nextDelay doubles the reconnect backoff up to the ceiling.
func nextDelay(current time.Duration) time.Duration {
	next := current * 2
	if next > reconnectMax {
		next = reconnectMax
	}
	return next
}

// listen reports whether the session delivered at least one frame
// before failing.
func (s *Subscriber) listen(ctx context.Context) (bool, error) {
	conn, _, err := ws.Dial(ctx, s.url, nil)
	if err != nil {
		return false, err
	}
	defer conn.CloseNow()

	s.logger.Debug("change channel connected", "url", s.url)

	delivered := false
	for {
		_, data, err := conn.Read(ctx)
		if err != nil {
			return delivered, err
		}
		delivered = true

		var msg Message
		if err := json.Unmarshal(data, &msg); err != nil {
			s.logger.Warn("malformed change notification", "error", err)
			continue
		}
		s.dispatch(msg.Table)
	}
}

func (s *Subscriber) dispatch(table string) {
	s.mu.RLock()
	fn := s.handlers[table]
	s.mu.RUnlock()

	if fn != nil {
		fn()
	}
}

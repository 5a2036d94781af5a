package admin

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/coder/websocket"

	"github.com/flemzord/cadence/internal/schedule"
)

const (
	// subscriberBuffer bounds each subscriber's queue; a consumer that
	// falls this far behind starts losing events rather than blocking
	// the scheduler.
	subscriberBuffer = 32

	eventWriteTimeout = 5 * time.Second
)

// Hub fans job events out to WebSocket subscribers. Publish never blocks.
type Hub struct {
	logger *slog.Logger

	mu     sync.Mutex
	subs   map[chan []byte]struct{}
	closed bool
}

// NewHub creates an empty hub.
func NewHub(logger *slog.Logger) *Hub {
	if logger == nil {
		logger = slog.Default()
	}
	return &Hub{
		logger: logger,
		subs:   make(map[chan []byte]struct{}),
	}
}

// Publish broadcasts one event to all subscribers. Slow subscribers drop
// events instead of backpressuring the caller.
func (h *Hub) Publish(ev schedule.Event) {
	data, err := json.Marshal(ev)
	if err != nil {
		h.logger.Warn("admin: marshal event failed", "job", ev.Job, "error", err)
		return
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	for ch := range h.subs {
		select {
		case ch <- data:
		default:
			h.logger.Debug("admin: dropping event for slow subscriber", "job", ev.Job)
		}
	}
}

func (h *Hub) subscribe() (chan []byte, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return nil, false
	}
	ch := make(chan []byte, subscriberBuffer)
	h.subs[ch] = struct{}{}
	return ch, true
}

func (h *Hub) unsubscribe(ch chan []byte) {
	h.mu.Lock()
	defer h.mu.Unlock()
	delete(h.subs, ch)
}

func (h *Hub) subscribers() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.subs)
}

// close drops all subscribers and rejects new ones.
func (h *Hub) close() {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.closed = true
	for ch := range h.subs {
		close(ch)
	}
	h.subs = make(map[chan []byte]struct{})
}

// handleEvents returns an http.HandlerFunc for GET /ws/events that streams
// each published event as a JSON text message.
func (h *Hub) handleEvents() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		conn, err := websocket.Accept(w, r, nil)
		if err != nil {
			h.logger.Warn("admin: websocket accept failed", "error", err)
			return
		}
		defer func() {
			_ = conn.Close(websocket.StatusInternalError, "unexpected close")
		}()

		// No inbound messages expected; CloseRead gives us a context that
		// ends when the client disconnects.
		ctx := conn.CloseRead(r.Context())

		ch, ok := h.subscribe()
		if !ok {
			_ = conn.Close(websocket.StatusGoingAway, "server shutting down")
			return
		}
		defer h.unsubscribe(ch)

		for {
			select {
			case <-ctx.Done():
				_ = conn.Close(websocket.StatusNormalClosure, "")
				return
			case data, open := <-ch:
				if !open {
					_ = conn.Close(websocket.StatusGoingAway, "server shutting down")
					return
				}
				writeCtx, cancel := context.WithTimeout(ctx, eventWriteTimeout)
				err := conn.Write(writeCtx, websocket.MessageText, data)
				cancel()
				if err != nil {
					return
				}
			}
		}
	}
}

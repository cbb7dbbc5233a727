package http

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"sync"

	"github.com/aretw0/setter/pkg/adapters/rules"
	"github.com/aretw0/setter/pkg/domain"
	"github.com/aretw0/setter/pkg/funnel"
	"github.com/aretw0/setter/pkg/ports"
)

// StreamManager fans transition events out to SSE subscribers per user.
type StreamManager struct {
	mu          sync.RWMutex
	subscribers map[string]map[chan<- string]struct{}
	logger      *slog.Logger
}

func NewStreamManager(logger *slog.Logger) *StreamManager {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &StreamManager{
		subscribers: make(map[string]map[chan<- string]struct{}),
		logger:      logger,
	}
}

// Hooks publishes every engine event to the session's subscribers.
// Events without a session are dropped.
func (sm *StreamManager) Hooks() domain.LifecycleHooks {
	publish := func(_ context.Context, e *domain.TransitionEvent) {
		if e.SessionID == "" {
			return
		}
		b, err := json.Marshal(e)
		if err != nil {
			sm.logger.Error("failed to encode event", "err", err)
			return
		}
		sm.Broadcast(e.SessionID, string(b))
	}
	return domain.LifecycleHooks{OnTransition: publish, OnHardStop: publish, OnRoute: publish}
}

// Subscribe registers a buffered channel for userID. The returned func
// unregisters and closes it.
func (sm *StreamManager) Subscribe(userID string) (chan string, func()) {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	ch := make(chan string, 10)
	if _, ok := sm.subscribers[userID]; !ok {
		sm.subscribers[userID] = make(map[chan<- string]struct{})
	}
	sm.subscribers[userID][ch] = struct{}{}

	return ch, func() {
		sm.mu.Lock()
		defer sm.mu.Unlock()
		if subs, ok := sm.subscribers[userID]; ok {
			delete(subs, ch)
			close(ch)
			if len(subs) == 0 {
				delete(sm.subscribers, userID)
			}
		}
	}
}

// Broadcast never blocks: slow subscribers lose messages.
func (sm *StreamManager) Broadcast(userID string, msg string) {
	sm.mu.RLock()
	defer sm.mu.RUnlock()

	for ch := range sm.subscribers[userID] {
		select {
		case ch <- msg:
		default:
			sm.logger.Warn("SSE client buffer full, dropping event", "user_id", userID)
		}
	}
}

// SubscribeEvents handles GET /events?user_id=...: a server-sent stream of
// the user's transition events. ?types=route,hard_stop filters by event type.
func (s *Server) SubscribeEvents(w http.ResponseWriter, r *http.Request) {
	userID := r.URL.Query().Get("user_id")
	if userID == "" {
		http.Error(w, "user_id is required", http.StatusBadRequest)
		return
	}
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "Streaming not supported", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	ch, cancel := s.Streams.Subscribe(userID)
	defer cancel()
	s.logger.Info("SSE subscribed", "user_id", userID)

	var types []string
	if raw := r.URL.Query().Get("types"); raw != "" {
		types = strings.Split(raw, ",")
	}

	fmt.Fprintf(w, "event: ping\ndata: connected\n\n")
	flusher.Flush()

	for {
		select {
		case <-r.Context().Done():
			s.logger.Info("SSE client disconnected", "user_id", userID)
			return
		case msg, ok := <-ch:
			if !ok {
				return
			}
			if !matchesType(msg, types) {
				continue
			}
			fmt.Fprintf(w, "data: %s\n\n", msg)
			flusher.Flush()
		}
	}
}

// matchesType checks the event's "type" field without decoding the payload.
func matchesType(msg string, types []string) bool {
	if len(types) == 0 {
		return true
	}
	for _, t := range types {
		if strings.Contains(msg, fmt.Sprintf(`"type":%q`, strings.TrimSpace(t))) {
			return true
		}
	}
	return false
}

func defaultExtractor(e *funnel.Engine) ports.Extractor {
	return rules.NewExtractor(e.Detector())
}

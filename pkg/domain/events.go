package domain

import (
	"context"
	"time"
)

// EventType defines the category of the event.
type EventType string

const (
	EventTransition EventType = "transition"
	EventHardStop   EventType = "hard_stop"
	EventRoute      EventType = "route"
)

// TransitionEvent describes one engine step.
type TransitionEvent struct {
	Timestamp time.Time      `json:"timestamp"`
	Type      EventType      `json:"type"`
	SessionID string         `json:"session_id,omitempty"`
	From      State          `json:"from"`
	To        State          `json:"to"`
	Reason    string         `json:"reason"`
	Changes   map[string]any `json:"changes,omitempty"`
}

// LifecycleHooks defines callbacks for engine observability.
// Nil callbacks are skipped.
type LifecycleHooks struct {
	OnTransition func(context.Context, *TransitionEvent)
	OnHardStop   func(context.Context, *TransitionEvent)
	OnRoute      func(context.Context, *TransitionEvent)
}

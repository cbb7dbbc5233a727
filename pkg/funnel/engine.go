package funnel

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/aretw0/setter/pkg/domain"
	"github.com/aretw0/setter/pkg/signals"
)

// DefaultPatternTurnLimit is how many repeated PATTERN turns are tolerated
// before discovery moves on without a confirmed problem.
const DefaultPatternTurnLimit = 2

// Engine evaluates funnel transitions.
type Engine struct {
	detector         *signals.Detector
	hooks            domain.LifecycleHooks
	logger           *slog.Logger
	patternTurnLimit int
	now              func() time.Time
}

// Option defines a functional option for configuring the Engine.
type Option func(*Engine)

// WithDetector sets the detector Process uses to compute signals.
func WithDetector(d *signals.Detector) Option {
	return func(e *Engine) {
		if d != nil {
			e.detector = d
		}
	}
}

// WithHooks registers observability hooks fired by Transition.
func WithHooks(hooks domain.LifecycleHooks) Option {
	return func(e *Engine) {
		e.hooks = hooks
	}
}

// WithLogger sets a custom structured logger for the engine.
func WithLogger(logger *slog.Logger) Option {
	return func(e *Engine) {
		if logger != nil {
			e.logger = logger
		}
	}
}

// WithPatternTurnLimit overrides DefaultPatternTurnLimit. Values below 1 are ignored.
func WithPatternTurnLimit(n int) Option {
	return func(e *Engine) {
		if n > 0 {
			e.patternTurnLimit = n
		}
	}
}

// New creates an engine over the default phrasebook.
func New(opts ...Option) *Engine {
	e := &Engine{
		detector:         signals.Default(),
		logger:           slog.New(slog.NewTextHandler(io.Discard, nil)),
		patternTurnLimit: DefaultPatternTurnLimit,
		now:              time.Now,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Detector returns the detector used by Process.
func (e *Engine) Detector() *signals.Detector { return e.detector }

// Step computes the next state for one message and mutates attrs in place.
// The only error is domain.ErrInvalidState for a state outside the closed set.
// A nil attrs is treated as an empty bag whose mutations are discarded.
func (e *Engine) Step(state domain.State, attrs *domain.Attributes, sig signals.Signals) (domain.State, error) {
	next, _, err := e.step(state, attrs, sig)
	return next, err
}

// Process normalizes and detects raw once, then steps.
func (e *Engine) Process(state domain.State, attrs *domain.Attributes, raw string) (domain.State, error) {
	return e.Step(state, attrs, e.detector.Detect(raw))
}

// Transition is Process plus bookkeeping: it maintains the turn counter,
// fires lifecycle hooks and returns the event describing the step.
func (e *Engine) Transition(ctx context.Context, sessionID string, state domain.State, attrs *domain.Attributes, raw string) (*domain.TransitionEvent, error) {
	if attrs == nil {
		attrs = &domain.Attributes{}
	}
	before := attrs.Clone()

	next, reason, err := e.step(state, attrs, e.detector.Detect(raw))
	if err != nil {
		return nil, err
	}
	attrs.TrackTurn(state, next)

	evt := &domain.TransitionEvent{
		Timestamp: e.now().UTC(),
		Type:      domain.EventTransition,
		SessionID: sessionID,
		From:      state,
		To:        next,
		Reason:    reason,
		Changes:   domain.AttributeDiff(before, attrs),
	}

	e.logger.Debug("funnel step",
		"user_id", sessionID,
		"from", state,
		"to", next,
		"reason", reason,
	)

	if e.hooks.OnTransition != nil {
		e.hooks.OnTransition(ctx, evt)
	}
	if attrs.HardStopTriggered && !before.HardStopTriggered {
		e.logger.Info("hard stop", "user_id", sessionID, "abuse_count", attrs.AbuseCount)
		if e.hooks.OnHardStop != nil {
			stop := *evt
			stop.Type = domain.EventHardStop
			e.hooks.OnHardStop(ctx, &stop)
		}
	}
	if next.IsRoute() && state != next {
		e.logger.Info("lead routed", "user_id", sessionID, "route", next)
		if e.hooks.OnRoute != nil {
			route := *evt
			route.Type = domain.EventRoute
			e.hooks.OnRoute(ctx, &route)
		}
	}

	return evt, nil
}

func (e *Engine) step(state domain.State, attrs *domain.Attributes, sig signals.Signals) (domain.State, string, error) {
	if !state.Valid() {
		return "", "", fmt.Errorf("%w: %q", domain.ErrInvalidState, state)
	}
	if attrs == nil {
		attrs = &domain.Attributes{}
	}

	if state == domain.StateEnd {
		return domain.StateEnd, ReasonAbsorbed, nil
	}
	if attrs.HardStopTriggered {
		return domain.StateEnd, ReasonHardStop, nil
	}

	g, ok := guards[state]
	if !ok {
		// Every valid state has a guard; reaching here means the table is out of sync.
		return state, ReasonHold, nil
	}
	next, reason := g(e, attrs, sig)
	return next, reason, nil
}

package observability

import (
	"context"
	"log/slog"

	"github.com/aretw0/setter/pkg/domain"
)

type eventFunc = func(context.Context, *domain.TransitionEvent)

// Aggregate combines several hook sets into one. Callbacks run in argument
// order; nil callbacks are skipped.
func Aggregate(sets ...domain.LifecycleHooks) domain.LifecycleHooks {
	var transition, stop, route []eventFunc
	for _, h := range sets {
		if h.OnTransition != nil {
			transition = append(transition, h.OnTransition)
		}
		if h.OnHardStop != nil {
			stop = append(stop, h.OnHardStop)
		}
		if h.OnRoute != nil {
			route = append(route, h.OnRoute)
		}
	}
	return domain.LifecycleHooks{
		OnTransition: fanOut(transition),
		OnHardStop:   fanOut(stop),
		OnRoute:      fanOut(route),
	}
}

func fanOut(fns []eventFunc) eventFunc {
	switch len(fns) {
	case 0:
		return nil
	case 1:
		return fns[0]
	}
	return func(ctx context.Context, e *domain.TransitionEvent) {
		for _, fn := range fns {
			fn(ctx, e)
		}
	}
}

// AuditHooks logs every event at info level.
func AuditHooks(logger *slog.Logger) domain.LifecycleHooks {
	log := func(ctx context.Context, e *domain.TransitionEvent) {
		logger.InfoContext(ctx, string(e.Type),
			"user_id", e.SessionID,
			"from", e.From,
			"to", e.To,
			"reason", e.Reason,
		)
	}
	return domain.LifecycleHooks{OnTransition: log, OnHardStop: log, OnRoute: log}
}

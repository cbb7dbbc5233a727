package observability

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/aretw0/setter/pkg/domain"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds the funnel's Prometheus collectors.
type Metrics struct {
	transitions *prometheus.CounterVec
	hardStops   prometheus.Counter
	routes      *prometheus.CounterVec
	extractions *prometheus.CounterVec
	duration    *prometheus.HistogramVec
}

// NewMetrics creates the collectors and registers them on reg.
func NewMetrics(reg prometheus.Registerer) (*Metrics, error) {
	m := &Metrics{
		transitions: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "setter_transitions_total",
				Help: "Funnel steps by source and target state",
			},
			[]string{"from", "to"},
		),
		hardStops: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "setter_hard_stops_total",
			Help: "Conversations ended for abuse",
		}),
		routes: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "setter_routes_total",
				Help: "Leads routed by offer",
			},
			[]string{"route"},
		),
		extractions: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "setter_extractions_total",
				Help: "Attribute extractions by category and outcome",
			},
			[]string{"category", "resolved"},
		),
		duration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "setter_process_duration_seconds",
				Help:    "Duration of one dialogue turn",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"outcome"},
		),
	}

	for _, c := range []prometheus.Collector{m.transitions, m.hardStops, m.routes, m.extractions, m.duration} {
		if err := reg.Register(c); err != nil {
			return nil, fmt.Errorf("failed to register metric: %w", err)
		}
	}
	return m, nil
}

// Hooks returns lifecycle hooks that record engine events.
func (m *Metrics) Hooks() domain.LifecycleHooks {
	return domain.LifecycleHooks{
		OnTransition: func(_ context.Context, e *domain.TransitionEvent) {
			m.transitions.WithLabelValues(string(e.From), string(e.To)).Inc()
		},
		OnHardStop: func(context.Context, *domain.TransitionEvent) {
			m.hardStops.Inc()
		},
		OnRoute: func(_ context.Context, e *domain.TransitionEvent) {
			m.routes.WithLabelValues(string(e.To)).Inc()
		},
	}
}

func (m *Metrics) ObserveExtraction(category domain.Category, resolved bool) {
	m.extractions.WithLabelValues(string(category), strconv.FormatBool(resolved)).Inc()
}

func (m *Metrics) ObserveProcess(elapsed time.Duration, err error) {
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	m.duration.WithLabelValues(outcome).Observe(elapsed.Seconds())
}

// Handler exposes g in the Prometheus text format.
func Handler(g prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(g, promhttp.HandlerOpts{})
}

package observability

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/aretw0/setter/pkg/domain"
	"github.com/aretw0/setter/pkg/funnel"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func scrape(t *testing.T, g prometheus.Gatherer) string {
	t.Helper()
	rec := httptest.NewRecorder()
	Handler(g).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	return rec.Body.String()
}

func TestMetrics_FromEngineHooks(t *testing.T) {
	reg := prometheus.NewRegistry()
	m, err := NewMetrics(reg)
	require.NoError(t, err)

	eng := funnel.New(funnel.WithHooks(m.Hooks()))
	ctx := context.Background()

	attrs := &domain.Attributes{FinancialBucket: domain.BucketLow}
	_, err = eng.Transition(ctx, "u", domain.StateQualFinance, attrs, "no money")
	require.NoError(t, err)

	abusive := &domain.Attributes{AbuseCount: 1}
	_, err = eng.Transition(ctx, "v", domain.StateEntry, abusive, "fuck you")
	require.NoError(t, err)

	out := scrape(t, reg)
	assert.Contains(t, out, `setter_transitions_total{from="QUAL_FINANCE",to="ROUTE_LOW_TICKET"} 1`)
	assert.Contains(t, out, `setter_transitions_total{from="ENTRY",to="END"} 1`)
	assert.Contains(t, out, `setter_routes_total{route="ROUTE_LOW_TICKET"} 1`)
	assert.Contains(t, out, "setter_hard_stops_total 1")
}

func TestMetrics_DialogueObserver(t *testing.T) {
	reg := prometheus.NewRegistry()
	m, err := NewMetrics(reg)
	require.NoError(t, err)

	m.ObserveExtraction(domain.CategoryFitness, true)
	m.ObserveExtraction(domain.CategoryFitness, false)
	m.ObserveExtraction(domain.CategoryFitness, false)
	m.ObserveProcess(20*time.Millisecond, nil)
	m.ObserveProcess(time.Second, errors.New("boom"))

	out := scrape(t, reg)
	assert.Contains(t, out, `setter_extractions_total{category="fitness",resolved="false"} 2`)
	assert.Contains(t, out, `setter_extractions_total{category="fitness",resolved="true"} 1`)
	assert.Contains(t, out, `setter_process_duration_seconds_count{outcome="ok"} 1`)
	assert.Contains(t, out, `setter_process_duration_seconds_count{outcome="error"} 1`)
}

func TestMetrics_DoubleRegister(t *testing.T) {
	reg := prometheus.NewRegistry()
	_, err := NewMetrics(reg)
	require.NoError(t, err)
	_, err = NewMetrics(reg)
	assert.Error(t, err)
}

func TestHandler(t *testing.T) {
	reg := prometheus.NewRegistry()
	m, err := NewMetrics(reg)
	require.NoError(t, err)
	m.hardStops.Inc()

	assert.Contains(t, scrape(t, reg), "# TYPE setter_hard_stops_total counter")
}

func TestAggregate(t *testing.T) {
	var order []string
	mk := func(name string) domain.LifecycleHooks {
		return domain.LifecycleHooks{
			OnTransition: func(context.Context, *domain.TransitionEvent) { order = append(order, name) },
		}
	}

	h := Aggregate(mk("a"), domain.LifecycleHooks{}, mk("b"))
	require.NotNil(t, h.OnTransition)
	assert.Nil(t, h.OnHardStop)
	assert.Nil(t, h.OnRoute)

	h.OnTransition(context.Background(), &domain.TransitionEvent{})
	assert.Equal(t, []string{"a", "b"}, order)
}

func TestAuditHooks(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, nil))

	eng := funnel.New(funnel.WithHooks(AuditHooks(logger)))
	_, err := eng.Transition(context.Background(), "u1", domain.StateRapport, &domain.Attributes{}, "ok")
	require.NoError(t, err)

	out := buf.String()
	assert.Contains(t, out, "msg=transition")
	assert.Contains(t, out, "user_id=u1")
	assert.Contains(t, out, "from=RAPPORT")
	assert.Contains(t, out, "to=PATTERN")
}

// internal/metrics/metrics.go
package metrics

import (
	"errors"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	custom_errors "github-profile-finder/internal/errors"
)

const namespace = "profile_finder"

// Outcome labels for the lookups counter.
const (
	OutcomeSuccess      = "success"
	OutcomeNetworkError = "network_error"
	OutcomeHTTPError    = "http_error"
)

// Metrics holds the Prometheus collectors for profile lookups.
// A nil *Metrics is valid and records nothing.
type Metrics struct {
	Lookups        *prometheus.CounterVec
	StaleResponses prometheus.Counter
	LookupDuration prometheus.Histogram
	Sessions       prometheus.Gauge
}

// New creates the collectors and registers them with reg.
func New(reg prometheus.Registerer) (*Metrics, error) {
	m := &Metrics{
		Lookups: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "lookups_total",
			Help:      "Settled profile lookups by outcome.",
		}, []string{"outcome"}),
		StaleResponses: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "stale_responses_total",
			Help:      "Lookup responses discarded because a newer lookup was submitted.",
		}),
		LookupDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "lookup_duration_seconds",
			Help:      "Time spent waiting on the profile API.",
			Buckets:   prometheus.DefBuckets,
		}),
		Sessions: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "sessions",
			Help:      "Browser sessions currently held in memory.",
		}),
	}

	for _, c := range []prometheus.Collector{m.Lookups, m.StaleResponses, m.LookupDuration, m.Sessions} {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}
	return m, nil
}

// ObserveLookup records one settled lookup, including stale ones.
func (m *Metrics) ObserveLookup(err error, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.LookupDuration.Observe(elapsed.Seconds())
	m.Lookups.WithLabelValues(OutcomeOf(err)).Inc()
}

func (m *Metrics) ObserveStale() {
	if m == nil {
		return
	}
	m.StaleResponses.Inc()
}

func (m *Metrics) SetSessions(n int) {
	if m == nil {
		return
	}
	m.Sessions.Set(float64(n))
}

// OutcomeOf maps a lookup result to its outcome label.
func OutcomeOf(err error) string {
	var statusErr *custom_errors.ErrHTTPStatus
	switch {
	case err == nil:
		return OutcomeSuccess
	case errors.As(err, &statusErr):
		return OutcomeHTTPError
	default:
		return OutcomeNetworkError
	}
}

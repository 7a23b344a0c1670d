package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

// EntitlementMetrics instruments subscription checks, quota decisions and
// generator invocations.
type EntitlementMetrics struct {
	oracleRequests     *prometheus.CounterVec
	cacheLookups       *prometheus.CounterVec
	decisions          *prometheus.CounterVec
	invocations        *prometheus.CounterVec
	invocationDuration *prometheus.HistogramVec
	events             *prometheus.CounterVec
}

var (
	instance *EntitlementMetrics
	once     sync.Once
)

// Get returns the process-wide metrics, registering them on first use.
func Get() *EntitlementMetrics {
	once.Do(func() {
		instance = newEntitlementMetrics()
	})
	return instance
}

func newEntitlementMetrics() *EntitlementMetrics {
	m := &EntitlementMetrics{
		oracleRequests: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "artemius",
				Subsystem: "subscription",
				Name:      "oracle_requests_total",
				Help:      "Membership lookups against Telegram by result",
			},
			[]string{"result"},
		),
		cacheLookups: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "artemius",
				Subsystem: "subscription",
				Name:      "cache_lookups_total",
				Help:      "VIP cache lookups by outcome",
			},
			[]string{"outcome"},
		),
		decisions: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "artemius",
				Subsystem: "entitlement",
				Name:      "decisions_total",
				Help:      "Quota decisions by feature, tier and outcome",
			},
			[]string{"feature", "tier", "allowed"},
		),
		invocations: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "artemius",
				Subsystem: "dispatcher",
				Name:      "invocations_total",
				Help:      "Generator invocations by feature and outcome",
			},
			[]string{"feature", "outcome"},
		),
		invocationDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: "artemius",
				Subsystem: "dispatcher",
				Name:      "invocation_duration_seconds",
				Help:      "Generator latency by feature",
				Buckets:   prometheus.ExponentialBuckets(0.05, 2, 10),
			},
			[]string{"feature"},
		),
		events: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "artemius",
				Subsystem: "conversation",
				Name:      "events_total",
				Help:      "Handled conversation events by kind",
			},
			[]string{"kind"},
		),
	}

	prometheus.MustRegister(
		m.oracleRequests,
		m.cacheLookups,
		m.decisions,
		m.invocations,
		m.invocationDuration,
		m.events,
	)

	return m
}

// RecordOracleRequest records a membership lookup. result is one of
// "subscribed", "not_subscribed" or "error".
func (m *EntitlementMetrics) RecordOracleRequest(result string) {
	m.oracleRequests.WithLabelValues(result).Inc()
}

func (m *EntitlementMetrics) RecordCacheLookup(hit bool) {
	outcome := "miss"
	if hit {
		outcome = "hit"
	}
	m.cacheLookups.WithLabelValues(outcome).Inc()
}

func (m *EntitlementMetrics) RecordDecision(feature, tier string, allowed bool) {
	m.decisions.WithLabelValues(feature, tier, boolLabel(allowed)).Inc()
}

// RecordInvocation records a generator call and its latency in seconds.
func (m *EntitlementMetrics) RecordInvocation(feature string, err error, seconds float64) {
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	m.invocations.WithLabelValues(feature, outcome).Inc()
	m.invocationDuration.WithLabelValues(feature).Observe(seconds)
}

func (m *EntitlementMetrics) RecordEvent(kind string) {
	m.events.WithLabelValues(kind).Inc()
}

func boolLabel(b bool) string {
	if b {
		return "true"
	}
	return "false"
}

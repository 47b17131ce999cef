package metrics

import "github.com/prometheus/client_golang/prometheus"

// PaginatorMetrics records paginator session activity.
type PaginatorMetrics interface {
	SessionStarted()
	SessionClosed(reason string)
	PageTurned(control string)
	UnauthorizedPress()
	OperationFailed(operation string)
}

type prometheusMetrics struct {
	started      prometheus.Counter
	active       prometheus.Gauge
	closed       *prometheus.CounterVec
	turns        *prometheus.CounterVec
	unauthorized prometheus.Counter
	failures     *prometheus.CounterVec
}

// NewPrometheusMetrics registers the paginator collectors on reg.
func NewPrometheusMetrics(reg prometheus.Registerer, namespace string) PaginatorMetrics {
	m := &prometheusMetrics{
		started: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "paginator",
			Name:      "sessions_started_total",
			Help:      "Paginator sessions that sent their first page.",
		}),
		active: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "paginator",
			Name:      "sessions_active",
			Help:      "Paginator sessions whose controls are still live.",
		}),
		closed: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "paginator",
			Name:      "sessions_closed_total",
			Help:      "Paginator sessions that reached the disabled state, by reason.",
		}, []string{"reason"}),
		turns: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "paginator",
			Name:      "page_turns_total",
			Help:      "Page changes, by control.",
		}, []string{"control"}),
		unauthorized: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "paginator",
			Name:      "unauthorized_presses_total",
			Help:      "Control presses rejected because the user was not the invoker.",
		}),
		failures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "paginator",
			Name:      "operation_failures_total",
			Help:      "Failed paginator operations, by operation.",
		}, []string{"operation"}),
	}
	reg.MustRegister(m.started, m.active, m.closed, m.turns, m.unauthorized, m.failures)
	return m
}

func (m *prometheusMetrics) SessionStarted() {
	m.started.Inc()
	m.active.Inc()
}

func (m *prometheusMetrics) SessionClosed(reason string) {
	m.closed.WithLabelValues(reason).Inc()
	m.active.Dec()
}

func (m *prometheusMetrics) PageTurned(control string) {
	m.turns.WithLabelValues(control).Inc()
}

func (m *prometheusMetrics) UnauthorizedPress() {
	m.unauthorized.Inc()
}

func (m *prometheusMetrics) OperationFailed(operation string) {
	m.failures.WithLabelValues(operation).Inc()
}

type noop struct{}

// NewNoop returns metrics that discard everything.
func NewNoop() PaginatorMetrics { return noop{} }

func (noop) SessionStarted()        {}
func (noop) SessionClosed(string)   {}
func (noop) PageTurned(string)      {}
func (noop) UnauthorizedPress()     {}
func (noop) OperationFailed(string) {}

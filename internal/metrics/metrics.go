package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type Metrics struct {
	ToolCallsTotal    *prometheus.CounterVec
	ToolCallDuration  prometheus.Histogram
	ToolCallsInFlight prometheus.Gauge

	FetchRequestsTotal   *prometheus.CounterVec
	FetchRequestDuration prometheus.Histogram

	PayloadShapesTotal *prometheus.CounterVec
	DocumentsReturned  prometheus.Histogram

	gatherer prometheus.Gatherer
}

// New registers collectors on reg. Use prometheus.NewRegistry() in tests,
// the default registry would panic on a second New.
func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)

	m := &Metrics{
		ToolCallsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "search_mcp_tool_calls_total",
				Help: "Total number of search tool invocations",
			},
			[]string{"status"},
		),
		ToolCallDuration: factory.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "search_mcp_tool_call_duration_seconds",
				Help:    "Search tool invocation duration in seconds",
				Buckets: []float64{0.05, 0.1, 0.5, 1, 2, 5, 10, 30},
			},
		),
		ToolCallsInFlight: factory.NewGauge(
			prometheus.GaugeOpts{
				Name: "search_mcp_tool_calls_in_flight",
				Help: "Number of search tool invocations currently being processed",
			},
		),

		FetchRequestsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "search_mcp_fetch_requests_total",
				Help: "Total number of upstream search requests",
			},
			[]string{"status"},
		),
		FetchRequestDuration: factory.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "search_mcp_fetch_duration_seconds",
				Help:    "Upstream search request duration in seconds",
				Buckets: []float64{0.05, 0.1, 0.5, 1, 2, 5, 10},
			},
		),

		PayloadShapesTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "search_mcp_payload_shapes_total",
				Help: "Upstream payloads seen, by detected shape",
			},
			[]string{"shape"},
		),
		DocumentsReturned: factory.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "search_mcp_documents_returned",
				Help:    "Number of normalized documents returned per call",
				Buckets: []float64{0, 1, 5, 10, 20, 50, 100},
			},
		),
	}

	if g, ok := reg.(prometheus.Gatherer); ok {
		m.gatherer = g
	}

	return m
}

// Handler exposes whatever registry New was given; falls back to the default one.
func (m *Metrics) Handler() http.Handler {
	if m == nil || m.gatherer == nil {
		return promhttp.Handler()
	}
	return promhttp.HandlerFor(m.gatherer, promhttp.HandlerOpts{})
}

func (m *Metrics) RecordToolCall(status string, duration time.Duration) {
	m.ToolCallsTotal.WithLabelValues(status).Inc()
	m.ToolCallDuration.Observe(duration.Seconds())
}

func (m *Metrics) RecordFetch(status string, duration time.Duration) {
	m.FetchRequestsTotal.WithLabelValues(status).Inc()
	m.FetchRequestDuration.Observe(duration.Seconds())
}

func (m *Metrics) RecordShape(shape string) {
	m.PayloadShapesTotal.WithLabelValues(shape).Inc()
}

func (m *Metrics) RecordDocuments(count int) {
	m.DocumentsReturned.Observe(float64(count))
}

func (m *Metrics) IncToolCallsInFlight() {
	m.ToolCallsInFlight.Inc()
}

func (m *Metrics) DecToolCallsInFlight() {
	m.ToolCallsInFlight.Dec()
}

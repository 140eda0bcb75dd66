// Package metrics exposes Prometheus counters for ingestion and quotations.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/hazyhaar/agrocota/pkg/quote"
)

const namespace = "agrocota"

// Metrics owns a private registry so tests and several servers in one
// process never collide on the global one.
type Metrics struct {
	reg *prometheus.Registry

	IngestRuns      *prometheus.CounterVec
	RowsRead        prometheus.Counter
	ItemsKept       prometheus.Counter
	RowsDropped     prometheus.Counter
	Classifications *prometheus.CounterVec
	Quotations      prometheus.Counter
	Decisions       *prometheus.CounterVec
}

// New creates and registers all collectors.
func New() *Metrics {
	m := &Metrics{
		reg: prometheus.NewRegistry(),
		IngestRuns: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "ingest_runs_total",
			Help:      "Spreadsheet ingestion runs by transport.",
		}, []string{"transport"}),
		RowsRead: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "ingest_rows_read_total",
			Help:      "Data rows read from spreadsheets.",
		}),
		ItemsKept: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "ingest_items_total",
			Help:      "Rows kept as priced items.",
		}),
		RowsDropped: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "ingest_rows_dropped_total",
			Help:      "Rows dropped for a missing product or non-positive price.",
		}),
		Classifications: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "classifications_total",
			Help:      "Category classifications by cascade step.",
		}, []string{"source"}),
		Quotations: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "quotations_created_total",
			Help:      "Quotations stored.",
		}),
		Decisions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "quotation_decisions_total",
			Help:      "Producer decisions by outcome.",
		}, []string{"outcome"}),
	}
	m.reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.IngestRuns, m.RowsRead, m.ItemsKept, m.RowsDropped,
		m.Classifications, m.Quotations, m.Decisions,
	)
	return m
}

// ObserveIngest records one ingestion run.
func (m *Metrics) ObserveIngest(transport string, res *quote.Result) {
	m.IngestRuns.WithLabelValues(transport).Inc()
	m.RowsRead.Add(float64(res.RowsRead))
	m.ItemsKept.Add(float64(len(res.Items)))
	m.RowsDropped.Add(float64(res.RowsDropped))
	for src, n := range res.Sources {
		m.Classifications.WithLabelValues(string(src)).Add(float64(n))
	}
}

// ObserveDecision records an approval or rejection.
func (m *Metrics) ObserveDecision(approved bool) {
	outcome := "rejected"
	if approved {
		outcome = "approved"
	}
	m.Decisions.WithLabelValues(outcome).Inc()
}

// Handler serves the registry in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.reg, promhttp.HandlerOpts{Registry: m.reg})
}

// Package metrics records per-run counters in a private Prometheus registry.
package metrics

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/zgpcy/azure-cost-report/internal/logger"
	"github.com/zgpcy/azure-cost-report/internal/version"
)

// LookupResult labels the outcome of one resource type lookup
type LookupResult string

// Lookup outcomes
const (
	LookupCacheHit LookupResult = "cache_hit"
	LookupFound    LookupResult = "found"
	LookupNotFound LookupResult = "not_found"
	LookupError    LookupResult = "error"
)

// Metrics holds the counters of a single report run in a private registry
type Metrics struct {
	registry *prometheus.Registry

	recordsFetched *prometheus.CounterVec
	fetchErrors    *prometheus.CounterVec
	fetchDuration  *prometheus.GaugeVec
	lookups        *prometheus.CounterVec
	rowsPrinted    prometheus.Counter
	buildInfo      *prometheus.GaugeVec
}

// New creates and registers the run metrics
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		recordsFetched: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "azure_cost_report_usage_records_total",
				Help: "Usage records returned by the usage source",
			},
			[]string{"source"},
		),
		fetchErrors: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "azure_cost_report_usage_fetch_errors_total",
				Help: "Failed usage listings",
			},
			[]string{"source"},
		),
		fetchDuration: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "azure_cost_report_usage_fetch_duration_seconds",
				Help: "Duration of the last usage listing in seconds",
			},
			[]string{"source"},
		),
		lookups: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "azure_cost_report_resource_lookups_total",
				Help: "Resource type lookups by result; cache_hit lookups made no API call",
			},
			[]string{"result"},
		),
		rowsPrinted: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "azure_cost_report_rows_printed_total",
				Help: "Report rows written",
			},
		),
		buildInfo: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "azure_cost_report_build_info",
				Help: "Build version information",
			},
			[]string{"version", "git_commit", "build_date", "go_version"},
		),
	}

	versionInfo := version.Info()
	m.buildInfo.With(prometheus.Labels{
		"version":    versionInfo["version"],
		"git_commit": versionInfo["git_commit"],
		"build_date": versionInfo["build_date"],
		"go_version": versionInfo["go_version"],
	}).Set(1)

	m.registry.MustRegister(
		m.recordsFetched,
		m.fetchErrors,
		m.fetchDuration,
		m.lookups,
		m.rowsPrinted,
		m.buildInfo,
	)

	return m
}

// Registry exposes the underlying registry for inspection
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// ObserveFetch records one usage listing
func (m *Metrics) ObserveFetch(source string, records int, d time.Duration, err error) {
	m.fetchDuration.WithLabelValues(source).Set(d.Seconds())
	if err != nil {
		m.fetchErrors.WithLabelValues(source).Inc()
		return
	}
	m.recordsFetched.WithLabelValues(source).Add(float64(records))
}

// ObserveLookup records one resource type resolution
func (m *Metrics) ObserveLookup(result LookupResult) {
	m.lookups.WithLabelValues(string(result)).Inc()
}

// ObserveRows records printed report rows
func (m *Metrics) ObserveRows(n int) {
	m.rowsPrinted.Add(float64(n))
}

// Snapshot flattens every sample to "name{label=value,...}" -> value
func (m *Metrics) Snapshot() (map[string]float64, error) {
	families, err := m.registry.Gather()
	if err != nil {
		return nil, fmt.Errorf("failed to gather metrics: %w", err)
	}

	out := make(map[string]float64)
	for _, mf := range families {
		for _, metric := range mf.GetMetric() {
			var labels []string
			for _, lp := range metric.GetLabel() {
				labels = append(labels, lp.GetName()+"="+lp.GetValue())
			}
			key := mf.GetName()
			if len(labels) > 0 {
				key += "{" + strings.Join(labels, ",") + "}"
			}

			switch {
			case metric.GetCounter() != nil:
				out[key] = metric.GetCounter().GetValue()
			case metric.GetGauge() != nil:
				out[key] = metric.GetGauge().GetValue()
			}
		}
	}
	return out, nil
}

// Log writes the snapshot at debug level, one attribute per sample
func (m *Metrics) Log(log *logger.Logger) {
	snap, err := m.Snapshot()
	if err != nil {
		log.Warn("Failed to collect run metrics", "error", err)
		return
	}

	keys := make([]string, 0, len(snap))
	for k := range snap {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	attrs := make([]any, 0, 2*len(keys))
	for _, k := range keys {
		attrs = append(attrs, k, snap[k])
	}
	log.Debug("Run metrics", attrs...)
}

package metrics

import "time"

// DaemonMetrics holds the daemon-specific metrics.
type DaemonMetrics struct {
	registry *Registry

	// Counters
	CatalogReloadsTotal      *Counter
	CatalogReloadErrorsTotal *Counter
	ProfileResolutionsTotal  *Counter
	ProfileMatchesTotal      *Counter
	ChangeEntriesTotal       *Counter
	RequestsTotal            *Counter
	RequestErrorsTotal       *Counter

	// Gauges
	ChangeLogSize *Gauge
	CatalogPairs  *Gauge
	UptimeSeconds *Gauge

	// Histograms
	RequestDuration *Histogram
}

var startTime = time.Now()

// NewDaemonMetrics creates and registers all daemon metrics.
func NewDaemonMetrics(registry *Registry) *DaemonMetrics {
	if registry == nil {
		registry = Default()
	}

	return &DaemonMetrics{
		registry: registry,

		CatalogReloadsTotal: registry.RegisterCounter(
			"catalog_reloads_total",
			"Total number of successful profile catalog reloads",
			nil,
		),
		CatalogReloadErrorsTotal: registry.RegisterCounter(
			"catalog_reload_errors_total",
			"Total number of failed profile catalog reloads",
			nil,
		),
		ProfileResolutionsTotal: registry.RegisterCounter(
			"profile_resolutions_total",
			"Total number of profile list resolutions served",
			nil,
		),
		ProfileMatchesTotal: registry.RegisterCounter(
			"profile_matches_total",
			"Total number of active-profile matches served",
			nil,
		),
		ChangeEntriesTotal: registry.RegisterCounter(
			"change_entries_total",
			"Total number of change-log entries recorded",
			nil,
		),
		RequestsTotal: registry.RegisterCounter(
			"requests_total",
			"Total number of API requests handled",
			nil,
		),
		RequestErrorsTotal: registry.RegisterCounter(
			"request_errors_total",
			"Total number of API requests answered with an error",
			nil,
		),

		ChangeLogSize: registry.RegisterGauge(
			"changelog_size",
			"Number of entries currently held in the change log",
			nil,
		),
		CatalogPairs: registry.RegisterGauge(
			"catalog_pairs",
			"Number of channel type pairs in the loaded catalog",
			nil,
		),
		UptimeSeconds: registry.RegisterGauge(
			"uptime_seconds",
			"Number of seconds the daemon has been running",
			nil,
		),

		RequestDuration: registry.RegisterHistogram(
			"request_duration_seconds",
			"Duration of API request handling in seconds",
			nil,
			DurationBuckets,
		),
	}
}

// RecordCatalogReload records a catalog reload attempt.
func (m *DaemonMetrics) RecordCatalogReload(success bool) {
	if success {
		m.CatalogReloadsTotal.Inc()
	} else {
		m.CatalogReloadErrorsTotal.Inc()
	}
}

// RecordChangeEntry records a recorded change-log entry.
func (m *DaemonMetrics) RecordChangeEntry() {
	m.ChangeEntriesTotal.Inc()
}

// StartRequestTimer returns a timer for one API request.
func (m *DaemonMetrics) StartRequestTimer() *HistogramTimer {
	m.RequestsTotal.Inc()
	return m.RequestDuration.Timer()
}

// UpdateUptime updates the uptime gauge.
func (m *DaemonMetrics) UpdateUptime() {
	m.UptimeSeconds.Set(int64(time.Since(startTime).Seconds()))
}

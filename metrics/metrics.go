// Package metrics counts what an export run did and writes it as a Prometheus textfile.
package metrics

import (
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
)

var Registry = prometheus.NewRegistry()

var (
	APIRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "tuya_api_requests_total",
			Help: "Tuya OpenAPI requests by endpoint and outcome.",
		},
		[]string{"endpoint", "outcome"},
	)
	LogPages = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "tuya_report_log_pages_total",
		Help: "Report log pages fetched.",
	})
	EventsFetched = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "tuya_report_log_events_total",
		Help: "Report log events fetched.",
	})
	DevicesExported = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "telemetry_devices_total",
			Help: "Devices seen by the exporter, by result.",
		},
		[]string{"result"},
	)
	SeriesBuilt = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "telemetry_series_total",
			Help: "Series built, by kind.",
		},
		[]string{"kind"},
	)
	LastRunSeconds = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "telemetry_last_run_duration_seconds",
		Help: "Duration of the last export run.",
	})
	LastRunTimestamp = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "telemetry_last_run_timestamp_seconds",
		Help: "Completion time of the last successful export run.",
	})
)

func init() {
	Registry.MustRegister(APIRequests, LogPages, EventsFetched, DevicesExported, SeriesBuilt, LastRunSeconds, LastRunTimestamp)
}

// Write the registry in text exposition format, for node_exporter's textfile collector.
func WriteTextfile(path string) error {
	err := prometheus.WriteToTextfile(path, Registry)
	if err != nil {
		return fmt.Errorf("error writing metrics to %v: %w", path, err)
	}
	return nil
}

package jobs

import (
	"context"
	"fmt"
	"time"

	"github.com/Mause/tuya-graphing/charts"
	"github.com/Mause/tuya-graphing/connections/sensors"
	"github.com/Mause/tuya-graphing/data"
	"github.com/Mause/tuya-graphing/exports"
	"github.com/Mause/tuya-graphing/logs"
	"github.com/Mause/tuya-graphing/metrics"
	"github.com/Mause/tuya-graphing/series"
	"github.com/Mause/tuya-graphing/utils"
)

// One export run: every device's report logs for the window, charted and dumped.
type TelemetryExport struct {
	Sensors sensors.SensorConnection
	Builder series.Builder
	// Trailing window ending now. Zero means since midnight in Location.
	Window   time.Duration
	Location *time.Location
	// Raw event dump, overwritten every run.
	OutputFile string
	// Chart workbook. Empty disables charting.
	ChartFile string
	// Prometheus textfile. Empty disables it.
	MetricsFile string
	Now         func() time.Time
}

// Bounds of the log window for a run starting at now.
func (e *TelemetryExport) Bounds(now time.Time) (time.Time, time.Time) {
	if e.Window > 0 {
		return now.Add(-e.Window), now
	}
	location := e.Location
	if location == nil {
		location = time.UTC
	}
	return utils.StartOfDay(now.In(location)), now
}

// Devices are processed one at a time. Any fetch or coercion failure ends the run.
func (e *TelemetryExport) Run(ctx context.Context) error {
	now := time.Now
	if e.Now != nil {
		now = e.Now
	}
	runStart := now()
	start, end := e.Bounds(runStart)
	if e.MetricsFile != "" {
		defer func() {
			metricsErr := metrics.WriteTextfile(e.MetricsFile)
			if metricsErr != nil {
				logs.WarnWithContext(ctx, "%v", metricsErr)
			}
		}()
	}
	logs.InfoWithContext(ctx, "exporting report logs from %v to %v", start.Format(time.RFC3339), end.Format(time.RFC3339))

	var workbook *charts.Workbook
	if e.ChartFile != "" {
		workbook = charts.NewWorkbook()
		defer logs.LogErrorsWithContext(ctx, workbook.Close, "error closing workbook")
	}
	raw := map[string][]data.Event{}

	// Export every device
	devices := e.Sensors.GetDevices()
	for {
		device, err := devices.Next(ctx)
		if err != nil {
			return fmt.Errorf("error while listing devices: %w", err)
		}
		if device == nil {
			break
		}
		err = e.exportDevice(ctx, *device, start, end, raw, workbook)
		if err != nil {
			metrics.DevicesExported.WithLabelValues("failed").Inc()
			return err
		}
	}

	// Write outputs
	err := exports.WriteJSON(e.OutputFile, raw)
	if err != nil {
		return err
	}
	logs.InfoWithContext(ctx, "wrote raw events of %d devices to %v", len(raw), e.OutputFile)
	if workbook != nil {
		if len(workbook.Sheets()) == 0 {
			logs.InfoWithContext(ctx, "no device produced a series, skipping %v", e.ChartFile)
		} else {
			err = workbook.SaveAs(e.ChartFile)
			if err != nil {
				return err
			}
			logs.InfoWithContext(ctx, "wrote charts of %d devices to %v", len(workbook.Sheets()), e.ChartFile)
		}
	}

	finished := now()
	metrics.LastRunSeconds.Set(finished.Sub(runStart).Seconds())
	metrics.LastRunTimestamp.Set(float64(finished.Unix()))
	return nil
}

func (e *TelemetryExport) exportDevice(ctx context.Context, device data.Device, start time.Time, end time.Time, raw map[string][]data.Event, workbook *charts.Workbook) error {
	codes := device.Codes()
	if len(codes) == 0 {
		logs.DebugWithContext(ctx, "skipping device %v (%v): no status codes", device.Name, device.ID)
		metrics.DevicesExported.WithLabelValues("skipped").Inc()
		return nil
	}

	// Fetch logs
	events, err := e.Sensors.GetDeviceLogs(device.ID, codes, start, end).Collect(ctx)
	if err != nil {
		return fmt.Errorf("error while fetching logs of device %v (%v): %w", device.Name, device.ID, err)
	}
	logs.InfoWithContext(ctx, "fetched %d events from %v", len(events), device.Name)

	// Build series
	set, err := e.Builder.Build(events, codes)
	if err != nil {
		return fmt.Errorf("error while building series of device %v (%v): %w", device.Name, device.ID, err)
	}
	for _, s := range set {
		metrics.SeriesBuilt.WithLabelValues(s.Kind.String()).Inc()
	}

	if _, duplicate := raw[device.Name]; duplicate {
		logs.WarnWithContext(ctx, "device name %v is not unique, raw events of %v replace the earlier device", device.Name, device.ID)
	}
	raw[device.Name] = events

	if workbook != nil {
		sheet, err := workbook.AddDevice(device.Name, codes, set)
		if err != nil {
			return fmt.Errorf("error while charting device %v (%v): %w", device.Name, device.ID, err)
		}
		if sheet != "" {
			logs.DebugWithContext(ctx, "charted %d series of %v on sheet %v", len(set), device.Name, sheet)
		}
	}
	metrics.DevicesExported.WithLabelValues("exported").Inc()
	return nil
}

package sensors

import (
	"context"
	"errors"
	"fmt"
	"maps"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/Mause/tuya-graphing/data"
	"github.com/Mause/tuya-graphing/metrics"
	"github.com/Mause/tuya-graphing/utils"
)

const REPORT_LOGS_PATH = "/v1.0/iot-03/devices/%s/report-logs"

var ErrMissingCursor = errors.New("has_more set without a last_row_key")

// Lazily walks the report logs of a device. Each page after the first is requested with the
// previous page's last_row_key, until the vendor reports has_more: false.
func (c *TuyaConnection) GetDeviceLogs(deviceID string, codes []string, start time.Time, end time.Time) *data.IterablePaginatedData[data.Event] {
	path := fmt.Sprintf(REPORT_LOGS_PATH, url.PathEscape(deviceID))
	baseQuery := map[string]string{
		"codes":      strings.Join(codes, ","),
		"start_time": strconv.FormatInt(utils.ToAPI(start), 10),
		"end_time":   strconv.FormatInt(utils.ToAPI(end), 10),
	}

	logs := data.NewIterablePaginatedData(func(ctx context.Context, cursor *string) ([]data.Event, *string, error) {
		query := maps.Clone(baseQuery)
		if cursor != nil {
			query["last_row_key"] = *cursor
		}
		page, err := MakeTuyaRequest[LogPage](ctx, c, "report_logs", path, query)
		if err != nil {
			return nil, nil, fmt.Errorf("error while fetching logs for device %v: %w", deviceID, err)
		}
		metrics.LogPages.Inc()
		metrics.EventsFetched.Add(float64(len(page.List)))

		events := make([]data.Event, 0, len(page.List))
		for _, event := range page.List {
			events = append(events, event.toEvent())
		}
		next, err := nextCursor(page.HasMore, page.LastRowKey)
		if err != nil {
			return nil, nil, fmt.Errorf("error paginating logs for device %v: %w", deviceID, err)
		}
		return events, next, nil
	})
	logs.MaxPages = c.maxLogPages
	return &logs
}

func nextCursor(hasMore bool, lastRowKey string) (*string, error) {
	if !hasMore {
		return nil, nil
	}
	if lastRowKey == "" {
		return nil, ErrMissingCursor
	}
	return &lastRowKey, nil
}

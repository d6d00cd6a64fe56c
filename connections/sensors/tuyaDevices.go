package sensors

import (
	"context"
	"fmt"
	"strconv"

	"github.com/Mause/tuya-graphing/data"
)

const DEVICES_PATH = "/v1.0/iot-01/associated-users/devices"

const DEVICES_PAGE_SIZE = 100

func (c *TuyaConnection) GetDevices() *data.IterablePaginatedData[data.Device] {
	devices := data.NewIterablePaginatedData(func(ctx context.Context, cursor *string) ([]data.Device, *string, error) {
		query := map[string]string{"size": strconv.Itoa(DEVICES_PAGE_SIZE)}
		if cursor != nil {
			query["last_row_key"] = *cursor
		}
		page, err := MakeTuyaRequest[DevicePage](ctx, c, "devices", DEVICES_PATH, query)
		if err != nil {
			return nil, nil, fmt.Errorf("error while getting Tuya device list: %w", err)
		}

		items := make([]data.Device, 0, len(page.Devices))
		for _, device := range page.Devices {
			items = append(items, device.toDevice())
		}
		next, err := nextCursor(page.HasMore, page.LastRowKey)
		if err != nil {
			return nil, nil, fmt.Errorf("error paginating Tuya device list: %w", err)
		}
		return items, next, nil
	})
	return &devices
}

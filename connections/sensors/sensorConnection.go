package sensors

import (
	"time"

	"github.com/Mause/tuya-graphing/connections"
	"github.com/Mause/tuya-graphing/data"
)

type SensorConnection interface {
	connections.Connection
	// Queries the API for all devices visible to the connection's credentials
	GetDevices() *data.IterablePaginatedData[data.Device]
	// Queries the API for the events a device reported for the given codes between start and end
	GetDeviceLogs(deviceID string, codes []string, start time.Time, end time.Time) *data.IterablePaginatedData[data.Event]
}

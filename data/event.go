package data

import "time"

// One telemetry sample reported by a device.
type Event struct {
	Code      string    `json:"code"`
	EventTime time.Time `json:"event_time"`
	Value     Value     `json:"value"`
}

package sensors

import (
	"errors"
	"fmt"
	"time"

	"github.com/Mause/tuya-graphing/data"
)

var ErrTuyaAPIError = errors.New("tuya api error")

// The vendor answered but reported success: false.
type APIError struct {
	Path string
	Code int
	Msg  string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("tuya api error %d on %v: %v", e.Code, e.Path, e.Msg)
}

func (e *APIError) Unwrap() error {
	return ErrTuyaAPIError
}

// Envelope of every OpenAPI response, from https://developer.tuya.com/en/docs/iot/api-request
type TypedResponse[T any] struct {
	Result  T      `json:"result"`
	Success bool   `json:"success"`
	Time    int64  `json:"t"`             // Server timestamp in epoch milliseconds
	Code    int    `json:"code,omitempty"` // Error code, only when success is false
	Msg     string `json:"msg,omitempty"`  // Error message, only when success is false
	Tid     string `json:"tid,omitempty"`  // Trace id
}

type TokenResult struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	ExpireTime   int    `json:"expire_time"` // Seconds until the access token expires
	UID          string `json:"uid"`
}

// One page of /v1.0/iot-03/devices/{device_id}/report-logs.
type LogPage struct {
	DeviceID   string     `json:"device_id"`
	HasMore    bool       `json:"has_more"`
	LastRowKey string     `json:"last_row_key"`
	Total      int        `json:"total"`
	List       []LogEvent `json:"list"`
}

type LogEvent struct {
	Code      string     `json:"code"`
	EventTime int64      `json:"event_time"` // Epoch milliseconds
	Value     data.Value `json:"value"`
}

func (e LogEvent) toEvent() data.Event {
	return data.Event{
		Code:      e.Code,
		EventTime: time.UnixMilli(e.EventTime).UTC(),
		Value:     e.Value,
	}
}

// One page of /v1.0/iot-01/associated-users/devices.
type DevicePage struct {
	Devices    []TuyaDevice `json:"devices"`
	HasMore    bool         `json:"has_more"`
	LastRowKey string       `json:"last_row_key"`
	Total      int          `json:"total"`
}

type TuyaDevice struct {
	ID          string       `json:"id"`
	Name        string       `json:"name"`
	ProductID   string       `json:"product_id"`
	ProductName string       `json:"product_name"`
	Model       string       `json:"model"`
	Category    string       `json:"category"`
	Online      bool         `json:"online"`
	Status      []TuyaStatus `json:"status"`
}

type TuyaStatus struct {
	Code  string     `json:"code"`
	Value data.Value `json:"value"`
}

func (d TuyaDevice) toDevice() data.Device {
	statuses := make([]data.Status, 0, len(d.Status))
	for _, status := range d.Status {
		statuses = append(statuses, data.Status{Code: status.Code, Value: status.Value})
	}
	return data.Device{
		ID:          d.ID,
		Name:        d.Name,
		ProductName: d.ProductName,
		Model:       d.Model,
		Status:      statuses,
	}
}

package utils

import (
	"time"
)

// Current time in seconds
func TimeSeconds() int64 {
	return time.Now().UTC().Unix()
}

// Time as the vendor expects it: epoch milliseconds.
func ToAPI(t time.Time) int64 {
	return t.UnixMilli()
}

// Midnight at the start of t's day, in t's location.
func StartOfDay(t time.Time) time.Time {
	year, month, day := t.Date()
	return time.Date(year, month, day, 0, 0, 0, 0, t.Location())
}

package model

import "time"

// DatetimeLayout renders UTC instants as RFC 3339 with an explicit
// "+00:00" offset.
const DatetimeLayout = "2006-01-02T15:04:05+00:00"

// Representable range for Datetime. RFC 3339 requires a four digit year.
var (
	minEpoch = time.Date(0, time.January, 1, 0, 0, 0, 0, time.UTC).Unix()
	maxEpoch = time.Date(9999, time.December, 31, 23, 59, 59, 0, time.UTC).Unix()
)

// Position is one observed ISS position at one instant.
type Position struct {
	Timestamp int64   `json:"timestamp" msgpack:"timestamp"` // Upstream timestamp (s since epoch)
	Datetime  string  `json:"datetime" msgpack:"datetime"`   // Timestamp in DatetimeLayout
	Latitude  float64 `json:"latitude" msgpack:"latitude"`   // Decimal degrees
	Longitude float64 `json:"longitude" msgpack:"longitude"` // Decimal degrees
}

// NewPosition builds a fully populated Position from an upstream observation.
func NewPosition(timestamp int64, latitude, longitude float64) Position {
	return Position{
		Timestamp: timestamp,
		Datetime:  FormatTimestamp(timestamp, time.Now()),
		Latitude:  latitude,
		Longitude: longitude,
	}
}

// FormatTimestamp renders a Unix timestamp in DatetimeLayout.
// Timestamps outside the representable range render as now instead.
func FormatTimestamp(timestamp int64, now time.Time) string {
	t := now
	if timestamp >= minEpoch && timestamp <= maxEpoch {
		t = time.Unix(timestamp, 0)
	}
	return FormatTime(t)
}

// FormatTime renders t in UTC using DatetimeLayout.
func FormatTime(t time.Time) string {
	return t.UTC().Format(DatetimeLayout)
}

package model

import (
	"testing"
	"time"
)

func TestNewPosition(t *testing.T) {
	p := NewPosition(1700000000, 12.34, -56.78)

	if p.Timestamp != 1700000000 {
		t.Errorf("Timestamp = %d, want %d", p.Timestamp, 1700000000)
	}
	if p.Datetime != "2023-11-14T22:13:20+00:00" {
		t.Errorf("Datetime = %q, want %q", p.Datetime, "2023-11-14T22:13:20+00:00")
	}
	if p.Latitude != 12.34 {
		t.Errorf("Latitude = %v, want %v", p.Latitude, 12.34)
	}
	if p.Longitude != -56.78 {
		t.Errorf("Longitude = %v, want %v", p.Longitude, -56.78)
	}
}

func TestFormatTime(t *testing.T) {
	at := time.Date(2024, time.January, 1, 13, 0, 0, 0, time.FixedZone("CET", 3600))
	if got, want := FormatTime(at), "2024-01-01T12:00:00+00:00"; got != want {
		t.Errorf("FormatTime() = %q, want %q", got, want)
	}
	if _, err := time.Parse(time.RFC3339, FormatTime(at)); err != nil {
		t.Errorf("FormatTime() output is not RFC 3339: %v", err)
	}
}

func TestFormatTimestamp(t *testing.T) {
	now := time.Date(2024, time.March, 1, 12, 0, 0, 0, time.FixedZone("CET", 3600))

	tests := []struct {
		name      string
		timestamp int64
		want      string
	}{
		{"epoch zero", 0, "1970-01-01T00:00:00+00:00"},
		{"recent", 1700000000, "2023-11-14T22:13:20+00:00"},
		{"negative", -86400, "1969-12-31T00:00:00+00:00"},
		{"last representable", maxEpoch, "9999-12-31T23:59:59+00:00"},
		{"first representable", minEpoch, "0000-01-01T00:00:00+00:00"},
		{"beyond year 9999", maxEpoch + 1, "2024-03-01T11:00:00+00:00"},
		{"before year 0", minEpoch - 1, "2024-03-01T11:00:00+00:00"},
		{"max int64", 1<<63 - 1, "2024-03-01T11:00:00+00:00"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := FormatTimestamp(tt.timestamp, now); got != tt.want {
				t.Errorf("FormatTimestamp(%d) = %q, want %q", tt.timestamp, got, tt.want)
			}
		})
	}
}

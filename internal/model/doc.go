// Package model defines the shared data types of the ISS tracker.
//
// Conventions:
//   - Timestamps: int64 seconds since Unix epoch, as reported by the upstream
//   - Datetime: RFC 3339 rendering of the timestamp in UTC
//   - Coordinates: float64 decimal degrees
//
// Values in this package are immutable once constructed. They are copied,
// never shared by pointer, between the acquisition loop and API readers.
package model

package config

import (
	"time"

	"github.com/google/uuid"
)

// Default values for optional configuration fields.
const (
	DefaultUpstreamURL     = "http://api.open-notify.org/iss-now.json"
	DefaultUpstreamTimeout = 3 * time.Second
	DefaultMaxPositions    = 15000
	DefaultPollInterval    = 2 * time.Second
	DefaultAddr            = ":8000"
	DefaultStaticDir       = "static"
	DefaultRateBurst       = 20
	DefaultShutdownTimeout = 10 * time.Second
	DefaultStreamBuffer    = 16
	DefaultLogLevel        = "info"
	DefaultLogFormat       = "text"
)

func (c *TrackerConfig) applyDefaults() {
	if c.Instance.ID == "" {
		c.Instance.ID = uuid.NewString()
	}

	// Upstream defaults
	if c.Upstream.URL == "" {
		c.Upstream.URL = DefaultUpstreamURL
	}
	if c.Upstream.Timeout == 0 {
		c.Upstream.Timeout = DefaultUpstreamTimeout
	}

	// Tracker defaults
	if c.Tracker.MaxPositions == 0 {
		c.Tracker.MaxPositions = DefaultMaxPositions
	}
	if c.Tracker.PollInterval == 0 {
		c.Tracker.PollInterval = DefaultPollInterval
	}

	// Server defaults
	if c.Server.Addr == "" {
		c.Server.Addr = DefaultAddr
	}
	if c.Server.StaticDir == "" {
		c.Server.StaticDir = DefaultStaticDir
	}
	if c.Server.RateLimit > 0 && c.Server.RateBurst == 0 {
		c.Server.RateBurst = DefaultRateBurst
	}
	if c.Server.ShutdownTimeout == 0 {
		c.Server.ShutdownTimeout = DefaultShutdownTimeout
	}

	if c.Stream.Buffer == 0 {
		c.Stream.Buffer = DefaultStreamBuffer
	}

	if c.Log.Level == "" {
		c.Log.Level = DefaultLogLevel
	}
	if c.Log.Format == "" {
		c.Log.Format = DefaultLogFormat
	}
}

package config

import "time"

// TrackerConfig is the root configuration for a tracker instance.
type TrackerConfig struct {
	Instance InstanceConfig `yaml:"instance"`
	Upstream UpstreamConfig `yaml:"upstream"`
	Tracker  TrackerSection `yaml:"tracker"`
	Server   ServerConfig   `yaml:"server"`
	Stream   StreamConfig   `yaml:"stream"`
	Log      LogConfig      `yaml:"log"`
}

// InstanceConfig identifies this tracker in logs.
type InstanceConfig struct {
	ID string `yaml:"id"`
}

// UpstreamConfig holds the position feed settings.
type UpstreamConfig struct {
	URL     string        `yaml:"url"`
	Timeout time.Duration `yaml:"timeout"`
}

// TrackerSection holds history retention and polling cadence.
type TrackerSection struct {
	MaxPositions int           `yaml:"max_positions"`
	PollInterval time.Duration `yaml:"poll_interval"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Addr            string        `yaml:"addr"`
	StaticDir       string        `yaml:"static_dir"`
	RateLimit       float64       `yaml:"rate_limit"` // requests/sec per IP on /api/, 0 disables
	RateBurst       int           `yaml:"rate_burst"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
}

// StreamConfig holds live WebSocket stream settings.
type StreamConfig struct {
	Enabled *bool `yaml:"enabled"` // nil means enabled
	Buffer  int   `yaml:"buffer"`  // per-subscriber queue length
}

// IsEnabled reports whether /api/stream should be served.
func (s StreamConfig) IsEnabled() bool {
	return s.Enabled == nil || *s.Enabled
}

// LogConfig controls process logging.
type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"` // text, json or console
}

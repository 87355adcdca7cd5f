package config

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/rickgao/iss-tracker/internal/logging"
)

// MinPollInterval is the shortest accepted poll interval.
const MinPollInterval = time.Second

// Validate checks that all required fields are set and values are valid.
func (c *TrackerConfig) Validate() error {
	if c.Instance.ID == "" {
		return errors.New("instance.id is required")
	}

	if err := validateURL(c.Upstream.URL); err != nil {
		return fmt.Errorf("upstream.url: %w", err)
	}
	if c.Upstream.Timeout <= 0 {
		return fmt.Errorf("upstream.timeout must be > 0, got %s", c.Upstream.Timeout)
	}

	if c.Tracker.MaxPositions < 1 {
		return fmt.Errorf("tracker.max_positions must be >= 1, got %d", c.Tracker.MaxPositions)
	}
	if c.Tracker.PollInterval < MinPollInterval {
		return fmt.Errorf("tracker.poll_interval must be >= %s, got %s", MinPollInterval, c.Tracker.PollInterval)
	}

	if c.Server.Addr == "" {
		return errors.New("server.addr is required")
	}
	if c.Server.RateLimit < 0 {
		return errors.New("server.rate_limit must be >= 0")
	}
	if c.Server.RateLimit > 0 && c.Server.RateBurst < 1 {
		return errors.New("server.rate_burst must be >= 1 when rate_limit is set")
	}

	if c.Stream.Buffer < 1 {
		return errors.New("stream.buffer must be >= 1")
	}

	if _, err := logging.ParseLevel(c.Log.Level); err != nil {
		return fmt.Errorf("log.level: %w", err)
	}
	switch strings.ToLower(c.Log.Format) {
	case logging.FormatText, logging.FormatJSON, logging.FormatConsole:
	default:
		return fmt.Errorf("log.format must be one of text, json, console, got %q", c.Log.Format)
	}

	return nil
}

func validateURL(raw string) error {
	if raw == "" {
		return errors.New("is required")
	}
	u, err := url.Parse(raw)
	if err != nil {
		return err
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("scheme must be http or https, got %q", u.Scheme)
	}
	if u.Host == "" {
		return errors.New("host is required")
	}
	return nil
}

package poller

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/rickgao/iss-tracker/internal/api"
	"github.com/rickgao/iss-tracker/internal/logging"
	"github.com/rickgao/iss-tracker/internal/model"
)

// maxLoggedBody caps how much of an upstream error body is logged.
const maxLoggedBody = 512

// PositionSource fetches the current position from the upstream.
type PositionSource interface {
	CurrentPosition(ctx context.Context) (model.Position, error)
}

// PositionHandler receives acquired positions.
type PositionHandler interface {
	HandlePosition(p model.Position)
}

// PositionHandlerFunc is a function adapter for PositionHandler.
type PositionHandlerFunc func(model.Position)

func (f PositionHandlerFunc) HandlePosition(p model.Position) {
	f(p)
}

// Config holds poller configuration.
type Config struct {
	Interval time.Duration // Sleep between ticks (default: 2s)
	Timeout  time.Duration // Per-fetch timeout (default: 3s)
}

// DefaultConfig returns sensible defaults.
func DefaultConfig() Config {
	return Config{
		Interval: 2 * time.Second,
		Timeout:  3 * time.Second,
	}
}

// Stats summarizes acquisition outcomes since start.
type Stats struct {
	Attempts    int64
	Successes   int64
	Failures    int64
	LastAttempt time.Time
	LastSuccess time.Time
	LastError   string
}

// Poller periodically fetches the ISS position.
type Poller struct {
	cfg     Config
	source  PositionSource
	handler PositionHandler
	logger  *slog.Logger

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup

	statsMu sync.Mutex
	stats   Stats
}

// New creates a new Poller.
func New(cfg Config, source PositionSource, handler PositionHandler, logger *slog.Logger) *Poller {
	return &Poller{
		cfg:     cfg,
		source:  source,
		handler: handler,
		logger:  logging.Default(logger).With("component", "poller"),
		ctx:     context.Background(),
	}
}

// Start begins the polling loop.
func (p *Poller) Start(ctx context.Context) error {
	p.ctx, p.cancel = context.WithCancel(ctx)

	p.wg.Add(1)
	go p.run()

	p.logger.Info("position poller started",
		"interval", p.cfg.Interval,
		"timeout", p.cfg.Timeout,
	)

	return nil
}

// Stop gracefully shuts down the poller.
func (p *Poller) Stop(ctx context.Context) error {
	if p.cancel != nil {
		p.cancel()
	}

	done := make(chan struct{})
	go func() {
		p.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		p.logger.Info("position poller stopped")
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Stats returns a copy of the acquisition statistics.
func (p *Poller) Stats() Stats {
	p.statsMu.Lock()
	defer p.statsMu.Unlock()
	return p.stats
}

// run is the main polling loop.
func (p *Poller) run() {
	defer p.wg.Done()

	// Poll immediately on start.
	for {
		p.tick()

		// The interval starts after the tick finished, not when it began.
		select {
		case <-p.ctx.Done():
			return
		case <-time.After(p.cfg.Interval):
		}
	}
}

// tick runs one acquisition attempt and hands a valid position on.
func (p *Poller) tick() {
	defer func() {
		if r := recover(); r != nil {
			p.logger.Error("acquisition tick panicked", "panic", r)
		}
	}()

	pos, ok := p.acquire()
	if !ok || p.handler == nil {
		return
	}
	p.handler.HandlePosition(pos)
}

// acquire performs one upstream fetch and logs its outcome.
func (p *Poller) acquire() (model.Position, bool) {
	ctx, cancel := context.WithTimeout(p.ctx, p.cfg.Timeout)
	defer cancel()

	start := time.Now()
	pos, err := p.source.CurrentPosition(ctx)
	p.record(start, err)

	if err == nil {
		p.logger.Debug("position acquired",
			"datetime", pos.Datetime,
			"latitude", pos.Latitude,
			"longitude", pos.Longitude,
			"duration", time.Since(start),
		)
		return pos, true
	}

	var apiErr *api.APIError
	switch {
	case p.ctx.Err() != nil:
		// Shutting down; the failure is expected.
	case errors.As(err, &apiErr):
		p.logger.Warn("upstream returned error status",
			"status", apiErr.StatusCode,
			"body", truncate(string(apiErr.Body), maxLoggedBody),
		)
	case errors.Is(err, api.ErrInvalidCoordinate):
		p.logger.Debug("discarding position with invalid coordinate", "err", err)
	case errors.Is(err, api.ErrUpstreamFailure):
		p.logger.Warn("upstream reported failure", "err", err)
	case errors.Is(err, api.ErrMalformedResponse):
		p.logger.Warn("failed to parse upstream response", "err", err)
	default:
		p.logger.Warn("failed to fetch position", "err", err)
	}

	return model.Position{}, false
}

func (p *Poller) record(at time.Time, err error) {
	p.statsMu.Lock()
	defer p.statsMu.Unlock()

	p.stats.Attempts++
	p.stats.LastAttempt = at
	if err != nil {
		p.stats.Failures++
		p.stats.LastError = err.Error()
		return
	}
	p.stats.Successes++
	p.stats.LastSuccess = at
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}

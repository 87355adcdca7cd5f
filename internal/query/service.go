package query

import (
	"time"

	"github.com/rickgao/iss-tracker/internal/model"
	"github.com/rickgao/iss-tracker/internal/poller"
)

// Health states reported by Service.Health.
const (
	HealthStarting = "starting"
	HealthHealthy  = "healthy"
	HealthDegraded = "degraded"
)

// staleAfter is how many poll intervals may pass without a successful
// acquisition before the service reports itself degraded.
const staleAfter = 3

// History is the read side of the position ring.
type History interface {
	Snapshot() []model.Position
	Last(n int) []model.Position
	Latest() (model.Position, bool)
	Peek() (latest model.Position, count int, ok bool)
}

// AcquisitionStats reports how the acquisition loop is doing.
type AcquisitionStats interface {
	Stats() poller.Stats
}

// Config holds the immutable settings reported by Status.
type Config struct {
	MaxPositions int
	PollInterval time.Duration
}

// Service answers read queries against the position history.
type Service struct {
	history History
	cfg     Config
	acq     AcquisitionStats
}

// New creates a Service. acq may be nil, in which case Health reports
// only the history.
func New(history History, cfg Config, acq AcquisitionStats) *Service {
	return &Service{
		history: history,
		cfg:     cfg,
		acq:     acq,
	}
}

// PositionsResponse is the payload of GET /api/positions.
type PositionsResponse struct {
	Count      int              `json:"count" msgpack:"count"`
	LastUpdate *string          `json:"last_update" msgpack:"last_update"`
	Positions  []model.Position `json:"positions" msgpack:"positions"`
}

// LatestResponse is the payload of GET /api/latest.
type LatestResponse struct {
	LastUpdate *string         `json:"last_update" msgpack:"last_update"`
	Position   *model.Position `json:"position" msgpack:"position"`
}

// StatusResponse is the payload of GET /api/status.
type StatusResponse struct {
	PositionsStored int     `json:"positions_stored" msgpack:"positions_stored"`
	MaxPositions    int     `json:"max_positions" msgpack:"max_positions"`
	UpdateInterval  int64   `json:"update_interval" msgpack:"update_interval"` // seconds
	LastUpdate      *string `json:"last_update" msgpack:"last_update"`
}

// HealthResponse is the payload of GET /health.
type HealthResponse struct {
	Status          string  `json:"status" msgpack:"status"`
	PositionsStored int     `json:"positions_stored" msgpack:"positions_stored"`
	Attempts        int64   `json:"attempts" msgpack:"attempts"`
	Successes       int64   `json:"successes" msgpack:"successes"`
	Failures        int64   `json:"failures" msgpack:"failures"`
	LastAttempt     *string `json:"last_attempt" msgpack:"last_attempt"`
	LastSuccess     *string `json:"last_success" msgpack:"last_success"`
	LastError       string  `json:"last_error,omitempty" msgpack:"last_error,omitempty"`
}

// Positions returns the retained history, oldest first. A positive limit
// restricts the result to the newest limit positions.
func (s *Service) Positions(limit int) PositionsResponse {
	var positions []model.Position
	if limit > 0 {
		positions = s.history.Last(limit)
	} else {
		positions = s.history.Snapshot()
	}

	resp := PositionsResponse{
		Count:     len(positions),
		Positions: positions,
	}
	if n := len(positions); n > 0 {
		resp.LastUpdate = datetime(positions[n-1])
	}
	return resp
}

// Latest returns the newest position, if any.
func (s *Service) Latest() LatestResponse {
	p, ok := s.history.Latest()
	if !ok {
		return LatestResponse{}
	}
	return LatestResponse{
		LastUpdate: datetime(p),
		Position:   &p,
	}
}

// Status reports the history size against its configured limits.
func (s *Service) Status() StatusResponse {
	latest, count, ok := s.history.Peek()

	resp := StatusResponse{
		PositionsStored: count,
		MaxPositions:    s.cfg.MaxPositions,
		UpdateInterval:  int64(s.cfg.PollInterval / time.Second),
	}
	if ok {
		resp.LastUpdate = datetime(latest)
	}
	return resp
}

// Health reports whether acquisition is keeping the history fresh as of now.
func (s *Service) Health(now time.Time) HealthResponse {
	_, count, _ := s.history.Peek()
	resp := HealthResponse{
		Status:          HealthHealthy,
		PositionsStored: count,
	}
	if s.acq == nil {
		return resp
	}

	stats := s.acq.Stats()
	resp.Attempts = stats.Attempts
	resp.Successes = stats.Successes
	resp.Failures = stats.Failures
	resp.LastError = stats.LastError
	resp.LastAttempt = formatTime(stats.LastAttempt)
	resp.LastSuccess = formatTime(stats.LastSuccess)

	switch {
	case stats.Attempts == 0:
		resp.Status = HealthStarting
	case stats.LastSuccess.IsZero(),
		now.Sub(stats.LastSuccess) > staleAfter*s.cfg.PollInterval:
		resp.Status = HealthDegraded
	}
	return resp
}

func datetime(p model.Position) *string {
	s := p.Datetime
	return &s
}

func formatTime(t time.Time) *string {
	if t.IsZero() {
		return nil
	}
	s := model.FormatTime(t)
	return &s
}

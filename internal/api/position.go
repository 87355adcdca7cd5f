package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strconv"

	"github.com/rickgao/iss-tracker/internal/model"
)

// SuccessMessage is the literal marker of a successful upstream response.
const SuccessMessage = "success"

// Sentinel errors for classifying a failed fetch.
var (
	// ErrMalformedResponse means the body did not match the expected schema.
	ErrMalformedResponse = errors.New("malformed response")

	// ErrUpstreamFailure means the body decoded but message was not "success".
	ErrUpstreamFailure = errors.New("upstream reported failure")

	// ErrInvalidCoordinate means latitude or longitude is not a usable number.
	ErrInvalidCoordinate = errors.New("invalid coordinate")
)

// NowResponse is the raw upstream payload. Pointer fields distinguish a
// missing field from its zero value.
type NowResponse struct {
	Message   *string      `json:"message"`
	Timestamp *int64       `json:"timestamp"`
	Position  *RawPosition `json:"iss_position"`
}

// RawPosition holds coordinates as the decimal strings the upstream sends.
type RawPosition struct {
	Latitude  *string `json:"latitude"`
	Longitude *string `json:"longitude"`
}

// CurrentPosition fetches the current ISS position. The returned error wraps
// *APIError, ErrMalformedResponse, ErrUpstreamFailure or ErrInvalidCoordinate,
// or is a transport error.
func (c *Client) CurrentPosition(ctx context.Context) (model.Position, error) {
	body, err := c.doRequest(ctx)
	if err != nil {
		return model.Position{}, err
	}

	resp, err := DecodeNowResponse(body)
	if err != nil {
		return model.Position{}, err
	}

	return resp.ToPosition()
}

// DecodeNowResponse parses and schema-checks an upstream body.
func DecodeNowResponse(body []byte) (*NowResponse, error) {
	var resp NowResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedResponse, err)
	}

	switch {
	case resp.Message == nil:
		return nil, fmt.Errorf("%w: missing message", ErrMalformedResponse)
	case resp.Timestamp == nil:
		return nil, fmt.Errorf("%w: missing timestamp", ErrMalformedResponse)
	case resp.Position == nil:
		return nil, fmt.Errorf("%w: missing iss_position", ErrMalformedResponse)
	case resp.Position.Latitude == nil:
		return nil, fmt.Errorf("%w: missing iss_position.latitude", ErrMalformedResponse)
	case resp.Position.Longitude == nil:
		return nil, fmt.Errorf("%w: missing iss_position.longitude", ErrMalformedResponse)
	}

	return &resp, nil
}

// ToPosition validates the status marker and coordinates and builds a Position.
func (r *NowResponse) ToPosition() (model.Position, error) {
	if *r.Message != SuccessMessage {
		return model.Position{}, fmt.Errorf("%w: message %q", ErrUpstreamFailure, *r.Message)
	}

	lat, err := parseCoordinate(*r.Position.Latitude, 90)
	if err != nil {
		return model.Position{}, fmt.Errorf("latitude: %w", err)
	}
	lon, err := parseCoordinate(*r.Position.Longitude, 180)
	if err != nil {
		return model.Position{}, fmt.Errorf("longitude: %w", err)
	}

	return model.NewPosition(*r.Timestamp, lat, lon), nil
}

// parseCoordinate parses a decimal-degree string bounded by ±limit.
// NaN and infinities are rejected since they cannot be encoded as JSON.
func parseCoordinate(s string, limit float64) (float64, error) {
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: %q", ErrInvalidCoordinate, s)
	}
	if math.IsNaN(f) || math.Abs(f) > limit {
		return 0, fmt.Errorf("%w: %q out of range", ErrInvalidCoordinate, s)
	}
	return f, nil
}

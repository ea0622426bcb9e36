package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"safewalk-client/internal/geo"
)

// TransportError wraps any network or backend failure on a backend call.
type TransportError struct {
	Op     string
	Status int
	Err    error
}

func (e *TransportError) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("backend %s: status %d: %v", e.Op, e.Status, e.Err)
	}
	return fmt.Sprintf("backend %s: %v", e.Op, e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

// Client talks to the safety backend. All state lives server-side; the
// client is safe for concurrent use.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

func NewClient(baseURL string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: timeout},
	}
}

func (c *Client) do(ctx context.Context, op, method, path string, query url.Values, body, out any) error {
	endpoint := c.baseURL + path
	if len(query) > 0 {
		endpoint += "?" + query.Encode()
	}

	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return &TransportError{Op: op, Err: err}
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, reader)
	if err != nil {
		return &TransportError{Op: op, Err: err}
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("X-Request-ID", uuid.NewString())

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return &TransportError{Op: op, Err: err}
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return &TransportError{Op: op, Status: resp.StatusCode, Err: err}
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return &TransportError{Op: op, Status: resp.StatusCode, Err: fmt.Errorf("%s", strings.TrimSpace(string(raw)))}
	}
	if out == nil {
		return nil
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return &TransportError{Op: op, Status: resp.StatusCode, Err: err}
	}
	return nil
}

func (c *Client) PlanRoute(ctx context.Context, req PlanRequest) (PlanResponse, error) {
	var resp PlanResponse
	if err := c.do(ctx, "plan", http.MethodPost, "/api/routes/plan", nil, req, &resp); err != nil {
		return PlanResponse{}, err
	}
	if len(resp.Chosen.Geometry) < 2 {
		return PlanResponse{}, &TransportError{Op: "plan", Err: fmt.Errorf("chosen route has %d geometry points", len(resp.Chosen.Geometry))}
	}
	return resp, nil
}

func (c *Client) ScoreSegments(ctx context.Context, req ScoreRequest) (ScoreResponse, error) {
	var resp ScoreResponse
	err := c.do(ctx, "score", http.MethodPost, "/api/routes/score", nil, req, &resp)
	return resp, err
}

func (c *Client) ListTrips(ctx context.Context, userUID string) ([]Trip, error) {
	query := url.Values{"user_uid": {userUID}}
	var resp struct {
		Trips []Trip `json:"trips"`
	}
	if err := c.do(ctx, "trips", http.MethodGet, "/api/trips", query, nil, &resp); err != nil {
		return nil, err
	}
	return resp.Trips, nil
}

func (c *Client) TripSummary(ctx context.Context, userUID string) (TripSummary, error) {
	query := url.Values{"user_uid": {userUID}}
	var resp TripSummary
	err := c.do(ctx, "trip summary", http.MethodGet, "/api/trips/summary", query, nil, &resp)
	return resp, err
}

// CreateTrip returns the backend-assigned trip id, which may be empty if
// the backend declined to assign one; the caller decides what that means.
func (c *Client) CreateTrip(ctx context.Context, trip Trip) (string, error) {
	trip.ID = ""
	var resp struct {
		TripID string `json:"trip_id"`
	}
	if err := c.do(ctx, "create trip", http.MethodPost, "/api/trips", nil, trip, &resp); err != nil {
		return "", err
	}
	return resp.TripID, nil
}

func (c *Client) DeleteTrip(ctx context.Context, tripID string) error {
	return c.do(ctx, "delete trip", http.MethodDelete, "/api/trips/"+url.PathEscape(tripID), nil, nil, nil)
}

func (c *Client) Alerts(ctx context.Context, at geo.Point, timeOfDay TimeBucket) ([]Alert, error) {
	query := url.Values{
		"lat":         {strconv.FormatFloat(at.Lat, 'f', -1, 64)},
		"lon":         {strconv.FormatFloat(at.Lon, 'f', -1, 64)},
		"time_of_day": {string(timeOfDay)},
	}
	var resp struct {
		Alerts []Alert `json:"alerts"`
	}
	if err := c.do(ctx, "alerts", http.MethodGet, "/api/alerts", query, nil, &resp); err != nil {
		return nil, err
	}
	return resp.Alerts, nil
}

func (c *Client) RequestCompanion(ctx context.Context, req CompanionRequest) (string, error) {
	var resp struct {
		RequestID string `json:"request_id"`
	}
	if err := c.do(ctx, "companion request", http.MethodPost, "/api/companions/request", nil, req, &resp); err != nil {
		return "", err
	}
	return resp.RequestID, nil
}

func (c *Client) MatchCompanions(ctx context.Context, userUID string) ([]CompanionMatch, error) {
	query := url.Values{"user_uid": {userUID}}
	var matches []CompanionMatch
	if err := c.do(ctx, "companion match", http.MethodGet, "/api/companions/match", query, nil, &matches); err != nil {
		return nil, err
	}
	return matches, nil
}

func (c *Client) SubmitReport(ctx context.Context, report Report) (string, error) {
	var resp struct {
		ReportID string `json:"report_id"`
	}
	if err := c.do(ctx, "report", http.MethodPost, "/api/reports", nil, report, &resp); err != nil {
		return "", err
	}
	return resp.ReportID, nil
}

func (c *Client) TriggerSOS(ctx context.Context, req SOSRequest) (Ack, error) {
	var ack Ack
	err := c.do(ctx, "sos", http.MethodPost, "/api/sos/trigger", nil, req, &ack)
	return ack, err
}

func (c *Client) AutoSOSCheck(ctx context.Context, check AutoSOSCheck) (AutoSOSResult, error) {
	var resp AutoSOSResult
	err := c.do(ctx, "auto sos", http.MethodPost, "/api/sos/auto-check", nil, check, &resp)
	return resp, err
}

func (c *Client) ShareText(ctx context.Context, req ShareRequest) (string, error) {
	var resp struct {
		Text string `json:"text"`
	}
	if err := c.do(ctx, "share", http.MethodPost, "/api/location/share", nil, req, &resp); err != nil {
		return "", err
	}
	return resp.Text, nil
}

func (c *Client) NotifyGuardians(ctx context.Context, req GuardianNotify) (Ack, error) {
	var ack Ack
	err := c.do(ctx, "guardian notify", http.MethodPost, "/api/guardians/notify", nil, req, &ack)
	return ack, err
}

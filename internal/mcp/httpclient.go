package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/claude/liftlog/internal/models"
	"github.com/claude/liftlog/internal/report"
)

var errNotFound = errors.New("not found")

// HTTPClient implements DataSource by calling the LiftLog REST API. Used for
// remote MCP mode where the binary runs locally (stdio) but data lives on the
// server (reached over Tailscale).
type HTTPClient struct {
	baseURL    string
	httpClient *http.Client
}

var _ DataSource = (*HTTPClient)(nil)

func NewHTTPClient(baseURL string) *HTTPClient {
	return &HTTPClient{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: 30 * time.Second},
	}
}

func (c *HTTPClient) get(ctx context.Context, path string, params url.Values, dst any) error {
	u := c.baseURL + path
	if len(params) > 0 {
		u += "?" + params.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return fmt.Errorf("httpclient: create request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("httpclient: %s: %w", path, err)
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("httpclient: read body: %w", err)
	}

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return fmt.Errorf("httpclient: %s: %w", path, errNotFound)
	case resp.StatusCode != http.StatusOK:
		return fmt.Errorf("httpclient: %s returned %d: %s", path, resp.StatusCode, strings.TrimSpace(string(body)))
	}

	if err := json.Unmarshal(body, dst); err != nil {
		return fmt.Errorf("httpclient: decode %s: %w", path, err)
	}
	return nil
}

func weeksParam(weeksAhead int) url.Values {
	if weeksAhead <= 0 {
		return nil
	}
	return url.Values{"weeksAhead": {strconv.Itoa(weeksAhead)}}
}

func (c *HTTPClient) Overview(ctx context.Context) (*report.Overview, error) {
	var o report.Overview
	if err := c.get(ctx, "/api/v1/stats/overview", nil, &o); err != nil {
		return nil, err
	}
	return &o, nil
}

func (c *HTTPClient) Volume(ctx context.Context, weeksAhead int) (*report.VolumeReport, error) {
	var v report.VolumeReport
	if err := c.get(ctx, "/api/v1/stats/volume", weeksParam(weeksAhead), &v); err != nil {
		return nil, err
	}
	return &v, nil
}

func (c *HTTPClient) Exercise(ctx context.Context, exerciseID string, weeksAhead int) (*report.ExerciseReport, error) {
	var e report.ExerciseReport
	path := "/api/v1/stats/exercises/" + url.PathEscape(exerciseID)
	if err := c.get(ctx, path, weeksParam(weeksAhead), &e); err != nil {
		return nil, err
	}
	return &e, nil
}

func (c *HTTPClient) RecentSessions(ctx context.Context, limit int) ([]models.Session, error) {
	var params url.Values
	if limit > 0 {
		params = url.Values{"limit": {strconv.Itoa(limit)}}
	}
	var sessions []models.Session
	if err := c.get(ctx, "/api/v1/history", params, &sessions); err != nil {
		return nil, err
	}
	return sessions, nil
}

// CurrentWorkout returns nil without error when the server has no active session.
func (c *HTTPClient) CurrentWorkout(ctx context.Context) (*models.Session, error) {
	var s models.Session
	err := c.get(ctx, "/api/v1/session", nil, &s)
	if errors.Is(err, errNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &s, nil
}

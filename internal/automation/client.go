// Package automation is the HTTP client for an automation account's schedule API.
package automation

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

	"github.com/crucial707/automation-schedules/internal/models"
	"golang.org/x/time/rate"
)

const defaultTimeout = 30 * time.Second

// APIError is a non-2xx response from the automation API.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("status %d: %s", e.StatusCode, e.Message)
}

// Client talks to the automation API. Create calls are paced by a token bucket.
type Client struct {
	baseURL string
	token   string
	http    *http.Client
	creates *rate.Limiter
}

// Option configures a Client.
type Option func(*Client)

// WithCreateRate limits create calls to perSecond. Zero or less disables pacing.
func WithCreateRate(perSecond float64) Option {
	return func(c *Client) {
		if perSecond <= 0 {
			c.creates = rate.NewLimiter(rate.Inf, 1)
			return
		}
		c.creates = rate.NewLimiter(rate.Limit(perSecond), 1)
	}
}

// NewClient returns a client for baseURL. An empty token sends no Authorization header.
func NewClient(baseURL, token string, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		token:   token,
		http:    &http.Client{Timeout: defaultTimeout},
		creates: rate.NewLimiter(rate.Inf, 1),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// ListSchedules returns the account's schedules. hourInterval > 0 filters by interval.
func (c *Client) ListSchedules(ctx context.Context, account string, hourInterval int) ([]models.Schedule, error) {
	path := schedulesPath(account)
	if hourInterval > 0 {
		path += "?hour_interval=" + strconv.Itoa(hourInterval)
	}
	var out []models.Schedule
	if err := c.do(ctx, http.MethodGet, path, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// CreateSchedule creates s on s.Account and returns the stored schedule.
func (c *Client) CreateSchedule(ctx context.Context, s models.NewSchedule) (*models.Schedule, error) {
	if err := c.creates.Wait(ctx); err != nil {
		return nil, err
	}
	var out models.Schedule
	if err := c.do(ctx, http.MethodPost, schedulesPath(s.Account), s, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Ping checks the API health endpoint.
func (c *Client) Ping(ctx context.Context) error {
	return c.do(ctx, http.MethodGet, "/health", nil, nil)
}

func schedulesPath(account string) string {
	return "/accounts/" + url.PathEscape(account) + "/schedules"
}

func (c *Client) do(ctx context.Context, method, path string, payload, out interface{}) error {
	var body io.Reader
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return err
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return err
	}
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	data, _ := io.ReadAll(resp.Body)
	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		return &APIError{StatusCode: resp.StatusCode, Message: errorMessage(data)}
	}

	if out != nil {
		if err := json.Unmarshal(data, out); err != nil {
			return fmt.Errorf("decode %s %s: %w", method, path, err)
		}
	}
	return nil
}

// errorMessage prefers the {"error": "..."} body the API sends.
func errorMessage(body []byte) string {
	var e struct {
		Error string `json:"error"`
	}
	if json.Unmarshal(body, &e) == nil && e.Error != "" {
		return e.Error
	}
	return strings.TrimSpace(string(body))
}

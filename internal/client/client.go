// Package client talks to the task REST API. It does no caching: every call is a
// round trip and the caller decides what to do with the result.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"taskboard/internal/logger"
	"taskboard/internal/models"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	requestCount = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "taskboard_client_requests_total",
			Help: "Total number of task API requests issued by the client",
		},
		[]string{"op", "status"},
	)

	requestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "taskboard_client_request_duration_seconds",
			Help:    "Duration of task API requests in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"op"},
	)
)

// ErrMalformed is returned when a response body cannot be decoded.
var ErrMalformed = errors.New("malformed response body")

// StatusError is a non-2xx response from the API.
type StatusError struct {
	Op     string
	Status int
	Body   string
}

func (e *StatusError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("%s: unexpected status %d", e.Op, e.Status)
	}
	return fmt.Sprintf("%s: unexpected status %d: %s", e.Op, e.Status, e.Body)
}

type Client struct {
	baseURL string
	http    *http.Client
}

type Option func(*Client)

func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.http = hc }
}

func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.http.Timeout = d
		}
	}
}

// New returns a client for the collection at baseURL, e.g. http://host/api/tasks.
func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *Client) BaseURL() string {
	return c.baseURL
}

// List fetches the full task collection.
func (c *Client) List(ctx context.Context) ([]models.Task, error) {
	var tasks []models.Task
	if err := c.do(ctx, "list", http.MethodGet, c.baseURL, nil, &tasks); err != nil {
		return nil, err
	}
	if tasks == nil {
		return nil, fmt.Errorf("list: %w: expected an array of tasks", ErrMalformed)
	}
	return tasks, nil
}

// Create posts a new task. The created record is not returned: callers observe it
// through the next List.
func (c *Client) Create(ctx context.Context, req models.CreateTaskRequest) error {
	return c.do(ctx, "create", http.MethodPost, c.baseURL, req, nil)
}

// Update replaces the stored task with the full object.
func (c *Client) Update(ctx context.Context, task models.Task) error {
	return c.do(ctx, "update", http.MethodPut, c.taskURL(task.ID), task, nil)
}

func (c *Client) Delete(ctx context.Context, id int) error {
	return c.do(ctx, "delete", http.MethodDelete, c.taskURL(id), nil, nil)
}

func (c *Client) taskURL(id int) string {
	return c.baseURL + "/" + strconv.Itoa(id)
}

func (c *Client) do(ctx context.Context, op, method, url string, body, out any) (err error) {
	start := time.Now()
	defer func() {
		status := "success"
		if err != nil {
			status = "error"
		}
		requestCount.WithLabelValues(op, status).Inc()
		requestDuration.WithLabelValues(op).Observe(time.Since(start).Seconds())
	}()

	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("%s: encode body: %w", op, err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, url, reader)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")

	rid := uuid.NewString()
	req.Header.Set("X-Request-Id", rid)
	ctx = logger.WithRequestID(ctx, rid)

	logger.Debug(ctx, "task api request", "op", op, "method", method, "url", url)

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return &StatusError{Op: op, Status: resp.StatusCode, Body: strings.TrimSpace(string(msg))}
	}

	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("%s: %w: %v", op, ErrMalformed, err)
	}
	return nil
}

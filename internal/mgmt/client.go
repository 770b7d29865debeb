// Package mgmt is the client for a cluster's REST management API.
//
// Every read goes through a rate limiter and a circuit breaker so a
// dashboard hammering a dead cluster fails fast instead of queueing
// timeouts.
package mgmt

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/rileyhilliard/gridctl/internal/errors"
	"github.com/rileyhilliard/gridctl/internal/logger"
	"github.com/rileyhilliard/gridctl/internal/metrics"
	"github.com/sony/gobreaker"
	"golang.org/x/time/rate"
)

// Fetcher performs one logical read against the management API.
type Fetcher interface {
	Get(ctx context.Context, path string) ([]byte, error)
}

// Options configures a Client.
type Options struct {
	BaseURL         string
	HTTPClient      *http.Client
	RateLimit       float64 // requests per second
	Burst           int
	BreakerFailures uint32 // consecutive failures that open the breaker
	BreakerTimeout  time.Duration
	Logger          logger.Logger
	Metrics         *metrics.Metrics
}

// Client is the HTTP implementation of Fetcher.
type Client struct {
	base    string
	http    *http.Client
	cb      *gobreaker.CircuitBreaker
	limiter *rate.Limiter
	log     logger.Logger
	metrics *metrics.Metrics
}

// NewClient creates a management client rooted at opts.BaseURL.
func NewClient(opts Options) (*Client, error) {
	if opts.BaseURL == "" {
		return nil, errors.New(errors.ErrConfig,
			"No management URL configured",
			"Pass --url or set 'url' for the cluster in config")
	}
	if opts.HTTPClient == nil {
		opts.HTTPClient = &http.Client{}
	}
	if opts.RateLimit <= 0 {
		opts.RateLimit = 20
	}
	if opts.Burst <= 0 {
		opts.Burst = 10
	}
	if opts.BreakerFailures == 0 {
		opts.BreakerFailures = 5
	}
	if opts.BreakerTimeout <= 0 {
		opts.BreakerTimeout = 30 * time.Second
	}
	if opts.Logger == nil {
		opts.Logger = logger.Noop()
	}

	log := opts.Logger
	failures := opts.BreakerFailures
	cb := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        "mgmt",
		MaxRequests: 1,
		Timeout:     opts.BreakerTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= failures
		},
		IsSuccessful: breakerSuccess,
		OnStateChange: func(name string, from, to gobreaker.State) {
			log.Warn("mgmt: circuit %s %s -> %s", name, from, to)
		},
	})

	return &Client{
		base:    strings.TrimRight(opts.BaseURL, "/"),
		http:    opts.HTTPClient,
		cb:      cb,
		limiter: rate.NewLimiter(rate.Limit(opts.RateLimit), opts.Burst),
		log:     log,
		metrics: opts.Metrics,
	}, nil
}

// BaseURL returns the management root the client reads from.
func (c *Client) BaseURL() string {
	return c.base
}

// Get reads base+path. Non-2xx responses and transport failures are FETCH errors.
func (c *Client) Get(ctx context.Context, path string) ([]byte, error) {
	url := c.base
	if p := strings.TrimLeft(path, "/"); p != "" {
		url += "/" + p
	}

	if err := c.limiter.Wait(ctx); err != nil {
		c.metrics.ObserveMgmtRequest("rejected")
		return nil, errors.WrapWithCode(err, errors.ErrFetch,
			"Request to "+url+" was not sent",
			"The refresh was cancelled or timed out waiting for its turn")
	}

	body, err := c.cb.Execute(func() (interface{}, error) {
		return c.do(ctx, url)
	})
	if err != nil {
		if err == gobreaker.ErrOpenState || err == gobreaker.ErrTooManyRequests {
			c.metrics.ObserveMgmtRequest("rejected")
			return nil, errors.WrapWithCode(err, errors.ErrFetch,
				"Management API is failing; requests paused",
				"The cluster stopped answering; gridctl will retry shortly")
		}
		c.metrics.ObserveMgmtRequest("error")
		return nil, err
	}
	c.metrics.ObserveMgmtRequest("ok")
	return body.([]byte), nil
}

func (c *Client) do(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, errors.WrapWithCode(err, errors.ErrFetch, "Invalid request to "+url, "")
	}
	req.Header.Set("Accept", "application/json")

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, errors.WrapWithCode(err, errors.ErrFetch,
			"Cannot reach "+url,
			"Check the management URL and that the cluster is running")
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, errors.WrapWithCode(err, errors.ErrFetch, "Failed reading response from "+url, "")
	}
	c.log.Debug("mgmt: GET %s -> %d (%d bytes) in %s", url, resp.StatusCode, len(body), time.Since(start))

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		suggestion := "Check the resource exists (cache, service or topic names are case-sensitive)"
		if resp.StatusCode >= 500 {
			suggestion = "The management server reported an error; check the cluster logs"
		}
		return nil, errors.WrapWithCode(&StatusError{Code: resp.StatusCode}, errors.ErrFetch,
			fmt.Sprintf("GET %s returned %d %s", url, resp.StatusCode, http.StatusText(resp.StatusCode)),
			suggestion)
	}
	return body, nil
}

// StatusError is a non-2xx response from the management API.
type StatusError struct {
	Code int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("HTTP %d", e.Code)
}

// breakerSuccess counts only transport failures, timeouts and 5xx responses
// against the cluster. 4xx answers and cancelled requests leave it alone.
func breakerSuccess(err error) bool {
	if err == nil || stderrors.Is(err, context.Canceled) {
		return true
	}
	var se *StatusError
	if stderrors.As(err, &se) {
		return se.Code < 500
	}
	return false
}

// Item is one element of a collection resource.
type Item map[string]interface{}

// GetItems reads a collection resource and returns its "items" array.
func GetItems(ctx context.Context, f Fetcher, path string) ([]Item, error) {
	body, err := f.Get(ctx, path)
	if err != nil {
		return nil, err
	}
	var envelope struct {
		Items []Item `json:"items"`
	}
	if err := json.Unmarshal(body, &envelope); err != nil {
		return nil, errors.WrapWithCode(err, errors.ErrFetch,
			"Unexpected response from "+path,
			"The endpoint did not return a JSON collection")
	}
	return envelope.Items, nil
}

// GetObject reads a single resource.
func GetObject(ctx context.Context, f Fetcher, path string) (Item, error) {
	body, err := f.Get(ctx, path)
	if err != nil {
		return nil, err
	}
	var obj Item
	if err := json.Unmarshal(body, &obj); err != nil {
		return nil, errors.WrapWithCode(err, errors.ErrFetch,
			"Unexpected response from "+path,
			"The endpoint did not return a JSON object")
	}
	return obj, nil
}

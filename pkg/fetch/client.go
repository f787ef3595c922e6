package fetch

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"sort"
	"strings"
	"time"

	"github.com/sony/gobreaker"

	"github.com/getmockd/recordsd/pkg/logging"
	"github.com/getmockd/recordsd/pkg/records"
)

// maxResponseSize bounds the size of a decoded collection response.
const maxResponseSize = 8 << 20

// Fetcher retrieves the records of a collection that match a filter.
type Fetcher interface {
	Fetch(ctx context.Context, collection string, filter records.Filter) ([]records.Record, error)
}

// FetcherFunc adapts a function to the Fetcher interface.
type FetcherFunc func(ctx context.Context, collection string, filter records.Filter) ([]records.Record, error)

// Fetch calls f.
func (f FetcherFunc) Fetch(ctx context.Context, collection string, filter records.Filter) ([]records.Record, error) {
	return f(ctx, collection, filter)
}

// BreakerConfig holds circuit breaker settings applied per endpoint.
type BreakerConfig struct {
	// MaxRequests allowed through while half-open.
	MaxRequests uint32
	// Interval after which closed-state counts are cleared.
	Interval time.Duration
	// Timeout spent open before probing again.
	Timeout time.Duration
	// FailureThreshold is the failure ratio that opens the breaker.
	FailureThreshold float64
	// MinRequests before the failure ratio is evaluated.
	MinRequests uint32
}

// DefaultBreakerConfig returns the breaker settings used when none are given.
func DefaultBreakerConfig() BreakerConfig {
	return BreakerConfig{
		MaxRequests:      1,
		Interval:         30 * time.Second,
		Timeout:          10 * time.Second,
		FailureThreshold: 0.6,
		MinRequests:      3,
	}
}

// Client fetches collections over HTTP from configured endpoints.
type Client struct {
	endpoints  map[string]*url.URL
	httpClient *http.Client
	breaker    BreakerConfig
	breakers   map[string]*gobreaker.CircuitBreaker
	observer   Observer
	log        *slog.Logger
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient sets the underlying HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.httpClient = hc
		}
	}
}

// WithTimeout sets the per-request timeout of the default HTTP client.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.httpClient = &http.Client{Timeout: d}
		}
	}
}

// WithBreaker sets the circuit breaker settings.
func WithBreaker(cfg BreakerConfig) Option {
	return func(c *Client) {
		c.breaker = cfg
	}
}

// WithObserver sets the fetch observer.
func WithObserver(o Observer) Option {
	return func(c *Client) {
		if o != nil {
			c.observer = o
		}
	}
}

// WithLogger sets the operational logger.
func WithLogger(log *slog.Logger) Option {
	return func(c *Client) {
		if log != nil {
			c.log = log
		}
	}
}

// NewClient creates a client for the given collection endpoints.
// Every endpoint must be an absolute http(s) URL.
func NewClient(endpoints map[string]string, opts ...Option) (*Client, error) {
	c := &Client{
		endpoints:  make(map[string]*url.URL, len(endpoints)),
		httpClient: &http.Client{Timeout: 5 * time.Second},
		breaker:    DefaultBreakerConfig(),
		breakers:   make(map[string]*gobreaker.CircuitBreaker, len(endpoints)),
		observer:   NoopObserver{},
		log:        logging.Nop(),
	}
	for _, opt := range opts {
		opt(c)
	}

	for name, raw := range endpoints {
		u, err := url.Parse(raw)
		if err != nil {
			return nil, fmt.Errorf("collection %q: invalid endpoint: %w", name, err)
		}
		if (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
			return nil, fmt.Errorf("collection %q: endpoint %q must be an absolute http(s) URL", name, raw)
		}
		c.endpoints[name] = u
		c.breakers[name] = c.newBreaker(name)
	}

	return c, nil
}

func (c *Client) newBreaker(name string) *gobreaker.CircuitBreaker {
	cfg := c.breaker
	return gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        name,
		MaxRequests: cfg.MaxRequests,
		Interval:    cfg.Interval,
		Timeout:     cfg.Timeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			if counts.Requests < cfg.MinRequests {
				return false
			}
			return float64(counts.TotalFailures)/float64(counts.Requests) >= cfg.FailureThreshold
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			c.log.Warn("fetch circuit breaker state changed", "collection", name, "from", from.String(), "to", to.String())
			c.observer.OnBreakerStateChange(name, from.String(), to.String())
		},
		IsSuccessful: func(err error) bool {
			return !countsAsFailure(err)
		},
	})
}

// Collections returns the configured collection names in sorted order.
func (c *Client) Collections() []string {
	names := make([]string, 0, len(c.endpoints))
	for name := range c.endpoints {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// URL returns the request URL for a collection query. Filter parameters are
// appended to any query already present in the endpoint.
func (c *Client) URL(collection string, filter records.Filter) (string, error) {
	base, ok := c.endpoints[collection]
	if !ok {
		return "", fmt.Errorf("%w: %s", ErrUnknownCollection, collection)
	}

	u := *base
	if len(filter) > 0 {
		q := filter.Encode()
		if u.RawQuery != "" {
			q = u.RawQuery + "&" + q
		}
		u.RawQuery = q
	}
	return u.String(), nil
}

// BreakerState returns the circuit breaker state for a collection.
func (c *Client) BreakerState(collection string) (gobreaker.State, bool) {
	cb, ok := c.breakers[collection]
	if !ok {
		return gobreaker.StateClosed, false
	}
	return cb.State(), true
}

// Fetch requests the collection and decodes the JSON array response.
func (c *Client) Fetch(ctx context.Context, collection string, filter records.Filter) ([]records.Record, error) {
	target, err := c.URL(collection, filter)
	if err != nil {
		return nil, err
	}

	result, err := c.breakers[collection].Execute(func() (any, error) {
		start := time.Now()
		recs, err := c.get(ctx, target)
		c.observer.OnFetch(collection, time.Since(start), err)
		return recs, err
	})
	if err != nil {
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			return nil, fmt.Errorf("%w: %s: %v", ErrCircuitOpen, collection, err)
		}
		return nil, err
	}

	recs, _ := result.([]records.Record)
	c.log.Debug("collection fetched", "collection", collection, "url", target, "count", len(recs))
	return recs, nil
}

func (c *Client) get(ctx context.Context, target string) ([]records.Record, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("GET %s: %w", target, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))
		return nil, &StatusError{URL: target, StatusCode: resp.StatusCode}
	}

	if ct := resp.Header.Get("Content-Type"); ct != "" && !strings.Contains(ct, "json") {
		return nil, fmt.Errorf("%w: content type %q", ErrDecode, ct)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
	if err != nil {
		return nil, fmt.Errorf("GET %s: reading body: %w", target, err)
	}

	var recs []records.Record
	if err := json.Unmarshal(body, &recs); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDecode, err)
	}
	if recs == nil {
		recs = []records.Record{}
	}
	return recs, nil
}

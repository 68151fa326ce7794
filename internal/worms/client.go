package worms

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
)

const (
	defaultBaseURL        = "https://www.marinespecies.org/rest"
	defaultHTTPTimeout    = 15 * time.Second
	defaultRetryMaxDelay  = 10 * time.Second
	defaultRetryBaseDelay = 1 * time.Second
	defaultRetryAttempts  = 3
)

// Config captures the runtime settings required to talk to WoRMS.
type Config struct {
	BaseURL        string
	TimeoutSeconds int
}

// Client wraps the WoRMS REST API. A single external query is issued per
// call; retries apply only to transient failures.
type Client struct {
	cfg        Config
	httpClient *http.Client

	retryMaxAttempts int
	retryBaseDelay   time.Duration
	retryMaxDelay    time.Duration
	sleeper          func(time.Duration)
}

// Option customizes the client.
type Option func(*Client)

// WithHTTPClient overrides the default HTTP client.
func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) {
		if client != nil {
			c.httpClient = client
		}
	}
}

// WithRetryMaxAttempts overrides the default retry count (defaults to 3).
func WithRetryMaxAttempts(attempts int) Option {
	return func(c *Client) {
		c.retryMaxAttempts = attempts
	}
}

// WithRetryBackoff overrides the retry backoff delays.
func WithRetryBackoff(baseDelay, maxDelay time.Duration) Option {
	return func(c *Client) {
		c.retryBaseDelay = baseDelay
		c.retryMaxDelay = maxDelay
	}
}

// WithSleeper overrides how retry sleeps are performed (useful for tests).
func WithSleeper(sleeper func(time.Duration)) Option {
	return func(c *Client) {
		c.sleeper = sleeper
	}
}

// NewClient constructs a WoRMS client using the supplied configuration.
func NewClient(cfg Config, opts ...Option) *Client {
	timeout := defaultHTTPTimeout
	if cfg.TimeoutSeconds > 0 {
		timeout = time.Duration(cfg.TimeoutSeconds) * time.Second
	}
	client := &Client{
		cfg: Config{
			BaseURL:        strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/"),
			TimeoutSeconds: cfg.TimeoutSeconds,
		},
		httpClient:       &http.Client{Timeout: timeout},
		retryMaxAttempts: defaultRetryAttempts,
		retryBaseDelay:   defaultRetryBaseDelay,
		retryMaxDelay:    defaultRetryMaxDelay,
	}
	for _, opt := range opts {
		opt(client)
	}
	if client.cfg.BaseURL == "" {
		client.cfg.BaseURL = defaultBaseURL
	}
	if client.httpClient == nil {
		client.httpClient = &http.Client{Timeout: defaultHTTPTimeout}
	}
	return client
}

// AphiaRecordByID fetches the taxon record for an AphiaID. Unknown ids yield
// ErrNotFound; exhausted transient failures yield ErrUnavailable.
func (c *Client) AphiaRecordByID(ctx context.Context, aphiaID int64) (*AphiaRecord, error) {
	if aphiaID <= 0 {
		return nil, fmt.Errorf("%w: aphia id %d", ErrNotFound, aphiaID)
	}
	endpoint := c.cfg.BaseURL + "/AphiaRecordByAphiaID/" + strconv.FormatInt(aphiaID, 10)

	body, err := c.getWithRetry(ctx, endpoint, "aphia record by id")
	if err != nil {
		return nil, err
	}
	if body == nil {
		return nil, fmt.Errorf("%w: aphia id %d", ErrNotFound, aphiaID)
	}

	var rec AphiaRecord
	if err := json.Unmarshal(body, &rec); err != nil {
		return nil, fmt.Errorf("decode aphia record: %w", err)
	}
	return &rec, nil
}

// AphiaRecordsByMatchNames performs fuzzy name matching for a single name and
// returns the ranked candidates, best first. An empty result is not an error.
func (c *Client) AphiaRecordsByMatchNames(ctx context.Context, name string) ([]AphiaRecord, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, errors.New("name must not be empty")
	}
	endpoint, err := url.Parse(c.cfg.BaseURL + "/AphiaRecordsByMatchNames")
	if err != nil {
		return nil, fmt.Errorf("parse worms url: %w", err)
	}
	params := url.Values{}
	params.Set("scientificnames[]", name)
	params.Set("marine_only", "false")
	endpoint.RawQuery = params.Encode()

	body, err := c.getWithRetry(ctx, endpoint.String(), "aphia records by match names")
	if err != nil {
		return nil, err
	}
	if body == nil {
		return nil, nil
	}

	// The endpoint returns one candidate list per submitted name.
	var batches [][]AphiaRecord
	if err := json.Unmarshal(body, &batches); err != nil {
		return nil, fmt.Errorf("decode match names response: %w", err)
	}
	if len(batches) == 0 {
		return nil, nil
	}
	return batches[0], nil
}

// getWithRetry issues a GET and retries transient failures with exponential
// backoff. A 204 or 404 response returns (nil, nil): no content, permanent.
// A transient failure that survives the whole attempt budget is wrapped in
// ErrUnavailable; non-transient failures surface immediately unwrapped.
func (c *Client) getWithRetry(ctx context.Context, endpoint, op string) ([]byte, error) {
	attempts := c.retryAttempts()
	var lastErr error

	for attempt := 1; attempt <= attempts; attempt++ {
		body, found, err := c.getOnce(ctx, endpoint)
		if err == nil {
			if !found {
				return nil, nil
			}
			return body, nil
		}

		delay, transient := c.retryDelay(ctx, err, attempt)
		if !transient {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		lastErr = err
		if attempt == attempts {
			break
		}
		if sleepErr := c.sleep(ctx, delay); sleepErr != nil {
			return nil, fmt.Errorf("%s: %w", op, sleepErr)
		}
	}

	return nil, fmt.Errorf("%w: %s: failed after %d attempts: %v", ErrUnavailable, op, attempts, lastErr)
}

func (c *Client) getOnce(ctx context.Context, endpoint string) ([]byte, bool, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, false, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, false, fmt.Errorf("execute request (timeout=%s): %w", c.timeoutDuration(), err)
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK:
	case http.StatusNoContent, http.StatusNotFound:
		return nil, false, nil
	default:
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		retryAfter := parseRetryAfter(resp.Header.Get("Retry-After"))
		return nil, false, &httpStatusError{
			StatusCode: resp.StatusCode,
			Body:       strings.TrimSpace(string(body)),
			RetryAfter: retryAfter,
		}
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, false, fmt.Errorf("read body: %w", err)
	}
	return body, true, nil
}

func (c *Client) timeoutDuration() time.Duration {
	if c == nil || c.httpClient == nil || c.httpClient.Timeout <= 0 {
		return defaultHTTPTimeout
	}
	return c.httpClient.Timeout
}

func (c *Client) retryAttempts() int {
	if c == nil || c.retryMaxAttempts <= 0 {
		return 1
	}
	return c.retryMaxAttempts
}

// retryDelay reports whether err is transient and, if so, how long to wait
// before the next attempt. Budget exhaustion is the caller's concern.
func (c *Client) retryDelay(ctx context.Context, err error, attempt int) (time.Duration, bool) {
	if err == nil {
		return 0, false
	}
	if ctx != nil && ctx.Err() != nil {
		return 0, false
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return 0, false
	}

	var statusErr *httpStatusError
	if errors.As(err, &statusErr) {
		switch {
		case statusErr.StatusCode == http.StatusRequestTimeout,
			statusErr.StatusCode == http.StatusTooManyRequests,
			statusErr.StatusCode >= http.StatusInternalServerError:
			if statusErr.RetryAfter > 0 {
				return c.capDelay(statusErr.RetryAfter), true
			}
			return c.backoffDelay(attempt), true
		default:
			return 0, false
		}
	}

	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return c.backoffDelay(attempt), true
	}

	var urlErr *url.Error
	if errors.As(err, &urlErr) {
		// Connection resets and refusals wrapped by the transport are worth a
		// conservative retry as long as the context is still live.
		return c.backoffDelay(attempt), true
	}

	return 0, false
}

func (c *Client) backoffDelay(attempt int) time.Duration {
	base := defaultRetryBaseDelay
	maxDelay := defaultRetryMaxDelay
	if c != nil {
		if c.retryBaseDelay >= 0 {
			base = c.retryBaseDelay
		}
		if c.retryMaxDelay > 0 {
			maxDelay = c.retryMaxDelay
		}
	}
	delay := base
	for i := 1; i < attempt; i++ {
		delay *= 2
		if delay >= maxDelay {
			return maxDelay
		}
	}
	if delay > maxDelay {
		return maxDelay
	}
	return delay
}

func (c *Client) capDelay(delay time.Duration) time.Duration {
	maxDelay := defaultRetryMaxDelay
	if c != nil && c.retryMaxDelay > 0 {
		maxDelay = c.retryMaxDelay
	}
	if delay > maxDelay {
		return maxDelay
	}
	return delay
}

func (c *Client) sleep(ctx context.Context, delay time.Duration) error {
	if delay <= 0 {
		return nil
	}
	if c != nil && c.sleeper != nil {
		c.sleeper(delay)
		return nil
	}
	timer := time.NewTimer(delay)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

func parseRetryAfter(header string) time.Duration {
	header = strings.TrimSpace(header)
	if header == "" {
		return 0
	}
	if seconds, err := strconv.Atoi(header); err == nil && seconds > 0 {
		return time.Duration(seconds) * time.Second
	}
	if when, err := http.ParseTime(header); err == nil {
		if delay := time.Until(when); delay > 0 {
			return delay
		}
	}
	return 0
}

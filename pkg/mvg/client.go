package mvg

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/rs/zerolog/log"
	"github.com/travigo/mvg-departures/pkg/util"
)

const DefaultBaseURL = "https://www.mvg.de/api/fib/v2"

const userAgent = "mvg-departures/1.0 (+https://github.com/travigo/mvg-departures)"

var ErrUnexpectedStatus = errors.New("unexpected status code")

// Client talks to the MVG fib v2 API.
// Every request is bounded by the http client timeout and retried a few times on transient failures.
type Client struct {
	baseURL    string
	httpClient *http.Client

	maxRetries    uint64
	retryInterval time.Duration

	now func() time.Time
}

type Option func(*Client)

func WithHTTPClient(httpClient *http.Client) Option {
	return func(c *Client) {
		c.httpClient = httpClient
	}
}

func WithMaxRetries(maxRetries uint64) Option {
	return func(c *Client) {
		c.maxRetries = maxRetries
	}
}

func WithRetryInterval(interval time.Duration) Option {
	return func(c *Client) {
		c.retryInterval = interval
	}
}

func WithClock(now func() time.Time) Option {
	return func(c *Client) {
		c.now = now
	}
}

func NewClient(baseURL string, opts ...Option) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}

	c := &Client{
		baseURL:       baseURL,
		httpClient:    &http.Client{Timeout: 30 * time.Second},
		maxRetries:    3,
		retryInterval: 500 * time.Millisecond,
		now:           time.Now,
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

// NewClientFromEnvironment uses MVG_API_URL as the base url when it is set
func NewClientFromEnvironment(opts ...Option) *Client {
	env := util.GetEnvironmentVariables()

	return NewClient(env["MVG_API_URL"], opts...)
}

func (c *Client) getJSON(ctx context.Context, path string, query url.Values, target any) error {
	requestURL := fmt.Sprintf("%s/%s?%s", c.baseURL, path, query.Encode())

	exponentialBackOff := backoff.NewExponentialBackOff()
	exponentialBackOff.InitialInterval = c.retryInterval
	retryPolicy := backoff.WithContext(backoff.WithMaxRetries(exponentialBackOff, c.maxRetries), ctx)

	body, err := backoff.RetryNotifyWithData(func() ([]byte, error) {
		return c.get(ctx, requestURL)
	}, retryPolicy, func(err error, wait time.Duration) {
		log.Warn().Err(err).Str("path", path).Dur("wait", wait).Msg("MVG API request failed, retrying")
	})
	if err != nil {
		return fmt.Errorf("failed to fetch %s: %w", path, err)
	}

	if err := json.Unmarshal(body, target); err != nil {
		return fmt.Errorf("failed to decode %s JSON: %w", path, err)
	}

	return nil
}

func (c *Client) get(ctx context.Context, requestURL string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, requestURL, nil)
	if err != nil {
		return nil, backoff.Permanent(err)
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return nil, backoff.Permanent(err)
		}
		return nil, err
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusBadGateway,
		resp.StatusCode == http.StatusServiceUnavailable,
		resp.StatusCode == http.StatusGatewayTimeout:
		return nil, fmt.Errorf("%w: %d", ErrUnexpectedStatus, resp.StatusCode)
	case resp.StatusCode != http.StatusOK:
		return nil, backoff.Permanent(fmt.Errorf("%w: %d", ErrUnexpectedStatus, resp.StatusCode))
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}

	return body, nil
}

// Package fetch provides the resilient HTTP client used for article and
// image retrieval. Transport failures and throttling responses are retried
// with exponential backoff; other client errors fail immediately.
package fetch

import (
	"compress/gzip"
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v5"

	"clipcast/internal/config"
	"clipcast/internal/logging"
	"clipcast/internal/services"
)

// Result carries the response body and the metadata callers inspect.
type Result struct {
	Body        []byte
	StatusCode  int
	ContentType string
}

// Options adjusts a single request without reconfiguring the client.
type Options struct {
	// MaxAttempts overrides the client-wide attempt budget when > 0.
	MaxAttempts int
	// Backoff overrides the base delay between attempts when > 0.
	Backoff time.Duration
	// Accept sets the Accept header when non-empty.
	Accept string
}

// Client performs HTTP GETs with retry and backoff.
type Client struct {
	httpClient  *http.Client
	maxAttempts int
	backoff     time.Duration
	userAgent   string
	logger      *slog.Logger
}

// maxRedirects bounds redirect chains; scraped sites occasionally loop.
const maxRedirects = 10

// NewClient builds a fetch client from configuration.
func NewClient(cfg *config.Config, logger *slog.Logger) *Client {
	httpClient := &http.Client{
		Timeout: cfg.FetchTimeout(),
		CheckRedirect: func(req *http.Request, via []*http.Request) error {
			if len(via) >= maxRedirects {
				return fmt.Errorf("stopped after %d redirects", maxRedirects)
			}
			return nil
		},
	}
	return &Client{
		httpClient:  httpClient,
		maxAttempts: cfg.Fetch.MaxAttempts,
		backoff:     cfg.FetchBackoff(),
		userAgent:   cfg.Fetch.UserAgent,
		logger:      logging.NewComponentLogger(logger, "fetch"),
	}
}

// NewClientWithHTTP is intended for tests that need a custom transport.
func NewClientWithHTTP(httpClient *http.Client, maxAttempts int, base time.Duration, logger *slog.Logger) *Client {
	return &Client{
		httpClient:  httpClient,
		maxAttempts: maxAttempts,
		backoff:     base,
		userAgent:   defaultTestUserAgent,
		logger:      logging.NewComponentLogger(logger, "fetch"),
	}
}

const defaultTestUserAgent = "clipcast/test"

// IsRetryableStatus reports whether an HTTP status should be retried.
// Throttling and any server-side failure are retryable; other client errors
// indicate the request itself is wrong and retrying cannot help.
func IsRetryableStatus(status int) bool {
	return status == http.StatusTooManyRequests || (status >= 500 && status < 600)
}

// Get retrieves url, retrying transport errors and retryable statuses with
// exponential backoff. The final non-retryable or exhausted error is wrapped
// as a transient service failure.
func (c *Client) Get(ctx context.Context, url string, opts Options) (Result, error) {
	attempts := c.maxAttempts
	if opts.MaxAttempts > 0 {
		attempts = opts.MaxAttempts
	}
	base := c.backoff
	if opts.Backoff > 0 {
		base = opts.Backoff
	}

	attempt := 0
	operation := func() (Result, error) {
		attempt++
		result, err := c.getOnce(ctx, url, opts.Accept)
		if err != nil {
			c.logger.Debug("request failed",
				logging.Args(
					logging.String(logging.FieldURL, url),
					logging.Int(logging.FieldAttempt, attempt),
					logging.Error(err),
				)...)
			return Result{}, err
		}
		if result.StatusCode >= 400 {
			statusErr := fmt.Errorf("unexpected status %d", result.StatusCode)
			if !IsRetryableStatus(result.StatusCode) {
				return Result{}, backoff.Permanent(statusErr)
			}
			c.logger.Debug("retryable status",
				logging.Args(
					logging.String(logging.FieldURL, url),
					logging.Int("status", result.StatusCode),
					logging.Int(logging.FieldAttempt, attempt),
				)...)
			return Result{}, statusErr
		}
		return result, nil
	}

	policy := backoff.NewExponentialBackOff()
	policy.InitialInterval = base
	policy.Multiplier = 2
	policy.RandomizationFactor = 0
	policy.MaxInterval = base * 16

	result, err := backoff.Retry(ctx, operation,
		backoff.WithBackOff(policy),
		backoff.WithMaxTries(uint(attempts)),
	)
	if err != nil {
		return Result{}, services.Wrap(services.ErrTransient, "fetch", "get", url, err)
	}
	return result, nil
}

func (c *Client) getOnce(ctx context.Context, url, accept string) (Result, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return Result{}, backoff.Permanent(fmt.Errorf("build request: %w", err))
	}
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("Accept-Encoding", "gzip")
	if accept != "" {
		req.Header.Set("Accept", accept)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return Result{}, err
	}
	defer resp.Body.Close()

	body, err := readResponseBody(resp)
	if err != nil {
		return Result{}, fmt.Errorf("read body: %w", err)
	}

	return Result{
		Body:        body,
		StatusCode:  resp.StatusCode,
		ContentType: resp.Header.Get("Content-Type"),
	}, nil
}

func readResponseBody(resp *http.Response) ([]byte, error) {
	reader := resp.Body
	if strings.Contains(resp.Header.Get("Content-Encoding"), "gzip") {
		gz, err := gzip.NewReader(resp.Body)
		if err != nil {
			return nil, fmt.Errorf("gzip reader: %w", err)
		}
		defer gz.Close()
		reader = gz
	}
	return io.ReadAll(reader)
}

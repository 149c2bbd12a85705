// Package github provides the GitHub REST, GraphQL and trending transports
package github

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"sync/atomic"
	"time"

	"swifthub/internal/core/auth"
	perr "swifthub/internal/platform/errors"
	"swifthub/internal/platform/logger"

	"golang.org/x/time/rate"
)

const (
	baseURLDefault   = "https://api.github.com"
	defaultTimeout   = 10 * time.Second
	defaultUA        = "swifthub"
	defaultMaxRetry  = 3
	defaultRetryBase = 500 * time.Millisecond
	defaultRateWait  = 5 * time.Second
	maxBodyBytes     = 1 << 20
	maxErrorBytes    = 64 << 10
	apiVersion       = "2022-11-28"
)

// Options configures the Client
type Options struct {
	BaseURL   string
	UserAgent string
	Timeout   time.Duration

	// Credential is sent as the Authorization header. None means anonymous
	Credential auth.Credential

	// Retry config for transient and rate limited responses. 0 disables retries
	MaxRetries int
	RetryBase  time.Duration

	// MaxRateWait bounds the sleep before retrying a rate limited call. A
	// longer window fails fast with the rate limit StatusError
	MaxRateWait time.Duration

	// Client side pacing. RatePerSec <= 0 disables it
	RatePerSec float64
	Burst      int

	// Transport replaces the default round tripper, e.g. the staging stub
	Transport http.RoundTripper
}

// RateStatus is the last rate limit window GitHub reported
type RateStatus struct {
	Remaining int
	Reset     time.Time
}

// Client is a small GitHub client with retries, pacing and rate limit handling
type Client struct {
	http    *http.Client
	opts    Options
	limiter *rate.Limiter
	rate    atomic.Pointer[RateStatus]
	log     logger.Logger
	now     func() time.Time
	sleep   func(context.Context, time.Duration) error
}

// NewClient creates a new Client with sane defaults
func NewClient(o Options) *Client {
	if o.BaseURL == "" {
		o.BaseURL = baseURLDefault
	}
	if o.UserAgent == "" {
		o.UserAgent = defaultUA
	}
	if o.Timeout <= 0 {
		o.Timeout = defaultTimeout
	}
	if o.MaxRetries < 0 {
		o.MaxRetries = 0
	}
	if o.RetryBase <= 0 {
		o.RetryBase = defaultRetryBase
	}
	if o.MaxRateWait <= 0 {
		o.MaxRateWait = defaultRateWait
	}
	var lim *rate.Limiter
	if o.RatePerSec > 0 {
		burst := o.Burst
		if burst <= 0 {
			burst = 1
		}
		lim = rate.NewLimiter(rate.Limit(o.RatePerSec), burst)
	}
	return &Client{
		http:    &http.Client{Timeout: o.Timeout, Transport: o.Transport},
		opts:    o,
		limiter: lim,
		log:     *logger.Named("github"),
		now:     time.Now,
		sleep:   sleepCtx,
	}
}

// BaseURL returns the configured API root
func (c *Client) BaseURL() string { return c.opts.BaseURL }

// Credential returns the credential requests are signed with
func (c *Client) Credential() auth.Credential { return c.opts.Credential }

// Rate returns the last observed rate limit window, zero before the first response
func (c *Client) Rate() RateStatus {
	if p := c.rate.Load(); p != nil {
		return *p
	}
	return RateStatus{}
}

// Do issues a request with auth headers, pacing, retries and rate limit handling.
// Non-2xx answers come back as *StatusError carrying the response body.
func (c *Client) Do(ctx context.Context, method, path string, body []byte) (*http.Response, error) {
	url := c.opts.BaseURL + path
	attempts := 0
	for {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if c.limiter != nil {
			if err := c.limiter.Wait(ctx); err != nil {
				return nil, err
			}
		}

		var rdr io.Reader
		if body != nil {
			rdr = bytes.NewReader(body)
		}
		req, err := http.NewRequestWithContext(ctx, method, url, rdr)
		if err != nil {
			return nil, perr.Wrapf(err, perr.ErrorCodeUnknown, "github new request failed")
		}
		req.Header.Set("User-Agent", c.opts.UserAgent)
		req.Header.Set("Accept", "application/vnd.github+json")
		req.Header.Set("X-GitHub-Api-Version", apiVersion)
		if body != nil {
			req.Header.Set("Content-Type", "application/json")
		}
		if h := c.opts.Credential.Authorization(); h != "" {
			req.Header.Set("Authorization", h)
		}

		start := c.now()
		resp, err := c.http.Do(req)
		lat := c.now().Sub(start)

		if err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			if !c.shouldRetry(attempts) {
				return nil, perr.Wrapf(err, perr.ErrorCodeUnavailable, "github %s %s failed", method, path)
			}
			back := c.backoff(attempts)
			c.log.Warn().Err(err).Dur("retry_in", back).Int("attempt", attempts).Msg("github transport error retrying")
			if err := c.sleep(ctx, back); err != nil {
				return nil, err
			}
			attempts++
			continue
		}

		rem, reset, retryAfter := parseRateHeaders(resp.Header)
		if resp.Header.Get("X-RateLimit-Remaining") != "" {
			c.rate.Store(&RateStatus{Remaining: rem, Reset: reset})
		}
		c.log.Debug().
			Str("method", method).
			Str("path", path).
			Int("status", resp.StatusCode).
			Int("attempt", attempts).
			Dur("latency", lat).
			Int("rate_remaining", rem).
			Time("rate_reset", reset).
			Int("retry_after_s", retryAfter).
			Msg("github http response")

		switch {
		case resp.StatusCode >= 200 && resp.StatusCode < 300:
			return resp, nil
		case isRateLimitStatus(resp.StatusCode, rem, retryAfter, resp.Header):
			wait := computeWait(rem, reset, retryAfter, c.now())
			if wait <= 0 {
				wait = c.backoff(attempts)
			}
			if !c.shouldRetry(attempts) || wait > c.opts.MaxRateWait {
				c.log.Warn().Dur("reset_in", wait).Int("attempt", attempts).Msg("github rate limited giving up")
				return nil, statusError(resp, perr.ErrorCodeTooManyRequests, "github rate limited")
			}
			c.log.Warn().Dur("sleep", wait).Msg("github rate limited backing off")
			_ = drainAndClose(resp.Body)
			if err := c.sleep(ctx, wait); err != nil {
				return nil, err
			}
			attempts++
			continue
		case resp.StatusCode == http.StatusBadGateway, resp.StatusCode == http.StatusServiceUnavailable,
			resp.StatusCode == http.StatusGatewayTimeout:
			if !c.shouldRetry(attempts) {
				return nil, statusError(resp, perr.ErrorCodeUnavailable, "github transient server error")
			}
			back := c.backoff(attempts)
			c.log.Warn().Dur("retry_in", back).Int("attempt", attempts).Msg("github transient error retrying")
			_ = drainAndClose(resp.Body)
			if err := c.sleep(ctx, back); err != nil {
				return nil, err
			}
			attempts++
			continue
		default:
			return nil, statusError(resp, codeForStatus(resp.StatusCode), fmt.Sprintf("github %s %s", method, path))
		}
	}
}

func (c *Client) backoff(attempt int) time.Duration {
	d := c.opts.RetryBase
	// simple exponential with cap
	ms := int64(d / time.Millisecond)
	ms <<= uint(attempt)
	limit := int64(30 * time.Second / time.Millisecond)
	if ms > limit {
		ms = limit
	}
	return time.Duration(ms) * time.Millisecond
}

func (c *Client) shouldRetry(attempt int) bool {
	return attempt < c.opts.MaxRetries
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

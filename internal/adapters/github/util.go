package github

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"
	"time"

	perr "swifthub/internal/platform/errors"
)

// StatusError wraps non-2xx HTTP responses from GitHub and keeps the body
// so the error taxonomy can decode the server's error document
type StatusError struct {
	Status int
	Body   []byte
	Err    error
}

// Error interface
func (e *StatusError) Error() string { return e.Err.Error() }

// Unwrap interface
func (e *StatusError) Unwrap() error { return e.Err }

// HTTPStatus returns the response status code
func (e *StatusError) HTTPStatus() int { return e.Status }

// ResponseBody returns the raw response body, possibly truncated
func (e *StatusError) ResponseBody() []byte { return e.Body }

func statusError(resp *http.Response, code perr.ErrorCode, msg string) *StatusError {
	body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBytes))
	_ = resp.Body.Close()
	return &StatusError{
		Status: resp.StatusCode,
		Body:   body,
		Err:    perr.Newf(code, "%s: status %d", msg, resp.StatusCode),
	}
}

func codeForStatus(status int) perr.ErrorCode {
	switch status {
	case http.StatusUnauthorized:
		return perr.ErrorCodeUnauthorized
	case http.StatusForbidden:
		return perr.ErrorCodeForbidden
	case http.StatusNotFound:
		return perr.ErrorCodeNotFound
	case http.StatusConflict:
		return perr.ErrorCodeConflict
	case http.StatusUnprocessableEntity:
		return perr.ErrorCodeValidation
	case http.StatusTooManyRequests:
		return perr.ErrorCodeTooManyRequests
	default:
		return perr.ErrorCodeUpstream
	}
}

func parseRateHeaders(h http.Header) (remaining int, reset time.Time, retryAfter int) {
	remaining = atoi(h.Get("X-RateLimit-Remaining"))
	if sec := atoi(h.Get("X-RateLimit-Reset")); sec > 0 {
		reset = time.Unix(int64(sec), 0).UTC()
	}
	retryAfter = atoi(h.Get("Retry-After"))
	return
}

// isRateLimitStatus tells primary and secondary rate limits apart from plain 403s
func isRateLimitStatus(status, remaining, retryAfter int, h http.Header) bool {
	switch status {
	case http.StatusTooManyRequests:
		return true
	case http.StatusForbidden:
		return retryAfter > 0 || (h.Get("X-RateLimit-Remaining") != "" && remaining == 0)
	}
	return false
}

// computeWait decides how long to wait based on headers
func computeWait(remaining int, reset time.Time, retryAfter int, now time.Time) time.Duration {
	if retryAfter > 0 {
		return time.Duration(retryAfter) * time.Second
	}
	if remaining <= 0 && !reset.IsZero() && reset.After(now) {
		return reset.Sub(now)
	}
	return 0
}

func atoi(s string) int {
	if s == "" {
		return 0
	}
	i, _ := strconv.Atoi(s)
	return i
}

func drainAndClose(rc io.ReadCloser) error {
	_, _ = io.Copy(io.Discard, io.LimitReader(rc, 512))
	return rc.Close()
}

func decodeBody(resp *http.Response, out any) error {
	defer func() { _ = resp.Body.Close() }()
	b, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return perr.Wrap(err, perr.ErrorCodeUnavailable, "github read body failed")
	}
	if err := json.Unmarshal(b, out); err != nil {
		return perr.Wrap(err, perr.ErrorCodeJSON, "github decode body failed")
	}
	return nil
}

// IsRateLimited reports whether err is a StatusError caused by rate limiting
func IsRateLimited(err error) bool {
	var se *StatusError
	if errors.As(err, &se) {
		return perr.IsCode(se, perr.ErrorCodeTooManyRequests)
	}
	return false
}

// IsNotFound reports whether err is a 404 StatusError
func IsNotFound(err error) bool {
	var se *StatusError
	return errors.As(err, &se) && se.Status == http.StatusNotFound
}

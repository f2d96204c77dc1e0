// Package fetch retrieves remote datasets over HTTP with bounded retry, so
// the CLI and API accept http(s) URLs wherever they accept local paths.
// Transient failures (network errors, 5xx, 429) are retried with
// exponential backoff; client errors fail immediately.
package fetch

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	apperrors "github.com/matzehuels/graphweave/pkg/errors"
)

// DefaultMaxBytes caps how much of a remote dataset is read. CSV inputs
// this library targets are small; the cap keeps a misconfigured URL from
// buffering gigabytes.
const DefaultMaxBytes = 64 << 20

// Options configures a fetch.
type Options struct {
	// Client is the HTTP client to use. Defaults to a client with a
	// 30 second timeout.
	Client *http.Client

	// Attempts is the maximum number of tries. Defaults to 3.
	Attempts int

	// Delay is the initial backoff delay, doubling per retry.
	// Defaults to 1 second.
	Delay time.Duration

	// MaxBytes caps the response size. Defaults to DefaultMaxBytes.
	MaxBytes int64
}

func (o Options) withDefaults() Options {
	if o.Client == nil {
		o.Client = &http.Client{Timeout: 30 * time.Second}
	}
	if o.Attempts <= 0 {
		o.Attempts = 3
	}
	if o.Delay <= 0 {
		o.Delay = time.Second
	}
	if o.MaxBytes <= 0 {
		o.MaxBytes = DefaultMaxBytes
	}
	return o
}

// retryableError marks an error as worth another attempt.
type retryableError struct{ err error }

func (e *retryableError) Error() string { return e.err.Error() }
func (e *retryableError) Unwrap() error { return e.err }

// Get fetches url and returns the body bytes. Network failures and
// retryable status codes (5xx, 429) are retried per the options; other
// non-2xx statuses fail on the first attempt.
func Get(ctx context.Context, url string, opts Options) ([]byte, error) {
	opts = opts.withDefaults()
	if err := apperrors.ValidateSource(url); err != nil {
		return nil, err
	}
	if !apperrors.IsURL(url) {
		return nil, apperrors.New(apperrors.ErrCodeInvalidSource, "not an http(s) URL: %q", url)
	}

	var body []byte
	err := retry(ctx, opts.Attempts, opts.Delay, func() error {
		var err error
		body, err = getOnce(ctx, url, opts)
		return err
	})
	if err != nil {
		return nil, err
	}
	return body, nil
}

func getOnce(ctx context.Context, url string, opts Options) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrCodeInvalidSource, err, "build request for %s", url)
	}

	resp, err := opts.Client.Do(req)
	if err != nil {
		return nil, &retryableError{apperrors.Wrap(apperrors.ErrCodeNetwork, err, "fetch %s", url)}
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode >= 200 && resp.StatusCode < 300:
		body, err := io.ReadAll(io.LimitReader(resp.Body, opts.MaxBytes+1))
		if err != nil {
			return nil, &retryableError{apperrors.Wrap(apperrors.ErrCodeNetwork, err, "read %s", url)}
		}
		if int64(len(body)) > opts.MaxBytes {
			return nil, apperrors.New(apperrors.ErrCodeInvalidSource, "%s exceeds %d byte limit", url, opts.MaxBytes)
		}
		return body, nil
	case resp.StatusCode >= 500 || resp.StatusCode == http.StatusTooManyRequests:
		return nil, &retryableError{apperrors.New(apperrors.ErrCodeNetwork, "fetch %s: status %d", url, resp.StatusCode)}
	case resp.StatusCode == http.StatusNotFound:
		return nil, apperrors.New(apperrors.ErrCodeFileNotFound, "fetch %s: status 404", url)
	default:
		return nil, apperrors.New(apperrors.ErrCodeNetwork, "fetch %s: status %d", url, resp.StatusCode)
	}
}

// retry executes fn up to attempts times with exponential backoff. Only
// errors wrapped as retryable trigger another attempt; the delay doubles
// after each failure.
func retry(ctx context.Context, attempts int, delay time.Duration, fn func() error) error {
	attempts = max(attempts, 1)
	var lastErr error

	for i := range attempts {
		if err := fn(); err == nil {
			return nil
		} else if lastErr = err; !isRetryable(err) {
			return err
		}

		if i < attempts-1 {
			select {
			case <-ctx.Done():
				return fmt.Errorf("fetch cancelled: %w", ctx.Err())
			case <-time.After(delay):
				delay *= 2
			}
		}
	}
	return lastErr
}

func isRetryable(err error) bool {
	return errors.As(err, new(*retryableError))
}

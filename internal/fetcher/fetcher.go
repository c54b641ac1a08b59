// Package fetcher downloads public HTML pages with bounded retry, per-host
// pacing and a per-host circuit breaker. Fetch never returns an error: an
// empty string means the page was unavailable and callers skip it.
package fetcher

import (
	"context"
	"time"
)

// DefaultUserAgent is a desktop browser identity sent with every request.
const DefaultUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/124.0.0.0 Safari/537.36"

// Fetcher defines the interface for downloading pages.
type Fetcher interface {
	// Fetch GETs rawURL with up to maxAttempts attempts and returns the body
	// of the first 200 response, or "" when every attempt failed.
	Fetch(ctx context.Context, rawURL string, maxAttempts int) string
}

// Options configures the HTTP fetcher.
type Options struct {
	UserAgent string
	Timeout   time.Duration

	// MaxAttempts is used when Fetch is called with maxAttempts < 1.
	MaxAttempts int

	// BackoffUnit scales the linear wait after a 429 or transport error
	// (2*attempt units).
	BackoffUnit time.Duration

	// HostInterval is the minimum spacing between requests to one host.
	HostInterval time.Duration

	// MaxBodyBytes caps how much of a 200 body is read.
	MaxBodyBytes int64

	BreakerThreshold    int
	BreakerResetSeconds int
}

// DefaultOptions returns the fetch defaults.
func DefaultOptions() Options {
	return Options{
		UserAgent:           DefaultUserAgent,
		Timeout:             30 * time.Second,
		MaxAttempts:         3,
		BackoffUnit:         time.Second,
		MaxBodyBytes:        2 << 20,
		BreakerThreshold:    5,
		BreakerResetSeconds: 60,
	}
}

func (o Options) withDefaults() Options {
	d := DefaultOptions()
	if o.UserAgent == "" {
		o.UserAgent = d.UserAgent
	}
	if o.Timeout <= 0 {
		o.Timeout = d.Timeout
	}
	if o.MaxAttempts < 1 {
		o.MaxAttempts = d.MaxAttempts
	}
	if o.BackoffUnit <= 0 {
		o.BackoffUnit = d.BackoffUnit
	}
	if o.MaxBodyBytes <= 0 {
		o.MaxBodyBytes = d.MaxBodyBytes
	}
	return o
}

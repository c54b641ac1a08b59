package fetcher

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/jobscout/internal/resilience"
)

// HTTPFetcher implements Fetcher using net/http with linear backoff, a
// per-host gate and a per-host circuit breaker.
type HTTPFetcher struct {
	client   *http.Client
	opts     Options
	gate     *HostGate
	breakers *resilience.HostBreakers
	sleep    resilience.Sleeper
}

// Option configures an HTTPFetcher.
type Option func(*HTTPFetcher)

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(c *http.Client) Option {
	return func(f *HTTPFetcher) { f.client = c }
}

// WithSleeper replaces the backoff wait, mainly for tests.
func WithSleeper(s resilience.Sleeper) Option {
	return func(f *HTTPFetcher) { f.sleep = s }
}

// NewHTTPFetcher creates a new HTTPFetcher with the given options.
func NewHTTPFetcher(opts Options, fopts ...Option) *HTTPFetcher {
	opts = opts.withDefaults()

	breakerCfg := resilience.BreakerFromSettings(opts.BreakerThreshold, opts.BreakerResetSeconds)
	breakerCfg.ShouldTrip = tripsBreaker
	breakerCfg.OnStateChange = func(host string, from, to resilience.CircuitState) {
		zap.L().Warn("fetch: circuit state changed",
			zap.String("host", host),
			zap.String("from", from.String()),
			zap.String("to", to.String()),
		)
	}

	f := &HTTPFetcher{
		client: &http.Client{
			Timeout: opts.Timeout,
			Transport: &http.Transport{
				MaxIdleConnsPerHost: 4,
				IdleConnTimeout:     90 * time.Second,
			},
		},
		opts:     opts,
		gate:     NewHostGate(opts.HostInterval),
		breakers: resilience.NewHostBreakers(breakerCfg),
		sleep:    resilience.Sleep,
	}
	for _, o := range fopts {
		o(f)
	}
	return f
}

// Fetch GETs rawURL and returns the body of the first 200 response. A 429 or
// transport error waits 2*attempt backoff units before the next attempt;
// any other status moves on immediately. No wait follows the last attempt.
// Every failed attempt is logged once. Exhaustion yields "".
func (f *HTTPFetcher) Fetch(ctx context.Context, rawURL string, maxAttempts int) string {
	if maxAttempts < 1 {
		maxAttempts = f.opts.MaxAttempts
	}

	u, err := url.Parse(rawURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		zap.L().Error("fetch: invalid url", zap.String("url", rawURL))
		return ""
	}
	host := hostOf(rawURL)

	retryCfg := resilience.RetryConfig{
		MaxAttempts: maxAttempts,
		Backoff:     resilience.LinearBackoff(f.opts.BackoffUnit),
		Sleep:       f.sleep,
	}

	body, err := resilience.ExecuteVal(ctx, f.breakers.Get(host), func(ctx context.Context) (string, error) {
		attempt := 0
		return resilience.DoVal(ctx, retryCfg, func(ctx context.Context) (string, error) {
			attempt++
			return f.get(ctx, rawURL, host, attempt)
		})
	})
	if err != nil {
		switch {
		case errors.Is(err, resilience.ErrCircuitOpen):
			zap.L().Warn("fetch: circuit open, skipping", zap.String("url", rawURL))
		case resilience.IsRateLimited(err):
			zap.L().Warn("fetch: gave up while rate limited",
				zap.String("url", rawURL),
				zap.Float64("host_rate_per_sec", float64(f.gate.limit(host))),
			)
		}
		return ""
	}
	return body
}

// BreakerStates reports the circuit state of every host fetched so far.
func (f *HTTPFetcher) BreakerStates() map[string]resilience.CircuitState {
	return f.breakers.States()
}

func (f *HTTPFetcher) get(ctx context.Context, rawURL, host string, attempt int) (string, error) {
	release, err := f.gate.Acquire(ctx, host)
	if err != nil {
		return "", eris.Wrap(err, "fetch: host gate")
	}
	defer release()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return "", eris.Wrap(err, "fetch: create request")
	}
	req.Header.Set("User-Agent", f.opts.UserAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8")
	req.Header.Set("Accept-Language", "en-US,en;q=0.9")

	resp, err := f.client.Do(req)
	if err != nil {
		zap.L().Error("fetch: request failed",
			zap.String("url", rawURL),
			zap.Int("attempt", attempt),
			zap.Error(err),
		)
		return "", resilience.NewTransientError(eris.Wrap(err, "fetch: request"), 0)
	}
	defer resp.Body.Close() //nolint:errcheck

	switch resp.StatusCode {
	case http.StatusOK:
		data, err := io.ReadAll(io.LimitReader(resp.Body, f.opts.MaxBodyBytes))
		if err != nil {
			zap.L().Error("fetch: read body failed",
				zap.String("url", rawURL),
				zap.Int("attempt", attempt),
				zap.Error(err),
			)
			return "", resilience.NewTransientError(eris.Wrap(err, "fetch: read body"), 0)
		}
		if blocked, kind := DetectBlock(resp, data); blocked {
			zap.L().Warn("fetch: page looks blocked",
				zap.String("url", rawURL),
				zap.String("block_type", string(kind)),
			)
		}
		f.gate.OnSuccess(host)
		return string(data), nil

	case http.StatusTooManyRequests:
		f.gate.OnRateLimit(host)
		zap.L().Warn("fetch: rate limited",
			zap.String("url", rawURL),
			zap.Int("attempt", attempt),
		)
		return "", resilience.NewTransientError(
			&resilience.StatusError{URL: rawURL, StatusCode: resp.StatusCode}, resp.StatusCode)

	default:
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 64<<10))
		zap.L().Error("fetch: unexpected status",
			zap.String("url", rawURL),
			zap.Int("status", resp.StatusCode),
			zap.Int("attempt", attempt),
		)
		return "", &resilience.StatusError{URL: rawURL, StatusCode: resp.StatusCode}
	}
}

// tripsBreaker counts rate limits, network faults and 5xx exhaustion against
// a host. 4xx pages like 404 do not.
func tripsBreaker(err error) bool {
	if resilience.IsTransient(err) {
		return true
	}
	var se *resilience.StatusError
	return errors.As(err, &se) && resilience.IsTransientHTTPStatus(se.StatusCode)
}

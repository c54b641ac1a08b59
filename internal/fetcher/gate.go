package fetcher

import (
	"context"
	"net/url"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/semaphore"
	"golang.org/x/time/rate"
)

// HostGate serializes requests per host: at most one request is in flight
// for a host at a time, and successive requests are spaced by at least the
// configured interval. On 429 the spacing for that host widens (up to 4x)
// and recovers gradually on success, never below the configured interval.
type HostGate struct {
	mu       sync.Mutex
	hosts    map[string]*hostSlot
	interval time.Duration
}

type hostSlot struct {
	sem     *semaphore.Weighted
	limiter *rate.Limiter
	base    rate.Limit
}

// NewHostGate creates a gate. A zero interval only serializes.
func NewHostGate(interval time.Duration) *HostGate {
	return &HostGate{
		hosts:    make(map[string]*hostSlot),
		interval: interval,
	}
}

func (g *HostGate) slot(host string) *hostSlot {
	g.mu.Lock()
	defer g.mu.Unlock()

	if s, ok := g.hosts[host]; ok {
		return s
	}
	s := &hostSlot{sem: semaphore.NewWeighted(1)}
	if g.interval > 0 {
		s.base = rate.Every(g.interval)
		s.limiter = rate.NewLimiter(s.base, 1)
	}
	g.hosts[host] = s
	return s
}

// Acquire blocks until the host is free and its spacing has elapsed. The
// returned release func must be called once the request finishes.
func (g *HostGate) Acquire(ctx context.Context, host string) (func(), error) {
	s := g.slot(host)
	if err := s.sem.Acquire(ctx, 1); err != nil {
		return nil, err
	}
	if s.limiter != nil {
		if err := s.limiter.Wait(ctx); err != nil {
			s.sem.Release(1)
			return nil, err
		}
	}
	return func() { s.sem.Release(1) }, nil
}

// OnRateLimit halves the request rate for host.
func (g *HostGate) OnRateLimit(host string) {
	s := g.slot(host)
	if s.limiter == nil {
		return
	}
	next := max(s.limiter.Limit()*0.5, s.base/4)
	s.limiter.SetLimit(next)
	zap.L().Warn("fetch: slowing host after 429",
		zap.String("host", host),
		zap.Float64("rate_per_sec", float64(next)),
	)
}

// OnSuccess raises the request rate for host by 20%, capped at the base rate.
func (g *HostGate) OnSuccess(host string) {
	s := g.slot(host)
	if s.limiter == nil {
		return
	}
	s.limiter.SetLimit(min(s.limiter.Limit()*1.2, s.base))
}

// limit returns the current rate for host; rate.Inf when unpaced.
func (g *HostGate) limit(host string) rate.Limit {
	s := g.slot(host)
	if s.limiter == nil {
		return rate.Inf
	}
	return s.limiter.Limit()
}

// hostOf returns the lower-case host of rawURL, or "_" when it has none.
func hostOf(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil || u.Host == "" {
		return "_"
	}
	return strings.ToLower(u.Host)
}

package fetcher

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/time/rate"
)

func TestHostGate_AdaptiveRate(t *testing.T) {
	g := NewHostGate(time.Second)
	base := rate.Every(time.Second)

	assert.InDelta(t, float64(base), float64(g.limit("www.google.com")), 1e-9)

	g.OnRateLimit("www.google.com")
	assert.InDelta(t, float64(base)/2, float64(g.limit("www.google.com")), 1e-9)

	g.OnRateLimit("www.google.com")
	g.OnRateLimit("www.google.com")
	assert.InDelta(t, float64(base)/4, float64(g.limit("www.google.com")), 1e-9, "floor is a quarter of base")

	for range 20 {
		g.OnSuccess("www.google.com")
	}
	assert.InDelta(t, float64(base), float64(g.limit("www.google.com")), 1e-9, "recovers to base, not above")

	assert.InDelta(t, float64(base), float64(g.limit("www.linkedin.com")), 1e-9, "hosts are independent")
}

func TestHostGate_Unpaced(t *testing.T) {
	g := NewHostGate(0)
	g.OnRateLimit("a")
	g.OnSuccess("a")
	assert.Equal(t, rate.Inf, g.limit("a"))

	release, err := g.Acquire(context.Background(), "a")
	require.NoError(t, err)
	release()
}

func TestHostGate_AcquireHonoursContext(t *testing.T) {
	g := NewHostGate(0)
	release, err := g.Acquire(context.Background(), "a")
	require.NoError(t, err)
	defer release()

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	_, err = g.Acquire(ctx, "a")
	assert.ErrorIs(t, err, context.DeadlineExceeded)

	other, err := g.Acquire(context.Background(), "b")
	require.NoError(t, err)
	other()
}

func TestHostOf(t *testing.T) {
	assert.Equal(t, "www.linkedin.com", hostOf("https://WWW.LinkedIn.com/jobs/search"))
	assert.Equal(t, "_", hostOf("relative/path"))
	assert.Equal(t, "_", hostOf("%zz"))
}

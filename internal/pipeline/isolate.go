package pipeline

import (
	"context"
	"time"

	"github.com/rotisserie/eris"

	"github.com/sells-group/jobscout/internal/resilience"
)

// isolate runs fn and converts a panic into an error.
func isolate[T any](fn func() (T, error)) (out T, err error) {
	defer func() {
		if r := recover(); r != nil {
			var zero T
			out = zero
			err = eris.Errorf("recovered panic: %v", r)
		}
	}()
	return fn()
}

// pause waits d using sleep. A cancelled context ends the wait early and the
// caller carries on; fetches made afterwards come back empty.
func pause(ctx context.Context, sleep resilience.Sleeper, d time.Duration) {
	if d <= 0 {
		return
	}
	_ = sleep(ctx, d)
}

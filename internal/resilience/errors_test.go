package resilience

import (
	"errors"
	"fmt"
	"net"
	"syscall"
	"testing"

	"github.com/rotisserie/eris"
)

func TestIsTransient(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"nil", nil, false},
		{"explicit", NewTransientError(errors.New("overloaded"), 503), true},
		{"wrapped with fmt", fmt.Errorf("fetch: %w", NewTransientError(errors.New("rate limited"), 429)), true},
		{"wrapped with eris", eris.Wrap(NewTransientError(errors.New("rate limited"), 429), "fetch"), true},
		{"connection reset", fmt.Errorf("read tcp: %w", syscall.ECONNRESET), true},
		{"connection refused", fmt.Errorf("dial tcp: %w", syscall.ECONNREFUSED), true},
		{"dns timeout", &net.DNSError{IsTimeout: true, Err: "timeout"}, true},
		{"no such host text", errors.New("dial tcp: lookup news.example: no such host"), true},
		{"tls timeout text", errors.New("net/http: TLS handshake timeout"), true},
		{"status error", &StatusError{URL: "https://x", StatusCode: 404}, false},
		{"plain", errors.New("invalid selector"), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsTransient(tt.err); got != tt.want {
				t.Errorf("IsTransient(%v) = %v, want %v", tt.err, got, tt.want)
			}
		})
	}
}

func TestIsRateLimited(t *testing.T) {
	if !IsRateLimited(eris.Wrap(NewTransientError(errors.New("429"), 429), "fetch")) {
		t.Error("expected wrapped 429 to be rate limited")
	}
	if IsRateLimited(NewTransientError(errors.New("503"), 503)) {
		t.Error("503 is not a rate limit")
	}
	if IsRateLimited(errors.New("plain")) {
		t.Error("plain error is not a rate limit")
	}
}

func TestIsTransientHTTPStatus(t *testing.T) {
	for _, code := range []int{408, 429, 500, 502, 503, 504} {
		if !IsTransientHTTPStatus(code) {
			t.Errorf("expected HTTP %d to be transient", code)
		}
	}
	for _, code := range []int{200, 301, 400, 401, 403, 404, 410, 422} {
		if IsTransientHTTPStatus(code) {
			t.Errorf("expected HTTP %d to NOT be transient", code)
		}
	}
}

func TestTransientError_Unwrap(t *testing.T) {
	inner := errors.New("root cause")
	te := NewTransientError(inner, 500)

	if !errors.Is(te, inner) {
		t.Error("TransientError should unwrap to its cause")
	}
	if te.Error() != "root cause" {
		t.Errorf("unexpected message %q", te.Error())
	}
}

func TestStatusError_Message(t *testing.T) {
	err := &StatusError{URL: "https://news.example/search", StatusCode: 404}
	want := "unexpected status 404 from https://news.example/search"
	if err.Error() != want {
		t.Errorf("got %q, want %q", err.Error(), want)
	}
}

package pipeline

import (
	"context"
	"net/url"
	"strings"
	"sync"
	"testing"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/sells-group/jobscout/internal/extract"
)

var fixedNow = time.Date(2026, 3, 4, 5, 6, 7, 0, time.UTC)

// routeFetcher serves canned pages. A request gets the page of the first
// route whose pattern appears in the query-unescaped URL; unmatched URLs are
// unavailable.
type routeFetcher struct {
	mu       sync.Mutex
	routes   []route
	calls    []string
	attempts []int
}

type route struct {
	pattern string
	page    string
}

func newRouteFetcher() *routeFetcher {
	return &routeFetcher{}
}

func (f *routeFetcher) on(pattern, page string) *routeFetcher {
	f.routes = append(f.routes, route{pattern: pattern, page: page})
	return f
}

func (f *routeFetcher) Fetch(_ context.Context, rawURL string, maxAttempts int) string {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, rawURL)
	f.attempts = append(f.attempts, maxAttempts)

	decoded, err := url.QueryUnescape(rawURL)
	if err != nil {
		decoded = rawURL
	}
	for _, r := range f.routes {
		if strings.Contains(decoded, r.pattern) {
			return r.page
		}
	}
	return ""
}

func (f *routeFetcher) callsMatching(pattern string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, c := range f.calls {
		decoded, _ := url.QueryUnescape(c)
		if strings.Contains(decoded, pattern) {
			n++
		}
	}
	return n
}

type waitRecorder struct {
	mu    sync.Mutex
	waits []time.Duration
}

func (w *waitRecorder) sleep(ctx context.Context, d time.Duration) error {
	w.mu.Lock()
	w.waits = append(w.waits, d)
	w.mu.Unlock()
	return ctx.Err()
}

func (w *waitRecorder) recorded() []time.Duration {
	w.mu.Lock()
	defer w.mu.Unlock()
	return append([]time.Duration(nil), w.waits...)
}

func observeLogs(t *testing.T) *observer.ObservedLogs {
	t.Helper()
	core, logs := observer.New(zapcore.DebugLevel)
	restore := zap.ReplaceGlobals(zap.New(core))
	t.Cleanup(restore)
	return logs
}

// stubJobs maps a page body to the postings extracted from it.
type stubJobs map[string][]extract.JobPosting

func (s stubJobs) Jobs(page string) []extract.JobPosting {
	if page == "panic" {
		panic("unexpected markup")
	}
	return s[page]
}

type stubProfileLinks map[string][]string

func (s stubProfileLinks) ProfileLinks(page string) []string { return s[page] }

type stubProfiles map[string]extract.Profile

func (s stubProfiles) Profile(page string) extract.Profile {
	if page == "panic" {
		panic("unexpected profile markup")
	}
	return s[page]
}

type stubArticles []extract.Article

func (s stubArticles) Articles(string, string) []extract.Article { return s }

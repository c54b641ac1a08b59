package store

import (
	"context"
	"slices"
	"sync"
	"time"

	"github.com/rotisserie/eris"

	"github.com/sells-group/jobscout/internal/resilience"
	"github.com/sells-group/jobscout/pkg/sheets"
)

// SheetsStore implements Store on a Google Sheets spreadsheet, one tab per
// table. The first row of a tab is its header.
type SheetsStore struct {
	client sheets.Client
	retry  resilience.RetryConfig

	mu    sync.Mutex
	known map[string]bool
}

// NewSheets wraps a Sheets client. API calls that fail with 429 or 5xx are
// retried with exponential backoff.
func NewSheets(client sheets.Client) *SheetsStore {
	return &SheetsStore{
		client: client,
		retry: resilience.RetryConfig{
			MaxAttempts: 3,
			Backoff:     resilience.ExponentialBackoff(time.Second, 30*time.Second, 2.0, 0.2),
			ShouldRetry: retryableSheetsError,
		},
		known: make(map[string]bool),
	}
}

func retryableSheetsError(err error) bool {
	if code := sheets.StatusCode(err); code != 0 {
		return resilience.IsTransientHTTPStatus(code)
	}
	return resilience.IsTransient(err)
}

func (s *SheetsStore) do(ctx context.Context, op string, fn func(ctx context.Context) error) error {
	cfg := s.retry
	cfg.OnRetry = resilience.RetryLogger("sheets", op)
	return resilience.Do(ctx, cfg, fn)
}

func (s *SheetsStore) EnsureSheet(ctx context.Context, name string, columns []string, capacity int) error {
	s.mu.Lock()
	known := s.known[name]
	s.mu.Unlock()
	if known {
		return nil
	}

	var titles []string
	err := s.do(ctx, "sheet_titles", func(ctx context.Context) error {
		var err error
		titles, err = s.client.SheetTitles(ctx)
		return err
	})
	if err != nil {
		return eris.Wrap(err, "sheets store: list sheets")
	}

	if !slices.Contains(titles, name) {
		err = s.do(ctx, "add_sheet", func(ctx context.Context) error {
			return s.client.AddSheet(ctx, name, capacity, len(columns))
		})
		if err != nil {
			return eris.Wrapf(err, "sheets store: create %q", name)
		}
		err = s.do(ctx, "append_header", func(ctx context.Context) error {
			return s.client.AppendRows(ctx, name, [][]string{columns})
		})
		if err != nil {
			return eris.Wrapf(err, "sheets store: write header of %q", name)
		}
	}

	s.mu.Lock()
	s.known[name] = true
	s.mu.Unlock()
	return nil
}

func (s *SheetsStore) ReadAll(ctx context.Context, name string) (*Table, error) {
	var values [][]string
	err := s.do(ctx, "read", func(ctx context.Context) error {
		var err error
		values, err = s.client.Values(ctx, name)
		return err
	})
	if err != nil {
		return nil, eris.Wrapf(err, "sheets store: read %q", name)
	}

	t := &Table{}
	if len(values) > 0 {
		t.Header = values[0]
		t.Rows = values[1:]
	}
	return t, nil
}

// Append writes all rows in a single API call. The append call is not
// retried so a timed-out but applied request cannot duplicate rows.
func (s *SheetsStore) Append(ctx context.Context, name string, rows [][]string) error {
	if len(rows) == 0 {
		return nil
	}
	return eris.Wrapf(s.client.AppendRows(ctx, name, rows), "sheets store: append to %q", name)
}

// Migrate checks that the credentials can open the spreadsheet, so a wrong
// id or an unshared sheet fails setup instead of the first write. The tab
// titles it sees are remembered for EnsureSheet.
func (s *SheetsStore) Migrate(ctx context.Context) error {
	var titles []string
	err := s.do(ctx, "verify_access", func(ctx context.Context) error {
		var err error
		titles, err = s.client.SheetTitles(ctx)
		return err
	})
	if err != nil {
		return eris.Wrap(err, "sheets store: verify access")
	}

	s.mu.Lock()
	for _, t := range titles {
		s.known[t] = true
	}
	s.mu.Unlock()
	return nil
}

func (s *SheetsStore) Close() error { return nil }

package store

import (
	"context"
	"slices"
	"sync"

	"github.com/rotisserie/eris"
)

// MemoryStore keeps tables in process memory. It backs dry runs and tests.
type MemoryStore struct {
	mu     sync.Mutex
	tables map[string]*Table
}

// NewMemory creates an empty MemoryStore.
func NewMemory() *MemoryStore {
	return &MemoryStore{tables: make(map[string]*Table)}
}

func (s *MemoryStore) EnsureSheet(_ context.Context, name string, columns []string, _ int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.tables[name]; !ok {
		s.tables[name] = &Table{Header: slices.Clone(columns)}
	}
	return nil
}

func (s *MemoryStore) ReadAll(_ context.Context, name string) (*Table, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	t, ok := s.tables[name]
	if !ok {
		return nil, eris.Wrapf(ErrSheetNotFound, "memory: read %q", name)
	}
	return &Table{Header: slices.Clone(t.Header), Rows: cloneRows(t.Rows)}, nil
}

func (s *MemoryStore) Append(_ context.Context, name string, rows [][]string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	t, ok := s.tables[name]
	if !ok {
		return eris.Wrapf(ErrSheetNotFound, "memory: append to %q", name)
	}
	t.Rows = append(t.Rows, cloneRows(rows)...)
	return nil
}

func (s *MemoryStore) Migrate(context.Context) error { return nil }

func (s *MemoryStore) Close() error { return nil }

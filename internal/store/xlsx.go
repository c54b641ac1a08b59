package store

import (
	"context"
	"errors"
	"io/fs"
	"os"
	"sync"

	"github.com/rotisserie/eris"
	"github.com/tealeg/xlsx/v2"
)

// XLSXStore keeps every table as a worksheet of a local workbook. The file
// is rewritten after each change.
type XLSXStore struct {
	mu   sync.Mutex
	path string
	file *xlsx.File
}

// NewXLSX opens the workbook at path, or starts an empty one if the file
// does not exist yet.
func NewXLSX(path string) (*XLSXStore, error) {
	if path == "" {
		return nil, eris.New("xlsx: path is required")
	}

	if _, err := os.Stat(path); errors.Is(err, fs.ErrNotExist) {
		return &XLSXStore{path: path, file: xlsx.NewFile()}, nil
	}

	f, err := xlsx.OpenFile(path)
	if err != nil {
		return nil, eris.Wrapf(err, "xlsx: open %s", path)
	}
	return &XLSXStore{path: path, file: f}, nil
}

func (s *XLSXStore) EnsureSheet(_ context.Context, name string, columns []string, _ int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.file.Sheet[name]; ok {
		return nil
	}
	sheet, err := s.file.AddSheet(name)
	if err != nil {
		return eris.Wrapf(err, "xlsx: add sheet %q", name)
	}
	addRow(sheet, columns)
	return s.save()
}

func (s *XLSXStore) ReadAll(_ context.Context, name string) (*Table, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sheet, ok := s.file.Sheet[name]
	if !ok {
		return nil, eris.Wrapf(ErrSheetNotFound, "xlsx: read %q", name)
	}

	t := &Table{}
	for i, row := range sheet.Rows {
		if row == nil {
			continue
		}
		cells := rowToStrings(row)
		if i == 0 {
			t.Header = cells
			continue
		}
		t.Rows = append(t.Rows, cells)
	}
	return t, nil
}

func (s *XLSXStore) Append(_ context.Context, name string, rows [][]string) error {
	if len(rows) == 0 {
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	sheet, ok := s.file.Sheet[name]
	if !ok {
		return eris.Wrapf(ErrSheetNotFound, "xlsx: append to %q", name)
	}
	for _, r := range rows {
		addRow(sheet, r)
	}
	return s.save()
}

func (s *XLSXStore) Migrate(context.Context) error { return nil }

func (s *XLSXStore) Close() error { return nil }

func (s *XLSXStore) save() error {
	return eris.Wrapf(s.file.Save(s.path), "xlsx: save %s", s.path)
}

func addRow(sheet *xlsx.Sheet, values []string) {
	row := sheet.AddRow()
	for _, v := range values {
		row.AddCell().SetString(v)
	}
}

func rowToStrings(row *xlsx.Row) []string {
	cells := make([]string, len(row.Cells))
	for j, cell := range row.Cells {
		cells[j] = cell.String()
	}
	return cells
}

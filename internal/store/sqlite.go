package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"time"

	"github.com/rotisserie/eris"
	_ "modernc.org/sqlite"
)

// SQLiteStore implements Store using modernc.org/sqlite. Each table's
// header lives in sheets, its rows in sheet_rows as JSON arrays.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLite opens a SQLite database at the given path and configures WAL mode.
func NewSQLite(dsn string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: open")
	}
	for _, pragma := range []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout=5000",
		"PRAGMA synchronous=NORMAL",
		"PRAGMA foreign_keys=ON",
	} {
		if _, err := db.Exec(pragma); err != nil {
			db.Close() //nolint:errcheck
			return nil, eris.Wrapf(err, "sqlite: exec %s", pragma)
		}
	}
	return &SQLiteStore{db: db}, nil
}

const sqliteMigration = `
CREATE TABLE IF NOT EXISTS sheets (
	name       TEXT PRIMARY KEY,
	columns    TEXT NOT NULL,
	capacity   INTEGER NOT NULL DEFAULT 0,
	created_at DATETIME NOT NULL DEFAULT (datetime('now'))
);

CREATE TABLE IF NOT EXISTS sheet_rows (
	id          INTEGER PRIMARY KEY AUTOINCREMENT,
	sheet       TEXT NOT NULL REFERENCES sheets(name),
	cells       TEXT NOT NULL,
	appended_at DATETIME NOT NULL DEFAULT (datetime('now'))
);

CREATE INDEX IF NOT EXISTS idx_sheet_rows_sheet ON sheet_rows(sheet, id);
`

func (s *SQLiteStore) Migrate(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, sqliteMigration)
	return eris.Wrap(err, "sqlite: migrate")
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func (s *SQLiteStore) EnsureSheet(ctx context.Context, name string, columns []string, capacity int) error {
	cols, err := json.Marshal(columns)
	if err != nil {
		return eris.Wrap(err, "sqlite: marshal columns")
	}
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO sheets (name, columns, capacity, created_at) VALUES (?, ?, ?, ?)
		 ON CONFLICT(name) DO NOTHING`,
		name, string(cols), capacity, time.Now().UTC(),
	)
	return eris.Wrapf(err, "sqlite: ensure sheet %q", name)
}

func (s *SQLiteStore) ReadAll(ctx context.Context, name string) (*Table, error) {
	var colsJSON string
	err := s.db.QueryRowContext(ctx, `SELECT columns FROM sheets WHERE name = ?`, name).Scan(&colsJSON)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, eris.Wrapf(ErrSheetNotFound, "sqlite: read %q", name)
	}
	if err != nil {
		return nil, eris.Wrapf(err, "sqlite: read header of %q", name)
	}

	t := &Table{}
	if err := json.Unmarshal([]byte(colsJSON), &t.Header); err != nil {
		return nil, eris.Wrapf(err, "sqlite: decode header of %q", name)
	}

	rows, err := s.db.QueryContext(ctx, `SELECT cells FROM sheet_rows WHERE sheet = ? ORDER BY id`, name)
	if err != nil {
		return nil, eris.Wrapf(err, "sqlite: read rows of %q", name)
	}
	defer rows.Close() //nolint:errcheck

	for rows.Next() {
		var cellsJSON string
		if err := rows.Scan(&cellsJSON); err != nil {
			return nil, eris.Wrap(err, "sqlite: scan row")
		}
		var cells []string
		if err := json.Unmarshal([]byte(cellsJSON), &cells); err != nil {
			return nil, eris.Wrap(err, "sqlite: decode row")
		}
		t.Rows = append(t.Rows, cells)
	}
	return t, eris.Wrap(rows.Err(), "sqlite: iterate rows")
}

func (s *SQLiteStore) Append(ctx context.Context, name string, rows [][]string) error {
	if len(rows) == 0 {
		return nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return eris.Wrap(err, "sqlite: begin append")
	}
	defer tx.Rollback() //nolint:errcheck

	var exists int
	err = tx.QueryRowContext(ctx, `SELECT 1 FROM sheets WHERE name = ?`, name).Scan(&exists)
	if errors.Is(err, sql.ErrNoRows) {
		return eris.Wrapf(ErrSheetNotFound, "sqlite: append to %q", name)
	}
	if err != nil {
		return eris.Wrapf(err, "sqlite: check sheet %q", name)
	}

	stmt, err := tx.PrepareContext(ctx, `INSERT INTO sheet_rows (sheet, cells, appended_at) VALUES (?, ?, ?)`)
	if err != nil {
		return eris.Wrap(err, "sqlite: prepare append")
	}
	defer stmt.Close() //nolint:errcheck

	now := time.Now().UTC()
	for _, r := range rows {
		cells, err := json.Marshal(r)
		if err != nil {
			return eris.Wrap(err, "sqlite: marshal row")
		}
		if _, err := stmt.ExecContext(ctx, name, string(cells), now); err != nil {
			return eris.Wrapf(err, "sqlite: append to %q", name)
		}
	}
	return eris.Wrap(tx.Commit(), "sqlite: commit append")
}

package store

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rotisserie/eris"
)

// Pool is the subset of *pgxpool.Pool used by PostgresStore. pgxmock pools
// satisfy it in tests.
type Pool interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	CopyFrom(ctx context.Context, tableName pgx.Identifier, columnNames []string, rowSrc pgx.CopyFromSource) (int64, error)
}

// PostgresStore implements Store using pgxpool.
type PostgresStore struct {
	pool    Pool
	closeFn func()
}

// PoolConfig holds optional connection pool tuning parameters.
type PoolConfig struct {
	MaxConns int32 `yaml:"max_conns" mapstructure:"max_conns"`
	MinConns int32 `yaml:"min_conns" mapstructure:"min_conns"`
}

// NewPostgres creates a PostgresStore with a connection pool.
func NewPostgres(ctx context.Context, connString string, poolCfg *PoolConfig) (*PostgresStore, error) {
	pgxCfg, err := pgxpool.ParseConfig(connString)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: parse config")
	}

	maxConns := int32(4)
	minConns := int32(1)
	if poolCfg != nil {
		if poolCfg.MaxConns > 0 {
			maxConns = poolCfg.MaxConns
		}
		if poolCfg.MinConns > 0 {
			minConns = poolCfg.MinConns
		}
	}
	pgxCfg.MaxConns = maxConns
	pgxCfg.MinConns = minConns
	pgxCfg.MaxConnLifetime = 30 * time.Minute
	pgxCfg.MaxConnIdleTime = 5 * time.Minute

	pool, err := pgxpool.NewWithConfig(ctx, pgxCfg)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: create pool")
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, eris.Wrap(err, "postgres: ping")
	}
	return &PostgresStore{pool: pool, closeFn: pool.Close}, nil
}

const postgresMigration = `
CREATE TABLE IF NOT EXISTS sheets (
	name       TEXT PRIMARY KEY,
	columns    JSONB NOT NULL,
	capacity   INTEGER NOT NULL DEFAULT 0,
	created_at TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS sheet_rows (
	id          BIGSERIAL PRIMARY KEY,
	sheet       TEXT NOT NULL REFERENCES sheets(name),
	cells       JSONB NOT NULL,
	appended_at TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE INDEX IF NOT EXISTS idx_sheet_rows_sheet ON sheet_rows(sheet, id);
`

func (s *PostgresStore) Migrate(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, postgresMigration)
	return eris.Wrap(err, "postgres: migrate")
}

func (s *PostgresStore) Close() error {
	if s.closeFn != nil {
		s.closeFn()
	}
	return nil
}

func (s *PostgresStore) EnsureSheet(ctx context.Context, name string, columns []string, capacity int) error {
	cols, err := json.Marshal(columns)
	if err != nil {
		return eris.Wrap(err, "postgres: marshal columns")
	}
	_, err = s.pool.Exec(ctx,
		`INSERT INTO sheets (name, columns, capacity) VALUES ($1, $2, $3) ON CONFLICT (name) DO NOTHING`,
		name, cols, capacity,
	)
	return eris.Wrapf(err, "postgres: ensure sheet %q", name)
}

func (s *PostgresStore) ReadAll(ctx context.Context, name string) (*Table, error) {
	var colsJSON []byte
	err := s.pool.QueryRow(ctx, `SELECT columns FROM sheets WHERE name = $1`, name).Scan(&colsJSON)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, eris.Wrapf(ErrSheetNotFound, "postgres: read %q", name)
	}
	if err != nil {
		return nil, eris.Wrapf(err, "postgres: read header of %q", name)
	}

	t := &Table{}
	if err := json.Unmarshal(colsJSON, &t.Header); err != nil {
		return nil, eris.Wrapf(err, "postgres: decode header of %q", name)
	}

	rows, err := s.pool.Query(ctx, `SELECT cells FROM sheet_rows WHERE sheet = $1 ORDER BY id`, name)
	if err != nil {
		return nil, eris.Wrapf(err, "postgres: read rows of %q", name)
	}
	defer rows.Close()

	for rows.Next() {
		var cellsJSON []byte
		if err := rows.Scan(&cellsJSON); err != nil {
			return nil, eris.Wrap(err, "postgres: scan row")
		}
		var cells []string
		if err := json.Unmarshal(cellsJSON, &cells); err != nil {
			return nil, eris.Wrap(err, "postgres: decode row")
		}
		t.Rows = append(t.Rows, cells)
	}
	return t, eris.Wrap(rows.Err(), "postgres: iterate rows")
}

// Append bulk-inserts rows with the COPY protocol. The foreign key on
// sheet_rows rejects appends to tables that were never created.
func (s *PostgresStore) Append(ctx context.Context, name string, rows [][]string) error {
	if len(rows) == 0 {
		return nil
	}

	src := make([][]any, len(rows))
	for i, r := range rows {
		cells, err := json.Marshal(r)
		if err != nil {
			return eris.Wrap(err, "postgres: marshal row")
		}
		src[i] = []any{name, string(cells)}
	}

	if _, err := s.pool.CopyFrom(ctx, pgx.Identifier{"sheet_rows"}, []string{"sheet", "cells"}, pgx.CopyFromRows(src)); err != nil {
		return eris.Wrapf(err, "postgres: COPY INTO sheet_rows for %q", name)
	}
	return nil
}

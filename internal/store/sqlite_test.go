package store

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSQLite_PersistsAcrossReopen(t *testing.T) {
	ctx := context.Background()
	dbPath := filepath.Join(t.TempDir(), "jobs.db")

	st, err := NewSQLite(dbPath)
	require.NoError(t, err)
	require.NoError(t, st.Migrate(ctx))
	require.NoError(t, st.EnsureSheet(ctx, "Jobs", []string{"Link"}, 1000))
	require.NoError(t, st.Append(ctx, "Jobs", [][]string{{"https://a"}, {"https://b"}}))
	require.NoError(t, st.Close())

	st, err = NewSQLite(dbPath)
	require.NoError(t, err)
	defer st.Close() //nolint:errcheck
	require.NoError(t, st.Migrate(ctx), "migration is idempotent")

	tbl, err := st.ReadAll(ctx, "Jobs")
	require.NoError(t, err)
	assert.Equal(t, []string{"Link"}, tbl.Header)
	assert.Equal(t, [][]string{{"https://a"}, {"https://b"}}, tbl.Rows)
}

func TestSQLite_CellsWithNewlinesAndQuotes(t *testing.T) {
	st := newTestSQLite(t)
	ctx := context.Background()

	row := []string{"Acme names CTO: https://news.example/1\nSecond: https://news.example/2", `He said "hello"`}
	require.NoError(t, st.EnsureSheet(ctx, "Decision Makers", []string{"News Mentions", "Quote"}, 0))
	require.NoError(t, st.Append(ctx, "Decision Makers", [][]string{row}))

	tbl, err := st.ReadAll(ctx, "Decision Makers")
	require.NoError(t, err)
	assert.Equal(t, [][]string{row}, tbl.Rows)
}

func TestSQLite_AppendCancelledContext(t *testing.T) {
	st := newTestSQLite(t)
	require.NoError(t, st.EnsureSheet(context.Background(), "Jobs", []string{"Link"}, 0))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	require.Error(t, st.Append(ctx, "Jobs", [][]string{{"https://a"}}))

	tbl, err := st.ReadAll(context.Background(), "Jobs")
	require.NoError(t, err)
	assert.Empty(t, tbl.Rows)
}

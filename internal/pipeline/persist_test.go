package pipeline

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/jobscout/internal/model"
	"github.com/sells-group/jobscout/internal/store"
	sheetmocks "github.com/sells-group/jobscout/pkg/sheets/mocks"
)

func job(link string) model.JobListing {
	return model.JobListing{Timestamp: "2026-03-04T05:06:07Z", Company: "Acme", Title: "AI Engineer", Link: link, Category: model.CategoryAI}
}

func seedJobs(t *testing.T, st store.Store, links ...string) {
	t.Helper()
	ctx := context.Background()
	require.NoError(t, st.EnsureSheet(ctx, model.JobsSheet, model.JobColumns, SheetCapacity))
	var rows [][]string
	for _, l := range links {
		rows = append(rows, job(l).Row())
	}
	require.NoError(t, st.Append(ctx, model.JobsSheet, rows))
}

func storedLinks(t *testing.T, st store.Store, sheet, column string) []string {
	t.Helper()
	tbl, err := st.ReadAll(context.Background(), sheet)
	require.NoError(t, err)
	col := model.ColumnIndex(tbl.Header, column)
	require.GreaterOrEqual(t, col, 0)
	var out []string
	for _, r := range tbl.Rows {
		out = append(out, r[col])
	}
	return out
}

func TestPersister_AddsOnlyNewJobs(t *testing.T) {
	logs := observeLogs(t)
	st := store.NewMemory()
	seedJobs(t, st, "https://x/1")

	n, err := NewPersister(st, PersistOptions{}).SaveJobs(context.Background(), []model.JobListing{job("https://x/1"), job("https://x/2")})
	require.NoError(t, err)

	assert.Equal(t, 1, n)
	assert.Equal(t, []string{"https://x/1", "https://x/2"}, storedLinks(t, st, model.JobsSheet, model.JobLinkColumn))
	assert.Equal(t, 1, logs.FilterMessage("Added 1 new jobs.").Len())
}

func TestPersister_Idempotent(t *testing.T) {
	st := store.NewMemory()
	p := NewPersister(st, PersistOptions{})
	batch := []model.JobListing{job("https://x/1"), job("https://x/2"), job("https://x/1"), job("https://x/3/")}

	n, err := p.SaveJobs(context.Background(), batch)
	require.NoError(t, err)
	assert.Equal(t, 3, n, "repeats within one batch are written once")
	once := storedLinks(t, st, model.JobsSheet, model.JobLinkColumn)

	n, err = p.SaveJobs(context.Background(), batch)
	require.NoError(t, err)
	assert.Zero(t, n)
	assert.Equal(t, once, storedLinks(t, st, model.JobsSheet, model.JobLinkColumn))
}

func TestPersister_NoNewJobs(t *testing.T) {
	logs := observeLogs(t)
	st := store.NewMemory()
	seedJobs(t, st, "https://x/1")

	n, err := NewPersister(st, PersistOptions{}).SaveJobs(context.Background(), []model.JobListing{job("https://x/1")})
	require.NoError(t, err)
	assert.Zero(t, n)
	assert.Equal(t, 1, logs.FilterMessage("No new jobs to add.").Len())

	n, err = NewPersister(st, PersistOptions{}).SaveJobs(context.Background(), nil)
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestPersister_ExistingKeysAreCanonicalised(t *testing.T) {
	st := store.NewMemory()
	seedJobs(t, st, "https://uk.linkedin.com/jobs/view/7/?trk=old")

	n, err := NewPersister(st, PersistOptions{}).SaveJobs(context.Background(), []model.JobListing{job("https://www.linkedin.com/jobs/view/7")})
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestPersister_LegacyJobLinkHeader(t *testing.T) {
	st := store.NewMemory()
	ctx := context.Background()
	require.NoError(t, st.EnsureSheet(ctx, model.JobsSheet, []string{"Timestamp", "Company", "Job Link"}, 0))
	require.NoError(t, st.Append(ctx, model.JobsSheet, [][]string{{"t", "Acme", "https://x/1"}}))

	n, err := NewPersister(st, PersistOptions{}).SaveJobs(ctx, []model.JobListing{job("https://x/1"), job("https://x/2")})
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}

func TestPersister_QueryIdentifiedPostingsStayDistinct(t *testing.T) {
	st := store.NewMemory()
	p := NewPersister(st, PersistOptions{})

	n, err := p.SaveJobs(context.Background(), []model.JobListing{
		job("https://boards.example.com/viewjob?jk=111"),
		job("https://boards.example.com/viewjob?jk=222&utm_source=feed"),
	})
	require.NoError(t, err)
	assert.Equal(t, 2, n)
	assert.Equal(t, []string{
		"https://boards.example.com/viewjob?jk=111",
		"https://boards.example.com/viewjob?jk=222&utm_source=feed",
	}, storedLinks(t, st, model.JobsSheet, model.JobLinkColumn))

	n, err = p.SaveJobs(context.Background(), []model.JobListing{job("https://boards.example.com/viewjob?utm_source=mail&jk=222")})
	require.NoError(t, err)
	assert.Zero(t, n, "tracking parameters do not change the key")
}

func TestPersister_WritesInExistingColumnOrder(t *testing.T) {
	st := store.NewMemory()
	ctx := context.Background()
	header := []string{"Job Link", "Company", "Notes", "Title"}
	require.NoError(t, st.EnsureSheet(ctx, model.JobsSheet, header, 0))
	require.NoError(t, st.Append(ctx, model.JobsSheet, [][]string{{"https://x/1", "Globex", "called", "Analyst"}}))

	n, err := NewPersister(st, PersistOptions{}).SaveJobs(ctx, []model.JobListing{job("https://x/2")})
	require.NoError(t, err)
	require.Equal(t, 1, n)

	tbl, err := st.ReadAll(ctx, model.JobsSheet)
	require.NoError(t, err)
	assert.Equal(t, header, tbl.Header)
	require.Len(t, tbl.Rows, 2)
	assert.Equal(t, []string{"https://x/2", "Acme", "", "AI Engineer"}, tbl.Rows[1])
}

func TestPersister_MissingKeyColumn(t *testing.T) {
	st := store.NewMemory()
	ctx := context.Background()
	require.NoError(t, st.EnsureSheet(ctx, model.JobsSheet, []string{"Timestamp", "Company"}, 0))

	_, err := NewPersister(st, PersistOptions{}).SaveJobs(ctx, []model.JobListing{job("https://x/1")})
	require.Error(t, err)
	assert.Contains(t, err.Error(), `no "Link" column`)
}

func TestPersister_DecisionMakersSheetCreatedLazily(t *testing.T) {
	logs := observeLogs(t)
	st := store.NewMemory()
	ctx := context.Background()
	p := NewPersister(st, PersistOptions{})

	dms := []model.DecisionMaker{
		{Name: "Jane Doe", Title: "CTO", Company: "Acme", LinkedInURL: "https://www.linkedin.com/in/jane-doe/"},
		{Name: "Jane Doe", Title: "CTO", Company: "Acme", LinkedInURL: "https://www.linkedin.com/in/jane-doe"},
		{Name: "Sam Ruiz", Title: "VP Engineering", Company: "Acme", LinkedInURL: "https://www.linkedin.com/in/sam-ruiz"},
	}
	n, err := p.SaveDecisionMakers(ctx, dms)
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	tbl, err := st.ReadAll(ctx, model.DecisionMakersSheet)
	require.NoError(t, err)
	assert.Equal(t, model.DecisionMakerColumns, tbl.Header)
	assert.Len(t, tbl.Rows, 2)
	assert.Equal(t, 1, logs.FilterMessage("Added 2 new decision makers.").Len())

	n, err = p.SaveDecisionMakers(ctx, dms)
	require.NoError(t, err)
	assert.Zero(t, n)
	assert.Equal(t, 1, logs.FilterMessage("No new decision makers to add.").Len())
}

func TestPersister_BlankSheetGetsHeader(t *testing.T) {
	client := sheetmocks.NewMockClient(t)
	client.On("SheetTitles", mock.Anything).Return([]string{model.JobsSheet}, nil).Once()
	client.On("Values", mock.Anything, model.JobsSheet).Return([][]string{}, nil).Once()
	client.On("AppendRows", mock.Anything, model.JobsSheet, [][]string{model.JobColumns, job("https://x/1").Row()}).Return(nil).Once()

	n, err := NewPersister(store.NewSheets(client), PersistOptions{}).SaveJobs(context.Background(), []model.JobListing{job("https://x/1")})
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}

func TestPersister_CustomSheetNames(t *testing.T) {
	st := store.NewMemory()
	p := NewPersister(st, PersistOptions{JobsSheet: "Postings"})

	_, err := p.SaveJobs(context.Background(), []model.JobListing{job("https://x/1")})
	require.NoError(t, err)
	assert.Equal(t, []string{"https://x/1"}, storedLinks(t, st, "Postings", model.JobLinkColumn))
}

func TestPersister_ReadJobs(t *testing.T) {
	st := store.NewMemory()
	seedJobs(t, st, "https://x/1", "https://x/2")

	jobs, err := NewPersister(st, PersistOptions{}).ReadJobs(context.Background())
	require.NoError(t, err)
	require.Len(t, jobs, 2)
	assert.Equal(t, job("https://x/2"), jobs[1])
}

type failingStore struct {
	store.Store
	err error
}

func (f failingStore) EnsureSheet(context.Context, string, []string, int) error { return nil }

func (f failingStore) ReadAll(context.Context, string) (*store.Table, error) { return nil, f.err }

func TestPersister_ReadFailure(t *testing.T) {
	boom := errors.New("quota exhausted")
	_, err := NewPersister(failingStore{err: boom}, PersistOptions{}).SaveJobs(context.Background(), []model.JobListing{job("https://x/1")})
	require.Error(t, err)
	assert.True(t, errors.Is(err, boom))
}

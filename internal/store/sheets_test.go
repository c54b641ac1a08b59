package store

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"google.golang.org/api/googleapi"

	"github.com/sells-group/jobscout/internal/model"
	"github.com/sells-group/jobscout/pkg/sheets/mocks"
)

func newTestSheetsStore(t *testing.T) (*SheetsStore, *mocks.MockClient) {
	t.Helper()
	client := mocks.NewMockClient(t)
	s := NewSheets(client)
	s.retry.Sleep = func(ctx context.Context, _ time.Duration) error { return ctx.Err() }
	return s, client
}

func TestSheetsStore_EnsureSheetCreatesMissing(t *testing.T) {
	s, client := newTestSheetsStore(t)
	ctx := context.Background()

	client.On("SheetTitles", mock.Anything).Return([]string{"Jobs"}, nil).Once()
	client.On("AddSheet", mock.Anything, model.DecisionMakersSheet, 1000, 7).Return(nil).Once()
	client.On("AppendRows", mock.Anything, model.DecisionMakersSheet, [][]string{model.DecisionMakerColumns}).Return(nil).Once()

	require.NoError(t, s.EnsureSheet(ctx, model.DecisionMakersSheet, model.DecisionMakerColumns, 1000))
	require.NoError(t, s.EnsureSheet(ctx, model.DecisionMakersSheet, model.DecisionMakerColumns, 1000), "second call is cached")
}

func TestSheetsStore_EnsureSheetExisting(t *testing.T) {
	s, client := newTestSheetsStore(t)

	client.On("SheetTitles", mock.Anything).Return([]string{"Jobs", "Decision Makers"}, nil).Once()

	require.NoError(t, s.EnsureSheet(context.Background(), model.JobsSheet, model.JobColumns, 1000))
	client.AssertNotCalled(t, "AddSheet", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestSheetsStore_ReadAll(t *testing.T) {
	s, client := newTestSheetsStore(t)

	client.On("Values", mock.Anything, "Jobs").Return([][]string{
		{"Timestamp", "Link"},
		{"t1", "https://a"},
		{"t2"},
	}, nil).Once()

	tbl, err := s.ReadAll(context.Background(), "Jobs")
	require.NoError(t, err)
	assert.Equal(t, []string{"Timestamp", "Link"}, tbl.Header)
	assert.Equal(t, [][]string{{"t1", "https://a"}, {"t2"}}, tbl.Rows)
}

func TestSheetsStore_ReadAllEmptyTab(t *testing.T) {
	s, client := newTestSheetsStore(t)

	client.On("Values", mock.Anything, "Jobs").Return([][]string(nil), nil).Once()

	tbl, err := s.ReadAll(context.Background(), "Jobs")
	require.NoError(t, err)
	assert.Empty(t, tbl.Header)
	assert.Empty(t, tbl.Rows)
}

func TestSheetsStore_RetriesQuotaErrors(t *testing.T) {
	s, client := newTestSheetsStore(t)

	quota := &googleapi.Error{Code: http.StatusTooManyRequests, Message: "Quota exceeded"}
	client.On("Values", mock.Anything, "Jobs").Return(nil, quota).Twice()
	client.On("Values", mock.Anything, "Jobs").Return([][]string{{"Link"}}, nil).Once()

	tbl, err := s.ReadAll(context.Background(), "Jobs")
	require.NoError(t, err)
	assert.Equal(t, []string{"Link"}, tbl.Header)
}

func TestSheetsStore_DoesNotRetryPermissionErrors(t *testing.T) {
	s, client := newTestSheetsStore(t)

	denied := &googleapi.Error{Code: http.StatusForbidden, Message: "The caller does not have permission"}
	client.On("SheetTitles", mock.Anything).Return(nil, denied).Once()

	err := s.EnsureSheet(context.Background(), "Jobs", model.JobColumns, 1000)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "list sheets")
}

func TestSheetsStore_AppendSingleCall(t *testing.T) {
	s, client := newTestSheetsStore(t)

	rows := [][]string{{"a"}, {"b"}}
	client.On("AppendRows", mock.Anything, "Jobs", rows).Return(nil).Once()

	require.NoError(t, s.Append(context.Background(), "Jobs", rows))
	require.NoError(t, s.Append(context.Background(), "Jobs", nil))
}

func TestSheetsStore_MigrateVerifiesAccess(t *testing.T) {
	s, client := newTestSheetsStore(t)

	denied := &googleapi.Error{Code: http.StatusForbidden, Message: "The caller does not have permission"}
	client.On("SheetTitles", mock.Anything).Return(nil, denied).Once()

	err := s.Migrate(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "verify access")
	client.AssertNumberOfCalls(t, "SheetTitles", 1)
}

func TestSheetsStore_MigrateRemembersTabs(t *testing.T) {
	s, client := newTestSheetsStore(t)

	client.On("SheetTitles", mock.Anything).Return([]string{"Jobs"}, nil).Once()

	require.NoError(t, s.Migrate(context.Background()))
	require.NoError(t, s.EnsureSheet(context.Background(), model.JobsSheet, model.JobColumns, 1000))
	client.AssertNumberOfCalls(t, "SheetTitles", 1)
}

// Package sheets wraps the Google Sheets API for the tab-level operations the
// pipeline needs: list tabs, add a tab, read a tab and append rows.
package sheets

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/rotisserie/eris"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"
	gsheets "google.golang.org/api/sheets/v4"
)

// Scopes are the OAuth scopes requested for the service account.
var Scopes = []string{gsheets.SpreadsheetsScope, gsheets.DriveScope}

// Client defines the spreadsheet operations used by this application.
type Client interface {
	// SheetTitles lists the titles of every tab in the spreadsheet.
	SheetTitles(ctx context.Context) ([]string, error)
	// AddSheet creates a tab with the given grid size.
	AddSheet(ctx context.Context, title string, rows, cols int) error
	// Values returns every non-empty row of a tab, header included.
	Values(ctx context.Context, title string) ([][]string, error)
	// AppendRows appends rows after the last non-empty row of a tab.
	AppendRows(ctx context.Context, title string, rows [][]string) error
}

// Option configures the client.
type Option func(*clientConfig)

type clientConfig struct {
	credentialsFile string
	endpoint        string
	httpClient      *http.Client
}

// WithCredentialsFile authenticates with a service account key file.
func WithCredentialsFile(path string) Option {
	return func(c *clientConfig) { c.credentialsFile = path }
}

// WithBaseURL overrides the API endpoint.
func WithBaseURL(url string) Option {
	return func(c *clientConfig) { c.endpoint = url }
}

// WithHTTPClient sends requests through hc without adding authentication.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *clientConfig) { c.httpClient = hc }
}

type apiClient struct {
	svc           *gsheets.Service
	spreadsheetID string
}

// NewClient creates a Sheets client bound to one spreadsheet.
func NewClient(ctx context.Context, spreadsheetID string, opts ...Option) (Client, error) {
	if spreadsheetID == "" {
		return nil, eris.New("sheets: spreadsheet id is required")
	}

	var cfg clientConfig
	for _, o := range opts {
		o(&cfg)
	}

	var copts []option.ClientOption
	switch {
	case cfg.httpClient != nil:
		copts = append(copts, option.WithHTTPClient(cfg.httpClient), option.WithoutAuthentication())
	case cfg.credentialsFile != "":
		copts = append(copts, option.WithCredentialsFile(cfg.credentialsFile), option.WithScopes(Scopes...))
	default:
		copts = append(copts, option.WithScopes(Scopes...))
	}
	if cfg.endpoint != "" {
		copts = append(copts, option.WithEndpoint(strings.TrimRight(cfg.endpoint, "/")+"/"))
	}

	svc, err := gsheets.NewService(ctx, copts...)
	if err != nil {
		return nil, eris.Wrap(err, "sheets: create service")
	}
	return &apiClient{svc: svc, spreadsheetID: spreadsheetID}, nil
}

func (c *apiClient) SheetTitles(ctx context.Context) ([]string, error) {
	ss, err := c.svc.Spreadsheets.Get(c.spreadsheetID).
		Fields("sheets.properties.title").
		Context(ctx).
		Do()
	if err != nil {
		return nil, eris.Wrap(err, "sheets: get spreadsheet")
	}

	titles := make([]string, 0, len(ss.Sheets))
	for _, s := range ss.Sheets {
		if s.Properties != nil {
			titles = append(titles, s.Properties.Title)
		}
	}
	return titles, nil
}

func (c *apiClient) AddSheet(ctx context.Context, title string, rows, cols int) error {
	props := &gsheets.SheetProperties{Title: title}
	if rows > 0 && cols > 0 {
		props.GridProperties = &gsheets.GridProperties{
			RowCount:    int64(rows),
			ColumnCount: int64(cols),
		}
	}

	req := &gsheets.BatchUpdateSpreadsheetRequest{
		Requests: []*gsheets.Request{{AddSheet: &gsheets.AddSheetRequest{Properties: props}}},
	}
	if _, err := c.svc.Spreadsheets.BatchUpdate(c.spreadsheetID, req).Context(ctx).Do(); err != nil {
		return eris.Wrapf(err, "sheets: add sheet %q", title)
	}
	return nil
}

func (c *apiClient) Values(ctx context.Context, title string) ([][]string, error) {
	vr, err := c.svc.Spreadsheets.Values.Get(c.spreadsheetID, quoteTitle(title)).
		Context(ctx).
		Do()
	if err != nil {
		return nil, eris.Wrapf(err, "sheets: read %q", title)
	}

	out := make([][]string, len(vr.Values))
	for i, row := range vr.Values {
		cells := make([]string, len(row))
		for j, v := range row {
			cells[j] = fmt.Sprint(v)
		}
		out[i] = cells
	}
	return out, nil
}

func (c *apiClient) AppendRows(ctx context.Context, title string, rows [][]string) error {
	if len(rows) == 0 {
		return nil
	}

	values := make([][]any, len(rows))
	for i, row := range rows {
		cells := make([]any, len(row))
		for j, v := range row {
			cells[j] = v
		}
		values[i] = cells
	}

	_, err := c.svc.Spreadsheets.Values.Append(c.spreadsheetID, quoteTitle(title)+"!A1", &gsheets.ValueRange{Values: values}).
		ValueInputOption("RAW").
		InsertDataOption("INSERT_ROWS").
		Context(ctx).
		Do()
	if err != nil {
		return eris.Wrapf(err, "sheets: append %d rows to %q", len(rows), title)
	}
	return nil
}

// quoteTitle renders a tab title as an A1 range reference.
func quoteTitle(title string) string {
	return "'" + strings.ReplaceAll(title, "'", "''") + "'"
}

// StatusCode returns the HTTP status carried by an API error, or 0.
func StatusCode(err error) int {
	var gerr *googleapi.Error
	if errors.As(err, &gerr) {
		return gerr.Code
	}
	return 0
}

package pipeline

import (
	"context"
	"fmt"
	"slices"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/jobscout/internal/model"
	"github.com/sells-group/jobscout/internal/store"
)

// SheetCapacity is the row capacity hint used when a table is created.
const SheetCapacity = 1000

// PersistOptions names the destination tables.
type PersistOptions struct {
	JobsSheet           string
	DecisionMakersSheet string
}

// Persister appends records to the store, skipping any whose natural key is
// already present.
type Persister struct {
	store store.Store
	opts  PersistOptions
}

// NewPersister creates a Persister. Empty sheet names fall back to the
// default table names.
func NewPersister(st store.Store, opts PersistOptions) *Persister {
	if opts.JobsSheet == "" {
		opts.JobsSheet = model.JobsSheet
	}
	if opts.DecisionMakersSheet == "" {
		opts.DecisionMakersSheet = model.DecisionMakersSheet
	}
	return &Persister{store: st, opts: opts}
}

// SaveJobs appends listings whose link is not yet stored and returns how
// many rows were written.
func (p *Persister) SaveJobs(ctx context.Context, jobs []model.JobListing) (int, error) {
	rows := make([]keyedRow, len(jobs))
	for i, j := range jobs {
		rows[i] = keyedRow{key: j.Key(), cells: j.Row()}
	}
	return p.save(ctx, table{
		name:    p.opts.JobsSheet,
		columns: model.JobColumns,
		keys:    []string{model.JobLinkColumn, model.LegacyJobLinkColumn},
		noun:    "jobs",
	}, rows)
}

// SaveDecisionMakers appends decision makers whose profile URL is not yet
// stored and returns how many rows were written.
func (p *Persister) SaveDecisionMakers(ctx context.Context, dms []model.DecisionMaker) (int, error) {
	rows := make([]keyedRow, len(dms))
	for i, d := range dms {
		rows[i] = keyedRow{key: d.Key(), cells: d.Row()}
	}
	return p.save(ctx, table{
		name:    p.opts.DecisionMakersSheet,
		columns: model.DecisionMakerColumns,
		keys:    []string{model.LinkedInURLColumn},
		noun:    "decision makers",
	}, rows)
}

// ReadJobs returns every stored job listing.
func (p *Persister) ReadJobs(ctx context.Context) ([]model.JobListing, error) {
	if err := p.store.EnsureSheet(ctx, p.opts.JobsSheet, model.JobColumns, SheetCapacity); err != nil {
		return nil, eris.Wrap(err, "persist: ensure jobs sheet")
	}
	t, err := p.store.ReadAll(ctx, p.opts.JobsSheet)
	if err != nil {
		return nil, eris.Wrap(err, "persist: read jobs")
	}
	header := t.Header
	if len(header) == 0 {
		header = model.JobColumns
	}
	jobs := make([]model.JobListing, 0, len(t.Rows))
	for _, r := range t.Rows {
		jobs = append(jobs, model.JobListingFromRow(header, r))
	}
	return jobs, nil
}

type table struct {
	name    string
	columns []string
	// keys lists the accepted key column names, preferred first.
	keys []string
	noun string
}

type keyedRow struct {
	key   string
	cells []string
}

func (p *Persister) save(ctx context.Context, t table, rows []keyedRow) (int, error) {
	log := zap.L().With(zap.String("stage", "persist"), zap.String("sheet", t.name))

	if err := p.store.EnsureSheet(ctx, t.name, t.columns, SheetCapacity); err != nil {
		return 0, eris.Wrapf(err, "persist: ensure sheet %q", t.name)
	}

	existing, err := p.store.ReadAll(ctx, t.name)
	if err != nil {
		return 0, eris.Wrapf(err, "persist: read %q", t.name)
	}

	header := existing.Header
	keyCol := -1
	for _, k := range t.keys {
		if keyCol = model.ColumnIndex(header, k); keyCol >= 0 {
			break
		}
	}
	if keyCol < 0 && len(header) > 0 {
		return 0, eris.Errorf("persist: sheet %q has no %q column", t.name, t.keys[0])
	}

	seen := make(map[string]bool, len(existing.Rows)+len(rows))
	if keyCol >= 0 {
		for _, r := range existing.Rows {
			if keyCol < len(r) {
				if k := model.CanonicalURL(r[keyCol]); k != "" {
					seen[k] = true
				}
			}
		}
	}

	var fresh [][]string
	for _, r := range rows {
		if r.key == "" || seen[r.key] {
			continue
		}
		seen[r.key] = true
		fresh = append(fresh, r.cells)
	}

	if len(fresh) == 0 {
		log.Info(fmt.Sprintf("No new %s to add.", t.noun))
		return 0, nil
	}

	if len(header) > 0 && !slices.Equal(header, t.columns) {
		fresh = arrange(fresh, t, header, keyCol)
		log.Debug("persist: writing rows in existing column order", zap.Strings("header", header))
	}

	out := fresh
	if len(header) == 0 {
		// A blank sheet gets its header written ahead of the first rows.
		out = append([][]string{t.columns}, fresh...)
	}
	if err := p.store.Append(ctx, t.name, out); err != nil {
		return 0, eris.Wrapf(err, "persist: append to %q", t.name)
	}

	log.Info(fmt.Sprintf("Added %d new %s.", len(fresh), t.noun))
	return len(fresh), nil
}

// arrange reorders cells built in t.columns order to match an existing
// header. The key column matches under any accepted name. Header columns
// the record does not carry are left blank.
func arrange(rows [][]string, t table, header []string, keyCol int) [][]string {
	src := make([]int, len(header))
	for i, h := range header {
		if i == keyCol {
			h = t.keys[0]
		}
		src[i] = model.ColumnIndex(t.columns, h)
	}

	out := make([][]string, len(rows))
	for r, cells := range rows {
		row := make([]string, len(header))
		for i, j := range src {
			if j >= 0 && j < len(cells) {
				row[i] = cells[j]
			}
		}
		out[r] = row
	}
	return out
}

package pipeline

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/multierr"
	"go.uber.org/zap"

	"github.com/sells-group/jobscout/internal/model"
)

// Options configures a Pipeline.
type Options struct {
	Phrases      []string
	Location     string
	TopCompanies int
}

// RunOptions adjusts a single run.
type RunOptions struct {
	// TopN overrides Options.TopCompanies when positive.
	TopN int
	// DryRun skips both persistence stages.
	DryRun bool
}

// Pipeline runs search, ranking, discovery and persistence in sequence.
type Pipeline struct {
	search    *JobSearch
	discovery *Discovery
	persister *Persister
	opts      Options
}

// New creates a Pipeline from its stages.
func New(search *JobSearch, discovery *Discovery, persister *Persister, opts Options) *Pipeline {
	if len(opts.Phrases) == 0 {
		opts.Phrases = DefaultPhrases
	}
	if opts.TopCompanies <= 0 {
		opts.TopCompanies = 5
	}
	return &Pipeline{
		search:    search,
		discovery: discovery,
		persister: persister,
		opts:      opts,
	}
}

// Run executes one pass of the pipeline. Scraping stages never fail the
// run. Persistence errors from the two tables are combined and returned
// with the partial result.
func (p *Pipeline) Run(ctx context.Context, ro RunOptions) (*model.RunResult, error) {
	result := &model.RunResult{
		RunID:     uuid.New().String(),
		StartedAt: time.Now().UTC(),
		DryRun:    ro.DryRun,
	}
	log := zap.L().With(zap.String("run_id", result.RunID))
	log.Info("pipeline: starting run", zap.Int("phrases", len(p.opts.Phrases)), zap.Bool("dry_run", ro.DryRun))

	track := func(name string, fn func() (int, error)) error {
		start := time.Now()
		items, err := fn()
		stage := model.StageResult{
			Name:     name,
			Status:   model.StageStatusComplete,
			Duration: time.Since(start).Milliseconds(),
			Items:    items,
		}
		if err != nil {
			stage.Status = model.StageStatusFailed
			stage.Error = err.Error()
			log.Error("pipeline: stage failed",
				zap.String("stage", name),
				zap.Int64("duration_ms", stage.Duration),
				zap.Error(err),
			)
		} else {
			log.Info("pipeline: stage complete",
				zap.String("stage", name),
				zap.Int64("duration_ms", stage.Duration),
				zap.Int("items", items),
			)
		}
		result.Stages = append(result.Stages, stage)
		return err
	}

	var listings []model.JobListing
	_ = track("search", func() (int, error) {
		listings = p.search.Search(ctx, p.opts.Phrases, p.opts.Location)
		return len(listings), nil
	})
	result.PhrasesSearched = min(len(p.opts.Phrases), MaxPhrases)
	result.ListingsFound = len(listings)

	topN := p.opts.TopCompanies
	if ro.TopN > 0 {
		topN = ro.TopN
	}
	_ = track("rank", func() (int, error) {
		result.TopCompanies = TopCompanies(RankCompanies(listings), topN)
		return len(result.TopCompanies), nil
	})

	var dms []model.DecisionMaker
	_ = track("discover", func() (int, error) {
		for _, company := range result.TopCompanies {
			dms = append(dms, p.discovery.Discover(ctx, company)...)
		}
		return len(dms), nil
	})
	result.DecisionMakersFound = len(dms)

	var errs error
	if ro.DryRun {
		result.Stages = append(result.Stages,
			model.StageResult{Name: "persist_jobs", Status: model.StageStatusSkipped},
			model.StageResult{Name: "persist_decision_makers", Status: model.StageStatusSkipped},
		)
	} else {
		errs = multierr.Append(errs, track("persist_jobs", func() (int, error) {
			n, err := p.persister.SaveJobs(ctx, listings)
			result.JobsAdded = n
			return n, err
		}))
		errs = multierr.Append(errs, track("persist_decision_makers", func() (int, error) {
			n, err := p.persister.SaveDecisionMakers(ctx, dms)
			result.DecisionMakersAdded = n
			return n, err
		}))
	}

	result.Duration = time.Since(result.StartedAt).Milliseconds()
	log.Info("pipeline: run complete",
		zap.Int("listings", result.ListingsFound),
		zap.Strings("top_companies", result.TopCompanies),
		zap.Int("decision_makers", result.DecisionMakersFound),
		zap.Int("jobs_added", result.JobsAdded),
		zap.Int("decision_makers_added", result.DecisionMakersAdded),
		zap.Int64("duration_ms", result.Duration),
	)
	return result, errs
}

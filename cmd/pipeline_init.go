package main

import (
	"context"
	"time"

	"github.com/sells-group/jobscout/internal/config"
	"github.com/sells-group/jobscout/internal/extract"
	"github.com/sells-group/jobscout/internal/fetcher"
	"github.com/sells-group/jobscout/internal/pipeline"
	"github.com/sells-group/jobscout/internal/store"
)

// pipelineEnv holds the store, the stages and the assembled pipeline used
// by the run/search/discover/rank commands.
type pipelineEnv struct {
	Store     store.Store // nil when the command does not persist
	Fetcher   *fetcher.HTTPFetcher
	Search    *pipeline.JobSearch
	Discovery *pipeline.Discovery
	Persister *pipeline.Persister
	Pipeline  *pipeline.Pipeline
}

// Close releases resources held by the pipeline environment.
func (pe *pipelineEnv) Close() {
	if pe.Store != nil {
		_ = pe.Store.Close()
	}
}

// initPipeline validates config, opens the store when persist is set and
// builds every stage. Store setup failures surface here, before any page is
// fetched. Callers should defer env.Close().
func initPipeline(ctx context.Context, persist bool) (*pipelineEnv, error) {
	if err := cfg.Validate(persist); err != nil {
		return nil, err
	}

	env := &pipelineEnv{}
	if persist {
		st, err := initStore(ctx)
		if err != nil {
			return nil, err
		}
		env.Store = st
		env.Persister = pipeline.NewPersister(st, pipeline.PersistOptions{
			JobsSheet:           cfg.Sheets.JobsSheet,
			DecisionMakersSheet: cfg.Sheets.DecisionMakersSheet,
		})
	}

	env.Fetcher = fetcher.NewHTTPFetcher(fetchOptions(cfg.Fetch))

	env.Search = pipeline.NewJobSearch(env.Fetcher, extract.LinkedInJobs{}, pipeline.SearchOptions{
		BaseURL:     cfg.Search.BaseURL,
		Source:      cfg.Search.Source,
		MaxAttempts: cfg.Search.MaxAttempts,
		Delay:       config.Millis(cfg.Search.DelayMs),
	})

	news := pipeline.NewNewsEnricher(env.Fetcher, extract.GoogleNewsArticles{}, pipeline.NewsOptions{
		SearchURL:   cfg.News.SearchURL,
		MaxAttempts: cfg.News.MaxAttempts,
		MaxArticles: cfg.News.MaxArticles,
	})

	env.Discovery = pipeline.NewDiscovery(env.Fetcher, extract.SearchResultProfiles{}, extract.LinkedInProfile{}, news, pipeline.DiscoveryOptions{
		Titles:       cfg.Discovery.Titles,
		SearchURL:    cfg.Discovery.SearchURL,
		MaxProfiles:  cfg.Discovery.MaxProfiles,
		MaxAttempts:  cfg.Discovery.MaxAttempts,
		SearchDelay:  config.Millis(cfg.Discovery.SearchDelayMs),
		ProfileDelay: config.Millis(cfg.Discovery.ProfileDelayMs),
	})

	env.Pipeline = pipeline.New(env.Search, env.Discovery, env.Persister, pipeline.Options{
		Phrases:      cfg.Search.Phrases,
		Location:     cfg.Search.Location,
		TopCompanies: cfg.Pipeline.TopCompanies,
	})

	return env, nil
}

func fetchOptions(fc config.FetchConfig) fetcher.Options {
	return fetcher.Options{
		UserAgent:           fc.UserAgent,
		Timeout:             time.Duration(fc.TimeoutSecs) * time.Second,
		MaxAttempts:         fc.MaxAttempts,
		BackoffUnit:         config.Millis(fc.BackoffUnitMs),
		HostInterval:        config.Millis(fc.HostIntervalMs),
		MaxBodyBytes:        fc.MaxBodyBytes,
		BreakerThreshold:    fc.BreakerThreshold,
		BreakerResetSeconds: fc.BreakerResetSeconds,
	}
}

// searchPhrases returns the configured phrases, or the built-in list.
func searchPhrases() []string {
	if len(cfg.Search.Phrases) > 0 {
		return cfg.Search.Phrases
	}
	return pipeline.DefaultPhrases
}

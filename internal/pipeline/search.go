package pipeline

import (
	"context"
	"net/url"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/jobscout/internal/extract"
	"github.com/sells-group/jobscout/internal/fetcher"
	"github.com/sells-group/jobscout/internal/model"
	"github.com/sells-group/jobscout/internal/resilience"
)

// MaxPhrases is the most search phrases a single run will query.
const MaxPhrases = 10

// DefaultPhrases are the topical searches run when none are configured.
var DefaultPhrases = []string{
	"AI Engineer",
	"Machine Learning Engineer",
	"Generative AI",
	"AI Governance",
	"AI Compliance",
	"Compliance Officer",
	"Regulatory Compliance",
	"Risk and Compliance",
	"MLOps Engineer",
	"Data Scientist",
}

// SearchOptions configures the job search stage.
type SearchOptions struct {
	// BaseURL is the job search endpoint. keywords and location are added
	// as query parameters.
	BaseURL     string
	Source      string
	MaxAttempts int
	Delay       time.Duration
}

// JobSearch queries the job board once per phrase and turns result cards
// into listings.
type JobSearch struct {
	fetcher   fetcher.Fetcher
	extractor extract.JobExtractor
	opts      SearchOptions
	sleep     resilience.Sleeper
	now       func() time.Time
}

// NewJobSearch creates a JobSearch stage.
func NewJobSearch(f fetcher.Fetcher, x extract.JobExtractor, opts SearchOptions) *JobSearch {
	if opts.MaxAttempts <= 0 {
		opts.MaxAttempts = 1
	}
	return &JobSearch{
		fetcher:   f,
		extractor: x,
		opts:      opts,
		sleep:     resilience.Sleep,
		now:       time.Now,
	}
}

// Search runs every phrase against the job board and returns all listings
// found, in phrase order. A phrase that fails is logged and skipped. An
// empty result is not an error.
func (s *JobSearch) Search(ctx context.Context, phrases []string, location string) []model.JobListing {
	log := zap.L().With(zap.String("stage", "search"))

	if len(phrases) > MaxPhrases {
		log.Warn("search: too many phrases, dropping extras",
			zap.Int("max", MaxPhrases),
			zap.Strings("dropped", phrases[MaxPhrases:]),
		)
		phrases = phrases[:MaxPhrases]
	}

	var listings []model.JobListing
	for i, phrase := range phrases {
		if i > 0 {
			pause(ctx, s.sleep, s.opts.Delay)
		}

		found, err := isolate(func() ([]model.JobListing, error) {
			return s.searchPhrase(ctx, phrase, location)
		})
		if err != nil {
			log.Error("search: phrase failed", zap.String("phrase", phrase), zap.Error(err))
			continue
		}

		log.Info("search: phrase complete", zap.String("phrase", phrase), zap.Int("listings", len(found)))
		listings = append(listings, found...)
	}
	return listings
}

func (s *JobSearch) searchPhrase(ctx context.Context, phrase, location string) ([]model.JobListing, error) {
	searchURL, err := s.searchURL(phrase, location)
	if err != nil {
		return nil, err
	}

	page := s.fetcher.Fetch(ctx, searchURL, s.opts.MaxAttempts)
	if page == "" {
		zap.L().Warn("search: no results page", zap.String("phrase", phrase), zap.String("url", searchURL))
		return nil, nil
	}

	ts := model.Timestamp(s.now())
	var listings []model.JobListing
	for _, p := range s.extractor.Jobs(page) {
		link := model.CanonicalURL(p.Link)
		if link == "" {
			zap.L().Debug("search: posting without link dropped", zap.String("title", p.Title))
			continue
		}
		listings = append(listings, model.JobListing{
			Timestamp: ts,
			Company:   p.Company,
			Title:     p.Title,
			Location:  p.Location,
			Link:      link,
			Source:    s.opts.Source,
			Category:  model.Classify(p.Title + " " + phrase),
		})
	}
	return listings, nil
}

func (s *JobSearch) searchURL(phrase, location string) (string, error) {
	u, err := url.Parse(s.opts.BaseURL)
	if err != nil {
		return "", eris.Wrap(err, "search: parse base url")
	}
	q := u.Query()
	q.Set("keywords", phrase)
	if location != "" {
		q.Set("location", location)
	}
	u.RawQuery = q.Encode()
	return u.String(), nil
}

package pipeline

import (
	"context"
	"fmt"
	"net/url"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/jobscout/internal/extract"
	"github.com/sells-group/jobscout/internal/fetcher"
	"github.com/sells-group/jobscout/internal/model"
	"github.com/sells-group/jobscout/internal/resilience"
)

// DefaultTitles are the executive titles searched at each company.
var DefaultTitles = []string{"CTO", "VP Engineering", "Head of R&D"}

// DiscoveryOptions configures decision-maker discovery.
type DiscoveryOptions struct {
	Titles []string
	// SearchURL is the people search endpoint; the query goes in the q
	// parameter.
	SearchURL    string
	MaxProfiles  int
	MaxAttempts  int
	SearchDelay  time.Duration
	ProfileDelay time.Duration
}

// Discovery finds executives at a company through public profile search.
type Discovery struct {
	fetcher  fetcher.Fetcher
	links    extract.ProfileLinkExtractor
	profiles extract.ProfileExtractor
	news     *NewsEnricher
	opts     DiscoveryOptions
	sleep    resilience.Sleeper
	now      func() time.Time
}

// NewDiscovery creates a Discovery stage. news may be nil to skip
// enrichment.
func NewDiscovery(f fetcher.Fetcher, links extract.ProfileLinkExtractor, profiles extract.ProfileExtractor, news *NewsEnricher, opts DiscoveryOptions) *Discovery {
	if len(opts.Titles) == 0 {
		opts.Titles = DefaultTitles
	}
	if opts.MaxProfiles <= 0 {
		opts.MaxProfiles = 2
	}
	return &Discovery{
		fetcher:  f,
		links:    links,
		profiles: profiles,
		news:     news,
		opts:     opts,
		sleep:    resilience.Sleep,
		now:      time.Now,
	}
}

// Discover returns the decision makers found at company. Each title and
// each profile is handled independently; a failure is logged and skipped.
// Zero results is a valid outcome.
func (d *Discovery) Discover(ctx context.Context, company string) []model.DecisionMaker {
	log := zap.L().With(zap.String("stage", "discover"), zap.String("company", company))

	seen := make(map[string]bool)
	var found []model.DecisionMaker
	for _, title := range d.opts.Titles {
		links, err := isolate(func() ([]string, error) {
			return d.profileLinks(ctx, company, title)
		})
		if err != nil {
			log.Error("discover: title search failed", zap.String("title", title), zap.Error(err))
			continue
		}

		for _, link := range links {
			key := model.CanonicalURL(link)
			if seen[key] {
				log.Debug("discover: profile already processed", zap.String("profile", key))
				continue
			}
			seen[key] = true

			dm, err := isolate(func() (*model.DecisionMaker, error) {
				return d.visitProfile(ctx, company, key)
			})
			if err != nil {
				log.Error("discover: profile failed", zap.String("profile", key), zap.Error(err))
				continue
			}
			if dm != nil {
				found = append(found, *dm)
			}
		}
	}

	log.Info("discover: company complete", zap.Int("decision_makers", len(found)))
	return found
}

// profileLinks searches for title at company and returns at most
// MaxProfiles profile URLs.
func (d *Discovery) profileLinks(ctx context.Context, company, title string) ([]string, error) {
	pause(ctx, d.sleep, d.opts.SearchDelay)

	searchURL, err := d.searchURL(fmt.Sprintf("site:linkedin.com/in %q %q", title, company))
	if err != nil {
		return nil, err
	}

	page := d.fetcher.Fetch(ctx, searchURL, d.opts.MaxAttempts)
	if page == "" {
		zap.L().Debug("discover: no search results page", zap.String("company", company), zap.String("title", title))
		return nil, nil
	}

	links := d.links.ProfileLinks(page)
	if len(links) > d.opts.MaxProfiles {
		links = links[:d.opts.MaxProfiles]
	}
	return links, nil
}

// visitProfile fetches one profile. It returns nil when the page is
// unavailable or lacks a name or title.
func (d *Discovery) visitProfile(ctx context.Context, company, profileURL string) (*model.DecisionMaker, error) {
	pause(ctx, d.sleep, d.opts.ProfileDelay)

	page := d.fetcher.Fetch(ctx, profileURL, d.opts.MaxAttempts)
	if page == "" {
		zap.L().Debug("discover: profile unavailable", zap.String("profile", profileURL))
		return nil, nil
	}

	p := d.profiles.Profile(page)
	if !p.Complete() {
		zap.L().Debug("discover: profile missing name or title",
			zap.String("profile", profileURL),
			zap.Bool("has_name", p.Name != ""),
			zap.Bool("has_title", p.Title != ""),
		)
		return nil, nil
	}

	dm := &model.DecisionMaker{
		Name:        p.Name,
		Title:       p.Title,
		Company:     company,
		LinkedInURL: profileURL,
	}
	if d.news != nil {
		dm.NewsMentions, dm.PeopleMentioned = d.news.Enrich(ctx, company, p.Name)
	}
	dm.Timestamp = model.Timestamp(d.now())
	return dm, nil
}

func (d *Discovery) searchURL(query string) (string, error) {
	u, err := url.Parse(d.opts.SearchURL)
	if err != nil {
		return "", eris.Wrap(err, "discover: parse search url")
	}
	q := u.Query()
	q.Set("q", query)
	u.RawQuery = q.Encode()
	return u.String(), nil
}

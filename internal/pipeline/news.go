package pipeline

import (
	"context"
	"net/url"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/jobscout/internal/extract"
	"github.com/sells-group/jobscout/internal/fetcher"
	"github.com/sells-group/jobscout/internal/model"
)

// NewsOptions configures news enrichment.
type NewsOptions struct {
	// SearchURL is the news search endpoint; the query goes in the q
	// parameter.
	SearchURL   string
	MaxAttempts int
	MaxArticles int
}

// NewsEnricher looks up recent news about a person at a company.
type NewsEnricher struct {
	fetcher   fetcher.Fetcher
	extractor extract.NewsExtractor
	opts      NewsOptions
}

// NewNewsEnricher creates a NewsEnricher. Unset attempt and article limits
// default to 1 and 2.
func NewNewsEnricher(f fetcher.Fetcher, x extract.NewsExtractor, opts NewsOptions) *NewsEnricher {
	if opts.MaxAttempts <= 0 {
		opts.MaxAttempts = 1
	}
	if opts.MaxArticles <= 0 {
		opts.MaxArticles = 2
	}
	return &NewsEnricher{fetcher: f, extractor: x, opts: opts}
}

// Enrich returns up to MaxArticles news mentions for person at company and
// the person names appearing in those article titles. A failed or empty
// search yields nil, nil.
func (n *NewsEnricher) Enrich(ctx context.Context, company, person string) ([]model.NewsMention, []string) {
	log := zap.L().With(zap.String("stage", "news"), zap.String("company", company), zap.String("person", person))

	searchURL, err := n.searchURL(company + " " + person + " news")
	if err != nil {
		log.Error("news: build search url", zap.Error(err))
		return nil, nil
	}

	page := n.fetcher.Fetch(ctx, searchURL, n.opts.MaxAttempts)
	if page == "" {
		log.Debug("news: no results page")
		return nil, nil
	}

	articles := n.extractor.Articles(page, searchURL)
	if len(articles) > n.opts.MaxArticles {
		articles = articles[:n.opts.MaxArticles]
	}
	if len(articles) == 0 {
		return nil, nil
	}

	mentions := make([]model.NewsMention, 0, len(articles))
	seen := make(map[string]bool)
	var people []string
	for _, a := range articles {
		mentions = append(mentions, model.NewsMention{Title: a.Title, Link: a.Link})
		for _, name := range extract.PersonNames(a.Title) {
			if !seen[name] {
				seen[name] = true
				people = append(people, name)
			}
		}
	}

	log.Debug("news: enriched", zap.Int("articles", len(mentions)), zap.Int("people", len(people)))
	return mentions, people
}

func (n *NewsEnricher) searchURL(query string) (string, error) {
	u, err := url.Parse(n.opts.SearchURL)
	if err != nil {
		return "", eris.Wrap(err, "news: parse search url")
	}
	q := u.Query()
	q.Set("q", query)
	u.RawQuery = q.Encode()
	return u.String(), nil
}

package model

import (
	"sort"
	"strings"
)

// DecisionMakersSheet is the default table name for decision makers.
const DecisionMakersSheet = "Decision Makers"

// LinkedInURLColumn is the natural key column of the Decision Makers table.
const LinkedInURLColumn = "LinkedIn URL"

// DecisionMakerColumns is the header row of the Decision Makers table.
var DecisionMakerColumns = []string{
	"Timestamp",
	"Name",
	"Title",
	"Company",
	LinkedInURLColumn,
	"News Mentions",
	"People Mentioned",
}

// NewsMention is one article that mentions a decision maker.
type NewsMention struct {
	Title string `json:"title"`
	Link  string `json:"link"`
}

// DecisionMaker is an executive found at a target employer. LinkedInURL is
// the natural key.
type DecisionMaker struct {
	Name            string        `json:"name"`
	Title           string        `json:"title"`
	Company         string        `json:"company"`
	LinkedInURL     string        `json:"linkedin_url"`
	NewsMentions    []NewsMention `json:"news_mentions"`
	PeopleMentioned []string      `json:"people_mentioned"`
	Timestamp       string        `json:"timestamp"`
}

// Key returns the decision maker's natural key.
func (d DecisionMaker) Key() string {
	return CanonicalURL(d.LinkedInURL)
}

// Row renders the decision maker in DecisionMakerColumns order. People are
// sorted so equal sets render identically.
func (d DecisionMaker) Row() []string {
	mentions := make([]string, 0, len(d.NewsMentions))
	for _, m := range d.NewsMentions {
		mentions = append(mentions, m.Title+": "+m.Link)
	}

	people := append([]string(nil), d.PeopleMentioned...)
	sort.Strings(people)

	return []string{
		d.Timestamp,
		d.Name,
		d.Title,
		d.Company,
		d.LinkedInURL,
		strings.Join(mentions, "\n"),
		strings.Join(people, "\n"),
	}
}

// decisionMakerFromRow reads a decision maker back from a table row.
func decisionMakerFromRow(header, row []string) DecisionMaker {
	cell := rowReader(header, row)

	var mentions []NewsMention
	for _, line := range splitLines(cell("News Mentions")) {
		// Titles may contain ": " themselves; links never do.
		i := strings.LastIndex(line, ": ")
		if i < 0 {
			mentions = append(mentions, NewsMention{Title: line})
			continue
		}
		mentions = append(mentions, NewsMention{Title: line[:i], Link: line[i+2:]})
	}

	return DecisionMaker{
		Timestamp:       cell("Timestamp"),
		Name:            cell("Name"),
		Title:           cell("Title"),
		Company:         cell("Company"),
		LinkedInURL:     cell(LinkedInURLColumn),
		NewsMentions:    mentions,
		PeopleMentioned: splitLines(cell("People Mentioned")),
	}
}

func splitLines(s string) []string {
	var out []string
	for _, line := range strings.Split(s, "\n") {
		if line = strings.TrimSpace(line); line != "" {
			out = append(out, line)
		}
	}
	return out
}

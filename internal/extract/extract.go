// Package extract pulls typed fields out of raw HTML pages. Each upstream
// page shape has its own extractor behind a small interface. A pattern that
// does not match yields empty fields, never an error.
package extract

import (
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// JobPosting is one job card on a search results page. Every field may be
// empty.
type JobPosting struct {
	Title    string
	Company  string
	Location string
	Link     string
}

// Profile holds the fields read from a public profile page.
type Profile struct {
	Name  string
	Title string
}

// Complete reports whether both name and title were found.
func (p Profile) Complete() bool {
	return p.Name != "" && p.Title != ""
}

// Article is one news search result.
type Article struct {
	Title string
	Link  string
}

// JobExtractor reads job postings from a job search results page.
type JobExtractor interface {
	Jobs(page string) []JobPosting
}

// ProfileLinkExtractor reads profile URLs from a people search results page.
type ProfileLinkExtractor interface {
	ProfileLinks(page string) []string
}

// ProfileExtractor reads name and title from a profile page.
type ProfileExtractor interface {
	Profile(page string) Profile
}

// NewsExtractor reads articles from a news search page. base is the URL the
// page was fetched from and is used to absolutize relative links.
type NewsExtractor interface {
	Articles(page, base string) []Article
}

func parse(page string) *goquery.Document {
	if strings.TrimSpace(page) == "" {
		return nil
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(page))
	if err != nil {
		return nil
	}
	return doc
}

func cleanText(s string) string {
	s = strings.ReplaceAll(s, "\u00a0", " ")
	return strings.Join(strings.Fields(s), " ")
}

// firstText returns the first non-empty cleaned text found, trying the
// selectors in order.
func firstText(sel *goquery.Selection, selectors ...string) string {
	var text string
	for _, s := range selectors {
		sel.Find(s).EachWithBreak(func(_ int, m *goquery.Selection) bool {
			text = cleanText(m.Text())
			return text == ""
		})
		if text != "" {
			return text
		}
	}
	return ""
}

// absolutize resolves href against the scheme and host of base. Paths are
// resolved from the host root, so "./articles/x" and "/articles/x" both
// land on "<host>/articles/x".
func absolutize(href, base string) string {
	href = strings.TrimSpace(href)
	if href == "" {
		return ""
	}
	ref, err := url.Parse(href)
	if err != nil {
		return ""
	}
	if ref.IsAbs() {
		return ref.String()
	}
	b, err := url.Parse(base)
	if err != nil || b.Host == "" {
		return ""
	}
	root := &url.URL{Scheme: b.Scheme, Host: b.Host, Path: "/"}
	if root.Scheme == "" {
		root.Scheme = "https"
	}
	return root.ResolveReference(ref).String()
}

package extract

import (
	"net/url"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/sells-group/jobscout/internal/model"
)

var reProfileURL = regexp.MustCompile(`https?://(?:[a-z]{2,3}\.)?linkedin\.com/in/[A-Za-z0-9\-_%]+/?`)

// SearchResultProfiles reads LinkedIn profile links from a web search
// results page. Google (/url?q=) and DuckDuckGo (uddg=) redirect wrappers are
// unwrapped.
type SearchResultProfiles struct{}

// ProfileLinks returns canonical profile URLs, deduplicated, in page order.
func (SearchResultProfiles) ProfileLinks(page string) []string {
	doc := parse(page)
	if doc == nil {
		return nil
	}

	seen := make(map[string]bool)
	var out []string
	add := func(raw string) {
		if !isProfileURL(raw) {
			return
		}
		c := model.CanonicalURL(raw)
		if seen[c] {
			return
		}
		seen[c] = true
		out = append(out, c)
	}

	doc.Find("a[href]").Each(func(_ int, a *goquery.Selection) {
		href, _ := a.Attr("href")
		add(unwrapRedirect(href))
	})

	if len(out) == 0 {
		for _, m := range reProfileURL.FindAllString(page, -1) {
			add(m)
		}
	}
	return out
}

func isProfileURL(raw string) bool {
	u, err := url.Parse(raw)
	if err != nil {
		return false
	}
	host := strings.ToLower(u.Host)
	if host != "linkedin.com" && !strings.HasSuffix(host, ".linkedin.com") {
		return false
	}
	slug, ok := strings.CutPrefix(u.Path, "/in/")
	return ok && strings.Trim(slug, "/") != ""
}

func unwrapRedirect(href string) string {
	href = strings.TrimSpace(href)
	if strings.HasPrefix(href, "//") {
		href = "https:" + href
	}
	u, err := url.Parse(href)
	if err != nil {
		return ""
	}

	if u.Path == "/url" {
		for _, key := range []string{"q", "url"} {
			if v := u.Query().Get(key); v != "" {
				return v
			}
		}
	}
	if v := u.Query().Get("uddg"); v != "" {
		return v
	}
	return href
}

// LinkedInProfile reads name and headline from a public profile page.
type LinkedInProfile struct{}

var rejectedNames = map[string]bool{
	"linkedin":      true,
	"sign in":       true,
	"sign up":       true,
	"join linkedin": true,
	"log in":        true,
}

// Profile tries the top card, then og:title, then <title>.
func (LinkedInProfile) Profile(page string) Profile {
	doc := parse(page)
	if doc == nil {
		return Profile{}
	}

	var p Profile
	p.Name = firstText(doc.Selection, "h1.top-card-layout__title", "h1")
	p.Title = firstText(doc.Selection, "h2.top-card-layout__headline")

	if p.Name == "" || p.Title == "" {
		og, _ := doc.Find(`meta[property="og:title"]`).Attr("content")
		p = fillFromTitle(p, og)
	}
	if p.Name == "" || p.Title == "" {
		p = fillFromTitle(p, doc.Find("title").First().Text())
	}

	if rejectedNames[strings.ToLower(p.Name)] {
		p.Name = ""
	}
	return p
}

// fillFromTitle fills empty fields from "Name - Title - Company | LinkedIn".
func fillFromTitle(p Profile, title string) Profile {
	title = cleanText(title)
	if i := strings.LastIndex(title, " | "); i >= 0 {
		title = title[:i]
	}
	if title == "" {
		return p
	}

	parts := strings.Split(title, " - ")
	if p.Name == "" {
		p.Name = strings.TrimSpace(parts[0])
	}
	if p.Title == "" && len(parts) > 1 {
		p.Title = strings.TrimSpace(parts[1])
	}
	return p
}

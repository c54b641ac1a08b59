package extract

import (
	"github.com/PuerkitoBio/goquery"
)

// GoogleNewsArticles reads the article list of a news.google.com search page.
type GoogleNewsArticles struct{}

// Articles returns one entry per <article> block that has both a title and a
// link, in page order.
func (GoogleNewsArticles) Articles(page, base string) []Article {
	doc := parse(page)
	if doc == nil {
		return nil
	}

	var out []Article
	doc.Find("article").Each(func(_ int, block *goquery.Selection) {
		anchor := block.Find("a[href]").First()
		href, _ := anchor.Attr("href")

		a := Article{
			Title: firstText(block, "h3", "h4", "a.JtKRv", "a[href]"),
			Link:  absolutize(href, base),
		}
		if a.Title == "" || a.Link == "" {
			return
		}
		out = append(out, a)
	})
	return out
}

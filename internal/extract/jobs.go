package extract

import (
	"github.com/PuerkitoBio/goquery"
)

const linkedInOrigin = "https://www.linkedin.com/"

// LinkedInJobs reads the public (guest) LinkedIn job search card list.
type LinkedInJobs struct{}

// Jobs returns one posting per card, in page order.
func (LinkedInJobs) Jobs(page string) []JobPosting {
	doc := parse(page)
	if doc == nil {
		return nil
	}

	cards := doc.Find(".base-search-card, .job-search-card")
	if cards.Length() == 0 {
		cards = doc.Find("li").FilterFunction(func(_ int, li *goquery.Selection) bool {
			return li.Find("a[href*='/jobs/view/']").Length() > 0
		})
	}

	var out []JobPosting
	cards.Each(func(_ int, card *goquery.Selection) {
		p := JobPosting{
			Title:    firstText(card, ".base-search-card__title", "h3"),
			Company:  firstText(card, ".base-search-card__subtitle", "h4"),
			Location: firstText(card, ".job-search-card__location"),
		}

		link := card.Find("a.base-card__full-link").First()
		if link.Length() == 0 {
			link = card.Find("a[href*='/jobs/view/']").First()
		}
		if href, ok := link.Attr("href"); ok {
			p.Link = absolutize(href, linkedInOrigin)
		}
		if p.Title == "" {
			p.Title = cleanText(link.Text())
		}

		if p == (JobPosting{}) {
			return
		}
		out = append(out, p)
	})
	return out
}

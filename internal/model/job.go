package model

// JobsSheet is the default table name for job listings.
const JobsSheet = "Jobs"

// JobLinkColumn is the natural key column of the Jobs table.
const JobLinkColumn = "Link"

// LegacyJobLinkColumn is accepted as the key column for sheets created
// before the header was renamed.
const LegacyJobLinkColumn = "Job Link"

// JobColumns is the header row of the Jobs table, in column order.
var JobColumns = []string{
	"Timestamp",
	"Company",
	"Title",
	"Location",
	JobLinkColumn,
	"Source",
	"Website",
	"About",
	"News",
	"People",
	"Category",
}

// JobListing is one job posting discovered by a search phrase. Link is the
// natural key.
type JobListing struct {
	Timestamp string   `json:"timestamp"`
	Company   string   `json:"company"`
	Title     string   `json:"title"`
	Location  string   `json:"location"`
	Link      string   `json:"link"`
	Source    string   `json:"source"`
	Website   string   `json:"website"`
	About     string   `json:"about"`
	News      string   `json:"news"`
	People    string   `json:"people"`
	Category  Category `json:"category"`
}

// Key returns the listing's natural key.
func (j JobListing) Key() string {
	return CanonicalURL(j.Link)
}

// Row renders the listing in JobColumns order.
func (j JobListing) Row() []string {
	return []string{
		j.Timestamp,
		j.Company,
		j.Title,
		j.Location,
		j.Link,
		j.Source,
		j.Website,
		j.About,
		j.News,
		j.People,
		string(j.Category),
	}
}

// JobListingFromRow reads a listing from a table row using the header to
// locate columns. Missing cells read as empty strings.
func JobListingFromRow(header, row []string) JobListing {
	cell := rowReader(header, row)
	link := cell(JobLinkColumn)
	if link == "" {
		link = cell(LegacyJobLinkColumn)
	}
	return JobListing{
		Timestamp: cell("Timestamp"),
		Company:   cell("Company"),
		Title:     cell("Title"),
		Location:  cell("Location"),
		Link:      link,
		Source:    cell("Source"),
		Website:   cell("Website"),
		About:     cell("About"),
		News:      cell("News"),
		People:    cell("People"),
		Category:  ParseCategory(cell("Category")),
	}
}

// ColumnIndex returns the position of name in header, or -1.
func ColumnIndex(header []string, name string) int {
	for i, h := range header {
		if h == name {
			return i
		}
	}
	return -1
}

func rowReader(header, row []string) func(string) string {
	return func(name string) string {
		i := ColumnIndex(header, name)
		if i < 0 || i >= len(row) {
			return ""
		}
		return row[i]
	}
}

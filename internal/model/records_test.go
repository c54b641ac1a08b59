package model

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCanonicalURL(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in   string
		want string
	}{
		{"https://www.linkedin.com/in/jane-doe/", "https://www.linkedin.com/in/jane-doe"},
		{"http://uk.linkedin.com/in/jane-doe?trk=abc", "https://www.linkedin.com/in/jane-doe"},
		{"https://WWW.LinkedIn.com/jobs/view/ai-engineer-123?refId=x#top", "https://www.linkedin.com/jobs/view/ai-engineer-123"},
		{"https://x/1", "https://x/1"},
		{"https://boards.example.com/viewjob?jk=111", "https://boards.example.com/viewjob?jk=111"},
		{"https://Boards.example.com/viewjob?utm_source=feed&jk=222&from=x&gclid=9", "https://boards.example.com/viewjob?from=x&jk=222"},
		{"https://boards.example.com/viewjob?trk=a&refId=b", "https://boards.example.com/viewjob"},
		{"  https://example.com/  ", "https://example.com"},
		{"not a url", "not a url"},
		{"", ""},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, CanonicalURL(tt.in))
		})
	}
}

func TestJobListing_RowMatchesColumns(t *testing.T) {
	t.Parallel()

	j := JobListing{
		Timestamp: "2026-01-02T03:04:05Z",
		Company:   "Acme",
		Title:     "AI Engineer",
		Location:  "Austin, TX",
		Link:      "https://x/1",
		Source:    "LinkedIn",
		Category:  CategoryAI,
	}

	row := j.Row()
	require.Len(t, row, len(JobColumns))
	assert.Equal(t, "https://x/1", row[ColumnIndex(JobColumns, JobLinkColumn)])
	assert.Equal(t, "AI", row[len(row)-1])

	back := JobListingFromRow(JobColumns, row)
	assert.Equal(t, j, back)
}

func TestJobListingFromRow_LegacyHeaderAndShortRow(t *testing.T) {
	t.Parallel()

	header := []string{"Timestamp", "Company", "Job Link"}
	j := JobListingFromRow(header, []string{"t", "Acme"})
	assert.Equal(t, "Acme", j.Company)
	assert.Empty(t, j.Link)
	assert.Equal(t, CategoryOther, j.Category)

	j = JobListingFromRow(header, []string{"t", "Acme", "https://x/9"})
	assert.Equal(t, "https://x/9", j.Link)
}

func TestDecisionMaker_Row(t *testing.T) {
	t.Parallel()

	d := DecisionMaker{
		Timestamp:   "2026-01-02T03:04:05Z",
		Name:        "Jane Doe",
		Title:       "CTO",
		Company:     "Acme",
		LinkedInURL: "https://www.linkedin.com/in/jane-doe",
		NewsMentions: []NewsMention{
			{Title: "Acme raises: Series B", Link: "https://news.example.com/a"},
			{Title: "Jane Doe keynote", Link: "https://news.example.com/b"},
		},
		PeopleMentioned: []string{"John Smith", "Jane Doe"},
	}

	row := d.Row()
	require.Len(t, row, len(DecisionMakerColumns))
	assert.Equal(t, "Acme raises: Series B: https://news.example.com/a\nJane Doe keynote: https://news.example.com/b", row[5])
	assert.Equal(t, "Jane Doe\nJohn Smith", row[6])
	// Row must not reorder the caller's slice.
	assert.Equal(t, []string{"John Smith", "Jane Doe"}, d.PeopleMentioned)

	back := decisionMakerFromRow(DecisionMakerColumns, row)
	assert.Equal(t, d.NewsMentions, back.NewsMentions)
	assert.Equal(t, []string{"Jane Doe", "John Smith"}, back.PeopleMentioned)
	assert.Equal(t, d.Key(), back.Key())
}

func TestDecisionMaker_EmptyMentions(t *testing.T) {
	t.Parallel()

	row := DecisionMaker{Name: "Jane Doe"}.Row()
	assert.Equal(t, "", row[5])
	assert.Equal(t, "", row[6])

	back := decisionMakerFromRow(DecisionMakerColumns, row)
	assert.Nil(t, back.NewsMentions)
	assert.Nil(t, back.PeopleMentioned)
}

func TestTimestamp(t *testing.T) {
	t.Parallel()

	ts := time.Date(2026, 3, 4, 5, 6, 7, 0, time.FixedZone("EST", -5*3600))
	assert.Equal(t, "2026-03-04T10:06:07Z", Timestamp(ts))
}

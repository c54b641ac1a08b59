package pipeline

import (
	"sort"
	"strings"

	"github.com/sells-group/jobscout/internal/model"
)

// CompanyCount is one row of the employer ranking.
type CompanyCount struct {
	Company string `json:"company"`
	Count   int    `json:"count"`
}

// RankCompanies counts listings per company and orders companies by count,
// most postings first. Companies with equal counts keep the order in which
// they were first seen. Listings without a company are not ranked.
func RankCompanies(listings []model.JobListing) []CompanyCount {
	index := make(map[string]int)
	var ranked []CompanyCount
	for _, l := range listings {
		name := strings.TrimSpace(l.Company)
		if name == "" {
			continue
		}
		i, ok := index[name]
		if !ok {
			i = len(ranked)
			index[name] = i
			ranked = append(ranked, CompanyCount{Company: name})
		}
		ranked[i].Count++
	}

	sort.SliceStable(ranked, func(a, b int) bool {
		return ranked[a].Count > ranked[b].Count
	})
	return ranked
}

// TopCompanies returns the names of the first n ranked companies. n <= 0
// returns all of them.
func TopCompanies(ranked []CompanyCount, n int) []string {
	if n <= 0 || n > len(ranked) {
		n = len(ranked)
	}
	names := make([]string, n)
	for i := range n {
		names[i] = ranked[i].Company
	}
	return names
}

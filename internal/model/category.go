package model

import (
	"regexp"
	"strings"
)

// Category classifies a job listing by topic.
type Category string

const (
	CategoryAI         Category = "AI"
	CategoryCompliance Category = "Compliance"
	CategoryOther      Category = "Other"
)

// AllCategories returns every category variant.
func AllCategories() []Category {
	return []Category{CategoryAI, CategoryCompliance, CategoryOther}
}

// ParseCategory reads a persisted category value. Unknown values map to
// CategoryOther.
func ParseCategory(s string) Category {
	for _, c := range AllCategories() {
		if strings.EqualFold(strings.TrimSpace(s), string(c)) {
			return c
		}
	}
	return CategoryOther
}

var aiKeywords = []string{
	"ai",
	"artificial intelligence",
	"machine learning",
	"ml",
	"llm",
	"genai",
	"generative",
	"deep learning",
	"nlp",
	"computer vision",
	"data scientist",
	"mlops",
}

var complianceKeywords = []string{
	"compliance",
	"regulatory",
	"governance",
	"risk",
	"audit",
	"aml",
	"kyc",
	"privacy",
	"grc",
	"sox",
}

var (
	aiPattern         = keywordPattern(aiKeywords)
	compliancePattern = keywordPattern(complianceKeywords)
)

// keywordPattern builds a case-insensitive whole-word alternation.
func keywordPattern(words []string) *regexp.Regexp {
	quoted := make([]string, len(words))
	for i, w := range words {
		quoted[i] = regexp.QuoteMeta(w)
	}
	return regexp.MustCompile(`(?i)\b(?:` + strings.Join(quoted, "|") + `)\b`)
}

// Classify maps listing text to a category. When both AI and compliance
// keywords appear, the one occurring earliest in the text wins; a tie goes
// to AI.
func Classify(text string) Category {
	ai := aiPattern.FindStringIndex(text)
	comp := compliancePattern.FindStringIndex(text)

	switch {
	case ai == nil && comp == nil:
		return CategoryOther
	case comp == nil:
		return CategoryAI
	case ai == nil:
		return CategoryCompliance
	case comp[0] < ai[0]:
		return CategoryCompliance
	default:
		return CategoryAI
	}
}

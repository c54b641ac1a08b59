package extract

import (
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"

	"golang.org/x/text/unicode/norm"
)

var reWord = regexp.MustCompile(`\p{L}+`)

// nonNameWords are capitalised words that commonly start headlines or
// precede names without being part of one.
var nonNameWords = map[string]bool{
	"The": true, "A": true, "An": true, "And": true, "Of": true, "In": true,
	"On": true, "For": true, "With": true, "At": true, "By": true, "To": true,
	"Inc": true, "Corp": true, "Ltd": true, "Llc": true, "Co": true,
	"Monday": true, "Tuesday": true, "Wednesday": true, "Thursday": true,
	"Friday": true, "Saturday": true, "Sunday": true,
	"January": true, "February": true, "March": true, "April": true,
	"May": true, "June": true, "July": true, "August": true,
	"September": true, "October": true, "November": true, "December": true,
	"News": true, "Says": true, "Chief": true, "Officer": true,
}

// PersonNames returns likely person names in text: two consecutive
// capitalised words separated only by spaces. Matches are deduplicated in
// first-seen order. This favours recall over precision: place names such
// as "New York" match, hyphenated or particled names do not.
func PersonNames(text string) []string {
	text = norm.NFC.String(text)
	locs := reWord.FindAllStringIndex(text, -1)

	seen := make(map[string]bool)
	var out []string
	for i := 0; i+1 < len(locs); i++ {
		a, b := locs[i], locs[i+1]
		first, second := text[a[0]:a[1]], text[b[0]:b[1]]
		if !capitalised(first) || !capitalised(second) ||
			nonNameWords[first] || nonNameWords[second] ||
			!onlySpaces(text[a[1]:b[0]]) {
			continue
		}
		name := first + " " + second
		if !seen[name] {
			seen[name] = true
			out = append(out, name)
		}
		i++
	}
	return out
}

// capitalised reports an upper-case letter followed by one or more
// lower-case letters.
func capitalised(w string) bool {
	r, size := utf8.DecodeRuneInString(w)
	if !unicode.IsUpper(r) || size == len(w) {
		return false
	}
	for _, r := range w[size:] {
		if !unicode.IsLower(r) {
			return false
		}
	}
	return true
}

func onlySpaces(s string) bool {
	return s != "" && strings.Trim(s, " \t\u00a0") == ""
}

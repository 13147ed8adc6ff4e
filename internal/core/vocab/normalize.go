package vocab

import (
	"regexp"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

var reNonAlnum = regexp.MustCompile(`[^A-Z0-9]+`)

// Normalize upper-cases s, collapses every run of characters outside
// [A-Z0-9] into one space and trims the result. Normalize(Normalize(s)) == Normalize(s).
func Normalize(s string) string {
	return strings.TrimSpace(reNonAlnum.ReplaceAllString(Upper(s), " "))
}

// Upper applies full Unicode upper-casing ("ß" becomes "SS").
func Upper(s string) string {
	// Casers carry state; one per call keeps Upper safe across goroutines.
	return cases.Upper(language.Und).String(s)
}

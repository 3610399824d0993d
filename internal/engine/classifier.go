package engine

import (
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"
)

// Classifier decides how much structure a query needs. Implementations can
// be swapped (e.g., for a learned classifier) without touching the
// scheduler or orchestrator contracts.
type Classifier interface {
	Classify(query string) Mode
}

// greetingPhrases is the fixed pleasantry set that short-circuits to simple
// mode. Matching is on the trimmed, case-folded query: exact equality or a
// prefix ending at a word boundary ("hello!" matches, "high end" does not).
var greetingPhrases = []string{
	"hi", "hello", "hey", "thanks", "thank you", "you're welcome",
	"bye", "goodbye", "ok", "okay",
}

// complexityMarkers are coordinating conjunctions and multi-part cues. One
// occurrence is enough to route a query to complex mode.
var complexityMarkers = regexp.MustCompile(
	`\b(and|also|plus|compare|best|recommend|check|verify)\b`)

// KeywordClassifier is the default heuristic classifier. Ambiguous input
// always resolves to standard mode; classification never fails.
type KeywordClassifier struct{}

func (KeywordClassifier) Classify(query string) Mode {
	q := strings.ToLower(strings.TrimSpace(query))
	if q == "" {
		return ModeStandard
	}
	if isGreeting(q) {
		return ModeSimple
	}

	markers := len(complexityMarkers.FindAllString(q, -1)) + strings.Count(q, ",")
	if markers >= 1 || len(matchCategories(q)) >= 2 {
		return ModeComplex
	}
	return ModeStandard
}

// isGreeting reports whether the folded query equals or prefix-matches one
// of the pleasantry phrases. A prefix only counts when the next rune is not
// alphanumeric, so "hi there!" is simple but "hidden fees?" is not.
func isGreeting(q string) bool {
	for _, g := range greetingPhrases {
		if q == g {
			return true
		}
		if strings.HasPrefix(q, g) {
			r, _ := utf8.DecodeRuneInString(q[len(g):])
			if !unicode.IsLetter(r) && !unicode.IsDigit(r) {
				return true
			}
		}
	}
	return false
}

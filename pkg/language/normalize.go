package language

import (
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"
)

// MatchThreshold is the minimum overlap score a candidate must reach before
// the intent resolver or the offline cache reports a match.
const MatchThreshold = 0.6

// NormalizeText canonicalizes free-form input for matching: NFC composition
// (speech services sometimes emit decomposed Indic sequences), lowercasing,
// punctuation stripped to spaces, whitespace collapsed. Combining marks
// stay in place; they carry the Indic matras.
func NormalizeText(text string) string {
	text = norm.NFC.String(text)
	text = strings.ToLower(text)

	text = strings.Map(func(r rune) rune {
		if unicode.IsLetter(r) || unicode.IsMark(r) || unicode.IsDigit(r) || unicode.IsSpace(r) {
			return r
		}
		return ' '
	}, text)

	return strings.Join(strings.Fields(text), " ")
}

// WordSet splits normalized text into its unique words.
func WordSet(text string) map[string]struct{} {
	words := strings.Fields(NormalizeText(text))
	set := make(map[string]struct{}, len(words))
	for _, w := range words {
		set[w] = struct{}{}
	}
	return set
}

// OverlapRatio scores two word sets as |intersection| / max(|a|, |b|).
// Both the intent resolver and the offline cache score with this exact
// function so degraded-mode matching behaves like online matching.
func OverlapRatio(a, b map[string]struct{}) float64 {
	if len(a) == 0 || len(b) == 0 {
		return 0
	}

	smaller, larger := a, b
	if len(b) < len(a) {
		smaller, larger = b, a
	}

	intersection := 0
	for w := range smaller {
		if _, ok := larger[w]; ok {
			intersection++
		}
	}

	return float64(intersection) / float64(len(larger))
}

// Clamp bounds a confidence value to [0,1].
func Clamp(confidence float64) float64 {
	if confidence < 0 {
		return 0
	}
	if confidence > 1 {
		return 1
	}
	return confidence
}

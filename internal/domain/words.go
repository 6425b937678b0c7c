package domain

import (
	"math"
	"regexp"
	"sort"
	"strings"
)

// WordCount is one aggregated word-frequency entry.
type WordCount struct {
	Word  string
	Count int
}

// wordStrip removes everything except letters, digits, apostrophes, hyphens
// and slashes before tokenizing. Letters match any script, not just ASCII.
var wordStrip = regexp.MustCompile(`[^\p{L}0-9'’/\- \t\n]+`)

// stopWords are never counted, regardless of case.
var stopWords = map[string]struct{}{
	"a": {}, "an": {}, "and": {}, "are": {}, "as": {}, "at": {},
	"be": {}, "but": {}, "by": {}, "for": {}, "from": {}, "had": {},
	"has": {}, "have": {}, "he": {}, "her": {}, "his": {}, "i": {},
	"if": {}, "in": {}, "is": {}, "it": {}, "its": {}, "me": {},
	"my": {}, "not": {}, "of": {}, "on": {}, "or": {}, "she": {},
	"so": {}, "that": {}, "the": {}, "they": {}, "this": {}, "to": {},
	"was": {}, "we": {}, "were": {}, "will": {}, "with": {}, "you": {},
	"your": {},
}

// TopWords tokenizes every quotation, aggregates frequency per lower-cased
// token, and returns the limit most frequent words in descending order. Ties
// keep first-encountered order.
func TopWords(quotes []*Quote, limit int) []WordCount {
	counts := make(map[string]int)
	var order []string

	for _, q := range quotes {
		for _, token := range Tokenize(q.Quotation) {
			if _, ok := counts[token]; !ok {
				order = append(order, token)
			}
			counts[token]++
		}
	}

	out := make([]WordCount, 0, len(order))
	for _, w := range order {
		out = append(out, WordCount{Word: w, Count: counts[w]})
	}

	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Count > out[j].Count
	})

	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}

	return out
}

// Tokenize splits text into lower-cased countable tokens. Stop words and
// empty tokens are dropped.
func Tokenize(text string) []string {
	stripped := wordStrip.ReplaceAllString(text, "")

	var tokens []string
	for _, field := range strings.Fields(stripped) {
		token := strings.ToLower(field)
		if token == "" {
			continue
		}
		if _, stop := stopWords[token]; stop {
			continue
		}
		tokens = append(tokens, token)
	}

	return tokens
}

// FontSize maps a word frequency to a point size. The frequency is raised to
// exponent and capped at max before being added to the min size, so rare words
// stay readable while frequent ones dominate without unbounded growth.
func FontSize(frequency, minSize, maxSize int, exponent float64) float64 {
	grown := math.Pow(float64(frequency), exponent)
	return float64(minSize) + math.Min(grown, float64(maxSize))
}

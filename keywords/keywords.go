// Package keywords derives short keyword tags from article summaries.
package keywords

import (
	"regexp"
	"sort"
	"strings"
)

// DefaultMax is the number of keywords kept per summary.
const DefaultMax = 5

// Separator joins keywords in the stored tag string.
const Separator = ", "

// Words of two or more Unicode letters, digits or underscores.
var tokenPattern = regexp.MustCompile(`[\p{L}\p{N}_]{2,}`)

// Tokenize splits text into lowercase words and removes stop words.
func Tokenize(text string) []string {
	words := tokenPattern.FindAllString(strings.ToLower(text), -1)
	filtered := make([]string, 0, len(words))
	for _, word := range words {
		if !stopWords[word] {
			filtered = append(filtered, word)
		}
	}
	return filtered
}

// Extract returns up to max of the most frequent terms in text, reported in
// alphabetical order. Ties in frequency are broken alphabetically.
func Extract(text string, max int) []string {
	if max <= 0 {
		max = DefaultMax
	}

	counts := make(map[string]int)
	for _, word := range Tokenize(text) {
		counts[word]++
	}

	terms := make([]string, 0, len(counts))
	for term := range counts {
		terms = append(terms, term)
	}
	sort.Slice(terms, func(i, j int) bool {
		if counts[terms[i]] != counts[terms[j]] {
			return counts[terms[i]] > counts[terms[j]]
		}
		return terms[i] < terms[j]
	})

	if len(terms) > max {
		terms = terms[:max]
	}
	sort.Strings(terms)
	return terms
}

// Tags returns the stored keyword string for text: the top DefaultMax
// terms joined with ", ". Empty text yields the empty string.
func Tags(text string) string {
	return strings.Join(Extract(text, DefaultMax), Separator)
}

// Split parses a stored keyword string back into terms.
func Split(tags string) []string {
	var out []string
	for _, part := range strings.Split(tags, ",") {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

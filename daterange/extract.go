package daterange

import (
	"regexp"
	"strconv"
	"strings"
	"time"
	"unicode"

	"github.com/araddon/dateparse"
	"github.com/bharadwaj008/Article-Search-Pipeline/core"
)

// Lookbacks are counted in calendar days.
const (
	week  = 7
	month = 30 // months are fixed 30-day blocks
	year  = 365

	// maxDays bounds a lookback; it reaches far past any publication date.
	maxDays = 1_000_000
)

var (
	durationPattern = regexp.MustCompile(`(?i)\b(last|past)\s+(\d+)\s+(days|weeks|months)\b`)
	agoPattern      = regexp.MustCompile(`(?i)^(\d+|a|an|one)\s+(day|week|month|year)s?\s+ago$`)
)

// Extract derives the date range implied by query relative to now.
// Returns nil when the query carries no temporal constraint.
func Extract(query string, now time.Time) *core.DateRange {
	lower := strings.ToLower(query)

	if strings.Contains(lower, "last week") {
		return lookback(now, week)
	}
	if strings.Contains(lower, "last month") {
		return lookback(now, month)
	}
	if m := durationPattern.FindStringSubmatch(query); m != nil {
		n, err := strconv.Atoi(m[2])
		if err == nil {
			return lookback(now, days(n, m[3]))
		}
	}
	if start, ok := parseFreeForm(query, now); ok {
		return between(start, now)
	}
	return nil
}

// parseFreeForm recognizes a single date expressed by the whole query.
func parseFreeForm(query string, now time.Time) (time.Time, bool) {
	q := strings.ToLower(strings.TrimSpace(query))
	if q == "" {
		return time.Time{}, false
	}

	switch q {
	case "today", "now":
		return now, true
	case "yesterday":
		return now.AddDate(0, 0, -1), true
	}

	if m := agoPattern.FindStringSubmatch(q); m != nil {
		n := 1
		if v, err := strconv.Atoi(m[1]); err == nil {
			n = v
		}
		return now.AddDate(0, 0, -days(n, m[2])), true
	}

	// Absolute dates always carry digits; skip the parser for plain prose.
	if !strings.ContainsFunc(q, unicode.IsDigit) {
		return time.Time{}, false
	}
	t, err := dateparse.ParseIn(strings.TrimSpace(query), now.Location())
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}

// days converts n units to a day count, saturating at maxDays.
func days(n int, unit string) int {
	per := 1
	switch strings.TrimSuffix(strings.ToLower(unit), "s") {
	case "week":
		per = week
	case "month":
		per = month
	case "year":
		per = year
	}
	if n > maxDays/per {
		return maxDays
	}
	return n * per
}

func lookback(now time.Time, days int) *core.DateRange {
	return between(now.AddDate(0, 0, -days), now)
}

// between builds a day-granular range. A start after now yields nil since
// such a range could match nothing.
func between(start, now time.Time) *core.DateRange {
	s := core.TruncateDay(start.In(now.Location()))
	e := core.TruncateDay(now)
	if s.After(e) {
		return nil
	}
	return &core.DateRange{Start: s, End: e}
}

package daterange

import (
	"testing"
	"time"

	"github.com/bharadwaj008/Article-Search-Pipeline/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var now = time.Date(2024, 6, 15, 14, 30, 0, 0, time.UTC)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestExtract(t *testing.T) {
	today := date(2024, 6, 15)

	tests := []struct {
		name  string
		query string
		want  *core.DateRange
	}{
		{
			name:  "last week",
			query: "immunotherapy results from last week",
			want:  &core.DateRange{Start: date(2024, 6, 8), End: today},
		},
		{
			name:  "last week is case insensitive",
			query: "LAST WEEK in oncology",
			want:  &core.DateRange{Start: date(2024, 6, 8), End: today},
		},
		{
			name:  "last month",
			query: "tumor studies last month",
			want:  &core.DateRange{Start: date(2024, 5, 16), End: today},
		},
		{
			name:  "last week wins over numeric pattern",
			query: "last week and past 3 months",
			want:  &core.DateRange{Start: date(2024, 6, 8), End: today},
		},
		{
			name:  "last month wins over numeric pattern",
			query: "past 2 days or last month",
			want:  &core.DateRange{Start: date(2024, 5, 16), End: today},
		},
		{
			name:  "past N days",
			query: "papers from the past 10 days",
			want:  &core.DateRange{Start: date(2024, 6, 5), End: today},
		},
		{
			name:  "last N weeks",
			query: "last 2 weeks",
			want:  &core.DateRange{Start: date(2024, 6, 1), End: today},
		},
		{
			name:  "past N months uses 30 day blocks",
			query: "past 2 months",
			want:  &core.DateRange{Start: date(2024, 4, 16), End: today},
		},
		{
			name:  "extra whitespace in numeric pattern",
			query: "Past   3   Days",
			want:  &core.DateRange{Start: date(2024, 6, 12), End: today},
		},
		{
			name:  "absolute date",
			query: "2024-01-15",
			want:  &core.DateRange{Start: date(2024, 1, 15), End: today},
		},
		{
			name:  "relative phrase",
			query: "3 weeks ago",
			want:  &core.DateRange{Start: date(2024, 5, 25), End: today},
		},
		{
			name:  "yesterday",
			query: "yesterday",
			want:  &core.DateRange{Start: date(2024, 6, 14), End: today},
		},
		{
			name:  "no temporal language",
			query: "breast cancer immunotherapy",
			want:  nil,
		},
		{
			name:  "last without a number falls through to nil",
			query: "the last known mutation",
			want:  nil,
		},
		{
			name:  "empty query",
			query: "",
			want:  nil,
		},
		{
			name:  "huge lookback saturates instead of wrapping",
			query: "past 5000 months",
			want:  &core.DateRange{Start: date(2024, 6, 15).AddDate(0, 0, -150000), End: today},
		},
		{
			name:  "lookback beyond the day cap",
			query: "past 9000000000000000000 days",
			want:  &core.DateRange{Start: date(2024, 6, 15).AddDate(0, 0, -maxDays), End: today},
		},
		{
			name:  "huge relative phrase",
			query: "200000 days ago",
			want:  &core.DateRange{Start: date(2024, 6, 15).AddDate(0, 0, -200000), End: today},
		},
		{
			name:  "future date is no constraint",
			query: "2030-01-01",
			want:  nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Extract(tt.query, now)
			if tt.want == nil {
				assert.Nil(t, got)
				return
			}
			require.NotNil(t, got)
			assert.True(t, tt.want.Start.Equal(got.Start), "start: want %v, got %v", tt.want.Start, got.Start)
			assert.True(t, tt.want.End.Equal(got.End), "end: want %v, got %v", tt.want.End, got.End)
		})
	}
}

func TestExtractIsPure(t *testing.T) {
	a := Extract("past 5 days", now)
	b := Extract("past 5 days", now)
	require.NotNil(t, a)
	assert.Equal(t, a, b)
}

func TestExtractUsesLocation(t *testing.T) {
	loc := time.FixedZone("UTC+9", 9*60*60)
	local := time.Date(2024, 6, 15, 1, 0, 0, 0, loc)

	got := Extract("last week", local)
	require.NotNil(t, got)
	assert.Equal(t, time.Date(2024, 6, 8, 0, 0, 0, 0, loc), got.Start)
	assert.Equal(t, time.Date(2024, 6, 15, 0, 0, 0, 0, loc), got.End)
}

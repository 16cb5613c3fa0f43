package main

import (
	"fmt"
	"io"
	"time"

	"github.com/bharadwaj008/Article-Search-Pipeline/core"
	"github.com/bharadwaj008/Article-Search-Pipeline/search"
)

// verboseMonitor prints each search stage with the time since the previous one.
type verboseMonitor struct {
	w    io.Writer
	last time.Time
}

var _ search.SearchMonitor = (*verboseMonitor)(nil)

func newVerboseMonitor(w io.Writer) *verboseMonitor {
	return &verboseMonitor{w: w}
}

func (m *verboseMonitor) step(format string, args ...any) {
	now := time.Now()
	elapsed := now.Sub(m.last)
	m.last = now
	fmt.Fprintf(m.w, "[%8s] %s\n", elapsed.Round(time.Microsecond), fmt.Sprintf(format, args...))
}

func (m *verboseMonitor) Start(query string) {
	m.last = time.Now()
	fmt.Fprintf(m.w, "Searching for %q\n", query)
}

func (m *verboseMonitor) AfterEmbedding(vector []float32) {
	m.step("embedded query (%d dimensions)", len(vector))
}

func (m *verboseMonitor) AfterDateExtraction(dateRange *core.DateRange) {
	if dateRange == nil {
		m.step("no date range in query")
		return
	}
	m.step("date range %s to %s", dateRange.Start.Format("2006-01-02"), dateRange.End.Format("2006-01-02"))
}

func (m *verboseMonitor) AfterVectorSearch(hits []core.VectorHit) {
	m.step("vector search returned %d hits", len(hits))
}

func (m *verboseMonitor) AfterRecordRetrieval(docs []*core.Document) {
	m.step("fetched %d articles", len(docs))
}

func (m *verboseMonitor) Finish(results []*core.Document, err error) {
	if err != nil {
		m.step("search failed: %v", err)
		return
	}
	m.step("%d results", len(results))
}

package search

import (
	"github.com/bharadwaj008/Article-Search-Pipeline/core"
)

// SearchMonitor provides hooks to observe the search process.
// Implement this interface to track intermediate steps and results during search.
type SearchMonitor interface {
	Start(query string)
	AfterEmbedding(vector []float32)
	AfterDateExtraction(dateRange *core.DateRange)
	AfterVectorSearch(hits []core.VectorHit)
	AfterRecordRetrieval(docs []*core.Document)
	Finish(results []*core.Document, err error)
}

// noopMonitor is a no-op implementation of SearchMonitor
type noopMonitor struct{}

var _ SearchMonitor = (*noopMonitor)(nil)

func (n *noopMonitor) Start(_ string)                          {}
func (n *noopMonitor) AfterEmbedding(_ []float32)              {}
func (n *noopMonitor) AfterDateExtraction(_ *core.DateRange)   {}
func (n *noopMonitor) AfterVectorSearch(_ []core.VectorHit)    {}
func (n *noopMonitor) AfterRecordRetrieval(_ []*core.Document) {}
func (n *noopMonitor) Finish(_ []*core.Document, _ error)      {}

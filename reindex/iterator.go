package reindex

import (
	"context"
	"time"

	"github.com/bharadwaj008/Article-Search-Pipeline/core"
	"github.com/bharadwaj008/Article-Search-Pipeline/storage"
)

const (
	// DefaultBatchSize is the default number of articles in each batch
	DefaultBatchSize = 100
)

// DocumentIterator reads every article once and hands them out in batches.
type DocumentIterator struct {
	repo       storage.DocumentRepository
	batchSize  int
	maxRetries int
	retryDelay time.Duration
	docs       []*core.Document
	loaded     bool
}

// NewDocumentIterator creates a new document iterator.
// batchSize: number of articles in each batch (defaults when <= 0)
// maxRetries, retryDelay: backoff policy for the store read
func NewDocumentIterator(repo storage.DocumentRepository, batchSize, maxRetries int, retryDelay time.Duration) *DocumentIterator {
	if batchSize <= 0 {
		batchSize = DefaultBatchSize
	}
	if maxRetries <= 0 {
		maxRetries = 1
	}

	return &DocumentIterator{
		repo:       repo,
		batchSize:  batchSize,
		maxRetries: maxRetries,
		retryDelay: retryDelay,
	}
}

// Load reads all articles, retrying failed reads, and returns how many there are.
func (it *DocumentIterator) Load(ctx context.Context) (int, error) {
	docs, err := RetryWithBackoff(ctx, it.repo.FetchAllForIndexing, it.maxRetries, it.retryDelay)
	if err != nil {
		return 0, err
	}
	it.docs = docs
	it.loaded = true
	return len(docs), nil
}

// ForEach calls fn for each batch in ID order, loading first if needed.
// Iteration stops on first error from fn or on context cancellation.
func (it *DocumentIterator) ForEach(ctx context.Context, fn func([]*core.Document) error) error {
	if !it.loaded {
		if _, err := it.Load(ctx); err != nil {
			return err
		}
	}

	for i := 0; i < len(it.docs); i += it.batchSize {
		if err := ctx.Err(); err != nil {
			return err
		}

		end := min(i+it.batchSize, len(it.docs))
		if err := fn(it.docs[i:end]); err != nil {
			return err
		}
	}

	return nil
}

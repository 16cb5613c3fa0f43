package reindex

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/bharadwaj008/Article-Search-Pipeline/core"
	"github.com/bharadwaj008/Article-Search-Pipeline/storage"
)

// Indexer indexes a batch of documents. It is satisfied by *indexing.Indexer.
type Indexer interface {
	Index(ctx context.Context, docs []*core.Document) (*core.IndexReport, error)
}

// Config holds configuration for the rebuild operation.
type Config struct {
	// BatchSize is the number of articles passed to the indexer at once
	BatchSize int

	// ReportInterval is how often to report progress (number of articles)
	ReportInterval int

	// MaxRetries is the maximum number of attempts for store reads
	MaxRetries int

	// RetryDelay is the base delay for exponential backoff
	RetryDelay time.Duration

	// Drop removes the collection before indexing so it is rebuilt from scratch
	Drop bool
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		BatchSize:      100,
		ReportInterval: 100,
		MaxRetries:     3,
		RetryDelay:     1 * time.Second,
	}
}

// Reindexer rebuilds the vector index from every article in the relational store.
type Reindexer struct {
	documents storage.DocumentRepository
	index     storage.VectorIndex
	indexer   Indexer
	config    *Config
	progress  io.Writer
	logger    *slog.Logger
}

// NewReindexer creates a new reindexer.
// index may be nil when Config.Drop is false; the partition index is then
// left for the searcher to build.
// progress: where to write progress output (typically os.Stderr)
func NewReindexer(documents storage.DocumentRepository, index storage.VectorIndex, indexer Indexer, config *Config, progress io.Writer) (*Reindexer, error) {
	if documents == nil {
		return nil, ErrDocumentRepositoryRequired
	}
	if indexer == nil {
		return nil, ErrIndexerRequired
	}
	if config == nil {
		config = DefaultConfig()
	}
	if config.Drop && index == nil {
		return nil, fmt.Errorf("dropping the collection requires a vector index")
	}
	if progress == nil {
		progress = io.Discard
	}

	return &Reindexer{
		documents: documents,
		index:     index,
		indexer:   indexer,
		config:    config,
		progress:  progress,
		logger:    slog.Default().With("component", "reindexer"),
	}, nil
}

// Run indexes every article and returns the combined report.
func (r *Reindexer) Run(ctx context.Context) (*core.IndexReport, error) {
	report := &core.IndexReport{Failed: []core.IndexFailure{}}

	iterator := NewDocumentIterator(r.documents, r.config.BatchSize, r.config.MaxRetries, r.config.RetryDelay)
	total, err := iterator.Load(ctx)
	if err != nil {
		return report, fmt.Errorf("failed to read articles: %w", err)
	}

	if r.config.Drop {
		if err := r.index.Drop(ctx); err != nil {
			return report, fmt.Errorf("failed to drop collection: %w", err)
		}
		r.logger.Info("dropped collection for rebuild")
	}

	if total == 0 {
		fmt.Fprintf(r.progress, "No articles found in database (0 articles)\n")
		return report, nil
	}

	fmt.Fprintf(r.progress, "Starting reindex of %d articles (batch size: %d)\n", total, iterator.batchSize)

	tracker := NewProgressTracker(r.progress, total, r.config.ReportInterval)
	tracker.Start()

	err = iterator.ForEach(ctx, func(docs []*core.Document) error {
		batch, err := r.indexer.Index(ctx, docs)
		if batch != nil {
			report.Indexed += batch.Indexed
			report.Failed = append(report.Failed, batch.Failed...)
			tracker.Add(len(docs), len(batch.Failed))
		}
		return err
	})
	tracker.Finish()
	if err != nil {
		return report, fmt.Errorf("failed to index batch: %w", err)
	}

	if r.index != nil {
		built, err := r.index.BuildIndexIfAbsent(ctx)
		if err != nil {
			return report, fmt.Errorf("failed to build index: %w", err)
		}
		if built {
			fmt.Fprintf(r.progress, "Built partition index over %d vectors\n", report.Indexed)
		}
	}

	elapsed := tracker.Elapsed()
	fmt.Fprintf(r.progress, "Reindex complete. Indexed %d of %d articles in %v (%d failed)\n",
		report.Indexed, total, elapsed.Round(time.Millisecond), len(report.Failed))

	return report, nil
}

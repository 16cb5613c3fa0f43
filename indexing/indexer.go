package indexing

import (
	"context"
	"fmt"
	"log/slog"
	"runtime"
	"sort"
	"sync"
	"time"

	"github.com/bharadwaj008/Article-Search-Pipeline/ai"
	"github.com/bharadwaj008/Article-Search-Pipeline/core"
	"github.com/bharadwaj008/Article-Search-Pipeline/storage"
	"github.com/panjf2000/ants/v2"
)

const (
	// DefaultUpsertBatchSize is the number of vectors written per upsert call.
	DefaultUpsertBatchSize = 256

	// DefaultUpsertTimeout bounds each upsert call.
	DefaultUpsertTimeout = 30 * time.Second
)

// Indexer embeds, fuses and upserts article vectors.
type Indexer struct {
	index           storage.VectorIndex
	embedder        ai.Embedder
	pool            *ants.Pool
	weights         core.Weights
	dim             int
	upsertBatchSize int
	upsertTimeout   time.Duration
	skipUnchanged   bool
	model           string
	logger          *slog.Logger
}

// Option configures an Indexer.
type Option func(*Indexer) error

// WithPoolSize sets the worker pool size for concurrent embedding.
// Default is runtime.NumCPU() / 2, with a minimum of 1.
func WithPoolSize(size int) Option {
	return func(ix *Indexer) error {
		if size < 1 {
			size = 1
		}

		if ix.pool != nil {
			ix.pool.Release()
		}

		pool, err := ants.NewPool(size)
		if err != nil {
			return err
		}
		ix.pool = pool
		return nil
	}
}

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(ix *Indexer) error {
		if logger == nil {
			logger = slog.Default()
		}
		ix.logger = logger
		return nil
	}
}

// WithWeights sets the fusion weights. Weights must be non-negative and not all zero.
func WithWeights(weights core.Weights) Option {
	return func(ix *Indexer) error {
		if weights.Title < 0 || weights.Abstract < 0 || weights.Summary < 0 {
			return fmt.Errorf("%w: negative weight in %+v", core.ErrInvalidWeights, weights)
		}
		if weights.Title+weights.Abstract+weights.Summary == 0 {
			return fmt.Errorf("%w: all weights are zero", core.ErrInvalidWeights)
		}
		ix.weights = weights
		return nil
	}
}

// WithDimension sets the declared vector dimension.
// Default is core.DefaultDimension.
func WithDimension(dim int) Option {
	return func(ix *Indexer) error {
		if dim < 1 {
			return fmt.Errorf("dimension must be positive, got %d", dim)
		}
		ix.dim = dim
		return nil
	}
}

// WithUpsertBatchSize sets how many vectors are written per upsert call.
func WithUpsertBatchSize(size int) Option {
	return func(ix *Indexer) error {
		if size < 1 {
			size = 1
		}
		ix.upsertBatchSize = size
		return nil
	}
}

// WithUpsertTimeout bounds each upsert call.
func WithUpsertTimeout(timeout time.Duration) Option {
	return func(ix *Indexer) error {
		if timeout <= 0 {
			return fmt.Errorf("upsert timeout must be positive, got %s", timeout)
		}
		ix.upsertTimeout = timeout
		return nil
	}
}

// WithSkipUnchanged skips re-embedding documents whose stored fingerprint
// matches their current content under the given model name.
func WithSkipUnchanged(model string) Option {
	return func(ix *Indexer) error {
		ix.skipUnchanged = true
		ix.model = model
		return nil
	}
}

// NewIndexer creates a new indexer.
func NewIndexer(index storage.VectorIndex, embedder ai.Embedder, opts ...Option) (*Indexer, error) {
	if index == nil {
		return nil, ErrVectorIndexRequired
	}
	if embedder == nil {
		return nil, ErrEmbedderRequired
	}

	poolSize := runtime.NumCPU() / 2
	if poolSize < 1 {
		poolSize = 1
	}
	pool, err := ants.NewPool(poolSize)
	if err != nil {
		return nil, err
	}

	ix := &Indexer{
		index:           index,
		embedder:        embedder,
		pool:            pool,
		weights:         core.DefaultWeights,
		dim:             core.DefaultDimension,
		upsertBatchSize: DefaultUpsertBatchSize,
		upsertTimeout:   DefaultUpsertTimeout,
		logger:          slog.Default(),
	}

	for _, opt := range opts {
		if optErr := opt(ix); optErr != nil {
			ix.Release()
			return nil, optErr
		}
	}
	ix.logger = ix.logger.With("component", "indexer")

	return ix, nil
}

// Index embeds and upserts docs. Per-document failures are collected in the
// report and never stop the batch. The returned error is non-nil only when
// the collection could not be ensured or ctx was cancelled; the report is
// complete in both cases.
func (ix *Indexer) Index(ctx context.Context, docs []*core.Document) (*core.IndexReport, error) {
	report := &core.IndexReport{Failed: []core.IndexFailure{}}

	docs = nonNil(docs)
	if len(docs) == 0 {
		return report, nil
	}

	state, err := ix.index.EnsureCollection(ctx, ix.dim)
	if err != nil {
		wrapped := fmt.Errorf("%w: %w", core.ErrStoreUnavailable, err)
		for _, doc := range docs {
			report.Failed = append(report.Failed, core.IndexFailure{DocumentID: doc.ID, Reason: wrapped})
		}
		sortFailures(report.Failed)
		ix.logger.Error("failed to ensure collection", "err", err)
		return report, wrapped
	}
	if state == storage.CollectionRecreated {
		ix.logger.Warn("collection was recreated; previously indexed vectors must be re-indexed")
	}

	results := ix.embedAll(ctx, docs)

	pending := make([]core.FusedEmbedding, 0, len(docs))
	for i, res := range results {
		switch {
		case res.err != nil:
			report.Failed = append(report.Failed, core.IndexFailure{DocumentID: docs[i].ID, Reason: res.err})
		case res.unchanged:
			report.Indexed++
		default:
			pending = append(pending, *res.embedding)
		}
	}

	for start := 0; start < len(pending); start += ix.upsertBatchSize {
		end := min(start+ix.upsertBatchSize, len(pending))
		batch := pending[start:end]

		if err := ix.upsert(ctx, batch); err != nil {
			for _, e := range batch {
				report.Failed = append(report.Failed, core.IndexFailure{DocumentID: e.DocumentID, Reason: err})
			}
			continue
		}
		report.Indexed += len(batch)
	}

	sortFailures(report.Failed)
	ix.logger.Info("indexed documents", "indexed", report.Indexed, "failed", len(report.Failed), "collection", state.String())
	return report, ctx.Err()
}

func (ix *Indexer) upsert(ctx context.Context, batch []core.FusedEmbedding) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	upsertCtx, cancel := context.WithTimeout(ctx, ix.upsertTimeout)
	defer cancel()

	if err := ix.index.Upsert(upsertCtx, batch); err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		ix.logger.Error("error upserting vectors", "vectors", len(batch), "err", err)
		return fmt.Errorf("%w: %w", core.ErrStoreUnavailable, err)
	}
	return nil
}

// embedAll runs embedDocument for every doc on the worker pool.
// Results are positional.
func (ix *Indexer) embedAll(ctx context.Context, docs []*core.Document) []embedResult {
	results := make([]embedResult, len(docs))

	var wg sync.WaitGroup
	for i, doc := range docs {
		wg.Add(1)
		err := ix.pool.Submit(func() {
			defer wg.Done()
			results[i] = ix.embedDocument(ctx, doc)
		})
		if err != nil {
			wg.Done()
			results[i] = embedResult{err: fmt.Errorf("%w: %w", core.ErrEmbedding, err)}
		}
	}
	wg.Wait()

	return results
}

// Release releases resources including the worker pool.
// The indexer should not be used after calling Release.
func (ix *Indexer) Release() {
	if ix.pool != nil {
		ix.pool.Release()
	}
}

func nonNil(docs []*core.Document) []*core.Document {
	out := make([]*core.Document, 0, len(docs))
	for _, doc := range docs {
		if doc != nil {
			out = append(out, doc)
		}
	}
	return out
}

func sortFailures(failures []core.IndexFailure) {
	sort.SliceStable(failures, func(i, j int) bool {
		return failures[i].DocumentID < failures[j].DocumentID
	})
}

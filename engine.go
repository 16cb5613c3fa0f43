package articlesearch

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/bharadwaj008/Article-Search-Pipeline/ai"
	"github.com/bharadwaj008/Article-Search-Pipeline/ai/openai"
	"github.com/bharadwaj008/Article-Search-Pipeline/config"
	"github.com/bharadwaj008/Article-Search-Pipeline/core"
	"github.com/bharadwaj008/Article-Search-Pipeline/indexing"
	"github.com/bharadwaj008/Article-Search-Pipeline/reindex"
	"github.com/bharadwaj008/Article-Search-Pipeline/search"
	"github.com/bharadwaj008/Article-Search-Pipeline/storage"
	"github.com/bharadwaj008/Article-Search-Pipeline/storage/badger"
	"github.com/bharadwaj008/Article-Search-Pipeline/storage/sqlstore"
)

// Engine wires the relational store, the vector index, the embedding provider,
// the indexer and the searcher.
type Engine struct {
	config   *config.Config
	store    *sqlstore.Store
	backend  *badger.Backend
	index    *badger.VectorIndex
	provider ai.AIProvider
	indexer  *indexing.Indexer
	searcher *search.Searcher
	logger   *slog.Logger
}

// EngineOption configures an Engine.
type EngineOption func(*engineOptions)

type engineOptions struct {
	provider        ai.AIProvider
	logger          *slog.Logger
	inMemoryVectors bool
}

// WithProvider uses provider instead of an OpenAI-compatible one built from the config.
func WithProvider(provider ai.AIProvider) EngineOption {
	return func(o *engineOptions) {
		o.provider = provider
	}
}

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) EngineOption {
	return func(o *engineOptions) {
		o.logger = logger
	}
}

// WithInMemoryVectors keeps the vector index in memory and ignores vector.path.
func WithInMemoryVectors() EngineOption {
	return func(o *engineOptions) {
		o.inMemoryVectors = true
	}
}

// Open validates cfg and opens every store. A nil cfg uses config.Default().
func Open(ctx context.Context, cfg *config.Config, opts ...EngineOption) (*Engine, error) {
	if cfg == nil {
		cfg = config.Default()
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	options := &engineOptions{}
	for _, opt := range opts {
		opt(options)
	}
	logger := options.logger
	if logger == nil {
		logger = slog.Default()
	}

	e := &Engine{
		config: cfg,
		logger: logger.With("component", "engine"),
	}

	var err error
	e.store, err = sqlstore.Open(ctx, cfg.SQLStore(), sqlstore.WithLogger(logger))
	if err != nil {
		return nil, fmt.Errorf("%w: opening relational store: %w", core.ErrStoreUnavailable, err)
	}

	e.backend, err = badger.OpenBackend(cfg.Vector.Path, options.inMemoryVectors)
	if err != nil {
		e.Close()
		return nil, fmt.Errorf("%w: opening vector store: %w", core.ErrStoreUnavailable, err)
	}

	e.index, err = badger.NewVectorIndex(e.backend, cfg.Vector.Collection,
		badger.WithNList(cfg.Vector.NList),
		badger.WithMetric(core.Metric(cfg.Vector.Metric)),
		badger.WithLogger(logger),
	)
	if err != nil {
		e.Close()
		return nil, fmt.Errorf("%w: %w", core.ErrConfiguration, err)
	}

	e.provider = options.provider
	if e.provider == nil {
		e.provider, err = openai.NewProvider(cfg.AI())
		if err != nil {
			e.Close()
			return nil, fmt.Errorf("%w: %w", core.ErrConfiguration, err)
		}
	}

	e.indexer, err = indexing.NewIndexer(e.index, e.provider.Embedder(),
		indexing.WithPoolSize(cfg.Embedding.Concurrency),
		indexing.WithWeights(cfg.Weights()),
		indexing.WithDimension(cfg.Vector.Dimension),
		indexing.WithUpsertBatchSize(cfg.Index.BatchSize),
		indexing.WithUpsertTimeout(cfg.Index.UpsertTimeout.Std()),
		indexing.WithSkipUnchanged(e.provider.Model()),
		indexing.WithLogger(logger),
	)
	if err != nil {
		e.Close()
		return nil, fmt.Errorf("%w: %w", core.ErrConfiguration, err)
	}

	e.searcher, err = search.NewSearcher(e.store, e.index, e.provider.Embedder(),
		search.WithDefaults(cfg.Search.NProbe, cfg.Search.Limit),
		search.WithVectorTimeout(cfg.Search.VectorTimeout.Std()),
		search.WithFetchTimeout(cfg.Search.FetchTimeout.Std()),
		search.WithLogger(logger),
	)
	if err != nil {
		e.Close()
		return nil, fmt.Errorf("%w: %w", core.ErrConfiguration, err)
	}

	return e, nil
}

// Index embeds docs and upserts their fused vectors.
func (e *Engine) Index(ctx context.Context, docs []*core.Document) (*core.IndexReport, error) {
	report, err := e.indexer.Index(ctx, docs)
	// The collection may have been recreated underneath a loaded index.
	e.searcher.Reset()
	return report, err
}

// Search returns the articles nearest to query in vector rank order.
func (e *Engine) Search(ctx context.Context, query string, nprobe, limit int) ([]*core.Document, error) {
	return e.searcher.Search(ctx, query, nprobe, limit)
}

// SearchWithMonitor is Search with stage callbacks.
func (e *Engine) SearchWithMonitor(ctx context.Context, query string, nprobe, limit int, monitor search.SearchMonitor) ([]*core.Document, error) {
	return e.searcher.SearchWithMonitor(ctx, query, nprobe, limit, monitor)
}

// Ingest stores new articles and indexes the ones that were inserted.
// Articles whose title is already stored are skipped.
func (e *Engine) Ingest(ctx context.Context, docs []*core.Document) ([]*core.Document, *core.IndexReport, error) {
	inserted, err := e.store.AddDocuments(ctx, docs...)
	if err != nil {
		return nil, nil, fmt.Errorf("%w: storing articles: %w", core.ErrStoreUnavailable, err)
	}
	e.logger.Info("stored articles", "received", len(docs), "inserted", len(inserted))

	report, err := e.Index(ctx, inserted)
	return inserted, report, err
}

// Reindex indexes every stored article, writing progress to progress.
// With drop set the collection is removed first.
func (e *Engine) Reindex(ctx context.Context, drop bool, progress io.Writer) (*core.IndexReport, error) {
	rc := reindex.DefaultConfig()
	rc.BatchSize = e.config.Index.BatchSize
	rc.Drop = drop

	r, err := reindex.NewReindexer(e.store, e.index, e.indexer, rc, progress)
	if err != nil {
		return nil, err
	}
	report, err := r.Run(ctx)
	e.searcher.Reset()
	return report, err
}

// BuildIndex builds the partition index unless one exists.
func (e *Engine) BuildIndex(ctx context.Context) (bool, error) {
	built, err := e.index.BuildIndexIfAbsent(ctx)
	if err != nil {
		return false, fmt.Errorf("%w: building index: %w", core.ErrStoreUnavailable, err)
	}
	e.searcher.Reset()
	return built, nil
}

// Health checks that the relational store answers and the collection exists.
func (e *Engine) Health(ctx context.Context) error {
	if err := e.store.Ping(ctx); err != nil {
		return fmt.Errorf("%w: relational store: %w", core.ErrStoreUnavailable, err)
	}
	if _, err := e.index.Schema(ctx); err != nil {
		return fmt.Errorf("%w: vector index: %w", core.ErrStoreUnavailable, err)
	}
	return nil
}

// Documents returns the relational article store.
func (e *Engine) Documents() storage.DocumentRepository {
	return e.store
}

// VectorIndex returns the vector index.
func (e *Engine) VectorIndex() storage.VectorIndex {
	return e.index
}

// Config returns the configuration the engine was opened with.
func (e *Engine) Config() *config.Config {
	return e.config
}

// Close releases every resource. It is safe on a partially opened engine.
func (e *Engine) Close() error {
	var errs []error

	if e.indexer != nil {
		e.indexer.Release()
	}
	if e.provider != nil {
		if err := e.provider.Close(); err != nil {
			e.logger.Error("error closing AI provider", "err", err)
			errs = append(errs, err)
		}
	}
	if e.index != nil {
		if err := e.index.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	if e.backend != nil {
		if err := e.backend.Close(); err != nil {
			e.logger.Error("error closing vector store", "err", err)
			errs = append(errs, err)
		}
	}
	if e.store != nil {
		if err := e.store.Close(); err != nil {
			e.logger.Error("error closing relational store", "err", err)
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

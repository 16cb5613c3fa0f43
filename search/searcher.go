package search

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/bharadwaj008/Article-Search-Pipeline/ai"
	"github.com/bharadwaj008/Article-Search-Pipeline/core"
	"github.com/bharadwaj008/Article-Search-Pipeline/daterange"
	"github.com/bharadwaj008/Article-Search-Pipeline/storage"
	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
)

const (
	// DefaultNProbe is the number of index partitions probed per query.
	DefaultNProbe = 20

	// DefaultLimit is the number of results returned per query.
	DefaultLimit = 10

	// DefaultVectorTimeout bounds the vector search.
	DefaultVectorTimeout = 5 * time.Second

	// DefaultFetchTimeout bounds the relational fetch.
	DefaultFetchTimeout = 5 * time.Second
)

// Searcher runs hybrid vector and relational queries over articles.
type Searcher struct {
	documents     storage.DocumentRepository
	index         storage.VectorIndex
	embedder      ai.Embedder
	now           func() time.Time
	vectorTimeout time.Duration
	fetchTimeout  time.Duration
	nprobe        int
	limit         int
	logger        *slog.Logger

	readyMu sync.Mutex
	ready   bool
}

// Option configures a Searcher.
type Option func(*Searcher) error

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(s *Searcher) error {
		if logger == nil {
			logger = slog.Default()
		}
		s.logger = logger
		return nil
	}
}

// WithClock sets the time source used to resolve relative dates in queries.
// Default is time.Now.
func WithClock(now func() time.Time) Option {
	return func(s *Searcher) error {
		if now == nil {
			now = time.Now
		}
		s.now = now
		return nil
	}
}

// WithVectorTimeout bounds each vector search.
func WithVectorTimeout(timeout time.Duration) Option {
	return func(s *Searcher) error {
		if timeout <= 0 {
			return fmt.Errorf("vector timeout must be positive, got %s", timeout)
		}
		s.vectorTimeout = timeout
		return nil
	}
}

// WithFetchTimeout bounds each relational fetch.
func WithFetchTimeout(timeout time.Duration) Option {
	return func(s *Searcher) error {
		if timeout <= 0 {
			return fmt.Errorf("fetch timeout must be positive, got %s", timeout)
		}
		s.fetchTimeout = timeout
		return nil
	}
}

// WithDefaults sets the nprobe and limit used when a caller passes zero or less.
func WithDefaults(nprobe, limit int) Option {
	return func(s *Searcher) error {
		if nprobe < 1 || limit < 1 {
			return fmt.Errorf("default nprobe and limit must be positive, got %d and %d", nprobe, limit)
		}
		s.nprobe = nprobe
		s.limit = limit
		return nil
	}
}

// NewSearcher creates a new searcher.
func NewSearcher(
	documents storage.DocumentRepository,
	index storage.VectorIndex,
	embedder ai.Embedder,
	opts ...Option,
) (*Searcher, error) {
	if documents == nil {
		return nil, ErrDocumentRepositoryRequired
	}
	if index == nil {
		return nil, ErrVectorIndexRequired
	}
	if embedder == nil {
		return nil, ErrEmbedderRequired
	}

	s := &Searcher{
		documents:     documents,
		index:         index,
		embedder:      embedder,
		now:           time.Now,
		vectorTimeout: DefaultVectorTimeout,
		fetchTimeout:  DefaultFetchTimeout,
		nprobe:        DefaultNProbe,
		limit:         DefaultLimit,
		logger:        slog.Default(),
	}

	// Apply options
	for _, opt := range opts {
		if err := opt(s); err != nil {
			return nil, err
		}
	}
	s.logger = s.logger.With("component", "searcher")

	return s, nil
}

// Search returns up to limit articles nearest to query, in vector rank order,
// restricted to any publication date range the query mentions.
// nprobe or limit of zero or less use the configured defaults.
func (s *Searcher) Search(ctx context.Context, query string, nprobe, limit int) ([]*core.Document, error) {
	return s.SearchWithMonitor(ctx, query, nprobe, limit, nil)
}

// SearchWithMonitor is Search with a monitor that receives callbacks at each
// stage of the query.
func (s *Searcher) SearchWithMonitor(ctx context.Context, query string, nprobe, limit int, monitor SearchMonitor) ([]*core.Document, error) {
	// Use noop monitor if none provided
	if monitor == nil {
		monitor = &noopMonitor{}
	}
	if nprobe <= 0 {
		nprobe = s.nprobe
	}
	if limit <= 0 {
		limit = s.limit
	}

	logger := s.logger.With("search_id", uuid.NewString())
	start := time.Now()
	monitor.Start(query)

	results, err := s.search(ctx, logger, query, nprobe, limit, monitor)
	if err != nil {
		// Never hand back a partial result.
		results = []*core.Document{}
		logger.Warn("search failed", "err", err)
	} else {
		logger.Debug("search complete", "results", len(results), "elapsed", time.Since(start))
	}

	monitor.Finish(results, err)
	return results, err
}

func (s *Searcher) search(ctx context.Context, logger *slog.Logger, query string, nprobe, limit int, monitor SearchMonitor) ([]*core.Document, error) {
	if err := s.ensureReady(ctx); err != nil {
		return nil, err
	}

	// 1. Embed the query and extract the date range concurrently
	var (
		vector    []float32
		dateRange *core.DateRange
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		v, err := s.embedder.EmbedText(gctx, query)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			return fmt.Errorf("%w: %w", core.ErrEmbedding, err)
		}
		vector = v
		return nil
	})
	g.Go(func() error {
		dateRange = daterange.Extract(query, s.now())
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}
	monitor.AfterEmbedding(vector)
	monitor.AfterDateExtraction(dateRange)
	if dateRange != nil {
		logger.Debug("extracted date range", "start", dateRange.Start, "end", dateRange.End)
	}

	// 2. Approximate nearest neighbor search
	hits, err := s.vectorSearch(ctx, vector, nprobe, limit)
	if err != nil {
		return nil, err
	}
	monitor.AfterVectorSearch(hits)
	if len(hits) == 0 {
		return []*core.Document{}, nil
	}

	ids := make([]core.ID, len(hits))
	for i, hit := range hits {
		ids[i] = hit.ID
	}

	// 3. Relational fetch under the date range
	fetchCtx, cancel := context.WithTimeout(ctx, s.fetchTimeout)
	defer cancel()
	docs, err := s.documents.FetchByIDs(fetchCtx, ids, dateRange)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, fmt.Errorf("%w: fetching articles: %w", core.ErrStoreUnavailable, err)
	}
	monitor.AfterRecordRetrieval(docs)

	// 4. Restore vector rank; IDs without a surviving record are dropped
	byID := make(map[core.ID]*core.Document, len(docs))
	for _, doc := range docs {
		byID[doc.ID] = doc
	}
	results := make([]*core.Document, 0, len(docs))
	for _, id := range ids {
		if doc, ok := byID[id]; ok {
			results = append(results, doc)
			delete(byID, id)
		}
	}

	logger.Debug("ranked results", "hits", len(hits), "results", len(results))
	return results, nil
}

func (s *Searcher) vectorSearch(ctx context.Context, vector []float32, nprobe, limit int) ([]core.VectorHit, error) {
	searchCtx, cancel := context.WithTimeout(ctx, s.vectorTimeout)
	defer cancel()

	hits, err := s.index.Search(searchCtx, vector, nprobe, limit)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		if storage.IsUnavailable(err) {
			// The collection may have been recreated; reload on the next query.
			s.Reset()
		}
		return nil, fmt.Errorf("%w: vector search: %w", core.ErrStoreUnavailable, err)
	}
	return hits, nil
}

// ensureReady builds the index if none exists and loads the collection.
// It runs once and again after any failure or Reset.
func (s *Searcher) ensureReady(ctx context.Context) error {
	s.readyMu.Lock()
	defer s.readyMu.Unlock()

	if s.ready {
		return nil
	}

	built, err := s.index.BuildIndexIfAbsent(ctx)
	if err != nil {
		return fmt.Errorf("%w: building index: %w", core.ErrStoreUnavailable, err)
	}
	if built {
		s.logger.Info("built vector index")
	}

	if err := s.index.Load(ctx); err != nil {
		return fmt.Errorf("%w: loading collection: %w", core.ErrStoreUnavailable, err)
	}

	s.ready = true
	return nil
}

// Reset forces the next query to re-check index readiness.
// Call it after the collection may have been recreated.
func (s *Searcher) Reset() {
	s.readyMu.Lock()
	s.ready = false
	s.readyMu.Unlock()
}

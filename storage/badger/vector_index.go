package badger

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"sync"

	"github.com/bharadwaj008/Article-Search-Pipeline/core"
	"github.com/bharadwaj008/Article-Search-Pipeline/storage"
	"github.com/dgraph-io/badger/v4"
)

const (
	// DefaultNList is the number of IVF partitions built for a collection.
	DefaultNList = 128

	defaultIterations = 10
	upsertChunkSize   = 256
)

// VectorIndex implements storage.VectorIndex on BadgerDB with an IVF-flat
// index: vectors are clustered into nlist partitions and a search scans only
// the nprobe partitions whose centroids are closest to the query.
type VectorIndex struct {
	backend    *Backend
	name       string
	metric     core.Metric
	nlist      int
	iterations int
	logger     *slog.Logger

	// mu serializes lifecycle changes (recreate, build, load) against
	// reads and upserts.
	mu        sync.RWMutex
	loaded    bool
	schema    core.CollectionSchema
	centroids []centroid
}

var _ storage.VectorIndex = (*VectorIndex)(nil)

// IndexOption configures a VectorIndex.
type IndexOption func(*VectorIndex) error

// WithNList sets the number of IVF partitions. Default is DefaultNList.
func WithNList(n int) IndexOption {
	return func(v *VectorIndex) error {
		if n < 1 {
			return fmt.Errorf("nlist must be at least 1, got %d", n)
		}
		v.nlist = n
		return nil
	}
}

// WithMetric sets the similarity metric declared in the collection schema.
// Default is L2.
func WithMetric(metric core.Metric) IndexOption {
	return func(v *VectorIndex) error {
		switch metric {
		case core.MetricL2, core.MetricIP:
			v.metric = metric
			return nil
		default:
			return fmt.Errorf("unsupported metric %q", metric)
		}
	}
}

// WithIterations sets the number of k-means iterations used to train centroids.
func WithIterations(n int) IndexOption {
	return func(v *VectorIndex) error {
		if n < 1 {
			n = 1
		}
		v.iterations = n
		return nil
	}
}

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) IndexOption {
	return func(v *VectorIndex) error {
		if logger == nil {
			logger = slog.Default()
		}
		v.logger = logger
		return nil
	}
}

// NewVectorIndex creates a vector index for the named collection on backend.
// The backend is owned by the caller and must outlive the index.
func NewVectorIndex(backend *Backend, name string, opts ...IndexOption) (*VectorIndex, error) {
	if backend == nil {
		return nil, ErrBackendRequired
	}
	if name == "" || strings.Contains(name, ":") {
		return nil, fmt.Errorf("%w: %q", ErrInvalidCollectionName, name)
	}

	v := &VectorIndex{
		backend:    backend,
		name:       name,
		metric:     core.MetricL2,
		nlist:      DefaultNList,
		iterations: defaultIterations,
		logger:     slog.Default(),
	}
	for _, opt := range opts {
		if err := opt(v); err != nil {
			return nil, err
		}
	}
	v.logger = v.logger.With("component", "vector-index", "collection", name)
	return v, nil
}

// Name returns the collection name.
func (v *VectorIndex) Name() string {
	return v.name
}

// IsLoaded reports whether the collection is loaded for search.
func (v *VectorIndex) IsLoaded() bool {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return v.loaded
}

// EnsureCollection creates, validates or recreates the collection.
func (v *VectorIndex) EnsureCollection(ctx context.Context, dim int) (storage.CollectionState, error) {
	if dim < 1 {
		return 0, fmt.Errorf("%w: dimension %d", storage.ErrInvalidQuery, dim)
	}
	declared := core.ExpectedSchema(v.name, dim, v.metric)

	v.mu.Lock()
	defer v.mu.Unlock()

	existing, err := v.readSchema()
	if err != nil {
		return 0, err
	}

	if existing == nil {
		if err := v.writeSchema(declared); err != nil {
			return 0, err
		}
		v.logger.Info("created collection", "dim", dim, "metric", v.metric)
		return storage.CollectionCreated, nil
	}

	mismatch := existing.Validate(declared)
	if mismatch == nil {
		return storage.CollectionValidated, nil
	}

	v.logger.Warn("collection schema mismatch, dropping and recreating; all stored vectors are lost",
		"existing_dim", existing.Dim, "declared_dim", dim, "err", mismatch)
	if err := v.dropLocked(); err != nil {
		return 0, err
	}
	if err := v.writeSchema(declared); err != nil {
		return 0, err
	}
	return storage.CollectionRecreated, nil
}

// Schema returns the stored collection schema.
func (v *VectorIndex) Schema(ctx context.Context) (core.CollectionSchema, error) {
	v.mu.RLock()
	defer v.mu.RUnlock()

	schema, err := v.readSchema()
	if err != nil {
		return core.CollectionSchema{}, err
	}
	if schema == nil {
		return core.CollectionSchema{}, storage.ErrCollectionNotFound
	}
	return *schema, nil
}

// Upsert inserts or replaces vectors. When the index is already built each
// vector is also assigned to its nearest partition so it is searchable at once.
func (v *VectorIndex) Upsert(ctx context.Context, embeddings []core.FusedEmbedding) error {
	if len(embeddings) == 0 {
		return nil
	}

	v.mu.RLock()
	defer v.mu.RUnlock()

	schema, err := v.readSchema()
	if err != nil {
		return err
	}
	if schema == nil {
		return storage.ErrCollectionNotFound
	}
	for _, e := range embeddings {
		if len(e.Vector) != schema.Dim {
			return fmt.Errorf("%w: document %d has %d elements, collection has %d",
				storage.ErrDimensionMismatch, e.DocumentID, len(e.Vector), schema.Dim)
		}
	}

	centroids, built, err := v.currentCentroids()
	if err != nil {
		return err
	}

	for start := 0; start < len(embeddings); start += upsertChunkSize {
		if err := ctx.Err(); err != nil {
			return err
		}
		end := min(start+upsertChunkSize, len(embeddings))
		chunk := embeddings[start:end]

		err := v.backend.WithTx(func(tx *badger.Txn) error {
			for i := range chunk {
				e := &chunk[i]
				if err := tx.Set(makeVectorKey(v.name, e.DocumentID), storage.MarshalEmbedding(e)); err != nil {
					return err
				}
				if built {
					if err := v.assign(tx, centroids, e); err != nil {
						return err
					}
				}
			}
			return tx.Commit()
		}, true)
		if err != nil {
			return err
		}
	}
	return nil
}

// assign moves a document's posting to the partition nearest its vector.
func (v *VectorIndex) assign(tx *badger.Txn, centroids []centroid, e *core.FusedEmbedding) error {
	partition := overflowPartition
	if len(centroids) > 0 {
		partition = nearestPartitions(v.metric, centroids, e.Vector, 1)[0]
	}

	assignKey := makeAssignmentKey(v.name, e.DocumentID)
	item, err := tx.Get(assignKey)
	switch {
	case err == nil:
		var old uint32
		if err := item.Value(func(val []byte) error {
			var decodeErr error
			old, decodeErr = storage.UnmarshalUint32(val)
			return decodeErr
		}); err != nil {
			return err
		}
		if old != partition {
			if err := tx.Delete(makePostingKey(v.name, old, e.DocumentID)); err != nil {
				return err
			}
		}
	case !errors.Is(err, badger.ErrKeyNotFound):
		return err
	}

	if err := tx.Set(assignKey, storage.MarshalUint32(partition)); err != nil {
		return err
	}
	return tx.Set(makePostingKey(v.name, partition, e.DocumentID), []byte{})
}

// Get retrieves the stored embedding for a document.
func (v *VectorIndex) Get(ctx context.Context, id core.ID) (*core.FusedEmbedding, error) {
	var embedding *core.FusedEmbedding
	err := v.backend.WithTx(func(tx *badger.Txn) error {
		var err error
		embedding, err = v.readEmbedding(tx, id)
		return err
	}, false)
	if err != nil {
		return nil, err
	}
	if embedding == nil {
		return nil, storage.ErrNotFound
	}
	return embedding, nil
}

// Count returns the number of stored vectors.
func (v *VectorIndex) Count(ctx context.Context) (int, error) {
	count := 0
	err := v.backend.WithTx(func(tx *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.PrefetchValues = false
		opts.Prefix = makeScopedPrefix(vectorPrefix, v.name)
		iter := tx.NewIterator(opts)
		defer iter.Close()
		for iter.Rewind(); iter.Valid(); iter.Next() {
			count++
		}
		return nil
	}, false)
	return count, err
}

// BuildIndexIfAbsent trains partition centroids over the stored vectors and
// writes posting lists. It does nothing when an index already exists.
func (v *VectorIndex) BuildIndexIfAbsent(ctx context.Context) (bool, error) {
	v.mu.Lock()
	defer v.mu.Unlock()

	schema, err := v.readSchema()
	if err != nil {
		return false, err
	}
	if schema == nil {
		return false, storage.ErrCollectionNotFound
	}
	built, err := v.indexBuilt()
	if err != nil || built {
		return false, err
	}

	ids, vectors, err := v.readAllVectors(ctx)
	if err != nil {
		return false, err
	}

	// Clear leftovers of an interrupted build.
	err = v.backend.DeleteKeys(nil,
		makeScopedPrefix(centroidPrefix, v.name),
		makeScopedPrefix(postingPrefix, v.name),
		makeScopedPrefix(assignmentPrefix, v.name),
	)
	if err != nil {
		return false, err
	}

	centers, assignments := trainCentroids(v.metric, vectors, v.nlist, v.iterations)

	wb := v.backend.db.NewWriteBatch()
	defer wb.Cancel()
	for i, c := range centers {
		if err := wb.Set(makeCentroidKey(v.name, uint32(i)), storage.MarshalVector(c)); err != nil {
			return false, err
		}
	}
	for i, id := range ids {
		partition := uint32(assignments[i])
		if err := wb.Set(makeAssignmentKey(v.name, id), storage.MarshalUint32(partition)); err != nil {
			return false, err
		}
		if err := wb.Set(makePostingKey(v.name, partition, id), []byte{}); err != nil {
			return false, err
		}
	}
	if err := wb.Set(makeIndexMetaKey(v.name), storage.MarshalUint32(uint32(len(centers)))); err != nil {
		return false, err
	}
	if err := wb.Flush(); err != nil {
		return false, err
	}

	v.logger.Info("built IVF index", "vectors", len(ids), "nlist", len(centers), "metric", v.metric)
	return true, nil
}

// Load reads centroids into memory and marks the collection searchable.
func (v *VectorIndex) Load(ctx context.Context) error {
	v.mu.Lock()
	defer v.mu.Unlock()

	schema, err := v.readSchema()
	if err != nil {
		return err
	}
	if schema == nil {
		return storage.ErrCollectionNotFound
	}
	built, err := v.indexBuilt()
	if err != nil {
		return err
	}
	if !built {
		return storage.ErrIndexNotBuilt
	}

	centroids, err := v.readCentroids()
	if err != nil {
		return err
	}

	v.schema = *schema
	v.centroids = centroids
	v.loaded = true
	v.logger.Debug("loaded collection", "partitions", len(centroids))
	return nil
}

// Search returns up to limit nearest vectors, probing the nprobe closest partitions.
func (v *VectorIndex) Search(ctx context.Context, vector []float32, nprobe, limit int) ([]core.VectorHit, error) {
	v.mu.RLock()
	defer v.mu.RUnlock()

	if !v.loaded {
		schema, err := v.readSchema()
		if err != nil {
			return nil, err
		}
		if schema == nil {
			return nil, storage.ErrCollectionNotFound
		}
		return nil, storage.ErrCollectionNotLoaded
	}
	if len(vector) != v.schema.Dim {
		return nil, fmt.Errorf("%w: query has %d elements, collection has %d",
			storage.ErrDimensionMismatch, len(vector), v.schema.Dim)
	}
	if limit <= 0 {
		return []core.VectorHit{}, nil
	}
	if nprobe < 1 {
		nprobe = 1
	}

	partitions := append(nearestPartitions(v.metric, v.centroids, vector, nprobe), overflowPartition)

	var hits []core.VectorHit
	err := v.backend.WithTx(func(tx *badger.Txn) error {
		for _, partition := range partitions {
			if err := ctx.Err(); err != nil {
				return err
			}
			opts := badger.DefaultIteratorOptions
			opts.PrefetchValues = false
			opts.Prefix = makePartitionPrefix(v.name, partition)
			iter := tx.NewIterator(opts)
			for iter.Rewind(); iter.Valid(); iter.Next() {
				id := idFromKey(iter.Item().Key())
				embedding, err := v.readEmbedding(tx, id)
				if err != nil {
					iter.Close()
					return err
				}
				if embedding == nil {
					continue
				}
				hits = append(hits, core.VectorHit{ID: id, Score: score(v.metric, vector, embedding.Vector)})
			}
			iter.Close()
		}
		return nil
	}, false)
	if err != nil {
		return nil, err
	}

	sort.Slice(hits, func(i, j int) bool {
		if hits[i].Score != hits[j].Score {
			return closer(v.metric, hits[i].Score, hits[j].Score)
		}
		return hits[i].ID < hits[j].ID
	})
	if len(hits) > limit {
		hits = hits[:limit]
	}
	if hits == nil {
		hits = []core.VectorHit{}
	}
	return hits, nil
}

// Drop removes the collection, its vectors and its index.
func (v *VectorIndex) Drop(ctx context.Context) error {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.dropLocked()
}

func (v *VectorIndex) dropLocked() error {
	v.loaded = false
	v.centroids = nil
	v.schema = core.CollectionSchema{}
	if err := v.backend.DeleteKeys(collectionKeys(v.name), collectionPrefixes(v.name)...); err != nil {
		return err
	}
	v.logger.Info("dropped collection")
	return nil
}

// Close releases the in-memory index. The backend stays open.
func (v *VectorIndex) Close() error {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.loaded = false
	v.centroids = nil
	return nil
}

// currentCentroids returns the centroids new vectors are assigned to and
// whether an index exists. Must be called with mu held.
func (v *VectorIndex) currentCentroids() ([]centroid, bool, error) {
	if v.loaded {
		return v.centroids, true, nil
	}
	built, err := v.indexBuilt()
	if err != nil || !built {
		return nil, false, err
	}
	centroids, err := v.readCentroids()
	return centroids, true, err
}

// readSchema returns the stored schema or nil, nil if the collection doesn't exist.
func (v *VectorIndex) readSchema() (*core.CollectionSchema, error) {
	var schema *core.CollectionSchema
	err := v.backend.WithTx(func(tx *badger.Txn) error {
		item, err := tx.Get(makeCollectionKey(v.name))
		if err != nil {
			if errors.Is(err, badger.ErrKeyNotFound) {
				return nil
			}
			return err
		}
		return item.Value(func(val []byte) error {
			s, err := storage.UnmarshalSchema(val)
			if err != nil {
				return err
			}
			schema = &s
			return nil
		})
	}, false)
	return schema, err
}

func (v *VectorIndex) writeSchema(schema core.CollectionSchema) error {
	return v.backend.WithTx(func(tx *badger.Txn) error {
		if err := tx.Set(makeCollectionKey(v.name), storage.MarshalSchema(schema)); err != nil {
			return err
		}
		return tx.Commit()
	}, true)
}

func (v *VectorIndex) indexBuilt() (bool, error) {
	built := false
	err := v.backend.WithTx(func(tx *badger.Txn) error {
		_, err := tx.Get(makeIndexMetaKey(v.name))
		if err != nil {
			if errors.Is(err, badger.ErrKeyNotFound) {
				return nil
			}
			return err
		}
		built = true
		return nil
	}, false)
	return built, err
}

func (v *VectorIndex) readCentroids() ([]centroid, error) {
	var centroids []centroid
	err := v.backend.WithTx(func(tx *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = makeScopedPrefix(centroidPrefix, v.name)
		iter := tx.NewIterator(opts)
		defer iter.Close()
		for iter.Rewind(); iter.Valid(); iter.Next() {
			item := iter.Item()
			partition := partitionFromKey(item.Key())
			err := item.Value(func(val []byte) error {
				vec, err := storage.UnmarshalVector(val)
				if err != nil {
					return err
				}
				centroids = append(centroids, centroid{partition: partition, vector: vec})
				return nil
			})
			if err != nil {
				return err
			}
		}
		return nil
	}, false)
	return centroids, err
}

// readEmbedding returns the stored embedding or nil, nil if it doesn't exist.
func (v *VectorIndex) readEmbedding(tx *badger.Txn, id core.ID) (*core.FusedEmbedding, error) {
	item, err := tx.Get(makeVectorKey(v.name, id))
	if err != nil {
		if errors.Is(err, badger.ErrKeyNotFound) {
			return nil, nil
		}
		return nil, err
	}
	var embedding *core.FusedEmbedding
	err = item.Value(func(val []byte) error {
		var decodeErr error
		embedding, decodeErr = storage.UnmarshalEmbedding(val)
		return decodeErr
	})
	return embedding, err
}

// readAllVectors loads every stored vector in ID order.
func (v *VectorIndex) readAllVectors(ctx context.Context) ([]core.ID, [][]float32, error) {
	var ids []core.ID
	var vectors [][]float32
	err := v.backend.WithTx(func(tx *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = makeScopedPrefix(vectorPrefix, v.name)
		iter := tx.NewIterator(opts)
		defer iter.Close()
		for iter.Rewind(); iter.Valid(); iter.Next() {
			if err := ctx.Err(); err != nil {
				return err
			}
			item := iter.Item()
			id := idFromKey(item.Key())
			err := item.Value(func(val []byte) error {
				embedding, err := storage.UnmarshalEmbedding(val)
				if err != nil {
					return err
				}
				ids = append(ids, id)
				vectors = append(vectors, embedding.Vector)
				return nil
			})
			if err != nil {
				return err
			}
		}
		return nil
	}, false)
	return ids, vectors, err
}

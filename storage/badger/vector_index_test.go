package badger

import (
	"context"
	"testing"

	"github.com/bharadwaj008/Article-Search-Pipeline/core"
	"github.com/bharadwaj008/Article-Search-Pipeline/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestIndex(t *testing.T, opts ...IndexOption) *VectorIndex {
	t.Helper()
	index, backend, err := NewMemoryVectorIndex("articles", opts...)
	require.NoError(t, err)
	t.Cleanup(func() {
		index.Close()
		backend.Close()
	})
	return index
}

func hitIDs(hits []core.VectorHit) []core.ID {
	ids := make([]core.ID, len(hits))
	for i, h := range hits {
		ids[i] = h.ID
	}
	return ids
}

// twoClusters returns four 2-d vectors: IDs 1,2 near (10,0) and 3,4 near (-10,0).
func twoClusters() []core.FusedEmbedding {
	return []core.FusedEmbedding{
		{DocumentID: 1, Vector: []float32{10, 0.5}},
		{DocumentID: 2, Vector: []float32{9, -0.5}},
		{DocumentID: 3, Vector: []float32{-10, 0.5}},
		{DocumentID: 4, Vector: []float32{-9, -0.5}},
	}
}

func TestNewVectorIndex_Validation(t *testing.T) {
	backend, err := OpenBackend("", true)
	require.NoError(t, err)
	defer backend.Close()

	_, err = NewVectorIndex(nil, "articles")
	assert.Equal(t, ErrBackendRequired, err)

	_, err = NewVectorIndex(backend, "")
	assert.ErrorIs(t, err, ErrInvalidCollectionName)

	_, err = NewVectorIndex(backend, "bad:name")
	assert.ErrorIs(t, err, ErrInvalidCollectionName)

	_, err = NewVectorIndex(backend, "articles", WithNList(0))
	assert.Error(t, err)

	_, err = NewVectorIndex(backend, "articles", WithMetric("COSINE"))
	assert.Error(t, err)

	index, err := NewVectorIndex(backend, "articles", WithMetric(core.MetricIP), WithNList(8))
	require.NoError(t, err)
	assert.Equal(t, "articles", index.Name())
	assert.Equal(t, 8, index.nlist)
}

func TestEnsureCollection_Lifecycle(t *testing.T) {
	ctx := context.Background()
	index := newTestIndex(t)

	_, err := index.Schema(ctx)
	assert.ErrorIs(t, err, storage.ErrCollectionNotFound)

	state, err := index.EnsureCollection(ctx, 768)
	require.NoError(t, err)
	assert.Equal(t, storage.CollectionCreated, state)

	state, err = index.EnsureCollection(ctx, 768)
	require.NoError(t, err)
	assert.Equal(t, storage.CollectionValidated, state)

	schema, err := index.Schema(ctx)
	require.NoError(t, err)
	assert.Equal(t, core.ExpectedSchema("articles", 768, core.MetricL2), schema)
}

func TestEnsureCollection_RecreatesOnDimensionMismatch(t *testing.T) {
	ctx := context.Background()
	index := newTestIndex(t, WithNList(2))

	state, err := index.EnsureCollection(ctx, 512)
	require.NoError(t, err)
	assert.Equal(t, storage.CollectionCreated, state)

	vec := make([]float32, 512)
	vec[0] = 1
	require.NoError(t, index.Upsert(ctx, []core.FusedEmbedding{{DocumentID: 1, Vector: vec}}))
	built, err := index.BuildIndexIfAbsent(ctx)
	require.NoError(t, err)
	require.True(t, built)
	require.NoError(t, index.Load(ctx))

	state, err = index.EnsureCollection(ctx, 768)
	require.NoError(t, err)
	assert.Equal(t, storage.CollectionRecreated, state)

	schema, err := index.Schema(ctx)
	require.NoError(t, err)
	assert.Equal(t, 768, schema.Dim)

	count, err := index.Count(ctx)
	require.NoError(t, err)
	assert.Zero(t, count)
	assert.False(t, index.IsLoaded())

	// The index structure went with the old collection.
	assert.ErrorIs(t, index.Load(ctx), storage.ErrIndexNotBuilt)
}

func TestEnsureCollection_DoesNotTouchSiblingCollections(t *testing.T) {
	ctx := context.Background()
	index := newTestIndex(t)
	sibling, err := NewVectorIndex(index.backend, "articles2")
	require.NoError(t, err)

	_, err = sibling.EnsureCollection(ctx, 2)
	require.NoError(t, err)
	require.NoError(t, sibling.Upsert(ctx, twoClusters()))

	_, err = index.EnsureCollection(ctx, 3)
	require.NoError(t, err)
	require.NoError(t, index.Drop(ctx))

	count, err := sibling.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 4, count)
	_, err = sibling.Schema(ctx)
	assert.NoError(t, err)
}

func TestUpsert(t *testing.T) {
	ctx := context.Background()
	index := newTestIndex(t)

	err := index.Upsert(ctx, twoClusters())
	assert.ErrorIs(t, err, storage.ErrCollectionNotFound)

	_, err = index.EnsureCollection(ctx, 2)
	require.NoError(t, err)

	t.Run("empty batch", func(t *testing.T) {
		assert.NoError(t, index.Upsert(ctx, nil))
	})

	t.Run("dimension mismatch", func(t *testing.T) {
		err := index.Upsert(ctx, []core.FusedEmbedding{{DocumentID: 9, Vector: []float32{1, 2, 3}}})
		assert.ErrorIs(t, err, storage.ErrDimensionMismatch)
	})

	t.Run("idempotent", func(t *testing.T) {
		require.NoError(t, index.Upsert(ctx, twoClusters()))
		require.NoError(t, index.Upsert(ctx, twoClusters()))

		count, err := index.Count(ctx)
		require.NoError(t, err)
		assert.Equal(t, 4, count)
	})

	t.Run("replaces vector", func(t *testing.T) {
		require.NoError(t, index.Upsert(ctx, []core.FusedEmbedding{{DocumentID: 1, Vector: []float32{1, 1}, Fingerprint: 42}}))

		got, err := index.Get(ctx, 1)
		require.NoError(t, err)
		assert.Equal(t, []float32{1, 1}, got.Vector)
		assert.Equal(t, uint64(42), got.Fingerprint)
	})

	t.Run("get missing", func(t *testing.T) {
		_, err := index.Get(ctx, 999)
		assert.ErrorIs(t, err, storage.ErrNotFound)
	})
}

func TestBuildAndLoad(t *testing.T) {
	ctx := context.Background()
	index := newTestIndex(t, WithNList(2))

	_, err := index.BuildIndexIfAbsent(ctx)
	assert.ErrorIs(t, err, storage.ErrCollectionNotFound)
	assert.ErrorIs(t, index.Load(ctx), storage.ErrCollectionNotFound)

	_, err = index.EnsureCollection(ctx, 2)
	require.NoError(t, err)
	assert.ErrorIs(t, index.Load(ctx), storage.ErrIndexNotBuilt)

	require.NoError(t, index.Upsert(ctx, twoClusters()))

	built, err := index.BuildIndexIfAbsent(ctx)
	require.NoError(t, err)
	assert.True(t, built)

	built, err = index.BuildIndexIfAbsent(ctx)
	require.NoError(t, err)
	assert.False(t, built)

	require.NoError(t, index.Load(ctx))
	assert.True(t, index.IsLoaded())
	assert.Len(t, index.centroids, 2)
}

func TestSearch_NotReady(t *testing.T) {
	ctx := context.Background()
	index := newTestIndex(t)

	_, err := index.Search(ctx, []float32{1, 0}, 10, 10)
	assert.ErrorIs(t, err, storage.ErrCollectionNotFound)
	assert.True(t, storage.IsUnavailable(err))

	_, err = index.EnsureCollection(ctx, 2)
	require.NoError(t, err)

	_, err = index.Search(ctx, []float32{1, 0}, 10, 10)
	assert.ErrorIs(t, err, storage.ErrCollectionNotLoaded)
	assert.True(t, storage.IsUnavailable(err))
}

func TestSearch_Ranking(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name   string
		metric core.Metric
		query  []float32
		nprobe int
		limit  int
		want   []core.ID
	}{
		{name: "L2 all partitions", metric: core.MetricL2, query: []float32{10, 0.4}, nprobe: 2, limit: 10, want: []core.ID{1, 2, 4, 3}},
		{name: "L2 limit", metric: core.MetricL2, query: []float32{-10, 0.4}, nprobe: 2, limit: 2, want: []core.ID{3, 4}},
		{name: "L2 single probe stays in cluster", metric: core.MetricL2, query: []float32{-10, 0}, nprobe: 1, limit: 10, want: []core.ID{3, 4}},
		{name: "nprobe above nlist", metric: core.MetricL2, query: []float32{10, 0.4}, nprobe: 50, limit: 10, want: []core.ID{1, 2, 4, 3}},
		{name: "IP descending", metric: core.MetricIP, query: []float32{1, 0}, nprobe: 2, limit: 10, want: []core.ID{1, 2, 4, 3}},
		{name: "zero limit", metric: core.MetricL2, query: []float32{1, 0}, nprobe: 2, limit: 0, want: []core.ID{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			index := newTestIndex(t, WithNList(2), WithMetric(tt.metric))
			_, err := index.EnsureCollection(ctx, 2)
			require.NoError(t, err)
			require.NoError(t, index.Upsert(ctx, twoClusters()))
			_, err = index.BuildIndexIfAbsent(ctx)
			require.NoError(t, err)
			require.NoError(t, index.Load(ctx))

			hits, err := index.Search(ctx, tt.query, tt.nprobe, tt.limit)
			require.NoError(t, err)
			assert.Equal(t, tt.want, hitIDs(hits))
		})
	}
}

func TestSearch_QueryDimensionMismatch(t *testing.T) {
	ctx := context.Background()
	index := newTestIndex(t)
	_, err := index.EnsureCollection(ctx, 2)
	require.NoError(t, err)
	_, err = index.BuildIndexIfAbsent(ctx)
	require.NoError(t, err)
	require.NoError(t, index.Load(ctx))

	_, err = index.Search(ctx, []float32{1, 2, 3}, 1, 1)
	assert.ErrorIs(t, err, storage.ErrDimensionMismatch)
}

func TestSearch_UpsertAfterBuild(t *testing.T) {
	ctx := context.Background()

	t.Run("empty index uses overflow partition", func(t *testing.T) {
		index := newTestIndex(t, WithNList(4))
		_, err := index.EnsureCollection(ctx, 2)
		require.NoError(t, err)
		built, err := index.BuildIndexIfAbsent(ctx)
		require.NoError(t, err)
		require.True(t, built)
		require.NoError(t, index.Load(ctx))

		require.NoError(t, index.Upsert(ctx, twoClusters()))

		hits, err := index.Search(ctx, []float32{-10, 0.5}, 1, 10)
		require.NoError(t, err)
		assert.Equal(t, []core.ID{3, 4, 2, 1}, hitIDs(hits))
	})

	t.Run("moved vector appears once", func(t *testing.T) {
		index := newTestIndex(t, WithNList(2))
		_, err := index.EnsureCollection(ctx, 2)
		require.NoError(t, err)
		require.NoError(t, index.Upsert(ctx, twoClusters()))
		_, err = index.BuildIndexIfAbsent(ctx)
		require.NoError(t, err)
		require.NoError(t, index.Load(ctx))

		// Move document 1 into the other cluster.
		require.NoError(t, index.Upsert(ctx, []core.FusedEmbedding{{DocumentID: 1, Vector: []float32{-9.5, 0}}}))

		hits, err := index.Search(ctx, []float32{-9.5, 0}, 2, 10)
		require.NoError(t, err)
		assert.Equal(t, []core.ID{1, 3, 4, 2}, hitIDs(hits))

		hits, err = index.Search(ctx, []float32{-9.5, 0}, 1, 10)
		require.NoError(t, err)
		assert.ElementsMatch(t, []core.ID{1, 3, 4}, hitIDs(hits))
	})
}

func TestDrop(t *testing.T) {
	ctx := context.Background()
	index := newTestIndex(t, WithNList(2))
	_, err := index.EnsureCollection(ctx, 2)
	require.NoError(t, err)
	require.NoError(t, index.Upsert(ctx, twoClusters()))
	_, err = index.BuildIndexIfAbsent(ctx)
	require.NoError(t, err)
	require.NoError(t, index.Load(ctx))

	require.NoError(t, index.Drop(ctx))

	_, err = index.Schema(ctx)
	assert.ErrorIs(t, err, storage.ErrCollectionNotFound)
	_, err = index.Search(ctx, []float32{1, 0}, 1, 1)
	assert.ErrorIs(t, err, storage.ErrCollectionNotFound)
	count, err := index.Count(ctx)
	require.NoError(t, err)
	assert.Zero(t, count)
}

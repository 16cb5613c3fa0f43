package reindex

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/bharadwaj008/Article-Search-Pipeline/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// stubRepository serves a fixed set of documents and can fail the first reads.
type stubRepository struct {
	mu        sync.Mutex
	docs      []*core.Document
	failFirst int
	reads     int
}

func (r *stubRepository) FetchByIDs(ctx context.Context, ids []core.ID, dateRange *core.DateRange) ([]*core.Document, error) {
	return nil, errors.New("not used")
}

func (r *stubRepository) FetchAllForIndexing(ctx context.Context) ([]*core.Document, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.reads++
	if r.reads <= r.failFirst {
		return nil, errors.New("connection reset")
	}
	return r.docs, nil
}

func (r *stubRepository) AddDocuments(ctx context.Context, docs ...*core.Document) ([]*core.Document, error) {
	return nil, errors.New("not used")
}

func (r *stubRepository) Count(ctx context.Context) (int, error) {
	return len(r.docs), nil
}

func (r *stubRepository) Ping(ctx context.Context) error {
	return nil
}

func (r *stubRepository) Close() error {
	return nil
}

func makeDocs(n int) []*core.Document {
	docs := make([]*core.Document, n)
	for i := range docs {
		docs[i] = &core.Document{
			ID:       core.ID(i + 1),
			Title:    "Article " + string(rune('A'+i%26)) + string(rune('a'+i/26)),
			Abstract: "Abstract text",
		}
	}
	return docs
}

func TestDocumentIterator_Batches(t *testing.T) {
	repo := &stubRepository{docs: makeDocs(25)}
	it := NewDocumentIterator(repo, 10, 1, time.Millisecond)

	var sizes []int
	var ids []core.ID
	err := it.ForEach(context.Background(), func(docs []*core.Document) error {
		sizes = append(sizes, len(docs))
		for _, doc := range docs {
			ids = append(ids, doc.ID)
		}
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, []int{10, 10, 5}, sizes)
	require.Len(t, ids, 25)
	assert.Equal(t, core.ID(1), ids[0])
	assert.Equal(t, core.ID(25), ids[24])
	assert.Equal(t, 1, repo.reads, "should read the store once")
}

func TestDocumentIterator_DefaultBatchSize(t *testing.T) {
	it := NewDocumentIterator(&stubRepository{}, 0, 0, 0)
	assert.Equal(t, DefaultBatchSize, it.batchSize)
	assert.Equal(t, 1, it.maxRetries)
}

func TestDocumentIterator_Empty(t *testing.T) {
	it := NewDocumentIterator(&stubRepository{}, 10, 1, time.Millisecond)

	total, err := it.Load(context.Background())
	require.NoError(t, err)
	assert.Zero(t, total)

	called := false
	err = it.ForEach(context.Background(), func(docs []*core.Document) error {
		called = true
		return nil
	})
	require.NoError(t, err)
	assert.False(t, called)
}

func TestDocumentIterator_RetriesLoad(t *testing.T) {
	repo := &stubRepository{docs: makeDocs(3), failFirst: 2}
	it := NewDocumentIterator(repo, 10, 3, time.Millisecond)

	total, err := it.Load(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 3, total)
	assert.Equal(t, 3, repo.reads)
}

func TestDocumentIterator_LoadGivesUp(t *testing.T) {
	repo := &stubRepository{docs: makeDocs(3), failFirst: 5}
	it := NewDocumentIterator(repo, 10, 2, time.Millisecond)

	_, err := it.Load(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "connection reset")
	assert.Equal(t, 2, repo.reads)
}

func TestDocumentIterator_StopsOnError(t *testing.T) {
	repo := &stubRepository{docs: makeDocs(30)}
	it := NewDocumentIterator(repo, 10, 1, time.Millisecond)

	boom := errors.New("boom")
	batches := 0
	err := it.ForEach(context.Background(), func(docs []*core.Document) error {
		batches++
		if batches == 2 {
			return boom
		}
		return nil
	})
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, 2, batches)
}

func TestDocumentIterator_ContextCanceled(t *testing.T) {
	repo := &stubRepository{docs: makeDocs(30)}
	it := NewDocumentIterator(repo, 10, 1, time.Millisecond)
	_, err := it.Load(context.Background())
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	batches := 0
	err = it.ForEach(ctx, func(docs []*core.Document) error {
		batches++
		cancel()
		return nil
	})
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 1, batches)
}

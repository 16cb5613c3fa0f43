package storage

import (
	"context"

	"github.com/bharadwaj008/Article-Search-Pipeline/core"
)

// DocumentRepository provides access to article records in the relational store.
// Implementations must be thread-safe and support concurrent access.
type DocumentRepository interface {
	// FetchByIDs retrieves the documents with the given IDs, joined with their
	// summary and keywords. When dateRange is non-nil only documents whose
	// publication date falls within it (inclusive) are returned; documents
	// without a publication date are excluded. Missing IDs are not an error.
	// Result order is unspecified.
	FetchByIDs(ctx context.Context, ids []core.ID, dateRange *core.DateRange) ([]*core.Document, error)

	// FetchAllForIndexing retrieves every document, ordered by ID.
	FetchAllForIndexing(ctx context.Context) ([]*core.Document, error)

	// AddDocuments validates and inserts documents, skipping any whose title
	// already exists in storage or earlier in the same call. Assigns IDs and
	// derives keywords from the summary when they are absent.
	// Returns the documents that were inserted.
	AddDocuments(ctx context.Context, docs ...*core.Document) ([]*core.Document, error)

	// Count returns the number of stored documents.
	Count(ctx context.Context) (int, error)

	// Ping verifies the store is reachable.
	Ping(ctx context.Context) error

	// Close closes the store and releases resources.
	Close() error
}

// CollectionState reports what EnsureCollection did.
type CollectionState int

const (
	// CollectionCreated means no collection existed and one was created.
	CollectionCreated CollectionState = iota + 1
	// CollectionValidated means the existing collection matched the declared schema.
	CollectionValidated
	// CollectionRecreated means the existing collection was dropped and recreated
	// because its schema did not match. All previously stored vectors are gone.
	CollectionRecreated
)

func (s CollectionState) String() string {
	switch s {
	case CollectionCreated:
		return "created"
	case CollectionValidated:
		return "validated"
	case CollectionRecreated:
		return "recreated"
	default:
		return "unknown"
	}
}

// VectorIndex stores one fused vector per document and answers approximate
// nearest neighbor queries. Implementations must be thread-safe.
type VectorIndex interface {
	// EnsureCollection creates the collection if absent, validates it if present,
	// and drops and recreates it if its schema differs from the declared one.
	EnsureCollection(ctx context.Context, dim int) (CollectionState, error)

	// Schema returns the schema of the existing collection.
	// Returns ErrCollectionNotFound if there is none.
	Schema(ctx context.Context) (core.CollectionSchema, error)

	// Upsert inserts or replaces the vectors keyed by document ID.
	// Returns ErrDimensionMismatch if a vector does not match the collection.
	Upsert(ctx context.Context, embeddings []core.FusedEmbedding) error

	// Get retrieves the stored embedding for a document.
	// Returns ErrNotFound if it doesn't exist.
	Get(ctx context.Context, id core.ID) (*core.FusedEmbedding, error)

	// Count returns the number of stored vectors.
	Count(ctx context.Context) (int, error)

	// BuildIndexIfAbsent builds the ANN index structure unless one exists.
	// Returns true when an index was built by this call.
	BuildIndexIfAbsent(ctx context.Context) (bool, error)

	// Load makes the collection searchable. Search fails until Load succeeds.
	Load(ctx context.Context) error

	// Search returns up to limit hits nearest to vector, best first, probing
	// nprobe index partitions.
	Search(ctx context.Context, vector []float32, nprobe, limit int) ([]core.VectorHit, error)

	// Drop removes the collection with all vectors and index structure.
	Drop(ctx context.Context) error

	// Close releases resources.
	Close() error
}

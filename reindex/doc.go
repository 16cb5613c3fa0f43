// Package reindex rebuilds the vector index from the relational store.
//
// Every article is read back in ID order and pushed through the indexer in
// batches, with progress reporting and exponential backoff around store
// reads. A rebuild can optionally drop the collection first and trains the
// partition index once all vectors are written.
package reindex

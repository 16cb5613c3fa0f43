// Package indexing turns article records into fused vectors and writes them
// to the vector index.
//
// The Indexer embeds each document's title, abstract and summary with one
// batched embedder call, fuses the three normalized vectors as a weighted sum
// (title 0.5, abstract 0.3, summary 0.2 by default, not re-normalized) and
// upserts the result keyed by document ID.
//
// Before any write the collection schema is ensured: created when absent,
// validated when present, and dropped and recreated when its dimension or
// metric differs from the declared one.
//
// Embedding runs concurrently on a worker pool. Failures are reported per
// document in core.IndexReport and never abort the rest of the batch.
package indexing

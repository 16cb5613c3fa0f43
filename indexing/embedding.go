package indexing

import (
	"context"
	"errors"
	"fmt"

	"github.com/bharadwaj008/Article-Search-Pipeline/core"
	"github.com/bharadwaj008/Article-Search-Pipeline/storage"
)

// embedResult is the outcome of embedding one document.
type embedResult struct {
	embedding *core.FusedEmbedding
	unchanged bool // stored vector is current, nothing to write
	err       error
}

// embedDocument embeds the three field texts in one call and fuses them.
func (ix *Indexer) embedDocument(ctx context.Context, doc *core.Document) embedResult {
	if err := ctx.Err(); err != nil {
		return embedResult{err: err}
	}

	fingerprint := doc.Fingerprint(ix.model, ix.weights, ix.dim)
	if ix.skipUnchanged && ix.isUnchanged(ctx, doc.ID, fingerprint) {
		return embedResult{unchanged: true}
	}

	texts := doc.FieldTexts()
	vectors, err := ix.embedder.EmbedTexts(ctx, texts)
	if err != nil {
		if ctx.Err() != nil {
			return embedResult{err: ctx.Err()}
		}
		ix.logger.Warn("error generating embeddings", "document", doc.ID, "err", err)
		return embedResult{err: fmt.Errorf("%w: %w", core.ErrEmbedding, err)}
	}

	if len(vectors) != len(texts) {
		return embedResult{err: fmt.Errorf("%w: embedding result mismatch. expected %d, received %d",
			core.ErrEmbedding, len(texts), len(vectors))}
	}
	for _, vec := range vectors {
		if err := core.ValidateVector(vec, ix.dim); err != nil {
			return embedResult{err: fmt.Errorf("%w: %w", core.ErrEmbedding, err)}
		}
	}

	fused, err := core.Fuse(ix.weights.Slice(), vectors...)
	if err != nil {
		return embedResult{err: fmt.Errorf("%w: %w", core.ErrEmbedding, err)}
	}

	return embedResult{embedding: &core.FusedEmbedding{
		DocumentID:  doc.ID,
		Vector:      fused,
		Fingerprint: fingerprint,
	}}
}

// isUnchanged reports whether the stored vector for id was built from the
// same content, model, weights and dimension.
func (ix *Indexer) isUnchanged(ctx context.Context, id core.ID, fingerprint uint64) bool {
	existing, err := ix.index.Get(ctx, id)
	if err != nil {
		if !errors.Is(err, storage.ErrNotFound) {
			ix.logger.Debug("error reading stored vector", "document", id, "err", err)
		}
		return false
	}
	return existing.Fingerprint == fingerprint && len(existing.Vector) == ix.dim
}

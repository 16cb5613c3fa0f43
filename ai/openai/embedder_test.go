package openai

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/bharadwaj008/Article-Search-Pipeline/ai"
	"github.com/bharadwaj008/Article-Search-Pipeline/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// newEmbeddingServer serves /v1/embeddings, returning vectors of length dim
// whose first element is the input length.
func newEmbeddingServer(t *testing.T, dim int) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/embeddings" {
			http.NotFound(w, r)
			return
		}
		var req struct {
			Model string   `json:"model"`
			Input []string `json:"input"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}

		type item struct {
			Object    string    `json:"object"`
			Embedding []float32 `json:"embedding"`
			Index     int       `json:"index"`
		}
		data := make([]item, len(req.Input))
		for i, text := range req.Input {
			vec := make([]float32, dim)
			vec[0] = float32(len(text) + 1)
			vec[1] = 1
			data[i] = item{Object: "embedding", Embedding: vec, Index: i}
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{
			"object": "list",
			"data":   data,
			"model":  req.Model,
		})
	}))
}

func TestEmbedder(t *testing.T) {
	ctx := context.Background()

	t.Run("returns normalized vectors in input order", func(t *testing.T) {
		srv := newEmbeddingServer(t, 4)
		defer srv.Close()

		embedder, err := NewEmbedder(ai.NewConfig(
			ai.WithEmbeddingHost(srv.URL),
			ai.WithDimension(4),
		))
		require.NoError(t, err)

		vecs, err := embedder.EmbedTexts(ctx, []string{"ab", "abcdef"})
		require.NoError(t, err)
		require.Len(t, vecs, 2)
		for _, vec := range vecs {
			assert.InDelta(t, 1.0, core.Magnitude(vec), 1e-5)
		}
		assert.Greater(t, vecs[1][0], vecs[0][0])
	})

	t.Run("single text", func(t *testing.T) {
		srv := newEmbeddingServer(t, 4)
		defer srv.Close()

		embedder, err := NewEmbedder(ai.NewConfig(
			ai.WithEmbeddingHost(srv.URL),
			ai.WithDimension(4),
		))
		require.NoError(t, err)

		vec, err := embedder.EmbedText(ctx, "query")
		require.NoError(t, err)
		assert.Len(t, vec, 4)
	})

	t.Run("rejects wrong dimension", func(t *testing.T) {
		srv := newEmbeddingServer(t, 3)
		defer srv.Close()

		embedder, err := NewEmbedder(ai.NewConfig(
			ai.WithEmbeddingHost(srv.URL),
			ai.WithDimension(4),
		))
		require.NoError(t, err)

		_, err = embedder.EmbedText(ctx, "query")
		assert.ErrorIs(t, err, core.ErrDimensionMismatch)
	})

	t.Run("surfaces server errors", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, `{"error":{"message":"model not loaded"}}`, http.StatusInternalServerError)
		}))
		defer srv.Close()

		embedder, err := NewEmbedder(ai.NewConfig(ai.WithEmbeddingHost(srv.URL)))
		require.NoError(t, err)

		_, err = embedder.EmbedText(ctx, "query")
		assert.Error(t, err)
	})

	t.Run("empty summary text is sent as empty input", func(t *testing.T) {
		srv := newEmbeddingServer(t, 4)
		defer srv.Close()

		embedder, err := NewEmbedder(ai.NewConfig(
			ai.WithEmbeddingHost(srv.URL),
			ai.WithDimension(4),
		))
		require.NoError(t, err)

		vecs, err := embedder.EmbedTexts(ctx, []string{"title", "abstract", ""})
		require.NoError(t, err)
		require.Len(t, vecs, 3)
		assert.Less(t, vecs[2][0], vecs[0][0])
	})

	t.Run("endpoint rejecting empty input fails the batch", func(t *testing.T) {
		var sawEmpty atomic.Bool
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			var req struct {
				Input []string `json:"input"`
			}
			_ = json.NewDecoder(r.Body).Decode(&req)
			for _, text := range req.Input {
				if text == "" {
					sawEmpty.Store(true)
					http.Error(w, `{"error":{"message":"'$.input' is invalid"}}`, http.StatusBadRequest)
					return
				}
			}
			http.Error(w, "unexpected request", http.StatusInternalServerError)
		}))
		defer srv.Close()

		embedder, err := NewEmbedder(ai.NewConfig(
			ai.WithEmbeddingHost(srv.URL),
			ai.WithDimension(4),
		))
		require.NoError(t, err)

		_, err = embedder.EmbedTexts(ctx, []string{"title", "abstract", ""})
		assert.Error(t, err)
		assert.True(t, sawEmpty.Load())
	})

	t.Run("invalid config", func(t *testing.T) {
		_, err := NewEmbedder(ai.NewConfig(ai.WithEmbeddingModel("")))
		assert.Error(t, err)
	})
}

func TestNewProvider(t *testing.T) {
	srv := newEmbeddingServer(t, 4)
	defer srv.Close()

	t.Run("wraps embedder in cache", func(t *testing.T) {
		provider, err := NewProvider(ai.NewConfig(
			ai.WithEmbeddingHost(srv.URL),
			ai.WithDimension(4),
			ai.WithCacheSize(8),
		))
		require.NoError(t, err)
		defer provider.Close()

		_, ok := provider.Embedder().(*ai.CachedEmbedder)
		assert.True(t, ok)
		assert.Equal(t, "nomic-embed-text", provider.Model())
	})

	t.Run("no cache when size is zero", func(t *testing.T) {
		provider, err := NewProvider(ai.NewConfig(
			ai.WithEmbeddingHost(srv.URL),
			ai.WithDimension(4),
			ai.WithCacheSize(0),
		))
		require.NoError(t, err)
		defer provider.Close()

		_, ok := provider.Embedder().(*Embedder)
		assert.True(t, ok)
	})
}

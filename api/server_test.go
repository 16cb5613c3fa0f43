package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/bharadwaj008/Article-Search-Pipeline/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubBackend struct {
	docs      []*core.Document
	searchErr error
	healthErr error

	query  string
	nprobe int
	limit  int
}

func (b *stubBackend) Search(ctx context.Context, query string, nprobe, limit int) ([]*core.Document, error) {
	b.query, b.nprobe, b.limit = query, nprobe, limit
	if b.searchErr != nil {
		return []*core.Document{}, b.searchErr
	}
	return b.docs, nil
}

func (b *stubBackend) Health(ctx context.Context) error {
	return b.healthErr
}

func newTestServer(t *testing.T, backend Backend, opts ...Option) *httptest.Server {
	t.Helper()
	s, err := NewServer(backend, opts...)
	require.NoError(t, err)
	ts := httptest.NewServer(s.Handler())
	t.Cleanup(ts.Close)
	return ts
}

func getJSON(t *testing.T, url string, out any) int {
	t.Helper()
	resp, err := http.Get(url)
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, "application/json", resp.Header.Get("Content-Type"))
	require.NoError(t, json.NewDecoder(resp.Body).Decode(out))
	return resp.StatusCode
}

func TestNewServer(t *testing.T) {
	_, err := NewServer(nil)
	assert.Equal(t, ErrBackendRequired, err)

	_, err = NewServer(&stubBackend{}, WithLimits(0, 10))
	assert.Error(t, err)

	_, err = NewServer(&stubBackend{}, WithRequestTimeout(0))
	assert.Error(t, err)

	s, err := NewServer(&stubBackend{}, WithLogger(nil))
	require.NoError(t, err)
	assert.Equal(t, DefaultMaxLimit, s.maxLimit)
	assert.Equal(t, DefaultRequestTimeout, s.requestTimeout)
}

func TestHealth(t *testing.T) {
	t.Run("healthy", func(t *testing.T) {
		ts := newTestServer(t, &stubBackend{})
		var body map[string]string
		assert.Equal(t, http.StatusOK, getJSON(t, ts.URL+"/health", &body))
		assert.Equal(t, "ok", body["status"])
	})

	t.Run("unhealthy", func(t *testing.T) {
		ts := newTestServer(t, &stubBackend{healthErr: core.ErrStoreUnavailable})
		var body errorResponse
		assert.Equal(t, http.StatusServiceUnavailable, getJSON(t, ts.URL+"/health", &body))
		assert.Contains(t, body.Error, "store unavailable")
	})
}

func TestSearch(t *testing.T) {
	date := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	keywords := "attention, transformers"
	backend := &stubBackend{docs: []*core.Document{
		{ID: 5, Title: "First", Author: "A. Author", PublicationDate: &date, Abstract: "one", Keywords: &keywords},
		{ID: 2, Title: "Second", Abstract: "two"},
	}}
	ts := newTestServer(t, backend, WithLimits(50, 20))

	var body SearchResponse
	status := getJSON(t, ts.URL+"/search?q=transformers+last+week&nprobe=8&limit=500", &body)
	assert.Equal(t, http.StatusOK, status)

	assert.Equal(t, "transformers last week", backend.query)
	assert.Equal(t, 8, backend.nprobe)
	assert.Equal(t, 20, backend.limit, "limit should be capped")

	require.Len(t, body.Results, 2)
	assert.Equal(t, core.ID(5), body.Results[0].ID)
	assert.Equal(t, "2024-03-01", body.Results[0].PublicationDate)
	assert.Equal(t, "A. Author", body.Results[0].Authors)
	require.NotNil(t, body.Results[0].Keywords)
	assert.Equal(t, keywords, *body.Results[0].Keywords)
	assert.Equal(t, core.ID(2), body.Results[1].ID)
	assert.Empty(t, body.Results[1].PublicationDate)
	assert.Empty(t, body.Warning)
}

func TestSearch_Defaults(t *testing.T) {
	backend := &stubBackend{}
	ts := newTestServer(t, backend)

	var body SearchResponse
	assert.Equal(t, http.StatusOK, getJSON(t, ts.URL+"/search?q=graphs&nprobe=abc&limit=-3", &body))
	assert.Zero(t, backend.nprobe)
	assert.Zero(t, backend.limit)
	assert.NotNil(t, body.Results)
	assert.Empty(t, body.Results)
}

func TestSearch_MissingQuery(t *testing.T) {
	ts := newTestServer(t, &stubBackend{})

	var body errorResponse
	assert.Equal(t, http.StatusBadRequest, getJSON(t, ts.URL+"/search?q=+", &body))
	assert.Contains(t, body.Error, "q is required")
}

func TestSearch_Failure(t *testing.T) {
	backend := &stubBackend{searchErr: fmt.Errorf("%w: vector search: timeout", core.ErrStoreUnavailable)}
	ts := newTestServer(t, backend)

	var body SearchResponse
	assert.Equal(t, http.StatusServiceUnavailable, getJSON(t, ts.URL+"/search?q=graphs", &body))
	assert.Empty(t, body.Results)
	assert.Contains(t, body.Warning, "store unavailable")
}

func TestListenAndServe_Shutdown(t *testing.T) {
	s, err := NewServer(&stubBackend{})
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		done <- s.ListenAndServe(ctx, "127.0.0.1:0")
	}()

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(15 * time.Second):
		t.Fatal("server did not shut down")
	}
}

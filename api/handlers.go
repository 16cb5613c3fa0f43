package api

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"strings"

	"github.com/bharadwaj008/Article-Search-Pipeline/core"
	"github.com/go-chi/chi/v5/middleware"
)

// Article is the JSON form of a search result.
type Article struct {
	ID              core.ID `json:"id"`
	Title           string  `json:"title"`
	Authors         string  `json:"authors,omitempty"`
	PublicationDate string  `json:"publication_date,omitempty"`
	Abstract        string  `json:"abstract"`
	Summary         *string `json:"summary,omitempty"`
	Keywords        *string `json:"keywords,omitempty"`
}

// SearchResponse is the body of GET /search. Warning is set when the pipeline
// failed and Results is then empty.
type SearchResponse struct {
	Results []Article `json:"results"`
	Warning string    `json:"warning,omitempty"`
}

type errorResponse struct {
	Error string `json:"error"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), healthTimeout)
	defer cancel()

	if err := s.backend.Health(ctx); err != nil {
		writeJSON(w, http.StatusServiceUnavailable, errorResponse{Error: err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	query := strings.TrimSpace(r.URL.Query().Get("q"))
	if query == "" {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "query parameter q is required"})
		return
	}
	// Zero selects the backend's configured default.
	nprobe := clampInt(r.URL.Query().Get("nprobe"), 0, s.maxNProbe)
	limit := clampInt(r.URL.Query().Get("limit"), 0, s.maxLimit)

	ctx, cancel := context.WithTimeout(r.Context(), s.requestTimeout)
	defer cancel()

	docs, err := s.backend.Search(ctx, query, nprobe, limit)
	if err != nil {
		s.logger.Warn("search failed", "request_id", middleware.GetReqID(r.Context()), "err", err)
		writeJSON(w, http.StatusServiceUnavailable, SearchResponse{
			Results: []Article{},
			Warning: err.Error(),
		})
		return
	}

	results := make([]Article, len(docs))
	for i, doc := range docs {
		results[i] = toArticle(doc)
	}
	writeJSON(w, http.StatusOK, SearchResponse{Results: results})
}

func toArticle(doc *core.Document) Article {
	a := Article{
		ID:       doc.ID,
		Title:    doc.Title,
		Authors:  doc.Author,
		Abstract: doc.Abstract,
		Summary:  doc.Summary,
		Keywords: doc.Keywords,
	}
	if doc.PublicationDate != nil {
		a.PublicationDate = doc.PublicationDate.Format("2006-01-02")
	}
	return a
}

func clampInt(raw string, fallback, max int) int {
	if raw == "" {
		return fallback
	}
	value, err := strconv.Atoi(raw)
	if err != nil || value <= 0 {
		return fallback
	}
	if value > max {
		return max
	}
	return value
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

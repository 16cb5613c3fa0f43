package articlesearch

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/araddon/dateparse"
	"github.com/bharadwaj008/Article-Search-Pipeline/core"
)

// ArticleRecord is one article in an ingest file.
type ArticleRecord struct {
	Title           string  `json:"title"`
	Authors         string  `json:"authors"`
	PublicationDate string  `json:"publication_date"`
	Abstract        string  `json:"abstract"`
	Summary         *string `json:"summary,omitempty"`
	Keywords        *string `json:"keywords,omitempty"`
}

// ReadArticles decodes a JSON array of article records.
// Publication dates may use any common layout; empty dates stay unset.
func ReadArticles(r io.Reader) ([]*core.Document, error) {
	var records []ArticleRecord
	if err := json.NewDecoder(r).Decode(&records); err != nil {
		return nil, fmt.Errorf("decoding articles: %w", err)
	}

	docs := make([]*core.Document, 0, len(records))
	for i, rec := range records {
		doc := &core.Document{
			Title:    strings.TrimSpace(rec.Title),
			Author:   strings.TrimSpace(rec.Authors),
			Abstract: rec.Abstract,
			Summary:  rec.Summary,
			Keywords: rec.Keywords,
		}
		if date := strings.TrimSpace(rec.PublicationDate); date != "" {
			parsed, err := dateparse.ParseIn(date, time.UTC)
			if err != nil {
				return nil, fmt.Errorf("record %d: publication date %q: %w", i, date, err)
			}
			day := core.TruncateDay(parsed)
			doc.PublicationDate = &day
		}
		docs = append(docs, doc)
	}
	return docs, nil
}

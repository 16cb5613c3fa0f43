package sqlstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/bharadwaj008/Article-Search-Pipeline/core"
	"github.com/bharadwaj008/Article-Search-Pipeline/keywords"
)

// dateLayout is how publication dates are bound and compared. ISO dates
// compare correctly as strings in both dialects.
const dateLayout = "2006-01-02"

// maxIDsPerQuery keeps IN lists under SQLite's bound parameter limit.
const maxIDsPerQuery = 500

const selectDocuments = `
	SELECT a.id, a.title, a.author, a.publication_date, a.abstract, s.summary, s.keywords
	FROM articles a
	LEFT JOIN article_summaries s ON s.article_id = a.id`

// FetchByIDs retrieves documents by ID, optionally restricted to an inclusive
// publication date range. Documents without a date never match a range.
func (s *Store) FetchByIDs(ctx context.Context, ids []core.ID, dateRange *core.DateRange) ([]*core.Document, error) {
	docs := make([]*core.Document, 0, len(ids))
	for start := 0; start < len(ids); start += maxIDsPerQuery {
		end := min(start+maxIDsPerQuery, len(ids))
		chunk := ids[start:end]

		args := make([]any, 0, len(chunk)+2)
		for _, id := range chunk {
			args = append(args, int64(id))
		}
		query := selectDocuments + " WHERE a.id IN (" + placeholders(len(chunk)) + ")"
		if dateRange != nil {
			query += " AND a.publication_date BETWEEN ? AND ?"
			args = append(args, dateRange.Start.Format(dateLayout), dateRange.End.Format(dateLayout))
		}

		found, err := s.queryDocuments(ctx, query, args...)
		if err != nil {
			return nil, err
		}
		docs = append(docs, found...)
	}
	return docs, nil
}

// FetchAllForIndexing retrieves every document ordered by ID.
func (s *Store) FetchAllForIndexing(ctx context.Context) ([]*core.Document, error) {
	return s.queryDocuments(ctx, selectDocuments+" ORDER BY a.id")
}

// AddDocuments inserts documents in one transaction. Documents whose title is
// already stored, or repeated earlier in docs, are skipped, as are invalid
// documents. Keywords are derived from the summary when absent.
func (s *Store) AddDocuments(ctx context.Context, docs ...*core.Document) ([]*core.Document, error) {
	if len(docs) == 0 {
		return []*core.Document{}, nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("starting transaction: %w", err)
	}
	defer tx.Rollback()

	seen := make(map[string]struct{}, len(docs))
	inserted := make([]*core.Document, 0, len(docs))
	for _, doc := range docs {
		if err := core.ValidateDocument(doc); err != nil {
			s.logger.Warn("skipping invalid document", "err", err)
			continue
		}
		if _, dup := seen[doc.Title]; dup {
			s.logger.Debug("skipping duplicate title in batch", "title", doc.Title)
			continue
		}
		seen[doc.Title] = struct{}{}

		exists, err := titleExists(ctx, tx, doc.Title)
		if err != nil {
			return nil, err
		}
		if exists {
			s.logger.Debug("skipping existing title", "title", doc.Title)
			continue
		}

		stored, err := insertDocument(ctx, tx, doc)
		if err != nil {
			return nil, err
		}
		inserted = append(inserted, stored)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("committing documents: %w", err)
	}
	s.logger.Info("added documents", "inserted", len(inserted), "skipped", len(docs)-len(inserted))
	return inserted, nil
}

func titleExists(ctx context.Context, tx *sql.Tx, title string) (bool, error) {
	var one int
	err := tx.QueryRowContext(ctx, "SELECT 1 FROM articles WHERE title = ? LIMIT 1", title).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("checking title: %w", err)
	}
	return true, nil
}

func insertDocument(ctx context.Context, tx *sql.Tx, doc *core.Document) (*core.Document, error) {
	var date any
	if doc.PublicationDate != nil {
		date = doc.PublicationDate.Format(dateLayout)
	}

	res, err := tx.ExecContext(ctx,
		"INSERT INTO articles (title, author, publication_date, abstract) VALUES (?, ?, ?, ?)",
		doc.Title, nullString(doc.Author), date, doc.Abstract)
	if err != nil {
		return nil, fmt.Errorf("inserting article: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("reading article id: %w", err)
	}

	stored := *doc
	stored.ID = core.ID(id)

	if stored.Summary != nil {
		if stored.Keywords == nil {
			tags := keywords.Tags(*stored.Summary)
			stored.Keywords = &tags
		}
		_, err := tx.ExecContext(ctx,
			"INSERT INTO article_summaries (article_id, summary, keywords) VALUES (?, ?, ?)",
			id, *stored.Summary, *stored.Keywords)
		if err != nil {
			return nil, fmt.Errorf("inserting summary: %w", err)
		}
	}
	return &stored, nil
}

func (s *Store) queryDocuments(ctx context.Context, query string, args ...any) ([]*core.Document, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying articles: %w", err)
	}
	defer rows.Close()

	docs := []*core.Document{}
	for rows.Next() {
		doc, err := scanDocument(rows)
		if err != nil {
			return nil, err
		}
		docs = append(docs, doc)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating articles: %w", err)
	}
	return docs, nil
}

func scanDocument(rows *sql.Rows) (*core.Document, error) {
	var (
		id       int64
		title    string
		author   sql.NullString
		date     sql.NullString
		abstract sql.NullString
		summary  sql.NullString
		tags     sql.NullString
	)
	if err := rows.Scan(&id, &title, &author, &date, &abstract, &summary, &tags); err != nil {
		return nil, fmt.Errorf("scanning article: %w", err)
	}

	doc := &core.Document{
		ID:       core.ID(id),
		Title:    title,
		Author:   author.String,
		Abstract: abstract.String,
	}
	if date.Valid {
		published, err := parseDate(date.String)
		if err != nil {
			return nil, fmt.Errorf("article %d: %w", id, err)
		}
		doc.PublicationDate = &published
	}
	if summary.Valid {
		doc.Summary = &summary.String
	}
	if tags.Valid {
		doc.Keywords = &tags.String
	}
	return doc, nil
}

// parseDate accepts a bare date or any timestamp that starts with one, since
// drivers may hand DATE columns back formatted as full timestamps.
func parseDate(value string) (time.Time, error) {
	if len(value) < len(dateLayout) {
		return time.Time{}, fmt.Errorf("invalid publication date %q", value)
	}
	t, err := time.Parse(dateLayout, value[:len(dateLayout)])
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid publication date %q: %w", value, err)
	}
	return t, nil
}

func placeholders(n int) string {
	return strings.TrimSuffix(strings.Repeat("?,", n), ",")
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

package main

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/bharadwaj008/Article-Search-Pipeline/core"
)

const (
	displayAll      = "all"
	displayTitles   = "titles"
	displayKeywords = "keywords"

	abstractPreview = 100
)

// articleResult is a search result with placeholders filled in for display.
type articleResult struct {
	ID       core.ID
	Title    string
	Authors  string
	Date     string
	Abstract string
	Keywords string
}

func validDisplay(display string) bool {
	switch display {
	case displayAll, displayTitles, displayKeywords:
		return true
	}
	return false
}

func toResults(docs []*core.Document) []*articleResult {
	results := make([]*articleResult, len(docs))
	for i, doc := range docs {
		r := &articleResult{
			ID:       doc.ID,
			Title:    doc.Title,
			Authors:  orDefault(doc.Author, "No Authors"),
			Date:     "No Date",
			Abstract: orDefault(doc.Abstract, "No Summary Available"),
			Keywords: "No Keywords",
		}
		if doc.PublicationDate != nil {
			r.Date = doc.PublicationDate.Format("2006-01-02")
		}
		if doc.Keywords != nil && *doc.Keywords != "" {
			r.Keywords = *doc.Keywords
		}
		results[i] = r
	}
	return results
}

func printResults(w io.Writer, results []*articleResult, display string) {
	if len(results) == 0 {
		fmt.Fprintln(w, "No articles found.")
		return
	}

	fmt.Fprintf(w, "\n--- Search Results ---\n\n")
	for _, r := range results {
		fmt.Fprintf(w, "ID: %d\n", r.ID)
		fmt.Fprintf(w, "Title: %s\n", r.Title)
		switch display {
		case displayAll:
			fmt.Fprintf(w, "Authors: %s\n", r.Authors)
			fmt.Fprintf(w, "Date: %s\n", r.Date)
			fmt.Fprintf(w, "Abstract: %s\n", preview(r.Abstract))
			fmt.Fprintf(w, "Keywords: %s\n", r.Keywords)
		case displayKeywords:
			fmt.Fprintf(w, "Keywords: %s\n", r.Keywords)
		}
		fmt.Fprintln(w, strings.Repeat("-", 80))
	}
}

func exportCSV(path string, results []*articleResult) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}
	if err := writeCSV(f, results); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

func writeCSV(w io.Writer, results []*articleResult) error {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"ID", "Title", "Authors", "Date", "Abstract", "Keywords"}); err != nil {
		return err
	}
	for _, r := range results {
		record := []string{strconv.FormatInt(int64(r.ID), 10), r.Title, r.Authors, r.Date, r.Abstract, r.Keywords}
		if err := cw.Write(record); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// preview cuts s to its first 100 characters, marking the cut with "...".
func preview(s string) string {
	if utf8.RuneCountInString(s) <= abstractPreview {
		return s
	}
	return string([]rune(s)[:abstractPreview]) + "..."
}

func orDefault(s, fallback string) string {
	if strings.TrimSpace(s) == "" {
		return fallback
	}
	return s
}

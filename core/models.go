package core

import (
	"encoding/binary"
	"math"
	"time"

	"github.com/go-crypt/x/blake2b"
)

// ID is the stable identifier of an article. It is assigned by the relational
// store and used as the join key between the relational store and the vector index.
type ID int64

// DefaultDimension is the embedding dimension produced by the configured model.
const DefaultDimension = 768

// Document is an article record as stored in the relational store.
type Document struct {
	ID              ID
	Title           string
	Author          string
	PublicationDate *time.Time // nil when the source had no date
	Abstract        string
	Summary         *string // derived metadata; nil when absent
	Keywords        *string // comma-separated tags; nil when absent
}

// SummaryText returns the summary or the empty string when it is absent.
// Missing summaries are embedded as "" so the summary weight still applies.
func (d *Document) SummaryText() string {
	if d.Summary == nil {
		return ""
	}
	return *d.Summary
}

// FieldTexts returns the texts that are embedded for a document, in weight order.
func (d *Document) FieldTexts() []string {
	return []string{d.Title, d.Abstract, d.SummaryText()}
}

// Fingerprint generates a deterministic hash of everything that shapes the
// fused vector using BLAKE2b: the model name, the fusion weights, the
// dimension and the embedded fields.
func (d *Document) Fingerprint(model string, weights Weights, dim int) uint64 {
	h, _ := blake2b.New(8, nil) // 8 bytes = 64 bits
	h.Write([]byte(model))
	var buf [4]byte
	for _, w := range weights.Slice() {
		binary.LittleEndian.PutUint32(buf[:], math.Float32bits(w))
		h.Write(buf[:])
	}
	binary.LittleEndian.PutUint32(buf[:], uint32(dim))
	h.Write(buf[:])
	for _, text := range d.FieldTexts() {
		h.Write([]byte{0})
		h.Write([]byte(text))
	}
	return binary.LittleEndian.Uint64(h.Sum(nil))
}

// FusedEmbedding is the single vector stored in the vector index for a document.
type FusedEmbedding struct {
	DocumentID  ID
	Vector      []float32
	Fingerprint uint64 // optional content hash, zero when unused
}

// DateRange is an inclusive, day-granular publication date constraint.
// A nil *DateRange means no constraint.
type DateRange struct {
	Start time.Time
	End   time.Time
}

// Contains reports whether t falls within the range at day granularity.
func (r *DateRange) Contains(t time.Time) bool {
	day := TruncateDay(t)
	return !day.Before(TruncateDay(r.Start)) && !day.After(TruncateDay(r.End))
}

// TruncateDay returns midnight of t's calendar day in t's location.
func TruncateDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

// IndexFailure records why a single document could not be indexed.
type IndexFailure struct {
	DocumentID ID
	Reason     error
}

// IndexReport summarizes the outcome of indexing a batch.
type IndexReport struct {
	Indexed int
	Failed  []IndexFailure
}

// VectorHit is a single result of an ANN search. For L2 the score is the
// Euclidean distance (lower is better); for IP it is the inner product
// (higher is better). Hits are always returned best first.
type VectorHit struct {
	ID    ID
	Score float32
}

// Metric is the similarity metric of a collection.
type Metric string

const (
	// MetricL2 ranks by ascending Euclidean distance.
	MetricL2 Metric = "L2"
	// MetricIP ranks by descending inner product.
	MetricIP Metric = "IP"
)

// Field names of the declared collection schema.
const (
	PrimaryFieldName = "id"
	VectorFieldName  = "embeddings"
)

// CollectionSchema is the declared shape of the vector collection.
// Schemas are compared structurally with ==.
type CollectionSchema struct {
	Name         string
	PrimaryField string
	VectorField  string
	Dim          int
	Metric       Metric
}

// ExpectedSchema returns the schema the indexer declares for a collection.
func ExpectedSchema(name string, dim int, metric Metric) CollectionSchema {
	if metric == "" {
		metric = MetricL2
	}
	return CollectionSchema{
		Name:         name,
		PrimaryField: PrimaryFieldName,
		VectorField:  VectorFieldName,
		Dim:          dim,
		Metric:       metric,
	}
}

// Weights are the fusion coefficients for the title, abstract and summary vectors.
type Weights struct {
	Title    float32
	Abstract float32
	Summary  float32
}

// DefaultWeights are the fusion weights used unless configured otherwise.
var DefaultWeights = Weights{Title: 0.5, Abstract: 0.3, Summary: 0.2}

// Slice returns the weights in field order.
func (w Weights) Slice() []float32 {
	return []float32{w.Title, w.Abstract, w.Summary}
}

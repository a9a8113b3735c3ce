// Package entities contains core business entities.
// These are pure domain objects with no external dependencies.
package entities

import (
	"fmt"
	"time"
)

// Page is a single page of extracted document text.
type Page struct {
	Number int // 1-based page number
	Text   string
}

// Chunk is a fixed-size segment of a document page, stored with its
// embedding and provenance. Chunks are immutable after ingestion and
// never span page boundaries, so the (SourceFile, Page) pair is exact.
type Chunk struct {
	ID         string
	SourceFile string // base name of the originating document
	Page       int    // 1-based page the chunk text appears on
	Index      int    // position of the chunk within its page
	Content    string
	Embedding  []float32
}

// ScoredChunk pairs a retrieved chunk with its similarity to the query.
// Higher score means closer (cosine similarity), so a result list sorted
// by score descending is sorted by distance ascending.
type ScoredChunk struct {
	Chunk Chunk
	Score float64
}

// Query is a single user question. Transient: created per request,
// discarded once the result is produced.
type Query struct {
	Question       string
	IncludeWeather bool
	Location       string
}

// WeatherSnapshot is the current weather for a location, fetched fresh
// per query. Snapshots are never cached.
type WeatherSnapshot struct {
	Location        string
	TemperatureC    float64
	Conditions      string
	PrecipitationMM float64
	FetchedAt       time.Time
}

// Citation is the provenance of a piece of context shown to the user.
type Citation struct {
	SourceFile string `json:"source_file"`
	Page       int    `json:"page"`
}

// String renders the citation the way the UI lists sources.
func (c Citation) String() string {
	return fmt.Sprintf("%s, page %d", c.SourceFile, c.Page)
}

// Answer is the model's response plus the provenance of every chunk
// that was actually part of the prompt. No citation may refer to a
// chunk that was truncated out of the prompt.
type Answer struct {
	Text      string
	Citations []Citation
}

// AskStatus tags the outcome of a single question.
type AskStatus int

const (
	// StatusOK: answer produced with all requested context.
	StatusOK AskStatus = iota
	// StatusDegraded: answer produced, but some context (weather) was
	// unavailable. Reason carries the user-facing notice.
	StatusDegraded
	// StatusFailed: no answer for this query. Reason carries the error.
	StatusFailed
)

func (s AskStatus) String() string {
	switch s {
	case StatusOK:
		return "ok"
	case StatusDegraded:
		return "degraded"
	case StatusFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// AskResult is the tagged outcome of answering one query. A failure in
// one result never affects the store or a subsequent query.
type AskResult struct {
	Status  AskStatus
	Answer  *Answer
	Weather *WeatherSnapshot
	Reason  string // degradation notice or failure reason
}

// SkippedDocument records a document the ingestor could not process.
type SkippedDocument struct {
	Path   string
	Reason string
}

// IngestReport summarizes one ingestion run. Skipped documents are
// recorded, not fatal.
type IngestReport struct {
	RunID     string
	Documents int
	Pages     int
	Chunks    int
	Skipped   []SkippedDocument
	Duration  time.Duration
}

// Skip records a document that could not be ingested.
func (r *IngestReport) Skip(path string, err error) {
	r.Skipped = append(r.Skipped, SkippedDocument{Path: path, Reason: err.Error()})
}

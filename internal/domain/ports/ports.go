// Package ports defines interfaces for external dependencies.
// Usecases depend on these abstractions, not concrete implementations.
// Adapters implement these interfaces.
package ports

import (
	"context"
	"errors"

	"github.com/agriassist/agriassist/internal/domain/entities"
)

// ErrWeatherUnavailable is returned by WeatherProvider when the location
// cannot be resolved or the remote call fails. It is an explicit signal,
// not a fault: the answering pipeline proceeds without weather.
var ErrWeatherUnavailable = errors.New("weather unavailable")

// Embedder generates vector embeddings for text. The same Embedder
// instance must serve both ingestion and query: mixing embedding models
// between the two silently produces meaningless distances.
type Embedder interface {
	// Embed generates a vector embedding for the given text.
	Embed(ctx context.Context, text string) ([]float32, error)

	// EmbedBatch generates embeddings for multiple texts.
	EmbedBatch(ctx context.Context, texts []string) ([][]float32, error)
}

// LLM generates a text completion from a prompt.
type LLM interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

// VectorStore persists chunk embeddings and supports nearest-neighbor
// search. The store is append-only during query operation; writes happen
// only through ingestion.
type VectorStore interface {
	// Store appends chunks atomically: either all chunks are written or
	// none are.
	Store(ctx context.Context, chunks []entities.Chunk) error

	// ReplaceSource atomically swaps all chunks of one source file for
	// the given set, so a re-ingested document never appears twice.
	ReplaceSource(ctx context.Context, sourceFile string, chunks []entities.Chunk) error

	// Search returns at most topK chunks ranked nearest-first by cosine
	// similarity. An empty store returns an empty result, not an error.
	Search(ctx context.Context, embedding []float32, topK int) ([]entities.ScoredChunk, error)

	// DeleteSource removes all chunks for a source file.
	DeleteSource(ctx context.Context, sourceFile string) error

	// Clear removes all data from the store.
	Clear(ctx context.Context) error

	// Count returns the number of stored chunks.
	Count(ctx context.Context) (int, error)
}

// WeatherProvider fetches current conditions for a human-readable
// location name. Implementations return ErrWeatherUnavailable (wrapped)
// for any resolution or transport failure.
type WeatherProvider interface {
	Current(ctx context.Context, location string) (*entities.WeatherSnapshot, error)
}

// DocumentReader extracts per-page text from a document file.
type DocumentReader interface {
	// ReadPages returns the document's pages in order.
	ReadPages(ctx context.Context, path string) ([]entities.Page, error)

	// SupportedExtensions returns file extensions this reader handles.
	SupportedExtensions() []string
}

// FileWatcher monitors a directory for document changes.
type FileWatcher interface {
	// Watch starts monitoring the directory and emits events.
	Watch(ctx context.Context, dir string) (<-chan FileEvent, error)

	// Stop stops the watcher.
	Stop() error
}

// FileEvent represents a file system change.
type FileEvent struct {
	Path      string
	Operation FileOperation
}

// FileOperation is the type of file change.
type FileOperation int

const (
	FileCreated FileOperation = iota
	FileModified
	FileDeleted
)

// Package usecases contains application business rules.
// Usecases orchestrate entities and depend on port interfaces only.
package usecases

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/agriassist/agriassist/internal/domain/entities"
	"github.com/agriassist/agriassist/internal/domain/ports"
)

// Ingestor populates the vector store from a document corpus.
// Each page is chunked independently so a chunk never spans pages and
// its (source file, page) citation is exact.
type Ingestor struct {
	reader       ports.DocumentReader
	embedder     ports.Embedder
	store        ports.VectorStore
	chunkSize    int
	chunkOverlap int
	logger       *zap.Logger
}

// NewIngestor creates an Ingestor with injected dependencies.
func NewIngestor(
	reader ports.DocumentReader,
	embedder ports.Embedder,
	store ports.VectorStore,
	chunkSize, chunkOverlap int,
	logger *zap.Logger,
) *Ingestor {
	if chunkSize <= 0 {
		chunkSize = 400 // characters
	}
	if chunkOverlap < 0 || chunkOverlap >= chunkSize {
		chunkOverlap = chunkSize * 15 / 100
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Ingestor{
		reader:       reader,
		embedder:     embedder,
		store:        store,
		chunkSize:    chunkSize,
		chunkOverlap: chunkOverlap,
		logger:       logger,
	}
}

// ListDocuments returns the paths of all supported documents under dir,
// sorted for deterministic ingestion order.
func (ing *Ingestor) ListDocuments(dir string) ([]string, error) {
	ents, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("reading corpus directory: %w", err)
	}

	supported := make(map[string]bool)
	for _, ext := range ing.reader.SupportedExtensions() {
		supported[ext] = true
	}

	var paths []string
	for _, e := range ents {
		if e.IsDir() {
			continue
		}
		if supported[strings.ToLower(filepath.Ext(e.Name()))] {
			paths = append(paths, filepath.Join(dir, e.Name()))
		}
	}
	sort.Strings(paths)
	return paths, nil
}

// IngestDirectory processes every supported document under dir.
// Unreadable documents are skipped and recorded in the report, never
// fatal to the run; the store stays consistent after a partial failure.
func (ing *Ingestor) IngestDirectory(ctx context.Context, dir string) (*entities.IngestReport, error) {
	start := time.Now()
	report := &entities.IngestReport{RunID: uuid.NewString()}

	paths, err := ing.ListDocuments(dir)
	if err != nil {
		return nil, err
	}

	for _, path := range paths {
		pages, chunks, err := ing.IngestFile(ctx, path)
		if err != nil {
			ing.logger.Warn("skipping document",
				zap.String("path", path),
				zap.Error(err),
			)
			report.Skip(path, err)
			continue
		}
		report.Documents++
		report.Pages += pages
		report.Chunks += chunks
	}

	report.Duration = time.Since(start)
	ing.logger.Info("ingestion run finished",
		zap.String("run_id", report.RunID),
		zap.Int("documents", report.Documents),
		zap.Int("pages", report.Pages),
		zap.Int("chunks", report.Chunks),
		zap.Int("skipped", len(report.Skipped)),
		zap.Duration("duration", report.Duration),
	)
	return report, nil
}

// IngestFile extracts, chunks, embeds and stores a single document.
// All chunks of the document are written in one atomic replace, so a
// failed embedding leaves no half-written entries and a re-ingested
// file never appears twice.
func (ing *Ingestor) IngestFile(ctx context.Context, path string) (pages, chunks int, err error) {
	docPages, err := ing.reader.ReadPages(ctx, path)
	if err != nil {
		return 0, 0, fmt.Errorf("extracting text: %w", err)
	}

	source := filepath.Base(path)
	docChunks := ing.chunkPages(source, docPages)
	if len(docChunks) == 0 {
		// Document with no extractable text still counts as processed.
		return len(docPages), 0, nil
	}

	texts := make([]string, len(docChunks))
	for i, c := range docChunks {
		texts[i] = c.Content
	}

	embeddings, err := ing.embedder.EmbedBatch(ctx, texts)
	if err != nil {
		return 0, 0, fmt.Errorf("embedding chunks: %w", err)
	}
	if len(embeddings) != len(docChunks) {
		return 0, 0, fmt.Errorf("embedder returned %d vectors for %d chunks", len(embeddings), len(docChunks))
	}
	for i := range docChunks {
		docChunks[i].Embedding = embeddings[i]
	}

	if err := ing.store.ReplaceSource(ctx, source, docChunks); err != nil {
		return 0, 0, fmt.Errorf("storing chunks: %w", err)
	}

	return len(docPages), len(docChunks), nil
}

// RemoveFile deletes all stored chunks originating from the given path.
func (ing *Ingestor) RemoveFile(ctx context.Context, path string) error {
	return ing.store.DeleteSource(ctx, filepath.Base(path))
}

// chunkPages splits each page independently. The chunk index restarts
// per page; IDs are deterministic so re-ingestion is idempotent.
func (ing *Ingestor) chunkPages(source string, pages []entities.Page) []entities.Chunk {
	var chunks []entities.Chunk
	for _, page := range pages {
		for i, text := range splitText(page.Text, ing.chunkSize, ing.chunkOverlap) {
			chunks = append(chunks, entities.Chunk{
				ID:         chunkID(source, page.Number, i),
				SourceFile: source,
				Page:       page.Number,
				Index:      i,
				Content:    text,
			})
		}
	}
	return chunks
}

// splitText cuts text into overlapping segments of roughly size
// characters, breaking at word boundaries where possible.
func splitText(text string, size, overlap int) []string {
	text = strings.TrimSpace(text)
	if len(text) == 0 {
		return nil
	}

	var parts []string
	start := 0
	for start < len(text) {
		end := start + size
		if end >= len(text) {
			end = len(text)
		} else if idx := strings.LastIndex(text[start:end], " "); idx > 0 {
			end = start + idx
		}

		part := strings.TrimSpace(text[start:end])
		if len(part) > 0 {
			parts = append(parts, part)
		}

		if end >= len(text) {
			break
		}
		next := end - overlap
		if next <= start {
			next = end
		}
		start = next
	}
	return parts
}

// chunkID creates a deterministic ID from the chunk's provenance.
func chunkID(source string, page, index int) string {
	hash := sha256.Sum256([]byte(fmt.Sprintf("%s:%d:%d", source, page, index)))
	return hex.EncodeToString(hash[:8])
}

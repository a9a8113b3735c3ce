package usecases

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/agriassist/agriassist/internal/domain/entities"
)

// mockReader implements ports.DocumentReader for testing.
type mockReader struct {
	pages map[string][]entities.Page // keyed by base name
	fail  map[string]error
}

func (m *mockReader) ReadPages(ctx context.Context, path string) ([]entities.Page, error) {
	name := filepath.Base(path)
	if err, ok := m.fail[name]; ok {
		return nil, err
	}
	return m.pages[name], nil
}

func (m *mockReader) SupportedExtensions() []string { return []string{".pdf"} }

// mockEmbedder implements ports.Embedder for testing.
type mockEmbedder struct {
	embedFn func(text string) ([]float32, error)
	calls   int
}

func (m *mockEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	m.calls++
	if m.embedFn != nil {
		return m.embedFn(text)
	}
	return []float32{0.1, 0.2, 0.3}, nil
}

func (m *mockEmbedder) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	result := make([][]float32, len(texts))
	for i := range texts {
		emb, err := m.Embed(ctx, texts[i])
		if err != nil {
			return nil, err
		}
		result[i] = emb
	}
	return result, nil
}

// mockStore implements ports.VectorStore for testing.
type mockStore struct {
	chunks   []entities.Chunk
	searchFn func(embedding []float32, topK int) ([]entities.ScoredChunk, error)
	replaced []string
}

func (m *mockStore) Store(ctx context.Context, chunks []entities.Chunk) error {
	m.chunks = append(m.chunks, chunks...)
	return nil
}

func (m *mockStore) ReplaceSource(ctx context.Context, sourceFile string, chunks []entities.Chunk) error {
	m.replaced = append(m.replaced, sourceFile)
	kept := m.chunks[:0]
	for _, c := range m.chunks {
		if c.SourceFile != sourceFile {
			kept = append(kept, c)
		}
	}
	m.chunks = append(kept, chunks...)
	return nil
}

func (m *mockStore) Search(ctx context.Context, embedding []float32, topK int) ([]entities.ScoredChunk, error) {
	if m.searchFn != nil {
		return m.searchFn(embedding, topK)
	}
	var results []entities.ScoredChunk
	for i, c := range m.chunks {
		if i >= topK {
			break
		}
		results = append(results, entities.ScoredChunk{Chunk: c, Score: 0.9})
	}
	return results, nil
}

func (m *mockStore) DeleteSource(ctx context.Context, sourceFile string) error {
	kept := m.chunks[:0]
	for _, c := range m.chunks {
		if c.SourceFile != sourceFile {
			kept = append(kept, c)
		}
	}
	m.chunks = kept
	return nil
}

func (m *mockStore) Clear(ctx context.Context) error {
	m.chunks = nil
	return nil
}

func (m *mockStore) Count(ctx context.Context) (int, error) {
	return len(m.chunks), nil
}

// corpusDir creates a temp directory containing empty placeholder files;
// the mockReader supplies their content by name.
func corpusDir(t *testing.T, names ...string) string {
	t.Helper()
	dir := t.TempDir()
	for _, name := range names {
		if err := os.WriteFile(filepath.Join(dir, name), []byte("%PDF"), 0o644); err != nil {
			t.Fatal(err)
		}
	}
	return dir
}

func TestIngestor_PageAttribution(t *testing.T) {
	reader := &mockReader{pages: map[string][]entities.Page{
		"crops.pdf": {
			{Number: 1, Text: "Rice requires flooded fields."},
			{Number: 2, Text: "Wheat prefers cooler weather."},
		},
	}}
	store := &mockStore{}
	ing := NewIngestor(reader, &mockEmbedder{}, store, 400, 60, nil)

	dir := corpusDir(t, "crops.pdf")
	report, err := ing.IngestDirectory(context.Background(), dir)
	if err != nil {
		t.Fatalf("ingest failed: %v", err)
	}

	if report.Documents != 1 || report.Pages != 2 || report.Chunks != 2 {
		t.Errorf("unexpected report: %+v", report)
	}
	for _, c := range store.chunks {
		if c.SourceFile != "crops.pdf" {
			t.Errorf("wrong source file %q", c.SourceFile)
		}
		if strings.Contains(c.Content, "Rice") && c.Page != 1 {
			t.Errorf("rice chunk attributed to page %d", c.Page)
		}
		if strings.Contains(c.Content, "Wheat") && c.Page != 2 {
			t.Errorf("wheat chunk attributed to page %d", c.Page)
		}
	}
}

func TestIngestor_ChunksNeverSpanPages(t *testing.T) {
	// Two short pages with a small chunk size: every chunk must carry
	// text from exactly one page.
	reader := &mockReader{pages: map[string][]entities.Page{
		"doc.pdf": {
			{Number: 1, Text: strings.Repeat("alpha ", 30)},
			{Number: 2, Text: strings.Repeat("omega ", 30)},
		},
	}}
	store := &mockStore{}
	ing := NewIngestor(reader, &mockEmbedder{}, store, 50, 10, nil)

	dir := corpusDir(t, "doc.pdf")
	if _, err := ing.IngestDirectory(context.Background(), dir); err != nil {
		t.Fatalf("ingest failed: %v", err)
	}

	for _, c := range store.chunks {
		hasAlpha := strings.Contains(c.Content, "alpha")
		hasOmega := strings.Contains(c.Content, "omega")
		if hasAlpha && hasOmega {
			t.Fatalf("chunk spans pages: %q", c.Content)
		}
		if hasAlpha && c.Page != 1 || hasOmega && c.Page != 2 {
			t.Errorf("chunk %q attributed to page %d", c.Content, c.Page)
		}
	}
}

func TestIngestor_SkipsUnreadableDocument(t *testing.T) {
	reader := &mockReader{
		pages: map[string][]entities.Page{
			"good.pdf": {{Number: 1, Text: "readable content"}},
		},
		fail: map[string]error{
			"broken.pdf": errors.New("malformed xref table"),
		},
	}
	store := &mockStore{}
	ing := NewIngestor(reader, &mockEmbedder{}, store, 400, 60, nil)

	dir := corpusDir(t, "good.pdf", "broken.pdf")
	report, err := ing.IngestDirectory(context.Background(), dir)
	if err != nil {
		t.Fatalf("a broken document must not fail the run: %v", err)
	}

	if report.Documents != 1 {
		t.Errorf("expected 1 ingested document, got %d", report.Documents)
	}
	if len(report.Skipped) != 1 || filepath.Base(report.Skipped[0].Path) != "broken.pdf" {
		t.Errorf("expected broken.pdf in skipped list, got %+v", report.Skipped)
	}
	if len(store.chunks) != 1 {
		t.Errorf("store should hold only the readable document's chunks, got %d", len(store.chunks))
	}
}

func TestIngestor_EmbeddingFailureLeavesStoreUntouched(t *testing.T) {
	reader := &mockReader{pages: map[string][]entities.Page{
		"doc.pdf": {{Number: 1, Text: "some content"}},
	}}
	embedder := &mockEmbedder{embedFn: func(string) ([]float32, error) {
		return nil, errors.New("model offline")
	}}
	store := &mockStore{}
	ing := NewIngestor(reader, embedder, store, 400, 60, nil)

	dir := corpusDir(t, "doc.pdf")
	report, err := ing.IngestDirectory(context.Background(), dir)
	if err != nil {
		t.Fatalf("ingest failed: %v", err)
	}

	if len(report.Skipped) != 1 {
		t.Fatalf("embedding failure should skip the document, got %+v", report)
	}
	if len(store.chunks) != 0 {
		t.Error("no chunks may be written when embedding fails")
	}
}

func TestIngestor_EmptyDirectory(t *testing.T) {
	ing := NewIngestor(&mockReader{}, &mockEmbedder{}, &mockStore{}, 400, 60, nil)

	report, err := ing.IngestDirectory(context.Background(), t.TempDir())
	if err != nil {
		t.Fatalf("empty directory should not error: %v", err)
	}
	if report.Documents != 0 || report.Chunks != 0 || len(report.Skipped) != 0 {
		t.Errorf("expected empty report, got %+v", report)
	}
}

func TestIngestor_ReingestReplacesSource(t *testing.T) {
	reader := &mockReader{pages: map[string][]entities.Page{
		"doc.pdf": {{Number: 1, Text: "version one"}},
	}}
	store := &mockStore{}
	ing := NewIngestor(reader, &mockEmbedder{}, store, 400, 60, nil)

	dir := corpusDir(t, "doc.pdf")
	if _, err := ing.IngestDirectory(context.Background(), dir); err != nil {
		t.Fatal(err)
	}
	reader.pages["doc.pdf"] = []entities.Page{{Number: 1, Text: "version two"}}
	if _, err := ing.IngestDirectory(context.Background(), dir); err != nil {
		t.Fatal(err)
	}

	if len(store.chunks) != 1 {
		t.Fatalf("re-ingested document appears %d times in the store", len(store.chunks))
	}
	if !strings.Contains(store.chunks[0].Content, "version two") {
		t.Errorf("store holds stale content: %q", store.chunks[0].Content)
	}
}

func TestSplitText_Overlap(t *testing.T) {
	words := make([]string, 40)
	for i := range words {
		words[i] = fmt.Sprintf("word%02d", i)
	}
	text := strings.Join(words, " ")

	parts := splitText(text, 80, 16)
	if len(parts) < 3 {
		t.Fatalf("expected multiple chunks, got %d", len(parts))
	}
	for i := 1; i < len(parts); i++ {
		// With a positive overlap each chunk starts inside the tail of
		// the previous one.
		head := strings.Fields(parts[i])[0]
		if !strings.Contains(parts[i-1], head) {
			t.Errorf("chunks %d and %d share no overlap: %q | %q", i-1, i, parts[i-1], parts[i])
		}
	}
}

func TestSplitText_ShortTextSingleChunk(t *testing.T) {
	parts := splitText("Rice requires flooded fields during the vegetative stage.", 400, 60)
	if len(parts) != 1 {
		t.Fatalf("expected one chunk, got %d", len(parts))
	}
}

func TestSplitText_Empty(t *testing.T) {
	if parts := splitText("   \n ", 400, 60); parts != nil {
		t.Errorf("whitespace-only text should yield no chunks, got %v", parts)
	}
}

func TestChunkID_Deterministic(t *testing.T) {
	a := chunkID("doc.pdf", 3, 1)
	b := chunkID("doc.pdf", 3, 1)
	c := chunkID("doc.pdf", 3, 2)
	if a != b {
		t.Error("same provenance must produce the same ID")
	}
	if a == c {
		t.Error("different chunk index must produce a different ID")
	}
}

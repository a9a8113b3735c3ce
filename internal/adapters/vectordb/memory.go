package vectordb

import (
	"context"
	"sort"
	"sync"

	"github.com/agriassist/agriassist/internal/domain/entities"
)

// InMemoryStore is a non-persistent vector store, useful for tests and
// throwaway corpora. Same search semantics as SQLiteStore.
type InMemoryStore struct {
	mu      sync.RWMutex
	chunks  map[string]entities.Chunk // chunkID -> chunk
	sources map[string][]string       // source file -> chunkIDs
	order   []string                  // insertion order for deterministic ranking
}

// NewInMemoryStore creates a new in-memory vector store.
func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{
		chunks:  make(map[string]entities.Chunk),
		sources: make(map[string][]string),
	}
}

// Store saves chunks with their embeddings.
func (s *InMemoryStore) Store(ctx context.Context, chunks []entities.Chunk) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.insert(chunks)
	return nil
}

// ReplaceSource swaps all chunks of one source file for the given set.
func (s *InMemoryStore) ReplaceSource(ctx context.Context, sourceFile string, chunks []entities.Chunk) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.remove(sourceFile)
	s.insert(chunks)
	return nil
}

func (s *InMemoryStore) insert(chunks []entities.Chunk) {
	for _, chunk := range chunks {
		if _, exists := s.chunks[chunk.ID]; !exists {
			s.order = append(s.order, chunk.ID)
			s.sources[chunk.SourceFile] = append(s.sources[chunk.SourceFile], chunk.ID)
		}
		s.chunks[chunk.ID] = chunk
	}
}

func (s *InMemoryStore) remove(sourceFile string) {
	ids, ok := s.sources[sourceFile]
	if !ok {
		return
	}
	gone := make(map[string]bool, len(ids))
	for _, id := range ids {
		delete(s.chunks, id)
		gone[id] = true
	}
	delete(s.sources, sourceFile)

	kept := s.order[:0]
	for _, id := range s.order {
		if !gone[id] {
			kept = append(kept, id)
		}
	}
	s.order = kept
}

// Search finds the topK chunks nearest to the query embedding.
func (s *InMemoryStore) Search(ctx context.Context, embedding []float32, topK int) ([]entities.ScoredChunk, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var results []entities.ScoredChunk
	for _, id := range s.order {
		chunk := s.chunks[id]
		results = append(results, entities.ScoredChunk{
			Chunk: chunk,
			Score: cosineSimilarity(embedding, chunk.Embedding),
		})
	}

	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Score > results[j].Score
	})
	if len(results) > topK {
		results = results[:topK]
	}
	return results, nil
}

// DeleteSource removes all chunks for a source file.
func (s *InMemoryStore) DeleteSource(ctx context.Context, sourceFile string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.remove(sourceFile)
	return nil
}

// Clear removes all data from the store.
func (s *InMemoryStore) Clear(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.chunks = make(map[string]entities.Chunk)
	s.sources = make(map[string][]string)
	s.order = nil
	return nil
}

// Count returns the number of stored chunks.
func (s *InMemoryStore) Count(ctx context.Context) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.chunks), nil
}

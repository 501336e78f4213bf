package vector

import (
	"context"
	"sort"
	"sync"
)

// MemoryStore is an in-process Store. It exists for development and tests;
// the pgvector store is the production backend.
type MemoryStore struct {
	mu          sync.RWMutex
	collections map[string]map[string]Entry
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{collections: make(map[string]map[string]Entry)}
}

func (s *MemoryStore) Upsert(_ context.Context, collection, id, document string, embedding []float32, metadata map[string]any) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	coll, ok := s.collections[collection]
	if !ok {
		coll = make(map[string]Entry)
		s.collections[collection] = coll
	}

	vec := make([]float32, len(embedding))
	copy(vec, embedding)

	coll[id] = Entry{ID: id, Document: document, Metadata: metadata, Embedding: vec}
	return nil
}

func (s *MemoryStore) Search(_ context.Context, collection string, query []float32, limit int) ([]Result, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	results := []Result{}
	for _, entry := range s.collections[collection] {
		results = append(results, Result{
			ID:       entry.ID,
			Distance: CosineDistance(query, entry.Embedding),
			Document: entry.Document,
			Metadata: entry.Metadata,
		})
	}

	sort.Slice(results, func(i, j int) bool { return results[i].Distance < results[j].Distance })
	if limit >= 0 && len(results) > limit {
		results = results[:limit]
	}
	return results, nil
}

func (s *MemoryStore) Delete(_ context.Context, collection, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.collections[collection], id)
	return nil
}

func (s *MemoryStore) Get(_ context.Context, collection, id string) (*Entry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	entry, ok := s.collections[collection][id]
	if !ok {
		return nil, nil
	}
	return &entry, nil
}

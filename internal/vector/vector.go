// Package vector defines the nearest-neighbor index the matching engine
// searches, with in-memory and Postgres/pgvector implementations.
package vector

import (
	"context"
	"math"
)

// Entry is one stored document with its embedding.
type Entry struct {
	ID        string
	Document  string
	Metadata  map[string]any
	Embedding []float32
}

// Result is one search hit. Distance is cosine distance on [0, 2],
// ascending order means most similar first.
type Result struct {
	ID       string
	Distance float64
	Document string
	Metadata map[string]any
}

// Store is a per-collection nearest-neighbor index. Implementations must
// treat Upsert as idempotent, Delete of an absent id as a no-op, and a
// search over an empty collection as an empty (non-error) result.
type Store interface {
	Upsert(ctx context.Context, collection, id, document string, embedding []float32, metadata map[string]any) error
	Search(ctx context.Context, collection string, query []float32, limit int) ([]Result, error)
	Delete(ctx context.Context, collection, id string) error
	// Get returns the stored entry, or (nil, nil) when absent.
	Get(ctx context.Context, collection, id string) (*Entry, error)
}

// CosineDistance is 1 minus cosine similarity, clamped to [0, 2]. A
// zero-magnitude operand is defined as maximally distant (2.0) so the
// division by zero case never arises.
func CosineDistance(a, b []float32) float64 {
	n := len(a)
	if len(b) < n {
		n = len(b)
	}

	var dot, normA, normB float64
	for i := 0; i < n; i++ {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}
	if normA == 0 || normB == 0 {
		return 2.0
	}

	d := 1.0 - dot/(math.Sqrt(normA)*math.Sqrt(normB))
	return math.Min(2.0, math.Max(0.0, d))
}

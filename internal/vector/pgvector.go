package vector

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/pgvector/pgvector-go"
)

// PGVectorStore keeps embeddings in the vector_entries table using the
// pgvector extension; `<=>` is cosine distance.
type PGVectorStore struct {
	db *sql.DB
}

func NewPGVectorStore(db *sql.DB) *PGVectorStore {
	return &PGVectorStore{db: db}
}

func (s *PGVectorStore) Upsert(ctx context.Context, collection, id, document string, embedding []float32, metadata map[string]any) error {
	meta, err := json.Marshal(metadata)
	if err != nil {
		return fmt.Errorf("marshal metadata: %w", err)
	}
	if metadata == nil {
		meta = []byte("{}")
	}

	query := `INSERT INTO vector_entries (collection, doc_id, document, metadata, embedding)
	          VALUES ($1, $2, $3, $4, $5)
	          ON CONFLICT (collection, doc_id) DO UPDATE
	            SET document = EXCLUDED.document,
	                metadata = EXCLUDED.metadata,
	                embedding = EXCLUDED.embedding`
	_, err = s.db.ExecContext(ctx, query, collection, id, document, meta, pgvector.NewVector(embedding))
	return err
}

func (s *PGVectorStore) Search(ctx context.Context, collection string, query []float32, limit int) ([]Result, error) {
	sqlQuery := `SELECT doc_id, document, metadata, embedding <=> $2 AS distance
	             FROM vector_entries
	             WHERE collection = $1 AND embedding IS NOT NULL
	             ORDER BY distance ASC
	             LIMIT $3`
	rows, err := s.db.QueryContext(ctx, sqlQuery, collection, pgvector.NewVector(query), limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	results := []Result{}
	for rows.Next() {
		var r Result
		var meta []byte
		if err := rows.Scan(&r.ID, &r.Document, &meta, &r.Distance); err != nil {
			return nil, err
		}
		if len(meta) > 0 {
			if err := json.Unmarshal(meta, &r.Metadata); err != nil {
				return nil, fmt.Errorf("unmarshal metadata: %w", err)
			}
		}
		results = append(results, r)
	}
	return results, rows.Err()
}

func (s *PGVectorStore) Delete(ctx context.Context, collection, id string) error {
	_, err := s.db.ExecContext(ctx,
		`DELETE FROM vector_entries WHERE collection = $1 AND doc_id = $2`, collection, id)
	return err
}

func (s *PGVectorStore) Get(ctx context.Context, collection, id string) (*Entry, error) {
	query := `SELECT doc_id, document, metadata, embedding
	          FROM vector_entries WHERE collection = $1 AND doc_id = $2`

	entry := &Entry{}
	var meta []byte
	var embedding pgvector.Vector
	err := s.db.QueryRowContext(ctx, query, collection, id).Scan(&entry.ID, &entry.Document, &meta, &embedding)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	if len(meta) > 0 {
		if err := json.Unmarshal(meta, &entry.Metadata); err != nil {
			return nil, fmt.Errorf("unmarshal metadata: %w", err)
		}
	}
	entry.Embedding = embedding.Slice()
	return entry, nil
}

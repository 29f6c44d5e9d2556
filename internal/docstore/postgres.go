package docstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PGStore implements Store on a single Postgres documents table with a JSONB
// data column. Field filters use JSONB containment so they hit the GIN index.
type PGStore struct {
	pool *pgxpool.Pool
}

// NewPGStore constructs a PGStore.
func NewPGStore(pool *pgxpool.Pool) *PGStore {
	return &PGStore{pool: pool}
}

// Get fetches a document by collection and id.
func (s *PGStore) Get(ctx context.Context, collection, id string) (Document, error) {
	row := s.pool.QueryRow(ctx, `SELECT data, created_at, updated_at FROM documents WHERE collection = $1 AND id = $2`, collection, id)
	doc := Document{Collection: collection, ID: id}
	var raw []byte
	if err := row.Scan(&raw, &doc.CreatedAt, &doc.UpdatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Document{}, ErrNotFound
		}
		return Document{}, fmt.Errorf("docstore: get %s/%s: %w", collection, id, err)
	}
	if err := json.Unmarshal(raw, &doc.Data); err != nil {
		return Document{}, fmt.Errorf("docstore: decode %s/%s: %w", collection, id, err)
	}
	return doc, nil
}

// Where returns documents whose field equals value.
func (s *PGStore) Where(ctx context.Context, collection, field string, value any) ([]Document, error) {
	filter, err := json.Marshal(map[string]any{field: value})
	if err != nil {
		return nil, fmt.Errorf("docstore: encode filter: %w", err)
	}
	rows, err := s.pool.Query(ctx, `SELECT id, data, created_at, updated_at FROM documents WHERE collection = $1 AND data @> $2 ORDER BY id`, collection, filter)
	if err != nil {
		return nil, fmt.Errorf("docstore: where %s.%s: %w", collection, field, err)
	}
	defer rows.Close()

	var docs []Document
	for rows.Next() {
		doc := Document{Collection: collection}
		var raw []byte
		if err := rows.Scan(&doc.ID, &raw, &doc.CreatedAt, &doc.UpdatedAt); err != nil {
			return nil, err
		}
		if err := json.Unmarshal(raw, &doc.Data); err != nil {
			return nil, fmt.Errorf("docstore: decode %s/%s: %w", collection, doc.ID, err)
		}
		docs = append(docs, doc)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return docs, nil
}

// Create inserts a new document, failing with ErrDuplicate on collision.
func (s *PGStore) Create(ctx context.Context, doc Document) error {
	raw, err := json.Marshal(doc.Data)
	if err != nil {
		return fmt.Errorf("docstore: encode %s/%s: %w", doc.Collection, doc.ID, err)
	}
	_, err = s.pool.Exec(ctx, `INSERT INTO documents (collection, id, data, created_at, updated_at) VALUES ($1, $2, $3, NOW(), NOW())`, doc.Collection, doc.ID, raw)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return ErrDuplicate
		}
		return fmt.Errorf("docstore: create %s/%s: %w", doc.Collection, doc.ID, err)
	}
	return nil
}

// Put inserts or replaces a document.
func (s *PGStore) Put(ctx context.Context, doc Document) error {
	raw, err := json.Marshal(doc.Data)
	if err != nil {
		return fmt.Errorf("docstore: encode %s/%s: %w", doc.Collection, doc.ID, err)
	}
	_, err = s.pool.Exec(ctx, `
		INSERT INTO documents (collection, id, data, created_at, updated_at)
		VALUES ($1, $2, $3, NOW(), NOW())
		ON CONFLICT (collection, id) DO UPDATE SET data = EXCLUDED.data, updated_at = NOW()`,
		doc.Collection, doc.ID, raw)
	if err != nil {
		return fmt.Errorf("docstore: put %s/%s: %w", doc.Collection, doc.ID, err)
	}
	return nil
}

// Delete removes a document.
func (s *PGStore) Delete(ctx context.Context, collection, id string) error {
	tag, err := s.pool.Exec(ctx, `DELETE FROM documents WHERE collection = $1 AND id = $2`, collection, id)
	if err != nil {
		return fmt.Errorf("docstore: delete %s/%s: %w", collection, id, err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

var _ Store = (*PGStore)(nil)

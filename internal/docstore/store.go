// Package docstore provides collection/id keyed document persistence. The
// portal data model (companies, role records, rebuttals, dispositions, FAQ)
// is document shaped, so reads are a point lookup by id or a single-field
// equality filter.
package docstore

import (
	"context"
	"errors"
	"time"
)

// ErrNotFound indicates the requested document does not exist.
var ErrNotFound = errors.New("docstore: not found")

// ErrDuplicate indicates an insert collided with an existing document.
var ErrDuplicate = errors.New("docstore: duplicate")

// Document is a schemaless record within a named collection.
type Document struct {
	Collection string
	ID         string
	Data       map[string]any
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// String returns the string value of a data field, empty when absent or not
// a string.
func (d Document) String(field string) string {
	v, _ := d.Data[field].(string)
	return v
}

// Strings returns a string slice field. JSON decoding yields []any, so both
// shapes are accepted.
func (d Document) Strings(field string) []string {
	switch v := d.Data[field].(type) {
	case []string:
		return v
	case []any:
		out := make([]string, 0, len(v))
		for _, item := range v {
			if s, ok := item.(string); ok {
				out = append(out, s)
			}
		}
		return out
	default:
		return nil
	}
}

// Store is the read/write surface consumed by the resolver, the tenant lookup
// and the content modules.
type Store interface {
	// Get fetches a document by collection and id.
	Get(ctx context.Context, collection, id string) (Document, error)
	// Where returns documents whose field equals value.
	Where(ctx context.Context, collection, field string, value any) ([]Document, error)
	// Create inserts a new document, failing with ErrDuplicate on collision.
	Create(ctx context.Context, doc Document) error
	// Put inserts or replaces a document.
	Put(ctx context.Context, doc Document) error
	// Delete removes a document. Deleting a missing document returns ErrNotFound.
	Delete(ctx context.Context, collection, id string) error
}

package docstore

import (
	"context"
	"sync"
	"time"
)

// Fake is a map-backed Store for tests. FailAll makes every call return
// FailErr, which lets tests assert that a code path issued no store reads.
type Fake struct {
	mu      sync.Mutex
	docs    map[string]map[string]Document
	FailAll bool
	FailErr error
	Gets    int
	Wheres  int
}

// NewFake constructs an empty Fake.
func NewFake() *Fake {
	return &Fake{docs: make(map[string]map[string]Document)}
}

// Seed inserts a document without bumping counters.
func (f *Fake) Seed(collection, id string, data map[string]any) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.docs[collection] == nil {
		f.docs[collection] = make(map[string]Document)
	}
	f.docs[collection][id] = Document{
		Collection: collection,
		ID:         id,
		Data:       data,
		CreatedAt:  time.Now(),
		UpdatedAt:  time.Now(),
	}
}

func (f *Fake) fail() error {
	if !f.FailAll {
		return nil
	}
	if f.FailErr != nil {
		return f.FailErr
	}
	return context.DeadlineExceeded
}

// Get fetches a document by collection and id.
func (f *Fake) Get(ctx context.Context, collection, id string) (Document, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Gets++
	if err := f.fail(); err != nil {
		return Document{}, err
	}
	doc, ok := f.docs[collection][id]
	if !ok {
		return Document{}, ErrNotFound
	}
	return doc, nil
}

// Where returns documents whose field equals value.
func (f *Fake) Where(ctx context.Context, collection, field string, value any) ([]Document, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Wheres++
	if err := f.fail(); err != nil {
		return nil, err
	}
	var out []Document
	for _, doc := range f.docs[collection] {
		if doc.Data[field] == value {
			out = append(out, doc)
		}
	}
	return out, nil
}

// Create inserts a new document.
func (f *Fake) Create(ctx context.Context, doc Document) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.fail(); err != nil {
		return err
	}
	if f.docs[doc.Collection] == nil {
		f.docs[doc.Collection] = make(map[string]Document)
	}
	if _, exists := f.docs[doc.Collection][doc.ID]; exists {
		return ErrDuplicate
	}
	doc.CreatedAt = time.Now()
	doc.UpdatedAt = doc.CreatedAt
	f.docs[doc.Collection][doc.ID] = doc
	return nil
}

// Put inserts or replaces a document.
func (f *Fake) Put(ctx context.Context, doc Document) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.fail(); err != nil {
		return err
	}
	if f.docs[doc.Collection] == nil {
		f.docs[doc.Collection] = make(map[string]Document)
	}
	doc.UpdatedAt = time.Now()
	f.docs[doc.Collection][doc.ID] = doc
	return nil
}

// Delete removes a document.
func (f *Fake) Delete(ctx context.Context, collection, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.fail(); err != nil {
		return err
	}
	if _, ok := f.docs[collection][id]; !ok {
		return ErrNotFound
	}
	delete(f.docs[collection], id)
	return nil
}

var _ Store = (*Fake)(nil)

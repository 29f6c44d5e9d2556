package tenant

import (
	"context"
	"errors"
	"log/slog"

	"golang.org/x/sync/singleflight"

	"github.com/stayonscript/stayonscript/internal/docstore"
)

// Resolver maps a human-readable company identifier to a tenant record. It
// never fails the caller: a slug that matches nothing degrades to a
// synthesized placeholder so the portal shell can still render.
type Resolver struct {
	store  docstore.Store
	logger *slog.Logger
	group  singleflight.Group
}

// NewResolver constructs a Resolver.
func NewResolver(store docstore.Store, logger *slog.Logger) *Resolver {
	return &Resolver{store: store, logger: logger}
}

// Resolve looks up a tenant by slug, then by document id, then synthesizes a
// placeholder. Concurrent resolutions of the same slug are deduplicated.
func (r *Resolver) Resolve(ctx context.Context, slug string) Tenant {
	v, _, _ := r.group.Do(slug, func() (any, error) {
		// The lookup result is shared with concurrent waiters, so it must
		// not die with the first caller's context.
		return r.lookup(context.WithoutCancel(ctx), slug), nil
	})
	return v.(Tenant)
}

func (r *Resolver) lookup(ctx context.Context, slug string) Tenant {
	docs, err := r.store.Where(ctx, CollectionCompanies, "slug", slug)
	if err != nil {
		if r.logger != nil {
			r.logger.Warn("tenant lookup by slug", slog.String("slug", slug), slog.Any("error", err))
		}
	} else if len(docs) > 0 {
		return fromDocument(docs[0])
	}

	doc, err := r.store.Get(ctx, CollectionCompanies, slug)
	if err != nil {
		if !errors.Is(err, docstore.ErrNotFound) && r.logger != nil {
			r.logger.Warn("tenant lookup by id", slog.String("slug", slug), slog.Any("error", err))
		}
		return placeholder(slug)
	}
	return fromDocument(doc)
}

func fromDocument(doc docstore.Document) Tenant {
	t := Tenant{
		ID:     doc.ID,
		Slug:   doc.String("slug"),
		Name:   doc.String("name"),
		Status: Status(doc.String("status")),
	}
	if t.Slug == "" {
		t.Slug = doc.ID
	}
	if t.Name == "" {
		t.Name = humanize(t.Slug)
	}
	return t
}

func placeholder(slug string) Tenant {
	return Tenant{
		ID:          slug,
		Slug:        slug,
		Name:        humanize(slug),
		Placeholder: true,
	}
}

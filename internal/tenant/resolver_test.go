package tenant_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/stayonscript/stayonscript/internal/docstore"
	"github.com/stayonscript/stayonscript/internal/tenant"
)

func TestResolveBySlugField(t *testing.T) {
	store := docstore.NewFake()
	store.Seed(tenant.CollectionCompanies, "c-100", map[string]any{
		"kind":   "company",
		"slug":   "acme-co",
		"name":   "Acme Corporation",
		"status": "active",
	})

	got := tenant.NewResolver(store, nil).Resolve(context.Background(), "acme-co")

	assert.Equal(t, "c-100", got.ID)
	assert.Equal(t, "acme-co", got.Slug)
	assert.Equal(t, "Acme Corporation", got.Name)
	assert.Equal(t, tenant.StatusActive, got.Status)
	assert.False(t, got.Placeholder)
}

func TestResolveByDocumentID(t *testing.T) {
	store := docstore.NewFake()
	store.Seed(tenant.CollectionCompanies, "globex", map[string]any{
		"kind": "company",
		"name": "Globex",
	})

	got := tenant.NewResolver(store, nil).Resolve(context.Background(), "globex")

	assert.Equal(t, "globex", got.ID)
	assert.Equal(t, "globex", got.Slug)
	assert.Equal(t, "Globex", got.Name)
	assert.False(t, got.Placeholder)
}

func TestResolveUnknownSlugSynthesizesPlaceholder(t *testing.T) {
	got := tenant.NewResolver(docstore.NewFake(), nil).Resolve(context.Background(), "acme-co")

	assert.Equal(t, tenant.Tenant{
		ID:          "acme-co",
		Slug:        "acme-co",
		Name:        "Acme Co",
		Placeholder: true,
	}, got)
}

func TestResolveStoreFailureDegradesToPlaceholder(t *testing.T) {
	store := docstore.NewFake()
	store.FailAll = true
	store.FailErr = errors.New("connection refused")

	got := tenant.NewResolver(store, nil).Resolve(context.Background(), "wayne_enterprises")

	assert.True(t, got.Placeholder)
	assert.Equal(t, "Wayne Enterprises", got.Name)
}

func TestResolveFillsMissingName(t *testing.T) {
	store := docstore.NewFake()
	store.Seed(tenant.CollectionCompanies, "initech", map[string]any{
		"kind":   "company",
		"slug":   "initech",
		"status": "active",
	})

	got := tenant.NewResolver(store, nil).Resolve(context.Background(), "initech")

	assert.Equal(t, "Initech", got.Name)
	assert.False(t, got.Placeholder)
}

// cancelSensitiveStore fails lookups once the request context is done, the
// way a real pgx store would.
type cancelSensitiveStore struct {
	docstore.Store
}

func (s cancelSensitiveStore) Where(ctx context.Context, collection, field string, value any) ([]docstore.Document, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return s.Store.Where(ctx, collection, field, value)
}

func (s cancelSensitiveStore) Get(ctx context.Context, collection, id string) (docstore.Document, error) {
	if err := ctx.Err(); err != nil {
		return docstore.Document{}, err
	}
	return s.Store.Get(ctx, collection, id)
}

func TestResolveSurvivesCallerCancellation(t *testing.T) {
	store := docstore.NewFake()
	store.Seed(tenant.CollectionCompanies, "c-100", map[string]any{
		"kind": "company",
		"slug": "acme-co",
		"name": "Acme Corporation",
	})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	got := tenant.NewResolver(cancelSensitiveStore{store}, nil).Resolve(ctx, "acme-co")

	assert.Equal(t, "c-100", got.ID)
	assert.False(t, got.Placeholder)
}

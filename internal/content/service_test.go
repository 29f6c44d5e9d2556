package content_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stayonscript/stayonscript/internal/content"
	"github.com/stayonscript/stayonscript/internal/docstore"
)

// flakyStore fails Where for a single collection and delegates the rest.
type flakyStore struct {
	docstore.Store
	failCollection string
}

func (s *flakyStore) Where(ctx context.Context, collection, field string, value any) ([]docstore.Document, error) {
	if collection == s.failCollection {
		return nil, errors.New("backend unavailable")
	}
	return s.Store.Where(ctx, collection, field, value)
}

func seedLibrary(store *docstore.Fake, companyID string) {
	store.Seed(content.CollectionRebuttals, "r-1", map[string]any{
		"company_id": companyID, "category_id": "c-1", "objection": "too expensive", "response": "value framing",
	})
	store.Seed(content.CollectionRebuttals, "r-2", map[string]any{
		"company_id": companyID, "category_id": "c-1", "objection": "no time", "response": "two minutes",
	})
	store.Seed(content.CollectionCategories, "c-1", map[string]any{
		"company_id": companyID, "name": "Price",
	})
	store.Seed(content.CollectionDispositions, "d-1", map[string]any{
		"company_id": companyID, "name": "Callback", "description": "schedule a follow-up",
	})
	store.Seed(content.CollectionFAQs, "f-1", map[string]any{
		"company_id": companyID, "question": "What is the trial period?", "answer": "14 days",
	})
}

func TestListRebuttalsScopedToCompany(t *testing.T) {
	store := docstore.NewFake()
	seedLibrary(store, "acme-co")
	store.Seed(content.CollectionRebuttals, "r-other", map[string]any{
		"company_id": "globex", "objection": "x", "response": "y",
	})
	svc := content.NewService(store, nil)

	got, err := svc.ListRebuttals(context.Background(), "acme-co")
	require.NoError(t, err)
	assert.Len(t, got, 2)
	for _, reb := range got {
		assert.Equal(t, "acme-co", reb.CompanyID)
	}
}

func TestUpdateRebuttalRejectsForeignCompany(t *testing.T) {
	store := docstore.NewFake()
	seedLibrary(store, "acme-co")
	svc := content.NewService(store, nil)

	_, err := svc.UpdateRebuttal(context.Background(), "globex", "r-1", "c-1", "new", "new")
	assert.ErrorIs(t, err, docstore.ErrNotFound)

	// The original record is untouched.
	doc, err := store.Get(context.Background(), content.CollectionRebuttals, "r-1")
	require.NoError(t, err)
	assert.Equal(t, "too expensive", doc.String("objection"))
}

func TestDeleteRebuttalRejectsForeignCompany(t *testing.T) {
	store := docstore.NewFake()
	seedLibrary(store, "acme-co")
	svc := content.NewService(store, nil)

	assert.ErrorIs(t, svc.DeleteRebuttal(context.Background(), "globex", "r-1"), docstore.ErrNotFound)
	require.NoError(t, svc.DeleteRebuttal(context.Background(), "acme-co", "r-1"))
}

func TestCreateRebuttalAssignsID(t *testing.T) {
	store := docstore.NewFake()
	svc := content.NewService(store, nil)

	reb, err := svc.CreateRebuttal(context.Background(), "acme-co", "c-1", "not interested", "ask why")
	require.NoError(t, err)
	assert.NotEmpty(t, reb.ID)
	assert.Equal(t, "acme-co", reb.CompanyID)
}

func TestSummarizeCountsAllPanels(t *testing.T) {
	store := docstore.NewFake()
	seedLibrary(store, "acme-co")
	svc := content.NewService(store, nil)

	summary := svc.Summarize(context.Background(), "acme-co")

	assert.Equal(t, content.SummaryPanel{Count: 2, Available: true}, summary.Rebuttals)
	assert.Equal(t, content.SummaryPanel{Count: 1, Available: true}, summary.Categories)
	assert.Equal(t, content.SummaryPanel{Count: 1, Available: true}, summary.Dispositions)
	assert.Equal(t, content.SummaryPanel{Count: 1, Available: true}, summary.FAQs)
}

func TestSummarizeIsolatesPanelFailures(t *testing.T) {
	fake := docstore.NewFake()
	seedLibrary(fake, "acme-co")
	svc := content.NewService(&flakyStore{Store: fake, failCollection: content.CollectionFAQs}, nil)

	summary := svc.Summarize(context.Background(), "acme-co")

	assert.True(t, summary.Rebuttals.Available)
	assert.True(t, summary.Categories.Available)
	assert.True(t, summary.Dispositions.Available)
	assert.False(t, summary.FAQs.Available)
	assert.Zero(t, summary.FAQs.Count)
}

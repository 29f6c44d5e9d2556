package content

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/stayonscript/stayonscript/internal/docstore"
)

// Service owns the training library: rebuttals, categories, lead
// dispositions and FAQ entries, all scoped to one company per call.
type Service struct {
	store  docstore.Store
	logger *slog.Logger
}

// NewService constructs a Service.
func NewService(store docstore.Store, logger *slog.Logger) *Service {
	return &Service{store: store, logger: logger}
}

// ListRebuttals returns the company's rebuttals.
func (s *Service) ListRebuttals(ctx context.Context, companyID string) ([]Rebuttal, error) {
	docs, err := s.store.Where(ctx, CollectionRebuttals, "company_id", companyID)
	if err != nil {
		return nil, err
	}
	out := make([]Rebuttal, 0, len(docs))
	for _, doc := range docs {
		out = append(out, rebuttalFromDocument(doc))
	}
	return out, nil
}

// CreateRebuttal adds a rebuttal to the company library.
func (s *Service) CreateRebuttal(ctx context.Context, companyID, categoryID, objection, response string) (Rebuttal, error) {
	id := uuid.NewString()
	doc := docstore.Document{
		Collection: CollectionRebuttals,
		ID:         id,
		Data: map[string]any{
			"company_id":  companyID,
			"category_id": categoryID,
			"objection":   objection,
			"response":    response,
		},
	}
	if err := s.store.Create(ctx, doc); err != nil {
		return Rebuttal{}, err
	}
	return rebuttalFromDocument(doc), nil
}

// UpdateRebuttal replaces a rebuttal's fields. The company scope must match.
func (s *Service) UpdateRebuttal(ctx context.Context, companyID, id, categoryID, objection, response string) (Rebuttal, error) {
	existing, err := s.store.Get(ctx, CollectionRebuttals, id)
	if err != nil {
		return Rebuttal{}, err
	}
	if existing.String("company_id") != companyID {
		return Rebuttal{}, docstore.ErrNotFound
	}
	doc := docstore.Document{
		Collection: CollectionRebuttals,
		ID:         id,
		Data: map[string]any{
			"company_id":  companyID,
			"category_id": categoryID,
			"objection":   objection,
			"response":    response,
		},
	}
	if err := s.store.Put(ctx, doc); err != nil {
		return Rebuttal{}, err
	}
	return rebuttalFromDocument(doc), nil
}

// DeleteRebuttal removes a rebuttal. The company scope must match.
func (s *Service) DeleteRebuttal(ctx context.Context, companyID, id string) error {
	existing, err := s.store.Get(ctx, CollectionRebuttals, id)
	if err != nil {
		return err
	}
	if existing.String("company_id") != companyID {
		return docstore.ErrNotFound
	}
	return s.store.Delete(ctx, CollectionRebuttals, id)
}

// ListCategories returns the company's categories.
func (s *Service) ListCategories(ctx context.Context, companyID string) ([]Category, error) {
	docs, err := s.store.Where(ctx, CollectionCategories, "company_id", companyID)
	if err != nil {
		return nil, err
	}
	out := make([]Category, 0, len(docs))
	for _, doc := range docs {
		out = append(out, categoryFromDocument(doc))
	}
	return out, nil
}

// CreateCategory adds a category.
func (s *Service) CreateCategory(ctx context.Context, companyID, name string) (Category, error) {
	doc := docstore.Document{
		Collection: CollectionCategories,
		ID:         uuid.NewString(),
		Data:       map[string]any{"company_id": companyID, "name": name},
	}
	if err := s.store.Create(ctx, doc); err != nil {
		return Category{}, err
	}
	return categoryFromDocument(doc), nil
}

// DeleteCategory removes a category. The company scope must match.
func (s *Service) DeleteCategory(ctx context.Context, companyID, id string) error {
	existing, err := s.store.Get(ctx, CollectionCategories, id)
	if err != nil {
		return err
	}
	if existing.String("company_id") != companyID {
		return docstore.ErrNotFound
	}
	return s.store.Delete(ctx, CollectionCategories, id)
}

// ListDispositions returns the company's lead disposition guide.
func (s *Service) ListDispositions(ctx context.Context, companyID string) ([]Disposition, error) {
	docs, err := s.store.Where(ctx, CollectionDispositions, "company_id", companyID)
	if err != nil {
		return nil, err
	}
	out := make([]Disposition, 0, len(docs))
	for _, doc := range docs {
		out = append(out, dispositionFromDocument(doc))
	}
	return out, nil
}

// ListFAQs returns the company's FAQ entries.
func (s *Service) ListFAQs(ctx context.Context, companyID string) ([]FAQ, error) {
	docs, err := s.store.Where(ctx, CollectionFAQs, "company_id", companyID)
	if err != nil {
		return nil, err
	}
	out := make([]FAQ, 0, len(docs))
	for _, doc := range docs {
		out = append(out, faqFromDocument(doc))
	}
	return out, nil
}

// SummaryPanel is one dashboard panel's count. Panels render independently,
// so a failed fetch marks only its own panel unavailable.
type SummaryPanel struct {
	Count     int  `json:"count"`
	Available bool `json:"available"`
}

// Summary aggregates per-panel counts for the portal dashboard.
type Summary struct {
	Rebuttals    SummaryPanel `json:"rebuttals"`
	Categories   SummaryPanel `json:"categories"`
	Dispositions SummaryPanel `json:"dispositions"`
	FAQs         SummaryPanel `json:"faqs"`
}

// Summarize fetches the four panel counts concurrently. The fetches are
// independent; one failing does not block or fail the others.
func (s *Service) Summarize(ctx context.Context, companyID string) Summary {
	var summary Summary
	panels := []struct {
		collection string
		panel      *SummaryPanel
	}{
		{CollectionRebuttals, &summary.Rebuttals},
		{CollectionCategories, &summary.Categories},
		{CollectionDispositions, &summary.Dispositions},
		{CollectionFAQs, &summary.FAQs},
	}

	var g errgroup.Group
	for _, p := range panels {
		g.Go(func() error {
			docs, err := s.store.Where(ctx, p.collection, "company_id", companyID)
			if err != nil {
				if s.logger != nil {
					s.logger.Warn("summary panel fetch", slog.String("collection", p.collection), slog.Any("error", err))
				}
				return nil
			}
			p.panel.Count = len(docs)
			p.panel.Available = true
			return nil
		})
	}
	// Panel closures never return errors, so Wait only synchronizes.
	if err := g.Wait(); err != nil && s.logger != nil {
		s.logger.Warn("summary", slog.Any("error", fmt.Errorf("unexpected: %w", err)))
	}
	return summary
}

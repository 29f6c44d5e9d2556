package tenant_test

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stayonscript/stayonscript/internal/access"
	"github.com/stayonscript/stayonscript/internal/docstore"
	"github.com/stayonscript/stayonscript/internal/shared"
	"github.com/stayonscript/stayonscript/internal/tenant"
)

func newTestHandler(store *docstore.Fake) *tenant.Handler {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return tenant.NewHandler(logger, tenant.NewResolver(store, logger), store, shared.NewAuditLogger(nil))
}

func withRecord(record access.Record) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			next.ServeHTTP(w, r.WithContext(access.ContextWithRecord(r.Context(), record)))
		})
	}
}

func TestShowPortalKnownCompany(t *testing.T) {
	store := docstore.NewFake()
	store.Seed(tenant.CollectionCompanies, "acme-co", map[string]any{
		"kind": "company", "slug": "acme-co", "name": "Acme Co", "status": "active",
	})
	r := chi.NewRouter()
	newTestHandler(store).MountPortalRoutes(r)

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/t/ACME-CO", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	var got tenant.Tenant
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.Equal(t, "acme-co", got.Slug)
}

func TestShowPortalSuspendedCompany(t *testing.T) {
	store := docstore.NewFake()
	store.Seed(tenant.CollectionCompanies, "acme-co", map[string]any{
		"kind": "company", "slug": "acme-co", "name": "Acme Co", "status": "suspended",
	})
	r := chi.NewRouter()
	newTestHandler(store).MountPortalRoutes(r)

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/t/acme-co", nil))

	require.Equal(t, http.StatusConflict, rec.Code)
	var problem struct {
		Title string         `json:"title"`
		Extra map[string]any `json:"extra"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &problem))
	assert.Equal(t, "Portal Unavailable", problem.Title)
	assert.Equal(t, "suspended", problem.Extra["status"])
}

func TestShowPortalUnknownSlugStillRenders(t *testing.T) {
	r := chi.NewRouter()
	newTestHandler(docstore.NewFake()).MountPortalRoutes(r)

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/t/stark-industries", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	var got tenant.Tenant
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.True(t, got.Placeholder)
	assert.Equal(t, "Stark Industries", got.Name)
}

func TestCreateCompany(t *testing.T) {
	store := docstore.NewFake()
	r := chi.NewRouter()
	r.Use(withRecord(access.Record{
		PrincipalID: "root",
		Tier:        access.TierSuperAdmin,
		Permissions: []string{access.PermCreateCompanies},
	}))
	newTestHandler(store).MountAdminRoutes(r)

	body := strings.NewReader(`{"slug":"Acme-Co","name":"Acme Co"}`)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/companies", body))

	require.Equal(t, http.StatusCreated, rec.Code)
	doc, err := store.Get(context.Background(), tenant.CollectionCompanies, "acme-co")
	require.NoError(t, err)
	assert.Equal(t, "active", doc.String("status"))
}

func TestCreateCompanyDuplicateSlug(t *testing.T) {
	store := docstore.NewFake()
	store.Seed(tenant.CollectionCompanies, "acme-co", map[string]any{"kind": "company", "slug": "acme-co"})
	r := chi.NewRouter()
	r.Use(withRecord(access.Record{
		PrincipalID: "root",
		Tier:        access.TierSuperAdmin,
		Permissions: []string{access.PermCreateCompanies},
	}))
	newTestHandler(store).MountAdminRoutes(r)

	body := strings.NewReader(`{"slug":"acme-co","name":"Acme Co"}`)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/companies", body))

	assert.Equal(t, http.StatusConflict, rec.Code)
}

func TestCreateCompanyWithoutPermission(t *testing.T) {
	r := chi.NewRouter()
	r.Use(withRecord(access.Record{PrincipalID: "root", Tier: access.TierSuperAdmin}))
	newTestHandler(docstore.NewFake()).MountAdminRoutes(r)

	body := strings.NewReader(`{"slug":"acme-co","name":"Acme Co"}`)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/companies", body))

	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestDeleteCompany(t *testing.T) {
	store := docstore.NewFake()
	store.Seed(tenant.CollectionCompanies, "acme-co", map[string]any{"kind": "company", "slug": "acme-co"})
	r := chi.NewRouter()
	r.Use(withRecord(access.Record{
		PrincipalID: "root",
		Tier:        access.TierSuperAdmin,
		Permissions: []string{access.PermDeleteCompanies},
	}))
	newTestHandler(store).MountAdminRoutes(r)

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodDelete, "/companies/acme-co", nil))

	require.Equal(t, http.StatusNoContent, rec.Code)
	_, err := store.Get(context.Background(), tenant.CollectionCompanies, "acme-co")
	assert.ErrorIs(t, err, docstore.ErrNotFound)
}

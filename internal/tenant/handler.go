package tenant

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/stayonscript/stayonscript/internal/access"
	"github.com/stayonscript/stayonscript/internal/docstore"
	"github.com/stayonscript/stayonscript/internal/platform/httpx"
	"github.com/stayonscript/stayonscript/internal/shared"
)

// Handler serves the public portal resolution surface and the super-admin
// company management surface.
type Handler struct {
	logger    *slog.Logger
	resolver  *Resolver
	store     docstore.Store
	audit     *shared.AuditLogger
	validator *validator.Validate
}

// NewHandler constructs a Handler.
func NewHandler(logger *slog.Logger, resolver *Resolver, store docstore.Store, audit *shared.AuditLogger) *Handler {
	return &Handler{
		logger:    logger,
		resolver:  resolver,
		store:     store,
		audit:     audit,
		validator: validator.New(),
	}
}

// MountPortalRoutes registers the tenant-facing routes.
func (h *Handler) MountPortalRoutes(r chi.Router) {
	r.Get("/t/{slug}", h.showPortal)
	r.Get("/portal/home", h.portalHome)
}

// MountAdminRoutes registers company management for super-admins. The caller
// wraps these in the super-admin guard; per-operation permissions are
// checked here against the resolved record.
func (h *Handler) MountAdminRoutes(r chi.Router) {
	r.Get("/companies", h.listCompanies)
	r.Post("/companies", h.createCompany)
	r.Delete("/companies/{id}", h.deleteCompany)
}

func (h *Handler) showPortal(w http.ResponseWriter, r *http.Request) {
	slug := strings.ToLower(strings.TrimSpace(chi.URLParam(r, "slug")))
	if slug == "" {
		httpx.RespondError(w, httpx.ErrNotFound)
		return
	}

	t := h.resolver.Resolve(r.Context(), slug)

	// Remember the portal so a later "go home" routes back without re-resolving.
	if sess := shared.SessionFromContext(r.Context()); sess != nil {
		sess.SetTenant(t.Slug)
	}

	if t.Status.Blocks() {
		httpx.ProblemWith(w, http.StatusConflict, "Portal Unavailable",
			"this training portal is currently "+string(t.Status),
			map[string]any{"tenant": t.Name, "status": t.Status})
		return
	}

	httpx.JSON(w, http.StatusOK, t)
}

func (h *Handler) portalHome(w http.ResponseWriter, r *http.Request) {
	sess := shared.SessionFromContext(r.Context())
	if sess == nil || sess.Tenant() == "" {
		http.Redirect(w, r, "/", http.StatusSeeOther)
		return
	}
	http.Redirect(w, r, "/t/"+sess.Tenant(), http.StatusSeeOther)
}

func (h *Handler) listCompanies(w http.ResponseWriter, r *http.Request) {
	docs, err := h.store.Where(r.Context(), CollectionCompanies, "kind", "company")
	if err != nil {
		h.logger.Error("list companies", slog.Any("error", err))
		httpx.Problem(w, http.StatusInternalServerError, "Internal Error", "")
		return
	}
	companies := make([]Tenant, 0, len(docs))
	for _, doc := range docs {
		companies = append(companies, fromDocument(doc))
	}
	httpx.JSON(w, http.StatusOK, companies)
}

type createCompanyRequest struct {
	Slug   string `json:"slug" validate:"required,min=2,max=64"`
	Name   string `json:"name" validate:"required,min=2,max=128"`
	Status string `json:"status" validate:"omitempty,oneof=active inactive suspended"`
}

func (h *Handler) createCompany(w http.ResponseWriter, r *http.Request) {
	record, ok := access.RecordFromContext(r.Context())
	if !ok || !record.HasAll([]string{access.PermCreateCompanies}) {
		httpx.RespondError(w, httpx.ErrForbidden)
		return
	}

	var payload createCompanyRequest
	if err := httpx.DecodeJSON(r, &payload); err != nil {
		httpx.RespondError(w, httpx.ErrValidation)
		return
	}
	payload.Slug = strings.ToLower(strings.TrimSpace(payload.Slug))
	if err := h.validator.Struct(payload); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return
	}

	status := payload.Status
	if status == "" {
		status = string(StatusActive)
	}
	doc := docstore.Document{
		Collection: CollectionCompanies,
		ID:         payload.Slug,
		Data: map[string]any{
			"kind":   "company",
			"slug":   payload.Slug,
			"name":   strings.TrimSpace(payload.Name),
			"status": status,
		},
	}
	if err := h.store.Create(r.Context(), doc); err != nil {
		if errors.Is(err, docstore.ErrDuplicate) {
			httpx.RespondError(w, httpx.ErrDuplicate)
			return
		}
		h.logger.Error("create company", slog.Any("error", err))
		httpx.Problem(w, http.StatusInternalServerError, "Internal Error", "")
		return
	}

	if err := h.audit.Record(r.Context(), shared.AuditLog{
		ActorID:  record.PrincipalID,
		Action:   "company.create",
		Entity:   "company",
		EntityID: payload.Slug,
		Meta:     map[string]any{"name": payload.Name},
	}); err != nil {
		h.logger.Warn("audit company create", slog.Any("error", err))
	}

	httpx.JSON(w, http.StatusCreated, fromDocument(doc))
}

func (h *Handler) deleteCompany(w http.ResponseWriter, r *http.Request) {
	record, ok := access.RecordFromContext(r.Context())
	if !ok || !record.HasAll([]string{access.PermDeleteCompanies}) {
		httpx.RespondError(w, httpx.ErrForbidden)
		return
	}

	id := chi.URLParam(r, "id")
	if err := h.store.Delete(r.Context(), CollectionCompanies, id); err != nil {
		if errors.Is(err, docstore.ErrNotFound) {
			httpx.RespondError(w, httpx.ErrNotFound)
			return
		}
		h.logger.Error("delete company", slog.Any("error", err))
		httpx.Problem(w, http.StatusInternalServerError, "Internal Error", "")
		return
	}

	if err := h.audit.Record(r.Context(), shared.AuditLog{
		ActorID:  record.PrincipalID,
		Action:   "company.delete",
		Entity:   "company",
		EntityID: id,
	}); err != nil {
		h.logger.Warn("audit company delete", slog.Any("error", err))
	}

	w.WriteHeader(http.StatusNoContent)
}

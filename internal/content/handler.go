package content

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/stayonscript/stayonscript/internal/access"
	"github.com/stayonscript/stayonscript/internal/docstore"
	"github.com/stayonscript/stayonscript/internal/platform/httpx"
)

// Handler serves the training library for the admin dashboard. Routes are
// mounted under the admin-tier guard; write operations additionally check
// the manage permissions on the resolved record.
type Handler struct {
	logger    *slog.Logger
	service   *Service
	validator *validator.Validate
}

// NewHandler constructs a Handler.
func NewHandler(logger *slog.Logger, service *Service) *Handler {
	return &Handler{logger: logger, service: service, validator: validator.New()}
}

// MountRoutes registers the library routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/summary", h.summary)
	r.Get("/rebuttals", h.listRebuttals)
	r.Post("/rebuttals", h.createRebuttal)
	r.Put("/rebuttals/{id}", h.updateRebuttal)
	r.Delete("/rebuttals/{id}", h.deleteRebuttal)
	r.Get("/categories", h.listCategories)
	r.Post("/categories", h.createCategory)
	r.Delete("/categories/{id}", h.deleteCategory)
	r.Get("/dispositions", h.listDispositions)
	r.Get("/faqs", h.listFAQs)
}

// companyScope determines which company's library a request operates on.
// Company-bound roles are locked to their own company; a super-admin may
// name one explicitly.
func companyScope(r *http.Request) (string, bool) {
	record, ok := access.RecordFromContext(r.Context())
	if !ok {
		return "", false
	}
	if record.CompanyID != "" {
		return record.CompanyID, true
	}
	if company := r.URL.Query().Get("company"); company != "" {
		return company, true
	}
	return "", false
}

func requirePermission(r *http.Request, perm string) bool {
	record, ok := access.RecordFromContext(r.Context())
	return ok && record.HasAll([]string{perm})
}

func (h *Handler) summary(w http.ResponseWriter, r *http.Request) {
	company, ok := companyScope(r)
	if !ok {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "no company scope")
		return
	}
	httpx.JSON(w, http.StatusOK, h.service.Summarize(r.Context(), company))
}

func (h *Handler) listRebuttals(w http.ResponseWriter, r *http.Request) {
	company, ok := companyScope(r)
	if !ok {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "no company scope")
		return
	}
	rebuttals, err := h.service.ListRebuttals(r.Context(), company)
	if err != nil {
		h.logger.Error("list rebuttals", slog.Any("error", err))
		httpx.Problem(w, http.StatusInternalServerError, "Internal Error", "")
		return
	}
	httpx.JSON(w, http.StatusOK, rebuttals)
}

type rebuttalRequest struct {
	CategoryID string `json:"category_id"`
	Objection  string `json:"objection" validate:"required,min=2"`
	Response   string `json:"response" validate:"required,min=2"`
}

func (h *Handler) createRebuttal(w http.ResponseWriter, r *http.Request) {
	if !requirePermission(r, access.PermManageRebuttals) {
		httpx.RespondError(w, httpx.ErrForbidden)
		return
	}
	company, ok := companyScope(r)
	if !ok {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "no company scope")
		return
	}
	var payload rebuttalRequest
	if err := httpx.DecodeJSON(r, &payload); err != nil {
		httpx.RespondError(w, httpx.ErrValidation)
		return
	}
	if err := h.validator.Struct(payload); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return
	}
	rebuttal, err := h.service.CreateRebuttal(r.Context(), company, payload.CategoryID, payload.Objection, payload.Response)
	if err != nil {
		h.logger.Error("create rebuttal", slog.Any("error", err))
		httpx.Problem(w, http.StatusInternalServerError, "Internal Error", "")
		return
	}
	httpx.JSON(w, http.StatusCreated, rebuttal)
}

func (h *Handler) updateRebuttal(w http.ResponseWriter, r *http.Request) {
	if !requirePermission(r, access.PermManageRebuttals) {
		httpx.RespondError(w, httpx.ErrForbidden)
		return
	}
	company, ok := companyScope(r)
	if !ok {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "no company scope")
		return
	}
	var payload rebuttalRequest
	if err := httpx.DecodeJSON(r, &payload); err != nil {
		httpx.RespondError(w, httpx.ErrValidation)
		return
	}
	if err := h.validator.Struct(payload); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return
	}
	rebuttal, err := h.service.UpdateRebuttal(r.Context(), company, chi.URLParam(r, "id"), payload.CategoryID, payload.Objection, payload.Response)
	if err != nil {
		if errors.Is(err, docstore.ErrNotFound) {
			httpx.RespondError(w, httpx.ErrNotFound)
			return
		}
		h.logger.Error("update rebuttal", slog.Any("error", err))
		httpx.Problem(w, http.StatusInternalServerError, "Internal Error", "")
		return
	}
	httpx.JSON(w, http.StatusOK, rebuttal)
}

func (h *Handler) deleteRebuttal(w http.ResponseWriter, r *http.Request) {
	if !requirePermission(r, access.PermManageRebuttals) {
		httpx.RespondError(w, httpx.ErrForbidden)
		return
	}
	company, ok := companyScope(r)
	if !ok {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "no company scope")
		return
	}
	if err := h.service.DeleteRebuttal(r.Context(), company, chi.URLParam(r, "id")); err != nil {
		if errors.Is(err, docstore.ErrNotFound) {
			httpx.RespondError(w, httpx.ErrNotFound)
			return
		}
		h.logger.Error("delete rebuttal", slog.Any("error", err))
		httpx.Problem(w, http.StatusInternalServerError, "Internal Error", "")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) listCategories(w http.ResponseWriter, r *http.Request) {
	company, ok := companyScope(r)
	if !ok {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "no company scope")
		return
	}
	categories, err := h.service.ListCategories(r.Context(), company)
	if err != nil {
		h.logger.Error("list categories", slog.Any("error", err))
		httpx.Problem(w, http.StatusInternalServerError, "Internal Error", "")
		return
	}
	httpx.JSON(w, http.StatusOK, categories)
}

type categoryRequest struct {
	Name string `json:"name" validate:"required,min=2,max=128"`
}

func (h *Handler) createCategory(w http.ResponseWriter, r *http.Request) {
	if !requirePermission(r, access.PermManageCategories) {
		httpx.RespondError(w, httpx.ErrForbidden)
		return
	}
	company, ok := companyScope(r)
	if !ok {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "no company scope")
		return
	}
	var payload categoryRequest
	if err := httpx.DecodeJSON(r, &payload); err != nil {
		httpx.RespondError(w, httpx.ErrValidation)
		return
	}
	if err := h.validator.Struct(payload); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return
	}
	category, err := h.service.CreateCategory(r.Context(), company, payload.Name)
	if err != nil {
		h.logger.Error("create category", slog.Any("error", err))
		httpx.Problem(w, http.StatusInternalServerError, "Internal Error", "")
		return
	}
	httpx.JSON(w, http.StatusCreated, category)
}

func (h *Handler) deleteCategory(w http.ResponseWriter, r *http.Request) {
	if !requirePermission(r, access.PermManageCategories) {
		httpx.RespondError(w, httpx.ErrForbidden)
		return
	}
	company, ok := companyScope(r)
	if !ok {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "no company scope")
		return
	}
	if err := h.service.DeleteCategory(r.Context(), company, chi.URLParam(r, "id")); err != nil {
		if errors.Is(err, docstore.ErrNotFound) {
			httpx.RespondError(w, httpx.ErrNotFound)
			return
		}
		h.logger.Error("delete category", slog.Any("error", err))
		httpx.Problem(w, http.StatusInternalServerError, "Internal Error", "")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) listDispositions(w http.ResponseWriter, r *http.Request) {
	company, ok := companyScope(r)
	if !ok {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "no company scope")
		return
	}
	dispositions, err := h.service.ListDispositions(r.Context(), company)
	if err != nil {
		h.logger.Error("list dispositions", slog.Any("error", err))
		httpx.Problem(w, http.StatusInternalServerError, "Internal Error", "")
		return
	}
	httpx.JSON(w, http.StatusOK, dispositions)
}

func (h *Handler) listFAQs(w http.ResponseWriter, r *http.Request) {
	company, ok := companyScope(r)
	if !ok {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "no company scope")
		return
	}
	faqs, err := h.service.ListFAQs(r.Context(), company)
	if err != nil {
		h.logger.Error("list faqs", slog.Any("error", err))
		httpx.Problem(w, http.StatusInternalServerError, "Internal Error", "")
		return
	}
	httpx.JSON(w, http.StatusOK, faqs)
}

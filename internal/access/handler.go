package access

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/stayonscript/stayonscript/internal/platform/httpx"
	"github.com/stayonscript/stayonscript/internal/shared"
)

// Handler exposes the access surface: who-am-i, and the impersonation
// grant lifecycle for super-admins.
type Handler struct {
	logger    *slog.Logger
	guard     Guard
	grants    *GrantStore
	audit     *shared.AuditLogger
	validator *validator.Validate
}

// NewHandler constructs a Handler.
func NewHandler(logger *slog.Logger, guard Guard, grants *GrantStore, audit *shared.AuditLogger) *Handler {
	return &Handler{
		logger:    logger,
		guard:     guard,
		grants:    grants,
		audit:     audit,
		validator: validator.New(),
	}
}

// MountRoutes registers access routes. The caller mounts this under a
// session-only guard; the impersonation endpoints add their own super-admin
// requirement.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/me", h.whoami)
	r.Group(func(r chi.Router) {
		r.Use(h.guard.Protect(Requirement{
			Tier:         TierSuperAdmin,
			Permissions:  []string{PermImpersonateCompanies},
			FallbackPath: "/admin/login",
		}))
		r.Post("/impersonation", h.startImpersonation)
		r.Delete("/impersonation", h.stopImpersonation)
	})
}

type whoamiResponse struct {
	PrincipalID   string   `json:"principal_id"`
	Tier          Tier     `json:"tier"`
	CompanyID     string   `json:"company_id,omitempty"`
	Permissions   []string `json:"permissions"`
	Impersonating *Grant   `json:"impersonating,omitempty"`
}

func (h *Handler) whoami(w http.ResponseWriter, r *http.Request) {
	record, ok := RecordFromContext(r.Context())
	if !ok {
		httpx.RespondError(w, httpx.ErrUnauthorized)
		return
	}
	resp := whoamiResponse{
		PrincipalID: record.PrincipalID,
		Tier:        record.Tier,
		CompanyID:   record.CompanyID,
		Permissions: record.Permissions,
	}
	if grant, active := h.grants.Active(r.Context(), record.PrincipalID); active {
		resp.Impersonating = &grant
	}
	httpx.JSON(w, http.StatusOK, resp)
}

type startImpersonationRequest struct {
	Tier      string `json:"tier" validate:"required,oneof=admin company-admin"`
	CompanyID string `json:"company_id" validate:"required"`
}

func (h *Handler) startImpersonation(w http.ResponseWriter, r *http.Request) {
	record, _ := RecordFromContext(r.Context())

	var payload startImpersonationRequest
	if err := httpx.DecodeJSON(r, &payload); err != nil {
		httpx.RespondError(w, httpx.ErrValidation)
		return
	}
	if err := h.validator.Struct(payload); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return
	}

	grant, err := h.grants.Start(r.Context(), record.PrincipalID, Tier(payload.Tier), payload.CompanyID)
	if err != nil {
		h.logger.Error("start impersonation", slog.Any("error", err))
		httpx.Problem(w, http.StatusInternalServerError, "Internal Error", "")
		return
	}

	if sess := shared.SessionFromContext(r.Context()); sess != nil {
		sess.SetGrant(grant.ID)
	}
	if err := h.audit.Record(r.Context(), shared.AuditLog{
		ActorID:  record.PrincipalID,
		Action:   "impersonation.start",
		Entity:   "grant",
		EntityID: grant.ID,
		Meta:     map[string]any{"tier": grant.Tier, "company_id": grant.CompanyID, "expires_at": grant.ExpiresAt},
	}); err != nil {
		h.logger.Warn("audit impersonation start", slog.Any("error", err))
	}

	httpx.JSON(w, http.StatusCreated, grant)
}

func (h *Handler) stopImpersonation(w http.ResponseWriter, r *http.Request) {
	record, _ := RecordFromContext(r.Context())

	grant, active := h.grants.Active(r.Context(), record.PrincipalID)
	if err := h.grants.Stop(r.Context(), record.PrincipalID); err != nil {
		h.logger.Error("stop impersonation", slog.Any("error", err))
		httpx.Problem(w, http.StatusInternalServerError, "Internal Error", "")
		return
	}
	if sess := shared.SessionFromContext(r.Context()); sess != nil {
		sess.SetGrant("")
	}
	if active {
		if err := h.audit.Record(r.Context(), shared.AuditLog{
			ActorID:  record.PrincipalID,
			Action:   "impersonation.stop",
			Entity:   "grant",
			EntityID: grant.ID,
		}); err != nil {
			h.logger.Warn("audit impersonation stop", slog.Any("error", err))
		}
	}
	w.WriteHeader(http.StatusNoContent)
}

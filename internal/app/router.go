package app

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/stayonscript/stayonscript/internal/access"
	"github.com/stayonscript/stayonscript/internal/content"
	"github.com/stayonscript/stayonscript/internal/identity"
	"github.com/stayonscript/stayonscript/internal/observability"
	"github.com/stayonscript/stayonscript/internal/shared"
	"github.com/stayonscript/stayonscript/internal/tenant"
	"github.com/stayonscript/stayonscript/jobs"
)

// RouterParams groups dependencies for building the HTTP router.
type RouterParams struct {
	Logger          *slog.Logger
	Config          *Config
	SessionManager  *shared.SessionManager
	CSRFManager     *shared.CSRFManager
	Metrics         *observability.Metrics
	Guard           access.Guard
	IdentityHandler *identity.Handler
	AccessHandler   *access.Handler
	TenantHandler   *tenant.Handler
	ContentHandler  *content.Handler
	JobsHandler     *jobs.Handler
}

// NewRouter constructs the chi.Router with StayOnScript defaults.
func NewRouter(params RouterParams) http.Handler {
	r := chi.NewRouter()

	for _, mw := range MiddlewareStack(MiddlewareConfig{
		Logger:         params.Logger,
		Config:         params.Config,
		SessionManager: params.SessionManager,
		CSRFManager:    params.CSRFManager,
		Metrics:        params.Metrics,
	}) {
		r.Use(mw)
	}

	r.Use(chimw.Logger)

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})
	if params.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", params.Metrics.Handler())
	}

	// Session bootstrap and login/logout.
	r.Route("/auth", params.IdentityHandler.MountRoutes)

	// Tenant portal resolution; renders for anonymous visitors too.
	params.TenantHandler.MountPortalRoutes(r)

	// Access surface: who-am-i and impersonation grants. Any authenticated
	// session may ask who it is; the grant endpoints carry their own
	// super-admin requirement.
	r.Route("/access", func(r chi.Router) {
		r.Use(params.Guard.Protect(access.Requirement{
			FallbackPath: "/admin/login",
		}))
		params.AccessHandler.MountRoutes(r)
	})

	// Company dashboard: admin tier, with company-admins included and
	// impersonating super-admins allowed in.
	r.Route("/admin/dashboard", func(r chi.Router) {
		r.Use(params.Guard.Protect(access.Requirement{
			Tier:               access.TierAdmin,
			FallbackPath:       "/admin/login",
			AllowImpersonation: true,
		}))
		params.ContentHandler.MountRoutes(r)
	})

	// Platform console: super-admins only, never via impersonation.
	r.Route("/admin/saas", func(r chi.Router) {
		r.Use(params.Guard.Protect(access.Requirement{
			Tier:         access.TierSuperAdmin,
			FallbackPath: "/admin/login",
		}))
		params.TenantHandler.MountAdminRoutes(r)
		if params.JobsHandler != nil {
			r.Route("/jobs", params.JobsHandler.MountRoutes)
		}
	})

	return r
}

package access

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/stayonscript/stayonscript/internal/platform/httpx"
	"github.com/stayonscript/stayonscript/internal/shared"
)

// State is the terminal outcome of one guard evaluation. Every navigation
// starts a fresh evaluation.
type State int

const (
	// StateAuthorized renders the protected resource.
	StateAuthorized State = iota
	// StateRedirect sends the visitor elsewhere: to the route fallback when
	// unauthenticated, to the tier home when the role does not fit.
	StateRedirect
	// StateDenied means the principal has no role record anywhere. Rendered
	// as a denial with a home action, never a redirect loop.
	StateDenied
	// StateDeniedPermissions means the role fit but the permission set did
	// not. The response lists required versus held.
	StateDeniedPermissions
	// StateError means role resolution failed. Surfaced as retryable, not a
	// redirect: bouncing an entitled user on a transient store error would
	// lock them out of a page they may see.
	StateError
)

// String names the state for logs and metrics labels.
func (s State) String() string {
	switch s {
	case StateAuthorized:
		return "authorized"
	case StateRedirect:
		return "redirect"
	case StateDenied:
		return "denied"
	case StateDeniedPermissions:
		return "denied_permissions"
	case StateError:
		return "error"
	default:
		return "unknown"
	}
}

// Decision is the result of evaluating a requirement for a principal.
type Decision struct {
	State      State
	RedirectTo string
	Record     Record
	Missing    []string
	Err        error
}

// Guard authorizes protected routes against resolved role records.
type Guard struct {
	Resolver *Resolver
	Grants   *GrantStore
	Logger   *slog.Logger
	// Observe, when set, receives the name of each decision for metrics.
	Observe func(decision string)
}

func (g Guard) observe(name string) {
	if g.Observe != nil {
		g.Observe(name)
	}
}

// Evaluate runs the authorization state machine for an authenticated
// principal. Unauthenticated visitors are handled by the middleware before
// this is reached.
func (g Guard) Evaluate(ctx context.Context, principalID string, req Requirement) Decision {
	record, err := g.Resolver.Resolve(ctx, principalID)
	if err != nil {
		if g.Logger != nil {
			g.Logger.Error("role resolution", slog.String("principal", principalID), slog.Any("error", err))
		}
		return Decision{State: StateError, Err: err}
	}

	if record.Tier == TierNone {
		return Decision{State: StateDenied, Record: record}
	}

	if req.Tier != "" && !record.Tier.Satisfies(req.Tier) {
		if !g.impersonationApplies(ctx, record, req) {
			return Decision{State: StateRedirect, RedirectTo: record.Tier.HomePath(), Record: record}
		}
	}

	if missing := record.Missing(req.Permissions); len(missing) > 0 {
		return Decision{State: StateDeniedPermissions, Record: record, Missing: missing}
	}

	return Decision{State: StateAuthorized, Record: record}
}

// impersonationApplies checks the single exception to the tier lattice: a
// super-admin with an active grant may pass an admin or company-admin
// requirement on routes that opted in. Never a session-wide role switch.
func (g Guard) impersonationApplies(ctx context.Context, record Record, req Requirement) bool {
	if !req.AllowImpersonation {
		return false
	}
	if record.Tier != TierSuperAdmin {
		return false
	}
	if req.Tier != TierAdmin && req.Tier != TierCompanyAdmin {
		return false
	}
	grant, ok := g.Grants.Active(ctx, record.PrincipalID)
	if !ok {
		return false
	}
	return grant.Tier.Satisfies(req.Tier)
}

// Protect wraps a route subtree with the authorization gate.
func (g Guard) Protect(req Requirement) func(http.Handler) http.Handler {
	fallback := req.FallbackPath
	if fallback == "" {
		fallback = "/"
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			sess := shared.SessionFromContext(r.Context())
			if sess == nil || sess.Principal() == "" {
				g.observe("no_session")
				http.Redirect(w, r, fallback, http.StatusSeeOther)
				return
			}

			decision := g.Evaluate(r.Context(), sess.Principal(), req)
			g.observe(decision.State.String())
			switch decision.State {
			case StateAuthorized:
				next.ServeHTTP(w, r.WithContext(ContextWithRecord(r.Context(), decision.Record)))
			case StateRedirect:
				http.Redirect(w, r, decision.RedirectTo, http.StatusSeeOther)
			case StateDenied:
				httpx.ProblemWith(w, http.StatusForbidden, "No Role Assigned",
					"your account has no role on this platform; contact your administrator",
					map[string]any{"home": "/"})
			case StateDeniedPermissions:
				httpx.ProblemWith(w, http.StatusForbidden, "Insufficient Permissions",
					"your role does not hold every permission this page requires",
					map[string]any{
						"required": req.Permissions,
						"held":     decision.Record.Permissions,
						"missing":  decision.Missing,
					})
			default:
				httpx.Problem(w, http.StatusServiceUnavailable, "Authorization Unavailable",
					"could not verify your access right now; reload to retry")
			}
		})
	}
}

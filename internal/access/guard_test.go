package access_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stayonscript/stayonscript/internal/access"
	"github.com/stayonscript/stayonscript/internal/docstore"
	"github.com/stayonscript/stayonscript/internal/shared"
)

type guardEnv struct {
	store  *docstore.Fake
	cache  *access.Cache
	grants *access.GrantStore
	guard  access.Guard
	redis  *redis.Client
}

func newGuardEnv(t *testing.T) *guardEnv {
	t.Helper()
	client := newRedisClient(t)
	store := docstore.NewFake()
	cache := access.NewCache(client, time.Minute, nil)
	grants := access.NewGrantStore(client, time.Minute, nil)
	resolver := access.NewResolver(store, cache, nil)
	return &guardEnv{
		store:  store,
		cache:  cache,
		grants: grants,
		guard:  access.Guard{Resolver: resolver, Grants: grants},
		redis:  client,
	}
}

func TestEvaluateTierInclusion(t *testing.T) {
	env := newGuardEnv(t)
	env.store.Seed(access.CollectionCompanyAdmins, "p1", map[string]any{"company_id": "acme-co"})

	decision := env.guard.Evaluate(context.Background(), "p1", access.Requirement{Tier: access.TierAdmin})
	assert.Equal(t, access.StateAuthorized, decision.State)
}

func TestEvaluateImpersonationGate(t *testing.T) {
	env := newGuardEnv(t)
	env.store.Seed(access.CollectionSuperAdmins, "root", map[string]any{})
	req := access.Requirement{Tier: access.TierCompanyAdmin, AllowImpersonation: true}

	// No grant: the super-admin bounces to its own console.
	decision := env.guard.Evaluate(context.Background(), "root", req)
	assert.Equal(t, access.StateRedirect, decision.State)
	assert.Equal(t, "/admin/saas", decision.RedirectTo)

	// With an active grant the same requirement passes.
	_, err := env.grants.Start(context.Background(), "root", access.TierCompanyAdmin, "acme-co")
	require.NoError(t, err)
	decision = env.guard.Evaluate(context.Background(), "root", req)
	assert.Equal(t, access.StateAuthorized, decision.State)
}

func TestEvaluateImpersonationNeedsRouteOptIn(t *testing.T) {
	env := newGuardEnv(t)
	env.store.Seed(access.CollectionSuperAdmins, "root", map[string]any{})
	_, err := env.grants.Start(context.Background(), "root", access.TierCompanyAdmin, "acme-co")
	require.NoError(t, err)

	decision := env.guard.Evaluate(context.Background(), "root", access.Requirement{Tier: access.TierCompanyAdmin})
	assert.Equal(t, access.StateRedirect, decision.State)
	assert.Equal(t, "/admin/saas", decision.RedirectTo)
}

func TestEvaluatePermissionsAreAllOf(t *testing.T) {
	env := newGuardEnv(t)
	env.store.Seed(access.CollectionCompanyAdmins, "p1", map[string]any{
		"company_id":  "acme-co",
		"permissions": []any{"manage-rebuttals"},
	})

	decision := env.guard.Evaluate(context.Background(), "p1", access.Requirement{
		Tier:        access.TierAdmin,
		Permissions: []string{access.PermManageRebuttals, access.PermManageCategories},
	})
	assert.Equal(t, access.StateDeniedPermissions, decision.State)
	assert.Equal(t, []string{access.PermManageRebuttals}, decision.Record.Permissions)
	assert.Equal(t, []string{access.PermManageCategories}, decision.Missing)
}

func TestEvaluateRedirectTargets(t *testing.T) {
	env := newGuardEnv(t)
	env.store.Seed(access.CollectionSuperAdmins, "root", map[string]any{})
	env.store.Seed(access.CollectionAdmins, "staff", map[string]any{"company_id": "acme-co"})
	env.store.Seed(access.CollectionUsers, "rep", map[string]any{"company_id": "acme-co"})

	decision := env.guard.Evaluate(context.Background(), "root", access.Requirement{Tier: access.TierAdmin})
	assert.Equal(t, access.StateRedirect, decision.State)
	assert.Equal(t, "/admin/saas", decision.RedirectTo)

	decision = env.guard.Evaluate(context.Background(), "staff", access.Requirement{Tier: access.TierSuperAdmin})
	assert.Equal(t, access.StateRedirect, decision.State)
	assert.Equal(t, "/admin/dashboard", decision.RedirectTo)

	decision = env.guard.Evaluate(context.Background(), "rep", access.Requirement{Tier: access.TierAdmin})
	assert.Equal(t, access.StateRedirect, decision.State)
	assert.Equal(t, "/", decision.RedirectTo)
}

func TestEvaluateNoRoleIsDeniedNotRedirected(t *testing.T) {
	env := newGuardEnv(t)

	decision := env.guard.Evaluate(context.Background(), "ghost", access.Requirement{Tier: access.TierAdmin})
	assert.Equal(t, access.StateDenied, decision.State)
	assert.Empty(t, decision.RedirectTo)
}

func TestEvaluateStoreFailureIsRetryableError(t *testing.T) {
	env := newGuardEnv(t)
	env.store.FailAll = true

	decision := env.guard.Evaluate(context.Background(), "p1", access.Requirement{Tier: access.TierAdmin})
	assert.Equal(t, access.StateError, decision.State)
	assert.ErrorIs(t, decision.Err, access.ErrResolution)
}

// protectRequest runs a request through Protect with the given session state.
func protectRequest(t *testing.T, env *guardEnv, principalID string, req access.Requirement) *httptest.ResponseRecorder {
	t.Helper()
	sm := shared.NewSessionManager(env.redis, "test_session", "secret", time.Hour, false)
	httpReq := httptest.NewRequest(http.MethodGet, "/protected", nil)
	sess, err := sm.Load(context.Background(), httpReq)
	require.NoError(t, err)
	if principalID != "" {
		sess.SetPrincipal(principalID)
	}
	httpReq = httpReq.WithContext(shared.ContextWithSession(httpReq.Context(), sess))

	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		record, ok := access.RecordFromContext(r.Context())
		require.True(t, ok)
		w.Header().Set("X-Tier", string(record.Tier))
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("children"))
	})

	res := httptest.NewRecorder()
	env.guard.Protect(req)(next).ServeHTTP(res, httpReq)
	return res
}

func TestProtectRedirectsAnonymousToFallback(t *testing.T) {
	env := newGuardEnv(t)

	res := protectRequest(t, env, "", access.Requirement{
		Tier:         access.TierAdmin,
		FallbackPath: "/admin/login",
	})
	assert.Equal(t, http.StatusSeeOther, res.Code)
	assert.Equal(t, "/admin/login", res.Header().Get("Location"))
}

func TestProtectSessionOnlyRouteRendersChildren(t *testing.T) {
	env := newGuardEnv(t)
	env.store.Seed(access.CollectionUsers, "rep", map[string]any{"role": "user", "company_id": "acme-co"})

	res := protectRequest(t, env, "rep", access.Requirement{FallbackPath: "/admin/login"})
	assert.Equal(t, http.StatusOK, res.Code)
	assert.Equal(t, "children", res.Body.String())
	assert.Equal(t, string(access.TierUser), res.Header().Get("X-Tier"))
}

func TestProtectListsRequiredAndHeldPermissions(t *testing.T) {
	env := newGuardEnv(t)
	env.store.Seed(access.CollectionCompanyAdmins, "p1", map[string]any{
		"company_id":  "acme-co",
		"permissions": []any{"manage-rebuttals"},
	})

	res := protectRequest(t, env, "p1", access.Requirement{
		Tier:        access.TierAdmin,
		Permissions: []string{access.PermManageRebuttals, access.PermManageCategories},
	})
	require.Equal(t, http.StatusForbidden, res.Code)

	var problem struct {
		Title string `json:"title"`
		Extra struct {
			Required []string `json:"required"`
			Held     []string `json:"held"`
			Missing  []string `json:"missing"`
		} `json:"extra"`
	}
	require.NoError(t, json.Unmarshal(res.Body.Bytes(), &problem))
	assert.Equal(t, "Insufficient Permissions", problem.Title)
	assert.Equal(t, []string{access.PermManageRebuttals, access.PermManageCategories}, problem.Extra.Required)
	assert.Equal(t, []string{access.PermManageRebuttals}, problem.Extra.Held)
	assert.Equal(t, []string{access.PermManageCategories}, problem.Extra.Missing)
}

func TestProtectStoreFailureReturnsRetryableProblem(t *testing.T) {
	env := newGuardEnv(t)
	env.store.FailAll = true
	env.store.Seed(access.CollectionUsers, "rep", map[string]any{})

	res := protectRequest(t, env, "rep", access.Requirement{Tier: access.TierAdmin, FallbackPath: "/admin/login"})
	assert.Equal(t, http.StatusServiceUnavailable, res.Code)
	assert.Empty(t, res.Header().Get("Location"))
}

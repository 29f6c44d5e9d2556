package access

import "errors"

// Role record collections probed by the resolver, highest tier first.
const (
	CollectionSuperAdmins   = "super_admins"
	CollectionCompanyAdmins = "company_admins"
	CollectionAdmins        = "admins"
	CollectionUsers         = "users"
)

// ErrResolution indicates the store failed while resolving a principal's
// role. It is distinct from "no role found" so the guard can surface a
// retryable error instead of redirecting an entitled user away.
var ErrResolution = errors.New("access: resolution failed")

// Record is the resolved role for a principal: one authoritative tier, an
// optional company binding and the effective permission set.
type Record struct {
	PrincipalID string   `json:"principal_id"`
	Tier        Tier     `json:"tier"`
	CompanyID   string   `json:"company_id,omitempty"`
	Permissions []string `json:"permissions"`
}

// HasAll reports whether the record holds every required permission.
func (r Record) HasAll(required []string) bool {
	if len(required) == 0 {
		return true
	}
	held := make(map[string]struct{}, len(r.Permissions))
	for _, p := range r.Permissions {
		held[p] = struct{}{}
	}
	for _, p := range required {
		if _, ok := held[p]; !ok {
			return false
		}
	}
	return true
}

// Missing returns the required permissions the record does not hold.
func (r Record) Missing(required []string) []string {
	held := make(map[string]struct{}, len(r.Permissions))
	for _, p := range r.Permissions {
		held[p] = struct{}{}
	}
	var missing []string
	for _, p := range required {
		if _, ok := held[p]; !ok {
			missing = append(missing, p)
		}
	}
	return missing
}

// Requirement is the authorization contract a protected route declares.
type Requirement struct {
	// Tier is the required role; empty means any authenticated session.
	Tier Tier
	// Permissions must all be held once the role check passes.
	Permissions []string
	// FallbackPath receives unauthenticated visitors.
	FallbackPath string
	// AllowImpersonation lets an impersonating super-admin satisfy an
	// admin or company-admin requirement.
	AllowImpersonation bool
}

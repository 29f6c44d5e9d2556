package access

// Tier is an ordered role class. Resolution probes collections from the
// highest tier down and stops on the first hit, so a principal holds exactly
// one authoritative tier at a time.
type Tier string

const (
	TierSuperAdmin   Tier = "super-admin"
	TierCompanyAdmin Tier = "company-admin"
	TierAdmin        Tier = "admin"
	TierUser         Tier = "user"
	TierNone         Tier = "none"
)

// Valid reports whether t is a recognized tier.
func (t Tier) Valid() bool {
	switch t {
	case TierSuperAdmin, TierCompanyAdmin, TierAdmin, TierUser, TierNone:
		return true
	}
	return false
}

// Satisfies reports whether a held tier meets a route requirement. The only
// inclusion in the lattice is company-admin covering admin routes; a
// super-admin does not implicitly satisfy lower tiers (it is redirected to
// its own console instead, unless an impersonation grant applies).
func (t Tier) Satisfies(required Tier) bool {
	if t == required {
		return true
	}
	if t == TierCompanyAdmin && required == TierAdmin {
		return true
	}
	return false
}

// HomePath is where a principal of this tier lands when it fails a role
// requirement it cannot satisfy.
func (t Tier) HomePath() string {
	switch t {
	case TierSuperAdmin:
		return "/admin/saas"
	case TierCompanyAdmin, TierAdmin:
		return "/admin/dashboard"
	default:
		return "/"
	}
}

// Portal permissions.
const (
	PermCreateCompanies      = "create-companies"
	PermDeleteCompanies      = "delete-companies"
	PermManageUsers          = "manage-users"
	PermViewAnalytics        = "view-analytics"
	PermSystemSettings       = "system-settings"
	PermImpersonateCompanies = "impersonate-companies"
	PermManageRebuttals      = "manage-rebuttals"
	PermManageCategories     = "manage-categories"
	PermManagePlatforms      = "manage-platforms"
)

// DefaultPermissions returns the permission set a role record falls back to
// when it does not list its own.
func DefaultPermissions(t Tier) []string {
	switch t {
	case TierSuperAdmin:
		return []string{
			PermCreateCompanies,
			PermDeleteCompanies,
			PermManageUsers,
			PermViewAnalytics,
			PermSystemSettings,
			PermImpersonateCompanies,
		}
	case TierCompanyAdmin:
		return []string{
			PermManageUsers,
			PermManageRebuttals,
			PermManageCategories,
			PermViewAnalytics,
			PermManagePlatforms,
		}
	case TierAdmin:
		return []string{
			PermManageRebuttals,
			PermManageCategories,
		}
	default:
		return nil
	}
}

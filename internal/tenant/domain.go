package tenant

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// CollectionCompanies is the docstore collection holding tenant records.
const CollectionCompanies = "companies"

// Status is a tenant lifecycle state. The zero value means the record never
// declared one; consumers treat that as active.
type Status string

const (
	StatusActive    Status = "active"
	StatusInactive  Status = "inactive"
	StatusSuspended Status = "suspended"
)

// Blocks reports whether the status prevents the portal from rendering.
// Unknown and empty statuses do not block, so synthesized placeholders
// render normally.
func (s Status) Blocks() bool {
	return s == StatusInactive || s == StatusSuspended
}

// Tenant is a customer company owning its own portal content and users.
type Tenant struct {
	ID          string `json:"id"`
	Slug        string `json:"slug"`
	Name        string `json:"name"`
	Status      Status `json:"status,omitempty"`
	Placeholder bool   `json:"placeholder,omitempty"`
}

var titleCaser = cases.Title(language.English)

// humanize derives a display name from a slug: separators become spaces,
// words get title case. "acme-co" -> "Acme Co".
func humanize(slug string) string {
	name := strings.NewReplacer("-", " ", "_", " ").Replace(slug)
	name = strings.Join(strings.Fields(name), " ")
	return titleCaser.String(name)
}

package identity

import "time"

// Principal is an authenticated account. The id doubles as the key the role
// resolver probes the role collections with.
type Principal struct {
	ID           string
	Email        string
	PasswordHash string
	IsActive     bool
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

package shared

import "errors"

// Sentinel errors shared across the identity, tenant and content packages.
var (
	// ErrNotFound reports a missing principal, company or content document.
	ErrNotFound = errors.New("not found")
	// ErrInvalidCredentials covers unknown emails and wrong passwords alike,
	// so login responses never reveal which one failed.
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrCSRFTokenMissing reports a mutating request without a CSRF token.
	ErrCSRFTokenMissing = errors.New("csrf token missing")
	// ErrCSRFTokenMismatch reports a CSRF token that fails verification.
	ErrCSRFTokenMismatch = errors.New("csrf token mismatch")
)

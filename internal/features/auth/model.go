// Package auth implements the portal's session authenticator: PIN-based
// family login, Google-verified director login, opaque bearer tokens stored
// in Redis, and the permission gate middleware protecting the content API.
package auth

import (
	"time"
)

// Family represents a family credential record. Created and edited by an
// administrator; the API only ever reads these rows.
//
// Two PIN hashes are stored: a fast indexable lookup hash (SHA-256 hex) to
// find candidate rows, and a slow argon2id hash for actual verification.
// The lookup hash alone is never treated as proof of the PIN.
type Family struct {
	ID            int64      `json:"id"`
	Name          string     `json:"name"`
	PINLookupHash string     `json:"-"` // Never expose.
	PINVerifyHash string     `json:"-"` // Never expose.
	CreatedAt     time.Time  `json:"created_at"`
	LastLoginAt   *time.Time `json:"last_login_at,omitempty"`
}

// SessionKind identifies which login flow produced a session.
type SessionKind string

const (
	// KindFamily sessions come from PIN login and bind to a family ID.
	KindFamily SessionKind = "family"

	// KindDirector sessions come from Google login and bind to a school ID.
	KindDirector SessionKind = "director"
)

// Session is the server-side record binding a bearer token to an entity.
// The token is the Redis key; this struct is the value (JSON-encoded).
//
// A session is valid if and only if its record exists and ExpiresAt is in
// the future. Expiry is absolute from creation -- no renewal or refresh.
type Session struct {
	Kind      SessionKind `json:"kind"`
	EntityID  int64       `json:"entity_id"`
	Name      string      `json:"name"`
	Slug      string      `json:"slug,omitempty"`
	Email     string      `json:"email,omitempty"`
	IsAdmin   bool        `json:"is_admin"`
	IssuedAt  time.Time   `json:"issued_at"`
	ExpiresAt time.Time   `json:"expires_at"`
}

// --- Request DTOs (bound from HTTP requests) ---

// PINLoginRequest is the family login payload.
type PINLoginRequest struct {
	PIN string `json:"pin" form:"pin"`
}

// GoogleLoginRequest is the director login payload carrying a Google ID token.
type GoogleLoginRequest struct {
	IDToken string `json:"id_token" form:"id_token"`
}

// --- Response DTOs ---

// PINLoginResponse is returned on successful family login.
type PINLoginResponse struct {
	Token    string `json:"token"`
	Family   string `json:"family"`
	FamilyID int64  `json:"family_id"`
}

// GoogleLoginResponse is returned on successful director login.
type GoogleLoginResponse struct {
	Token         string `json:"token"`
	SchoolID      int64  `json:"school_id"`
	SchoolSlug    string `json:"school_slug"`
	DirectorEmail string `json:"director_email"`
}

package domain

import "time"

// TokenRecord is the access/refresh/expiry triple representing one
// authorization session. Created on a successful code exchange, mutated
// (access token + expiry only) on refresh, deleted on disconnect or an
// irrecoverable refresh failure.
type TokenRecord struct {
	AccessToken  string    `json:"access_token"`
	RefreshToken string    `json:"refresh_token,omitempty"`
	ExpiresAt    time.Time `json:"expires_at"`
}

// IsZero reports whether no token material is present.
func (t TokenRecord) IsZero() bool {
	return t.AccessToken == "" && t.RefreshToken == ""
}

// Valid reports whether the access token is usable at the given instant.
func (t TokenRecord) Valid(now time.Time) bool {
	return t.AccessToken != "" && now.Before(t.ExpiresAt)
}

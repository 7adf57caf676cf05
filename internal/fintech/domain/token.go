package domain

import "time"

// TokenPair is what a successful login or refresh returns: a short-lived
// access JWT and a long-lived refresh JWT.
type TokenPair struct {
	AccessToken  string        `json:"access_token"`
	RefreshToken string        `json:"refresh_token"`
	TokenType    string        `json:"token_type"` // always "Bearer"
	ExpiresIn    time.Duration `json:"expires_in"` // seconds until access expiry
}

// Identity is the authenticated caller extracted from a verified access
// token. Handlers thread it through the request context.
type Identity struct {
	Email string
	Role  Role
}

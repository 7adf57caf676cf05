// Package jwtx wraps github.com/golang-jwt/jwt/v5 behind small Signer and
// Verifier types. Tokens are HS256 over a process-stable secret loaded from
// configuration, so verification is pure CPU work with no store round trip.
package jwtx

import (
	"crypto/rand"
	"encoding/base64"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Default token TTL constants for the auth flows.
const (
	// DefaultAccessTokenTTL is the default lifetime for access tokens.
	// Short-lived for security.
	DefaultAccessTokenTTL = 15 * time.Minute

	// DefaultRefreshTokenTTL is the default lifetime for refresh tokens.
	// Refresh tokens carry no exp claim of their own; this TTL is enforced
	// server-side by the session registry entry.
	DefaultRefreshTokenTTL = 7 * 24 * time.Hour
)

// Claims are the token claims used across the service. The subject is the
// user's email, which is the stable identity key everywhere else.
type Claims struct {
	jwt.RegisteredClaims

	// Role is the caller's effective role ("USER" or "PENDING") at issue
	// time. Informational only; authorization re-derives it per request.
	Role string `json:"role,omitempty"`
}

// NewAccessClaims builds claims for a short-lived access token.
func NewAccessClaims(subject, issuer, role string, ttl time.Duration, now time.Time) Claims {
	c := newBaseClaims(subject, issuer, role, now)
	c.ExpiresAt = jwt.NewNumericDate(now.Add(ttl))
	return c
}

// NewRefreshClaims builds claims for a refresh token. Deliberately no exp
// claim: the registry entry's TTL bounds the token's usable lifetime, and a
// self-declared expiry would only invite drift between the two.
func NewRefreshClaims(subject, issuer, role string, now time.Time) Claims {
	return newBaseClaims(subject, issuer, role, now)
}

func newBaseClaims(subject, issuer, role string, now time.Time) Claims {
	return Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			ID:       NewJTI(),
			Issuer:   issuer,
			Subject:  subject,
			Audience: jwt.ClaimStrings{subject},
			IssuedAt: jwt.NewNumericDate(now),
		},
		Role: role,
	}
}

// NewJTI returns a URL-safe random identifier for the "jti" claim. The iat
// claim has second resolution, so without a jti two tokens minted for the
// same subject in the same second would serialize identically.
func NewJTI() string {
	var b [20]byte
	_, _ = rand.Read(b[:])
	return base64.RawURLEncoding.EncodeToString(b[:])
}

// ValidateIssuer checks the issuer claim against an expected value.
func (c *Claims) ValidateIssuer(expected string) error {
	if expected == "" {
		return nil // nothing to enforce
	}
	if c.Issuer != expected {
		return ErrIssuer
	}
	return nil
}

// ValidateExpiry ensures the token hasn't expired. Tokens without an exp
// claim (refresh tokens) never expire by their own claims.
func (c *Claims) ValidateExpiry() error {
	if c.ExpiresAt != nil && time.Now().UTC().After(c.ExpiresAt.Time) {
		return ErrExpired
	}
	return nil
}

// Expiry returns the exp claim, or the zero time when the token carries none.
func (c *Claims) Expiry() time.Time {
	if c.ExpiresAt == nil {
		return time.Time{}
	}
	return c.ExpiresAt.Time
}

// RemainingLifetime reports how long the token is still valid from now.
// Zero or negative means already expired; tokens without exp report zero.
func (c *Claims) RemainingLifetime(now time.Time) time.Duration {
	if c.ExpiresAt == nil {
		return 0
	}
	return c.ExpiresAt.Time.Sub(now)
}

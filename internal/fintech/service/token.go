package service

import (
	"errors"
	"time"

	"github.com/seulahhh/Fintech-project/internal/fintech/domain"
	"github.com/seulahhh/Fintech-project/pkg/jwtx"
)

// TokenService creates and validates signed tokens. It is the trust anchor
// for identity propagation; revocation lives in SessionService because a
// signature check alone cannot know a token was withdrawn.
type TokenService struct {
	Keychain   *jwtx.HS256Keychain
	Issuer     string
	AccessTTL  time.Duration
	RefreshTTL time.Duration
}

// IssueAccessToken signs a short-lived access token for the identity.
func (s *TokenService) IssueAccessToken(email string, role domain.Role, now time.Time) (string, error) {
	claims := jwtx.NewAccessClaims(email, s.Issuer, role.String(), s.AccessTTL, now)
	token, err := s.Keychain.Sign(claims)
	if err != nil {
		return "", domain.ErrIoOperationFailed
	}
	return token, nil
}

// IssueRefreshToken signs a refresh token with no expiry claim. Its
// lifetime is enforced by the session registry's TTL, not by the token.
func (s *TokenService) IssueRefreshToken(email string, role domain.Role, now time.Time) (string, error) {
	claims := jwtx.NewRefreshClaims(email, s.Issuer, role.String(), now)
	token, err := s.Keychain.Sign(claims)
	if err != nil {
		return "", domain.ErrIoOperationFailed
	}
	return token, nil
}

// Verify validates signature, issuer and expiry, and returns the claims.
// Pure local CPU work, no store round trip.
func (s *TokenService) Verify(token string) (jwtx.Claims, error) {
	claims, err := s.Keychain.Verify(token)
	switch {
	case err == nil:
		return claims, nil
	case errors.Is(err, jwtx.ErrExpired):
		return jwtx.Claims{}, domain.ErrTokenExpired
	default:
		return jwtx.Claims{}, domain.ErrInvalidToken
	}
}

// SubjectOf verifies the token and returns its subject identity.
func (s *TokenService) SubjectOf(token string) (string, error) {
	claims, err := s.Verify(token)
	if err != nil {
		return "", err
	}
	return claims.Subject, nil
}

// ExpiryOf verifies the token and returns its expiry. Refresh tokens
// carry none and report the zero time.
func (s *TokenService) ExpiryOf(token string) (time.Time, error) {
	claims, err := s.Verify(token)
	if err != nil {
		return time.Time{}, err
	}
	return claims.Expiry(), nil
}

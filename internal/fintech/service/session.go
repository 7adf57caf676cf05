package service

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/seulahhh/Fintech-project/internal/fintech/domain"
	"github.com/seulahhh/Fintech-project/internal/fintech/kv"
	"github.com/seulahhh/Fintech-project/pkg/slogx"
)

// Key namespaces are a persisted-state contract shared with any other
// process operating against the same backing store.
const (
	refreshKeyPrefix   = "refresh::"
	blacklistKeyPrefix = "blacklist::"
)

// SessionService is the authoritative record of which refresh tokens are
// alive and which access tokens are dead.
type SessionService struct {
	KV         kv.Store
	RefreshTTL time.Duration
}

func refreshKey(token string) string   { return refreshKeyPrefix + token }
func blacklistKey(token string) string { return blacklistKeyPrefix + token }

// RegisterRefreshToken stores the refresh token unconditionally with the
// session TTL. Tokens are unique per issuance so overwriting is safe.
func (s *SessionService) RegisterRefreshToken(ctx context.Context, token, email string) error {
	if err := s.KV.SetTTL(ctx, refreshKey(token), email, s.RefreshTTL); err != nil {
		slogx.FromContext(ctx).Error("register refresh token failed", slog.Any("err", err))
		return domain.ErrIoOperationFailed
	}
	return nil
}

// AssertRefreshOwnership checks that the token is registered and belongs
// to the claimed identity. Used before trusting a refresh token for
// rotation.
func (s *SessionService) AssertRefreshOwnership(ctx context.Context, token, email string) error {
	owner, err := s.KV.Get(ctx, refreshKey(token))
	if errors.Is(err, kv.ErrKeyMissing) {
		return domain.ErrTokenNotFound
	}
	if err != nil {
		slogx.FromContext(ctx).Error("refresh ownership lookup failed", slog.Any("err", err))
		return domain.ErrIoOperationFailed
	}
	if owner != email {
		return domain.ErrOwnerMismatch
	}
	return nil
}

// ConsumeRefreshToken atomically removes the registration if it still
// belongs to email. Exactly one concurrent rotation of the same token can
// win; losers observe TokenNotFound.
func (s *SessionService) ConsumeRefreshToken(ctx context.Context, token, email string) error {
	result, err := s.KV.CompareAndDelete(ctx, refreshKey(token), email)
	if err != nil {
		slogx.FromContext(ctx).Error("refresh token consume failed", slog.Any("err", err))
		return domain.ErrIoOperationFailed
	}
	switch result {
	case kv.CadDeleted:
		return nil
	case kv.CadMismatch:
		return domain.ErrOwnerMismatch
	default:
		return domain.ErrTokenNotFound
	}
}

// RevokeRefreshToken deletes a live registration. Revoking an unknown
// token is an error: the caller must know the token was live.
func (s *SessionService) RevokeRefreshToken(ctx context.Context, token string) error {
	present, err := s.KV.Exists(ctx, refreshKey(token))
	if err != nil {
		slogx.FromContext(ctx).Error("refresh token lookup failed", slog.Any("err", err))
		return domain.ErrIoOperationFailed
	}
	if !present {
		return domain.ErrTokenNotFound
	}
	if err := s.KV.Delete(ctx, refreshKey(token)); err != nil {
		slogx.FromContext(ctx).Error("refresh token revoke failed", slog.Any("err", err))
		return domain.ErrIoOperationFailed
	}
	return nil
}

// BlacklistAccessToken records a revoked access token for exactly its
// remaining lifetime. Never longer, so the entry cannot outlive the token
// it invalidates; never shorter, or a revoked token would be accepted
// again before its expiry.
func (s *SessionService) BlacklistAccessToken(ctx context.Context, token, email string, remaining time.Duration) error {
	if remaining <= 0 {
		// Expired tokens are already rejected by verification.
		return nil
	}
	if err := s.KV.SetTTL(ctx, blacklistKey(token), email, remaining); err != nil {
		slogx.FromContext(ctx).Error("blacklist access token failed", slog.Any("err", err))
		return domain.ErrIoOperationFailed
	}
	return nil
}

// IsBlacklisted reports whether the exact token was revoked for this
// identity. The stored identity must match; an entry written for another
// identity's token string does not count.
func (s *SessionService) IsBlacklisted(ctx context.Context, token, email string) (bool, error) {
	owner, err := s.KV.Get(ctx, blacklistKey(token))
	if errors.Is(err, kv.ErrKeyMissing) {
		return false, nil
	}
	if err != nil {
		slogx.FromContext(ctx).Error("blacklist lookup failed", slog.Any("err", err))
		return false, domain.ErrIoOperationFailed
	}
	return owner == email, nil
}

package service

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/seulahhh/Fintech-project/internal/fintech/domain"
	"github.com/seulahhh/Fintech-project/internal/fintech/store"
	"github.com/seulahhh/Fintech-project/pkg/cryptox"
	"github.com/seulahhh/Fintech-project/pkg/slogx"
)

// AuthFlow orchestrates login, token rotation, logout and per-request
// authentication on top of the token and session services.
type AuthFlow struct {
	Store    store.Store
	Tokens   *TokenService
	Sessions *SessionService

	// Now is swappable in tests; defaults to time.Now.
	Now func() time.Time
}

func (f *AuthFlow) now() time.Time {
	if f.Now != nil {
		return f.Now()
	}
	return time.Now()
}

// Login checks credentials and issues a fresh token pair, registering the
// refresh token as the live session.
func (f *AuthFlow) Login(ctx context.Context, email, password string) (domain.TokenPair, error) {
	l := slogx.FromContext(ctx)
	now := f.now()

	// 1. Credential check. Unknown email and bad password produce the
	// same error so callers cannot probe for registered addresses.
	user, err := f.Store.Users().GetUserByEmail(ctx, email)
	if errors.Is(err, store.ErrNotFound) {
		return domain.TokenPair{}, domain.ErrLoginFailed
	}
	if err != nil {
		return domain.TokenPair{}, domain.ErrIoOperationFailed
	}
	if cryptox.VerifyPassword(password, user.PasswordHash) != nil {
		l.Info("login password mismatch", slog.String("email", email))
		return domain.TokenPair{}, domain.ErrLoginFailed
	}

	// 2. Email must be verified before a session is granted
	if !user.EmailVerified {
		return domain.TokenPair{}, domain.ErrEmailNotVerified
	}

	// 3. Issue and register the pair
	return f.issuePair(ctx, user.Email, user.Role(), now)
}

// Refresh rotates a refresh token: the old registration is atomically
// consumed, a new pair is issued and registered. Rotating an already
// consumed token fails with TokenNotFound, which doubles as reuse
// detection.
func (f *AuthFlow) Refresh(ctx context.Context, email, refreshToken string) (domain.TokenPair, error) {
	l := slogx.FromContext(ctx)
	now := f.now()

	// 1. The registration must exist and belong to the caller. Checked
	// before signature verification so a stolen-but-unregistered token
	// reports TokenNotFound rather than leaking validity information.
	if err := f.Sessions.AssertRefreshOwnership(ctx, refreshToken, email); err != nil {
		return domain.TokenPair{}, err
	}

	// 2. The token itself must still verify
	claims, err := f.Tokens.Verify(refreshToken)
	if err != nil {
		return domain.TokenPair{}, err
	}
	if claims.Subject != email {
		return domain.TokenPair{}, domain.ErrOwnerMismatch
	}

	// 3. Atomically consume the old registration. Exactly one of two
	// concurrent rotations can pass this point.
	if err := f.Sessions.ConsumeRefreshToken(ctx, refreshToken, email); err != nil {
		l.Info("refresh token consume rejected", slog.String("email", email))
		return domain.TokenPair{}, err
	}

	// 4. Current role is re-read so a promotion since login takes effect
	user, err := f.Store.Users().GetUserByEmail(ctx, email)
	if errors.Is(err, store.ErrNotFound) {
		return domain.TokenPair{}, domain.ErrUserNotFound
	}
	if err != nil {
		return domain.TokenPair{}, domain.ErrIoOperationFailed
	}

	return f.issuePair(ctx, user.Email, user.Role(), now)
}

// Logout revokes the refresh token and blacklists the access token for
// its remaining lifetime.
func (f *AuthFlow) Logout(ctx context.Context, accessToken, refreshToken string) error {
	now := f.now()

	// 1. The access token identifies the caller
	claims, err := f.Tokens.Verify(accessToken)
	if err != nil {
		return err
	}
	email := claims.Subject

	// 2. The refresh token must be this caller's live session
	if err := f.Sessions.AssertRefreshOwnership(ctx, refreshToken, email); err != nil {
		return err
	}
	if err := f.Sessions.RevokeRefreshToken(ctx, refreshToken); err != nil {
		return err
	}

	// 3. Blacklist the access token for exactly its remaining life
	return f.Sessions.BlacklistAccessToken(ctx, accessToken, email, claims.RemainingLifetime(now))
}

// Authenticate validates a bearer access token and yields the caller's
// identity. Blacklisted tokens are rejected as InvalidToken.
func (f *AuthFlow) Authenticate(ctx context.Context, accessToken string) (domain.Identity, error) {
	claims, err := f.Tokens.Verify(accessToken)
	if err != nil {
		return domain.Identity{}, err
	}

	dead, err := f.Sessions.IsBlacklisted(ctx, accessToken, claims.Subject)
	if err != nil {
		return domain.Identity{}, err
	}
	if dead {
		return domain.Identity{}, domain.ErrInvalidToken
	}

	return domain.Identity{
		Email: claims.Subject,
		Role:  domain.Role(claims.Role),
	}, nil
}

func (f *AuthFlow) issuePair(ctx context.Context, email string, role domain.Role, now time.Time) (domain.TokenPair, error) {
	accessToken, err := f.Tokens.IssueAccessToken(email, role, now)
	if err != nil {
		return domain.TokenPair{}, err
	}
	refreshToken, err := f.Tokens.IssueRefreshToken(email, role, now)
	if err != nil {
		return domain.TokenPair{}, err
	}
	if err := f.Sessions.RegisterRefreshToken(ctx, refreshToken, email); err != nil {
		return domain.TokenPair{}, err
	}

	return domain.TokenPair{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		TokenType:    "Bearer",
		ExpiresIn:    f.Tokens.AccessTTL,
	}, nil
}

package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/seulahhh/Fintech-project/internal/fintech/domain"
	"github.com/seulahhh/Fintech-project/internal/fintech/kv"
	"github.com/seulahhh/Fintech-project/internal/fintech/mail"
	"github.com/seulahhh/Fintech-project/internal/fintech/store"
	"github.com/seulahhh/Fintech-project/pkg/cryptox"
	"github.com/seulahhh/Fintech-project/pkg/idx"
	"github.com/seulahhh/Fintech-project/pkg/slogx"
)

const (
	emailVerifyKeyPrefix = "email_verify::"

	// emailVerifyTTL bounds how long a verification link stays usable.
	emailVerifyTTL = 24 * time.Hour
)

// UserService handles signup and email verification.
type UserService struct {
	Store store.Store
	KV    kv.Store
	Mail  mail.Sender
	Otp   *OtpService

	// VerifyBaseURL is the public URL prefix embedded in verification
	// mails, e.g. "https://app.example.com/register/verify-email".
	VerifyBaseURL string
}

func emailVerifyKey(fingerprint string) string { return emailVerifyKeyPrefix + fingerprint }

// RegisterParams is the signup input.
type RegisterParams struct {
	Name     string
	Email    string
	Phone    string
	Password string
}

// Register creates a pending user and mails out a verification link. The
// raw verification token never touches durable storage; only its
// fingerprint is kept, with a TTL.
func (s *UserService) Register(ctx context.Context, p RegisterParams) (domain.User, error) {
	l := slogx.FromContext(ctx)

	// 1. Hash the credential before any storage round trip
	hash, err := cryptox.HashPassword(p.Password)
	if err != nil {
		return domain.User{}, domain.ErrIoOperationFailed
	}

	user := domain.User{
		ID:           idx.New().String(),
		Name:         p.Name,
		Email:        p.Email,
		Phone:        p.Phone,
		PasswordHash: hash,
	}

	// 2. Insert; a taken email surfaces as a client error
	err = s.Store.Users().CreateUser(ctx, user)
	if errors.Is(err, store.ErrAlreadyExists) {
		return domain.User{}, domain.ErrEmailAlreadyExist
	}
	if err != nil {
		return domain.User{}, domain.ErrIoOperationFailed
	}

	// 3. Issue the one-shot verification token
	token, err := cryptox.GenerateToken(cryptox.TokenSize256)
	if err != nil {
		return domain.User{}, domain.ErrIoOperationFailed
	}
	fingerprint := cryptox.FingerprintToken(token)
	if err := s.KV.SetTTL(ctx, emailVerifyKey(fingerprint), user.Email, emailVerifyTTL); err != nil {
		l.Error("verification token store failed", slog.Any("err", err))
		return domain.User{}, domain.ErrIoOperationFailed
	}

	// 4. Mail failure is not fatal to signup. Logged for operators; the
	// stored token stays valid so delivery can be retried.
	verifyURL := fmt.Sprintf("%s?token=%s", s.VerifyBaseURL, token)
	if err := s.Mail.SendVerification(ctx, user.Email, user.Name, verifyURL); err != nil {
		l.Error("verification mail send failed", slog.String("email", user.Email), slog.Any("err", err))
	}

	return s.Store.Users().GetUserByID(ctx, user.ID)
}

// VerifyEmail consumes a verification token, marks the email verified and
// issues the user's first TOTP secret. The returned provisioning URI
// completes onboarding once the user confirms a code against it.
func (s *UserService) VerifyEmail(ctx context.Context, token string) (string, error) {
	fingerprint := cryptox.FingerprintToken(token)
	key := emailVerifyKey(fingerprint)

	email, err := s.KV.Get(ctx, key)
	if errors.Is(err, kv.ErrKeyMissing) {
		return "", domain.ErrInvalidToken
	}
	if err != nil {
		return "", domain.ErrIoOperationFailed
	}

	user, err := s.Store.Users().GetUserByEmail(ctx, email)
	if errors.Is(err, store.ErrNotFound) {
		return "", domain.ErrUserNotFound
	}
	if err != nil {
		return "", domain.ErrIoOperationFailed
	}

	if err := s.Store.Users().MarkEmailVerified(ctx, user.ID); err != nil {
		return "", domain.ErrIoOperationFailed
	}

	// The token is single use
	if err := s.KV.Delete(ctx, key); err != nil {
		return "", domain.ErrIoOperationFailed
	}

	return s.Otp.IssueSecret(ctx, email)
}

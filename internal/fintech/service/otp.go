package service

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/pquerna/otp"
	"github.com/pquerna/otp/totp"

	"github.com/seulahhh/Fintech-project/internal/fintech/domain"
	"github.com/seulahhh/Fintech-project/internal/fintech/kv"
	"github.com/seulahhh/Fintech-project/internal/fintech/store"
	"github.com/seulahhh/Fintech-project/pkg/slogx"
)

const (
	// MaxOtpAttempts is the hard gate on failed code checks per window.
	MaxOtpAttempts = 3

	// otpStep is the TOTP time step. The attempt window is aligned to the
	// same wall-clock boundaries: a guessed code is only valid for one
	// step, so re-allowing attempts at the next boundary is sound.
	otpStep = 30 * time.Second

	attemptKeyPrefix = "otp_attempts::"
)

// OtpService manages the TOTP secret lifecycle and enforces bounded code
// verification attempts.
type OtpService struct {
	Store  store.Store
	KV     kv.Store
	Issuer string // provisioning URI issuer (e.g. "Fintech")

	// now is swappable in tests; defaults to time.Now.
	Now func() time.Time
}

func (s *OtpService) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}

func attemptKey(email string) string { return attemptKeyPrefix + email }

// stepRemaining returns how long until the current 30s wall-clock step
// rolls over.
func stepRemaining(now time.Time) time.Duration {
	elapsed := time.Duration(now.Unix()%int64(otpStep/time.Second)) * time.Second
	return otpStep - elapsed
}

// IssueSecret generates a fresh TOTP secret for the user and returns the
// provisioning URI. The user is not marked OTP-registered yet; that only
// happens after a successful verification against the new secret.
func (s *OtpService) IssueSecret(ctx context.Context, email string) (string, error) {
	user, err := s.lookupUser(ctx, email)
	if err != nil {
		return "", err
	}
	return s.provision(ctx, user)
}

// ResetSecret discards the prior secret, clears the registration flag and
// issues a fresh one. The previous epoch's secret is invalidated entirely.
func (s *OtpService) ResetSecret(ctx context.Context, email string) (string, error) {
	user, err := s.lookupUser(ctx, email)
	if err != nil {
		return "", err
	}

	err = s.Store.WithTx(ctx, func(tx store.Tx) error {
		if err := tx.OtpSecrets().DeleteByUserID(ctx, user.ID); err != nil {
			return err
		}
		if user.OtpRegistered {
			return tx.Users().ClearOtpRegistered(ctx, user.ID)
		}
		return nil
	})
	if err != nil {
		return "", domain.ErrIoOperationFailed
	}

	return s.provision(ctx, user)
}

// VerifyCode checks a submitted TOTP code for a user who has completed
// OTP registration, rate limited to MaxOtpAttempts failures per step
// window. Users still mid-registration go through CompleteRegistration.
func (s *OtpService) VerifyCode(ctx context.Context, email, code string) error {
	user, err := s.lookupUser(ctx, email)
	if err != nil {
		return err
	}
	secret, err := s.Store.OtpSecrets().GetByUserID(ctx, user.ID)
	if errors.Is(err, store.ErrNotFound) {
		return domain.ErrOtpSecretNotFound
	}
	if err != nil {
		return domain.ErrIoOperationFailed
	}
	if !secret.Confirmed {
		return domain.ErrOtpNotRegistered
	}
	return s.checkCode(ctx, email, code, secret.Secret)
}

// checkCode runs the rate-limited code check shared by step-up
// verification and registration completion.
func (s *OtpService) checkCode(ctx context.Context, email, code, secret string) error {
	l := slogx.FromContext(ctx)
	now := s.now()

	// 1. Hard gate: too many failures in this window rejects without even
	// looking at the code.
	attempts, err := s.KV.Get(ctx, attemptKey(email))
	if err != nil && !errors.Is(err, kv.ErrKeyMissing) {
		l.Error("otp attempt counter read failed", slog.Any("err", err))
		return domain.ErrIoOperationFailed
	}
	if err == nil && atLeastMaxAttempts(attempts) {
		l.Info("otp attempt limit hit", slog.String("email", email))
		return domain.ErrOtpAttemptExceeded
	}

	// 2. Delegate the actual code check
	if totp.Validate(code, secret) {
		// 3. Success clears the counter so the next failure starts a
		// fresh window.
		if err := s.KV.Delete(ctx, attemptKey(email)); err != nil {
			l.Error("otp attempt counter reset failed", slog.Any("err", err))
			return domain.ErrIoOperationFailed
		}
		return nil
	}

	// 4. Failure bumps the counter. Only the first failure in a window
	// sets the expiry; later ones must not extend it or a trickle of
	// guesses would keep the window open forever.
	count, err := s.KV.Increment(ctx, attemptKey(email))
	if err != nil {
		l.Error("otp attempt counter increment failed", slog.Any("err", err))
		return domain.ErrIoOperationFailed
	}
	if count == 1 {
		if err := s.KV.Expire(ctx, attemptKey(email), stepRemaining(now)); err != nil {
			l.Error("otp attempt counter expire failed", slog.Any("err", err))
			return domain.ErrIoOperationFailed
		}
	}

	return domain.ErrInvalidOtpCode
}

// CompleteRegistration verifies the code against a freshly issued secret
// and, on success, confirms the secret and promotes the user's
// registration flag.
func (s *OtpService) CompleteRegistration(ctx context.Context, email, code string) error {
	user, err := s.lookupUser(ctx, email)
	if err != nil {
		return err
	}
	secret, err := s.Store.OtpSecrets().GetByUserID(ctx, user.ID)
	if errors.Is(err, store.ErrNotFound) {
		return domain.ErrOtpSecretNotFound
	}
	if err != nil {
		return domain.ErrIoOperationFailed
	}
	if secret.Confirmed {
		return domain.ErrOtpAlreadyRegistered
	}
	if err := s.checkCode(ctx, email, code, secret.Secret); err != nil {
		return err
	}

	err = s.Store.WithTx(ctx, func(tx store.Tx) error {
		if err := tx.OtpSecrets().Confirm(ctx, user.ID); err != nil {
			return err
		}
		return tx.Users().MarkOtpRegistered(ctx, user.ID)
	})
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return domain.ErrOtpSecretNotFound
		}
		return domain.ErrIoOperationFailed
	}
	return nil
}

func (s *OtpService) lookupUser(ctx context.Context, email string) (domain.User, error) {
	user, err := s.Store.Users().GetUserByEmail(ctx, email)
	if errors.Is(err, store.ErrNotFound) {
		return domain.User{}, domain.ErrUserNotFound
	}
	if err != nil {
		return domain.User{}, domain.ErrIoOperationFailed
	}
	return user, nil
}

// provision generates and stores a fresh unconfirmed secret and returns
// the otpauth:// provisioning URI.
func (s *OtpService) provision(ctx context.Context, user domain.User) (string, error) {
	key, err := totp.Generate(totp.GenerateOpts{
		Issuer:      s.Issuer,
		AccountName: user.Email,
		Period:      30,
		Digits:      otp.DigitsSix,
		Algorithm:   otp.AlgorithmSHA1,
	})
	if err != nil {
		return "", domain.ErrIoOperationFailed
	}

	err = s.Store.OtpSecrets().Upsert(ctx, domain.OtpSecret{
		UserID: user.ID,
		Secret: key.Secret(),
	})
	if errors.Is(err, store.ErrAlreadyExists) {
		return "", domain.ErrOtpAlreadyRegistered
	}
	if err != nil {
		return "", domain.ErrIoOperationFailed
	}

	return key.URL(), nil
}

func atLeastMaxAttempts(raw string) bool {
	// The counter is written by INCR so it is always a small integer.
	n := 0
	for _, c := range raw {
		if c < '0' || c > '9' {
			return false
		}
		n = n*10 + int(c-'0')
		if n >= MaxOtpAttempts {
			return true
		}
	}
	return n >= MaxOtpAttempts
}

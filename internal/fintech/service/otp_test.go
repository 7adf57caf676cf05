package service

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/pquerna/otp/totp"
	"github.com/stretchr/testify/require"

	"github.com/seulahhh/Fintech-project/internal/fintech/domain"
)

// wrongCode returns a six-digit code guaranteed not to validate against
// the secret right now.
func wrongCode(t *testing.T, secret string) string {
	t.Helper()
	for _, candidate := range []string{"000000", "111111", "222222", "333333"} {
		if !totp.Validate(candidate, secret) {
			return candidate
		}
	}
	t.Fatal("could not find an invalid code")
	return ""
}

func validCode(t *testing.T, secret string) string {
	t.Helper()
	code, err := totp.GenerateCode(secret, time.Now())
	require.NoError(t, err)
	return code
}

func TestIssueSecret(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	env.seedVerifiedUser(t, "alice@example.com", "pw")

	t.Run("unknown user", func(t *testing.T) {
		_, err := env.otp.IssueSecret(ctx, "nobody@example.com")
		require.ErrorIs(t, err, domain.ErrUserNotFound)
	})

	t.Run("provisioning uri embeds issuer and identity", func(t *testing.T) {
		uri, err := env.otp.IssueSecret(ctx, "alice@example.com")
		require.NoError(t, err)
		require.True(t, strings.HasPrefix(uri, "otpauth://totp/"))
		require.Contains(t, uri, "fintech-test")
		require.Contains(t, uri, "alice%40example.com")
	})

	t.Run("reissue replaces a provisional secret", func(t *testing.T) {
		first := env.seedOtpSecret(t, "alice@example.com")
		second := env.seedOtpSecret(t, "alice@example.com")
		require.NotEqual(t, first, second)
	})

	t.Run("confirmed secret blocks reissue", func(t *testing.T) {
		secret := env.seedOtpSecret(t, "alice@example.com")
		require.NoError(t, env.otp.CompleteRegistration(ctx, "alice@example.com", validCode(t, secret)))

		_, err := env.otp.IssueSecret(ctx, "alice@example.com")
		require.ErrorIs(t, err, domain.ErrOtpAlreadyRegistered)
	})
}

func TestVerifyCode(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	env.seedVerifiedUser(t, "bob@example.com", "pw")

	t.Run("no secret registered", func(t *testing.T) {
		err := env.otp.VerifyCode(ctx, "bob@example.com", "123456")
		require.ErrorIs(t, err, domain.ErrOtpSecretNotFound)
	})

	secret := env.seedOtpSecret(t, "bob@example.com")

	t.Run("registration not completed", func(t *testing.T) {
		// even the correct code is rejected until the secret is confirmed
		err := env.otp.VerifyCode(ctx, "bob@example.com", validCode(t, secret))
		require.ErrorIs(t, err, domain.ErrOtpNotRegistered)
	})

	require.NoError(t, env.otp.CompleteRegistration(ctx, "bob@example.com", validCode(t, secret)))

	t.Run("wrong code", func(t *testing.T) {
		err := env.otp.VerifyCode(ctx, "bob@example.com", wrongCode(t, secret))
		require.ErrorIs(t, err, domain.ErrInvalidOtpCode)

		// clear the counter for the following subtests
		require.NoError(t, env.kv.Delete(ctx, attemptKey("bob@example.com")))
	})

	t.Run("valid code", func(t *testing.T) {
		require.NoError(t, env.otp.VerifyCode(ctx, "bob@example.com", validCode(t, secret)))
	})
}

func TestVerifyCodeRateLimit(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	env.seedVerifiedUser(t, "carol@example.com", "pw")
	secret := env.seedOtpSecret(t, "carol@example.com")
	require.NoError(t, env.otp.CompleteRegistration(ctx, "carol@example.com", validCode(t, secret)))

	bad := wrongCode(t, secret)

	t.Run("three failures lock even the correct code out", func(t *testing.T) {
		for range MaxOtpAttempts {
			err := env.otp.VerifyCode(ctx, "carol@example.com", bad)
			require.ErrorIs(t, err, domain.ErrInvalidOtpCode)
		}

		// fourth attempt with the CORRECT code still fails: the gate is
		// checked before the code is
		err := env.otp.VerifyCode(ctx, "carol@example.com", validCode(t, secret))
		require.ErrorIs(t, err, domain.ErrOtpAttemptExceeded)
	})

	t.Run("window expiry unlocks", func(t *testing.T) {
		env.redis.FastForward(31 * time.Second)

		require.NoError(t, env.otp.VerifyCode(ctx, "carol@example.com", validCode(t, secret)))
	})

	t.Run("success resets the counter", func(t *testing.T) {
		// one failure, then success, then the next failure counts as the
		// first of a fresh window
		require.ErrorIs(t, env.otp.VerifyCode(ctx, "carol@example.com", bad), domain.ErrInvalidOtpCode)
		require.NoError(t, env.otp.VerifyCode(ctx, "carol@example.com", validCode(t, secret)))

		require.ErrorIs(t, env.otp.VerifyCode(ctx, "carol@example.com", bad), domain.ErrInvalidOtpCode)

		raw, err := env.kv.Get(ctx, attemptKey("carol@example.com"))
		require.NoError(t, err)
		require.Equal(t, "1", raw)
	})

	t.Run("only the first failure sets the window expiry", func(t *testing.T) {
		env.redis.FastForward(31 * time.Second)

		require.ErrorIs(t, env.otp.VerifyCode(ctx, "carol@example.com", bad), domain.ErrInvalidOtpCode)
		firstTTL := env.redis.TTL(attemptKey("carol@example.com"))

		require.ErrorIs(t, env.otp.VerifyCode(ctx, "carol@example.com", bad), domain.ErrInvalidOtpCode)
		secondTTL := env.redis.TTL(attemptKey("carol@example.com"))

		// a later failure must never extend the window
		require.LessOrEqual(t, secondTTL, firstTTL)
	})
}

func TestCompleteRegistration(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	env.seedVerifiedUser(t, "dave@example.com", "pw")
	secret := env.seedOtpSecret(t, "dave@example.com")

	t.Run("wrong code does not register", func(t *testing.T) {
		err := env.otp.CompleteRegistration(ctx, "dave@example.com", wrongCode(t, secret))
		require.ErrorIs(t, err, domain.ErrInvalidOtpCode)

		user, err := env.store.Users().GetUserByEmail(ctx, "dave@example.com")
		require.NoError(t, err)
		require.False(t, user.OtpRegistered)
	})

	t.Run("valid code confirms secret and promotes role", func(t *testing.T) {
		require.NoError(t, env.otp.CompleteRegistration(ctx, "dave@example.com", validCode(t, secret)))

		user, err := env.store.Users().GetUserByEmail(ctx, "dave@example.com")
		require.NoError(t, err)
		require.True(t, user.OtpRegistered)
		require.Equal(t, domain.RoleUser, user.Role())
	})

	t.Run("repeat registration is rejected", func(t *testing.T) {
		err := env.otp.CompleteRegistration(ctx, "dave@example.com", validCode(t, secret))
		require.ErrorIs(t, err, domain.ErrOtpAlreadyRegistered)
	})
}

func TestResetSecret(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	env.seedVerifiedUser(t, "erin@example.com", "pw")

	oldSecret := env.seedOtpSecret(t, "erin@example.com")
	require.NoError(t, env.otp.CompleteRegistration(ctx, "erin@example.com", validCode(t, oldSecret)))

	uri, err := env.otp.ResetSecret(ctx, "erin@example.com")
	require.NoError(t, err)
	require.NotEmpty(t, uri)

	t.Run("registration flag is cleared", func(t *testing.T) {
		user, err := env.store.Users().GetUserByEmail(ctx, "erin@example.com")
		require.NoError(t, err)
		require.False(t, user.OtpRegistered)
		require.Equal(t, domain.RolePending, user.Role())
	})

	t.Run("old epoch codes are locked out until re-registration", func(t *testing.T) {
		err := env.otp.VerifyCode(ctx, "erin@example.com", validCode(t, oldSecret))
		require.ErrorIs(t, err, domain.ErrOtpNotRegistered)
	})
}

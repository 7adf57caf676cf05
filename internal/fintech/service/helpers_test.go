package service

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"

	"github.com/seulahhh/Fintech-project/internal/fintech/domain"
	"github.com/seulahhh/Fintech-project/internal/fintech/kv"
	"github.com/seulahhh/Fintech-project/internal/fintech/mail"
	"github.com/seulahhh/Fintech-project/internal/fintech/store"
	"github.com/seulahhh/Fintech-project/internal/fintech/store/drivers/sqlite"
	"github.com/seulahhh/Fintech-project/pkg/cryptox"
	"github.com/seulahhh/Fintech-project/pkg/idx"
	"github.com/seulahhh/Fintech-project/pkg/jwtx"
)

func TestMain(m *testing.M) {
	pepperPath := filepath.Join(os.TempDir(), "fintech-service-test-pepper")
	cryptox.SetPepperPath(pepperPath)

	code := m.Run()
	os.Remove(pepperPath)
	os.Exit(code)
}

type testEnv struct {
	store    store.Store
	kv       kv.Store
	redis    *miniredis.Miniredis
	tokens   *TokenService
	sessions *SessionService
	otp      *OtpService
	auth     *AuthFlow
	accounts *AccountService
	users    *UserService
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	st, err := sqlite.NewStore(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = st.Close() })
	require.NoError(t, st.ApplyMigrations())

	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)

	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	kvStore := kv.NewRedisFromClient(client)

	keychain, err := jwtx.NewHS256([]byte("0123456789abcdef0123456789abcdef"), "fintech-test")
	require.NoError(t, err)

	tokens := &TokenService{
		Keychain:   keychain,
		Issuer:     "fintech-test",
		AccessTTL:  jwtx.DefaultAccessTokenTTL,
		RefreshTTL: jwtx.DefaultRefreshTokenTTL,
	}
	sessions := &SessionService{KV: kvStore, RefreshTTL: tokens.RefreshTTL}
	otp := &OtpService{Store: st, KV: kvStore, Issuer: "fintech-test"}
	auth := &AuthFlow{Store: st, Tokens: tokens, Sessions: sessions}
	users := &UserService{
		Store:         st,
		KV:            kvStore,
		Mail:          mail.LogSender{},
		Otp:           otp,
		VerifyBaseURL: "https://fintech.test/register/verify-email",
	}

	return &testEnv{
		store:    st,
		kv:       kvStore,
		redis:    mr,
		tokens:   tokens,
		sessions: sessions,
		otp:      otp,
		auth:     auth,
		accounts: &AccountService{Store: st},
		users:    users,
	}
}

// seedVerifiedUser creates a user with a known password and a verified
// email, ready to log in.
func (e *testEnv) seedVerifiedUser(t *testing.T, email, password string) domain.User {
	t.Helper()
	ctx := context.Background()

	hash, err := cryptox.HashPassword(password)
	require.NoError(t, err)

	u := domain.User{
		ID:           idx.New().String(),
		Name:         "Test User",
		Email:        email,
		Phone:        "010-1234-5678",
		PasswordHash: hash,
	}
	require.NoError(t, e.store.Users().CreateUser(ctx, u))
	require.NoError(t, e.store.Users().MarkEmailVerified(ctx, u.ID))

	u, err = e.store.Users().GetUserByID(ctx, u.ID)
	require.NoError(t, err)
	return u
}

// seedOtpSecret issues a TOTP secret for the user and returns the raw
// base32 secret so tests can compute valid codes.
func (e *testEnv) seedOtpSecret(t *testing.T, email string) string {
	t.Helper()
	ctx := context.Background()

	_, err := e.otp.IssueSecret(ctx, email)
	require.NoError(t, err)

	user, err := e.store.Users().GetUserByEmail(ctx, email)
	require.NoError(t, err)

	secret, err := e.store.OtpSecrets().GetByUserID(ctx, user.ID)
	require.NoError(t, err)
	return secret.Secret
}

// shortLivedTokens returns a token service whose access tokens expire
// almost immediately, for blacklist TTL tests.
func (e *testEnv) shortLivedTokens(t *testing.T, ttl time.Duration) (*TokenService, *AuthFlow) {
	t.Helper()

	tokens := &TokenService{
		Keychain:   e.tokens.Keychain,
		Issuer:     e.tokens.Issuer,
		AccessTTL:  ttl,
		RefreshTTL: e.tokens.RefreshTTL,
	}
	auth := &AuthFlow{Store: e.store, Tokens: tokens, Sessions: e.sessions}
	return tokens, auth
}

package http

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"

	"github.com/seulahhh/Fintech-project/internal/fintech/domain"
	"github.com/seulahhh/Fintech-project/internal/fintech/kv"
	"github.com/seulahhh/Fintech-project/internal/fintech/mail"
	"github.com/seulahhh/Fintech-project/internal/fintech/service"
	"github.com/seulahhh/Fintech-project/internal/fintech/store"
	"github.com/seulahhh/Fintech-project/internal/fintech/store/drivers/sqlite"
	"github.com/seulahhh/Fintech-project/pkg/cryptox"
	"github.com/seulahhh/Fintech-project/pkg/idx"
	"github.com/seulahhh/Fintech-project/pkg/jwtx"
	"github.com/seulahhh/Fintech-project/pkg/slogx"
)

func TestMain(m *testing.M) {
	pepperPath := filepath.Join(os.TempDir(), "fintech-http-test-pepper")
	cryptox.SetPepperPath(pepperPath)

	code := m.Run()
	os.Remove(pepperPath)
	os.Exit(code)
}

func newTestRouter(t *testing.T) (*Router, store.Store) {
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

	tokens := &service.TokenService{
		Keychain:   keychain,
		Issuer:     "fintech-test",
		AccessTTL:  jwtx.DefaultAccessTokenTTL,
		RefreshTTL: jwtx.DefaultRefreshTokenTTL,
	}
	sessions := &service.SessionService{KV: kvStore, RefreshTTL: tokens.RefreshTTL}
	otp := &service.OtpService{Store: st, KV: kvStore, Issuer: "fintech-test"}

	logger := slogx.New(slogx.Config{Service: "fintech-test", Level: "error", Format: "text"})

	router := NewRouter("test", st, kvStore, logger)
	router.Auth = &service.AuthFlow{Store: st, Tokens: tokens, Sessions: sessions}
	router.Otp = otp
	router.Accounts = &service.AccountService{Store: st}
	router.Users = &service.UserService{
		Store:         st,
		KV:            kvStore,
		Mail:          mail.LogSender{},
		Otp:           otp,
		VerifyBaseURL: "https://fintech.test/register/verify-email",
	}
	router.ApplyRoutes()

	return router, st
}

func seedLoginUser(t *testing.T, st store.Store, email, password string) {
	t.Helper()
	ctx := context.Background()

	hash, err := cryptox.HashPassword(password)
	require.NoError(t, err)

	u := domain.User{
		ID:           idx.New().String(),
		Name:         "Test User",
		Email:        email,
		PasswordHash: hash,
	}
	require.NoError(t, st.Users().CreateUser(ctx, u))
	require.NoError(t, st.Users().MarkEmailVerified(ctx, u.ID))
}

func doJSON(t *testing.T, router *Router, method, path, bearer string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}

	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if bearer != "" {
		req.Header.Set("Authorization", "Bearer "+bearer)
	}

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func TestLoginEndpoint(t *testing.T) {
	router, st := newTestRouter(t)
	seedLoginUser(t, st, "alice@example.com", "pw")

	t.Run("missing fields", func(t *testing.T) {
		rec := doJSON(t, router, http.MethodPost, "/auth/login", "", map[string]string{"email": "alice@example.com"})
		require.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("bad credentials map to 401 with stable code", func(t *testing.T) {
		rec := doJSON(t, router, http.MethodPost, "/auth/login", "", map[string]string{
			"email": "alice@example.com", "password": "wrong",
		})
		require.Equal(t, http.StatusUnauthorized, rec.Code)

		var body struct {
			Code   string `json:"code"`
			Detail string `json:"detail"`
		}
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
		require.Equal(t, domain.ErrLoginFailed.Code, body.Code)
		require.NotEmpty(t, body.Detail)
	})

	t.Run("success returns a pair", func(t *testing.T) {
		rec := doJSON(t, router, http.MethodPost, "/auth/login", "", map[string]string{
			"email": "alice@example.com", "password": "pw",
		})
		require.Equal(t, http.StatusOK, rec.Code)

		var body struct {
			AccessToken  string `json:"accessToken"`
			RefreshToken string `json:"refreshToken"`
			TokenType    string `json:"tokenType"`
			ExpiresIn    int64  `json:"expiresIn"`
		}
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
		require.NotEmpty(t, body.AccessToken)
		require.NotEmpty(t, body.RefreshToken)
		require.Equal(t, "Bearer", body.TokenType)
		require.Equal(t, int64(15*60), body.ExpiresIn)
	})
}

func TestTokenRotationEndpoint(t *testing.T) {
	router, st := newTestRouter(t)
	seedLoginUser(t, st, "bob@example.com", "pw")

	login := doJSON(t, router, http.MethodPost, "/auth/login", "", map[string]string{
		"email": "bob@example.com", "password": "pw",
	})
	require.Equal(t, http.StatusOK, login.Code)

	var pair struct {
		AccessToken  string `json:"accessToken"`
		RefreshToken string `json:"refreshToken"`
	}
	require.NoError(t, json.Unmarshal(login.Body.Bytes(), &pair))

	t.Run("rotation succeeds once", func(t *testing.T) {
		rec := doJSON(t, router, http.MethodPost, "/auth/jwt/issue", "", map[string]string{
			"email": "bob@example.com", "refreshToken": pair.RefreshToken,
		})
		require.Equal(t, http.StatusOK, rec.Code)
	})

	t.Run("replay is rejected", func(t *testing.T) {
		rec := doJSON(t, router, http.MethodPost, "/auth/jwt/issue", "", map[string]string{
			"email": "bob@example.com", "refreshToken": pair.RefreshToken,
		})
		require.Equal(t, http.StatusUnauthorized, rec.Code)

		var body struct {
			Code string `json:"code"`
		}
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
		require.Equal(t, domain.ErrTokenNotFound.Code, body.Code)
	})
}

func TestAccountEndpoints(t *testing.T) {
	router, st := newTestRouter(t)
	seedLoginUser(t, st, "carol@example.com", "pw")

	login := doJSON(t, router, http.MethodPost, "/auth/login", "", map[string]string{
		"email": "carol@example.com", "password": "pw",
	})
	require.Equal(t, http.StatusOK, login.Code)

	var pair struct {
		AccessToken string `json:"accessToken"`
	}
	require.NoError(t, json.Unmarshal(login.Body.Bytes(), &pair))

	t.Run("rejects missing bearer", func(t *testing.T) {
		rec := doJSON(t, router, http.MethodPost, "/accounts", "", nil)
		require.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	var accountID string
	t.Run("create", func(t *testing.T) {
		rec := doJSON(t, router, http.MethodPost, "/accounts", pair.AccessToken, nil)
		require.Equal(t, http.StatusCreated, rec.Code)

		var body struct {
			ID     string `json:"id"`
			Number string `json:"number"`
			Status string `json:"status"`
		}
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
		require.Len(t, body.Number, 12)
		require.Equal(t, "ACTIVE", body.Status)
		accountID = body.ID
	})

	t.Run("get and list", func(t *testing.T) {
		rec := doJSON(t, router, http.MethodGet, "/accounts/"+accountID, pair.AccessToken, nil)
		require.Equal(t, http.StatusOK, rec.Code)

		rec = doJSON(t, router, http.MethodGet, "/accounts", pair.AccessToken, nil)
		require.Equal(t, http.StatusOK, rec.Code)

		var list []json.RawMessage
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &list))
		require.Len(t, list, 1)
	})

	t.Run("delete disables the account", func(t *testing.T) {
		rec := doJSON(t, router, http.MethodDelete, "/accounts/"+accountID, pair.AccessToken, nil)
		require.Equal(t, http.StatusOK, rec.Code)

		var body struct {
			Status string `json:"status"`
		}
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
		require.Equal(t, "DISABLED", body.Status)
	})
}

func TestLogoutEndpoint(t *testing.T) {
	router, st := newTestRouter(t)
	seedLoginUser(t, st, "dave@example.com", "pw")

	login := doJSON(t, router, http.MethodPost, "/auth/login", "", map[string]string{
		"email": "dave@example.com", "password": "pw",
	})
	require.Equal(t, http.StatusOK, login.Code)

	var pair struct {
		AccessToken  string `json:"accessToken"`
		RefreshToken string `json:"refreshToken"`
	}
	require.NoError(t, json.Unmarshal(login.Body.Bytes(), &pair))

	t.Run("logout requires a bearer token", func(t *testing.T) {
		rec := doJSON(t, router, http.MethodPost, "/auth/logout", "", map[string]string{
			"refreshToken": pair.RefreshToken,
		})
		require.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	rec := doJSON(t, router, http.MethodPost, "/auth/logout", pair.AccessToken, map[string]string{
		"refreshToken": pair.RefreshToken,
	})
	require.Equal(t, http.StatusOK, rec.Code)

	t.Run("blacklisted token no longer authenticates", func(t *testing.T) {
		rec := doJSON(t, router, http.MethodGet, "/accounts", pair.AccessToken, nil)
		require.Equal(t, http.StatusUnauthorized, rec.Code)

		var body struct {
			Code string `json:"code"`
		}
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
		require.Equal(t, domain.ErrInvalidToken.Code, body.Code)
	})
}

func TestHealthEndpoints(t *testing.T) {
	router, _ := newTestRouter(t)

	rec := doJSON(t, router, http.MethodGet, "/livez", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = doJSON(t, router, http.MethodGet, "/readyz", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
}

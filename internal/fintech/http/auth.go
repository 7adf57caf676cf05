package http

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/seulahhh/Fintech-project/internal/fintech/domain"
	"github.com/seulahhh/Fintech-project/internal/fintech/service"
	"github.com/seulahhh/Fintech-project/pkg/httpx"
	"github.com/seulahhh/Fintech-project/pkg/slogx"
)

// AuthHandler covers login, token rotation and logout.
type AuthHandler struct {
	Auth *service.AuthFlow
}

type tokenPairResponse struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
	TokenType    string `json:"tokenType"`
	ExpiresIn    int64  `json:"expiresIn"` // seconds
}

func toTokenPairResponse(pair domain.TokenPair) tokenPairResponse {
	return tokenPairResponse{
		AccessToken:  pair.AccessToken,
		RefreshToken: pair.RefreshToken,
		TokenType:    pair.TokenType,
		ExpiresIn:    int64(pair.ExpiresIn / time.Second),
	}
}

// HandleLogin handles POST /auth/login.
func (h *AuthHandler) HandleLogin(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)

	var req struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Email == "" || req.Password == "" {
		writeBadRequest(w, "email and password are required")
		return
	}

	pair, err := h.Auth.Login(ctx, req.Email, req.Password)
	if err != nil {
		log.Info("login rejected", "email", req.Email, "err", err)
		writeError(w, r, err)
		return
	}

	httpx.NoCache(w)
	httpx.WriteJSON(w, http.StatusOK, toTokenPairResponse(pair))
}

// HandleRefresh handles POST /auth/jwt/issue, rotating a refresh token.
func (h *AuthHandler) HandleRefresh(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req struct {
		Email        string `json:"email"`
		RefreshToken string `json:"refreshToken"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Email == "" || req.RefreshToken == "" {
		writeBadRequest(w, "email and refreshToken are required")
		return
	}

	pair, err := h.Auth.Refresh(ctx, req.Email, req.RefreshToken)
	if err != nil {
		writeError(w, r, err)
		return
	}

	httpx.NoCache(w)
	httpx.WriteJSON(w, http.StatusOK, toTokenPairResponse(pair))
}

// HandleLogout handles POST /auth/logout. The access token to blacklist
// is the bearer credential the request authenticated with; the body only
// names the refresh token to revoke.
func (h *AuthHandler) HandleLogout(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	accessToken, ok := accessTokenFromContext(ctx)
	if !ok {
		writeError(w, r, domain.ErrInvalidToken)
		return
	}

	var req struct {
		RefreshToken string `json:"refreshToken"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.RefreshToken == "" {
		writeBadRequest(w, "refreshToken is required")
		return
	}

	if err := h.Auth.Logout(ctx, accessToken, req.RefreshToken); err != nil {
		writeError(w, r, err)
		return
	}

	w.WriteHeader(http.StatusOK)
}

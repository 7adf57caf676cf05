package http

import (
	"encoding/json"
	"net/http"

	"github.com/seulahhh/Fintech-project/internal/fintech/domain"
	"github.com/seulahhh/Fintech-project/internal/fintech/service"
	"github.com/seulahhh/Fintech-project/pkg/httpx"
)

// RegisterHandler covers signup and email verification.
type RegisterHandler struct {
	Users *service.UserService
}

type userResponse struct {
	ID            string `json:"id"`
	Name          string `json:"name"`
	Email         string `json:"email"`
	Phone         string `json:"phone,omitempty"`
	Role          string `json:"role"`
	EmailVerified bool   `json:"emailVerified"`
	OtpRegistered bool   `json:"otpRegistered"`
}

func toUserResponse(u domain.User) userResponse {
	return userResponse{
		ID:            u.ID,
		Name:          u.Name,
		Email:         u.Email,
		Phone:         u.Phone,
		Role:          u.Role().String(),
		EmailVerified: u.EmailVerified,
		OtpRegistered: u.OtpRegistered,
	}
}

// HandleRegister handles POST /register.
func (h *RegisterHandler) HandleRegister(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name     string `json:"name"`
		Email    string `json:"email"`
		Phone    string `json:"phone"`
		Password string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Name == "" || req.Email == "" || req.Password == "" {
		writeBadRequest(w, "name, email and password are required")
		return
	}

	user, err := h.Users.Register(r.Context(), service.RegisterParams{
		Name:     req.Name,
		Email:    req.Email,
		Phone:    req.Phone,
		Password: req.Password,
	})
	if err != nil {
		writeError(w, r, err)
		return
	}

	httpx.WriteJSON(w, http.StatusCreated, toUserResponse(user))
}

// HandleVerifyEmail handles POST /register/verify-email.
func (h *RegisterHandler) HandleVerifyEmail(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Token string `json:"token"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Token == "" {
		writeBadRequest(w, "token is required")
		return
	}

	uri, err := h.Users.VerifyEmail(r.Context(), req.Token)
	if err != nil {
		writeError(w, r, err)
		return
	}

	httpx.NoCache(w)
	httpx.WriteJSON(w, http.StatusOK, map[string]string{
		"message":         "email verified",
		"provisioningUri": uri,
	})
}

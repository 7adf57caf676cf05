package http

import (
	"encoding/json"
	"net/http"

	"github.com/seulahhh/Fintech-project/internal/fintech/service"
	"github.com/seulahhh/Fintech-project/pkg/httpx"
)

// OtpHandler covers TOTP registration, reset and step-up verification.
type OtpHandler struct {
	Otp *service.OtpService
}

type otpCodeRequest struct {
	Email   string `json:"email"`
	OtpCode string `json:"otpCode"`
}

func decodeOtpCodeRequest(w http.ResponseWriter, r *http.Request) (otpCodeRequest, bool) {
	var req otpCodeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Email == "" || req.OtpCode == "" {
		writeBadRequest(w, "email and otpCode are required")
		return otpCodeRequest{}, false
	}
	return req, true
}

// HandleRegister handles POST /auth/otp/register. A valid code against
// the provisional secret completes OTP onboarding.
func (h *OtpHandler) HandleRegister(w http.ResponseWriter, r *http.Request) {
	req, ok := decodeOtpCodeRequest(w, r)
	if !ok {
		return
	}

	if err := h.Otp.CompleteRegistration(r.Context(), req.Email, req.OtpCode); err != nil {
		writeError(w, r, err)
		return
	}

	httpx.WriteJSON(w, http.StatusOK, map[string]string{
		"message": "otp registration completed",
	})
}

// HandleReset handles POST /auth/otp/reset. The previous secret is
// discarded and a new provisioning URI returned.
func (h *OtpHandler) HandleReset(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email string `json:"email"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Email == "" {
		writeBadRequest(w, "email is required")
		return
	}

	uri, err := h.Otp.ResetSecret(r.Context(), req.Email)
	if err != nil {
		writeError(w, r, err)
		return
	}

	httpx.NoCache(w)
	httpx.WriteJSON(w, http.StatusOK, map[string]string{
		"provisioningUri": uri,
	})
}

// HandleVerify handles POST /auth/otp/verify, the step-up check in front
// of sensitive operations.
func (h *OtpHandler) HandleVerify(w http.ResponseWriter, r *http.Request) {
	req, ok := decodeOtpCodeRequest(w, r)
	if !ok {
		return
	}

	if err := h.Otp.VerifyCode(r.Context(), req.Email, req.OtpCode); err != nil {
		writeError(w, r, err)
		return
	}

	httpx.WriteJSON(w, http.StatusOK, map[string]string{
		"message": "otp verified",
	})
}

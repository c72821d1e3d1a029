package handlers

import (
	"errors"
	"net/http"

	"github.com/farmgateapp/farmgate/internal/auth"
)

type requestCodeRequest struct {
	Phone string `json:"phone"`
}

type requestCodeResponse struct {
	ChallengeToken string `json:"challenge_token"`
}

// RequestCode issues a one-time sign-in code for a phone number.
func (h *Handlers) RequestCode(w http.ResponseWriter, r *http.Request) {
	var req requestCodeRequest
	if !h.decodeBody(w, r, &req) {
		return
	}

	challenge, err := h.authService.RequestCode(r.Context(), req.Phone)
	if err != nil {
		if errors.Is(err, auth.ErrInvalidPhone) {
			h.respondError(w, r, http.StatusBadRequest, "invalid phone number")
			return
		}
		h.loggerFromContext(r.Context()).Error("failed to issue code", "error", err)
		h.respondError(w, r, http.StatusInternalServerError, "failed to issue code")
		return
	}

	h.respondJSON(w, r, http.StatusOK, requestCodeResponse{ChallengeToken: challenge})
}

type verifyCodeRequest struct {
	ChallengeToken string `json:"challenge_token"`
	Code           string `json:"code"`
	Name           string `json:"name"`
}

type verifyCodeResponse struct {
	Token         string `json:"token"`
	CustomerPhone string `json:"customer_phone"`
	CustomerName  string `json:"customer_name,omitempty"`
}

// VerifyCode exchanges challenge token plus code for a bearer session.
func (h *Handlers) VerifyCode(w http.ResponseWriter, r *http.Request) {
	var req verifyCodeRequest
	if !h.decodeBody(w, r, &req) {
		return
	}

	bearer, data, err := h.authService.VerifyCode(r.Context(), req.ChallengeToken, req.Code, req.Name)
	if err != nil {
		switch {
		case errors.Is(err, auth.ErrInvalidChallenge):
			h.respondError(w, r, http.StatusUnauthorized, "invalid or expired challenge")
		case errors.Is(err, auth.ErrInvalidCode):
			h.respondError(w, r, http.StatusUnauthorized, "incorrect code")
		case errors.Is(err, auth.ErrTooManyAttempts):
			h.respondError(w, r, http.StatusTooManyRequests, "too many attempts, request a new code")
		default:
			h.loggerFromContext(r.Context()).Error("failed to verify code", "error", err)
			h.respondError(w, r, http.StatusInternalServerError, "failed to verify code")
		}
		return
	}

	h.respondJSON(w, r, http.StatusOK, verifyCodeResponse{
		Token:         bearer,
		CustomerPhone: data.CustomerPhone,
		CustomerName:  data.CustomerName,
	})
}

// Logout destroys the current session.
func (h *Handlers) Logout(w http.ResponseWriter, r *http.Request) {
	if err := h.sessionManager.DestroySession(r.Context(), r); err != nil {
		h.loggerFromContext(r.Context()).Warn("failed to destroy session", "error", err)
	}
	h.respondJSON(w, r, http.StatusOK, map[string]string{"status": "signed out"})
}

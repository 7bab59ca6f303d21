package handlers

import (
	"net/http"

	apierrors "github.com/pribylovaa/auth-service/internal/http/errors"
	"github.com/pribylovaa/auth-service/internal/http/middleware"
)

// Signup — POST /signup {email, password}.
func (h *Handlers) Signup(w http.ResponseWriter, r *http.Request) {
	var in credentialsRequest
	if err := decodeStrict(w, r, &in); err != nil {
		apierrors.WriteError(w, r, err)
		return
	}

	user, err := h.Auth.Signup(r.Context(), in.Email, in.Password)
	if err != nil {
		apierrors.WriteError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, signupResponse{Msg: "ok", UserID: user.ID.String()})
}

// Login — POST /login {email, password} -> {token}.
func (h *Handlers) Login(w http.ResponseWriter, r *http.Request) {
	var in credentialsRequest
	if err := decodeStrict(w, r, &in); err != nil {
		apierrors.WriteError(w, r, err)
		return
	}

	issued, err := h.Auth.Login(r.Context(), in.Email, in.Password)
	if err != nil {
		apierrors.WriteError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, loginResponse{
		Token:     issued.Token,
		ExpiresAt: issued.ExpiresAt.Unix(),
	})
}

// UserInfo — GET /userinfo (access) -> {user}.
func (h *Handlers) UserInfo(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.ClaimsFrom(r.Context())
	if !ok {
		apierrors.WriteError(w, r, apierrors.ErrMissingToken)
		return
	}

	uid, err := h.Auth.UserInfo(r.Context(), claims)
	if err != nil {
		apierrors.WriteError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, userInfoResponse{User: uid.String()})
}

// Logout — POST /logout (access): отзывает предъявленный токен.
func (h *Handlers) Logout(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.ClaimsFrom(r.Context())
	if !ok {
		apierrors.WriteError(w, r, apierrors.ErrMissingToken)
		return
	}

	if err := h.Auth.Logout(r.Context(), claims); err != nil {
		apierrors.WriteError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, msgResponse{Msg: "session closed"})
}

// ChangePassword — PATCH /changepassword (access или password) {password}.
func (h *Handlers) ChangePassword(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.ClaimsFrom(r.Context())
	if !ok {
		apierrors.WriteError(w, r, apierrors.ErrMissingToken)
		return
	}

	var in changePasswordRequest
	if err := decodeStrict(w, r, &in); err != nil {
		apierrors.WriteError(w, r, err)
		return
	}

	if err := h.Auth.ChangePassword(r.Context(), claims, in.Password); err != nil {
		apierrors.WriteError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, msgResponse{Msg: "password updated"})
}

// RequestPasswordRecovery — POST /requestpasswordrecovery {email}.
func (h *Handlers) RequestPasswordRecovery(w http.ResponseWriter, r *http.Request) {
	var in recoveryRequest
	if err := decodeStrict(w, r, &in); err != nil {
		apierrors.WriteError(w, r, err)
		return
	}

	if err := h.Auth.RequestPasswordRecovery(r.Context(), in.Email); err != nil {
		apierrors.WriteError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, msgResponse{Msg: "check your e-mail to reset the password"})
}

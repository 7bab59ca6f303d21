package errors

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/pribylovaa/auth-service/internal/service"
	"github.com/pribylovaa/auth-service/internal/tokens"
)

func wrap(err error) error { return fmt.Errorf("service.auth.Op: %w", err) }

func TestToHTTP_BaseMapping(t *testing.T) {
	tcs := []struct {
		name       string
		in         error
		wantStatus int
		wantCode   string
	}{
		{"empty_email", wrap(service.ErrEmptyEmail), http.StatusBadRequest, "invalid_argument"},
		{"empty_password", wrap(service.ErrEmptyPassword), http.StatusBadRequest, "invalid_argument"},
		{"password_too_long", wrap(service.ErrPasswordTooLong), http.StatusBadRequest, "invalid_argument"},
		{"validation", wrap(service.ErrValidation), http.StatusBadRequest, "invalid_argument"},
		{"not_found", wrap(service.ErrUserNotFound), http.StatusNotFound, "not_found"},
		{"bad_password", wrap(service.ErrInvalidCredentials), http.StatusUnauthorized, "unauthenticated"},
		{"email_taken", wrap(service.ErrEmailTaken), http.StatusConflict, "already_exists"},
		{"notification", fmt.Errorf("op: %w: %v", service.ErrNotification, "smtp"), http.StatusBadRequest, "notification_failed"},
		{"missing_token", ErrMissingToken, http.StatusUnauthorized, "unauthenticated"},
		{"invalid_token", wrap(tokens.ErrInvalidToken), http.StatusUnauthorized, "unauthenticated"},
		{"expired", wrap(tokens.ErrTokenExpired), http.StatusUnauthorized, "unauthenticated"},
		{"revoked", wrap(tokens.ErrTokenRevoked), http.StatusUnauthorized, "unauthenticated"},
		{"wrong_type", wrap(tokens.ErrWrongTokenType), http.StatusUnauthorized, "unauthenticated"},
		{"canceled", wrap(context.Canceled), StatusClientClosedRequest, "canceled"},
		{"deadline", wrap(context.DeadlineExceeded), http.StatusGatewayTimeout, "deadline_exceeded"},
		{"internal", stderrors.New("db down"), http.StatusInternalServerError, "internal"},
	}

	for _, tc := range tcs {
		t.Run(tc.name, func(t *testing.T) {
			gotStatus, resp := ToHTTP(tc.in)
			require.Equal(t, tc.wantStatus, gotStatus)
			require.Equal(t, tc.wantCode, resp.Error.Code)
			require.NotEmpty(t, resp.Error.Message)
			require.Equal(t, resp.Error.Message, resp.Msg)
		})
	}
}

// Конкретное сообщение валидации важнее общего.
func TestToHTTP_SpecificValidationMessage(t *testing.T) {
	_, resp := ToHTTP(wrap(service.ErrEmptyPassword))
	require.Equal(t, "password is required", resp.Msg)

	status, resp := ToHTTP(wrap(service.ErrPasswordTooLong))
	require.Equal(t, http.StatusBadRequest, status)
	require.Equal(t, "password too long", resp.Msg)
}

func TestToHTTP_InternalDoesNotLeakDetails(t *testing.T) {
	_, resp := ToHTTP(stderrors.New("pq: password authentication failed for user postgres"))
	require.Equal(t, "internal error", resp.Error.Message)
}

func TestToHTTP_NilError_Returns500Internal(t *testing.T) {
	gotStatus, resp := ToHTTP(nil)
	require.Equal(t, http.StatusInternalServerError, gotStatus)
	require.Equal(t, "internal", resp.Error.Code)
	require.Equal(t, "internal error", resp.Error.Message)
}

func TestWriteError_SetsRequestID(t *testing.T) {
	rr := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("X-Request-Id", "rid-1")

	WriteError(rr, req, wrap(service.ErrUserNotFound))

	require.Equal(t, http.StatusNotFound, rr.Code)
	require.Equal(t, "application/json", rr.Header().Get("Content-Type"))

	var resp ErrorResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	require.Equal(t, "rid-1", resp.Error.RequestID)
	require.Equal(t, "not_found", resp.Error.Code)
	require.Equal(t, "user not found", resp.Msg)
}

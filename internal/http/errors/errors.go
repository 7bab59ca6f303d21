// errors стандартизирует ответы об ошибках HTTP-слоя auth-сервиса.
// На вход он принимает ошибку сервисного слоя или менеджера токенов,
// а на выход даёт:
//   - корректный HTTP-статус;
//   - краткое безопасное message без утечки деталей.
//
// Источник истинности по сентинелам: пакеты service, tokens и storage.
package errors

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"net/http"

	"github.com/pribylovaa/auth-service/internal/service"
	"github.com/pribylovaa/auth-service/internal/tokens"
)

// Нестандартный код часто используемый для "клиент закрыл соединение".
const StatusClientClosedRequest = 499

// ErrMissingToken — в запросе нет заголовка Authorization: Bearer.
var ErrMissingToken = stderrors.New("missing bearer token")

// APIError — единый формат для фронта.
// Code — короткий стабильный код для машиночитаемой обработки на FE.
// Message — безопасное человекочитаемое описание.
// RequestID — прокидывается из X-Request-Id, если есть (для трассировки).
type APIError struct {
	Code      string `json:"code"`
	Message   string `json:"message"`
	RequestID string `json:"request_id,omitempty"`
}

// ErrorResponse — корневой объект в ответе.
// Msg дублирует message на верхнем уровне: существующий фронтенд читает именно его.
type ErrorResponse struct {
	Msg   string   `json:"msg"`
	Error APIError `json:"error"`
}

type mapping struct {
	target  error
	status  int
	code    string
	message string
}

// table — порядок важен: более специфичные ошибки идут раньше общих.
var table = []mapping{
	{service.ErrEmptyEmail, http.StatusBadRequest, "invalid_argument", "email is required"},
	{service.ErrEmptyPassword, http.StatusBadRequest, "invalid_argument", "password is required"},
	{service.ErrInvalidEmail, http.StatusBadRequest, "invalid_argument", "invalid email format"},
	{service.ErrPasswordTooLong, http.StatusBadRequest, "invalid_argument", "password too long"},
	{service.ErrValidation, http.StatusBadRequest, "invalid_argument", "invalid argument"},
	{service.ErrUserNotFound, http.StatusNotFound, "not_found", "user not found"},
	{service.ErrInvalidCredentials, http.StatusUnauthorized, "unauthenticated", "invalid password"},
	{service.ErrEmailTaken, http.StatusConflict, "already_exists", "email already registered"},
	{service.ErrNotification, http.StatusBadRequest, "notification_failed", "failed to send recovery e-mail"},
	{ErrMissingToken, http.StatusUnauthorized, "unauthenticated", "missing bearer token"},
	{tokens.ErrTokenExpired, http.StatusUnauthorized, "unauthenticated", "token expired"},
	{tokens.ErrTokenRevoked, http.StatusUnauthorized, "unauthenticated", "token revoked"},
	{tokens.ErrWrongTokenType, http.StatusUnauthorized, "unauthenticated", "token type not allowed"},
	{tokens.ErrInvalidToken, http.StatusUnauthorized, "unauthenticated", "invalid token"},
	{context.Canceled, StatusClientClosedRequest, "canceled", "canceled"},
	{context.DeadlineExceeded, http.StatusGatewayTimeout, "deadline_exceeded", "deadline exceeded"},
}

// ToHTTP конвертирует ошибку в HTTP-статус и унифицированный ответ для фронта.
//
// Поведение:
//   - err == nil - это программная ошибка вызова: возвращаем 500/internal,
//     чтобы не послать "200 OK" с телом ошибки и не маскировать баг.
//   - известный сентинел (через errors.Is) - статус из таблицы;
//   - прочее - 500/internal без утечки деталей.
func ToHTTP(err error) (int, ErrorResponse) {
	if err != nil {
		for _, m := range table {
			if stderrors.Is(err, m.target) {
				return m.status, newResponse(m.code, m.message)
			}
		}
	}

	return http.StatusInternalServerError, newResponse("internal", "internal error")
}

// WriteError — хелпер для HTTP-хендлеров.
// Пишет корректный статус/тело, добавляет request_id из заголовка, если он есть.
func WriteError(w http.ResponseWriter, r *http.Request, err error) {
	status, resp := ToHTTP(err)

	// Прокидываем request_id для фронта, чтобы он мог репортить баги с привязкой.
	if rid := r.Header.Get("X-Request-Id"); rid != "" {
		resp.Error.RequestID = rid
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(resp)
}

func newResponse(code, message string) ErrorResponse {
	return ErrorResponse{
		Msg: message,
		Error: APIError{
			Code:    code,
			Message: message,
		},
	}
}

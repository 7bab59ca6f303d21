package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/google/uuid"

	"github.com/pribylovaa/auth-service/internal/models"
	"github.com/pribylovaa/auth-service/internal/service"
)

// maxBodyBytes — предел размера JSON-тела запроса.
const maxBodyBytes = 1 << 20

// AuthService — операции сервисного слоя, которые вызывают хендлеры.
// Реализуется *service.Service.
type AuthService interface {
	Signup(ctx context.Context, email, password string) (*models.User, error)
	Login(ctx context.Context, email, password string) (*models.IssuedToken, error)
	UserInfo(ctx context.Context, claims *models.TokenClaims) (uuid.UUID, error)
	Logout(ctx context.Context, claims *models.TokenClaims) error
	ChangePassword(ctx context.Context, claims *models.TokenClaims, password string) error
	RequestPasswordRecovery(ctx context.Context, email string) error
}

// Handlers агрегирует зависимости хендлеров.
type Handlers struct {
	Auth AuthService
}

func New(auth AuthService) *Handlers {
	return &Handlers{Auth: auth}
}

// writeJSON — единый ответ JSON с нужным Content-Type.
// Ошибки выводим через apierrors.WriteError.
func writeJSON(w http.ResponseWriter, status int, value any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(value)
}

// decodeStrict — строгий JSON-декодер: запрещаем неизвестные поля и хвост после объекта.
// Любая ошибка разбора отдаётся как ошибка валидации (400).
func decodeStrict(w http.ResponseWriter, r *http.Request, value any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()

	if err := dec.Decode(value); err != nil {
		return fmt.Errorf("%w: malformed body: %v", service.ErrValidation, err)
	}

	if err := dec.Decode(&struct{}{}); !errors.Is(err, io.EOF) {
		return fmt.Errorf("%w: unexpected data after body", service.ErrValidation)
	}

	return nil
}

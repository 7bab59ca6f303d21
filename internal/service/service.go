// service содержит бизнес-логику auth-сервиса: регистрацию и вход,
// выход через отзыв токена, смену пароля и восстановление доступа по ссылке.
//
// Основные аспекты:
//   - Service не хранит состояние запроса и безопасен для конкурентного
//     использования при условии, что хранилище и отправитель потокобезопасны.
//   - Ошибки возвращаются обёрнутыми и далее маппятся транспортом
//     на HTTP-статусы (см. комментарии к переменным ошибок ниже).
package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/pribylovaa/auth-service/internal/config"
	"github.com/pribylovaa/auth-service/internal/models"
	"github.com/pribylovaa/auth-service/internal/notify"
	"github.com/pribylovaa/auth-service/internal/storage"
	"github.com/pribylovaa/auth-service/internal/tokens"
)

var (
	// ErrValidation — в запросе отсутствует или некорректно обязательное поле.
	// Транспорт: HTTP 400.
	ErrValidation = errors.New("validation failed")

	// ErrEmptyEmail — e-mail не передан.
	ErrEmptyEmail = fmt.Errorf("%w: email is required", ErrValidation)

	// ErrInvalidEmail — e-mail не разбирается как адрес.
	ErrInvalidEmail = fmt.Errorf("%w: invalid email format", ErrValidation)

	// ErrEmptyPassword — пароль пустой.
	ErrEmptyPassword = fmt.Errorf("%w: password is required", ErrValidation)

	// ErrPasswordTooLong — пароль длиннее maxPasswordBytes (предел bcrypt).
	ErrPasswordTooLong = fmt.Errorf("%w: password too long", ErrValidation)

	// ErrUserNotFound — учётная запись с таким e-mail/ID не существует.
	// Транспорт: HTTP 404.
	ErrUserNotFound = errors.New("user not found")

	// ErrInvalidCredentials — пароль не совпадает с сохранённым хэшем.
	// Транспорт: HTTP 401.
	ErrInvalidCredentials = errors.New("invalid credentials")

	// ErrEmailTaken — e-mail уже занят другим пользователем.
	// Транспорт: HTTP 409.
	ErrEmailTaken = errors.New("email already taken")

	// ErrNotification — письмо восстановления не удалось отправить.
	// Транспорт: HTTP 400.
	ErrNotification = errors.New("notification failed")
)

// TokenManager — операции над токенами, которые нужны сервису.
// Реализуется *tokens.Manager.
type TokenManager interface {
	Issue(ctx context.Context, subject uuid.UUID, t models.TokenType, extra map[string]any) (*models.IssuedToken, error)
	Revoke(ctx context.Context, claims *models.TokenClaims) error
	Consume(ctx context.Context, claims *models.TokenClaims, write tokens.ConsumeFunc) error
}

// Service описывает бизнес-логику auth-сервиса.
type Service struct {
	users    storage.UserStorage
	tokens   TokenManager
	sender   notify.Sender
	recovery config.RecoveryConfig
}

// New создаёт новый экземпляр Service.
func New(users storage.UserStorage, tokens TokenManager, sender notify.Sender, recovery config.RecoveryConfig) *Service {
	return &Service{
		users:    users,
		tokens:   tokens,
		sender:   sender,
		recovery: recovery,
	}
}

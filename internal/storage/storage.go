package storage

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/pribylovaa/auth-service/internal/models"
)

var (
	// ErrNotFound — запись не найдена (пользователь).
	ErrNotFound = errors.New("not found")
	// ErrAlreadyExists — нарушение уникальности (email/id).
	ErrAlreadyExists = errors.New("already exists")
)

// UserStorage выполняет операции над учётными записями.
type UserStorage interface {
	// SaveUser создает нового пользователя в БД.
	SaveUser(ctx context.Context, user *models.User) error
	// UserByEmail находит пользователя по email.
	UserByEmail(ctx context.Context, email string) (*models.User, error)
	// UserByID находит пользователя по ID.
	UserByID(ctx context.Context, id uuid.UUID) (*models.User, error)
	// UpdatePassword заменяет хэш пароля пользователя.
	UpdatePassword(ctx context.Context, id uuid.UUID, passwordHash string, updatedAt time.Time) error
	// ResetPassword в одной транзакции заносит токен восстановления в реестр
	// отзыва и заменяет хэш пароля его владельца.
	// false — JTI уже был в реестре, пароль не менялся.
	ResetPassword(ctx context.Context, token *models.RevokedToken, passwordHash string, updatedAt time.Time) (bool, error)
}

// RevocationStorage — реестр отозванных токенов.
type RevocationStorage interface {
	// RevokeToken идемпотентно добавляет JTI в реестр.
	// true — запись создана этим вызовом; false — JTI уже был отозван.
	RevokeToken(ctx context.Context, token *models.RevokedToken) (bool, error)
	// IsTokenRevoked проверяет наличие JTI в реестре.
	IsTokenRevoked(ctx context.Context, jti string) (bool, error)
	// DeleteExpiredRevocations удаляет записи, чей токен истёк к моменту now.
	DeleteExpiredRevocations(ctx context.Context, now time.Time) (int64, error)
}

// Storage задает контракт работы с БД.
type Storage interface {
	UserStorage
	RevocationStorage
	Close()
}

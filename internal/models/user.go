package models

import (
	"time"

	"github.com/google/uuid"
)

// User — учётная запись пользователя (credential record).
//
// Email хранится в нижнем регистре и уникален; PasswordHash — bcrypt-хэш,
// меняется при смене пароля. Active выставляется в false при регистрации
// и на вход не влияет.
type User struct {
	ID           uuid.UUID
	Email        string
	PasswordHash string
	Active       bool
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

package models

import (
	"time"

	"github.com/google/uuid"
)

// TokenType — тип выпущенного токена (claim "type").
type TokenType string

const (
	// TokenTypeAccess — токен сессии для привилегированных операций.
	TokenTypeAccess TokenType = "access"
	// TokenTypePassword — одноразовый короткоживущий токен восстановления пароля.
	TokenTypePassword TokenType = "password"
)

// Valid сообщает, известен ли тип токена.
func (t TokenType) Valid() bool {
	return t == TokenTypeAccess || t == TokenTypePassword
}

func (t TokenType) String() string { return string(t) }

// TokenClaims — проверенные данные токена, которые передаются дальше по стеку
// после прохождения middleware авторизации.
type TokenClaims struct {
	Subject   uuid.UUID
	Type      TokenType
	JTI       string
	Email     string
	IssuedAt  time.Time
	ExpiresAt time.Time
}

// IssuedToken — подписанный токен и его метаданные.
type IssuedToken struct {
	Token     string
	JTI       string
	Type      TokenType
	ExpiresAt time.Time
}

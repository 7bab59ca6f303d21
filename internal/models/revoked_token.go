package models

import (
	"time"

	"github.com/google/uuid"
)

// RevokedToken — запись реестра отозванных токенов.
// Ключ — JTI; ExpiresAt хранится только для внешней очистки реестра.
type RevokedToken struct {
	JTI       string
	UserID    uuid.UUID
	Type      TokenType
	ExpiresAt time.Time
	RevokedAt time.Time
}

package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/pribylovaa/auth-service/internal/models"
)

// RevokeToken добавляет JTI в реестр отозванных токенов.
// Повторный отзыв того же JTI не является ошибкой (ON CONFLICT DO NOTHING);
// признак created показывает, была ли запись вставлена именно этим вызовом.
func (s *Storage) RevokeToken(ctx context.Context, token *models.RevokedToken) (bool, error) {
	const op = "storage.postgres.RevokeToken"

	query := `
		INSERT INTO revoked_tokens(jti, user_id, token_type, expires_at, revoked_at)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (jti) DO NOTHING
	`

	cmdTag, err := s.db.Exec(ctx, query,
		token.JTI,
		token.UserID,
		string(token.Type),
		token.ExpiresAt,
		token.RevokedAt,
	)
	if err != nil {
		return false, fmt.Errorf("%s: %w", op, err)
	}

	return cmdTag.RowsAffected() == 1, nil
}

// IsTokenRevoked проверяет, есть ли JTI в реестре.
func (s *Storage) IsTokenRevoked(ctx context.Context, jti string) (bool, error) {
	const op = "storage.postgres.IsTokenRevoked"

	query := `SELECT EXISTS (SELECT 1 FROM revoked_tokens WHERE jti = $1)`

	var revoked bool
	if err := s.db.QueryRow(ctx, query, jti).Scan(&revoked); err != nil {
		return false, fmt.Errorf("%s: %w", op, err)
	}

	return revoked, nil
}

// DeleteExpiredRevocations удаляет записи реестра, чей токен истёк к моменту now.
// Возвращает количество удалённых строк.
func (s *Storage) DeleteExpiredRevocations(ctx context.Context, now time.Time) (int64, error) {
	const op = "storage.postgres.DeleteExpiredRevocations"

	query := `
		DELETE FROM revoked_tokens
		WHERE expires_at <= $1
	`

	cmdTag, err := s.db.Exec(ctx, query, now)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}

	return cmdTag.RowsAffected(), nil
}

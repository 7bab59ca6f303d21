package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/pribylovaa/auth-service/internal/models"
	"github.com/pribylovaa/auth-service/internal/storage"
)

// SaveUser создает нового пользователя в БД.
// Уникальность email обеспечивает ограничение UNIQUE (CITEXT).
func (s *Storage) SaveUser(ctx context.Context, user *models.User) error {
	const op = "storage.postgres.SaveUser"

	query := `
		INSERT INTO users(id, email, password_hash, is_active, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`

	_, err := s.db.Exec(ctx, query,
		user.ID,
		user.Email,
		user.PasswordHash,
		user.Active,
		user.CreatedAt,
		user.UpdatedAt,
	)

	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgerrcode.UniqueViolation {
			return fmt.Errorf("%s: %w", op, storage.ErrAlreadyExists)
		}

		return fmt.Errorf("%s: %w", op, err)
	}

	return nil
}

// UserByEmail находит пользователя по email.
func (s *Storage) UserByEmail(ctx context.Context, email string) (*models.User, error) {
	const op = "storage.postgres.UserByEmail"

	query := `
		SELECT id, email, password_hash, is_active, created_at, updated_at
		FROM users
		WHERE email = $1
	`

	user, err := scanUser(s.db.QueryRow(ctx, query, email))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return user, nil
}

// UserByID находит пользователя по ID.
func (s *Storage) UserByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	const op = "storage.postgres.UserByID"

	query := `
		SELECT id, email, password_hash, is_active, created_at, updated_at
		FROM users
		WHERE id = $1
	`

	user, err := scanUser(s.db.QueryRow(ctx, query, id))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return user, nil
}

// UpdatePassword заменяет хэш пароля одним UPDATE.
// Конкурирующие смены пароля одного пользователя: побеждает последняя запись.
func (s *Storage) UpdatePassword(ctx context.Context, id uuid.UUID, passwordHash string, updatedAt time.Time) error {
	const op = "storage.postgres.UpdatePassword"

	query := `
		UPDATE users
		SET password_hash = $2, updated_at = $3
		WHERE id = $1
	`

	cmdTag, err := s.db.Exec(ctx, query, id, passwordHash, updatedAt)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	if cmdTag.RowsAffected() == 0 {
		return fmt.Errorf("%s: %w", op, storage.ErrNotFound)
	}

	return nil
}

// ResetPassword гасит токен восстановления и меняет пароль атомарно:
// если UPDATE не нашёл пользователя, запись в реестре откатывается
// и ссылка остаётся действительной.
func (s *Storage) ResetPassword(ctx context.Context, token *models.RevokedToken, passwordHash string, updatedAt time.Time) (bool, error) {
	const op = "storage.postgres.ResetPassword"

	revokeQuery := `
		INSERT INTO revoked_tokens(jti, user_id, token_type, expires_at, revoked_at)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (jti) DO NOTHING
	`

	updateQuery := `
		UPDATE users
		SET password_hash = $2, updated_at = $3
		WHERE id = $1
	`

	created := false
	err := pgx.BeginFunc(ctx, s.db, func(tx pgx.Tx) error {
		cmdTag, err := tx.Exec(ctx, revokeQuery,
			token.JTI,
			token.UserID,
			string(token.Type),
			token.ExpiresAt,
			token.RevokedAt,
		)
		if err != nil {
			return err
		}

		// JTI уже погашен другим запросом: пароль не трогаем.
		if cmdTag.RowsAffected() == 0 {
			return nil
		}

		cmdTag, err = tx.Exec(ctx, updateQuery, token.UserID, passwordHash, updatedAt)
		if err != nil {
			return err
		}

		if cmdTag.RowsAffected() == 0 {
			return storage.ErrNotFound
		}

		created = true
		return nil
	})
	if err != nil {
		return false, fmt.Errorf("%s: %w", op, err)
	}

	return created, nil
}

func scanUser(row pgx.Row) (*models.User, error) {
	var user models.User
	err := row.Scan(
		&user.ID,
		&user.Email,
		&user.PasswordHash,
		&user.Active,
		&user.CreatedAt,
		&user.UpdatedAt,
	)

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, storage.ErrNotFound
		}

		return nil, err
	}

	return &user, nil
}

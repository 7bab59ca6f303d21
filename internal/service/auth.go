package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/mail"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/pribylovaa/auth-service/internal/metrics"
	"github.com/pribylovaa/auth-service/internal/models"
	"github.com/pribylovaa/auth-service/internal/notify"
	"github.com/pribylovaa/auth-service/internal/pkg/log"
	"github.com/pribylovaa/auth-service/internal/pkg/redact"
	"github.com/pribylovaa/auth-service/internal/storage"
	"github.com/pribylovaa/auth-service/internal/tokens"
)

// recoveryPath — страница фронтенда, принимающая токен восстановления.
const recoveryPath = "changepassword"

// maxPasswordBytes — bcrypt не принимает пароли длиннее 72 байт.
const maxPasswordBytes = 72

// Signup регистрирует нового пользователя. Учётная запись создаётся неактивной.
func (s *Service) Signup(ctx context.Context, email, password string) (*models.User, error) {
	const op = "service.auth.Signup"

	normEmail, err := validateEmail(email)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	if err := validatePassword(password); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	hashedPassword, err := hashPassword(password)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	now := time.Now().UTC()
	user := &models.User{
		ID:           uuid.New(),
		Email:        normEmail,
		PasswordHash: hashedPassword,
		Active:       false,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	// Уникальность e-mail гарантирует ограничение БД, отдельная проверка
	// через UserByEmail не нужна и была бы гонкой.
	if err := s.users.SaveUser(ctx, user); err != nil {
		if errors.Is(err, storage.ErrAlreadyExists) {
			return nil, fmt.Errorf("%s: %w", op, ErrEmailTaken)
		}

		return nil, fmt.Errorf("%s: %w", op, err)
	}

	log.From(ctx).Info("user_signed_up",
		slog.String("user_id", user.ID.String()),
		slog.String("email", redact.Email(normEmail)),
	)

	return user, nil
}

// Login проверяет пароль и выпускает access-токен.
// Флаг Active при входе не учитывается.
func (s *Service) Login(ctx context.Context, email, password string) (*models.IssuedToken, error) {
	const op = "service.auth.Login"

	normEmail := normalizeEmail(email)
	if normEmail == "" {
		return nil, fmt.Errorf("%s: %w", op, ErrEmptyEmail)
	}

	if password == "" {
		return nil, fmt.Errorf("%s: %w", op, ErrEmptyPassword)
	}

	user, err := s.userByEmail(ctx, normEmail)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	if !checkPassword(user.PasswordHash, password) {
		log.From(ctx).Warn("login_failed",
			slog.String("user_id", user.ID.String()),
			slog.String("reason", "bad_password"),
		)
		return nil, fmt.Errorf("%s: %w", op, ErrInvalidCredentials)
	}

	issued, err := s.tokens.Issue(ctx, user.ID, models.TokenTypeAccess, map[string]any{"email": user.Email})
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return issued, nil
}

// UserInfo возвращает идентификатор владельца проверенного access-токена.
func (s *Service) UserInfo(_ context.Context, claims *models.TokenClaims) (uuid.UUID, error) {
	const op = "service.auth.UserInfo"

	if err := requireType(claims, models.TokenTypeAccess); err != nil {
		return uuid.Nil, fmt.Errorf("%s: %w", op, err)
	}

	return claims.Subject, nil
}

// Logout отзывает предъявленный access-токен. Повторный logout тем же
// токеном отсекается ещё на авторизации (ErrTokenRevoked).
func (s *Service) Logout(ctx context.Context, claims *models.TokenClaims) error {
	const op = "service.auth.Logout"

	if err := requireType(claims, models.TokenTypeAccess); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	if err := s.tokens.Revoke(ctx, claims); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	return nil
}

// ChangePassword сохраняет новый пароль владельца токена.
//
// Токен восстановления (type=password) одноразовый: запись в реестре отзыва
// и новый пароль фиксируются одной транзакцией, поэтому из двух конкурентных
// запросов с одной ссылкой пройдёт только один, а сбой записи пароля ссылку
// не сжигает. Access-токен после смены пароля остаётся действительным.
func (s *Service) ChangePassword(ctx context.Context, claims *models.TokenClaims, password string) error {
	const op = "service.auth.ChangePassword"

	if claims == nil || !claims.Type.Valid() {
		return fmt.Errorf("%s: %w", op, tokens.ErrWrongTokenType)
	}

	if err := validatePassword(password); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	if _, err := s.users.UserByID(ctx, claims.Subject); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return fmt.Errorf("%s: %w", op, ErrUserNotFound)
		}

		return fmt.Errorf("%s: %w", op, err)
	}

	hashedPassword, err := hashPassword(password)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	now := time.Now().UTC()
	if claims.Type == models.TokenTypePassword {
		err = s.tokens.Consume(ctx, claims, func(ctx context.Context, entry *models.RevokedToken) (bool, error) {
			return s.users.ResetPassword(ctx, entry, hashedPassword, now)
		})
	} else {
		err = s.users.UpdatePassword(ctx, claims.Subject, hashedPassword, now)
	}

	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return fmt.Errorf("%s: %w", op, ErrUserNotFound)
		}

		return fmt.Errorf("%s: %w", op, err)
	}

	log.From(ctx).Info("password_changed",
		slog.String("user_id", claims.Subject.String()),
		slog.String("via", string(claims.Type)),
	)

	return nil
}

// RequestPasswordRecovery выпускает токен восстановления и отправляет
// пользователю ссылку <FrontendURL>/changepassword?token=<token>.
// Для неизвестного e-mail письмо не отправляется.
func (s *Service) RequestPasswordRecovery(ctx context.Context, email string) error {
	const op = "service.auth.RequestPasswordRecovery"

	normEmail := normalizeEmail(email)
	if normEmail == "" {
		return fmt.Errorf("%s: %w", op, ErrEmptyEmail)
	}

	user, err := s.userByEmail(ctx, normEmail)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	// Токен уходит в query-строку ссылки, поэтому e-mail в него не кладём.
	issued, err := s.tokens.Issue(ctx, user.ID, models.TokenTypePassword, nil)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	link, err := recoveryLink(s.recovery.FrontendURL, issued.Token)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	lg := log.From(ctx).With(
		slog.String("user_id", user.ID.String()),
		slog.String("email", redact.Email(user.Email)),
	)

	err = s.sender.Send(ctx, notify.Message{
		TemplateParams: map[string]string{
			"url":   link,
			"email": user.Email,
		},
	})
	if err != nil {
		metrics.NotificationsSent.WithLabelValues("failed").Inc()
		lg.Warn("recovery_email_failed", slog.String("err", err.Error()))
		return fmt.Errorf("%s: %w: %v", op, ErrNotification, err)
	}

	metrics.NotificationsSent.WithLabelValues("ok").Inc()
	lg.Info("recovery_email_sent")

	return nil
}

func (s *Service) userByEmail(ctx context.Context, email string) (*models.User, error) {
	user, err := s.users.UserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, ErrUserNotFound
		}

		return nil, err
	}

	return user, nil
}

// recoveryLink собирает ссылку восстановления на странице фронтенда.
func recoveryLink(frontend, token string) (string, error) {
	const op = "service.auth.recoveryLink"

	base, err := url.Parse(strings.TrimSpace(frontend))
	if err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}

	u := base.JoinPath(recoveryPath)
	q := u.Query()
	q.Set("token", token)
	u.RawQuery = q.Encode()

	return u.String(), nil
}

func requireType(claims *models.TokenClaims, want models.TokenType) error {
	if claims == nil || claims.Type != want {
		return tokens.ErrWrongTokenType
	}

	return nil
}

func validatePassword(password string) error {
	if password == "" {
		return ErrEmptyPassword
	}

	if len(password) > maxPasswordBytes {
		return ErrPasswordTooLong
	}

	return nil
}

// hashPassword хэширует пароль с помощью bcrypt.
func hashPassword(password string) (string, error) {
	const op = "service.auth.hashPassword"

	bytes, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}

	return string(bytes), nil
}

// checkPassword сравнивает пароль с хэшем.
func checkPassword(hash, password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}

func normalizeEmail(raw string) string {
	return strings.ToLower(strings.TrimSpace(raw))
}

// validateEmail проверяет базовый формат email и приводит его к нижнему регистру.
func validateEmail(raw string) (string, error) {
	email := normalizeEmail(raw)
	if email == "" {
		return "", ErrEmptyEmail
	}

	addr, err := mail.ParseAddress(email)
	if err != nil || addr.Address != email {
		return "", ErrInvalidEmail
	}

	return email, nil
}

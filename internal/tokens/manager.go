// tokens — выпуск, проверка и отзыв подписанных JWT (access / password).
//
// Проверка подписи и срока (Verify) отделена от проверки реестра отзыва
// (IsRevoked): вызывающая сторона решает, где применять реестр. Authorize
// объединяет обе проверки для middleware авторизации.
package tokens

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/pribylovaa/auth-service/internal/cache"
	"github.com/pribylovaa/auth-service/internal/config"
	"github.com/pribylovaa/auth-service/internal/metrics"
	"github.com/pribylovaa/auth-service/internal/models"
	"github.com/pribylovaa/auth-service/internal/pkg/log"
	"github.com/pribylovaa/auth-service/internal/storage"
)

var (
	// ErrInvalidToken — токен некорректен по формату/подписи/issuer/audience.
	ErrInvalidToken = errors.New("invalid token")
	// ErrTokenExpired — срок действия токена истёк.
	ErrTokenExpired = errors.New("token expired")
	// ErrTokenRevoked — JTI токена есть в реестре отзыва.
	ErrTokenRevoked = errors.New("token revoked")
	// ErrWrongTokenType — тип токена не допускается для операции.
	ErrWrongTokenType = errors.New("wrong token type")
)

type tokenClaims struct {
	Type  models.TokenType `json:"type"`
	Email string           `json:"email,omitempty"`
	jwt.RegisteredClaims
}

// Manager выпускает и проверяет токены. Безопасен для конкурентного использования.
type Manager struct {
	cfg    config.AuthConfig
	ledger storage.RevocationStorage
	cache  cache.RevocationCache // может быть nil, если кэш не сконфигурирован
	now    func() time.Time
}

// New создаёт Manager поверх реестра отзыва.
func New(ledger storage.RevocationStorage, cfg config.AuthConfig) *Manager {
	return &Manager{
		cfg:    cfg,
		ledger: ledger,
		now:    func() time.Time { return time.Now().UTC() },
	}
}

// SetCache устанавливает кэш реестра отзыва (опционально).
func (m *Manager) SetCache(c cache.RevocationCache) {
	m.cache = c
}

// TTL возвращает срок жизни токена заданного типа.
func (m *Manager) TTL(t models.TokenType) time.Duration {
	if t == models.TokenTypePassword {
		return m.cfg.ResetTokenTTL
	}

	return m.cfg.AccessTokenTTL
}

// Issue выпускает подписанный токен типа t для subject со свежим JTI.
// extra добавляется в payload; зарегистрированные claims и "type" не перезаписываются.
func (m *Manager) Issue(ctx context.Context, subject uuid.UUID, t models.TokenType, extra map[string]any) (*models.IssuedToken, error) {
	const op = "tokens.Manager.Issue"

	if !t.Valid() {
		return nil, fmt.Errorf("%s: unknown token type %q", op, t)
	}

	now := m.now()
	exp := now.Add(m.TTL(t))
	jti := uuid.NewString()

	claims := jwt.MapClaims{}
	for k, v := range extra {
		claims[k] = v
	}
	claims["sub"] = subject.String()
	claims["type"] = string(t)
	claims["jti"] = jti
	claims["iss"] = m.cfg.Issuer
	claims["aud"] = m.cfg.Audience
	claims["iat"] = jwt.NewNumericDate(now)
	claims["nbf"] = jwt.NewNumericDate(now)
	claims["exp"] = jwt.NewNumericDate(exp)

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(m.cfg.JWTSecret))
	if err != nil {
		log.From(ctx).Error("token_sign_failed",
			slog.String("op", op),
			slog.String("err", err.Error()),
		)
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	metrics.TokensIssued.WithLabelValues(string(t)).Inc()

	return &models.IssuedToken{
		Token:     signed,
		JTI:       jti,
		Type:      t,
		ExpiresAt: exp,
	}, nil
}

// Verify проверяет подпись (только HS256), issuer, audience и срок действия.
// Допуска на расхождение часов нет: с момента exp токен считается истёкшим,
// и очистка реестра по expires_at <= now не возвращает силу отозванному токену.
// Реестр отзыва НЕ проверяется.
func (m *Manager) Verify(raw string) (*models.TokenClaims, error) {
	const op = "tokens.Manager.Verify"

	if raw == "" {
		return nil, fmt.Errorf("%s: %w", op, ErrInvalidToken)
	}

	token, err := jwt.ParseWithClaims(raw, &tokenClaims{},
		func(t *jwt.Token) (interface{}, error) {
			if t.Method != jwt.SigningMethodHS256 {
				return nil, fmt.Errorf("%s: %w", op, ErrInvalidToken)
			}

			return []byte(m.cfg.JWTSecret), nil
		},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(m.cfg.Issuer),
		jwt.WithAudience(m.cfg.Audience...),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(m.now),
	)

	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, fmt.Errorf("%s: %w", op, ErrTokenExpired)
		}

		return nil, fmt.Errorf("%s: %w", op, ErrInvalidToken)
	}

	claims, ok := token.Claims.(*tokenClaims)
	if !ok || !token.Valid {
		return nil, fmt.Errorf("%s: %w", op, ErrInvalidToken)
	}

	sub, err := uuid.Parse(claims.Subject)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, ErrInvalidToken)
	}

	if claims.ID == "" || !claims.Type.Valid() {
		return nil, fmt.Errorf("%s: %w", op, ErrInvalidToken)
	}

	out := &models.TokenClaims{
		Subject:   sub,
		Type:      claims.Type,
		JTI:       claims.ID,
		Email:     claims.Email,
		ExpiresAt: claims.ExpiresAt.Time.UTC(),
	}
	if claims.IssuedAt != nil {
		out.IssuedAt = claims.IssuedAt.Time.UTC()
	}

	return out, nil
}

// ConsumeFunc записывает погашение токена вместе с сопутствующим изменением
// (например, сменой пароля) одной транзакцией хранилища.
// true — запись создана этим вызовом; false — JTI уже был в реестре.
type ConsumeFunc func(ctx context.Context, entry *models.RevokedToken) (bool, error)

// Revoke идемпотентно записывает JTI токена в реестр отзыва.
// Повторный отзыв успешен. Ошибка кэша не влияет на результат.
func (m *Manager) Revoke(ctx context.Context, claims *models.TokenClaims) error {
	const op = "tokens.Manager.Revoke"

	if _, err := m.revoke(ctx, claims, m.ledger.RevokeToken); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	return nil
}

// Consume погашает одноразовый токен через write: успешен только для вызова,
// который первым записал JTI в реестр. Остальные получают ErrTokenRevoked.
// При write == nil запись идёт напрямую в реестр отзыва.
func (m *Manager) Consume(ctx context.Context, claims *models.TokenClaims, write ConsumeFunc) error {
	const op = "tokens.Manager.Consume"

	if write == nil {
		write = m.ledger.RevokeToken
	}

	created, err := m.revoke(ctx, claims, write)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	if !created {
		metrics.TokensRejected.WithLabelValues("revoked").Inc()
		return fmt.Errorf("%s: %w", op, ErrTokenRevoked)
	}

	return nil
}

func (m *Manager) revoke(ctx context.Context, claims *models.TokenClaims, write ConsumeFunc) (bool, error) {
	lg := log.From(ctx)

	entry := &models.RevokedToken{
		JTI:       claims.JTI,
		UserID:    claims.Subject,
		Type:      claims.Type,
		ExpiresAt: claims.ExpiresAt,
		RevokedAt: m.now(),
	}

	created, err := write(ctx, entry)
	if err != nil {
		lg.Error("token_revoke_failed",
			slog.String("jti", claims.JTI),
			slog.String("err", err.Error()),
		)
		return false, err
	}

	if created {
		metrics.TokensRevoked.WithLabelValues(string(claims.Type)).Inc()
	}
	m.remember(ctx, claims)

	lg.Info("token_revoked",
		slog.String("jti", claims.JTI),
		slog.String("type", string(claims.Type)),
		slog.Bool("first", created),
	)

	return created, nil
}

// IsRevoked проверяет JTI в реестре: сначала кэш, при промахе хранилище.
func (m *Manager) IsRevoked(ctx context.Context, jti string) (bool, error) {
	const op = "tokens.Manager.IsRevoked"

	if m.cache != nil {
		hit, err := m.cache.IsRevoked(ctx, jti)
		if err != nil {
			log.From(ctx).Warn("revocation_cache_get_failed",
				slog.String("op", op),
				slog.String("err", err.Error()),
			)
		} else if hit {
			return true, nil
		}
	}

	revoked, err := m.ledger.IsTokenRevoked(ctx, jti)
	if err != nil {
		return false, fmt.Errorf("%s: %w", op, err)
	}

	return revoked, nil
}

// Authorize проверяет токен целиком: подпись и срок (Verify), тип из allowed
// и отсутствие JTI в реестре отзыва.
func (m *Manager) Authorize(ctx context.Context, raw string, allowed ...models.TokenType) (*models.TokenClaims, error) {
	const op = "tokens.Manager.Authorize"

	claims, err := m.Verify(raw)
	if err != nil {
		metrics.TokensRejected.WithLabelValues(rejectReason(err)).Inc()
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	if !typeAllowed(claims.Type, allowed) {
		metrics.TokensRejected.WithLabelValues("wrong_type").Inc()
		return nil, fmt.Errorf("%s: %w", op, ErrWrongTokenType)
	}

	revoked, err := m.IsRevoked(ctx, claims.JTI)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	if revoked {
		metrics.TokensRejected.WithLabelValues("revoked").Inc()
		m.remember(ctx, claims)
		return nil, fmt.Errorf("%s: %w", op, ErrTokenRevoked)
	}

	return claims, nil
}

// remember кладёт отозванный JTI в кэш на остаток срока жизни токена.
func (m *Manager) remember(ctx context.Context, claims *models.TokenClaims) {
	if m.cache == nil {
		return
	}

	ttl := claims.ExpiresAt.Sub(m.now())
	if ttl <= 0 {
		return
	}

	if err := m.cache.MarkRevoked(ctx, claims.JTI, ttl); err != nil {
		log.From(ctx).Warn("revocation_cache_set_failed",
			slog.String("jti", claims.JTI),
			slog.String("err", err.Error()),
		)
	}
}

func typeAllowed(t models.TokenType, allowed []models.TokenType) bool {
	if len(allowed) == 0 {
		return true
	}

	for _, a := range allowed {
		if a == t {
			return true
		}
	}

	return false
}

func rejectReason(err error) string {
	if errors.Is(err, ErrTokenExpired) {
		return "expired"
	}

	return "invalid"
}

package middleware

import (
	"context"
	"log/slog"
	"net/http"
	"strings"

	apierrors "github.com/pribylovaa/auth-service/internal/http/errors"
	"github.com/pribylovaa/auth-service/internal/models"
	"github.com/pribylovaa/auth-service/internal/pkg/log"
)

type claimsKey struct{}

// Authorizer проверяет сырой токен (подпись, срок, тип, реестр отзыва).
// Реализуется *tokens.Manager.
type Authorizer interface {
	Authorize(ctx context.Context, raw string, allowed ...models.TokenType) (*models.TokenClaims, error)
}

// Authenticate требует заголовок Authorization: Bearer <token> с токеном
// одного из типов allowed. Проверенные claims кладутся в контекст (ClaimsFrom).
// Любой отказ отдаётся как 401 в едином формате ошибок.
func Authenticate(az Authorizer, allowed ...models.TokenType) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			raw, ok := bearerToken(r)
			if !ok {
				apierrors.WriteError(w, r, apierrors.ErrMissingToken)
				return
			}

			claims, err := az.Authorize(r.Context(), raw, allowed...)
			if err != nil {
				apierrors.WriteError(w, r, err)
				return
			}

			ctx := context.WithValue(r.Context(), claimsKey{}, claims)
			ctx = log.With(ctx,
				slog.String("user_id", claims.Subject.String()),
				slog.String("token_type", string(claims.Type)),
			)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// ClaimsFrom достаёт проверенные claims, положенные Authenticate.
func ClaimsFrom(ctx context.Context) (*models.TokenClaims, bool) {
	c, ok := ctx.Value(claimsKey{}).(*models.TokenClaims)
	return c, ok && c != nil
}

func bearerToken(r *http.Request) (string, bool) {
	auth := r.Header.Get("Authorization")

	const prefix = "Bearer "
	if len(auth) <= len(prefix) || !strings.EqualFold(auth[:len(prefix)], prefix) {
		return "", false
	}

	token := strings.TrimSpace(auth[len(prefix):])
	return token, token != ""
}

package middleware

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/pribylovaa/auth-service/internal/pkg/log"
)

// Timeout ограничивает время обработки запроса значением d.
// Если у запроса уже есть более ранний deadline, действует он.
// При d <= 0 запрос пропускается без изменений.
//
// Ответ сам middleware не пишет: хендлер получает context.DeadlineExceeded
// от сервиса/хранилища и отдаёт 504 через общий маппинг ошибок.
func Timeout(d time.Duration) Middleware {
	return func(next http.Handler) http.Handler {
		if d <= 0 {
			return next
		}

		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx, cancel := context.WithTimeout(r.Context(), d)
			defer cancel()

			next.ServeHTTP(w, r.WithContext(ctx))

			if errors.Is(ctx.Err(), context.DeadlineExceeded) {
				log.From(ctx).Warn("request_deadline_exceeded",
					slog.String("path", r.URL.Path),
					slog.Duration("timeout", d),
				)
			}
		})
	}
}

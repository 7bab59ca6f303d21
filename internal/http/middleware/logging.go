package middleware

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/pribylovaa/auth-service/internal/pkg/log"
	"github.com/pribylovaa/auth-service/internal/pkg/redact"
)

// Logging кладёт request-scoped логгер в контекст и пишет запись на каждый запрос.
func Logging(l *slog.Logger) Middleware {
	if l == nil {
		l = slog.Default()
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			reqLogger := l
			if rid := r.Header.Get("X-Request-Id"); rid != "" {
				reqLogger = reqLogger.With(slog.String("request_id", rid))
			}
			r = r.WithContext(log.Into(r.Context(), reqLogger))

			sw := newStatusWriter(w)
			start := time.Now()
			next.ServeHTTP(sw, r)
			dur := time.Since(start)

			level := slog.LevelInfo
			if sw.status >= http.StatusInternalServerError {
				level = slog.LevelError
			}

			attrs := []slog.Attr{
				slog.String("method", r.Method),
				slog.String("path", r.URL.Path),
				slog.Int("status", sw.status),
				slog.Duration("dur", dur),
				slog.Int("bytes", sw.count),
			}
			// Тело запроса не логируется, от Authorization остаётся только схема.
			if auth := redact.Authorization(r.Header.Get("Authorization")); auth != "" {
				attrs = append(attrs, slog.String("auth", auth))
			}

			log.From(r.Context()).LogAttrs(r.Context(), level, "http", attrs...)
		})
	}
}

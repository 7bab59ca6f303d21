package http

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"

	"github.com/pribylovaa/auth-service/internal/http/handlers"
	"github.com/pribylovaa/auth-service/internal/http/middleware"
	"github.com/pribylovaa/auth-service/internal/models"
)

// Options — параметры сборки HTTP-роутера.
type Options struct {
	Logger         *slog.Logger
	Timeout        time.Duration
	AllowedOrigins []string
	BasePath       string // например, "/api"; если пустой, роуты регистрируются на корне.
}

// NewRouter собирает http.Handler с chi и подключёнными middleware/роутами.
func NewRouter(svc handlers.AuthService, az middleware.Authorizer, opts Options) http.Handler {
	root := chi.NewRouter()

	origins := opts.AllowedOrigins
	if len(origins) == 0 {
		origins = []string{"*"}
	}

	// Middleware (внешний -> внутренний).
	root.Use(
		middleware.Recover(),            // безопасно ловим паники
		middleware.RequestID(),          // формируем/прокидываем X-Request-Id (до логирования!)
		middleware.Logging(opts.Logger), // кладём request-scoped логгер в контекст и логируем
		middleware.Metrics(),
		cors.Handler(cors.Options{
			AllowedOrigins: origins,
			AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodPatch, http.MethodOptions},
			AllowedHeaders: []string{"Authorization", "Content-Type", "X-Request-Id"},
			ExposedHeaders: []string{"X-Request-Id"},
			MaxAge:         300,
		}),
	)
	if opts.Timeout > 0 {
		root.Use(middleware.Timeout(opts.Timeout)) // общий дедлайн запроса
	}

	h := handlers.New(svc)

	if opts.BasePath != "" {
		sub := chi.NewRouter()
		registerRoutes(sub, h, az)
		root.Mount(opts.BasePath, sub)
		return root
	}

	registerRoutes(root, h, az)
	return root
}

// registerRoutes — единая точка регистрации всех REST-эндпойнтов.
func registerRoutes(r chi.Router, h *handlers.Handlers, az middleware.Authorizer) {
	r.Post("/signup", h.Signup)
	r.Post("/login", h.Login)
	r.Post("/requestpasswordrecovery", h.RequestPasswordRecovery)

	// только access-токен
	r.Group(func(r chi.Router) {
		r.Use(middleware.Authenticate(az, models.TokenTypeAccess))
		r.Get("/userinfo", h.UserInfo)
		r.Post("/logout", h.Logout)
	})

	// access или токен восстановления из письма
	r.With(middleware.Authenticate(az, models.TokenTypeAccess, models.TokenTypePassword)).
		Patch("/changepassword", h.ChangePassword)
}

// metrics — Prometheus-коллекторы сервиса. Регистрируются в prometheus.DefaultRegisterer
// и отдаются через promhttp на служебном HTTP-сервере.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	// HTTPRequests — количество обработанных HTTP-запросов.
	HTTPRequests = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "auth",
		Subsystem: "http",
		Name:      "requests_total",
		Help:      "Total number of HTTP requests by route, method and status.",
	}, []string{"route", "method", "status"})

	// HTTPDuration — время обработки HTTP-запросов.
	HTTPDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "auth",
		Subsystem: "http",
		Name:      "request_duration_seconds",
		Help:      "HTTP request latency by route and method.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"route", "method"})

	// TokensIssued — выпущенные токены по типу.
	TokensIssued = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "auth",
		Subsystem: "tokens",
		Name:      "issued_total",
		Help:      "Total number of issued tokens by type.",
	}, []string{"type"})

	// TokensRevoked — записи в реестр отзыва по типу токена.
	TokensRevoked = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "auth",
		Subsystem: "tokens",
		Name:      "revoked_total",
		Help:      "Total number of token revocations by type.",
	}, []string{"type"})

	// TokensRejected — отклонённые при авторизации токены по причине.
	TokensRejected = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "auth",
		Subsystem: "tokens",
		Name:      "rejected_total",
		Help:      "Total number of rejected tokens by reason.",
	}, []string{"reason"})

	// NotificationsSent — результаты отправки писем восстановления.
	NotificationsSent = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "auth",
		Subsystem: "notify",
		Name:      "sent_total",
		Help:      "Recovery e-mail dispatch attempts by result.",
	}, []string{"result"})
)

func init() {
	prometheus.MustRegister(
		HTTPRequests,
		HTTPDuration,
		TokensIssued,
		TokensRevoked,
		TokensRejected,
		NotificationsSent,
	)
}

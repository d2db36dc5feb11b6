// Package metrics expone los colectores Prometheus del servicio.
package metrics

import "github.com/prometheus/client_golang/prometheus"

var (
	// HTTPRequestsTotal cuenta requests por método, ruta y clase de status.
	HTTPRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "biryani_http_requests_total",
			Help: "HTTP requests",
		},
		[]string{"method", "route", "status"},
	)

	// ChatRepliesTotal cuenta respuestas del bot por intent elegido.
	ChatRepliesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "biryani_chat_replies_total",
			Help: "Chatbot replies by intent",
		},
		[]string{"intent"},
	)

	// ActiveConversations es el número de conversaciones abiertas.
	ActiveConversations = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "biryani_chat_conversations_active",
			Help: "Open chat conversations",
		},
	)

	// NotificationsTotal cuenta entregas por canal y resultado
	// (sent, not_configured, provider_error, error).
	NotificationsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "biryani_notifications_total",
			Help: "Notification deliveries",
		},
		[]string{"channel", "outcome"},
	)

	// ProviderLatency mide la latencia de los proveedores de email/SMS.
	ProviderLatency = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "biryani_notification_provider_latency_seconds",
			Help:    "Notification provider latency",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"channel"},
	)

	// RateLimitRejectedTotal cuenta mensajes de chat rechazados por el limitador.
	RateLimitRejectedTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "biryani_chat_ratelimit_rejected_total",
			Help: "Chat messages rejected by the rate limiter",
		},
	)
)

func init() {
	prometheus.MustRegister(
		HTTPRequestsTotal,
		ChatRepliesTotal,
		ActiveConversations,
		NotificationsTotal,
		ProviderLatency,
		RateLimitRejectedTotal,
	)
}

// StatusClass agrupa un código HTTP en 2xx/3xx/4xx/5xx.
func StatusClass(code int) string {
	switch {
	case code >= 500:
		return "5xx"
	case code >= 400:
		return "4xx"
	case code >= 300:
		return "3xx"
	default:
		return "2xx"
	}
}

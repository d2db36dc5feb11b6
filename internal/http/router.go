package http

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"spicy-biryani/internal/metrics"
	"spicy-biryani/internal/service"
)

// NewRouter configura el router de Gin con middlewares y rutas.
func NewRouter(
	logger *zap.Logger,
	notifH *NotificationHandler,
	chatH *ChatHandler,
	socketH *ChatSocketHandler,
	adminH *AdminHandler,
	adminSession *service.AdminSession,
) *gin.Engine {
	r := gin.New()
	r.HandleMethodNotAllowed = true

	// Middlewares basicos: logging, recovery, CORS y JSON content-type.
	r.Use(zapLoggerMiddleware(logger), gin.Recovery(), corsMiddleware(), jsonContentTypeMiddleware())

	r.NoMethod(func(c *gin.Context) {
		c.JSON(http.StatusMethodNotAllowed, gin.H{"success": false, "error": "Method not allowed"})
	})
	r.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
	})

	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	functions := r.Group("/functions")
	functions.POST("/send-status-update-email", notifH.SendStatusEmail)
	functions.POST("/send-status-update-sms", notifH.SendStatusSMS)

	chat := r.Group("/chat")
	chat.POST("/sessions", chatH.CreateSession)
	chat.GET("/sessions/:id", chatH.GetSession)
	chat.POST("/sessions/:id/messages", chatH.PostMessage)
	chat.DELETE("/sessions/:id", chatH.CloseSession)
	chat.GET("/ws", socketH.Serve)

	admin := r.Group("/admin")
	admin.POST("/login", adminH.Login)
	admin.GET("/session", adminH.Session)

	authorized := admin.Group("", AdminAuthMiddleware(adminSession))
	authorized.POST("/logout", adminH.Logout)
	authorized.POST("/orders/:orderNumber/status", adminH.UpdateOrderStatus)
	authorized.GET("/deliveries", adminH.ListDeliveries)

	return r
}

// zapLoggerMiddleware loguea cada request con zap y la cuenta en Prometheus.
func zapLoggerMiddleware(logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		latency := time.Since(start)
		status := c.Writer.Status()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		metrics.HTTPRequestsTotal.WithLabelValues(c.Request.Method, route, metrics.StatusClass(status)).Inc()

		logger.Info("request",
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Int("status", status),
			zap.Duration("latency", latency),
			zap.String("client_ip", c.ClientIP()),
		)
	}
}

// corsMiddleware permite cualquier origen y responde los preflight con 200.
// Las funciones de notificación solo anuncian POST.
func corsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		h := c.Writer.Header()
		h.Set("Access-Control-Allow-Origin", "*")
		if strings.HasPrefix(c.Request.URL.Path, "/functions/") {
			h.Set("Access-Control-Allow-Methods", "POST, OPTIONS")
		} else {
			h.Set("Access-Control-Allow-Methods", "GET, POST, DELETE, OPTIONS")
		}
		h.Set("Access-Control-Allow-Headers", "Content-Type, Authorization, X-Client-Info, Apikey")
		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusOK)
			return
		}
		c.Next()
	}
}

// jsonContentTypeMiddleware fuerza Content-Type: application/json en responses.
func jsonContentTypeMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Writer.Header().Set("Content-Type", "application/json")
		c.Next()
	}
}

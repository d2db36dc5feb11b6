package http

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"spicy-biryani/internal/domain"
	"spicy-biryani/internal/notification"
	"spicy-biryani/internal/service"
)

// NotificationHandler atiende las funciones de aviso de estado de pedido.
type NotificationHandler struct {
	logger   *zap.Logger
	notifier service.StatusNotifier
}

// NewNotificationHandler crea una instancia de NotificationHandler.
func NewNotificationHandler(logger *zap.Logger, notifier service.StatusNotifier) *NotificationHandler {
	return &NotificationHandler{
		logger:   logger,
		notifier: notifier,
	}
}

// SendStatusEmail maneja POST /functions/send-status-update-email.
func (h *NotificationHandler) SendStatusEmail(c *gin.Context) {
	var req notification.EmailRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warn("invalid status email request", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": err.Error()})
		return
	}

	id, err := h.notifier.SendStatusEmail(c.Request.Context(), req)
	code, body := notificationEnvelope(domain.ChannelEmail, req.OrderNumber, id, err)
	c.JSON(code, body)
}

// SendStatusSMS maneja POST /functions/send-status-update-sms.
func (h *NotificationHandler) SendStatusSMS(c *gin.Context) {
	var req notification.SMSRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warn("invalid status sms request", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": err.Error()})
		return
	}

	sid, err := h.notifier.SendStatusSMS(c.Request.Context(), req)
	code, body := notificationEnvelope(domain.ChannelSMS, req.OrderNumber, sid, err)
	c.JSON(code, body)
}

// notificationEnvelope arma el status y el cuerpo de respuesta de un canal.
func notificationEnvelope(channel domain.Channel, orderNumber, providerID string, err error) (int, gin.H) {
	if err == nil {
		if channel == domain.ChannelSMS {
			return http.StatusOK, gin.H{
				"success":     true,
				"message":     "SMS sent successfully",
				"orderNumber": orderNumber,
				"messageSid":  providerID,
			}
		}
		return http.StatusOK, gin.H{
			"success":     true,
			"message":     "Email sent successfully",
			"orderNumber": orderNumber,
			"emailId":     providerID,
		}
	}

	var cfgErr *notification.ConfigurationError
	if errors.As(err, &cfgErr) {
		if channel == domain.ChannelSMS {
			return http.StatusInternalServerError, gin.H{"success": false, "error": "SMS service not configured", "logged": true}
		}
		return http.StatusInternalServerError, gin.H{"success": false, "error": "Email service not configured"}
	}

	var pErr *notification.ProviderError
	if errors.As(err, &pErr) {
		code := pErr.StatusCode
		// Sin respuesta del proveedor o un estado de éxito no se reenvían.
		if code < http.StatusMultipleChoices || code > 599 {
			code = http.StatusBadGateway
		}
		return code, gin.H{"success": false, "error": pErr.Message}
	}

	return http.StatusInternalServerError, gin.H{"success": false, "error": err.Error()}
}

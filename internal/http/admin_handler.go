package http

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"spicy-biryani/internal/domain"
	"spicy-biryani/internal/service"
)

// AdminHandler mantiene dependencias para el panel de administración.
type AdminHandler struct {
	logger        *zap.Logger
	session       *service.AdminSession
	dispatcher    *service.StatusDispatcher
	notifications *service.NotificationService
}

// NewAdminHandler crea una instancia de AdminHandler con dependencias necesarias.
func NewAdminHandler(
	logger *zap.Logger,
	session *service.AdminSession,
	dispatcher *service.StatusDispatcher,
	notifications *service.NotificationService,
) *AdminHandler {
	return &AdminHandler{
		logger:        logger,
		session:       session,
		dispatcher:    dispatcher,
		notifications: notifications,
	}
}

// Login maneja POST /admin/login.
func (h *AdminHandler) Login(c *gin.Context) {
	var req struct {
		Password string `json:"password" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warn("invalid admin login request", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}

	token, err := h.session.Login(c.Request.Context(), req.Password, c.ClientIP())
	if err != nil {
		switch {
		case errors.Is(err, service.ErrInvalidCredentials):
			c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid credentials"})
		case errors.Is(err, service.ErrAdminNotConfigured):
			c.JSON(http.StatusServiceUnavailable, gin.H{"error": "admin login disabled"})
		default:
			h.logger.Error("admin login failed", zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "could not log in"})
		}
		return
	}

	h.logger.Info("admin logged in", zap.String("client", c.ClientIP()))
	c.JSON(http.StatusOK, gin.H{"token": token})
}

// Logout maneja POST /admin/logout.
func (h *AdminHandler) Logout(c *gin.Context) {
	token, _ := bearerToken(c)
	if err := h.session.Logout(c.Request.Context(), token); err != nil {
		h.logger.Warn("admin logout failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not log out"})
		return
	}
	c.Status(http.StatusNoContent)
}

// Session maneja GET /admin/session.
func (h *AdminHandler) Session(c *gin.Context) {
	token, ok := bearerToken(c)
	c.JSON(http.StatusOK, gin.H{"authenticated": ok && h.session.IsAuthenticated(c.Request.Context(), token)})
}

// UpdateOrderStatus maneja POST /admin/orders/:orderNumber/status.
func (h *AdminHandler) UpdateOrderStatus(c *gin.Context) {
	var update domain.StatusUpdate
	if err := c.ShouldBindJSON(&update); err != nil {
		h.logger.Warn("invalid status update request", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}
	update.OrderNumber = c.Param("orderNumber")

	fields := []zap.Field{
		zap.String("order_number", update.OrderNumber),
		zap.String("status", string(update.Status)),
		zap.Bool("known_status", update.Status.Known()),
	}
	if grant, ok := GetAdminGrant(c); ok {
		fields = append(fields, zap.String("jti", grant.ID), zap.String("client", grant.Client))
	}
	h.logger.Info("order status update", fields...)

	result, err := h.dispatcher.Dispatch(c.Request.Context(), update)
	if err != nil {
		if errors.Is(err, service.ErrInvalidStatusUpdate) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "order number and status are required"})
			return
		}
		h.logger.Error("status dispatch failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not dispatch notifications"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"orderNumber": update.OrderNumber,
		"status":      update.Status,
		"email":       channelBody(domain.ChannelEmail, update.OrderNumber, result.Email),
		"sms":         channelBody(domain.ChannelSMS, update.OrderNumber, result.SMS),
	})
}

// ListDeliveries maneja GET /admin/deliveries.
func (h *AdminHandler) ListDeliveries(c *gin.Context) {
	limit, _ := strconv.Atoi(c.Query("limit"))
	records, err := h.notifications.ListDeliveries(c.Request.Context(), c.Query("orderNumber"), limit)
	if err != nil {
		h.logger.Error("list deliveries failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not list deliveries"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"deliveries": records})
}

// channelBody devuelve el mismo envelope que la función del canal, o
// skipped cuando no había destinatario.
func channelBody(channel domain.Channel, orderNumber string, res service.ChannelResult) gin.H {
	if res.Skipped {
		return gin.H{"skipped": true}
	}
	_, body := notificationEnvelope(channel, orderNumber, res.ProviderID, res.Err)
	return body
}

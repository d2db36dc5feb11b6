package http

import (
	"errors"
	"math"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"spicy-biryani/internal/conversation"
	"spicy-biryani/internal/service"
)

// ChatHandler expone las conversaciones del chat de soporte por REST.
type ChatHandler struct {
	logger *zap.Logger
	chat   *service.ChatService
}

// NewChatHandler crea una instancia de ChatHandler con dependencias necesarias.
func NewChatHandler(logger *zap.Logger, chat *service.ChatService) *ChatHandler {
	return &ChatHandler{
		logger: logger,
		chat:   chat,
	}
}

// CreateSession maneja POST /chat/sessions.
func (h *ChatHandler) CreateSession(c *gin.Context) {
	session := h.chat.Create()
	c.JSON(http.StatusCreated, gin.H{
		"session":  gin.H{"id": session.ID},
		"messages": session.Messages,
	})
}

// GetSession maneja GET /chat/sessions/:id.
func (h *ChatHandler) GetSession(c *gin.Context) {
	session, err := h.chat.Get(c.Param("id"))
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, session)
}

// PostMessage maneja POST /chat/sessions/:id/messages.
func (h *ChatHandler) PostMessage(c *gin.Context) {
	var req struct {
		Text string `json:"text"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warn("invalid chat message request", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}

	if err := h.chat.Submit(c.Request.Context(), c.Param("id"), req.Text); err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusAccepted, gin.H{"accepted": true, "typing": true})
}

// CloseSession maneja DELETE /chat/sessions/:id.
func (h *ChatHandler) CloseSession(c *gin.Context) {
	if err := h.chat.Close(c.Param("id")); err != nil {
		h.writeError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *ChatHandler) writeError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, conversation.ErrEmptyMessage):
		// Texto vacío no es un error para el visitante: simplemente no pasa nada.
		c.JSON(http.StatusOK, gin.H{"accepted": false})
	case errors.Is(err, service.ErrSessionNotFound), errors.Is(err, conversation.ErrClosed):
		c.JSON(http.StatusNotFound, gin.H{"error": "session not found"})
	case errors.Is(err, conversation.ErrReplyPending):
		c.JSON(http.StatusConflict, gin.H{"error": "reply pending"})
	case errors.Is(err, service.ErrRateLimited):
		var rlErr *service.RateLimitError
		if errors.As(err, &rlErr) && rlErr.RetryAfter > 0 {
			c.Header("Retry-After", strconv.Itoa(int(math.Ceil(rlErr.RetryAfter.Seconds()))))
		}
		c.JSON(http.StatusTooManyRequests, gin.H{"error": "too many requests"})
	default:
		h.logger.Error("chat request failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not process message"})
	}
}

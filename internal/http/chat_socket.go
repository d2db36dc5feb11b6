package http

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"spicy-biryani/internal/conversation"
	"spicy-biryani/internal/domain"
	"spicy-biryani/internal/service"
)

const (
	socketPongWait   = 60 * time.Second
	socketPingPeriod = 54 * time.Second
	socketWriteWait  = 10 * time.Second
)

// ChatSocketHandler sirve el panel de chat en vivo por WebSocket. Cada conexión
// es una conversación; cerrar el socket la descarta.
type ChatSocketHandler struct {
	logger   *zap.Logger
	chat     *service.ChatService
	upgrader websocket.Upgrader
}

func NewChatSocketHandler(logger *zap.Logger, chat *service.ChatService) *ChatSocketHandler {
	return &ChatSocketHandler{
		logger: logger,
		chat:   chat,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool {
				return true
			},
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
		},
	}
}

type socketInbound struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

type socketOutbound struct {
	Type      string           `json:"type"`
	SessionID string           `json:"sessionId,omitempty"`
	Typing    bool             `json:"typing"`
	Messages  []domain.Message `json:"messages,omitempty"`
	Error     string           `json:"error,omitempty"`
}

// Serve maneja GET /chat/ws.
func (h *ChatSocketHandler) Serve(c *gin.Context) {
	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.logger.Warn("websocket upgrade failed", zap.Error(err))
		return
	}
	defer conn.Close()

	session := h.chat.Create()
	orch, err := h.chat.Conversation(session.ID)
	if err != nil {
		return
	}
	defer func() {
		_ = h.chat.Close(session.ID)
	}()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Solo el writer escribe en conn; los cambios se coalescen en changed.
	changed := make(chan struct{}, 1)
	errorsOut := make(chan string, 4)
	orch.OnChange(func() {
		select {
		case changed <- struct{}{}:
		default:
		}
	})
	changed <- struct{}{}

	done := make(chan struct{})
	go func() {
		defer close(done)
		h.writeLoop(ctx, conn, session.ID, orch, changed, errorsOut)
	}()

	h.logger.Info("chat socket connected", zap.String("session_id", session.ID))
	h.readLoop(ctx, conn, session.ID, errorsOut)
	cancel()
	<-done
	h.logger.Info("chat socket disconnected", zap.String("session_id", session.ID))
}

func (h *ChatSocketHandler) readLoop(ctx context.Context, conn *websocket.Conn, sessionID string, errorsOut chan<- string) {
	_ = conn.SetReadDeadline(time.Now().Add(socketPongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(socketPongWait))
	})

	for {
		var msg socketInbound
		if err := conn.ReadJSON(&msg); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				h.logger.Warn("chat socket read failed", zap.Error(err))
			}
			return
		}
		_ = conn.SetReadDeadline(time.Now().Add(socketPongWait))

		if msg.Type != "message" {
			pushError(errorsOut, "unknown message type")
			continue
		}
		err := h.chat.Submit(ctx, sessionID, msg.Text)
		switch {
		case err == nil, errors.Is(err, conversation.ErrEmptyMessage):
		case errors.Is(err, conversation.ErrReplyPending):
			pushError(errorsOut, "reply pending")
		case errors.Is(err, service.ErrRateLimited):
			pushError(errorsOut, "too many requests")
		default:
			pushError(errorsOut, "could not process message")
		}
	}
}

func (h *ChatSocketHandler) writeLoop(
	ctx context.Context,
	conn *websocket.Conn,
	sessionID string,
	orch *conversation.Orchestrator,
	changed <-chan struct{},
	errorsOut <-chan string,
) {
	ticker := time.NewTicker(socketPingPeriod)
	defer ticker.Stop()

	for {
		var out *socketOutbound
		select {
		case <-ctx.Done():
			return
		case <-changed:
			out = &socketOutbound{
				Type:      "transcript",
				SessionID: sessionID,
				Typing:    orch.Typing(),
				Messages:  orch.Messages(),
			}
		case msg := <-errorsOut:
			out = &socketOutbound{Type: "error", SessionID: sessionID, Error: msg}
		case <-ticker.C:
			_ = conn.SetWriteDeadline(time.Now().Add(socketWriteWait))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
			continue
		}

		_ = conn.SetWriteDeadline(time.Now().Add(socketWriteWait))
		if err := conn.WriteJSON(out); err != nil {
			h.logger.Warn("chat socket write failed", zap.Error(err))
			return
		}
	}
}

func pushError(ch chan<- string, msg string) {
	select {
	case ch <- msg:
	default:
	}
}

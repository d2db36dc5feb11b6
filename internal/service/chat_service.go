package service

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"spicy-biryani/internal/chatbot"
	"spicy-biryani/internal/conversation"
	"spicy-biryani/internal/domain"
	"spicy-biryani/internal/metrics"
)

var (
	ErrSessionNotFound = errors.New("chat session not found")
	ErrRateLimited     = errors.New("rate limited")
)

// ChatSession es una foto de una conversación para la capa HTTP.
type ChatSession struct {
	ID       string           `json:"id"`
	Typing   bool             `json:"typing"`
	Messages []domain.Message `json:"messages"`
}

// ChatService mantiene las conversaciones vivas, una por visitante.
type ChatService struct {
	logger   *zap.Logger
	replier  conversation.Replier
	quota    ChatQuota
	opts     []conversation.Option
	mu       sync.RWMutex
	sessions map[string]*conversation.Orchestrator
}

// NewChatService crea el registro. opts se aplican a cada conversación nueva
// (demora, scheduler, reloj).
func NewChatService(logger *zap.Logger, responder *chatbot.Responder, quota ChatQuota, opts ...conversation.Option) *ChatService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if responder == nil {
		responder = chatbot.NewResponder(nil)
	}
	return &ChatService{
		logger:   logger,
		replier:  instrumentedReplier{responder: responder},
		quota:    quota,
		opts:     opts,
		sessions: make(map[string]*conversation.Orchestrator),
	}
}

// Create abre una conversación sembrada con el mensaje de bienvenida.
func (s *ChatService) Create() ChatSession {
	opts := make([]conversation.Option, 0, len(s.opts)+1)
	opts = append(opts, s.opts...)
	opts = append(opts, conversation.WithWelcome(chatbot.WelcomeMessage))
	orch := conversation.New(s.replier, opts...)
	id := uuid.NewString()

	s.mu.Lock()
	s.sessions[id] = orch
	s.mu.Unlock()
	metrics.ActiveConversations.Inc()

	s.logger.Info("chat session opened", zap.String("session_id", id))
	return snapshot(id, orch)
}

func (s *ChatService) Get(id string) (ChatSession, error) {
	orch, err := s.Conversation(id)
	if err != nil {
		return ChatSession{}, err
	}
	return snapshot(id, orch), nil
}

// Conversation expone el orquestador para superficies que necesitan OnChange.
func (s *ChatService) Conversation(id string) (*conversation.Orchestrator, error) {
	s.mu.RLock()
	orch, ok := s.sessions[strings.TrimSpace(id)]
	s.mu.RUnlock()
	if !ok {
		return nil, ErrSessionNotFound
	}
	return orch, nil
}

// Submit envía un mensaje del visitante. Devuelve conversation.ErrEmptyMessage
// para texto vacío, conversation.ErrReplyPending mientras el bot escribe y
// *RateLimitError si la sesión agotó su cupo. Solo los mensajes aceptados
// consumen cupo.
func (s *ChatService) Submit(ctx context.Context, id, text string) error {
	orch, err := s.Conversation(id)
	if err != nil {
		return err
	}
	return orch.SubmitWith(text, func() error {
		return s.admit(ctx, strings.TrimSpace(id))
	})
}

func (s *ChatService) admit(ctx context.Context, id string) error {
	if s.quota == nil {
		return nil
	}
	ctx, cancel := context.WithTimeout(ctx, 500*time.Millisecond)
	defer cancel()

	ok, wait, err := s.quota.Take(ctx, id)
	if err != nil {
		// Sin backend de cupo el chat sigue funcionando.
		s.logger.Warn("chat quota unavailable, message admitted", zap.String("session_id", id), zap.Error(err))
		return nil
	}
	if !ok {
		metrics.RateLimitRejectedTotal.Inc()
		return &RateLimitError{RetryAfter: wait}
	}
	return nil
}

// Close descarta la conversación y cancela la respuesta pendiente.
func (s *ChatService) Close(id string) error {
	id = strings.TrimSpace(id)
	s.mu.Lock()
	orch, ok := s.sessions[id]
	if ok {
		delete(s.sessions, id)
	}
	s.mu.Unlock()
	if !ok {
		return ErrSessionNotFound
	}

	orch.Close()
	s.releaseQuota(id)
	metrics.ActiveConversations.Dec()
	s.logger.Info("chat session closed", zap.String("session_id", id))
	return nil
}

// releaseQuota corre después de orch.Close: ningún mensaje de la sesión puede
// consumir cupo después.
func (s *ChatService) releaseQuota(id string) {
	if s.quota == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 500*time.Millisecond)
	defer cancel()
	if err := s.quota.Release(ctx, id); err != nil {
		s.logger.Warn("chat quota release failed", zap.String("session_id", id), zap.Error(err))
	}
}

// CloseAll se usa en el apagado del servidor.
func (s *ChatService) CloseAll() {
	s.mu.Lock()
	sessions := s.sessions
	s.sessions = make(map[string]*conversation.Orchestrator)
	s.mu.Unlock()

	for id, orch := range sessions {
		orch.Close()
		s.releaseQuota(id)
		metrics.ActiveConversations.Dec()
	}
}

func (s *ChatService) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.sessions)
}

func snapshot(id string, orch *conversation.Orchestrator) ChatSession {
	return ChatSession{
		ID:       id,
		Typing:   orch.Typing(),
		Messages: orch.Messages(),
	}
}

type instrumentedReplier struct {
	responder *chatbot.Responder
}

func (r instrumentedReplier) ClassifyAndReply(input string) string {
	intent, reply := r.responder.Classify(input)
	metrics.ChatRepliesTotal.WithLabelValues(intent).Inc()
	return reply
}

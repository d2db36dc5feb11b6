// Package conversation mantiene el transcript de una sesión de chat y
// secuencia entrada del usuario -> respuesta del bot con una demora simulada.
package conversation

import (
	"sync"

	"spicy-biryani/internal/domain"
)

// Log es el transcript ordenado y solo-append de una sesión.
type Log struct {
	mu       sync.RWMutex
	messages []domain.Message
}

func NewLog() *Log {
	return &Log{messages: make([]domain.Message, 0, 16)}
}

func (l *Log) Append(msg domain.Message) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.messages = append(l.messages, msg)
}

// Messages devuelve una copia en orden cronológico.
func (l *Log) Messages() []domain.Message {
	l.mu.RLock()
	defer l.mu.RUnlock()
	out := make([]domain.Message, len(l.messages))
	copy(out, l.messages)
	return out
}

func (l *Log) Len() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return len(l.messages)
}

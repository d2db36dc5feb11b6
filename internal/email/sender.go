package email

import (
	"context"

	"spicy-biryani/internal/domain"
	"spicy-biryani/internal/notification"
)

// Message es un email HTML ya renderizado.
type Message struct {
	To      string
	Subject string
	HTML    string
}

// Sender define la interfaz para el envío de emails transaccionales.
// Devuelve el id que asigna el proveedor.
type Sender interface {
	Send(ctx context.Context, msg Message) (string, error)
}

type disabledSender struct {
	reason string
}

// NewDisabledSender devuelve un Sender que siempre falla con ConfigurationError.
func NewDisabledSender(reason string) Sender {
	return &disabledSender{reason: reason}
}

func (s *disabledSender) Send(_ context.Context, _ Message) (string, error) {
	return "", &notification.ConfigurationError{Channel: domain.ChannelEmail, Reason: s.reason}
}

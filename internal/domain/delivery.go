package domain

import "time"

// Channel es el medio por el que se entrega una notificación.
type Channel string

const (
	ChannelEmail Channel = "email"
	ChannelSMS   Channel = "sms"
)

// DeliveryRecord registra un intento de entrega de notificación.
type DeliveryRecord struct {
	ID          string      `json:"id"`
	Channel     Channel     `json:"channel"`
	OrderNumber string      `json:"order_number"`
	Status      OrderStatus `json:"status"`
	Recipient   string      `json:"recipient"`
	Success     bool        `json:"success"`
	ProviderID  string      `json:"provider_id,omitempty"`
	Error       string      `json:"error,omitempty"`
	CreatedAt   time.Time   `json:"created_at"`
}

package domain

// OrderStatus es un estado del ciclo de vida de un pedido.
type OrderStatus string

const (
	StatusConfirmed      OrderStatus = "confirmed"
	StatusPreparing      OrderStatus = "preparing"
	StatusReady          OrderStatus = "ready"
	StatusOutForDelivery OrderStatus = "out_for_delivery"
	StatusDelivered      OrderStatus = "delivered"
	StatusCancelled      OrderStatus = "cancelled"
)

// KnownStatuses lista los estados con plantilla propia, en orden de ciclo de vida.
var KnownStatuses = []OrderStatus{
	StatusConfirmed,
	StatusPreparing,
	StatusReady,
	StatusOutForDelivery,
	StatusDelivered,
	StatusCancelled,
}

// Known reporta si el estado tiene plantilla propia.
func (s OrderStatus) Known() bool {
	for _, k := range KnownStatuses {
		if s == k {
			return true
		}
	}
	return false
}

// StatusUpdate es el evento de cambio de estado que dispara las notificaciones.
type StatusUpdate struct {
	OrderNumber   string      `json:"orderNumber"`
	Status        OrderStatus `json:"status"`
	StatusMessage string      `json:"statusMessage"`
	CustomerName  string      `json:"customerName"`
	CustomerEmail string      `json:"customerEmail,omitempty"`
	CustomerPhone string      `json:"customerPhone,omitempty"`
}

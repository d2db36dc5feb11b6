package notification

import (
	"fmt"

	"spicy-biryani/internal/domain"
)

// SMSRequest es el cuerpo que recibe el endpoint de SMS.
type SMSRequest struct {
	CustomerName  string             `json:"customerName"`
	CustomerPhone string             `json:"customerPhone"`
	OrderNumber   string             `json:"orderNumber"`
	Status        domain.OrderStatus `json:"status"`
	StatusMessage string             `json:"statusMessage"`
}

// SMSText compone el único mensaje de texto plano del aviso.
func SMSText(req SMSRequest) string {
	return fmt.Sprintf(
		"Dear %s, %s Order: %s. Track your order in real-time on our website. Thank you, Spicy Biryani!",
		req.CustomerName,
		req.StatusMessage,
		req.OrderNumber,
	)
}

// Package notification arma los textos de aviso de cambio de estado de un
// pedido (HTML para email, texto plano para SMS) y define los errores que
// comparten los transportes.
package notification

import (
	"bytes"
	"fmt"
	"html/template"

	"spicy-biryani/internal/chatbot"
	"spicy-biryani/internal/domain"
)

// EmailRequest es el cuerpo que recibe el endpoint de email.
type EmailRequest struct {
	CustomerName  string             `json:"customerName"`
	CustomerEmail string             `json:"customerEmail"`
	OrderNumber   string             `json:"orderNumber"`
	Status        domain.OrderStatus `json:"status"`
	StatusMessage string             `json:"statusMessage"`
}

// StatusStyle es el color y el ícono de un estado en el email.
type StatusStyle struct {
	Color string
	Icon  string
}

// FallbackStyle se usa para estados sin plantilla propia.
var FallbackStyle = StatusStyle{Color: "#dc2626", Icon: "📦"}

var statusStyles = map[domain.OrderStatus]StatusStyle{
	domain.StatusConfirmed:      {Color: "#3b82f6", Icon: "✓"},
	domain.StatusPreparing:      {Color: "#a855f7", Icon: "👨‍🍳"},
	domain.StatusReady:          {Color: "#f59e0b", Icon: "⏰"},
	domain.StatusOutForDelivery: {Color: "#f97316", Icon: "🚚"},
	domain.StatusDelivered:      {Color: "#10b981", Icon: "✅"},
	domain.StatusCancelled:      {Color: "#ef4444", Icon: "❌"},
}

var subjectFormats = map[domain.OrderStatus]string{
	domain.StatusConfirmed:      "Order Confirmed - %s",
	domain.StatusPreparing:      "Your Order is Being Prepared - %s",
	domain.StatusReady:          "Your Order is Ready - %s",
	domain.StatusOutForDelivery: "Your Order is Out for Delivery - %s",
	domain.StatusDelivered:      "Order Delivered - %s",
	domain.StatusCancelled:      "Order Cancelled - %s",
}

// StyleFor devuelve el estilo del estado o FallbackStyle.
func StyleFor(status domain.OrderStatus) StatusStyle {
	if style, ok := statusStyles[status]; ok {
		return style
	}
	return FallbackStyle
}

// Subject devuelve el asunto del email para el estado.
func Subject(status domain.OrderStatus, orderNumber string) string {
	format, ok := subjectFormats[status]
	if !ok {
		format = "Order Update - %s"
	}
	return fmt.Sprintf(format, orderNumber)
}

var emailTemplate = template.Must(template.New("status-email").Parse(`<!DOCTYPE html>
<html>
<head>
  <style>
    body { font-family: Arial, sans-serif; line-height: 1.6; color: #333; }
    .container { max-width: 600px; margin: 0 auto; padding: 20px; }
    .header { background: linear-gradient(135deg, #dc2626 0%, #ea580c 100%); color: white; padding: 30px; text-align: center; border-radius: 10px 10px 0 0; }
    .content { background: #fff; padding: 30px; border: 1px solid #e5e7eb; }
    .status-box { background: {{.Tint}}; border-left: 4px solid {{.Color}}; padding: 20px; border-radius: 8px; margin: 20px 0; }
    .status-icon { font-size: 48px; text-align: center; margin: 20px 0; }
    .status-message { font-size: 18px; color: {{.Color}}; font-weight: bold; text-align: center; margin: 10px 0; }
    .footer { text-align: center; padding: 20px; color: #6b7280; font-size: 14px; }
    .button { display: inline-block; padding: 12px 24px; background: {{.Color}}; color: white; text-decoration: none; border-radius: 8px; margin: 20px 0; }
  </style>
</head>
<body>
  <div class="container">
    <div class="header">
      <h1>🔥 Spicy Biryani</h1>
      <p>Order Status Update</p>
    </div>
    <div class="content">
      <h2>Dear {{.CustomerName}},</h2>
      <p>We have an update on your order!</p>

      <div class="status-box" data-status="{{.Status}}">
        <div class="status-icon">{{.Icon}}</div>
        <p class="status-message">{{.StatusMessage}}</p>
        <p class="order-number" style="text-align: center; margin-top: 10px;"><strong>Order Number:</strong> {{.OrderNumber}}</p>
      </div>

      <p>{{.StatusMessage}}. You can track your order in real-time on our website.</p>

      <p>Thank you for choosing Spicy Biryani!</p>
      <p>Best regards,<br>Spicy Biryani Team</p>
    </div>
    <div class="footer">
      <p>Need help? Contact us at {{.ContactPhone}}</p>
    </div>
  </div>
</body>
</html>
`))

type emailView struct {
	EmailRequest
	Color        template.CSS
	Tint         template.CSS
	Icon         string
	ContactPhone string
}

// RenderEmailHTML arma el cuerpo HTML; los campos del cliente se escapan.
func RenderEmailHTML(req EmailRequest) (string, error) {
	style := StyleFor(req.Status)
	// 15 en hex es ~8% de opacidad sobre el color del estado.
	tint := style.Color + "15"
	view := emailView{
		EmailRequest: req,
		Color:        template.CSS(style.Color),
		Tint:         template.CSS(tint),
		Icon:         style.Icon,
		ContactPhone: chatbot.ContactPhone,
	}
	var buf bytes.Buffer
	if err := emailTemplate.Execute(&buf, view); err != nil {
		return "", fmt.Errorf("render status email: %w", err)
	}
	return buf.String(), nil
}

package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"spicy-biryani/internal/domain"
	"spicy-biryani/internal/email"
	"spicy-biryani/internal/metrics"
	"spicy-biryani/internal/notification"
	"spicy-biryani/internal/repository"
	"spicy-biryani/internal/sms"
)

// NotificationService envía los avisos de cambio de estado y deja registro de
// cada intento. Un fallo al auditar nunca cambia el resultado del envío.
type NotificationService struct {
	logger      *zap.Logger
	emailSender email.Sender
	smsSender   sms.Sender
	deliveries  repository.DeliveryRepository
	now         func() time.Time
}

func NewNotificationService(logger *zap.Logger, emailSender email.Sender, smsSender sms.Sender, deliveries repository.DeliveryRepository) *NotificationService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if emailSender == nil {
		emailSender = email.NewDisabledSender("no email provider configured")
	}
	if smsSender == nil {
		smsSender = sms.NewDisabledSender("no sms provider configured")
	}
	return &NotificationService{
		logger:      logger,
		emailSender: emailSender,
		smsSender:   smsSender,
		deliveries:  deliveries,
		now:         func() time.Time { return time.Now().UTC() },
	}
}

// SendStatusEmail renderiza y envía el email. Devuelve el id del proveedor.
func (s *NotificationService) SendStatusEmail(ctx context.Context, req notification.EmailRequest) (string, error) {
	html, err := notification.RenderEmailHTML(req)
	if err != nil {
		return "", fmt.Errorf("render email: %w", err)
	}
	msg := email.Message{
		To:      req.CustomerEmail,
		Subject: notification.Subject(req.Status, req.OrderNumber),
		HTML:    html,
	}

	start := time.Now()
	id, err := s.emailSender.Send(ctx, msg)
	s.observe(domain.ChannelEmail, start, err)

	if err != nil {
		s.logger.Warn("status email failed",
			zap.String("order_number", req.OrderNumber),
			zap.String("status", string(req.Status)),
			zap.Error(err),
		)
	} else {
		s.logger.Info("status email sent",
			zap.String("order_number", req.OrderNumber),
			zap.String("status", string(req.Status)),
			zap.String("email_id", id),
		)
	}
	s.record(ctx, domain.ChannelEmail, req.OrderNumber, req.Status, req.CustomerEmail, id, err)
	return id, err
}

// SendStatusSMS envía el SMS. Sin credenciales deja el texto en el log y
// devuelve el ConfigurationError del sender.
func (s *NotificationService) SendStatusSMS(ctx context.Context, req notification.SMSRequest) (string, error) {
	body := notification.SMSText(req)

	start := time.Now()
	sid, err := s.smsSender.Send(ctx, req.CustomerPhone, body)
	s.observe(domain.ChannelSMS, start, err)

	var cfgErr *notification.ConfigurationError
	switch {
	case errors.As(err, &cfgErr):
		s.logger.Warn("sms service not configured, message logged",
			zap.String("to", req.CustomerPhone),
			zap.String("order_number", req.OrderNumber),
			zap.String("message", body),
		)
	case err != nil:
		s.logger.Warn("status sms failed",
			zap.String("order_number", req.OrderNumber),
			zap.String("status", string(req.Status)),
			zap.Error(err),
		)
	default:
		s.logger.Info("status sms sent",
			zap.String("order_number", req.OrderNumber),
			zap.String("status", string(req.Status)),
			zap.String("message_sid", sid),
		)
	}
	s.record(ctx, domain.ChannelSMS, req.OrderNumber, req.Status, req.CustomerPhone, sid, err)
	return sid, err
}

// ListDeliveries devuelve los intentos registrados, más recientes primero.
func (s *NotificationService) ListDeliveries(ctx context.Context, orderNumber string, limit int) ([]domain.DeliveryRecord, error) {
	if s.deliveries == nil {
		return []domain.DeliveryRecord{}, nil
	}
	return s.deliveries.ListByOrderNumber(ctx, orderNumber, limit)
}

func (s *NotificationService) observe(channel domain.Channel, start time.Time, err error) {
	outcome := deliveryOutcome(err)
	metrics.NotificationsTotal.WithLabelValues(string(channel), outcome).Inc()
	if outcome != "not_configured" {
		metrics.ProviderLatency.WithLabelValues(string(channel)).Observe(time.Since(start).Seconds())
	}
}

func (s *NotificationService) record(ctx context.Context, channel domain.Channel, orderNumber string, status domain.OrderStatus, recipient, providerID string, sendErr error) {
	if s.deliveries == nil {
		return
	}
	rec := domain.DeliveryRecord{
		ID:          uuid.NewString(),
		Channel:     channel,
		OrderNumber: orderNumber,
		Status:      status,
		Recipient:   recipient,
		Success:     sendErr == nil,
		ProviderID:  providerID,
		CreatedAt:   s.now(),
	}
	if sendErr != nil {
		rec.Error = sendErr.Error()
	}
	if err := s.deliveries.Create(ctx, rec); err != nil {
		s.logger.Warn("delivery audit failed",
			zap.String("channel", string(channel)),
			zap.String("order_number", orderNumber),
			zap.Error(err),
		)
	}
}

func deliveryOutcome(err error) string {
	if err == nil {
		return "sent"
	}
	var cfgErr *notification.ConfigurationError
	if errors.As(err, &cfgErr) {
		return "not_configured"
	}
	var pErr *notification.ProviderError
	if errors.As(err, &pErr) {
		return "provider_error"
	}
	return "error"
}

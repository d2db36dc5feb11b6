package service

import (
	"context"
	"errors"
	"strings"
	"sync"

	"spicy-biryani/internal/domain"
	"spicy-biryani/internal/notification"
)

var ErrInvalidStatusUpdate = errors.New("invalid status update")

// StatusNotifier es lo que el dispatcher necesita de NotificationService.
type StatusNotifier interface {
	SendStatusEmail(ctx context.Context, req notification.EmailRequest) (string, error)
	SendStatusSMS(ctx context.Context, req notification.SMSRequest) (string, error)
}

// ChannelResult es el resultado de un canal. Skipped indica que no había destinatario.
type ChannelResult struct {
	ProviderID string
	Skipped    bool
	Err        error
}

type DispatchResult struct {
	Email ChannelResult
	SMS   ChannelResult
}

// StatusDispatcher es la fuente de eventos de cambio de estado: dispara email y
// SMS de forma independiente y concurrente, sin reintentos.
type StatusDispatcher struct {
	notifier StatusNotifier
}

func NewStatusDispatcher(notifier StatusNotifier) *StatusDispatcher {
	return &StatusDispatcher{notifier: notifier}
}

func (d *StatusDispatcher) Dispatch(ctx context.Context, update domain.StatusUpdate) (DispatchResult, error) {
	update.OrderNumber = strings.TrimSpace(update.OrderNumber)
	update.Status = domain.OrderStatus(strings.TrimSpace(string(update.Status)))
	if update.OrderNumber == "" || update.Status == "" {
		return DispatchResult{}, ErrInvalidStatusUpdate
	}

	result := DispatchResult{
		Email: ChannelResult{Skipped: strings.TrimSpace(update.CustomerEmail) == ""},
		SMS:   ChannelResult{Skipped: strings.TrimSpace(update.CustomerPhone) == ""},
	}

	var wg sync.WaitGroup
	if !result.Email.Skipped {
		wg.Add(1)
		go func() {
			defer wg.Done()
			result.Email.ProviderID, result.Email.Err = d.notifier.SendStatusEmail(ctx, notification.EmailRequest{
				CustomerName:  update.CustomerName,
				CustomerEmail: update.CustomerEmail,
				OrderNumber:   update.OrderNumber,
				Status:        update.Status,
				StatusMessage: update.StatusMessage,
			})
		}()
	}
	if !result.SMS.Skipped {
		wg.Add(1)
		go func() {
			defer wg.Done()
			result.SMS.ProviderID, result.SMS.Err = d.notifier.SendStatusSMS(ctx, notification.SMSRequest{
				CustomerName:  update.CustomerName,
				CustomerPhone: update.CustomerPhone,
				OrderNumber:   update.OrderNumber,
				Status:        update.Status,
				StatusMessage: update.StatusMessage,
			})
		}()
	}
	wg.Wait()

	return result, nil
}

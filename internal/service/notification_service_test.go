package service

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"spicy-biryani/internal/domain"
	"spicy-biryani/internal/email"
	"spicy-biryani/internal/metrics"
	"spicy-biryani/internal/notification"
	"spicy-biryani/internal/repository"
	"spicy-biryani/internal/sms"
)

type mockEmailSender struct {
	last email.Message
	id   string
	err  error
}

func (m *mockEmailSender) Send(_ context.Context, msg email.Message) (string, error) {
	m.last = msg
	return m.id, m.err
}

type mockSMSSender struct {
	lastTo   string
	lastBody string
	sid      string
	err      error
}

func (m *mockSMSSender) Send(_ context.Context, to, body string) (string, error) {
	m.lastTo = to
	m.lastBody = body
	return m.sid, m.err
}

type failingDeliveryRepo struct{}

func (failingDeliveryRepo) Create(context.Context, domain.DeliveryRecord) error {
	return errors.New("db down")
}

func (failingDeliveryRepo) ListByOrderNumber(context.Context, string, int) ([]domain.DeliveryRecord, error) {
	return nil, errors.New("db down")
}

func TestNotificationService_SendStatusEmail(t *testing.T) {
	sender := &mockEmailSender{id: "email-123"}
	repo := repository.NewMemoryDeliveryRepository()
	svc := NewNotificationService(zap.NewNop(), sender, nil, repo)
	before := testutil.ToFloat64(metrics.NotificationsTotal.WithLabelValues("email", "sent"))

	id, err := svc.SendStatusEmail(context.Background(), notification.EmailRequest{
		CustomerName:  "Asha",
		CustomerEmail: "asha@example.com",
		OrderNumber:   "SB-1001",
		Status:        domain.StatusOutForDelivery,
		StatusMessage: "Your order is on its way.",
	})
	if err != nil {
		t.Fatalf("send: %v", err)
	}
	if id != "email-123" {
		t.Fatalf("expected provider id, got %q", id)
	}
	if sender.last.To != "asha@example.com" || sender.last.Subject != "Your Order is Out for Delivery - SB-1001" {
		t.Fatalf("unexpected message %+v", sender.last)
	}
	if !strings.Contains(sender.last.HTML, "SB-1001") {
		t.Fatalf("expected html to contain order number")
	}

	records, _ := svc.ListDeliveries(context.Background(), "SB-1001", 0)
	if len(records) != 1 || !records[0].Success || records[0].ProviderID != "email-123" || records[0].Channel != domain.ChannelEmail {
		t.Fatalf("unexpected audit records %+v", records)
	}
	if got := testutil.ToFloat64(metrics.NotificationsTotal.WithLabelValues("email", "sent")); got != before+1 {
		t.Fatalf("expected sent counter to increase")
	}
}

func TestNotificationService_EmailProviderError(t *testing.T) {
	pErr := &notification.ProviderError{Provider: "resend", StatusCode: 422, Message: "invalid to"}
	repo := repository.NewMemoryDeliveryRepository()
	svc := NewNotificationService(zap.NewNop(), &mockEmailSender{err: pErr}, nil, repo)

	_, err := svc.SendStatusEmail(context.Background(), notification.EmailRequest{OrderNumber: "SB-2", Status: "weird"})
	var got *notification.ProviderError
	if !errors.As(err, &got) || got.StatusCode != 422 {
		t.Fatalf("expected provider error to pass through, got %v", err)
	}
	records, _ := repo.ListByOrderNumber(context.Background(), "SB-2", 0)
	if len(records) != 1 || records[0].Success || records[0].Error == "" {
		t.Fatalf("expected failed audit record, got %+v", records)
	}
}

func TestNotificationService_SMSNotConfiguredLogsMessage(t *testing.T) {
	core, logs := observer.New(zap.WarnLevel)
	svc := NewNotificationService(zap.New(core), nil, sms.NewDisabledSender("twilio credentials missing"), nil)

	_, err := svc.SendStatusSMS(context.Background(), notification.SMSRequest{
		CustomerName:  "Ravi",
		CustomerPhone: "+919000000000",
		OrderNumber:   "SB-7",
		Status:        domain.StatusReady,
		StatusMessage: "Your order is ready.",
	})
	if !errors.Is(err, notification.ErrNotConfigured) {
		t.Fatalf("expected ErrNotConfigured, got %v", err)
	}

	entries := logs.FilterMessage("sms service not configured, message logged").All()
	if len(entries) != 1 {
		t.Fatalf("expected would-be sms to be logged once, got %d", len(entries))
	}
	fields := entries[0].ContextMap()
	if fields["to"] != "+919000000000" {
		t.Fatalf("expected recipient in log, got %v", fields["to"])
	}
	want := "Dear Ravi, Your order is ready. Order: SB-7. Track your order in real-time on our website. Thank you, Spicy Biryani!"
	if fields["message"] != want {
		t.Fatalf("unexpected logged message %v", fields["message"])
	}
}

func TestNotificationService_SendStatusSMS(t *testing.T) {
	sender := &mockSMSSender{sid: "SM1"}
	svc := NewNotificationService(zap.NewNop(), nil, sender, failingDeliveryRepo{})

	sid, err := svc.SendStatusSMS(context.Background(), notification.SMSRequest{
		CustomerName:  "Ravi",
		CustomerPhone: "+919000000000",
		OrderNumber:   "SB-8",
		Status:        domain.StatusDelivered,
		StatusMessage: "Enjoy!",
	})
	if err != nil {
		t.Fatalf("audit failure must not fail the send, got %v", err)
	}
	if sid != "SM1" || sender.lastTo != "+919000000000" || !strings.HasPrefix(sender.lastBody, "Dear Ravi, Enjoy!") {
		t.Fatalf("unexpected sms call sid=%q to=%q body=%q", sid, sender.lastTo, sender.lastBody)
	}
}

func TestDeliveryOutcome(t *testing.T) {
	cases := []struct {
		err  error
		want string
	}{
		{nil, "sent"},
		{&notification.ConfigurationError{Channel: domain.ChannelEmail}, "not_configured"},
		{&notification.ProviderError{StatusCode: 500}, "provider_error"},
		{errors.New("boom"), "error"},
	}
	for _, tc := range cases {
		if got := deliveryOutcome(tc.err); got != tc.want {
			t.Fatalf("err %v: expected %s, got %s", tc.err, tc.want, got)
		}
	}
}

type recordingNotifier struct {
	mu     sync.Mutex
	emails []notification.EmailRequest
	sms    []notification.SMSRequest
	smsErr error
}

func (r *recordingNotifier) SendStatusEmail(_ context.Context, req notification.EmailRequest) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.emails = append(r.emails, req)
	return "email-1", nil
}

func (r *recordingNotifier) SendStatusSMS(_ context.Context, req notification.SMSRequest) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sms = append(r.sms, req)
	return "", r.smsErr
}

func TestStatusDispatcher_Dispatch(t *testing.T) {
	t.Run("both channels independent", func(t *testing.T) {
		smsErr := &notification.ConfigurationError{Channel: domain.ChannelSMS}
		notifier := &recordingNotifier{smsErr: smsErr}
		d := NewStatusDispatcher(notifier)

		res, err := d.Dispatch(context.Background(), domain.StatusUpdate{
			OrderNumber:   " SB-5 ",
			Status:        domain.StatusPreparing,
			StatusMessage: "Cooking now.",
			CustomerName:  "Meera",
			CustomerEmail: "meera@example.com",
			CustomerPhone: "+911234",
		})
		if err != nil {
			t.Fatalf("dispatch: %v", err)
		}
		if res.Email.Err != nil || res.Email.ProviderID != "email-1" || res.Email.Skipped {
			t.Fatalf("unexpected email result %+v", res.Email)
		}
		if !errors.Is(res.SMS.Err, notification.ErrNotConfigured) {
			t.Fatalf("expected sms config error, got %+v", res.SMS)
		}
		if len(notifier.emails) != 1 || notifier.emails[0].OrderNumber != "SB-5" {
			t.Fatalf("unexpected email requests %+v", notifier.emails)
		}
		if len(notifier.sms) != 1 || notifier.sms[0].CustomerPhone != "+911234" {
			t.Fatalf("unexpected sms requests %+v", notifier.sms)
		}
	})

	t.Run("skips channel without recipient", func(t *testing.T) {
		notifier := &recordingNotifier{}
		res, err := NewStatusDispatcher(notifier).Dispatch(context.Background(), domain.StatusUpdate{
			OrderNumber:   "SB-6",
			Status:        domain.StatusDelivered,
			CustomerEmail: "x@example.com",
		})
		if err != nil {
			t.Fatalf("dispatch: %v", err)
		}
		if !res.SMS.Skipped || len(notifier.sms) != 0 {
			t.Fatalf("expected sms skipped, got %+v", res.SMS)
		}
		if res.Email.Skipped || len(notifier.emails) != 1 {
			t.Fatalf("expected email sent, got %+v", res.Email)
		}
	})

	t.Run("rejects missing order number", func(t *testing.T) {
		_, err := NewStatusDispatcher(&recordingNotifier{}).Dispatch(context.Background(), domain.StatusUpdate{Status: domain.StatusReady})
		if !errors.Is(err, ErrInvalidStatusUpdate) {
			t.Fatalf("expected ErrInvalidStatusUpdate, got %v", err)
		}
	})
}

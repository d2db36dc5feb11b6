package sms

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"spicy-biryani/internal/notification"
)

func TestTwilioSenderSuccess(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/2010-04-01/Accounts/AC123/Messages.json" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		user, pass, ok := r.BasicAuth()
		if !ok || user != "AC123" || pass != "secret" {
			t.Errorf("unexpected basic auth %q %q", user, pass)
		}
		if err := r.ParseForm(); err != nil {
			t.Errorf("parse form: %v", err)
		}
		if r.PostForm.Get("To") != "+15550001" || r.PostForm.Get("From") != "+15559999" || r.PostForm.Get("Body") != "hello" {
			t.Errorf("unexpected form %v", r.PostForm)
		}
		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`{"sid":"SM42"}`))
	}))
	defer srv.Close()

	s, err := NewTwilioSender(srv.URL, "AC123", "secret", "+15559999", srv.Client())
	if err != nil {
		t.Fatalf("new sender: %v", err)
	}
	sid, err := s.Send(context.Background(), "+15550001", "hello")
	if err != nil {
		t.Fatalf("send: %v", err)
	}
	if sid != "SM42" {
		t.Fatalf("expected SM42, got %q", sid)
	}
}

func TestTwilioSenderProviderError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"code":21211,"message":"The 'To' number is not valid.","more_info":"https://www.twilio.com/docs/errors/21211","status":400}`))
	}))
	defer srv.Close()

	s, _ := NewTwilioSender(srv.URL, "AC123", "secret", "+15559999", srv.Client())
	_, err := s.Send(context.Background(), "bad", "hello")
	var pErr *notification.ProviderError
	if !errors.As(err, &pErr) {
		t.Fatalf("expected ProviderError, got %v", err)
	}
	if pErr.StatusCode != http.StatusBadRequest || pErr.Message != "The 'To' number is not valid." {
		t.Fatalf("unexpected provider error %+v", pErr)
	}
}

func TestTwilioSenderUnreadableErrorBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
		_, _ = w.Write([]byte("upstream down"))
	}))
	defer srv.Close()

	s, _ := NewTwilioSender(srv.URL, "AC123", "secret", "+15559999", srv.Client())
	_, err := s.Send(context.Background(), "+15550001", "hello")
	var pErr *notification.ProviderError
	if !errors.As(err, &pErr) {
		t.Fatalf("expected ProviderError, got %v", err)
	}
	if pErr.StatusCode != http.StatusServiceUnavailable || pErr.Message != "Failed to send SMS" {
		t.Fatalf("unexpected provider error %+v", pErr)
	}
}

func TestTwilioSenderHonoursContext(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`{"sid":"SM42"}`))
	}))
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	s, _ := NewTwilioSender(srv.URL, "AC123", "secret", "+15559999", srv.Client())
	_, err := s.Send(ctx, "+15550001", "hello")
	if err == nil {
		t.Fatalf("expected cancelled send to fail")
	}
	var pErr *notification.ProviderError
	if errors.As(err, &pErr) {
		t.Fatalf("cancelled send must not look like a provider reply: %v", err)
	}
}

func TestNewTwilioSenderRequiresCredentials(t *testing.T) {
	if _, err := NewTwilioSender("", "AC123", "", "+1555", nil); err == nil {
		t.Fatalf("expected error when auth token missing")
	}
}

func TestDisabledSender(t *testing.T) {
	_, err := NewDisabledSender("twilio credentials missing").Send(context.Background(), "+1", "x")
	if !errors.Is(err, notification.ErrNotConfigured) {
		t.Fatalf("expected ErrNotConfigured, got %v", err)
	}
}

package email

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/resend/resend-go/v2"

	"spicy-biryani/internal/notification"
)

// ResendSender envía emails con el SDK de Resend.
type ResendSender struct {
	client *resend.Client
	from   string
}

// NewResendSender construye el cliente; apiKey vacío es un error de configuración.
// baseURL vacío usa la API pública de Resend.
func NewResendSender(baseURL, apiKey, from string, httpClient *http.Client) (*ResendSender, error) {
	if strings.TrimSpace(apiKey) == "" {
		return nil, fmt.Errorf("resend api key is required")
	}
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 15 * time.Second}
	}
	recording := *httpClient
	recording.Transport = &statusRecorder{next: httpClient.Transport}

	client := resend.NewCustomClient(&recording, apiKey)
	if baseURL != "" {
		u, err := url.Parse(strings.TrimRight(baseURL, "/") + "/")
		if err != nil {
			return nil, fmt.Errorf("parse resend base url: %w", err)
		}
		client.BaseURL = u
	}
	return &ResendSender{client: client, from: from}, nil
}

func (s *ResendSender) Send(ctx context.Context, msg Message) (string, error) {
	status := &providerReply{}
	ctx = context.WithValue(ctx, providerReplyKey{}, status)

	sent, err := s.client.Emails.SendWithContext(ctx, &resend.SendEmailRequest{
		From:    s.from,
		To:      []string{msg.To},
		Subject: msg.Subject,
		Html:    msg.HTML,
	})
	if err != nil {
		return "", resendError(status, err)
	}
	return sent.Id, nil
}

// resendError traduce el fallo del SDK a ProviderError usando la respuesta HTTP
// observada, porque el SDK no expone el código de estado.
func resendError(reply *providerReply, err error) error {
	if reply.code == 0 {
		return fmt.Errorf("resend send: %w", err)
	}
	if reply.code >= 200 && reply.code < 300 {
		return fmt.Errorf("decode resend response: %w", err)
	}
	message := reply.message
	if message == "" || message == "Unknown Error" || message == reply.status {
		message = "Failed to send email"
	}
	return &notification.ProviderError{Provider: "resend", StatusCode: reply.code, Message: message}
}

type providerReplyKey struct{}

// providerReply guarda el estado y el mensaje de error de la última respuesta.
type providerReply struct {
	code    int
	status  string
	message string
}

// statusRecorder anota en el providerReply del contexto la respuesta recibida
// sin consumir el cuerpo que el SDK decodifica después.
type statusRecorder struct {
	next http.RoundTripper
}

func (r *statusRecorder) RoundTrip(req *http.Request) (*http.Response, error) {
	next := r.next
	if next == nil {
		next = http.DefaultTransport
	}
	resp, err := next.RoundTrip(req)
	if err != nil {
		return nil, err
	}
	reply, ok := req.Context().Value(providerReplyKey{}).(*providerReply)
	if !ok {
		return resp, nil
	}
	reply.code = resp.StatusCode
	reply.status = resp.Status
	if resp.StatusCode >= 300 {
		body, readErr := io.ReadAll(resp.Body)
		resp.Body.Close()
		if readErr != nil {
			return nil, readErr
		}
		var payload struct {
			Message string `json:"message"`
		}
		if json.Unmarshal(body, &payload) == nil {
			reply.message = strings.TrimSpace(payload.Message)
		}
		resp.Body = io.NopCloser(bytes.NewReader(body))
	}
	return resp, nil
}

package sms

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/twilio/twilio-go/client"
	openapi "github.com/twilio/twilio-go/rest/api/v2010"

	"spicy-biryani/internal/domain"
	"spicy-biryani/internal/notification"
)

// Sender define la interfaz para el envío de SMS. Devuelve el sid del proveedor.
type Sender interface {
	Send(ctx context.Context, to, body string) (string, error)
}

type disabledSender struct {
	reason string
}

// NewDisabledSender devuelve un Sender que siempre falla con ConfigurationError
// sin tocar la red.
func NewDisabledSender(reason string) Sender {
	return &disabledSender{reason: reason}
}

func (s *disabledSender) Send(_ context.Context, _, _ string) (string, error) {
	return "", &notification.ConfigurationError{Channel: domain.ChannelSMS, Reason: s.reason}
}

// TwilioSender envía SMS con el SDK de Twilio.
type TwilioSender struct {
	target     *url.URL
	accountSID string
	authToken  string
	from       string
	httpClient *http.Client
}

const twilioAPIBase = "https://api.twilio.com"

// NewTwilioSender exige sid, token y número de origen. baseURL vacío usa la API
// pública; otro valor redirige las peticiones del SDK a ese host.
func NewTwilioSender(baseURL, accountSID, authToken, from string, httpClient *http.Client) (*TwilioSender, error) {
	if strings.TrimSpace(accountSID) == "" || strings.TrimSpace(authToken) == "" || strings.TrimSpace(from) == "" {
		return nil, fmt.Errorf("twilio account sid, auth token and phone number are required")
	}
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 15 * time.Second}
	}
	s := &TwilioSender{
		accountSID: accountSID,
		authToken:  authToken,
		from:       from,
		httpClient: httpClient,
	}
	if baseURL != "" && strings.TrimRight(baseURL, "/") != twilioAPIBase {
		u, err := url.Parse(baseURL)
		if err != nil || u.Host == "" {
			return nil, fmt.Errorf("invalid twilio base url %q", baseURL)
		}
		s.target = u
	}
	return s, nil
}

func (s *TwilioSender) Send(ctx context.Context, to, body string) (string, error) {
	reply := &twilioTransport{ctx: ctx, target: s.target, next: s.httpClient.Transport}
	hc := *s.httpClient
	hc.Transport = reply

	c := &client.Client{
		Credentials: client.NewCredentials(s.accountSID, s.authToken),
		HTTPClient:  &hc,
	}
	c.SetAccountSid(s.accountSID)
	api := openapi.NewApiServiceWithClient(c)

	params := &openapi.CreateMessageParams{}
	params.SetTo(to)
	params.SetFrom(s.from)
	params.SetBody(body)

	msg, err := api.CreateMessage(params)
	if err != nil {
		return "", twilioError(reply.code, err)
	}
	if msg.Sid == nil {
		return "", fmt.Errorf("twilio response without message sid")
	}
	return *msg.Sid, nil
}

func twilioError(code int, err error) error {
	var restErr *client.TwilioRestError
	if errors.As(err, &restErr) {
		status := restErr.Status
		if status == 0 {
			status = code
		}
		if status == 0 {
			status = http.StatusBadGateway
		}
		message := strings.TrimSpace(restErr.Message)
		if message == "" {
			message = "Failed to send SMS"
		}
		return &notification.ProviderError{Provider: "twilio", StatusCode: status, Message: message}
	}
	if code >= 300 {
		return &notification.ProviderError{Provider: "twilio", StatusCode: code, Message: "Failed to send SMS"}
	}
	return fmt.Errorf("twilio send: %w", err)
}

// twilioTransport ata cada petición del SDK al contexto del envío, la redirige
// al host configurado y recuerda el código de estado recibido.
type twilioTransport struct {
	ctx    context.Context
	target *url.URL
	next   http.RoundTripper
	code   int
}

func (t *twilioTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	req = req.Clone(t.ctx)
	if t.target != nil {
		req.URL.Scheme = t.target.Scheme
		req.URL.Host = t.target.Host
		req.Host = t.target.Host
	}
	next := t.next
	if next == nil {
		next = http.DefaultTransport
	}
	resp, err := next.RoundTrip(req)
	if err != nil {
		return nil, err
	}
	t.code = resp.StatusCode
	return resp, nil
}

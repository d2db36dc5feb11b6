package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestMetricsRegistered(t *testing.T) {
	HTTPRequestsTotal.WithLabelValues("GET", "/healthz", "2xx").Inc()
	ChatRepliesTotal.WithLabelValues("greeting").Inc()
	ActiveConversations.Set(0)
	NotificationsTotal.WithLabelValues("email", "sent").Inc()
	ProviderLatency.WithLabelValues("email").Observe(0.2)
	RateLimitRejectedTotal.Inc()

	families, err := prometheus.DefaultGatherer.Gather()
	if err != nil {
		t.Fatalf("unexpected gather error: %v", err)
	}

	expected := map[string]bool{
		"biryani_http_requests_total":                   false,
		"biryani_chat_replies_total":                    false,
		"biryani_chat_conversations_active":             false,
		"biryani_notifications_total":                   false,
		"biryani_notification_provider_latency_seconds": false,
		"biryani_chat_ratelimit_rejected_total":         false,
	}
	for _, mf := range families {
		if _, ok := expected[mf.GetName()]; ok {
			expected[mf.GetName()] = true
		}
	}
	for name, found := range expected {
		if !found {
			t.Errorf("metric %s not registered", name)
		}
	}
}

func TestNotificationsCounter(t *testing.T) {
	before := testutil.ToFloat64(NotificationsTotal.WithLabelValues("sms", "not_configured"))
	NotificationsTotal.WithLabelValues("sms", "not_configured").Inc()
	after := testutil.ToFloat64(NotificationsTotal.WithLabelValues("sms", "not_configured"))
	if after != before+1 {
		t.Fatalf("expected counter to increase by 1, got %v -> %v", before, after)
	}
}

func TestStatusClass(t *testing.T) {
	cases := map[int]string{200: "2xx", 204: "2xx", 301: "3xx", 404: "4xx", 429: "4xx", 500: "5xx", 502: "5xx"}
	for code, want := range cases {
		if got := StatusClass(code); got != want {
			t.Fatalf("code %d: expected %s, got %s", code, want, got)
		}
	}
}

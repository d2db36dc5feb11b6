package notification

import (
	"strings"
	"testing"

	"github.com/PuerkitoBio/goquery"

	"spicy-biryani/internal/domain"
)

func renderDoc(t *testing.T, req EmailRequest) (*goquery.Document, string) {
	t.Helper()
	html, err := RenderEmailHTML(req)
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		t.Fatalf("parse html: %v", err)
	}
	return doc, html
}

func TestRenderEmailHTML_DeliveredUsesStatusStyle(t *testing.T) {
	doc, _ := renderDoc(t, EmailRequest{
		CustomerName:  "Asha",
		CustomerEmail: "asha@example.com",
		OrderNumber:   "ORD-42",
		Status:        domain.StatusDelivered,
		StatusMessage: "Your order has been delivered",
	})

	if icon := strings.TrimSpace(doc.Find(".status-icon").Text()); icon != "✅" {
		t.Fatalf("expected delivered icon, got %q", icon)
	}
	css := doc.Find("style").Text()
	if !strings.Contains(css, "border-left: 4px solid #10b981") {
		t.Fatalf("expected delivered color in css, got %s", css)
	}
	if strings.Contains(css, FallbackStyle.Color+";") {
		t.Fatalf("delivered email must not use fallback color")
	}
	if !strings.Contains(css, "background: #10b98115") {
		t.Fatalf("expected tinted status box background")
	}
	if got := doc.Find("h2").Text(); got != "Dear Asha," {
		t.Fatalf("unexpected greeting %q", got)
	}
	if !strings.Contains(doc.Find(".order-number").Text(), "ORD-42") {
		t.Fatalf("expected order number in status box")
	}
}

func TestRenderEmailHTML_UnknownStatusUsesFallback(t *testing.T) {
	doc, _ := renderDoc(t, EmailRequest{
		CustomerName:  "Ravi",
		OrderNumber:   "ORD-7",
		Status:        "refunded",
		StatusMessage: "Refund issued",
	})

	if icon := strings.TrimSpace(doc.Find(".status-icon").Text()); icon != FallbackStyle.Icon {
		t.Fatalf("expected fallback icon, got %q", icon)
	}
	if !strings.Contains(doc.Find("style").Text(), "color: "+FallbackStyle.Color) {
		t.Fatalf("expected fallback color")
	}
	if got := Subject("refunded", "ORD-7"); got != "Order Update - ORD-7" {
		t.Fatalf("unexpected fallback subject %q", got)
	}
}

func TestRenderEmailHTML_EscapesCustomerFields(t *testing.T) {
	doc, html := renderDoc(t, EmailRequest{
		CustomerName:  "<script>alert(1)</script>",
		OrderNumber:   "ORD-1",
		Status:        domain.StatusReady,
		StatusMessage: "Ready",
	})
	if strings.Contains(html, "<script>") {
		t.Fatalf("customer name must be escaped")
	}
	if got := doc.Find("h2").Text(); got != "Dear <script>alert(1)</script>," {
		t.Fatalf("unexpected decoded greeting %q", got)
	}
}

func TestSubjectPerStatus(t *testing.T) {
	cases := map[domain.OrderStatus]string{
		domain.StatusConfirmed:      "Order Confirmed - N1",
		domain.StatusPreparing:      "Your Order is Being Prepared - N1",
		domain.StatusReady:          "Your Order is Ready - N1",
		domain.StatusOutForDelivery: "Your Order is Out for Delivery - N1",
		domain.StatusDelivered:      "Order Delivered - N1",
		domain.StatusCancelled:      "Order Cancelled - N1",
		"":                          "Order Update - N1",
	}
	for status, want := range cases {
		if got := Subject(status, "N1"); got != want {
			t.Fatalf("status %q: expected %q, got %q", status, want, got)
		}
	}
}

func TestStyleForKnownStatuses(t *testing.T) {
	for _, status := range domain.KnownStatuses {
		if StyleFor(status) == FallbackStyle {
			t.Fatalf("status %s should have its own style", status)
		}
	}
	if StyleFor("unknown") != FallbackStyle {
		t.Fatalf("unknown status should use fallback")
	}
}

func TestSMSText(t *testing.T) {
	got := SMSText(SMSRequest{
		CustomerName:  "Asha",
		CustomerPhone: "+15550001",
		OrderNumber:   "ORD-42",
		Status:        domain.StatusOutForDelivery,
		StatusMessage: "Your order is on its way!",
	})
	want := "Dear Asha, Your order is on its way! Order: ORD-42. Track your order in real-time on our website. Thank you, Spicy Biryani!"
	if got != want {
		t.Fatalf("unexpected sms text:\n got %q\nwant %q", got, want)
	}
}

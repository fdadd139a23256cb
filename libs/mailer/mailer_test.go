package mailer

import (
	"io"
	"log/slog"
	"strings"
	"testing"
)

type captureProvider struct {
	last Notice
}

func (p *captureProvider) Name() string { return "capture" }

func (p *captureProvider) Deliver(notice Notice) (Delivery, error) {
	p.last = notice
	return Delivery{ProviderMessageID: "captured"}, nil
}

func TestSendFillsDefaultFromAddress(t *testing.T) {
	provider := &captureProvider{}
	m := New(provider, "noreply@wasteops.local")

	if _, err := m.Send(Notice{To: []string{"ward@example.com"}, Subject: "Escalated"}); err != nil {
		t.Fatalf("send: %v", err)
	}
	if provider.last.From != "noreply@wasteops.local" {
		t.Fatalf("expected default from address, got %q", provider.last.From)
	}

	if _, err := m.Send(Notice{From: "ops@example.com", To: []string{"ward@example.com"}}); err != nil {
		t.Fatalf("send: %v", err)
	}
	if provider.last.From != "ops@example.com" {
		t.Fatalf("explicit from address overridden: %q", provider.last.From)
	}
}

func TestLogProviderDeliver(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	provider := NewLogProvider(logger)

	delivery, err := provider.Deliver(Notice{
		From:    "noreply@wasteops.local",
		To:      []string{"ward@example.com"},
		Subject: "Grievance escalated",
		Text:    "Complaint #12 was escalated.",
	})
	if err != nil {
		t.Fatalf("deliver: %v", err)
	}
	if !strings.HasPrefix(delivery.ProviderMessageID, "log-") {
		t.Fatalf("unexpected message id: %q", delivery.ProviderMessageID)
	}
}

func TestProviderNames(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	if got := NewLogProvider(logger).Name(); got != "log" {
		t.Fatalf("log provider name = %q", got)
	}
	if got := NewResendProvider("fake-key").Name(); got != "resend" {
		t.Fatalf("resend provider name = %q", got)
	}
	m := New(NewLogProvider(logger), "noreply@wasteops.local")
	if got := m.ProviderName(); got != "log" {
		t.Fatalf("mailer provider name = %q", got)
	}
}

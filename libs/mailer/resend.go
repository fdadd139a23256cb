package mailer

import (
	"fmt"

	"github.com/resend/resend-go/v2"
)

// ResendProvider delivers notices via the Resend API.
type ResendProvider struct {
	client *resend.Client
}

// NewResendProvider creates a Resend provider with the given API key.
func NewResendProvider(apiKey string) *ResendProvider {
	return &ResendProvider{client: resend.NewClient(apiKey)}
}

func (r *ResendProvider) Name() string { return "resend" }

// Deliver sends the notice through Resend.
func (r *ResendProvider) Deliver(notice Notice) (Delivery, error) {
	params := &resend.SendEmailRequest{
		From:    notice.From,
		To:      notice.To,
		Subject: notice.Subject,
		Html:    notice.HTML,
	}
	if notice.Text != "" {
		params.Text = notice.Text
	}

	sent, err := r.client.Emails.Send(params)
	if err != nil {
		return Delivery{}, fmt.Errorf("resend delivery failed: %w", err)
	}
	return Delivery{ProviderMessageID: sent.Id}, nil
}

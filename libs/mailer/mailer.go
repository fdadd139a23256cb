// Package mailer sends operational notifications for the portal, such as
// grievance escalation notices to ward staff.
package mailer

// Notice is one notification to deliver.
type Notice struct {
	From    string
	To      []string
	Subject string
	HTML    string
	Text    string
}

// Delivery contains the provider's response.
type Delivery struct {
	ProviderMessageID string
}

// Provider delivers notices via a specific backend.
type Provider interface {
	Name() string
	Deliver(notice Notice) (Delivery, error)
}

// Mailer is the entry point for sending notices.
type Mailer struct {
	provider    Provider
	fromAddress string
}

// New creates a Mailer with the given provider and default sender address.
func New(provider Provider, fromAddress string) *Mailer {
	return &Mailer{provider: provider, fromAddress: fromAddress}
}

// Send delivers a notice via the configured provider. An empty From falls
// back to the default sender address.
func (m *Mailer) Send(notice Notice) (Delivery, error) {
	if notice.From == "" {
		notice.From = m.fromAddress
	}
	return m.provider.Deliver(notice)
}

// ProviderName returns the name of the configured provider.
func (m *Mailer) ProviderName() string {
	return m.provider.Name()
}

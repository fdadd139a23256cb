package mailer

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/uuid"
)

// LogProvider logs notices instead of sending them. It is the fallback when
// no delivery API key is configured, which keeps development environments
// from mailing real ward staff.
type LogProvider struct {
	Logger *slog.Logger
}

// NewLogProvider creates a log-only provider.
func NewLogProvider(logger *slog.Logger) *LogProvider {
	return &LogProvider{Logger: logger}
}

func (l *LogProvider) Name() string { return "log" }

// Deliver logs the notice and returns a synthetic message ID.
func (l *LogProvider) Deliver(notice Notice) (Delivery, error) {
	syntheticID := uuid.NewString()
	l.Logger.Info("notice logged instead of sent",
		"provider", "log",
		"from", notice.From,
		"to", strings.Join(notice.To, ", "),
		"subject", notice.Subject,
		"html_length", len(notice.HTML),
		"text_length", len(notice.Text),
	)
	return Delivery{ProviderMessageID: fmt.Sprintf("log-%s", syntheticID)}, nil
}

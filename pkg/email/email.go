package email

import (
	"context"
	"strings"
	"time"
)

// Provider names reported back to callers.
const (
	ProviderSendGrid = "SendGrid"
	ProviderSES      = "Amazon SES"
	ProviderSMTP     = "Gmail SMTP"
)

// Key returns the short identifier used as the error field for a provider.
func Key(providerName string) string {
	switch providerName {
	case ProviderSendGrid:
		return "sendgrid"
	case ProviderSES:
		return "ses"
	case ProviderSMTP:
		return "gmail"
	}
	return strings.ToLower(strings.ReplaceAll(providerName, " ", "_"))
}

// Provider is implemented by every delivery channel (SendGrid, SES, SMTP).
// Implementations are immutable after construction and safe for concurrent use.
type Provider interface {
	// Name returns the human-readable provider name.
	Name() string
	// Configured reports whether the provider has the credentials it needs.
	Configured() bool
	// Send delivers msg. Unconfigured providers return ErrNotConfigured.
	Send(ctx context.Context, msg Message) (*Receipt, error)
}

// Message is a single outbound email. The provider supplies the sender address;
// FromName only sets its display name.
type Message struct {
	To          string
	ToName      string
	FromName    string
	ReplyTo     string
	ReplyToName string
	Subject     string
	HTMLBody    string
	TextBody    string
}

// Receipt is what a provider reports for an accepted message.
type Receipt struct {
	Provider   string
	MessageID  string
	StatusCode int    // HTTP status for API providers
	Response   string // server reply for SMTP
	Recipient  string
	SentAt     time.Time
}

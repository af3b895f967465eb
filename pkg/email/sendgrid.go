package email

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/sendgrid/rest"
	"github.com/sendgrid/sendgrid-go"
	"github.com/sendgrid/sendgrid-go/helpers/mail"
)

const sendGridSendEndpoint = "/v3/mail/send"

// SendGridConfig holds the API key and the verified sender for SendGrid.
type SendGridConfig struct {
	APIKey    string
	FromEmail string
	// Host overrides https://api.sendgrid.com (tests, EU data residency).
	Host string
}

// SendGridProvider delivers mail through the SendGrid v3 API.
type SendGridProvider struct {
	apiKey    string
	fromEmail string
	host      string
}

func NewSendGridProvider(cfg SendGridConfig) *SendGridProvider {
	return &SendGridProvider{
		apiKey:    cfg.APIKey,
		fromEmail: cfg.FromEmail,
		host:      cfg.Host,
	}
}

func (p *SendGridProvider) Name() string {
	return ProviderSendGrid
}

func (p *SendGridProvider) Configured() bool {
	return p.apiKey != "" && p.fromEmail != ""
}

// Send posts msg to /v3/mail/send. Anything outside 2xx is a failure.
func (p *SendGridProvider) Send(ctx context.Context, msg Message) (*Receipt, error) {
	if !p.Configured() {
		return nil, &SendError{Provider: p.Name(), Kind: KindNotConfigured, Err: ErrNotConfigured}
	}

	m := mail.NewSingleEmail(
		mail.NewEmail(msg.FromName, p.fromEmail),
		msg.Subject,
		mail.NewEmail(msg.ToName, msg.To),
		msg.TextBody,
		msg.HTMLBody,
	)
	if msg.ReplyTo != "" {
		m.SetReplyTo(mail.NewEmail(msg.ReplyToName, msg.ReplyTo))
	}

	// Built per call: sendgrid.Client mutates its embedded request on Send.
	request := sendgrid.GetRequest(p.apiKey, sendGridSendEndpoint, p.host)
	request.Method = rest.Post
	request.Body = mail.GetRequestBody(m)

	resp, err := sendgrid.MakeRequestWithContext(ctx, request)
	if err != nil {
		return nil, newSendError(p.Name(), err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		kind := KindUnknown
		switch resp.StatusCode {
		case http.StatusUnauthorized, http.StatusForbidden:
			kind = KindAuth
		case http.StatusBadGateway, http.StatusServiceUnavailable, http.StatusGatewayTimeout:
			kind = KindConnection
		}
		return nil, &SendError{
			Provider: p.Name(),
			Kind:     kind,
			Err:      fmt.Errorf("SendGrid returned status code: %d", resp.StatusCode),
		}
	}

	return &Receipt{
		Provider:   p.Name(),
		MessageID:  headerValue(resp.Headers, "X-Message-Id"),
		StatusCode: resp.StatusCode,
		Recipient:  msg.To,
		SentAt:     time.Now().UTC(),
	}, nil
}

func headerValue(headers map[string][]string, key string) string {
	if values := http.Header(headers).Values(key); len(values) > 0 {
		return values[0]
	}
	return ""
}

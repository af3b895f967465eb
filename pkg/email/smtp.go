package email

import (
	"bytes"
	"context"
	"crypto/tls"
	"fmt"
	"mime"
	"mime/quotedprintable"
	"net"
	netmail "net/mail"
	"net/smtp"
	"strings"
	"time"

	"github.com/google/uuid"
)

// SMTPConfig holds the SMTP relay configuration (Gmail with an app password by default).
type SMTPConfig struct {
	Host               string
	Port               string
	Username           string
	Password           string
	InsecureSkipVerify bool
	Timeout            time.Duration
}

// SMTPProvider delivers mail over an authenticated SMTP session.
// Every Send opens its own connection.
type SMTPProvider struct {
	host               string
	port               string
	username           string
	password           string
	insecureSkipVerify bool
	timeout            time.Duration
}

func NewSMTPProvider(cfg SMTPConfig) *SMTPProvider {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	return &SMTPProvider{
		host:               cfg.Host,
		port:               cfg.Port,
		username:           cfg.Username,
		password:           cfg.Password,
		insecureSkipVerify: cfg.InsecureSkipVerify,
		timeout:            timeout,
	}
}

func (p *SMTPProvider) Name() string {
	return ProviderSMTP
}

// Configured checks the credential pair; host and port have defaults.
func (p *SMTPProvider) Configured() bool {
	return p.username != "" && p.password != ""
}

// Send verifies connectivity and credentials (EHLO, STARTTLS, AUTH) and then
// transmits msg on the same session.
func (p *SMTPProvider) Send(ctx context.Context, msg Message) (*Receipt, error) {
	if !p.Configured() {
		return nil, &SendError{Provider: p.Name(), Kind: KindNotConfigured, Err: ErrNotConfigured}
	}

	client, err := p.verify(ctx)
	if err != nil {
		return nil, newSendError(p.Name(), err)
	}
	defer client.Close()

	messageID := fmt.Sprintf("<%s@%s>", uuid.NewString(), domainOf(p.username))
	raw, err := buildMIMEMessage(formatAddress(msg.FromName, p.username), msg, messageID)
	if err != nil {
		return nil, newSendError(p.Name(), err)
	}

	if err := client.Mail(p.username); err != nil {
		return nil, newSendError(p.Name(), fmt.Errorf("MAIL FROM rejected: %w", err))
	}
	if err := client.Rcpt(msg.To); err != nil {
		return nil, newSendError(p.Name(), fmt.Errorf("RCPT TO rejected: %w", err))
	}

	response, err := sendData(client, raw)
	if err != nil {
		return nil, newSendError(p.Name(), err)
	}
	_ = client.Quit()

	return &Receipt{
		Provider:  p.Name(),
		MessageID: messageID,
		Response:  response,
		Recipient: msg.To,
		SentAt:    time.Now().UTC(),
	}, nil
}

// verify dials the relay, upgrades to TLS when offered and authenticates.
func (p *SMTPProvider) verify(ctx context.Context) (*smtp.Client, error) {
	addr := net.JoinHostPort(p.host, p.port)

	dialCtx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	var dialer net.Dialer
	conn, err := dialer.DialContext(dialCtx, "tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to %s: %w", addr, err)
	}

	deadline := time.Now().Add(p.timeout)
	if d, ok := ctx.Deadline(); ok && d.Before(deadline) {
		deadline = d
	}
	_ = conn.SetDeadline(deadline)

	client, err := smtp.NewClient(conn, p.host)
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to start SMTP session: %w", err)
	}

	if ok, _ := client.Extension("STARTTLS"); ok {
		tlsConfig := &tls.Config{
			ServerName:         p.host,
			MinVersion:         tls.VersionTLS12,
			InsecureSkipVerify: p.insecureSkipVerify, //nolint:gosec // opt-in via SMTP_INSECURE_SKIP_VERIFY
		}
		if err := client.StartTLS(tlsConfig); err != nil {
			client.Close()
			return nil, fmt.Errorf("STARTTLS failed: %w", err)
		}
	}

	if err := client.Auth(smtp.PlainAuth("", p.username, p.password, p.host)); err != nil {
		client.Close()
		return nil, fmt.Errorf("SMTP authentication failed: %w", err)
	}

	return client, nil
}

// sendData runs DATA by hand so the server's final reply can be reported back.
func sendData(client *smtp.Client, raw []byte) (string, error) {
	id, err := client.Text.Cmd("DATA")
	if err != nil {
		return "", err
	}
	client.Text.StartResponse(id)
	_, _, err = client.Text.ReadResponse(354)
	client.Text.EndResponse(id)
	if err != nil {
		return "", fmt.Errorf("DATA rejected: %w", err)
	}

	w := client.Text.DotWriter()
	if _, err := w.Write(raw); err != nil {
		w.Close()
		return "", fmt.Errorf("failed to write message body: %w", err)
	}
	if err := w.Close(); err != nil {
		return "", fmt.Errorf("failed to finish message body: %w", err)
	}

	code, message, err := client.Text.ReadResponse(250)
	if err != nil {
		return "", fmt.Errorf("message rejected: %w", err)
	}
	return fmt.Sprintf("%d %s", code, message), nil
}

// buildMIMEMessage produces a multipart/alternative message with text and HTML parts.
func buildMIMEMessage(from string, msg Message, messageID string) ([]byte, error) {
	boundary := "contact_" + strings.ReplaceAll(uuid.NewString(), "-", "")

	var buf bytes.Buffer
	headers := []string{
		"From: " + from,
		"To: " + formatAddress(msg.ToName, msg.To),
	}
	if msg.ReplyTo != "" {
		headers = append(headers, "Reply-To: "+formatAddress(msg.ReplyToName, msg.ReplyTo))
	}
	headers = append(headers,
		"Subject: "+mime.QEncoding.Encode("utf-8", msg.Subject),
		"Date: "+time.Now().Format(time.RFC1123Z),
		"Message-ID: "+messageID,
		"MIME-Version: 1.0",
		"Content-Type: multipart/alternative; boundary="+boundary,
	)
	for _, h := range headers {
		if strings.ContainsAny(h, "\r\n") {
			return nil, fmt.Errorf("invalid header line %q", h)
		}
		buf.WriteString(h + "\r\n")
	}
	buf.WriteString("\r\n")

	parts := []struct {
		contentType string
		body        string
	}{
		{"text/plain; charset=UTF-8", msg.TextBody},
		{"text/html; charset=UTF-8", msg.HTMLBody},
	}
	for _, part := range parts {
		if part.body == "" {
			continue
		}
		buf.WriteString("--" + boundary + "\r\n")
		buf.WriteString("Content-Type: " + part.contentType + "\r\n")
		buf.WriteString("Content-Transfer-Encoding: quoted-printable\r\n\r\n")
		qp := quotedprintable.NewWriter(&buf)
		if _, err := qp.Write([]byte(part.body)); err != nil {
			return nil, err
		}
		if err := qp.Close(); err != nil {
			return nil, err
		}
		buf.WriteString("\r\n")
	}
	buf.WriteString("--" + boundary + "--\r\n")

	return buf.Bytes(), nil
}

// formatAddress renders "Name <addr>" with RFC 2047 encoding of the name.
func formatAddress(name, address string) string {
	if name == "" {
		return address
	}
	return (&netmail.Address{Name: name, Address: address}).String()
}

func domainOf(address string) string {
	if at := strings.LastIndex(address, "@"); at >= 0 && at < len(address)-1 {
		return address[at+1:]
	}
	return "localhost"
}

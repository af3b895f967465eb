package email

import (
	"bufio"
	"context"
	"errors"
	"net"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeSMTPServer speaks just enough SMTP for net/smtp's client.
type fakeSMTPServer struct {
	ln         net.Listener
	acceptAuth bool

	mu       sync.Mutex
	commands []string
	data     string
}

func newFakeSMTPServer(t *testing.T, acceptAuth bool) *fakeSMTPServer {
	t.Helper()
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	s := &fakeSMTPServer{ln: ln, acceptAuth: acceptAuth}
	go s.serve()
	t.Cleanup(func() { ln.Close() })
	return s
}

func (s *fakeSMTPServer) port() string {
	_, port, _ := net.SplitHostPort(s.ln.Addr().String())
	return port
}

func (s *fakeSMTPServer) serve() {
	for {
		conn, err := s.ln.Accept()
		if err != nil {
			return
		}
		go s.handle(conn)
	}
}

func (s *fakeSMTPServer) handle(conn net.Conn) {
	defer conn.Close()
	r := bufio.NewReader(conn)
	reply := func(line string) { _, _ = conn.Write([]byte(line + "\r\n")) }

	reply("220 fake.smtp ready")
	for {
		line, err := r.ReadString('\n')
		if err != nil {
			return
		}
		line = strings.TrimRight(line, "\r\n")
		s.mu.Lock()
		s.commands = append(s.commands, line)
		s.mu.Unlock()

		verb := strings.ToUpper(strings.SplitN(line, " ", 2)[0])
		switch verb {
		case "EHLO", "HELO":
			reply("250-fake.smtp")
			reply("250 AUTH PLAIN")
		case "AUTH":
			if s.acceptAuth {
				reply("235 2.7.0 Accepted")
			} else {
				reply("535 5.7.8 Username and Password not accepted")
			}
		case "*":
			reply("501 5.5.2 Cancelled")
		case "MAIL", "RCPT", "RSET", "NOOP":
			reply("250 2.1.0 OK")
		case "DATA":
			reply("354 Go ahead")
			var body strings.Builder
			for {
				l, err := r.ReadString('\n')
				if err != nil {
					return
				}
				if l == ".\r\n" {
					break
				}
				body.WriteString(l)
			}
			s.mu.Lock()
			s.data = body.String()
			s.mu.Unlock()
			reply("250 2.0.0 OK queued")
		case "QUIT":
			reply("221 2.0.0 Bye")
			return
		default:
			reply("502 5.5.1 Unrecognized command")
		}
	}
}

func (s *fakeSMTPServer) snapshot() ([]string, string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.commands...), s.data
}

func testMessage() Message {
	return Message{
		To:          "owner@example.com",
		FromName:    "Portfolio Contact Form",
		ReplyTo:     "ada@example.com",
		ReplyToName: "Ada",
		Subject:     "Portfolio Contact: Hello",
		HTMLBody:    "<p>Hello</p>",
		TextBody:    "Hello",
	}
}

func TestSMTPProviderSend(t *testing.T) {
	t.Run("Should deliver and report the server reply", func(t *testing.T) {
		srv := newFakeSMTPServer(t, true)
		p := NewSMTPProvider(SMTPConfig{
			Host:     "127.0.0.1",
			Port:     srv.port(),
			Username: "me@example.com",
			Password: "app-password",
			Timeout:  2 * time.Second,
		})

		receipt, err := p.Send(context.Background(), testMessage())
		require.NoError(t, err)

		assert.Equal(t, ProviderSMTP, receipt.Provider)
		assert.Equal(t, "250 2.0.0 OK queued", receipt.Response)
		assert.Equal(t, "owner@example.com", receipt.Recipient)
		assert.True(t, strings.HasSuffix(receipt.MessageID, "@example.com>"))

		commands, data := srv.snapshot()
		assert.Contains(t, commands, "MAIL FROM:<me@example.com>")
		assert.Contains(t, commands, "RCPT TO:<owner@example.com>")
		assert.Contains(t, data, "Reply-To: \"Ada\" <ada@example.com>\r\n")
		assert.Contains(t, data, "Content-Type: multipart/alternative")
	})

	t.Run("Should classify rejected credentials as auth", func(t *testing.T) {
		srv := newFakeSMTPServer(t, false)
		p := NewSMTPProvider(SMTPConfig{Host: "127.0.0.1", Port: srv.port(), Username: "me@example.com", Password: "wrong"})

		_, err := p.Send(context.Background(), testMessage())
		require.Error(t, err)
		assert.Equal(t, KindAuth, Classify(err))
	})

	t.Run("Should classify an unreachable relay as connection", func(t *testing.T) {
		ln, err := net.Listen("tcp", "127.0.0.1:0")
		require.NoError(t, err)
		_, port, _ := net.SplitHostPort(ln.Addr().String())
		ln.Close()

		p := NewSMTPProvider(SMTPConfig{Host: "127.0.0.1", Port: port, Username: "me@example.com", Password: "x", Timeout: time.Second})
		_, err = p.Send(context.Background(), testMessage())
		require.Error(t, err)
		assert.Equal(t, KindConnection, Classify(err))
	})

	t.Run("Should refuse to send without credentials", func(t *testing.T) {
		p := NewSMTPProvider(SMTPConfig{Host: "127.0.0.1", Port: "1"})
		assert.False(t, p.Configured())

		_, err := p.Send(context.Background(), testMessage())
		assert.True(t, errors.Is(err, ErrNotConfigured))
		assert.Equal(t, KindNotConfigured, Classify(err))
	})
}

func TestBuildMIMEMessage(t *testing.T) {
	t.Run("Should encode non-ASCII subjects", func(t *testing.T) {
		msg := testMessage()
		msg.Subject = "Grüße"
		raw, err := buildMIMEMessage("me@example.com", msg, "<id@example.com>")
		require.NoError(t, err)
		assert.Contains(t, string(raw), "Subject: =?utf-8?q?Gr=C3=BC=C3=9Fe?=\r\n")
	})

	t.Run("Should reject header injection", func(t *testing.T) {
		msg := testMessage()
		msg.To = "owner@example.com\r\nBcc: victim@example.com"
		_, err := buildMIMEMessage("me@example.com", msg, "<id@example.com>")
		assert.Error(t, err)
	})
}

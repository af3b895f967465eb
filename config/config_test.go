package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func clearEmailEnv(t *testing.T) {
	for _, key := range []string{
		"EMAIL_PRIMARY_PROVIDER", "SENDGRID_API_KEY", "SENDGRID_FROM_EMAIL", "SES_FROM_EMAIL",
		"MAIL_USER", "MAIL_PASS", "CONTACT_EMAIL", "FALLBACK_CONTACT_EMAIL", "EMAIL_TIMEOUT_SECONDS",
		"ALLOWED_ORIGINS",
	} {
		t.Setenv(key, "")
	}
}

func TestLoadConfig(t *testing.T) {
	t.Run("Should read provider credentials and timeout", func(t *testing.T) {
		clearEmailEnv(t)
		t.Setenv("SENDGRID_API_KEY", "SG.key")
		t.Setenv("SENDGRID_FROM_EMAIL", "hello@portfolio.dev")
		t.Setenv("MAIL_USER", "me@gmail.com")
		t.Setenv("MAIL_PASS", "app-password")
		t.Setenv("EMAIL_TIMEOUT_SECONDS", "7")
		t.Setenv("ALLOWED_ORIGINS", "https://a.dev/, ,https://b.dev")

		cfg, err := LoadConfig()
		require.NoError(t, err)

		assert.True(t, cfg.PrimaryConfigured())
		assert.True(t, cfg.SecondaryConfigured())
		assert.Equal(t, 7*time.Second, cfg.EmailTimeout)
		assert.Equal(t, []string{"https://a.dev", "https://b.dev"}, cfg.AllowedOrigins)
	})

	t.Run("Should treat a half-configured pair as not configured", func(t *testing.T) {
		clearEmailEnv(t)
		t.Setenv("SENDGRID_API_KEY", "SG.key")
		t.Setenv("MAIL_PASS", "app-password")

		cfg, err := LoadConfig()
		require.NoError(t, err)

		assert.False(t, cfg.PrimaryConfigured())
		assert.False(t, cfg.SecondaryConfigured())
	})

	t.Run("Should select SES as primary when requested", func(t *testing.T) {
		clearEmailEnv(t)
		t.Setenv("EMAIL_PRIMARY_PROVIDER", "SES")
		t.Setenv("AWS_REGION", "eu-west-1")
		t.Setenv("SES_FROM_EMAIL", "noreply@portfolio.dev")

		cfg, err := LoadConfig()
		require.NoError(t, err)

		assert.Equal(t, "ses", cfg.EmailPrimaryProvider)
		assert.True(t, cfg.PrimaryConfigured())
		assert.Equal(t, "noreply@portfolio.dev", cfg.PrimarySender())
	})
}

func TestRecipientEmail(t *testing.T) {
	tests := []struct {
		name string
		cfg  Config
		want string
	}{
		{"explicit override wins", Config{ContactEmail: "inbox@me.dev", SendGridFromEmail: "sg@me.dev", MailUser: "smtp@me.dev"}, "inbox@me.dev"},
		{"primary sender next", Config{SendGridFromEmail: "sg@me.dev", MailUser: "smtp@me.dev"}, "sg@me.dev"},
		{"smtp user next", Config{MailUser: "smtp@me.dev"}, "smtp@me.dev"},
		{"configured fallback", Config{FallbackContactEmail: "backup@me.dev"}, "backup@me.dev"},
		{"hard-coded fallback", Config{}, DefaultFallbackContactEmail},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.cfg.RecipientEmail())
		})
	}
}

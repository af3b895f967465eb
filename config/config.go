package config

import (
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// DefaultFallbackContactEmail is the address shown to visitors when no provider could deliver their message.
const DefaultFallbackContactEmail = "shubhammeena1207@gmail.com"

type Config struct {
	Port           string
	GinMode        string
	AllowedOrigins []string

	// Primary provider (SendGrid by default, SES when EmailPrimaryProvider == "ses")
	EmailPrimaryProvider string
	SendGridAPIKey       string
	SendGridFromEmail    string
	SendGridHost         string
	AWSRegion            string
	SESFromEmail         string

	// Secondary provider (authenticated SMTP relay, Gmail by default)
	MailUser               string
	MailPass               string
	SMTPHost               string
	SMTPPort               string
	SMTPInsecureSkipVerify bool

	ContactEmail         string // explicit recipient override
	FallbackContactEmail string // shown to visitors on failure
	EmailTimeout         time.Duration

	// Auto-reply signature
	OwnerName    string
	OwnerTitle   string
	OwnerPhone   string
	PortfolioURL string

	LogLevel string
	LogFile  string
}

func LoadConfig() (*Config, error) {
	// Only effective locally; production reads the real environment.
	_ = godotenv.Load()

	cfg := &Config{
		Port:           getEnv("PORT", "8080"),
		GinMode:        getEnv("GIN_MODE", "debug"),
		AllowedOrigins: getEnvList("ALLOWED_ORIGINS", []string{"https://shubhammeena.netlify.app"}),
		// Primary provider
		EmailPrimaryProvider: strings.ToLower(getEnv("EMAIL_PRIMARY_PROVIDER", "sendgrid")),
		SendGridAPIKey:       getEnv("SENDGRID_API_KEY", ""),
		SendGridFromEmail:    getEnv("SENDGRID_FROM_EMAIL", ""),
		SendGridHost:         strings.TrimRight(getEnv("SENDGRID_HOST", ""), "/"),
		AWSRegion:            getEnv("AWS_REGION", "us-east-1"),
		SESFromEmail:         getEnv("SES_FROM_EMAIL", ""),
		// Secondary provider
		MailUser:               getEnv("MAIL_USER", ""),
		MailPass:               getEnv("MAIL_PASS", ""),
		SMTPHost:               getEnv("SMTP_HOST", "smtp.gmail.com"),
		SMTPPort:               getEnv("SMTP_PORT", "587"),
		SMTPInsecureSkipVerify: getEnvBool("SMTP_INSECURE_SKIP_VERIFY", false),
		// Routing
		ContactEmail:         getEnv("CONTACT_EMAIL", ""),
		FallbackContactEmail: getEnv("FALLBACK_CONTACT_EMAIL", DefaultFallbackContactEmail),
		EmailTimeout:         time.Duration(getEnvInt("EMAIL_TIMEOUT_SECONDS", 15)) * time.Second,
		// Auto-reply signature
		OwnerName:    getEnv("OWNER_NAME", "Shubham Meena"),
		OwnerTitle:   getEnv("OWNER_TITLE", "Web Developer & Full-Stack Engineer"),
		OwnerPhone:   getEnv("OWNER_PHONE", ""),
		PortfolioURL: getEnv("PORTFOLIO_URL", "https://shubhammeena.netlify.app"),
		// Logging
		LogLevel: getEnv("LOG_LEVEL", "info"),
		LogFile:  getEnv("LOG_FILE", ""),
	}

	if !cfg.PrimaryConfigured() && !cfg.SecondaryConfigured() {
		log.Println("WARNING: no email provider configured. Contact submissions will fail with the fallback address.")
	}

	return cfg, nil
}

// PrimaryConfigured reports whether the selected API provider has its credential pair.
func (c *Config) PrimaryConfigured() bool {
	if c.EmailPrimaryProvider == "ses" {
		return c.AWSRegion != "" && c.SESFromEmail != ""
	}
	return c.SendGridAPIKey != "" && c.SendGridFromEmail != ""
}

// SecondaryConfigured reports whether SMTP user and app password are both set.
func (c *Config) SecondaryConfigured() bool {
	return c.MailUser != "" && c.MailPass != ""
}

// PrimarySender returns the verified sender address of the selected API provider.
func (c *Config) PrimarySender() string {
	if c.EmailPrimaryProvider == "ses" {
		return c.SESFromEmail
	}
	return c.SendGridFromEmail
}

// RecipientEmail resolves where contact messages are delivered:
// explicit override, then the primary sender, then the SMTP user, then the fallback address.
func (c *Config) RecipientEmail() string {
	for _, candidate := range []string{c.ContactEmail, c.PrimarySender(), c.MailUser} {
		if candidate != "" {
			return candidate
		}
	}
	if c.FallbackContactEmail != "" {
		return c.FallbackContactEmail
	}
	return DefaultFallbackContactEmail
}

func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

// getEnvInt returns an integer environment variable or fallback if not set/invalid
func getEnvInt(key string, fallback int) int {
	if value, exists := os.LookupEnv(key); exists {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return fallback
}

// getEnvBool returns a boolean environment variable or fallback if not set/invalid
func getEnvBool(key string, fallback bool) bool {
	if value, exists := os.LookupEnv(key); exists {
		if boolVal, err := strconv.ParseBool(value); err == nil {
			return boolVal
		}
	}
	return fallback
}

// getEnvList splits a comma-separated variable, dropping blanks and trailing slashes.
func getEnvList(key string, fallback []string) []string {
	value, exists := os.LookupEnv(key)
	if !exists {
		return fallback
	}
	var out []string
	for _, part := range strings.Split(value, ",") {
		part = strings.TrimRight(strings.TrimSpace(part), "/")
		if part != "" {
			out = append(out, part)
		}
	}
	return out
}

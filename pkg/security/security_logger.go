package security

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"sync"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// EventType represents the type of security event
type EventType string

const (
	EventContactSubmitted        EventType = "contact_submitted"
	EventContactValidationFailed EventType = "contact_validation_failed"
	EventContactDeliveryFailed   EventType = "contact_delivery_failed"
	EventAutoReplyFailed         EventType = "contact_auto_reply_failed"
	EventPanicRecovered          EventType = "panic_recovered"
)

// SecurityEvent represents a security-related event to be logged
type SecurityEvent struct {
	Timestamp    time.Time              `json:"timestamp"`
	Service      string                 `json:"service"`
	Environment  string                 `json:"env"`
	Level        string                 `json:"level"`
	Event        EventType              `json:"event"`
	SubjectType  string                 `json:"subject_type,omitempty"`  // "email", "ip"
	SubjectValue string                 `json:"subject_value,omitempty"` // Masked or hashed for PII
	IP           string                 `json:"ip,omitempty"`
	UserAgent    string                 `json:"user_agent,omitempty"`
	RequestID    string                 `json:"request_id,omitempty"`
	Details      map[string]interface{} `json:"details,omitempty"`
}

// SecurityLogger provides structured logging for contact-form audit events
type SecurityLogger struct {
	zapLogger   *zap.Logger
	serviceName string
	environment string
}

var (
	defaultMu     sync.Mutex
	defaultLogger *SecurityLogger
)

// InitSecurityLogger initializes the security logger with Zap and makes it the default
func InitSecurityLogger(serviceName, environment string) *SecurityLogger {
	sl := NewSecurityLogger(newZapLogger(), serviceName, environment)

	defaultMu.Lock()
	defaultLogger = sl
	defaultMu.Unlock()
	return sl
}

func newZapLogger() *zap.Logger {
	// Create production-ready Zap config
	config := zap.NewProductionConfig()
	config.EncoderConfig.TimeKey = "timestamp"
	config.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	config.EncoderConfig.LevelKey = "level"
	config.EncoderConfig.MessageKey = "message"

	// Set output to stdout for container environments
	config.OutputPaths = []string{"stdout"}
	config.ErrorOutputPaths = []string{"stderr"}

	logger, err := config.Build(
		zap.AddCaller(),
		zap.AddStacktrace(zapcore.ErrorLevel),
	)
	if err != nil {
		// Fallback to a basic logger if config fails
		logger, _ = zap.NewProduction()
	}
	return logger
}

// NewSecurityLogger wraps an existing zap logger.
func NewSecurityLogger(logger *zap.Logger, serviceName, environment string) *SecurityLogger {
	return &SecurityLogger{
		zapLogger:   logger,
		serviceName: serviceName,
		environment: environment,
	}
}

// DefaultLogger returns the default security logger instance
func DefaultLogger() *SecurityLogger {
	defaultMu.Lock()
	defer defaultMu.Unlock()
	if defaultLogger == nil {
		defaultLogger = NewSecurityLogger(newZapLogger(), "portfolio-contact-backend", getEnvironment())
	}
	return defaultLogger
}

// Log logs a security event
func (sl *SecurityLogger) Log(ctx context.Context, event SecurityEvent) {
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now().UTC()
	}
	event.Service = sl.serviceName
	event.Environment = sl.environment

	severity := GetSeverity(event.Event)
	level := severity.zapLevel()
	event.Level = level.String()

	fields := []zap.Field{
		zap.String("service", event.Service),
		zap.String("env", event.Environment),
		zap.String("event", string(event.Event)),
		zap.String("severity", string(severity)),
	}
	if IsHighOrAbove(event.Event) {
		fields = append(fields, zap.Bool("alert", true))
	}
	if event.SubjectType != "" {
		fields = append(fields, zap.String("subject_type", event.SubjectType))
	}
	if event.SubjectValue != "" {
		fields = append(fields, zap.String("subject_value", event.SubjectValue))
	}
	if event.IP != "" {
		fields = append(fields, zap.String("ip", event.IP))
	}
	if event.UserAgent != "" {
		fields = append(fields, zap.String("user_agent", event.UserAgent))
	}
	if event.RequestID != "" {
		fields = append(fields, zap.String("request_id", event.RequestID))
	}
	if len(event.Details) > 0 {
		detailsJSON, _ := json.Marshal(event.Details)
		fields = append(fields, zap.String("details", string(detailsJSON)))
	}

	sl.zapLogger.Log(level, string(event.Event), fields...)
}

// LogContactSubmitted logs a delivered contact message
func (sl *SecurityLogger) LogContactSubmitted(ctx context.Context, email, service, autoReplyStatus string) {
	sl.Log(ctx, SecurityEvent{
		Event:        EventContactSubmitted,
		SubjectType:  "email",
		SubjectValue: MaskEmail(email),
		RequestID:    RequestIDFromContext(ctx),
		Details:      map[string]interface{}{"service": service, "auto_reply": autoReplyStatus},
	})
}

// LogValidationFailed logs a rejected submission
func (sl *SecurityLogger) LogValidationFailed(ctx context.Context, email string, fields []string) {
	sl.Log(ctx, SecurityEvent{
		Event:        EventContactValidationFailed,
		SubjectType:  "email",
		SubjectValue: MaskEmail(email),
		RequestID:    RequestIDFromContext(ctx),
		Details:      map[string]interface{}{"fields": fields},
	})
}

// LogDeliveryFailed logs a submission that no provider could deliver
func (sl *SecurityLogger) LogDeliveryFailed(ctx context.Context, email string, failures map[string]string) {
	details := make(map[string]interface{}, len(failures))
	for provider, reason := range failures {
		details[provider] = reason
	}
	sl.Log(ctx, SecurityEvent{
		Event:        EventContactDeliveryFailed,
		SubjectType:  "email",
		SubjectValue: MaskEmail(email),
		RequestID:    RequestIDFromContext(ctx),
		Details:      details,
	})
}

// LogAutoReplyFailed logs a non-fatal auto-reply failure
func (sl *SecurityLogger) LogAutoReplyFailed(ctx context.Context, email, service, reason string) {
	sl.Log(ctx, SecurityEvent{
		Event:        EventAutoReplyFailed,
		SubjectType:  "email",
		SubjectValue: MaskEmail(email),
		RequestID:    RequestIDFromContext(ctx),
		Details:      map[string]interface{}{"service": service, "reason": reason},
	})
}

// LogPanicRecovered logs a panic caught by the recovery middleware
func (sl *SecurityLogger) LogPanicRecovered(ctx context.Context, ip, userAgent, requestID, path string, recovered interface{}) {
	sl.Log(ctx, SecurityEvent{
		Event:        EventPanicRecovered,
		SubjectType:  "ip",
		SubjectValue: ip,
		IP:           ip,
		UserAgent:    userAgent,
		RequestID:    requestID,
		Details:      map[string]interface{}{"path": path, "panic": fmt.Sprint(recovered)},
	})
}

// Sync flushes any buffered log entries
func (sl *SecurityLogger) Sync() error {
	return sl.zapLogger.Sync()
}

// --- Helper Functions ---

// MaskEmail masks an email for logging (e.g., "j***@example.com")
func MaskEmail(email string) string {
	if len(email) < 3 {
		return "***"
	}
	atIndex := -1
	for i, c := range email {
		if c == '@' {
			atIndex = i
			break
		}
	}
	if atIndex <= 1 {
		return "***" + email[1:]
	}
	return string(email[0]) + "***" + email[atIndex:]
}

// getEnvironment determines the current environment
func getEnvironment() string {
	env := os.Getenv("GIN_MODE")
	if env == "release" {
		return "production"
	}
	return "development"
}

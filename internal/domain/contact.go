package domain

import (
	"context"
	"fmt"
	"strings"
	"time"
)

// ContactRequest represents a contact form submission
type ContactRequest struct {
	Name    string `json:"name" form:"name" validate:"required,max=100,no_newline"`
	Email   string `json:"email" form:"email" validate:"required,email,max=254"`
	Subject string `json:"subject" form:"subject" validate:"required,max=200,no_newline"`
	Message string `json:"message" form:"message" validate:"required,max=5000"`
}

// Normalize trims surrounding whitespace from every field.
func (r *ContactRequest) Normalize() {
	r.Name = strings.TrimSpace(r.Name)
	r.Email = strings.TrimSpace(r.Email)
	r.Subject = strings.TrimSpace(r.Subject)
	r.Message = strings.TrimSpace(r.Message)
}

// FieldError is a single per-field problem reported back to the visitor.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// Delivery channels, in the order they are tried.
const (
	ChannelPrimary   = "primary"
	ChannelSecondary = "secondary"
)

// Failure kinds recorded on a DeliveryAttempt.
const (
	KindNotConfigured = "not_configured"
	KindAuth          = "auth"
	KindConnection    = "connection"
	KindUnknown       = "unknown"
)

// DeliveryAttempt tracks one provider during a single submission.
type DeliveryAttempt struct {
	Channel    string `json:"channel"`
	Provider   string `json:"provider"`
	Key        string `json:"key"`
	Configured bool   `json:"configured"`
	Attempted  bool   `json:"attempted"`
	Succeeded  bool   `json:"succeeded"`
	Kind       string `json:"kind,omitempty"`
	Error      string `json:"error,omitempty"`
}

// MainEmailReceipt describes the delivered owner notification.
type MainEmailReceipt struct {
	Service    string    `json:"service"`
	MessageID  string    `json:"messageId,omitempty"`
	StatusCode int       `json:"statusCode,omitempty"`
	Response   string    `json:"response,omitempty"`
	Recipient  string    `json:"recipient"`
	Timestamp  time.Time `json:"timestamp"`
}

// Auto-reply outcomes.
const (
	AutoReplySent         = "sent"
	AutoReplyFailed       = "failed"
	AutoReplyNotAttempted = "not_attempted"
)

// AutoReplyOutcome records the best-effort acknowledgment to the submitter.
type AutoReplyOutcome struct {
	Status    string    `json:"status"`
	Service   string    `json:"service,omitempty"`
	Error     string    `json:"error,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

// ContactReceipt is the data payload of a successful submission.
type ContactReceipt struct {
	MainEmail MainEmailReceipt   `json:"mainEmail"`
	AutoReply AutoReplyOutcome   `json:"autoReply"`
	Attempts  []*DeliveryAttempt `json:"-"`
}

// ValidationError is returned when the submission is rejected before delivery.
type ValidationError struct {
	Fields []FieldError
}

func (e *ValidationError) Error() string {
	parts := make([]string, 0, len(e.Fields))
	for _, f := range e.Fields {
		parts = append(parts, f.Field+": "+f.Message)
	}
	return "invalid contact submission: " + strings.Join(parts, "; ")
}

// DeliveryError is returned when no configured provider delivered the message.
type DeliveryError struct {
	Attempts  []*DeliveryAttempt
	Timestamp time.Time
}

func (e *DeliveryError) Error() string {
	if !e.AnyConfigured() {
		return "email service is not configured"
	}
	parts := make([]string, 0, len(e.Attempts))
	for _, a := range e.Attempts {
		if a.Attempted {
			parts = append(parts, fmt.Sprintf("%s (%s): %s", a.Provider, a.Kind, a.Error))
		}
	}
	return "all email providers failed: " + strings.Join(parts, "; ")
}

// AnyConfigured reports whether at least one provider had credentials.
func (e *DeliveryError) AnyConfigured() bool {
	for _, a := range e.Attempts {
		if a.Configured {
			return true
		}
	}
	return false
}

// FieldErrors explains per provider why nothing was delivered.
func (e *DeliveryError) FieldErrors() []FieldError {
	if !e.AnyConfigured() {
		return []FieldError{{Field: "server", Message: "No email service configuration found."}}
	}

	out := make([]FieldError, 0, len(e.Attempts))
	for _, a := range e.Attempts {
		switch {
		case a.Attempted && !a.Succeeded:
			out = append(out, FieldError{Field: a.Key, Message: failureMessage(a)})
		case !a.Configured && a.Channel == ChannelSecondary:
			out = append(out, FieldError{Field: a.Key, Message: a.Provider + " not configured as fallback"})
		case !a.Configured:
			out = append(out, FieldError{Field: a.Key, Message: a.Provider + " not configured"})
		}
	}
	return out
}

func failureMessage(a *DeliveryAttempt) string {
	switch a.Kind {
	case KindAuth:
		return a.Provider + " authentication failed - check credentials"
	case KindConnection:
		return a.Provider + " connection failed - network/firewall issue"
	default:
		if a.Error == "" {
			return a.Provider + " error: Unknown error"
		}
		return a.Provider + " error: " + a.Error
	}
}

// DeliveryDebug is the debug block attached to a delivery failure response.
type DeliveryDebug struct {
	PrimaryConfigured   bool      `json:"primaryConfigured"`
	SecondaryConfigured bool      `json:"secondaryConfigured"`
	PrimaryAttempted    bool      `json:"primaryAttempted"`
	SecondaryAttempted  bool      `json:"secondaryAttempted"`
	Timestamp           time.Time `json:"timestamp"`
}

// Debug summarizes which channels were configured and attempted.
func (e *DeliveryError) Debug() DeliveryDebug {
	d := DeliveryDebug{Timestamp: e.Timestamp}
	for _, a := range e.Attempts {
		switch a.Channel {
		case ChannelPrimary:
			d.PrimaryConfigured, d.PrimaryAttempted = a.Configured, a.Attempted
		case ChannelSecondary:
			d.SecondaryConfigured, d.SecondaryAttempted = a.Configured, a.Attempted
		}
	}
	return d
}

// ContactUsecase defines the interface for contact form operations
type ContactUsecase interface {
	// Submit validates req, delivers it to the site owner and sends the auto-reply.
	// It returns *ValidationError or *DeliveryError for the handled failure paths.
	Submit(ctx context.Context, req *ContactRequest) (*ContactReceipt, error)
	// FallbackContact is the address visitors are pointed to when delivery fails.
	FallbackContact() string
}

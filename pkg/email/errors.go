package email

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/textproto"
)

// ErrNotConfigured is returned by Send on a provider without credentials.
var ErrNotConfigured = errors.New("email provider is not configured")

// FailureKind groups provider failures by what the site owner has to fix.
type FailureKind string

const (
	KindNotConfigured FailureKind = "not_configured"
	KindAuth          FailureKind = "auth"
	KindConnection    FailureKind = "connection"
	KindUnknown       FailureKind = "unknown"
)

// SendError wraps a provider failure with its classification.
type SendError struct {
	Provider string
	Kind     FailureKind
	Err      error
}

func (e *SendError) Error() string {
	return fmt.Sprintf("%s: %v", e.Provider, e.Err)
}

func (e *SendError) Unwrap() error {
	return e.Err
}

func newSendError(provider string, err error) *SendError {
	return &SendError{Provider: provider, Kind: Classify(err), Err: err}
}

// Classify maps an arbitrary send error to a FailureKind.
func Classify(err error) FailureKind {
	if err == nil {
		return ""
	}

	var sendErr *SendError
	if errors.As(err, &sendErr) && sendErr.Kind != "" {
		return sendErr.Kind
	}
	if errors.Is(err, ErrNotConfigured) {
		return KindNotConfigured
	}

	var protoErr *textproto.Error
	if errors.As(err, &protoErr) {
		switch protoErr.Code {
		case 530, 534, 535: // auth required / mechanism too weak / bad credentials
			return KindAuth
		case 421: // service closing channel
			return KindConnection
		}
		return KindUnknown
	}

	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return KindConnection
	}
	if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
		return KindConnection
	}
	var netErr net.Error
	if errors.As(err, &netErr) {
		return KindConnection
	}

	return KindUnknown
}

package apperror

import (
	"fmt"
	"net/http"
)

// FieldError is one entry of the envelope's errors list.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

type AppError struct {
	Code    int          `json:"code"`
	Message string       `json:"message"`
	Errors  []FieldError `json:"errors,omitempty"`
	Debug   interface{}  `json:"debug,omitempty"`
	Err     error        `json:"-"`
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Err
}

func New(code int, message string, err error) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
		Err:     err,
	}
}

// WithErrors attaches per-field details.
func (e *AppError) WithErrors(errs ...FieldError) *AppError {
	e.Errors = append(e.Errors, errs...)
	return e
}

// WithDebug attaches a diagnostic payload returned alongside the errors.
func (e *AppError) WithDebug(debug interface{}) *AppError {
	e.Debug = debug
	return e
}

func BadRequest(message string) *AppError {
	return New(http.StatusBadRequest, message, nil)
}

package usecase

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/ShubhamMeena07/shubhammeenaportfolio-backend/internal/domain"
	"github.com/ShubhamMeena07/shubhammeenaportfolio-backend/pkg/email"
	"github.com/ShubhamMeena07/shubhammeenaportfolio-backend/pkg/logger"
	"github.com/ShubhamMeena07/shubhammeenaportfolio-backend/pkg/security"
	"github.com/ShubhamMeena07/shubhammeenaportfolio-backend/pkg/validation"

	"github.com/go-playground/validator/v10"
)

const contactFromName = "Portfolio Contact Form"

// ContactOptions carries the routing and signature settings of the contact flow.
type ContactOptions struct {
	Recipient       string
	FallbackContact string
	Owner           email.Owner
	// Timeout bounds each provider call; zero means no extra bound beyond ctx.
	Timeout time.Duration
}

type contactUsecase struct {
	primary   email.Provider
	secondary email.Provider
	opts      ContactOptions
	validate  *validator.Validate
	audit     *security.SecurityLogger
	now       func() time.Time
}

// NewContactUsecase creates a new contact usecase. primary is tried first,
// secondary only when primary is unconfigured or fails.
func NewContactUsecase(
	primary, secondary email.Provider,
	opts ContactOptions,
	validate *validator.Validate,
	audit *security.SecurityLogger,
) domain.ContactUsecase {
	if validate == nil {
		validate = validation.New()
	}
	if audit == nil {
		audit = security.DefaultLogger()
	}
	return &contactUsecase{
		primary:   primary,
		secondary: secondary,
		opts:      opts,
		validate:  validate,
		audit:     audit,
		now:       func() time.Time { return time.Now().UTC() },
	}
}

func (uc *contactUsecase) FallbackContact() string {
	return uc.opts.FallbackContact
}

// Submit validates the request, delivers it and sends the auto-reply.
func (uc *contactUsecase) Submit(ctx context.Context, req *domain.ContactRequest) (*domain.ContactReceipt, error) {
	if req == nil {
		req = &domain.ContactRequest{}
	}
	req.Normalize()

	if fields := uc.validateRequest(req); len(fields) > 0 {
		names := make([]string, 0, len(fields))
		for _, f := range fields {
			names = append(names, f.Field)
		}
		uc.audit.LogValidationFailed(ctx, req.Email, names)
		return nil, &domain.ValidationError{Fields: fields}
	}

	data := email.ContactEmailData{
		SenderName:  req.Name,
		SenderEmail: req.Email,
		Subject:     req.Subject,
		Message:     req.Message,
		ReceivedAt:  uc.now(),
		Owner:       uc.opts.Owner,
	}

	htmlBody, textBody, err := email.RenderContactNotification(data)
	if err != nil {
		return nil, fmt.Errorf("failed to render contact email: %w", err)
	}

	msg := email.Message{
		To:          uc.opts.Recipient,
		FromName:    contactFromName,
		ReplyTo:     req.Email,
		ReplyToName: req.Name,
		Subject:     email.ContactSubject(req.Subject),
		HTMLBody:    htmlBody,
		TextBody:    textBody,
	}

	attempts, winner, receipt := uc.deliver(ctx, msg)
	if winner == nil {
		deliveryErr := &domain.DeliveryError{Attempts: attempts, Timestamp: uc.now()}
		failures := make(map[string]string, len(attempts))
		for _, a := range attempts {
			if a.Kind != "" {
				failures[a.Provider] = a.Kind
			}
		}
		uc.audit.LogDeliveryFailed(ctx, req.Email, failures)
		return nil, deliveryErr
	}

	autoReply := uc.sendAutoReply(ctx, winner, data)
	uc.audit.LogContactSubmitted(ctx, req.Email, winner.Name(), autoReply.Status)

	return &domain.ContactReceipt{
		MainEmail: domain.MainEmailReceipt{
			Service:    receipt.Provider,
			MessageID:  receipt.MessageID,
			StatusCode: receipt.StatusCode,
			Response:   receipt.Response,
			Recipient:  receipt.Recipient,
			Timestamp:  receipt.SentAt,
		},
		AutoReply: autoReply,
		Attempts:  attempts,
	}, nil
}

func (uc *contactUsecase) validateRequest(req *domain.ContactRequest) []domain.FieldError {
	err := uc.validate.Struct(req)
	if err == nil {
		return nil
	}

	formatted := validation.FormatValidationErrors(err)
	fields := make([]domain.FieldError, 0, len(formatted)+1)
	missing := false
	for _, f := range formatted {
		if f.Tag == "required" {
			missing = true
		}
		fields = append(fields, domain.FieldError{Field: f.Field, Message: f.Message})
	}
	if missing {
		fields = append(fields, domain.FieldError{Field: "general", Message: "Please fill in all required fields."})
	}
	return fields
}

// deliver walks the channels in order and stops at the first success.
func (uc *contactUsecase) deliver(ctx context.Context, msg email.Message) ([]*domain.DeliveryAttempt, email.Provider, *email.Receipt) {
	channels := []struct {
		name     string
		provider email.Provider
	}{
		{domain.ChannelPrimary, uc.primary},
		{domain.ChannelSecondary, uc.secondary},
	}

	attempts := make([]*domain.DeliveryAttempt, 0, len(channels))
	var (
		winner  email.Provider
		receipt *email.Receipt
	)

	for _, ch := range channels {
		if ch.provider == nil {
			continue
		}
		attempt := &domain.DeliveryAttempt{
			Channel:    ch.name,
			Provider:   ch.provider.Name(),
			Key:        email.Key(ch.provider.Name()),
			Configured: ch.provider.Configured(),
		}
		attempts = append(attempts, attempt)

		if !attempt.Configured {
			attempt.Kind = domain.KindNotConfigured
			continue
		}
		if winner != nil {
			continue
		}

		attempt.Attempted = true
		r, err := uc.send(ctx, ch.provider, msg)
		if err != nil {
			attempt.Kind = string(email.Classify(err))
			attempt.Error = providerErrorText(err)
			logger.Log.Warn("Email provider failed",
				"provider", attempt.Provider,
				"channel", ch.name,
				"kind", attempt.Kind,
				"error", err,
				"request_id", security.RequestIDFromContext(ctx),
			)
			continue
		}

		attempt.Succeeded = true
		winner, receipt = ch.provider, r
		logger.Log.Info("Contact email delivered",
			"provider", attempt.Provider,
			"message_id", r.MessageID,
			"request_id", security.RequestIDFromContext(ctx),
		)
	}

	return attempts, winner, receipt
}

// sendAutoReply never fails the submission; problems end up in the outcome.
func (uc *contactUsecase) sendAutoReply(ctx context.Context, provider email.Provider, data email.ContactEmailData) (outcome domain.AutoReplyOutcome) {
	outcome = domain.AutoReplyOutcome{
		Status:  domain.AutoReplyNotAttempted,
		Service: provider.Name(),
	}

	defer func() {
		if r := recover(); r != nil {
			outcome.Status = domain.AutoReplyFailed
			outcome.Error = fmt.Sprintf("auto-reply panicked: %v", r)
		}
		outcome.Timestamp = uc.now()
		if outcome.Status == domain.AutoReplyFailed {
			logger.Log.Warn("Auto-reply failed (non-blocking)",
				"provider", outcome.Service,
				"error", outcome.Error,
				"request_id", security.RequestIDFromContext(ctx),
			)
			uc.audit.LogAutoReplyFailed(ctx, data.SenderEmail, outcome.Service, outcome.Error)
		}
	}()

	htmlBody, textBody, err := email.RenderAutoReply(data)
	if err != nil {
		outcome.Status = domain.AutoReplyFailed
		outcome.Error = err.Error()
		return outcome
	}

	_, err = uc.send(ctx, provider, email.Message{
		To:       data.SenderEmail,
		ToName:   data.SenderName,
		FromName: uc.opts.Owner.Name,
		Subject:  email.AutoReplySubject(data.Subject),
		HTMLBody: htmlBody,
		TextBody: textBody,
	})
	if err != nil {
		outcome.Status = domain.AutoReplyFailed
		outcome.Error = providerErrorText(err)
		return outcome
	}

	outcome.Status = domain.AutoReplySent
	return outcome
}

func (uc *contactUsecase) send(ctx context.Context, provider email.Provider, msg email.Message) (*email.Receipt, error) {
	if uc.opts.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, uc.opts.Timeout)
		defer cancel()
	}
	r, err := provider.Send(ctx, msg)
	if err == nil && r == nil {
		return nil, fmt.Errorf("%s returned no receipt", provider.Name())
	}
	return r, err
}

// providerErrorText drops the provider prefix SendError adds.
func providerErrorText(err error) string {
	var sendErr *email.SendError
	if errors.As(err, &sendErr) && sendErr.Err != nil {
		return sendErr.Err.Error()
	}
	return err.Error()
}

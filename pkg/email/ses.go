package email

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/ses"
	"github.com/aws/aws-sdk-go-v2/service/ses/types"
	"github.com/aws/smithy-go"
)

// SESAPI is the subset of the SES client used here.
type SESAPI interface {
	SendEmail(ctx context.Context, params *ses.SendEmailInput, optFns ...func(*ses.Options)) (*ses.SendEmailOutput, error)
}

// SESProvider delivers mail through Amazon SES as an alternative API provider.
type SESProvider struct {
	client      SESAPI
	fromAddress string
}

func NewSESProvider(client SESAPI, fromAddress string) *SESProvider {
	return &SESProvider{
		client:      client,
		fromAddress: fromAddress,
	}
}

// NewSESProviderFromRegion builds an SES client from the default AWS credential chain.
func NewSESProviderFromRegion(ctx context.Context, region, fromAddress string) (*SESProvider, error) {
	cfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(region))
	if err != nil {
		return nil, fmt.Errorf("ses: failed to load AWS config: %w", err)
	}
	return NewSESProvider(ses.NewFromConfig(cfg), fromAddress), nil
}

func (p *SESProvider) Name() string {
	return ProviderSES
}

func (p *SESProvider) Configured() bool {
	return p.client != nil && p.fromAddress != ""
}

func (p *SESProvider) Send(ctx context.Context, msg Message) (*Receipt, error) {
	if !p.Configured() {
		return nil, &SendError{Provider: p.Name(), Kind: KindNotConfigured, Err: ErrNotConfigured}
	}

	body := &types.Body{}
	if msg.TextBody != "" {
		body.Text = &types.Content{Data: aws.String(msg.TextBody), Charset: aws.String("UTF-8")}
	}
	if msg.HTMLBody != "" {
		body.Html = &types.Content{Data: aws.String(msg.HTMLBody), Charset: aws.String("UTF-8")}
	}

	input := &ses.SendEmailInput{
		Source:      aws.String(formatAddress(msg.FromName, p.fromAddress)),
		Destination: &types.Destination{ToAddresses: []string{formatAddress(msg.ToName, msg.To)}},
		Message: &types.Message{
			Subject: &types.Content{Data: aws.String(msg.Subject), Charset: aws.String("UTF-8")},
			Body:    body,
		},
	}
	if msg.ReplyTo != "" {
		input.ReplyToAddresses = []string{formatAddress(msg.ReplyToName, msg.ReplyTo)}
	}

	out, err := p.client.SendEmail(ctx, input)
	if err != nil {
		return nil, &SendError{Provider: p.Name(), Kind: classifySES(err), Err: err}
	}

	return &Receipt{
		Provider:   p.Name(),
		MessageID:  aws.ToString(out.MessageId),
		StatusCode: 200,
		Recipient:  msg.To,
		SentAt:     time.Now().UTC(),
	}, nil
}

func classifySES(err error) FailureKind {
	var apiErr smithy.APIError
	if errors.As(err, &apiErr) {
		switch apiErr.ErrorCode() {
		case "InvalidClientTokenId", "SignatureDoesNotMatch", "UnrecognizedClientException",
			"AccessDenied", "AccessDeniedException", "ExpiredToken":
			return KindAuth
		case "Throttling", "ServiceUnavailable":
			return KindConnection
		}
		return KindUnknown
	}
	return Classify(err)
}

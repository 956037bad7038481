package mail

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/ses"
	"github.com/aws/aws-sdk-go-v2/service/ses/types"
)

// SESService is the subset of the SES client used here.
type SESService interface {
	SendEmail(ctx context.Context, params *ses.SendEmailInput, optFns ...func(*ses.Options)) (*ses.SendEmailOutput, error)
	SendRawEmail(ctx context.Context, params *ses.SendRawEmailInput, optFns ...func(*ses.Options)) (*ses.SendRawEmailOutput, error)
}

type SESMailer struct {
	client SESService
	from   Sender
}

func NewSESMailer(client SESService, from Sender) *SESMailer {
	return &SESMailer{client: client, from: from}
}

// NewSESMailerFromRegion loads the default AWS credential chain.
func NewSESMailerFromRegion(ctx context.Context, region string, from Sender) (*SESMailer, error) {
	cfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(region))
	if err != nil {
		return nil, fmt.Errorf("load AWS config: %w", err)
	}
	return NewSESMailer(ses.NewFromConfig(cfg), from), nil
}

// Send uses SendEmail for plain messages and SendRawEmail when there are
// attachments.
func (m *SESMailer) Send(ctx context.Context, msg Message) error {
	if err := msg.validate(); err != nil {
		return err
	}

	if len(msg.Attachments) == 0 {
		_, err := m.client.SendEmail(ctx, &ses.SendEmailInput{
			Source: aws.String(formatAddress(m.from)),
			Destination: &types.Destination{
				ToAddresses: []string{msg.To},
			},
			Message: &types.Message{
				Subject: &types.Content{Data: aws.String(msg.Subject), Charset: aws.String("UTF-8")},
				Body: &types.Body{
					Text: &types.Content{Data: aws.String(msg.Text), Charset: aws.String("UTF-8")},
				},
			},
		})
		if err != nil {
			return fmt.Errorf("ses send: %w", err)
		}
		return nil
	}

	raw, err := buildRaw(m.from, msg)
	if err != nil {
		return fmt.Errorf("build mime: %w", err)
	}

	_, err = m.client.SendRawEmail(ctx, &ses.SendRawEmailInput{
		Source:       aws.String(m.from.Email),
		Destinations: []string{msg.To},
		RawMessage:   &types.RawMessage{Data: raw},
	})
	if err != nil {
		return fmt.Errorf("ses send raw: %w", err)
	}
	return nil
}

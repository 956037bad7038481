// Package sms sends dispatch PINs to workers by text message.
package sms

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"nomorebugs-admin/internal/logger"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/sns"
	"github.com/aws/aws-sdk-go-v2/service/sns/types"
)

var ErrNoPhone = errors.New("sms: phone number is required")

type Texter interface {
	Send(ctx context.Context, phone, message string) error
}

// SNSService is the subset of the SNS client used here.
type SNSService interface {
	Publish(ctx context.Context, params *sns.PublishInput, optFns ...func(*sns.Options)) (*sns.PublishOutput, error)
}

type SNSTexter struct {
	client   SNSService
	senderID string
}

func NewSNSTexter(client SNSService, senderID string) *SNSTexter {
	return &SNSTexter{client: client, senderID: senderID}
}

func NewSNSTexterFromRegion(ctx context.Context, region, senderID string) (*SNSTexter, error) {
	cfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(region))
	if err != nil {
		return nil, fmt.Errorf("load AWS config: %w", err)
	}
	return NewSNSTexter(sns.NewFromConfig(cfg), senderID), nil
}

func (s *SNSTexter) Send(ctx context.Context, phone, message string) error {
	phone = strings.TrimSpace(phone)
	if phone == "" {
		return ErrNoPhone
	}

	input := &sns.PublishInput{
		PhoneNumber: aws.String(phone),
		Message:     aws.String(message),
		MessageAttributes: map[string]types.MessageAttributeValue{
			"AWS.SNS.SMS.SMSType": {
				DataType:    aws.String("String"),
				StringValue: aws.String("Transactional"),
			},
		},
	}
	if s.senderID != "" {
		input.MessageAttributes["AWS.SNS.SMS.SenderID"] = types.MessageAttributeValue{
			DataType:    aws.String("String"),
			StringValue: aws.String(s.senderID),
		}
	}

	if _, err := s.client.Publish(ctx, input); err != nil {
		return fmt.Errorf("sns publish: %w", err)
	}
	return nil
}

// LogTexter logs messages instead of sending them.
type LogTexter struct {
	log logger.Logger
}

func NewLogTexter(log logger.Logger) *LogTexter {
	return &LogTexter{log: log}
}

func (t *LogTexter) Send(ctx context.Context, phone, message string) error {
	if strings.TrimSpace(phone) == "" {
		return ErrNoPhone
	}
	t.log.Info("sms not delivered (log provider)", map[string]interface{}{
		"phone":  phone,
		"length": len(message),
	})
	return nil
}

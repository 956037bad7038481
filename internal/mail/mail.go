// Package mail delivers admin and dispatch mail through SES, SendGrid or
// the log.
package mail

import (
	"context"
	"errors"
	"strings"

	"nomorebugs-admin/internal/logger"
)

var ErrNoRecipient = errors.New("mail: recipient is required")

type Attachment struct {
	Filename    string
	ContentType string
	Content     []byte
}

type Message struct {
	To          string
	Subject     string
	Text        string
	Attachments []Attachment
}

func (m Message) validate() error {
	if strings.TrimSpace(m.To) == "" {
		return ErrNoRecipient
	}
	return nil
}

func (a Attachment) contentType() string {
	if a.ContentType != "" {
		return a.ContentType
	}
	return "application/octet-stream"
}

// Mailer sends one message. Implementations do not retry.
type Mailer interface {
	Send(ctx context.Context, msg Message) error
}

// Sender identifies the From address on outgoing mail.
type Sender struct {
	Name  string
	Email string
}

// LogMailer writes messages to the log instead of delivering them.
type LogMailer struct {
	log logger.Logger
}

func NewLogMailer(log logger.Logger) *LogMailer {
	return &LogMailer{log: log}
}

func (m *LogMailer) Send(ctx context.Context, msg Message) error {
	if err := msg.validate(); err != nil {
		return err
	}

	names := make([]string, 0, len(msg.Attachments))
	for _, a := range msg.Attachments {
		names = append(names, a.Filename)
	}

	m.log.Info("mail not delivered (log provider)", map[string]interface{}{
		"to":          msg.To,
		"subject":     msg.Subject,
		"bodyLength":  len(msg.Text),
		"attachments": names,
	})
	return nil
}

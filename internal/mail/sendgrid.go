package mail

import (
	"context"
	"encoding/base64"
	"fmt"

	"github.com/sendgrid/rest"
	"github.com/sendgrid/sendgrid-go"
	sgmail "github.com/sendgrid/sendgrid-go/helpers/mail"
)

// SendGridClient is the subset of *sendgrid.Client used here.
type SendGridClient interface {
	SendWithContext(ctx context.Context, email *sgmail.SGMailV3) (*rest.Response, error)
}

type SendGridMailer struct {
	client SendGridClient
	from   Sender
}

func NewSendGridMailer(client SendGridClient, from Sender) *SendGridMailer {
	return &SendGridMailer{client: client, from: from}
}

func NewSendGridMailerFromKey(apiKey string, from Sender) *SendGridMailer {
	return NewSendGridMailer(sendgrid.NewSendClient(apiKey), from)
}

func (m *SendGridMailer) Send(ctx context.Context, msg Message) error {
	if err := msg.validate(); err != nil {
		return err
	}

	message := sgmail.NewV3Mail()
	message.SetFrom(sgmail.NewEmail(m.from.Name, m.from.Email))
	message.Subject = msg.Subject

	p := sgmail.NewPersonalization()
	p.AddTos(sgmail.NewEmail("", msg.To))
	message.AddPersonalizations(p)
	message.AddContent(sgmail.NewContent("text/plain", msg.Text))

	for _, a := range msg.Attachments {
		att := sgmail.NewAttachment()
		att.SetContent(base64.StdEncoding.EncodeToString(a.Content))
		att.SetType(a.contentType())
		att.SetFilename(a.Filename)
		att.SetDisposition("attachment")
		message.AddAttachment(att)
	}

	resp, err := m.client.SendWithContext(ctx, message)
	if err != nil {
		return fmt.Errorf("sendgrid send: %w", err)
	}
	if resp.StatusCode >= 400 {
		return fmt.Errorf("sendgrid send: status %d: %s", resp.StatusCode, resp.Body)
	}
	return nil
}

package emails

import (
	"context"
	"fmt"
	"net/http"

	"github.com/sendgrid/rest"
	"github.com/sendgrid/sendgrid-go"
	"github.com/sendgrid/sendgrid-go/helpers/mail"
)

type sendGridClient interface {
	SendWithContext(ctx context.Context, email *mail.SGMailV3) (*rest.Response, error)
}

// SendGridMailer sends mail through the SendGrid v3 API.
type SendGridMailer struct {
	client sendGridClient
}

// NewSendGridMailer returns a mailer authenticated with apiKey.
func NewSendGridMailer(apiKey string) *SendGridMailer {
	return &SendGridMailer{client: sendgrid.NewSendClient(apiKey)}
}

func (s *SendGridMailer) Name() string { return "sendgrid" }

// Send submits msg and returns the X-Message-Id assigned by SendGrid.
func (s *SendGridMailer) Send(ctx context.Context, msg Message) (Receipt, error) {
	message := mail.NewV3Mail()
	message.SetFrom(mail.NewEmail(msg.From.Name, msg.From.Address))
	message.Subject = msg.Subject

	p := mail.NewPersonalization()
	for _, to := range msg.To {
		p.AddTos(mail.NewEmail("", to))
	}
	message.AddPersonalizations(p)
	message.AddContent(mail.NewContent("text/html", msg.HTML))

	resp, err := s.client.SendWithContext(ctx, message)
	if err != nil {
		return Receipt{}, fmt.Errorf("sendgrid send: %w", err)
	}
	if resp.StatusCode >= 400 {
		return Receipt{}, fmt.Errorf("sendgrid API error: %d %s", resp.StatusCode, resp.Body)
	}

	return Receipt{ID: http.Header(resp.Headers).Get("X-Message-Id")}, nil
}

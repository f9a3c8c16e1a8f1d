package emails

import (
	"context"
	"crypto/tls"
	"fmt"
	"mime"
	"net"
	"net/smtp"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
)

// SMTPMailer delivers mail to a plain SMTP relay such as a local Mailpit instance.
type SMTPMailer struct {
	Host     string
	Port     int
	Username string
	Password string
	now      func() time.Time
}

// NewSMTPMailer returns a mailer for host:port. Credentials are optional.
func NewSMTPMailer(host string, port int, username, password string) *SMTPMailer {
	return &SMTPMailer{Host: host, Port: port, Username: username, Password: password, now: time.Now}
}

func (m *SMTPMailer) Name() string { return "smtp" }

// Send dials the relay, upgrading to TLS when offered, and submits msg.
func (m *SMTPMailer) Send(ctx context.Context, msg Message) (Receipt, error) {
	addr := net.JoinHostPort(m.Host, strconv.Itoa(m.Port))

	var dialer net.Dialer
	conn, err := dialer.DialContext(ctx, "tcp", addr)
	if err != nil {
		return Receipt{}, fmt.Errorf("dial smtp %s: %w", addr, err)
	}
	if deadline, ok := ctx.Deadline(); ok {
		_ = conn.SetDeadline(deadline)
	}

	c, err := smtp.NewClient(conn, m.Host)
	if err != nil {
		conn.Close()
		return Receipt{}, fmt.Errorf("smtp handshake: %w", err)
	}
	defer c.Close()

	if ok, _ := c.Extension("STARTTLS"); ok {
		if err := c.StartTLS(&tls.Config{ServerName: m.Host}); err != nil {
			return Receipt{}, fmt.Errorf("smtp starttls: %w", err)
		}
	}
	if m.Username != "" {
		if ok, _ := c.Extension("AUTH"); ok {
			if err := c.Auth(smtp.PlainAuth("", m.Username, m.Password, m.Host)); err != nil {
				return Receipt{}, fmt.Errorf("smtp auth: %w", err)
			}
		}
	}

	if err := c.Mail(msg.From.Address); err != nil {
		return Receipt{}, fmt.Errorf("smtp mail from: %w", err)
	}
	for _, rcpt := range msg.To {
		if err := c.Rcpt(rcpt); err != nil {
			return Receipt{}, fmt.Errorf("smtp rcpt %s: %w", rcpt, err)
		}
	}

	id := fmt.Sprintf("<%s@%s>", uuid.NewString(), m.Host)
	w, err := c.Data()
	if err != nil {
		return Receipt{}, fmt.Errorf("smtp data: %w", err)
	}
	if _, err := w.Write(buildMessage(msg, id, m.now())); err != nil {
		return Receipt{}, fmt.Errorf("smtp write: %w", err)
	}
	if err := w.Close(); err != nil {
		return Receipt{}, fmt.Errorf("smtp close data: %w", err)
	}

	_ = c.Quit()
	return Receipt{ID: id}, nil
}

func buildMessage(msg Message, messageID string, now time.Time) []byte {
	from := msg.From.Address
	if msg.From.Name != "" {
		from = fmt.Sprintf("%s <%s>", mime.QEncoding.Encode("utf-8", msg.From.Name), msg.From.Address)
	}

	headers := [][2]string{
		{"From", from},
		{"To", strings.Join(msg.To, ", ")},
		{"Subject", mime.QEncoding.Encode("utf-8", msg.Subject)},
		{"Date", now.Format(time.RFC1123Z)},
		{"Message-ID", messageID},
		{"MIME-Version", "1.0"},
		{"Content-Type", `text/html; charset="UTF-8"`},
	}

	var b strings.Builder
	for _, h := range headers {
		b.WriteString(h[0])
		b.WriteString(": ")
		b.WriteString(h[1])
		b.WriteString("\r\n")
	}
	b.WriteString("\r\n")
	b.WriteString(msg.HTML)
	return []byte(b.String())
}

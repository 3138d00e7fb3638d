package notify

import (
	"context"
	"fmt"
	"net"
	"net/smtp"
	"strconv"
	"strings"

	"github.com/harrison/assessment/internal/models"
)

// Message is a plain-text e-mail
type Message struct {
	From    string
	To      string
	Subject string
	Body    string
}

// Mailer delivers messages
type Mailer interface {
	Send(ctx context.Context, msg Message) error
}

// NewLeadMessage builds the notification sent to an assessment owner for a new lead
func NewLeadMessage(to string, resp *models.Response) Message {
	who := resp.Lead.DisplayName()

	var body strings.Builder
	fmt.Fprintf(&body, "New lead for %s\n\n", resp.AssessmentSlug)
	if resp.Lead != nil {
		if resp.Lead.Name != "" {
			fmt.Fprintf(&body, "Name: %s\n", resp.Lead.Name)
		}
		if resp.Lead.Email != "" {
			fmt.Fprintf(&body, "Email: %s\n", resp.Lead.Email)
		}
	}
	fmt.Fprintf(&body, "Score: %s\n", strconv.FormatFloat(resp.Score(), 'f', -1, 64))
	fmt.Fprintf(&body, "Result: %s\n", resp.Result)
	fmt.Fprintf(&body, "Tags: %s\n", strings.Join(resp.Tags(), ", "))
	fmt.Fprintf(&body, "Response: %s\n", resp.UUID)

	return Message{
		To:      to,
		Subject: fmt.Sprintf("New Lead: %s from %s", who, resp.AssessmentSlug),
		Body:    body.String(),
	}
}

// SMTPMailer sends messages through an SMTP relay
type SMTPMailer struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string

	send func(addr string, a smtp.Auth, from string, to []string, msg []byte) error
}

// NewSMTPMailer creates a mailer for host:port. Auth is PLAIN when a username is set.
func NewSMTPMailer(host string, port int, username, password, from string) *SMTPMailer {
	return &SMTPMailer{
		Host:     host,
		Port:     port,
		Username: username,
		Password: password,
		From:     from,
		send:     smtp.SendMail,
	}
}

// Send delivers msg. The SMTP exchange itself cannot be cancelled; ctx is checked before dialing.
func (m *SMTPMailer) Send(ctx context.Context, msg Message) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if msg.To == "" {
		return fmt.Errorf("send mail: recipient is empty")
	}

	from := msg.From
	if from == "" {
		from = m.From
	}

	var auth smtp.Auth
	if m.Username != "" {
		auth = smtp.PlainAuth("", m.Username, m.Password, m.Host)
	}

	addr := net.JoinHostPort(m.Host, strconv.Itoa(m.Port))
	if err := m.send(addr, auth, from, []string{msg.To}, formatMessage(from, msg)); err != nil {
		return fmt.Errorf("send mail to %s: %w", msg.To, err)
	}
	return nil
}

func formatMessage(from string, msg Message) []byte {
	var b strings.Builder
	fmt.Fprintf(&b, "From: %s\r\n", from)
	fmt.Fprintf(&b, "To: %s\r\n", msg.To)
	fmt.Fprintf(&b, "Subject: %s\r\n", msg.Subject)
	b.WriteString("MIME-Version: 1.0\r\n")
	b.WriteString("Content-Type: text/plain; charset=UTF-8\r\n")
	b.WriteString("\r\n")
	b.WriteString(strings.ReplaceAll(msg.Body, "\n", "\r\n"))
	return []byte(b.String())
}

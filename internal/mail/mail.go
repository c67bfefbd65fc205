// Package mail sends plain-text messages with file attachments over SMTP.
package mail

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	gomail "github.com/wneessen/go-mail"
)

type Attachment struct {
	Name        string
	ContentType string
	Data        []byte
}

type Message struct {
	From        string
	To          []string
	Subject     string
	Body        string
	Attachments []Attachment
}

// Sender delivers a Message.
type Sender interface {
	Send(ctx context.Context, msg Message) error
}

func (m Message) validate() error {
	if strings.TrimSpace(m.From) == "" {
		return errors.New("mail: missing sender")
	}
	if strings.ContainsAny(m.From, "\r\n") {
		return fmt.Errorf("mail: invalid sender %q", m.From)
	}
	if len(m.To) == 0 {
		return errors.New("mail: no recipients")
	}
	for _, to := range m.To {
		if strings.TrimSpace(to) == "" || strings.ContainsAny(to, "\r\n") {
			return fmt.Errorf("mail: invalid recipient %q", to)
		}
	}
	if strings.ContainsAny(m.Subject, "\r\n") {
		return errors.New("mail: subject contains a line break")
	}
	return nil
}

// compose turns msg into a go-mail message dated date.
func compose(msg Message, date time.Time) (*gomail.Msg, error) {
	if err := msg.validate(); err != nil {
		return nil, err
	}

	m := gomail.NewMsg()
	if err := m.From(msg.From); err != nil {
		return nil, fmt.Errorf("mail: sender: %w", err)
	}
	if err := m.To(msg.To...); err != nil {
		return nil, fmt.Errorf("mail: recipients: %w", err)
	}
	m.Subject(msg.Subject)
	m.SetDateWithValue(date)
	m.SetBodyString(gomail.TypeTextPlain, msg.Body)

	for _, a := range msg.Attachments {
		ct := a.ContentType
		if ct == "" {
			ct = "application/octet-stream"
		}
		if err := m.AttachReader(a.Name, bytes.NewReader(a.Data), gomail.WithFileContentType(gomail.ContentType(ct))); err != nil {
			return nil, fmt.Errorf("mail: attach %s: %w", a.Name, err)
		}
	}
	return m, nil
}

// Build renders msg as an RFC 5322 message.
func Build(msg Message, date time.Time) ([]byte, error) {
	m, err := compose(msg, date)
	if err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	if _, err := m.WriteTo(&buf); err != nil {
		return nil, fmt.Errorf("mail: render: %w", err)
	}
	return buf.Bytes(), nil
}

// SMTPSender delivers through an SMTP relay, upgrading to TLS when the relay
// offers it. PLAIN auth is used when a username is configured.
type SMTPSender struct {
	Host     string
	Port     int
	Username string
	Password string
}

func (s SMTPSender) Send(ctx context.Context, msg Message) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	m, err := compose(msg, time.Now())
	if err != nil {
		return err
	}

	opts := []gomail.Option{
		gomail.WithPort(s.Port),
		gomail.WithTLSPolicy(gomail.TLSOpportunistic),
	}
	if s.Username != "" {
		opts = append(opts,
			gomail.WithSMTPAuth(gomail.SMTPAuthPlain),
			gomail.WithUsername(s.Username),
			gomail.WithPassword(s.Password),
		)
	}
	client, err := gomail.NewClient(s.Host, opts...)
	if err != nil {
		return fmt.Errorf("mail: smtp client for %s: %w", s.Host, err)
	}
	if err := client.DialAndSendWithContext(ctx, m); err != nil {
		log.Printf("mail: send via %s:%d error: %v", s.Host, s.Port, err)
		return fmt.Errorf("send mail via %s:%d: %w", s.Host, s.Port, err)
	}
	log.Printf("mail: sent subject=%q to=%s attachments=%d", msg.Subject, strings.Join(msg.To, ","), len(msg.Attachments))
	return nil
}

package invoice

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"officebot/internal/mail"
)

func EmailSubject(number string, now time.Time) string {
	return fmt.Sprintf("Invoice #%s - %s", number, now.Format("January 2006"))
}

func EmailBody(now time.Time, senderName string) string {
	return fmt.Sprintf("Hi team,\n\nPlease find attached the invoice for %s.\n\nKind regards,\n%s\n",
		now.Format("January 2006"), senderName)
}

// Mailer emails exported invoices.
type Mailer struct {
	Sender     mail.Sender
	From       string
	To         []string
	SenderName string
}

// Send emails the exported invoice file at path as an attachment.
func (m Mailer) Send(ctx context.Context, now time.Time, number, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read exported invoice: %w", err)
	}
	msg := mail.Message{
		From:    m.From,
		To:      m.To,
		Subject: EmailSubject(number, now),
		Body:    EmailBody(now, m.SenderName),
		Attachments: []mail.Attachment{{
			Name:        filepath.Base(path),
			ContentType: xlsxContentType,
			Data:        data,
		}},
	}
	if err := m.Sender.Send(ctx, msg); err != nil {
		return fmt.Errorf("email invoice %s: %w", number, err)
	}
	return nil
}

package email

import (
	"fmt"
	"net/smtp"
	"os"
)

// Sender delivers transactional mail. The SMTP implementation is the only
// one used in production; tests substitute a fake.
type Sender interface {
	Send(to, subject, body string) error
}

// SMTPSender sends plain text email using SMTP.
type SMTPSender struct{}

// Send sends a plain text email using SMTP credentials from the environment.
func (SMTPSender) Send(to, subject, body string) error {
	from := os.Getenv("SMTP_SENDER")
	password := os.Getenv("SMTP_PASSWORD")
	smtpHost := os.Getenv("SMTP_HOST")
	smtpPort := os.Getenv("SMTP_PORT")

	auth := smtp.PlainAuth("", from, password, smtpHost)

	msg := []byte("To: " + to + "\r\n" +
		"Subject: " + subject + "\r\n" +
		"\r\n" + body + "\r\n")

	address := smtpHost + ":" + smtpPort

	err := smtp.SendMail(address, auth, from, []string{to}, msg)
	if err != nil {
		return fmt.Errorf("failed to send email: %v", err)
	}
	return nil
}

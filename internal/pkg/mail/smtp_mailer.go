package mail

import (
	"fmt"
	"net/smtp"

	"github.com/gofiber/fiber/v2/log"

	"github.com/medihub/medihub/internal/pkg/env"
)

// Mailer sends a single message
type Mailer interface {
	Send(to, subject, body string) error
}

// SMTPMailer sends emails via SMTP
type SMTPMailer struct {
	Host     string
	Port     string
	Username string
	Password string
	Sender   string

	send func(addr string, a smtp.Auth, from string, to []string, msg []byte) error
}

// NewSMTPMailerFromEnv returns nil when SMTP_HOST is not configured.
func NewSMTPMailerFromEnv() *SMTPMailer {
	host := env.GetEnv("SMTP_HOST", "")
	if host == "" {
		return nil
	}

	sender := env.GetEnv("SMTP_SENDER", "")
	if sender == "" {
		sender = fmt.Sprintf("no-reply@%s", "localhost")
		log.Infof("[Mail] SMTP_SENDER not set, using default sender: %s", sender)
	}

	return &SMTPMailer{
		Host:     host,
		Port:     env.GetEnv("SMTP_PORT", "25"),
		Username: env.GetEnv("SMTP_USERNAME", ""),
		Password: env.GetEnv("SMTP_PASSWORD", ""),
		Sender:   sender,
	}
}

// BuildMessage renders the RFC 5322 message body sent over the wire
func (m *SMTPMailer) BuildMessage(to, subject, body string) []byte {
	return []byte(
		fmt.Sprintf("From: %s\r\nTo: %s\r\nSubject: %s\r\n", m.Sender, to, subject) +
			"MIME-Version: 1.0\r\n" +
			"Content-Type: text/plain; charset=UTF-8\r\n\r\n" +
			body,
	)
}

func (m *SMTPMailer) Send(to, subject, body string) error {
	var auth smtp.Auth
	if m.Username != "" && m.Password != "" {
		auth = smtp.PlainAuth("", m.Username, m.Password, m.Host)
	}

	addr := fmt.Sprintf("%s:%s", m.Host, m.Port)
	send := m.send
	if send == nil {
		send = smtp.SendMail
	}

	err := send(addr, auth, m.Sender, []string{to}, m.BuildMessage(to, subject, body))
	if err != nil {
		log.Errorf("[Mail] SMTP send error: %v", err)
	} else {
		log.Infof("[Mail] Email sent to %s via %s", to, addr)
	}
	return err
}

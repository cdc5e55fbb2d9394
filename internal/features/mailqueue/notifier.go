package mailqueue

import (
	"context"
	"errors"
	"fmt"
	"net/smtp"

	"go-memo/internal/config"

	"github.com/google/uuid"
)

// SMTPNotifier delivers queue jobs as HTML email over SMTP
type SMTPNotifier struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
}

func NewSMTPNotifier(cfg *config.Config) Notifier {
	from := cfg.SMTPFrom
	if from == "" {
		from = cfg.SMTPUser
	}
	return &SMTPNotifier{
		Host:     cfg.SMTPHost,
		Port:     cfg.SMTPPort,
		Username: cfg.SMTPUser,
		Password: cfg.SMTPPassword,
		From:     from,
	}
}

func (n *SMTPNotifier) Send(ctx context.Context, to, subject, htmlBody string) (string, error) {
	if n.Host == "" || n.Port == 0 {
		return "", errors.New("invalid email configuration: missing host or port")
	}

	auth := smtp.PlainAuth("", n.Username, n.Password, n.Host)

	msg := fmt.Sprintf("From: %s\r\n"+
		"To: %s\r\n"+
		"Subject: %s\r\n"+
		"MIME-Version: 1.0\r\n"+
		"Content-Type: text/html; charset=\"UTF-8\"\r\n"+
		"\r\n"+
		"%s\r\n", n.From, to, subject, htmlBody)

	addr := fmt.Sprintf("%s:%d", n.Host, n.Port)
	if err := smtp.SendMail(addr, auth, n.From, []string{to}, []byte(msg)); err != nil {
		return "", fmt.Errorf("failed to send email: %w", err)
	}

	return uuid.NewString(), nil
}

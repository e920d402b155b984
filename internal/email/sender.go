package email

import (
	"fmt"

	"helpwise_backend/internal/config"

	"gopkg.in/gomail.v2"
)

type EmailSender struct {
	cfg *config.Config
}

func NewEmailSender(cfg *config.Config) *EmailSender {
	return &EmailSender{cfg: cfg}
}

func (e *EmailSender) Send(to, subject, htmlBody string) error {
	m := gomail.NewMessage()
	m.SetAddressHeader("From", e.cfg.Email.FromEmail, e.cfg.Email.FromName)
	m.SetHeader("To", to)
	m.SetHeader("Subject", subject)
	m.SetBody("text/html", htmlBody)

	d := gomail.NewDialer(
		e.cfg.Email.SMTPHost,
		e.cfg.Email.SMTPPort,
		e.cfg.Email.SMTPUsername,
		e.cfg.Email.SMTPPassword,
	)

	return d.DialAndSend(m)
}

func (e *EmailSender) SendOTP(to, name, code string) error {
	body := fmt.Sprintf(`
		<p>Hi %s,</p>
		<p>Your HelpWise verification code is:</p>
		<h2>%s</h2>
		<p>The code expires in 10 minutes. If you did not request it, ignore this email.</p>
	`, name, code)
	return e.Send(to, "Your HelpWise verification code", body)
}

// Package mail envía el email de bienvenida post-registro vía SMTP.
// Es best-effort: un fallo se loguea y nunca bloquea el registro.
package mail

import (
	"crypto/tls"
	"fmt"

	gomail "github.com/go-mail/mail"

	"github.com/dropDatabas3/gacetilla/internal/observability/logger"
)

// Sender abstrae el envío para poder stubear en tests.
type Sender interface {
	Send(to, subject, htmlBody, textBody string) error
}

// SMTPSender implementa Sender usando SMTP.
type SMTPSender struct {
	Host string
	Port int
	From string
	User string
	Pass string
}

// NewSMTPSender crea un SMTPSender con los parámetros dados.
func NewSMTPSender(host string, port int, from, user, pass string) *SMTPSender {
	return &SMTPSender{Host: host, Port: port, From: from, User: user, Pass: pass}
}

// Send envía un email con contenido HTML y texto plano.
func (s *SMTPSender) Send(to, subject, htmlBody, textBody string) error {
	m := gomail.NewMessage()
	m.SetHeader("From", s.From)
	m.SetHeader("To", to)
	m.SetHeader("Subject", subject)

	if textBody != "" {
		m.SetBody("text/plain", textBody)
	}
	if htmlBody != "" {
		if textBody == "" {
			m.SetBody("text/html", htmlBody)
		} else {
			m.AddAlternative("text/html", htmlBody)
		}
	}

	d := gomail.NewDialer(s.Host, s.Port, s.User, s.Pass)
	d.TLSConfig = &tls.Config{ServerName: s.Host}

	if err := d.DialAndSend(m); err != nil {
		return fmt.Errorf("smtp send: %w", err)
	}
	return nil
}

// SendWelcome arma y envía el email de bienvenida. Soft-fail: sólo
// loguea ante error.
func SendWelcome(s Sender, username, email string) {
	if s == nil || email == "" {
		return
	}
	subject := "Welcome to Gacetilla!"
	text := fmt.Sprintf("Hi %s,\n\nYour account was created successfully. Welcome aboard!\n", username)
	html := fmt.Sprintf("<p>Hi <b>%s</b>,</p><p>Your account was created successfully. Welcome aboard!</p>", username)

	if err := s.Send(email, subject, html, text); err != nil {
		logger.L().Warn("welcome email failed",
			logger.Component("mail"),
			logger.Username(username),
			logger.Err(err),
		)
	}
}

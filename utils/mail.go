package utils

import (
	"bytes"
	"context"
	"embed"
	"errors"
	"fmt"
	"html/template"
	"net/smtp"
)

//go:embed templates/*.html
var templateFS embed.FS

var emailTemplates = template.Must(template.ParseFS(templateFS, "templates/*.html"))

var ErrMailDisabled = errors.New("mail is not configured")

type MailConfig struct {
	Address  string // host:port of the SMTP server
	Host     string // host used for PLAIN auth
	From     string
	Password string
}

type sendFunc func(addr string, a smtp.Auth, from string, to []string, msg []byte) error

// Mailer renders the embedded HTML templates and sends them over SMTP.
type Mailer struct {
	cfg  MailConfig
	send sendFunc
}

func NewMailer(cfg MailConfig) *Mailer {
	return &Mailer{cfg: cfg, send: smtp.SendMail}
}

func (m *Mailer) Enabled() bool {
	return m != nil && m.cfg.Address != "" && m.cfg.From != ""
}

func (m *Mailer) SendEmail(ctx context.Context, emailTo, emailSubject, templateName string, data any) error {
	if !m.Enabled() {
		return ErrMailDisabled
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	body, err := renderTemplate(templateName, data)
	if err != nil {
		return err
	}

	message := fmt.Sprintf(
		"From: %s\r\nTo: %s\r\nSubject: %s\r\nMIME-version: 1.0;\r\nContent-Type: text/html; charset=\"UTF-8\";\r\n\r\n%s",
		m.cfg.From,
		emailTo,
		emailSubject,
		body,
	)

	var auth smtp.Auth
	if m.cfg.Password != "" {
		auth = smtp.PlainAuth("", m.cfg.From, m.cfg.Password, m.cfg.Host)
	}

	if err := m.send(m.cfg.Address, auth, m.cfg.From, []string{emailTo}, []byte(message)); err != nil {
		return fmt.Errorf("failed to send email: %w", err)
	}
	return nil
}

func renderTemplate(name string, data any) (string, error) {
	var body bytes.Buffer
	if err := emailTemplates.ExecuteTemplate(&body, name, data); err != nil {
		return "", fmt.Errorf("template execution error: %w", err)
	}
	return body.String(), nil
}

package mail

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"strings"

	"gopkg.in/gomail.v2"
)

//go:embed templates/*.html
var templates embed.FS

var notificationTmpl = template.Must(template.ParseFS(templates, "templates/notification.html"))

const defaultFrom = "no-reply@autovault.in"

type dialer interface {
	DialAndSend(m ...*gomail.Message) error
}

func NewEmailSender(host string, port int, user, password, from string) *EmailSender {
	if from == "" {
		from = defaultFrom
	}
	return &EmailSender{
		Host:     host,
		Port:     port,
		User:     user,
		Password: password,
		From:     from,
		dialer:   gomail.NewDialer(host, port, user, password),
	}
}

// SendNotification mails a copy of an in-app notification.
func (s *EmailSender) SendNotification(to, subject, message, link string) error {
	return s.send(to, subject, NotificationEmailData{Title: subject, Message: message, Link: s.absoluteLink(link)})
}

func (s *EmailSender) absoluteLink(link string) string {
	if s.BaseURL == "" || link == "" {
		return ""
	}
	return strings.TrimRight(s.BaseURL, "/") + "/" + strings.TrimLeft(link, "/")
}

func (s *EmailSender) send(to, subject string, data NotificationEmailData) error {
	var body bytes.Buffer
	if err := notificationTmpl.Execute(&body, data); err != nil {
		return fmt.Errorf("render notification email: %w", err)
	}

	m := gomail.NewMessage()
	m.SetHeader("From", s.From)
	m.SetHeader("To", to)
	m.SetHeader("Subject", subject)
	m.SetBody("text/plain", data.Message)
	m.AddAlternative("text/html", body.String())

	if err := s.dialer.DialAndSend(m); err != nil {
		return fmt.Errorf("send email via smtp: %w", err)
	}
	return nil
}

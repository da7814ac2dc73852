package mailer

import (
	"context"
	"fmt"
	"html"
	"net/smtp"
	"strings"

	"github.com/rs/zerolog/log"
)

type SMTP struct {
	Host string
	Port string
	User string
	Pass string

	send func(addr string, a smtp.Auth, from string, to []string, msg []byte) error
}

func NewSMTP(host, port, user, pass string) *SMTP {
	return &SMTP{Host: host, Port: port, User: user, Pass: pass, send: smtp.SendMail}
}

// Enabled reports whether credentials were configured.
func (s *SMTP) Enabled() bool {
	return s.User != "" && s.Pass != ""
}

func (s *SMTP) Send(ctx context.Context, to, subject, message string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if to == "" {
		return fmt.Errorf("mailer: empty recipient")
	}
	auth := smtp.PlainAuth("", s.User, s.Pass, s.Host)
	if err := s.send(s.Host+":"+s.Port, auth, s.User, []string{to}, BuildMessage(s.User, to, subject, message)); err != nil {
		return fmt.Errorf("mailer: send to %s: %w", to, err)
	}
	return nil
}

// BuildMessage renders an HTML mail with the message as a single paragraph.
func BuildMessage(from, to, subject, message string) []byte {
	var b strings.Builder
	b.WriteString("From: PlantNet <" + from + ">\r\n")
	b.WriteString("To: " + to + "\r\n")
	b.WriteString("Subject: " + stripNewlines(subject) + "\r\n")
	b.WriteString("MIME-Version: 1.0\r\n")
	b.WriteString("Content-Type: text/html; charset=\"UTF-8\"\r\n")
	b.WriteString("\r\n")
	b.WriteString("<p>" + html.EscapeString(message) + "</p>\r\n")
	return []byte(b.String())
}

func stripNewlines(s string) string {
	return strings.NewReplacer("\r", "", "\n", " ").Replace(s)
}

// LogSender stands in for SMTP when no credentials are configured.
type LogSender struct{}

func (LogSender) Send(_ context.Context, to, subject, message string) error {
	log.Info().Str("to", to).Str("subject", subject).Str("message", message).Msg("mail (not sent, SMTP disabled)")
	return nil
}

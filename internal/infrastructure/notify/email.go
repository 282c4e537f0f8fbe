package notify

import (
	"bytes"
	"context"
	"crypto/tls"
	"embed"
	"errors"
	"fmt"
	"html/template"
	"mime"
	"net"
	"net/smtp"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/officelunch/attendance-api/internal/core/domain"
)

//go:embed templates/*.html
var templateFS embed.FS

// ErrNotConfigured is returned by a sender whose provider settings are missing.
var ErrNotConfigured = errors.New("notification provider not configured")

// SMTPConfig holds the outgoing mail server settings.
type SMTPConfig struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
	FromName string
}

type smtpSendFunc func(ctx context.Context, addr string, auth smtp.Auth, from string, to []string, msg []byte) error

// EmailSender delivers notifications as HTML mail.
type EmailSender struct {
	cfg       SMTPConfig
	templates *template.Template
	log       zerolog.Logger
	send      smtpSendFunc
	now       func() time.Time
}

func NewEmailSender(cfg SMTPConfig, log zerolog.Logger) (*EmailSender, error) {
	tmpl, err := template.ParseFS(templateFS, "templates/*.html")
	if err != nil {
		return nil, fmt.Errorf("parse email templates: %w", err)
	}
	return &EmailSender{cfg: cfg, templates: tmpl, log: log, send: sendMail, now: time.Now}, nil
}

type emailData struct {
	Title string
	Body  string
	Count string
	Date  string
}

func (s *EmailSender) Send(ctx context.Context, address string, msg domain.Message) error {
	if s.cfg.Host == "" {
		return ErrNotConfigured
	}

	tmpl := "notification.html"
	if msg.Data["type"] == domain.NotificationTypeLunchCount {
		tmpl = "headcount.html"
	}

	var body bytes.Buffer
	if err := s.templates.ExecuteTemplate(&body, tmpl, emailData{
		Title: msg.Title,
		Body:  msg.Body,
		Count: msg.Data["count"],
		Date:  msg.Data["date"],
	}); err != nil {
		return fmt.Errorf("execute template: %w", err)
	}

	raw := s.compose(address, msg.Title, body.Bytes())

	var auth smtp.Auth
	if s.cfg.Username != "" {
		auth = smtp.PlainAuth("", s.cfg.Username, s.cfg.Password, s.cfg.Host)
	}
	addr := net.JoinHostPort(s.cfg.Host, strconv.Itoa(s.cfg.Port))

	if err := s.send(ctx, addr, auth, s.cfg.From, []string{address}, raw); err != nil {
		return fmt.Errorf("send email: %w", err)
	}
	s.log.Debug().Str("to", address).Str("subject", msg.Title).Msg("email sent")
	return nil
}

func (s *EmailSender) compose(to, subject string, html []byte) []byte {
	var b bytes.Buffer
	from := s.cfg.From
	if s.cfg.FromName != "" {
		from = fmt.Sprintf("%s <%s>", mime.QEncoding.Encode("utf-8", s.cfg.FromName), s.cfg.From)
	}
	fmt.Fprintf(&b, "From: %s\r\n", from)
	fmt.Fprintf(&b, "To: %s\r\n", to)
	fmt.Fprintf(&b, "Subject: %s\r\n", mime.QEncoding.Encode("utf-8", subject))
	fmt.Fprintf(&b, "Date: %s\r\n", s.now().Format(time.RFC1123Z))
	fmt.Fprintf(&b, "Message-ID: <%s@%s>\r\n", uuid.NewString(), s.cfg.Host)
	b.WriteString("MIME-Version: 1.0\r\n")
	b.WriteString("Content-Type: text/html; charset=\"UTF-8\"\r\n")
	b.WriteString("\r\n")
	b.Write(html)
	return b.Bytes()
}

// sendMail is smtp.SendMail with a context-aware dial and deadline.
func sendMail(ctx context.Context, addr string, auth smtp.Auth, from string, to []string, msg []byte) error {
	var d net.Dialer
	conn, err := d.DialContext(ctx, "tcp", addr)
	if err != nil {
		return err
	}
	if deadline, ok := ctx.Deadline(); ok {
		_ = conn.SetDeadline(deadline)
	}

	host, _, _ := net.SplitHostPort(addr)
	c, err := smtp.NewClient(conn, host)
	if err != nil {
		_ = conn.Close()
		return err
	}
	defer c.Close()

	if ok, _ := c.Extension("STARTTLS"); ok {
		if err := c.StartTLS(&tls.Config{ServerName: host}); err != nil {
			return err
		}
	}
	if auth != nil {
		if err := c.Auth(auth); err != nil {
			return err
		}
	}
	if err := c.Mail(from); err != nil {
		return err
	}
	for _, rcpt := range to {
		if err := c.Rcpt(rcpt); err != nil {
			return err
		}
	}
	w, err := c.Data()
	if err != nil {
		return err
	}
	if _, err := w.Write(msg); err != nil {
		return err
	}
	if err := w.Close(); err != nil {
		return err
	}
	return c.Quit()
}

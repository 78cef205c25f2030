// Package mail sends email over SMTP.
//
//	m := mail.NewSMTP(mail.SMTPConfig{Host: "smtp.example.com", Port: "587", ...})
//	err := m.Send(ctx, mail.New("ann@example.com").
//	    Subject("Your order has shipped").
//	    HTML("<p>On its way.</p>"))
package mail

import (
	"bytes"
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"html/template"
	"mime"
	"net"
	"net/smtp"
	"strings"
	"time"

	"github.com/vitthalk15/DataDash/pkg/logger"
)

// Mailer delivers messages.
type Mailer interface {
	Send(ctx context.Context, m *Message) error
}

// ─── Message ──────────────────────────────────────────────────────────────────

type Message struct {
	to      []string
	cc      []string
	bcc     []string
	subject string
	body    string
	isHTML  bool
	err     error
}

// New starts a message to addresses.
func New(to ...string) *Message {
	return &Message{to: to, isHTML: true}
}

func (m *Message) CC(addresses ...string) *Message {
	m.cc = append(m.cc, addresses...)
	return m
}

func (m *Message) BCC(addresses ...string) *Message {
	m.bcc = append(m.bcc, addresses...)
	return m
}

func (m *Message) Subject(s string) *Message {
	m.subject = s
	return m
}

func (m *Message) HTML(body string) *Message {
	m.body, m.isHTML = body, true
	return m
}

func (m *Message) Text(body string) *Message {
	m.body, m.isHTML = body, false
	return m
}

// Template renders tmpl with data as the HTML body. A render error is
// returned by Send.
func (m *Message) Template(tmpl *template.Template, data any) *Message {
	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		m.err = fmt.Errorf("mail: render %s: %w", tmpl.Name(), err)
		return m
	}
	return m.HTML(buf.String())
}

func (m *Message) Recipients() []string {
	return append(append(append([]string(nil), m.to...), m.cc...), m.bcc...)
}

func (m *Message) SubjectLine() string { return m.subject }

func (m *Message) validate() error {
	if m.err != nil {
		return m.err
	}
	if len(m.to) == 0 {
		return errors.New("mail: no recipients")
	}
	for _, v := range append(m.Recipients(), m.subject) {
		if strings.ContainsAny(v, "\r\n") {
			return errors.New("mail: header contains a line break")
		}
	}
	return nil
}

// Raw renders the RFC 5322 message.
func (m *Message) Raw(from string, date time.Time) []byte {
	contentType := "text/plain"
	if m.isHTML {
		contentType = "text/html"
	}
	var b strings.Builder
	b.WriteString("From: " + from + "\r\n")
	b.WriteString("To: " + strings.Join(m.to, ", ") + "\r\n")
	if len(m.cc) > 0 {
		b.WriteString("Cc: " + strings.Join(m.cc, ", ") + "\r\n")
	}
	b.WriteString("Subject: " + mime.QEncoding.Encode("utf-8", m.subject) + "\r\n")
	b.WriteString("Date: " + date.Format(time.RFC1123Z) + "\r\n")
	b.WriteString("MIME-Version: 1.0\r\n")
	b.WriteString(fmt.Sprintf("Content-Type: %s; charset=\"UTF-8\"\r\n", contentType))
	b.WriteString("\r\n")
	b.WriteString(m.body)
	return []byte(b.String())
}

// ─── SMTP ─────────────────────────────────────────────────────────────────────

type SMTPConfig struct {
	Host     string
	Port     string
	Username string
	Password string
	From     string
	FromName string
}

type SMTP struct {
	cfg SMTPConfig
}

func NewSMTP(cfg SMTPConfig) *SMTP { return &SMTP{cfg: cfg} }

func (s *SMTP) from() string {
	if s.cfg.FromName == "" {
		return s.cfg.From
	}
	return mime.QEncoding.Encode("utf-8", s.cfg.FromName) + " <" + s.cfg.From + ">"
}

// Send uses implicit TLS on port 465 and STARTTLS when offered otherwise.
func (s *SMTP) Send(ctx context.Context, m *Message) error {
	if err := m.validate(); err != nil {
		return err
	}
	addr := net.JoinHostPort(s.cfg.Host, s.cfg.Port)
	d := net.Dialer{Timeout: 10 * time.Second}

	var (
		conn net.Conn
		err  error
	)
	if s.cfg.Port == "465" {
		conn, err = (&tls.Dialer{NetDialer: &d, Config: &tls.Config{ServerName: s.cfg.Host}}).DialContext(ctx, "tcp", addr)
	} else {
		conn, err = d.DialContext(ctx, "tcp", addr)
	}
	if err != nil {
		return fmt.Errorf("mail: dial %s: %w", addr, err)
	}
	if dl, ok := ctx.Deadline(); ok {
		_ = conn.SetDeadline(dl)
	}

	c, err := smtp.NewClient(conn, s.cfg.Host)
	if err != nil {
		conn.Close()
		return fmt.Errorf("mail: handshake: %w", err)
	}
	defer c.Close()

	if ok, _ := c.Extension("STARTTLS"); ok && s.cfg.Port != "465" {
		if err := c.StartTLS(&tls.Config{ServerName: s.cfg.Host}); err != nil {
			return fmt.Errorf("mail: starttls: %w", err)
		}
	}
	if s.cfg.Username != "" {
		if err := c.Auth(smtp.PlainAuth("", s.cfg.Username, s.cfg.Password, s.cfg.Host)); err != nil {
			return fmt.Errorf("mail: auth: %w", err)
		}
	}
	if err := c.Mail(s.cfg.From); err != nil {
		return fmt.Errorf("mail: MAIL FROM: %w", err)
	}
	for _, rcpt := range m.Recipients() {
		if err := c.Rcpt(rcpt); err != nil {
			return fmt.Errorf("mail: RCPT TO %s: %w", rcpt, err)
		}
	}
	w, err := c.Data()
	if err != nil {
		return fmt.Errorf("mail: DATA: %w", err)
	}
	if _, err := w.Write(m.Raw(s.from(), time.Now())); err != nil {
		w.Close()
		return fmt.Errorf("mail: write: %w", err)
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("mail: write: %w", err)
	}
	return c.Quit()
}

// ─── Log ──────────────────────────────────────────────────────────────────────

// Log writes messages to the logger instead of sending them. It is used
// when no SMTP host is configured.
type Log struct{}

func (Log) Send(ctx context.Context, m *Message) error {
	if err := m.validate(); err != nil {
		return err
	}
	logger.WithCtx(ctx).Info("mail: not sent, no SMTP host configured",
		"to", strings.Join(m.Recipients(), ","), "subject", m.subject)
	return nil
}

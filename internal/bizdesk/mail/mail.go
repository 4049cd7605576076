// Package mail delivers invitation e-mails over SMTP, or logs them when no
// SMTP server is configured.
package mail

import (
	"bytes"
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"html/template"
	"log/slog"
	"mime"
	"net"
	"net/smtp"
	"strings"
	"time"

	"github.com/aussiebroadwan/bizdesk/internal/bizdesk/service"
	"github.com/aussiebroadwan/bizdesk/pkg/slogx"
)

// DefaultTimeout bounds one delivery, from dial to QUIT.
const DefaultTimeout = 10 * time.Second

// Config is read from BIZDESK_SMTP_* by the app package.
type Config struct {
	Host     string        `env:"HOST"`
	Port     string        `env:"PORT" envDefault:"587"`
	Username string        `env:"USERNAME"`
	Password string        `env:"PASSWORD"`
	From     string        `env:"FROM"`
	FromName string        `env:"FROM_NAME" envDefault:"bizdesk"`
	Timeout  time.Duration `env:"TIMEOUT" envDefault:"10s"`
}

// Configured reports whether enough is set to talk to an SMTP server.
func (c Config) Configured() bool {
	return c.Host != "" && c.From != ""
}

// SendFunc is smtp.SendMail with a context. It must give up once ctx is done.
type SendFunc func(ctx context.Context, addr string, a smtp.Auth, from string, to []string, msg []byte) error

// SMTPMailer sends HTML invitation e-mails through one SMTP relay.
type SMTPMailer struct {
	cfg  Config
	send SendFunc
}

func NewSMTPMailer(cfg Config) *SMTPMailer {
	if cfg.Port == "" {
		cfg.Port = "587"
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}
	return &SMTPMailer{cfg: cfg, send: sendMail}
}

// WithSender swaps the transport, mostly for tests.
func (m *SMTPMailer) WithSender(send SendFunc) *SMTPMailer {
	m.send = send
	return m
}

func (m *SMTPMailer) SendInvitation(ctx context.Context, msg service.InvitationEmail) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	body, err := Render(msg)
	if err != nil {
		return fmt.Errorf("mail: render invitation: %w", err)
	}

	subject := fmt.Sprintf("You've been invited to join %s", msg.OrganizationName)
	raw := m.compose(msg.To, subject, body)

	var auth smtp.Auth
	if m.cfg.Username != "" {
		auth = smtp.PlainAuth("", m.cfg.Username, m.cfg.Password, m.cfg.Host)
	}

	ctx, cancel := context.WithTimeout(ctx, m.cfg.Timeout)
	defer cancel()

	addr := net.JoinHostPort(m.cfg.Host, m.cfg.Port)
	if err := m.send(ctx, addr, auth, m.cfg.From, []string{msg.To}, raw); err != nil {
		return fmt.Errorf("mail: send to %s: %w", addr, err)
	}
	return nil
}

// sendMail follows smtp.SendMail but dials with ctx and keeps the
// connection deadline at ctx's deadline. Cancellation closes the connection
// so a relay that never answers cannot hold the caller.
func sendMail(ctx context.Context, addr string, a smtp.Auth, from string, to []string, msg []byte) (err error) {
	var d net.Dialer
	conn, err := d.DialContext(ctx, "tcp", addr)
	if err != nil {
		return err
	}
	if deadline, ok := ctx.Deadline(); ok {
		if err := conn.SetDeadline(deadline); err != nil {
			_ = conn.Close()
			return err
		}
	}
	stop := context.AfterFunc(ctx, func() { _ = conn.Close() })
	defer func() {
		if !stop() && err != nil {
			err = errors.Join(ctx.Err(), err)
		}
	}()

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
	if a != nil {
		if ok, _ := c.Extension("AUTH"); !ok {
			return errors.New("smtp: server doesn't support AUTH")
		}
		if err := c.Auth(a); err != nil {
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

func (m *SMTPMailer) compose(to, subject, htmlBody string) []byte {
	from := m.cfg.From
	if m.cfg.FromName != "" {
		from = fmt.Sprintf("%s <%s>", mime.QEncoding.Encode("utf-8", m.cfg.FromName), m.cfg.From)
	}

	var b strings.Builder
	fmt.Fprintf(&b, "From: %s\r\n", from)
	fmt.Fprintf(&b, "To: %s\r\n", to)
	fmt.Fprintf(&b, "Subject: %s\r\n", mime.QEncoding.Encode("utf-8", subject))
	b.WriteString("MIME-Version: 1.0\r\n")
	b.WriteString("Content-Type: text/html; charset=UTF-8\r\n")
	b.WriteString("\r\n")
	b.WriteString(htmlBody)
	return []byte(b.String())
}

// LogMailer writes the invitation link to the log instead of sending it.
type LogMailer struct {
	Logger *slog.Logger
}

func NewLogMailer(logger *slog.Logger) *LogMailer {
	if logger == nil {
		logger = slogx.Discard()
	}
	return &LogMailer{Logger: logger}
}

func (m *LogMailer) SendInvitation(ctx context.Context, msg service.InvitationEmail) error {
	m.Logger.InfoContext(ctx, "smtp not configured, invitation link logged instead",
		slog.String("to", msg.To),
		slog.String("organization", msg.OrganizationName),
		slog.String("role", msg.Role.String()),
		slog.String("link", msg.Link),
		slog.Time("expires_at", msg.ExpiresAt),
	)
	return nil
}

// New picks the SMTP mailer when cfg is usable and the log mailer otherwise.
func New(cfg Config, logger *slog.Logger) service.Mailer {
	if cfg.Configured() {
		return NewSMTPMailer(cfg)
	}
	return NewLogMailer(logger)
}

type invitationData struct {
	OrganizationName string
	InviterName      string
	Role             string
	Link             string
	ExpiresAt        string
}

var invitationTmpl = template.Must(template.New("invitation").Parse(`<!DOCTYPE html>
<html>
<head><meta charset="UTF-8"></head>
<body style="font-family: Arial, sans-serif; line-height: 1.6; color: #333; max-width: 600px; margin: 0 auto;">
	<h2>Join {{.OrganizationName}} on bizdesk</h2>
	<p>{{if .InviterName}}{{.InviterName}} has invited you{{else}}You have been invited{{end}} to join <strong>{{.OrganizationName}}</strong> as <strong>{{.Role}}</strong>.</p>
	<p><a href="{{.Link}}" style="background-color: #2f6fde; color: white; padding: 10px 20px; text-decoration: none; border-radius: 4px; display: inline-block;">Accept invitation</a></p>
	<p>Or paste this link into your browser:<br>{{.Link}}</p>
	<p>The invitation expires on {{.ExpiresAt}} and can be used once.</p>
	<p style="color: #666; font-size: 12px;">If you were not expecting this, you can ignore this e-mail.</p>
</body>
</html>
`))

// Render returns the HTML body of an invitation e-mail.
func Render(msg service.InvitationEmail) (string, error) {
	data := invitationData{
		OrganizationName: msg.OrganizationName,
		InviterName:      msg.InviterName,
		Role:             msg.Role.String(),
		Link:             msg.Link,
		ExpiresAt:        msg.ExpiresAt.UTC().Format(time.RFC1123),
	}

	var buf bytes.Buffer
	if err := invitationTmpl.Execute(&buf, data); err != nil {
		return "", err
	}
	return buf.String(), nil
}

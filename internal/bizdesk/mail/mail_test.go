package mail

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"io"
	"log/slog"
	"net"
	"net/smtp"
	"strings"
	"testing"
	"time"

	"github.com/aussiebroadwan/bizdesk/internal/bizdesk/domain"
	"github.com/aussiebroadwan/bizdesk/internal/bizdesk/service"
	"github.com/stretchr/testify/require"
)

func testEmail() service.InvitationEmail {
	return service.InvitationEmail{
		To:               "bob@x.com",
		OrganizationName: "Acme <Plumbing>",
		InviterName:      "Alice",
		Role:             domain.RoleAdmin,
		Link:             "https://app.bizdesk.test/register?invite=abc123",
		ExpiresAt:        time.Date(2026, 3, 3, 9, 0, 0, 0, time.UTC),
	}
}

func TestRender(t *testing.T) {
	t.Parallel()

	body, err := Render(testEmail())
	require.NoError(t, err)
	require.Contains(t, body, "https://app.bizdesk.test/register?invite=abc123")
	require.Contains(t, body, "Alice has invited you")
	require.Contains(t, body, "<strong>admin</strong>")
	require.Contains(t, body, "Acme &lt;Plumbing&gt;")
	require.NotContains(t, body, "Acme <Plumbing>")
}

func TestSMTPMailer(t *testing.T) {
	t.Parallel()

	type call struct {
		addr string
		auth smtp.Auth
		from string
		to   []string
		msg  []byte
	}
	var got call

	m := NewSMTPMailer(Config{
		Host:     "smtp.example.com",
		Username: "user",
		Password: "pass",
		From:     "noreply@bizdesk.test",
		FromName: "bizdesk",
	}).WithSender(func(ctx context.Context, addr string, a smtp.Auth, from string, to []string, msg []byte) error {
		_, hasDeadline := ctx.Deadline()
		require.True(t, hasDeadline)
		got = call{addr, a, from, to, msg}
		return nil
	})

	require.NoError(t, m.SendInvitation(t.Context(), testEmail()))
	require.Equal(t, "smtp.example.com:587", got.addr)
	require.NotNil(t, got.auth)
	require.Equal(t, "noreply@bizdesk.test", got.from)
	require.Equal(t, []string{"bob@x.com"}, got.to)

	raw := string(got.msg)
	require.Contains(t, raw, "From: bizdesk <noreply@bizdesk.test>\r\n")
	require.Contains(t, raw, "To: bob@x.com\r\n")
	require.Contains(t, raw, "Content-Type: text/html; charset=UTF-8\r\n\r\n")
	require.Contains(t, raw, "invite=abc123")
}

func TestSMTPMailerFailure(t *testing.T) {
	t.Parallel()

	down := errors.New("connection refused")
	m := NewSMTPMailer(Config{Host: "smtp.example.com", Port: "2525", From: "noreply@bizdesk.test"}).
		WithSender(func(context.Context, string, smtp.Auth, string, []string, []byte) error { return down })

	err := m.SendInvitation(t.Context(), testEmail())
	require.ErrorIs(t, err, down)
	require.Contains(t, err.Error(), "smtp.example.com:2525")
}

// silentRelay accepts connections and never sends a greeting.
func silentRelay(t *testing.T) (host, port string) {
	t.Helper()

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	t.Cleanup(func() { _ = ln.Close() })

	go func() {
		for {
			conn, err := ln.Accept()
			if err != nil {
				return
			}
			go func(c net.Conn) {
				_, _ = io.Copy(io.Discard, c)
				_ = c.Close()
			}(conn)
		}
	}()

	host, port, err = net.SplitHostPort(ln.Addr().String())
	require.NoError(t, err)
	return host, port
}

func TestSMTPMailerHungRelay(t *testing.T) {
	t.Parallel()

	host, port := silentRelay(t)

	t.Run("request context", func(t *testing.T) {
		t.Parallel()
		m := NewSMTPMailer(Config{Host: host, Port: port, From: "noreply@bizdesk.test", Timeout: time.Minute})

		ctx, cancel := context.WithTimeout(t.Context(), 300*time.Millisecond)
		defer cancel()

		start := time.Now()
		err := m.SendInvitation(ctx, testEmail())
		require.Error(t, err)
		require.Less(t, time.Since(start), 3*time.Second)
	})

	t.Run("configured timeout", func(t *testing.T) {
		t.Parallel()
		m := NewSMTPMailer(Config{Host: host, Port: port, From: "noreply@bizdesk.test", Timeout: 300 * time.Millisecond})

		start := time.Now()
		err := m.SendInvitation(t.Context(), testEmail())
		require.Error(t, err)
		require.Less(t, time.Since(start), 3*time.Second)
	})
}

// fakeRelay speaks just enough SMTP for one message and returns what it got.
func fakeRelay(t *testing.T) (host, port string, received <-chan string) {
	t.Helper()

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	t.Cleanup(func() { _ = ln.Close() })

	out := make(chan string, 1)
	go func() {
		conn, err := ln.Accept()
		if err != nil {
			return
		}
		defer conn.Close()

		r := bufio.NewReader(conn)
		reply := func(line string) { _, _ = conn.Write([]byte(line + "\r\n")) }

		reply("220 relay.test ESMTP")
		var data strings.Builder
		for {
			line, err := r.ReadString('\n')
			if err != nil {
				return
			}
			cmd := strings.ToUpper(strings.TrimSpace(line))
			switch {
			case strings.HasPrefix(cmd, "EHLO"), strings.HasPrefix(cmd, "HELO"):
				reply("250 relay.test")
			case strings.HasPrefix(cmd, "MAIL"), strings.HasPrefix(cmd, "RCPT"):
				reply("250 OK")
			case cmd == "DATA":
				reply("354 go ahead")
				for {
					l, err := r.ReadString('\n')
					if err != nil {
						return
					}
					if l == ".\r\n" {
						break
					}
					data.WriteString(l)
				}
				reply("250 queued")
			case cmd == "QUIT":
				reply("221 bye")
				out <- data.String()
				return
			default:
				reply("502 not implemented")
			}
		}
	}()

	host, port, err = net.SplitHostPort(ln.Addr().String())
	require.NoError(t, err)
	return host, port, out
}

func TestSMTPMailerDelivers(t *testing.T) {
	t.Parallel()

	host, port, received := fakeRelay(t)
	m := NewSMTPMailer(Config{Host: host, Port: port, From: "noreply@bizdesk.test", Timeout: 5 * time.Second})

	require.NoError(t, m.SendInvitation(t.Context(), testEmail()))

	select {
	case msg := <-received:
		require.Contains(t, msg, "To: bob@x.com\r\n")
		require.Contains(t, msg, "invite=abc123")
	case <-time.After(5 * time.Second):
		t.Fatal("relay received nothing")
	}
}

func TestLogMailer(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	m := NewLogMailer(slog.New(slog.NewJSONHandler(&buf, nil)))

	require.NoError(t, m.SendInvitation(t.Context(), testEmail()))
	require.Contains(t, buf.String(), "invite=abc123")
	require.Contains(t, buf.String(), `"to":"bob@x.com"`)
}

func TestNewPicksTransport(t *testing.T) {
	t.Parallel()

	require.IsType(t, &LogMailer{}, New(Config{}, nil))
	require.IsType(t, &SMTPMailer{}, New(Config{Host: "smtp.example.com", From: "a@b.c"}, nil))
}

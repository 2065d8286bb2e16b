package sendmfacode

import (
	"bytes"
	"context"
	"crypto/tls"
	"fmt"
	"mime"
	"mime/multipart"
	"net"
	"net/mail"
	"net/smtp"
	"net/textproto"
	"time"

	"github.com/google/uuid"

	"partner-dashboard/internal/common/aws"
	"partner-dashboard/internal/common/config"
)

// Message is a rendered verification email.
type Message struct {
	From    mail.Address
	To      string
	Subject string
	Text    string
	HTML    string
}

// Mailer delivers a message and returns the provider message id.
type Mailer interface {
	Send(ctx context.Context, msg Message) (string, error)
	Provider() string
}

func renderMessage(cfg *Config, to, code string) Message {
	return Message{
		From:    mail.Address{Name: cfg.FromName, Address: cfg.FromEmail},
		To:      to,
		Subject: cfg.Subject,
		Text:    fmt.Sprintf("A belépési kódod: %s", code),
		HTML:    fmt.Sprintf("<h2>Belépési kód: %s</h2><p>10 percig érvényes.</p>", code),
	}
}

// ---------- SMTP ----------

type SMTPMailer struct {
	cfg  config.SMTPConfig
	dial func(ctx context.Context, network, addr string) (net.Conn, error)
}

func NewSMTPMailer(cfg config.SMTPConfig) *SMTPMailer {
	d := &net.Dialer{Timeout: 15 * time.Second}
	return &SMTPMailer{cfg: cfg, dial: d.DialContext}
}

func (m *SMTPMailer) Provider() string { return "SMTP" }

func (m *SMTPMailer) Send(ctx context.Context, msg Message) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", fmt.Errorf("context cancelled before sending email: %w", err)
	}

	messageID := fmt.Sprintf("<%s@%s>", uuid.NewString(), m.cfg.Host)
	body, err := buildMIMEMessage(msg, messageID, time.Now())
	if err != nil {
		return "", err
	}

	addr := net.JoinHostPort(m.cfg.Host, fmt.Sprint(m.cfg.Port))

	var auth smtp.Auth
	if m.cfg.Username != "" && m.cfg.Password != "" {
		auth = smtp.PlainAuth("", m.cfg.Username, m.cfg.Password, m.cfg.Host)
	}

	if err := m.send(ctx, addr, auth, msg.From.Address, []string{msg.To}, body); err != nil {
		return "", err
	}
	return messageID, nil
}

func (m *SMTPMailer) send(ctx context.Context, addr string, auth smtp.Auth, from string, to []string, msg []byte) error {
	conn, err := m.dial(ctx, "tcp", addr)
	if err != nil {
		return fmt.Errorf("failed to connect to SMTP server: %w", err)
	}
	if deadline, ok := ctx.Deadline(); ok {
		_ = conn.SetDeadline(deadline)
	}

	client, err := smtp.NewClient(conn, m.cfg.Host)
	if err != nil {
		conn.Close()
		return fmt.Errorf("failed to open SMTP session: %w", err)
	}
	defer client.Close()

	// Mailtrap and most relays offer STARTTLS; UseTLS makes it mandatory.
	if ok, _ := client.Extension("STARTTLS"); ok || m.cfg.UseTLS {
		if err = client.StartTLS(&tls.Config{ServerName: m.cfg.Host}); err != nil {
			return fmt.Errorf("failed to start TLS: %w", err)
		}
	}

	if auth != nil {
		if err = client.Auth(auth); err != nil {
			return fmt.Errorf("SMTP authentication failed: %w", err)
		}
	}

	if err = client.Mail(from); err != nil {
		return fmt.Errorf("failed to set sender: %w", err)
	}
	for _, rcpt := range to {
		if err = client.Rcpt(rcpt); err != nil {
			return fmt.Errorf("failed to set recipient %s: %w", rcpt, err)
		}
	}

	w, err := client.Data()
	if err != nil {
		return fmt.Errorf("failed to open data writer: %w", err)
	}
	if _, err = w.Write(msg); err != nil {
		return fmt.Errorf("failed to write message: %w", err)
	}
	if err = w.Close(); err != nil {
		return fmt.Errorf("failed to close data writer: %w", err)
	}

	return client.Quit()
}

// buildMIMEMessage renders a multipart/alternative message with a text and
// an HTML part.
func buildMIMEMessage(msg Message, messageID string, now time.Time) ([]byte, error) {
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)

	parts := []struct {
		contentType string
		content     string
	}{
		{"text/plain; charset=UTF-8", msg.Text},
		{"text/html; charset=UTF-8", msg.HTML},
	}
	for _, p := range parts {
		h := textproto.MIMEHeader{}
		h.Set("Content-Type", p.contentType)
		h.Set("Content-Transfer-Encoding", "8bit")
		pw, err := mw.CreatePart(h)
		if err != nil {
			return nil, fmt.Errorf("failed to create mime part: %w", err)
		}
		if _, err := pw.Write([]byte(p.content)); err != nil {
			return nil, fmt.Errorf("failed to write mime part: %w", err)
		}
	}
	if err := mw.Close(); err != nil {
		return nil, fmt.Errorf("failed to close mime writer: %w", err)
	}

	var out bytes.Buffer
	fmt.Fprintf(&out, "From: %s\r\n", msg.From.String())
	fmt.Fprintf(&out, "To: %s\r\n", msg.To)
	fmt.Fprintf(&out, "Subject: %s\r\n", mime.QEncoding.Encode("utf-8", msg.Subject))
	fmt.Fprintf(&out, "Date: %s\r\n", now.Format(time.RFC1123Z))
	fmt.Fprintf(&out, "Message-ID: %s\r\n", messageID)
	out.WriteString("MIME-Version: 1.0\r\n")
	fmt.Fprintf(&out, "Content-Type: multipart/alternative; boundary=%q\r\n", mw.Boundary())
	out.WriteString("\r\n")
	out.Write(body.Bytes())

	return out.Bytes(), nil
}

// ---------- SES ----------

// EmailSender is the subset of the SES client the mailer needs.
type EmailSender interface {
	SendMessage(ctx context.Context, from, to, subject, text, html string) (string, error)
}

type SESMailer struct {
	ses EmailSender
}

func NewSESMailer(ses EmailSender) *SESMailer {
	return &SESMailer{ses: ses}
}

func (m *SESMailer) Provider() string { return "SES" }

func (m *SESMailer) Send(ctx context.Context, msg Message) (string, error) {
	id, err := m.ses.SendMessage(ctx, msg.From.String(), msg.To, msg.Subject, msg.Text, msg.HTML)
	if err != nil {
		return "", fmt.Errorf("ses send failed: %w", err)
	}
	return id, nil
}

// NewMailerFromConfig picks SES when it is enabled, SMTP when credentials are
// present, and nil otherwise.
func NewMailerFromConfig(ctx context.Context, appConfig *config.Config) (Mailer, error) {
	if appConfig == nil {
		return nil, nil
	}
	awsCfg := appConfig.Integrations.AWS
	if awsCfg.SES.Enabled {
		client, err := aws.NewSESClient(ctx, awsCfg.Region)
		if err != nil {
			return nil, fmt.Errorf("failed to create SES client: %w", err)
		}
		return NewSESMailer(client), nil
	}
	if appConfig.Integrations.SMTP.Configured() {
		return NewSMTPMailer(appConfig.Integrations.SMTP), nil
	}
	return nil, nil
}

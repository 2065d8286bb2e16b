package sendmfacode

import (
	"context"
	"fmt"
	"io"
	"mime"
	"mime/multipart"
	"net"
	"net/mail"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"partner-dashboard/internal/common/config"
)

func TestBuildMIMEMessage(t *testing.T) {
	msg := renderMessage(DefaultConfig(), "anna@example.com", "654321")
	raw, err := buildMIMEMessage(msg, "<id@host>", time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC))
	require.NoError(t, err)

	parsed, err := mail.ReadMessage(strings.NewReader(string(raw)))
	require.NoError(t, err)

	assert.Equal(t, `"Umbroll Security" <security@umbroll.com>`, parsed.Header.Get("From"))
	assert.Equal(t, "anna@example.com", parsed.Header.Get("To"))
	assert.Equal(t, "<id@host>", parsed.Header.Get("Message-ID"))

	subject, err := new(mime.WordDecoder).DecodeHeader(parsed.Header.Get("Subject"))
	require.NoError(t, err)
	assert.Equal(t, "Umbroll MFA Kód", subject)

	mediaType, params, err := mime.ParseMediaType(parsed.Header.Get("Content-Type"))
	require.NoError(t, err)
	assert.Equal(t, "multipart/alternative", mediaType)

	mr := multipart.NewReader(parsed.Body, params["boundary"])
	var bodies []string
	var types []string
	for {
		part, err := mr.NextPart()
		if err == io.EOF {
			break
		}
		require.NoError(t, err)
		b, err := io.ReadAll(part)
		require.NoError(t, err)
		types = append(types, part.Header.Get("Content-Type"))
		bodies = append(bodies, string(b))
	}

	assert.Equal(t, []string{"text/plain; charset=UTF-8", "text/html; charset=UTF-8"}, types)
	assert.Equal(t, []string{
		"A belépési kódod: 654321",
		"<h2>Belépési kód: 654321</h2><p>10 percig érvényes.</p>",
	}, bodies)
}

func TestSMTPMailer_ConnectionFailure(t *testing.T) {
	m := NewSMTPMailer(config.SMTPConfig{Host: "smtp.invalid", Port: 2525, Username: "u", Password: "p"})
	m.dial = func(ctx context.Context, network, addr string) (net.Conn, error) {
		assert.Equal(t, "smtp.invalid:2525", addr)
		return nil, fmt.Errorf("connection refused")
	}

	_, err := m.Send(context.Background(), renderMessage(DefaultConfig(), "anna@example.com", "1"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to connect to SMTP server")
}

func TestSMTPMailer_CancelledContext(t *testing.T) {
	m := NewSMTPMailer(config.SMTPConfig{Host: "smtp.invalid", Port: 2525})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := m.Send(ctx, renderMessage(DefaultConfig(), "anna@example.com", "1"))
	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)
}

type mockEmailSender struct {
	mock.Mock
}

func (m *mockEmailSender) SendMessage(ctx context.Context, from, to, subject, text, html string) (string, error) {
	args := m.Called(ctx, from, to, subject, text, html)
	return args.String(0), args.Error(1)
}

func TestSESMailer_Send(t *testing.T) {
	sender := new(mockEmailSender)
	msg := renderMessage(DefaultConfig(), "anna@example.com", "111222")
	sender.On("SendMessage", mock.Anything, `"Umbroll Security" <security@umbroll.com>`, "anna@example.com",
		"Umbroll MFA Kód", msg.Text, msg.HTML).Return("ses-1", nil)

	m := NewSESMailer(sender)
	id, err := m.Send(context.Background(), msg)
	require.NoError(t, err)
	assert.Equal(t, "ses-1", id)
	assert.Equal(t, "SES", m.Provider())
}

func TestNewMailerFromConfig(t *testing.T) {
	ctx := context.Background()

	m, err := NewMailerFromConfig(ctx, &config.Config{})
	require.NoError(t, err)
	assert.Nil(t, m)

	cfg := &config.Config{}
	cfg.Integrations.SMTP = config.SMTPConfig{Host: "smtp.example.com", Port: 2525, Username: "u", Password: "p"}
	m, err = NewMailerFromConfig(ctx, cfg)
	require.NoError(t, err)
	require.NotNil(t, m)
	assert.Equal(t, "SMTP", m.Provider())
}

package email

import (
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSendWithoutCredentialsIsNoop(t *testing.T) {
	svc := NewEmailService(SMTPConfig{StudioName: "Studio"}, zerolog.Nop())
	svc.send = func(string, []byte) error {
		t.Fatal("send must not be called without credentials")
		return nil
	}

	assert.NoError(t, svc.SendMagicLinkEmail("a@b.test", "http://x/auth/callback?code=1"))
}

func TestConfirmationEmailEscapesName(t *testing.T) {
	svc := NewEmailService(SMTPConfig{
		Username:   "u",
		Password:   "p",
		FromName:   "Dance Studio",
		FromEmail:  "no-reply@studio.test",
		StudioName: "Dance Studio",
	}, zerolog.Nop())

	var (
		to  string
		msg string
	)
	svc.send = func(recipient string, message []byte) error {
		to, msg = recipient, string(message)
		return nil
	}

	err := svc.SendConfirmationEmail("kim@studio.test", "<Kim>", "http://x/auth/callback?token_hash=abc&type=signup")
	require.NoError(t, err)

	assert.Equal(t, "kim@studio.test", to)
	assert.Contains(t, msg, "From: Dance Studio <no-reply@studio.test>\r\n")
	assert.Contains(t, msg, "Subject: Confirm your email - Dance Studio\r\n")
	assert.Contains(t, msg, "&lt;Kim&gt;")
	assert.Contains(t, msg, "token_hash=abc&amp;type=signup")
}

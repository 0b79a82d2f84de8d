package email

import (
	"crypto/tls"
	"fmt"
	"html"
	"net/smtp"
	"sort"
	"strconv"
	"strings"

	"github.com/rs/zerolog"
)

// EmailService defines the interface for email operations
type EmailService interface {
	SendConfirmationEmail(toEmail, toName, link string) error
	SendMagicLinkEmail(toEmail, link string) error
	SendRecoveryEmail(toEmail, link string) error
}

// SMTPConfig holds configuration for SMTP server
type SMTPConfig struct {
	Host       string
	Port       int
	Username   string
	Password   string
	FromName   string
	FromEmail  string
	UseTLS     bool
	StudioName string
}

// EmailServiceImpl implements EmailService
type EmailServiceImpl struct {
	config SMTPConfig
	logger zerolog.Logger
	send   func(to string, message []byte) error
}

// NewEmailService creates a new EmailService
func NewEmailService(config SMTPConfig, logger zerolog.Logger) *EmailServiceImpl {
	s := &EmailServiceImpl{
		config: config,
		logger: logger.With().Str("component", "email").Logger(),
	}
	s.send = s.deliver
	return s
}

// SendConfirmationEmail sends the sign-up confirmation link
func (s *EmailServiceImpl) SendConfirmationEmail(toEmail, toName, link string) error {
	body := fmt.Sprintf(`<p>Hello %s,</p>
<p>Thanks for joining %s. Confirm your email address to start booking classes:</p>
<p><a href="%s">Confirm email</a></p>
<p>This link expires in 24 hours. If you did not sign up, ignore this email.</p>`,
		html.EscapeString(toName), html.EscapeString(s.config.StudioName), html.EscapeString(link))

	return s.sendHTML(toEmail, "Confirm your email - "+s.config.StudioName, body, link)
}

// SendMagicLinkEmail sends a one-click sign-in link
func (s *EmailServiceImpl) SendMagicLinkEmail(toEmail, link string) error {
	body := fmt.Sprintf(`<p>Use the link below to sign in to %s:</p>
<p><a href="%s">Sign in</a></p>
<p>This link expires in 1 hour and can be used once.</p>`,
		html.EscapeString(s.config.StudioName), html.EscapeString(link))

	return s.sendHTML(toEmail, "Your sign-in link - "+s.config.StudioName, body, link)
}

// SendRecoveryEmail sends a password reset link
func (s *EmailServiceImpl) SendRecoveryEmail(toEmail, link string) error {
	body := fmt.Sprintf(`<p>We received a request to reset your %s password.</p>
<p><a href="%s">Reset password</a></p>
<p>If you did not ask for this, ignore this email.</p>`,
		html.EscapeString(s.config.StudioName), html.EscapeString(link))

	return s.sendHTML(toEmail, "Reset your password - "+s.config.StudioName, body, link)
}

func (s *EmailServiceImpl) sendHTML(toEmail, subject, htmlBody, link string) error {
	// Without credentials the link is logged instead (development)
	if s.config.Username == "" || s.config.Password == "" {
		s.logger.Warn().
			Str("toEmail", toEmail).
			Str("subject", subject).
			Str("link", link).
			Msg("SMTP credentials not configured - email not sent")
		return nil
	}

	return s.send(toEmail, s.buildMessage(toEmail, subject, htmlBody))
}

// buildMessage renders headers in a stable order followed by the HTML body
func (s *EmailServiceImpl) buildMessage(toEmail, subject, htmlBody string) []byte {
	headers := map[string]string{
		"From":         fmt.Sprintf("%s <%s>", s.config.FromName, s.config.FromEmail),
		"To":           toEmail,
		"Subject":      subject,
		"MIME-Version": "1.0",
		"Content-Type": "text/html; charset=UTF-8",
	}

	keys := make([]string, 0, len(headers))
	for k := range headers {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var b strings.Builder
	for _, k := range keys {
		fmt.Fprintf(&b, "%s: %s\r\n", k, headers[k])
	}
	b.WriteString("\r\n")
	b.WriteString(htmlBody)
	return []byte(b.String())
}

// deliver sends the message through the configured SMTP server
func (s *EmailServiceImpl) deliver(toEmail string, message []byte) error {
	auth := smtp.PlainAuth("", s.config.Username, s.config.Password, s.config.Host)
	serverAddress := s.config.Host + ":" + strconv.Itoa(s.config.Port)

	if !s.config.UseTLS {
		if err := smtp.SendMail(serverAddress, auth, s.config.FromEmail, []string{toEmail}, message); err != nil {
			s.logger.Error().Err(err).Str("server", serverAddress).Msg("Failed to send email")
			return fmt.Errorf("failed to send email: %w", err)
		}
		return nil
	}

	conn, err := tls.Dial("tcp", serverAddress, &tls.Config{ServerName: s.config.Host})
	if err != nil {
		s.logger.Error().Err(err).Str("server", serverAddress).Msg("Failed to connect to SMTP server")
		return fmt.Errorf("failed to connect to SMTP server: %w", err)
	}
	defer conn.Close()

	client, err := smtp.NewClient(conn, s.config.Host)
	if err != nil {
		return fmt.Errorf("failed to create SMTP client: %w", err)
	}
	defer client.Quit()

	if err = client.Auth(auth); err != nil {
		s.logger.Error().Err(err).Msg("SMTP authentication failed")
		return fmt.Errorf("SMTP authentication failed: %w", err)
	}
	if err = client.Mail(s.config.FromEmail); err != nil {
		return fmt.Errorf("failed to set sender: %w", err)
	}
	if err = client.Rcpt(toEmail); err != nil {
		return fmt.Errorf("failed to set recipient: %w", err)
	}

	w, err := client.Data()
	if err != nil {
		return fmt.Errorf("failed to get data writer: %w", err)
	}
	if _, err = w.Write(message); err != nil {
		return fmt.Errorf("failed to write email message: %w", err)
	}
	if err = w.Close(); err != nil {
		return fmt.Errorf("failed to close data writer: %w", err)
	}
	return nil
}

package mailer

import (
	"fmt"

	"blog-server/internal/config"

	"go.uber.org/zap"
	gomail "gopkg.in/mail.v2"
)

// Mailer delivers verification and reset letters over SMTP.
type Mailer interface {
	SendVerificationLetter(email, tokenString string) error
	SendResetLetter(email, tokenString string) error
}

// Compile-time check to ensure smtpMailer implements Mailer
var _ Mailer = (*smtpMailer)(nil)

type smtpMailer struct {
	dialer *gomail.Dialer
	sender string
	logger *zap.Logger
}

// New creates an SMTP-backed Mailer from the configuration.
func New(cfg *config.Config, logger *zap.Logger) Mailer {
	dialer := gomail.NewDialer(cfg.EMSHost, cfg.EMSPort, cfg.EMSUser, cfg.EMSPassword)
	dialer.SSL = cfg.EMSUseTLS
	return &smtpMailer{
		dialer: dialer,
		sender: cfg.EMSSender,
		logger: logger.Named("Mailer"),
	}
}

func (m *smtpMailer) send(email, subject, body string) error {
	message := gomail.NewMessage()
	message.SetHeader("From", m.sender)
	message.SetHeader("To", email)
	message.SetHeader("Subject", subject)
	message.SetBody("text/plain", body)

	if err := m.dialer.DialAndSend(message); err != nil {
		m.logger.Error("Failed to send letter", zap.Error(err), zap.String("to", email), zap.String("subject", subject))
		return fmt.Errorf("failed to send letter to %s: %w", email, err)
	}
	m.logger.Info("Letter sent", zap.String("to", email), zap.String("subject", subject))
	return nil
}

// SendVerificationLetter mails the registration confirmation token.
func (m *smtpMailer) SendVerificationLetter(email, tokenString string) error {
	body := fmt.Sprintf(
		"Thanks for registering.\n\n"+
			"Confirm your account by calling GET /auth/registration_user with this token "+
			"in the Authorization header (Bearer %s).\n\n"+
			"The token is valid for a few minutes only.",
		tokenString,
	)
	return m.send(email, "Confirm your registration", body)
}

// SendResetLetter mails the password reset token.
func (m *smtpMailer) SendResetLetter(email, tokenString string) error {
	body := fmt.Sprintf(
		"A password reset was requested for your account.\n\n"+
			"Set a new password by calling POST /auth/update_password with this token "+
			"in the Authorization header (Bearer %s).\n\n"+
			"If you did not request a reset, ignore this letter.",
		tokenString,
	)
	return m.send(email, "Password reset", body)
}

package services

import (
	"context"
	"fmt"
	"streamflix-api/pkg/logging"

	brevo "github.com/getbrevo/brevo-go/lib"
)

// Mailer delivers transactional email
type Mailer interface {
	Enabled() bool
	SendInvitationEmail(ctx context.Context, to, registerURL string) error
	SendActivationEmail(ctx context.Context, to, activationLink string, ttlHours int) error
	SendPasswordResetEmail(ctx context.Context, to, token string, ttlMinutes int) error
}

// transactionalSender is the part of the Brevo client used here
type transactionalSender interface {
	send(ctx context.Context, email brevo.SendSmtpEmail) error
}

type brevoAPISender struct {
	client *brevo.APIClient
}

func (s brevoAPISender) send(ctx context.Context, email brevo.SendSmtpEmail) error {
	_, resp, err := s.client.TransactionalEmailsApi.SendTransacEmail(ctx, email)
	if err != nil {
		return err
	}
	if resp != nil && (resp.StatusCode < 200 || resp.StatusCode >= 300) {
		return fmt.Errorf("brevo API error: status %d", resp.StatusCode)
	}
	return nil
}

// BrevoService provides Brevo email service
type BrevoService struct {
	FromEmail string
	FromName  string
	sender    transactionalSender
}

// NewBrevoService creates a new Brevo service instance
func NewBrevoService(apiKey, fromEmail, fromName string) *BrevoService {
	cfg := brevo.NewConfiguration()
	cfg.AddDefaultHeader("api-key", apiKey)

	return &BrevoService{
		FromEmail: fromEmail,
		FromName:  fromName,
		sender:    brevoAPISender{client: brevo.NewAPIClient(cfg)},
	}
}

// Enabled implements Mailer
func (s *BrevoService) Enabled() bool {
	return true
}

// SendInvitationEmail sends the invitation link to the invitee
func (s *BrevoService) SendInvitationEmail(ctx context.Context, to, registerURL string) error {
	subject := "You have been invited to StreamFlix"
	htmlContent := fmt.Sprintf(`
		<div style="font-family: Arial, sans-serif; max-width: 600px; margin: 0 auto;">
			<h2 style="color: #333;">You're invited!</h2>
			<p>A friend invited you to StreamFlix. Register with the link below and you both get a discount.</p>
			<p><a href="%s" style="background-color: #e50914; color: white; padding: 10px 20px; text-decoration: none; border-radius: 5px; display: inline-block;">Create your account</a></p>
		</div>
	`, registerURL)
	textContent := fmt.Sprintf("A friend invited you to StreamFlix.\n\nRegister here:\n%s\n", registerURL)

	return s.sendEmail(ctx, to, subject, htmlContent, textContent)
}

// SendActivationEmail sends the account activation link
func (s *BrevoService) SendActivationEmail(ctx context.Context, to, activationLink string, ttlHours int) error {
	subject := "Verify your account"
	htmlContent := fmt.Sprintf(`
		<div style="font-family: Arial, sans-serif; max-width: 600px; margin: 0 auto;">
			<h2 style="color: #333;">Welcome!</h2>
			<p>Click the link below to activate your account:</p>
			<p><a href="%s" style="background-color: #007bff; color: white; padding: 10px 20px; text-decoration: none; border-radius: 5px; display: inline-block;">Activate Account</a></p>
			<p>This link expires in %d hours.</p>
		</div>
	`, activationLink, ttlHours)
	textContent := fmt.Sprintf("Welcome!\n\nClick this link to activate your account:\n%s\n\nThis link expires in %d hours.", activationLink, ttlHours)

	return s.sendEmail(ctx, to, subject, htmlContent, textContent)
}

// SendPasswordResetEmail sends a password reset token
func (s *BrevoService) SendPasswordResetEmail(ctx context.Context, to, token string, ttlMinutes int) error {
	subject := "Password Reset Token"
	htmlContent := fmt.Sprintf(`
		<div style="font-family: Arial, sans-serif; max-width: 600px; margin: 0 auto;">
			<h2 style="color: #333;">Password Reset Request</h2>
			<p>Your password reset token is:</p>
			<div style="background-color: #f4f4f4; padding: 15px; border-radius: 5px; margin: 20px 0;">
				<code style="font-size: 18px; font-weight: bold; color: #333; letter-spacing: 1px;">%s</code>
			</div>
			<p><strong>This token expires in %d minutes.</strong></p>
			<p style="color: #666; font-size: 12px;">If you didn't request this password reset, please ignore this email.</p>
		</div>
	`, token, ttlMinutes)
	textContent := fmt.Sprintf("Your password reset token is:\n\n%s\n\nThis token expires in %d minutes.", token, ttlMinutes)

	return s.sendEmail(ctx, to, subject, htmlContent, textContent)
}

// sendEmail sends email via Brevo API
func (s *BrevoService) sendEmail(ctx context.Context, to, subject, htmlContent, textContent string) error {
	email := brevo.SendSmtpEmail{
		Sender: &brevo.SendSmtpEmailSender{
			Name:  s.FromName,
			Email: s.FromEmail,
		},
		To: []brevo.SendSmtpEmailTo{
			{Email: to},
		},
		Subject:     subject,
		HtmlContent: htmlContent,
		TextContent: textContent,
	}

	if err := s.sender.send(ctx, email); err != nil {
		return fmt.Errorf("failed to send email: %w", err)
	}
	return nil
}

// LogMailer is used when no mail provider is configured. It logs the links so
// they can be used during development.
type LogMailer struct{}

// Enabled implements Mailer
func (LogMailer) Enabled() bool {
	return false
}

// SendInvitationEmail implements Mailer
func (LogMailer) SendInvitationEmail(_ context.Context, to, registerURL string) error {
	logging.Warnf("[DEV] No mail provider configured. Invitation link for %s: %s", to, registerURL)
	return nil
}

// SendActivationEmail implements Mailer
func (LogMailer) SendActivationEmail(_ context.Context, to, activationLink string, _ int) error {
	logging.Warnf("[DEV] No mail provider configured. Activation link for %s: %s", to, activationLink)
	return nil
}

// SendPasswordResetEmail implements Mailer
func (LogMailer) SendPasswordResetEmail(_ context.Context, to, token string, _ int) error {
	logging.Warnf("[DEV] No mail provider configured. Password reset token for %s: %s", to, token)
	return nil
}

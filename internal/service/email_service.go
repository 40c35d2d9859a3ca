package service

import (
	"context"
	"fmt"
	"log/slog"
	"net/smtp"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/sesv2"
	"github.com/aws/aws-sdk-go-v2/service/sesv2/types"
	"github.com/jhillyerd/enmime"

	"cashvelo/internal/config"
)

// Message is a rendered email ready for delivery
type Message struct {
	FromEmail string
	FromName  string
	To        string
	ToName    string
	Subject   string
	HTML      string
	Text      string
}

// Transport delivers rendered messages and returns the provider's message id
type Transport interface {
	Send(ctx context.Context, msg Message) (string, error)
}

// EmailService renders application emails and hands them to a Transport
type EmailService struct {
	transport   Transport
	fromEmail   string
	fromName    string
	frontendURL string
	resetTTL    time.Duration
	enabled     bool
	debug       bool
}

// NewEmailService creates an email service delivering through transport.
// A nil transport disables delivery; messages are then only logged.
func NewEmailService(transport Transport, fromEmail, fromName, frontendURL string, resetTTL time.Duration, debug bool) *EmailService {
	return &EmailService{
		transport:   transport,
		fromEmail:   fromEmail,
		fromName:    fromName,
		frontendURL: strings.TrimRight(frontendURL, "/"),
		resetTTL:    resetTTL,
		enabled:     transport != nil,
		debug:       debug,
	}
}

// NewEmailServiceFromConfig picks the transport named by MAIL_PROVIDER
func NewEmailServiceFromConfig(ctx context.Context, cfg *config.Config) (*EmailService, error) {
	var transport Transport
	switch cfg.MailProvider {
	case "":
		slog.Warn("Email service disabled: MAIL_PROVIDER not configured")
	case "ses":
		ses, err := NewSESTransport(ctx, cfg.AWSRegion)
		if err != nil {
			return nil, err
		}
		transport = ses
		slog.Info("Email service enabled", "provider", "ses", "from", cfg.MailFromEmail, "region", cfg.AWSRegion)
	case "smtp":
		if cfg.SMTPAddr == "" {
			return nil, fmt.Errorf("SMTP_ADDR is required for the smtp mail provider")
		}
		transport = NewSMTPTransport(cfg.SMTPAddr, cfg.SMTPUsername, cfg.SMTPPassword)
		slog.Info("Email service enabled", "provider", "smtp", "from", cfg.MailFromEmail, "addr", cfg.SMTPAddr)
	default:
		return nil, fmt.Errorf("unsupported mail provider: %s", cfg.MailProvider)
	}

	if transport != nil && cfg.MailFromEmail == "" {
		return nil, fmt.Errorf("MAIL_FROM_EMAIL is required when MAIL_PROVIDER is set")
	}

	return NewEmailService(transport, cfg.MailFromEmail, cfg.MailFromName, cfg.FrontendURL, cfg.ResetTokenTTL, cfg.Debug), nil
}

// IsEnabled returns whether the email service is enabled
func (s *EmailService) IsEnabled() bool {
	return s.enabled
}

// ResetURL is the frontend page that consumes a reset token
func (s *EmailService) ResetURL(resetToken string) string {
	return fmt.Sprintf("%s/reset-password/%s", s.frontendURL, resetToken)
}

// SendPasswordResetEmail sends a password reset email with a reset link
func (s *EmailService) SendPasswordResetEmail(ctx context.Context, toEmail, toName, resetToken string) error {
	if !s.enabled {
		slog.Info("Skipping email send (service disabled)", "kind", "password_reset", "to", toEmail)
		return nil
	}

	html, text, err := renderPasswordReset(passwordResetData{
		Username: toName,
		ResetURL: s.ResetURL(resetToken),
		Expiry:   humanizeDuration(s.resetTTL),
		Year:     time.Now().Year(),
	})
	if err != nil {
		return err
	}

	return s.send(ctx, Message{
		FromEmail: s.fromEmail,
		FromName:  s.fromName,
		To:        toEmail,
		ToName:    toName,
		Subject:   "Password Reset Request - Cashvelo",
		HTML:      html,
		Text:      text,
	})
}

func (s *EmailService) send(ctx context.Context, msg Message) error {
	if s.debug {
		slog.Debug("Sending email", "to", msg.To, "subject", msg.Subject,
			"html_bytes", len(msg.HTML), "text_bytes", len(msg.Text))
	}

	id, err := s.transport.Send(ctx, msg)
	if err != nil {
		return fmt.Errorf("failed to send email to %s: %w", msg.To, err)
	}

	slog.Info("Email sent successfully", "to", msg.To, "subject", msg.Subject, "message_id", id)
	return nil
}

// humanizeDuration renders whole hours or minutes for email copy
func humanizeDuration(d time.Duration) string {
	plural := func(n int, unit string) string {
		if n == 1 {
			return fmt.Sprintf("1 %s", unit)
		}
		return fmt.Sprintf("%d %ss", n, unit)
	}
	if d >= time.Hour && d%time.Hour == 0 {
		return plural(int(d/time.Hour), "hour")
	}
	return plural(int(d.Round(time.Minute)/time.Minute), "minute")
}

// SESTransport delivers through Amazon SES v2
type SESTransport struct {
	client *sesv2.Client
}

// NewSESTransport loads the default AWS credential chain for region
func NewSESTransport(ctx context.Context, region string) (*SESTransport, error) {
	cfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(region))
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}
	return &SESTransport{client: sesv2.NewFromConfig(cfg)}, nil
}

func (t *SESTransport) Send(ctx context.Context, msg Message) (string, error) {
	input := &sesv2.SendEmailInput{
		FromEmailAddress: aws.String(formatAddress(msg.FromName, msg.FromEmail)),
		Destination: &types.Destination{
			ToAddresses: []string{msg.To},
		},
		Content: &types.EmailContent{
			Simple: &types.Message{
				Subject: &types.Content{
					Data:    aws.String(msg.Subject),
					Charset: aws.String("UTF-8"),
				},
				Body: &types.Body{
					Html: &types.Content{
						Data:    aws.String(msg.HTML),
						Charset: aws.String("UTF-8"),
					},
					Text: &types.Content{
						Data:    aws.String(msg.Text),
						Charset: aws.String("UTF-8"),
					},
				},
			},
		},
	}

	result, err := t.client.SendEmail(ctx, input)
	if err != nil {
		return "", err
	}
	return aws.ToString(result.MessageId), nil
}

// SMTPTransport builds a multipart message with enmime and relays it over SMTP
type SMTPTransport struct {
	sender enmime.Sender
}

// NewSMTPTransport relays through addr, authenticating with PLAIN auth when
// a username is given
func NewSMTPTransport(addr, username, password string) *SMTPTransport {
	var auth smtp.Auth
	if username != "" {
		host, _, _ := strings.Cut(addr, ":")
		auth = smtp.PlainAuth("", username, password, host)
	}
	return &SMTPTransport{sender: enmime.NewSMTP(addr, auth)}
}

func (t *SMTPTransport) Send(ctx context.Context, msg Message) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	err := enmime.Builder().
		From(msg.FromName, msg.FromEmail).
		To(msg.ToName, msg.To).
		Subject(msg.Subject).
		Text([]byte(msg.Text)).
		HTML([]byte(msg.HTML)).
		Send(t.sender)
	if err != nil {
		return "", err
	}
	return "", nil
}

func formatAddress(name, email string) string {
	if name == "" {
		return email
	}
	return fmt.Sprintf("%s <%s>", name, email)
}

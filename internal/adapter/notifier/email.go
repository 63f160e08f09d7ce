package notifier

import (
	"context"
	"errors"
	"fmt"

	"github.com/semmidev/archivist/internal/config"
	"github.com/semmidev/archivist/internal/domain"
	"github.com/wneessen/go-mail"
)

var ErrSMTPNotConfigured = errors.New("smtp host is not configured")

// EmailNotifier delivers plain-text notifications over SMTP with mandatory
// STARTTLS. A notification without recipient is a no-op.
type EmailNotifier struct {
	cfg config.SMTPConfig
}

func NewEmail(cfg config.SMTPConfig) *EmailNotifier {
	return &EmailNotifier{cfg: cfg}
}

func (e *EmailNotifier) Name() string {
	return "email"
}

func (e *EmailNotifier) Notify(ctx context.Context, n domain.Notification) error {
	if n.Recipient == "" {
		return nil
	}
	if e.cfg.Host == "" {
		return ErrSMTPNotConfigured
	}

	msg, err := e.message(n)
	if err != nil {
		return err
	}

	client, err := mail.NewClient(e.cfg.Host, e.clientOptions()...)
	if err != nil {
		return fmt.Errorf("failed to create smtp client: %w", err)
	}

	if err := client.DialAndSendWithContext(ctx, msg); err != nil {
		return fmt.Errorf("failed to send email to %s: %w", n.Recipient, err)
	}
	return nil
}

func (e *EmailNotifier) message(n domain.Notification) (*mail.Msg, error) {
	from := e.cfg.From
	if from == "" {
		from = e.cfg.Username
	}

	msg := mail.NewMsg()
	if err := msg.From(from); err != nil {
		return nil, fmt.Errorf("invalid sender address %q: %w", from, err)
	}
	if err := msg.To(n.Recipient); err != nil {
		return nil, fmt.Errorf("invalid recipient address %q: %w", n.Recipient, err)
	}
	msg.Subject(n.Subject)
	msg.SetBodyString(mail.TypeTextPlain, n.Body)

	return msg, nil
}

func (e *EmailNotifier) clientOptions() []mail.Option {
	opts := []mail.Option{
		mail.WithPort(e.cfg.Port),
		mail.WithTLSPolicy(mail.TLSMandatory),
	}
	if e.cfg.Timeout > 0 {
		opts = append(opts, mail.WithTimeout(e.cfg.Timeout))
	}
	if e.cfg.Username != "" {
		opts = append(opts,
			mail.WithSMTPAuth(mail.SMTPAuthPlain),
			mail.WithUsername(e.cfg.Username),
			mail.WithPassword(e.cfg.Password),
		)
	}
	return opts
}

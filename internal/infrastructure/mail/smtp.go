// Package mail delivers messages over SMTP.
package mail

import (
	"context"
	"fmt"
	"time"

	gomail "github.com/wneessen/go-mail"

	"servicecenter/internal/core/apperror"
	domainmail "servicecenter/internal/domain/mail"
	"servicecenter/pkg/logger"
)

// Config holds the SMTP connection settings.
type Config struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
}

// SMTPSender implements mail.Sender with go-mail. TLS is used when the server offers it.
type SMTPSender struct {
	cfg  Config
	send func(ctx context.Context, msg *gomail.Msg) error
	now  func() time.Time
}

// NewSMTPSender creates a sender.
func NewSMTPSender(cfg Config) *SMTPSender {
	s := &SMTPSender{cfg: cfg, now: time.Now}
	s.send = s.dialAndSend
	return s
}

var _ domainmail.Sender = (*SMTPSender)(nil)

// Send implements mail.Sender.
func (s *SMTPSender) Send(ctx context.Context, msg domainmail.Message) error {
	if err := msg.Validate(); err != nil {
		return err
	}

	m, err := s.compose(msg)
	if err != nil {
		return apperror.NewValidation(err.Error()).WithCause(err)
	}
	if err := s.send(ctx, m); err != nil {
		return apperror.NewInternal(fmt.Errorf("send mail %q: %w", msg.Subject, err))
	}

	logger.FromContext(ctx).WithComponent("mail").Infow("mail sent",
		"subject", msg.Subject,
		"recipients", len(msg.To),
	)
	return nil
}

func (s *SMTPSender) compose(msg domainmail.Message) (*gomail.Msg, error) {
	m := gomail.NewMsg()
	if err := m.From(s.cfg.From); err != nil {
		return nil, fmt.Errorf("sender %q: %w", s.cfg.From, err)
	}
	for _, r := range msg.To {
		if err := m.AddToFormat(r.Name, r.Email); err != nil {
			return nil, fmt.Errorf("recipient %q: %w", r.Email, err)
		}
	}
	m.Subject(msg.Subject)
	m.SetDateWithValue(s.now())
	m.SetBodyString(gomail.TypeTextHTML, msg.HTML)
	return m, nil
}

func (s *SMTPSender) dialAndSend(ctx context.Context, m *gomail.Msg) error {
	opts := []gomail.Option{
		gomail.WithPort(s.cfg.Port),
		gomail.WithTLSPolicy(gomail.TLSOpportunistic),
	}
	if s.cfg.Username != "" {
		opts = append(opts,
			gomail.WithSMTPAuth(gomail.SMTPAuthPlain),
			gomail.WithUsername(s.cfg.Username),
			gomail.WithPassword(s.cfg.Password),
		)
	}
	client, err := gomail.NewClient(s.cfg.Host, opts...)
	if err != nil {
		return fmt.Errorf("smtp client: %w", err)
	}
	return client.DialAndSendWithContext(ctx, m)
}

// LogSender only logs messages. Used when no SMTP host is configured.
type LogSender struct{}

var _ domainmail.Sender = LogSender{}

// Send implements mail.Sender.
func (LogSender) Send(ctx context.Context, msg domainmail.Message) error {
	if err := msg.Validate(); err != nil {
		return err
	}
	logger.FromContext(ctx).WithComponent("mail").Infow("mail delivery disabled, message dropped",
		"subject", msg.Subject,
		"recipients", len(msg.To),
	)
	return nil
}

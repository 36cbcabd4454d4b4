package email

import (
	"context"
	"time"

	"github.com/google/uuid"
	mailgun "github.com/mailgun/mailgun-go/v5"

	"github.com/contactrelay/contactrelay/internal/config"
	"github.com/contactrelay/contactrelay/internal/logger"
)

// MailgunSender implements Sender using the Mailgun HTTP API
type MailgunSender struct {
	cfg config.MailgunConfig
	mg  mailgun.Mailgun
	log *logger.Logger
}

// NewMailgunSender creates a MailgunSender. When mg is nil and an API key is
// configured, a default client is created.
func NewMailgunSender(cfg config.MailgunConfig, mg mailgun.Mailgun, log *logger.Logger) *MailgunSender {
	if mg == nil && cfg.APIKey != "" {
		mg = mailgun.NewMailgun(cfg.APIKey)
	}
	return &MailgunSender{cfg: cfg, mg: mg, log: log.WithComponent("mailgun")}
}

// Name returns "mailgun"
func (m *MailgunSender) Name() string { return "mailgun" }

// Check verifies the API key and sending domain are present
func (m *MailgunSender) Check() error {
	var missing []string
	if m.cfg.APIKey == "" {
		missing = append(missing, "MAILGUN_API_KEY")
	}
	if m.cfg.Domain == "" {
		missing = append(missing, "MAILGUN_DOMAIN")
	}
	if len(missing) > 0 {
		return &ConfigurationError{Transport: m.Name(), Missing: missing}
	}
	return nil
}

// Send delivers env through Mailgun
func (m *MailgunSender) Send(ctx context.Context, env Envelope) (*Receipt, error) {
	if err := m.Check(); err != nil {
		return nil, err
	}

	message := mailgun.NewMessage(m.cfg.Domain, env.From, env.Subject, env.TextBody)
	if err := message.AddRecipient(env.To); err != nil {
		return nil, &TransportError{Transport: m.Name(), Op: "add recipient", Err: err}
	}
	if env.ReplyTo != "" {
		message.SetReplyTo(env.ReplyTo)
	}

	if _, err := m.mg.Send(ctx, message); err != nil {
		m.log.Error().Err(err).Str("domain", m.cfg.Domain).Msg("mailgun send failed")
		return nil, &TransportError{Transport: m.Name(), Op: "send", Err: err}
	}

	return &Receipt{
		ID:        uuid.NewString(),
		Transport: m.Name(),
		SentAt:    time.Now(),
	}, nil
}

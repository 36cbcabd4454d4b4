package email

import (
	"fmt"

	"github.com/contactrelay/contactrelay/internal/config"
	"github.com/contactrelay/contactrelay/internal/logger"
)

// TransportName resolves which transport a configuration selects.
// An explicit MAIL_TRANSPORT wins; otherwise the first backend with
// credentials present is used, falling back to SMTP.
func TransportName(cfg *config.Config) string {
	if cfg.Contact.Transport != "" {
		return cfg.Contact.Transport
	}
	switch {
	case cfg.Gmail.HasCredentials():
		return "gmail"
	case cfg.Mailgun.APIKey != "":
		return "mailgun"
	default:
		return "smtp"
	}
}

// NewSender creates the transport selected by cfg
func NewSender(cfg *config.Config, log *logger.Logger) (Sender, error) {
	switch name := TransportName(cfg); name {
	case "smtp":
		return NewSMTPSender(cfg.SMTP, log), nil
	case "gmail":
		return NewGmailSender(cfg.Gmail, log), nil
	case "mailgun":
		return NewMailgunSender(cfg.Mailgun, nil, log), nil
	default:
		return nil, fmt.Errorf("unknown mail transport %q", name)
	}
}

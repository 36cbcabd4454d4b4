package email

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	"google.golang.org/api/gmail/v1"
	"google.golang.org/api/option"

	"github.com/contactrelay/contactrelay/internal/config"
	"github.com/contactrelay/contactrelay/internal/logger"
)

// GmailSender implements Sender using the Gmail API with an OAuth2 refresh token.
// Every Send builds its own client, so an access token is minted per call.
type GmailSender struct {
	cfg config.GmailConfig
	log *logger.Logger
	now func() time.Time
}

// NewGmailSender creates a new GmailSender. Credentials are checked on Send.
func NewGmailSender(cfg config.GmailConfig, log *logger.Logger) *GmailSender {
	return &GmailSender{
		cfg: cfg,
		log: log.WithComponent("gmail"),
		now: time.Now,
	}
}

// Name returns "gmail"
func (g *GmailSender) Name() string { return "gmail" }

// Check verifies that all OAuth2 credentials and the sender mailbox are present
func (g *GmailSender) Check() error {
	var missing []string
	if g.cfg.ClientID == "" {
		missing = append(missing, "GMAIL_CLIENT_ID")
	}
	if g.cfg.ClientSecret == "" {
		missing = append(missing, "GMAIL_CLIENT_SECRET")
	}
	if g.cfg.RefreshToken == "" {
		missing = append(missing, "GMAIL_REFRESH_TOKEN")
	}
	if len(missing) > 0 {
		return &ConfigurationError{Transport: g.Name(), Missing: missing}
	}
	if g.cfg.FromEmail == "" {
		return &ConfigurationError{Transport: g.Name(), Missing: []string{"GMAIL_FROM_EMAIL"}}
	}
	return nil
}

func (g *GmailSender) oauthConfig() *oauth2.Config {
	endpoint := google.Endpoint
	if g.cfg.TokenURL != "" {
		endpoint = oauth2.Endpoint{
			AuthURL:   google.Endpoint.AuthURL,
			TokenURL:  g.cfg.TokenURL,
			AuthStyle: oauth2.AuthStyleInParams,
		}
	}
	return &oauth2.Config{
		ClientID:     g.cfg.ClientID,
		ClientSecret: g.cfg.ClientSecret,
		Endpoint:     endpoint,
		Scopes:       []string{gmail.GmailSendScope},
	}
}

func (g *GmailSender) service(ctx context.Context) (*gmail.Service, error) {
	client := g.oauthConfig().Client(ctx, &oauth2.Token{RefreshToken: g.cfg.RefreshToken})

	opts := []option.ClientOption{option.WithHTTPClient(client)}
	if g.cfg.Endpoint != "" {
		opts = append(opts, option.WithEndpoint(g.cfg.Endpoint))
	}
	return gmail.NewService(ctx, opts...)
}

// FromHeader renders the From value: the submitter as display name and the
// authenticated mailbox as the address, since Gmail only sends as that account.
func (g *GmailSender) FromHeader(env Envelope) string {
	display := env.SubmitterName
	if env.ReplyTo != "" {
		display = fmt.Sprintf("%s <%s>", env.SubmitterName, env.ReplyTo)
	}
	return FormatAddress(display, g.cfg.FromEmail)
}

// RawMessage returns the base64url-encoded MIME message for env
func (g *GmailSender) RawMessage(env Envelope) string {
	return EncodeRaw(BuildMIME(env, g.FromHeader(env), g.now()))
}

// Send sends env via the Gmail API
func (g *GmailSender) Send(ctx context.Context, env Envelope) (*Receipt, error) {
	if err := g.Check(); err != nil {
		return nil, err
	}

	svc, err := g.service(ctx)
	if err != nil {
		g.log.Error().Err(err).Msg("failed to create gmail service")
		return nil, &TransportError{Transport: g.Name(), Op: "create service", Err: err}
	}

	msg := &gmail.Message{Raw: g.RawMessage(env)}
	sent, err := svc.Users.Messages.Send("me", msg).Context(ctx).Do()
	if err != nil {
		g.log.Error().Err(err).Msg("failed to send email via gmail")
		return nil, &TransportError{Transport: g.Name(), Op: "send", Err: err}
	}

	g.log.Debug().Str("gmail_id", sent.Id).Msg("gmail accepted message")

	return &Receipt{
		ID:        sent.Id,
		Transport: g.Name(),
		SentAt:    g.now(),
	}, nil
}

package email

import (
	"context"
	"time"
)

// Sender is the interface that all mail transports must implement.
// Exactly one Sender is active per process; it is chosen by configuration.
type Sender interface {
	// Name identifies the transport in logs and health output.
	Name() string
	// Check reports a *ConfigurationError when required settings are missing.
	// It never touches the network.
	Check() error
	// Send delivers a single message. It is not retried on failure.
	Send(ctx context.Context, env Envelope) (*Receipt, error)
}

// Envelope is the addressing and content of one outbound message
type Envelope struct {
	To            string // recipient inbox
	From          string // sender address, transports may override it
	SubmitterName string // sanitized submitter name, used in display names
	ReplyTo       string // sanitized submitter address
	Subject       string // sanitized subject
	TextBody      string // plain-text body
}

// Receipt describes an accepted message
type Receipt struct {
	ID        string    `json:"id"`
	Transport string    `json:"transport"`
	SentAt    time.Time `json:"sentAt"`
}

package service

import (
	"context"
	"errors"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/contactrelay/contactrelay/internal/config"
	"github.com/contactrelay/contactrelay/internal/email"
	"github.com/contactrelay/contactrelay/internal/logger"
	"github.com/contactrelay/contactrelay/internal/model"
)

// ValidationError is returned when a required field is missing or malformed.
// Its message is shown to the submitter verbatim.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

// submissionRules declares the required fields in the order they are reported
type submissionRules struct {
	FullName string `validate:"required"`
	Email    string `validate:"required"`
	Message  string `validate:"required"`
}

var fieldLabels = map[string]string{
	"FullName": "Full name",
	"Email":    "Email",
	"Message":  "Message",
}

// RelayService validates contact submissions and hands them to a transport
type RelayService struct {
	sender   email.Sender
	validate *validator.Validate
	cfg      config.ContactConfig
	log      *logger.Logger
}

// NewRelayService creates a new RelayService
func NewRelayService(sender email.Sender, cfg config.ContactConfig, log *logger.Logger) *RelayService {
	return &RelayService{
		sender:   sender,
		validate: validator.New(),
		cfg:      cfg,
		log:      log.WithComponent("relay"),
	}
}

// Transport returns the name of the active transport
func (s *RelayService) Transport() string {
	return s.sender.Name()
}

// Check reports whether the relay can send mail without touching the network
func (s *RelayService) Check() error {
	if s.cfg.ToEmail == "" {
		return &email.ConfigurationError{Transport: s.sender.Name(), Missing: []string{"CONTACT_TO_EMAIL"}}
	}
	return s.sender.Check()
}

// Validate trims and checks a submission. It has no side effects, so the same
// input always produces the same result.
func (s *RelayService) Validate(in model.ContactInput) (model.ContactSubmission, error) {
	sub := model.ContactSubmission{
		FullName: strings.TrimSpace(in.FullName),
		Email:    strings.TrimSpace(in.Email),
		Message:  strings.TrimSpace(in.Message),
		Subject:  strings.TrimSpace(in.Subject),
	}

	rules := submissionRules{FullName: sub.FullName, Email: sub.Email, Message: sub.Message}
	if err := s.validate.Struct(rules); err != nil {
		var fieldErrs validator.ValidationErrors
		if errors.As(err, &fieldErrs) && len(fieldErrs) > 0 {
			field := fieldErrs[0].Field()
			return model.ContactSubmission{}, &ValidationError{Field: field, Message: fieldLabels[field] + " is required"}
		}
		return model.ContactSubmission{}, err
	}

	if s.cfg.StrictEmail {
		if err := s.validate.Var(sub.Email, "email"); err != nil {
			return model.ContactSubmission{}, &ValidationError{Field: "Email", Message: "Email is invalid"}
		}
	}

	return sub, nil
}

// Relay validates in and sends exactly one email for it. Failures are not
// retried and nothing about the submission is kept.
func (s *RelayService) Relay(ctx context.Context, in model.ContactInput) (*email.Receipt, error) {
	sm := newSubmission(s.log.WithRequestID(requestIDFrom(ctx)))

	if err := sm.advance(model.StateValidating, nil); err != nil {
		return nil, err
	}
	sub, err := s.Validate(in)
	if err != nil {
		return nil, sm.fail(model.StateRejected, err)
	}
	if err := s.Check(); err != nil {
		return nil, sm.fail(model.StateRejected, err)
	}

	env := email.BuildEnvelope(sub, s.cfg.ToEmail, s.cfg.FromEmail)

	if err := sm.advance(model.StateSending, nil); err != nil {
		return nil, err
	}
	receipt, err := s.sender.Send(ctx, env)
	if err != nil {
		var cfgErr *email.ConfigurationError
		var transportErr *email.TransportError
		if !errors.As(err, &cfgErr) && !errors.As(err, &transportErr) {
			err = &email.TransportError{Transport: s.sender.Name(), Op: "send", Err: err}
		}
		return nil, sm.fail(model.StateFailed, err)
	}

	if err := sm.advance(model.StateSent, nil); err != nil {
		return nil, err
	}
	return receipt, nil
}

type requestIDKey struct{}

// WithRequestID attaches a request ID for log correlation
func WithRequestID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, requestIDKey{}, requestID)
}

func requestIDFrom(ctx context.Context) string {
	id, _ := ctx.Value(requestIDKey{}).(string)
	return id
}

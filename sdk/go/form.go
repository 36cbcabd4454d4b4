package contactrelay

import (
	"context"
	"strings"
	"sync"
)

// SubjectPlaceholder stands in for the name while the form has none.
const SubjectPlaceholder = "Full Name"

// DefaultErrorMessage is shown when a failure carries no message of its own.
const DefaultErrorMessage = "Failed to send message."

// Status is the outcome of the most recent submission.
type Status string

const (
	StatusIdle    Status = "idle"
	StatusSuccess Status = "success"
	StatusError   Status = "error"
)

// Submitter sends one contact request. *Client satisfies it.
type Submitter interface {
	SendContact(ctx context.Context, in ContactRequest) error
}

// Form holds the state of a contact form and submits it through a Submitter.
// All methods are safe for concurrent use.
type Form struct {
	mu           sync.Mutex
	submitter    Submitter
	fullName     string
	email        string
	message      string
	sending      bool
	status       Status
	errorMessage string
}

// NewForm creates an empty form.
func NewForm(submitter Submitter) *Form {
	return &Form{submitter: submitter, status: StatusIdle}
}

// SetFullName sets the submitter's name.
func (f *Form) SetFullName(v string) {
	f.mu.Lock()
	f.fullName = v
	f.mu.Unlock()
}

// SetEmail sets the submitter's address.
func (f *Form) SetEmail(v string) {
	f.mu.Lock()
	f.email = v
	f.mu.Unlock()
}

// SetMessage sets the message body.
func (f *Form) SetMessage(v string) {
	f.mu.Lock()
	f.message = v
	f.mu.Unlock()
}

// Fields returns the current field values.
func (f *Form) Fields() (fullName, email, message string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.fullName, f.email, f.message
}

// Status returns the outcome of the last submission.
func (f *Form) Status() Status {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.status
}

// ErrorMessage returns the message of the last failure, if any.
func (f *Form) ErrorMessage() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.errorMessage
}

// Sending reports whether a submission is in flight.
func (f *Form) Sending() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.sending
}

// CanSubmit reports whether all three fields have non-blank content.
func (f *Form) CanSubmit() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.complete()
}

func (f *Form) complete() bool {
	return strings.TrimSpace(f.fullName) != "" &&
		strings.TrimSpace(f.email) != "" &&
		strings.TrimSpace(f.message) != ""
}

// DefaultSubject returns the subject sent with the submission.
func (f *Form) DefaultSubject() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return defaultSubject(f.fullName)
}

func defaultSubject(fullName string) string {
	name := strings.TrimSpace(fullName)
	if name == "" {
		name = SubjectPlaceholder
	}
	return "Inquiry - " + name
}

// Submit sends the form once. It returns ErrIncomplete or ErrInFlight without
// sending when the form cannot be submitted. Failures are not retried.
func (f *Form) Submit(ctx context.Context) error {
	f.mu.Lock()
	if !f.complete() {
		f.mu.Unlock()
		return ErrIncomplete
	}
	if f.sending {
		f.mu.Unlock()
		return ErrInFlight
	}
	f.sending = true
	f.status = StatusIdle
	f.errorMessage = ""
	req := ContactRequest{
		FullName: f.fullName,
		Email:    f.email,
		Message:  f.message,
		Subject:  defaultSubject(f.fullName),
	}
	f.mu.Unlock()

	err := f.submitter.SendContact(ctx, req)

	f.mu.Lock()
	defer f.mu.Unlock()
	f.sending = false
	if err != nil {
		f.status = StatusError
		f.errorMessage = failureMessage(err)
		return err
	}
	f.status = StatusSuccess
	f.fullName, f.email, f.message = "", "", ""
	return nil
}

func failureMessage(err error) string {
	msg := err.Error()
	if apiErr, ok := IsAPIError(err); ok {
		msg = apiErr.Message
	}
	if strings.TrimSpace(msg) == "" {
		return DefaultErrorMessage
	}
	return msg
}

package model

import (
	"bytes"
	"encoding/json"
	"errors"
)

// ErrInvalidPayload is returned when the request body is not a JSON object
var ErrInvalidPayload = errors.New("Invalid payload")

// ContactInput is the untrusted payload received from the contact form
type ContactInput struct {
	FullName string `json:"fullName"`
	Email    string `json:"email"`
	Message  string `json:"message"`
	Subject  string `json:"subject,omitempty"`
}

// ContactSubmission is a validated, trimmed contact form submission.
// Subject is empty when the caller did not supply one.
type ContactSubmission struct {
	FullName string
	Email    string
	Message  string
	Subject  string
}

// DefaultSubject returns the subject used when the caller supplies none
func DefaultSubject(fullName string) string {
	return "Inquiry - " + fullName
}

// DecodeContactInput decodes a remote-call body. The value must be a JSON
// object; fields that are absent or not strings decode as empty.
func DecodeContactInput(data []byte) (ContactInput, error) {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || data[0] != '{' {
		return ContactInput{}, ErrInvalidPayload
	}

	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return ContactInput{}, ErrInvalidPayload
	}

	return ContactInput{
		FullName: stringField(raw, "fullName"),
		Email:    stringField(raw, "email"),
		Message:  stringField(raw, "message"),
		Subject:  stringField(raw, "subject"),
	}, nil
}

func stringField(raw map[string]json.RawMessage, key string) string {
	v, ok := raw[key]
	if !ok {
		return ""
	}
	var s string
	if err := json.Unmarshal(v, &s); err != nil {
		return ""
	}
	return s
}

// SubmissionState is the lifecycle of one submission through the relay
type SubmissionState string

const (
	StateIdle       SubmissionState = "idle"
	StateValidating SubmissionState = "validating"
	StateRejected   SubmissionState = "rejected"
	StateSending    SubmissionState = "sending"
	StateSent       SubmissionState = "sent"
	StateFailed     SubmissionState = "failed"
)

func (s SubmissionState) String() string { return string(s) }

// Terminal reports whether no further transition is possible
func (s SubmissionState) Terminal() bool {
	return s == StateRejected || s == StateSent || s == StateFailed
}

var transitions = map[SubmissionState][]SubmissionState{
	StateIdle:       {StateValidating},
	StateValidating: {StateRejected, StateSending},
	StateSending:    {StateSent, StateFailed},
}

// CanTransition reports whether moving from s to next is allowed.
// A failed submission is never retried; the user starts a new one.
func (s SubmissionState) CanTransition(next SubmissionState) bool {
	for _, allowed := range transitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

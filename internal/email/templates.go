package email

import (
	"strings"

	"github.com/contactrelay/contactrelay/internal/model"
)

const inquiryPreamble = "New inquiry from your portfolio contact form."

// ContactText returns the plain-text body for a contact submission.
// Name and email are header-sanitized; the message is kept verbatim.
func ContactText(sub model.ContactSubmission) string {
	return strings.Join([]string{
		inquiryPreamble,
		"",
		"Name: " + SanitizeHeader(sub.FullName),
		"Email: " + SanitizeHeader(sub.Email),
		"",
		"Message:",
		sub.Message,
		"",
	}, "\n")
}

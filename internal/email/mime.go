package email

import (
	"encoding/base64"
	"fmt"
	"mime"
	"net/mail"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/contactrelay/contactrelay/internal/model"
)

var headerReplacer = strings.NewReplacer("\r\n", " ", "\r", " ", "\n", " ")

// SanitizeHeader makes a value safe to place in a mail header by turning
// every CRLF, CR or LF into a single space.
func SanitizeHeader(v string) string {
	return strings.TrimSpace(headerReplacer.Replace(v))
}

// ResolveSubject returns the caller's subject, or "Inquiry - <name>" when absent
func ResolveSubject(sub model.ContactSubmission) string {
	subject := sub.Subject
	if strings.TrimSpace(subject) == "" {
		subject = model.DefaultSubject(sub.FullName)
	}
	return SanitizeHeader(subject)
}

// BuildEnvelope composes the envelope for a validated submission
func BuildEnvelope(sub model.ContactSubmission, to, from string) Envelope {
	return Envelope{
		To:            SanitizeHeader(to),
		From:          SanitizeHeader(from),
		SubmitterName: SanitizeHeader(sub.FullName),
		ReplyTo:       SanitizeHeader(sub.Email),
		Subject:       ResolveSubject(sub),
		TextBody:      ContactText(sub),
	}
}

// FormatAddress renders an address header value, quoting or encoding the
// display name as needed.
func FormatAddress(name, address string) string {
	if name == "" {
		return address
	}
	return (&mail.Address{Name: name, Address: address}).String()
}

// BuildMIME renders env as a plain-text RFC 5322 message with CRLF line endings.
// from is the complete From header value.
func BuildMIME(env Envelope, from string, now time.Time) []byte {
	headers := []string{
		"To: " + env.To,
		"From: " + from,
		"Subject: " + mime.QEncoding.Encode("utf-8", env.Subject),
	}
	if env.ReplyTo != "" {
		headers = append(headers, "Reply-To: "+env.ReplyTo)
	}
	headers = append(headers,
		"MIME-Version: 1.0",
		"Content-Type: text/plain; charset=UTF-8",
		"Date: "+now.Format(time.RFC1123Z),
		"Message-ID: "+messageID(env.From),
	)

	body := strings.ReplaceAll(env.TextBody, "\r\n", "\n")
	body = strings.ReplaceAll(body, "\n", "\r\n")

	return []byte(strings.Join(headers, "\r\n") + "\r\n\r\n" + body)
}

// EncodeRaw encodes a message as unpadded base64url, the form the Gmail API expects
func EncodeRaw(msg []byte) string {
	return base64.RawURLEncoding.EncodeToString(msg)
}

func messageID(from string) string {
	domain := "localhost"
	if at := strings.LastIndex(from, "@"); at >= 0 && at < len(from)-1 {
		domain = strings.Trim(from[at+1:], "<> ")
	}
	return fmt.Sprintf("<%s@%s>", uuid.NewString(), domain)
}

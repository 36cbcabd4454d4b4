package provision

import (
	"errors"
	"net/http"
	"strings"

	"golang.org/x/oauth2"
)

var (
	ErrMissingClientID     = errors.New("Client ID is required")
	ErrMissingClientSecret = errors.New("Client Secret is required")
	ErrMissingCode         = errors.New("Authorization code is required")
	ErrAborted             = errors.New("aborted")
	ErrNoRefreshToken      = errors.New("no refresh token received")
)

// FailureKind classifies a failed code exchange
type FailureKind string

const (
	FailureInvalidGrant     FailureKind = "invalid_grant"
	FailureInvalidClient    FailureKind = "invalid_client"
	FailureRedirectMismatch FailureKind = "redirect_mismatch"
	FailureUnknown          FailureKind = "unknown"
)

// ExchangeError is returned when the authorization code could not be
// exchanged. Hints tell the operator how to recover.
type ExchangeError struct {
	Kind  FailureKind
	Err   error
	Hints []string
}

func (e *ExchangeError) Error() string {
	return "failed to exchange authorization code: " + e.Err.Error()
}

func (e *ExchangeError) Unwrap() error {
	return e.Err
}

var hints = map[FailureKind][]string{
	FailureInvalidGrant: {
		"Authorization codes are single-use and expire within minutes.",
		"Check that the system clock is in sync.",
		"Run the command again, authorize, and paste the new code right away.",
		"If it keeps failing, revoke access at https://myaccount.google.com/permissions and start fresh.",
	},
	FailureInvalidClient: {
		"The client ID or secret is wrong, or the OAuth client no longer exists.",
		"Open https://console.cloud.google.com/apis/credentials and copy the full client ID (ending in .apps.googleusercontent.com) and secret.",
		"Make sure the credentials come from the project that has the Gmail API enabled.",
	},
	FailureRedirectMismatch: {
		"The redirect URI " + RedirectURI + " only works with a \"Desktop app\" OAuth client.",
		"Create a new OAuth client ID with application type \"Desktop app\" and run the command again with its credentials.",
	},
	FailureUnknown: {
		"The OAuth 2.0 Playground (https://developers.google.com/oauthplayground/) can also issue a refresh token.",
	},
}

// classifyExchangeError maps an oauth2 exchange failure to a FailureKind
func classifyExchangeError(err error) *ExchangeError {
	kind := FailureUnknown

	var retrieveErr *oauth2.RetrieveError
	code := ""
	status := 0
	if errors.As(err, &retrieveErr) {
		code = retrieveErr.ErrorCode
		if retrieveErr.Response != nil {
			status = retrieveErr.Response.StatusCode
		}
	}
	msg := strings.ToLower(err.Error())

	switch {
	case code == "invalid_grant" || strings.Contains(msg, "invalid_grant"):
		kind = FailureInvalidGrant
	case code == "invalid_client" || status == http.StatusUnauthorized ||
		strings.Contains(msg, "invalid_client") || strings.Contains(msg, "401"):
		kind = FailureInvalidClient
	case code == "redirect_uri_mismatch" ||
		strings.Contains(msg, "redirect_uri_mismatch") ||
		strings.Contains(msg, "can only be used by a client id for native application") ||
		strings.Contains(msg, "not allowed for the web client type"):
		kind = FailureRedirectMismatch
	}

	return &ExchangeError{Kind: kind, Err: err, Hints: hints[kind]}
}

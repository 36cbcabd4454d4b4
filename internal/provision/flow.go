// Package provision obtains a Gmail API refresh token through the
// installed-app OAuth consent flow.
package provision

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/skip2/go-qrcode"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	"google.golang.org/api/gmail/v1"

	"github.com/contactrelay/contactrelay/internal/envfile"
)

// RedirectURI is the out-of-band redirect for Desktop app clients
const RedirectURI = "urn:ietf:wg:oauth:2.0:oob"

const (
	keyClientID     = "GMAIL_CLIENT_ID"
	keyClientSecret = "GMAIL_CLIENT_SECRET"
	keyRefreshToken = "GMAIL_REFRESH_TOKEN"
	keyFromEmail    = "GMAIL_FROM_EMAIL"
	keyToEmail      = "CONTACT_TO_EMAIL"
)

// Flow walks an operator through creating a refresh token
type Flow struct {
	In  io.Reader
	Out io.Writer

	// EnvPath is the dotenv file read for existing credentials and updated on save
	EnvPath string
	// QRPath, when set, receives a PNG QR code of the authorization URL
	QRPath string
	// Endpoint overrides google.Endpoint
	Endpoint *oauth2.Endpoint

	reader *bufio.Reader
}

// Result holds the credentials produced by a successful run
type Result struct {
	ClientID     string
	ClientSecret string
	RefreshToken string
	Saved        bool
}

// Run executes the flow. Input problems return one of the package's
// sentinel errors; exchange failures return *ExchangeError.
func (f *Flow) Run(ctx context.Context) (*Result, error) {
	f.reader = bufio.NewReader(f.In)

	env, err := envfile.Read(f.EnvPath)
	if err != nil {
		return nil, err
	}

	f.println("Gmail API Refresh Token Generator")
	f.println("")

	clientID, err := f.clientID(env)
	if err != nil {
		return nil, err
	}
	clientSecret, err := f.clientSecret(env)
	if err != nil {
		return nil, err
	}

	cfg := f.oauthConfig(clientID, clientSecret)
	authURL := cfg.AuthCodeURL("state", oauth2.AccessTypeOffline, oauth2.ApprovalForce)

	f.printf("\nClient ID:    %s\n", truncate(clientID, 30))
	f.printf("Redirect URI: %s\n", RedirectURI)
	f.printf("Scopes:       %s\n", strings.Join(cfg.Scopes, ", "))
	f.println("\n1. Open the following URL in your browser:")
	f.printf("\n   %s\n\n", authURL)
	if f.QRPath != "" {
		if err := qrcode.WriteFile(authURL, qrcode.Medium, 256, f.QRPath); err != nil {
			f.printf("   (could not write QR code: %v)\n", err)
		} else {
			f.printf("   A QR code of this URL was written to %s\n\n", f.QRPath)
		}
	}
	f.println("2. Sign in with the Google account that will send mail and grant access.")
	f.println("3. Copy the authorization code shown on the final page.")
	f.println("   Codes expire within minutes and can only be used once.")
	f.println("")

	code, err := f.prompt("Enter the authorization code: ")
	if err != nil {
		return nil, err
	}
	if code == "" {
		return nil, ErrMissingCode
	}

	f.println("\nExchanging authorization code for tokens...")
	token, err := cfg.Exchange(ctx, code)
	if err != nil {
		return nil, classifyExchangeError(err)
	}
	if token.RefreshToken == "" {
		return nil, ErrNoRefreshToken
	}

	f.printf("\nRefresh token generated:\n\n   %s\n\n", token.RefreshToken)

	res := &Result{ClientID: clientID, ClientSecret: clientSecret, RefreshToken: token.RefreshToken}

	save, err := f.confirm(fmt.Sprintf("Save to %s? (y/n): ", f.EnvPath))
	if err != nil {
		return nil, err
	}
	if !save {
		f.println("\nAdd this to your .env file:")
		f.printf("%s=%s\n", keyClientID, clientID)
		f.printf("%s=%s\n", keyClientSecret, clientSecret)
		f.printf("%s=%s\n", keyRefreshToken, token.RefreshToken)
		return res, nil
	}

	entries := []envfile.Entry{
		{Key: keyClientID, Value: clientID},
		{Key: keyClientSecret, Value: clientSecret},
		{Key: keyRefreshToken, Value: token.RefreshToken},
	}
	if env[keyFromEmail] == "" {
		from, err := f.prompt("Enter your Gmail address (for GMAIL_FROM_EMAIL, or press Enter to skip): ")
		if err != nil {
			return nil, err
		}
		entries = append(entries, envfile.Entry{Key: keyFromEmail, Value: from})
	}
	if env[keyToEmail] == "" {
		to, err := f.prompt("Enter contact form recipient email (for CONTACT_TO_EMAIL, or press Enter to skip): ")
		if err != nil {
			return nil, err
		}
		entries = append(entries, envfile.Entry{Key: keyToEmail, Value: to})
	}

	if err := envfile.Update(f.EnvPath, entries...); err != nil {
		return nil, err
	}
	res.Saved = true
	f.printf("\nCredentials saved to %s\n", f.EnvPath)
	return res, nil
}

func (f *Flow) clientID(env map[string]string) (string, error) {
	id := env[keyClientID]
	if id != "" {
		f.printf("Using existing %s: %s...\n", keyClientID, truncate(id, 20))
	} else {
		f.println("Create OAuth 2.0 credentials in Google Cloud Console:")
		f.println("  1. Open https://console.cloud.google.com/apis/credentials")
		f.println("  2. Create Credentials > OAuth client ID")
		f.println("  3. Application type: Desktop app (not Web application)")
		f.println("  4. Copy the Client ID and Client Secret")
		f.println("")
		var err error
		if id, err = f.prompt("Enter your Gmail Client ID: "); err != nil {
			return "", err
		}
		if id == "" {
			return "", ErrMissingClientID
		}
	}

	if !strings.Contains(id, ".apps.googleusercontent.com") && len(id) < 20 {
		f.println("Warning: Client ID format looks incorrect.")
		f.println("  Expected format: xxxxxx-xxxxx.apps.googleusercontent.com")
		ok, err := f.confirm("Continue anyway? (y/n): ")
		if err != nil {
			return "", err
		}
		if !ok {
			return "", ErrAborted
		}
	}
	return id, nil
}

func (f *Flow) clientSecret(env map[string]string) (string, error) {
	secret := env[keyClientSecret]
	if secret != "" {
		f.printf("Using existing %s: %s...\n", keyClientSecret, truncate(secret, 10))
	} else {
		var err error
		if secret, err = f.prompt("Enter your Gmail Client Secret: "); err != nil {
			return "", err
		}
		if secret == "" {
			return "", ErrMissingClientSecret
		}
	}

	if len(secret) < 20 {
		f.println("Warning: Client Secret format looks incorrect.")
		f.println("  Client secrets are typically 24+ characters long.")
		ok, err := f.confirm("Continue anyway? (y/n): ")
		if err != nil {
			return "", err
		}
		if !ok {
			return "", ErrAborted
		}
	}
	return secret, nil
}

func (f *Flow) oauthConfig(clientID, clientSecret string) *oauth2.Config {
	endpoint := google.Endpoint
	if f.Endpoint != nil {
		endpoint = *f.Endpoint
	}
	return &oauth2.Config{
		ClientID:     clientID,
		ClientSecret: clientSecret,
		RedirectURL:  RedirectURI,
		Scopes:       []string{gmail.GmailSendScope},
		Endpoint:     endpoint,
	}
}

// prompt writes label and reads one trimmed line. EOF reads as an empty answer.
func (f *Flow) prompt(label string) (string, error) {
	fmt.Fprint(f.Out, label)
	line, err := f.reader.ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return "", fmt.Errorf("failed to read input: %w", err)
	}
	return strings.TrimSpace(line), nil
}

func (f *Flow) confirm(label string) (bool, error) {
	answer, err := f.prompt(label)
	if err != nil {
		return false, err
	}
	switch strings.ToLower(answer) {
	case "y", "yes":
		return true, nil
	}
	return false, nil
}

func (f *Flow) println(s string) {
	fmt.Fprintln(f.Out, s)
}

func (f *Flow) printf(format string, args ...interface{}) {
	fmt.Fprintf(f.Out, format, args...)
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}

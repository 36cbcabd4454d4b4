package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, "0.0.0.0:8080", cfg.Server.Addr())
	assert.Equal(t, 587, cfg.SMTP.Port)
	assert.False(t, cfg.SMTP.Secure)
	assert.True(t, cfg.Contact.StrictEmail)
	assert.Equal(t, 5, cfg.Contact.RateLimit)
	assert.False(t, cfg.Redis.Enabled())
	assert.Empty(t, cfg.Server.TrustedProxies, "forwarding headers are ignored unless proxies are configured")
}

func TestLoad_DeploymentVariables(t *testing.T) {
	t.Setenv("CONTACT_TO_EMAIL", "inbox@example.com")
	t.Setenv("SMTP_HOST", "smtp.example.com")
	t.Setenv("SMTP_PORT", "465")
	t.Setenv("SMTP_SECURE", "true")
	t.Setenv("SMTP_USER", "mailer")
	t.Setenv("SMTP_PASS", "secret")
	t.Setenv("MAIL_TRANSPORT", " SMTP ")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "smtp", cfg.Contact.Transport)
	assert.Equal(t, "inbox@example.com", cfg.Contact.ToEmail)
	assert.Equal(t, "inbox@example.com", cfg.Contact.FromEmail, "from defaults to the recipient")
	assert.Equal(t, "smtp.example.com", cfg.SMTP.Host)
	assert.Equal(t, 465, cfg.SMTP.Port)
	assert.True(t, cfg.SMTP.Secure)
	assert.Equal(t, "mailer", cfg.SMTP.User)
	assert.Equal(t, "secret", cfg.SMTP.Password)
}

func TestLoad_GmailVariables(t *testing.T) {
	t.Setenv("GMAIL_CLIENT_ID", "id.apps.googleusercontent.com")
	t.Setenv("GMAIL_CLIENT_SECRET", "shh")
	t.Setenv("GMAIL_REFRESH_TOKEN", "1//refresh")
	t.Setenv("GMAIL_FROM_EMAIL", "noreply@example.com")
	t.Setenv("CONTACT_FROM_EMAIL", "sender@example.com")

	cfg, err := Load()
	require.NoError(t, err)

	assert.True(t, cfg.Gmail.HasCredentials())
	assert.Equal(t, "1//refresh", cfg.Gmail.RefreshToken)
	assert.Equal(t, "noreply@example.com", cfg.Gmail.FromEmail)
	assert.Equal(t, "sender@example.com", cfg.Contact.FromEmail)
}

func TestLoad_PrefixedAmbientVariables(t *testing.T) {
	t.Setenv("CONTACTRELAY_SERVER_PORT", "9090")
	t.Setenv("CONTACTRELAY_LOG_LEVEL", "debug")
	t.Setenv("REDIS_URL", "redis://localhost:6379/0")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.True(t, cfg.Redis.Enabled())
}

func TestLoad_TrustedProxies(t *testing.T) {
	t.Setenv("CONTACTRELAY_SERVER_TRUSTED_PROXIES", "10.0.0.0/8,192.0.2.1")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, []string{"10.0.0.0/8", "192.0.2.1"}, cfg.Server.TrustedProxies)
}

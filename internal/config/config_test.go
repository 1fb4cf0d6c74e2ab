package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, "localhost", cfg.Server.Host)
	assert.Equal(t, "sandbox", cfg.SMTP.Mode)
	assert.Equal(t, 30, cfg.SMTP.TimeoutSeconds)
	assert.Equal(t, []string{"http://localhost:3000"}, cfg.CORS.AllowedOrigins)
	assert.False(t, cfg.Server.Diagnostic)
}

func TestLoadFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	data := `
server:
  port: 9090
  diagnostic: true
smtp:
  mode: live
  host: smtp.hostinger.com
  username: relay@example.com
  password: secret
  recipient: ops@example.com
cors:
  allowed_origins:
    - https://flexihomesrealty.com
`
	require.NoError(t, os.WriteFile(path, []byte(data), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 9090, cfg.Server.Port)
	assert.True(t, cfg.Server.Diagnostic)
	assert.Equal(t, "live", cfg.SMTP.Mode)
	assert.Equal(t, "smtp.hostinger.com", cfg.SMTP.Host)
	assert.Equal(t, "ops@example.com", cfg.SMTP.Recipient)
	assert.Equal(t, []string{"https://flexihomesrealty.com"}, cfg.CORS.AllowedOrigins)
}

func TestLoadFromEnvOverrides(t *testing.T) {
	t.Setenv("RELAY_MODE", "live")
	t.Setenv("SMTP_HOST", "smtp.override.com")
	t.Setenv("SMTP_PORT", "2525")
	t.Setenv("SMTP_USER", "env-user@example.com")
	t.Setenv("SMTP_PASS", "env-pass")
	t.Setenv("MAIL_RECIPIENT", "env-ops@example.com")
	t.Setenv("ALLOWED_ORIGINS", "https://a.example.com, https://b.example.com")
	t.Setenv("DIAGNOSTIC_MODE", "true")

	cfg, err := LoadFromEnv(filepath.Join(t.TempDir(), "nope.yaml"))
	require.NoError(t, err)

	assert.Equal(t, "live", cfg.SMTP.Mode)
	assert.Equal(t, "smtp.override.com", cfg.SMTP.Host)
	assert.Equal(t, 2525, cfg.SMTP.Port)
	assert.Equal(t, "env-user@example.com", cfg.SMTP.Username)
	assert.Equal(t, "env-pass", cfg.SMTP.Password)
	assert.Equal(t, "env-ops@example.com", cfg.SMTP.Recipient)
	assert.Equal(t, []string{"https://a.example.com", "https://b.example.com"}, cfg.CORS.AllowedOrigins)
	assert.True(t, cfg.Server.Diagnostic)
}

func TestLoadFromEnvRejectsBadPort(t *testing.T) {
	t.Setenv("SMTP_PORT", "not-a-port")
	_, err := LoadFromEnv(filepath.Join(t.TempDir(), "nope.yaml"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "SMTP_PORT")
}

func TestSMTPValidateLiveRequiresCredentials(t *testing.T) {
	err := SMTPConfig{Mode: "live", Host: "smtp.hostinger.com"}.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "smtp.username")
	assert.Contains(t, err.Error(), "smtp.password")
	assert.Contains(t, err.Error(), "smtp.recipient")

	err = SMTPConfig{
		Mode:      "live",
		Host:      "smtp.hostinger.com",
		Username:  "relay@example.com",
		Password:  "secret",
		Recipient: "ops@example.com",
	}.Validate()
	assert.NoError(t, err)
}

func TestSMTPValidateSandboxNeedsNothing(t *testing.T) {
	assert.NoError(t, SMTPConfig{Mode: "sandbox"}.Validate())
	assert.NoError(t, SMTPConfig{}.Validate())
}

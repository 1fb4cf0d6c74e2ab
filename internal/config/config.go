package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config holds all configuration for the application
type Config struct {
	Server ServerConfig `yaml:"server"`
	SMTP   SMTPConfig   `yaml:"smtp"`
	CORS   CORSConfig   `yaml:"cors"`
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Port int    `yaml:"port"`
	Host string `yaml:"host"`
	// Diagnostic enables verbose logging and raw error detail in delivery
	// failure responses. Never enable in production.
	Diagnostic bool `yaml:"diagnostic"`
}

// GetHost returns the server host, with container detection
func (c ServerConfig) GetHost() string {
	// In a container, listen on all interfaces
	if os.Getenv("ECS_CONTAINER_METADATA_URI") != "" || os.Getenv("AWS_EXECUTION_ENV") != "" {
		return "0.0.0.0"
	}
	// Allow override via environment
	if host := os.Getenv("SERVER_HOST"); host != "" {
		return host
	}
	return c.Host
}

// SMTPConfig holds outbound relay configuration. Credentials are never
// defaulted in code; live mode refuses to start without them.
type SMTPConfig struct {
	Mode           string `yaml:"mode"` // "sandbox" or "live"
	Host           string `yaml:"host"`
	Port           int    `yaml:"port"`
	Username       string `yaml:"username"`
	Password       string `yaml:"password"`
	From           string `yaml:"from"`
	Recipient      string `yaml:"recipient"` // operator mailbox notifications go to
	TimeoutSeconds int    `yaml:"timeout_seconds"`
}

// Timeout returns the configured timeout as a duration
func (c SMTPConfig) Timeout() time.Duration {
	return time.Duration(c.TimeoutSeconds) * time.Second
}

// Validate enforces the startup requirements for the configured mode.
// Live mode must have a relay host, credentials and an operator mailbox;
// sandbox mode synthesizes whatever is missing.
func (c SMTPConfig) Validate() error {
	if strings.ToLower(c.Mode) != "live" {
		return nil
	}
	var missing []string
	if c.Host == "" {
		missing = append(missing, "smtp.host")
	}
	if c.Username == "" {
		missing = append(missing, "smtp.username")
	}
	if c.Password == "" {
		missing = append(missing, "smtp.password")
	}
	if c.Recipient == "" {
		missing = append(missing, "smtp.recipient")
	}
	if len(missing) > 0 {
		return fmt.Errorf("live mode requires %s (set in config or environment)", strings.Join(missing, ", "))
	}
	return nil
}

// CORSConfig holds the inbound origin allow-list
type CORSConfig struct {
	AllowedOrigins []string `yaml:"allowed_origins"`
}

// Load reads and parses the configuration file. A missing file is not an
// error: sandbox mode runs with defaults plus environment overrides.
func Load(path string) (*Config, error) {
	var cfg Config

	data, err := os.ReadFile(path)
	if err != nil && !os.IsNotExist(err) {
		return nil, err
	}
	if err == nil {
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, err
		}
	}

	// Set defaults
	if cfg.Server.Port == 0 {
		cfg.Server.Port = 8080
	}
	if cfg.Server.Host == "" {
		cfg.Server.Host = "localhost"
	}
	if cfg.SMTP.Mode == "" {
		cfg.SMTP.Mode = "sandbox"
	}
	if cfg.SMTP.TimeoutSeconds == 0 {
		cfg.SMTP.TimeoutSeconds = 30
	}
	if len(cfg.CORS.AllowedOrigins) == 0 {
		cfg.CORS.AllowedOrigins = []string{"http://localhost:3000"}
	}

	return &cfg, nil
}

// LoadFromEnv loads configuration with environment variable overrides.
// It automatically loads a .env file (if present) before reading env vars,
// so secrets can live in .env locally and in real env vars in production.
func LoadFromEnv(path string) (*Config, error) {
	// Load .env file if it exists (no error if missing)
	_ = godotenv.Load()

	cfg, err := Load(path)
	if err != nil {
		return nil, err
	}

	// Override with environment variables if present
	if mode := os.Getenv("RELAY_MODE"); mode != "" {
		cfg.SMTP.Mode = mode
	}
	if host := os.Getenv("SMTP_HOST"); host != "" {
		cfg.SMTP.Host = host
	}
	if port := os.Getenv("SMTP_PORT"); port != "" {
		p, err := strconv.Atoi(port)
		if err != nil {
			return nil, fmt.Errorf("invalid SMTP_PORT %q: %w", port, err)
		}
		cfg.SMTP.Port = p
	}
	if user := os.Getenv("SMTP_USER"); user != "" {
		cfg.SMTP.Username = user
	}
	if pass := os.Getenv("SMTP_PASS"); pass != "" {
		cfg.SMTP.Password = pass
	}
	if from := os.Getenv("MAIL_FROM"); from != "" {
		cfg.SMTP.From = from
	}
	if rcpt := os.Getenv("MAIL_RECIPIENT"); rcpt != "" {
		cfg.SMTP.Recipient = rcpt
	}
	if origins := os.Getenv("ALLOWED_ORIGINS"); origins != "" {
		parts := strings.Split(origins, ",")
		for i := range parts {
			parts[i] = strings.TrimSpace(parts[i])
		}
		cfg.CORS.AllowedOrigins = parts
	}
	if diag := os.Getenv("DIAGNOSTIC_MODE"); diag == "true" || diag == "1" {
		cfg.Server.Diagnostic = true
	}

	return cfg, nil
}

// Package relay resolves the outbound mail channel, composes notification
// messages and dispatches them over SMTP.
package relay

import (
	"fmt"
	"strings"
	"time"

	"github.com/flexihomes/formrelay/internal/config"
	"github.com/google/uuid"
)

// Mode selects the deployment flavour of the outbound channel.
type Mode string

const (
	// Sandbox delivers through a disposable test relay; messages are not
	// expected to reach a real inbox.
	Sandbox Mode = "sandbox"
	// Live delivers through the production relay with implicit TLS on 465.
	Live Mode = "live"
)

const (
	sandboxHost = "smtp.ethereal.email"
	sandboxPort = 587
	livePort    = 465
)

// TransporterConfig is the resolved outbound channel configuration. It is
// constructed once at startup and never mutated afterwards.
type TransporterConfig struct {
	Host        string
	Port        int
	ImplicitTLS bool
	Username    string
	Password    string
	From        string // relay identity used on every outbound message
	Mode        Mode
	Timeout     time.Duration
}

// Addr returns the host:port dial target.
func (tc *TransporterConfig) Addr() string {
	return fmt.Sprintf("%s:%d", tc.Host, tc.Port)
}

// ResolveTransporter builds the channel configuration for the configured
// deployment mode. Mode is fixed at process start, so the result is resolved
// once in main and shared for the process lifetime.
//
// In live mode every credential must come from configuration; a missing value
// is an error the caller treats as fatal at startup. In sandbox mode missing
// values are synthesized so the service runs with zero configuration.
func ResolveTransporter(cfg config.SMTPConfig) (*TransporterConfig, error) {
	mode := Mode(strings.ToLower(cfg.Mode))
	switch mode {
	case Live:
		var missing []string
		if cfg.Host == "" {
			missing = append(missing, "host")
		}
		if cfg.Username == "" {
			missing = append(missing, "username")
		}
		if cfg.Password == "" {
			missing = append(missing, "password")
		}
		if len(missing) > 0 {
			return nil, fmt.Errorf("live relay configuration incomplete: missing %s", strings.Join(missing, ", "))
		}
		port := cfg.Port
		if port == 0 {
			port = livePort
		}
		from := cfg.From
		if from == "" {
			from = cfg.Username
		}
		return &TransporterConfig{
			Host:        cfg.Host,
			Port:        port,
			ImplicitTLS: port == livePort,
			Username:    cfg.Username,
			Password:    cfg.Password,
			From:        from,
			Mode:        Live,
			Timeout:     cfg.Timeout(),
		}, nil

	case Sandbox, "":
		tc := &TransporterConfig{
			Host:        cfg.Host,
			Port:        cfg.Port,
			ImplicitTLS: false,
			Username:    cfg.Username,
			Password:    cfg.Password,
			From:        cfg.From,
			Mode:        Sandbox,
			Timeout:     cfg.Timeout(),
		}
		if tc.Host == "" {
			tc.Host = sandboxHost
		}
		if tc.Port == 0 {
			tc.Port = sandboxPort
		}
		if tc.Username == "" {
			// Disposable identity; nothing here is a real credential.
			tc.Username = fmt.Sprintf("sandbox-%s@%s", uuid.New().String()[:8], sandboxHost)
			tc.Password = uuid.New().String()
		}
		if tc.From == "" {
			tc.From = tc.Username
		}
		return tc, nil

	default:
		return nil, fmt.Errorf("unknown relay mode %q (want %q or %q)", cfg.Mode, Sandbox, Live)
	}
}

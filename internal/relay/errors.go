package relay

import (
	"context"
	"errors"
	"fmt"
	"net"
	"strings"
)

// ErrorKind classifies a delivery failure into a closed set so callers can
// distinguish auth failures from connectivity failures from timeouts.
type ErrorKind string

const (
	AuthenticationFailed   ErrorKind = "AuthenticationFailed"
	ChannelUnavailable     ErrorKind = "ChannelUnavailable"
	Timeout                ErrorKind = "Timeout"
	UnknownDeliveryFailure ErrorKind = "UnknownDeliveryFailure"
)

// DispatchError is a classified delivery failure. Detail carries the raw
// lower-level diagnostic and must only reach clients in diagnostic mode.
type DispatchError struct {
	Kind   ErrorKind
	Detail string
}

func (e *DispatchError) Error() string {
	return fmt.Sprintf("%s: %s", e.Kind, e.Detail)
}

// UserMessage returns the public-safe message for a failure kind. Raw error
// detail never goes through here.
func UserMessage(kind ErrorKind) string {
	switch kind {
	case AuthenticationFailed:
		return "The mail relay rejected our credentials"
	case ChannelUnavailable:
		return "Could not reach the mail relay"
	case Timeout:
		return "Timed out while talking to the mail relay"
	default:
		return "Failed to send email"
	}
}

// Classify maps a transport-layer error to an ErrorKind. SMTP errors mostly
// surface as strings from net/smtp, so this matches on the usual patterns.
func Classify(err error) ErrorKind {
	if err == nil {
		return UnknownDeliveryFailure
	}

	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return Timeout
	}
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return Timeout
	}

	errStr := strings.ToLower(err.Error())
	switch {
	case strings.Contains(errStr, "535") ||
		strings.Contains(errStr, "authentication") ||
		strings.Contains(errStr, "username and password not accepted"):
		return AuthenticationFailed

	case strings.Contains(errStr, "connection refused") ||
		strings.Contains(errStr, "connection reset") ||
		strings.Contains(errStr, "no such host") ||
		strings.Contains(errStr, "broken pipe") ||
		strings.Contains(errStr, "dial tcp"):
		return ChannelUnavailable

	case strings.Contains(errStr, "timeout") ||
		strings.Contains(errStr, "deadline exceeded"):
		return Timeout

	default:
		return UnknownDeliveryFailure
	}
}

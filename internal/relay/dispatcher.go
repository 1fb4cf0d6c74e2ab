package relay

import (
	"context"
	"crypto/tls"
	"fmt"
	"io"
	"net"
	"net/smtp"
	"time"

	"github.com/flexihomes/formrelay/internal/pkg/logger"
	"github.com/google/uuid"
)

// Session is the slice of *smtp.Client the dispatcher drives. Tests swap in
// a scripted double to force failures and count open/close balance.
type Session interface {
	Auth(a smtp.Auth) error
	Noop() error
	Mail(from string) error
	Rcpt(to string) error
	Data() (io.WriteCloser, error)
	Quit() error
	Close() error
}

// DialFunc opens a connection to the relay and returns an SMTP session.
type DialFunc func(ctx context.Context, tc *TransporterConfig) (Session, error)

// DispatchResult is the outcome of a successful delivery.
type DispatchResult struct {
	MessageID string
	// PreviewURL points at the sandbox relay's message inspector; empty in
	// live mode.
	PreviewURL string
}

// Dispatcher executes at-most-one delivery attempt per call:
// dial and verify the channel, then send, then release the session on every
// exit path. There is no retry here; a failed request simply reports why.
type Dispatcher struct {
	dial DialFunc
}

// NewDispatcher creates a dispatcher that dials the relay over TCP, with
// implicit TLS or STARTTLS depending on the transporter configuration.
func NewDispatcher() *Dispatcher {
	return &Dispatcher{dial: dialSMTP}
}

// NewDispatcherWithDial creates a dispatcher with an injected dial function.
func NewDispatcherWithDial(dial DialFunc) *Dispatcher {
	return &Dispatcher{dial: dial}
}

// Dispatch delivers msg through the resolved transporter.
//
// Phases: dial → authenticate → probe (NOOP) → send. A probe failure aborts
// without a delivery attempt and classifies as ChannelUnavailable. The
// session is closed on every path, success or failure.
func (d *Dispatcher) Dispatch(ctx context.Context, tc *TransporterConfig, msg *Message) (*DispatchResult, *DispatchError) {
	timeout := tc.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	sess, err := d.dial(ctx, tc)
	if err != nil {
		return nil, &DispatchError{Kind: Classify(err), Detail: err.Error()}
	}
	defer sess.Close()

	if tc.Username != "" {
		auth := smtp.PlainAuth("", tc.Username, tc.Password, tc.Host)
		if err := sess.Auth(auth); err != nil {
			return nil, &DispatchError{Kind: AuthenticationFailed, Detail: err.Error()}
		}
	}

	// Reachability probe before committing to a send.
	if err := sess.Noop(); err != nil {
		kind := Classify(err)
		if kind != Timeout {
			kind = ChannelUnavailable
		}
		return nil, &DispatchError{Kind: kind, Detail: err.Error()}
	}

	messageID := fmt.Sprintf("%s@%s", uuid.New().String(), tc.Host)

	if err := d.send(sess, tc, msg, messageID); err != nil {
		return nil, &DispatchError{Kind: Classify(err), Detail: err.Error()}
	}

	logger.Info("notification dispatched",
		"message_id", messageID,
		"to", msg.To,
		"mode", string(tc.Mode),
		"attachments", len(msg.Attachments),
	)

	result := &DispatchResult{MessageID: messageID}
	if tc.Mode == Sandbox {
		result.PreviewURL = fmt.Sprintf("https://ethereal.email/message/%s", messageID)
	}
	return result, nil
}

func (d *Dispatcher) send(sess Session, tc *TransporterConfig, msg *Message, messageID string) error {
	if err := sess.Mail(tc.From); err != nil {
		return fmt.Errorf("MAIL FROM: %w", err)
	}
	if err := sess.Rcpt(msg.To); err != nil {
		return fmt.Errorf("RCPT TO: %w", err)
	}
	w, err := sess.Data()
	if err != nil {
		return fmt.Errorf("DATA: %w", err)
	}
	if _, err := w.Write(msg.Build(messageID)); err != nil {
		w.Close()
		return fmt.Errorf("write message: %w", err)
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("finish message: %w", err)
	}
	if err := sess.Quit(); err != nil {
		return fmt.Errorf("QUIT: %w", err)
	}
	return nil
}

// dialSMTP opens the relay connection. Live relays use implicit TLS on 465;
// the sandbox relay speaks STARTTLS on its submission port.
func dialSMTP(ctx context.Context, tc *TransporterConfig) (Session, error) {
	netDialer := &net.Dialer{Timeout: tc.Timeout}

	var (
		conn net.Conn
		err  error
	)
	if tc.ImplicitTLS {
		tlsDialer := &tls.Dialer{
			NetDialer: netDialer,
			Config:    &tls.Config{ServerName: tc.Host},
		}
		conn, err = tlsDialer.DialContext(ctx, "tcp", tc.Addr())
	} else {
		conn, err = netDialer.DialContext(ctx, "tcp", tc.Addr())
	}
	if err != nil {
		return nil, fmt.Errorf("SMTP connect to %s: %w", tc.Addr(), err)
	}

	// Bound every subsequent phase, not just the dial.
	if deadline, ok := ctx.Deadline(); ok {
		conn.SetDeadline(deadline)
	}

	c, err := smtp.NewClient(conn, tc.Host)
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("SMTP client: %w", err)
	}

	if !tc.ImplicitTLS {
		if ok, _ := c.Extension("STARTTLS"); ok {
			if err := c.StartTLS(&tls.Config{ServerName: tc.Host}); err != nil {
				c.Close()
				return nil, fmt.Errorf("STARTTLS: %w", err)
			}
		}
	}
	return c, nil
}

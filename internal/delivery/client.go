// Package delivery sends rendered previews to real inboxes over SMTP
// submission, so a template can be checked in actual email clients. Messages
// are optionally DKIM signed before handoff.
package delivery

import (
	"context"
	"crypto/tls"
	"fmt"
	"log/slog"
	"net"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/emersion/go-sasl"
	"github.com/emersion/go-smtp"
)

// DeliveryError represents a send error with type information
type DeliveryError struct {
	Temporary bool
	Message   string
}

func (e *DeliveryError) Error() string {
	return e.Message
}

// Options configures the submission client
type Options struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
	Hostname string
	Timeout  time.Duration
}

// Client submits preview emails to a relay
type Client struct {
	opts   Options
	logger *slog.Logger
	signer *Signer
}

// NewClient creates a new submission client
func NewClient(opts Options, logger *slog.Logger) *Client {
	if opts.Timeout == 0 {
		opts.Timeout = 30 * time.Second
	}
	if opts.Port == 0 {
		opts.Port = 587
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Client{opts: opts, logger: logger}
}

// SetSigner sets the DKIM signer for outgoing previews
func (c *Client) SetSigner(signer *Signer) {
	c.signer = signer
}

// SendPreview renders nothing itself: it takes the already generated HTML
// and submits it to the configured relay for the given recipients.
func (c *Client) SendPreview(ctx context.Context, to []string, subject, html string) error {
	if len(to) == 0 {
		return &DeliveryError{Temporary: false, Message: "no recipients"}
	}

	message, err := buildMessage(c.opts.From, to, subject, html, c.opts.Hostname)
	if err != nil {
		return &DeliveryError{Temporary: false, Message: err.Error()}
	}

	if c.signer != nil {
		signed, err := c.signer.Sign(message)
		if err != nil {
			c.logger.Warn("DKIM signing failed, sending unsigned",
				"domain", c.signer.Domain(),
				"error", err,
			)
		} else {
			message = signed
			c.logger.Debug("DKIM signed",
				"domain", c.signer.Domain(),
				"selector", c.signer.Selector(),
			)
		}
	}

	return c.submit(ctx, to, message)
}

// submit performs one SMTP conversation with the relay.
func (c *Client) submit(ctx context.Context, to []string, message []byte) error {
	addr := net.JoinHostPort(c.opts.Host, strconv.Itoa(c.opts.Port))

	dialer := &net.Dialer{Timeout: c.opts.Timeout}
	conn, err := dialer.DialContext(ctx, "tcp", addr)
	if err != nil {
		return &DeliveryError{
			Temporary: true,
			Message:   fmt.Sprintf("connection failed to %s: %v", addr, err),
		}
	}

	if deadline, ok := ctx.Deadline(); ok {
		conn.SetDeadline(deadline)
	} else {
		conn.SetDeadline(time.Now().Add(c.opts.Timeout))
	}

	// The relay must offer STARTTLS; credentials never travel in the clear.
	tlsConfig := &tls.Config{
		ServerName: c.opts.Host,
		MinVersion: tls.VersionTLS12,
	}
	client, err := smtp.NewClientStartTLS(conn, tlsConfig)
	if err != nil {
		return categorizeError(err, "STARTTLS")
	}
	defer client.Close()

	if c.opts.Username != "" {
		auth := sasl.NewPlainClient("", c.opts.Username, c.opts.Password)
		if err := client.Auth(auth); err != nil {
			return categorizeError(err, "AUTH")
		}
	}

	if err := client.Mail(c.opts.From, nil); err != nil {
		return categorizeError(err, "MAIL FROM")
	}
	for _, recipient := range to {
		if err := client.Rcpt(recipient, nil); err != nil {
			return categorizeError(err, fmt.Sprintf("RCPT TO %s", recipient))
		}
	}

	wc, err := client.Data()
	if err != nil {
		return categorizeError(err, "DATA")
	}
	if _, err := wc.Write(message); err != nil {
		wc.Close()
		return &DeliveryError{
			Temporary: true,
			Message:   fmt.Sprintf("failed to write message data: %v", err),
		}
	}
	if err := wc.Close(); err != nil {
		return categorizeError(err, "DATA close")
	}

	client.Quit()

	c.logger.Info("preview delivered",
		"relay", addr,
		"from", c.opts.From,
		"to", to,
	)

	return nil
}

// smtpCodePattern matches SMTP response codes at word boundaries
var smtpCodePattern = regexp.MustCompile(`\b(4\d{2}|5\d{2})\b`)

// categorizeError determines if an SMTP error is temporary or permanent
func categorizeError(err error, stage string) *DeliveryError {
	msg := fmt.Sprintf("%s failed: %v", stage, err)

	matches := smtpCodePattern.FindStringSubmatch(err.Error())
	if len(matches) > 1 {
		code := matches[1]
		if strings.HasPrefix(code, "5") {
			return &DeliveryError{Temporary: false, Message: msg}
		}
		if strings.HasPrefix(code, "4") {
			return &DeliveryError{Temporary: true, Message: msg}
		}
	}

	// Assume temporary by default
	return &DeliveryError{Temporary: true, Message: msg}
}

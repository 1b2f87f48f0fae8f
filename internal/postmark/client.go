// Package postmark implements the email dispatcher against the Postmark
// HTTP API. Dispatch is synchronous and one-shot: no retry, no queuing.
package postmark

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"time"

	"github.com/ignite/newsletter/internal/pkg/secret"
)

// HTTPDoer is the interface for executing HTTP requests. Both *http.Client
// and test doubles satisfy this interface.
type HTTPDoer interface {
	Do(req *http.Request) (*http.Response, error)
}

// Config holds the settings for a Postmark client.
type Config struct {
	BaseURL     string
	SenderEmail string
	ServerToken secret.Secret
	Timeout     time.Duration
}

// Client sends transactional email through Postmark. All failures surface as
// a single opaque *DispatchError; callers cannot distinguish a provider
// rejection from a transport failure and must treat both as a send failure.
type Client struct {
	baseURL    *url.URL
	sender     string
	token      secret.Secret
	httpClient HTTPDoer
}

// NewClient creates a Postmark client. The configured timeout bounds every
// Send call end to end.
func NewClient(cfg Config) (*Client, error) {
	base, err := url.Parse(cfg.BaseURL)
	if err != nil {
		return nil, fmt.Errorf("parse postmark base url: %w", err)
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Client{
		baseURL:    base,
		sender:     cfg.SenderEmail,
		token:      cfg.ServerToken,
		httpClient: &http.Client{Timeout: timeout},
	}, nil
}

// SetHTTPClient sets a custom HTTP client (useful for testing).
func (c *Client) SetHTTPClient(client HTTPDoer) {
	c.httpClient = client
}

// sendEmailRequest is the Postmark send-email payload. Field names are
// PascalCase on the wire.
type sendEmailRequest struct {
	From     string `json:"From"`
	To       string `json:"To"`
	Subject  string `json:"Subject"`
	HtmlBody string `json:"HtmlBody"`
	TextBody string `json:"TextBody"`
}

// DispatchError is the single error type returned by Send. The wrapped cause
// is preserved for diagnostic logging only.
type DispatchError struct {
	timeout bool
	err     error
}

func (e *DispatchError) Error() string { return "postmark: email dispatch failed" }

func (e *DispatchError) Unwrap() error { return e.err }

// Timeout reports whether the dispatch failed by exceeding the configured
// timeout.
func (e *DispatchError) Timeout() bool { return e.timeout }

// Send posts a single email to {base_url}/email with the server token in the
// X-Postmark-Server-Token header. Any non-2xx status, transport failure, or
// malformed endpoint is reported as a *DispatchError.
func (c *Client) Send(ctx context.Context, recipient, subject, htmlBody, textBody string) error {
	endpoint := c.baseURL.JoinPath("email")

	body, err := json.Marshal(sendEmailRequest{
		From:     c.sender,
		To:       recipient,
		Subject:  subject,
		HtmlBody: htmlBody,
		TextBody: textBody,
	})
	if err != nil {
		return &DispatchError{err: fmt.Errorf("marshal send request: %w", err)}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint.String(), bytes.NewReader(body))
	if err != nil {
		return &DispatchError{err: fmt.Errorf("build send request: %w", err)}
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Postmark-Server-Token", c.token.Reveal())

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return &DispatchError{timeout: isTimeout(err), err: fmt.Errorf("execute send request: %w", err)}
	}
	defer resp.Body.Close()
	io.Copy(io.Discard, resp.Body) // drain for connection reuse

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return &DispatchError{err: fmt.Errorf("provider returned status %d", resp.StatusCode)}
	}
	return nil
}

func isTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}

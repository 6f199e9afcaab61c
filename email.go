package auth

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"
)

// Email is an outbound message. Both bodies are rendered up front so senders
// stay dumb pipes.
type Email struct {
	To       string
	Subject  string
	HTMLBody string
	TextBody string
}

// EmailSender delivers one message to one address.
type EmailSender interface {
	Send(ctx context.Context, msg Email) error
}

// ConsoleEmailSender is a development implementation that logs emails
// instead of delivering them.
type ConsoleEmailSender struct {
	Logger *slog.Logger
}

func (c *ConsoleEmailSender) Send(_ context.Context, msg Email) error {
	logger := c.Logger
	if logger == nil {
		logger = slog.Default()
	}
	logger.Info("email (console sender)",
		"to", msg.To,
		"subject", msg.Subject,
		"body", msg.TextBody)
	return nil
}

const resendEndpoint = "https://api.resend.com/emails"

// ResendSender delivers mail through the Resend HTTP API.
type ResendSender struct {
	APIKey string
	From   string

	// Client defaults to an http.Client with a 10s timeout.
	Client *http.Client
}

func (s *ResendSender) Send(ctx context.Context, msg Email) error {
	payload, err := json.Marshal(map[string]any{
		"from":    s.From,
		"to":      []string{msg.To},
		"subject": msg.Subject,
		"html":    msg.HTMLBody,
		"text":    msg.TextBody,
	})
	if err != nil {
		return fmt.Errorf("encode email: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, resendEndpoint, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("build email request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+s.APIKey)
	req.Header.Set("Content-Type", "application/json")

	client := s.Client
	if client == nil {
		client = &http.Client{Timeout: 10 * time.Second}
	}
	resp, err := client.Do(req)
	if err != nil {
		return fmt.Errorf("send email: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		detail, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("send email: status %d: %s", resp.StatusCode, detail)
	}
	return nil
}

// Package resend sends transactional email through the Resend REST API.
package resend

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"

	"github.com/marcosklein04/alquileres-ai/internal/config"
)

const defaultBaseURL = "https://api.resend.com"

// Sender delivers plain-text email via Resend.
type Sender struct {
	baseURL    string
	apiKey     string
	from       string
	httpClient *http.Client
	log        *slog.Logger
}

// New creates a Sender with the default Resend API URL.
func New(cfg config.MailerConfig, logger *slog.Logger) *Sender {
	return NewWithURL(defaultBaseURL, cfg, logger)
}

// NewWithURL creates a Sender with a custom base URL (for testing).
func NewWithURL(baseURL string, cfg config.MailerConfig, logger *slog.Logger) *Sender {
	return &Sender{
		baseURL:    baseURL,
		apiKey:     cfg.APIKey,
		from:       fmt.Sprintf("%s <%s>", cfg.FromName, cfg.From),
		httpClient: &http.Client{Timeout: cfg.Timeout},
		log:        logger.With("adapter", "resend"),
	}
}

// sendRequest is the Resend /emails request body.
type sendRequest struct {
	From    string   `json:"from"`
	To      []string `json:"to"`
	Subject string   `json:"subject"`
	Text    string   `json:"text"`
}

// Send delivers a plain-text email to a single recipient.
// Any response status >= 300 is an error carrying the response body.
func (s *Sender) Send(ctx context.Context, to, subject, body string) error {
	payload, err := json.Marshal(sendRequest{
		From:    s.from,
		To:      []string{to},
		Subject: subject,
		Text:    body,
	})
	if err != nil {
		return fmt.Errorf("resend: marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.baseURL+"/emails", bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("resend: create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+s.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		s.log.ErrorContext(ctx, "resend request failed", slog.String("error", err.Error()))
		return fmt.Errorf("resend: request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		respBody, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		s.log.ErrorContext(ctx, "resend rejected email",
			slog.Int("status", resp.StatusCode),
			slog.String("body", string(respBody)),
		)
		return fmt.Errorf("resend: status %d: %s", resp.StatusCode, respBody)
	}

	s.log.DebugContext(ctx, "email sent", slog.String("to", to), slog.Int("status", resp.StatusCode))
	return nil
}

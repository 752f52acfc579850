// Package claude implements contract field extraction backed by the
// Anthropic Messages API.
package claude

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"time"

	anthropic "github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"

	"github.com/marcosklein04/alquileres-ai/internal/config"
	"github.com/marcosklein04/alquileres-ai/internal/domain"
	"github.com/marcosklein04/alquileres-ai/internal/extraction"
)

// Extractor sends contract text to Claude and parses the structured reply.
type Extractor struct {
	client    anthropic.Client
	model     string
	maxTokens int
	timeout   time.Duration
	log       *slog.Logger
}

// New creates an Extractor from config.
func New(cfg config.ExtractionConfig, logger *slog.Logger) *Extractor {
	return &Extractor{
		client:    anthropic.NewClient(option.WithAPIKey(cfg.APIKey)),
		model:     cfg.Model,
		maxTokens: cfg.MaxTokens,
		timeout:   cfg.Timeout,
		log:       logger.With("adapter", "claude"),
	}
}

// payload mirrors the JSON schema the prompt demands from the model.
type payload struct {
	Agency    *string `json:"agency"`
	Tenant    *string `json:"tenant"`
	Owner     *string `json:"owner"`
	StartDate *string `json:"start_date"`
	EndDate   *string `json:"end_date"`
}

// Extract asks the model for the structured fields of a rental contract.
// Anything that is not a valid JSON reply, or a reply with no usable field,
// wraps domain.ErrExtractionFailed.
func (e *Extractor) Extract(ctx context.Context, text string) (extraction.Fields, error) {
	ctx, cancel := context.WithTimeout(ctx, e.timeout)
	defer cancel()

	msg, err := e.client.Messages.New(ctx, anthropic.MessageNewParams{
		Model:     anthropic.Model(e.model),
		MaxTokens: int64(e.maxTokens),
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(buildPrompt(text))),
		},
	})
	if err != nil {
		return extraction.Fields{}, fmt.Errorf("claude: api call: %w", err)
	}

	if len(msg.Content) == 0 {
		return extraction.Fields{}, fmt.Errorf("claude: empty response: %w", domain.ErrExtractionFailed)
	}

	fields, err := parseResponse(msg.Content[0].Text)
	if err != nil {
		e.log.WarnContext(ctx, "unparseable model response", slog.String("error", err.Error()))
		return extraction.Fields{}, err
	}

	fields.Model = e.model

	e.log.DebugContext(ctx, "extraction complete",
		slog.String("model", e.model),
		slog.Bool("empty", fields.Empty()),
	)

	return fields, nil
}

// buildPrompt creates the extraction prompt for one contract text.
func buildPrompt(text string) string {
	return fmt.Sprintf(`You are a rental contract analyst.

Extract the following fields from the contract text below.

Contract text:
%s

Output ONLY a valid JSON object matching this exact schema:
{
  "agency": "<real estate agency name or null>",
  "tenant": "<tenant full name or null>",
  "owner": "<property owner full name or null>",
  "start_date": "<contract start date as YYYY-MM-DD or null>",
  "end_date": "<contract end date as YYYY-MM-DD or null>"
}

Rules:
- Use null for any field you cannot identify with confidence
- Dates must be ISO format YYYY-MM-DD
- Output ONLY the JSON, no markdown, no explanations`, text)
}

// parseResponse extracts and decodes the JSON object from a model reply.
func parseResponse(responseText string) (extraction.Fields, error) {
	jsonStr, err := extractJSON(responseText)
	if err != nil {
		return extraction.Fields{}, fmt.Errorf("claude: %s: %w", err, domain.ErrExtractionFailed)
	}

	if !json.Valid([]byte(jsonStr)) {
		return extraction.Fields{}, fmt.Errorf("claude: response is not valid JSON: %w", domain.ErrExtractionFailed)
	}

	var p payload
	if err := json.Unmarshal([]byte(jsonStr), &p); err != nil {
		return extraction.Fields{}, fmt.Errorf("claude: decode response: %w", domain.ErrExtractionFailed)
	}

	return extraction.Fields{
		Agency:    cleanString(p.Agency),
		Tenant:    cleanString(p.Tenant),
		Owner:     cleanString(p.Owner),
		StartDate: parseDate(p.StartDate),
		EndDate:   parseDate(p.EndDate),
	}, nil
}

// extractJSON finds the first complete JSON object in a string.
func extractJSON(s string) (string, error) {
	start := strings.Index(s, "{")
	end := strings.LastIndex(s, "}")
	if start == -1 || end == -1 || end <= start {
		return "", fmt.Errorf("no JSON object found in response")
	}
	return s[start : end+1], nil
}

// cleanString trims whitespace and treats "", "null" and "n/a" as absent.
func cleanString(s *string) *string {
	if s == nil {
		return nil
	}
	trimmed := strings.TrimSpace(*s)
	switch strings.ToLower(trimmed) {
	case "", "null", "n/a", "none":
		return nil
	}
	return &trimmed
}

// parseDate converts a model-reported date string to a time.Time.
// Unparseable dates are dropped rather than failing the whole extraction.
func parseDate(s *string) *time.Time {
	cleaned := cleanString(s)
	if cleaned == nil {
		return nil
	}
	t, ok := domain.ParseDate(*cleaned)
	if !ok {
		return nil
	}
	return &t
}

// Package openai talks to OpenAI-compatible chat APIs for interest
// classification and item descriptions.
package openai

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	openai "github.com/sashabaranov/go-openai"
	"go.uber.org/zap"

	"github.com/spotive-cloud/discovery/internal/domain"
	"github.com/spotive-cloud/discovery/internal/domain/category"
	"github.com/spotive-cloud/discovery/internal/metrics"
)

// Classifier maps free-text guest interests to category tags using an
// OpenAI-compatible chat API.
type Classifier struct {
	client *openai.Client
	model  string
	vocab  category.Vocabulary
	logger *zap.Logger
}

// Config holds the chat provider settings.
type Config struct {
	APIKey      string
	BaseURL     string
	Model       string
	Temperature float32
	Logger      *zap.Logger
}

// NewClassifier creates an OpenAI-compatible interest classifier.
func NewClassifier(cfg *Config, vocab category.Vocabulary) *Classifier {
	clientCfg := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		clientCfg.BaseURL = cfg.BaseURL
	}

	return &Classifier{
		client: openai.NewClientWithConfig(clientCfg),
		model:  cfg.Model,
		vocab:  vocab,
		logger: cfg.Logger,
	}
}

// Classify implements usecase/mapper.Classifier. Returns the raw
// candidate strings the model produced; the caller validates them
// against the vocabulary.
func (c *Classifier) Classify(ctx context.Context, interest string) ([]string, error) {
	req := openai.ChatCompletionRequest{
		Model:       c.model,
		Temperature: 0,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: c.systemPrompt()},
			{Role: openai.ChatMessageRoleUser, Content: interest},
		},
	}

	start := time.Now()

	resp, err := c.client.CreateChatCompletion(ctx, req)

	duration := time.Since(start)

	if err != nil {
		metrics.ClassifierRequestsTotal.WithLabelValues(c.model, "error").Inc()
		return nil, parseAPIError("classifier", err)
	}

	if len(resp.Choices) == 0 {
		metrics.ClassifierRequestsTotal.WithLabelValues(c.model, "error").Inc()
		return nil, fmt.Errorf("empty classifier response: %w", domain.ErrClassifierUnavailable)
	}

	metrics.ClassifierRequestsTotal.WithLabelValues(c.model, "success").Inc()
	metrics.ClassifierRequestDuration.WithLabelValues(c.model).Observe(duration.Seconds())

	return splitCandidates(resp.Choices[0].Message.Content), nil
}

// HealthCheck verifies API availability via ListModels (free endpoint).
func (c *Classifier) HealthCheck(ctx context.Context) error {
	if _, err := c.client.ListModels(ctx); err != nil {
		return fmt.Errorf("list models: %w", err)
	}
	return nil
}

// systemPrompt instructs the model to pick only from the closed
// vocabulary and answer with a bare comma-separated list.
func (c *Classifier) systemPrompt() string {
	var b strings.Builder
	b.WriteString("You map a guest's stated interest to activity categories. ")
	b.WriteString("Valid categories: ")
	tags := c.vocab.Tags()
	for i, tag := range tags {
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteString(string(tag))
	}
	b.WriteString(". Reply with one to three matching categories as a comma-separated list, nothing else. ")
	b.WriteString("Only include a category if the interest clearly relates to it.")
	return b.String()
}

// splitCandidates breaks the model reply into trimmed candidate strings.
// Handles comma-separated lists across one or more lines and strips
// list markers the model sometimes adds.
func splitCandidates(content string) []string {
	fields := strings.FieldsFunc(content, func(r rune) bool {
		return r == ',' || r == '\n' || r == ';'
	})
	out := make([]string, 0, len(fields))
	for _, f := range fields {
		f = strings.Trim(strings.TrimSpace(f), ".-*\"'")
		f = strings.TrimSpace(f)
		if f != "" {
			out = append(out, f)
		}
	}
	return out
}

// parseAPIError extracts a human-readable error from the API response.
// All errors are wrapped with domain.ErrClassifierUnavailable so callers
// can fall back.
func parseAPIError(op string, err error) error {
	wrap := domain.ErrClassifierUnavailable

	var reqErr *openai.RequestError
	if errors.As(err, &reqErr) {
		detail := extractDetail(reqErr.Body)
		if detail != "" {
			return fmt.Errorf("%s API error %d: %s: %w", op, reqErr.HTTPStatusCode, detail, wrap)
		}
		return fmt.Errorf("%s API error %d: %s: %w", op, reqErr.HTTPStatusCode, string(reqErr.Body), wrap)
	}

	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		return fmt.Errorf("%s API error %d: %s: %w", op, apiErr.HTTPStatusCode, apiErr.Message, wrap)
	}

	return fmt.Errorf("%s request failed: %w", op, wrap)
}

// extractDetail extracts the "detail" field from a JSON error body.
func extractDetail(body []byte) string {
	var parsed struct {
		Detail string `json:"detail"`
	}
	if json.Unmarshal(body, &parsed) == nil && parsed.Detail != "" {
		return parsed.Detail
	}
	return ""
}

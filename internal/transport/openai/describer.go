package openai

import (
	"context"
	"fmt"
	"strings"
	"time"

	openai "github.com/sashabaranov/go-openai"
	"go.uber.org/zap"

	"github.com/spotive-cloud/discovery/internal/domain"
	"github.com/spotive-cloud/discovery/internal/domain/catalog"
	"github.com/spotive-cloud/discovery/internal/metrics"
)

// Describer generates short conversational blurbs for recommended items.
type Describer struct {
	client      *openai.Client
	model       string
	temperature float32
	logger      *zap.Logger
}

// NewDescriber creates an OpenAI-compatible item describer.
func NewDescriber(cfg *Config) *Describer {
	clientCfg := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		clientCfg.BaseURL = cfg.BaseURL
	}

	return &Describer{
		client:      openai.NewClientWithConfig(clientCfg),
		model:       cfg.Model,
		temperature: cfg.Temperature,
		logger:      cfg.Logger,
	}
}

// Describe implements usecase/discover.Describer. Returns a roughly
// twenty word conversational pitch for the item.
func (d *Describer) Describe(ctx context.Context, item catalog.Item) (string, error) {
	req := openai.ChatCompletionRequest{
		Model:       d.model,
		Temperature: d.temperature,
		Messages: []openai.ChatCompletionMessage{
			{
				Role: openai.ChatMessageRoleSystem,
				Content: "You write friendly one-sentence recommendations for hotel guests, " +
					"around twenty words, conversational, no emojis, no markdown.",
			},
			{Role: openai.ChatMessageRoleUser, Content: describePrompt(item)},
		},
	}

	start := time.Now()

	resp, err := d.client.CreateChatCompletion(ctx, req)

	duration := time.Since(start)

	if err != nil {
		metrics.DescriberRequestsTotal.WithLabelValues(d.model, "error").Inc()
		return "", parseAPIError("describer", err)
	}

	if len(resp.Choices) == 0 {
		metrics.DescriberRequestsTotal.WithLabelValues(d.model, "error").Inc()
		return "", fmt.Errorf("empty describer response: %w", domain.ErrClassifierUnavailable)
	}

	metrics.DescriberRequestsTotal.WithLabelValues(d.model, "success").Inc()
	metrics.DescriberRequestDuration.WithLabelValues(d.model).Observe(duration.Seconds())

	return strings.TrimSpace(resp.Choices[0].Message.Content), nil
}

// describePrompt lays out the item facts the model may draw from.
func describePrompt(item catalog.Item) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Name: %s\nCategory: %s\n", item.Name, item.Category)
	if item.Description != "" {
		fmt.Fprintf(&b, "About: %s\n", item.Description)
	}
	if item.LocationText != "" {
		fmt.Fprintf(&b, "Location: %s\n", item.LocationText)
	}
	if item.Schedule != "" {
		fmt.Fprintf(&b, "Schedule: %s\n", item.Schedule)
	}
	if item.Price != "" {
		fmt.Fprintf(&b, "Price: %s\n", item.Price)
	}
	return b.String()
}

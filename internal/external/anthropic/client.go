package anthropic

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	sdk "github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"

	"github.com/wonny/greenblatt/pkg/config"
	"github.com/wonny/greenblatt/pkg/logger"
)

const systemPrompt = `You are a quantitative financial analyst applying a disciplined long-term value investing lens.

STRICT RULES:
- Use ONLY the numerical data provided.
- Do NOT invent numbers or infer information not explicitly in the metrics.
- Do NOT mention industry, product, competitive position, or business description.
- Do NOT assign ratings (e.g., 6/10).
- If a metric is null, state: "Data unavailable."
- Be concise but professional.`

const userPromptTemplate = `Analyze this company using the provided structured metrics:

%s

Structure your response as:

1. Business Quality
2. Financial Strength
3. Valuation
4. Overall Assessment`

// ErrEmptyResponse is returned when the model produced no text
var ErrEmptyResponse = errors.New("anthropic: empty response")

// Client turns metric bundles into narrative text
// ⭐ SSOT: narrative generation goes through this client only
type Client struct {
	client      sdk.Client
	model       string
	maxTokens   int64
	temperature float64
	logger      *logger.Logger
}

// NewClient creates a narrative client from config
func NewClient(cfg config.AnthropicConfig, log *logger.Logger, opts ...option.RequestOption) *Client {
	reqOpts := []option.RequestOption{option.WithAPIKey(cfg.APIKey)}
	if cfg.BaseURL != "" {
		reqOpts = append(reqOpts, option.WithBaseURL(cfg.BaseURL))
	}
	reqOpts = append(reqOpts, opts...)

	return &Client{
		client:      sdk.NewClient(reqOpts...),
		model:       cfg.Model,
		maxTokens:   int64(cfg.MaxTokens),
		temperature: 0.4,
		logger:      log.WithComponent("anthropic"),
	}
}

// Analyze sends bundle as indented JSON and returns the concatenated text blocks
func (c *Client) Analyze(ctx context.Context, bundle any) (string, error) {
	payload, err := json.MarshalIndent(bundle, "", "  ")
	if err != nil {
		return "", fmt.Errorf("anthropic: marshal bundle: %w", err)
	}

	msg, err := c.client.Messages.New(ctx, sdk.MessageNewParams{
		Model:     sdk.Model(c.model),
		MaxTokens: c.maxTokens,
		System:    []sdk.TextBlockParam{{Text: systemPrompt}},
		Messages: []sdk.MessageParam{
			sdk.NewUserMessage(sdk.NewTextBlock(fmt.Sprintf(userPromptTemplate, payload))),
		},
		Temperature: sdk.Float(c.temperature),
	})
	if err != nil {
		return "", fmt.Errorf("anthropic: create message: %w", err)
	}

	var sb strings.Builder
	for _, block := range msg.Content {
		if block.Type == "text" {
			sb.WriteString(block.Text)
		}
	}

	text := strings.TrimSpace(sb.String())
	if text == "" {
		return "", ErrEmptyResponse
	}

	c.logger.WithFields(map[string]interface{}{
		"model":         string(msg.Model),
		"input_tokens":  msg.Usage.InputTokens,
		"output_tokens": msg.Usage.OutputTokens,
	}).Debug("Narrative generated")

	return text, nil
}

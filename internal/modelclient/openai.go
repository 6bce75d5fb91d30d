// truthx - Multimodal Content Authenticity Analysis
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/truthx

package modelclient

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/goccy/go-json"
	"github.com/sashabaranov/go-openai"

	"github.com/tomtom215/truthx/internal/config"
)

const (
	defaultChatModel = "gpt-4o-mini"
	maxTokens        = 256

	// maxPromptRunes keeps very long queries inside small context windows.
	maxPromptRunes = 12000
)

const textOriginSystemPrompt = `You are a forensic text analyst. Decide whether the user's text was written by a human or generated by an AI language model.
Respond with a single JSON object and nothing else:
{"label": "human-written" | "ai-generated", "confidence": <number between 0 and 1>, "reasons": [<short strings>]}
confidence is your probability that the chosen label is correct.`

// NewOpenAIClient builds a go-openai client honouring a custom base URL,
// which allows any OpenAI-compatible server.
func NewOpenAIClient(cfg config.OpenAIConfig) (*openai.Client, error) {
	if cfg.APIKey == "" {
		return nil, ErrNotConfigured
	}
	oc := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		oc.BaseURL = strings.TrimRight(cfg.BaseURL, "/")
	}
	return openai.NewClientWithConfig(oc), nil
}

// OpenAITextModel classifies text origin through a chat completion.
type OpenAITextModel struct {
	client  *openai.Client
	model   string
	breaker *breaker
	limiter *limiter
}

// NewOpenAITextModel creates the chat-completion text backend for the named
// detector.
func NewOpenAITextModel(name string, cfg config.OpenAIConfig) (*OpenAITextModel, error) {
	client, err := NewOpenAIClient(cfg)
	if err != nil {
		return nil, err
	}
	model := cfg.Model
	if model == "" {
		model = defaultChatModel
	}
	return &OpenAITextModel{
		client:  client,
		model:   model,
		breaker: newBreaker(name),
		limiter: newLimiter(name, cfg.RateLimit),
	}, nil
}

// State returns the circuit breaker state.
func (m *OpenAITextModel) State() string { return m.breaker.State() }

type textVerdict struct {
	Label      string   `json:"label"`
	Confidence float64  `json:"confidence"`
	Reasons    []string `json:"reasons"`
}

// PredictText asks the model for a {label, confidence} verdict.
func (m *OpenAITextModel) PredictText(ctx context.Context, text string) (*Prediction, error) {
	if r := []rune(text); len(r) > maxPromptRunes {
		text = string(r[:maxPromptRunes])
	}

	req := openai.ChatCompletionRequest{
		Model: m.model,
		ResponseFormat: &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONObject,
		},
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: textOriginSystemPrompt},
			{Role: openai.ChatMessageRoleUser, Content: text},
		},
	}
	// Reasoning models (o1/o3/o4/gpt-5*) reject MaxTokens.
	if isReasoningModel(m.model) {
		req.MaxCompletionTokens = maxTokens
	} else {
		req.MaxTokens = maxTokens
	}
	if err := m.limiter.wait(ctx); err != nil {
		return nil, err
	}

	return m.breaker.execute(func() (*Prediction, error) {
		resp, err := m.client.CreateChatCompletion(ctx, req)
		if err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return nil, ctxErr
			}
			var apiErr *openai.APIError
			if errors.As(err, &apiErr) {
				return nil, fmt.Errorf("%w: chat completion returned status %d", ErrUnavailable, apiErr.HTTPStatusCode)
			}
			return nil, fmt.Errorf("%w: chat completion: %v", ErrUnavailable, err)
		}
		if len(resp.Choices) == 0 {
			return nil, fmt.Errorf("%w: no choices", ErrMalformedResponse)
		}
		return parseVerdict(resp.Choices[0].Message.Content, m.model)
	})
}

func parseVerdict(content, model string) (*Prediction, error) {
	var v textVerdict
	if err := json.Unmarshal([]byte(strings.TrimSpace(content)), &v); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedResponse, err)
	}

	p := &Prediction{Label: v.Label, Confidence: v.Confidence, Model: model}
	for _, reason := range v.Reasons {
		if reason = strings.TrimSpace(reason); reason != "" {
			p.Findings = append(p.Findings, Finding{Label: reason, Severity: "info"})
		}
	}
	if err := p.Validate(); err != nil {
		return nil, err
	}
	return p, nil
}

func isReasoningModel(model string) bool {
	for _, prefix := range []string{"o1", "o3", "o4", "gpt-5"} {
		if strings.HasPrefix(model, prefix) {
			return true
		}
	}
	return false
}

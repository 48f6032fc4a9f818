// Jarvis - AI E-commerce Data Analysis System
// Copyright 2026 gongdinghuan
// SPDX-License-Identifier: MIT
// https://github.com/gongdinghuan/AI-E-commerce-Data-Analysis-System

package agent

import (
	"context"
	"errors"
	"fmt"
	"time"

	openai "github.com/sashabaranov/go-openai"

	"github.com/gongdinghuan/AI-E-commerce-Data-Analysis-System/internal/config"
)

// ErrNoProvider indicates no language model is configured; callers
// fall back to rule-based behavior.
var ErrNoProvider = errors.New("no llm provider configured")

// Provider turns a prompt into a completion.
type Provider interface {
	// Complete returns the model's response for prompt.
	Complete(ctx context.Context, prompt string) (string, error)
	// Name identifies the provider for logging.
	Name() string
}

// openAIProvider speaks the OpenAI chat-completions protocol. DeepSeek
// and Ollama expose the same protocol behind their own base URLs, so a
// single client type covers all three providers.
type openAIProvider struct {
	client  *openai.Client
	model   string
	name    string
	timeout time.Duration
}

// NewProvider builds a Provider from the LLM configuration. Returns
// ErrNoProvider when the provider is "none" or the active provider is
// missing its API key.
func NewProvider(cfg *config.LLMConfig) (Provider, error) {
	active, ok := cfg.Active()
	if !ok {
		return nil, ErrNoProvider
	}

	clientCfg := openai.DefaultConfig(active.APIKey)
	if active.BaseURL != "" {
		clientCfg.BaseURL = active.BaseURL
	}

	return &openAIProvider{
		client:  openai.NewClientWithConfig(clientCfg),
		model:   active.Model,
		name:    cfg.Provider,
		timeout: cfg.Timeout,
	}, nil
}

func (p *openAIProvider) Name() string { return p.name }

func (p *openAIProvider) Complete(ctx context.Context, prompt string) (string, error) {
	if p.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, p.timeout)
		defer cancel()
	}

	resp, err := p.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: p.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleUser, Content: prompt},
		},
	})
	if err != nil {
		return "", fmt.Errorf("%s completion failed: %w", p.name, err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("%s returned no choices", p.name)
	}
	return resp.Choices[0].Message.Content, nil
}

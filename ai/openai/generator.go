// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package openai

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/poiesic/tutorit/ai"
	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/openai"
)

// Generator implements ai.Generator using OpenAI-compatible chat APIs.
type Generator struct {
	client llms.Model
	logger *slog.Logger
}

// newGenerator is an internal constructor that returns the concrete type.
// Used by Provider to manage the instance.
func newGenerator(config *ai.Config) (*Generator, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	// Create OpenAI client configured for chat completion
	// Use "none" as token for local OpenAI-compatible services that don't require authentication
	client, err := openai.New(
		openai.WithBaseURL(config.ChatHost),
		openai.WithToken("none"),
		openai.WithModel(config.ChatModel),
	)
	if err != nil {
		return nil, err
	}

	return &Generator{
		client: client,
		logger: slog.Default().With("component", "openai-generator"),
	}, nil
}

// NewGenerator creates a new generator using the provided configuration.
//
// Returns ai.Generator interface to enforce abstraction.
func NewGenerator(config *ai.Config) (ai.Generator, error) {
	return newGenerator(config)
}

// ChatCompletion sends the ordered messages to the model and returns the
// generated content of the first choice.
func (g *Generator) ChatCompletion(ctx context.Context, messages []ai.Message, opts ...ai.CallOption) (string, error) {
	options := ai.DefaultCallOptions()
	for _, opt := range opts {
		opt(&options)
	}

	content := make([]llms.MessageContent, 0, len(messages))
	for _, msg := range messages {
		role := llms.ChatMessageTypeHuman
		if msg.Role == ai.RoleSystem {
			role = llms.ChatMessageTypeSystem
		}
		content = append(content, llms.MessageContent{
			Role:  role,
			Parts: []llms.ContentPart{llms.TextPart(msg.Content)},
		})
	}

	callOpts := make([]llms.CallOption, 0, 2)
	if options.Temperature >= 0 {
		callOpts = append(callOpts, llms.WithTemperature(options.Temperature))
	}
	if options.MaxTokens > 0 {
		callOpts = append(callOpts, llms.WithMaxTokens(options.MaxTokens))
	}

	g.logger.Debug("requesting chat completion", "messages", len(messages))

	response, err := g.client.GenerateContent(ctx, content, callOpts...)
	if err != nil {
		g.logger.Error("chat completion failed", "err", err)
		return "", err
	}

	if len(response.Choices) < 1 {
		g.logger.Warn("no choices returned from model")
		return "", fmt.Errorf("model returned no choices")
	}

	return response.Choices[0].Content, nil
}

package llmservice

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog/log"
	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/openai"

	"docqa/internal/config"
)

var ErrEmptyResponse = errors.New("llm returned no choices")

// Generator is the part of a langchaingo model the answering code relies on.
type Generator interface {
	GenerateContent(ctx context.Context, messages []llms.MessageContent, options ...llms.CallOption) (*llms.ContentResponse, error)
}

// NewAzureChatModel creates a chat client for an Azure OpenAI deployment.
func NewAzureChatModel(llmConfig *config.LLMConfig) (*openai.LLM, error) {
	log.Debug().Interface("llmConfig", llmConfig).Msg("Creating chat model")
	llm, err := openai.New(
		openai.WithAPIType(openai.APITypeAzure),
		openai.WithBaseURL(llmConfig.BaseURL),
		openai.WithAPIVersion(llmConfig.APIVersion),
		openai.WithToken(llmConfig.Key),
		openai.WithModel(llmConfig.Model),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize chat client: %w", err)
	}
	return llm, nil
}

// call llm
func GenerateText(ctx context.Context, gen Generator, messages []llms.MessageContent, options ...llms.CallOption) (string, error) {
	res, err := gen.GenerateContent(ctx, messages, options...)
	if err != nil {
		return "", err
	}
	if res == nil || len(res.Choices) == 0 || res.Choices[0] == nil {
		return "", ErrEmptyResponse
	}
	return res.Choices[0].Content, nil
}

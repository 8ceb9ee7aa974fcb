package rag

import (
	"context"
	"fmt"
	"strings"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/prompts"
	"github.com/tmc/langchaingo/schema"

	"docqa/internal/llmservice"
	"docqa/internal/models"
	"docqa/internal/tokens"
)

// RAG answers questions from the chunks a retriever returns.
type RAG struct {
	retriever schema.Retriever
	llm       llmservice.Generator
	condense  prompts.PromptTemplate
	answer    prompts.PromptTemplate
}

func NewRAG(retriever schema.Retriever, llm llmservice.Generator) *RAG {
	return &RAG{
		retriever: retriever,
		llm:       llm,
		condense:  prompts.NewPromptTemplate(models.CondenseQuestionTemplate, []string{"chat_history", "question"}),
		answer:    prompts.NewPromptTemplate(models.AnswerSystemTemplate, []string{"context"}),
	}
}

// Ask answers a question on its own, without conversation history. It costs
// one model call per question.
func (r *RAG) Ask(ctx context.Context, question string) (*models.Answer, error) {
	return r.respond(ctx, question, question, nil)
}

// AskWithContext rewrites the question into a standalone one using history,
// retrieves with the rewritten question and answers the original question
// with history and retrieved chunks in the prompt.
func (r *RAG) AskWithContext(ctx context.Context, question string, history []models.Turn) (*models.Answer, error) {
	standalone, err := r.Condense(ctx, question, history)
	if err != nil {
		return nil, err
	}
	return r.respond(ctx, question, standalone, history)
}

// Condense rewrites question into a standalone question. With no history
// there is nothing to resolve, so the question is returned as is.
func (r *RAG) Condense(ctx context.Context, question string, history []models.Turn) (string, error) {
	if len(history) == 0 {
		return question, nil
	}
	prompt, err := r.condense.Format(map[string]any{
		"chat_history": FormatHistory(history),
		"question":     question,
	})
	if err != nil {
		return "", fmt.Errorf("failed to format condense prompt: %w", err)
	}

	messages := []llms.MessageContent{llms.TextParts(llms.ChatMessageTypeHuman, prompt)}
	logPromptSize("condense", messages)
	standalone, err := llmservice.GenerateText(ctx, r.llm, messages)
	if err != nil {
		return "", fmt.Errorf("failed to condense question: %w", err)
	}
	standalone = strings.TrimSpace(standalone)
	log.Debug().Str("question", question).Str("standalone", standalone).Msg("Condensed question")
	return standalone, nil
}

func (r *RAG) respond(ctx context.Context, question, query string, history []models.Turn) (*models.Answer, error) {
	docs, err := r.retriever.GetRelevantDocuments(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to retrieve documents: %w", err)
	}

	messages, err := r.answerMessages(docs, history, question)
	if err != nil {
		return nil, err
	}
	logPromptSize("answer", messages)
	content, err := llmservice.GenerateText(ctx, r.llm, messages)
	if err != nil {
		return nil, fmt.Errorf("failed to generate answer: %w", err)
	}

	return &models.Answer{
		Question:           question,
		StandaloneQuestion: query,
		Content:            content,
		Sources:            docs,
	}, nil
}

func (r *RAG) answerMessages(docs []schema.Document, history []models.Turn, question string) ([]llms.MessageContent, error) {
	var sources strings.Builder
	for i, doc := range docs {
		if i > 0 {
			sources.WriteString("\n\n")
		}
		sources.WriteString(doc.PageContent)
	}
	system, err := r.answer.Format(map[string]any{"context": sources.String()})
	if err != nil {
		return nil, fmt.Errorf("failed to format answer prompt: %w", err)
	}

	messages := make([]llms.MessageContent, 0, 2*len(history)+2)
	messages = append(messages, llms.TextParts(llms.ChatMessageTypeSystem, system))
	for _, turn := range history {
		messages = append(messages,
			llms.TextParts(llms.ChatMessageTypeHuman, turn.Question),
			llms.TextParts(llms.ChatMessageTypeAI, turn.Answer),
		)
	}
	messages = append(messages, llms.TextParts(llms.ChatMessageTypeHuman, question))
	return messages, nil
}

// FormatHistory renders turns as alternating Human/Assistant lines.
func FormatHistory(history []models.Turn) string {
	lines := make([]string, 0, 2*len(history))
	for _, turn := range history {
		lines = append(lines, "Human: "+turn.Question, "Assistant: "+turn.Answer)
	}
	return strings.Join(lines, "\n")
}

func logPromptSize(stage string, messages []llms.MessageContent) {
	if zerolog.GlobalLevel() > zerolog.DebugLevel {
		return
	}
	estimator, err := tokens.GetEstimator()
	if err != nil {
		log.Debug().Err(err).Msg("Token estimator unavailable")
		return
	}
	var texts []string
	for _, m := range messages {
		for _, part := range m.Parts {
			if tc, ok := part.(llms.TextContent); ok {
				texts = append(texts, tc.Text)
			}
		}
	}
	log.Debug().Str("stage", stage).Int("messages", len(messages)).Int("prompt_tokens", estimator.CountTokensBatch(texts)).Msg("Prompt size")
}

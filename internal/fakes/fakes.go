// Package fakes provides in-process stand-ins for the remote embedding and
// chat providers, for use in tests.
package fakes

import (
	"context"
	"fmt"
	"strings"

	"github.com/tmc/langchaingo/llms"
)

// Embedder returns fixed vectors for known texts and a letter-frequency
// vector for anything else.
type Embedder struct {
	Vectors map[string][]float32
	Err     error
	Calls   [][]string
}

func (e *Embedder) EmbedDocuments(_ context.Context, texts []string) ([][]float32, error) {
	e.Calls = append(e.Calls, texts)
	if e.Err != nil {
		return nil, e.Err
	}
	out := make([][]float32, len(texts))
	for i, text := range texts {
		out[i] = e.vector(text)
	}
	return out, nil
}

func (e *Embedder) EmbedQuery(ctx context.Context, text string) ([]float32, error) {
	vectors, err := e.EmbedDocuments(ctx, []string{text})
	if err != nil {
		return nil, err
	}
	return vectors[0], nil
}

func (e *Embedder) vector(text string) []float32 {
	if v, ok := e.Vectors[text]; ok {
		return v
	}
	return LetterVector(text)
}

// LetterVector counts the letters a-z in text. Every component starts at a
// small positive value so the vector is never zero.
func LetterVector(text string) []float32 {
	v := make([]float32, 26)
	for i := range v {
		v[i] = 0.01
	}
	for _, r := range strings.ToLower(text) {
		if r >= 'a' && r <= 'z' {
			v[r-'a']++
		}
	}
	return v
}

// Generator replays Responses in order, then answers "response N".
type Generator struct {
	Responses []string
	Err       error
	Calls     [][]llms.MessageContent
}

func (g *Generator) GenerateContent(_ context.Context, messages []llms.MessageContent, _ ...llms.CallOption) (*llms.ContentResponse, error) {
	g.Calls = append(g.Calls, messages)
	if g.Err != nil {
		return nil, g.Err
	}
	n := len(g.Calls)
	text := fmt.Sprintf("response %d", n)
	if n <= len(g.Responses) {
		text = g.Responses[n-1]
	}
	return &llms.ContentResponse{Choices: []*llms.ContentChoice{{Content: text}}}, nil
}

// Text flattens the text parts of messages, one line per message in the
// form "role: text".
func Text(messages []llms.MessageContent) string {
	var b strings.Builder
	for _, m := range messages {
		b.WriteString(string(m.Role))
		b.WriteString(": ")
		for _, part := range m.Parts {
			if tc, ok := part.(llms.TextContent); ok {
				b.WriteString(tc.Text)
			}
		}
		b.WriteString("\n")
	}
	return b.String()
}

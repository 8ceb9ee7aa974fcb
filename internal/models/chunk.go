package models

import "github.com/tmc/langchaingo/schema"

// Chunk represents a parsed chunk with metadata
type Chunk struct {
	Source     string `json:"source"`
	Content    string `json:"content"`
	PageNumber int    `json:"page"`
	ChunkID    int    `json:"chunk_id"`
}

type ChunkEmbedding struct {
	Chunk
	Embedding []float32 `json:"-"`
}

// Turn is one completed question/answer exchange.
type Turn struct {
	Question string
	Answer   string
}

type Answer struct {
	Question           string
	StandaloneQuestion string
	Content            string
	Sources            []schema.Document
}

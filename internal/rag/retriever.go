package rag

import (
	"context"
	"fmt"
	"strconv"

	"github.com/philippgille/chromem-go"
	"github.com/tmc/langchaingo/embeddings"
	"github.com/tmc/langchaingo/schema"

	"docqa/internal/chromemdb"
)

const DefaultTopK = 2

// Searcher is a similarity index queried by embedding.
type Searcher interface {
	Search(ctx context.Context, embedding []float32, k int) ([]chromem.Result, error)
}

// Retriever embeds a query and returns the k most similar chunks.
type Retriever struct {
	index    Searcher
	embedder embeddings.Embedder
	k        int
}

var _ schema.Retriever = (*Retriever)(nil)

func NewRetriever(index Searcher, embedder embeddings.Embedder, k int) *Retriever {
	if k <= 0 {
		k = DefaultTopK
	}
	return &Retriever{index: index, embedder: embedder, k: k}
}

func (r *Retriever) GetRelevantDocuments(ctx context.Context, query string) ([]schema.Document, error) {
	vector, err := r.embedder.EmbedQuery(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to embed query: %w", err)
	}
	results, err := r.index.Search(ctx, vector, r.k)
	if err != nil {
		return nil, err
	}

	docs := make([]schema.Document, len(results))
	for i, res := range results {
		metadata := map[string]any{
			chromemdb.MetaSource: res.Metadata[chromemdb.MetaSource],
		}
		if page, err := strconv.Atoi(res.Metadata[chromemdb.MetaPage]); err == nil {
			metadata[chromemdb.MetaPage] = page
		}
		docs[i] = schema.Document{
			PageContent: res.Content,
			Metadata:    metadata,
			Score:       res.Similarity,
		}
	}
	return docs, nil
}

package chat

import (
	"bufio"
	"context"
	"fmt"
	"io"

	"github.com/rs/zerolog/log"
	"github.com/tmc/langchaingo/embeddings"

	"docqa/internal/chromemdb"
	"docqa/internal/config"
	"docqa/internal/docname"
	"docqa/internal/helper"
	"docqa/internal/llmservice"
	"docqa/internal/models"
	"docqa/internal/rag"
)

type Options struct {
	Config   *config.Config
	Embedder embeddings.Embedder
	LLM      llmservice.Generator
	// FileName skips the file name prompt when set.
	FileName string
}

// Serve asks for a document, loads its index and runs a session over it.
// Every failure, whether the index is missing, corrupt, or a remote call
// fails mid-session, is reported with the same SessionFailureMessage. The
// error is returned for logging only.
func Serve(ctx context.Context, opts Options, in io.Reader, out io.Writer) error {
	err := serve(ctx, opts, bufio.NewReader(in), out)
	if err != nil {
		fmt.Fprintln(out, models.SessionFailureMessage)
	}
	return err
}

func serve(ctx context.Context, opts Options, reader *bufio.Reader, out io.Writer) error {
	cfg := opts.Config
	policy, err := ParseHistoryPolicy(cfg.RAG.History)
	if err != nil {
		return err
	}
	mode, err := ParseMode(cfg.RAG.Mode)
	if err != nil {
		return err
	}

	name := opts.FileName
	if name == "" {
		fmt.Fprint(out, models.ChatFileNamePrompt)
		if name, err = helper.ReadLine(reader); err != nil {
			return fmt.Errorf("failed to read file name: %w", err)
		}
	}
	name = docname.TrimLeadingSeparator(name)

	indexPath := docname.IndexPath(cfg.IndexDir, name)
	store, _, err := chromemdb.LoadVectorDB(indexPath, cfg.RAG.EncryptionKey)
	if err != nil {
		return err
	}
	log.Info().Str("document", name).Str("index", indexPath).Int("chunks", store.Count()).Str("mode", string(mode)).Str("history", string(policy)).Msg("Chat session ready")

	retriever := rag.NewRetriever(store, opts.Embedder, cfg.RAG.TopK)
	session := NewSession(rag.NewRAG(retriever, opts.LLM), NewHistory(policy), mode, reader, out)
	return session.Run(ctx)
}

// Package indexer turns one PDF into a persisted similarity index.
package indexer

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/tmc/langchaingo/embeddings"

	"docqa/internal/chromemdb"
	"docqa/internal/config"
	"docqa/internal/docname"
	"docqa/internal/embedding"
	"docqa/internal/helper"
	"docqa/internal/models"
	"docqa/internal/parser"
)

var (
	// ErrDocumentNotFound covers documents that are missing or cannot be
	// parsed. It is the only failure reported to the user as a message.
	ErrDocumentNotFound = errors.New("document not found")
	ErrNoText           = errors.New("document has no extractable text")
)

// Loader extracts chunks from the document at filePath.
type Loader interface {
	LoadPDF(filePath, source string) ([]models.Chunk, error)
}

type Indexer struct {
	cfg      *config.Config
	loader   Loader
	embedder embeddings.Embedder
}

type Result struct {
	IndexPath string
	Chunks    int
}

func New(cfg *config.Config, loader Loader, embedder embeddings.Embedder) *Indexer {
	return &Indexer{cfg: cfg, loader: loader, embedder: embedder}
}

// Parse loads and splits the named document without embedding it.
func (ix *Indexer) Parse(fileName string) ([]models.Chunk, error) {
	return ix.parse(docname.TrimLeadingSeparator(fileName))
}

// parse expects a name that is already normalized.
func (ix *Indexer) parse(name string) ([]models.Chunk, error) {
	chunks, err := ix.loader.LoadPDF(docname.DocumentPath(ix.cfg.DocsDir, name), name)
	if err != nil {
		if errors.Is(err, parser.ErrUnreadableDocument) {
			return nil, fmt.Errorf("%w: %v", ErrDocumentNotFound, err)
		}
		return nil, err
	}
	return chunks, nil
}

// Index loads, splits and embeds the named document and saves the index,
// replacing any previous index of the same name. Nothing is written unless
// every step succeeds.
func (ix *Indexer) Index(ctx context.Context, fileName string) (*Result, error) {
	name := docname.TrimLeadingSeparator(fileName)
	chunks, err := ix.parse(name)
	if err != nil {
		return nil, err
	}
	if len(chunks) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrNoText, name)
	}

	chunkEmbeddings, err := embedding.GenerateEmbedding(ctx, ix.embedder, chunks)
	if err != nil {
		return nil, err
	}

	store, err := chromemdb.NewVectorDBManager(ix.cfg.RAG.EncryptionKey)
	if err != nil {
		return nil, err
	}
	if err := store.CreateDocs(ctx, chromemdb.ChunkDocuments(chunkEmbeddings)); err != nil {
		return nil, err
	}

	indexPath := docname.IndexPath(ix.cfg.IndexDir, name)
	manifest := chromemdb.Manifest{
		Source:         name,
		EmbeddingModel: ix.cfg.EmbedLLM.Model,
		APIVersion:     ix.cfg.EmbedLLM.APIVersion,
		Chunks:         len(chunkEmbeddings),
		CreatedAt:      time.Now().UTC(),
	}
	if err := store.Save(indexPath, manifest); err != nil {
		return nil, err
	}

	log.Info().Str("document", name).Str("index", indexPath).Int("chunks", len(chunkEmbeddings)).Msg("Indexed document")
	return &Result{IndexPath: indexPath, Chunks: len(chunkEmbeddings)}, nil
}

// Serve runs one interactive indexing: it asks for the file name unless
// fileName is set, indexes it and waits for Enter. A missing or unreadable
// document is reported with a message; any other failure is returned
// immediately.
func Serve(ctx context.Context, ix *Indexer, fileName string, in io.Reader, out io.Writer) error {
	reader := bufio.NewReader(in)
	if fileName == "" {
		fmt.Fprint(out, models.IndexerFileNamePrompt)
		name, err := helper.ReadLine(reader)
		if err != nil {
			return fmt.Errorf("failed to read file name: %w", err)
		}
		fileName = name
	}

	_, err := ix.Index(ctx, fileName)
	switch {
	case errors.Is(err, ErrDocumentNotFound):
		log.Debug().Err(err).Msg("Document not found")
		fmt.Fprintln(out, models.DocumentNotFoundMessage)
	case err != nil:
		return err
	default:
		fmt.Fprintln(out, models.IndexCreatedMessage)
	}

	fmt.Fprint(out, models.PressEnterMessage)
	_, _ = helper.ReadLine(reader)
	return nil
}

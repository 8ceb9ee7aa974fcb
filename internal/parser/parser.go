package parser

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/ledongthuc/pdf"
	"github.com/rs/zerolog/log"
	"github.com/tmc/langchaingo/textsplitter"

	"docqa/internal/config"
	"docqa/internal/models"
)

// ErrUnreadableDocument is returned when a document is missing or cannot be
// parsed as a PDF.
var ErrUnreadableDocument = errors.New("document cannot be read")

type ParserConfig struct {
	ChunkSize    int
	ChunkOverlap int
}

// NewParserConfig takes the splitter settings (in characters) from cfg, using
// the config defaults when cfg is nil.
func NewParserConfig(cfg *config.Config) *ParserConfig {
	if cfg == nil {
		cfg = config.Default()
	}
	size, overlap := cfg.RAG.SplitterSettings()
	return &ParserConfig{ChunkSize: size, ChunkOverlap: overlap}
}

// LoadPDF extracts the text of every page of the PDF at filePath and splits
// each page into chunks. source is recorded on every chunk.
func (p *ParserConfig) LoadPDF(filePath, source string) (chunks []models.Chunk, err error) {
	// ledongthuc/pdf panics on some malformed files.
	defer func() {
		if r := recover(); r != nil {
			chunks = nil
			err = fmt.Errorf("%w: %s: %v", ErrUnreadableDocument, filePath, r)
		}
	}()

	f, err := os.Open(filePath)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnreadableDocument, err)
	}
	defer f.Close()

	// Get file size for reader initialization
	stat, err := f.Stat()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnreadableDocument, err)
	}
	if stat.IsDir() {
		return nil, fmt.Errorf("%w: %s is a directory", ErrUnreadableDocument, filePath)
	}

	reader, err := pdf.NewReader(f, stat.Size())
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrUnreadableDocument, filePath, err)
	}

	numPages := reader.NumPage()
	for i := 1; i <= numPages; i++ {
		page := reader.Page(i)
		if page.V.IsNull() {
			continue
		}
		pageText, err := page.GetPlainText(nil)
		if err != nil {
			return nil, fmt.Errorf("%w: page %d: %v", ErrUnreadableDocument, i, err)
		}
		pageChunks, err := p.getChunks(pageText, source, i)
		if err != nil {
			return nil, err
		}
		chunks = append(chunks, pageChunks...)
	}

	log.Debug().Str("file", filePath).Int("pages", numPages).Int("chunks", len(chunks)).Msg("Parsed PDF")
	return chunks, nil
}

// get chunks from page content and page number
func (p *ParserConfig) getChunks(content, source string, pageNumber int) ([]models.Chunk, error) {
	splitter := textsplitter.NewRecursiveCharacter(
		textsplitter.WithChunkSize(p.ChunkSize),
		textsplitter.WithChunkOverlap(p.ChunkOverlap),
	)
	parts, err := splitter.SplitText(content)
	if err != nil {
		return nil, fmt.Errorf("failed to split page %d: %w", pageNumber, err)
	}

	var chunks []models.Chunk
	for _, part := range parts {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		chunks = append(chunks, models.Chunk{
			Source:     source,
			Content:    part,
			PageNumber: pageNumber,
			ChunkID:    len(chunks) + 1,
		})
	}
	return chunks, nil
}

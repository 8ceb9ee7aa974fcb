package chromemdb

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"runtime"
	"strconv"
	"time"

	"github.com/philippgille/chromem-go"
	"github.com/rs/zerolog/log"
	"gopkg.in/yaml.v3"

	"docqa/internal/helper"
	"docqa/internal/models"
)

// ErrIndexNotFound is returned when no index exists at the requested path.
var ErrIndexNotFound = errors.New("index not found")

const (
	CollectionName   = "document"
	indexFileName    = "index.gob"
	manifestFileName = "manifest.yaml"
	compress         = false
)

// rename is swapped out in tests.
var rename = os.Rename

// Metadata keys stored with every chunk.
const (
	MetaSource = "source"
	MetaPage   = "page"
	MetaChunk  = "chunk"
)

// Manifest describes how an index was built. It is informational; loading
// never rejects an index because of it.
type Manifest struct {
	Source         string    `yaml:"source"`
	EmbeddingModel string    `yaml:"embedding_model"`
	APIVersion     string    `yaml:"api_version"`
	Chunks         int       `yaml:"chunks"`
	CreatedAt      time.Time `yaml:"created_at"`
}

// VectorDBManager encapsulates the chromem-go database operations
type VectorDBManager struct {
	db            *chromem.DB
	collection    *chromem.Collection
	encryptionKey string
}

// NewVectorDBManager creates an empty in-memory index. Documents and queries
// always carry their own embeddings, so the collection has no embedding func.
func NewVectorDBManager(encryptionKey string) (*VectorDBManager, error) {
	db := chromem.NewDB()
	c, err := db.GetOrCreateCollection(CollectionName, nil, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create/get collection: %w", err)
	}
	return &VectorDBManager{db: db, collection: c, encryptionKey: encryptionKey}, nil
}

// LoadVectorDB imports the index stored in dir.
func LoadVectorDB(dir, encryptionKey string) (*VectorDBManager, *Manifest, error) {
	info, err := os.Stat(dir)
	if errors.Is(err, fs.ErrNotExist) || (err == nil && !info.IsDir()) {
		return nil, nil, fmt.Errorf("%w: %s", ErrIndexNotFound, dir)
	}
	if err != nil {
		return nil, nil, err
	}
	indexFile := filepath.Join(dir, indexFileName)
	if _, err := os.Stat(indexFile); errors.Is(err, fs.ErrNotExist) {
		return nil, nil, fmt.Errorf("%w: %s", ErrIndexNotFound, indexFile)
	}

	db := chromem.NewDB()
	if err := db.ImportFromFile(indexFile, encryptionKey); err != nil {
		return nil, nil, fmt.Errorf("failed to import index: %w", err)
	}
	c := db.GetCollection(CollectionName, nil)
	if c == nil {
		return nil, nil, fmt.Errorf("index %s has no %q collection", dir, CollectionName)
	}

	manifest, err := readManifest(filepath.Join(dir, manifestFileName))
	if err != nil {
		log.Warn().Err(err).Str("dir", dir).Msg("Ignoring unreadable index manifest")
	}
	log.Debug().Str("dir", dir).Int("documents", c.Count()).Interface("manifest", manifest).Msg("Loaded index")

	return &VectorDBManager{db: db, collection: c, encryptionKey: encryptionKey}, manifest, nil
}

// ChunkDocuments converts embedded chunks into chromem documents.
func ChunkDocuments(chunks []models.ChunkEmbedding) []chromem.Document {
	docs := make([]chromem.Document, len(chunks))
	for i, ce := range chunks {
		docs[i] = chromem.Document{
			ID:      fmt.Sprintf("%s-%d-%d", ce.Source, ce.PageNumber, ce.ChunkID),
			Content: ce.Content,
			Metadata: map[string]string{
				MetaSource: ce.Source,
				MetaPage:   strconv.Itoa(ce.PageNumber),
				MetaChunk:  strconv.Itoa(ce.ChunkID),
			},
			Embedding: ce.Embedding,
		}
	}
	return docs
}

// add multiple documents
func (m *VectorDBManager) CreateDocs(ctx context.Context, documents []chromem.Document) error {
	if len(documents) == 0 {
		return nil
	}
	if err := m.collection.AddDocuments(ctx, documents, runtime.NumCPU()); err != nil {
		return fmt.Errorf("failed to add documents: %w", err)
	}
	return nil
}

func (m *VectorDBManager) Count() int {
	return m.collection.Count()
}

// Search returns the k documents most similar to embedding, best first. k is
// capped at the number of stored documents.
func (m *VectorDBManager) Search(ctx context.Context, embedding []float32, k int) ([]chromem.Result, error) {
	if len(embedding) == 0 {
		return nil, fmt.Errorf("query embedding must be provided")
	}
	k = min(k, m.collection.Count())
	if k <= 0 {
		return nil, nil
	}

	results, err := m.collection.QueryWithOptions(ctx, chromem.QueryOptions{
		QueryEmbedding: embedding,
		NResults:       k,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to query by similarity: %w", err)
	}
	return results, nil
}

// Save writes the index to dir, replacing whatever was there. The export goes
// to a sibling directory first and the previous index is moved aside until
// the new one is in place, so a failed save leaves dir untouched.
func (m *VectorDBManager) Save(dir string, manifest Manifest) error {
	if err := helper.CreateFolder(filepath.Dir(dir)); err != nil {
		return err
	}
	id, err := helper.GenerateUUID()
	if err != nil {
		return err
	}
	tmp := dir + ".tmp-" + id
	if err := helper.CreateFolder(tmp); err != nil {
		return err
	}
	defer os.RemoveAll(tmp)

	if err := m.db.ExportToFile(filepath.Join(tmp, indexFileName), compress, m.encryptionKey, m.collection.Name); err != nil {
		return fmt.Errorf("failed to export index: %w", err)
	}
	if err := writeManifest(filepath.Join(tmp, manifestFileName), manifest); err != nil {
		return err
	}

	backup := ""
	if _, err := os.Stat(dir); err == nil {
		backup = dir + ".old-" + id
		if err := rename(dir, backup); err != nil {
			return fmt.Errorf("failed to move previous index aside: %w", err)
		}
	} else if !errors.Is(err, fs.ErrNotExist) {
		return err
	}
	if err := rename(tmp, dir); err != nil {
		if backup != "" {
			if restoreErr := rename(backup, dir); restoreErr != nil {
				log.Error().Err(restoreErr).Str("backup", backup).Msg("Failed to restore previous index")
			}
		}
		return fmt.Errorf("failed to move index into place: %w", err)
	}
	if backup != "" {
		if err := os.RemoveAll(backup); err != nil {
			log.Warn().Err(err).Str("backup", backup).Msg("Failed to remove previous index")
		}
	}
	log.Debug().Str("dir", dir).Int("documents", m.Count()).Msg("Saved index")
	return nil
}

func writeManifest(path string, manifest Manifest) error {
	data, err := yaml.Marshal(manifest)
	if err != nil {
		return fmt.Errorf("failed to encode manifest: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write manifest: %w", err)
	}
	return nil
}

func readManifest(path string) (*Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var manifest Manifest
	if err := yaml.Unmarshal(data, &manifest); err != nil {
		return nil, err
	}
	return &manifest, nil
}

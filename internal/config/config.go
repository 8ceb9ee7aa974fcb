package config

import (
	"errors"
	"os"

	"gopkg.in/yaml.v3"
)

// Environment variables holding the Azure OpenAI credentials and deployments.
const (
	EnvAPIKey              = "AZURE_OPENAI_KEY"
	EnvAPIVersion          = "API_VERSION"
	EnvEndpoint            = "AZURE_OPENAI_ENDPOINT"
	EnvChatDeployment      = "AZURE_GPTTURBO_DEPLOYMENT_NAME"
	EnvEmbeddingDeployment = "AZURE_OPENAI_ADA_EMBEDDING_DEPLOYMENT_NAME"
)

const (
	DefaultConfigPath = "./configs/config.yaml"

	defaultDocsDir        = "./pdf_docs"
	defaultIndexDir       = "./faiss_vector_dbs"
	defaultChunkSize      = 4000
	defaultChunkOverlap   = 200
	defaultTopK           = 2
	defaultEmbedBatchSize = 1
	defaultLogLevel       = "info"
)

// History policies for the chat session.
const (
	HistoryLastTurn = "last-turn"
	HistoryAllTurns = "all-turns"
)

// Answering modes for the chat session.
const (
	ModeConversational = "conversational"
	ModeSingleShot     = "single-shot"
)

// LLMConfig addresses one Azure OpenAI deployment.
type LLMConfig struct {
	BaseURL    string `yaml:"base_url" json:"base_url"`
	Key        string `yaml:"key" json:"-"`
	APIVersion string `yaml:"api_version" json:"api_version"`
	Model      string `yaml:"model" json:"model"`
}

type RAGConfig struct {
	ChunkSize      int    `yaml:"chunk_size" json:"chunk_size"`
	ChunkOverlap   int    `yaml:"chunk_overlap" json:"chunk_overlap"`
	TopK           int    `yaml:"top_k" json:"top_k"`
	EmbedBatchSize int    `yaml:"embed_batch_size" json:"embed_batch_size"`
	History        string `yaml:"history" json:"history"`
	Mode           string `yaml:"mode" json:"mode"`
	EncryptionKey  string `yaml:"encryption_key" json:"-"`
}

// Config is built once at startup and handed to every component that needs it.
type Config struct {
	DocsDir  string    `yaml:"docs_dir" json:"docs_dir"`
	IndexDir string    `yaml:"index_dir" json:"index_dir"`
	LogLevel string    `yaml:"log_level" json:"log_level"`
	ChatLLM  LLMConfig `yaml:"chat_llm" json:"chat_llm"`
	EmbedLLM LLMConfig `yaml:"embed_llm" json:"embed_llm"`
	RAG      RAGConfig `yaml:"rag" json:"rag"`
}

// LoadConfig reads the YAML file at path, falling back to defaults when it
// does not exist, and then applies the Azure settings from the environment.
// Missing credentials are not reported here; the provider rejects them on
// the first remote call.
func LoadConfig(path string) (*Config, error) {
	cfg := Default()
	data, err := os.ReadFile(path)
	switch {
	case errors.Is(err, os.ErrNotExist):
	case err != nil:
		return nil, err
	default:
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, err
		}
	}
	applyDefaults(cfg)
	applyEnv(cfg)
	return cfg, nil
}

func Default() *Config {
	return &Config{
		DocsDir:  defaultDocsDir,
		IndexDir: defaultIndexDir,
		LogLevel: defaultLogLevel,
		RAG: RAGConfig{
			ChunkSize:      defaultChunkSize,
			ChunkOverlap:   defaultChunkOverlap,
			TopK:           defaultTopK,
			EmbedBatchSize: defaultEmbedBatchSize,
			History:        HistoryLastTurn,
			Mode:           ModeConversational,
		},
	}
}

// SplitterSettings returns the chunk size and overlap to split with. A
// non-positive size falls back to the default, and an overlap outside
// [0, size) to min(200, size/2).
func (r RAGConfig) SplitterSettings() (size, overlap int) {
	size, overlap = r.ChunkSize, r.ChunkOverlap
	if size <= 0 {
		size = defaultChunkSize
	}
	if overlap < 0 || overlap >= size {
		overlap = min(defaultChunkOverlap, size/2)
	}
	return size, overlap
}

func applyDefaults(cfg *Config) {
	if cfg.DocsDir == "" {
		cfg.DocsDir = defaultDocsDir
	}
	if cfg.IndexDir == "" {
		cfg.IndexDir = defaultIndexDir
	}
	if cfg.LogLevel == "" {
		cfg.LogLevel = defaultLogLevel
	}
	cfg.RAG.ChunkSize, cfg.RAG.ChunkOverlap = cfg.RAG.SplitterSettings()
	if cfg.RAG.TopK <= 0 {
		cfg.RAG.TopK = defaultTopK
	}
	if cfg.RAG.EmbedBatchSize <= 0 {
		cfg.RAG.EmbedBatchSize = defaultEmbedBatchSize
	}
	if cfg.RAG.History == "" {
		cfg.RAG.History = HistoryLastTurn
	}
	if cfg.RAG.Mode == "" {
		cfg.RAG.Mode = ModeConversational
	}
}

// applyEnv copies the shared Azure settings into both deployments. Only
// variables that are set override values from the file.
func applyEnv(cfg *Config) {
	for _, llm := range []*LLMConfig{&cfg.ChatLLM, &cfg.EmbedLLM} {
		setFromEnv(&llm.Key, EnvAPIKey)
		setFromEnv(&llm.APIVersion, EnvAPIVersion)
		setFromEnv(&llm.BaseURL, EnvEndpoint)
	}
	setFromEnv(&cfg.ChatLLM.Model, EnvChatDeployment)
	setFromEnv(&cfg.EmbedLLM.Model, EnvEmbeddingDeployment)
}

func setFromEnv(dst *string, key string) {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		*dst = v
	}
}

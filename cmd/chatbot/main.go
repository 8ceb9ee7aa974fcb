package main

import (
	"context"
	"flag"
	"os"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"

	"docqa/internal/chat"
	"docqa/internal/config"
	"docqa/internal/embedding"
	"docqa/internal/helper"
	"docqa/internal/llmservice"
)

func main() {
	configPath := flag.String("config", config.DefaultConfigPath, "Path to the YAML config file")
	fileName := flag.String("file", "", "Indexed document to question, relative to the documents directory (prompted when empty)")
	mode := flag.String("mode", "", "Answering mode: conversational or single-shot (overrides config)")
	history := flag.String("history", "", "History policy: last-turn or all-turns (overrides config)")
	flag.Parse()

	_ = godotenv.Load()

	cfg, err := config.LoadConfig(*configPath)
	if err != nil {
		helper.SetupLogger("info")
		log.Fatal().Err(err).Msg("Error loading config")
	}
	helper.SetupLogger(cfg.LogLevel)

	if *mode != "" {
		cfg.RAG.Mode = *mode
	}
	if *history != "" {
		cfg.RAG.History = *history
	}
	if _, err := chat.ParseMode(cfg.RAG.Mode); err != nil {
		log.Fatal().Err(err).Msg("Invalid mode")
	}
	if _, err := chat.ParseHistoryPolicy(cfg.RAG.History); err != nil {
		log.Fatal().Err(err).Msg("Invalid history policy")
	}
	log.Debug().Interface("config", cfg).Msg("Loaded config")

	llm, err := llmservice.NewAzureChatModel(&cfg.ChatLLM)
	if err != nil {
		log.Fatal().Err(err).Msg("Error initializing chat model")
	}
	embedder, err := embedding.NewAzureEmbedder(&cfg.EmbedLLM, cfg.RAG.EmbedBatchSize)
	if err != nil {
		log.Fatal().Err(err).Msg("Error initializing embedder")
	}

	opts := chat.Options{Config: cfg, Embedder: embedder, LLM: llm, FileName: *fileName}
	if err := chat.Serve(context.Background(), opts, os.Stdin, os.Stdout); err != nil {
		log.Debug().Err(err).Msg("Chat session failed")
	}
}

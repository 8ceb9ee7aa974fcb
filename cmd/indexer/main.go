package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"

	"docqa/internal/config"
	"docqa/internal/embedding"
	"docqa/internal/helper"
	"docqa/internal/indexer"
	"docqa/internal/models"
	"docqa/internal/parser"
)

func main() {
	configPath := flag.String("config", config.DefaultConfigPath, "Path to the YAML config file")
	fileName := flag.String("file", "", "Document to index, relative to the documents directory (prompted when empty)")
	dryRun := flag.Bool("dry-run", false, "Parse and print the chunks without embedding or saving")
	flag.Parse()

	_ = godotenv.Load()

	cfg, err := config.LoadConfig(*configPath)
	if err != nil {
		helper.SetupLogger("info")
		log.Fatal().Err(err).Msg("Error loading config")
	}
	helper.SetupLogger(cfg.LogLevel)
	log.Debug().Interface("config", cfg).Msg("Loaded config")

	loader := parser.NewParserConfig(cfg)

	if *dryRun {
		if *fileName == "" {
			log.Fatal().Msg("Please provide a document with the -file flag for a dry run")
		}
		chunks, err := indexer.New(cfg, loader, nil).Parse(*fileName)
		if errors.Is(err, indexer.ErrDocumentNotFound) {
			fmt.Println(models.DocumentNotFoundMessage)
			os.Exit(1)
		}
		if err != nil {
			log.Fatal().Err(err).Msg("Error parsing document")
		}
		helper.PrettyPrint(os.Stdout, chunks)
		return
	}

	embedder, err := embedding.NewAzureEmbedder(&cfg.EmbedLLM, cfg.RAG.EmbedBatchSize)
	if err != nil {
		log.Fatal().Err(err).Msg("Error initializing embedder")
	}

	ix := indexer.New(cfg, loader, embedder)
	if err := indexer.Serve(context.Background(), ix, *fileName, os.Stdin, os.Stdout); err != nil {
		log.Fatal().Err(err).Msg("Error indexing document")
	}
}

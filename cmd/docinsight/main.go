package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"docinsight/internal/config"
	"docinsight/internal/helper"
	"docinsight/internal/parser"
	"docinsight/internal/pipeline"
)

const defaultConfigPath = "./configs/config.yaml"

func main() {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	zerolog.SetGlobalLevel(zerolog.DebugLevel)
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.RFC3339}).With().Caller().Logger()

	_ = godotenv.Load()

	force := flag.Bool("force", false, "Force re-ingestion and re-indexing")
	skipIngest := flag.Bool("skip-ingest", false, "Skip document processing (run QA only)")
	query := flag.String("query", "", "Question to ask")
	filePath := flag.String("file", "", "Path to the document file (overrides config)")
	dryRun := flag.Bool("dry-run", false, "Parse the document and print chunks without indexing")
	flag.Parse()

	cfg, err := loadConfig()
	if err != nil {
		log.Fatal().Err(err).Msg("Error loading config")
	}

	log.Debug().Interface("config", cfg).Msg("Loaded config")

	if *dryRun {
		doc := cfg.Storage.Document
		if *filePath != "" {
			doc = *filePath
		}
		chunks, err := parser.Parse(doc, cfg)
		if err != nil {
			log.Fatal().Err(err).Msg("Error parsing document")
		}
		log.Info().Int("chunks", len(chunks)).Msg("Parsed content")
		helper.PrettyPrint(chunks)
		return
	}

	p := pipeline.New(cfg)
	answer, err := p.Run(context.Background(), pipeline.Options{
		Force:      *force,
		SkipIngest: *skipIngest,
		Query:      *query,
		File:       *filePath,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("Pipeline failed")
	}

	if answer == nil {
		return
	}

	log.Info().Msg("Query: ~~~~~~~~~~~~~~~~~~~~~~~~~>>>>>")
	fmt.Printf("%s\n\n", *query)

	log.Info().Msg("Assistant: ~~~~~~~~~~~~~~~~~~~~~~~~~>>>>>")
	fmt.Printf("%s\n\n", answer.Simplified)

	if len(answer.Citations) > 0 {
		log.Info().Msg("Evidence: ~~~~~~~~~~~~~~~~~~~~~~~~~>>>>>")
		for _, cit := range answer.Citations {
			fmt.Printf("  [%s, Page %d] %s\n", cit.Source, cit.Page, cit.Snippet)
		}
		fmt.Println()
	}
}

func loadConfig() (*config.Config, error) {
	path := os.Getenv("DOCINSIGHT_CONFIG")
	if path == "" {
		path = defaultConfigPath
	}
	if _, err := os.Stat(path); err != nil {
		// no config file is fine, defaults target a local ollama
		return config.Default(), nil
	}
	return config.LoadConfig(path)
}

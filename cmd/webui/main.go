package main

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"docinsight/internal/config"
	"docinsight/internal/embedding"
	"docinsight/internal/pipeline"
	"docinsight/internal/rag"
	"docinsight/internal/webui"
)

const defaultConfigPath = "./configs/config.yaml"

func main() {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	zerolog.SetGlobalLevel(zerolog.DebugLevel)
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.RFC3339}).With().Caller().Logger()

	_ = godotenv.Load()

	cfg, err := loadConfig()
	if err != nil {
		log.Fatal().Err(err).Msg("Error loading config")
	}
	if port := os.Getenv("PORT"); port != "" {
		if n, err := strconv.Atoi(port); err == nil {
			cfg.Server.Port = n
		}
	}

	embedder, err := embedding.NewOllamaEmbedder(&cfg.EmbedLLM)
	if err != nil {
		log.Fatal().Err(err).Msg("Error initializing embedder")
	}

	retriever, err := pipeline.New(cfg).Retriever()
	if err != nil {
		log.Fatal().Err(err).Msg("Error opening vector index (run the pipeline first)")
	}

	engine := rag.NewRAG(retriever, embedder, nil, cfg)
	server, err := webui.NewServer(cfg, engine)
	if err != nil {
		log.Fatal().Err(err).Msg("Error creating server")
	}

	if err := server.ListenAndServe(); err != nil {
		log.Fatal().Err(err).Msg("Server stopped")
	}
}

func loadConfig() (*config.Config, error) {
	path := os.Getenv("DOCINSIGHT_CONFIG")
	if path == "" {
		path = defaultConfigPath
	}
	if _, err := os.Stat(path); err != nil {
		return config.Default(), nil
	}
	return config.LoadConfig(path)
}

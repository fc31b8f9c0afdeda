package config

import (
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"docinsight/internal/helper"
)

type Config struct {
	Storage      StorageConfig  `yaml:"storage"`
	Database     DatabaseConfig `yaml:"database"`
	EmbedLLM     LLMConfig      `yaml:"embed_llm"`
	InferenceLLM LLMConfig      `yaml:"inference_llm"`
	RAG          RAGConfig      `yaml:"rag"`
	Server       ServerConfig   `yaml:"server"`
}

type StorageConfig struct {
	RawDir       string `yaml:"raw_dir"`
	ProcessedDir string `yaml:"processed_dir"`
	VectorDir    string `yaml:"vector_dir"`
	Document     string `yaml:"document"`
}

type DatabaseConfig struct {
	URL   string `yaml:"url"`
	Key   string `yaml:"key"`
	Debug bool   `yaml:"debug"`
}

type LLMConfig struct {
	BaseURL string `yaml:"base_url"`
	Model   string `yaml:"model"`
	Key     string `yaml:"key"`
}

type RAGConfig struct {
	ChunkSize     int    `yaml:"chunk_size"`
	ChunkOverlap  int    `yaml:"chunk_overlap"`
	TopK          int    `yaml:"top_k"`
	Backend       string `yaml:"backend"`
	EncryptionKey string `yaml:"encryption_key"`
}

type ServerConfig struct {
	Port int `yaml:"port"`
}

const (
	BackendChromem  = "chromem"
	BackendPgvector = "pgvector"
)

func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}
	cfg.ApplyDefaults()
	return &cfg, nil
}

// Default returns a config usable without a config file.
func Default() *Config {
	var cfg Config
	cfg.ApplyDefaults()
	return &cfg
}

func (c *Config) ApplyDefaults() {
	if c.Storage.RawDir == "" {
		c.Storage.RawDir = "./data/raw"
	}
	if c.Storage.ProcessedDir == "" {
		c.Storage.ProcessedDir = "./data/processed"
	}
	if c.Storage.VectorDir == "" {
		c.Storage.VectorDir = "./data/vector_store"
	}
	if c.Storage.Document == "" {
		c.Storage.Document = filepath.Join(c.Storage.RawDir, "report.pdf")
	}
	if c.EmbedLLM.BaseURL == "" {
		c.EmbedLLM.BaseURL = "http://localhost:11434"
	}
	if c.EmbedLLM.Model == "" {
		c.EmbedLLM.Model = "nomic-embed-text"
	}
	if c.InferenceLLM.BaseURL == "" {
		c.InferenceLLM.BaseURL = "http://localhost:11434"
	}
	if c.InferenceLLM.Model == "" {
		c.InferenceLLM.Model = "llama3.2:1b"
	}
	if c.RAG.ChunkSize == 0 {
		c.RAG.ChunkSize = 1000
	}
	if c.RAG.ChunkOverlap == 0 {
		c.RAG.ChunkOverlap = 200
	}
	if c.RAG.TopK == 0 {
		c.RAG.TopK = 4
	}
	if c.RAG.Backend == "" {
		c.RAG.Backend = BackendChromem
	}
	if c.Server.Port == 0 {
		c.Server.Port = 8090
	}
}

// ChunksPath is the processed-chunk JSON file for the configured document.
func (c *Config) ChunksPath() string {
	return filepath.Join(c.Storage.ProcessedDir, "chunks.json")
}

// EnsureDirs creates the data directories if they are missing.
func (c *Config) EnsureDirs() error {
	for _, dir := range []string{c.Storage.RawDir, c.Storage.ProcessedDir, c.Storage.VectorDir} {
		if err := helper.CreateFolder(dir); err != nil {
			return err
		}
	}
	return nil
}

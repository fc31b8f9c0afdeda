package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestDefaults(t *testing.T) {
	cfg := Default()
	if cfg.RAG.ChunkSize != 1000 || cfg.RAG.ChunkOverlap != 200 {
		t.Fatalf("chunking defaults: size=%d overlap=%d", cfg.RAG.ChunkSize, cfg.RAG.ChunkOverlap)
	}
	if cfg.RAG.TopK != 4 {
		t.Fatalf("top_k default = %d", cfg.RAG.TopK)
	}
	if cfg.RAG.Backend != BackendChromem {
		t.Fatalf("backend default = %q", cfg.RAG.Backend)
	}
	if cfg.EmbedLLM.BaseURL != "http://localhost:11434" {
		t.Fatalf("embed base url default = %q", cfg.EmbedLLM.BaseURL)
	}
	if cfg.Server.Port != 8090 {
		t.Fatalf("port default = %d", cfg.Server.Port)
	}
}

func TestLoadConfigAppliesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	yaml := `
rag:
  chunk_size: 500
inference_llm:
  model: mistral
`
	if err := os.WriteFile(path, []byte(yaml), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}
	if cfg.RAG.ChunkSize != 500 {
		t.Fatalf("chunk_size = %d, want 500", cfg.RAG.ChunkSize)
	}
	if cfg.InferenceLLM.Model != "mistral" {
		t.Fatalf("inference model = %q", cfg.InferenceLLM.Model)
	}
	// unset values fall back to defaults
	if cfg.RAG.ChunkOverlap != 200 {
		t.Fatalf("chunk_overlap = %d, want default 200", cfg.RAG.ChunkOverlap)
	}
	if cfg.InferenceLLM.BaseURL != "http://localhost:11434" {
		t.Fatalf("inference base url = %q", cfg.InferenceLLM.BaseURL)
	}
}

func TestLoadConfigMissingFile(t *testing.T) {
	if _, err := LoadConfig(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Fatal("expected error for missing config file")
	}
}

func TestEnsureDirsAndChunksPath(t *testing.T) {
	dir := t.TempDir()
	cfg := Default()
	cfg.Storage.RawDir = filepath.Join(dir, "raw")
	cfg.Storage.ProcessedDir = filepath.Join(dir, "processed")
	cfg.Storage.VectorDir = filepath.Join(dir, "vector_store")

	if err := cfg.EnsureDirs(); err != nil {
		t.Fatalf("EnsureDirs failed: %v", err)
	}
	for _, d := range []string{cfg.Storage.RawDir, cfg.Storage.ProcessedDir, cfg.Storage.VectorDir} {
		if info, err := os.Stat(d); err != nil || !info.IsDir() {
			t.Fatalf("directory %s not created", d)
		}
	}
	if got := cfg.ChunksPath(); got != filepath.Join(cfg.Storage.ProcessedDir, "chunks.json") {
		t.Fatalf("ChunksPath = %q", got)
	}
}

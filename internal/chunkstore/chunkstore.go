package chunkstore

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"docinsight/internal/models"
)

// Save writes the processed chunks as an indented JSON file, creating the
// parent directory if needed.
func Save(path string, chunks []models.Chunk) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	data, err := json.MarshalIndent(chunks, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal chunks: %v", err)
	}
	return os.WriteFile(path, data, 0o644)
}

// Load reads chunks back from disk.
func Load(path string) ([]models.Chunk, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var chunks []models.Chunk
	if err := json.Unmarshal(data, &chunks); err != nil {
		return nil, fmt.Errorf("failed to unmarshal chunks: %v", err)
	}
	return chunks, nil
}

// Exists reports whether a processed-chunk file is already on disk. This is
// the pipeline's caching check, presence only, no content validation.
func Exists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}

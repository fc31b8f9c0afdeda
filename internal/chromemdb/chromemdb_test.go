package chromemdb

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"docinsight/internal/models"
)

func fixtureEmbeddings() []models.ChunkEmbedding {
	return []models.ChunkEmbedding{
		{Content: "growth was strong", Embedding: []float32{1, 0, 0}, SourceFilename: "report.pdf", PageNumber: 1, ChunkID: 1, SourceType: models.SourceProse},
		{Content: "| year | balance |", Embedding: []float32{0, 1, 0}, SourceFilename: "report.pdf", PageNumber: 2, ChunkID: 2, SourceType: models.SourceTable},
		{Content: "inflation eased", Embedding: []float32{0, 0, 1}, SourceFilename: "report.pdf", PageNumber: 3, ChunkID: 3, SourceType: models.SourceProse},
	}
}

func newInMemoryStore(t *testing.T) *VectorDBManager {
	t.Helper()
	m, err := NewVectorDBManager(t.TempDir(), "test_collection", true, "")
	if err != nil {
		t.Fatalf("NewVectorDBManager failed: %v", err)
	}
	if _, err := m.GetOrCreateCollection("test_collection"); err != nil {
		t.Fatalf("GetOrCreateCollection failed: %v", err)
	}
	return m
}

func TestStoreAndSearch(t *testing.T) {
	ctx := context.Background()
	m := newInMemoryStore(t)

	if err := m.StoreEmbeddings(ctx, fixtureEmbeddings()); err != nil {
		t.Fatalf("StoreEmbeddings failed: %v", err)
	}
	if m.Count() != 3 {
		t.Fatalf("count = %d, want 3", m.Count())
	}

	results, err := m.Search(ctx, []float32{0, 1, 0}, 2)
	if err != nil {
		t.Fatalf("Search failed: %v", err)
	}
	if len(results) != 2 {
		t.Fatalf("got %d results, want 2", len(results))
	}
	top := results[0].Chunk
	if top.PageNumber != 2 || top.SourceType != models.SourceTable {
		t.Fatalf("top result = %+v, want the table chunk from page 2", top)
	}
	if top.Content != "| year | balance |" {
		t.Fatalf("top content = %q", top.Content)
	}
}

// TestSearchClampsLimit: asking for more results than indexed chunks must
// not error.
func TestSearchClampsLimit(t *testing.T) {
	ctx := context.Background()
	m := newInMemoryStore(t)
	if err := m.StoreEmbeddings(ctx, fixtureEmbeddings()); err != nil {
		t.Fatal(err)
	}

	results, err := m.Search(ctx, []float32{1, 0, 0}, 10)
	if err != nil {
		t.Fatalf("Search with oversized limit failed: %v", err)
	}
	if len(results) != 3 {
		t.Fatalf("got %d results, want all 3", len(results))
	}
}

func TestSearchEmptyCollection(t *testing.T) {
	m := newInMemoryStore(t)
	results, err := m.Search(context.Background(), []float32{1, 0, 0}, 4)
	if err != nil {
		t.Fatalf("Search on empty collection failed: %v", err)
	}
	if len(results) != 0 {
		t.Fatalf("got %d results from empty collection", len(results))
	}
}

func TestSkipsEmptyChunks(t *testing.T) {
	ctx := context.Background()
	m := newInMemoryStore(t)
	embeddings := append(fixtureEmbeddings(), models.ChunkEmbedding{Content: "", Embedding: []float32{1, 1, 1}})
	if err := m.StoreEmbeddings(ctx, embeddings); err != nil {
		t.Fatalf("StoreEmbeddings failed: %v", err)
	}
	if m.Count() != 3 {
		t.Fatalf("count = %d, empty chunk should be skipped", m.Count())
	}
}

// TestExportImportRoundTrip: an encrypted snapshot written by one manager
// must restore into a fresh one with the index intact.
func TestExportImportRoundTrip(t *testing.T) {
	ctx := context.Background()
	key := "0123456789abcdef0123456789abcdef" // AES-256 keys are 32 bytes
	dir := t.TempDir()

	m, err := NewVectorDBManager(dir, "test_collection", true, key)
	if err != nil {
		t.Fatalf("NewVectorDBManager failed: %v", err)
	}
	if _, err := m.GetOrCreateCollection("test_collection"); err != nil {
		t.Fatal(err)
	}
	if err := m.StoreEmbeddings(ctx, fixtureEmbeddings()); err != nil {
		t.Fatal(err)
	}
	if err := m.Export(ctx); err != nil {
		t.Fatalf("Export failed: %v", err)
	}
	if _, err := os.Stat(filepath.Join(dir, "test_collection.chromem")); err != nil {
		t.Fatalf("snapshot file missing: %v", err)
	}

	restored, err := NewVectorDBManager(dir, "test_collection", true, key)
	if err != nil {
		t.Fatal(err)
	}
	if err := restored.Import(ctx); err != nil {
		t.Fatalf("Import failed: %v", err)
	}
	if _, err := restored.GetOrCreateCollection("test_collection"); err != nil {
		t.Fatal(err)
	}
	if restored.Count() != 3 {
		t.Fatalf("restored count = %d, want 3", restored.Count())
	}
	results, err := restored.Search(ctx, []float32{0, 0, 1}, 1)
	if err != nil {
		t.Fatalf("Search on restored index failed: %v", err)
	}
	if len(results) != 1 || results[0].Chunk.PageNumber != 3 {
		t.Fatalf("restored search results = %+v", results)
	}
}

func TestExportRequiresKey(t *testing.T) {
	m := newInMemoryStore(t)
	if err := m.Export(context.Background()); err == nil {
		t.Fatal("Export without an encryption key should fail")
	}
}

func TestVectorIDFormat(t *testing.T) {
	ce := models.ChunkEmbedding{SourceFilename: "report.pdf", PageNumber: 12, ChunkID: 3}
	if got := ce.VectorID(); got != "report.pdf-p12-c3" {
		t.Fatalf("VectorID = %q", got)
	}
}

func TestIndexExists(t *testing.T) {
	dir := t.TempDir()
	if IndexExists(dir) {
		t.Fatal("empty dir reported as existing index")
	}
	if IndexExists(filepath.Join(dir, "missing")) {
		t.Fatal("missing dir reported as existing index")
	}

	m, err := NewVectorDBManager(dir, "c", false, "")
	if err != nil {
		t.Fatal(err)
	}
	if _, err := m.GetOrCreateCollection("c"); err != nil {
		t.Fatal(err)
	}
	if err := m.StoreEmbeddings(context.Background(), fixtureEmbeddings()); err != nil {
		t.Fatal(err)
	}
	if !IndexExists(dir) {
		t.Fatal("persisted index not detected")
	}
}

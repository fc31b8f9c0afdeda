package parser

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"docinsight/internal/config"
	"docinsight/internal/models"
)

func TestChunkContentShortInput(t *testing.T) {
	chunks := chunkContent("short text", 1000, 200)
	if len(chunks) != 1 {
		t.Fatalf("expected single chunk, got %d", len(chunks))
	}
	if chunks[0] != "short text" {
		t.Fatalf("chunk content altered: %q", chunks[0])
	}
}

func TestChunkContentRespectsSize(t *testing.T) {
	content := strings.Repeat("word ", 500) // 2500 chars
	chunks := chunkContent(content, 100, 20)
	if len(chunks) < 2 {
		t.Fatalf("expected multiple chunks, got %d", len(chunks))
	}
	for i, c := range chunks {
		if len(c) > 100 {
			t.Fatalf("chunk %d exceeds max size: %d chars", i, len(c))
		}
	}
}

func TestChunkContentNoContentLost(t *testing.T) {
	var words []string
	for i := 0; i < 200; i++ {
		words = append(words, fmt.Sprintf("w%03d", i))
	}
	content := strings.Join(words, " ")
	chunks := chunkContent(content, 100, 20)

	// the overlap is wider than the break-point lookback, so every word
	// must survive intact in some chunk
	joined := strings.Join(chunks, " ")
	for _, word := range words {
		if !strings.Contains(joined, word) {
			t.Fatalf("word %q missing from chunk output", word)
		}
	}
}

func TestChunkContentEdgeCases(t *testing.T) {
	if got := chunkContent("", 100, 10); got != nil {
		t.Fatalf("expected nil for empty content, got %v", got)
	}
	if got := chunkContent("text", 0, 10); got != nil {
		t.Fatalf("expected nil for zero max size, got %v", got)
	}
	// overlap >= size must not loop forever
	chunks := chunkContent(strings.Repeat("x ", 200), 50, 50)
	if len(chunks) == 0 {
		t.Fatal("expected chunks despite overlap >= size")
	}
}

func TestGetChunksTagsPages(t *testing.T) {
	p := ParserConfig{Config: config.Default()}
	chunks := p.getChunks(strings.Repeat("sentence. ", 300), 7, "report.pdf")
	if len(chunks) < 2 {
		t.Fatalf("expected multiple chunks, got %d", len(chunks))
	}
	for i, c := range chunks {
		if c.PageNumber != 7 {
			t.Fatalf("chunk %d has page %d, want 7", i, c.PageNumber)
		}
		if c.ChunkID != i+1 {
			t.Fatalf("chunk %d has id %d, want %d", i, c.ChunkID, i+1)
		}
		if c.SourceType != models.SourceProse {
			t.Fatalf("chunk %d has source type %q, want prose", i, c.SourceType)
		}
		if c.SourceFilename != "report.pdf" {
			t.Fatalf("chunk %d has source %q", i, c.SourceFilename)
		}
	}
}

func TestSplitTablesDetectsAlignedRows(t *testing.T) {
	rows := []textRow{
		{cells: []string{"Some introductory prose line"}},
		{cells: []string{"Indicator", "2023", "2024"}},
		{cells: []string{"GDP", "2.4", "2.2"}},
		{cells: []string{"Inflation", "3.0", "2.5"}},
		{cells: []string{"A closing prose line"}},
	}

	tables, prose := splitTables(rows)
	if len(tables) != 1 {
		t.Fatalf("expected 1 table, got %d", len(tables))
	}
	if len(tables[0]) != 3 {
		t.Fatalf("expected 3 table rows, got %d", len(tables[0]))
	}
	if !strings.Contains(prose, "introductory") || !strings.Contains(prose, "closing") {
		t.Fatalf("prose lines lost: %q", prose)
	}
	if strings.Contains(prose, "GDP") {
		t.Fatalf("table row leaked into prose: %q", prose)
	}
}

func TestSplitTablesLoneMultiCellRowIsProse(t *testing.T) {
	rows := []textRow{
		{cells: []string{"left heading", "right heading"}},
		{cells: []string{"a single-cell line"}},
	}
	tables, prose := splitTables(rows)
	if len(tables) != 0 {
		t.Fatalf("one aligned row should not make a table, got %d tables", len(tables))
	}
	if !strings.Contains(prose, "left heading right heading") {
		t.Fatalf("lone row not joined into prose: %q", prose)
	}
}

func TestParseText(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "notes.txt")
	if err := os.WriteFile(path, []byte("The fiscal balance improved in 2024."), 0o644); err != nil {
		t.Fatal(err)
	}

	chunks, err := Parse(path, config.Default())
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	if len(chunks) != 1 {
		t.Fatalf("expected 1 chunk, got %d", len(chunks))
	}
	if chunks[0].PageNumber != 1 {
		t.Fatalf("txt chunk page = %d, want 1", chunks[0].PageNumber)
	}
	if chunks[0].SourceFilename != "notes.txt" {
		t.Fatalf("source filename = %q", chunks[0].SourceFilename)
	}
}

func TestParseUnsupportedFormat(t *testing.T) {
	if _, err := Parse("report.csv", config.Default()); err == nil {
		t.Fatal("expected error for unsupported format")
	}
}

func TestParseCorruptPDF(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "broken.pdf")
	if err := os.WriteFile(path, []byte("not a pdf at all"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := Parse(path, config.Default()); err == nil {
		t.Fatal("expected error for corrupt pdf")
	}
}

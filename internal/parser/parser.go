package parser

import (
	"archive/zip"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"docinsight/internal/config"
	"docinsight/internal/models"

	"github.com/nguyenthenguyen/docx"
	"github.com/tealeg/xlsx"
	"github.com/xuri/excelize/v2"
)

type Parser interface {
	Parse(filePath string) ([]models.Chunk, error)
}

type ParserConfig struct {
	Config *config.Config
}

const (
	defaultChunkSize    = 1000 // bytes
	defaultChunkOverlap = 200  // bytes
	defaultPageNumber   = 1
)

// Parse extracts page-tagged chunks from a document. Tables come out as
// markdown table chunks, everything else as size-split prose chunks.
func Parse(filePath string, cfg *config.Config) ([]models.Chunk, error) {
	if cfg == nil {
		cfg = config.Default()
	}
	if cfg.RAG.ChunkSize == 0 || cfg.RAG.ChunkOverlap == 0 {
		cfg.RAG.ChunkSize = defaultChunkSize
		cfg.RAG.ChunkOverlap = defaultChunkOverlap
	}

	p := ParserConfig{
		Config: cfg,
	}

	ext := strings.ToLower(filepath.Ext(filePath))
	switch ext {
	case ".pdf":
		return p.parsePDF(filePath)
	case ".docx":
		return p.parseDOCX(filePath)
	case ".pptx":
		return p.parsePPTX(filePath)
	case ".xlsx":
		return parseXLSX(filePath)
	case ".ods":
		return parseODS(filePath)
	case ".txt":
		return p.parseText(filePath)
	default:
		return nil, fmt.Errorf("unsupported file format: %s", ext)
	}
}

func (p *ParserConfig) parseDOCX(filePath string) ([]models.Chunk, error) {
	r, err := docx.ReadDocxFile(filePath)
	if err != nil {
		return nil, err
	}
	defer r.Close()

	doc := r.Editable()
	content := doc.GetContent()
	chunks := p.getChunks(content, defaultPageNumber, filepath.Base(filePath))
	return chunks, nil
}

func (p *ParserConfig) parsePPTX(filePath string) ([]models.Chunk, error) {
	f, err := zip.OpenReader(filePath)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var chunks []models.Chunk
	slideNum := 0
	for _, file := range f.File {
		if !strings.HasPrefix(file.Name, "ppt/slides/slide") {
			continue
		}
		rc, err := file.Open()
		if err != nil {
			continue
		}
		data, err := io.ReadAll(rc)
		rc.Close()
		if err != nil {
			continue
		}
		slideNum++
		slideText := extractTextFromXML(string(data))
		if strings.TrimSpace(slideText) == "" {
			continue
		}
		// slides stand in for pages
		chunks = append(chunks, p.getChunks(slideText, slideNum, filepath.Base(filePath))...)
	}
	return chunks, nil
}

func parseXLSX(filePath string) ([]models.Chunk, error) {
	f, err := xlsx.OpenFile(filePath)
	if err != nil {
		return nil, err
	}

	var chunks []models.Chunk
	for sheetNum, sheet := range f.Sheets {
		var table [][]string
		for _, row := range sheet.Rows {
			var cells []string
			for _, cell := range row.Cells {
				cells = append(cells, cell.String())
			}
			table = append(table, cells)
		}
		md := TableToMarkdown(table)
		if md == "" {
			continue
		}
		chunks = append(chunks, models.Chunk{
			Content:        fmt.Sprintf("## Sheet: %s\n%s", sheet.Name, md),
			PageNumber:     sheetNum + 1, // sheets stand in for pages
			ChunkID:        1,
			SourceType:     models.SourceTable,
			SourceFilename: filepath.Base(filePath),
		})
	}
	return chunks, nil
}

func parseODS(filePath string) ([]models.Chunk, error) {
	f, err := excelize.OpenFile(filePath)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var chunks []models.Chunk
	for sheetNum, sheetName := range f.GetSheetList() {
		rows, err := f.GetRows(sheetName)
		if err != nil {
			continue
		}
		md := TableToMarkdown(rows)
		if md == "" {
			continue
		}
		chunks = append(chunks, models.Chunk{
			Content:        fmt.Sprintf("## Sheet: %s\n%s", sheetName, md),
			PageNumber:     sheetNum + 1,
			ChunkID:        1,
			SourceType:     models.SourceTable,
			SourceFilename: filepath.Base(filePath),
		})
	}
	return chunks, nil
}

func (p *ParserConfig) parseText(filePath string) ([]models.Chunk, error) {
	data, err := os.ReadFile(filePath)
	if err != nil {
		return nil, err
	}
	return p.getChunks(string(data), defaultPageNumber, filepath.Base(filePath)), nil
}

func extractTextFromXML(xmlContent string) string {
	var text strings.Builder
	parts := strings.Split(xmlContent, "<a:t>")
	for i, part := range parts {
		if i == 0 {
			continue
		}
		endIdx := strings.Index(part, "</a:t>")
		if endIdx >= 0 {
			text.WriteString(part[:endIdx] + " ")
		}
	}
	return text.String()
}

// chunk content into chunks with maxChars and overlapChars
func chunkContent(content string, maxChars, overlapChars int) []string {
	// Handle edge cases
	if maxChars <= 0 {
		return nil
	}
	if overlapChars < 0 {
		overlapChars = 0
	}
	if overlapChars >= maxChars {
		overlapChars = maxChars / 2 // Reasonable default to avoid excessive overlap
	}
	if len(content) == 0 {
		return nil
	}

	var chunks []string
	content = strings.TrimSpace(content)
	contentLen := len(content)

	// If content is shorter than maxChars, return it as a single chunk
	if contentLen <= maxChars {
		return []string{content}
	}

	// Iterate through content, creating chunks with overlap
	start := 0
	for start < contentLen {
		// Calculate end index, ensuring it doesn't exceed content length
		end := min(start+maxChars, contentLen)

		// Find a clean break point (e.g., end of a word or sentence) if possible
		if end < contentLen {
			// Look for a space or punctuation within the last 10% of the chunk
			lookBack := min(maxChars/10, end-start)
			for i := end - 1; i >= end-lookBack && i > start; i-- {
				if content[i] == ' ' || content[i] == '\n' || content[i] == '.' {
					end = i + 1
					break
				}
			}
		}

		// Extract the chunk and append it
		chunk := strings.TrimSpace(content[start:end])
		if chunk != "" {
			chunks = append(chunks, chunk)
		}

		// Move start forward, accounting for overlap
		start += maxChars - overlapChars
		if start >= contentLen {
			break
		}
	}

	return chunks
}

// get prose chunks from content and page number
func (p *ParserConfig) getChunks(content string, pageNumber int, source string) []models.Chunk {
	var chunks []models.Chunk

	chunkStrings := chunkContent(content, p.Config.RAG.ChunkSize, p.Config.RAG.ChunkOverlap)
	for i, chunkString := range chunkStrings {
		chunks = append(chunks, models.Chunk{
			Content:        chunkString,
			PageNumber:     pageNumber,
			ChunkID:        i + 1,
			SourceType:     models.SourceProse,
			SourceFilename: source,
		})
	}

	return chunks
}

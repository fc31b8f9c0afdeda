package parser

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"docinsight/internal/models"

	"github.com/ledongthuc/pdf"
	"github.com/rs/zerolog/log"
)

// Layout thresholds in PDF points. Glyph runs closer than wordGap belong to
// the same word, words farther apart than cellGap start a new table cell.
const (
	rowTolerance = 2.0
	wordGap      = 2.5
	cellGap      = 18.0
)

type word struct {
	x    float64
	endX float64
	text string
}

type textRow struct {
	y     float64
	cells []string
}

func (p *ParserConfig) parsePDF(filePath string) ([]models.Chunk, error) {
	f, err := os.Open(filePath)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	stat, err := f.Stat()
	if err != nil {
		return nil, err
	}

	reader, err := pdf.NewReader(f, stat.Size())
	if err != nil {
		return nil, fmt.Errorf("failed to read pdf: %v", err)
	}

	source := filepath.Base(filePath)
	var chunks []models.Chunk
	numPages := reader.NumPage()
	for i := 1; i <= numPages; i++ {
		page := reader.Page(i)
		if page.V.IsNull() {
			continue
		}
		rows := assembleRows(page.Content().Text)
		tables, prose := splitTables(rows)

		log.Debug().Int("page", i).Int("tables", len(tables)).Msg("Parsed page")

		// Tables first, each as its own chunk so rows never straddle a
		// chunk boundary.
		for _, table := range tables {
			md := TableToMarkdown(table)
			if md == "" {
				continue
			}
			chunks = append(chunks, models.Chunk{
				Content:        md,
				PageNumber:     i,
				ChunkID:        len(chunks) + 1,
				SourceType:     models.SourceTable,
				SourceFilename: source,
			})
		}

		for _, c := range p.getChunks(prose, i, source) {
			c.ChunkID = len(chunks) + 1
			chunks = append(chunks, c)
		}

		// Figures survive as placeholder references so the retriever can
		// still point at the page a chart lives on.
		if refs := pageImageRefs(page, i); len(refs) > 0 {
			chunks = append(chunks, models.Chunk{
				Content:        "### VISUALS\n" + strings.Join(refs, "\n"),
				PageNumber:     i,
				ChunkID:        len(chunks) + 1,
				SourceType:     models.SourceProse,
				SourceFilename: source,
			})
		}
	}
	return chunks, nil
}

// pageImageRefs lists the image XObjects on a page as placeholder names.
func pageImageRefs(page pdf.Page, pageNum int) []string {
	xobjects := page.V.Key("Resources").Key("XObject")
	var refs []string
	for _, name := range xobjects.Keys() {
		if xobjects.Key(name).Key("Subtype").Name() != "Image" {
			continue
		}
		refs = append(refs, fmt.Sprintf("[IMAGE_REF: page_%d_img_%d.png]", pageNum, len(refs)+1))
	}
	return refs
}

// assembleRows groups positioned glyph runs into lines and lines into cells.
// PDF y grows upward, so rows are ordered top of page first.
func assembleRows(texts []pdf.Text) []textRow {
	if len(texts) == 0 {
		return nil
	}
	sorted := make([]pdf.Text, len(texts))
	copy(sorted, texts)
	sort.SliceStable(sorted, func(a, b int) bool {
		if sorted[a].Y != sorted[b].Y {
			return sorted[a].Y > sorted[b].Y
		}
		return sorted[a].X < sorted[b].X
	})

	var rows []textRow
	var line []pdf.Text
	flush := func() {
		if len(line) == 0 {
			return
		}
		rows = append(rows, textRow{y: line[0].Y, cells: splitCells(mergeWords(line))})
		line = nil
	}
	for _, t := range sorted {
		if strings.TrimSpace(t.S) == "" {
			continue
		}
		if len(line) > 0 && line[0].Y-t.Y > rowTolerance {
			flush()
		}
		line = append(line, t)
	}
	flush()
	return rows
}

func mergeWords(line []pdf.Text) []word {
	sort.SliceStable(line, func(a, b int) bool { return line[a].X < line[b].X })
	var words []word
	for _, t := range line {
		s := t.S
		if len(words) > 0 && t.X-words[len(words)-1].endX <= wordGap {
			words[len(words)-1].text += s
			words[len(words)-1].endX = t.X + t.W
			continue
		}
		words = append(words, word{x: t.X, endX: t.X + t.W, text: s})
	}
	// drop whitespace-only runs left over from justified text
	out := words[:0]
	for _, w := range words {
		w.text = strings.TrimSpace(w.text)
		if w.text != "" {
			out = append(out, w)
		}
	}
	return out
}

func splitCells(words []word) []string {
	var cells []string
	var cell strings.Builder
	var prevEnd float64
	for i, w := range words {
		if i > 0 && w.x-prevEnd > cellGap {
			cells = append(cells, cell.String())
			cell.Reset()
		}
		if cell.Len() > 0 {
			cell.WriteString(" ")
		}
		cell.WriteString(w.text)
		prevEnd = w.endX
	}
	if cell.Len() > 0 {
		cells = append(cells, cell.String())
	}
	return cells
}

// splitTables separates tabular regions from running text. A table is a run
// of two or more consecutive rows sharing the same cell count >= 2.
func splitTables(rows []textRow) (tables [][][]string, prose string) {
	var proseLines []string
	i := 0
	for i < len(rows) {
		n := len(rows[i].cells)
		if n >= 2 {
			j := i + 1
			for j < len(rows) && len(rows[j].cells) == n {
				j++
			}
			if j-i >= 2 {
				table := make([][]string, 0, j-i)
				for _, r := range rows[i:j] {
					table = append(table, r.cells)
				}
				tables = append(tables, table)
				i = j
				continue
			}
		}
		proseLines = append(proseLines, strings.Join(rows[i].cells, " "))
		i++
	}
	return tables, strings.Join(proseLines, "\n")
}

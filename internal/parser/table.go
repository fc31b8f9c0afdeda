package parser

import (
	"strings"
)

// TableToMarkdown converts a raw grid of cells into a GitHub-markdown table.
// Row/column alignment is what lets the model read financial tables, so the
// row count of the input must survive into the output (header + body rows).
func TableToMarkdown(table [][]string) string {
	if len(table) < 2 {
		return ""
	}

	cols := 0
	for _, row := range table {
		if len(row) > cols {
			cols = len(row)
		}
	}
	if cols == 0 {
		return ""
	}

	cleaned := make([][]string, len(table))
	for i, row := range table {
		cleaned[i] = make([]string, cols)
		for j := 0; j < cols; j++ {
			if j < len(row) {
				cleaned[i][j] = cleanCell(row[j])
			}
		}
	}

	var b strings.Builder
	writeRow := func(cells []string) {
		b.WriteString("| ")
		b.WriteString(strings.Join(cells, " | "))
		b.WriteString(" |\n")
	}

	writeRow(cleaned[0])
	sep := make([]string, cols)
	for j := range sep {
		sep[j] = "---"
	}
	writeRow(sep)
	for _, row := range cleaned[1:] {
		writeRow(row)
	}
	return b.String()
}

// MarkdownTableRows counts the data rows of a markdown table produced by
// TableToMarkdown (header included, separator excluded).
func MarkdownTableRows(md string) int {
	n := 0
	for _, line := range strings.Split(md, "\n") {
		line = strings.TrimSpace(line)
		if !strings.HasPrefix(line, "|") {
			continue
		}
		if isSeparatorRow(line) {
			continue
		}
		n++
	}
	return n
}

func isSeparatorRow(line string) bool {
	inner := strings.Trim(line, "| ")
	if inner == "" {
		return false
	}
	for _, cell := range strings.Split(inner, "|") {
		cell = strings.TrimSpace(cell)
		if cell == "" || strings.Trim(cell, ":-") != "" {
			return false
		}
	}
	return true
}

func cleanCell(cell string) string {
	cell = strings.ReplaceAll(cell, "\n", " ")
	cell = strings.ReplaceAll(cell, "|", "/")
	return strings.TrimSpace(cell)
}

package models

// SourceType tells apart prose chunks from serialized tables.
type SourceType string

const (
	SourceProse SourceType = "prose"
	SourceTable SourceType = "table"
)

// Chunk represents a parsed chunk with metadata
type Chunk struct {
	Content        string     `json:"content"`
	PageNumber     int        `json:"page_number"`
	ChunkID        int        `json:"chunk_id"`
	SourceType     SourceType `json:"source_type"`
	SourceFilename string     `json:"source_filename"`
}

// Citation points a sentence of the answer back at the report.
type Citation struct {
	Rank    int    `json:"rank"`
	Source  string `json:"source"`
	Page    int    `json:"page"`
	Snippet string `json:"snippet"`
}

// Answer is the per-query result: the model's text, a display-cleaned
// version of it, and the retrieved evidence.
type Answer struct {
	Text       string     `json:"text"`
	Simplified string     `json:"simplified"`
	Citations  []Citation `json:"citations"`
}

// Retrieved is a chunk that matched a query, with its similarity score.
type Retrieved struct {
	Chunk      Chunk
	Similarity float32
}

package models

import "fmt"

// ChunkEmbedding pairs a chunk with its embedding vector.
type ChunkEmbedding struct {
	Content        string
	Embedding      []float32
	SourceFilename string
	PageNumber     int
	ChunkID        int
	SourceType     SourceType
}

// VectorID is the chunk identifier used by the vector index. Index entries
// map 1:1 to these.
func (c ChunkEmbedding) VectorID() string {
	return VectorID(c.SourceFilename, c.PageNumber, c.ChunkID)
}

// VectorID builds the `<source>-p<page>-c<chunk>` identifier.
func VectorID(source string, page, chunk int) string {
	return fmt.Sprintf("%s-p%d-c%d", source, page, chunk)
}

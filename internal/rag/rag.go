package rag

import (
	"context"
	"fmt"

	"github.com/rs/zerolog/log"

	"docinsight/internal/config"
	"docinsight/internal/llmservice"
	"docinsight/internal/models"
)

// Retriever is the nearest-neighbor surface shared by the chromem and
// pgvector backends.
type Retriever interface {
	Search(ctx context.Context, queryEmbedding []float32, limit int) ([]models.Retrieved, error)
}

// Embedder turns a query into an embedding vector.
type Embedder interface {
	EmbedQuery(ctx context.Context, text string) ([]float32, error)
}

// Generator produces the model's answer for a prompt.
type Generator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

type RAG struct {
	retriever Retriever
	embedder  Embedder
	generator Generator
	cfg       *config.Config
}

func NewRAG(retriever Retriever, embedder Embedder, generator Generator, cfg *config.Config) *RAG {
	if generator == nil {
		generator = &llmGenerator{cfg: &cfg.InferenceLLM}
	}
	return &RAG{retriever: retriever, embedder: embedder, generator: generator, cfg: cfg}
}

// Query answers a question from the indexed report. Empty retrieval returns
// the fallback answer, never an error; model failures surface directly.
func (r *RAG) Query(ctx context.Context, query string) (*models.Answer, error) {
	queryEmbedding, err := r.embedder.EmbedQuery(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to embed query: %v", err)
	}

	docs, err := r.retriever.Search(ctx, queryEmbedding, r.cfg.RAG.TopK)
	if err != nil {
		return nil, fmt.Errorf("retrieval failed: %v", err)
	}

	if len(docs) == 0 {
		log.Info().Str("query", query).Msg("No relevant chunks retrieved")
		return &models.Answer{
			Text:       models.FallbackAnswer,
			Simplified: models.FallbackAnswer,
		}, nil
	}

	prompt := fmt.Sprintf(models.QAPromptTemplate, formatContext(docs), query)
	text, err := r.generator.Generate(ctx, prompt)
	if err != nil {
		return nil, err
	}

	return &models.Answer{
		Text:       text,
		Simplified: Simplify(text),
		Citations:  citationsFor(docs),
	}, nil
}

// formatContext prepares retrieved chunks for the model's context window,
// one block per chunk with its page provenance.
func formatContext(docs []models.Retrieved) string {
	var context string
	for _, doc := range docs {
		context += fmt.Sprintf(models.ContextBlockTemplate, doc.Chunk.PageNumber, doc.Chunk.SourceFilename, doc.Chunk.Content)
	}
	return context
}

// citationsFor maps every retrieved chunk to a citation, so citation pages
// always match chunks actually retrieved for the query.
func citationsFor(docs []models.Retrieved) []models.Citation {
	citations := make([]models.Citation, 0, len(docs))
	for i, doc := range docs {
		citations = append(citations, models.Citation{
			Rank:    i + 1,
			Source:  doc.Chunk.SourceFilename,
			Page:    doc.Chunk.PageNumber,
			Snippet: CleanSnippet(doc.Chunk.Content),
		})
	}
	return citations
}

type llmGenerator struct {
	cfg *config.LLMConfig
}

func (g *llmGenerator) Generate(ctx context.Context, prompt string) (string, error) {
	return llmservice.GeneratePrompt(ctx, g.cfg, prompt)
}

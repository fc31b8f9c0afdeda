package pipeline

import (
	"context"
	"fmt"
	"os"

	"github.com/rs/zerolog/log"
	"github.com/uptrace/bun"

	"docinsight/internal/chromemdb"
	"docinsight/internal/chunkstore"
	"docinsight/internal/config"
	"docinsight/internal/db"
	"docinsight/internal/embedding"
	"docinsight/internal/models"
	"docinsight/internal/parser"
	"docinsight/internal/rag"
)

const collectionName = "report_collection"

// Options control a single pipeline pass.
type Options struct {
	Force      bool
	SkipIngest bool
	Query      string
	File       string
}

// Pipeline runs ingest -> index -> answer as one linear pass. The stage
// funcs default to the real implementations; tests swap them out.
type Pipeline struct {
	cfg *config.Config

	parse       func(filePath string, cfg *config.Config) ([]models.Chunk, error)
	indexExists func() (bool, error)
	buildIndex  func(ctx context.Context, chunks []models.Chunk) error
	answer      func(ctx context.Context, query string) (*models.Answer, error)
}

func New(cfg *config.Config) *Pipeline {
	p := &Pipeline{cfg: cfg}
	p.parse = parser.Parse
	p.indexExists = p.defaultIndexExists
	p.buildIndex = p.defaultBuildIndex
	p.answer = p.defaultAnswer
	return p
}

// Run executes one pass: ingest and index unless skipped, then answer the
// query if one was given.
func (p *Pipeline) Run(ctx context.Context, opts Options) (*models.Answer, error) {
	if err := p.cfg.EnsureDirs(); err != nil {
		return nil, fmt.Errorf("failed to create data directories: %v", err)
	}
	if opts.File != "" {
		p.cfg.Storage.Document = opts.File
	}

	if !opts.SkipIngest {
		if err := p.RunIngest(ctx, opts.Force); err != nil {
			return nil, err
		}
		if err := p.RunIndex(ctx, opts.Force); err != nil {
			return nil, err
		}
	}

	if opts.Query == "" {
		return nil, nil
	}
	return p.answer(ctx, opts.Query)
}

// RunIngest extracts chunks from the document unless a processed-chunk file
// is already present. Presence check only, no content-based invalidation.
func (p *Pipeline) RunIngest(ctx context.Context, force bool) error {
	path := p.cfg.ChunksPath()
	if chunkstore.Exists(path) && !force {
		log.Info().Str("path", path).Msg("Chunks found, skipping ingestion (use --force to overwrite)")
		return nil
	}

	if _, err := os.Stat(p.cfg.Storage.Document); err != nil {
		return fmt.Errorf("input document not found at %s", p.cfg.Storage.Document)
	}

	log.Info().Str("document", p.cfg.Storage.Document).Msg("Ingesting document")
	chunks, err := p.parse(p.cfg.Storage.Document, p.cfg)
	if err != nil {
		return fmt.Errorf("ingestion failed: %v", err)
	}
	if err := chunkstore.Save(path, chunks); err != nil {
		return fmt.Errorf("failed to save chunks: %v", err)
	}
	log.Info().Int("chunks", len(chunks)).Str("path", path).Msg("Ingestion complete")
	return nil
}

// RunIndex embeds the stored chunks and rebuilds the vector index wholesale,
// unless an index already exists and force is off.
func (p *Pipeline) RunIndex(ctx context.Context, force bool) error {
	exists, err := p.indexExists()
	if err != nil {
		return err
	}
	if exists && !force {
		log.Info().Msg("Index found, skipping indexing (use --force to rebuild)")
		return nil
	}

	chunks, err := chunkstore.Load(p.cfg.ChunksPath())
	if err != nil {
		return fmt.Errorf("failed to load chunks: %v", err)
	}

	log.Info().Int("chunks", len(chunks)).Str("backend", p.cfg.RAG.Backend).Msg("Building vector index")
	if err := p.buildIndex(ctx, chunks); err != nil {
		return fmt.Errorf("indexing failed: %v", err)
	}
	log.Info().Msg("Indexing complete")
	return nil
}

func (p *Pipeline) defaultIndexExists() (bool, error) {
	switch p.cfg.RAG.Backend {
	case config.BackendPgvector:
		dbInstance, err := p.connectPg()
		if err != nil {
			return false, err
		}
		defer dbInstance.Close()
		count, err := db.CountDocuments(context.Background(), dbInstance)
		if err != nil {
			// missing table means no index yet
			return false, nil
		}
		return count > 0, nil
	default:
		return chromemdb.IndexExists(p.cfg.Storage.VectorDir), nil
	}
}

func (p *Pipeline) defaultBuildIndex(ctx context.Context, chunks []models.Chunk) error {
	embedder, err := embedding.NewOllamaEmbedder(&p.cfg.EmbedLLM)
	if err != nil {
		return err
	}
	chunkEmbeddings, err := embedding.GenerateEmbeddings(ctx, embedder, chunks)
	if err != nil {
		return err
	}

	switch p.cfg.RAG.Backend {
	case config.BackendPgvector:
		dbInstance, err := p.connectPg()
		if err != nil {
			return err
		}
		defer dbInstance.Close()
		if err := db.DropDocuments(ctx, dbInstance); err != nil {
			return err
		}
		if err := db.InitDB(ctx, dbInstance); err != nil {
			return err
		}
		return db.StoreDocuments(ctx, dbInstance, chunkEmbeddings)
	default:
		// wholesale rebuild, never incremental
		if err := os.RemoveAll(p.cfg.Storage.VectorDir); err != nil {
			return err
		}
		manager, err := chromemdb.NewVectorDBManager(p.cfg.Storage.VectorDir, collectionName, false, p.cfg.RAG.EncryptionKey)
		if err != nil {
			return err
		}
		if _, err := manager.GetOrCreateCollection(collectionName); err != nil {
			return err
		}
		if err := manager.StoreEmbeddings(ctx, chunkEmbeddings); err != nil {
			return err
		}
		// with a key configured, keep an encrypted snapshot next to the index
		if p.cfg.RAG.EncryptionKey != "" {
			return manager.Export(ctx)
		}
		return nil
	}
}

func (p *Pipeline) defaultAnswer(ctx context.Context, query string) (*models.Answer, error) {
	embedder, err := embedding.NewOllamaEmbedder(&p.cfg.EmbedLLM)
	if err != nil {
		return nil, err
	}

	retriever, err := p.Retriever()
	if err != nil {
		return nil, err
	}

	engine := rag.NewRAG(retriever, embedder, nil, p.cfg)
	return engine.Query(ctx, query)
}

// Retriever opens the configured vector backend for querying.
func (p *Pipeline) Retriever() (rag.Retriever, error) {
	switch p.cfg.RAG.Backend {
	case config.BackendPgvector:
		dbInstance, err := p.connectPg()
		if err != nil {
			return nil, err
		}
		return &db.Store{DB: dbInstance}, nil
	default:
		manager, err := chromemdb.NewVectorDBManager(p.cfg.Storage.VectorDir, collectionName, false, p.cfg.RAG.EncryptionKey)
		if err != nil {
			return nil, err
		}
		if _, err := manager.GetOrCreateCollection(collectionName); err != nil {
			return nil, err
		}
		return manager, nil
	}
}

func (p *Pipeline) connectPg() (*bun.DB, error) {
	client, err := db.ConnectDB(&p.cfg.Database)
	if err != nil {
		return nil, err
	}
	return db.NewDB(client, p.cfg.Database.Debug), nil
}

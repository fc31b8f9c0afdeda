package db

import (
	"context"
	"database/sql"

	_ "github.com/lib/pq"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/driver/pgdriver"
	"github.com/uptrace/bun/extra/bundebug"

	"docinsight/internal/config"
	"docinsight/internal/models"
)

// Document is an indexed chunk row in the pgvector backend.
type Document struct {
	bun.BaseModel  `bun:"table:documents,alias:d"`
	ID             int64     `bun:"id,pk,autoincrement"`
	Content        string    `bun:"content,notnull"`
	Embedding      []float32 `bun:"embedding,notnull,type:vector(768)"`
	SourceFilename string    `bun:"source_filename,notnull"`
	PageNumber     int       `bun:"page_number,notnull"`
	ChunkID        int       `bun:"chunk_id,notnull"`
	SourceType     string    `bun:"source_type,notnull"`
}

func NewDB(sqldb *sql.DB, debug bool) *bun.DB {
	db := bun.NewDB(sqldb, pgdialect.New())
	if debug {
		db.AddQueryHook(bundebug.NewQueryHook(bundebug.WithVerbose(true)))
	}
	return db
}

func ConnectDB(cfg *config.DatabaseConfig) (*sql.DB, error) {
	dsn := cfg.URL + "?sslmode=disable"
	return sql.OpenDB(pgdriver.NewConnector(pgdriver.WithDSN(dsn), pgdriver.WithPassword(cfg.Key))), nil
}

func InitDB(ctx context.Context, db *bun.DB) error {
	_, err := db.NewCreateTable().Model((*Document)(nil)).IfNotExists().Exec(ctx)
	return err
}

// drop table documents
func DropDocuments(ctx context.Context, db *bun.DB) error {
	_, err := db.NewDropTable().Model((*Document)(nil)).IfExists().Exec(ctx)
	return err
}

// CountDocuments reports the number of indexed rows; the pipeline treats a
// non-empty table as an existing index.
func CountDocuments(ctx context.Context, db *bun.DB) (int, error) {
	return db.NewSelect().Model((*Document)(nil)).Count(ctx)
}

// StoreDocuments batch-inserts chunk embeddings.
func StoreDocuments(ctx context.Context, db *bun.DB, chunkEmbeddings []models.ChunkEmbedding) error {
	if len(chunkEmbeddings) == 0 {
		return nil
	}
	docs := make([]Document, len(chunkEmbeddings))
	for i, ce := range chunkEmbeddings {
		docs[i] = Document{
			Content:        ce.Content,
			Embedding:      ce.Embedding,
			SourceFilename: ce.SourceFilename,
			PageNumber:     ce.PageNumber,
			ChunkID:        ce.ChunkID,
			SourceType:     string(ce.SourceType),
		}
	}
	_, err := db.NewInsert().Model(&docs).Exec(ctx)
	return err
}

// Store adapts the bun handle to the retriever surface the QA engine uses.
type Store struct {
	DB *bun.DB
}

func (s *Store) Search(ctx context.Context, queryEmbedding []float32, limit int) ([]models.Retrieved, error) {
	return SearchDocuments(ctx, s.DB, queryEmbedding, limit)
}

// SearchDocuments returns the chunks nearest to the query embedding.
func SearchDocuments(ctx context.Context, db *bun.DB, queryEmbedding []float32, limit int) ([]models.Retrieved, error) {
	var docs []Document
	err := db.NewSelect().
		Model(&docs).
		Column("id", "content", "source_filename", "page_number", "chunk_id", "source_type").
		OrderExpr("embedding <-> ?", queryEmbedding).
		Limit(limit).
		Scan(ctx)
	if err != nil {
		return nil, err
	}

	retrieved := make([]models.Retrieved, 0, len(docs))
	for _, doc := range docs {
		retrieved = append(retrieved, models.Retrieved{
			Chunk: models.Chunk{
				Content:        doc.Content,
				PageNumber:     doc.PageNumber,
				ChunkID:        doc.ChunkID,
				SourceType:     models.SourceType(doc.SourceType),
				SourceFilename: doc.SourceFilename,
			},
		})
	}
	return retrieved, nil
}

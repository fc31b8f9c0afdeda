package chromemdb

import (
	"context"
	"fmt"
	"os"
	"runtime"
	"strconv"

	"github.com/philippgille/chromem-go"
	"github.com/rs/zerolog/log"

	"docinsight/internal/models"
)

// VectorDBManager encapsulates the chromem-go database operations
type VectorDBManager struct {
	db            *chromem.DB
	collection    *chromem.Collection
	dbPath        string
	compress      bool
	encryptionKey string
	filePath      string
}

const (
	compress = false
)

// NewVectorDBManager initializes a new vector database manager
func NewVectorDBManager(dbPath, collectionName string, inMemory bool, encryptionKey string) (*VectorDBManager, error) {
	var db *chromem.DB
	var err error
	if inMemory {
		db = chromem.NewDB()
	} else {
		db, err = chromem.NewPersistentDB(dbPath, compress)
		if err != nil {
			return nil, fmt.Errorf("failed to create database: %v", err)
		}
	}

	return &VectorDBManager{
		db:            db,
		collection:    nil,
		dbPath:        dbPath,
		compress:      compress,
		encryptionKey: encryptionKey,
		filePath:      dbPath + "/" + collectionName + ".chromem",
	}, nil
}

// IndexExists reports whether a persistent index directory is already on
// disk. Presence check only, the pipeline's caching logic.
func IndexExists(dbPath string) bool {
	entries, err := os.ReadDir(dbPath)
	return err == nil && len(entries) > 0
}

// create or read collection
func (m *VectorDBManager) GetOrCreateCollection(collectionName string) (*chromem.Collection, error) {
	c, err := m.db.GetOrCreateCollection(collectionName, nil, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create/get collection: %v", err)
	}
	m.collection = c
	return c, nil
}

// DeleteCollection drops the collection. Re-ingestion rebuilds the index
// wholesale, never incrementally.
func (m *VectorDBManager) DeleteCollection() error {
	if m.collection == nil {
		return nil
	}
	if err := m.db.DeleteCollection(m.collection.Name); err != nil {
		return fmt.Errorf("failed to drop collection: %v", err)
	}
	m.collection = nil
	return nil
}

// Count returns the number of indexed chunks.
func (m *VectorDBManager) Count() int {
	if m.collection == nil {
		return 0
	}
	return m.collection.Count()
}

// StoreEmbeddings adds one index entry per chunk embedding, keyed by the
// chunk's vector id.
func (m *VectorDBManager) StoreEmbeddings(ctx context.Context, chunkEmbeddings []models.ChunkEmbedding) error {
	docs := make([]chromem.Document, 0, len(chunkEmbeddings))
	for _, ce := range chunkEmbeddings {
		if ce.Content == "" {
			continue
		}
		docs = append(docs, chromem.Document{
			ID:        ce.VectorID(),
			Content:   ce.Content,
			Metadata:  metadataFor(ce),
			Embedding: ce.Embedding,
		})
	}
	if len(docs) == 0 {
		return nil
	}

	log.Info().Msgf("Adding %d documents to vector database", len(docs))
	if err := m.collection.AddDocuments(ctx, docs, runtime.NumCPU()); err != nil {
		return fmt.Errorf("failed to add documents: %v", err)
	}
	return nil
}

// Search performs a nearest-neighbor query by embedding and maps results
// back to chunks.
func (m *VectorDBManager) Search(ctx context.Context, queryEmbedding []float32, limit int) ([]models.Retrieved, error) {
	if queryEmbedding == nil {
		return nil, fmt.Errorf("query embedding must be provided")
	}
	if m.collection == nil {
		return nil, fmt.Errorf("collection is required")
	}

	// chromem rejects nResults larger than the collection
	count := m.collection.Count()
	if count == 0 {
		return nil, nil
	}
	if limit > count {
		limit = count
	}

	results, err := m.collection.QueryWithOptions(ctx, chromem.QueryOptions{
		QueryEmbedding: queryEmbedding,
		NResults:       limit,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to query by similarity: %v", err)
	}

	retrieved := make([]models.Retrieved, 0, len(results))
	for _, res := range results {
		retrieved = append(retrieved, models.Retrieved{
			Chunk:      chunkFromResult(res),
			Similarity: res.Similarity,
		})
	}
	return retrieved, nil
}

// export to file
func (m *VectorDBManager) Export(ctx context.Context) error {
	if m.encryptionKey == "" {
		return fmt.Errorf("encryption key is required")
	}
	if m.collection == nil {
		return fmt.Errorf("collection is required")
	}
	if m.dbPath == "" {
		return fmt.Errorf("db path is required")
	}

	log.Debug().Str("collection", m.collection.Name).Str("file", m.filePath).Msg("Exporting collection")
	if err := m.db.ExportToFile(m.filePath, m.compress, m.encryptionKey, m.collection.Name); err != nil {
		return fmt.Errorf("failed to export database: %v", err)
	}
	return nil
}

// import from file
func (m *VectorDBManager) Import(ctx context.Context) error {
	if err := m.db.ImportFromFile(m.filePath, m.encryptionKey); err != nil {
		return fmt.Errorf("failed to import database: %v", err)
	}
	return nil
}

func metadataFor(ce models.ChunkEmbedding) map[string]string {
	return map[string]string{
		"source":      ce.SourceFilename,
		"page":        strconv.Itoa(ce.PageNumber),
		"chunk_id":    strconv.Itoa(ce.ChunkID),
		"source_type": string(ce.SourceType),
	}
}

func chunkFromResult(res chromem.Result) models.Chunk {
	page, _ := strconv.Atoi(res.Metadata["page"])
	chunkID, _ := strconv.Atoi(res.Metadata["chunk_id"])
	return models.Chunk{
		Content:        res.Content,
		PageNumber:     page,
		ChunkID:        chunkID,
		SourceType:     models.SourceType(res.Metadata["source_type"]),
		SourceFilename: res.Metadata["source"],
	}
}

package semindex

import (
	"context"
	"fmt"
	"path/filepath"
	"sync"

	chromem "github.com/philippgille/chromem-go"

	apperrors "github.com/janseva-labs/janseva-bot-go/internal/errors"
	"github.com/janseva-labs/janseva-bot-go/internal/logger"
)

const (
	// OfficeCollectionName is the name of the office collection in chromem
	OfficeCollectionName = "offices"

	// addConcurrency bounds concurrent embedding calls during upserts
	addConcurrency = 4
)

// VectorDB wraps chromem-go for office semantic search.
type VectorDB struct {
	db            *chromem.DB
	collection    *chromem.Collection
	embeddingFunc chromem.EmbeddingFunc
	logger        *logger.Logger
	mu            sync.RWMutex
}

// NewVectorDB creates a persistent vector database under persistDir.
// The embedding function is injected so the index itself stays independent
// of any particular embedding provider.
func NewVectorDB(persistDir string, embeddingFunc chromem.EmbeddingFunc, log *logger.Logger) (*VectorDB, error) {
	chromemPath := filepath.Join(persistDir, "chromem", "offices")

	db, err := chromem.NewPersistentDB(chromemPath, false)
	if err != nil {
		return nil, fmt.Errorf("failed to create chromem database: %w", err)
	}

	collection, err := db.GetOrCreateCollection(OfficeCollectionName, nil, embeddingFunc)
	if err != nil {
		return nil, fmt.Errorf("failed to get/create collection: %w", err)
	}

	vdb := &VectorDB{
		db:            db,
		collection:    collection,
		embeddingFunc: embeddingFunc,
		logger:        log,
	}

	if count := collection.Count(); count > 0 {
		log.WithField("count", count).Info("Loaded existing office embeddings from disk")
	}

	return vdb, nil
}

// Upsert adds or overwrites documents. Idempotent by document identity.
func (v *VectorDB) Upsert(ctx context.Context, docs []Document) error {
	if v == nil || len(docs) == 0 {
		return nil
	}

	v.mu.Lock()
	defer v.mu.Unlock()

	chromemDocs := make([]chromem.Document, 0, len(docs))
	for _, d := range docs {
		chromemDocs = append(chromemDocs, chromem.Document{
			ID:       d.ID(),
			Content:  d.Content(),
			Metadata: d.Metadata(),
		})
	}

	if err := v.collection.AddDocuments(ctx, chromemDocs, addConcurrency); err != nil {
		return apperrors.NewDataSourceError("semantic-index", err)
	}

	v.logger.WithField("count", len(docs)).Debug("Upserted office documents")
	return nil
}

// Search queries the collection and returns results with similarity at or
// above minSimilarity, ordered by descending similarity.
func (v *VectorDB) Search(ctx context.Context, query string, topK int, minSimilarity float32) ([]Result, error) {
	if v == nil || query == "" || topK <= 0 {
		return nil, nil
	}

	v.mu.RLock()
	defer v.mu.RUnlock()

	docCount := v.collection.Count()
	if docCount == 0 {
		return nil, nil
	}

	// chromem-go rejects nResults above the document count
	queryLimit := topK
	if queryLimit > docCount {
		queryLimit = docCount
	}

	hits, err := v.collection.Query(ctx, query, queryLimit, nil, nil)
	if err != nil {
		return nil, apperrors.NewDataSourceError("semantic-index", err)
	}

	results := make([]Result, 0, len(hits))
	for _, hit := range hits {
		if hit.Similarity < minSimilarity {
			continue
		}
		results = append(results, Result{
			ServiceType: hit.Metadata["service_type"],
			Office:      officeFromMetadata(hit.Metadata, hit.Similarity),
			Similarity:  hit.Similarity,
		})
	}

	return results, nil
}

// Count returns the number of indexed documents.
func (v *VectorDB) Count() int {
	if v == nil {
		return 0
	}
	v.mu.RLock()
	defer v.mu.RUnlock()
	return v.collection.Count()
}

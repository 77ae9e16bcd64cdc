package semindex

import (
	"context"
	"sync"

	"github.com/janseva-labs/janseva-bot-go/internal/logger"
)

// Index is the hybrid semantic index facade consumed by the pipeline.
// Vector search carries true similarity; BM25 covers exact-name keyword
// matches; RRF fuses the two when both are available.
//
// The vector store persists across restarts. The lexical corpus is held in
// memory and repopulated through upserts, so after a cold start searches are
// vector-only until the first upsert arrives.
type Index struct {
	vector  *VectorDB
	lexical *LexicalIndex
	logger  *logger.Logger

	mu   sync.Mutex
	docs map[string]Document // all documents seen this process, by ID
}

// NewIndex creates the hybrid index. Either component may be nil; search
// degrades to the remaining one.
func NewIndex(vector *VectorDB, lexical *LexicalIndex, log *logger.Logger) *Index {
	return &Index{
		vector:  vector,
		lexical: lexical,
		logger:  log,
		docs:    make(map[string]Document),
	}
}

// Search runs vector and lexical search in parallel and fuses the results.
// Only results with fused similarity at or above minSimilarity are returned,
// ordered by descending relevance.
func (idx *Index) Search(ctx context.Context, query string, topK int, minSimilarity float32) ([]Result, error) {
	if idx == nil || query == "" {
		return nil, nil
	}

	var (
		lexResults []LexicalResult
		vecResults []Result
		lexErr     error
		vecErr     error
		wg         sync.WaitGroup
	)

	if idx.lexical != nil && idx.lexical.Count() > 0 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			// Fetch extra for better fusion overlap
			lexResults, lexErr = idx.lexical.Search(query, topK*3)
		}()
	}

	if idx.vector != nil {
		wg.Add(1)
		go func() {
			defer wg.Done()
			vecResults, vecErr = idx.vector.Search(ctx, query, topK*3, minSimilarity)
		}()
	}

	wg.Wait()

	// Continue with whichever source succeeded
	if lexErr != nil {
		idx.logger.WithError(lexErr).Warn("Lexical search failed")
		lexResults = nil
	}
	if vecErr != nil {
		idx.logger.WithError(vecErr).Warn("Vector search failed")
		vecResults = nil
	}
	if lexErr != nil && vecErr != nil {
		return nil, vecErr
	}

	var fusedResults []Result
	switch {
	case len(lexResults) == 0:
		fusedResults = vecResults
	case len(vecResults) == 0:
		fusedResults = FuseRRF(lexResults, nil, 1.0, 0)
	default:
		fusedResults = FuseRRF(lexResults, vecResults, DefaultLexicalWeight, 0)
	}

	filtered := make([]Result, 0, len(fusedResults))
	for _, r := range fusedResults {
		if r.Similarity >= minSimilarity {
			filtered = append(filtered, r)
		}
	}
	if topK > 0 && len(filtered) > topK {
		filtered = filtered[:topK]
	}

	return filtered, nil
}

// Upsert adds documents to both sides of the index. Idempotent by document
// identity: re-upserting an office overwrites its previous version.
func (idx *Index) Upsert(ctx context.Context, docs []Document) error {
	if idx == nil || len(docs) == 0 {
		return nil
	}

	if idx.vector != nil {
		if err := idx.vector.Upsert(ctx, docs); err != nil {
			return err
		}
	}

	if idx.lexical != nil {
		idx.mu.Lock()
		for _, d := range docs {
			idx.docs[d.ID()] = d
		}
		all := make([]Document, 0, len(idx.docs))
		for _, d := range idx.docs {
			all = append(all, d)
		}
		idx.mu.Unlock()

		if err := idx.lexical.Rebuild(all); err != nil {
			return err
		}
	}

	return nil
}

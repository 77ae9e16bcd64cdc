package semindex

import (
	"fmt"
	"sort"
	"strings"
	"sync"
	"unicode"

	"github.com/crawlab-team/bm25"

	"github.com/janseva-labs/janseva-bot-go/internal/logger"
)

// LexicalIndex provides keyword-based office search using BM25.
// It complements vector search for queries with exact service or place
// names that embeddings rank poorly.
type LexicalIndex struct {
	okapi       *bm25.BM25Okapi
	docs        []Document
	docTokens   []map[string]struct{}
	logger      *logger.Logger
	mu          sync.RWMutex
	initialized bool
}

// LexicalResult is one BM25 hit with its score and 1-indexed rank.
type LexicalResult struct {
	Document Document
	Score    float64
	Rank     int
}

// NewLexicalIndex creates an empty BM25 index.
func NewLexicalIndex(log *logger.Logger) *LexicalIndex {
	return &LexicalIndex{logger: log}
}

// Rebuild replaces the index contents with the given documents.
// BM25 needs the whole corpus for IDF, so upserts rebuild rather than append.
func (idx *LexicalIndex) Rebuild(docs []Document) error {
	if idx == nil {
		return nil
	}

	idx.mu.Lock()
	defer idx.mu.Unlock()

	idx.docs = docs
	idx.okapi = nil
	idx.initialized = true

	if len(docs) == 0 {
		idx.docTokens = nil
		return nil
	}

	corpus := make([]string, len(docs))
	idx.docTokens = make([]map[string]struct{}, len(docs))
	for i, d := range docs {
		corpus[i] = d.Content()
		tokens := make(map[string]struct{})
		for _, tok := range tokenize(corpus[i]) {
			tokens[tok] = struct{}{}
		}
		idx.docTokens[i] = tokens
	}

	// k1=1.5, b=0.75 are standard BM25 parameters
	okapi, err := bm25.NewBM25Okapi(corpus, tokenize, 1.5, 0.75, nil)
	if err != nil {
		return fmt.Errorf("failed to create BM25 index: %w", err)
	}
	idx.okapi = okapi

	idx.logger.WithField("docs", len(corpus)).Debug("Lexical index rebuilt")
	return nil
}

// Search returns the topN best-matching documents: most query terms
// covered first, BM25 score as the tie-break.
func (idx *LexicalIndex) Search(query string, topN int) ([]LexicalResult, error) {
	if idx == nil || strings.TrimSpace(query) == "" {
		return nil, nil
	}

	idx.mu.RLock()
	defer idx.mu.RUnlock()

	if !idx.initialized || idx.okapi == nil {
		return nil, nil
	}

	tokens := tokenize(query)
	if len(tokens) == 0 {
		return nil, nil
	}

	scores, err := idx.okapi.GetScores(tokens)
	if err != nil {
		return nil, fmt.Errorf("BM25 scoring failed: %w", err)
	}

	// The scorer weighs repeated terms with a negative IDF and skips terms
	// saturating the corpus, so a matching document can score at or below
	// zero. Rank by how many query terms the document contains and use the
	// score only to break ties; the sign alone cannot gate matches.
	type scoredDoc struct {
		docID   int
		matched int
		score   float64
	}
	scored := make([]scoredDoc, 0, len(scores))
	for docID, score := range scores {
		matched := 0
		for _, tok := range tokens {
			if _, ok := idx.docTokens[docID][tok]; ok {
				matched++
			}
		}
		if matched > 0 {
			scored = append(scored, scoredDoc{docID: docID, matched: matched, score: score})
		}
	}

	sort.Slice(scored, func(i, j int) bool {
		if scored[i].matched != scored[j].matched {
			return scored[i].matched > scored[j].matched
		}
		if scored[i].score != scored[j].score {
			return scored[i].score > scored[j].score
		}
		return scored[i].docID < scored[j].docID
	})

	if topN > 0 && len(scored) > topN {
		scored = scored[:topN]
	}

	results := make([]LexicalResult, 0, len(scored))
	for i, sd := range scored {
		results = append(results, LexicalResult{
			Document: idx.docs[sd.docID],
			Score:    sd.score,
			Rank:     i + 1,
		})
	}

	return results, nil
}

// Count returns the number of indexed documents.
func (idx *LexicalIndex) Count() int {
	if idx == nil {
		return 0
	}
	idx.mu.RLock()
	defer idx.mu.RUnlock()
	return len(idx.docs)
}

// tokenize lowercases and splits on any non-letter/non-digit rune.
// Queries here are whitespace-delimited Latin or Devanagari text, so a
// simple field tokenizer is sufficient.
func tokenize(s string) []string {
	return strings.FieldsFunc(strings.ToLower(s), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
}

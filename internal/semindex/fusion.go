package semindex

import "sort"

const (
	// RRFConstant is the constant used in the RRF formula: 1 / (k + rank).
	// The standard value of 60 balances weight between top- and lower-ranked
	// documents.
	RRFConstant = 60

	// DefaultLexicalWeight is the BM25 share in RRF fusion; vector search
	// contributes the remainder.
	DefaultLexicalWeight = 0.4
)

// lexicalConfidence maps a BM25 rank position to a confidence proxy.
// BM25 scores are unbounded and query-dependent, so rank position stands in
// for similarity: rank 1 -> 0.95, rank 5 -> 0.80, rank 10 -> 0.67.
func lexicalConfidence(rank int) float32 {
	if rank <= 0 {
		return 0
	}
	return float32(1.0 / (1.0 + 0.05*float64(rank)))
}

// FuseRRF combines lexical and vector results using Reciprocal Rank Fusion.
//
// RRF formula: score(d) = sum_i(w_i / (k + rank_i)) over the sources that
// returned d. The fused similarity reported for a document is its vector
// similarity when available, else the rank-based lexical confidence.
func FuseRRF(lexical []LexicalResult, vector []Result, lexicalWeight float64, topN int) []Result {
	if lexicalWeight < 0 {
		lexicalWeight = 0
	}
	if lexicalWeight > 1 {
		lexicalWeight = 1
	}
	vectorWeight := 1.0 - lexicalWeight

	type fused struct {
		result Result
		score  float64
	}
	byID := make(map[string]*fused)

	for _, lr := range lexical {
		id := lr.Document.ID()
		score := lexicalWeight / float64(RRFConstant+lr.Rank)
		office := lr.Document.Office
		office.SourceConfidence = float64(lexicalConfidence(lr.Rank))
		byID[id] = &fused{
			result: Result{
				ServiceType: lr.Document.ServiceType,
				Office:      office,
				Similarity:  lexicalConfidence(lr.Rank),
			},
			score: score,
		}
	}

	for i, vr := range vector {
		rank := i + 1
		id := Document{ServiceType: vr.ServiceType, Office: vr.Office}.ID()
		score := vectorWeight / float64(RRFConstant+rank)
		if existing, ok := byID[id]; ok {
			existing.score += score
			// Prefer the true vector similarity over the lexical proxy.
			existing.result.Similarity = vr.Similarity
			existing.result.Office = vr.Office
		} else {
			byID[id] = &fused{result: vr, score: score}
		}
	}

	all := make([]*fused, 0, len(byID))
	for _, f := range byID {
		all = append(all, f)
	}
	sort.Slice(all, func(i, j int) bool {
		if all[i].score != all[j].score {
			return all[i].score > all[j].score
		}
		return all[i].result.Similarity > all[j].result.Similarity
	})

	if topN > 0 && len(all) > topN {
		all = all[:topN]
	}

	results := make([]Result, len(all))
	for i, f := range all {
		results[i] = f.result
	}
	return results
}

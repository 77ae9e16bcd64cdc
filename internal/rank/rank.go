// Package rank normalizes and orders heterogeneous office candidates.
// Candidates from the semantic index, live discovery, and generic fallback
// are deduplicated by normalized name+address and ordered nearest-first.
package rank

import (
	"math"
	"sort"
	"strings"

	"github.com/janseva-labs/janseva-bot-go/internal/model"
	"github.com/janseva-labs/janseva-bot-go/internal/sliceutil"
)

const earthRadiusKm = 6371.0

// sourcePriority breaks confidence ties: live beats index beats generic.
var sourcePriority = map[model.SourceKind]int{
	model.SourceLive:    2,
	model.SourceIndex:   1,
	model.SourceGeneric: 0,
}

// Ranker orders candidate offices by proximity and removes duplicates.
// Stateless with respect to a single call; safe for concurrent use.
type Ranker struct{}

// New creates a new Ranker.
func New() *Ranker {
	return &Ranker{}
}

// Rank deduplicates the candidates and orders them ascending by great-circle
// distance from origin. Candidates without coordinates (or when origin is
// nil) sort after those with coordinates, preserving their relative input
// order. Travel time is never a sort key.
//
// Ranking an already-ranked, deduplicated list returns the same order.
func (r *Ranker) Rank(candidates []model.CandidateOffice, origin *model.Coordinates) []model.CandidateOffice {
	deduped := sliceutil.DeduplicateBest(candidates, compositeKey, betterCandidate)

	// Attach distances where both ends have coordinates.
	ranked := make([]model.CandidateOffice, len(deduped))
	copy(ranked, deduped)
	for i := range ranked {
		if origin != nil && ranked[i].Coordinates != nil {
			d := Haversine(*origin, *ranked[i].Coordinates)
			ranked[i].DistanceKm = &d
		}
	}

	sort.SliceStable(ranked, func(i, j int) bool {
		di, dj := ranked[i].DistanceKm, ranked[j].DistanceKm
		switch {
		case di != nil && dj != nil:
			return *di < *dj
		case di != nil:
			return true // coordinates sort before coordinate-less
		default:
			return false
		}
	})

	return ranked
}

// compositeKey builds the dedup key: normalized name + normalized address,
// case-insensitive with whitespace collapsed.
func compositeKey(c model.CandidateOffice) string {
	return normalize(c.Name) + "|" + normalize(c.Address)
}

// betterCandidate reports whether a should replace b among duplicates:
// higher sourceConfidence wins, ties broken by source kind priority.
func betterCandidate(a, b model.CandidateOffice) bool {
	if a.SourceConfidence != b.SourceConfidence {
		return a.SourceConfidence > b.SourceConfidence
	}
	return sourcePriority[a.SourceKind] > sourcePriority[b.SourceKind]
}

// normalize lowercases and collapses all whitespace runs to single spaces.
func normalize(s string) string {
	return strings.Join(strings.Fields(strings.ToLower(s)), " ")
}

// Haversine computes the great-circle distance between two coordinate
// pairs in kilometers.
func Haversine(a, b model.Coordinates) float64 {
	lat1 := a.Lat * math.Pi / 180
	lat2 := b.Lat * math.Pi / 180
	dLat := (b.Lat - a.Lat) * math.Pi / 180
	dLon := (b.Lon - a.Lon) * math.Pi / 180

	h := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(lat1)*math.Cos(lat2)*math.Sin(dLon/2)*math.Sin(dLon/2)

	return 2 * earthRadiusKm * math.Asin(math.Sqrt(h))
}

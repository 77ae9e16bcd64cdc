// Package model defines the shared domain types for the query resolution
// pipeline: user profiles, service queries, candidate offices, and the
// recommendation shape the response assembler consumes.
package model

import "time"

// UserProfile holds the stored identity and location of a citizen.
// The pipeline only reads profiles; mutations happen through the
// conversation state machine's onboarding and profile-update flows.
type UserProfile struct {
	UserID             string
	Platform           string
	Name               string
	Address            string
	City               string
	State              string
	Language           string // BCP 47 tag, e.g. "en", "hi", "mr"
	OnboardingComplete bool
	UpdatedAt          time.Time
}

// Complete reports whether every onboarding field is filled.
// OnboardingComplete must never be true while this is false.
func (p *UserProfile) Complete() bool {
	return p.Name != "" && p.Address != "" && p.City != "" && p.State != "" && p.Language != ""
}

// EntityKind classifies an extracted query entity.
type EntityKind string

const (
	EntityDocumentType EntityKind = "document_type"
	EntityLocation     EntityKind = "location"
	EntityDate         EntityKind = "date"
	EntityPersonName   EntityKind = "person_name"
)

// Entity is a typed key/value pair extracted from the query text.
type Entity struct {
	Kind  EntityKind
	Value string
}

// Intent is the extracted service category with a confidence score.
type Intent struct {
	Category   string  // e.g. "passport renewal", "ration card"
	Confidence float64 // [0,1]
}

// ServiceQuery is the normalized inbound query. Immutable once constructed;
// the pipeline consumes it and never mutates it.
type ServiceQuery struct {
	Text     string
	Language string // BCP 47 tag carried from detection/transcription
	Intent   Intent
	Entities []Entity
}

// Entity returns the value of the first entity of the given kind, or "".
func (q *ServiceQuery) Entity(kind EntityKind) string {
	for _, e := range q.Entities {
		if e.Kind == kind {
			return e.Value
		}
	}
	return ""
}

// SourceKind tags where a candidate office came from.
type SourceKind string

const (
	// SourceIndex marks a candidate retrieved from the semantic index.
	SourceIndex SourceKind = "index"
	// SourceLive marks a candidate retrieved from live place search.
	SourceLive SourceKind = "live"
	// SourceGeneric marks a candidate synthesized by a generic AI provider.
	// Generic candidates never carry coordinates and always carry a disclaimer.
	SourceGeneric SourceKind = "generic"
)

// Coordinates is a WGS84 coordinate pair.
type Coordinates struct {
	Lat float64
	Lon float64
}

// Timings holds opening hours as display strings per day group.
type Timings struct {
	Weekday  string
	Saturday string
	Sunday   string
	Holiday  string
}

// Empty reports whether no timing information is known.
func (t Timings) Empty() bool {
	return t.Weekday == "" && t.Saturday == "" && t.Sunday == "" && t.Holiday == ""
}

// CandidateOffice is the unified office shape regardless of source.
type CandidateOffice struct {
	Name             string
	Address          string
	City             string
	State            string
	Phone            string // optional
	Timings          Timings
	Coordinates      *Coordinates // optional; always nil for generic candidates
	TravelTime       string       // optional, from live discovery; informational only
	DistanceKm       *float64     // filled by the ranker when origin and candidate have coordinates
	SourceConfidence float64      // [0,1]
	SourceKind       SourceKind
	Disclaimer       bool // mandatory true for generic candidates
}

// Provenance identifies which resolution stage produced a recommendation.
type Provenance string

const (
	ProvenanceIndexHigh  Provenance = "index-high"
	ProvenanceIndexBroad Provenance = "index-broad"
	ProvenanceLive       Provenance = "live"
	ProvenanceGeneric    Provenance = "generic"
)

// ServiceRecommendation is the resolved answer for a single query.
// Built fresh per query; never persisted.
type ServiceRecommendation struct {
	ServiceType       string
	Offices           []CandidateOffice // already ranked
	RequiredDocuments []string
	ProcessingTime    string
	Notes             string
	Provenance        Provenance
}

// HasGenericCandidate reports whether any office was synthesized by a
// generic provider, which makes the disclaimer mandatory in the response.
func (r *ServiceRecommendation) HasGenericCandidate() bool {
	for _, o := range r.Offices {
		if o.SourceKind == SourceGeneric {
			return true
		}
	}
	return false
}

// RawPlace is an unvalidated record from the live place-search collaborator.
type RawPlace struct {
	Name       string
	Address    string
	City       string
	State      string
	Phone      string
	Lat        float64
	Lon        float64
	HasCoords  bool
	Timings    Timings
	TravelTime string
}

// CacheEntry stores raw live-search results under a serviceType|address key.
type CacheEntry struct {
	Key      string     `json:"key"`
	StoredAt time.Time  `json:"stored_at"`
	Places   []RawPlace `json:"places"`
}

// OutgoingMessage is one platform-ready message unit. The transport layer
// guarantees delivery order; this core only guarantees emission order.
type OutgoingMessage struct {
	Text string
}

// Capabilities holds platform formatting capability flags passed in by the
// transport caller. Presentation concern only.
type Capabilities struct {
	Bold bool // platform renders *text* emphasis markers
}

// Package pipeline implements the cascading query resolution: semantic
// index at high confidence, semantic index at broad confidence, live
// discovery, then the generic AI fallback. The first stage that produces a
// usable recommendation wins; stage failures and timeouts fall through to
// the next stage, and only total exhaustion surfaces as an error.
package pipeline

import (
	"context"
	"errors"
	"time"

	"github.com/janseva-labs/janseva-bot-go/internal/cache"
	"github.com/janseva-labs/janseva-bot-go/internal/catalog"
	apperrors "github.com/janseva-labs/janseva-bot-go/internal/errors"
	"github.com/janseva-labs/janseva-bot-go/internal/genai"
	"github.com/janseva-labs/janseva-bot-go/internal/logger"
	"github.com/janseva-labs/janseva-bot-go/internal/metrics"
	"github.com/janseva-labs/janseva-bot-go/internal/model"
	"github.com/janseva-labs/janseva-bot-go/internal/rank"
	"github.com/janseva-labs/janseva-bot-go/internal/semindex"
)

// liveSourceConfidence is assigned to candidates from live discovery; the
// place search returns no calibrated score.
const liveSourceConfidence = 0.9

// Searcher is the semantic index surface the pipeline needs.
type Searcher interface {
	Search(ctx context.Context, query string, topK int, minSimilarity float32) ([]semindex.Result, error)
	Upsert(ctx context.Context, docs []semindex.Document) error
}

// Discoverer is the live discovery surface.
type Discoverer interface {
	Discover(ctx context.Context, officeQuery, address, city, state string) ([]model.RawPlace, error)
	Geocode(ctx context.Context, address string) (*model.Coordinates, error)
}

// LiveCache is the live-search result cache surface.
type LiveCache interface {
	Get(ctx context.Context, key string) (*model.CacheEntry, error)
	Put(ctx context.Context, key string, places []model.RawPlace) error
	Invalidate(ctx context.Context, key string) error
}

// Fallback is the generic AI provider race.
type Fallback interface {
	Complete(ctx context.Context, prompt, language string) (*genai.Completion, error)
}

// Config holds the cascade tuning knobs.
type Config struct {
	// HighThreshold gates the first semantic stage.
	HighThreshold float32
	// BroadThreshold gates the second semantic stage. Always <= HighThreshold.
	BroadThreshold float32
	// TopK caps candidates per semantic search.
	TopK int

	// Per-stage timeouts. A stage hitting its timeout counts as a miss,
	// not a failure.
	SemanticTimeout  time.Duration
	DiscoveryTimeout time.Duration
	FallbackTimeout  time.Duration
}

// Pipeline runs the resolution cascade. All collaborators are optional in
// the sense that a nil or failing one only disables its stage.
type Pipeline struct {
	cfg       Config
	index     Searcher
	discovery Discoverer
	cache     LiveCache
	fallback  Fallback
	ranker    *rank.Ranker
	metrics   *metrics.Metrics
	log       *logger.Logger
}

// New creates the pipeline.
func New(cfg Config, index Searcher, discovery Discoverer, liveCache LiveCache, fallback Fallback, m *metrics.Metrics, log *logger.Logger) *Pipeline {
	return &Pipeline{
		cfg:       cfg,
		index:     index,
		discovery: discovery,
		cache:     liveCache,
		fallback:  fallback,
		ranker:    rank.New(),
		metrics:   m,
		log:       log.WithModule("pipeline"),
	}
}

// Resolve runs the cascade for one query. The returned recommendation is
// built fresh; ErrResolutionExhausted is the only terminal error.
func (p *Pipeline) Resolve(ctx context.Context, query model.ServiceQuery, profile model.UserProfile) (*model.ServiceRecommendation, error) {
	log := p.log.WithUser(profile.UserID)

	// The origin geocode is an upstream call. It runs at most once per
	// query, and only when a stage produced candidates with coordinates
	// to rank by; an index-only resolution makes no discovery calls.
	var (
		origin   *model.Coordinates
		geocoded bool
	)
	originOf := func(ctx context.Context) *model.Coordinates {
		if !geocoded {
			geocoded = true
			origin = p.geocodeOrigin(ctx, profile)
		}
		return origin
	}

	stages := []struct {
		name string
		run  func(context.Context, model.ServiceQuery, model.UserProfile, originFunc) (*model.ServiceRecommendation, error)
	}{
		{string(model.ProvenanceIndexHigh), p.semanticHigh},
		{string(model.ProvenanceIndexBroad), p.semanticBroad},
		{string(model.ProvenanceLive), p.live},
		{string(model.ProvenanceGeneric), p.generic},
	}

	for _, stage := range stages {
		start := time.Now()
		rec, err := stage.run(ctx, query, profile, originOf)

		switch {
		case err == nil && rec != nil:
			p.metrics.RecordStage(stage.name, "hit", start)
			p.metrics.RecordResolution(string(rec.Provenance))
			log.WithStage(stage.name).
				WithField("offices", len(rec.Offices)).
				WithField("duration_ms", time.Since(start).Milliseconds()).
				Info("query resolved")
			return rec, nil

		case err == nil:
			p.metrics.RecordStage(stage.name, "empty", start)

		case errors.Is(err, context.DeadlineExceeded) || errors.Is(err, apperrors.ErrTimeout):
			p.metrics.RecordStage(stage.name, "timeout", start)
			log.WithStage(stage.name).Warn("stage timed out, cascading")

		case apperrors.IsRecoverable(err):
			p.metrics.RecordStage(stage.name, "error", start)
			log.WithStage(stage.name).WithError(err).Warn("stage failed, cascading")

		default:
			// Even unexpected failures cascade; only exhaustion is terminal.
			p.metrics.RecordStage(stage.name, "error", start)
			log.WithStage(stage.name).WithError(err).Error("stage failed unexpectedly, cascading")
		}

		if ctx.Err() != nil {
			break
		}
	}

	p.metrics.RecordResolution("exhausted")
	return nil, apperrors.ErrResolutionExhausted
}

// originFunc lazily resolves the user's coordinates for distance ranking.
type originFunc func(context.Context) *model.Coordinates

// geocodeOrigin resolves the user's address for distance ranking. Failure
// just means candidates rank without distance.
func (p *Pipeline) geocodeOrigin(ctx context.Context, profile model.UserProfile) *model.Coordinates {
	if p.discovery == nil || profile.Address == "" {
		return nil
	}

	geoCtx, cancel := context.WithTimeout(ctx, p.cfg.DiscoveryTimeout)
	defer cancel()

	origin, err := p.discovery.Geocode(geoCtx, profile.Address+", "+profile.City+", "+profile.State)
	if err != nil {
		p.log.WithError(err).Debug("origin geocode failed")
		return nil
	}
	return origin
}

func (p *Pipeline) semanticHigh(ctx context.Context, query model.ServiceQuery, profile model.UserProfile, originOf originFunc) (*model.ServiceRecommendation, error) {
	return p.semantic(ctx, query, profile, originOf, p.cfg.HighThreshold, model.ProvenanceIndexHigh)
}

func (p *Pipeline) semanticBroad(ctx context.Context, query model.ServiceQuery, profile model.UserProfile, originOf originFunc) (*model.ServiceRecommendation, error) {
	return p.semantic(ctx, query, profile, originOf, p.cfg.BroadThreshold, model.ProvenanceIndexBroad)
}

func (p *Pipeline) semantic(ctx context.Context, query model.ServiceQuery, profile model.UserProfile, originOf originFunc, threshold float32, provenance model.Provenance) (*model.ServiceRecommendation, error) {
	if p.index == nil {
		return nil, nil
	}

	searchCtx, cancel := context.WithTimeout(ctx, p.cfg.SemanticTimeout)
	defer cancel()

	searchText := query.Text
	if profile.City != "" {
		searchText += " " + profile.City
	}

	results, err := p.index.Search(searchCtx, searchText, p.cfg.TopK, threshold)
	if err != nil {
		return nil, apperrors.NewDataSourceError("semantic-index", err)
	}
	if len(results) == 0 {
		return nil, nil
	}

	candidates := make([]model.CandidateOffice, 0, len(results))
	for _, r := range results {
		candidates = append(candidates, r.Office)
	}

	return p.recommendation(ctx, query, candidates, originOf, provenance), nil
}

func (p *Pipeline) live(ctx context.Context, query model.ServiceQuery, profile model.UserProfile, originOf originFunc) (*model.ServiceRecommendation, error) {
	if p.discovery == nil {
		return nil, nil
	}

	liveCtx, cancel := context.WithTimeout(ctx, p.cfg.DiscoveryTimeout)
	defer cancel()

	serviceType := p.serviceType(query)
	key := cache.Key(serviceType, profile.Address)

	if p.cache != nil {
		if entry, err := p.cache.Get(liveCtx, key); err == nil {
			p.metrics.RecordCacheHit("live")
			return p.liveRecommendation(ctx, query, entry.Places, originOf), nil
		}
		p.metrics.RecordCacheMiss("live")
	}

	officeQuery := serviceType
	if svc, ok := catalog.Lookup(query.Intent.Category); ok {
		officeQuery = svc.OfficeQuery
	}

	places, err := p.discovery.Discover(liveCtx, officeQuery, profile.Address, profile.City, profile.State)
	if err != nil {
		return nil, err
	}
	if len(places) == 0 {
		return nil, nil
	}

	if p.cache != nil {
		if err := p.cache.Put(liveCtx, key, places); err != nil {
			p.log.WithError(err).Warn("live cache put failed")
		}
	}

	rec := p.liveRecommendation(ctx, query, places, originOf)
	p.feedIndex(serviceType, key, places)
	return rec, nil
}

// feedIndex pushes fresh live results into the semantic index in the
// background and then invalidates the raw cache entry, so the next
// identical query is served by the index. Fire and forget: the user's
// answer never waits on indexing.
func (p *Pipeline) feedIndex(serviceType, key string, places []model.RawPlace) {
	if p.index == nil {
		return
	}

	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
		defer cancel()

		docs := semindex.DocumentsFromPlaces(serviceType, places)
		if err := p.index.Upsert(ctx, docs); err != nil {
			p.metrics.RecordIndexUpsert("error")
			p.log.WithError(err).Warn("index feed failed")
			return
		}
		p.metrics.RecordIndexUpsert("success")

		if p.cache != nil {
			if err := p.cache.Invalidate(ctx, key); err != nil {
				p.log.WithError(err).Warn("cache invalidate after upsert failed")
			}
		}
	}()
}

func (p *Pipeline) generic(ctx context.Context, query model.ServiceQuery, profile model.UserProfile, _ originFunc) (*model.ServiceRecommendation, error) {
	if p.fallback == nil {
		return nil, nil
	}

	fbCtx, cancel := context.WithTimeout(ctx, p.cfg.FallbackTimeout)
	defer cancel()

	completion, err := p.fallback.Complete(fbCtx, genai.BuildFallbackPrompt(query, profile), profile.Language)
	if err != nil {
		return nil, err
	}

	rec := &model.ServiceRecommendation{
		ServiceType: p.serviceType(query),
		Notes:       completion.Text,
		Provenance:  model.ProvenanceGeneric,
	}
	p.enrich(rec, query)
	return rec, nil
}

// recommendation assembles a ranked recommendation from candidates. The
// origin is resolved only when a candidate carries coordinates; otherwise
// there is no distance to rank by and the geocode is skipped.
func (p *Pipeline) recommendation(ctx context.Context, query model.ServiceQuery, candidates []model.CandidateOffice, originOf originFunc, provenance model.Provenance) *model.ServiceRecommendation {
	var origin *model.Coordinates
	for _, c := range candidates {
		if c.Coordinates != nil {
			origin = originOf(ctx)
			break
		}
	}

	rec := &model.ServiceRecommendation{
		ServiceType: p.serviceType(query),
		Offices:     p.ranker.Rank(candidates, origin),
		Provenance:  provenance,
	}
	p.enrich(rec, query)
	return rec
}

func (p *Pipeline) liveRecommendation(ctx context.Context, query model.ServiceQuery, places []model.RawPlace, originOf originFunc) *model.ServiceRecommendation {
	candidates := make([]model.CandidateOffice, 0, len(places))
	for _, place := range places {
		office := model.CandidateOffice{
			Name:             place.Name,
			Address:          place.Address,
			City:             place.City,
			State:            place.State,
			Phone:            place.Phone,
			Timings:          place.Timings,
			TravelTime:       place.TravelTime,
			SourceConfidence: liveSourceConfidence,
			SourceKind:       model.SourceLive,
		}
		if place.HasCoords {
			office.Coordinates = &model.Coordinates{Lat: place.Lat, Lon: place.Lon}
		}
		candidates = append(candidates, office)
	}

	return p.recommendation(ctx, query, candidates, originOf, model.ProvenanceLive)
}

// enrich attaches catalog knowledge (documents, processing time) when the
// query's category is known.
func (p *Pipeline) enrich(rec *model.ServiceRecommendation, query model.ServiceQuery) {
	if svc, ok := catalog.Lookup(query.Intent.Category); ok {
		rec.RequiredDocuments = svc.Documents
		rec.ProcessingTime = svc.ProcessingTime
	}
}

// serviceType is the intent category when known, else the raw query text.
func (p *Pipeline) serviceType(query model.ServiceQuery) string {
	if query.Intent.Category != "" && query.Intent.Category != catalog.OtherCategory {
		return query.Intent.Category
	}
	return query.Text
}

package discovery

import (
	"context"
	"strings"
	"time"

	"golang.org/x/sync/singleflight"

	apperrors "github.com/janseva-labs/janseva-bot-go/internal/errors"
	"github.com/janseva-labs/janseva-bot-go/internal/logger"
	"github.com/janseva-labs/janseva-bot-go/internal/model"
)

// Options configures the discovery service.
type Options struct {
	// PlacesBaseURL is the Nominatim-compatible search endpoint.
	PlacesBaseURL string
	// DirectoryBaseURL is the directory listing to scrape as fallback.
	// Empty disables the fallback.
	DirectoryBaseURL string
	// Timeout bounds each HTTP request.
	Timeout time.Duration
	// RequestsPerMinute paces outbound requests.
	RequestsPerMinute float64
	// MaxRetries bounds retry attempts per request.
	MaxRetries int
}

// Service is the live discovery collaborator. Concurrent lookups for the
// same query/city collapse into one upstream call via singleflight.
type Service struct {
	places    *PlacesClient
	directory *DirectoryClient
	group     singleflight.Group
	log       *logger.Logger
}

// New creates the discovery service.
func New(opts Options, log *logger.Logger) *Service {
	if opts.Timeout <= 0 {
		opts.Timeout = 15 * time.Second
	}
	if opts.RequestsPerMinute <= 0 {
		opts.RequestsPerMinute = 60
	}
	if opts.MaxRetries <= 0 {
		opts.MaxRetries = 2
	}

	http := newHTTPClient(opts.Timeout, opts.RequestsPerMinute, opts.MaxRetries)

	return &Service{
		places:    NewPlacesClient(http, opts.PlacesBaseURL, log),
		directory: NewDirectoryClient(http, opts.DirectoryBaseURL, log),
		log:       log.WithModule("discovery"),
	}
}

// Discover finds offices for the query near the given address, city, and
// state. The place-search API is tried first; an empty result falls through
// to the directory scraper. Returned records are validated and cleaned.
func (s *Service) Discover(ctx context.Context, officeQuery, address, city, state string) ([]model.RawPlace, error) {
	key := strings.ToLower(officeQuery + "|" + address + "|" + city)

	result, err, shared := s.group.Do(key, func() (any, error) {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		default:
		}
		return s.discover(ctx, officeQuery, address, city, state)
	})
	if shared {
		s.log.WithField("key", key).Debug("discovery call shared")
	}
	if err != nil {
		return nil, err
	}

	places, ok := result.([]model.RawPlace)
	if !ok {
		return nil, apperrors.NewDataSourceError("live-search", apperrors.ErrNoResult)
	}
	return places, nil
}

func (s *Service) discover(ctx context.Context, officeQuery, address, city, state string) ([]model.RawPlace, error) {
	places, err := s.places.Search(ctx, officeQuery, address, city, state)
	if err != nil {
		s.log.WithError(err).Warn("place search failed, trying directory")
		places = nil
	}

	cleaned := ValidateAndClean(places)
	if len(cleaned) > 0 {
		return cleaned, nil
	}

	if s.directory.Enabled() {
		fallback, dirErr := s.directory.Search(ctx, officeQuery, city)
		if dirErr != nil {
			s.log.WithError(dirErr).Warn("directory fallback failed")
		} else if cleaned = ValidateAndClean(fallback); len(cleaned) > 0 {
			return cleaned, nil
		}
	}

	if err != nil {
		return nil, apperrors.NewDataSourceError("live-search", err)
	}
	return nil, nil
}

// Geocode resolves a free-form address to coordinates via the place-search
// API. A nil result without error means the address did not resolve.
func (s *Service) Geocode(ctx context.Context, address string) (*model.Coordinates, error) {
	coords, err := s.places.Geocode(ctx, address)
	if err != nil {
		return nil, apperrors.NewDataSourceError("live-search", err)
	}
	return coords, nil
}

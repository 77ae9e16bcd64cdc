package discovery

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/janseva-labs/janseva-bot-go/internal/logger"
	"github.com/janseva-labs/janseva-bot-go/internal/model"
)

// placesResultLimit caps how many places one search returns.
const placesResultLimit = 10

// PlacesClient queries an OSM Nominatim-compatible place-search API.
type PlacesClient struct {
	http    *httpClient
	baseURL string
	log     *logger.Logger
}

// NewPlacesClient creates a places client against the given base URL.
func NewPlacesClient(http *httpClient, baseURL string, log *logger.Logger) *PlacesClient {
	return &PlacesClient{
		http:    http,
		baseURL: strings.TrimRight(baseURL, "/"),
		log:     log.WithModule("discovery.places"),
	}
}

// placeResult is one record from the search endpoint.
type placeResult struct {
	Name        string `json:"name"`
	DisplayName string `json:"display_name"`
	Lat         string `json:"lat"`
	Lon         string `json:"lon"`
	Address     struct {
		City    string `json:"city"`
		Town    string `json:"town"`
		Village string `json:"village"`
		State   string `json:"state"`
	} `json:"address"`
	ExtraTags struct {
		Phone        string `json:"phone"`
		OpeningHours string `json:"opening_hours"`
	} `json:"extratags"`
}

// Search looks up offices matching the query near the given address, city,
// and state. The address narrows results to the user's neighbourhood
// rather than the whole city.
func (c *PlacesClient) Search(ctx context.Context, officeQuery, address, city, state string) ([]model.RawPlace, error) {
	query := officeQuery
	for _, part := range []string{address, city, state} {
		if part != "" {
			query += " " + part
		}
	}

	searchURL := fmt.Sprintf("%s/search?%s", c.baseURL, url.Values{
		"q":              {query},
		"format":         {"jsonv2"},
		"limit":          {strconv.Itoa(placesResultLimit)},
		"addressdetails": {"1"},
		"extratags":      {"1"},
		"countrycodes":   {"in"},
	}.Encode())

	var results []placeResult
	if err := c.http.getJSON(ctx, searchURL, &results); err != nil {
		return nil, fmt.Errorf("place search failed: %w", err)
	}

	places := make([]model.RawPlace, 0, len(results))
	for _, r := range results {
		place := model.RawPlace{
			Name:    r.Name,
			Address: r.DisplayName,
			City:    firstNonEmpty(r.Address.City, r.Address.Town, r.Address.Village),
			State:   r.Address.State,
			Phone:   r.ExtraTags.Phone,
		}
		if r.ExtraTags.OpeningHours != "" {
			place.Timings = model.Timings{Weekday: r.ExtraTags.OpeningHours}
		}

		lat, latErr := strconv.ParseFloat(r.Lat, 64)
		lon, lonErr := strconv.ParseFloat(r.Lon, 64)
		if latErr == nil && lonErr == nil {
			place.Lat = lat
			place.Lon = lon
			place.HasCoords = true
		}

		places = append(places, place)
	}

	c.log.WithField("query", query).WithField("results", len(places)).Debug("place search done")
	return places, nil
}

// Geocode resolves a free-form address to coordinates. Returns nil when the
// address cannot be resolved; callers treat a nil origin as "rank without
// distance".
func (c *PlacesClient) Geocode(ctx context.Context, address string) (*model.Coordinates, error) {
	if strings.TrimSpace(address) == "" {
		return nil, nil
	}

	searchURL := fmt.Sprintf("%s/search?%s", c.baseURL, url.Values{
		"q":            {address},
		"format":       {"jsonv2"},
		"limit":        {"1"},
		"countrycodes": {"in"},
	}.Encode())

	var results []placeResult
	if err := c.http.getJSON(ctx, searchURL, &results); err != nil {
		return nil, fmt.Errorf("geocode failed: %w", err)
	}
	if len(results) == 0 {
		return nil, nil
	}

	lat, latErr := strconv.ParseFloat(results[0].Lat, 64)
	lon, lonErr := strconv.ParseFloat(results[0].Lon, 64)
	if latErr != nil || lonErr != nil {
		return nil, nil
	}

	return &model.Coordinates{Lat: lat, Lon: lon}, nil
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

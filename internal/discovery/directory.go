package discovery

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/janseva-labs/janseva-bot-go/internal/logger"
	"github.com/janseva-labs/janseva-bot-go/internal/model"
)

// DirectoryClient scrapes a government office directory page. It is the
// secondary live source, used when the place-search API returns nothing.
// Directory listings rarely carry coordinates.
type DirectoryClient struct {
	http    *httpClient
	baseURL string
	log     *logger.Logger
}

// NewDirectoryClient creates a directory scraper against the given base URL.
// An empty baseURL disables the client.
func NewDirectoryClient(http *httpClient, baseURL string, log *logger.Logger) *DirectoryClient {
	return &DirectoryClient{
		http:    http,
		baseURL: strings.TrimRight(baseURL, "/"),
		log:     log.WithModule("discovery.directory"),
	}
}

// Enabled reports whether a directory URL is configured.
func (c *DirectoryClient) Enabled() bool {
	return c != nil && c.baseURL != ""
}

// Search scrapes the directory listing for offices matching the query.
// The expected markup is a list of .office-entry blocks with .office-name,
// .office-address, .office-phone, and .office-hours children.
func (c *DirectoryClient) Search(ctx context.Context, officeQuery, city string) ([]model.RawPlace, error) {
	if !c.Enabled() {
		return nil, nil
	}

	listURL := fmt.Sprintf("%s/offices?%s", c.baseURL, url.Values{
		"q":    {officeQuery},
		"city": {city},
	}.Encode())

	doc, err := c.http.getDocument(ctx, listURL)
	if err != nil {
		return nil, fmt.Errorf("directory fetch failed: %w", err)
	}

	var places []model.RawPlace
	doc.Find(".office-entry").Each(func(_ int, s *goquery.Selection) {
		place := model.RawPlace{
			Name:    strings.TrimSpace(s.Find(".office-name").First().Text()),
			Address: strings.TrimSpace(s.Find(".office-address").First().Text()),
			Phone:   strings.TrimSpace(s.Find(".office-phone").First().Text()),
			City:    city,
		}
		if hours := strings.TrimSpace(s.Find(".office-hours").First().Text()); hours != "" {
			place.Timings = model.Timings{Weekday: hours}
		}
		places = append(places, place)
	})

	c.log.WithField("query", officeQuery).WithField("results", len(places)).Debug("directory scrape done")
	return places, nil
}

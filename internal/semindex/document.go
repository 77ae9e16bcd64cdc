// Package semindex provides the semantic index of government-service office
// data. It combines chromem-go vector search with BM25 keyword search using
// Reciprocal Rank Fusion, and accepts idempotent upserts of office documents
// fed back from live discovery.
package semindex

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/janseva-labs/janseva-bot-go/internal/model"
)

// Document is one indexed office record for a service type.
type Document struct {
	ServiceType string
	Office      model.CandidateOffice
}

// ID returns the deterministic document identity. Upserting the same office
// for the same service type twice overwrites rather than duplicates.
func (d Document) ID() string {
	return normalize(d.ServiceType) + "|" + normalize(d.Office.Name) + "|" + normalize(d.Office.Address)
}

// Content renders the embeddable text for the document.
func (d Document) Content() string {
	parts := []string{d.ServiceType + " office", d.Office.Name, d.Office.Address, d.Office.City, d.Office.State}
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if strings.TrimSpace(p) != "" {
			out = append(out, p)
		}
	}
	return strings.Join(out, ", ")
}

// Metadata flattens the office into chromem's string map.
func (d Document) Metadata() map[string]string {
	md := map[string]string{
		"service_type": d.ServiceType,
		"name":         d.Office.Name,
		"address":      d.Office.Address,
		"city":         d.Office.City,
		"state":        d.Office.State,
		"phone":        d.Office.Phone,
		"weekday":      d.Office.Timings.Weekday,
		"saturday":     d.Office.Timings.Saturday,
		"sunday":       d.Office.Timings.Sunday,
		"holiday":      d.Office.Timings.Holiday,
	}
	if d.Office.Coordinates != nil {
		md["lat"] = strconv.FormatFloat(d.Office.Coordinates.Lat, 'f', -1, 64)
		md["lon"] = strconv.FormatFloat(d.Office.Coordinates.Lon, 'f', -1, 64)
	}
	return md
}

// officeFromMetadata rebuilds a candidate office from stored metadata.
// The similarity score becomes the sourceConfidence; sourceKind is index.
func officeFromMetadata(md map[string]string, similarity float32) model.CandidateOffice {
	office := model.CandidateOffice{
		Name:    md["name"],
		Address: md["address"],
		City:    md["city"],
		State:   md["state"],
		Phone:   md["phone"],
		Timings: model.Timings{
			Weekday:  md["weekday"],
			Saturday: md["saturday"],
			Sunday:   md["sunday"],
			Holiday:  md["holiday"],
		},
		SourceConfidence: float64(similarity),
		SourceKind:       model.SourceIndex,
	}

	if latStr, ok := md["lat"]; ok {
		if lonStr, ok := md["lon"]; ok {
			lat, latErr := strconv.ParseFloat(latStr, 64)
			lon, lonErr := strconv.ParseFloat(lonStr, 64)
			if latErr == nil && lonErr == nil {
				office.Coordinates = &model.Coordinates{Lat: lat, Lon: lon}
			}
		}
	}

	return office
}

// Result is one semantic search hit.
type Result struct {
	ServiceType string
	Office      model.CandidateOffice
	Similarity  float32
}

func normalize(s string) string {
	return strings.Join(strings.Fields(strings.ToLower(s)), " ")
}

// DocumentsFromPlaces converts validated live-search places into index
// documents for the given service type.
func DocumentsFromPlaces(serviceType string, places []model.RawPlace) []Document {
	docs := make([]Document, 0, len(places))
	for _, p := range places {
		office := model.CandidateOffice{
			Name:             p.Name,
			Address:          p.Address,
			City:             p.City,
			State:            p.State,
			Phone:            p.Phone,
			Timings:          p.Timings,
			SourceConfidence: 1.0,
			SourceKind:       model.SourceIndex,
		}
		if p.HasCoords {
			office.Coordinates = &model.Coordinates{Lat: p.Lat, Lon: p.Lon}
		}
		docs = append(docs, Document{ServiceType: serviceType, Office: office})
	}
	return docs
}

// String implements fmt.Stringer for debug logging.
func (d Document) String() string {
	return fmt.Sprintf("doc(%s)", d.ID())
}

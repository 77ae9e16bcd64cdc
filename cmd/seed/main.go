// Package main provides the index seeding tool. It loads a JSON file of
// known government offices and upserts them into the semantic index, so a
// fresh deployment can answer from the index before live discovery has fed
// anything back.
//
// Usage:
//
//	seed -file offices.json
//
// The file holds an array of office records grouped by service type:
//
//	[{"service_type": "passport", "offices": [{"name": "...", ...}]}]
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/janseva-labs/janseva-bot-go/internal/genai"
	"github.com/janseva-labs/janseva-bot-go/internal/logger"
	"github.com/janseva-labs/janseva-bot-go/internal/model"
	"github.com/janseva-labs/janseva-bot-go/internal/semindex"
)

var (
	fileFlag    = flag.String("file", "offices.json", "Path to the office records JSON file")
	dataDirFlag = flag.String("data-dir", "", "Data directory (defaults to JANSEVA_DATA_DIR or ./data)")
	timeoutFlag = flag.Duration("timeout", 10*time.Minute, "Overall seeding timeout")
)

// seedGroup is one service type with its offices.
type seedGroup struct {
	ServiceType string       `json:"service_type"`
	Offices     []seedOffice `json:"offices"`
}

// seedOffice is one office record in the seed file.
type seedOffice struct {
	Name     string   `json:"name"`
	Address  string   `json:"address"`
	City     string   `json:"city"`
	State    string   `json:"state"`
	Phone    string   `json:"phone,omitempty"`
	Weekday  string   `json:"weekday_hours,omitempty"`
	Saturday string   `json:"saturday_hours,omitempty"`
	Lat      *float64 `json:"lat,omitempty"`
	Lon      *float64 `json:"lon,omitempty"`
}

func main() {
	flag.Parse()

	log := logger.New(getEnv("JANSEVA_LOG_LEVEL", "info"))
	log.Info("Starting index seeding tool")

	apiKey := os.Getenv("JANSEVA_GEMINI_API_KEY")
	if apiKey == "" {
		log.Fatal("JANSEVA_GEMINI_API_KEY is required for embeddings")
	}

	dataDir := *dataDirFlag
	if dataDir == "" {
		dataDir = getEnv("JANSEVA_DATA_DIR", "./data")
	}
	indexDir := dataDir + "/index"

	groups, err := loadSeedFile(*fileFlag)
	if err != nil {
		log.WithError(err).Fatal("Failed to load seed file")
	}
	log.WithField("file", *fileFlag).
		WithField("service_types", len(groups)).
		Info("Seed file loaded")

	vectorDB, err := semindex.NewVectorDB(indexDir, genai.NewEmbeddingFunc(apiKey), log)
	if err != nil {
		log.WithError(err).Fatal("Failed to open vector index")
	}
	index := semindex.NewIndex(vectorDB, semindex.NewLexicalIndex(log), log)

	ctx, cancel := context.WithTimeout(context.Background(), *timeoutFlag)
	defer cancel()

	total := 0
	for _, group := range groups {
		docs := groupDocuments(group)
		if len(docs) == 0 {
			log.WithField("service_type", group.ServiceType).Warn("Group has no usable offices, skipping")
			continue
		}
		if err := index.Upsert(ctx, docs); err != nil {
			log.WithError(err).
				WithField("service_type", group.ServiceType).
				Fatal("Failed to upsert documents")
		}
		total += len(docs)
		log.WithField("service_type", group.ServiceType).
			WithField("offices", len(docs)).
			Info("Group indexed")
	}

	log.WithField("total", total).Info("Seeding complete")
	fmt.Printf("Indexed %d offices across %d service types\n", total, len(groups))
}

// loadSeedFile parses the JSON seed file.
func loadSeedFile(path string) ([]seedGroup, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %q: %w", path, err)
	}
	var groups []seedGroup
	if err := json.Unmarshal(data, &groups); err != nil {
		return nil, fmt.Errorf("parse %q: %w", path, err)
	}
	return groups, nil
}

// groupDocuments converts one seed group into index documents, dropping
// records without a name or address.
func groupDocuments(group seedGroup) []semindex.Document {
	docs := make([]semindex.Document, 0, len(group.Offices))
	for _, o := range group.Offices {
		if group.ServiceType == "" || o.Name == "" || o.Address == "" {
			continue
		}
		office := model.CandidateOffice{
			Name:    o.Name,
			Address: o.Address,
			City:    o.City,
			State:   o.State,
			Phone:   o.Phone,
			Timings: model.Timings{
				Weekday:  o.Weekday,
				Saturday: o.Saturday,
			},
			SourceConfidence: 1.0,
			SourceKind:       model.SourceIndex,
		}
		if o.Lat != nil && o.Lon != nil {
			office.Coordinates = &model.Coordinates{Lat: *o.Lat, Lon: *o.Lon}
		}
		docs = append(docs, semindex.Document{ServiceType: group.ServiceType, Office: office})
	}
	return docs
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

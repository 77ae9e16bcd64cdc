// Package catalog defines the supported citizen service categories along
// with the keywords, required documents, and typical processing times used
// to classify queries and enrich recommendations.
package catalog

import "strings"

// Service describes one supported service category.
type Service struct {
	// Category is the canonical category name used across the pipeline.
	Category string
	// Keywords match against normalized query tokens. All lowercase.
	Keywords []string
	// Documents are the usually required documents for the service.
	Documents []string
	// ProcessingTime is the typical end-to-end processing time as a
	// display string.
	ProcessingTime string
	// OfficeQuery is the search phrase used for index and live lookups,
	// e.g. "passport office" for a passport renewal query.
	OfficeQuery string
}

// OtherCategory is the catch-all category for unclassified queries.
const OtherCategory = "other"

// services is the built-in catalog. Order matters only for deterministic
// iteration in tests.
var services = []Service{
	{
		Category:       "passport",
		Keywords:       []string{"passport", "psk", "tatkal"},
		Documents:      []string{"Aadhaar card", "Proof of address", "Date of birth proof", "Passport photos"},
		ProcessingTime: "2-6 weeks (1 week for Tatkal)",
		OfficeQuery:    "passport seva kendra",
	},
	{
		Category:       "aadhaar",
		Keywords:       []string{"aadhaar", "aadhar", "uidai", "biometric"},
		Documents:      []string{"Proof of identity", "Proof of address", "Date of birth proof"},
		ProcessingTime: "up to 90 days for updates",
		OfficeQuery:    "aadhaar enrolment centre",
	},
	{
		Category:       "ration card",
		Keywords:       []string{"ration", "pds", "fair price"},
		Documents:      []string{"Aadhaar card", "Proof of residence", "Family member details", "Income certificate"},
		ProcessingTime: "15-30 days",
		OfficeQuery:    "ration card office tehsil",
	},
	{
		Category:       "driving licence",
		Keywords:       []string{"driving", "licence", "license", "rto", "vehicle", "learner"},
		Documents:      []string{"Aadhaar card", "Proof of address", "Age proof", "Passport photos", "Form 1A medical certificate"},
		ProcessingTime: "7-30 days after the test",
		OfficeQuery:    "regional transport office",
	},
	{
		Category:       "pan card",
		Keywords:       []string{"pan", "nsdl", "uti"},
		Documents:      []string{"Proof of identity", "Proof of address", "Date of birth proof", "Photograph"},
		ProcessingTime: "15-20 days",
		OfficeQuery:    "pan card centre",
	},
	{
		Category:       "voter id",
		Keywords:       []string{"voter", "epic", "election", "electoral"},
		Documents:      []string{"Proof of identity", "Proof of address", "Age proof", "Photograph"},
		ProcessingTime: "30-45 days",
		OfficeQuery:    "electoral registration office",
	},
	{
		Category:       "birth certificate",
		Keywords:       []string{"birth", "certificate"},
		Documents:      []string{"Hospital discharge summary", "Parents' identity proof", "Address proof"},
		ProcessingTime: "7-21 days",
		OfficeQuery:    "municipal corporation birth registration",
	},
	{
		Category:       "property registration",
		Keywords:       []string{"property", "registration", "stamp", "registry", "sale deed"},
		Documents:      []string{"Sale deed", "Identity proof of parties", "PAN card", "Property card", "Stamp duty receipt"},
		ProcessingTime: "same day to 7 days",
		OfficeQuery:    "sub registrar office",
	},
	{
		Category:       "income certificate",
		Keywords:       []string{"income", "caste", "domicile", "certificate", "tehsildar"},
		Documents:      []string{"Aadhaar card", "Proof of residence", "Salary slips or income affidavit", "School leaving certificate"},
		ProcessingTime: "15-30 days",
		OfficeQuery:    "tehsildar office setu kendra",
	},
	{
		Category:       "pension",
		Keywords:       []string{"pension", "epfo", "provident", "retirement"},
		Documents:      []string{"Aadhaar card", "Bank passbook", "Service certificate", "Life certificate"},
		ProcessingTime: "30-90 days",
		OfficeQuery:    "pension office epfo",
	},
}

// All returns every catalog service.
func All() []Service {
	out := make([]Service, len(services))
	copy(out, services)
	return out
}

// Categories returns every category name, with OtherCategory last.
func Categories() []string {
	out := make([]string, 0, len(services)+1)
	for _, s := range services {
		out = append(out, s.Category)
	}
	return append(out, OtherCategory)
}

// Lookup returns the service for a category name, matching
// case-insensitively. ok is false for unknown categories.
func Lookup(category string) (Service, bool) {
	needle := strings.ToLower(strings.TrimSpace(category))
	for _, s := range services {
		if s.Category == needle {
			return s, true
		}
	}
	return Service{}, false
}

// Classify scores the text against every service's keywords and returns the
// best category with a confidence in [0,1]. Unmatched text classifies as
// OtherCategory with zero confidence.
func Classify(text string) (string, float64) {
	tokens := strings.Fields(strings.ToLower(text))
	if len(tokens) == 0 {
		return OtherCategory, 0
	}

	tokenSet := make(map[string]bool, len(tokens))
	for _, tok := range tokens {
		tokenSet[strings.Trim(tok, ".,!?;:()\"'")] = true
	}

	bestCategory := OtherCategory
	bestHits := 0
	for _, s := range services {
		hits := 0
		for _, kw := range s.Keywords {
			if tokenSet[kw] {
				hits++
			}
		}
		if hits > bestHits {
			bestHits = hits
			bestCategory = s.Category
		}
	}

	if bestHits == 0 {
		return OtherCategory, 0
	}

	// One keyword hit is a weak signal; confidence grows with each
	// additional hit and saturates at 0.9.
	confidence := 0.5 + 0.2*float64(bestHits-1)
	if confidence > 0.9 {
		confidence = 0.9
	}
	return bestCategory, confidence
}

package discovery

import (
	"strings"
	"unicode"

	"github.com/janseva-labs/janseva-bot-go/internal/model"
)

// ValidateAndClean drops records missing a name or address and normalizes
// the remaining fields. Raw source data is never handed to the pipeline.
func ValidateAndClean(places []model.RawPlace) []model.RawPlace {
	cleaned := make([]model.RawPlace, 0, len(places))
	for _, p := range places {
		p.Name = collapseSpaces(p.Name)
		p.Address = collapseSpaces(p.Address)
		p.City = collapseSpaces(p.City)
		p.State = collapseSpaces(p.State)
		p.Phone = cleanPhone(p.Phone)
		p.TravelTime = collapseSpaces(p.TravelTime)

		if p.Name == "" || p.Address == "" {
			continue
		}
		cleaned = append(cleaned, p)
	}
	return cleaned
}

// collapseSpaces trims and folds runs of whitespace into single spaces.
func collapseSpaces(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// cleanPhone keeps digits, '+', and separators meaningful in Indian phone
// numbers. Anything left that is too short to dial is dropped.
func cleanPhone(s string) string {
	var b strings.Builder
	for _, r := range s {
		if unicode.IsDigit(r) || r == '+' || r == '-' || r == ' ' {
			b.WriteRune(r)
		}
	}
	phone := collapseSpaces(b.String())

	digits := 0
	for _, r := range phone {
		if unicode.IsDigit(r) {
			digits++
		}
	}
	if digits < 6 {
		return ""
	}
	return phone
}

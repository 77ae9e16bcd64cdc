package genai

import "strings"

// refusalMarkers are phrases indicating a provider declined to answer.
// An answer containing any of them fails the quality bar.
var refusalMarkers = []string{
	"i cannot help",
	"i can't help",
	"i cannot assist",
	"i can't assist",
	"i am unable to",
	"i'm unable to",
	"as an ai",
	"i cannot provide",
}

// QualityBar is the minimum bar a fallback answer must clear before the
// race accepts it.
type QualityBar struct {
	// MaxLength is the maximum accepted answer length in runes.
	MaxLength int
}

// Accept reports whether the answer text qualifies: non-empty, within the
// length bound, and free of explicit refusal markers.
func (q QualityBar) Accept(text string) bool {
	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return false
	}
	if q.MaxLength > 0 && len([]rune(trimmed)) > q.MaxLength {
		return false
	}

	lower := strings.ToLower(trimmed)
	for _, marker := range refusalMarkers {
		if strings.Contains(lower, marker) {
			return false
		}
	}
	return true
}

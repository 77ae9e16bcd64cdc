package genai

import (
	"fmt"
	"strings"

	"github.com/janseva-labs/janseva-bot-go/internal/model"
)

// languageNames maps BCP 47 tags to the name used inside prompts.
var languageNames = map[string]string{
	"en": "English",
	"hi": "Hindi",
	"mr": "Marathi",
}

// systemInstruction returns the system prompt shared by all providers.
// The answer language follows the user's profile language.
func systemInstruction(language string) string {
	name, ok := languageNames[language]
	if !ok {
		name = "English"
	}

	return fmt.Sprintf(`You are a helpful assistant for Indian citizens navigating government services.
Answer questions about government offices, required documents, fees, and procedures.
Be concise and practical. If you mention an office, include what the citizen should bring.
Never invent exact addresses, phone numbers, or timings you are not sure about.
Answer in %s.`, name)
}

// BuildFallbackPrompt renders the generic fallback prompt from the resolved
// query and the user's profile. It is used when no indexed or live office
// data could answer the question.
func BuildFallbackPrompt(query model.ServiceQuery, profile model.UserProfile) string {
	var b strings.Builder

	b.WriteString("A citizen asked the following question:\n")
	b.WriteString(query.Text)
	b.WriteString("\n\n")

	if query.Intent.Category != "" {
		fmt.Fprintf(&b, "The question is about: %s\n", query.Intent.Category)
	}
	if profile.City != "" || profile.State != "" {
		fmt.Fprintf(&b, "The citizen lives in %s.\n", joinLocation(profile.City, profile.State))
	}

	b.WriteString("\nProvide general guidance: which kind of office handles this, ")
	b.WriteString("what documents are usually required, and how the process typically works. ")
	b.WriteString("Do not fabricate specific office addresses or phone numbers.")

	return b.String()
}

// BuildIntentPrompt renders the intent-extraction prompt. The model is asked
// to answer with a single category word from the allowed set.
func BuildIntentPrompt(text string, categories []string) string {
	var b strings.Builder

	b.WriteString("Classify the citizen's question into exactly one of these service categories:\n")
	b.WriteString(strings.Join(categories, ", "))
	b.WriteString("\n\nQuestion:\n")
	b.WriteString(text)
	b.WriteString("\n\nAnswer with only the category name. If none fits, answer: other")

	return b.String()
}

func joinLocation(city, state string) string {
	switch {
	case city != "" && state != "":
		return city + ", " + state
	case city != "":
		return city
	default:
		return state
	}
}

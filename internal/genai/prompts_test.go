package genai

import (
	"strings"
	"testing"

	"github.com/janseva-labs/janseva-bot-go/internal/model"
)

func TestSystemInstruction_Language(t *testing.T) {
	if !strings.Contains(systemInstruction("hi"), "Hindi") {
		t.Error("hi instruction should name Hindi")
	}
	if !strings.Contains(systemInstruction("mr"), "Marathi") {
		t.Error("mr instruction should name Marathi")
	}
	if !strings.Contains(systemInstruction("unknown"), "English") {
		t.Error("unknown language should fall back to English")
	}
}

func TestBuildFallbackPrompt(t *testing.T) {
	query := model.ServiceQuery{
		Text:   "How do I renew my passport?",
		Intent: model.Intent{Category: "passport", Confidence: 0.9},
	}
	profile := model.UserProfile{City: "Pune", State: "Maharashtra"}

	prompt := BuildFallbackPrompt(query, profile)

	for _, want := range []string{"How do I renew my passport?", "passport", "Pune, Maharashtra"} {
		if !strings.Contains(prompt, want) {
			t.Errorf("prompt missing %q:\n%s", want, prompt)
		}
	}
}

func TestBuildFallbackPrompt_NoLocation(t *testing.T) {
	prompt := BuildFallbackPrompt(model.ServiceQuery{Text: "help"}, model.UserProfile{})
	if strings.Contains(prompt, "lives in") {
		t.Error("prompt should omit location line when profile has none")
	}
}

func TestBuildIntentPrompt(t *testing.T) {
	prompt := BuildIntentPrompt("ration card help", []string{"passport", "ration card", "other"})
	if !strings.Contains(prompt, "ration card help") || !strings.Contains(prompt, "passport, ration card, other") {
		t.Errorf("prompt missing question or categories:\n%s", prompt)
	}
}

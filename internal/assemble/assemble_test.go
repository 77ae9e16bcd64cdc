package assemble

import (
	"strings"
	"testing"

	"github.com/janseva-labs/janseva-bot-go/internal/i18n"
	"github.com/janseva-labs/janseva-bot-go/internal/model"
)

func km(v float64) *float64 { return &v }

func sampleRecommendation() *model.ServiceRecommendation {
	return &model.ServiceRecommendation{
		ServiceType:       "passport",
		RequiredDocuments: []string{"Aadhaar card", "Proof of address"},
		ProcessingTime:    "2-6 weeks",
		Provenance:        model.ProvenanceLive,
		Offices: []model.CandidateOffice{
			{
				Name:       "Passport Seva Kendra",
				Address:    "Mundhwa Road, Pune",
				Phone:      "+91 20 2605 1000",
				Timings:    model.Timings{Weekday: "Mo-Fr 09:30-16:30"},
				DistanceKm: km(3.2),
				SourceKind: model.SourceLive,
			},
			{
				Name:       "Passport Office Mumbai",
				Address:    "Worli, Mumbai",
				SourceKind: model.SourceLive,
			},
		},
	}
}

func TestAssemble_MessageCount(t *testing.T) {
	messages := Assemble(sampleRecommendation(), "en", model.Capabilities{})
	if len(messages) != 3 {
		t.Fatalf("messages = %d, want 3 (main + one per office)", len(messages))
	}
}

func TestAssemble_MainMessageContent(t *testing.T) {
	messages := Assemble(sampleRecommendation(), "en", model.Capabilities{})
	main := messages[0].Text

	for _, want := range []string{"passport", "Aadhaar card", "2-6 weeks"} {
		if !strings.Contains(main, want) {
			t.Errorf("main message missing %q:\n%s", want, main)
		}
	}
	if strings.Contains(main, i18n.T("en", i18n.KeyDisclaimer)) {
		t.Error("live recommendation should not carry the disclaimer")
	}
}

func TestAssemble_OfficeMessageContent(t *testing.T) {
	messages := Assemble(sampleRecommendation(), "en", model.Capabilities{})
	office := messages[1].Text

	for _, want := range []string{"1. Passport Seva Kendra", "Mundhwa Road", "+91 20 2605 1000", "Mo-Fr 09:30-16:30", "3.2 km"} {
		if !strings.Contains(office, want) {
			t.Errorf("office message missing %q:\n%s", want, office)
		}
	}

	second := messages[2].Text
	if strings.Contains(second, "km") {
		t.Error("office without distance should not print one")
	}
}

func TestAssemble_GenericDisclaimer(t *testing.T) {
	rec := &model.ServiceRecommendation{
		ServiceType: "passport",
		Provenance:  model.ProvenanceGeneric,
		Offices: []model.CandidateOffice{
			{Name: "Regional Passport Office", Address: "Ask locally", SourceKind: model.SourceGeneric, Disclaimer: true},
		},
	}

	messages := Assemble(rec, "en", model.Capabilities{})
	disclaimer := i18n.T("en", i18n.KeyDisclaimer)
	if !strings.Contains(messages[0].Text, disclaimer) {
		t.Error("main message must carry the disclaimer for generic candidates")
	}
	if !strings.Contains(messages[1].Text, disclaimer) {
		t.Error("generic office message must carry the disclaimer")
	}
}

func TestAssemble_ZeroOffices(t *testing.T) {
	rec := &model.ServiceRecommendation{
		ServiceType:    "pension",
		Notes:          "General pension guidance here.",
		Provenance:     model.ProvenanceGeneric,
		ProcessingTime: "30-90 days",
	}

	messages := Assemble(rec, "en", model.Capabilities{})
	if len(messages) != 1 {
		t.Fatalf("messages = %d, want single notice", len(messages))
	}
	text := messages[0].Text
	if !strings.Contains(text, i18n.T("en", i18n.KeyNoOffices)) {
		t.Error("notice should explain no offices were found")
	}
	if !strings.Contains(text, "General pension guidance here.") {
		t.Error("notice should carry the notes")
	}
	if !strings.Contains(text, i18n.T("en", i18n.KeyDisclaimer)) {
		t.Error("generic provenance notice should carry the disclaimer")
	}
}

func TestAssemble_BoldCapability(t *testing.T) {
	withBold := Assemble(sampleRecommendation(), "en", model.Capabilities{Bold: true})
	if !strings.Contains(withBold[0].Text, "*passport*") {
		t.Error("bold-capable platform should get emphasis markers")
	}
	if !strings.Contains(withBold[1].Text, "*Passport Seva Kendra*") {
		t.Error("office name should carry emphasis markers")
	}
	if !strings.Contains(withBold[1].Text, "*Mo-Fr 09:30-16:30*") {
		t.Error("office hours should carry emphasis markers")
	}

	plain := Assemble(sampleRecommendation(), "en", model.Capabilities{})
	if strings.Contains(plain[0].Text, "*passport*") {
		t.Error("plain platform should not get emphasis markers")
	}
}

func TestAssemble_Localized(t *testing.T) {
	messages := Assemble(sampleRecommendation(), "hi", model.Capabilities{})
	if !strings.Contains(messages[0].Text, i18n.T("hi", i18n.KeyDocumentsLabel)) {
		t.Error("labels should follow the profile language")
	}
}

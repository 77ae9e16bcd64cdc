// Package assemble turns a resolved service recommendation into the ordered
// list of outgoing messages: one main message followed by one message per
// office. Presentation only; it never filters or reorders candidates.
package assemble

import (
	"fmt"
	"strings"

	"github.com/janseva-labs/janseva-bot-go/internal/i18n"
	"github.com/janseva-labs/janseva-bot-go/internal/model"
)

// Assemble renders the recommendation for the user's language and the
// platform's formatting capabilities. With N offices it emits N+1 messages;
// with none it emits a single notice carrying whatever guidance exists.
func Assemble(rec *model.ServiceRecommendation, lang string, caps model.Capabilities) []model.OutgoingMessage {
	lang = i18n.Match(lang)

	if len(rec.Offices) == 0 {
		return []model.OutgoingMessage{{Text: noOfficesMessage(rec, lang, caps)}}
	}

	messages := make([]model.OutgoingMessage, 0, len(rec.Offices)+1)
	messages = append(messages, model.OutgoingMessage{Text: mainMessage(rec, lang, caps)})
	for i, office := range rec.Offices {
		messages = append(messages, model.OutgoingMessage{Text: officeMessage(office, i+1, lang, caps)})
	}
	return messages
}

func mainMessage(rec *model.ServiceRecommendation, lang string, caps model.Capabilities) string {
	var b strings.Builder

	b.WriteString(bold(rec.ServiceType, caps))
	b.WriteString("\n")
	b.WriteString(i18n.T(lang, i18n.KeyOfficesIntro))

	if len(rec.RequiredDocuments) > 0 {
		b.WriteString("\n\n")
		b.WriteString(bold(i18n.T(lang, i18n.KeyDocumentsLabel), caps))
		b.WriteString(":")
		for _, doc := range rec.RequiredDocuments {
			b.WriteString("\n- ")
			b.WriteString(doc)
		}
	}

	if rec.ProcessingTime != "" {
		b.WriteString("\n\n")
		b.WriteString(bold(i18n.T(lang, i18n.KeyTimeLabel), caps))
		b.WriteString(": ")
		b.WriteString(rec.ProcessingTime)
	}

	if rec.Notes != "" {
		b.WriteString("\n\n")
		b.WriteString(rec.Notes)
	}

	if rec.HasGenericCandidate() {
		b.WriteString("\n\n")
		b.WriteString(i18n.T(lang, i18n.KeyDisclaimer))
	}

	return b.String()
}

func officeMessage(office model.CandidateOffice, position int, lang string, caps model.Capabilities) string {
	var b strings.Builder

	fmt.Fprintf(&b, "%d. %s", position, bold(office.Name, caps))

	b.WriteString("\n")
	b.WriteString(i18n.T(lang, i18n.KeyAddressLabel))
	b.WriteString(": ")
	b.WriteString(office.Address)
	if office.City != "" && !strings.Contains(office.Address, office.City) {
		b.WriteString(", ")
		b.WriteString(office.City)
	}

	if office.Phone != "" {
		b.WriteString("\n")
		b.WriteString(i18n.T(lang, i18n.KeyPhoneLabel))
		b.WriteString(": ")
		b.WriteString(office.Phone)
	}

	if !office.Timings.Empty() {
		b.WriteString("\n")
		b.WriteString(i18n.T(lang, i18n.KeyTimingsLabel))
		b.WriteString(": ")
		b.WriteString(bold(formatTimings(office.Timings), caps))
	}

	if office.DistanceKm != nil {
		b.WriteString("\n")
		b.WriteString(i18n.T(lang, i18n.KeyDistanceLabel))
		fmt.Fprintf(&b, ": %.1f km", *office.DistanceKm)
	}

	if office.TravelTime != "" {
		b.WriteString("\n")
		b.WriteString(i18n.T(lang, i18n.KeyTravelLabel))
		b.WriteString(": ")
		b.WriteString(office.TravelTime)
	}

	if office.Disclaimer {
		b.WriteString("\n")
		b.WriteString(i18n.T(lang, i18n.KeyDisclaimer))
	}

	return b.String()
}

func noOfficesMessage(rec *model.ServiceRecommendation, lang string, caps model.Capabilities) string {
	var b strings.Builder

	b.WriteString(i18n.T(lang, i18n.KeyNoOffices))

	if len(rec.RequiredDocuments) > 0 {
		b.WriteString("\n\n")
		b.WriteString(bold(i18n.T(lang, i18n.KeyDocumentsLabel), caps))
		b.WriteString(":")
		for _, doc := range rec.RequiredDocuments {
			b.WriteString("\n- ")
			b.WriteString(doc)
		}
	}

	if rec.ProcessingTime != "" {
		b.WriteString("\n\n")
		b.WriteString(bold(i18n.T(lang, i18n.KeyTimeLabel), caps))
		b.WriteString(": ")
		b.WriteString(rec.ProcessingTime)
	}

	if rec.Notes != "" {
		b.WriteString("\n\n")
		b.WriteString(rec.Notes)
	}

	if rec.Provenance == model.ProvenanceGeneric {
		b.WriteString("\n\n")
		b.WriteString(i18n.T(lang, i18n.KeyDisclaimer))
	}

	return b.String()
}

// bold wraps text in emphasis markers when the platform renders them.
func bold(text string, caps model.Capabilities) string {
	if !caps.Bold || text == "" {
		return text
	}
	return "*" + text + "*"
}

func formatTimings(t model.Timings) string {
	var parts []string
	if t.Weekday != "" {
		parts = append(parts, t.Weekday)
	}
	if t.Saturday != "" {
		parts = append(parts, "Sat: "+t.Saturday)
	}
	if t.Sunday != "" {
		parts = append(parts, "Sun: "+t.Sunday)
	}
	if t.Holiday != "" {
		parts = append(parts, "Holidays: "+t.Holiday)
	}
	return strings.Join(parts, "; ")
}

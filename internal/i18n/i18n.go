// Package i18n provides the localized user-facing strings in English,
// Hindi, and Marathi. Keys are stable identifiers; the transport and the
// response assembler never hardcode user-visible text.
package i18n

import (
	"golang.org/x/text/language"
)

// supported are the languages users can pick during onboarding. English is
// first so it wins as the fallback.
var supported = []language.Tag{
	language.English,
	language.Hindi,
	language.Marathi,
}

var matcher = language.NewMatcher(supported)

// Match normalizes any BCP 47 tag to a supported language code. Unknown or
// unparseable tags resolve to "en".
func Match(lang string) string {
	tag, err := language.Parse(lang)
	if err != nil {
		return "en"
	}
	_, index, _ := matcher.Match(tag)
	switch supported[index] {
	case language.Hindi:
		return "hi"
	case language.Marathi:
		return "mr"
	default:
		return "en"
	}
}

// T returns the localized string for the key. Missing translations fall
// back to English; unknown keys return the key itself so a miss is visible
// in testing instead of silently blank.
func T(lang, key string) string {
	entry, ok := messages[key]
	if !ok {
		return key
	}
	if text, ok := entry[Match(lang)]; ok && text != "" {
		return text
	}
	return entry["en"]
}

// Keys for every user-facing string.
const (
	KeyWelcome        = "welcome"
	KeyAskName        = "ask_name"
	KeyAskAddress     = "ask_address"
	KeyAskCity        = "ask_city"
	KeyAskState       = "ask_state"
	KeyAskLanguage    = "ask_language"
	KeyOnboardingDone = "onboarding_done"
	KeyClarify        = "clarify"
	KeyProfileUpdated = "profile_updated"

	KeyNoOffices      = "no_offices"
	KeyDisclaimer     = "disclaimer"
	KeyApology        = "apology"
	KeyBusy           = "busy"
	KeyRateLimited    = "rate_limited"
	KeyDocumentsLabel = "documents_label"
	KeyTimeLabel      = "time_label"
	KeyAddressLabel   = "address_label"
	KeyPhoneLabel     = "phone_label"
	KeyTimingsLabel   = "timings_label"
	KeyDistanceLabel  = "distance_label"
	KeyTravelLabel    = "travel_label"
	KeyOfficesIntro   = "offices_intro"
)

var messages = map[string]map[string]string{
	KeyWelcome: {
		"en": "Welcome! I can help you find the right government office and documents for your work. First, what is your name?",
		"hi": "स्वागत है! मैं आपके काम के लिए सही सरकारी कार्यालय और दस्तावेज़ खोजने में मदद कर सकता हूँ। पहले, आपका नाम क्या है?",
		"mr": "स्वागत आहे! तुमच्या कामासाठी योग्य सरकारी कार्यालय आणि कागदपत्रे शोधण्यात मी मदत करू शकतो. आधी, तुमचे नाव काय आहे?",
	},
	KeyAskName: {
		"en": "Please tell me your name.",
		"hi": "कृपया अपना नाम बताएं।",
		"mr": "कृपया तुमचे नाव सांगा.",
	},
	KeyAskAddress: {
		"en": "Thanks! What is your address?",
		"hi": "धन्यवाद! आपका पता क्या है?",
		"mr": "धन्यवाद! तुमचा पत्ता काय आहे?",
	},
	KeyAskCity: {
		"en": "Which city do you live in?",
		"hi": "आप किस शहर में रहते हैं?",
		"mr": "तुम्ही कोणत्या शहरात राहता?",
	},
	KeyAskState: {
		"en": "And which state?",
		"hi": "और कौन सा राज्य?",
		"mr": "आणि कोणते राज्य?",
	},
	KeyAskLanguage: {
		"en": "Which language do you prefer? Reply with: English, Hindi, or Marathi.",
		"hi": "आप कौन सी भाषा पसंद करते हैं? उत्तर दें: English, Hindi, या Marathi।",
		"mr": "तुम्हाला कोणती भाषा हवी आहे? उत्तर द्या: English, Hindi, किंवा Marathi.",
	},
	KeyOnboardingDone: {
		"en": "All set! Ask me anything about government services, for example: \"Where can I renew my passport?\"",
		"hi": "सब तैयार! सरकारी सेवाओं के बारे में कुछ भी पूछें, जैसे: \"मैं अपना पासपोर्ट कहाँ नवीनीकृत कर सकता हूँ?\"",
		"mr": "सर्व तयार! सरकारी सेवांबद्दल काहीही विचारा, उदाहरणार्थ: \"मी माझा पासपोर्ट कुठे नूतनीकरण करू शकतो?\"",
	},
	KeyClarify: {
		"en": "I did not quite understand. Could you tell me more about what you need? For example the document or service name.",
		"hi": "मैं ठीक से समझ नहीं पाया। कृपया बताएं कि आपको क्या चाहिए? जैसे दस्तावेज़ या सेवा का नाम।",
		"mr": "मला नीट समजले नाही. तुम्हाला काय हवे आहे ते अधिक सांगाल का? उदाहरणार्थ कागदपत्र किंवा सेवेचे नाव.",
	},
	KeyProfileUpdated: {
		"en": "Your profile has been updated.",
		"hi": "आपकी प्रोफ़ाइल अपडेट कर दी गई है।",
		"mr": "तुमची प्रोफाइल अद्यतनित केली आहे.",
	},
	KeyNoOffices: {
		"en": "I could not find a specific office for this near you, but here is what I know.",
		"hi": "मुझे आपके पास इसके लिए कोई विशेष कार्यालय नहीं मिला, लेकिन यह जानकारी उपयोगी हो सकती है।",
		"mr": "मला तुमच्याजवळ यासाठी विशिष्ट कार्यालय सापडले नाही, पण ही माहिती उपयोगी ठरू शकते.",
	},
	KeyDisclaimer: {
		"en": "Note: this answer is general guidance. Please verify details with the office before visiting.",
		"hi": "नोट: यह उत्तर सामान्य मार्गदर्शन है। कृपया जाने से पहले कार्यालय से विवरण सत्यापित करें।",
		"mr": "टीप: हे उत्तर सामान्य मार्गदर्शन आहे. कृपया जाण्यापूर्वी कार्यालयाकडून तपशील तपासा.",
	},
	KeyApology: {
		"en": "Sorry, I could not find an answer right now. Please try again later, or visit your nearest Seva Kendra / call the state helpline 1077.",
		"hi": "क्षमा करें, मुझे अभी उत्तर नहीं मिल सका। कृपया बाद में पुनः प्रयास करें, या अपने निकटतम सेवा केंद्र जाएँ / राज्य हेल्पलाइन 1077 पर कॉल करें।",
		"mr": "क्षमस्व, मला सध्या उत्तर सापडले नाही. कृपया नंतर पुन्हा प्रयत्न करा, किंवा जवळच्या सेवा केंद्राला भेट द्या / राज्य हेल्पलाइन 1077 वर कॉल करा.",
	},
	KeyBusy: {
		"en": "I am still working on your previous question. Please wait a moment.",
		"hi": "मैं अभी भी आपके पिछले प्रश्न पर काम कर रहा हूँ। कृपया थोड़ा इंतज़ार करें।",
		"mr": "मी अजूनही तुमच्या मागील प्रश्नावर काम करत आहे. कृपया थोडा वेळ थांबा.",
	},
	KeyRateLimited: {
		"en": "You are sending messages too quickly. Please wait a little and try again.",
		"hi": "आप बहुत तेज़ी से संदेश भेज रहे हैं। कृपया थोड़ा रुकें और पुनः प्रयास करें।",
		"mr": "तुम्ही खूप वेगाने संदेश पाठवत आहात. कृपया थोडे थांबा आणि पुन्हा प्रयत्न करा.",
	},
	KeyDocumentsLabel: {
		"en": "Required documents",
		"hi": "आवश्यक दस्तावेज़",
		"mr": "आवश्यक कागदपत्रे",
	},
	KeyTimeLabel: {
		"en": "Typical processing time",
		"hi": "सामान्य प्रक्रिया समय",
		"mr": "सामान्य प्रक्रिया वेळ",
	},
	KeyAddressLabel: {
		"en": "Address",
		"hi": "पता",
		"mr": "पत्ता",
	},
	KeyPhoneLabel: {
		"en": "Phone",
		"hi": "फ़ोन",
		"mr": "फोन",
	},
	KeyTimingsLabel: {
		"en": "Timings",
		"hi": "समय",
		"mr": "वेळा",
	},
	KeyDistanceLabel: {
		"en": "Distance",
		"hi": "दूरी",
		"mr": "अंतर",
	},
	KeyTravelLabel: {
		"en": "Travel time",
		"hi": "यात्रा समय",
		"mr": "प्रवास वेळ",
	},
	KeyOfficesIntro: {
		"en": "Here are the offices I found, nearest first:",
		"hi": "ये कार्यालय मिले हैं, निकटतम पहले:",
		"mr": "ही कार्यालये सापडली, जवळचे आधी:",
	},
}

package i18n

import "testing"

func TestMatch(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"en", "en"},
		{"en-US", "en"},
		{"hi", "hi"},
		{"hi-IN", "hi"},
		{"mr", "mr"},
		{"fr", "en"},
		{"", "en"},
		{"garbage!!", "en"},
	}

	for _, tt := range tests {
		if got := Match(tt.in); got != tt.want {
			t.Errorf("Match(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestT_AllKeysHaveAllLanguages(t *testing.T) {
	for key, entry := range messages {
		for _, lang := range []string{"en", "hi", "mr"} {
			if entry[lang] == "" {
				t.Errorf("key %s missing %s translation", key, lang)
			}
		}
	}
}

func TestT_FallsBackToEnglish(t *testing.T) {
	if got := T("fr", KeyWelcome); got != messages[KeyWelcome]["en"] {
		t.Errorf("T(fr) = %q, want English fallback", got)
	}
}

func TestT_UnknownKey(t *testing.T) {
	if got := T("en", "nonexistent_key"); got != "nonexistent_key" {
		t.Errorf("T(unknown) = %q, want the key itself", got)
	}
}

func TestT_Localized(t *testing.T) {
	en := T("en", KeyDisclaimer)
	hi := T("hi", KeyDisclaimer)
	mr := T("mr", KeyDisclaimer)
	if en == hi || en == mr || hi == mr {
		t.Error("translations should differ per language")
	}
}

package catalog

import "testing"

func TestClassify(t *testing.T) {
	tests := []struct {
		name         string
		text         string
		wantCategory string
	}{
		{"passport", "Where can I renew my passport?", "passport"},
		{"ration", "how do i get a ration card", "ration card"},
		{"licence", "my driving licence expired, which RTO?", "driving licence"},
		{"aadhaar misspelled", "update my aadhar address", "aadhaar"},
		{"unmatched", "what is the weather today", OtherCategory},
		{"empty", "   ", OtherCategory},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			category, confidence := Classify(tt.text)
			if category != tt.wantCategory {
				t.Errorf("Classify(%q) category = %s, want %s", tt.text, category, tt.wantCategory)
			}
			if tt.wantCategory == OtherCategory && confidence != 0 {
				t.Errorf("unmatched text should have zero confidence, got %v", confidence)
			}
			if tt.wantCategory != OtherCategory && confidence < 0.5 {
				t.Errorf("matched text should have confidence >= 0.5, got %v", confidence)
			}
		})
	}
}

func TestClassify_MoreHitsMoreConfidence(t *testing.T) {
	_, one := Classify("passport")
	_, two := Classify("tatkal passport at the psk")

	if two <= one {
		t.Errorf("confidence with more keyword hits = %v, want > %v", two, one)
	}
	if two > 0.9 {
		t.Errorf("confidence = %v, want <= 0.9", two)
	}
}

func TestLookup(t *testing.T) {
	svc, ok := Lookup("Passport")
	if !ok {
		t.Fatal("Lookup(Passport) should succeed")
	}
	if svc.OfficeQuery == "" || len(svc.Documents) == 0 || svc.ProcessingTime == "" {
		t.Error("catalog entry should carry office query, documents, and processing time")
	}

	if _, ok := Lookup("space travel"); ok {
		t.Error("Lookup of unknown category should fail")
	}
}

func TestCategories_EndsWithOther(t *testing.T) {
	cats := Categories()
	if len(cats) == 0 || cats[len(cats)-1] != OtherCategory {
		t.Errorf("Categories() should end with %q, got %v", OtherCategory, cats)
	}
}

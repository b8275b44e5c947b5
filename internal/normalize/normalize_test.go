package normalize

import "testing"

func TestFold(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"Hugo", "hugo"},
		{"Les Misérables", "les miserables"},
		{"Éducation sentimentale", "education sentimentale"},
		{"L'Étranger", "l'etranger"},
		{"already folded", "already folded"},
		{"", ""},
	}

	for _, tt := range tests {
		if got := Fold(tt.input); got != tt.expected {
			t.Errorf("Fold(%q) = %q, want %q", tt.input, got, tt.expected)
		}
	}
}

func TestLanguageCode(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		// 2-letter codes pass through
		{"fr", "fr"},
		{"EN", "en"},
		// ISO 639-2 codes
		{"fra", "fr"},
		{"fre", "fr"}, // bibliographic variant
		{"eng", "en"},
		{"ger", "de"},
		// unknown codes pass through
		{"xx", "xx"},
		{"", ""},
		{"  fra  ", "fr"},
	}

	for _, tt := range tests {
		if got := LanguageCode(tt.input); got != tt.expected {
			t.Errorf("LanguageCode(%q) = %q, want %q", tt.input, got, tt.expected)
		}
	}
}

func TestWhitespace(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"  a   b  ", "a b"},
		{"one\ntwo\tthree", "one two three"},
		{"", ""},
	}

	for _, tt := range tests {
		if got := Whitespace(tt.input); got != tt.expected {
			t.Errorf("Whitespace(%q) = %q, want %q", tt.input, got, tt.expected)
		}
	}
}

package language

import "testing"

func TestDetectLocalePrefix(t *testing.T) {
	detector := NewDetector()

	tests := []struct {
		text string
		want string
	}{
		{"en:gluten", "en"},
		{"ru:глютен", "ru"},
		{"PL:gluten", "pl"},
		{"de:Weizen", "de"},
	}

	for _, tt := range tests {
		if got := detector.Detect(tt.text); got != tt.want {
			t.Errorf("Detect(%q) = %q, want %q", tt.text, got, tt.want)
		}
	}
}

func TestDetectFallsBackToEnglish(t *testing.T) {
	detector := NewDetector()

	for _, text := range []string{"", "   ", "1234 !!!"} {
		if got := detector.Detect(text); got != DefaultLanguage {
			t.Errorf("Detect(%q) = %q, want %q", text, got, DefaultLanguage)
		}
	}
}

func TestDetectByScript(t *testing.T) {
	detector := NewDetector()

	// "ы" pins the text to Russian over Ukrainian.
	if got := detector.Detect("сырный продукт из коровьего молока"); got != "ru" {
		t.Errorf("Detect(russian text) = %q, want ru", got)
	}
}

func TestIsSupported(t *testing.T) {
	detector := NewDetector()

	tests := []struct {
		code string
		want bool
	}{
		{"en", true},
		{"RU", true},
		{"uk", true},
		{"ja", false},
		{"", false},
	}

	for _, tt := range tests {
		if got := detector.IsSupported(tt.code); got != tt.want {
			t.Errorf("IsSupported(%q) = %v, want %v", tt.code, got, tt.want)
		}
	}
}

package products

import (
	"reflect"
	"testing"
)

func TestStripLangPrefix(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"en:gluten", "gluten"},
		{"RU:глютен", "глютен"},
		{"gluten", "gluten"},
		{"  en:gluten  ", "gluten"},
		{"", ""},
	}

	for _, tt := range tests {
		if got := StripLangPrefix(tt.in); got != tt.want {
			t.Errorf("StripLangPrefix(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestSplitTags(t *testing.T) {
	tests := []struct {
		in   string
		want []string
	}{
		{"en:gluten,en:milk", []string{"en:gluten", "en:milk"}},
		{" gluten ,  , milk ", []string{"gluten", "milk"}},
		{"", nil},
		{" , , ", []string{}},
	}

	for _, tt := range tests {
		got := SplitTags(tt.in)
		if len(got) == 0 && len(tt.want) == 0 {
			continue
		}
		if !reflect.DeepEqual(got, tt.want) {
			t.Errorf("SplitTags(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestDisplayTags(t *testing.T) {
	tests := []struct {
		name      string
		allergens string
		traces    string
		want      []string
	}{
		{
			name:      "locale markers and hyphens become spaces",
			allergens: "en:gluten,en:tree-nuts",
			traces:    "",
			want:      []string{"Gluten", "Tree nuts"},
		},
		{
			name:      "duplicates across allergens and traces collapse",
			allergens: "en:milk",
			traces:    "en:milk,en:soybeans",
			want:      []string{"Milk", "Soybeans"},
		},
		{
			name:      "bracketed input is trimmed",
			allergens: "[en:gluten]",
			traces:    "",
			want:      []string{"Gluten"},
		},
		{
			name:      "both empty",
			allergens: "",
			traces:    "  ",
			want:      nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := DisplayTags(tt.allergens, tt.traces)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("DisplayTags() = %v, want %v", got, tt.want)
			}
		})
	}
}

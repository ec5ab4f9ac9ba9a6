package restaurants

import "testing"

func toSet(allergies []Allergy) map[Allergy]bool {
	set := make(map[Allergy]bool, len(allergies))
	for _, a := range allergies {
		set[a] = true
	}
	return set
}

func TestDetectAllergies(t *testing.T) {
	tests := []struct {
		name      string
		placeName string
		types     []string
		want      []Allergy
	}{
		{
			name:      "keyword and type agree on one allergy",
			placeName: "Pizza Palace",
			types:     []string{"pizza_place", "restaurant"},
			want:      []Allergy{Gluten},
		},
		{
			name:      "free-from name suppresses keyword and type hits",
			placeName: "Gluten Free Bakery",
			types:     []string{"bakery"},
			want:      nil,
		},
		{
			name:      "free-from in another language",
			placeName: "Piekarnia bez glutenu",
			types:     []string{"bakery"},
			want:      nil,
		},
		{
			name:      "multiple keyword families",
			placeName: "Nutty Cheese Bread House",
			types:     nil,
			want:      []Allergy{Gluten, Nuts, Dairy},
		},
		{
			name:      "cyrillic keywords",
			placeName: "Булочная у дома",
			types:     nil,
			want:      []Allergy{Gluten},
		},
		{
			name:      "vegan type ignores free-from gating",
			placeName: "Dairy Free Corner",
			types:     []string{"vegan_restaurant"},
			want:      []Allergy{Vegan},
		},
		{
			name:      "vegetarian type",
			placeName: "Green Garden",
			types:     []string{"vegetarian_restaurant"},
			want:      []Allergy{Vegetarian},
		},
		{
			name:      "nameless place still maps gluten types",
			placeName: "",
			types:     []string{"bakery"},
			want:      []Allergy{Gluten},
		},
		{
			name:      "nameless place still maps vegan type",
			placeName: "",
			types:     []string{"vegan_restaurant"},
			want:      []Allergy{Vegan},
		},
		{
			name:      "plain restaurant",
			placeName: "Steak House",
			types:     []string{"restaurant"},
			want:      nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := DetectAllergies(tt.placeName, tt.types)
			if len(got) != len(tt.want) {
				t.Fatalf("DetectAllergies() = %v, want %v", got, tt.want)
			}
			gotSet := toSet(got)
			for _, want := range tt.want {
				if !gotSet[want] {
					t.Errorf("missing %v in %v", want, got)
				}
			}
		})
	}
}

func TestDetectAllergiesNoDuplicates(t *testing.T) {
	// Name and type both indicate gluten; the result reports it once.
	got := DetectAllergies("Pasta & Pizza", []string{"pizza_place", "pasta_shop"})
	if len(got) != 1 || got[0] != Gluten {
		t.Errorf("DetectAllergies() = %v, want exactly one GLUTEN", got)
	}
}

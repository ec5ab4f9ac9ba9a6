package restaurants

import "strings"

// Negative keywords mark "free-from" venues in several languages; any hit in
// the name suppresses an otherwise-positive match for that venue.
var negativeKeywords = []string{"free", "bez", "sin", "senza", "ohne", "sans"}

var glutenKeywords = []string{
	"gluten", "wheat", "bread", "pasta", "pizza", "pastry", "bakery", "noodle",
	"глютен", "пшениц", "хлеб", "паста", "пицца", "выпечка", "лапша", "булочная",
}

var nutsKeywords = []string{
	"nut", "peanut", "almond", "walnut", "cashew", "pistachio",
	"орех", "арахис", "миндаль", "фисташк",
}

var dairyKeywords = []string{
	"milk", "cheese", "dairy", "ice cream", "yogurt", "cream",
	"молоко", "сыр", "мороженое", "йогурт", "сливки",
}

// Place types strongly associated with wheat-based menus.
var glutenPlaceTypes = map[string]bool{
	"bakery":        true,
	"pastry_shop":   true,
	"pizza_place":   true,
	"sandwich_shop": true,
	"pasta_shop":    true,
	"noodle_shop":   true,
}

// DetectAllergies infers likely allergens at a restaurant from its name and
// category types. Pure function; the result is a set (no ordering
// guarantee, duplicates across rules collapse). A nameless place matches no
// keywords but its category types still count.
func DetectAllergies(name string, types []string) []Allergy {
	lowerName := strings.ToLower(name)
	detected := make(map[Allergy]bool)

	freeFromName := containsAny(lowerName, negativeKeywords)

	if containsAny(lowerName, glutenKeywords) && !freeFromName {
		detected[Gluten] = true
	}
	if containsAny(lowerName, nutsKeywords) && !freeFromName {
		detected[Nuts] = true
	}
	if containsAny(lowerName, dairyKeywords) && !freeFromName {
		detected[Dairy] = true
	}

	for _, t := range types {
		switch lowerType := strings.ToLower(t); {
		case glutenPlaceTypes[lowerType]:
			if !freeFromName {
				detected[Gluten] = true
			}
		case lowerType == "vegan_restaurant":
			detected[Vegan] = true
		case lowerType == "vegetarian_restaurant":
			detected[Vegetarian] = true
		}
	}

	result := make([]Allergy, 0, len(detected))
	for allergy := range detected {
		result = append(result, allergy)
	}
	return result
}

func containsAny(s string, keywords []string) bool {
	for _, keyword := range keywords {
		if strings.Contains(s, keyword) {
			return true
		}
	}
	return false
}

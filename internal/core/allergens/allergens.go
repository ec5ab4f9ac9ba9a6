// Package allergens evaluates a product's English-bucketed allergen tags
// against a user's declared allergy preferences.
package allergens

import (
	"regexp"
	"strings"

	"github.com/DietLens/scan-service/internal/core/products"
)

// Key is the closed vocabulary of allergen categories users can declare.
// Keys, Preferences flags and the keyword families stay in lockstep: adding
// a category requires updating all three.
type Key string

const (
	Gluten  Key = "GLUTEN"
	Lactose Key = "LACTOSE"
	Nuts    Key = "NUTS"
	Soy     Key = "SOY"
	Eggs    Key = "EGGS"
	Seafood Key = "SEAFOOD"
	Fruits  Key = "FRUITS"
)

// Preferences holds one flag per recognized allergen category. The zero
// value declares no allergies, which is also the fallback for signed-out
// users.
type Preferences struct {
	Gluten  bool `json:"gluten" db:"gluten"`
	Lactose bool `json:"lactose" db:"lactose"`
	Nuts    bool `json:"nuts" db:"nuts"`
	Seafood bool `json:"seafood" db:"seafood"`
	Eggs    bool `json:"eggs" db:"eggs"`
	Soy     bool `json:"soy" db:"soy"`
	Fruits  bool `json:"fruits" db:"fruits"`
}

// Keyword families are English-only; matching runs exclusively against the
// translated allergen bucket. Unanchored substring search is intentional
// recall-over-precision behavior inherited from the upstream tag vocabulary.
var (
	glutenRe  = regexp.MustCompile(`gluten`)
	lactoseRe = regexp.MustCompile(`milk|lactose|whey|butter|cream|casein`)
	nutsRe    = regexp.MustCompile(`nut|almond|hazelnut|cashew|walnut|pecan|pistachio|brazil-nut|tree-nut|peanut`)
	soyRe     = regexp.MustCompile(`soy|soya|soybean`)
	eggsRe    = regexp.MustCompile(`egg|ovum|albumin`)
	seafoodRe = regexp.MustCompile(`fish|crustacean|mollusc|shrimp|prawn|crab|lobster|clam|oyster|squid|octopus`)
	fruitsRe  = regexp.MustCompile(`apple|banana|orange|kiwi|strawberry|peach`)
)

type categoryCheck struct {
	key     Key
	enabled func(Preferences) bool
	pattern *regexp.Regexp
}

// The fixed check order determines result ordering.
var categoryChecks = []categoryCheck{
	{Gluten, func(p Preferences) bool { return p.Gluten }, glutenRe},
	{Lactose, func(p Preferences) bool { return p.Lactose }, lactoseRe},
	{Nuts, func(p Preferences) bool { return p.Nuts }, nutsRe},
	{Soy, func(p Preferences) bool { return p.Soy }, soyRe},
	{Eggs, func(p Preferences) bool { return p.Eggs }, eggsRe},
	{Seafood, func(p Preferences) bool { return p.Seafood }, seafoodRe},
	{Fruits, func(p Preferences) bool { return p.Fruits }, fruitsRe},
}

// Check returns the allergen categories a user cares about that appear in
// the product's translated allergen tags, in fixed category order with
// duplicates removed. A product without attached translations yields no
// detections: matching mixed-language text would produce unreliable results.
func Check(product *products.Product, prefs Preferences) []Key {
	if product == nil || product.Translations == nil || product.Translations.Allergens == nil {
		return nil
	}

	tags := make(map[string]bool)
	for _, tag := range strings.Split(*product.Translations.Allergens, ",") {
		tag = strings.ToLower(strings.TrimSpace(tag))
		if tag != "" {
			tags[tag] = true
		}
	}
	if len(tags) == 0 {
		return nil
	}

	joined := make([]string, 0, len(tags))
	for tag := range tags {
		joined = append(joined, tag)
	}
	joinedTags := strings.Join(joined, ",")

	var detected []Key
	seen := make(map[Key]bool)
	for _, check := range categoryChecks {
		if !check.enabled(prefs) {
			continue
		}
		if check.pattern.MatchString(joinedTags) && !seen[check.key] {
			detected = append(detected, check.key)
			seen[check.key] = true
		}
	}

	return detected
}

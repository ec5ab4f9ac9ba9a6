package restaurants

// Allergy is the restaurant-only risk vocabulary inferred from place names
// and category types. It is deliberately distinct from the product allergen
// keys: restaurants are annotated by heuristic, not by declared tag data.
type Allergy string

const (
	Gluten     Allergy = "GLUTEN"
	Nuts       Allergy = "NUTS"
	Vegetarian Allergy = "VEGETARIAN"
	Vegan      Allergy = "VEGAN"
	Dairy      Allergy = "DAIRY"
)

// Restaurant is a places-API record annotated with locally inferred allergy
// risk. Immutable once built.
type Restaurant struct {
	ID               string    `json:"id"`
	Name             string    `json:"name"`
	Latitude         float64   `json:"latitude"`
	Longitude        float64   `json:"longitude"`
	Allergies        []Allergy `json:"allergies"`
	PhotoURL         *string   `json:"photo_url,omitempty"`
	Address          *string   `json:"address,omitempty"`
	Rating           *float64  `json:"rating,omitempty"`
	UserRatingsTotal *int      `json:"user_ratings_total,omitempty"`
	IsOpenNow        *bool     `json:"is_open_now,omitempty"`
	PriceLevel       *int      `json:"price_level,omitempty"`
	PhoneNumber      *string   `json:"phone_number,omitempty"`
	BusinessStatus   *string   `json:"business_status,omitempty"`
	WebsiteURL       *string   `json:"website_url,omitempty"`
}

type nearbySearchResponse struct {
	Results      []placeResult `json:"results"`
	Status       string        `json:"status"`
	ErrorMessage string        `json:"error_message"`
}

type placeResult struct {
	PlaceID         string        `json:"place_id"`
	Name            string        `json:"name"`
	Geometry        geometry      `json:"geometry"`
	Types           []string      `json:"types"`
	Photos          []photo       `json:"photos"`
	BusinessStatus  *string       `json:"business_status"`
	OpeningHours    *openingHours `json:"opening_hours"`
	PriceLevel      *int          `json:"price_level"`
	Rating          *float64      `json:"rating"`
	UserRatings     *int          `json:"user_ratings_total"`
	Vicinity        *string       `json:"vicinity"`
	PhoneNumber     *string       `json:"international_phone_number"`
	Website         *string       `json:"website"`
}

type photo struct {
	PhotoReference string `json:"photo_reference"`
	Height         *int   `json:"height"`
	Width          *int   `json:"width"`
}

type geometry struct {
	Location location `json:"location"`
}

type location struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

type openingHours struct {
	OpenNow *bool `json:"open_now"`
}

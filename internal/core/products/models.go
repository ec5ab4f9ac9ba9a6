package products

import "encoding/json"

// Product is the raw record shape returned by the food database API. A
// fetched product is immutable apart from the Translations attachment added
// by the translation orchestrator.
type Product struct {
	Barcode         *string     `json:"code"`
	Name            *string     `json:"product_name"`
	Brands          *string     `json:"brands"`
	IngredientsText *string     `json:"ingredients_text"`
	IngredientsEn   *string     `json:"ingredients_text_en"`
	Allergens       *string     `json:"allergens"`
	Traces          *string     `json:"traces"`
	Nutriments      *Nutriments `json:"nutriments"`
	Quantity        *string     `json:"product_quantity"`
	QuantityUnit    *string     `json:"product_quantity_unit"`
	ImageFrontURL   *string     `json:"image_front_url"`

	// Nutriscore data is keyed by year with an opaque per-year payload.
	NutriscoreData map[string]json.RawMessage `json:"nutriscore_data"`

	Translations *Translations `json:"translations,omitempty"`
}

// Translations is the derived annotation attached after a translation run.
// Allergens contains only English tokens once set; the allergen matcher
// depends on that invariant.
type Translations struct {
	ProductName *string `json:"product_name"`
	Ingredients *string `json:"ingredients"`
	Allergens   *string `json:"allergens"`
}

type Nutriments struct {
	EnergyKcal    *float64 `json:"energy-kcal"`
	Proteins      *float64 `json:"proteins"`
	Fat           *float64 `json:"fat"`
	SaturatedFat  *float64 `json:"saturated-fat"`
	Carbohydrates *float64 `json:"carbohydrates"`
	Sugars        *float64 `json:"sugars"`
	Salt          *float64 `json:"salt"`
	Fiber         *float64 `json:"fiber"`
	Alcohol       *float64 `json:"alcohol"`
}

// NutriscoreYearData is the per-year nutrition grade payload.
type NutriscoreYearData struct {
	Grade                *string `json:"grade"`
	CategoryAvailable    *int    `json:"category_available"`
	NutrientsAvailable   *int    `json:"nutrients_available"`
	NutriscoreComputed   *int    `json:"nutriscore_computed"`
	NutriscoreApplicable *int    `json:"nutriscore_applicable"`
}

// LatestNutriscore decodes the newest year's nutrition grade, if any.
func (p *Product) LatestNutriscore() *NutriscoreYearData {
	if len(p.NutriscoreData) == 0 {
		return nil
	}

	latestYear := ""
	for year := range p.NutriscoreData {
		if year > latestYear {
			latestYear = year
		}
	}

	var data NutriscoreYearData
	if err := json.Unmarshal(p.NutriscoreData[latestYear], &data); err != nil {
		return nil
	}
	return &data
}

type productResponse struct {
	Status  int      `json:"status"`
	Product *Product `json:"product"`
}

type categoryResponse struct {
	Count     int        `json:"count"`
	Page      int        `json:"page"`
	PageCount int        `json:"page_count"`
	Products  []*Product `json:"products"`
}

// Category is a food database browse category with its upstream tag.
type Category struct {
	Name   string `json:"name"`
	APITag string `json:"api_tag"`
}

// CategoryAll is the pseudo-category backed by the full-catalog search
// endpoint instead of a category page.
var CategoryAll = Category{Name: "All", APITag: "all"}

// Categories lists the browseable categories in display order.
var Categories = []Category{
	CategoryAll,
	{Name: "Beverages", APITag: "en:beverages"},
	{Name: "Juices", APITag: "en:juices"},
	{Name: "Carbonated drinks", APITag: "en:carbonated-drinks"},
	{Name: "Teas and coffees", APITag: "en:teas-and-coffees"},
	{Name: "Snacks", APITag: "en:snacks"},
	{Name: "Sweet snacks", APITag: "en:sweet-snacks"},
	{Name: "Salty snacks", APITag: "en:salty-snacks"},
	{Name: "Chocolates", APITag: "en:chocolates"},
	{Name: "Biscuits and cakes", APITag: "en:biscuits-and-cakes"},
	{Name: "Desserts", APITag: "en:desserts"},
	{Name: "Dairies", APITag: "en:dairies"},
	{Name: "Milks", APITag: "en:milks"},
	{Name: "Yogurts", APITag: "en:yogurts"},
	{Name: "Cheeses", APITag: "en:cheeses"},
	{Name: "Plant based foods", APITag: "en:plant-based-foods"},
	{Name: "Meals", APITag: "en:meals"},
	{Name: "Sauces", APITag: "en:sauces"},
	{Name: "Pastas", APITag: "en:pastas"},
	{Name: "Canned foods", APITag: "en:canned-foods"},
	{Name: "Breakfasts", APITag: "en:breakfasts"},
	{Name: "Breads", APITag: "en:breads"},
	{Name: "Soups", APITag: "en:soups"},
	{Name: "Meats", APITag: "en:meats"},
	{Name: "Seafood", APITag: "en:seafood"},
	{Name: "Frozen foods", APITag: "en:frozen-foods"},
}

// CategoryByTag resolves an upstream tag back to a known category.
func CategoryByTag(tag string) (Category, bool) {
	for _, c := range Categories {
		if c.APITag == tag {
			return c, true
		}
	}
	return Category{}, false
}

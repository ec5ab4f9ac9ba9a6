package scans

import (
	"time"

	"github.com/google/uuid"

	"github.com/DietLens/scan-service/internal/core/allergens"
	"github.com/DietLens/scan-service/internal/core/products"
)

// Result is the consolidated outcome of one scan: the product with
// translations attached plus the allergen categories detected for this
// user. Immutable once built.
type Result struct {
	Product  *products.Product `json:"product"`
	Detected []allergens.Key   `json:"detected_allergens"`
}

// HistoryEntry is one persisted scan. Allergen keys are stored by name, not
// numeric index, so history survives reordering of the category enum.
type HistoryEntry struct {
	ID          uuid.UUID       `json:"id" db:"id"`
	UserID      uuid.UUID       `json:"user_id" db:"user_id"`
	Barcode     string          `json:"barcode" db:"barcode"`
	ProductName *string         `json:"product_name" db:"product_name"`
	ImageURL    *string         `json:"image_url" db:"image_url"`
	Detected    []allergens.Key `json:"detected_allergens" db:"detected_allergens"`
	ScannedAt   time.Time       `json:"scanned_at" db:"scanned_at"`
}

// LikedProduct is a product a user marked as a favorite.
type LikedProduct struct {
	UserID      uuid.UUID `json:"user_id" db:"user_id"`
	Barcode     string    `json:"barcode" db:"barcode"`
	ProductName *string   `json:"product_name" db:"product_name"`
	ImageURL    *string   `json:"image_url" db:"image_url"`
	LikedAt     time.Time `json:"liked_at" db:"liked_at"`
}

package scans

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	api "go.opentelemetry.io/otel/metric"
	"golang.org/x/sync/errgroup"

	"github.com/DietLens/scan-service/internal/core/allergens"
	"github.com/DietLens/scan-service/internal/core/products"
	"github.com/DietLens/scan-service/internal/infra/postgres"
	"github.com/DietLens/scan-service/pkg/telemetry"
)

var tracer = otel.Tracer("scans-service")

// ErrBlankBarcode is returned when the decoded barcode is empty. The only
// validation the pipeline performs on a barcode is this blank-check.
var ErrBlankBarcode = errors.New("barcode is blank")

// ProductSource fetches one product by barcode.
type ProductSource interface {
	GetProductByBarcode(ctx context.Context, barcode string) (*products.Product, error)
}

// PreferenceSource loads a user's declared allergy preferences.
type PreferenceSource interface {
	GetAllergyPreferences(ctx context.Context, userID uuid.UUID) (allergens.Preferences, error)
}

// ProductTranslator attaches localized and English-bucketed translations to
// a fetched product.
type ProductTranslator interface {
	Translate(ctx context.Context, product *products.Product) *products.Product
}

// Service runs the scan pipeline: fetch product and preferences in
// parallel, translate, match allergens, persist history.
type Service struct {
	db         postgres.DB
	products   ProductSource
	prefs      PreferenceSource
	translator ProductTranslator
	logger     *slog.Logger
}

func NewService(db postgres.DB, productSource ProductSource, prefSource PreferenceSource, translator ProductTranslator, logger *slog.Logger) *Service {
	return &Service{
		db:         db,
		products:   productSource,
		prefs:      prefSource,
		translator: translator,
		logger:     logger.With("service", "scans"),
	}
}

// Scan runs the full pipeline for one decoded barcode.
//
// Product fetch and preference fetch run concurrently; neither depends on
// the other and both must complete before translation starts. A missing
// product is the only failure surfaced to the caller. Preference failures
// degrade to the zero preference set, translation failures degrade
// per-field, and a failed history write never fails the scan.
func (s *Service) Scan(ctx context.Context, userID uuid.UUID, barcode string) (*Result, error) {
	ctx, span := tracer.Start(ctx, "scans.Scan")
	defer span.End()

	if strings.TrimSpace(barcode) == "" {
		return nil, ErrBlankBarcode
	}

	var (
		product *products.Product
		prefs   allergens.Preferences
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		product, err = s.products.GetProductByBarcode(gctx, barcode)
		if err != nil {
			return fmt.Errorf("barcode %s: %w", barcode, err)
		}
		return nil
	})
	g.Go(func() error {
		var err error
		prefs, err = s.prefs.GetAllergyPreferences(gctx, userID)
		if err != nil {
			s.logger.Error("Failed to load allergy preferences, assuming none",
				"user_id", userID,
				"error", err)
			prefs = allergens.Preferences{}
		}
		return nil
	})

	if err := g.Wait(); err != nil {
		if telemetry.ScansTotal != nil {
			telemetry.ScansTotal.Add(ctx, 1, api.WithAttributes(
				attribute.String("outcome", "not_found"),
			))
		}
		return nil, err
	}

	// Matching depends exclusively on the English-translated allergen
	// bucket, so it never starts before translation completes.
	translated := s.translator.Translate(ctx, product)
	detected := allergens.Check(translated, prefs)

	result := &Result{Product: translated, Detected: detected}

	s.saveHistory(ctx, userID, result)

	if telemetry.ScansTotal != nil {
		telemetry.ScansTotal.Add(ctx, 1, api.WithAttributes(
			attribute.String("outcome", "success"),
		))
	}
	if telemetry.AllergensDetectedTotal != nil && len(detected) > 0 {
		telemetry.AllergensDetectedTotal.Add(ctx, int64(len(detected)))
	}

	return result, nil
}

// saveHistory persists the scan as a history entry, best-effort. Anonymous
// scans are not recorded.
func (s *Service) saveHistory(ctx context.Context, userID uuid.UUID, result *Result) {
	if userID == uuid.Nil || s.db == nil {
		return
	}

	barcode := ""
	if result.Product.Barcode != nil {
		barcode = *result.Product.Barcode
	}

	keys := make([]string, 0, len(result.Detected))
	for _, key := range result.Detected {
		keys = append(keys, string(key))
	}

	query := `
		INSERT INTO scan_history (id, user_id, barcode, product_name, image_url, detected_allergens, scanned_at)
		VALUES ($1, $2, $3, $4, $5, $6, NOW())`

	_, err := s.db.Exec(ctx, query,
		uuid.New(), userID, barcode,
		result.Product.Name, result.Product.ImageFrontURL, keys,
	)
	if err != nil {
		s.logger.Error("Failed to save scan history",
			"user_id", userID,
			"barcode", barcode,
			"error", err)
		if telemetry.DatabaseErrorsTotal != nil {
			telemetry.DatabaseErrorsTotal.Add(ctx, 1, api.WithAttributes(
				attribute.String("operation", "save_scan_history"),
			))
		}
	}
}

// ListHistory returns a user's most recent scans, newest first.
func (s *Service) ListHistory(ctx context.Context, userID uuid.UUID, limit int) ([]*HistoryEntry, error) {
	ctx, span := tracer.Start(ctx, "scans.ListHistory")
	defer span.End()

	if limit <= 0 {
		limit = 50
	}

	query := `
		SELECT id, user_id, barcode, product_name, image_url, detected_allergens, scanned_at
		FROM scan_history
		WHERE user_id = $1
		ORDER BY scanned_at DESC
		LIMIT $2`

	rows, err := s.db.Query(ctx, query, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query scan history: %w", err)
	}
	defer rows.Close()

	var entries []*HistoryEntry
	for rows.Next() {
		var entry HistoryEntry
		var keys []string
		err := rows.Scan(&entry.ID, &entry.UserID, &entry.Barcode,
			&entry.ProductName, &entry.ImageURL, &keys, &entry.ScannedAt)
		if err != nil {
			s.logger.Error("Failed to scan history row", "error", err)
			continue
		}
		for _, key := range keys {
			entry.Detected = append(entry.Detected, allergens.Key(key))
		}
		entries = append(entries, &entry)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating scan history: %w", err)
	}

	return entries, nil
}

// Like marks a product as a favorite of the user.
func (s *Service) Like(ctx context.Context, userID uuid.UUID, barcode string, productName, imageURL *string) error {
	ctx, span := tracer.Start(ctx, "scans.Like")
	defer span.End()

	query := `
		INSERT INTO liked_products (user_id, barcode, product_name, image_url, liked_at)
		VALUES ($1, $2, $3, $4, NOW())
		ON CONFLICT (user_id, barcode) DO NOTHING`

	if _, err := s.db.Exec(ctx, query, userID, barcode, productName, imageURL); err != nil {
		return fmt.Errorf("failed to like product: %w", err)
	}
	return nil
}

// Unlike removes a product from the user's favorites.
func (s *Service) Unlike(ctx context.Context, userID uuid.UUID, barcode string) error {
	ctx, span := tracer.Start(ctx, "scans.Unlike")
	defer span.End()

	if _, err := s.db.Exec(ctx,
		"DELETE FROM liked_products WHERE user_id = $1 AND barcode = $2",
		userID, barcode); err != nil {
		return fmt.Errorf("failed to unlike product: %w", err)
	}
	return nil
}

// IsLiked reports whether the user has favorited the product.
func (s *Service) IsLiked(ctx context.Context, userID uuid.UUID, barcode string) (bool, error) {
	ctx, span := tracer.Start(ctx, "scans.IsLiked")
	defer span.End()

	var exists bool
	err := s.db.QueryRow(ctx,
		"SELECT EXISTS(SELECT 1 FROM liked_products WHERE user_id = $1 AND barcode = $2)",
		userID, barcode).Scan(&exists)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return false, nil
		}
		return false, fmt.Errorf("failed to check liked status: %w", err)
	}
	return exists, nil
}

// ListLiked returns the user's favorites, newest first.
func (s *Service) ListLiked(ctx context.Context, userID uuid.UUID) ([]*LikedProduct, error) {
	ctx, span := tracer.Start(ctx, "scans.ListLiked")
	defer span.End()

	query := `
		SELECT user_id, barcode, product_name, image_url, liked_at
		FROM liked_products
		WHERE user_id = $1
		ORDER BY liked_at DESC`

	rows, err := s.db.Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to query liked products: %w", err)
	}
	defer rows.Close()

	var liked []*LikedProduct
	for rows.Next() {
		var product LikedProduct
		err := rows.Scan(&product.UserID, &product.Barcode,
			&product.ProductName, &product.ImageURL, &product.LikedAt)
		if err != nil {
			s.logger.Error("Failed to scan liked product row", "error", err)
			continue
		}
		liked = append(liked, &product)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating liked products: %w", err)
	}

	return liked, nil
}

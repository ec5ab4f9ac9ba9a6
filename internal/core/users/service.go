package users

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"go.opentelemetry.io/otel"

	"github.com/DietLens/scan-service/internal/core/allergens"
	"github.com/DietLens/scan-service/internal/infra/postgres"
)

var tracer = otel.Tracer("users-service")

// Service manages user profiles and their declared allergy preferences.
type Service struct {
	db     postgres.DB
	logger *slog.Logger
}

func NewService(db postgres.DB, logger *slog.Logger) *Service {
	return &Service{
		db:     db,
		logger: logger.With("service", "users"),
	}
}

// GetAllergyPreferences loads a user's declared allergies. A user with no
// stored preferences (or no profile at all) gets the zero-value set: absence
// of a declaration is not an error, it means "warn about nothing".
func (s *Service) GetAllergyPreferences(ctx context.Context, userID uuid.UUID) (allergens.Preferences, error) {
	ctx, span := tracer.Start(ctx, "users.GetAllergyPreferences")
	defer span.End()

	query := `
		SELECT gluten, lactose, nuts, seafood, eggs, soy, fruits
		FROM user_allergy_preferences
		WHERE user_id = $1`

	var prefs allergens.Preferences
	err := s.db.QueryRow(ctx, query, userID).Scan(
		&prefs.Gluten, &prefs.Lactose, &prefs.Nuts, &prefs.Seafood,
		&prefs.Eggs, &prefs.Soy, &prefs.Fruits,
	)

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return allergens.Preferences{}, nil
		}
		return allergens.Preferences{}, fmt.Errorf("failed to load allergy preferences: %w", err)
	}

	return prefs, nil
}

// UpdateAllergyPreferences stores the full preference set for a user,
// replacing any previous declaration.
func (s *Service) UpdateAllergyPreferences(ctx context.Context, userID uuid.UUID, prefs allergens.Preferences) error {
	ctx, span := tracer.Start(ctx, "users.UpdateAllergyPreferences")
	defer span.End()

	query := `
		INSERT INTO user_allergy_preferences (
			user_id, gluten, lactose, nuts, seafood, eggs, soy, fruits, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, NOW())
		ON CONFLICT (user_id)
		DO UPDATE SET
			gluten = EXCLUDED.gluten,
			lactose = EXCLUDED.lactose,
			nuts = EXCLUDED.nuts,
			seafood = EXCLUDED.seafood,
			eggs = EXCLUDED.eggs,
			soy = EXCLUDED.soy,
			fruits = EXCLUDED.fruits,
			updated_at = NOW()`

	_, err := s.db.Exec(ctx, query, userID,
		prefs.Gluten, prefs.Lactose, prefs.Nuts, prefs.Seafood,
		prefs.Eggs, prefs.Soy, prefs.Fruits,
	)
	if err != nil {
		return fmt.Errorf("failed to update allergy preferences: %w", err)
	}

	s.logger.Info("Updated allergy preferences", "user_id", userID)
	return nil
}

// UpdateDisplayName changes a user's profile display name.
func (s *Service) UpdateDisplayName(ctx context.Context, userID uuid.UUID, displayName string) error {
	ctx, span := tracer.Start(ctx, "users.UpdateDisplayName")
	defer span.End()

	tag, err := s.db.Exec(ctx,
		"UPDATE users SET display_name = $1, updated_at = NOW() WHERE id = $2",
		displayName, userID)
	if err != nil {
		return fmt.Errorf("failed to update display name: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("user %s not found", userID)
	}

	return nil
}

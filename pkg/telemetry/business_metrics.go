package telemetry

import (
	"log/slog"

	api "go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/sdk/metric"
)

// Business metrics for application-level monitoring
var (
	// Scan pipeline metrics
	ScansTotal             api.Int64Counter
	AllergensDetectedTotal api.Int64Counter
	TranslationFallbacks   api.Int64Counter

	// Browse & restaurant metrics
	CategoryPageLoads      api.Int64Counter
	RestaurantLookupsTotal api.Int64Counter

	// Error tracking
	ApplicationErrorsTotal api.Int64Counter
	DatabaseErrorsTotal    api.Int64Counter
)

// InitBusinessMetrics initializes all business-level metrics
func InitBusinessMetrics(provider *metric.MeterProvider) error {
	meter := provider.Meter("business")

	var err error

	ScansTotal, err = meter.Int64Counter("scans.total",
		api.WithDescription("Total barcode scans processed by outcome"))
	if err != nil {
		return err
	}

	AllergensDetectedTotal, err = meter.Int64Counter("scans.allergens.detected.total",
		api.WithDescription("Total allergen categories detected across scans"))
	if err != nil {
		return err
	}

	TranslationFallbacks, err = meter.Int64Counter("translation.fallbacks.total",
		api.WithDescription("Total fields served untranslated after a translation failure"))
	if err != nil {
		return err
	}

	CategoryPageLoads, err = meter.Int64Counter("browse.category.page.loads.total",
		api.WithDescription("Total category pages loaded from the food database"))
	if err != nil {
		return err
	}

	RestaurantLookupsTotal, err = meter.Int64Counter("restaurants.lookups.total",
		api.WithDescription("Total nearby restaurant lookups by outcome"))
	if err != nil {
		return err
	}

	ApplicationErrorsTotal, err = meter.Int64Counter("application.errors.total",
		api.WithDescription("Total application errors by component and type"))
	if err != nil {
		return err
	}

	DatabaseErrorsTotal, err = meter.Int64Counter("database.errors.total",
		api.WithDescription("Total database errors by operation and type"))
	if err != nil {
		return err
	}

	slog.Info("Business metrics initialized successfully")
	return nil
}

// InitTelemetry wires the metric provider into the application-level
// instrument set.
func InitTelemetry(provider *metric.MeterProvider) error {
	return InitBusinessMetrics(provider)
}

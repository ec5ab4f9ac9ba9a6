package restaurants

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	api "go.opentelemetry.io/otel/metric"

	"github.com/DietLens/scan-service/pkg/telemetry"
)

func countLookup(ctx context.Context, outcome string) {
	if telemetry.RestaurantLookupsTotal != nil {
		telemetry.RestaurantLookupsTotal.Add(ctx, 1, api.WithAttributes(
			attribute.String("outcome", outcome),
		))
	}
}

var tracer = otel.Tracer("restaurants-client")

// Client looks up nearby restaurants through the places API and annotates
// each result with heuristically detected allergy risk.
type Client struct {
	baseURL    string
	apiKey     string
	radius     int
	httpClient *http.Client
	logger     *slog.Logger
}

func NewClient(baseURL, apiKey string, radius int, logger *slog.Logger) *Client {
	if radius <= 0 {
		radius = 1500
	}
	return &Client{
		baseURL: baseURL,
		apiKey:  apiKey,
		radius:  radius,
		httpClient: &http.Client{
			Timeout: 15 * time.Second,
		},
		logger: logger.With("service", "restaurants"),
	}
}

// NearbyRestaurants returns restaurants around a coordinate. Upstream
// statuses other than OK and ZERO_RESULTS are recoverable: they log and
// yield an empty list, never an error to the caller.
func (c *Client) NearbyRestaurants(ctx context.Context, lat, lng float64) ([]Restaurant, error) {
	ctx, span := tracer.Start(ctx, "restaurants.NearbyRestaurants")
	defer span.End()

	params := url.Values{}
	params.Set("location", fmt.Sprintf("%f,%f", lat, lng))
	params.Set("radius", fmt.Sprintf("%d", c.radius))
	params.Set("type", "restaurant")
	params.Set("key", c.apiKey)

	endpoint := fmt.Sprintf("%s/maps/api/place/nearbysearch/json?%s", c.baseURL, params.Encode())

	req, err := http.NewRequestWithContext(ctx, "GET", endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create places request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Error("Places request failed", "error", err)
		countLookup(ctx, "degraded")
		return []Restaurant{}, nil
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		c.logger.Error("Failed to read places response", "error", err)
		countLookup(ctx, "degraded")
		return []Restaurant{}, nil
	}

	var searchResp nearbySearchResponse
	if err := json.Unmarshal(body, &searchResp); err != nil {
		c.logger.Error("Failed to unmarshal places response", "error", err)
		countLookup(ctx, "degraded")
		return []Restaurant{}, nil
	}

	if searchResp.Status != "" && searchResp.Status != "OK" && searchResp.Status != "ZERO_RESULTS" {
		c.logger.Error("Places API error",
			"status", searchResp.Status,
			"error_message", searchResp.ErrorMessage)
		countLookup(ctx, "degraded")
		return []Restaurant{}, nil
	}

	restaurants := make([]Restaurant, 0, len(searchResp.Results))
	for _, place := range searchResp.Results {
		restaurants = append(restaurants, c.toRestaurant(place))
	}

	c.logger.Debug("Nearby search completed",
		"status", searchResp.Status,
		"results", len(restaurants))
	countLookup(ctx, "success")

	return restaurants, nil
}

func (c *Client) toRestaurant(place placeResult) Restaurant {
	var photoURL *string
	if len(place.Photos) > 0 && place.Photos[0].PhotoReference != "" {
		u := fmt.Sprintf("%s/maps/api/place/photo?maxwidth=400&photoreference=%s&key=%s",
			c.baseURL, url.QueryEscape(place.Photos[0].PhotoReference), url.QueryEscape(c.apiKey))
		photoURL = &u
	}

	var openNow *bool
	if place.OpeningHours != nil {
		openNow = place.OpeningHours.OpenNow
	}

	return Restaurant{
		ID:               place.PlaceID,
		Name:             place.Name,
		Latitude:         place.Geometry.Location.Lat,
		Longitude:        place.Geometry.Location.Lng,
		Allergies:        DetectAllergies(place.Name, place.Types),
		PhotoURL:         photoURL,
		Address:          place.Vicinity,
		Rating:           place.Rating,
		UserRatingsTotal: place.UserRatings,
		IsOpenNow:        openNow,
		PriceLevel:       place.PriceLevel,
		PhoneNumber:      place.PhoneNumber,
		BusinessStatus:   place.BusinessStatus,
		WebsiteURL:       place.Website,
	}
}

package repositories

import (
	"context"
	"net/http"

	"agro-advisor/internal/models"
)

// HTTPClient is the outbound transport surface, satisfied by *http.Client
// and by test doubles.
type HTTPClient interface {
	Do(req *http.Request) (*http.Response, error)
}

// ForecastRepository fetches the daily weather forecast for a location.
type ForecastRepository interface {
	Name() string
	FetchForecast(ctx context.Context, lat, lon float64) (*OpenMeteoForecast, error)
}

// ImageryRepository talks to the satellite imagery provider: polygon
// registration, image search and per-image NDVI statistics.
type ImageryRepository interface {
	Name() string
	CreatePolygon(ctx context.Context, name string, feature *models.Feature) (string, error)
	SearchImages(ctx context.Context, polyID string, start, end int64, maxCloudPercent int) ([]models.SatelliteImage, error)
	FetchNDVIStats(ctx context.Context, statsURL string) (*models.NDVIStats, error)
}

package repositories

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"agro-advisor/config"
	"agro-advisor/internal/apperr"
	"agro-advisor/internal/models"
	"agro-advisor/pkg/observe"
)

const createDiagnosticLimit = 200

// AgroRepository is the Agromonitoring API client. Each call carries its own
// deadline; the NDVI statistics fetch gets by far the longest one since the
// provider computes them lazily.
type AgroRepository struct {
	baseURL       string
	apiKey        string
	createTimeout time.Duration
	searchTimeout time.Duration
	statsTimeout  time.Duration
	httpClient    HTTPClient
	l             *observe.Logger
}

func NewAgroRepository(cfg config.ImageryConfig, l *observe.Logger, httpClient HTTPClient) (*AgroRepository, error) {
	if strings.TrimSpace(cfg.APIKey) == "" {
		return nil, errors.New("API key cannot be empty")
	}

	return &AgroRepository{
		baseURL:       cfg.BaseURL,
		apiKey:        cfg.APIKey,
		createTimeout: cfg.CreateTimeout,
		searchTimeout: cfg.SearchTimeout,
		statsTimeout:  cfg.StatsTimeout,
		httpClient:    httpClient,
		l:             l,
	}, nil
}

func (a *AgroRepository) Name() string {
	return "agromonitoring"
}

type agroPolygonRequest struct {
	Name    string          `json:"name"`
	GeoJSON *models.Feature `json:"geo_json"`
}

// CreatePolygon registers a field boundary and returns the provider-assigned
// polygon id.
func (a *AgroRepository) CreatePolygon(ctx context.Context, name string, feature *models.Feature) (string, error) {
	payload, err := json.Marshal(agroPolygonRequest{Name: name, GeoJSON: feature})
	if err != nil {
		return "", fmt.Errorf("failed to marshal polygon payload: %w", err)
	}

	requestURL := a.baseURL + "/polygons?appid=" + url.QueryEscape(a.apiKey)

	a.l.Info("making agromonitoring polygon request", map[string]any{"name": name})

	ctx, cancel := context.WithTimeout(ctx, a.createTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, requestURL, bytes.NewReader(payload))
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := a.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to do request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("failed to read response body: %w", err)
	}

	a.l.Info("received agromonitoring polygon response", map[string]any{
		"status": resp.StatusCode,
	})

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		diagnostic := apperr.Truncate(string(body), createDiagnosticLimit)
		if diagnostic == "" {
			diagnostic = "Unknown error"
		}
		return "", &apperr.UpstreamError{
			Provider:   a.Name(),
			StatusCode: resp.StatusCode,
			Body:       diagnostic,
		}
	}

	var created struct {
		MongoID string `json:"_id"`
		ID      string `json:"id"`
	}
	if err = json.Unmarshal(body, &created); err != nil {
		return "", fmt.Errorf("failed to parse JSON response: %w", err)
	}

	polyID := created.MongoID
	if polyID == "" {
		polyID = created.ID
	}
	if polyID == "" {
		return "", apperr.NewData("no _id returned from polygon creation")
	}

	return polyID, nil
}

// SearchImages lists available satellite images of a polygon in the unix
// time range [start, end], limited to maxCloudPercent cloud cover.
func (a *AgroRepository) SearchImages(ctx context.Context, polyID string, start, end int64, maxCloudPercent int) ([]models.SatelliteImage, error) {
	params := url.Values{}
	params.Set("appid", a.apiKey)
	params.Set("polyid", polyID)
	params.Set("start", strconv.FormatInt(start, 10))
	params.Set("end", strconv.FormatInt(end, 10))
	params.Set("clouds", strconv.Itoa(maxCloudPercent))

	requestURL := a.baseURL + "/image/search?" + params.Encode()

	a.l.Info("making agromonitoring image search request", map[string]any{
		"polyid": polyID, "start": start, "end": end,
	})

	ctx, cancel := context.WithTimeout(ctx, a.searchTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, requestURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := a.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to do request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}

	a.l.Info("received agromonitoring image search response", map[string]any{
		"status": resp.StatusCode,
	})

	if resp.StatusCode != http.StatusOK {
		return nil, &apperr.UpstreamError{
			Provider:   a.Name(),
			StatusCode: resp.StatusCode,
			Body:       apperr.Truncate(string(body), diagnosticLimit),
		}
	}

	var images []models.SatelliteImage
	if err = json.Unmarshal(body, &images); err != nil {
		return nil, fmt.Errorf("failed to parse JSON response: %w", err)
	}

	a.l.Info("parsed image search response", map[string]any{"images": len(images)})

	return images, nil
}

// FetchNDVIStats fetches the statistics resource whose URL the image search
// supplied. The API key is appended only when the URL carries no query
// string of its own.
func (a *AgroRepository) FetchNDVIStats(ctx context.Context, statsURL string) (*models.NDVIStats, error) {
	if !strings.Contains(statsURL, "?") {
		statsURL += "?appid=" + url.QueryEscape(a.apiKey)
	}

	a.l.Info("making agromonitoring NDVI stats request")

	ctx, cancel := context.WithTimeout(ctx, a.statsTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, statsURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := a.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to do request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}

	a.l.Info("received agromonitoring NDVI stats response", map[string]any{
		"status": resp.StatusCode,
	})

	if resp.StatusCode != http.StatusOK {
		return nil, &apperr.UpstreamError{
			Provider:   a.Name(),
			StatusCode: resp.StatusCode,
			Body:       apperr.Truncate(string(body), diagnosticLimit),
		}
	}

	var stats models.NDVIStats
	if err = json.Unmarshal(body, &stats); err != nil {
		return nil, fmt.Errorf("failed to parse JSON response: %w", err)
	}

	return &stats, nil
}

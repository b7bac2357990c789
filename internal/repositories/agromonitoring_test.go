package repositories

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"agro-advisor/config"
	"agro-advisor/internal/apperr"
	"agro-advisor/internal/models"
	"agro-advisor/pkg/observe"
)

func imageryConfig(baseURL string) config.ImageryConfig {
	return config.ImageryConfig{
		BaseURL:       baseURL,
		APIKey:        "test-api-key",
		CreateTimeout: 5 * time.Second,
		SearchTimeout: 5 * time.Second,
		StatsTimeout:  5 * time.Second,
	}
}

func fieldFeature(t *testing.T) *models.Feature {
	t.Helper()

	var feature models.Feature
	err := json.Unmarshal([]byte(`{
		"type": "Feature",
		"properties": {},
		"geometry": {
			"type": "Polygon",
			"coordinates": [[[3.37, 6.52], [3.38, 6.52], [3.38, 6.53], [3.37, 6.52]]]
		}
	}`), &feature)
	require.NoError(t, err)

	return &feature
}

func newAgroRepository(t *testing.T, baseURL string) *AgroRepository {
	t.Helper()

	logger := observe.NewZapLogger("test-app")
	repo, err := NewAgroRepository(imageryConfig(baseURL), logger, http.DefaultClient)
	require.NoError(t, err)

	return repo
}

func TestNewAgroRepository_EmptyAPIKey(t *testing.T) {
	cfg := imageryConfig("http://example.com")
	cfg.APIKey = "  "

	logger := observe.NewZapLogger("test-app")
	_, err := NewAgroRepository(cfg, logger, http.DefaultClient)
	assert.EqualError(t, err, "API key cannot be empty")
}

func TestAgroRepository_CreatePolygon_Success(t *testing.T) {
	var gotPath, gotAppID, gotContentType string
	var gotBody []byte
	mockServer := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotAppID = r.URL.Query().Get("appid")
		gotContentType = r.Header.Get("Content-Type")
		gotBody, _ = io.ReadAll(r.Body)
		w.WriteHeader(http.StatusCreated)
		w.Write([]byte(`{"_id": "64f1a2b3c4d5e6f7a8b9c0d1", "name": "whatever"}`))
	}))
	defer mockServer.Close()

	repo := newAgroRepository(t, mockServer.URL)

	polyID, err := repo.CreatePolygon(context.Background(), "Farm from App - 2026-08-30 12:00", fieldFeature(t))
	require.NoError(t, err)
	assert.Equal(t, "64f1a2b3c4d5e6f7a8b9c0d1", polyID)

	assert.Equal(t, "/polygons", gotPath)
	assert.Equal(t, "test-api-key", gotAppID)
	assert.Equal(t, "application/json", gotContentType)

	var payload struct {
		Name    string          `json:"name"`
		GeoJSON *models.Feature `json:"geo_json"`
	}
	require.NoError(t, json.Unmarshal(gotBody, &payload))
	assert.Equal(t, "Farm from App - 2026-08-30 12:00", payload.Name)
	require.NotNil(t, payload.GeoJSON)
	assert.Equal(t, "Polygon", payload.GeoJSON.Geometry.Type)
}

func TestAgroRepository_CreatePolygon_IDFallback(t *testing.T) {
	mockServer := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"id": "plain-id-123"}`))
	}))
	defer mockServer.Close()

	repo := newAgroRepository(t, mockServer.URL)

	polyID, err := repo.CreatePolygon(context.Background(), "Farm from App - test", fieldFeature(t))
	require.NoError(t, err)
	assert.Equal(t, "plain-id-123", polyID)
}

func TestAgroRepository_CreatePolygon_MissingID(t *testing.T) {
	mockServer := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"name": "no id here"}`))
	}))
	defer mockServer.Close()

	repo := newAgroRepository(t, mockServer.URL)

	_, err := repo.CreatePolygon(context.Background(), "Farm from App - test", fieldFeature(t))
	var dataErr *apperr.DataError
	require.ErrorAs(t, err, &dataErr)
	assert.Contains(t, dataErr.Reason, "no _id returned")
}

func TestAgroRepository_CreatePolygon_UpstreamError(t *testing.T) {
	longBody := strings.Repeat("e", 500)
	mockServer := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnprocessableEntity)
		w.Write([]byte(longBody))
	}))
	defer mockServer.Close()

	repo := newAgroRepository(t, mockServer.URL)

	_, err := repo.CreatePolygon(context.Background(), "Farm from App - test", fieldFeature(t))
	var upErr *apperr.UpstreamError
	require.ErrorAs(t, err, &upErr)
	assert.Equal(t, http.StatusUnprocessableEntity, upErr.StatusCode)
	assert.Len(t, upErr.Body, 200)
}

func TestAgroRepository_CreatePolygon_EmptyErrorBody(t *testing.T) {
	mockServer := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer mockServer.Close()

	repo := newAgroRepository(t, mockServer.URL)

	_, err := repo.CreatePolygon(context.Background(), "Farm from App - test", fieldFeature(t))
	var upErr *apperr.UpstreamError
	require.ErrorAs(t, err, &upErr)
	assert.Equal(t, "Unknown error", upErr.Body)
}

func TestAgroRepository_SearchImages_Success(t *testing.T) {
	var gotQuery map[string]string
	mockServer := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotQuery = map[string]string{
			"appid":  r.URL.Query().Get("appid"),
			"polyid": r.URL.Query().Get("polyid"),
			"start":  r.URL.Query().Get("start"),
			"end":    r.URL.Query().Get("end"),
			"clouds": r.URL.Query().Get("clouds"),
		}
		w.Write([]byte(`[
			{"dt": 1756300000, "stats": {"ndvi": "http://stats/one"}, "image": {"truecolor": "http://img/one"}},
			{"dt": 1756400000, "stats": {"ndvi": "http://stats/two"}, "image": {"truecolor": "http://img/two"}}
		]`))
	}))
	defer mockServer.Close()

	repo := newAgroRepository(t, mockServer.URL)

	images, err := repo.SearchImages(context.Background(), "poly-1", 1753700000, 1756300000, 20)
	require.NoError(t, err)
	require.Len(t, images, 2)
	assert.Equal(t, int64(1756300000), images[0].Dt)
	assert.Equal(t, "http://stats/two", images[1].Stats.NDVI)
	assert.Equal(t, "http://img/two", images[1].Image.Truecolor)

	assert.Equal(t, map[string]string{
		"appid":  "test-api-key",
		"polyid": "poly-1",
		"start":  "1753700000",
		"end":    "1756300000",
		"clouds": "20",
	}, gotQuery)
}

func TestAgroRepository_SearchImages_Empty(t *testing.T) {
	mockServer := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`[]`))
	}))
	defer mockServer.Close()

	repo := newAgroRepository(t, mockServer.URL)

	images, err := repo.SearchImages(context.Background(), "poly-1", 0, 1, 20)
	require.NoError(t, err)
	assert.Empty(t, images)
}

func TestAgroRepository_SearchImages_UpstreamError(t *testing.T) {
	mockServer := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		w.Write([]byte(`{"error": "bad key"}`))
	}))
	defer mockServer.Close()

	repo := newAgroRepository(t, mockServer.URL)

	_, err := repo.SearchImages(context.Background(), "poly-1", 0, 1, 20)
	var upErr *apperr.UpstreamError
	require.ErrorAs(t, err, &upErr)
	assert.Equal(t, http.StatusUnauthorized, upErr.StatusCode)
	assert.Equal(t, "agromonitoring", upErr.Provider)
}

func TestAgroRepository_FetchNDVIStats_AppendsAPIKey(t *testing.T) {
	var gotAppID string
	mockServer := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAppID = r.URL.Query().Get("appid")
		w.Write([]byte(`{"mean": 0.6123, "min": 0.1, "max": 0.9}`))
	}))
	defer mockServer.Close()

	repo := newAgroRepository(t, mockServer.URL)

	stats, err := repo.FetchNDVIStats(context.Background(), mockServer.URL+"/stats/ndvi")
	require.NoError(t, err)
	require.NotNil(t, stats.Mean)
	assert.InDelta(t, 0.6123, *stats.Mean, 1e-9)
	assert.Equal(t, "test-api-key", gotAppID)
}

func TestAgroRepository_FetchNDVIStats_KeepsExistingQuery(t *testing.T) {
	var gotQuery string
	mockServer := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.RawQuery
		w.Write([]byte(`{"mean": 0.42}`))
	}))
	defer mockServer.Close()

	repo := newAgroRepository(t, mockServer.URL)

	_, err := repo.FetchNDVIStats(context.Background(), mockServer.URL+"/stats/ndvi?token=abc")
	require.NoError(t, err)
	assert.Equal(t, "token=abc", gotQuery)
	assert.NotContains(t, gotQuery, "appid")
}

func TestAgroRepository_FetchNDVIStats_MissingMean(t *testing.T) {
	mockServer := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"min": 0.1, "max": 0.9}`))
	}))
	defer mockServer.Close()

	repo := newAgroRepository(t, mockServer.URL)

	stats, err := repo.FetchNDVIStats(context.Background(), mockServer.URL+"/stats/ndvi")
	require.NoError(t, err)
	assert.Nil(t, stats.Mean)
}

func TestAgroRepository_Timeout(t *testing.T) {
	mockServer := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-r.Context().Done()
	}))
	defer mockServer.Close()

	cfg := imageryConfig(mockServer.URL)
	cfg.SearchTimeout = 50 * time.Millisecond

	logger := observe.NewZapLogger("test-app")
	repo, err := NewAgroRepository(cfg, logger, http.DefaultClient)
	require.NoError(t, err)

	_, err = repo.SearchImages(context.Background(), "poly-1", 0, 1, 20)
	require.Error(t, err)
	assert.True(t, errors.Is(err, context.DeadlineExceeded) || apperr.IsTimeout(err))
}

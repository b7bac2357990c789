package advisory

import (
	"context"
	"fmt"
	"sort"
	"time"

	"agro-advisor/config"
	"agro-advisor/internal/apperr"
	"agro-advisor/internal/models"
	"agro-advisor/internal/repositories"
	"agro-advisor/pkg/observe"
)

const (
	DefaultLookbackDays = 30

	secondsPerDay = 86400
)

// CropHealthService evaluates the latest NDVI reading of a registered
// polygon. The outbound calls run sequentially; either one timing out is an
// expected operating condition and yields a structured "timeout" result
// instead of an error.
type CropHealthService struct {
	repo            repositories.ImageryRepository
	ndviHealthy     float64
	ndviModerate    float64
	maxCloudPercent int
	l               *observe.Logger
	now             func() time.Time
}

func NewCropHealthService(repo repositories.ImageryRepository, cfg config.AdvisoryConfig, l *observe.Logger) *CropHealthService {
	return &CropHealthService{
		repo:            repo,
		ndviHealthy:     cfg.NDVIHealthy,
		ndviModerate:    cfg.NDVIModerate,
		maxCloudPercent: cfg.MaxCloudPercent,
		l:               l,
		now:             time.Now,
	}
}

// Evaluate looks back lookbackDays for a clear satellite image and
// classifies the mean NDVI of the newest one.
func (s *CropHealthService) Evaluate(ctx context.Context, polyID string, lookbackDays int) (*models.CropHealthResult, error) {
	if lookbackDays <= 0 {
		lookbackDays = DefaultLookbackDays
	}

	end := s.now().Unix()
	start := end - int64(lookbackDays)*secondsPerDay

	s.l.Info("starting crop health evaluation", map[string]any{
		"poly_id": polyID,
		"days":    lookbackDays,
	})

	images, err := s.repo.SearchImages(ctx, polyID, start, end, s.maxCloudPercent)
	if err != nil {
		if apperr.IsTimeout(err) {
			return timeoutResult(), nil
		}
		return nil, err
	}

	if len(images) == 0 {
		s.l.Info("no satellite images in window", map[string]any{"poly_id": polyID})
		return noImageResult(lookbackDays), nil
	}

	// Newest first; provider order breaks ties.
	sort.SliceStable(images, func(i, j int) bool {
		return images[i].Dt > images[j].Dt
	})
	latest := images[0]

	if latest.Stats.NDVI == "" {
		return nil, apperr.NewData("no NDVI stats URL found in image data")
	}

	ndviStats, err := s.repo.FetchNDVIStats(ctx, latest.Stats.NDVI)
	if err != nil {
		if apperr.IsTimeout(err) {
			return timeoutResult(), nil
		}
		return nil, err
	}

	if ndviStats.Mean == nil {
		return nil, apperr.NewData("no NDVI mean value available")
	}

	status, advice := s.ClassifyNDVI(*ndviStats.Mean)

	s.l.Info("crop health evaluation complete", map[string]any{
		"poly_id":   polyID,
		"ndvi_mean": *ndviStats.Mean,
		"status":    status,
	})

	mean := roundTo(*ndviStats.Mean, 3)

	truecolor := latest.Image.Truecolor
	if truecolor == "" {
		truecolor = "N/A"
	}

	return &models.CropHealthResult{
		PolygonID:      polyID,
		NDVIMean:       &mean,
		HealthStatus:   status,
		Advice:         advice,
		SatelliteDate:  latest.Dt,
		TruecolorImage: truecolor,
	}, nil
}

// ClassifyNDVI maps a mean NDVI to a health tier. Both bounds are inclusive
// at the top of their tier.
func (s *CropHealthService) ClassifyNDVI(mean float64) (status, advice string) {
	switch {
	case mean >= s.ndviHealthy:
		return "Healthy", "Crops look strong. Keep it up!"
	case mean >= s.ndviModerate:
		return "Moderate Stress", "Some stress detected - check water/nutrients soon."
	default:
		return "Poor Health", "Crop struggling - act fast (water, pests, nutrients?)."
	}
}

func noImageResult(lookbackDays int) *models.CropHealthResult {
	return &models.CropHealthResult{
		Status:  "no_image",
		Message: noImageMessage(lookbackDays),
		Tip:     "Try again in 3-7 days or draw polygon over greener area.",
	}
}

func timeoutResult() *models.CropHealthResult {
	return &models.CropHealthResult{
		Status:  "timeout",
		Message: "Imagery API is taking too long to respond (common during harmattan season or server load).",
		Tip:     "Try again in 10-30 minutes or tomorrow. No data lost - your polygon ID is still valid.",
	}
}

func noImageMessage(lookbackDays int) string {
	return fmt.Sprintf("No clear satellite images found in the last %d days (common in harmattan/dry season).", lookbackDays)
}

package advisory

import (
	"context"
	"fmt"
	"math"

	"github.com/montanaflynn/stats"
	"github.com/pkg/errors"

	"agro-advisor/internal/apperr"
	"agro-advisor/internal/models"
	"agro-advisor/internal/repositories"
	"agro-advisor/pkg/observe"
)

const (
	analysisWindowDays = 7

	// 7-day planting window thresholds for maize
	minAvgTemp       = 25.0
	maxAvgTemp       = 32.0
	minTotalRainfall = 30.0
	minRainyDays     = 3
	extremeHeatTemp  = 35.0

	// fallback tier bound
	someRainTotal = 15.0

	// Per-day moisture label uses a strict bound, the rainy-day count an
	// inclusive one. The mismatch is inherited behavior, kept as is.
	moistureHighRainfall = 5.0
	rainyDayRainfall     = 5.0
)

// PlantingService turns a 14-day forecast into a maize planting
// recommendation.
type PlantingService struct {
	repo repositories.ForecastRepository
	l    *observe.Logger
}

func NewPlantingService(repo repositories.ForecastRepository, l *observe.Logger) *PlantingService {
	return &PlantingService{
		repo: repo,
		l:    l,
	}
}

// Advise fetches the forecast and derives the planting recommendation.
func (s *PlantingService) Advise(ctx context.Context, lat, lon float64) (*models.PlantingAdvice, error) {
	s.l.Info("starting planting analysis", map[string]any{"lat": lat, "lon": lon})

	forecast, err := s.repo.FetchForecast(ctx, lat, lon)
	if err != nil {
		return nil, err
	}

	if len(forecast.Daily.Time) == 0 {
		return nil, apperr.NewData("no valid daily data returned")
	}

	summary := DailySummary(forecast.Daily)
	if len(summary) < analysisWindowDays {
		return nil, apperr.NewData("not enough forecast days")
	}

	analysis, err := AnalyzeWindow(summary[:analysisWindowDays])
	if err != nil {
		return nil, errors.Wrap(err, "failed to analyze forecast window")
	}

	recommendation, advice := Recommend(analysis.ConditionsMet, analysis.TotalRainfallMM)

	s.l.Info("planting analysis complete", map[string]any{
		"recommendation": recommendation,
		"rainfall_mm":    analysis.TotalRainfallMM,
		"rainy_days":     analysis.RainyDaysCount,
	})

	var elevation any = "N/A"
	if forecast.Elevation != nil {
		elevation = *forecast.Elevation
	}

	return &models.PlantingAdvice{
		Location: models.Location{
			Latitude:  forecast.Latitude,
			Longitude: forecast.Longitude,
			Elevation: elevation,
		},
		Crop:           "maize (corn)",
		DailySummary:   summary,
		Next7Days:      *analysis,
		Recommendation: recommendation,
		Advice:         advice,
	}, nil
}

// DailySummary derives the per-day rows from the provider's parallel
// arrays, clamped to the shortest one.
func DailySummary(daily repositories.OpenMeteoDaily) []models.DailyForecast {
	n := min(len(daily.Time), len(daily.Temperature2mMax), len(daily.Temperature2mMin), len(daily.PrecipitationSum))

	summary := make([]models.DailyForecast, 0, n)
	for i := 0; i < n; i++ {
		rainfall := daily.PrecipitationSum[i]

		moisture := "Low"
		if rainfall > moistureHighRainfall {
			moisture = "High"
		}

		summary = append(summary, models.DailyForecast{
			Date:              daily.Time[i],
			AvgTemp:           roundTo((daily.Temperature2mMax[i]+daily.Temperature2mMin[i])/2, 2),
			MaxTemp:           roundTo(daily.Temperature2mMax[i], 2),
			MinTemp:           roundTo(daily.Temperature2mMin[i], 2),
			TotalRainfallMM:   roundTo(rainfall, 2),
			MoistureIndicator: moisture,
		})
	}
	return summary
}

// AnalyzeWindow aggregates the analysis window and evaluates the four
// planting conditions.
func AnalyzeWindow(window []models.DailyForecast) (*models.SevenDayAnalysis, error) {
	avgTemps := make(stats.Float64Data, 0, len(window))
	rainfalls := make(stats.Float64Data, 0, len(window))

	rainyDays := 0
	noExtremeHeat := true
	for _, d := range window {
		avgTemps = append(avgTemps, d.AvgTemp)
		rainfalls = append(rainfalls, d.TotalRainfallMM)
		if d.TotalRainfallMM >= rainyDayRainfall {
			rainyDays++
		}
		if d.MaxTemp > extremeHeatTemp {
			noExtremeHeat = false
		}
	}

	avgTemp, err := stats.Mean(avgTemps)
	if err != nil {
		return nil, fmt.Errorf("mean temperature: %w", err)
	}
	totalRainfall, err := stats.Sum(rainfalls)
	if err != nil {
		return nil, fmt.Errorf("total rainfall: %w", err)
	}

	return &models.SevenDayAnalysis{
		AvgTemp:         roundTo(avgTemp, 2),
		TotalRainfallMM: roundTo(totalRainfall, 2),
		RainyDaysCount:  rainyDays,
		ConditionsMet: models.MaizeConditions{
			TemperatureOK:      avgTemp >= minAvgTemp && avgTemp <= maxAvgTemp,
			RainIncoming:       totalRainfall >= minTotalRainfall,
			ConsistentMoisture: rainyDays >= minRainyDays,
			NoExtremeHeat:      noExtremeHeat,
		},
	}, nil
}

// Recommend classifies the window, first match wins.
func Recommend(conditions models.MaizeConditions, totalRainfallMM float64) (recommendation, advice string) {
	switch {
	case conditions.AllMet():
		return "PLANT MAIZE NOW", "Rains starting soon + perfect temps. Prepare land!"
	case totalRainfallMM >= someRainTotal:
		return "PREPARE TO PLANT SOON", "Some rain coming - good if you have irrigation backup."
	default:
		return "WAIT FOR RAINY SEASON (March-June best)",
			fmt.Sprintf("Dry forecast (%vmm next week). Risk of poor germination without irrigation.", totalRainfallMM)
	}
}

func roundTo(v float64, places int) float64 {
	factor := math.Pow(10, float64(places))
	return math.Round(v*factor) / factor
}

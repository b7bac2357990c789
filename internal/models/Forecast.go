package models

// DailyForecast is one derived day of the upstream forecast. Recomputed per
// request, never persisted.
type DailyForecast struct {
	Date              string  `json:"date" example:"2026-03-14"`
	AvgTemp           float64 `json:"avg_temp" example:"28.5"`
	MaxTemp           float64 `json:"max_temp" example:"33.0"`
	MinTemp           float64 `json:"min_temp" example:"24.0"`
	TotalRainfallMM   float64 `json:"total_rainfall_mm" example:"7.2"`
	MoistureIndicator string  `json:"moisture_indicator" example:"High"`
}

// MaizeConditions are the four planting-window checks over the 7-day window.
type MaizeConditions struct {
	TemperatureOK      bool `json:"temperature_ok"`
	RainIncoming       bool `json:"rain_incoming"`
	ConsistentMoisture bool `json:"consistent_moisture"`
	NoExtremeHeat      bool `json:"no_extreme_heat"`
}

func (c MaizeConditions) AllMet() bool {
	return c.TemperatureOK && c.RainIncoming && c.ConsistentMoisture && c.NoExtremeHeat
}

// SevenDayAnalysis aggregates the chronologically-nearest 7 forecast days.
type SevenDayAnalysis struct {
	AvgTemp         float64         `json:"avg_temp" example:"28.0"`
	TotalRainfallMM float64         `json:"total_rainfall_mm" example:"42.5"`
	RainyDaysCount  int             `json:"rainy_days_count" example:"4"`
	ConditionsMet   MaizeConditions `json:"conditions_met"`
}

// Location echoes the coordinates the provider resolved. Elevation is a
// float when the provider reports one, the string "N/A" otherwise.
type Location struct {
	Latitude  float64 `json:"latitude" example:"6.5244"`
	Longitude float64 `json:"longitude" example:"3.3792"`
	Elevation any     `json:"elevation"`
}

// PlantingAdvice is the weather endpoint's full response document.
type PlantingAdvice struct {
	Location       Location         `json:"location"`
	Crop           string           `json:"crop" example:"maize (corn)"`
	DailySummary   []DailyForecast  `json:"daily_summary_next_14_days"`
	Next7Days      SevenDayAnalysis `json:"next_7_days_analysis"`
	Recommendation string           `json:"recommendation" example:"PLANT MAIZE NOW"`
	Advice         string           `json:"advice"`
}

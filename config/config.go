package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	AppName    string `envconfig:"APP_NAME" default:"agro-advisor"`
	AppVersion string `envconfig:"APP_VERSION" default:"1.0.0"`
	AppEnv     string `envconfig:"APP_ENV" default:"development"`
	Port       string `envconfig:"PORT" default:"8080"`
	SentryDSN  string `envconfig:"SENTRY_DSN"`

	Weather  WeatherConfig  `yaml:"weather"`
	Imagery  ImageryConfig  `yaml:"imagery"`
	Advisory AdvisoryConfig `yaml:"advisory"`
}

// WeatherConfig points at the Open-Meteo forecast endpoint.
type WeatherConfig struct {
	BaseURL      string        `envconfig:"OPEN_METEO_URL" yaml:"base_url"`
	ForecastDays int           `envconfig:"FORECAST_DAYS" yaml:"forecast_days"`
	Timeout      time.Duration `envconfig:"WEATHER_TIMEOUT" default:"30s"`
}

// ImageryConfig points at the Agromonitoring API. The NDVI statistics fetch
// is the slow path upstream, hence the much longer deadline.
type ImageryConfig struct {
	BaseURL       string        `envconfig:"AGRO_BASE_URL" yaml:"base_url"`
	APIKey        string        `envconfig:"AGRO_API_KEY" yaml:"api_key,omitempty"`
	CreateTimeout time.Duration `envconfig:"AGRO_CREATE_TIMEOUT" default:"20s"`
	SearchTimeout time.Duration `envconfig:"AGRO_SEARCH_TIMEOUT" default:"40s"`
	StatsTimeout  time.Duration `envconfig:"AGRO_STATS_TIMEOUT" default:"90s"`
}

// AdvisoryConfig carries the fixed classification thresholds. The NDVI cut
// points are tuned for maize in Nigeria.
type AdvisoryConfig struct {
	NDVIHealthy     float64 `envconfig:"NDVI_HEALTHY" yaml:"ndvi_healthy"`
	NDVIModerate    float64 `envconfig:"NDVI_MODERATE" yaml:"ndvi_moderate"`
	MaxCloudPercent int     `envconfig:"MAX_CLOUD_PERCENT" yaml:"max_cloud_percent"`
}

func NewConfig() (*Config, error) {
	return NewConfigFromFile("config/config.yaml")
}

// NewConfigFromFile reads the YAML file when present, then overrides with
// environment variables. A missing file is not an error. Precedence:
// environment > YAML > builtin defaults.
func NewConfigFromFile(path string) (*Config, error) {
	_ = godotenv.Load()

	cnf := Config{
		Weather: WeatherConfig{
			BaseURL:      "https://api.open-meteo.com/v1/forecast",
			ForecastDays: 14,
		},
		Imagery: ImageryConfig{
			BaseURL: "https://api.agromonitoring.com/agro/1.0",
		},
		Advisory: AdvisoryConfig{
			NDVIHealthy:     0.55,
			NDVIModerate:    0.38,
			MaxCloudPercent: 20,
		},
	}

	if yamlData, err := os.ReadFile(path); err == nil {
		if err := yaml.Unmarshal(yamlData, &cnf); err != nil {
			return nil, fmt.Errorf("failed to parse YAML config: %w", err)
		}
	}

	if err := envconfig.Process("", &cnf); err != nil {
		return nil, fmt.Errorf("error environment variable parsing: %w", err)
	}

	return &cnf, nil
}

// Validate reports configuration the service cannot run without. The imagery
// key gates the polygon and crop-health flows; weather works without it.
func (c *Config) Validate() error {
	if c.AppName == "" {
		return fmt.Errorf("app name is required")
	}
	if c.Port == "" {
		return fmt.Errorf("port is required")
	}
	if c.Imagery.APIKey == "" {
		return fmt.Errorf("imagery api key is required (set AGRO_API_KEY)")
	}
	return nil
}

func (c *Config) IsDevelopment() bool {
	return c.AppEnv == "development"
}

func (c *Config) IsProduction() bool {
	return c.AppEnv == "production"
}

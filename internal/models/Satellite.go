package models

// SatelliteImage is one entry of the imagery provider's search result.
type SatelliteImage struct {
	Dt    int64 `json:"dt"`
	Stats struct {
		NDVI string `json:"ndvi"`
	} `json:"stats"`
	Image struct {
		Truecolor string `json:"truecolor"`
	} `json:"image"`
}

// NDVIStats is the per-image statistics resource. Mean is a pointer so a
// payload without the field is distinguishable from a zero mean.
type NDVIStats struct {
	Mean *float64 `json:"mean"`
}

// PolygonCreated is the polygon endpoint's success response.
type PolygonCreated struct {
	PolyID  string `json:"poly_id" example:"60f7cbd9e2aeb2abb8f8b456"`
	Message string `json:"message" example:"Polygon created successfully"`
}

// CropHealthResult is the crop-health endpoint's response. On success the
// Status field is empty; "no_image" and "timeout" are expected non-error
// states (dry season, slow satellite processing) and fill only Status,
// Message and Tip.
type CropHealthResult struct {
	Status  string `json:"status,omitempty" example:"no_image"`
	Message string `json:"message,omitempty"`
	Tip     string `json:"tip,omitempty"`

	PolygonID      string   `json:"polygon_id,omitempty" example:"60f7cbd9e2aeb2abb8f8b456"`
	NDVIMean       *float64 `json:"ndvi_mean,omitempty" example:"0.612"`
	HealthStatus   string   `json:"health_status,omitempty" example:"Healthy"`
	Advice         string   `json:"advice,omitempty"`
	SatelliteDate  int64    `json:"satellite_date,omitempty" example:"1756500000"`
	TruecolorImage string   `json:"truecolor_image,omitempty"`
}

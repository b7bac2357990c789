package http

import (
	"errors"
	"strconv"

	"github.com/gofiber/fiber/v2"

	"agro-advisor/internal/apperr"
	"agro-advisor/internal/models"
)

// ErrorResponse represents an error response
type ErrorResponse struct {
	Error string `json:"error" example:"Missing required parameter: latitude"`
}

// CreatePolygonRequest is the polygon registration request body
type CreatePolygonRequest struct {
	GeoJSON *models.Feature `json:"geo_json"`
}

const formHTML = `<!DOCTYPE html>
<html>
<head><title>Maize Advisor</title></head>
<body>
<h1>Maize Advisor</h1>
<form action="/weather" method="get">
  <label>Latitude <input name="latitude" value="6.5244"></label>
  <label>Longitude <input name="longitude" value="3.3792"></label>
  <button type="submit">Get planting advice</button>
</form>
<p>POST a GeoJSON Feature to /create-polygon to register a field, then query
/crop-health?poly_id=... for its NDVI status.</p>
</body>
</html>`

// handleForm serves the coordinate entry form.
func (r *routes) handleForm(c *fiber.Ctx) error {
	c.Set("Content-Type", "text/html; charset=utf-8")
	return c.SendString(formHTML)
}

// GetPlantingAdvice godoc
// @Summary Get maize planting advice
// @Description Fetches a 14-day forecast and classifies the next 7 days into a planting recommendation
// @Tags Advisory
// @Accept json
// @Produce json
// @Param latitude query number true "Latitude coordinate (-90 to 90)" minimum(-90) maximum(90) example(6.5244)
// @Param longitude query number true "Longitude coordinate (-180 to 180)" minimum(-180) maximum(180) example(3.3792)
// @Success 200 {object} models.PlantingAdvice "Successful response"
// @Failure 400 {object} ErrorResponse "Bad request - invalid parameters"
// @Failure 502 {object} ErrorResponse "Weather provider failure"
// @Failure 500 {object} ErrorResponse "Internal server error"
// @Router /weather [get]
func (r *routes) handleWeatherCall(c *fiber.Ctx) error {
	lat := c.Query("latitude")
	lon := c.Query("longitude")

	// Check for required parameters
	if lat == "" {
		return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{
			Error: "Missing required parameter: latitude",
		})
	}

	if lon == "" {
		return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{
			Error: "Missing required parameter: longitude",
		})
	}

	latFloat, err := strconv.ParseFloat(lat, 64)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{
			Error: "Invalid latitude format",
		})
	}

	if latFloat < -90 || latFloat > 90 {
		return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{
			Error: "Latitude must be between -90 and 90",
		})
	}

	lonFloat, err := strconv.ParseFloat(lon, 64)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{
			Error: "Invalid longitude format",
		})
	}

	if lonFloat < -180 || lonFloat > 180 {
		return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{
			Error: "Longitude must be between -180 and 180",
		})
	}

	advice, err := r.planting.Advise(c.Context(), latFloat, lonFloat)
	if err != nil {
		r.l.Error(err, map[string]any{"lat": latFloat, "lon": lonFloat})
		return r.translateError(c, err, false)
	}

	return c.JSON(advice)
}

// CreatePolygon godoc
// @Summary Register a field boundary
// @Description Converts Leaflet-order coordinates and registers the polygon with the imagery provider
// @Tags Advisory
// @Accept json
// @Produce json
// @Param request body CreatePolygonRequest true "GeoJSON Feature wrapper"
// @Success 200 {object} models.PolygonCreated "Polygon registered"
// @Failure 400 {object} ErrorResponse "Invalid GeoJSON"
// @Failure 500 {object} ErrorResponse "Internal server error"
// @Router /create-polygon [post]
func (r *routes) handleCreatePolygon(c *fiber.Ctx) error {
	var req CreatePolygonRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{
			Error: "Invalid JSON body",
		})
	}

	if req.GeoJSON == nil {
		return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{
			Error: "Invalid GeoJSON: must be Feature with geometry",
		})
	}

	created, err := r.polygons.Register(c.Context(), req.GeoJSON)
	if err != nil {
		r.l.Error(err, map[string]any{"endpoint": "create-polygon"})
		// Imagery provider failures keep the provider's own status code
		return r.translateError(c, err, true)
	}

	return c.JSON(created)
}

// GetCropHealth godoc
// @Summary Get NDVI-based crop health
// @Description Picks the newest clear satellite image in the lookback window and classifies its mean NDVI
// @Tags Advisory
// @Accept json
// @Produce json
// @Param poly_id query string false "Imagery provider polygon id" example(60f7cbd9e2aeb2abb8f8b456)
// @Param days_lookback query integer false "Lookback window in days (default: 30)" minimum(1) example(30)
// @Success 200 {object} models.CropHealthResult "Health report, or a no_image/timeout status"
// @Failure 400 {object} ErrorResponse "Bad request - invalid parameters"
// @Failure 502 {object} ErrorResponse "Imagery provider failure"
// @Failure 500 {object} ErrorResponse "Internal server error"
// @Router /crop-health [get]
func (r *routes) handleCropHealth(c *fiber.Ctx) error {
	polyID := c.Query("poly_id", "your_polygon_id_here")

	daysLookback := c.QueryInt("days_lookback", 30)
	if daysLookback <= 0 {
		return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{
			Error: "days_lookback must be a positive integer",
		})
	}

	result, err := r.health.Evaluate(c.Context(), polyID, daysLookback)
	if err != nil {
		r.l.Error(err, map[string]any{"poly_id": polyID, "days": daysLookback})
		return r.translateError(c, err, false)
	}

	return c.JSON(result)
}

// translateError maps the error taxonomy onto HTTP statuses. With
// keepUpstreamStatus the provider's own status code is passed through
// instead of a generic 502.
func (r *routes) translateError(c *fiber.Ctx, err error, keepUpstreamStatus bool) error {
	var vErr *apperr.ValidationError
	if errors.As(err, &vErr) {
		return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{Error: vErr.Reason})
	}

	var uErr *apperr.UpstreamError
	if errors.As(err, &uErr) {
		status := fiber.StatusBadGateway
		if keepUpstreamStatus {
			status = uErr.StatusCode
		}
		return c.Status(status).JSON(ErrorResponse{Error: uErr.Error()})
	}

	var dErr *apperr.DataError
	if errors.As(err, &dErr) {
		return c.Status(fiber.StatusInternalServerError).JSON(ErrorResponse{Error: dErr.Reason})
	}

	// Crop-health converts timeouts to a structured result before this
	// point; a timeout here means a slow provider on a flow with no
	// dedicated handling.
	if apperr.IsTimeout(err) {
		return c.Status(fiber.StatusBadGateway).JSON(ErrorResponse{
			Error: "Upstream provider timed out",
		})
	}

	return c.Status(fiber.StatusInternalServerError).JSON(ErrorResponse{
		Error: "Unexpected error: " + apperr.Truncate(err.Error(), 150),
	})
}

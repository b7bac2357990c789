package http

import (
	"os"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/swagger"

	"agro-advisor/internal/services/advisory"
	"agro-advisor/pkg/observe"
)

type routes struct {
	planting *advisory.PlantingService
	polygons *advisory.PolygonService
	health   *advisory.CropHealthService
	l        *observe.Logger
}

func NewRouter(
	app *fiber.App,
	plantingService *advisory.PlantingService,
	polygonService *advisory.PolygonService,
	healthService *advisory.CropHealthService,
	l *observe.Logger,
) {
	r := &routes{
		planting: plantingService,
		polygons: polygonService,
		health:   healthService,
		l:        l,
	}

	// Swagger documentation
	app.Get("/swagger/doc.json", func(c *fiber.Ctx) error {
		// Read the generated swagger.json file
		swaggerData, err := os.ReadFile("docs/swagger.json")
		if err != nil {
			return c.Status(fiber.ErrInternalServerError.Code).JSON(fiber.Map{"error": "Failed to read Swagger documentation"})
		}

		c.Set("Content-Type", "application/json")
		return c.Send(swaggerData)
	})

	app.Get("/swagger/*", swagger.New(swagger.Config{
		URL:         "/swagger/doc.json",
		DeepLinking: true,
	}))

	// API routes
	app.Get("/", r.handleForm)
	app.Get("/weather", r.handleWeatherCall)
	app.Post("/create-polygon", r.handleCreatePolygon)
	app.Get("/crop-health", r.handleCropHealth)
}

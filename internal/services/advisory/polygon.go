package advisory

import (
	"context"
	"time"

	"agro-advisor/internal/apperr"
	"agro-advisor/internal/models"
	"agro-advisor/internal/repositories"
	"agro-advisor/pkg/observe"
)

const polygonNamePrefix = "Farm from App - "

// PolygonService registers field boundaries with the imagery provider.
type PolygonService struct {
	repo repositories.ImageryRepository
	l    *observe.Logger
	now  func() time.Time
}

func NewPolygonService(repo repositories.ImageryRepository, l *observe.Logger) *PolygonService {
	return &PolygonService{
		repo: repo,
		l:    l,
		now:  time.Now,
	}
}

// Register validates the feature, converts its coordinates from the Leaflet
// [lat, lon] order to the provider's [lon, lat] order and submits it. The
// returned polygon id is minted by the provider; nothing is kept locally.
func (s *PolygonService) Register(ctx context.Context, feature *models.Feature) (*models.PolygonCreated, error) {
	if err := feature.Validate(); err != nil {
		return nil, apperr.NewValidation("%s", err.Error())
	}

	if err := feature.Geometry.SwapCoordinateOrder(); err != nil {
		return nil, apperr.NewValidation("%s", err.Error())
	}

	name := polygonNamePrefix + s.now().Format("2006-01-02 15:04")

	s.l.Info("registering polygon", map[string]any{
		"name":     name,
		"geometry": feature.Geometry.Type,
	})

	polyID, err := s.repo.CreatePolygon(ctx, name, feature)
	if err != nil {
		return nil, err
	}

	s.l.Info("polygon registered", map[string]any{"poly_id": polyID})

	return &models.PolygonCreated{
		PolyID:  polyID,
		Message: "Polygon created successfully",
	}, nil
}

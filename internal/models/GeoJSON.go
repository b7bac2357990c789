package models

import (
	"encoding/json"
	"fmt"
)

// Position is one leaf coordinate pair. Extra vertical components some
// clients append are dropped on decode.
type Position [2]float64

// Swapped flips the coordinate order, Leaflet [lat, lon] to the imagery
// provider's [lon, lat]. Applying it twice restores the original pair.
func (p Position) Swapped() Position {
	return Position{p[1], p[0]}
}

// Ring is a closed line of positions, one boundary of a polygon.
type Ring []Position

// PolygonCoords are the rings of a Polygon geometry, outer boundary first.
type PolygonCoords []Ring

// MultiPolygonCoords are the member polygons of a MultiPolygon geometry.
type MultiPolygonCoords []PolygonCoords

// Geometry keeps the coordinates raw so geometry types we do not convert
// (Point, LineString, ...) pass through byte for byte.
type Geometry struct {
	Type        string          `json:"type"`
	Coordinates json.RawMessage `json:"coordinates,omitempty"`
}

// Feature is the GeoJSON object the polygon endpoint accepts.
type Feature struct {
	Type       string         `json:"type"`
	Properties map[string]any `json:"properties,omitempty"`
	Geometry   *Geometry      `json:"geometry"`
}

// Validate enforces the minimal shape: type "Feature" with a geometry.
func (f *Feature) Validate() error {
	if f == nil || f.Type != "Feature" || f.Geometry == nil {
		return fmt.Errorf("invalid GeoJSON: must be Feature with geometry")
	}
	return nil
}

// SwapCoordinateOrder reorders every leaf pair of a Polygon or MultiPolygon
// in place. Other geometry types are left unmodified; whether they should
// be converted too is unresolved upstream, so they pass through as-is.
func (g *Geometry) SwapCoordinateOrder() error {
	switch g.Type {
	case "Polygon":
		var coords PolygonCoords
		if err := json.Unmarshal(g.Coordinates, &coords); err != nil {
			return fmt.Errorf("invalid Polygon coordinates: %w", err)
		}
		swapped, err := json.Marshal(swapPolygon(coords))
		if err != nil {
			return err
		}
		g.Coordinates = swapped
	case "MultiPolygon":
		var coords MultiPolygonCoords
		if err := json.Unmarshal(g.Coordinates, &coords); err != nil {
			return fmt.Errorf("invalid MultiPolygon coordinates: %w", err)
		}
		for i, poly := range coords {
			coords[i] = swapPolygon(poly)
		}
		swapped, err := json.Marshal(coords)
		if err != nil {
			return err
		}
		g.Coordinates = swapped
	}
	return nil
}

func swapPolygon(coords PolygonCoords) PolygonCoords {
	for i, ring := range coords {
		for j, pos := range ring {
			coords[i][j] = pos.Swapped()
		}
	}
	return coords
}

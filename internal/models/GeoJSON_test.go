package models

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFeatureValidate(t *testing.T) {
	valid := &Feature{
		Type:     "Feature",
		Geometry: &Geometry{Type: "Polygon", Coordinates: json.RawMessage(`[]`)},
	}
	assert.NoError(t, valid.Validate())

	assert.Error(t, (&Feature{Type: "FeatureCollection", Geometry: valid.Geometry}).Validate())
	assert.Error(t, (&Feature{Type: "Feature"}).Validate())

	var nilFeature *Feature
	assert.Error(t, nilFeature.Validate())
}

func TestSwapCoordinateOrder_Polygon(t *testing.T) {
	g := &Geometry{
		Type:        "Polygon",
		Coordinates: json.RawMessage(`[[[6.5,3.3],[6.6,3.4],[6.7,3.5],[6.5,3.3]]]`),
	}

	require.NoError(t, g.SwapCoordinateOrder())

	var coords PolygonCoords
	require.NoError(t, json.Unmarshal(g.Coordinates, &coords))
	require.Len(t, coords, 1)
	require.Len(t, coords[0], 4)
	assert.Equal(t, Position{3.3, 6.5}, coords[0][0])
	assert.Equal(t, Position{3.4, 6.6}, coords[0][1])
}

func TestSwapCoordinateOrder_MultiPolygon(t *testing.T) {
	g := &Geometry{
		Type:        "MultiPolygon",
		Coordinates: json.RawMessage(`[[[[1,2],[3,4]]],[[[5,6],[7,8]],[[9,10],[11,12]]]]`),
	}

	require.NoError(t, g.SwapCoordinateOrder())

	var coords MultiPolygonCoords
	require.NoError(t, json.Unmarshal(g.Coordinates, &coords))
	require.Len(t, coords, 2)
	require.Len(t, coords[1], 2)
	assert.Equal(t, Position{2, 1}, coords[0][0][0])
	assert.Equal(t, Position{6, 5}, coords[1][0][0])
	assert.Equal(t, Position{10, 9}, coords[1][1][0])
}

func TestSwapCoordinateOrder_Involution(t *testing.T) {
	original := json.RawMessage(`[[[6.5244,3.3792],[6.53,3.38],[6.52,3.39],[6.5244,3.3792]]]`)

	g := &Geometry{Type: "Polygon", Coordinates: append(json.RawMessage{}, original...)}

	require.NoError(t, g.SwapCoordinateOrder())
	require.NoError(t, g.SwapCoordinateOrder())

	var got, want PolygonCoords
	require.NoError(t, json.Unmarshal(g.Coordinates, &got))
	require.NoError(t, json.Unmarshal(original, &want))
	assert.Equal(t, want, got)
}

func TestSwapCoordinateOrder_OtherGeometriesUntouched(t *testing.T) {
	// Point and LineString are not converted, only passed through
	point := json.RawMessage(`[6.5244,3.3792]`)
	g := &Geometry{Type: "Point", Coordinates: point}

	require.NoError(t, g.SwapCoordinateOrder())
	assert.JSONEq(t, string(point), string(g.Coordinates))

	line := json.RawMessage(`[[1,2],[3,4]]`)
	g = &Geometry{Type: "LineString", Coordinates: line}

	require.NoError(t, g.SwapCoordinateOrder())
	assert.JSONEq(t, string(line), string(g.Coordinates))
}

func TestSwapCoordinateOrder_InvalidCoordinates(t *testing.T) {
	g := &Geometry{Type: "Polygon", Coordinates: json.RawMessage(`"not an array"`)}
	assert.Error(t, g.SwapCoordinateOrder())

	g = &Geometry{Type: "MultiPolygon", Coordinates: json.RawMessage(`[[[1,2]]]`)}
	assert.Error(t, g.SwapCoordinateOrder())
}

func TestPositionSwapped(t *testing.T) {
	p := Position{6.5244, 3.3792}
	assert.Equal(t, Position{3.3792, 6.5244}, p.Swapped())
	assert.Equal(t, p, p.Swapped().Swapped())
}

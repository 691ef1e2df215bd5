package wsbridge

import (
	"encoding/json"
	"testing"

	"github.com/jmateos/dispatchmap/internal/core/domain"
)

func TestToFeatureCollection(t *testing.T) {
	fc := toFeatureCollection([]domain.Feature{
		{ID: "v1", Location: domain.Point{Lon: -122, Lat: 37}},
		{ID: "v2", Location: domain.Point{Lon: -121, Lat: 38}},
	})

	if fc.Type != "FeatureCollection" {
		t.Errorf("expected FeatureCollection, got %s", fc.Type)
	}
	if len(fc.Features) != 2 {
		t.Fatalf("expected 2 features, got %d", len(fc.Features))
	}
	f := fc.Features[0]
	if f.Geometry.Type != "Point" {
		t.Errorf("expected Point geometry, got %s", f.Geometry.Type)
	}
	// GeoJSON order is [lon, lat].
	if f.Geometry.Coordinates[0] != -122 || f.Geometry.Coordinates[1] != 37 {
		t.Errorf("unexpected coordinates %v", f.Geometry.Coordinates)
	}
	if f.Properties["id"] != "v1" {
		t.Errorf("expected id property v1, got %v", f.Properties["id"])
	}
}

func TestToFeatureCollection_EmptyIsValidJSON(t *testing.T) {
	fc := toFeatureCollection(nil)
	data, err := json.Marshal(fc)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	// An empty source must serialize with an empty features array, not null.
	want := `{"type":"FeatureCollection","features":[]}`
	if string(data) != want {
		t.Errorf("expected %s, got %s", want, data)
	}
}

func TestToLineGeometry(t *testing.T) {
	line := toLineGeometry(domain.LineString{Coordinates: []domain.Point{
		{Lon: 1, Lat: 2},
		{Lon: 3, Lat: 4},
	}})
	if line.Type != "LineString" {
		t.Errorf("expected LineString, got %s", line.Type)
	}
	if len(line.Coordinates) != 2 || line.Coordinates[1][0] != 3 || line.Coordinates[1][1] != 4 {
		t.Errorf("unexpected coordinates %v", line.Coordinates)
	}
}

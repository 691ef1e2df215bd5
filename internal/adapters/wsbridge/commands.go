package wsbridge

import "github.com/jmateos/dispatchmap/internal/core/domain"

// command is one JSON frame sent to the attached map client. Exactly one
// payload group is populated per op.
type command struct {
	Op string `json:"op"`
	// Correlation id for ops expecting a reply.
	ID string `json:"id,omitempty"`

	// init
	Style  string    `json:"style,omitempty"`
	Center []float64 `json:"center,omitempty"` // [lon, lat]
	Zoom   *float64  `json:"zoom,omitempty"`

	// addImage
	Icon string `json:"icon,omitempty"`
	PNG  []byte `json:"png,omitempty"` // base64 on the wire

	// source/layer ops
	Name string             `json:"name,omitempty"`
	Data *featureCollection `json:"data,omitempty"`
	Line *lineGeometry      `json:"line,omitempty"`

	// addLayer
	Kind             string  `json:"kind,omitempty"` // "symbol" | "line"
	IconAllowOverlap bool    `json:"iconAllowOverlap,omitempty"`
	IconIgnorePlace  bool    `json:"iconIgnorePlacement,omitempty"`
	LineColor        string  `json:"lineColor,omitempty"`
	LineWidth        float64 `json:"lineWidth,omitempty"`
	LineRounded      bool    `json:"lineRounded,omitempty"`

	// fitBounds
	Bounds  [][]float64     `json:"bounds,omitempty"` // [[minLon,minLat],[maxLon,maxLat]]
	Padding *domain.Padding `json:"padding,omitempty"`

	// getPosition
	MaxAgeMs     int64 `json:"maxAgeMs,omitempty"`
	TimeoutMs    int64 `json:"timeoutMs,omitempty"`
	HighAccuracy bool  `json:"highAccuracy,omitempty"`
}

// featureCollection is the GeoJSON shape the client binds to a source.
type featureCollection struct {
	Type     string           `json:"type"`
	Features []geoJSONFeature `json:"features"`
}

type geoJSONFeature struct {
	Type       string         `json:"type"`
	Geometry   pointGeometry  `json:"geometry"`
	Properties map[string]any `json:"properties"`
}

type pointGeometry struct {
	Type        string    `json:"type"`
	Coordinates []float64 `json:"coordinates"` // [lon, lat]
}

type lineGeometry struct {
	Type        string      `json:"type"`
	Coordinates [][]float64 `json:"coordinates"`
}

// toFeatureCollection converts canonical features to the wire shape.
func toFeatureCollection(features []domain.Feature) *featureCollection {
	fc := &featureCollection{Type: "FeatureCollection", Features: []geoJSONFeature{}}
	for _, f := range features {
		fc.Features = append(fc.Features, geoJSONFeature{
			Type: "Feature",
			Geometry: pointGeometry{
				Type:        "Point",
				Coordinates: []float64{f.Location.Lon, f.Location.Lat},
			},
			Properties: map[string]any{"id": f.ID},
		})
	}
	return fc
}

func toLineGeometry(line domain.LineString) *lineGeometry {
	coords := make([][]float64, 0, len(line.Coordinates))
	for _, p := range line.Coordinates {
		coords = append(coords, []float64{p.Lon, p.Lat})
	}
	return &lineGeometry{Type: "LineString", Coordinates: coords}
}

// event is one JSON frame received from the attached map client.
type event struct {
	Event string `json:"event"` // "load" | "moveend" | "click" | "reply"

	// moveend
	Latitude  float64 `json:"latitude,omitempty"`
	Longitude float64 `json:"longitude,omitempty"`

	// click
	Resource  string `json:"resource,omitempty"`
	FeatureID string `json:"featureId,omitempty"`

	// reply
	ID    string `json:"id,omitempty"`
	Error string `json:"error,omitempty"`

	// permission reply
	State string `json:"state,omitempty"`

	// position reply
	Lat          *float64 `json:"lat,omitempty"`
	Lon          *float64 `json:"lon,omitempty"`
	HighAccuracy bool     `json:"highAccuracy,omitempty"`
	TimestampMs  int64    `json:"timestampMs,omitempty"`
}

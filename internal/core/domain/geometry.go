package domain

// Point represents a canonical geographic coordinate (WGS 84).
// It is the only geometry shape the feature registry accepts.
type Point struct {
	Lon float64 `json:"lon"`
	Lat float64 `json:"lat"`
}

// Feature is a Point tagged with the identifier of the map item it came from.
// Identifiers are unique within one update batch but not globally enforced.
type Feature struct {
	ID       string `json:"id"`
	Location Point  `json:"location"`
}

// LineString represents an ordered sequence of geographic coordinates.
// A renderable route carries at least two points.
type LineString struct {
	Coordinates []Point `json:"coordinates"`
}

// BoundingBox represents the minimal axis-aligned rectangle covering a set
// of coordinates. A zero-area box (single point) is valid.
type BoundingBox struct {
	MinLon float64 `json:"min_lon"`
	MinLat float64 `json:"min_lat"`
	MaxLon float64 `json:"max_lon"`
	MaxLat float64 `json:"max_lat"`
}

// Padding reserves screen space on each edge of a camera-fit request,
// e.g. to keep markers clear of a bottom sheet.
type Padding struct {
	Top    float64 `json:"top"`
	Bottom float64 `json:"bottom"`
	Left   float64 `json:"left"`
	Right  float64 `json:"right"`
}

// TerminalPair holds the pickup and dropoff coordinates of a delivery.
// The pair is renderable only when both terminals are present.
type TerminalPair struct {
	Pickup  *Point `json:"pickup,omitempty"`
	Dropoff *Point `json:"dropoff,omitempty"`
}

// Ready reports whether both terminals are present.
func (p TerminalPair) Ready() bool {
	return p.Pickup != nil && p.Dropoff != nil
}

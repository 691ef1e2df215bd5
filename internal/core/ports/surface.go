package ports

import (
	"github.com/jmateos/dispatchmap/internal/core/domain"
)

// LineStyle is the visual style of a line layer.
type LineStyle struct {
	Color   string  `json:"color"`
	Width   float64 `json:"width"`
	Rounded bool    `json:"rounded"` // rounded joins and caps
}

// Surface is the rendering engine the core draws onto. Implementations are
// black boxes (the reference adapter drives a thin map client over
// WebSocket); the core never assumes anything about rendering beyond these
// calls.
//
// All mutating calls are fire-and-forget from the core's perspective: an
// error reports a transport failure, never a rendering outcome. FitBounds
// and EaseTo are animated and offer no completion callback; completion is
// observable only through OnMoveEnd.
type Surface interface {
	// AddImage registers an icon image under an id. Symbol layers may
	// reference the id before the image finishes decoding; they render
	// once it becomes available.
	AddImage(id string, png []byte) error

	// AddPointSource creates an empty point-geometry source.
	AddPointSource(name domain.ResourceName) error

	// AddLineSource creates a source holding a single polyline.
	AddLineSource(name domain.ResourceName, line domain.LineString) error

	// AddSymbolLayer creates a layer drawing a source with an icon.
	// Icons always render: overlap is allowed and placement collisions
	// are ignored, so markers are never culled by density.
	AddSymbolLayer(name domain.ResourceName, icon string) error

	// AddLineLayer creates a layer drawing a line source.
	AddLineLayer(name domain.ResourceName, style LineStyle) error

	// SetSourceData replaces the whole feature collection of a source.
	SetSourceData(name domain.ResourceName, features []domain.Feature) error

	RemoveLayer(name domain.ResourceName) error
	RemoveSource(name domain.ResourceName) error

	// FitBounds requests an animated camera transition framing box.
	FitBounds(box domain.BoundingBox, pad domain.Padding) error

	// EaseTo requests an animated recenter onto a point.
	EaseTo(center domain.Point) error

	// Loaded reports whether the surface finished first-time initialization.
	Loaded() bool

	// OnLoad registers a callback for the surface's first-load signal.
	// The callback fires at most once; registering after the signal has
	// fired invokes it immediately.
	OnLoad(fn func())

	// OnMoveEnd registers the camera-move completion callback.
	OnMoveEnd(fn func(domain.CameraPosition))

	// OnFeatureClick registers a click callback for one named resource.
	OnFeatureClick(name domain.ResourceName, fn func(domain.FeatureClick))
}

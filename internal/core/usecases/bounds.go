package usecases

import (
	"github.com/jmateos/dispatchmap/internal/core/domain"
	"github.com/jmateos/dispatchmap/internal/core/ports"
)

// ComputeBounds returns the minimal axis-aligned box covering all points.
// A single point yields a valid zero-area box.
func ComputeBounds(points []domain.Point) (domain.BoundingBox, error) {
	if len(points) == 0 {
		return domain.BoundingBox{}, domain.ErrEmptyBounds
	}

	box := domain.BoundingBox{
		MinLon: points[0].Lon,
		MinLat: points[0].Lat,
		MaxLon: points[0].Lon,
		MaxLat: points[0].Lat,
	}
	for _, p := range points[1:] {
		if p.Lon < box.MinLon {
			box.MinLon = p.Lon
		}
		if p.Lat < box.MinLat {
			box.MinLat = p.Lat
		}
		if p.Lon > box.MaxLon {
			box.MaxLon = p.Lon
		}
		if p.Lat > box.MaxLat {
			box.MaxLat = p.Lat
		}
	}
	return box, nil
}

// FitCamera requests an animated camera transition framing box, with
// independently configurable padding on each edge. The call does not block
// on the animation; completion is observable only via the surface's own
// move events.
func FitCamera(surface ports.Surface, box domain.BoundingBox, pad domain.Padding) error {
	return surface.FitBounds(box, pad)
}

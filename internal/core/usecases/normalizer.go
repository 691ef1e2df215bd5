package usecases

import (
	"fmt"

	"github.com/jmateos/dispatchmap/internal/core/domain"
)

// Normalize converts one raw map item into a canonical point. Top-level
// long/lat win when both are present; otherwise the nested coords shape is
// read. Pure: identical input always yields the identical point.
func Normalize(item domain.MapItem) (domain.Point, error) {
	if item.Lon != nil && item.Lat != nil {
		return domain.Point{Lon: *item.Lon, Lat: *item.Lat}, nil
	}
	if c := item.Coords; c != nil && c.Lon != nil && c.Lat != nil {
		return domain.Point{Lon: *c.Lon, Lat: *c.Lat}, nil
	}
	return domain.Point{}, fmt.Errorf("item %q: %w", item.ID, domain.ErrMissingCoordinate)
}

// NormalizeBatch normalizes every item, pairing each point with the item's
// identifier. Output order matches input order; duplicates are kept.
func NormalizeBatch(items []domain.MapItem) ([]domain.Feature, error) {
	features := make([]domain.Feature, 0, len(items))
	for _, item := range items {
		p, err := Normalize(item)
		if err != nil {
			return nil, err
		}
		features = append(features, domain.Feature{ID: item.ID, Location: p})
	}
	return features, nil
}

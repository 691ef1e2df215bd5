package domain

import (
	"errors"
	"fmt"
)

// Input-validation failures, surfaced directly to the offending caller.
var (
	// ErrMissingCoordinate means a map item yields no numeric coordinate
	// from either the top-level or the nested shape.
	ErrMissingCoordinate = errors.New("map item has no usable coordinate")

	// ErrEmptyBounds means a bounding box was requested over zero points.
	ErrEmptyBounds = errors.New("cannot compute bounds of an empty point set")
)

// ErrMissingSource indicates a caller-ordering bug: data was pushed at a
// source name that was never created. It is never recovered automatically.
var ErrMissingSource = errors.New("source does not exist")

// Geolocation permission flow failures. Every one of these is non-fatal at
// the controller's initialization path.
var (
	ErrPermissionUnsupported = errors.New("geolocation permission query unsupported")
	ErrPermissionDenied      = errors.New("geolocation permission not granted")
	ErrPositionUnavailable   = errors.New("device position unavailable")
	ErrPositionTimeout       = errors.New("device position request timed out")
	ErrGeocoderUnavailable   = errors.New("no geocoding capability present")
	ErrGeocoderNoResults     = errors.New("geocoder returned no results")
)

// GeocoderError wraps a non-success geocoder status that is not "no results".
type GeocoderError struct {
	Status string
}

func (e *GeocoderError) Error() string {
	return fmt.Sprintf("geocoder failed with status %q", e.Status)
}

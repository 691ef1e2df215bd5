package ports

import (
	"context"

	"github.com/jmateos/dispatchmap/internal/core/domain"
)

// LocationProvider exposes the device geolocation capability of the host
// the map client runs on.
type LocationProvider interface {
	// QueryPermission reports the current geolocation permission state
	// without prompting the user. Hosts lacking the permission-query
	// capability return domain.PermissionUnsupported.
	QueryPermission(ctx context.Context) (domain.PermissionState, error)

	// CurrentPosition requests a position fix. A cached fix no older
	// than opts.MaximumAge may be returned.
	CurrentPosition(ctx context.Context, opts domain.PositionOptions) (*domain.GeoFix, error)
}

// GeocodeResult is the raw outcome of one reverse-geocoding request.
type GeocodeResult struct {
	Status    string   `json:"status"`
	Addresses []string `json:"addresses"`
}

// Geocoder statuses with defined meaning; anything else is a failure
// carrying its status verbatim.
const (
	GeocodeStatusOK          = "OK"
	GeocodeStatusZeroResults = "ZERO_RESULTS"
)

// Geocoder turns a coordinate into human-readable place names.
type Geocoder interface {
	Reverse(ctx context.Context, p domain.Point) (*GeocodeResult, error)
}

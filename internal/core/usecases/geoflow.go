package usecases

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jmateos/dispatchmap/internal/core/domain"
	"github.com/jmateos/dispatchmap/internal/core/ports"
)

const (
	// A cached fix up to a minute old is accepted; a marker does not need
	// a fresh satellite lock.
	positionMaxAge = 60 * time.Second
	// Overall bound on a position acquisition.
	positionTimeout = 50 * time.Second
)

// LocationFlow is the sequential, short-circuiting device-geolocation chain:
// permission check, then position fix, then optional reverse-geocode. Each
// step runs only after the prior one succeeded; the first failure
// short-circuits the rest. Every failure mode is a first-class error value
// from the domain taxonomy.
type LocationFlow struct {
	provider ports.LocationProvider
	geocoder ports.Geocoder
	cache    ports.CacheService
}

// NewLocationFlow creates a flow. provider, geocoder and cache may each be
// nil; a nil provider makes the permission step fail with
// ErrPermissionUnsupported, a nil geocoder makes the geocode step fail with
// ErrGeocoderUnavailable, and a nil cache disables geocode caching.
func NewLocationFlow(provider ports.LocationProvider, geocoder ports.Geocoder, cache ports.CacheService) *LocationFlow {
	return &LocationFlow{provider: provider, geocoder: geocoder, cache: cache}
}

// QueryPermission checks the host's geolocation permission without ever
// prompting. Only an already-granted permission passes; any other state,
// including "prompt", fails with ErrPermissionDenied.
func (f *LocationFlow) QueryPermission(ctx context.Context) error {
	if f.provider == nil {
		return domain.ErrPermissionUnsupported
	}
	state, err := f.provider.QueryPermission(ctx)
	if err != nil {
		return fmt.Errorf("query permission: %w", err)
	}
	switch state {
	case domain.PermissionGranted:
		return nil
	case domain.PermissionUnsupported:
		return domain.ErrPermissionUnsupported
	default:
		return domain.ErrPermissionDenied
	}
}

// Position requests a coarse position fix bounded by positionTimeout,
// accepting a cached fix up to positionMaxAge old.
func (f *LocationFlow) Position(ctx context.Context) (*domain.GeoFix, error) {
	if f.provider == nil {
		return nil, domain.ErrPermissionUnsupported
	}

	ctx, cancel := context.WithTimeout(ctx, positionTimeout)
	defer cancel()

	fix, err := f.provider.CurrentPosition(ctx, domain.PositionOptions{
		MaximumAge:   positionMaxAge,
		Timeout:      positionTimeout,
		HighAccuracy: false,
	})
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return nil, domain.ErrPositionTimeout
		}
		return nil, err
	}
	return fix, nil
}

// ResolveAddress issues one reverse-geocoding request and returns the first
// formatted address. Results are cached by rounded coordinate.
func (f *LocationFlow) ResolveAddress(ctx context.Context, p domain.Point) (string, error) {
	if f.geocoder == nil {
		return "", domain.ErrGeocoderUnavailable
	}

	cacheKey := fmt.Sprintf("geocode:rev:%.5f:%.5f", p.Lat, p.Lon)
	if f.cache != nil {
		if data, err := f.cache.Get(ctx, cacheKey); err == nil && len(data) > 0 {
			return string(data), nil
		}
	}

	res, err := f.geocoder.Reverse(ctx, p)
	if err != nil {
		return "", fmt.Errorf("reverse geocode: %w", err)
	}
	if res.Status == ports.GeocodeStatusZeroResults {
		return "", domain.ErrGeocoderNoResults
	}
	if res.Status != ports.GeocodeStatusOK {
		return "", &domain.GeocoderError{Status: res.Status}
	}
	if len(res.Addresses) == 0 {
		return "", domain.ErrGeocoderNoResults
	}

	addr := res.Addresses[0]
	if f.cache != nil {
		// Addresses are stable; 10 minutes keeps repeat lookups cheap.
		_ = f.cache.Set(ctx, cacheKey, []byte(addr), 600)
	}
	return addr, nil
}

// DeviceLocation runs the permission and position steps.
func (f *LocationFlow) DeviceLocation(ctx context.Context) (*domain.GeoFix, error) {
	if err := f.QueryPermission(ctx); err != nil {
		return nil, err
	}
	return f.Position(ctx)
}

// DeviceLocationPlace runs the full chain and returns a human-readable
// place name for the device position.
func (f *LocationFlow) DeviceLocationPlace(ctx context.Context) (string, error) {
	fix, err := f.DeviceLocation(ctx)
	if err != nil {
		return "", err
	}
	return f.ResolveAddress(ctx, fix.Location)
}

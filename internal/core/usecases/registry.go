package usecases

import (
	"fmt"
	"sync"

	"github.com/jmateos/dispatchmap/internal/core/domain"
	"github.com/jmateos/dispatchmap/internal/core/ports"
)

// routeStyle is the fixed visual style of the route polyline. It is not
// caller-configurable.
var routeStyle = ports.LineStyle{
	Color:   "#4c6ef5",
	Width:   4,
	Rounded: true,
}

// Registry tracks which named (source, layer) resources exist on a surface
// and enforces idempotent, paired creation and removal. It is the one piece
// of mutable shared state in the core; surface events, feed intake and the
// geolocation flow all mutate it, so every operation is individually atomic
// with respect to observable surface state.
type Registry struct {
	surface ports.Surface

	mu        sync.Mutex
	resources map[domain.ResourceName]struct{}
}

// NewRegistry creates a registry for one surface.
func NewRegistry(surface ports.Surface) *Registry {
	return &Registry{
		surface:   surface,
		resources: make(map[domain.ResourceName]struct{}),
	}
}

// Has reports whether the named resource currently exists.
func (r *Registry) Has(name domain.ResourceName) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, ok := r.resources[name]
	return ok
}

// EnsureResource creates an empty point source and its paired symbol layer
// if the name does not exist yet. Repeated calls are no-ops.
func (r *Registry) EnsureResource(name domain.ResourceName, icon string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.resources[name]; ok {
		return nil
	}
	if err := r.surface.AddPointSource(name); err != nil {
		return fmt.Errorf("add source %s: %w", name, err)
	}
	if err := r.surface.AddSymbolLayer(name, icon); err != nil {
		// Roll the source back so no half-created pair is left behind.
		_ = r.surface.RemoveSource(name)
		return fmt.Errorf("add layer %s: %w", name, err)
	}
	r.resources[name] = struct{}{}
	return nil
}

// SetData replaces the whole feature collection bound to a source. The
// source must have been created first; a missing source is a caller-ordering
// bug and propagates.
func (r *Registry) SetData(name domain.ResourceName, features []domain.Feature) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.resources[name]; !ok {
		return fmt.Errorf("%s: %w", name, domain.ErrMissingSource)
	}
	return r.surface.SetSourceData(name, features)
}

// RemovePair removes each named resource whose source and layer both exist,
// layer first so no layer ever references a deleted source. Partial or
// absent pairs are left untouched.
func (r *Registry) RemovePair(names ...domain.ResourceName) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, name := range names {
		if _, ok := r.resources[name]; !ok {
			continue
		}
		if err := r.surface.RemoveLayer(name); err != nil {
			return fmt.Errorf("remove layer %s: %w", name, err)
		}
		if err := r.surface.RemoveSource(name); err != nil {
			return fmt.Errorf("remove source %s: %w", name, err)
		}
		delete(r.resources, name)
	}
	return nil
}

// AddRoute creates the single route line resource. At most one route exists
// at a time; if one is already present the call is a no-op and the new
// coordinates are discarded.
func (r *Registry) AddRoute(coords []domain.Point) error {
	if len(coords) < 2 {
		return fmt.Errorf("route needs at least 2 coordinates, got %d", len(coords))
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.resources[domain.ResourceRoute]; ok {
		return nil
	}
	line := domain.LineString{Coordinates: coords}
	if err := r.surface.AddLineSource(domain.ResourceRoute, line); err != nil {
		return fmt.Errorf("add route source: %w", err)
	}
	if err := r.surface.AddLineLayer(domain.ResourceRoute, routeStyle); err != nil {
		_ = r.surface.RemoveSource(domain.ResourceRoute)
		return fmt.Errorf("add route layer: %w", err)
	}
	r.resources[domain.ResourceRoute] = struct{}{}
	return nil
}

// ClearRoute removes the route resource if present.
func (r *Registry) ClearRoute() error {
	return r.RemovePair(domain.ResourceRoute)
}

// AddTerminalPair creates the pickup and dropoff resources together.
func (r *Registry) AddTerminalPair() error {
	if err := r.EnsureResource(domain.ResourcePickup, iconFor(domain.ResourcePickup)); err != nil {
		return err
	}
	return r.EnsureResource(domain.ResourceDropoff, iconFor(domain.ResourceDropoff))
}

// ClearTerminalPair removes pickup and dropoff together, and only when both
// exist. One terminal without the other is never removed.
func (r *Registry) ClearTerminalPair() error {
	r.mu.Lock()
	_, hasPickup := r.resources[domain.ResourcePickup]
	_, hasDropoff := r.resources[domain.ResourceDropoff]
	r.mu.Unlock()

	if !hasPickup || !hasDropoff {
		return nil
	}
	return r.RemovePair(domain.ResourcePickup, domain.ResourceDropoff)
}

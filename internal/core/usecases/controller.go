package usecases

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/jmateos/dispatchmap/internal/core/domain"
	"github.com/jmateos/dispatchmap/internal/core/ports"
)

// ControllerState tracks where a controller is in its lifecycle.
type ControllerState string

const (
	StateUninitialized ControllerState = "uninitialized"
	StateInitializing  ControllerState = "initializing"
	StateReady         ControllerState = "ready"
	StateActive        ControllerState = "active"
)

// ControllerConfig wires a controller at construction time. Everything the
// controller needs, including the delivery workflow stage lookup, arrives
// here explicitly; the core reads no process-wide state.
type ControllerConfig struct {
	Surface ports.Surface

	// Icons maps icon logical id to encoded image bytes. Missing or
	// broken icons are skipped individually and never block resource
	// creation.
	Icons map[string][]byte

	// Location is the device-geolocation chain. Optional; without it the
	// map simply never shows a location marker.
	Location *LocationFlow

	// Workflow and DeliveryID feed the recenter decision: the camera
	// follows the device fix only while the delivery is still in draft.
	Workflow   ports.WorkflowStore
	DeliveryID string

	// OnItemClick receives taps on vehicle and charger markers.
	OnItemClick func(domain.FeatureClick)

	// OnCameraMove receives every camera-move completion, in any state.
	OnCameraMove func(domain.CameraPosition)
}

// Controller is the top-level map orchestrator. It owns the surface, the
// feature registry and the load gate, runs the geolocation flow once at
// construction, and exposes the map mutation operations. All registry
// mutations are routed through the load gate so none ever reaches the
// surface before its first load completes.
type Controller struct {
	surface  ports.Surface
	registry *Registry
	gate     *LoadGate
	flow     *LocationFlow

	workflow   ports.WorkflowStore
	deliveryID string

	onItemClick  func(domain.FeatureClick)
	onCameraMove func(domain.CameraPosition)

	mu    sync.Mutex
	state ControllerState
}

// NewController creates the controller, registers icons, wires surface
// events and starts the geolocation flow. The surface's load signal flips
// the gate open and eagerly creates the vehicles and chargers resources.
func NewController(cfg ControllerConfig) (*Controller, error) {
	if cfg.Surface == nil {
		return nil, fmt.Errorf("controller requires a surface")
	}

	c := &Controller{
		surface:      cfg.Surface,
		registry:     NewRegistry(cfg.Surface),
		gate:         NewLoadGate(),
		flow:         cfg.Location,
		workflow:     cfg.Workflow,
		deliveryID:   cfg.DeliveryID,
		onItemClick:  cfg.OnItemClick,
		onCameraMove: cfg.OnCameraMove,
		state:        StateInitializing,
	}

	// Register icons, each independently; a bad icon costs one marker
	// style, not initialization.
	for _, ic := range MarkerIcons {
		png, ok := cfg.Icons[ic.ID]
		if !ok {
			continue
		}
		if err := c.surface.AddImage(ic.ID, png); err != nil {
			slog.Warn("icon registration failed", "icon", ic.ID, "error", err)
		}
	}

	// Camera moves are forwarded regardless of state.
	c.surface.OnMoveEnd(func(pos domain.CameraPosition) {
		if c.onCameraMove != nil {
			c.onCameraMove(pos)
		}
	})

	c.surface.OnLoad(c.onSurfaceReady)

	// The geolocation flow is independent of surface readiness and may
	// finish before or after it.
	if c.flow != nil {
		go c.runLocationFlow(context.Background())
	}

	return c, nil
}

// State returns the controller's lifecycle state.
func (c *Controller) State() ControllerState {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

func (c *Controller) setState(s ControllerState) {
	c.mu.Lock()
	c.state = s
	c.mu.Unlock()
}

// onSurfaceReady runs once when the surface reports its first load.
func (c *Controller) onSurfaceReady() {
	for _, name := range []domain.ResourceName{domain.ResourceVehicles, domain.ResourceChargers} {
		if err := c.registry.EnsureResource(name, iconFor(name)); err != nil {
			slog.Error("eager resource creation failed", "resource", name, "error", err)
		}
		c.surface.OnFeatureClick(name, func(click domain.FeatureClick) {
			if c.onItemClick != nil {
				c.onItemClick(click)
			}
		})
	}

	c.setState(StateReady)
	c.gate.NotifyReady()
}

// runLocationFlow places the location marker and optionally recenters.
// Every failure here is non-fatal: the map stays fully functional without
// a marker or recenter.
func (c *Controller) runLocationFlow(ctx context.Context) {
	fix, err := c.flow.DeviceLocation(ctx)
	if err != nil {
		slog.Debug("location flow skipped", "error", err)
		return
	}

	recenter := c.shouldRecenter(ctx)

	c.gate.RunWhenReady(func() {
		if err := c.registry.EnsureResource(domain.ResourceLocation, iconFor(domain.ResourceLocation)); err != nil {
			slog.Debug("location marker skipped", "error", err)
			return
		}
		feature := domain.Feature{ID: "device", Location: fix.Location}
		if err := c.registry.SetData(domain.ResourceLocation, []domain.Feature{feature}); err != nil {
			slog.Debug("location marker data skipped", "error", err)
			return
		}
		if recenter {
			if err := c.surface.EaseTo(fix.Location); err != nil {
				slog.Debug("recenter skipped", "error", err)
			}
		}
	})
}

// shouldRecenter reports whether the delivery workflow is still in draft.
func (c *Controller) shouldRecenter(ctx context.Context) bool {
	if c.workflow == nil || c.deliveryID == "" {
		return false
	}
	stage, err := c.workflow.Stage(ctx, c.deliveryID)
	if err != nil {
		slog.Debug("workflow stage lookup failed", "error", err)
		return false
	}
	return stage == domain.WorkflowStageDraft
}

// UpdateMap replaces the feature set of the itemType resource with the
// normalized items, and updates terminals and the tracked-vehicle marker
// when the options carry them. Mutations arriving before surface readiness
// are queued, not dropped.
func (c *Controller) UpdateMap(items []domain.MapItem, itemType domain.ItemType, opts ports.UpdateOptions) error {
	if !itemType.Valid() {
		return fmt.Errorf("unknown item type %q", itemType)
	}
	features, err := NormalizeBatch(items)
	if err != nil {
		return err
	}

	name := domain.ResourceName(itemType)
	c.gate.RunWhenReady(func() {
		if err := c.registry.EnsureResource(name, iconFor(name)); err != nil {
			slog.Error("resource creation failed", "resource", name, "error", err)
			return
		}
		if err := c.registry.SetData(name, features); err != nil {
			slog.Error("data update failed", "resource", name, "error", err)
		}
	})

	pair := domain.TerminalPair{Pickup: opts.Pickup, Dropoff: opts.Dropoff}
	if pair.Ready() {
		pickup, dropoff := *opts.Pickup, *opts.Dropoff
		c.gate.RunWhenReady(func() {
			if err := c.registry.AddTerminalPair(); err != nil {
				slog.Error("terminal pair creation failed", "error", err)
				return
			}
			c.setTerminalData(pickup, dropoff)
		})
	}

	if opts.VehicleLocation != nil {
		loc := *opts.VehicleLocation
		c.gate.RunWhenReady(func() {
			if err := c.registry.EnsureResource(domain.ResourceLocation, iconFor(domain.ResourceLocation)); err != nil {
				slog.Error("location resource creation failed", "error", err)
				return
			}
			feature := domain.Feature{ID: "vehicle-location", Location: loc}
			if err := c.registry.SetData(domain.ResourceLocation, []domain.Feature{feature}); err != nil {
				slog.Error("location data update failed", "error", err)
			}
		})
	}

	c.setState(StateActive)
	return nil
}

func (c *Controller) setTerminalData(pickup, dropoff domain.Point) {
	pf := []domain.Feature{{ID: string(domain.ResourcePickup), Location: pickup}}
	if err := c.registry.SetData(domain.ResourcePickup, pf); err != nil {
		slog.Error("pickup data update failed", "error", err)
	}
	df := []domain.Feature{{ID: string(domain.ResourceDropoff), Location: dropoff}}
	if err := c.registry.SetData(domain.ResourceDropoff, df); err != nil {
		slog.Error("dropoff data update failed", "error", err)
	}
}

// InitiateZoomTransition frames all terminal coordinates with the given
// padding. Camera fitting is not gated on readiness; the surface accepts
// camera requests as soon as it exists.
func (c *Controller) InitiateZoomTransition(terminals map[string]domain.Point, pad domain.Padding) error {
	points := make([]domain.Point, 0, len(terminals))
	for _, p := range terminals {
		points = append(points, p)
	}
	box, err := ComputeBounds(points)
	if err != nil {
		return err
	}
	return FitCamera(c.surface, box, pad)
}

// AddRoute draws the ordered terminals as a single polyline. Creation is
// idempotent; call ClearRoute first to replace an existing route.
func (c *Controller) AddRoute(orderedTerminals []domain.Point) error {
	if len(orderedTerminals) < 2 {
		return fmt.Errorf("route needs at least 2 coordinates, got %d", len(orderedTerminals))
	}
	coords := make([]domain.Point, len(orderedTerminals))
	copy(coords, orderedTerminals)
	c.gate.RunWhenReady(func() {
		if err := c.registry.AddRoute(coords); err != nil {
			slog.Error("route creation failed", "error", err)
		}
	})
	return nil
}

// ClearRoute removes the route polyline if present.
func (c *Controller) ClearRoute() {
	c.gate.RunWhenReady(func() {
		if err := c.registry.ClearRoute(); err != nil {
			slog.Error("route removal failed", "error", err)
		}
	})
}

// AddTerminals creates the pickup and dropoff resources together.
func (c *Controller) AddTerminals() {
	c.gate.RunWhenReady(func() {
		if err := c.registry.AddTerminalPair(); err != nil {
			slog.Error("terminal pair creation failed", "error", err)
		}
	})
}

// ClearTerminals removes pickup and dropoff together; a partial pair is
// left untouched.
func (c *Controller) ClearTerminals() {
	c.gate.RunWhenReady(func() {
		if err := c.registry.ClearTerminalPair(); err != nil {
			slog.Error("terminal pair removal failed", "error", err)
		}
	})
}

// DeviceLocation exposes the permission-gated position fix.
func (c *Controller) DeviceLocation(ctx context.Context) (*domain.GeoFix, error) {
	if c.flow == nil {
		return nil, domain.ErrPermissionUnsupported
	}
	return c.flow.DeviceLocation(ctx)
}

// DeviceLocationPlace exposes the full chain up to the reverse-geocoded
// place name.
func (c *Controller) DeviceLocationPlace(ctx context.Context) (string, error) {
	if c.flow == nil {
		return "", domain.ErrPermissionUnsupported
	}
	return c.flow.DeviceLocationPlace(ctx)
}

package http

import (
	"context"
	"errors"
	"sort"
	"strconv"
	"sync"

	"github.com/jmateos/dispatchmap/internal/core/domain"
	"github.com/jmateos/dispatchmap/internal/core/ports"
	"github.com/jmateos/dispatchmap/internal/core/usecases"
	"github.com/jmateos/dispatchmap/internal/pkg/metrics"
)

var (
	errNoSession      = errors.New("no surface attached")
	errManySessions   = errors.New("multiple surfaces attached, session id required")
	errUnknownSession = errors.New("unknown session")
)

// MapSession is the per-connection control surface the hub fans out to.
// *usecases.Controller satisfies it.
type MapSession interface {
	State() usecases.ControllerState
	UpdateMap(items []domain.MapItem, itemType domain.ItemType, opts ports.UpdateOptions) error
	InitiateZoomTransition(terminals map[string]domain.Point, pad domain.Padding) error
	AddRoute(orderedTerminals []domain.Point) error
	ClearRoute()
	AddTerminals()
	ClearTerminals()
	DeviceLocation(ctx context.Context) (*domain.GeoFix, error)
	DeviceLocationPlace(ctx context.Context) (string, error)
}

// Hub tracks attached map sessions and applies control operations to all
// of them. It implements ports.MapUpdater so the NATS intake can feed
// every connected surface.
type Hub struct {
	mu       sync.RWMutex
	sessions map[string]MapSession
	nextID   uint64
}

func NewHub() *Hub {
	return &Hub{sessions: make(map[string]MapSession)}
}

// Attach registers a session and returns its id.
func (h *Hub) Attach(s MapSession) string {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.nextID++
	id := strconv.FormatUint(h.nextID, 10)
	h.sessions[id] = s
	metrics.SurfacesAttached.Set(float64(len(h.sessions)))
	return id
}

// Detach removes a session.
func (h *Hub) Detach(id string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	delete(h.sessions, id)
	metrics.SurfacesAttached.Set(float64(len(h.sessions)))
}

// Count reports how many surfaces are attached.
func (h *Hub) Count() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.sessions)
}

// SessionIDs lists attached session ids in ascending order.
func (h *Hub) SessionIDs() []string {
	h.mu.RLock()
	defer h.mu.RUnlock()
	ids := make([]string, 0, len(h.sessions))
	for id := range h.sessions {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

func (h *Hub) snapshot() []MapSession {
	h.mu.RLock()
	defer h.mu.RUnlock()
	out := make([]MapSession, 0, len(h.sessions))
	for _, s := range h.sessions {
		out = append(out, s)
	}
	return out
}

// UpdateMap applies an item batch to every attached surface.
func (h *Hub) UpdateMap(items []domain.MapItem, itemType domain.ItemType, opts ports.UpdateOptions) error {
	var errs []error
	for _, s := range h.snapshot() {
		if err := s.UpdateMap(items, itemType, opts); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Zoom fits every attached surface's camera around the given terminals.
func (h *Hub) Zoom(terminals map[string]domain.Point, pad domain.Padding) error {
	var errs []error
	for _, s := range h.snapshot() {
		if err := s.InitiateZoomTransition(terminals, pad); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// SetRoute draws the route on every attached surface.
func (h *Hub) SetRoute(coords []domain.Point) error {
	var errs []error
	for _, s := range h.snapshot() {
		if err := s.AddRoute(coords); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// ClearRoute removes the route from every attached surface.
func (h *Hub) ClearRoute() {
	for _, s := range h.snapshot() {
		s.ClearRoute()
	}
}

// AddTerminals ensures the terminal resources on every attached surface.
func (h *Hub) AddTerminals() {
	for _, s := range h.snapshot() {
		s.AddTerminals()
	}
}

// ClearTerminals removes the terminal resources from every attached surface.
func (h *Hub) ClearTerminals() {
	for _, s := range h.snapshot() {
		s.ClearTerminals()
	}
}

// pick resolves which session a device-scoped request targets. An empty id
// is unambiguous only while exactly one surface is attached.
func (h *Hub) pick(id string) (MapSession, error) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	if id != "" {
		s, ok := h.sessions[id]
		if !ok {
			return nil, errUnknownSession
		}
		return s, nil
	}
	switch len(h.sessions) {
	case 0:
		return nil, errNoSession
	case 1:
		for _, s := range h.sessions {
			return s, nil
		}
	}
	return nil, errManySessions
}

// Locate asks one session's device for its position.
func (h *Hub) Locate(ctx context.Context, sessionID string) (*domain.GeoFix, error) {
	s, err := h.pick(sessionID)
	if err != nil {
		return nil, err
	}
	return s.DeviceLocation(ctx)
}

// LocatePlace asks one session's device for its position and resolves it
// to an address.
func (h *Hub) LocatePlace(ctx context.Context, sessionID string) (string, error) {
	s, err := h.pick(sessionID)
	if err != nil {
		return "", err
	}
	return s.DeviceLocationPlace(ctx)
}

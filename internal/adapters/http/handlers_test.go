package http

import (
	"context"
	"io"
	"log/slog"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gofiber/fiber/v2"

	"github.com/jmateos/dispatchmap/internal/core/domain"
	"github.com/jmateos/dispatchmap/internal/core/ports"
	"github.com/jmateos/dispatchmap/internal/core/usecases"
)

// mockSession implements MapSession with overridable behavior.
type mockSession struct {
	updateFn func([]domain.MapItem, domain.ItemType, ports.UpdateOptions) error
	zoomFn   func(map[string]domain.Point, domain.Padding) error
	routeFn  func([]domain.Point) error
	locateFn func(context.Context) (*domain.GeoFix, error)
	placeFn  func(context.Context) (string, error)

	routeCleared    bool
	terminalsAdded  bool
	terminalsRemove bool
}

func (m *mockSession) State() usecases.ControllerState { return usecases.StateReady }

func (m *mockSession) UpdateMap(items []domain.MapItem, t domain.ItemType, o ports.UpdateOptions) error {
	if m.updateFn != nil {
		return m.updateFn(items, t, o)
	}
	return nil
}

func (m *mockSession) InitiateZoomTransition(terminals map[string]domain.Point, pad domain.Padding) error {
	if m.zoomFn != nil {
		return m.zoomFn(terminals, pad)
	}
	return nil
}

func (m *mockSession) AddRoute(coords []domain.Point) error {
	if m.routeFn != nil {
		return m.routeFn(coords)
	}
	return nil
}

func (m *mockSession) ClearRoute()     { m.routeCleared = true }
func (m *mockSession) AddTerminals()   { m.terminalsAdded = true }
func (m *mockSession) ClearTerminals() { m.terminalsRemove = true }

func (m *mockSession) DeviceLocation(ctx context.Context) (*domain.GeoFix, error) {
	if m.locateFn != nil {
		return m.locateFn(ctx)
	}
	return nil, domain.ErrPermissionUnsupported
}

func (m *mockSession) DeviceLocationPlace(ctx context.Context) (string, error) {
	if m.placeFn != nil {
		return m.placeFn(ctx)
	}
	return "", domain.ErrPermissionUnsupported
}

func testApp(sessions ...MapSession) (*fiber.App, *Dependencies) {
	hub := NewHub()
	for _, s := range sessions {
		hub.Attach(s)
	}
	deps := &Dependencies{
		Hub: hub,
		Log: slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	app := fiber.New()
	app.Post("/v1/map/items", UpdateMapHandler(deps))
	app.Post("/v1/map/zoom", ZoomHandler(deps))
	app.Post("/v1/map/route", SetRouteHandler(deps))
	app.Delete("/v1/map/route", ClearRouteHandler(deps))
	app.Post("/v1/map/terminals", AddTerminalsHandler(deps))
	app.Delete("/v1/map/terminals", ClearTerminalsHandler(deps))
	app.Get("/v1/location", LocationHandler(deps))
	app.Get("/v1/location/place", LocationPlaceHandler(deps))
	app.Get("/v1/sessions", ListSessionsHandler(deps))
	return app, deps
}

func TestUpdateMapHandler(t *testing.T) {
	var gotType domain.ItemType
	var gotItems []domain.MapItem
	session := &mockSession{
		updateFn: func(items []domain.MapItem, t domain.ItemType, o ports.UpdateOptions) error {
			gotItems, gotType = items, t
			return nil
		},
	}
	app, _ := testApp(session)

	body := `{"type":"vehicles","items":[{"id":"v1","long":-122.4,"lat":37.7}]}`
	req := httptest.NewRequest("POST", "/v1/map/items", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")

	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp.StatusCode != 200 {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	if gotType != domain.ItemTypeVehicles {
		t.Errorf("expected vehicles, got %s", gotType)
	}
	if len(gotItems) != 1 || gotItems[0].ID != "v1" {
		t.Errorf("unexpected items %+v", gotItems)
	}
}

func TestUpdateMapHandlerRejectsUnknownType(t *testing.T) {
	app, _ := testApp(&mockSession{})

	req := httptest.NewRequest("POST", "/v1/map/items", strings.NewReader(`{"type":"drones","items":[]}`))
	req.Header.Set("Content-Type", "application/json")

	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp.StatusCode != 400 {
		t.Errorf("expected 400, got %d", resp.StatusCode)
	}
}

func TestSetRouteHandlerRejectsShortRoute(t *testing.T) {
	app, _ := testApp(&mockSession{})

	req := httptest.NewRequest("POST", "/v1/map/route", strings.NewReader(`{"coordinates":[{"lon":1,"lat":2}]}`))
	req.Header.Set("Content-Type", "application/json")

	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp.StatusCode != 400 {
		t.Errorf("expected 400, got %d", resp.StatusCode)
	}
}

func TestClearHandlersFanOut(t *testing.T) {
	session := &mockSession{}
	app, _ := testApp(session)

	for _, tc := range []struct {
		method, path string
	}{
		{"DELETE", "/v1/map/route"},
		{"POST", "/v1/map/terminals"},
		{"DELETE", "/v1/map/terminals"},
	} {
		resp, err := app.Test(httptest.NewRequest(tc.method, tc.path, nil))
		if err != nil {
			t.Fatalf("%s %s: unexpected error: %v", tc.method, tc.path, err)
		}
		if resp.StatusCode != 200 {
			t.Errorf("%s %s: expected 200, got %d", tc.method, tc.path, resp.StatusCode)
		}
	}
	if !session.routeCleared || !session.terminalsAdded || !session.terminalsRemove {
		t.Errorf("expected all fan-out operations to reach the session")
	}
}

func TestLocationHandlerNoSession(t *testing.T) {
	app, _ := testApp()

	resp, err := app.Test(httptest.NewRequest("GET", "/v1/location", nil))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp.StatusCode != 409 {
		t.Errorf("expected 409 with no surface attached, got %d", resp.StatusCode)
	}
}

func TestLocationHandlerPermissionDenied(t *testing.T) {
	session := &mockSession{
		locateFn: func(context.Context) (*domain.GeoFix, error) {
			return nil, domain.ErrPermissionDenied
		},
	}
	app, _ := testApp(session)

	resp, err := app.Test(httptest.NewRequest("GET", "/v1/location", nil))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp.StatusCode != 403 {
		t.Errorf("expected 403, got %d", resp.StatusCode)
	}
}

func TestLocationPlaceHandler(t *testing.T) {
	session := &mockSession{
		placeFn: func(context.Context) (string, error) {
			return "1 Main St", nil
		},
	}
	app, _ := testApp(session)

	resp, err := app.Test(httptest.NewRequest("GET", "/v1/location/place", nil))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp.StatusCode != 200 {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	body, _ := io.ReadAll(resp.Body)
	if !strings.Contains(string(body), "1 Main St") {
		t.Errorf("expected place in body, got %s", body)
	}
}

func TestLocationHandlerUnknownSession(t *testing.T) {
	app, _ := testApp(&mockSession{})

	resp, err := app.Test(httptest.NewRequest("GET", "/v1/location?session=999", nil))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp.StatusCode != 404 {
		t.Errorf("expected 404, got %d", resp.StatusCode)
	}
}

package usecases_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/jmateos/dispatchmap/internal/core/domain"
	"github.com/jmateos/dispatchmap/internal/core/ports"
	"github.com/jmateos/dispatchmap/internal/core/usecases"
)

// --- Mock LocationProvider ---

type mockLocationProvider struct {
	queryFn    func(ctx context.Context) (domain.PermissionState, error)
	positionFn func(ctx context.Context, opts domain.PositionOptions) (*domain.GeoFix, error)

	positionCalls int
}

func (m *mockLocationProvider) QueryPermission(ctx context.Context) (domain.PermissionState, error) {
	if m.queryFn != nil {
		return m.queryFn(ctx)
	}
	return domain.PermissionGranted, nil
}

func (m *mockLocationProvider) CurrentPosition(ctx context.Context, opts domain.PositionOptions) (*domain.GeoFix, error) {
	m.positionCalls++
	if m.positionFn != nil {
		return m.positionFn(ctx, opts)
	}
	return &domain.GeoFix{Location: domain.Point{Lon: -122, Lat: 37}, Timestamp: time.Now()}, nil
}

// --- Mock Geocoder ---

type mockGeocoder struct {
	reverseFn func(ctx context.Context, p domain.Point) (*ports.GeocodeResult, error)
	calls     int
}

func (m *mockGeocoder) Reverse(ctx context.Context, p domain.Point) (*ports.GeocodeResult, error) {
	m.calls++
	if m.reverseFn != nil {
		return m.reverseFn(ctx, p)
	}
	return &ports.GeocodeResult{Status: ports.GeocodeStatusOK, Addresses: []string{"1 Main St"}}, nil
}

// --- Mock CacheService ---

type mockCache struct {
	data map[string][]byte
}

func newMockCache() *mockCache { return &mockCache{data: make(map[string][]byte)} }

func (m *mockCache) Get(ctx context.Context, key string) ([]byte, error) {
	if v, ok := m.data[key]; ok {
		return v, nil
	}
	return nil, errors.New("miss")
}

func (m *mockCache) Set(ctx context.Context, key string, value []byte, ttlSeconds int) error {
	m.data[key] = value
	return nil
}

func (m *mockCache) Delete(ctx context.Context, key string) error {
	delete(m.data, key)
	return nil
}

// --- Tests ---

func TestLocationFlow_UnsupportedShortCircuits(t *testing.T) {
	provider := &mockLocationProvider{
		queryFn: func(ctx context.Context) (domain.PermissionState, error) {
			return domain.PermissionUnsupported, nil
		},
	}
	flow := usecases.NewLocationFlow(provider, nil, nil)

	_, err := flow.DeviceLocation(context.Background())
	if !errors.Is(err, domain.ErrPermissionUnsupported) {
		t.Fatalf("expected ErrPermissionUnsupported, got %v", err)
	}
	if provider.positionCalls != 0 {
		t.Error("position acquisition must not run after a failed permission check")
	}
}

func TestLocationFlow_NilProviderIsUnsupported(t *testing.T) {
	flow := usecases.NewLocationFlow(nil, nil, nil)
	err := flow.QueryPermission(context.Background())
	if !errors.Is(err, domain.ErrPermissionUnsupported) {
		t.Fatalf("expected ErrPermissionUnsupported, got %v", err)
	}
}

func TestLocationFlow_PromptCountsAsDenied(t *testing.T) {
	provider := &mockLocationProvider{
		queryFn: func(ctx context.Context) (domain.PermissionState, error) {
			return domain.PermissionState("prompt"), nil
		},
	}
	flow := usecases.NewLocationFlow(provider, nil, nil)

	err := flow.QueryPermission(context.Background())
	if !errors.Is(err, domain.ErrPermissionDenied) {
		t.Fatalf("expected ErrPermissionDenied, got %v", err)
	}
}

func TestLocationFlow_PositionOptions(t *testing.T) {
	provider := &mockLocationProvider{
		positionFn: func(ctx context.Context, opts domain.PositionOptions) (*domain.GeoFix, error) {
			if opts.MaximumAge != 60*time.Second {
				t.Errorf("expected 60s maximum age, got %v", opts.MaximumAge)
			}
			if opts.Timeout != 50*time.Second {
				t.Errorf("expected 50s timeout, got %v", opts.Timeout)
			}
			if opts.HighAccuracy {
				t.Error("expected low-accuracy mode")
			}
			return &domain.GeoFix{Location: domain.Point{Lon: -122, Lat: 37}}, nil
		},
	}
	flow := usecases.NewLocationFlow(provider, nil, nil)

	fix, err := flow.Position(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if fix.Location.Lat != 37 {
		t.Errorf("unexpected fix %+v", fix)
	}
}

func TestLocationFlow_TimeoutMapsToPositionTimeout(t *testing.T) {
	provider := &mockLocationProvider{
		positionFn: func(ctx context.Context, opts domain.PositionOptions) (*domain.GeoFix, error) {
			return nil, context.DeadlineExceeded
		},
	}
	flow := usecases.NewLocationFlow(provider, nil, nil)

	_, err := flow.Position(context.Background())
	if !errors.Is(err, domain.ErrPositionTimeout) {
		t.Fatalf("expected ErrPositionTimeout, got %v", err)
	}
}

func TestLocationFlow_ResolveAddress(t *testing.T) {
	flow := usecases.NewLocationFlow(&mockLocationProvider{}, &mockGeocoder{}, nil)

	addr, err := flow.ResolveAddress(context.Background(), domain.Point{Lon: -122, Lat: 37})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if addr != "1 Main St" {
		t.Errorf("expected first formatted address, got %q", addr)
	}
}

func TestLocationFlow_ResolveAddressNoGeocoder(t *testing.T) {
	flow := usecases.NewLocationFlow(&mockLocationProvider{}, nil, nil)
	_, err := flow.ResolveAddress(context.Background(), domain.Point{})
	if !errors.Is(err, domain.ErrGeocoderUnavailable) {
		t.Fatalf("expected ErrGeocoderUnavailable, got %v", err)
	}
}

func TestLocationFlow_ResolveAddressStatuses(t *testing.T) {
	zero := &mockGeocoder{reverseFn: func(ctx context.Context, p domain.Point) (*ports.GeocodeResult, error) {
		return &ports.GeocodeResult{Status: ports.GeocodeStatusZeroResults}, nil
	}}
	flow := usecases.NewLocationFlow(&mockLocationProvider{}, zero, nil)
	if _, err := flow.ResolveAddress(context.Background(), domain.Point{}); !errors.Is(err, domain.ErrGeocoderNoResults) {
		t.Fatalf("expected ErrGeocoderNoResults, got %v", err)
	}

	emptyOK := &mockGeocoder{reverseFn: func(ctx context.Context, p domain.Point) (*ports.GeocodeResult, error) {
		return &ports.GeocodeResult{Status: ports.GeocodeStatusOK}, nil
	}}
	flow = usecases.NewLocationFlow(&mockLocationProvider{}, emptyOK, nil)
	if _, err := flow.ResolveAddress(context.Background(), domain.Point{}); !errors.Is(err, domain.ErrGeocoderNoResults) {
		t.Fatalf("expected ErrGeocoderNoResults for an empty OK result, got %v", err)
	}

	denied := &mockGeocoder{reverseFn: func(ctx context.Context, p domain.Point) (*ports.GeocodeResult, error) {
		return &ports.GeocodeResult{Status: "REQUEST_DENIED"}, nil
	}}
	flow = usecases.NewLocationFlow(&mockLocationProvider{}, denied, nil)
	_, err := flow.ResolveAddress(context.Background(), domain.Point{})
	var gerr *domain.GeocoderError
	if !errors.As(err, &gerr) || gerr.Status != "REQUEST_DENIED" {
		t.Fatalf("expected GeocoderError carrying the status, got %v", err)
	}
}

func TestLocationFlow_ResolveAddressUsesCache(t *testing.T) {
	cache := newMockCache()
	geocoder := &mockGeocoder{}
	flow := usecases.NewLocationFlow(&mockLocationProvider{}, geocoder, cache)

	p := domain.Point{Lon: -122.41942, Lat: 37.77493}
	if _, err := flow.ResolveAddress(context.Background(), p); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := flow.ResolveAddress(context.Background(), p); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if geocoder.calls != 1 {
		t.Errorf("expected one geocoder request, got %d", geocoder.calls)
	}
}

func TestLocationFlow_DeviceLocationPlaceChains(t *testing.T) {
	denied := &mockLocationProvider{
		queryFn: func(ctx context.Context) (domain.PermissionState, error) {
			return domain.PermissionDenied, nil
		},
	}
	geocoder := &mockGeocoder{}
	flow := usecases.NewLocationFlow(denied, geocoder, nil)

	_, err := flow.DeviceLocationPlace(context.Background())
	if !errors.Is(err, domain.ErrPermissionDenied) {
		t.Fatalf("expected ErrPermissionDenied, got %v", err)
	}
	if geocoder.calls != 0 {
		t.Error("geocoder must not be invoked after an earlier step failed")
	}
}

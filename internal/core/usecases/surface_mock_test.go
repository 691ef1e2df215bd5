package usecases_test

import (
	"fmt"
	"sync"

	"github.com/jmateos/dispatchmap/internal/core/domain"
	"github.com/jmateos/dispatchmap/internal/core/ports"
)

// fakeSurface records every call so tests can assert on the exact sequence
// of surface mutations.
type fakeSurface struct {
	mu sync.Mutex

	loaded  bool
	loadFns []func()
	moveFn  func(domain.CameraPosition)
	clicks  map[domain.ResourceName]func(domain.FeatureClick)

	calls   []string
	images  map[string][]byte
	sources map[domain.ResourceName][]domain.Feature
	layers  map[domain.ResourceName]string
	lines   map[domain.ResourceName]domain.LineString

	fitBox *domain.BoundingBox
	fitPad *domain.Padding
	eased  *domain.Point

	failSymbolLayer bool
}

func newFakeSurface() *fakeSurface {
	return &fakeSurface{
		clicks:  make(map[domain.ResourceName]func(domain.FeatureClick)),
		images:  make(map[string][]byte),
		sources: make(map[domain.ResourceName][]domain.Feature),
		layers:  make(map[domain.ResourceName]string),
		lines:   make(map[domain.ResourceName]domain.LineString),
	}
}

func (s *fakeSurface) record(format string, args ...any) {
	s.calls = append(s.calls, fmt.Sprintf(format, args...))
}

func (s *fakeSurface) AddImage(id string, png []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.record("addImage:%s", id)
	s.images[id] = png
	return nil
}

func (s *fakeSurface) AddPointSource(name domain.ResourceName) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.record("addSource:%s", name)
	s.sources[name] = nil
	return nil
}

func (s *fakeSurface) AddLineSource(name domain.ResourceName, line domain.LineString) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.record("addLineSource:%s", name)
	s.lines[name] = line
	return nil
}

func (s *fakeSurface) AddSymbolLayer(name domain.ResourceName, icon string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failSymbolLayer {
		return fmt.Errorf("layer rejected")
	}
	s.record("addLayer:%s", name)
	s.layers[name] = icon
	return nil
}

func (s *fakeSurface) AddLineLayer(name domain.ResourceName, style ports.LineStyle) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.record("addLineLayer:%s", name)
	s.layers[name] = style.Color
	return nil
}

func (s *fakeSurface) SetSourceData(name domain.ResourceName, features []domain.Feature) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.record("setData:%s", name)
	s.sources[name] = features
	return nil
}

func (s *fakeSurface) RemoveLayer(name domain.ResourceName) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.record("removeLayer:%s", name)
	delete(s.layers, name)
	return nil
}

func (s *fakeSurface) RemoveSource(name domain.ResourceName) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.record("removeSource:%s", name)
	delete(s.sources, name)
	delete(s.lines, name)
	return nil
}

func (s *fakeSurface) FitBounds(box domain.BoundingBox, pad domain.Padding) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.record("fitBounds")
	s.fitBox = &box
	s.fitPad = &pad
	return nil
}

func (s *fakeSurface) EaseTo(center domain.Point) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.record("easeTo")
	s.eased = &center
	return nil
}

func (s *fakeSurface) Loaded() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.loaded
}

func (s *fakeSurface) OnLoad(fn func()) {
	s.mu.Lock()
	if s.loaded {
		s.mu.Unlock()
		fn()
		return
	}
	s.loadFns = append(s.loadFns, fn)
	s.mu.Unlock()
}

func (s *fakeSurface) OnMoveEnd(fn func(domain.CameraPosition)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.moveFn = fn
}

func (s *fakeSurface) OnFeatureClick(name domain.ResourceName, fn func(domain.FeatureClick)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.clicks[name] = fn
}

// fireLoad delivers the first-load signal.
func (s *fakeSurface) fireLoad() {
	s.mu.Lock()
	if s.loaded {
		s.mu.Unlock()
		return
	}
	s.loaded = true
	fns := s.loadFns
	s.loadFns = nil
	s.mu.Unlock()
	for _, fn := range fns {
		fn()
	}
}

func (s *fakeSurface) callLog() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	log := make([]string, len(s.calls))
	copy(log, s.calls)
	return log
}

func (s *fakeSurface) sourceData(name domain.ResourceName) []domain.Feature {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.sources[name]
}

func (s *fakeSurface) easedTo() *domain.Point {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.eased
}

func (s *fakeSurface) click(name domain.ResourceName, c domain.FeatureClick) {
	s.mu.Lock()
	fn := s.clicks[name]
	s.mu.Unlock()
	if fn != nil {
		fn(c)
	}
}

func ptr(v float64) *float64 { return &v }

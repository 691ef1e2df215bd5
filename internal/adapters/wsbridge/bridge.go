// Package wsbridge drives a thin map client over a WebSocket connection.
// The Bridge implements ports.Surface by sending JSON command frames and
// dispatching the client's event frames; the same connection also realizes
// ports.LocationProvider, since the device the map renders on is the device
// whose geolocation the core wants.
package wsbridge

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"strconv"
	"sync"
	"time"

	"github.com/gofiber/websocket/v2"

	"github.com/jmateos/dispatchmap/internal/core/domain"
	"github.com/jmateos/dispatchmap/internal/core/ports"
	"github.com/jmateos/dispatchmap/internal/pkg/metrics"
)

const pingInterval = 30 * time.Second

// InitConfig is sent to the client as the first command.
type InitConfig struct {
	StyleURL string
	Center   domain.Point
	Zoom     float64
}

// Bridge is one attached map surface.
type Bridge struct {
	conn *websocket.Conn
	log  *slog.Logger

	// Serializes writes; the fiber websocket connection is not safe for
	// concurrent writers.
	writeMu sync.Mutex

	mu      sync.Mutex
	loaded  bool
	loadFns []func()
	moveFn  func(domain.CameraPosition)
	clicks  map[domain.ResourceName]func(domain.FeatureClick)
	pending map[string]chan event
	nextID  uint64

	done chan struct{}
}

// New wraps an upgraded connection and sends the init command. The caller
// must run Serve on the connection's goroutine afterwards.
func New(conn *websocket.Conn, cfg InitConfig, log *slog.Logger) (*Bridge, error) {
	b := &Bridge{
		conn:    conn,
		log:     log,
		clicks:  make(map[domain.ResourceName]func(domain.FeatureClick)),
		pending: make(map[string]chan event),
		done:    make(chan struct{}),
	}

	zoom := cfg.Zoom
	err := b.send(command{
		Op:     "init",
		Style:  cfg.StyleURL,
		Center: []float64{cfg.Center.Lon, cfg.Center.Lat},
		Zoom:   &zoom,
	})
	if err != nil {
		return nil, fmt.Errorf("init surface: %w", err)
	}

	go b.keepAlive()
	return b, nil
}

// Serve reads event frames until the connection drops. It must run on the
// websocket handler's goroutine; gofiber owns the connection lifetime there.
func (b *Bridge) Serve() {
	defer b.close()

	for {
		_, msg, err := b.conn.ReadMessage()
		if err != nil {
			return
		}

		var ev event
		if err := json.Unmarshal(msg, &ev); err != nil {
			b.log.Warn("undecodable surface event", "error", err)
			continue
		}
		metrics.SurfaceEventsReceived.WithLabelValues(ev.Event).Inc()
		b.dispatch(ev)
	}
}

// Done closes when the connection has gone away.
func (b *Bridge) Done() <-chan struct{} {
	return b.done
}

func (b *Bridge) dispatch(ev event) {
	switch ev.Event {
	case "load":
		b.fireLoad()
	case "moveend":
		b.mu.Lock()
		fn := b.moveFn
		b.mu.Unlock()
		if fn != nil {
			fn(domain.CameraPosition{Lat: ev.Latitude, Lon: ev.Longitude})
		}
	case "click":
		name := domain.ResourceName(ev.Resource)
		b.mu.Lock()
		fn := b.clicks[name]
		b.mu.Unlock()
		if fn != nil {
			fn(domain.FeatureClick{ID: ev.FeatureID, ResourceType: name})
		}
	case "reply":
		b.mu.Lock()
		ch, ok := b.pending[ev.ID]
		delete(b.pending, ev.ID)
		b.mu.Unlock()
		if ok {
			ch <- ev
		}
	default:
		b.log.Debug("unknown surface event", "event", ev.Event)
	}
}

func (b *Bridge) fireLoad() {
	b.mu.Lock()
	if b.loaded {
		b.mu.Unlock()
		return
	}
	b.loaded = true
	fns := b.loadFns
	b.loadFns = nil
	b.mu.Unlock()

	for _, fn := range fns {
		fn()
	}
}

func (b *Bridge) close() {
	b.mu.Lock()
	pending := b.pending
	b.pending = make(map[string]chan event)
	b.mu.Unlock()

	// Fail outstanding request/reply exchanges so no caller hangs.
	for _, ch := range pending {
		close(ch)
	}

	select {
	case <-b.done:
	default:
		close(b.done)
	}
}

func (b *Bridge) keepAlive() {
	ticker := time.NewTicker(pingInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			b.writeMu.Lock()
			err := b.conn.WriteMessage(websocket.PingMessage, nil)
			b.writeMu.Unlock()
			if err != nil {
				return
			}
		case <-b.done:
			return
		}
	}
}

func (b *Bridge) send(cmd command) error {
	data, err := json.Marshal(cmd)
	if err != nil {
		return err
	}
	b.writeMu.Lock()
	defer b.writeMu.Unlock()
	if err := b.conn.WriteMessage(websocket.TextMessage, data); err != nil {
		return fmt.Errorf("send %s: %w", cmd.Op, err)
	}
	metrics.SurfaceCommandsSent.WithLabelValues(cmd.Op).Inc()
	return nil
}

func (b *Bridge) newRequestID() (string, chan event) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.nextID++
	id := strconv.FormatUint(b.nextID, 10)
	ch := make(chan event, 1)
	b.pending[id] = ch
	return id, ch
}

func (b *Bridge) dropRequest(id string) {
	b.mu.Lock()
	delete(b.pending, id)
	b.mu.Unlock()
}

// --- ports.Surface ---

func (b *Bridge) AddImage(id string, png []byte) error {
	return b.send(command{Op: "addImage", Icon: id, PNG: png})
}

func (b *Bridge) AddPointSource(name domain.ResourceName) error {
	return b.send(command{
		Op:   "addSource",
		Name: string(name),
		Data: toFeatureCollection(nil),
	})
}

func (b *Bridge) AddLineSource(name domain.ResourceName, line domain.LineString) error {
	return b.send(command{
		Op:   "addSource",
		Name: string(name),
		Line: toLineGeometry(line),
	})
}

func (b *Bridge) AddSymbolLayer(name domain.ResourceName, icon string) error {
	return b.send(command{
		Op:               "addLayer",
		Name:             string(name),
		Kind:             "symbol",
		Icon:             icon,
		IconAllowOverlap: true,
		IconIgnorePlace:  true,
	})
}

func (b *Bridge) AddLineLayer(name domain.ResourceName, style ports.LineStyle) error {
	return b.send(command{
		Op:          "addLayer",
		Name:        string(name),
		Kind:        "line",
		LineColor:   style.Color,
		LineWidth:   style.Width,
		LineRounded: style.Rounded,
	})
}

func (b *Bridge) SetSourceData(name domain.ResourceName, features []domain.Feature) error {
	return b.send(command{
		Op:   "setData",
		Name: string(name),
		Data: toFeatureCollection(features),
	})
}

func (b *Bridge) RemoveLayer(name domain.ResourceName) error {
	return b.send(command{Op: "removeLayer", Name: string(name)})
}

func (b *Bridge) RemoveSource(name domain.ResourceName) error {
	return b.send(command{Op: "removeSource", Name: string(name)})
}

func (b *Bridge) FitBounds(box domain.BoundingBox, pad domain.Padding) error {
	return b.send(command{
		Op: "fitBounds",
		Bounds: [][]float64{
			{box.MinLon, box.MinLat},
			{box.MaxLon, box.MaxLat},
		},
		Padding: &pad,
	})
}

func (b *Bridge) EaseTo(center domain.Point) error {
	return b.send(command{Op: "easeTo", Center: []float64{center.Lon, center.Lat}})
}

func (b *Bridge) Loaded() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.loaded
}

func (b *Bridge) OnLoad(fn func()) {
	b.mu.Lock()
	if b.loaded {
		b.mu.Unlock()
		fn()
		return
	}
	b.loadFns = append(b.loadFns, fn)
	b.mu.Unlock()
}

func (b *Bridge) OnMoveEnd(fn func(domain.CameraPosition)) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.moveFn = fn
}

func (b *Bridge) OnFeatureClick(name domain.ResourceName, fn func(domain.FeatureClick)) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.clicks[name] = fn
}

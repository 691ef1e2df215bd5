package http

import (
	"github.com/gofiber/websocket/v2"

	"github.com/jmateos/dispatchmap/internal/adapters/wsbridge"
	"github.com/jmateos/dispatchmap/internal/core/domain"
	"github.com/jmateos/dispatchmap/internal/core/ports"
	"github.com/jmateos/dispatchmap/internal/core/usecases"
)

// WebSocketHandler attaches a map client: it wraps the upgraded connection
// in a bridge, builds a controller on top of it and registers the session
// with the hub until the connection drops.
func WebSocketHandler(deps *Dependencies) func(*websocket.Conn) {
	return func(c *websocket.Conn) {
		defer c.Close()

		log := deps.Log.With("remote", c.RemoteAddr().String())

		bridge, err := wsbridge.New(c, wsbridge.InitConfig{
			StyleURL: deps.Surface.StyleURL,
			Center:   deps.Surface.Center,
			Zoom:     deps.Surface.Zoom,
		}, log)
		if err != nil {
			log.Warn("surface init failed", "error", err)
			return
		}

		// The bridge is both the rendering surface and the device's
		// geolocation capability.
		var cache ports.CacheService
		if deps.Cache != nil {
			cache = deps.Cache
		}
		flow := usecases.NewLocationFlow(bridge, deps.Geocoder, cache)

		ctrl, err := usecases.NewController(usecases.ControllerConfig{
			Surface:    bridge,
			Icons:      deps.Icons,
			Location:   flow,
			Workflow:   deps.Workflow,
			DeliveryID: deps.DeliveryID,
			OnItemClick: func(click domain.FeatureClick) {
				log.Info("feature clicked", "resource", click.ResourceType, "feature", click.ID)
			},
			OnCameraMove: func(pos domain.CameraPosition) {
				log.Debug("camera moved", "lat", pos.Lat, "lon", pos.Lon)
			},
		})
		if err != nil {
			log.Warn("controller setup failed", "error", err)
			return
		}

		id := deps.Hub.Attach(ctrl)
		defer deps.Hub.Detach(id)
		log.Info("surface attached", "session", id)

		// Blocks until the client disconnects.
		bridge.Serve()
		log.Info("surface detached", "session", id)
	}
}

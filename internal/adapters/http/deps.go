package http

import (
	"log/slog"

	"github.com/nats-io/nats.go"

	"github.com/jmateos/dispatchmap/internal/adapters/postgres"
	"github.com/jmateos/dispatchmap/internal/adapters/valkey"
	"github.com/jmateos/dispatchmap/internal/core/domain"
	"github.com/jmateos/dispatchmap/internal/core/ports"
)

// SurfaceDefaults is the initial presentation every attaching map client
// receives.
type SurfaceDefaults struct {
	StyleURL string
	Center   domain.Point
	Zoom     float64
}

// Dependencies holds everything HTTP handlers and the websocket attach
// path need.
type Dependencies struct {
	Hub      *Hub
	Surface  SurfaceDefaults
	Icons    map[string][]byte
	Workflow ports.WorkflowStore
	Geocoder ports.Geocoder

	DeliveryID string

	NATS  *nats.Conn
	DB    *postgres.DB
	Cache *valkey.Cache

	Log *slog.Logger
}

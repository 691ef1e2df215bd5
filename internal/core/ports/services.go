package ports

import (
	"context"

	"github.com/jmateos/dispatchmap/internal/core/domain"
)

// CacheService provides read-through caching.
type CacheService interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte, ttlSeconds int) error
	Delete(ctx context.Context, key string) error
}

// WorkflowStore reads the current stage of a delivery workflow. The store is
// read-only from the map core's point of view; the controller receives it as
// an explicit dependency instead of reaching into any process-wide state.
type WorkflowStore interface {
	Stage(ctx context.Context, deliveryID string) (string, error)
}

// UpdateOptions carries the optional extras of one map update.
type UpdateOptions struct {
	Pickup          *domain.Point
	Dropoff         *domain.Point
	VehicleLocation *domain.Point
}

// MapUpdater is the intake side of the map core, consumed by feed adapters.
type MapUpdater interface {
	UpdateMap(items []domain.MapItem, itemType domain.ItemType, opts UpdateOptions) error
}

package http

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/jmateos/dispatchmap/internal/core/domain"
	"github.com/jmateos/dispatchmap/internal/core/ports"
	"github.com/jmateos/dispatchmap/internal/pkg/metrics"
)

// updateMapRequest carries an item batch plus optional terminal and
// vehicle overlays.
type updateMapRequest struct {
	Type            string           `json:"type"`
	Items           []domain.MapItem `json:"items"`
	Pickup          *domain.Point    `json:"pickup,omitempty"`
	Dropoff         *domain.Point    `json:"dropoff,omitempty"`
	VehicleLocation *domain.Point    `json:"vehicle_location,omitempty"`
}

// UpdateMapHandler pushes an item batch onto every attached surface.
func UpdateMapHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var req updateMapRequest
		if err := c.BodyParser(&req); err != nil {
			return errBadRequest(c, "invalid JSON body")
		}

		itemType := domain.ItemType(req.Type)
		if !itemType.Valid() {
			return errBadRequest(c, "type must be vehicles or chargers")
		}

		err := deps.Hub.UpdateMap(req.Items, itemType, ports.UpdateOptions{
			Pickup:          req.Pickup,
			Dropoff:         req.Dropoff,
			VehicleLocation: req.VehicleLocation,
		})
		if err != nil {
			if errors.Is(err, domain.ErrMissingCoordinate) {
				return errBadRequest(c, err.Error())
			}
			return errInternal(c, err.Error())
		}

		return c.JSON(fiber.Map{
			"status":   "applied",
			"sessions": deps.Hub.Count(),
		})
	}
}

type zoomRequest struct {
	Terminals map[string]domain.Point `json:"terminals"`
	Padding   domain.Padding          `json:"padding"`
}

// ZoomHandler fits every attached surface's camera around the terminals.
func ZoomHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var req zoomRequest
		if err := c.BodyParser(&req); err != nil {
			return errBadRequest(c, "invalid JSON body")
		}

		if err := deps.Hub.Zoom(req.Terminals, req.Padding); err != nil {
			if errors.Is(err, domain.ErrEmptyBounds) {
				return errBadRequest(c, "no terminals to fit")
			}
			return errInternal(c, err.Error())
		}
		return c.JSON(fiber.Map{"status": "applied"})
	}
}

type routeRequest struct {
	Coordinates []domain.Point `json:"coordinates"`
}

// SetRouteHandler draws a route line through the given coordinates.
func SetRouteHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var req routeRequest
		if err := c.BodyParser(&req); err != nil {
			return errBadRequest(c, "invalid JSON body")
		}
		if len(req.Coordinates) < 2 {
			return errBadRequest(c, "route needs at least two coordinates")
		}
		if err := deps.Hub.SetRoute(req.Coordinates); err != nil {
			return errInternal(c, err.Error())
		}
		return c.JSON(fiber.Map{"status": "applied"})
	}
}

// ClearRouteHandler removes the route from every attached surface.
func ClearRouteHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		deps.Hub.ClearRoute()
		return c.JSON(fiber.Map{"status": "cleared"})
	}
}

// AddTerminalsHandler ensures the pickup/dropoff resources exist on every
// attached surface.
func AddTerminalsHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		deps.Hub.AddTerminals()
		return c.JSON(fiber.Map{"status": "applied"})
	}
}

// ClearTerminalsHandler removes the pickup/dropoff resources from every
// attached surface.
func ClearTerminalsHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		deps.Hub.ClearTerminals()
		return c.JSON(fiber.Map{"status": "cleared"})
	}
}

// ListSessionsHandler reports the attached surfaces.
func ListSessionsHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		ids := deps.Hub.SessionIDs()
		return c.JSON(fiber.Map{
			"count":    len(ids),
			"sessions": ids,
		})
	}
}

// LocationHandler asks one session's device for its position.
func LocationHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		fix, err := deps.Hub.Locate(c.UserContext(), c.Query("session"))
		if err != nil {
			return locationError(c, err)
		}
		metrics.GeoflowOutcomes.WithLabelValues("position", "ok").Inc()
		return c.JSON(fiber.Map{
			"lat":           fix.Location.Lat,
			"lon":           fix.Location.Lon,
			"high_accuracy": fix.HighAccuracy,
			"timestamp":     fix.Timestamp,
		})
	}
}

// LocationPlaceHandler asks one session's device for its position and
// resolves it to an address.
func LocationPlaceHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		place, err := deps.Hub.LocatePlace(c.UserContext(), c.Query("session"))
		if err != nil {
			return locationError(c, err)
		}
		metrics.GeoflowOutcomes.WithLabelValues("geocode", "ok").Inc()
		return c.JSON(fiber.Map{"place": place})
	}
}

// locationError maps geolocation flow failures to HTTP responses.
func locationError(c *fiber.Ctx, err error) error {
	var gerr *domain.GeocoderError
	step, outcome := flowOutcome(err)
	if step != "" {
		metrics.GeoflowOutcomes.WithLabelValues(step, outcome).Inc()
	}
	switch {
	case errors.Is(err, errUnknownSession):
		return errNotFound(c, err.Error())
	case errors.Is(err, errNoSession), errors.Is(err, errManySessions):
		return errConflict(c, err.Error())
	case errors.Is(err, domain.ErrPermissionDenied):
		return errForbidden(c, "geolocation permission denied")
	case errors.Is(err, domain.ErrPermissionUnsupported):
		return errBadRequest(c, "geolocation unsupported on attached device")
	case errors.Is(err, domain.ErrPositionTimeout):
		return newError(c, fiber.StatusGatewayTimeout, "position_timeout", "device did not produce a fix in time")
	case errors.Is(err, domain.ErrPositionUnavailable):
		return newError(c, fiber.StatusServiceUnavailable, "position_unavailable", "device could not produce a fix")
	case errors.Is(err, domain.ErrGeocoderNoResults):
		return errNotFound(c, "no address for this position")
	case errors.As(err, &gerr):
		return newError(c, fiber.StatusBadGateway, "geocoder_error", gerr.Error())
	default:
		return errInternal(c, err.Error())
	}
}

// flowOutcome classifies an error by geolocation flow step for metrics.
// Session routing errors are not flow outcomes.
func flowOutcome(err error) (step, outcome string) {
	var gerr *domain.GeocoderError
	switch {
	case errors.Is(err, domain.ErrPermissionDenied):
		return "permission", "denied"
	case errors.Is(err, domain.ErrPermissionUnsupported):
		return "permission", "unsupported"
	case errors.Is(err, domain.ErrPositionTimeout):
		return "position", "timeout"
	case errors.Is(err, domain.ErrPositionUnavailable):
		return "position", "unavailable"
	case errors.Is(err, domain.ErrGeocoderNoResults):
		return "geocode", "no_results"
	case errors.Is(err, domain.ErrGeocoderUnavailable):
		return "geocode", "unavailable"
	case errors.As(err, &gerr):
		return "geocode", "error"
	default:
		return "", ""
	}
}

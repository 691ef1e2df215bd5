package wsbridge

import (
	"context"
	"errors"
	"time"

	"github.com/jmateos/dispatchmap/internal/core/domain"
)

// errDetached reports that the client went away mid-exchange.
var errDetached = errors.New("surface detached")

// The bridge realizes ports.LocationProvider by relaying permission and
// position requests to the attached client, correlating replies by id.

// QueryPermission asks the client for its geolocation permission state
// without prompting.
func (b *Bridge) QueryPermission(ctx context.Context) (domain.PermissionState, error) {
	ev, err := b.request(ctx, command{Op: "queryPermission"})
	if err != nil {
		return domain.PermissionUnknown, err
	}
	switch ev.State {
	case "granted":
		return domain.PermissionGranted, nil
	case "denied", "prompt":
		return domain.PermissionDenied, nil
	case "unsupported", "":
		return domain.PermissionUnsupported, nil
	default:
		return domain.PermissionUnknown, nil
	}
}

// CurrentPosition requests a fix from the client's geolocation capability.
func (b *Bridge) CurrentPosition(ctx context.Context, opts domain.PositionOptions) (*domain.GeoFix, error) {
	ev, err := b.request(ctx, command{
		Op:           "getPosition",
		MaxAgeMs:     opts.MaximumAge.Milliseconds(),
		TimeoutMs:    opts.Timeout.Milliseconds(),
		HighAccuracy: opts.HighAccuracy,
	})
	if err != nil {
		return nil, err
	}

	switch ev.Error {
	case "":
	case "timeout":
		return nil, domain.ErrPositionTimeout
	default:
		return nil, domain.ErrPositionUnavailable
	}
	if ev.Lat == nil || ev.Lon == nil {
		return nil, domain.ErrPositionUnavailable
	}

	ts := time.Now()
	if ev.TimestampMs > 0 {
		ts = time.UnixMilli(ev.TimestampMs)
	}
	return &domain.GeoFix{
		Location:     domain.Point{Lon: *ev.Lon, Lat: *ev.Lat},
		HighAccuracy: ev.HighAccuracy,
		Timestamp:    ts,
	}, nil
}

// request sends a correlated command and waits for its reply, the context,
// or the connection going away.
func (b *Bridge) request(ctx context.Context, cmd command) (*event, error) {
	id, ch := b.newRequestID()
	cmd.ID = id

	if err := b.send(cmd); err != nil {
		b.dropRequest(id)
		return nil, err
	}

	select {
	case ev, ok := <-ch:
		if !ok {
			return nil, errDetached
		}
		return &ev, nil
	case <-ctx.Done():
		b.dropRequest(id)
		return nil, ctx.Err()
	case <-b.done:
		b.dropRequest(id)
		return nil, errDetached
	}
}

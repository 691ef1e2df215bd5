// Command simulator publishes synthetic vehicle and charger position
// snapshots so the map sync server can be exercised without a live fleet.
package main

import (
	"context"
	"log"
	"math/rand"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	natsadapter "github.com/jmateos/dispatchmap/internal/adapters/nats"
	"github.com/jmateos/dispatchmap/internal/core/domain"
	"github.com/jmateos/dispatchmap/internal/pkg/config"
	"github.com/jmateos/dispatchmap/internal/pkg/geospatial"
)

const (
	vehicleCount = 8
	chargerCount = 4
	// Vehicles drift at roughly urban driving speed per tick.
	stepMeters   = 120
	tickInterval = 5 * time.Second
)

type vehicle struct {
	id      string
	lat     float64
	lon     float64
	bearing float64
}

func main() {
	cfg, err := config.Load("dispatchmap-simulator")
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	pub, err := natsadapter.NewPublisher(cfg.NATS.URL)
	if err != nil {
		log.Fatalf("nats: %v", err)
	}
	defer pub.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	rng := rand.New(rand.NewSource(time.Now().UnixNano()))

	// Seed the fleet around the configured map center.
	vehicles := make([]vehicle, vehicleCount)
	for i := range vehicles {
		lat, lon := scatter(rng, cfg.Map.CenterLat, cfg.Map.CenterLon, 2000)
		vehicles[i] = vehicle{
			id:      "veh-" + strconv.Itoa(i+1),
			lat:     lat,
			lon:     lon,
			bearing: rng.Float64() * 360,
		}
	}

	// Chargers are fixed infrastructure; place them once.
	chargers := make([]domain.MapItem, chargerCount)
	for i := range chargers {
		lat, lon := scatter(rng, cfg.Map.CenterLat, cfg.Map.CenterLon, 3000)
		chargers[i] = domain.MapItem{
			ID:  "chg-" + strconv.Itoa(i+1),
			Lon: &lon,
			Lat: &lat,
		}
	}

	log.Printf("simulating %d vehicles and %d chargers every %s", vehicleCount, chargerCount, tickInterval)

	if err := pub.PublishSnapshot(ctx, domain.ItemTypeChargers, chargers); err != nil {
		log.Printf("publish chargers: %v", err)
	}

	ticker := time.NewTicker(tickInterval)
	defer ticker.Stop()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	for {
		select {
		case <-ticker.C:
			tick(ctx, pub, rng, vehicles)
		case sig := <-quit:
			log.Printf("received signal %v, stopping simulator", sig)
			return
		case <-ctx.Done():
			return
		}
	}
}

// tick advances every vehicle and publishes the snapshot. Items alternate
// between the flat and nested coordinate shapes producers emit in the wild.
func tick(ctx context.Context, pub *natsadapter.Publisher, rng *rand.Rand, vehicles []vehicle) {
	items := make([]domain.MapItem, 0, len(vehicles))
	for i := range vehicles {
		v := &vehicles[i]
		v.bearing += (rng.Float64() - 0.5) * 40
		v.lat, v.lon = geospatial.Destination(v.lat, v.lon, v.bearing, stepMeters)

		lat, lon := v.lat, v.lon
		item := domain.MapItem{ID: v.id}
		if i%2 == 0 {
			item.Lon, item.Lat = &lon, &lat
		} else {
			item.Coords = &domain.ItemCoords{Lon: &lon, Lat: &lat}
		}
		items = append(items, item)
	}

	if err := pub.PublishSnapshot(ctx, domain.ItemTypeVehicles, items); err != nil {
		log.Printf("publish vehicles: %v", err)
	}
}

// scatter picks a random point within radiusMeters of the center.
func scatter(rng *rand.Rand, lat, lon, radiusMeters float64) (float64, float64) {
	return geospatial.Destination(lat, lon, rng.Float64()*360, rng.Float64()*radiusMeters)
}

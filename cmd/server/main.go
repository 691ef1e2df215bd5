package main

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"

	"github.com/jmateos/dispatchmap/internal/adapters/http"
	natsadapter "github.com/jmateos/dispatchmap/internal/adapters/nats"
	"github.com/jmateos/dispatchmap/internal/adapters/nominatim"
	"github.com/jmateos/dispatchmap/internal/adapters/postgres"
	"github.com/jmateos/dispatchmap/internal/adapters/valkey"
	"github.com/jmateos/dispatchmap/internal/core/domain"
	"github.com/jmateos/dispatchmap/internal/core/ports"
	"github.com/jmateos/dispatchmap/internal/core/usecases"
	"github.com/jmateos/dispatchmap/internal/pkg/config"
	"github.com/jmateos/dispatchmap/internal/pkg/logging"
	"github.com/jmateos/dispatchmap/internal/pkg/telemetry"
)

func main() {
	cfg, err := config.Load("dispatchmap-server")
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	// Structured logging
	logLevel := os.Getenv("LOG_LEVEL")
	if logLevel == "" {
		logLevel = "info"
	}
	logging.Setup(logLevel, "json")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Telemetry
	if cfg.Telemetry.Enabled {
		shutdown, err := telemetry.InitTracer(ctx, cfg.Telemetry.ServiceName, cfg.Telemetry.TempoAddr)
		if err != nil {
			slog.Warn("telemetry init failed", "error", err)
		} else {
			defer shutdown()
		}
	}

	// Database (workflow stage reads)
	var workflow ports.WorkflowStore
	db, err := postgres.New(ctx, cfg.Database.DSN())
	if err != nil {
		slog.Warn("database unavailable, workflow gating disabled", "error", err)
		db = nil
	} else {
		defer db.Close()
		go db.ReportPoolMetrics(ctx, 15*time.Second)
		workflow = postgres.NewWorkflowStore(db)
	}

	// Cache (geocode results)
	cache, err := valkey.New(cfg.Valkey.Addr)
	if err != nil {
		slog.Warn("valkey unavailable", "error", err)
		cache = nil
	} else {
		defer cache.Close()
	}

	// Reverse geocoder
	var geocoder ports.Geocoder
	if cfg.Geocoder.BaseURL != "" {
		geocoder = nominatim.New(cfg.Geocoder.BaseURL, cfg.Geocoder.Email,
			time.Duration(cfg.Geocoder.Timeout)*time.Second)
	}

	hub := http.NewHub()

	// NATS position intake
	sub, err := natsadapter.NewSubscriber(cfg.NATS.URL)
	if err != nil {
		slog.Warn("nats unavailable, position intake disabled", "error", err)
		sub = nil
	} else {
		defer sub.Close()
		if err := sub.SubscribePositions(ctx, hub); err != nil {
			slog.Warn("position subscribe failed", "error", err)
		}
	}

	deps := &http.Dependencies{
		Hub: hub,
		Surface: http.SurfaceDefaults{
			StyleURL: cfg.Map.StyleURL,
			Center:   domain.Point{Lon: cfg.Map.CenterLon, Lat: cfg.Map.CenterLat},
			Zoom:     cfg.Map.Zoom,
		},
		Icons:      loadIcons(cfg.Map.IconsDir),
		Workflow:   workflow,
		Geocoder:   geocoder,
		DeliveryID: cfg.Map.DeliveryID,
		DB:         db,
		Cache:      cache,
		Log:        slog.Default(),
	}
	if sub != nil {
		deps.NATS = sub.Conn()
	}

	// Fiber
	app := fiber.New(fiber.Config{
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
		BodyLimit:    1024 * 1024,
		AppName:      "DispatchMap",
	})
	app.Use(recover.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins:     "http://localhost:3000, http://localhost:5173",
		AllowMethods:     "GET,POST,DELETE,OPTIONS",
		AllowHeaders:     "Origin, Content-Type, Accept, Authorization",
		AllowCredentials: false,
		MaxAge:           3600,
	}))

	http.SetupRoutes(app, deps)

	// Graceful shutdown
	go func() {
		addr := fmt.Sprintf(":%d", cfg.Server.Port)
		slog.Info("map sync server starting", "addr", addr)
		if err := app.Listen(addr); err != nil {
			log.Fatalf("listen: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit

	slog.Info("shutdown signal received, draining connections...", "signal", sig.String())

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		slog.Error("forced shutdown", "error", err)
	}

	slog.Info("server stopped")
}

// loadIcons reads the marker PNGs attaching surfaces register. Missing
// icons degrade to unstyled markers, so failures only warn.
func loadIcons(dir string) map[string][]byte {
	icons := make(map[string][]byte)
	for _, icon := range usecases.MarkerIcons {
		data, err := os.ReadFile(filepath.Join(dir, icon.ID+".png"))
		if err != nil {
			slog.Warn("marker icon missing", "icon", icon.ID, "error", err)
			continue
		}
		icons[icon.ID] = data
	}
	return icons
}

package telemetry

// SLI metric names used for instrumentation.
const (
	// Latency
	MetricAPILatencyP50 = "api.latency.p50"
	MetricAPILatencyP95 = "api.latency.p95"
	MetricAPILatencyP99 = "api.latency.p99"

	// Throughput
	MetricRequestsPerSec = "api.requests_per_second"

	// Data freshness
	MetricPositionLatency = "intake.position_latency"
	MetricSurfaceLag      = "surface.command_lag_seconds"

	// Availability
	MetricUptime = "service.uptime_percentage"

	// Business
	MetricDeliveriesTracked = "business.deliveries_tracked"
	MetricFixesResolved     = "business.device_fixes_resolved"
)

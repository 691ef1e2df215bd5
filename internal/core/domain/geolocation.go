package domain

import "time"

// PermissionState is the result of querying the host's geolocation permission.
type PermissionState string

const (
	PermissionUnknown     PermissionState = "unknown"
	PermissionGranted     PermissionState = "granted"
	PermissionDenied      PermissionState = "denied"
	PermissionUnsupported PermissionState = "unsupported"
)

// PositionOptions configures a device position fix request.
type PositionOptions struct {
	// MaximumAge is how stale a cached fix may be and still be accepted.
	MaximumAge time.Duration
	// Timeout bounds the whole acquisition.
	Timeout time.Duration
	// HighAccuracy trades battery and latency for precision when true.
	// The tracking flow prefers false: a fast coarse fix is enough to
	// place a marker.
	HighAccuracy bool
}

// GeoFix is a resolved device position.
type GeoFix struct {
	Location     Point     `json:"location"`
	HighAccuracy bool      `json:"high_accuracy"`
	Timestamp    time.Time `json:"timestamp"`
}

// CameraPosition is reported after every camera movement completes.
type CameraPosition struct {
	Lat float64 `json:"latitude"`
	Lon float64 `json:"longitude"`
}

// FeatureClick is delivered when the user taps a vehicle or charger marker.
type FeatureClick struct {
	ID           string       `json:"id"`
	ResourceType ResourceName `json:"resourceType"`
}

// WorkflowStageDraft is the initial stage of a delivery workflow. The camera
// recenters onto the device fix only while the delivery is still in it.
const WorkflowStageDraft = "draft"

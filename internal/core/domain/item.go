package domain

// ItemType selects which named resource an update batch targets.
type ItemType string

const (
	ItemTypeVehicles ItemType = "vehicles"
	ItemTypeChargers ItemType = "chargers"
)

// Valid reports whether t names a known item type.
func (t ItemType) Valid() bool {
	return t == ItemTypeVehicles || t == ItemTypeChargers
}

// ItemCoords is the nested coordinate shape some upstream feeds use.
type ItemCoords struct {
	Lon *float64 `json:"long"`
	Lat *float64 `json:"lat"`
}

// MapItem is a raw domain record arriving from an upstream feed. The
// coordinate may appear either as top-level long/lat fields or nested under
// coords; exactly one shape wins per item (top-level takes precedence).
// Items are normalized into canonical Points at the ingestion boundary and
// the dual shape never leaks past it.
type MapItem struct {
	ID     string      `json:"id"`
	Lon    *float64    `json:"long,omitempty"`
	Lat    *float64    `json:"lat,omitempty"`
	Coords *ItemCoords `json:"coords,omitempty"`
}

// ResourceName identifies one (source, layer) pair on the render surface.
type ResourceName string

const (
	ResourceVehicles ResourceName = "vehicles"
	ResourceChargers ResourceName = "chargers"
	ResourcePickup   ResourceName = "pickup"
	ResourceDropoff  ResourceName = "dropoff"
	ResourceLocation ResourceName = "location"
	ResourceRoute    ResourceName = "route"
)

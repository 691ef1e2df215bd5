package usecases

import "github.com/jmateos/dispatchmap/internal/core/domain"

// MarkerIcon couples an icon's logical id with the named resource it
// decorates. The mapping is declared once here; nothing else derives
// resource names from icon ids.
type MarkerIcon struct {
	ID       string
	Resource domain.ResourceName
}

// MarkerIcons enumerates every symbol icon the map uses.
var MarkerIcons = []MarkerIcon{
	{ID: "vehicle-marker", Resource: domain.ResourceVehicles},
	{ID: "charger-marker", Resource: domain.ResourceChargers},
	{ID: "pickup-marker", Resource: domain.ResourcePickup},
	{ID: "dropoff-marker", Resource: domain.ResourceDropoff},
	{ID: "location-marker", Resource: domain.ResourceLocation},
}

// iconFor returns the icon id decorating a named resource.
func iconFor(name domain.ResourceName) string {
	for _, ic := range MarkerIcons {
		if ic.Resource == name {
			return ic.ID
		}
	}
	return ""
}

// Package catalog defines the items the discovery engine ranks: external
// events ingested by the catalog collaborator and local venue services.
package catalog

import (
	"github.com/spotive-cloud/discovery/internal/domain/category"
	"github.com/spotive-cloud/discovery/internal/domain/geo"
)

// Origin tells where an item came from.
type Origin string

const (
	// OriginExternal marks items ingested from outside sources.
	OriginExternal Origin = "external"
	// OriginLocalService marks items derived from a venue's own services.
	OriginLocalService Origin = "local_service"
)

// Item is a single recommendable thing. The same shape travels over the
// HTTP response, the published result envelope and the subscriber client.
type Item struct {
	ID           string       `json:"id"`
	Name         string       `json:"name"`
	Category     category.Tag `json:"category"`
	LocationText string       `json:"location,omitempty"`
	Area         string       `json:"area,omitempty"`
	Coords       *geo.Point   `json:"coords,omitempty"`
	Schedule     string       `json:"schedule,omitempty"`
	Price        string       `json:"price,omitempty"`
	MediaLink    string       `json:"media_link,omitempty"`
	BookingLink  string       `json:"booking_link,omitempty"`
	Origin       Origin       `json:"origin"`
	ServiceKind  string       `json:"service_kind,omitempty"`
	Description  string       `json:"description,omitempty"`
}

// HasCoords reports whether the item carries usable coordinates.
func (i Item) HasCoords() bool {
	return i.Coords != nil && geo.ValidateCoordinates(i.Coords.Lat, i.Coords.Lon)
}

// Package venue models the property a discovery request is scoped to.
package venue

import "github.com/spotive-cloud/discovery/internal/domain/geo"

// Service is an on-property amenity a venue offers its guests.
type Service struct {
	Kind         string `json:"kind"`
	Name         string `json:"name"`
	LocationText string `json:"location,omitempty"`
	Schedule     string `json:"schedule,omitempty"`
	Price        string `json:"price,omitempty"`
	MediaLink    string `json:"media_link,omitempty"`
	BookingLink  string `json:"booking_link,omitempty"`
	Description  string `json:"description,omitempty"`
}

// Profile describes a venue: where it is, how far out to search and
// which services it runs on-site.
type Profile struct {
	ID             string    `json:"id"`
	Name           string    `json:"name"`
	Area           string    `json:"area,omitempty"`
	Coords         geo.Point `json:"coords"`
	SearchRadiusKm float64   `json:"search_radius_km"`
	Services       []Service `json:"services,omitempty"`
}

package catalog

import (
	"strconv"

	domcat "github.com/spotive-cloud/discovery/internal/domain/catalog"
	"github.com/spotive-cloud/discovery/internal/domain/category"
	"github.com/spotive-cloud/discovery/internal/domain/geo"
)

// Hash field names for event items. The ingest pipeline writes the same set.
const (
	fieldName     = "name"
	fieldCategory = "category"
	fieldLocation = "location"
	fieldArea     = "area"
	fieldLat      = "lat"
	fieldLon      = "lon"
	fieldSchedule = "schedule"
	fieldPrice    = "price"
	fieldMedia    = "media_link"
	fieldBooking  = "booking_link"
)

// parseItemFields converts a flat event hash into a domain Item.
// Coordinates are only carried when both lat and lon parse and validate.
func parseItemFields(id string, m map[string]string) domcat.Item {
	item := domcat.Item{
		ID:           id,
		Name:         m[fieldName],
		Category:     category.Tag(m[fieldCategory]),
		LocationText: m[fieldLocation],
		Area:         m[fieldArea],
		Schedule:     m[fieldSchedule],
		Price:        m[fieldPrice],
		MediaLink:    m[fieldMedia],
		BookingLink:  m[fieldBooking],
		Origin:       domcat.OriginExternal,
	}

	lat, latErr := strconv.ParseFloat(m[fieldLat], 64)
	lon, lonErr := strconv.ParseFloat(m[fieldLon], 64)
	if latErr == nil && lonErr == nil && geo.ValidateCoordinates(lat, lon) {
		item.Coords = &geo.Point{Lat: lat, Lon: lon}
	}
	return item
}

// buildItemFields converts a domain Item into a flat map for HSET.
// Used by seeding tools; the engine itself never writes events.
func buildItemFields(item domcat.Item) map[string]string {
	m := map[string]string{
		fieldName:     item.Name,
		fieldCategory: string(item.Category),
	}
	if item.LocationText != "" {
		m[fieldLocation] = item.LocationText
	}
	if item.Area != "" {
		m[fieldArea] = item.Area
	}
	if item.Coords != nil {
		m[fieldLat] = strconv.FormatFloat(item.Coords.Lat, 'f', -1, 64)
		m[fieldLon] = strconv.FormatFloat(item.Coords.Lon, 'f', -1, 64)
	}
	if item.Schedule != "" {
		m[fieldSchedule] = item.Schedule
	}
	if item.Price != "" {
		m[fieldPrice] = item.Price
	}
	if item.MediaLink != "" {
		m[fieldMedia] = item.MediaLink
	}
	if item.BookingLink != "" {
		m[fieldBooking] = item.BookingLink
	}
	return m
}

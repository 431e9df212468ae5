package openai

import (
	"github.com/spotive-cloud/discovery/internal/domain/catalog"
	"github.com/spotive-cloud/discovery/internal/domain/category"
)

func sampleItem() catalog.Item {
	return catalog.Item{
		ID:           "ev1",
		Name:         "Jazz Night",
		Category:     category.Concert,
		LocationText: "Blue Note, Downtown",
		Schedule:     "Fri 8pm",
		Price:        "$25",
		Origin:       catalog.OriginExternal,
	}
}

// Package guest holds the identity rules and preference records for the
// people the engine personalizes for.
package guest

import (
	"fmt"
	"time"
	"unicode"

	"github.com/spotive-cloud/discovery/internal/domain"
	"github.com/spotive-cloud/discovery/internal/domain/category"
)

// MaxIdentityLen bounds guest identities so they stay usable as key parts.
const MaxIdentityLen = 128

// ValidateIdentity checks that an identity is safe to embed in storage
// keys and channel names.
func ValidateIdentity(identity string) error {
	if identity == "" {
		return fmt.Errorf("%w: identity is required", domain.ErrValidation)
	}
	if len(identity) > MaxIdentityLen {
		return fmt.Errorf("%w: identity exceeds %d characters", domain.ErrValidation, MaxIdentityLen)
	}
	for _, r := range identity {
		if unicode.IsSpace(r) || unicode.IsControl(r) {
			return fmt.Errorf("%w: identity must not contain whitespace or control characters", domain.ErrValidation)
		}
	}
	return nil
}

// Meta is the bookkeeping record kept per guest.
type Meta struct {
	CreatedAt     time.Time `json:"created_at"`
	LastActive    time.Time `json:"last_active"`
	TotalSearches int64     `json:"total_searches"`
}

// SearchEntry is one row of a guest's search log.
type SearchEntry struct {
	Query       string         `json:"query"`
	Categories  []category.Tag `json:"categories"`
	Timestamp   time.Time      `json:"timestamp"`
	ResultCount int            `json:"result_count"`
}

// PriceRange bounds what a guest is willing to spend.
type PriceRange struct {
	Min float64 `json:"min"`
	Max float64 `json:"max"`
}

// Overrides are the preferences a guest has set explicitly, as opposed
// to the ones learned from search behavior.
type Overrides struct {
	PreferredCategories []category.Tag `json:"preferred_categories,omitempty"`
	PreferredLocations  []string       `json:"preferred_locations,omitempty"`
	PriceRange          *PriceRange    `json:"price_range,omitempty"`
	AvoidCategories     []category.Tag `json:"avoid_categories,omitempty"`
}

// CategoryCount pairs a tag with how often the guest has searched it.
type CategoryCount struct {
	Tag   category.Tag `json:"tag"`
	Count int64        `json:"count"`
}

// PreferenceRecord is the full learned-plus-declared view of one guest.
type PreferenceRecord struct {
	Identity  string          `json:"identity"`
	Meta      Meta            `json:"meta"`
	Counts    []CategoryCount `json:"category_counts,omitempty"`
	Top3      []category.Tag  `json:"top_3,omitempty"`
	Searches  []SearchEntry   `json:"recent_searches,omitempty"`
	Overrides *Overrides      `json:"overrides,omitempty"`
}

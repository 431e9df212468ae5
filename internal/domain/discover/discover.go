// Package discover defines the result shapes a discovery request produces,
// both on the synchronous response and on the published envelope.
package discover

import (
	"github.com/spotive-cloud/discovery/internal/domain/catalog"
	"github.com/spotive-cloud/discovery/internal/domain/category"
	"github.com/spotive-cloud/discovery/internal/domain/geo"
)

// ResolutionMethod records how the interest text was mapped to categories.
type ResolutionMethod string

const (
	// ResolvedByClassifier means the language model produced the categories.
	ResolvedByClassifier ResolutionMethod = "classifier"
	// ResolvedByKeywords means the keyword fallback produced them.
	ResolvedByKeywords ResolutionMethod = "keyword_fallback"
)

// RankedResult is one recommendation with its ranking context attached.
type RankedResult struct {
	Item        catalog.Item `json:"item"`
	Distance    geo.Distance `json:"distance"`
	Description string       `json:"description,omitempty"`
}

// VenueContext echoes the venue a search was scoped to.
type VenueContext struct {
	VenueID         string  `json:"venue_id"`
	Name            string  `json:"name,omitempty"`
	DistanceBasisKm float64 `json:"distance_basis_km,omitempty"`
}

// Response is what a discovery request returns synchronously.
type Response struct {
	Identity     string           `json:"identity"`
	Interest     string           `json:"interest"`
	Categories   []category.Tag   `json:"categories"`
	Method       ResolutionMethod `json:"resolution_method"`
	MatchedCount int              `json:"matched_count"`
	Results      []RankedResult   `json:"results"`
	Venue        *VenueContext    `json:"venue_context,omitempty"`
}

// SearchError carries the interest text and any categories that were
// already resolved when a search failed, so failure payloads stay
// symmetric with what dashboards see.
type SearchError struct {
	Interest   string
	Categories []category.Tag
	Err        error
}

func (e *SearchError) Error() string { return e.Err.Error() }

func (e *SearchError) Unwrap() error { return e.Err }

// Envelope is the published form of a result set. SequenceKey is unique
// per identity so displays can both subscribe live and fetch a backlog.
type Envelope struct {
	Identity    string         `json:"identity"`
	SequenceKey int64          `json:"sequence_key"`
	VenueID     string         `json:"venue_id,omitempty"`
	Payload     []RankedResult `json:"payload"`
}

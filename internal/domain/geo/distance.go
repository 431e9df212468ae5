package geo

import (
	"encoding/json"
	"fmt"
)

// Outcome classifies a computed item distance. A nullable float is not enough:
// an item without coordinates can still be relevant when its area name matches
// the venue's area, and the two unknown cases sort and filter differently.
type Outcome string

const (
	// Known means both sides had coordinates and the distance was computed.
	Known Outcome = "known"
	// AreaMatched means coordinates were missing but the item's area name
	// matched the venue's area; the item is retained and sorts after Known.
	AreaMatched Outcome = "area_matched"
	// Unmatched means coordinates were missing and the area did not match;
	// the item is dropped from venue-scoped results.
	Unmatched Outcome = "unmatched"
)

// Distance is the tri-state distance of a catalog item from a venue.
type Distance struct {
	outcome Outcome
	km      float64
}

// KnownDistance builds a Known distance in kilometers.
func KnownDistance(km float64) Distance {
	return Distance{outcome: Known, km: km}
}

// AreaMatchedDistance builds an unknown distance retained by area match.
func AreaMatchedDistance() Distance {
	return Distance{outcome: AreaMatched}
}

// UnmatchedDistance builds an unknown distance with no area match.
func UnmatchedDistance() Distance {
	return Distance{outcome: Unmatched}
}

// Outcome returns the distance classification.
func (d Distance) Outcome() Outcome { return d.outcome }

// Km returns the distance in kilometers and whether it is known.
func (d Distance) Km() (float64, bool) {
	return d.km, d.outcome == Known
}

// Less orders distances for ranking: Known ascending by km, then AreaMatched,
// then Unmatched.
func (d Distance) Less(other Distance) bool {
	if d.outcome == Known && other.outcome == Known {
		return d.km < other.km
	}
	return rank(d.outcome) < rank(other.outcome)
}

func rank(o Outcome) int {
	switch o {
	case Known:
		return 0
	case AreaMatched:
		return 1
	default:
		return 2
	}
}

// distanceJSON is the wire form of Distance shared by the HTTP response and
// the published envelope.
type distanceJSON struct {
	Outcome Outcome  `json:"outcome"`
	Km      *float64 `json:"km,omitempty"`
}

// MarshalJSON implements json.Marshaler.
func (d Distance) MarshalJSON() ([]byte, error) {
	out := distanceJSON{Outcome: d.outcome}
	if d.outcome == "" {
		out.Outcome = Unmatched
	}
	if d.outcome == Known {
		km := d.km
		out.Km = &km
	}
	return json.Marshal(out)
}

// UnmarshalJSON implements json.Unmarshaler.
func (d *Distance) UnmarshalJSON(data []byte) error {
	var in distanceJSON
	if err := json.Unmarshal(data, &in); err != nil {
		return fmt.Errorf("decode distance: %w", err)
	}
	switch in.Outcome {
	case Known:
		if in.Km == nil {
			return fmt.Errorf("decode distance: known outcome without km")
		}
		*d = KnownDistance(*in.Km)
	case AreaMatched:
		*d = AreaMatchedDistance()
	case Unmatched, "":
		*d = UnmatchedDistance()
	default:
		return fmt.Errorf("decode distance: unknown outcome %q", in.Outcome)
	}
	return nil
}

package preference

import (
	"strconv"
	"time"

	"github.com/spotive-cloud/discovery/internal/domain/category"
	"github.com/spotive-cloud/discovery/internal/domain/guest"
)

// Hash field names for the guest meta record.
const (
	metaCreatedAt     = "created_at"
	metaLastActive    = "last_active"
	metaTotalSearches = "total_searches"
)

func formatTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339)
}

func parseTime(s string) time.Time {
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return time.Time{}
	}
	return t
}

// parseMeta converts the guest hash into a Meta record. Malformed
// fields fall back to zero values.
func parseMeta(m map[string]string) guest.Meta {
	meta := guest.Meta{
		CreatedAt:  parseTime(m[metaCreatedAt]),
		LastActive: parseTime(m[metaLastActive]),
	}
	if n, err := strconv.ParseInt(m[metaTotalSearches], 10, 64); err == nil {
		meta.TotalSearches = n
	}
	return meta
}

// parseCounts converts the counts hash into tag counters, dropping
// fields that do not parse as integers.
func parseCounts(m map[string]string) map[category.Tag]int64 {
	counts := make(map[category.Tag]int64, len(m))
	for field, v := range m {
		n, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			continue
		}
		counts[category.Tag(field)] = n
	}
	return counts
}

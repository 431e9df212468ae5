package category

// Default vocabulary tags.
const (
	Concert       Tag = "concert"
	Sports        Tag = "sports"
	Outdoor       Tag = "outdoor"
	Food          Tag = "food"
	Spiritual     Tag = "spiritual"
	Cultural      Tag = "cultural"
	Kids          Tag = "kids"
	Entertainment Tag = "entertainment"
	Comedy        Tag = "comedy"
	Wellness      Tag = "wellness"
)

// Default returns the built-in production vocabulary. Keyword lists must stay
// aligned with the categories assigned in the catalog.
func Default() Vocabulary {
	return New("v1", []Entry{
		{Concert, []string{"music", "concert", "band", "dj", "singing", "song", "live music", "performance", "festival"}},
		{Sports, []string{"sport", "fitness", "exercise", "gym", "marathon", "running", "cricket", "football", "athletic"}},
		{Outdoor, []string{"outdoor", "trek", "hike", "nature", "adventure", "camping", "cycling", "mountain", "trail"}},
		{Food, []string{"food", "buffet", "culinary", "dining", "cuisine", "feast", "gastronomy", "brunch"}},
		{Spiritual, []string{"spiritual", "meditation", "temple", "religious", "prayer", "worship", "devotion", "mandir"}},
		{Cultural, []string{"cultural", "art", "theater", "theatre", "dance", "traditional", "heritage", "museum", "exhibition", "classical"}},
		{Kids, []string{"kid", "child", "children", "family", "family-friendly"}},
		{Entertainment, []string{"entertainment", "show", "movie", "film", "leisure", "games"}},
		{Comedy, []string{"comedy", "standup", "stand-up", "humor", "laugh", "comic", "comedian", "funny"}},
		{Wellness, []string{"spa", "wellness", "massage", "sauna", "yoga", "relax"}},
	}, map[string]Tag{
		"spa":            Wellness,
		"salon":          Wellness,
		"yoga_studio":    Wellness,
		"gym":            Sports,
		"fitness_center": Sports,
		"pool":           Sports,
		"restaurant":     Food,
		"cafe":           Food,
		"bar":            Entertainment,
		"lounge":         Entertainment,
		"cinema":         Entertainment,
		"kids_club":      Kids,
		"live_music":     Concert,
		"art_gallery":    Cultural,
		"garden":         Outdoor,
	})
}

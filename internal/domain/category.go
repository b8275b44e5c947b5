package domain

// categoryBySlug maps URL slugs to the display names stored in book
// category lists. The set is fixed: the frontend builds its navigation
// from these eight entries.
var categoryBySlug = map[string]string{
	"romans":          "Romans",
	"science-fiction": "Science Fiction",
	"histoire":        "Histoire",
	"biographies":     "Biographies",
	"sciences":        "Sciences",
	"art":             "Art",
	"tech":            "Technologie",
	"philosophie":     "Philosophie",
}

// CategoryForSlug resolves a URL slug to its display name.
// Returns false for unknown slugs.
func CategoryForSlug(slug string) (string, bool) {
	name, ok := categoryBySlug[slug]
	return name, ok
}

// CategorySlugs returns the known slugs. Order is not guaranteed.
func CategorySlugs() []string {
	slugs := make([]string, 0, len(categoryBySlug))
	for slug := range categoryBySlug {
		slugs = append(slugs, slug)
	}
	return slugs
}

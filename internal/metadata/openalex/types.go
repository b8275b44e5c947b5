// Package openalex provides a client for the OpenAlex works API.
package openalex

// worksResponse is the raw /works search response.
type worksResponse struct {
	Meta    meta   `json:"meta"`
	Results []work `json:"results"`
}

type meta struct {
	Count int `json:"count"`
}

// work is a single scholarly work result.
type work struct {
	ID              string           `json:"id"`
	DisplayName     string           `json:"display_name"`
	PublicationYear int              `json:"publication_year"`
	PublicationDate string           `json:"publication_date"`
	Language        string           `json:"language"`
	Authorships     []authorship     `json:"authorships"`
	PrimaryLocation *primaryLocation `json:"primary_location"`
	Concepts        []concept        `json:"concepts"`
	// AbstractInvertedIndex maps each word to the positions where it
	// occurs in the abstract.
	AbstractInvertedIndex map[string][]int `json:"abstract_inverted_index"`
}

type authorship struct {
	Author author `json:"author"`
}

type author struct {
	DisplayName string `json:"display_name"`
}

type primaryLocation struct {
	Source *locationSource `json:"source"`
}

type locationSource struct {
	DisplayName string `json:"display_name"`
}

type concept struct {
	DisplayName string  `json:"display_name"`
	Score       float64 `json:"score"`
}

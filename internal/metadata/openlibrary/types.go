// Package openlibrary provides a client for the OpenLibrary search and
// editions APIs.
package openlibrary

import "encoding/json/v2"

// searchResponse is the raw /search.json response.
type searchResponse struct {
	NumFound int        `json:"numFound"`
	Docs     []workDoc  `json:"docs"`
}

// workDoc is a single work in search results.
type workDoc struct {
	Key                 string   `json:"key"`
	Title               string   `json:"title"`
	AuthorName          []string `json:"author_name"`
	FirstPublishYear    int      `json:"first_publish_year"`
	ISBN                []string `json:"isbn"`
	Publisher           []string `json:"publisher"`
	NumberOfPagesMedian int      `json:"number_of_pages_median"`
	Language            []string `json:"language"`
	Subject             []string `json:"subject"`
	CoverID             int      `json:"cover_i"`
	RatingsAverage      float64  `json:"ratings_average"`
	FirstSentence       []string `json:"first_sentence"`
}

// edition is the raw /isbn/{isbn}.json response.
type edition struct {
	Key           string      `json:"key"`
	Title         string      `json:"title"`
	Publishers    []string    `json:"publishers"`
	PublishDate   string      `json:"publish_date"`
	NumberOfPages int         `json:"number_of_pages"`
	ISBN13        []string    `json:"isbn_13"`
	ISBN10        []string    `json:"isbn_10"`
	Covers        []int       `json:"covers"`
	Languages     []keyRef    `json:"languages"`
	Authors       []keyRef    `json:"authors"`
	Description   flexText    `json:"description"`
	Subjects      []string    `json:"subjects"`
}

// authorRecord is the raw /authors/{id}.json response.
type authorRecord struct {
	Name string `json:"name"`
}

// keyRef is OpenLibrary's reference-by-key shape, e.g.
// {"key": "/authors/OL34184A"}.
type keyRef struct {
	Key string `json:"key"`
}

// flexText absorbs OpenLibrary's two description encodings: a bare
// string, or {"type": "/type/text", "value": "..."}.
type flexText string

func (t *flexText) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		*t = flexText(s)
		return nil
	}
	var obj struct {
		Value string `json:"value"`
	}
	if err := json.Unmarshal(data, &obj); err != nil {
		return err
	}
	*t = flexText(obj.Value)
	return nil
}

package search

import (
	"context"
	"strings"

	"github.com/blevesearch/bleve/v2"
	"github.com/blevesearch/bleve/v2/search/query"
)

// Params configures a search query.
type Params struct {
	Query    string
	Category string // Exact category filter, empty for none
	Limit    int
	Offset   int
}

// Result is a page of search hits.
type Result struct {
	Query  string `json:"query"`
	Total  uint64 `json:"total"`
	TookMs int64  `json:"took_ms"`
	Hits   []Hit  `json:"hits"`
}

// Hit is a single search match.
type Hit struct {
	ID     string  `json:"id"`
	Score  float64 `json:"score"`
	Title  string  `json:"title"`
	Author string  `json:"author,omitempty"`
	ISBN   string  `json:"isbn,omitempty"`
}

// Search executes a full-text query over the catalog index.
func (s *Index) Search(ctx context.Context, params Params) (*Result, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if params.Limit <= 0 {
		params.Limit = 20
	}

	searchRequest := bleve.NewSearchRequestOptions(
		buildQuery(params), params.Limit, params.Offset, false)
	searchRequest.Fields = []string{"title", "author", "isbn"}

	res, err := s.index.SearchInContext(ctx, searchRequest)
	if err != nil {
		return nil, err
	}

	hits := make([]Hit, 0, len(res.Hits))
	for _, h := range res.Hits {
		hit := Hit{
			ID:    h.ID,
			Score: h.Score,
		}
		if v, ok := h.Fields["title"].(string); ok {
			hit.Title = v
		}
		if v, ok := h.Fields["author"].(string); ok {
			hit.Author = v
		}
		if v, ok := h.Fields["isbn"].(string); ok {
			hit.ISBN = v
		}
		hits = append(hits, hit)
	}

	return &Result{
		Query:  params.Query,
		Total:  res.Total,
		TookMs: res.Took.Milliseconds(),
		Hits:   hits,
	}, nil
}

// buildQuery combines match, prefix, and fuzzy queries so partial and
// slightly misspelled titles still find their book.
func buildQuery(params Params) query.Query {
	text := strings.TrimSpace(params.Query)

	var base query.Query
	if text == "" {
		base = bleve.NewMatchAllQuery()
	} else {
		match := bleve.NewMatchQuery(text)

		prefix := bleve.NewPrefixQuery(strings.ToLower(text))
		prefix.SetField("title")

		fuzzy := bleve.NewFuzzyQuery(text)
		fuzzy.SetFuzziness(1)
		fuzzy.SetField("title")

		base = bleve.NewDisjunctionQuery(match, prefix, fuzzy)
	}

	if params.Category == "" {
		return base
	}

	category := bleve.NewMatchPhraseQuery(strings.ToLower(params.Category))
	category.SetField("categories")
	return bleve.NewConjunctionQuery(base, category)
}

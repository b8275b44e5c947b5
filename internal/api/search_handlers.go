package api

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"github.com/bibliointel/bibliointel-server/internal/search"
)

func (s *Server) registerSearchRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "fullTextSearch",
		Method:      http.MethodGet,
		Path:        "/api/search",
		Summary:     "Full-text search",
		Description: "Searches the catalog index with analyzed, prefix, and fuzzy matching",
		Tags:        []string{"Search"},
	}, s.handleFullTextSearch)
}

// FullTextSearchInput contains parameters for a full-text search.
type FullTextSearchInput struct {
	Query    string `query:"q" doc:"Search query"`
	Category string `query:"category" doc:"Exact category filter"`
	Limit    int    `query:"limit" doc:"Maximum number of hits" example:"20"`
	Offset   int    `query:"offset" doc:"Number of hits to skip"`
}

// FullTextSearchOutput wraps the search result for Huma.
type FullTextSearchOutput struct {
	Body search.Result
}

func (s *Server) handleFullTextSearch(ctx context.Context, input *FullTextSearchInput) (*FullTextSearchOutput, error) {
	result, err := s.services.Catalog.FullTextSearch(ctx, search.Params{
		Query:    input.Query,
		Category: input.Category,
		Limit:    input.Limit,
		Offset:   input.Offset,
	})
	if err != nil {
		return nil, err
	}
	return &FullTextSearchOutput{Body: *result}, nil
}

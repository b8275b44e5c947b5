package api

import (
	"context"
	"encoding/json/v2"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bibliointel/bibliointel-server/internal/domain"
	"github.com/bibliointel/bibliointel-server/internal/service"
)

// cannedAdapter returns the same results for every query.
type cannedAdapter struct {
	books []domain.Book
}

func (a *cannedAdapter) Search(_ context.Context, _ string, _ int) []domain.Book {
	out := make([]domain.Book, len(a.books))
	copy(out, a.books)
	return out
}

func TestListBooksEndpoint(t *testing.T) {
	ts := setupTestServer(t, nil, nil)
	ts.seedBook(t, "google_dune", "Dune")
	ts.seedBook(t, "google_messiah", "Dune Messiah")

	resp := ts.api.Get("/api/books")
	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())

	var body BookListResponse
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &body))
	assert.Equal(t, 2, body.Count)
	assert.Len(t, body.Books, 2)
}

func TestListBooksEndpoint_EmptyCatalog(t *testing.T) {
	ts := setupTestServer(t, nil, nil)

	resp := ts.api.Get("/api/books")
	require.Equal(t, http.StatusOK, resp.Code)

	var body BookListResponse
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &body))
	assert.Equal(t, 0, body.Count)
	assert.NotNil(t, body.Books)
}

func TestGetBookEndpoint(t *testing.T) {
	ts := setupTestServer(t, nil, nil)
	book := ts.seedBook(t, "google_dune", "Dune")

	resp := ts.api.Get("/api/books/" + book.ID)
	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())

	var body BookResponse
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &body))
	assert.Equal(t, book.ID, body.ID)
	assert.Equal(t, "Dune", body.Title)

	resp = ts.api.Get("/api/books/bk-missing")
	assert.Equal(t, http.StatusNotFound, resp.Code)
}

func TestSearchBooksEndpoint(t *testing.T) {
	adapter := &cannedAdapter{books: []domain.Book{{
		ExternalID: "google_dune",
		Title:      "Dune",
		Author:     "Frank Herbert",
		Source:     domain.SourceGoogle,
	}}}
	ts := setupTestServer(t, []service.NamedAdapter{{Name: "google", Adapter: adapter}}, nil)

	resp := ts.api.Get("/api/books/search?q=dune")
	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())

	var body BookListResponse
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &body))
	require.Equal(t, 1, body.Count)
	assert.Equal(t, "Dune", body.Books[0].Title)
	assert.NotEmpty(t, body.Books[0].ID)

	// The refresh alias runs the same flow.
	resp = ts.api.Get("/api/books/refresh?q=dune")
	require.Equal(t, http.StatusOK, resp.Code)
}

func TestBooksByCategoryEndpoint(t *testing.T) {
	ts := setupTestServer(t, nil, nil)
	ts.seedBook(t, "google_dune", "Dune")

	resp := ts.api.Get("/api/books/category/science-fiction")
	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())

	var body BookListResponse
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &body))
	assert.Equal(t, 1, body.Count)

	resp = ts.api.Get("/api/books/category/poetry")
	require.Equal(t, http.StatusNotFound, resp.Code)
	assert.Contains(t, resp.Body.String(), "poetry")
}

func TestCuratedListEndpoints(t *testing.T) {
	ts := setupTestServer(t, nil, nil)
	ts.seedBook(t, "google_dune", "Dune")

	for _, path := range []string{"/api/books/populaires", "/api/books/recents"} {
		resp := ts.api.Get(path)
		require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())

		var body BookListResponse
		require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &body))
		assert.Equal(t, 1, body.Count, path)
	}
}

func TestFullTextSearchEndpoint(t *testing.T) {
	ts := setupTestServer(t, nil, nil)
	ts.seedBook(t, "google_dune", "Dune")

	resp := ts.api.Get("/api/search?q=dune")
	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())
	assert.Contains(t, resp.Body.String(), "hits")
}

func TestHealthEndpoint(t *testing.T) {
	ts := setupTestServer(t, nil, nil)

	resp := ts.api.Get("/health")
	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())

	var body HealthResponse
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &body))
	assert.Equal(t, "healthy", body.Status)
	assert.Equal(t, "healthy", body.Components["database"].Status)
	assert.Equal(t, "healthy", body.Components["search"].Status)
}

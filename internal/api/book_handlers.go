package api

import (
	"context"
	"net/http"
	"time"

	"github.com/danielgtaylor/huma/v2"

	"github.com/bibliointel/bibliointel-server/internal/domain"
	"github.com/bibliointel/bibliointel-server/internal/store"
)

func (s *Server) registerBookRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "listBooks",
		Method:      http.MethodGet,
		Path:        "/api/books",
		Summary:     "List books",
		Description: "Returns a page of the catalog, optionally filtered by category name",
		Tags:        []string{"Books"},
	}, s.handleListBooks)

	huma.Register(s.api, huma.Operation{
		OperationID: "searchBooks",
		Method:      http.MethodGet,
		Path:        "/api/books/search",
		Summary:     "Search books",
		Description: "Resolves a query against the local catalog first, aggregating the external sources on a miss",
		Tags:        []string{"Books"},
	}, s.handleSearchBooks)

	huma.Register(s.api, huma.Operation{
		OperationID: "refreshBooks",
		Method:      http.MethodGet,
		Path:        "/api/books/refresh",
		Summary:     "Refresh books",
		Description: "Alias of search, kept for client compatibility",
		Tags:        []string{"Books"},
	}, s.handleSearchBooks)

	huma.Register(s.api, huma.Operation{
		OperationID: "listBooksByCategory",
		Method:      http.MethodGet,
		Path:        "/api/books/category/{category}",
		Summary:     "List books by category",
		Description: "Returns the catalog records for a category slug",
		Tags:        []string{"Books"},
	}, s.handleBooksByCategory)

	huma.Register(s.api, huma.Operation{
		OperationID: "listPopularBooks",
		Method:      http.MethodGet,
		Path:        "/api/books/populaires",
		Summary:     "List popular books",
		Description: "Returns the highest-rated catalog records",
		Tags:        []string{"Books"},
	}, s.handlePopularBooks)

	huma.Register(s.api, huma.Operation{
		OperationID: "listRecentBooks",
		Method:      http.MethodGet,
		Path:        "/api/books/recents",
		Summary:     "List recent books",
		Description: "Returns the most recently added catalog records",
		Tags:        []string{"Books"},
	}, s.handleRecentBooks)

	huma.Register(s.api, huma.Operation{
		OperationID: "getBook",
		Method:      http.MethodGet,
		Path:        "/api/books/{id}",
		Summary:     "Get book",
		Description: "Returns a catalog record by ID",
		Tags:        []string{"Books"},
	}, s.handleGetBook)
}

// === DTOs ===

// BookResponse contains one catalog record in API responses.
type BookResponse struct {
	ID            string    `json:"id" doc:"Record ID"`
	ExternalID    string    `json:"external_id,omitempty" doc:"Source-native identity"`
	Title         string    `json:"title" doc:"Title"`
	Author        string    `json:"author" doc:"Author names, comma separated"`
	Description   string    `json:"description,omitempty" doc:"Description"`
	ISBN          string    `json:"isbn,omitempty" doc:"ISBN-10 or ISBN-13"`
	PublishedDate string    `json:"published_date,omitempty" doc:"Publication date, free text"`
	Publisher     string    `json:"publisher,omitempty" doc:"Publisher"`
	PageCount     int       `json:"page_count" doc:"Number of pages, 0 when unknown"`
	Language      string    `json:"language" doc:"ISO language code"`
	Categories    []string  `json:"categories" doc:"Category tags"`
	CoverURL      string    `json:"cover_url,omitempty" doc:"Cover image URL"`
	Rating        float64   `json:"rating" doc:"Average rating, 0 to 5"`
	Price         float64   `json:"price" doc:"Price, 0 when free or unknown"`
	Currency      string    `json:"currency" doc:"Price currency"`
	Availability  string    `json:"availability" doc:"disponible or indisponible"`
	Source        string    `json:"source" doc:"Record source"`
	CreatedAt     time.Time `json:"created_at" doc:"Creation time"`
	UpdatedAt     time.Time `json:"updated_at" doc:"Last update time"`
}

// BookListResponse contains a list of catalog records.
type BookListResponse struct {
	Books []BookResponse `json:"books" doc:"Catalog records"`
	Count int            `json:"count" doc:"Number of records returned"`
}

// BookListOutput wraps the book list response for Huma.
type BookListOutput struct {
	Body BookListResponse
}

// BookOutput wraps a single book response for Huma.
type BookOutput struct {
	Body BookResponse
}

// ListBooksInput contains parameters for listing books.
type ListBooksInput struct {
	Limit    int    `query:"limit" doc:"Maximum number of records" example:"20"`
	Offset   int    `query:"offset" doc:"Number of records to skip"`
	Category string `query:"category" doc:"Exact category name filter"`
}

// SearchBooksInput contains parameters for searching books.
type SearchBooksInput struct {
	Query string `query:"q" doc:"Search query"`
	Limit int    `query:"limit" doc:"Maximum number of records" example:"20"`
}

// CategoryInput contains parameters for listing books by category.
type CategoryInput struct {
	Category string `path:"category" doc:"Category slug, e.g. science-fiction"`
	Limit    int    `query:"limit" doc:"Maximum number of records"`
	Offset   int    `query:"offset" doc:"Number of records to skip"`
}

// CuratedListInput contains parameters for the curated listings.
type CuratedListInput struct {
	Limit int `query:"limit" doc:"Maximum number of records"`
}

// GetBookInput contains parameters for getting a book.
type GetBookInput struct {
	ID string `path:"id" doc:"Record ID"`
}

func toBookResponse(b *domain.Book) BookResponse {
	return BookResponse{
		ID:            b.ID,
		ExternalID:    b.ExternalID,
		Title:         b.Title,
		Author:        b.Author,
		Description:   b.Description,
		ISBN:          b.ISBN,
		PublishedDate: b.PublishedDate,
		Publisher:     b.Publisher,
		PageCount:     b.PageCount,
		Language:      b.Language,
		Categories:    b.Categories,
		CoverURL:      b.CoverURL,
		Rating:        b.Rating,
		Price:         b.Price,
		Currency:      b.Currency,
		Availability:  b.Availability,
		Source:        string(b.Source),
		CreatedAt:     b.CreatedAt,
		UpdatedAt:     b.UpdatedAt,
	}
}

func toBookListOutput(books []domain.Book) *BookListOutput {
	items := make([]BookResponse, len(books))
	for i := range books {
		items[i] = toBookResponse(&books[i])
	}
	return &BookListOutput{
		Body: BookListResponse{
			Books: items,
			Count: len(items),
		},
	}
}

// === Handlers ===

func (s *Server) handleListBooks(ctx context.Context, input *ListBooksInput) (*BookListOutput, error) {
	books, err := s.services.Catalog.ListBooks(ctx, store.ListOptions{
		Limit:    input.Limit,
		Offset:   input.Offset,
		Category: input.Category,
	})
	if err != nil {
		return nil, err
	}
	return toBookListOutput(books), nil
}

func (s *Server) handleSearchBooks(ctx context.Context, input *SearchBooksInput) (*BookListOutput, error) {
	books, err := s.services.Catalog.SearchBooks(ctx, input.Query, input.Limit)
	if err != nil {
		return nil, err
	}
	return toBookListOutput(books), nil
}

func (s *Server) handleBooksByCategory(ctx context.Context, input *CategoryInput) (*BookListOutput, error) {
	books, err := s.services.Catalog.BooksByCategory(ctx, input.Category, store.ListOptions{
		Limit:  input.Limit,
		Offset: input.Offset,
	})
	if err != nil {
		return nil, err
	}
	return toBookListOutput(books), nil
}

func (s *Server) handlePopularBooks(ctx context.Context, input *CuratedListInput) (*BookListOutput, error) {
	books, err := s.services.Catalog.PopularBooks(ctx, input.Limit)
	if err != nil {
		return nil, err
	}
	return toBookListOutput(books), nil
}

func (s *Server) handleRecentBooks(ctx context.Context, input *CuratedListInput) (*BookListOutput, error) {
	books, err := s.services.Catalog.RecentBooks(ctx, input.Limit)
	if err != nil {
		return nil, err
	}
	return toBookListOutput(books), nil
}

func (s *Server) handleGetBook(ctx context.Context, input *GetBookInput) (*BookOutput, error) {
	book, err := s.services.Catalog.GetBook(ctx, input.ID)
	if err != nil {
		return nil, err
	}
	return &BookOutput{Body: toBookResponse(book)}, nil
}

package api

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"github.com/bibliointel/bibliointel-server/internal/domain"
)

func (s *Server) registerAdminRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "adminLogin",
		Method:      http.MethodPost,
		Path:        "/api/admin/login",
		Summary:     "Admin login",
		Description: "Verifies administrator credentials and issues a session token",
		Tags:        []string{"Admin"},
	}, s.handleAdminLogin)

	huma.Register(s.api, huma.Operation{
		OperationID:   "adminCreateBook",
		Method:        http.MethodPost,
		Path:          "/api/admin/books",
		Summary:       "Create book",
		Description:   "Creates a catalog record directly, bypassing the aggregation pipeline",
		Tags:          []string{"Admin"},
		Security:      []map[string][]string{{"bearer": {}}},
		DefaultStatus: http.StatusCreated,
	}, s.handleAdminCreateBook)

	huma.Register(s.api, huma.Operation{
		OperationID: "adminUpdateBook",
		Method:      http.MethodPut,
		Path:        "/api/admin/books/{id}",
		Summary:     "Update book",
		Description: "Updates a catalog record",
		Tags:        []string{"Admin"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleAdminUpdateBook)

	huma.Register(s.api, huma.Operation{
		OperationID: "adminDeleteBook",
		Method:      http.MethodDelete,
		Path:        "/api/admin/books/{id}",
		Summary:     "Delete book",
		Description: "Deletes a catalog record and its index entry",
		Tags:        []string{"Admin"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleAdminDeleteBook)

	huma.Register(s.api, huma.Operation{
		OperationID: "adminRebuildIndex",
		Method:      http.MethodPost,
		Path:        "/api/admin/index/rebuild",
		Summary:     "Rebuild search index",
		Description: "Re-indexes the whole catalog from the primary store",
		Tags:        []string{"Admin"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleAdminRebuildIndex)
}

// === DTOs ===

// LoginRequest is the request body for an admin login.
type LoginRequest struct {
	Username string `json:"username" doc:"Administrator username"`
	Password string `json:"password" doc:"Administrator password"`
}

// LoginInput wraps the login request for Huma.
type LoginInput struct {
	Body LoginRequest
}

// LoginResponse contains a fresh session token.
type LoginResponse struct {
	Token     string `json:"token" doc:"PASETO session token"`
	ExpiresIn int64  `json:"expires_in" doc:"Token lifetime in seconds"`
}

// LoginOutput wraps the login response for Huma.
type LoginOutput struct {
	Body LoginResponse
}

// BookRequest is the request body for creating or updating a book.
type BookRequest struct {
	Title         string   `json:"title" doc:"Title"`
	Author        string   `json:"author,omitempty" doc:"Author names, comma separated"`
	Description   string   `json:"description,omitempty" doc:"Description"`
	ISBN          string   `json:"isbn,omitempty" doc:"ISBN-10 or ISBN-13"`
	PublishedDate string   `json:"published_date,omitempty" doc:"Publication date, free text"`
	Publisher     string   `json:"publisher,omitempty" doc:"Publisher"`
	PageCount     int      `json:"page_count,omitempty" doc:"Number of pages"`
	Language      string   `json:"language,omitempty" doc:"ISO language code"`
	Categories    []string `json:"categories,omitempty" doc:"Category tags"`
	CoverURL      string   `json:"cover_url,omitempty" doc:"Cover image URL"`
	Rating        float64  `json:"rating,omitempty" doc:"Average rating, 0 to 5"`
	Price         float64  `json:"price,omitempty" doc:"Price"`
	Currency      string   `json:"currency,omitempty" doc:"Price currency"`
	Availability  string   `json:"availability,omitempty" doc:"disponible or indisponible"`
}

// CreateBookInput wraps the create book request for Huma.
type CreateBookInput struct {
	Authorization string `header:"Authorization"`
	Body          BookRequest
}

// UpdateBookInput wraps the update book request for Huma.
type UpdateBookInput struct {
	Authorization string `header:"Authorization"`
	ID            string `path:"id" doc:"Record ID"`
	Body          BookRequest
}

// DeleteBookInput contains parameters for deleting a book.
type DeleteBookInput struct {
	Authorization string `header:"Authorization"`
	ID            string `path:"id" doc:"Record ID"`
}

// MessageResponse carries a status message.
type MessageResponse struct {
	Message string `json:"message" doc:"Status message"`
}

// MessageOutput wraps a message response for Huma.
type MessageOutput struct {
	Body MessageResponse
}

// RebuildIndexInput contains parameters for an index rebuild.
type RebuildIndexInput struct {
	Authorization string `header:"Authorization"`
}

// RebuildIndexResponse reports how many records were re-indexed.
type RebuildIndexResponse struct {
	Indexed int `json:"indexed" doc:"Number of records indexed"`
}

// RebuildIndexOutput wraps the rebuild response for Huma.
type RebuildIndexOutput struct {
	Body RebuildIndexResponse
}

func (r *BookRequest) toBook() domain.Book {
	return domain.Book{
		Title:         r.Title,
		Author:        r.Author,
		Description:   r.Description,
		ISBN:          r.ISBN,
		PublishedDate: r.PublishedDate,
		Publisher:     r.Publisher,
		PageCount:     r.PageCount,
		Language:      r.Language,
		Categories:    r.Categories,
		CoverURL:      r.CoverURL,
		Rating:        r.Rating,
		Price:         r.Price,
		Currency:      r.Currency,
		Availability:  r.Availability,
	}
}

// === Handlers ===

func (s *Server) handleAdminLogin(ctx context.Context, input *LoginInput) (*LoginOutput, error) {
	result, err := s.services.Admin.Login(ctx, input.Body.Username, input.Body.Password)
	if err != nil {
		return nil, err
	}
	return &LoginOutput{
		Body: LoginResponse{
			Token:     result.Token,
			ExpiresIn: result.ExpiresIn,
		},
	}, nil
}

func (s *Server) handleAdminCreateBook(ctx context.Context, input *CreateBookInput) (*BookOutput, error) {
	if _, err := s.authenticateAdmin(input.Authorization); err != nil {
		return nil, err
	}

	book := input.Body.toBook()
	if err := s.services.Catalog.CreateBook(ctx, &book); err != nil {
		return nil, err
	}
	stored, err := s.services.Catalog.GetBook(ctx, book.ID)
	if err != nil {
		return nil, err
	}
	return &BookOutput{Body: toBookResponse(stored)}, nil
}

func (s *Server) handleAdminUpdateBook(ctx context.Context, input *UpdateBookInput) (*BookOutput, error) {
	if _, err := s.authenticateAdmin(input.Authorization); err != nil {
		return nil, err
	}

	book := input.Body.toBook()
	book.ID = input.ID
	if err := s.services.Catalog.UpdateBook(ctx, &book); err != nil {
		return nil, err
	}
	stored, err := s.services.Catalog.GetBook(ctx, book.ID)
	if err != nil {
		return nil, err
	}
	return &BookOutput{Body: toBookResponse(stored)}, nil
}

func (s *Server) handleAdminDeleteBook(ctx context.Context, input *DeleteBookInput) (*MessageOutput, error) {
	if _, err := s.authenticateAdmin(input.Authorization); err != nil {
		return nil, err
	}

	if err := s.services.Catalog.DeleteBook(ctx, input.ID); err != nil {
		return nil, err
	}
	return &MessageOutput{Body: MessageResponse{Message: "livre supprimé"}}, nil
}

func (s *Server) handleAdminRebuildIndex(ctx context.Context, input *RebuildIndexInput) (*RebuildIndexOutput, error) {
	if _, err := s.authenticateAdmin(input.Authorization); err != nil {
		return nil, err
	}

	n, err := s.services.Catalog.RebuildIndex(ctx)
	if err != nil {
		return nil, err
	}
	return &RebuildIndexOutput{Body: RebuildIndexResponse{Indexed: n}}, nil
}

// Package store defines the persistence interfaces the catalog services
// depend on. The sqlite subpackage provides the implementation.
package store

import (
	"context"

	"github.com/bibliointel/bibliointel-server/internal/domain"
)

// ListOptions controls pagination and filtering for catalog listings.
type ListOptions struct {
	Limit    int
	Offset   int
	Category string
}

// UpsertResult reports what a deduplicating write did.
type UpsertResult struct {
	// ID is the surrogate key of the row that now holds the record.
	ID string
	// Created is true when a new row was inserted, false when an
	// existing row was refreshed.
	Created bool
}

// BookStore is the primary catalog store.
type BookStore interface {
	// UpsertBook inserts the record or refreshes the existing row that
	// shares its identity (external_id, or ISBN for legacy rows).
	UpsertBook(ctx context.Context, book *domain.Book) (UpsertResult, error)

	GetBook(ctx context.Context, id string) (*domain.Book, error)
	GetBookByExternalID(ctx context.Context, externalID string) (*domain.Book, error)
	ListBooks(ctx context.Context, opts ListOptions) ([]domain.Book, error)
	CountBooks(ctx context.Context) (int, error)

	// SearchBooks matches the folded title and author columns plus the
	// description, case- and accent-insensitively.
	SearchBooks(ctx context.Context, query string, limit int) ([]domain.Book, error)

	// PopularBooks returns the highest-rated records.
	PopularBooks(ctx context.Context, limit int) ([]domain.Book, error)
	// RecentBooks returns the most recently added records.
	RecentBooks(ctx context.Context, limit int) ([]domain.Book, error)

	CreateBook(ctx context.Context, book *domain.Book) error
	UpdateBook(ctx context.Context, book *domain.Book) error
	DeleteBook(ctx context.Context, id string) error
}

// AdminStore persists administrator accounts.
type AdminStore interface {
	CreateAdmin(ctx context.Context, admin *domain.Admin) error
	GetAdminByUsername(ctx context.Context, username string) (*domain.Admin, error)
	CountAdmins(ctx context.Context) (int, error)
}

// Package service contains the catalog business logic: the local-first
// search pipeline, the ISBN import flow, and admin operations.
package service

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/bibliointel/bibliointel-server/internal/cache"
	"github.com/bibliointel/bibliointel-server/internal/domain"
	"github.com/bibliointel/bibliointel-server/internal/errors"
	"github.com/bibliointel/bibliointel-server/internal/mirror"
	"github.com/bibliointel/bibliointel-server/internal/search"
	"github.com/bibliointel/bibliointel-server/internal/store"
)

// SourceAdapter is one external metadata source. Adapters swallow
// their own failures and return an empty slice, so a broken source
// degrades an aggregated search instead of failing it.
type SourceAdapter interface {
	Search(ctx context.Context, query string, limit int) []domain.Book
}

// NamedAdapter pairs an adapter with its source name for logging.
type NamedAdapter struct {
	Name    string
	Adapter SourceAdapter
}

// Fallback queries used when a curated listing has no local rows yet.
const (
	popularFallbackQuery = "bestseller"
	recentFallbackQuery  = "new releases"
)

// CatalogService orchestrates the catalog: local-first resolution,
// source aggregation, deduplicating persistence, and best-effort
// replication to the search index and the mirror.
type CatalogService struct {
	store    store.BookStore
	adapters []NamedAdapter
	cache    *cache.Cache
	index    *search.Index
	mirror   *mirror.Client
	logger   *slog.Logger

	defaultLimit   int
	adapterTimeout time.Duration
}

// CatalogOptions configures a CatalogService. Cache, Index, and Mirror
// are optional; a nil value disables that concern.
type CatalogOptions struct {
	Store          store.BookStore
	Adapters       []NamedAdapter
	Cache          *cache.Cache
	Index          *search.Index
	Mirror         *mirror.Client
	Logger         *slog.Logger
	DefaultLimit   int
	AdapterTimeout time.Duration
}

// NewCatalogService creates a new catalog service.
func NewCatalogService(opts CatalogOptions) *CatalogService {
	if opts.DefaultLimit <= 0 {
		opts.DefaultLimit = 20
	}
	if opts.AdapterTimeout <= 0 {
		opts.AdapterTimeout = 5 * time.Second
	}
	return &CatalogService{
		store:          opts.Store,
		adapters:       opts.Adapters,
		cache:          opts.Cache,
		index:          opts.Index,
		mirror:         opts.Mirror,
		logger:         opts.Logger,
		defaultLimit:   opts.DefaultLimit,
		adapterTimeout: opts.AdapterTimeout,
	}
}

// ListBooks returns a page of the catalog.
func (s *CatalogService) ListBooks(ctx context.Context, opts store.ListOptions) ([]domain.Book, error) {
	if opts.Limit <= 0 {
		opts.Limit = s.defaultLimit
	}
	return s.store.ListBooks(ctx, opts)
}

// GetBook returns one catalog record by id.
func (s *CatalogService) GetBook(ctx context.Context, bookID string) (*domain.Book, error) {
	return s.store.GetBook(ctx, bookID)
}

// SearchBooks resolves a query locally first. Any local match
// short-circuits; only a complete miss triggers source aggregation,
// whose results are persisted before being returned.
func (s *CatalogService) SearchBooks(ctx context.Context, query string, limit int) ([]domain.Book, error) {
	if limit <= 0 {
		limit = s.defaultLimit
	}

	local, err := s.store.SearchBooks(ctx, query, limit)
	if err != nil {
		return nil, err
	}
	if len(local) > 0 {
		s.logger.Debug("search resolved locally",
			"query", query,
			"count", len(local),
		)
		return local, nil
	}

	return s.aggregate(ctx, query, limit)
}

// BooksByCategory lists the catalog records for a category slug. An
// empty local result falls back to aggregating with the category name
// as the query.
func (s *CatalogService) BooksByCategory(ctx context.Context, slug string, opts store.ListOptions) ([]domain.Book, error) {
	name, ok := domain.CategoryForSlug(slug)
	if !ok {
		return nil, errors.NotFoundf("unknown category: %s", slug)
	}

	if opts.Limit <= 0 {
		opts.Limit = s.defaultLimit
	}
	opts.Category = name

	books, err := s.store.ListBooks(ctx, opts)
	if err != nil {
		return nil, err
	}
	if len(books) > 0 {
		return books, nil
	}

	return s.aggregate(ctx, name, opts.Limit)
}

// PopularBooks returns the highest-rated records, seeding the catalog
// with a bestseller search when it is still empty.
func (s *CatalogService) PopularBooks(ctx context.Context, limit int) ([]domain.Book, error) {
	if limit <= 0 {
		limit = s.defaultLimit
	}

	books, err := s.store.PopularBooks(ctx, limit)
	if err != nil {
		return nil, err
	}
	if len(books) > 0 {
		return books, nil
	}

	return s.aggregate(ctx, popularFallbackQuery, limit)
}

// RecentBooks returns the most recently added records, seeding the
// catalog with a new-releases search when it is still empty.
func (s *CatalogService) RecentBooks(ctx context.Context, limit int) ([]domain.Book, error) {
	if limit <= 0 {
		limit = s.defaultLimit
	}

	books, err := s.store.RecentBooks(ctx, limit)
	if err != nil {
		return nil, err
	}
	if len(books) > 0 {
		return books, nil
	}

	return s.aggregate(ctx, recentFallbackQuery, limit)
}

// FullTextSearch queries the Bleve index directly. Unlike SearchBooks
// this never reaches out to external sources.
func (s *CatalogService) FullTextSearch(ctx context.Context, params search.Params) (*search.Result, error) {
	if s.index == nil {
		return nil, errors.Internal("search index is not configured", nil)
	}
	return s.index.Search(ctx, params)
}

// aggregate fans the query out to every adapter, persists whatever
// comes back, and returns the persisted records. The per-source limit
// splits the requested limit evenly, each source getting at least one
// slot.
func (s *CatalogService) aggregate(ctx context.Context, query string, limit int) ([]domain.Book, error) {
	if len(s.adapters) == 0 {
		return []domain.Book{}, nil
	}

	if s.cache != nil {
		if cached, ok := s.cache.Get(query, limit); ok {
			s.logger.Debug("aggregation cache hit", "query", query)
			return cached, nil
		}
	}

	perSource := (limit + len(s.adapters) - 1) / len(s.adapters)
	if perSource < 1 {
		perSource = 1
	}

	results := make([][]domain.Book, len(s.adapters))
	var wg sync.WaitGroup
	for i, na := range s.adapters {
		wg.Add(1)
		go func() {
			defer wg.Done()
			adapterCtx, cancel := context.WithTimeout(ctx, s.adapterTimeout)
			defer cancel()
			results[i] = na.Adapter.Search(adapterCtx, query, perSource)
		}()
	}
	wg.Wait()

	var fetched []domain.Book
	for i, books := range results {
		s.logger.Debug("source responded",
			"source", s.adapters[i].Name,
			"query", query,
			"count", len(books),
		)
		fetched = append(fetched, books...)
	}

	persisted := make([]domain.Book, 0, len(fetched))
	for i := range fetched {
		_, err := s.Persist(ctx, &fetched[i])
		if err != nil {
			// One bad record must not sink the whole batch.
			s.logger.Warn("failed to persist aggregated record",
				"external_id", fetched[i].ExternalID,
				"error", err,
			)
			continue
		}
		persisted = append(persisted, fetched[i])
	}

	if s.cache != nil {
		s.cache.Set(query, limit, persisted)
	}

	return persisted, nil
}

// PersistReport describes what happened to one record on its way
// through the write path. When a replica fails, the error text is
// carried so callers can tell a failure apart from a replica that is
// simply disabled or already up to date.
type PersistReport struct {
	Created     bool   `json:"created"`
	Mirrored    bool   `json:"mirrored"`
	Indexed     bool   `json:"indexed"`
	IndexError  string `json:"index_error,omitempty"`
	MirrorError string `json:"mirror_error,omitempty"`
}

// Persist upserts one record into the primary store and replicates it
// to the search index and the mirror. Replication is best effort; only
// a primary-store failure is returned. The book's ID is assigned in
// place.
func (s *CatalogService) Persist(ctx context.Context, book *domain.Book) (PersistReport, error) {
	res, err := s.store.UpsertBook(ctx, book)
	if err != nil {
		return PersistReport{}, err
	}

	report := PersistReport{Created: res.Created}

	if s.index != nil {
		if err := s.index.IndexBook(search.NewDocument(book)); err != nil {
			report.IndexError = err.Error()
			s.logger.Warn("failed to index record",
				"id", book.ID,
				"error", err,
			)
		} else {
			report.Indexed = true
		}
	}

	if s.mirror != nil && s.mirror.Enabled() {
		written, err := s.mirror.Sync(ctx, book)
		if err != nil {
			report.MirrorError = err.Error()
			s.logger.Warn("failed to mirror record",
				"id", book.ID,
				"error", err,
			)
		} else {
			report.Mirrored = written
		}
	}

	return report, nil
}

// CountBooks returns the number of rows in the primary store.
func (s *CatalogService) CountBooks(ctx context.Context) (int, error) {
	return s.store.CountBooks(ctx)
}

// IndexedDocuments returns the number of documents in the search
// index, or an error when no index is configured.
func (s *CatalogService) IndexedDocuments() (uint64, error) {
	if s.index == nil {
		return 0, errors.Internal("search index is not configured", nil)
	}
	return s.index.DocumentCount()
}

// CreateBook inserts a manually authored record and replicates it.
func (s *CatalogService) CreateBook(ctx context.Context, book *domain.Book) error {
	book.Source = domain.SourceManual
	if err := s.store.CreateBook(ctx, book); err != nil {
		return err
	}
	s.replicate(ctx, book)
	return nil
}

// UpdateBook rewrites a record and replicates the change. Provenance
// is not editable: the stored source and creation time survive the
// update regardless of what the caller sends.
func (s *CatalogService) UpdateBook(ctx context.Context, book *domain.Book) error {
	existing, err := s.store.GetBook(ctx, book.ID)
	if err != nil {
		return err
	}
	book.Source = existing.Source
	book.CreatedAt = existing.CreatedAt
	if err := s.store.UpdateBook(ctx, book); err != nil {
		return err
	}
	s.replicate(ctx, book)
	return nil
}

// DeleteBook removes a record from the primary store and the index.
// The mirror keeps its copy; it is an append-only replica.
func (s *CatalogService) DeleteBook(ctx context.Context, bookID string) error {
	if err := s.store.DeleteBook(ctx, bookID); err != nil {
		return err
	}
	if s.index != nil {
		if err := s.index.DeleteBook(bookID); err != nil {
			s.logger.Warn("failed to remove record from index",
				"id", bookID,
				"error", err,
			)
		}
	}
	return nil
}

func (s *CatalogService) replicate(ctx context.Context, book *domain.Book) {
	if s.index != nil {
		if err := s.index.IndexBook(search.NewDocument(book)); err != nil {
			s.logger.Warn("failed to index record", "id", book.ID, "error", err)
		}
	}
	if s.mirror != nil && s.mirror.Enabled() {
		if _, err := s.mirror.Sync(ctx, book); err != nil {
			s.logger.Warn("failed to mirror record", "id", book.ID, "error", err)
		}
	}
}

// RebuildIndex drops and repopulates the search index from the
// primary store.
func (s *CatalogService) RebuildIndex(ctx context.Context) (int, error) {
	if s.index == nil {
		return 0, errors.Internal("search index is not configured", nil)
	}

	if err := s.index.Rebuild(); err != nil {
		return 0, err
	}

	const pageSize = 500
	total := 0
	for offset := 0; ; offset += pageSize {
		books, err := s.store.ListBooks(ctx, store.ListOptions{Limit: pageSize, Offset: offset})
		if err != nil {
			return total, err
		}
		if len(books) == 0 {
			break
		}

		docs := make([]*search.Document, len(books))
		for i := range books {
			docs[i] = search.NewDocument(&books[i])
		}
		if err := s.index.IndexBooks(docs); err != nil {
			return total, err
		}
		total += len(books)
	}

	s.logger.Info("search index rebuilt", "documents", total)
	return total, nil
}

package service

import (
	"context"
	"log/slog"
	"regexp"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"

	"github.com/bibliointel/bibliointel-server/internal/domain"
	"github.com/bibliointel/bibliointel-server/internal/errors"
)

// isbnShape matches an ISBN-10 or ISBN-13 once separators are
// stripped. Check digits are deliberately not verified: the sources
// answer not-found for ISBNs they do not know, and that answer must
// reach the caller as a 404, not a premature validation error.
var isbnShape = regexp.MustCompile(`^(?:[0-9]{9}[0-9Xx]|[0-9]{13})$`)

// isbnSeparators drops the dashes and spaces tolerated in ISBN input.
var isbnSeparators = strings.NewReplacer("-", "", " ", "")

// ISBNLookup fetches candidate records for an ISBN from one source.
type ISBNLookup interface {
	LookupISBN(ctx context.Context, isbn string) (domain.Book, error)
}

// ISBNLookupFunc adapts a function to the ISBNLookup interface.
type ISBNLookupFunc func(ctx context.Context, isbn string) (domain.Book, error)

// LookupISBN implements ISBNLookup.
func (f ISBNLookupFunc) LookupISBN(ctx context.Context, isbn string) (domain.Book, error) {
	return f(ctx, isbn)
}

// NamedLookup pairs a lookup with its source name. Order matters: the
// first source that finds the ISBN becomes the primary record and
// later sources only fill fields it left empty.
type NamedLookup struct {
	Name   string
	Lookup ISBNLookup
}

// ImportResult is what an ISBN import produced.
type ImportResult struct {
	Book    domain.Book   `json:"book"`
	Sources []string      `json:"sources"`
	Report  PersistReport `json:"report"`
}

// ImportService drives the POST /api/import flow: fetch a record by
// ISBN from the sources, merge, and persist through the catalog.
type ImportService struct {
	catalog  *CatalogService
	lookups  []NamedLookup
	validate *validator.Validate
	logger   *slog.Logger
}

// NewImportService creates a new import service.
func NewImportService(catalog *CatalogService, lookups []NamedLookup, logger *slog.Logger) *ImportService {
	v := validator.New()
	//nolint:errcheck // registration only fails for an empty tag name
	_ = v.RegisterValidation("isbn_shape", func(fl validator.FieldLevel) bool {
		return isbnShape.MatchString(fl.Field().String())
	})

	return &ImportService{
		catalog:  catalog,
		lookups:  lookups,
		validate: v,
		logger:   logger,
	}
}

// Import fetches metadata for an ISBN from every configured source,
// merges the results, and persists the merged record. Only the ISBN's
// shape is validated; an unknown or checksum-broken ISBN surfaces as
// the sources' not-found answer.
func (s *ImportService) Import(ctx context.Context, isbn string) (*ImportResult, error) {
	isbn = isbnSeparators.Replace(isbn)
	if err := s.validate.Var(isbn, "required,isbn_shape"); err != nil {
		return nil, errors.Validation("invalid isbn: " + isbn)
	}

	type lookupResult struct {
		book  domain.Book
		found bool
	}

	results := make([]lookupResult, len(s.lookups))
	var wg sync.WaitGroup
	for i, nl := range s.lookups {
		wg.Add(1)
		go func() {
			defer wg.Done()
			book, err := nl.Lookup.LookupISBN(ctx, isbn)
			if err != nil {
				if !errors.Is(err, errors.ErrNotFound) {
					s.logger.Warn("isbn lookup failed",
						"source", nl.Name,
						"isbn", isbn,
						"error", err,
					)
				}
				return
			}
			results[i] = lookupResult{book: book, found: true}
		}()
	}
	wg.Wait()

	var (
		merged  *domain.Book
		sources []string
	)
	for i, res := range results {
		if !res.found {
			continue
		}
		sources = append(sources, s.lookups[i].Name)
		if merged == nil {
			b := res.book
			merged = &b
			continue
		}
		mergeBook(merged, &res.book)
	}

	if merged == nil {
		return nil, errors.NotFoundf("no source found isbn %s", isbn)
	}

	// The record represents the requested ISBN even when a source
	// reported a different edition identifier.
	if merged.ISBN == "" {
		merged.ISBN = isbn
	}

	report, err := s.catalog.Persist(ctx, merged)
	if err != nil {
		return nil, err
	}

	s.logger.Info("imported book",
		"isbn", isbn,
		"id", merged.ID,
		"sources", sources,
		"created", report.Created,
	)

	return &ImportResult{
		Book:    *merged,
		Sources: sources,
		Report:  report,
	}, nil
}

// mergeBook fills the primary record's defaulted fields from a
// secondary source. Substituted defaults count as empty.
func mergeBook(primary, secondary *domain.Book) {
	if primary.Title == "" || primary.Title == domain.UnknownTitle {
		primary.Title = secondary.Title
	}
	if primary.Author == "" || primary.Author == domain.UnknownAuthor {
		primary.Author = secondary.Author
	}
	if primary.Description == "" {
		primary.Description = secondary.Description
	}
	if primary.ISBN == "" {
		primary.ISBN = secondary.ISBN
	}
	if primary.PublishedDate == "" {
		primary.PublishedDate = secondary.PublishedDate
	}
	if primary.Publisher == "" {
		primary.Publisher = secondary.Publisher
	}
	if primary.PageCount == 0 {
		primary.PageCount = secondary.PageCount
	}
	if len(primary.Categories) == 0 {
		primary.Categories = secondary.Categories
	}
	if primary.CoverURL == "" {
		primary.CoverURL = secondary.CoverURL
	}
	if primary.Rating == 0 {
		primary.Rating = secondary.Rating
	}
	if primary.Price == 0 {
		primary.Price = secondary.Price
		primary.Currency = secondary.Currency
	}
}

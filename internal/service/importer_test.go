package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bibliointel/bibliointel-server/internal/domain"
	"github.com/bibliointel/bibliointel-server/internal/errors"
	"github.com/bibliointel/bibliointel-server/internal/store"
)

const testISBN = "9780451419439"

func lookupFound(book domain.Book) NamedLookup {
	return NamedLookup{
		Name: string(book.Source),
		Lookup: ISBNLookupFunc(func(context.Context, string) (domain.Book, error) {
			return book, nil
		}),
	}
}

func lookupMissing(name string) NamedLookup {
	return NamedLookup{
		Name: name,
		Lookup: ISBNLookupFunc(func(_ context.Context, isbn string) (domain.Book, error) {
			return domain.Book{}, errors.NotFoundf("no edition for isbn %s", isbn)
		}),
	}
}

func newImporter(t *testing.T, lookups ...NamedLookup) (*ImportService, *CatalogService) {
	t.Helper()
	catalog := newCatalog(t, newTestStore(t))
	return NewImportService(catalog, lookups, testLogger()), catalog
}

func TestImport_RejectsMalformedISBN(t *testing.T) {
	svc, _ := newImporter(t)

	for _, isbn := range []string{"", "not-an-isbn", "12345", "97804514194391"} {
		_, err := svc.Import(context.Background(), isbn)
		assert.True(t, errors.Is(err, errors.ErrValidation), "isbn %q must be rejected", isbn)
	}
}

func TestImport_ChecksumInvalidISBNReachesLookups(t *testing.T) {
	// A well-formed ISBN with a broken check digit is forwarded to the
	// sources; their not-found answer comes back as a 404, not a
	// validation error.
	svc, catalog := newImporter(t, lookupMissing("openlibrary"))
	ctx := context.Background()

	_, err := svc.Import(ctx, "9780000000000")
	assert.True(t, errors.Is(err, errors.ErrNotFound), "got %v", err)
	assert.Contains(t, err.Error(), "9780000000000")

	books, err := catalog.ListBooks(ctx, store.ListOptions{Limit: 10})
	require.NoError(t, err)
	assert.Empty(t, books, "a failed import must not insert a row")
}

func TestImport_StripsSeparators(t *testing.T) {
	book := domain.Book{
		ExternalID: "openlibrary_OL1M",
		Title:      "Les Misérables",
		Source:     domain.SourceOpenLibrary,
	}
	book.Normalize()

	var seen string
	svc, _ := newImporter(t, NamedLookup{
		Name: "openlibrary",
		Lookup: ISBNLookupFunc(func(_ context.Context, isbn string) (domain.Book, error) {
			seen = isbn
			return book, nil
		}),
	})

	_, err := svc.Import(context.Background(), "978-0-451-41943-9")
	require.NoError(t, err)
	assert.Equal(t, testISBN, seen, "lookups receive the bare digits")
}

func TestImport_NotFoundWhenNoSourceKnowsIt(t *testing.T) {
	svc, _ := newImporter(t, lookupMissing("google"), lookupMissing("openlibrary"))

	_, err := svc.Import(context.Background(), testISBN)
	assert.True(t, errors.Is(err, errors.ErrNotFound))
}

func TestImport_MergesAcrossSources(t *testing.T) {
	google := domain.Book{
		ExternalID: "google_abc",
		Title:      "Les Misérables",
		Rating:     4.5,
		Source:     domain.SourceGoogle,
	}
	google.Normalize() // author defaults to "Auteur inconnu"

	openlib := domain.Book{
		ExternalID:  "openlibrary_OL1M",
		Title:       "Les Misérables",
		Author:      "Victor Hugo",
		Description: "Hugo's masterwork.",
		PageCount:   1463,
		Source:      domain.SourceOpenLibrary,
	}
	openlib.Normalize()

	svc, _ := newImporter(t, lookupFound(google), lookupFound(openlib))

	res, err := svc.Import(context.Background(), testISBN)
	require.NoError(t, err)

	// Primary source wins identity and filled fields; the secondary
	// fills the gaps, including substituted defaults.
	assert.Equal(t, "google_abc", res.Book.ExternalID)
	assert.Equal(t, 4.5, res.Book.Rating)
	assert.Equal(t, "Victor Hugo", res.Book.Author)
	assert.Equal(t, "Hugo's masterwork.", res.Book.Description)
	assert.Equal(t, 1463, res.Book.PageCount)
	assert.Equal(t, testISBN, res.Book.ISBN, "requested isbn backfills a missing one")
	assert.ElementsMatch(t, []string{"google", "openlibrary"}, res.Sources)
	assert.True(t, res.Report.Created)
	assert.NotEmpty(t, res.Book.ID)
}

func TestImport_IsIdempotent(t *testing.T) {
	book := domain.Book{
		ExternalID: "google_abc",
		Title:      "Les Misérables",
		ISBN:       testISBN,
		Source:     domain.SourceGoogle,
	}
	book.Normalize()

	svc, catalog := newImporter(t, lookupFound(book))
	ctx := context.Background()

	first, err := svc.Import(ctx, testISBN)
	require.NoError(t, err)
	assert.True(t, first.Report.Created)

	second, err := svc.Import(ctx, testISBN)
	require.NoError(t, err)
	assert.False(t, second.Report.Created, "re-import must update, not duplicate")
	assert.Equal(t, first.Book.ID, second.Book.ID)

	books, err := catalog.ListBooks(ctx, store.ListOptions{Limit: 10})
	require.NoError(t, err)
	assert.Len(t, books, 1)
}

func TestImport_SingleSourceFailureStillImports(t *testing.T) {
	book := domain.Book{
		ExternalID: "openlibrary_OL1M",
		Title:      "Les Misérables",
		Author:     "Victor Hugo",
		Source:     domain.SourceOpenLibrary,
	}
	book.Normalize()

	svc, _ := newImporter(t, lookupMissing("google"), lookupFound(book))

	res, err := svc.Import(context.Background(), testISBN)
	require.NoError(t, err)
	assert.Equal(t, []string{"openlibrary"}, res.Sources)
	assert.Equal(t, "openlibrary_OL1M", res.Book.ExternalID)
}

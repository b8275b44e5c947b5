package openlibrary

import (
	"context"
	"encoding/json/v2"
	"fmt"
	"net/http"
	"strings"

	"github.com/bibliointel/bibliointel-server/internal/domain"
	"github.com/bibliointel/bibliointel-server/internal/errors"
	"github.com/bibliointel/bibliointel-server/internal/normalize"
)

// maxAuthorLookups bounds the follow-up requests made to resolve
// author names on an edition.
const maxAuthorLookups = 3

// GetByISBN fetches the edition record for an ISBN. Returns
// errors.ErrNotFound when OpenLibrary has no edition for it.
func (c *Client) GetByISBN(ctx context.Context, isbn string) (domain.Book, error) {
	if err := c.wait(ctx); err != nil {
		return domain.Book{}, fmt.Errorf("rate limit: %w", err)
	}

	lookupURL := c.baseURL + "/isbn/" + isbn + ".json"

	c.logger.Debug("looking up openlibrary edition", "isbn", isbn)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, lookupURL, nil)
	if err != nil {
		return domain.Book{}, fmt.Errorf("create request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return domain.Book{}, fmt.Errorf("isbn request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return domain.Book{}, errors.NotFoundf("no edition for isbn %s", isbn)
	}
	if resp.StatusCode != http.StatusOK {
		return domain.Book{}, fmt.Errorf("isbn lookup failed: status %d", resp.StatusCode)
	}

	var ed edition
	if err := json.UnmarshalRead(resp.Body, &ed); err != nil {
		return domain.Book{}, fmt.Errorf("parse response: %w", err)
	}

	return c.editionToBook(ctx, &ed, isbn), nil
}

// editionToBook maps an edition record onto the normalized record
// shape, resolving author names with follow-up requests.
func (c *Client) editionToBook(ctx context.Context, ed *edition, requestedISBN string) domain.Book {
	isbn := requestedISBN
	if len(ed.ISBN13) > 0 {
		isbn = ed.ISBN13[0]
	} else if len(ed.ISBN10) > 0 {
		isbn = ed.ISBN10[0]
	}

	var publisher string
	if len(ed.Publishers) > 0 {
		publisher = ed.Publishers[0]
	}

	var language string
	if len(ed.Languages) > 0 {
		language = normalize.LanguageCode(workID(ed.Languages[0].Key))
	}

	var coverURL string
	if len(ed.Covers) > 0 {
		coverURL = CoverURL(ed.Covers[0])
	}

	categories := ed.Subjects
	if len(categories) > maxCategories {
		categories = categories[:maxCategories]
	}

	book := domain.Book{
		ExternalID:    "openlibrary_" + workID(ed.Key),
		Title:         ed.Title,
		Author:        c.authorNames(ctx, ed.Authors),
		Description:   string(ed.Description),
		ISBN:          isbn,
		PublishedDate: ed.PublishDate,
		Publisher:     publisher,
		PageCount:     ed.NumberOfPages,
		Language:      language,
		Categories:    categories,
		CoverURL:      coverURL,
		Source:        domain.SourceOpenLibrary,
	}
	book.Normalize()
	return book
}

// authorNames resolves author references to display names. Lookup
// failures are logged and skipped; Normalize substitutes the unknown
// author default when nothing resolves.
func (c *Client) authorNames(ctx context.Context, refs []keyRef) string {
	if len(refs) > maxAuthorLookups {
		refs = refs[:maxAuthorLookups]
	}

	names := make([]string, 0, len(refs))
	for _, ref := range refs {
		name, err := c.authorName(ctx, ref.Key)
		if err != nil {
			c.logger.Warn("openlibrary author lookup failed",
				"key", ref.Key,
				"error", err,
			)
			continue
		}
		if name != "" {
			names = append(names, name)
		}
	}
	return strings.Join(names, domain.AuthorSeparator)
}

func (c *Client) authorName(ctx context.Context, key string) (string, error) {
	if err := c.wait(ctx); err != nil {
		return "", fmt.Errorf("rate limit: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+key+".json", nil)
	if err != nil {
		return "", fmt.Errorf("create request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("author request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("author lookup failed: status %d", resp.StatusCode)
	}

	var author authorRecord
	if err := json.UnmarshalRead(resp.Body, &author); err != nil {
		return "", fmt.Errorf("parse response: %w", err)
	}
	return author.Name, nil
}

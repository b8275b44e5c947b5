package openlibrary

import (
	"context"
	"encoding/json/v2"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/bibliointel/bibliointel-server/internal/domain"
	"github.com/bibliointel/bibliointel-server/internal/normalize"
)

// Name is the adapter identifier used in logs and sync reports.
const Name = "openlibrary"

// maxCategories caps the subject list; OpenLibrary works routinely
// carry dozens of subjects.
const maxCategories = 5

// Search queries /search.json and returns normalized records.
// Failures are logged and swallowed so one unreachable source never
// breaks an aggregated search.
func (c *Client) Search(ctx context.Context, query string, limit int) []domain.Book {
	books, err := c.search(ctx, query, limit)
	if err != nil {
		c.logger.Warn("openlibrary search failed",
			"query", query,
			"error", err,
		)
		return []domain.Book{}
	}
	return books
}

func (c *Client) search(ctx context.Context, query string, limit int) ([]domain.Book, error) {
	if err := c.wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limit: %w", err)
	}

	params := url.Values{}
	params.Set("q", query)
	params.Set("limit", strconv.Itoa(limit))

	searchURL := c.baseURL + "/search.json?" + params.Encode()

	c.logger.Debug("searching openlibrary",
		"query", query,
		"limit", limit,
	)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, searchURL, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("search request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("search failed: status %d", resp.StatusCode)
	}

	var searchResp searchResponse
	if err := json.UnmarshalRead(resp.Body, &searchResp); err != nil {
		return nil, fmt.Errorf("parse response: %w", err)
	}

	c.logger.Debug("openlibrary search results",
		"query", query,
		"count", len(searchResp.Docs),
	)

	books := make([]domain.Book, 0, len(searchResp.Docs))
	for i := range searchResp.Docs {
		books = append(books, toBook(&searchResp.Docs[i]))
	}
	return books, nil
}

// toBook maps one raw work doc onto the normalized record shape.
func toBook(d *workDoc) domain.Book {
	var published string
	if d.FirstPublishYear > 0 {
		published = strconv.Itoa(d.FirstPublishYear)
	}

	var isbn string
	if len(d.ISBN) > 0 {
		isbn = d.ISBN[0]
	}

	var publisher string
	if len(d.Publisher) > 0 {
		publisher = d.Publisher[0]
	}

	var language string
	if len(d.Language) > 0 {
		language = normalize.LanguageCode(d.Language[0])
	}

	var description string
	if len(d.FirstSentence) > 0 {
		description = d.FirstSentence[0]
	}

	categories := d.Subject
	if len(categories) > maxCategories {
		categories = categories[:maxCategories]
	}

	book := domain.Book{
		ExternalID:    "openlibrary_" + workID(d.Key),
		Title:         d.Title,
		Author:        strings.Join(d.AuthorName, domain.AuthorSeparator),
		Description:   description,
		ISBN:          isbn,
		PublishedDate: published,
		Publisher:     publisher,
		PageCount:     d.NumberOfPagesMedian,
		Language:      language,
		Categories:    categories,
		CoverURL:      CoverURL(d.CoverID),
		Rating:        d.RatingsAverage,
		Source:        domain.SourceOpenLibrary,
	}
	book.Normalize()
	return book
}

// workID strips the key namespace, "/works/OL45883W" becomes "OL45883W".
func workID(key string) string {
	if i := strings.LastIndexByte(key, '/'); i >= 0 {
		return key[i+1:]
	}
	return key
}

// CoverURL builds the large-cover image URL for a cover ID. Returns
// empty when the work has no cover.
func CoverURL(coverID int) string {
	if coverID <= 0 {
		return ""
	}
	return fmt.Sprintf("%s/b/id/%d-L.jpg", coversBaseURL, coverID)
}

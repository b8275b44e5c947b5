package google

import (
	"context"
	"encoding/json/v2"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/bibliointel/bibliointel-server/internal/domain"
	"github.com/bibliointel/bibliointel-server/internal/normalize"
)

// Name is the adapter identifier used in logs and sync reports.
const Name = "google"

// Search queries the volumes endpoint and returns normalized records.
// Failures are logged and swallowed so one unreachable source never
// breaks an aggregated search.
func (c *Client) Search(ctx context.Context, query string, limit int) []domain.Book {
	books, err := c.search(ctx, query, limit)
	if err != nil {
		c.logger.Warn("google books search failed",
			"query", query,
			"error", err,
		)
		return []domain.Book{}
	}
	return books
}

// SearchByISBN looks up volumes by ISBN. Used by the import pipeline,
// which wants the error to report back to the caller.
func (c *Client) SearchByISBN(ctx context.Context, isbn string) ([]domain.Book, error) {
	return c.search(ctx, "isbn:"+isbn, 5)
}

func (c *Client) search(ctx context.Context, query string, limit int) ([]domain.Book, error) {
	if err := c.wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limit: %w", err)
	}

	params := url.Values{}
	params.Set("q", query)
	params.Set("maxResults", fmt.Sprintf("%d", limit))

	searchURL := c.baseURL + "/volumes?" + params.Encode()

	c.logger.Debug("searching google books",
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

	var volumes volumesResponse
	if err := json.UnmarshalRead(resp.Body, &volumes); err != nil {
		return nil, fmt.Errorf("parse response: %w", err)
	}

	c.logger.Debug("google books search results",
		"query", query,
		"count", len(volumes.Items),
	)

	books := make([]domain.Book, 0, len(volumes.Items))
	for i := range volumes.Items {
		books = append(books, c.toBook(&volumes.Items[i]))
	}
	return books, nil
}

// toBook maps one raw volume onto the normalized record shape.
func (c *Client) toBook(v *volume) domain.Book {
	info := &v.VolumeInfo

	availability := domain.Unavailable
	if v.SaleInfo.Saleability == "FOR_SALE" {
		availability = domain.Available
	}

	currency := v.SaleInfo.ListPrice.CurrencyCode
	if currency == "" {
		currency = domain.DefaultCurrency
	}

	book := domain.Book{
		ExternalID:    "google_" + v.ID,
		Title:         info.Title,
		Author:        strings.Join(info.Authors, domain.AuthorSeparator),
		Description:   cleanDescription(info.Description),
		ISBN:          firstISBN(info.IndustryIdentifiers),
		PublishedDate: info.PublishedDate,
		Publisher:     info.Publisher,
		PageCount:     info.PageCount,
		Language:      normalize.LanguageCode(info.Language),
		Categories:    info.Categories,
		CoverURL:      coverURL(info.ImageLinks),
		Rating:        info.AverageRating,
		Price:         v.SaleInfo.ListPrice.Amount,
		Currency:      currency,
		Availability:  availability,
		Source:        domain.SourceGoogle,
	}
	book.Normalize()
	return book
}

// firstISBN prefers the ISBN_13 identifier, falling back to whatever
// identifier comes first.
func firstISBN(ids []industryIdentifier) string {
	for _, id := range ids {
		if id.Type == "ISBN_13" {
			return id.Identifier
		}
	}
	if len(ids) > 0 {
		return ids[0].Identifier
	}
	return ""
}

// coverURL picks the largest available thumbnail and upgrades the
// scheme, Google still serves http:// links in imageLinks.
func coverURL(links imageLinks) string {
	u := links.Thumbnail
	if u == "" {
		u = links.SmallThumbnail
	}
	return strings.Replace(u, "http://", "https://", 1)
}

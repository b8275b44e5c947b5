package openalex

import (
	"context"
	"encoding/json/v2"
	"fmt"
	"net/http"
	"net/url"
	"sort"
	"strconv"
	"strings"

	"github.com/bibliointel/bibliointel-server/internal/domain"
	"github.com/bibliointel/bibliointel-server/internal/normalize"
)

// Name is the adapter identifier used in logs and sync reports.
const Name = "openalex"

// maxCategories caps the concept list per work.
const maxCategories = 5

// Search queries the works endpoint and returns normalized records.
// Failures are logged and swallowed so one unreachable source never
// breaks an aggregated search.
func (c *Client) Search(ctx context.Context, query string, limit int) []domain.Book {
	books, err := c.search(ctx, query, limit)
	if err != nil {
		c.logger.Warn("openalex search failed",
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
	params.Set("search", query)
	params.Set("per_page", strconv.Itoa(limit))

	searchURL := c.baseURL + "/works?" + params.Encode()

	c.logger.Debug("searching openalex",
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

	var works worksResponse
	if err := json.UnmarshalRead(resp.Body, &works); err != nil {
		return nil, fmt.Errorf("parse response: %w", err)
	}

	c.logger.Debug("openalex search results",
		"query", query,
		"count", len(works.Results),
	)

	books := make([]domain.Book, 0, len(works.Results))
	for i := range works.Results {
		books = append(books, toBook(&works.Results[i]))
	}
	return books, nil
}

// toBook maps one raw work onto the normalized record shape. Scholarly
// works carry no ISBN, price, or cover.
func toBook(w *work) domain.Book {
	authors := make([]string, 0, len(w.Authorships))
	for _, a := range w.Authorships {
		if a.Author.DisplayName != "" {
			authors = append(authors, a.Author.DisplayName)
		}
	}

	var publisher string
	if w.PrimaryLocation != nil && w.PrimaryLocation.Source != nil {
		publisher = w.PrimaryLocation.Source.DisplayName
	}

	published := w.PublicationDate
	if published == "" && w.PublicationYear > 0 {
		published = strconv.Itoa(w.PublicationYear)
	}

	categories := make([]string, 0, maxCategories)
	for _, con := range w.Concepts {
		if len(categories) == maxCategories {
			break
		}
		if con.DisplayName != "" {
			categories = append(categories, con.DisplayName)
		}
	}

	book := domain.Book{
		ExternalID:    "openalex_" + workID(w.ID),
		Title:         w.DisplayName,
		Author:        strings.Join(authors, domain.AuthorSeparator),
		Description:   abstractText(w.AbstractInvertedIndex),
		PublishedDate: published,
		Publisher:     publisher,
		Language:      normalize.LanguageCode(w.Language),
		Categories:    categories,
		Source:        domain.SourceOpenAlex,
	}
	book.Normalize()
	return book
}

// workID strips the URL prefix, "https://openalex.org/W2741809807"
// becomes "W2741809807".
func workID(id string) string {
	if i := strings.LastIndexByte(id, '/'); i >= 0 {
		return id[i+1:]
	}
	return id
}

// abstractText rebuilds a readable abstract from the inverted index
// OpenAlex publishes instead of plain text. Words are ordered by their
// first occurrence, so repeated words appear once; the result is an
// approximation, not the exact abstract.
func abstractText(index map[string][]int) string {
	if len(index) == 0 {
		return ""
	}

	type entry struct {
		word string
		pos  int
	}

	entries := make([]entry, 0, len(index))
	for word, positions := range index {
		if len(positions) == 0 {
			continue
		}
		first := positions[0]
		for _, p := range positions[1:] {
			if p < first {
				first = p
			}
		}
		entries = append(entries, entry{word: word, pos: first})
	}

	sort.Slice(entries, func(i, j int) bool { return entries[i].pos < entries[j].pos })

	words := make([]string, len(entries))
	for i, e := range entries {
		words[i] = e.word
	}
	return strings.Join(words, " ")
}

// Package mirror replicates catalog writes to a hosted PostgREST-style
// secondary store. Replication is best effort: the primary store is
// the source of truth and mirror failures never fail a request.
package mirror

import (
	"bytes"
	"context"
	"encoding/json/v2"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"github.com/bibliointel/bibliointel-server/internal/domain"
)

// Client talks to the secondary store's REST interface.
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
	logger     *slog.Logger
}

// New creates a mirror client. An empty baseURL disables mirroring;
// every method becomes a no-op reporting nothing to do.
func New(baseURL, apiKey string, logger *slog.Logger) *Client {
	return &Client{
		baseURL: baseURL,
		apiKey:  apiKey,
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
		logger: logger,
	}
}

// Enabled reports whether a secondary store is configured.
func (c *Client) Enabled() bool {
	return c.baseURL != ""
}

// mirrorRow is the wire shape of a book row in the secondary store.
// The surrogate id stays local; identity travels as external_id/isbn.
type mirrorRow struct {
	ExternalID    string   `json:"external_id,omitempty"`
	Title         string   `json:"title"`
	Author        string   `json:"author"`
	Description   string   `json:"description"`
	ISBN          string   `json:"isbn"`
	PublishedDate string   `json:"published_date"`
	Publisher     string   `json:"publisher"`
	PageCount     int      `json:"page_count"`
	Language      string   `json:"language"`
	Categories    []string `json:"categories"`
	CoverURL      string   `json:"cover_url"`
	Rating        float64  `json:"rating"`
	Price         float64  `json:"price"`
	Currency      string   `json:"currency"`
	Availability  string   `json:"availability"`
	Source        string   `json:"source"`
}

func toRow(b *domain.Book) mirrorRow {
	return mirrorRow{
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
	}
}

// Exists checks whether a record sharing the book's identity is
// already present in the secondary store.
func (c *Client) Exists(ctx context.Context, book *domain.Book) (bool, error) {
	var filter string
	switch {
	case book.ExternalID != "":
		filter = "external_id=eq." + url.QueryEscape(book.ExternalID)
	case book.ISBN != "":
		filter = "isbn=eq." + url.QueryEscape(book.ISBN)
	default:
		// No identity to match on; treat as absent.
		return false, nil
	}

	reqURL := c.baseURL + "/rest/v1/books?select=external_id&limit=1&" + filter

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return false, fmt.Errorf("create request: %w", err)
	}
	c.setHeaders(req)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return false, fmt.Errorf("exists request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return false, fmt.Errorf("exists check failed: status %d", resp.StatusCode)
	}

	var rows []map[string]any
	if err := json.UnmarshalRead(resp.Body, &rows); err != nil {
		return false, fmt.Errorf("parse response: %w", err)
	}
	return len(rows) > 0, nil
}

// Insert writes one record to the secondary store.
func (c *Client) Insert(ctx context.Context, book *domain.Book) error {
	var buf bytes.Buffer
	if err := json.MarshalWrite(&buf, toRow(book)); err != nil {
		return fmt.Errorf("encode row: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/rest/v1/books", &buf)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	c.setHeaders(req)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Prefer", "return=minimal")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("insert request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusCreated && resp.StatusCode != http.StatusOK {
		return fmt.Errorf("insert failed: status %d", resp.StatusCode)
	}
	return nil
}

// Sync pushes a record to the secondary store if it is not already
// there. Returns whether a row was written.
func (c *Client) Sync(ctx context.Context, book *domain.Book) (bool, error) {
	if !c.Enabled() {
		return false, nil
	}

	exists, err := c.Exists(ctx, book)
	if err != nil {
		return false, err
	}
	if exists {
		return false, nil
	}

	if err := c.Insert(ctx, book); err != nil {
		return false, err
	}
	return true, nil
}

func (c *Client) setHeaders(req *http.Request) {
	req.Header.Set("apikey", c.apiKey)
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
}

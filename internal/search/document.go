// Package search provides full-text catalog search using Bleve.
package search

import (
	"github.com/bibliointel/bibliointel-server/internal/domain"
)

// Document is the indexed representation of one catalog record.
type Document struct {
	ID          string   `json:"id"`
	Title       string   `json:"title"`
	Author      string   `json:"author"`
	Description string   `json:"description"`
	Publisher   string   `json:"publisher"`
	ISBN        string   `json:"isbn"`
	Categories  []string `json:"categories"`
	Language    string   `json:"language"`
	Source      string   `json:"source"`
	Rating      float64  `json:"rating"`
	CreatedAt   int64    `json:"created_at"` // Unix millis
}

// NewDocument builds the indexable document for a book. Descriptions
// are stripped of any markup that survived source cleanup.
func NewDocument(b *domain.Book) *Document {
	return &Document{
		ID:          b.ID,
		Title:       b.Title,
		Author:      b.Author,
		Description: stripHTML(b.Description),
		Publisher:   b.Publisher,
		ISBN:        b.ISBN,
		Categories:  b.Categories,
		Language:    b.Language,
		Source:      string(b.Source),
		Rating:      b.Rating,
		CreatedAt:   b.CreatedAt.UnixMilli(),
	}
}

// ToMap converts the document to a map with lowercase field names so
// they match the index mapping.
func (d *Document) ToMap() map[string]interface{} {
	m := map[string]interface{}{
		"id":         d.ID,
		"title":      d.Title,
		"author":     d.Author,
		"rating":     d.Rating,
		"created_at": d.CreatedAt,
	}

	if d.Description != "" {
		m["description"] = d.Description
	}
	if d.Publisher != "" {
		m["publisher"] = d.Publisher
	}
	if d.ISBN != "" {
		m["isbn"] = d.ISBN
	}
	if len(d.Categories) > 0 {
		m["categories"] = d.Categories
	}
	if d.Language != "" {
		m["language"] = d.Language
	}
	if d.Source != "" {
		m["source"] = d.Source
	}

	return m
}

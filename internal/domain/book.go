// Package domain contains the core business entities and domain logic for the BiblioIntel catalog.
package domain

import (
	"time"
)

// Source identifies where a catalog record came from.
type Source string

// Known record sources.
const (
	SourceGoogle      Source = "google"
	SourceOpenLibrary Source = "openlibrary"
	SourceOpenAlex    Source = "openalex"
	SourceManual      Source = "manual"
	SourceMySQLImport Source = "mysql_import"
)

// Valid reports whether s is a known source.
func (s Source) Valid() bool {
	switch s {
	case SourceGoogle, SourceOpenLibrary, SourceOpenAlex, SourceManual, SourceMySQLImport:
		return true
	}
	return false
}

// Availability values.
const (
	Available   = "disponible"
	Unavailable = "indisponible"
)

// Default values substituted when a source omits a field.
const (
	UnknownTitle    = "Titre inconnu"
	UnknownAuthor   = "Auteur inconnu"
	DefaultLanguage = "fr"
	DefaultCurrency = "XOF"
)

// AuthorSeparator joins multiple author names into the Author field.
const AuthorSeparator = ", "

// Book is the normalized, source-agnostic representation of one catalog
// entry. Every optional field defaults to its zero value (empty string, 0),
// never null, so the store never receives an undefined column value.
type Book struct {
	// ID is the store-local surrogate key ("bk-" nanoid). Assigned on
	// first insert and never changed by updates.
	ID string `json:"id"`

	// ExternalID is the stable identity unique per (source, native id)
	// pair, e.g. "google_zyTCAlFPjgYC". Empty for manually created or
	// legacy-imported rows, which are deduplicated by ISBN instead.
	ExternalID string `json:"external_id,omitempty"`

	Title       string `json:"title"`
	Author      string `json:"author"`
	Description string `json:"description"`
	ISBN        string `json:"isbn"`
	// PublishedDate is free text: sources emit year-only, full ISO
	// dates, or nothing at all.
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
	Source        Source   `json:"source"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Normalize fills defaulted fields in place so a Book coming from any
// source satisfies the field invariants before it reaches the store.
func (b *Book) Normalize() {
	if b.Title == "" {
		b.Title = UnknownTitle
	}
	if b.Author == "" {
		b.Author = UnknownAuthor
	}
	if b.Language == "" {
		b.Language = DefaultLanguage
	}
	if b.Currency == "" {
		b.Currency = DefaultCurrency
	}
	if b.Availability == "" {
		b.Availability = Available
	}
	if b.Categories == nil {
		b.Categories = []string{}
	}
	if b.PageCount < 0 {
		b.PageCount = 0
	}
	if b.Rating < 0 {
		b.Rating = 0
	}
	if b.Rating > 5 {
		b.Rating = 5
	}
	if b.Source == "" {
		b.Source = SourceManual
	}
}

// HasIdentity reports whether the record carries a stable external
// identity usable as the primary dedup key.
func (b *Book) HasIdentity() bool {
	return b.ExternalID != ""
}

// NaturalKey returns the fallback dedup key for records without an
// identity. Empty when no natural key exists.
func (b *Book) NaturalKey() string {
	return b.ISBN
}

// Package main provides a tool to seed an empty catalog through the
// aggregation pipeline.
//
// It runs the popular and recent listings, which fan out to the
// external sources when the catalog has no local rows, and persists
// whatever comes back.
//
// Usage:
//
//	DATA_PATH=~/BiblioIntel/data go run ./cmd/seed
//	DATA_PATH=~/BiblioIntel/data go run ./cmd/seed --categories  # Also seed every category
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/bibliointel/bibliointel-server/internal/domain"
	"github.com/bibliointel/bibliointel-server/internal/metadata/google"
	"github.com/bibliointel/bibliointel-server/internal/metadata/openalex"
	"github.com/bibliointel/bibliointel-server/internal/metadata/openlibrary"
	"github.com/bibliointel/bibliointel-server/internal/search"
	"github.com/bibliointel/bibliointel-server/internal/service"
	"github.com/bibliointel/bibliointel-server/internal/store"
	"github.com/bibliointel/bibliointel-server/internal/store/sqlite"
)

var (
	seedCategories = flag.Bool("categories", false, "Also seed every category listing")
	seedLimit      = flag.Int("limit", 20, "Records to request per listing")
)

func main() {
	flag.Parse()

	dataPath := os.Getenv("DATA_PATH")
	if dataPath == "" {
		dataPath = os.ExpandEnv("$HOME/BiblioIntel/data")
	}

	fmt.Printf("Opening catalog at: %s\n", dataPath)

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelWarn}))

	st, err := sqlite.Open(filepath.Join(dataPath, "catalog.db"), logger)
	if err != nil {
		log.Fatalf("Failed to open store: %v", err)
	}
	defer st.Close()

	idx, err := search.NewIndex(search.Options{DataPath: dataPath, Logger: logger})
	if err != nil {
		log.Fatalf("Failed to open search index: %v", err)
	}
	defer idx.Close()

	catalog := service.NewCatalogService(service.CatalogOptions{
		Store: st,
		Adapters: []service.NamedAdapter{
			{Name: google.Name, Adapter: google.NewClient(google.DefaultBaseURL, logger)},
			{Name: openlibrary.Name, Adapter: openlibrary.NewClient(openlibrary.DefaultBaseURL, logger)},
			{Name: openalex.Name, Adapter: openalex.NewClient(openalex.DefaultBaseURL, logger)},
		},
		Index:  idx,
		Logger: logger,
	})

	ctx := context.Background()

	listings := []struct {
		name string
		run  func() ([]domain.Book, error)
	}{
		{"popular", func() ([]domain.Book, error) { return catalog.PopularBooks(ctx, *seedLimit) }},
		{"recent", func() ([]domain.Book, error) { return catalog.RecentBooks(ctx, *seedLimit) }},
	}

	if *seedCategories {
		for _, slug := range domain.CategorySlugs() {
			listings = append(listings, struct {
				name string
				run  func() ([]domain.Book, error)
			}{slug, func() ([]domain.Book, error) {
				return catalog.BooksByCategory(ctx, slug, store.ListOptions{Limit: *seedLimit})
			}})
		}
	}

	for _, listing := range listings {
		books, err := listing.run()
		if err != nil {
			log.Printf("Listing %s failed: %v", listing.name, err)
			continue
		}
		fmt.Printf("Listing %s: %d records\n", listing.name, len(books))
	}

	total, err := st.CountBooks(ctx)
	if err != nil {
		log.Fatalf("Failed to count books: %v", err)
	}
	fmt.Printf("Catalog now holds %d books\n", total)
}

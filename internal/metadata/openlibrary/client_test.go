package openlibrary

import (
	"context"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

	"github.com/bibliointel/bibliointel-server/internal/errors"
)

const searchFixture = `{
  "numFound": 1,
  "docs": [
    {
      "key": "/works/OL45883W",
      "title": "Les Misérables",
      "author_name": ["Victor Hugo"],
      "first_publish_year": 1862,
      "isbn": ["9780451419439", "0451419439"],
      "publisher": ["Signet Classics", "Gallimard"],
      "number_of_pages_median": 1463,
      "language": ["fre", "eng"],
      "subject": ["Fiction", "France", "History", "Classics", "Revolution", "Paris"],
      "cover_i": 12919014,
      "ratings_average": 4.2,
      "first_sentence": ["En 1815, M. Charles-François-Bienvenu Myriel était évêque de Digne."]
    }
  ]
}`

const editionFixture = `{
  "key": "/books/OL7353617M",
  "title": "Les Misérables",
  "publishers": ["Signet Classics"],
  "publish_date": "March 3, 1987",
  "number_of_pages": 1463,
  "isbn_13": ["9780451419439"],
  "isbn_10": ["0451419439"],
  "covers": [12919014],
  "languages": [{"key": "/languages/fre"}],
  "authors": [{"key": "/authors/OL21053A"}],
  "description": {"type": "/type/text", "value": "Hugo's masterwork."}
}`

func newTestClient(t *testing.T, handler http.Handler) (*Client, *httptest.Server) {
	t.Helper()
	server := httptest.NewServer(handler)

	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
	client := NewClient(server.URL, logger)

	return client, server
}

func TestClient_Search(t *testing.T) {
	client, server := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/search.json" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if got := r.URL.Query().Get("limit"); got != "10" {
			t.Errorf("unexpected limit %q", got)
		}
		w.Write([]byte(searchFixture))
	}))
	defer server.Close()

	books := client.Search(context.Background(), "les miserables", 10)
	if len(books) != 1 {
		t.Fatalf("expected 1 book, got %d", len(books))
	}

	b := books[0]
	if b.ExternalID != "openlibrary_OL45883W" {
		t.Errorf("external id = %q", b.ExternalID)
	}
	if b.Author != "Victor Hugo" {
		t.Errorf("author = %q", b.Author)
	}
	if b.ISBN != "9780451419439" {
		t.Errorf("isbn = %q", b.ISBN)
	}
	if b.PublishedDate != "1862" {
		t.Errorf("published date = %q", b.PublishedDate)
	}
	if b.Language != "fr" {
		t.Errorf("language = %q", b.Language)
	}
	if b.CoverURL != "https://covers.openlibrary.org/b/id/12919014-L.jpg" {
		t.Errorf("cover url = %q", b.CoverURL)
	}
	if len(b.Categories) != maxCategories {
		t.Errorf("categories = %v, want capped at %d", b.Categories, maxCategories)
	}
	if b.Rating != 4.2 {
		t.Errorf("rating = %v", b.Rating)
	}
	if b.Availability != "disponible" {
		t.Errorf("availability = %q", b.Availability)
	}
	if b.Source != "openlibrary" {
		t.Errorf("source = %q", b.Source)
	}
}

func TestClient_SearchUpstreamFailure(t *testing.T) {
	client, server := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer server.Close()

	books := client.Search(context.Background(), "anything", 10)
	if books == nil || len(books) != 0 {
		t.Fatalf("expected empty slice, got %v", books)
	}
}

func TestClient_GetByISBN(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/isbn/9780451419439.json", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(editionFixture))
	})
	mux.HandleFunc("/authors/OL21053A.json", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"name": "Victor Hugo"}`))
	})

	client, server := newTestClient(t, mux)
	defer server.Close()

	book, err := client.GetByISBN(context.Background(), "9780451419439")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if book.ExternalID != "openlibrary_OL7353617M" {
		t.Errorf("external id = %q", book.ExternalID)
	}
	if book.Author != "Victor Hugo" {
		t.Errorf("author = %q", book.Author)
	}
	if book.Description != "Hugo's masterwork." {
		t.Errorf("description = %q, want text object unwrapped", book.Description)
	}
	if book.ISBN != "9780451419439" {
		t.Errorf("isbn = %q", book.ISBN)
	}
	if book.Language != "fr" {
		t.Errorf("language = %q", book.Language)
	}
}

func TestClient_GetByISBNNotFound(t *testing.T) {
	client, server := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	_, err := client.GetByISBN(context.Background(), "0000000000")
	if !errors.Is(err, errors.ErrNotFound) {
		t.Fatalf("expected not-found error, got %v", err)
	}
}

func TestClient_GetByISBNAuthorLookupFailure(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/isbn/9780451419439.json", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(editionFixture))
	})
	mux.HandleFunc("/authors/", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	})

	client, server := newTestClient(t, mux)
	defer server.Close()

	book, err := client.GetByISBN(context.Background(), "9780451419439")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if book.Author != "Auteur inconnu" {
		t.Errorf("author = %q, want unknown-author default", book.Author)
	}
}

func TestFlexText(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"bare string", `"plain"`, "plain"},
		{"text object", `{"type": "/type/text", "value": "wrapped"}`, "wrapped"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var ft flexText
			if err := ft.UnmarshalJSON([]byte(tt.input)); err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if string(ft) != tt.want {
				t.Errorf("flexText = %q, want %q", ft, tt.want)
			}
		})
	}
}

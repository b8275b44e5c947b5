package google

import (
	"context"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
)

const volumesFixture = `{
  "totalItems": 2,
  "items": [
    {
      "id": "zyTCAlFPjgYC",
      "volumeInfo": {
        "title": "The Google Story",
        "authors": ["David A. Vise", "Mark Malseed"],
        "description": "<p>The <b>definitive</b> account.</p>",
        "publisher": "Random House",
        "publishedDate": "2005-11-15",
        "pageCount": 207,
        "language": "en",
        "categories": ["Business & Economics"],
        "averageRating": 3.5,
        "industryIdentifiers": [
          {"type": "ISBN_10", "identifier": "055380457X"},
          {"type": "ISBN_13", "identifier": "9780553804577"}
        ],
        "imageLinks": {
          "thumbnail": "http://books.google.com/books/content?id=zyTCAlFPjgYC"
        }
      },
      "saleInfo": {
        "saleability": "FOR_SALE",
        "listPrice": {"amount": 9500, "currencyCode": "XOF"}
      }
    },
    {
      "id": "aJQILlLxRmAC",
      "volumeInfo": {
        "title": "",
        "language": "fre"
      },
      "saleInfo": {
        "saleability": "NOT_FOR_SALE"
      }
    }
  ]
}`

func newTestClient(t *testing.T, handler http.HandlerFunc) (*Client, *httptest.Server) {
	t.Helper()
	server := httptest.NewServer(handler)

	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
	client := NewClient(server.URL, logger)

	return client, server
}

func TestClient_Search(t *testing.T) {
	client, server := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/volumes" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if got := r.URL.Query().Get("q"); got != "golang" {
			t.Errorf("unexpected query %q", got)
		}
		if got := r.URL.Query().Get("maxResults"); got != "7" {
			t.Errorf("unexpected maxResults %q", got)
		}
		w.Write([]byte(volumesFixture))
	})
	defer server.Close()

	books := client.Search(context.Background(), "golang", 7)
	if len(books) != 2 {
		t.Fatalf("expected 2 books, got %d", len(books))
	}

	b := books[0]
	if b.ExternalID != "google_zyTCAlFPjgYC" {
		t.Errorf("external id = %q", b.ExternalID)
	}
	if b.Title != "The Google Story" {
		t.Errorf("title = %q", b.Title)
	}
	if b.Author != "David A. Vise, Mark Malseed" {
		t.Errorf("author = %q", b.Author)
	}
	if b.ISBN != "9780553804577" {
		t.Errorf("isbn = %q, want ISBN_13 preferred", b.ISBN)
	}
	if b.CoverURL != "https://books.google.com/books/content?id=zyTCAlFPjgYC" {
		t.Errorf("cover url = %q, want https upgrade", b.CoverURL)
	}
	if b.Availability != "disponible" {
		t.Errorf("availability = %q", b.Availability)
	}
	if b.Price != 9500 || b.Currency != "XOF" {
		t.Errorf("price = %v %s", b.Price, b.Currency)
	}
	if b.Description == "" || b.Description[0] == '<' {
		t.Errorf("description not cleaned: %q", b.Description)
	}
	if b.Source != "google" {
		t.Errorf("source = %q", b.Source)
	}
}

func TestClient_SearchDefaults(t *testing.T) {
	client, server := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(volumesFixture))
	})
	defer server.Close()

	books := client.Search(context.Background(), "anything", 5)
	if len(books) != 2 {
		t.Fatalf("expected 2 books, got %d", len(books))
	}

	b := books[1]
	if b.Title != "Titre inconnu" {
		t.Errorf("title default = %q", b.Title)
	}
	if b.Author != "Auteur inconnu" {
		t.Errorf("author default = %q", b.Author)
	}
	if b.Language != "fr" {
		t.Errorf("language = %q, want iso639-1 normalized", b.Language)
	}
	if b.Availability != "indisponible" {
		t.Errorf("availability = %q", b.Availability)
	}
	if b.Currency != "XOF" {
		t.Errorf("currency default = %q", b.Currency)
	}
	if b.Categories == nil {
		t.Error("categories must never be nil")
	}
}

func TestClient_SearchUpstreamFailure(t *testing.T) {
	client, server := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	})
	defer server.Close()

	books := client.Search(context.Background(), "golang", 5)
	if books == nil {
		t.Fatal("expected empty slice, got nil")
	}
	if len(books) != 0 {
		t.Fatalf("expected no books, got %d", len(books))
	}
}

func TestClient_SearchByISBN(t *testing.T) {
	client, server := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if got := r.URL.Query().Get("q"); got != "isbn:9780553804577" {
			t.Errorf("unexpected query %q", got)
		}
		w.Write([]byte(volumesFixture))
	})
	defer server.Close()

	books, err := client.SearchByISBN(context.Background(), "9780553804577")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(books) != 2 {
		t.Fatalf("expected 2 books, got %d", len(books))
	}
}

func TestCleanDescription(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"empty", "", ""},
		{"plain text", "A plain description.", "A plain description."},
		{"bold tags", "<p>The <b>definitive</b> account.</p>", "The **definitive** account."},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := cleanDescription(tt.input); got != tt.want {
				t.Errorf("cleanDescription(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

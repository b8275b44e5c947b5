package openalex

import (
	"context"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
)

const worksFixture = `{
  "meta": {"count": 1},
  "results": [
    {
      "id": "https://openalex.org/W2741809807",
      "display_name": "The state of OA",
      "publication_year": 2018,
      "publication_date": "2018-02-13",
      "language": "en",
      "authorships": [
        {"author": {"display_name": "Heather Piwowar"}},
        {"author": {"display_name": "Jason Priem"}}
      ],
      "primary_location": {"source": {"display_name": "PeerJ"}},
      "concepts": [
        {"display_name": "Open access", "score": 0.9},
        {"display_name": "Citation", "score": 0.6}
      ],
      "abstract_inverted_index": {
        "Despite": [0],
        "growing": [1],
        "interest": [2],
        "in": [3, 5],
        "access": [4]
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
		if r.URL.Path != "/works" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if got := r.URL.Query().Get("search"); got != "open access" {
			t.Errorf("unexpected search %q", got)
		}
		if got := r.URL.Query().Get("per_page"); got != "10" {
			t.Errorf("unexpected per_page %q", got)
		}
		w.Write([]byte(worksFixture))
	})
	defer server.Close()

	books := client.Search(context.Background(), "open access", 10)
	if len(books) != 1 {
		t.Fatalf("expected 1 book, got %d", len(books))
	}

	b := books[0]
	if b.ExternalID != "openalex_W2741809807" {
		t.Errorf("external id = %q", b.ExternalID)
	}
	if b.Title != "The state of OA" {
		t.Errorf("title = %q", b.Title)
	}
	if b.Author != "Heather Piwowar, Jason Priem" {
		t.Errorf("author = %q", b.Author)
	}
	if b.Publisher != "PeerJ" {
		t.Errorf("publisher = %q", b.Publisher)
	}
	if b.PublishedDate != "2018-02-13" {
		t.Errorf("published date = %q", b.PublishedDate)
	}
	if b.Description != "Despite growing interest in access" {
		t.Errorf("description = %q", b.Description)
	}
	if b.ISBN != "" {
		t.Errorf("isbn = %q, scholarly works carry none", b.ISBN)
	}
	if b.Source != "openalex" {
		t.Errorf("source = %q", b.Source)
	}
}

func TestClient_SearchUpstreamFailure(t *testing.T) {
	client, server := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	})
	defer server.Close()

	books := client.Search(context.Background(), "anything", 10)
	if books == nil || len(books) != 0 {
		t.Fatalf("expected empty slice, got %v", books)
	}
}

func TestAbstractText(t *testing.T) {
	tests := []struct {
		name  string
		index map[string][]int
		want  string
	}{
		{"nil index", nil, ""},
		{"empty index", map[string][]int{}, ""},
		{
			"ordered by first occurrence",
			map[string][]int{"world": {1}, "hello": {0}, "again": {2, 4}},
			"hello world again",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := abstractText(tt.index); got != tt.want {
				t.Errorf("abstractText = %q, want %q", got, tt.want)
			}
		})
	}
}

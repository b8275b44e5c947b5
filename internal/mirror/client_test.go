package mirror

import (
	"context"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bibliointel/bibliointel-server/internal/domain"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
}

func TestClient_Disabled(t *testing.T) {
	c := New("", "", testLogger())
	assert.False(t, c.Enabled())

	written, err := c.Sync(context.Background(), &domain.Book{ExternalID: "google_abc"})
	require.NoError(t, err)
	assert.False(t, written, "disabled mirror must be a no-op")
}

func TestClient_SyncInsertsMissingRow(t *testing.T) {
	var gotInsert bool

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("apikey") != "secret" {
			t.Errorf("missing apikey header")
		}
		switch r.Method {
		case http.MethodGet:
			if got := r.URL.Query().Get("external_id"); got != "eq.google_abc" {
				t.Errorf("unexpected filter %q", got)
			}
			w.Write([]byte(`[]`))
		case http.MethodPost:
			gotInsert = true
			w.WriteHeader(http.StatusCreated)
		default:
			t.Errorf("unexpected method %s", r.Method)
		}
	}))
	defer server.Close()

	c := New(server.URL, "secret", testLogger())
	written, err := c.Sync(context.Background(), &domain.Book{
		ExternalID: "google_abc",
		Title:      "The Google Story",
		Categories: []string{},
	})
	require.NoError(t, err)
	assert.True(t, written)
	assert.True(t, gotInsert)
}

func TestClient_SyncSkipsExistingRow(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodPost {
			t.Error("must not insert when the row exists")
		}
		w.Write([]byte(`[{"external_id": "google_abc"}]`))
	}))
	defer server.Close()

	c := New(server.URL, "secret", testLogger())
	written, err := c.Sync(context.Background(), &domain.Book{ExternalID: "google_abc"})
	require.NoError(t, err)
	assert.False(t, written)
}

func TestClient_ExistsByISBNFallback(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.URL.Query().Get("isbn"); got != "eq.9780451419439" {
			t.Errorf("unexpected filter %q", got)
		}
		w.Write([]byte(`[]`))
	}))
	defer server.Close()

	c := New(server.URL, "secret", testLogger())
	exists, err := c.Exists(context.Background(), &domain.Book{ISBN: "9780451419439"})
	require.NoError(t, err)
	assert.False(t, exists)
}

func TestClient_SyncReportsUpstreamFailure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer server.Close()

	c := New(server.URL, "wrong", testLogger())
	_, err := c.Sync(context.Background(), &domain.Book{ExternalID: "google_abc"})
	require.Error(t, err)
}

package api

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/danielgtaylor/huma/v2/humatest"
	"github.com/stretchr/testify/require"

	"github.com/bibliointel/bibliointel-server/internal/auth"
	"github.com/bibliointel/bibliointel-server/internal/domain"
	"github.com/bibliointel/bibliointel-server/internal/mirror"
	"github.com/bibliointel/bibliointel-server/internal/search"
	"github.com/bibliointel/bibliointel-server/internal/service"
	"github.com/bibliointel/bibliointel-server/internal/store/sqlite"
)

const (
	testAdminUser     = "admin"
	testAdminPassword = "correct horse battery staple"
)

// testServer wraps the API server for handler tests.
type testServer struct {
	*Server
	api     humatest.TestAPI
	catalog *service.CatalogService
	admin   *service.AdminService
}

// setupTestServer creates an API server backed by a temp store and a
// temp search index. Adapters and lookups are optional.
func setupTestServer(t *testing.T, adapters []service.NamedAdapter, lookups []service.NamedLookup) *testServer {
	t.Helper()
	return setupTestServerWithMirror(t, adapters, lookups, nil)
}

// setupTestServerWithMirror additionally wires a mirror client into
// the catalog write path.
func setupTestServerWithMirror(t *testing.T, adapters []service.NamedAdapter, lookups []service.NamedLookup, mc *mirror.Client) *testServer {
	t.Helper()

	tmpDir := t.TempDir()
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))

	st, err := sqlite.Open(filepath.Join(tmpDir, "catalog.db"), logger)
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() })

	idx, err := search.NewIndex(search.Options{DataPath: tmpDir, Logger: logger})
	require.NoError(t, err)
	t.Cleanup(func() { idx.Close() })

	catalog := service.NewCatalogService(service.CatalogOptions{
		Store:    st,
		Adapters: adapters,
		Index:    idx,
		Mirror:   mc,
		Logger:   logger,
	})
	importer := service.NewImportService(catalog, lookups, logger)

	key, err := auth.LoadOrGenerateKey(tmpDir)
	require.NoError(t, err)
	tokens, err := auth.NewTokenService(key, time.Hour)
	require.NoError(t, err)
	admin := service.NewAdminService(st, tokens, logger)
	require.NoError(t, admin.EnsureSeedAdmin(context.Background(), testAdminUser, testAdminPassword))

	srv := NewServer(&Services{
		Catalog: catalog,
		Import:  importer,
		Admin:   admin,
	}, logger)

	return &testServer{
		Server:  srv,
		api:     humatest.Wrap(t, srv.api),
		catalog: catalog,
		admin:   admin,
	}
}

// seedBook persists one record through the catalog write path.
func (ts *testServer) seedBook(t *testing.T, externalID, title string) domain.Book {
	t.Helper()

	book := domain.Book{
		ExternalID: externalID,
		Title:      title,
		Author:     "Frank Herbert",
		ISBN:       "9780441172719",
		Categories: []string{"Science Fiction"},
		Rating:     4.2,
		Source:     domain.SourceGoogle,
	}
	_, err := ts.catalog.Persist(context.Background(), &book)
	require.NoError(t, err)
	return book
}

package api

import (
	"encoding/json/v2"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// loginAdmin logs in with the seeded credentials and returns the token.
func loginAdmin(t *testing.T, ts *testServer) string {
	t.Helper()

	resp := ts.api.Post("/api/admin/login", map[string]any{
		"username": testAdminUser,
		"password": testAdminPassword,
	})
	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())

	var body LoginResponse
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &body))
	require.NotEmpty(t, body.Token)
	return body.Token
}

func TestAdminLogin(t *testing.T) {
	ts := setupTestServer(t, nil, nil)

	token := loginAdmin(t, ts)
	assert.Contains(t, token, "v4.local.")

	// Wrong password and unknown username both yield the same 401.
	for _, creds := range []map[string]any{
		{"username": testAdminUser, "password": "wrong"},
		{"username": "ghost", "password": testAdminPassword},
	} {
		resp := ts.api.Post("/api/admin/login", creds)
		assert.Equal(t, http.StatusUnauthorized, resp.Code, resp.Body.String())
	}
}

func TestAdminBookCRUD(t *testing.T) {
	ts := setupTestServer(t, nil, nil)
	token := loginAdmin(t, ts)
	authHeader := "Authorization: Bearer " + token

	// Unauthenticated writes are rejected.
	resp := ts.api.Post("/api/admin/books", map[string]any{"title": "Nope"})
	require.Equal(t, http.StatusUnauthorized, resp.Code)

	resp = ts.api.Post("/api/admin/books", authHeader, map[string]any{
		"title":  "Le Petit Prince",
		"author": "Antoine de Saint-Exupéry",
		"isbn":   "9782070612758",
	})
	require.Equal(t, http.StatusCreated, resp.Code, resp.Body.String())

	var created BookResponse
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &created))
	require.NotEmpty(t, created.ID)
	assert.Equal(t, "manual", created.Source)
	assert.False(t, created.CreatedAt.IsZero(), "responses carry the stored timestamps")

	resp = ts.api.Put("/api/admin/books/"+created.ID, authHeader, map[string]any{
		"title":  "Le Petit Prince",
		"author": "Antoine de Saint-Exupéry",
		"isbn":   "9782070612758",
		"rating": 4.8,
	})
	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())

	var updated BookResponse
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &updated))
	assert.Equal(t, 4.8, updated.Rating)
	assert.Equal(t, "manual", updated.Source)
	assert.Equal(t, created.CreatedAt, updated.CreatedAt)
	assert.False(t, updated.UpdatedAt.IsZero())

	resp = ts.api.Delete("/api/admin/books/"+created.ID, authHeader)
	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())

	resp = ts.api.Delete("/api/admin/books/"+created.ID, authHeader)
	assert.Equal(t, http.StatusNotFound, resp.Code)

	resp = ts.api.Get("/api/books/" + created.ID)
	assert.Equal(t, http.StatusNotFound, resp.Code)
}

func TestAdminUpdateBookKeepsSource(t *testing.T) {
	ts := setupTestServer(t, nil, nil)
	seeded := ts.seedBook(t, "google_dune", "Dune")
	token := loginAdmin(t, ts)

	// Editing an imported record must not relabel it as hand-entered.
	resp := ts.api.Put("/api/admin/books/"+seeded.ID, "Authorization: Bearer "+token, map[string]any{
		"title":  "Dune (révisé)",
		"author": seeded.Author,
		"isbn":   seeded.ISBN,
	})
	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())

	var updated BookResponse
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &updated))
	assert.Equal(t, "Dune (révisé)", updated.Title)
	assert.Equal(t, "google", updated.Source)
	assert.False(t, updated.CreatedAt.IsZero())
}

func TestAdminRebuildIndex(t *testing.T) {
	ts := setupTestServer(t, nil, nil)
	ts.seedBook(t, "google_dune", "Dune")
	ts.seedBook(t, "google_messiah", "Dune Messiah")
	token := loginAdmin(t, ts)

	resp := ts.api.Post("/api/admin/index/rebuild", "Authorization: Bearer "+token)
	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())

	var body RebuildIndexResponse
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &body))
	assert.Equal(t, 2, body.Indexed)
}

func TestAdminAuthHeaderFormat(t *testing.T) {
	ts := setupTestServer(t, nil, nil)

	resp := ts.api.Post("/api/admin/index/rebuild", "Authorization: Token abc")
	assert.Equal(t, http.StatusUnauthorized, resp.Code)

	resp = ts.api.Post("/api/admin/index/rebuild", "Authorization: Bearer not-a-token")
	assert.Equal(t, http.StatusUnauthorized, resp.Code)
}

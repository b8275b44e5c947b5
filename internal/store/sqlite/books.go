package sqlite

import (
	"context"
	"database/sql"
	"encoding/json/v2"
	"fmt"
	"strings"
	"time"

	"github.com/bibliointel/bibliointel-server/internal/domain"
	"github.com/bibliointel/bibliointel-server/internal/errors"
	"github.com/bibliointel/bibliointel-server/internal/id"
	"github.com/bibliointel/bibliointel-server/internal/normalize"
	"github.com/bibliointel/bibliointel-server/internal/store"
)

// bookColumns is the ordered list of columns selected in book queries.
// Must match the scan order in scanBook.
const bookColumns = `id, external_id, title, author, description, isbn,
	published_date, publisher, page_count, language, categories, cover_url,
	rating, price, currency, availability, source, created_at, updated_at`

// scanBook scans a sql.Row (or sql.Rows via its Scan method) into a domain.Book.
func scanBook(scanner interface{ Scan(dest ...any) error }) (*domain.Book, error) {
	var b domain.Book

	var (
		categories string
		source     string
		createdAt  string
		updatedAt  string
	)

	err := scanner.Scan(
		&b.ID,
		&b.ExternalID,
		&b.Title,
		&b.Author,
		&b.Description,
		&b.ISBN,
		&b.PublishedDate,
		&b.Publisher,
		&b.PageCount,
		&b.Language,
		&categories,
		&b.CoverURL,
		&b.Rating,
		&b.Price,
		&b.Currency,
		&b.Availability,
		&source,
		&createdAt,
		&updatedAt,
	)
	if err != nil {
		return nil, err
	}

	if err := json.Unmarshal([]byte(categories), &b.Categories); err != nil {
		return nil, fmt.Errorf("decode categories: %w", err)
	}
	if b.Categories == nil {
		b.Categories = []string{}
	}
	b.Source = domain.Source(source)

	b.CreatedAt, err = parseTime(createdAt)
	if err != nil {
		return nil, err
	}
	b.UpdatedAt, err = parseTime(updatedAt)
	if err != nil {
		return nil, err
	}

	return &b, nil
}

// encodeCategories serializes the category list as a JSON array.
func encodeCategories(categories []string) (string, error) {
	if categories == nil {
		categories = []string{}
	}
	data, err := json.Marshal(categories)
	if err != nil {
		return "", fmt.Errorf("encode categories: %w", err)
	}
	return string(data), nil
}

// UpsertBook inserts the record or refreshes the row sharing its
// identity. Records with an external_id dedup atomically on it;
// records with only an ISBN dedup on the ISBN inside a transaction;
// records with neither always insert.
func (s *Store) UpsertBook(ctx context.Context, book *domain.Book) (store.UpsertResult, error) {
	book.Normalize()

	if book.HasIdentity() {
		return s.upsertByExternalID(ctx, book)
	}
	if book.NaturalKey() != "" {
		return s.upsertByISBN(ctx, book)
	}

	if err := s.CreateBook(ctx, book); err != nil {
		return store.UpsertResult{}, err
	}
	return store.UpsertResult{ID: book.ID, Created: true}, nil
}

func (s *Store) upsertByExternalID(ctx context.Context, book *domain.Book) (store.UpsertResult, error) {
	newID, err := id.Generate("bk")
	if err != nil {
		return store.UpsertResult{}, err
	}

	categories, err := encodeCategories(book.Categories)
	if err != nil {
		return store.UpsertResult{}, err
	}

	now := formatTime(time.Now())

	// The conflict target matches the partial unique index on
	// external_id. Losing the insert race keeps the existing row's id
	// and created_at and refreshes everything else.
	row := s.db.QueryRowContext(ctx, `
		INSERT INTO books (id, external_id, title, title_fold, author, author_fold,
			description, isbn, published_date, publisher, page_count, language,
			categories, cover_url, rating, price, currency, availability, source,
			created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(external_id) WHERE external_id != '' DO UPDATE SET
			title = excluded.title,
			title_fold = excluded.title_fold,
			author = excluded.author,
			author_fold = excluded.author_fold,
			description = excluded.description,
			isbn = excluded.isbn,
			published_date = excluded.published_date,
			publisher = excluded.publisher,
			page_count = excluded.page_count,
			language = excluded.language,
			categories = excluded.categories,
			cover_url = excluded.cover_url,
			rating = excluded.rating,
			price = excluded.price,
			currency = excluded.currency,
			availability = excluded.availability,
			source = excluded.source,
			updated_at = excluded.updated_at
		RETURNING id, created_at`,
		newID, book.ExternalID, book.Title, normalize.Fold(book.Title),
		book.Author, normalize.Fold(book.Author),
		book.Description, book.ISBN, book.PublishedDate, book.Publisher,
		book.PageCount, book.Language, categories, book.CoverURL,
		book.Rating, book.Price, book.Currency, book.Availability,
		string(book.Source), now, now,
	)

	var rowID, createdAt string
	if err := row.Scan(&rowID, &createdAt); err != nil {
		return store.UpsertResult{}, fmt.Errorf("upsert book: %w", err)
	}

	book.ID = rowID
	return store.UpsertResult{ID: rowID, Created: createdAt == now}, nil
}

func (s *Store) upsertByISBN(ctx context.Context, book *domain.Book) (store.UpsertResult, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return store.UpsertResult{}, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	categories, err := encodeCategories(book.Categories)
	if err != nil {
		return store.UpsertResult{}, err
	}

	now := formatTime(time.Now())

	var existingID string
	err = tx.QueryRowContext(ctx,
		`SELECT id FROM books WHERE isbn = ? AND isbn != '' LIMIT 1`,
		book.ISBN,
	).Scan(&existingID)

	switch {
	case err == nil:
		_, err = tx.ExecContext(ctx, `
			UPDATE books SET
				title = ?, title_fold = ?, author = ?, author_fold = ?,
				description = ?, published_date = ?, publisher = ?,
				page_count = ?, language = ?, categories = ?, cover_url = ?,
				rating = ?, price = ?, currency = ?, availability = ?,
				source = ?, updated_at = ?
			WHERE id = ?`,
			book.Title, normalize.Fold(book.Title),
			book.Author, normalize.Fold(book.Author),
			book.Description, book.PublishedDate, book.Publisher,
			book.PageCount, book.Language, categories, book.CoverURL,
			book.Rating, book.Price, book.Currency, book.Availability,
			string(book.Source), now, existingID,
		)
		if err != nil {
			return store.UpsertResult{}, fmt.Errorf("update book: %w", err)
		}
		book.ID = existingID
		if err := tx.Commit(); err != nil {
			return store.UpsertResult{}, fmt.Errorf("commit: %w", err)
		}
		return store.UpsertResult{ID: existingID, Created: false}, nil

	case err == sql.ErrNoRows:
		newID, err := id.Generate("bk")
		if err != nil {
			return store.UpsertResult{}, err
		}
		if err := insertBook(ctx, tx, newID, book, categories, now); err != nil {
			return store.UpsertResult{}, err
		}
		book.ID = newID
		if err := tx.Commit(); err != nil {
			return store.UpsertResult{}, fmt.Errorf("commit: %w", err)
		}
		return store.UpsertResult{ID: newID, Created: true}, nil

	default:
		return store.UpsertResult{}, fmt.Errorf("lookup by isbn: %w", err)
	}
}

// execer is satisfied by both *sql.DB and *sql.Tx.
type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

func insertBook(ctx context.Context, db execer, rowID string, book *domain.Book, categories, now string) error {
	_, err := db.ExecContext(ctx, `
		INSERT INTO books (id, external_id, title, title_fold, author, author_fold,
			description, isbn, published_date, publisher, page_count, language,
			categories, cover_url, rating, price, currency, availability, source,
			created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		rowID, book.ExternalID, book.Title, normalize.Fold(book.Title),
		book.Author, normalize.Fold(book.Author),
		book.Description, book.ISBN, book.PublishedDate, book.Publisher,
		book.PageCount, book.Language, categories, book.CoverURL,
		book.Rating, book.Price, book.Currency, book.Availability,
		string(book.Source), now, now,
	)
	if err != nil {
		return fmt.Errorf("insert book: %w", err)
	}
	return nil
}

// CreateBook inserts a new row unconditionally. Used by the admin
// surface; the import pipeline goes through UpsertBook.
func (s *Store) CreateBook(ctx context.Context, book *domain.Book) error {
	book.Normalize()

	if book.ID == "" {
		newID, err := id.Generate("bk")
		if err != nil {
			return err
		}
		book.ID = newID
	}

	categories, err := encodeCategories(book.Categories)
	if err != nil {
		return err
	}

	now := formatTime(time.Now())
	if err := insertBook(ctx, s.db, book.ID, book, categories, now); err != nil {
		if strings.Contains(err.Error(), "UNIQUE constraint failed") {
			return errors.AlreadyExists("a book with this external id already exists").WithCause(err)
		}
		return err
	}
	return nil
}

// UpdateBook rewrites all metadata fields of an existing row.
func (s *Store) UpdateBook(ctx context.Context, book *domain.Book) error {
	book.Normalize()

	categories, err := encodeCategories(book.Categories)
	if err != nil {
		return err
	}

	res, err := s.db.ExecContext(ctx, `
		UPDATE books SET
			title = ?, title_fold = ?, author = ?, author_fold = ?,
			description = ?, isbn = ?, published_date = ?, publisher = ?,
			page_count = ?, language = ?, categories = ?, cover_url = ?,
			rating = ?, price = ?, currency = ?, availability = ?,
			source = ?, updated_at = ?
		WHERE id = ?`,
		book.Title, normalize.Fold(book.Title),
		book.Author, normalize.Fold(book.Author),
		book.Description, book.ISBN, book.PublishedDate, book.Publisher,
		book.PageCount, book.Language, categories, book.CoverURL,
		book.Rating, book.Price, book.Currency, book.Availability,
		string(book.Source), formatTime(time.Now()), book.ID,
	)
	if err != nil {
		return fmt.Errorf("update book: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return errors.NotFoundf("book %s not found", book.ID)
	}
	return nil
}

// DeleteBook removes a row by id.
func (s *Store) DeleteBook(ctx context.Context, bookID string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM books WHERE id = ?`, bookID)
	if err != nil {
		return fmt.Errorf("delete book: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return errors.NotFoundf("book %s not found", bookID)
	}
	return nil
}

// GetBook returns a single row by id.
func (s *Store) GetBook(ctx context.Context, bookID string) (*domain.Book, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+bookColumns+` FROM books WHERE id = ?`, bookID)
	book, err := scanBook(row)
	if err == sql.ErrNoRows {
		return nil, errors.NotFoundf("book %s not found", bookID)
	}
	if err != nil {
		return nil, fmt.Errorf("get book: %w", err)
	}
	return book, nil
}

// GetBookByExternalID returns a single row by its source identity.
func (s *Store) GetBookByExternalID(ctx context.Context, externalID string) (*domain.Book, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+bookColumns+` FROM books WHERE external_id = ? AND external_id != ''`,
		externalID)
	book, err := scanBook(row)
	if err == sql.ErrNoRows {
		return nil, errors.NotFoundf("book %s not found", externalID)
	}
	if err != nil {
		return nil, fmt.Errorf("get book by external id: %w", err)
	}
	return book, nil
}

// ListBooks returns a page of the catalog, newest first, optionally
// filtered by category.
func (s *Store) ListBooks(ctx context.Context, opts store.ListOptions) ([]domain.Book, error) {
	query := `SELECT ` + bookColumns + ` FROM books`
	args := []any{}

	if opts.Category != "" {
		query += ` WHERE EXISTS (
			SELECT 1 FROM json_each(books.categories)
			WHERE lower(json_each.value) LIKE '%' || lower(?) || '%')`
		args = append(args, opts.Category)
	}

	query += ` ORDER BY created_at DESC, id LIMIT ? OFFSET ?`
	args = append(args, opts.Limit, opts.Offset)

	return s.queryBooks(ctx, query, args...)
}

// CountBooks returns the total number of rows in the catalog.
func (s *Store) CountBooks(ctx context.Context) (int, error) {
	var n int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM books`).Scan(&n); err != nil {
		return 0, fmt.Errorf("count books: %w", err)
	}
	return n, nil
}

// SearchBooks matches the folded title and author columns plus the raw
// description. The query is folded the same way the columns were, so
// matching ignores case and accents.
func (s *Store) SearchBooks(ctx context.Context, query string, limit int) ([]domain.Book, error) {
	pattern := "%" + escapeLike(normalize.Fold(query)) + "%"
	rawPattern := "%" + escapeLike(strings.ToLower(query)) + "%"

	return s.queryBooks(ctx, `
		SELECT `+bookColumns+` FROM books
		WHERE title_fold LIKE ? ESCAPE '\'
		   OR author_fold LIKE ? ESCAPE '\'
		   OR lower(description) LIKE ? ESCAPE '\'
		ORDER BY rating DESC, created_at DESC
		LIMIT ?`,
		pattern, pattern, rawPattern, limit)
}

// PopularBooks returns the highest-rated rows.
func (s *Store) PopularBooks(ctx context.Context, limit int) ([]domain.Book, error) {
	return s.queryBooks(ctx, `
		SELECT `+bookColumns+` FROM books
		WHERE rating > 0
		ORDER BY rating DESC, created_at DESC
		LIMIT ?`, limit)
}

// RecentBooks returns the most recently added rows.
func (s *Store) RecentBooks(ctx context.Context, limit int) ([]domain.Book, error) {
	return s.queryBooks(ctx, `
		SELECT `+bookColumns+` FROM books
		ORDER BY created_at DESC, id
		LIMIT ?`, limit)
}

func (s *Store) queryBooks(ctx context.Context, query string, args ...any) ([]domain.Book, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query books: %w", err)
	}
	defer rows.Close()

	books := []domain.Book{}
	for rows.Next() {
		book, err := scanBook(rows)
		if err != nil {
			return nil, fmt.Errorf("scan book: %w", err)
		}
		books = append(books, *book)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate books: %w", err)
	}
	return books, nil
}

// escapeLike escapes LIKE wildcards in user-supplied search text.
func escapeLike(s string) string {
	s = strings.ReplaceAll(s, `\`, `\\`)
	s = strings.ReplaceAll(s, `%`, `\%`)
	s = strings.ReplaceAll(s, `_`, `\_`)
	return s
}

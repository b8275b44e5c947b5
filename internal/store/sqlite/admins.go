package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/bibliointel/bibliointel-server/internal/domain"
	"github.com/bibliointel/bibliointel-server/internal/errors"
	"github.com/bibliointel/bibliointel-server/internal/id"
)

// CreateAdmin inserts a new administrator account.
func (s *Store) CreateAdmin(ctx context.Context, admin *domain.Admin) error {
	if admin.ID == "" {
		newID, err := id.Generate("adm")
		if err != nil {
			return err
		}
		admin.ID = newID
	}

	now := formatTime(time.Now())
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO admins (id, username, password_hash, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?)`,
		admin.ID, admin.Username, admin.PasswordHash, now, now,
	)
	if err != nil {
		if strings.Contains(err.Error(), "UNIQUE constraint failed") {
			return errors.AlreadyExists("username already taken").WithCause(err)
		}
		return fmt.Errorf("insert admin: %w", err)
	}
	return nil
}

// GetAdminByUsername returns the account for a username.
func (s *Store) GetAdminByUsername(ctx context.Context, username string) (*domain.Admin, error) {
	var (
		a         domain.Admin
		createdAt string
		updatedAt string
	)

	err := s.db.QueryRowContext(ctx, `
		SELECT id, username, password_hash, created_at, updated_at
		FROM admins WHERE username = ?`, username,
	).Scan(&a.ID, &a.Username, &a.PasswordHash, &createdAt, &updatedAt)
	if err == sql.ErrNoRows {
		return nil, errors.NotFoundf("admin %s not found", username)
	}
	if err != nil {
		return nil, fmt.Errorf("get admin: %w", err)
	}

	a.CreatedAt, err = parseTime(createdAt)
	if err != nil {
		return nil, err
	}
	a.UpdatedAt, err = parseTime(updatedAt)
	if err != nil {
		return nil, err
	}
	return &a, nil
}

// CountAdmins returns the number of administrator accounts.
func (s *Store) CountAdmins(ctx context.Context) (int, error) {
	var n int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM admins`).Scan(&n); err != nil {
		return 0, fmt.Errorf("count admins: %w", err)
	}
	return n, nil
}

package domain

import "time"

// Admin is an administrator account allowed to mutate the catalog
// directly. Passwords are stored as Argon2id hashes, never plaintext.
type Admin struct {
	ID           string    `json:"id"`
	Username     string    `json:"username"`
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

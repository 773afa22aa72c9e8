package store

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/sturner103/letter-to-you/models"
)

// CreateProfile inserts a new account record.
func (s *Store) CreateProfile(p *models.Profile) error {
	_, err := s.Conn.Exec(`INSERT INTO profiles
		(id, email, display_name, password_hash, provider, created_at)
		VALUES (?, ?, ?, ?, ?, ?)`,
		p.ID, p.Email, p.DisplayName, p.PasswordHash, p.Provider,
		encodeTime(p.CreatedAt))
	if err != nil {
		return fmt.Errorf("failed to create profile: %w", err)
	}
	return nil
}

// GetProfileByEmail looks up an account by email.
func (s *Store) GetProfileByEmail(email string) (*models.Profile, error) {
	row := s.Conn.QueryRow(`SELECT id, email, display_name, password_hash,
		provider, created_at FROM profiles WHERE email = ?`, email)
	return scanProfile(row)
}

// GetProfileByID looks up an account by id.
func (s *Store) GetProfileByID(id string) (*models.Profile, error) {
	row := s.Conn.QueryRow(`SELECT id, email, display_name, password_hash,
		provider, created_at FROM profiles WHERE id = ?`, id)
	return scanProfile(row)
}

func scanProfile(row rowScanner) (*models.Profile, error) {
	var p models.Profile
	var createdAt string
	err := row.Scan(&p.ID, &p.Email, &p.DisplayName, &p.PasswordHash,
		&p.Provider, &createdAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan profile: %w", err)
	}
	p.CreatedAt = decodeTime(createdAt)
	return &p, nil
}

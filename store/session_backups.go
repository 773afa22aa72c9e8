package store

import (
	"database/sql"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/sturner103/letter-to-you/models"
)

// UpsertSessionBackup stores the credential pair for retrieval after the
// checkout redirect. At most one live backup exists per user; a new backup
// replaces the old one.
func (s *Store) UpsertSessionBackup(b *models.SessionBackup) error {
	_, err := s.Conn.Exec(`INSERT INTO session_backups
		(user_id, restore_token, access_token, refresh_token, created_at, expires_at)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(user_id) DO UPDATE SET
			restore_token = excluded.restore_token,
			access_token = excluded.access_token,
			refresh_token = excluded.refresh_token,
			created_at = excluded.created_at,
			expires_at = excluded.expires_at`,
		b.UserID, b.RestoreToken, b.AccessToken, b.RefreshToken,
		encodeTime(b.CreatedAt), encodeTime(b.ExpiresAt))
	if err != nil {
		return fmt.Errorf("failed to store session backup: %w", err)
	}
	return nil
}

// TakeSessionBackup exchanges a restore token for its credential pair
// exactly once: the row is deleted immediately after retrieval. Expired or
// unknown tokens return ErrNotFound, which callers treat as a normal,
// recoverable case.
func (s *Store) TakeSessionBackup(restoreToken string) (*models.SessionBackup, error) {
	row := s.Conn.QueryRow(`SELECT user_id, restore_token, access_token,
		refresh_token, created_at, expires_at
		FROM session_backups WHERE restore_token = ? AND expires_at > ?`,
		restoreToken, encodeTime(time.Now().UTC()))

	var b models.SessionBackup
	var createdAt, expiresAt string
	err := row.Scan(&b.UserID, &b.RestoreToken, &b.AccessToken,
		&b.RefreshToken, &createdAt, &expiresAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read session backup: %w", err)
	}
	b.CreatedAt = decodeTime(createdAt)
	b.ExpiresAt = decodeTime(expiresAt)

	if _, err := s.Conn.Exec(`DELETE FROM session_backups WHERE restore_token = ?`,
		restoreToken); err != nil {
		log.Printf("Failed to delete consumed session backup: %v", err)
	}
	return &b, nil
}

// DeleteSessionBackupForUser removes a user's live backup, if any.
func (s *Store) DeleteSessionBackupForUser(userID string) error {
	_, err := s.Conn.Exec(`DELETE FROM session_backups WHERE user_id = ?`, userID)
	if err != nil {
		return fmt.Errorf("failed to delete session backup: %w", err)
	}
	return nil
}

// DeleteExpiredBackups clears backups past their TTL.
func (s *Store) DeleteExpiredBackups() error {
	_, err := s.Conn.Exec(`DELETE FROM session_backups WHERE expires_at <= ?`,
		encodeTime(time.Now().UTC()))
	if err != nil {
		return fmt.Errorf("failed to delete expired backups: %w", err)
	}
	return nil
}

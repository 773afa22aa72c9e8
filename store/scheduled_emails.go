package store

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/sturner103/letter-to-you/models"
)

// InsertScheduledEmail queues a future-self letter for delivery.
func (s *Store) InsertScheduledEmail(e *models.ScheduledEmail) error {
	_, err := s.Conn.Exec(`INSERT INTO scheduled_emails
		(id, user_id, letter_id, scheduled_for, status, error_message, sent_at, created_at)
		VALUES (?, ?, ?, ?, ?, NULL, NULL, ?)`,
		e.ID, e.UserID, e.LetterID, encodeTime(e.ScheduledFor), e.Status,
		encodeTime(e.CreatedAt))
	if err != nil {
		return fmt.Errorf("failed to insert scheduled email: %w", err)
	}
	return nil
}

// DuePendingEmails returns pending emails whose delivery time has passed,
// oldest first, capped at limit so the sweep processes in batches.
func (s *Store) DuePendingEmails(limit int) ([]*models.ScheduledEmail, error) {
	rows, err := s.Conn.Query(`SELECT id, user_id, letter_id, scheduled_for,
		status, error_message, sent_at, created_at
		FROM scheduled_emails
		WHERE status = ? AND scheduled_for <= ?
		ORDER BY scheduled_for ASC LIMIT ?`,
		models.EmailPending, encodeTime(time.Now().UTC()), limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list due emails: %w", err)
	}
	defer rows.Close()

	var emails []*models.ScheduledEmail
	for rows.Next() {
		var e models.ScheduledEmail
		var scheduledFor, createdAt string
		var errorMessage, sentAt sql.NullString
		if err := rows.Scan(&e.ID, &e.UserID, &e.LetterID, &scheduledFor,
			&e.Status, &errorMessage, &sentAt, &createdAt); err != nil {
			return nil, fmt.Errorf("failed to scan scheduled email: %w", err)
		}
		e.ScheduledFor = decodeTime(scheduledFor)
		e.ErrorMessage = errorMessage.String
		e.SentAt = decodeTimePtr(sentAt)
		e.CreatedAt = decodeTime(createdAt)
		emails = append(emails, &e)
	}
	return emails, rows.Err()
}

// MarkEmailSent transitions a scheduled email to sent.
func (s *Store) MarkEmailSent(id string) error {
	now := time.Now().UTC()
	_, err := s.Conn.Exec(`UPDATE scheduled_emails
		SET status = ?, sent_at = ?, error_message = NULL WHERE id = ?`,
		models.EmailSent, encodeTime(now), id)
	if err != nil {
		return fmt.Errorf("failed to mark email sent: %w", err)
	}
	return nil
}

// MarkEmailFailed transitions a scheduled email to failed with its error.
func (s *Store) MarkEmailFailed(id, errorMessage string) error {
	_, err := s.Conn.Exec(`UPDATE scheduled_emails
		SET status = ?, error_message = ? WHERE id = ?`,
		models.EmailFailed, errorMessage, id)
	if err != nil {
		return fmt.Errorf("failed to mark email failed: %w", err)
	}
	return nil
}

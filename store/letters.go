package store

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/sturner103/letter-to-you/models"
)

// ErrNotFound is returned when a row does not exist or is not visible to the
// requesting user.
var ErrNotFound = errors.New("not found")

// Letter sort orders.
const (
	SortNewest = "newest"
	SortOldest = "oldest"
	SortMode   = "mode"
	SortTone   = "tone"
)

const letterColumns = `id, user_id, mode, tone, questions, letter_content,
	word_count, delivery_status, delivery_date, delivered_at, created_at`

// InsertLetter persists a generated letter.
func (s *Store) InsertLetter(l *models.Letter) error {
	qs, err := json.Marshal(l.Questions)
	if err != nil {
		return fmt.Errorf("failed to encode questions: %w", err)
	}
	_, err = s.Conn.Exec(`INSERT INTO letters
		(id, user_id, mode, tone, questions, letter_content, word_count,
		 delivery_status, delivery_date, delivered_at, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		l.ID, l.UserID, l.Mode, string(l.Tone), string(qs), l.Content,
		l.WordCount, l.DeliveryStatus, encodeTimePtr(l.DeliveryDate),
		encodeTimePtr(l.DeliveredAt), encodeTime(l.CreatedAt))
	if err != nil {
		return fmt.Errorf("failed to insert letter: %w", err)
	}
	return nil
}

// GetLetter fetches a letter owned by userID.
func (s *Store) GetLetter(id, userID string) (*models.Letter, error) {
	row := s.Conn.QueryRow(`SELECT `+letterColumns+` FROM letters
		WHERE id = ? AND user_id = ?`, id, userID)
	return scanLetter(row)
}

// ListLetters returns the user's letters in the requested sort order.
func (s *Store) ListLetters(userID, sort string) ([]*models.Letter, error) {
	orderBy := "created_at DESC"
	switch sort {
	case SortOldest:
		orderBy = "created_at ASC"
	case SortMode:
		orderBy = "mode ASC, created_at DESC"
	case SortTone:
		orderBy = "tone ASC, created_at DESC"
	}

	rows, err := s.Conn.Query(`SELECT `+letterColumns+` FROM letters
		WHERE user_id = ? ORDER BY `+orderBy, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list letters: %w", err)
	}
	defer rows.Close()

	var letters []*models.Letter
	for rows.Next() {
		l, err := scanLetter(rows)
		if err != nil {
			return nil, err
		}
		letters = append(letters, l)
	}
	return letters, rows.Err()
}

// DeleteLetter removes a letter owned by userID.
func (s *Store) DeleteLetter(id, userID string) error {
	res, err := s.Conn.Exec(`DELETE FROM letters WHERE id = ? AND user_id = ?`, id, userID)
	if err != nil {
		return fmt.Errorf("failed to delete letter: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

// UpdateLetterDelivery transitions a letter's delivery status.
func (s *Store) UpdateLetterDelivery(id, status string, deliveredAt *time.Time) error {
	_, err := s.Conn.Exec(`UPDATE letters SET delivery_status = ?, delivered_at = ?
		WHERE id = ?`, status, encodeTimePtr(deliveredAt), id)
	if err != nil {
		return fmt.Errorf("failed to update letter delivery: %w", err)
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanLetter(row rowScanner) (*models.Letter, error) {
	var l models.Letter
	var tone, questionsJSON, createdAt string
	var deliveryDate, deliveredAt sql.NullString
	err := row.Scan(&l.ID, &l.UserID, &l.Mode, &tone, &questionsJSON,
		&l.Content, &l.WordCount, &l.DeliveryStatus, &deliveryDate,
		&deliveredAt, &createdAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan letter: %w", err)
	}
	l.Tone = models.Tone(tone)
	if err := json.Unmarshal([]byte(questionsJSON), &l.Questions); err != nil {
		l.Questions = nil
	}
	l.DeliveryDate = decodeTimePtr(deliveryDate)
	l.DeliveredAt = decodeTimePtr(deliveredAt)
	l.CreatedAt = decodeTime(createdAt)
	return &l, nil
}

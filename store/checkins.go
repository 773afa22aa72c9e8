package store

import (
	"fmt"

	"github.com/sturner103/letter-to-you/models"
)

// InsertCheckIn persists a weekly check-in with its generated reflection.
func (s *Store) InsertCheckIn(c *models.CheckIn) error {
	_, err := s.Conn.Exec(`INSERT INTO checkins
		(id, user_id, mood_rating, energy_level, wins, challenges,
		 gratitude, focus_next_week, reflection, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		c.ID, c.UserID, c.MoodRating, c.EnergyLevel, c.Wins, c.Challenges,
		c.Gratitude, c.FocusNextWeek, c.Reflection, encodeTime(c.CreatedAt))
	if err != nil {
		return fmt.Errorf("failed to insert check-in: %w", err)
	}
	return nil
}

// ListCheckIns returns the user's check-ins newest first.
func (s *Store) ListCheckIns(userID string) ([]*models.CheckIn, error) {
	rows, err := s.Conn.Query(`SELECT id, user_id, mood_rating, energy_level,
		wins, challenges, gratitude, focus_next_week, reflection, created_at
		FROM checkins WHERE user_id = ? ORDER BY created_at DESC`, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list check-ins: %w", err)
	}
	defer rows.Close()

	var checkins []*models.CheckIn
	for rows.Next() {
		var c models.CheckIn
		var createdAt string
		if err := rows.Scan(&c.ID, &c.UserID, &c.MoodRating, &c.EnergyLevel,
			&c.Wins, &c.Challenges, &c.Gratitude, &c.FocusNextWeek,
			&c.Reflection, &createdAt); err != nil {
			return nil, fmt.Errorf("failed to scan check-in: %w", err)
		}
		c.CreatedAt = decodeTime(createdAt)
		checkins = append(checkins, &c)
	}
	return checkins, rows.Err()
}

package store

import "fmt"

var schema = []string{
	`CREATE TABLE IF NOT EXISTS profiles (
		id TEXT PRIMARY KEY,
		email TEXT NOT NULL UNIQUE,
		display_name TEXT NOT NULL DEFAULT '',
		password_hash TEXT NOT NULL DEFAULT '',
		provider TEXT NOT NULL DEFAULT '',
		created_at TEXT NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS letters (
		id TEXT PRIMARY KEY,
		user_id TEXT NOT NULL,
		mode TEXT NOT NULL,
		tone TEXT NOT NULL,
		questions TEXT NOT NULL DEFAULT '[]',
		letter_content TEXT NOT NULL,
		word_count INTEGER NOT NULL DEFAULT 0,
		delivery_status TEXT NOT NULL DEFAULT 'immediate',
		delivery_date TEXT,
		delivered_at TEXT,
		created_at TEXT NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS idx_letters_user ON letters(user_id, created_at)`,
	`CREATE TABLE IF NOT EXISTS purchases (
		id TEXT PRIMARY KEY,
		user_id TEXT NOT NULL,
		letter_mode TEXT NOT NULL,
		mode_name TEXT NOT NULL DEFAULT '',
		amount INTEGER NOT NULL DEFAULT 0,
		currency TEXT NOT NULL DEFAULT 'NZD',
		stripe_session_id TEXT NOT NULL UNIQUE,
		status TEXT NOT NULL,
		used INTEGER NOT NULL DEFAULT 0,
		used_at TEXT,
		letter_id TEXT,
		created_at TEXT NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS idx_purchases_user ON purchases(user_id, used)`,
	`CREATE TABLE IF NOT EXISTS scheduled_emails (
		id TEXT PRIMARY KEY,
		user_id TEXT NOT NULL,
		letter_id TEXT NOT NULL,
		scheduled_for TEXT NOT NULL,
		status TEXT NOT NULL DEFAULT 'pending',
		error_message TEXT,
		sent_at TEXT,
		created_at TEXT NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS idx_scheduled_emails_due ON scheduled_emails(status, scheduled_for)`,
	`CREATE TABLE IF NOT EXISTS session_backups (
		user_id TEXT PRIMARY KEY,
		restore_token TEXT NOT NULL UNIQUE,
		access_token TEXT NOT NULL,
		refresh_token TEXT NOT NULL,
		created_at TEXT NOT NULL,
		expires_at TEXT NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS checkins (
		id TEXT PRIMARY KEY,
		user_id TEXT NOT NULL,
		mood_rating INTEGER NOT NULL,
		energy_level INTEGER NOT NULL,
		wins TEXT NOT NULL DEFAULT '',
		challenges TEXT NOT NULL DEFAULT '',
		gratitude TEXT NOT NULL DEFAULT '',
		focus_next_week TEXT NOT NULL DEFAULT '',
		reflection TEXT NOT NULL DEFAULT '',
		created_at TEXT NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS idx_checkins_user ON checkins(user_id, created_at)`,
}

func (s *Store) ensureSchema() error {
	for _, stmt := range schema {
		if _, err := s.Conn.Exec(stmt); err != nil {
			return fmt.Errorf("schema bootstrap failed: %w", err)
		}
	}
	return nil
}

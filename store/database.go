// Package store provides the persistence layer: a local SQLite file or a
// remote libsql database, with CRUD over letters, purchases, scheduled
// emails, session backups, profiles and check-ins.
package store

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3"                      // SQLite driver
	_ "github.com/tursodatabase/libsql-client-go/libsql" // libsql driver

	"github.com/sturner103/letter-to-you/config"
)

// Store wraps the database connection.
type Store struct {
	Conn      *sql.DB
	UseRemote bool
}

// New opens the database. A configured libsql URL is tried first; on any
// failure the local SQLite file is used instead.
func New() (*Store, error) {
	var conn *sql.DB
	var err error
	var useRemote bool

	if config.LibsqlURL != "" && config.LibsqlToken != "" {
		connStr := config.LibsqlURL + "?authToken=" + config.LibsqlToken
		conn, err = sql.Open("libsql", connStr)
		if err == nil {
			if pingErr := conn.Ping(); pingErr == nil {
				useRemote = true
			} else {
				conn.Close()
				conn = nil
			}
		}
	}

	if conn == nil {
		dbDir := filepath.Dir(config.SQLitePath)
		if err := os.MkdirAll(dbDir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}

		conn, err = sql.Open("sqlite3", config.SQLitePath)
		if err != nil {
			return nil, fmt.Errorf("failed to open SQLite database: %w", err)
		}
		if err := conn.Ping(); err != nil {
			conn.Close()
			return nil, fmt.Errorf("SQLite database ping failed: %w", err)
		}
		useRemote = false
	}

	conn.SetMaxOpenConns(config.DBMaxOpenConn)
	conn.SetMaxIdleConns(config.DBMaxIdleConn)

	s := &Store{Conn: conn, UseRemote: useRemote}
	if err := s.ensureSchema(); err != nil {
		conn.Close()
		return nil, err
	}
	return s, nil
}

// Open wraps an existing connection and bootstraps the schema. Used by tests
// with an in-memory SQLite database.
func Open(conn *sql.DB) (*Store, error) {
	s := &Store{Conn: conn}
	if err := s.ensureSchema(); err != nil {
		return nil, err
	}
	return s, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	if s.Conn != nil {
		return s.Conn.Close()
	}
	return nil
}

// ConnectionInfo returns a string describing the database connection.
func (s *Store) ConnectionInfo() string {
	if s.UseRemote {
		return "libsql (remote)"
	}
	return fmt.Sprintf("SQLite (%s)", config.SQLitePath)
}

// Timestamps are stored as UTC RFC3339 text so both drivers behave the same.
const timeLayout = time.RFC3339Nano

func encodeTime(t time.Time) string {
	return t.UTC().Format(timeLayout)
}

func decodeTime(s string) time.Time {
	t, err := time.Parse(timeLayout, s)
	if err != nil {
		return time.Time{}
	}
	return t
}

func encodeTimePtr(t *time.Time) sql.NullString {
	if t == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: encodeTime(*t), Valid: true}
}

func decodeTimePtr(s sql.NullString) *time.Time {
	if !s.Valid {
		return nil
	}
	t := decodeTime(s.String)
	return &t
}
